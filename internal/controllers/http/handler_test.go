package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"bellavista/internal/domain"
	"bellavista/internal/repository"
	"bellavista/internal/services"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newTestRouter(t *testing.T, rdb *redis.Client) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	ctx := context.Background()
	store := repository.NewMemoryStore()

	sessions := services.NewSessionManager(store, "test-secret", time.Hour)
	accounts := services.NewAccountService(store, sessions)
	accounts.SetHashCost(bcrypt.MinCost)
	catalog := services.NewCatalogService(store)
	orders := services.NewOrderService(store, accounts, nil)
	builder := services.NewBuilderService(store)
	contact := services.NewContactService(store)

	require.NoError(t, sessions.Load(ctx))
	require.NoError(t, accounts.Load(ctx))
	require.NoError(t, catalog.Load(ctx))
	require.NoError(t, orders.Load(ctx))
	require.NoError(t, builder.Load(ctx))
	require.NoError(t, contact.Load(ctx))
	t.Cleanup(orders.Wait)

	h := NewHandler(Services{
		Sessions:  sessions,
		Accounts:  accounts,
		Catalog:   catalog,
		Orders:    orders,
		Carts:     services.NewCartService(catalog, orders, time.Hour),
		Dashboard: services.NewDashboardService(orders, catalog, accounts),
		Customers: services.NewCustomerService(accounts, orders),
		Builder:   builder,
		Contact:   contact,
	}, rdb)

	r := gin.New()
	h.RegisterRoutes(r)
	return r
}

func doRequest(t *testing.T, r *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func login(t *testing.T, r *gin.Engine, email, password string) string {
	t.Helper()
	w := doRequest(t, r, http.MethodPost, "/auth/login", "", LoginRequest{Email: email, Password: password})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	return decode[map[string]any](t, w)["token"].(string)
}

func TestHandler_Menu(t *testing.T) {
	r := newTestRouter(t, nil)

	tests := []struct {
		name         string
		path         string
		expectedCode int
		expectedLen  int
	}{
		{name: "grouped", path: "/menu", expectedCode: http.StatusOK, expectedLen: 5},
		{name: "pasta", path: "/menu?category=pasta", expectedCode: http.StatusOK, expectedLen: 4},
		{name: "search", path: "/menu?search=tiramisu", expectedCode: http.StatusOK, expectedLen: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(t, r, http.MethodGet, tt.path, "", nil)
			assert.Equal(t, tt.expectedCode, w.Code)
			assert.Len(t, decode[[]map[string]any](t, w), tt.expectedLen)
		})
	}

	t.Run("single item", func(t *testing.T) {
		w := doRequest(t, r, http.MethodGet, "/menu/4", "", nil)
		require.Equal(t, http.StatusOK, w.Code)
		item := decode[map[string]any](t, w)
		assert.Equal(t, "Spaghetti Carbonara", item["name"])
		assert.Equal(t, "22.99", item["price"])
	})

	t.Run("missing item", func(t *testing.T) {
		assert.Equal(t, http.StatusNotFound, doRequest(t, r, http.MethodGet, "/menu/404", "", nil).Code)
	})

	t.Run("bad id", func(t *testing.T) {
		assert.Equal(t, http.StatusBadRequest, doRequest(t, r, http.MethodGet, "/menu/abc", "", nil).Code)
	})
}

func TestHandler_MenuCache(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	r := newTestRouter(t, rdb)

	w := doRequest(t, r, http.MethodGet, "/menu", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, mr.Exists(menuCacheKey))

	cached := doRequest(t, r, http.MethodGet, "/menu", "", nil)
	assert.JSONEq(t, w.Body.String(), cached.Body.String())

	admin := login(t, r, services.SeedAdminEmail, services.SeedAdminPassword)
	created := doRequest(t, r, http.MethodPost, "/admin/menu", admin, map[string]any{
		"name":        "Affogato",
		"description": "Vanilla gelato drowned in espresso",
		"price":       "6.50",
		"category":    "desserts",
	})
	require.Equal(t, http.StatusCreated, created.Code, created.Body.String())
	assert.False(t, mr.Exists(menuCacheKey))

	groups := decode[[]struct {
		Category string           `json:"category"`
		Items    []map[string]any `json:"items"`
	}](t, doRequest(t, r, http.MethodGet, "/menu", "", nil))
	assert.Len(t, groups[4].Items, 3)
}

func TestHandler_Register(t *testing.T) {
	r := newTestRouter(t, nil)
	valid := map[string]string{
		"fullName":        "Jane Doe",
		"email":           "jane@example.com",
		"phone":           "5551234567",
		"password":        "secret123",
		"confirmPassword": "secret123",
	}

	w := doRequest(t, r, http.MethodPost, "/auth/register", "", valid)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	session := decode[map[string]any](t, w)
	assert.NotEmpty(t, session["token"])
	assert.Equal(t, "customer", session["account"].(map[string]any)["role"])

	w = doRequest(t, r, http.MethodPost, "/auth/register", "", valid)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = doRequest(t, r, http.MethodPost, "/auth/register", "", map[string]string{"email": "nope"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	resp := decode[ErrorResponse](t, w)
	assert.Len(t, resp.Fields, 4)
}

func TestHandler_Auth(t *testing.T) {
	r := newTestRouter(t, nil)

	w := doRequest(t, r, http.MethodPost, "/auth/login", "", LoginRequest{Email: services.SeedAdminEmail, Password: "wrong"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	assert.Equal(t, http.StatusUnauthorized, doRequest(t, r, http.MethodGet, "/auth/me", "", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, doRequest(t, r, http.MethodGet, "/auth/me", "garbage", nil).Code)

	token := login(t, r, services.SeedCustomerEmail, services.SeedCustomerPassword)
	w = doRequest(t, r, http.MethodPatch, "/auth/me", token, map[string]string{"name": "Johnny"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	me := decode[map[string]any](t, doRequest(t, r, http.MethodGet, "/auth/me", token, nil))
	assert.Equal(t, "Johnny", me["name"])

	orders := decode[[]map[string]any](t, doRequest(t, r, http.MethodGet, "/auth/me/orders", token, nil))
	assert.Len(t, orders, 2)

	assert.Equal(t, http.StatusNoContent, doRequest(t, r, http.MethodPost, "/auth/logout", token, nil).Code)
	assert.Equal(t, http.StatusUnauthorized, doRequest(t, r, http.MethodGet, "/auth/me", token, nil).Code)
}

func TestHandler_CartCheckout(t *testing.T) {
	r := newTestRouter(t, nil)

	w := doRequest(t, r, http.MethodPost, "/carts", "", nil)
	require.Equal(t, http.StatusCreated, w.Code)
	cartID := decode[CartResponse](t, w).ID
	base := "/carts/" + cartID

	w = doRequest(t, r, http.MethodPost, base+"/checkout", login(t, r, services.SeedCustomerEmail, services.SeedCustomerPassword), nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	doRequest(t, r, http.MethodPost, base+"/items", "", AddCartItemRequest{ItemID: 4})
	doRequest(t, r, http.MethodPost, base+"/items", "", AddCartItemRequest{ItemID: 4})
	w = doRequest(t, r, http.MethodPost, base+"/items", "", AddCartItemRequest{ItemID: 999})
	require.Equal(t, http.StatusOK, w.Code)

	cart := decode[map[string]any](t, w)
	assert.Equal(t, float64(2), cart["itemCount"])
	totals := cart["totals"].(map[string]any)
	assert.Equal(t, "45.98", totals["subtotal"])
	assert.Equal(t, "3.68", totals["tax"])
	assert.Equal(t, "49.66", totals["total"])

	w = doRequest(t, r, http.MethodPost, base+"/checkout", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	token := login(t, r, services.SeedCustomerEmail, services.SeedCustomerPassword)
	w = doRequest(t, r, http.MethodPost, base+"/checkout", token, CheckoutRequest{Notes: "extra napkins"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	order := decode[map[string]any](t, w)
	assert.Equal(t, "ORD-003", order["id"])
	assert.Equal(t, "pending", order["status"])
	assert.Equal(t, "49.66", order["total"])

	cart = decode[map[string]any](t, doRequest(t, r, http.MethodGet, base, "", nil))
	assert.Equal(t, float64(0), cart["itemCount"])

	assert.Equal(t, http.StatusNotFound, doRequest(t, r, http.MethodGet, "/carts/unknown", "", nil).Code)
}

func TestHandler_CartQuantity(t *testing.T) {
	r := newTestRouter(t, nil)
	cartID := decode[CartResponse](t, doRequest(t, r, http.MethodPost, "/carts", "", nil)).ID
	base := "/carts/" + cartID

	doRequest(t, r, http.MethodPost, base+"/items", "", AddCartItemRequest{ItemID: 14})
	w := doRequest(t, r, http.MethodPut, base+"/items/14", "", map[string]int{"quantity": 3})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 3, decode[CartResponse](t, w).ItemCount)

	assert.Equal(t, http.StatusBadRequest, doRequest(t, r, http.MethodPut, base+"/items/14", "", map[string]int{}).Code)

	w = doRequest(t, r, http.MethodDelete, base+"/items/14", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode[CartResponse](t, w).Lines)
}

func TestHandler_AdminOrders(t *testing.T) {
	r := newTestRouter(t, nil)
	admin := login(t, r, services.SeedAdminEmail, services.SeedAdminPassword)
	customer := login(t, r, services.SeedCustomerEmail, services.SeedCustomerPassword)

	assert.Equal(t, http.StatusUnauthorized, doRequest(t, r, http.MethodGet, "/admin/orders", "", nil).Code)
	assert.Equal(t, http.StatusForbidden, doRequest(t, r, http.MethodGet, "/admin/orders", customer, nil).Code)

	w := doRequest(t, r, http.MethodGet, "/admin/orders", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]map[string]any](t, w), 2)

	tests := []struct {
		name         string
		orderID      string
		status       string
		expectedCode int
	}{
		{name: "legal transition", orderID: "ORD-001", status: "confirmed", expectedCode: http.StatusOK},
		{name: "illegal transition", orderID: "ORD-002", status: "completed", expectedCode: http.StatusConflict},
		{name: "unknown status", orderID: "ORD-002", status: "shipped", expectedCode: http.StatusBadRequest},
		{name: "missing order", orderID: "ORD-999", status: "confirmed", expectedCode: http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(t, r, http.MethodPatch, "/admin/orders/"+tt.orderID+"/status", admin, SetStatusRequest{Status: domain.OrderStatus(tt.status)})
			assert.Equal(t, tt.expectedCode, w.Code, w.Body.String())
		})
	}

	w = doRequest(t, r, http.MethodGet, "/admin/orders?status=confirmed", admin, nil)
	assert.Len(t, decode[[]map[string]any](t, w), 2)

	assert.Equal(t, http.StatusBadRequest, doRequest(t, r, http.MethodGet, "/admin/orders?date=yesterday", admin, nil).Code)
	assert.Equal(t, http.StatusNoContent, doRequest(t, r, http.MethodDelete, "/admin/orders/ORD-002", admin, nil).Code)
	assert.Equal(t, http.StatusNotFound, doRequest(t, r, http.MethodGet, "/admin/orders/ORD-002", admin, nil).Code)
}

func TestHandler_AdminViews(t *testing.T) {
	r := newTestRouter(t, nil)
	admin := login(t, r, services.SeedAdminEmail, services.SeedAdminPassword)

	w := doRequest(t, r, http.MethodGet, "/admin/dashboard", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	stats := decode[map[string]any](t, w)
	assert.Equal(t, float64(15), stats["menuItems"])
	assert.Equal(t, float64(1), stats["customers"])

	w = doRequest(t, r, http.MethodGet, "/admin/customers?search=john", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]map[string]any](t, w), 1)

	w = doRequest(t, r, http.MethodGet, "/admin/customers/2", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "32.38", decode[map[string]any](t, w)["averageOrder"])

	w = doRequest(t, r, http.MethodGet, "/admin/accounts", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	accounts := decode[[]map[string]any](t, w)
	require.Len(t, accounts, 2)
	assert.NotContains(t, accounts[0], "passwordHash")
}

func TestHandler_ContactAndBuilder(t *testing.T) {
	r := newTestRouter(t, nil)

	w := doRequest(t, r, http.MethodPost, "/contact", "", map[string]string{
		"name": "Jane", "email": "jane@example.com", "subject": "catering", "message": "Do you cater weddings?",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = doRequest(t, r, http.MethodPost, "/contact", "", map[string]string{"name": "Jane"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	admin := login(t, r, services.SeedAdminEmail, services.SeedAdminPassword)
	w = doRequest(t, r, http.MethodGet, "/admin/contact-messages", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]map[string]any](t, w), 1)

	w = doRequest(t, r, http.MethodGet, "/builder/options", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]map[string]any](t, w), 4)

	quote := map[string]any{"selections": map[string]string{"main": "main2", "dessert": "dessert3"}, "servingSize": 2}
	w = doRequest(t, r, http.MethodPost, "/builder/quote", "", quote)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "57.96", decode[map[string]any](t, w)["total"])

	w = doRequest(t, r, http.MethodPost, "/builder/menus", "", quote)
	assert.Equal(t, http.StatusCreated, w.Code)

	assert.Equal(t, http.StatusUnauthorized, doRequest(t, r, http.MethodGet, "/builder/menus", "", nil).Code)
	w = doRequest(t, r, http.MethodGet, "/builder/menus", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]map[string]any](t, w), 1)
}
