package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"bellavista/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
)

const (
	menuCacheKey = "menu:grouped"
	menuCacheTTL = 30 * time.Second
)

type Handler struct {
	sessions  *services.SessionManager
	accounts  *services.AccountService
	catalog   *services.CatalogService
	orders    *services.OrderService
	carts     *services.CartService
	dashboard *services.DashboardService
	customers *services.CustomerService
	builder   *services.BuilderService
	contact   *services.ContactService
	rdb       *redis.Client
}

type Services struct {
	Sessions  *services.SessionManager
	Accounts  *services.AccountService
	Catalog   *services.CatalogService
	Orders    *services.OrderService
	Carts     *services.CartService
	Dashboard *services.DashboardService
	Customers *services.CustomerService
	Builder   *services.BuilderService
	Contact   *services.ContactService
}

// NewHandler builds the HTTP surface. rdb is optional; when set the grouped
// public menu is cached in redis.
func NewHandler(s Services, rdb *redis.Client) *Handler {
	return &Handler{
		sessions:  s.Sessions,
		accounts:  s.Accounts,
		catalog:   s.Catalog,
		orders:    s.Orders,
		carts:     s.Carts,
		dashboard: s.Dashboard,
		customers: s.Customers,
		builder:   s.Builder,
		contact:   s.Contact,
		rdb:       rdb,
	}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.Use(Authenticate(h.sessions))

	r.GET("/menu", h.ListMenu)
	r.GET("/menu/:id", h.GetMenuItem)

	auth := r.Group("/auth")
	auth.POST("/register", h.Register)
	auth.POST("/login", h.Login)
	me := auth.Group("", RequireSession())
	me.POST("/logout", h.Logout)
	me.GET("/me", h.Me)
	me.PATCH("/me", h.UpdateMe)
	me.GET("/me/orders", h.MyOrders)

	r.POST("/contact", h.SubmitContact)

	r.GET("/builder/options", h.BuilderOptions)
	r.POST("/builder/quote", h.QuoteMenu)
	r.POST("/builder/menus", h.SaveMenu)
	r.GET("/builder/menus", RequireSession(), h.ListSavedMenus)

	r.POST("/carts", h.NewCart)
	r.GET("/carts/:cartId", h.GetCart)
	r.POST("/carts/:cartId/items", h.AddCartItem)
	r.PUT("/carts/:cartId/items/:itemId", h.SetCartQuantity)
	r.DELETE("/carts/:cartId/items/:itemId", h.RemoveCartItem)
	r.POST("/carts/:cartId/checkout", RequireSession(), h.Checkout)

	admin := r.Group("/admin", RequireAdmin())
	admin.POST("/menu", h.CreateMenuItem)
	admin.PATCH("/menu/:id", h.UpdateMenuItem)
	admin.DELETE("/menu/:id", h.DeleteMenuItem)
	admin.GET("/orders", h.ListOrders)
	admin.GET("/orders/:orderId", h.GetOrder)
	admin.PATCH("/orders/:orderId/status", h.SetOrderStatus)
	admin.DELETE("/orders/:orderId", h.DeleteOrder)
	admin.GET("/customers", h.ListCustomers)
	admin.GET("/customers/:id", h.GetCustomer)
	admin.GET("/accounts", h.ListAccounts)
	admin.GET("/dashboard", h.Dashboard)
	admin.GET("/contact-messages", h.ListContactMessages)
}

func (h *Handler) ListMenu(c *gin.Context) {
	filter := services.MenuFilter{Category: c.Query("category"), Search: c.Query("search")}
	if filter.Search != "" || (filter.Category != "" && filter.Category != "all") {
		c.JSON(http.StatusOK, h.catalog.List(c.Request.Context(), filter))
		return
	}

	ctx := c.Request.Context()
	if h.rdb != nil {
		if b, err := h.rdb.Get(ctx, menuCacheKey).Bytes(); err == nil {
			c.Data(http.StatusOK, "application/json; charset=utf-8", b)
			return
		}
	}

	groups := h.catalog.Grouped(ctx)
	if h.rdb != nil {
		if data, err := json.Marshal(groups); err == nil {
			if err := h.rdb.Set(ctx, menuCacheKey, data, menuCacheTTL).Err(); err != nil {
				slog.Warn("menu cache write failed", "error", err)
			}
		}
	}
	c.JSON(http.StatusOK, groups)
}

func (h *Handler) GetMenuItem(c *gin.Context) {
	id, ok := int64Param(c, "id")
	if !ok {
		return
	}
	item, err := h.catalog.Get(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *Handler) CreateMenuItem(c *gin.Context) {
	var req services.MenuItemInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	item, err := h.catalog.Create(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	h.invalidateMenu(c.Request.Context())
	c.JSON(http.StatusCreated, item)
}

func (h *Handler) UpdateMenuItem(c *gin.Context) {
	id, ok := int64Param(c, "id")
	if !ok {
		return
	}
	var req services.MenuItemPatch
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	item, err := h.catalog.Update(c.Request.Context(), id, req)
	if err != nil {
		writeError(c, err)
		return
	}
	h.invalidateMenu(c.Request.Context())
	c.JSON(http.StatusOK, item)
}

func (h *Handler) DeleteMenuItem(c *gin.Context) {
	id, ok := int64Param(c, "id")
	if !ok {
		return
	}
	if err := h.catalog.Delete(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}
	h.invalidateMenu(c.Request.Context())
	c.Status(http.StatusNoContent)
}

func (h *Handler) invalidateMenu(ctx context.Context) {
	if h.rdb == nil {
		return
	}
	if err := h.rdb.Del(ctx, menuCacheKey).Err(); err != nil {
		slog.Warn("menu cache invalidation failed", "error", err)
	}
}

func int64Param(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: name + " must be an integer"})
		return 0, false
	}
	return id, true
}
