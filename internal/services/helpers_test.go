package services

import (
	"context"
	"testing"
	"time"

	"bellavista/internal/domain"
	rabbit "bellavista/internal/infra/rabbitmq"
	"bellavista/internal/repository"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const (
	TestSecret   = "test-secret"
	TestPassword = "secret123"
	TestPhone    = "5551234567"
)

// testClock is a fixed point in the middle of a day so "today" and
// "yesterday" filters never straddle midnight.
var testClock = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

type testApp struct {
	store     repository.Store
	sessions  *SessionManager
	accounts  *AccountService
	catalog   *CatalogService
	orders    *OrderService
	carts     *CartService
	builder   *BuilderService
	contact   *ContactService
	dashboard *DashboardService
	customers *CustomerService
}

func newTestApp(t *testing.T, pub rabbit.PublisherInterface) *testApp {
	t.Helper()
	ctx := context.Background()
	now := func() time.Time { return testClock }

	store := repository.NewMemoryStore()
	app := &testApp{store: store}

	app.sessions = NewSessionManager(store, TestSecret, time.Hour)
	app.sessions.now = now
	app.accounts = NewAccountService(store, app.sessions)
	app.accounts.SetHashCost(bcrypt.MinCost)
	app.accounts.now = now
	app.catalog = NewCatalogService(store)
	app.catalog.now = now
	app.orders = NewOrderService(store, app.accounts, pub)
	app.orders.SetLocation(time.UTC)
	app.orders.now = now
	app.carts = NewCartService(app.catalog, app.orders, time.Hour)
	app.builder = NewBuilderService(store)
	app.builder.now = now
	app.contact = NewContactService(store)
	app.contact.now = now
	app.dashboard = NewDashboardService(app.orders, app.catalog, app.accounts)
	app.dashboard.now = now
	app.customers = NewCustomerService(app.accounts, app.orders)

	require.NoError(t, app.sessions.Load(ctx))
	require.NoError(t, app.accounts.Load(ctx))
	require.NoError(t, app.catalog.Load(ctx))
	require.NoError(t, app.orders.Load(ctx))
	require.NoError(t, app.builder.Load(ctx))
	require.NoError(t, app.contact.Load(ctx))

	t.Cleanup(app.orders.Wait)
	return app
}

func (a *testApp) login(t *testing.T, email, password string) *domain.Session {
	t.Helper()
	session, err := a.accounts.Authenticate(context.Background(), email, password)
	require.NoError(t, err)
	return session
}

func (a *testApp) admin(t *testing.T) *domain.Session {
	return a.login(t, SeedAdminEmail, SeedAdminPassword)
}

func (a *testApp) customer(t *testing.T) *domain.Session {
	return a.login(t, SeedCustomerEmail, SeedCustomerPassword)
}

func validRegistration(email string) RegisterInput {
	return RegisterInput{
		FullName:        "Jane Doe",
		Email:           email,
		Phone:           TestPhone,
		Password:        TestPassword,
		ConfirmPassword: TestPassword,
	}
}

func fieldNames(t *testing.T, err error) []string {
	t.Helper()
	verr, ok := err.(*domain.ValidationError)
	require.True(t, ok, "expected *domain.ValidationError, got %T", err)
	names := make([]string, 0, len(verr.Fields))
	for _, f := range verr.Fields {
		names = append(names, f.Field)
	}
	return names
}
