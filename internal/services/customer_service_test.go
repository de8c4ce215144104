package services

import (
	"context"
	"testing"

	"bellavista/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCustomerService_Search(t *testing.T) {
	app := newTestApp(t, nil)
	ctx := context.Background()
	in := validRegistration("alice@example.com")
	in.FullName = "Alice Zephyr"
	_, err := app.accounts.Register(ctx, in)
	require.NoError(t, err)
	admin := app.admin(t)

	tests := []struct {
		name           string
		query          CustomerQuery
		expectedEmails []string
		expectedError  bool
	}{
		{name: "default sort by name", query: CustomerQuery{}, expectedEmails: []string{"alice@example.com", SeedCustomerEmail}},
		{name: "by orders", query: CustomerQuery{Sort: SortByOrders}, expectedEmails: []string{SeedCustomerEmail, "alice@example.com"}},
		{name: "by email", query: CustomerQuery{Sort: SortByEmail}, expectedEmails: []string{"alice@example.com", SeedCustomerEmail}},
		{name: "search name", query: CustomerQuery{Search: "ZEPHYR"}, expectedEmails: []string{"alice@example.com"}},
		{name: "search email", query: CustomerQuery{Search: "customer@"}, expectedEmails: []string{SeedCustomerEmail}},
		{name: "no admins", query: CustomerQuery{Search: "admin"}, expectedEmails: []string{}},
		{name: "unknown sort", query: CustomerQuery{Sort: "age"}, expectedError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			customers, err := app.customers.Search(ctx, admin, tt.query)
			if tt.expectedError {
				assert.Equal(t, []string{"sort"}, fieldNames(t, err))
				return
			}
			require.NoError(t, err)
			emails := make([]string, 0, len(customers))
			for _, c := range customers {
				emails = append(emails, c.Email)
			}
			assert.Equal(t, tt.expectedEmails, emails)
		})
	}

	t.Run("customers cannot search", func(t *testing.T) {
		_, err := app.customers.Search(ctx, app.customer(t), CustomerQuery{})
		assert.ErrorIs(t, err, domain.ErrAccessDenied)
	})
}

func TestCustomerService_Detail(t *testing.T) {
	app := newTestApp(t, nil)
	ctx := context.Background()
	admin := app.admin(t)

	detail, err := app.customers.Detail(ctx, admin, 2)
	require.NoError(t, err)
	assert.Equal(t, SeedCustomerEmail, detail.Customer.Email)
	assert.Equal(t, 2, detail.OrderCount)
	assert.Equal(t, "64.76", detail.TotalSpent.StringFixed(2))
	assert.Equal(t, "32.38", detail.AverageOrder.StringFixed(2))
	require.Len(t, detail.RecentOrders, 2)
	assert.Equal(t, "ORD-001", detail.RecentOrders[0].ID)

	_, err = app.customers.Detail(ctx, admin, 1)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = app.customers.Detail(ctx, app.customer(t), 2)
	assert.ErrorIs(t, err, domain.ErrAccessDenied)
}
