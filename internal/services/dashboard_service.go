package services

import (
	"context"
	"time"

	"bellavista/internal/domain"

	"github.com/shopspring/decimal"
)

const recentOrdersLimit = 5

type StatusBuckets struct {
	Pending    int `json:"pending"`
	InProgress int `json:"inProgress"`
	Completed  int `json:"completed"`
}

type DashboardStats struct {
	TodayOrders   int             `json:"todayOrders"`
	TodayRevenue  decimal.Decimal `json:"todayRevenue"`
	MenuItems     int             `json:"menuItems"`
	Customers     int             `json:"customers"`
	RecentOrders  []domain.Order  `json:"recentOrders"`
	StatusBuckets StatusBuckets   `json:"statusBuckets"`
}

// DashboardService aggregates the admin overview.
type DashboardService struct {
	orders   *OrderService
	catalog  *CatalogService
	accounts *AccountService
	now      func() time.Time
}

func NewDashboardService(orders *OrderService, catalog *CatalogService, accounts *AccountService) *DashboardService {
	return &DashboardService{orders: orders, catalog: catalog, accounts: accounts, now: time.Now}
}

func (s *DashboardService) Stats(ctx context.Context, actor *domain.Session) (*DashboardStats, error) {
	if !actor.IsAdmin() {
		return nil, domain.ErrAccessDenied
	}

	all, err := s.orders.List(ctx, OrderFilter{})
	if err != nil {
		return nil, err
	}
	today, err := s.orders.List(ctx, OrderFilter{Date: s.now().In(s.orders.location).Format(time.DateOnly)})
	if err != nil {
		return nil, err
	}

	stats := &DashboardStats{
		TodayOrders:  len(today),
		TodayRevenue: decimal.Zero,
		MenuItems:    s.catalog.Count(),
		Customers:    len(s.accounts.Customers(ctx)),
		RecentOrders: all[:min(recentOrdersLimit, len(all))],
	}
	for _, o := range today {
		stats.TodayRevenue = stats.TodayRevenue.Add(o.Total)
	}
	stats.StatusBuckets = bucketize(all)
	return stats, nil
}

func bucketize(orders []domain.Order) StatusBuckets {
	var b StatusBuckets
	for _, o := range orders {
		switch o.Status {
		case domain.StatusPending:
			b.Pending++
		case domain.StatusConfirmed, domain.StatusPreparing:
			b.InProgress++
		case domain.StatusCompleted:
			b.Completed++
		}
	}
	return b
}
