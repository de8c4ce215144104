package services

import (
	"context"
	"slices"
	"strings"

	"bellavista/internal/domain"

	"github.com/shopspring/decimal"
)

type CustomerSort string

const (
	SortByName   CustomerSort = "name"
	SortByEmail  CustomerSort = "email"
	SortByOrders CustomerSort = "orders"
	SortByJoined CustomerSort = "joined"
)

type CustomerQuery struct {
	Search string
	Sort   CustomerSort
}

type CustomerDetail struct {
	Customer     domain.AccountView `json:"customer"`
	OrderCount   int                `json:"orderCount"`
	TotalSpent   decimal.Decimal    `json:"totalSpent"`
	AverageOrder decimal.Decimal    `json:"averageOrder"`
	RecentOrders []domain.Order     `json:"recentOrders"`
}

// CustomerService backs the admin customer screens.
type CustomerService struct {
	accounts *AccountService
	orders   *OrderService
}

func NewCustomerService(accounts *AccountService, orders *OrderService) *CustomerService {
	return &CustomerService{accounts: accounts, orders: orders}
}

// Search filters customers by name or email and sorts them. Orders and
// joined sort descending, name and email ascending.
func (s *CustomerService) Search(ctx context.Context, actor *domain.Session, q CustomerQuery) ([]domain.AccountView, error) {
	if !actor.IsAdmin() {
		return nil, domain.ErrAccessDenied
	}

	term := strings.ToLower(strings.TrimSpace(q.Search))
	out := []domain.AccountView{}
	for _, c := range s.accounts.Customers(ctx) {
		if term == "" || strings.Contains(strings.ToLower(c.Name), term) || strings.Contains(c.Email, term) {
			out = append(out, c)
		}
	}

	switch q.Sort {
	case SortByEmail:
		slices.SortStableFunc(out, func(a, b domain.AccountView) int { return strings.Compare(a.Email, b.Email) })
	case SortByOrders:
		slices.SortStableFunc(out, func(a, b domain.AccountView) int { return len(b.Orders) - len(a.Orders) })
	case SortByJoined:
		slices.SortStableFunc(out, func(a, b domain.AccountView) int { return b.JoinDate.Compare(a.JoinDate) })
	case SortByName, "":
		slices.SortStableFunc(out, func(a, b domain.AccountView) int {
			return strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
		})
	default:
		verr := &domain.ValidationError{}
		verr.Add("sort", "must be one of: name, email, orders, joined")
		return nil, verr
	}
	return out, nil
}

func (s *CustomerService) Detail(ctx context.Context, actor *domain.Session, id int64) (*CustomerDetail, error) {
	if !actor.IsAdmin() {
		return nil, domain.ErrAccessDenied
	}
	customer, err := s.accounts.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if customer.Role != domain.RoleCustomer {
		return nil, ErrAccountNotFound
	}

	orders := s.orders.ListByCustomer(ctx, id)
	count := len(customer.Orders)
	avg := decimal.Zero
	if count > 0 {
		avg = customer.TotalSpent.Div(decimal.NewFromInt(int64(count))).Round(2)
	}
	return &CustomerDetail{
		Customer:     customer,
		OrderCount:   count,
		TotalSpent:   customer.TotalSpent,
		AverageOrder: avg,
		RecentOrders: orders[:min(recentOrdersLimit, len(orders))],
	}, nil
}
