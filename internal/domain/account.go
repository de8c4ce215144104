package domain

import (
	"slices"
	"time"

	"github.com/shopspring/decimal"
)

type Role string

const (
	RoleAdmin    Role = "admin"
	RoleCustomer Role = "customer"
)

type Account struct {
	ID           int64           `json:"id"`
	Name         string          `json:"name"`
	Email        string          `json:"email"`
	PasswordHash string          `json:"passwordHash"`
	Role         Role            `json:"role"`
	Phone        string          `json:"phone"`
	JoinDate     time.Time       `json:"joinDate"`
	Orders       []string        `json:"orders"`
	TotalSpent   decimal.Decimal `json:"totalSpent"`
}

func (a Account) Clone() Account {
	a.Orders = slices.Clone(a.Orders)
	return a
}

// AccountView is an account without password material. It is what sessions
// and admin listings carry.
type AccountView struct {
	ID         int64           `json:"id"`
	Name       string          `json:"name"`
	Email      string          `json:"email"`
	Role       Role            `json:"role"`
	Phone      string          `json:"phone"`
	JoinDate   time.Time       `json:"joinDate"`
	Orders     []string        `json:"orders"`
	TotalSpent decimal.Decimal `json:"totalSpent"`
}

func (a Account) View() AccountView {
	orders := make([]string, len(a.Orders))
	copy(orders, a.Orders)
	return AccountView{
		ID:         a.ID,
		Name:       a.Name,
		Email:      a.Email,
		Role:       a.Role,
		Phone:      a.Phone,
		JoinDate:   a.JoinDate,
		Orders:     orders,
		TotalSpent: a.TotalSpent,
	}
}

func (a Account) IsAdmin() bool { return a.Role == RoleAdmin }

// Session is the authenticated acting user passed explicitly to operations
// that need one.
type Session struct {
	ID       string      `json:"id"`
	Token    string      `json:"token,omitempty"`
	Account  AccountView `json:"account"`
	IssuedAt time.Time   `json:"issuedAt"`
}

func (s *Session) IsAdmin() bool {
	return s != nil && s.Account.Role == RoleAdmin
}
