package domain

import (
	"fmt"
	"slices"
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	StatusPending   OrderStatus = "pending"
	StatusConfirmed OrderStatus = "confirmed"
	StatusPreparing OrderStatus = "preparing"
	StatusReady     OrderStatus = "ready"
	StatusCompleted OrderStatus = "completed"
	StatusCancelled OrderStatus = "cancelled"
)

// StatusAll disables status filtering in order listings.
const StatusAll = "all"

var orderTransitions = map[OrderStatus][]OrderStatus{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusPreparing},
	StatusPreparing: {StatusReady},
	StatusReady:     {StatusCompleted},
}

func (s OrderStatus) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusPreparing, StatusReady, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// CanTransitionTo reports whether the order lifecycle allows moving from s to next.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Next lists the statuses reachable from s in one step.
func (s OrderStatus) Next() []OrderStatus {
	out := make([]OrderStatus, len(orderTransitions[s]))
	copy(out, orderTransitions[s])
	return out
}

type OrderLine struct {
	ItemID   int64           `json:"itemId"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity"`
}

func (l OrderLine) Amount() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

type Order struct {
	ID            string          `json:"id"`
	CustomerID    int64           `json:"customerId"`
	CustomerName  string          `json:"customerName"`
	CustomerEmail string          `json:"customerEmail"`
	Items         []OrderLine     `json:"items"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	Tax           decimal.Decimal `json:"tax"`
	Total         decimal.Decimal `json:"total"`
	Status        OrderStatus     `json:"status"`
	OrderDate     time.Time       `json:"orderDate"`
	Notes         string          `json:"notes"`
}

func (o Order) Clone() Order {
	o.Items = slices.Clone(o.Items)
	return o
}

// CustomerRef is the denormalized customer snapshot embedded into an order.
type CustomerRef struct {
	ID    int64
	Name  string
	Email string
}

// FormatOrderID renders a ledger sequence number as ORD-001, ORD-002, ...
func FormatOrderID(seq int64) string {
	return fmt.Sprintf("ORD-%03d", seq)
}

// ParseOrderSeq extracts the sequence number from an id built by FormatOrderID.
func ParseOrderSeq(id string) (int64, bool) {
	var n int64
	if _, err := fmt.Sscanf(id, "ORD-%d", &n); err != nil {
		return 0, false
	}
	return n, true
}
