package domain

import "time"

const (
	EventOrderCreated       = "order.created"
	EventOrderStatusChanged = "order.status_changed"
	EventOrderDeleted       = "order.deleted"
)

type OrderCreatedEvent struct {
	OrderID    string    `json:"orderId"`
	CustomerID int64     `json:"customerId"`
	Total      string    `json:"total"`
	ItemCount  int       `json:"itemCount"`
	CreatedAt  time.Time `json:"createdAt"`
}

type OrderStatusChangedEvent struct {
	OrderID   string      `json:"orderId"`
	From      OrderStatus `json:"from"`
	To        OrderStatus `json:"to"`
	ChangedAt time.Time   `json:"changedAt"`
}

type OrderDeletedEvent struct {
	OrderID   string    `json:"orderId"`
	DeletedAt time.Time `json:"deletedAt"`
}
