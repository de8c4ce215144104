package http

import (
	"bellavista/internal/domain"
	"bellavista/internal/services"
)

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type AddCartItemRequest struct {
	ItemID int64 `json:"itemId" binding:"required"`
}

type SetQuantityRequest struct {
	Quantity *int `json:"quantity" binding:"required"`
}

type CheckoutRequest struct {
	Notes string `json:"notes" binding:"max=500"`
}

type SetStatusRequest struct {
	Status domain.OrderStatus `json:"status" binding:"required"`
}

type CartResponse struct {
	ID        string            `json:"id"`
	Lines     []domain.CartLine `json:"lines"`
	ItemCount int               `json:"itemCount"`
	Totals    domain.Totals     `json:"totals"`
}

func newCartResponse(cart *services.Cart) CartResponse {
	return CartResponse{
		ID:        cart.ID,
		Lines:     cart.Lines(),
		ItemCount: cart.ItemCount(),
		Totals:    cart.Totals(),
	}
}

type ErrorResponse struct {
	Error  string              `json:"error"`
	Fields []domain.FieldError `json:"fields,omitempty"`
}
