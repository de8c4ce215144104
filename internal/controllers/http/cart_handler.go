package http

import (
	"net/http"

	"bellavista/internal/services"

	"github.com/gin-gonic/gin"
)

func (h *Handler) NewCart(c *gin.Context) {
	c.JSON(http.StatusCreated, newCartResponse(h.carts.New()))
}

func (h *Handler) GetCart(c *gin.Context) {
	cart, ok := h.cart(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, newCartResponse(cart))
}

// AddCartItem adds one unit. Unknown items leave the cart as it was.
func (h *Handler) AddCartItem(c *gin.Context) {
	cart, ok := h.cart(c)
	if !ok {
		return
	}
	var req AddCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	cart.Add(c.Request.Context(), req.ItemID)
	c.JSON(http.StatusOK, newCartResponse(cart))
}

func (h *Handler) SetCartQuantity(c *gin.Context) {
	cart, ok := h.cart(c)
	if !ok {
		return
	}
	itemID, ok := int64Param(c, "itemId")
	if !ok {
		return
	}
	var req SetQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	cart.SetQuantity(itemID, *req.Quantity)
	c.JSON(http.StatusOK, newCartResponse(cart))
}

func (h *Handler) RemoveCartItem(c *gin.Context) {
	cart, ok := h.cart(c)
	if !ok {
		return
	}
	itemID, ok := int64Param(c, "itemId")
	if !ok {
		return
	}
	cart.Remove(itemID)
	c.JSON(http.StatusOK, newCartResponse(cart))
}

func (h *Handler) Checkout(c *gin.Context) {
	var req CheckoutRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
	}
	order, err := h.carts.Checkout(c.Request.Context(), c.Param("cartId"), currentSession(c), req.Notes)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, order)
}

func (h *Handler) cart(c *gin.Context) (*services.Cart, bool) {
	cart, err := h.carts.Get(c.Param("cartId"))
	if err != nil {
		writeError(c, err)
		return nil, false
	}
	return cart, true
}
