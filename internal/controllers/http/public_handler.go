package http

import (
	"net/http"

	"bellavista/internal/services"

	"github.com/gin-gonic/gin"
)

func (h *Handler) SubmitContact(c *gin.Context) {
	var req services.ContactInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	msg, err := h.contact.Submit(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, msg)
}

func (h *Handler) BuilderOptions(c *gin.Context) {
	c.JSON(http.StatusOK, h.builder.Options())
}

func (h *Handler) QuoteMenu(c *gin.Context) {
	var req services.CustomMenuInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	menu, err := h.builder.Quote(req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, menu)
}

func (h *Handler) SaveMenu(c *gin.Context) {
	var req services.CustomMenuInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	menu, err := h.builder.Save(c.Request.Context(), currentSession(c), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, menu)
}

func (h *Handler) ListSavedMenus(c *gin.Context) {
	menus, err := h.builder.List(c.Request.Context(), currentSession(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, menus)
}
