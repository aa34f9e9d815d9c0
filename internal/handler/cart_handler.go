package handler

import (
	"net/http"

	"github.com/Hyunju-it/goorm-travel-shopping/internal/model"
	"github.com/Hyunju-it/goorm-travel-shopping/internal/service"

	"github.com/rs/zerolog"
)

// CartHandler handles cart HTTP requests for the authenticated user.
type CartHandler struct {
	service service.CartService
	logger  zerolog.Logger
}

// NewCartHandler creates a new cart handler.
func NewCartHandler(service service.CartService, logger zerolog.Logger) *CartHandler {
	return &CartHandler{
		service: service,
		logger:  logger.With().Str("handler", "cart").Logger(),
	}
}

// Get handles GET /api/cart requests.
func (h *CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, ok := principal(w, r, h.logger)
	if !ok {
		return
	}

	cart, err := h.service.GetCart(r.Context(), user)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, cart)
}

// AddItem handles POST /api/cart/items requests.
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	user, ok := principal(w, r, h.logger)
	if !ok {
		return
	}

	var req model.AddCartItemRequest
	if derr := decodeJSON(w, r, &req); derr != nil {
		writeServiceError(w, derr, h.logger)
		return
	}

	cart, err := h.service.AddItem(r.Context(), user, &req)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, cart)
}

// UpdateItem handles PUT /api/cart/items/{productId} requests.
func (h *CartHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	user, ok := principal(w, r, h.logger)
	if !ok {
		return
	}

	productID, err := int64Param(r, "productId")
	if err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeValidationFailed, err.Error(), h.logger)
		return
	}

	var req model.UpdateCartItemRequest
	if derr := decodeJSON(w, r, &req); derr != nil {
		writeServiceError(w, derr, h.logger)
		return
	}

	cart, err := h.service.UpdateItem(r.Context(), user, productID, &req)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, cart)
}

// RemoveItem handles DELETE /api/cart/items/{productId} requests.
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	user, ok := principal(w, r, h.logger)
	if !ok {
		return
	}

	productID, err := int64Param(r, "productId")
	if err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeValidationFailed, err.Error(), h.logger)
		return
	}

	if err := h.service.RemoveItem(r.Context(), user, productID); err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Clear handles DELETE /api/cart requests.
func (h *CartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	user, ok := principal(w, r, h.logger)
	if !ok {
		return
	}

	if err := h.service.ClearCart(r.Context(), user); err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
