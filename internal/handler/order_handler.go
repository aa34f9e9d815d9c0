package handler

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/Hyunju-it/goorm-travel-shopping/internal/idempotency"
	"github.com/Hyunju-it/goorm-travel-shopping/internal/model"
	"github.com/Hyunju-it/goorm-travel-shopping/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

const (
	// HeaderIdempotencyKey lets a client retry order creation safely.
	HeaderIdempotencyKey = "Idempotency-Key"
	// HeaderIdempotentReplayed marks a response served from a completed key.
	HeaderIdempotentReplayed = "Idempotent-Replayed"

	maxIdempotencyKeyLen = 128
)

// OrderHandler handles order-related HTTP requests.
type OrderHandler struct {
	service     service.OrderService
	idempotency idempotency.Store
	logger      zerolog.Logger
}

// NewOrderHandler creates a new order handler.
func NewOrderHandler(service service.OrderService, idempotency idempotency.Store, logger zerolog.Logger) *OrderHandler {
	return &OrderHandler{
		service:     service,
		idempotency: idempotency,
		logger:      logger.With().Str("handler", "order").Logger(),
	}
}

// orderStatusPatch accepts status names in any case.
type orderStatusPatch struct {
	Status        *string `json:"status"`
	PaymentStatus *string `json:"paymentStatus"`
}

// Create handles POST /api/orders requests.
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	buyer, ok := principal(w, r, h.logger)
	if !ok {
		return
	}

	var req model.CreateOrderRequest
	if derr := decodeJSON(w, r, &req); derr != nil {
		writeServiceError(w, derr, h.logger)
		return
	}

	key := strings.TrimSpace(r.Header.Get(HeaderIdempotencyKey))
	if len(key) > maxIdempotencyKeyLen {
		writeError(w, http.StatusBadRequest, model.ErrCodeValidationFailed, "Idempotency-Key is too long", h.logger)
		return
	}

	var fingerprint string
	if key != "" {
		fingerprint = requestFingerprint(&req)

		claim, err := h.idempotency.Claim(r.Context(), buyer.UserID, key, fingerprint)
		if err != nil {
			writeServiceError(w, err, h.logger)
			return
		}

		switch claim.State {
		case idempotency.StatePending:
			writeError(w, http.StatusConflict, model.ErrCodeDuplicateRequest,
				"a request with this Idempotency-Key is still being processed", h.logger)
			return
		case idempotency.StateMismatch:
			writeError(w, http.StatusUnprocessableEntity, model.ErrCodeIdempotencyKeyReused,
				"this Idempotency-Key was already used with a different request", h.logger)
			return
		case idempotency.StateCompleted:
			h.replay(w, r, buyer, claim.OrderNumber)
			return
		}
	}

	order, err := h.service.CreateOrder(r.Context(), buyer, &req)
	if err != nil {
		if key != "" {
			if rerr := h.idempotency.Release(context.WithoutCancel(r.Context()), buyer.UserID, key); rerr != nil {
				h.logger.Error().Err(rerr).Int64("user_id", buyer.UserID).Msg("failed to release idempotency key")
			}
		}
		writeServiceError(w, err, h.logger)
		return
	}

	if key != "" {
		if err := h.idempotency.Complete(context.WithoutCancel(r.Context()), buyer.UserID, key, fingerprint, order.OrderNumber); err != nil {
			h.logger.Error().Err(err).
				Int64("user_id", buyer.UserID).
				Str("order_number", order.OrderNumber).
				Msg("failed to complete idempotency key")
		}
	}

	writeJSON(w, http.StatusCreated, order)
}

// requestFingerprint hashes the decoded request, so formatting differences
// in the body do not count as a different request.
func requestFingerprint(req *model.CreateOrderRequest) string {
	data, err := json.Marshal(req)
	if err != nil {
		return ""
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func (h *OrderHandler) replay(w http.ResponseWriter, r *http.Request, buyer model.Principal, orderNumber string) {
	order, err := h.service.GetOrderDetail(r.Context(), buyer, orderNumber)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	h.logger.Info().
		Int64("user_id", buyer.UserID).
		Str("order_number", orderNumber).
		Msg("replaying idempotent order creation")

	w.Header().Set(HeaderIdempotentReplayed, "true")
	writeJSON(w, http.StatusOK, order)
}

// ListMine handles GET /api/orders requests.
func (h *OrderHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	buyer, ok := principal(w, r, h.logger)
	if !ok {
		return
	}

	orders, err := h.service.GetMyOrders(r.Context(), buyer)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, orders)
}

// GetByNumber handles GET /api/orders/{orderNumber} requests.
func (h *OrderHandler) GetByNumber(w http.ResponseWriter, r *http.Request) {
	buyer, ok := principal(w, r, h.logger)
	if !ok {
		return
	}

	order, err := h.service.GetOrderDetail(r.Context(), buyer, chi.URLParam(r, "orderNumber"))
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, order)
}

// ListAll handles GET /api/orders/admin/all requests.
func (h *OrderHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	orders, err := h.service.GetAllOrders(r.Context())
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, orders)
}

// UpdateStatus handles PATCH /api/orders/{orderNumber}/status requests.
func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var patch orderStatusPatch
	if derr := decodeJSON(w, r, &patch); derr != nil {
		writeServiceError(w, derr, h.logger)
		return
	}

	var req model.UpdateOrderStatusRequest
	if patch.Status != nil {
		status, ok := model.ParseOrderStatus(*patch.Status)
		if !ok {
			writeError(w, http.StatusBadRequest, model.ErrCodeInvalidStatus, "unknown order status: "+*patch.Status, h.logger)
			return
		}
		req.Status = &status
	}
	if patch.PaymentStatus != nil {
		status, ok := model.ParsePaymentStatus(*patch.PaymentStatus)
		if !ok {
			writeError(w, http.StatusBadRequest, model.ErrCodeInvalidStatus, "unknown payment status: "+*patch.PaymentStatus, h.logger)
			return
		}
		req.PaymentStatus = &status
	}

	if err := h.service.UpdateOrderStatus(r.Context(), chi.URLParam(r, "orderNumber"), &req); err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
