// Package httpapi exposes the order service over HTTP.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"ordermesh/internal/observability"
	"ordermesh/internal/orders"
)

// OrderService is the part of the orchestrator the HTTP layer needs.
type OrderService interface {
	CreateOrder(ctx context.Context, userID, cartID int64) (orders.Order, error)
	CancelOrder(ctx context.Context, orderID int64) (orders.Order, error)
	GetOrder(ctx context.Context, id int64) (orders.Order, error)
	GetOrdersByUser(ctx context.Context, userID int64) ([]orders.Order, error)
	ListOrders(ctx context.Context) ([]orders.Order, error)
}

// Handler translates HTTP requests into orchestrator calls.
type Handler struct {
	service OrderService
	metrics *observability.Metrics
	log     *slog.Logger
}

// NewHandler constructs a Handler. metrics may be nil; a nil logger falls
// back to slog.Default.
func NewHandler(service OrderService, metrics *observability.Metrics, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{service: service, metrics: metrics, log: log}
}

// CreateOrder handles POST /api/orders.
func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req CreateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}
	if req.UserID <= 0 || req.CartID <= 0 {
		writeError(w, http.StatusBadRequest, "invalid_request", "userId and cartId are required")
		return
	}

	span := h.metrics.Start("orders.Create")
	order, err := h.service.CreateOrder(r.Context(), req.UserID, req.CartID)
	span.End(err)
	if err != nil {
		h.log.ErrorContext(r.Context(), "create order failed", "user_id", req.UserID, "cart_id", req.CartID, "error", err)
		h.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, order)
}

// CancelOrder handles POST /api/orders/cancel.
func (h *Handler) CancelOrder(w http.ResponseWriter, r *http.Request) {
	var req CancelOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}
	if req.OrderID <= 0 {
		writeError(w, http.StatusBadRequest, "invalid_request", "orderId is required")
		return
	}

	span := h.metrics.Start("orders.Cancel")
	order, err := h.service.CancelOrder(r.Context(), req.OrderID)
	span.End(err)
	if err != nil {
		h.log.ErrorContext(r.Context(), "cancel order failed", "order_id", req.OrderID, "error", err)
		h.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, order)
}

// GetOrder handles GET /api/orders/{id}.
func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid_order_id", "")
		return
	}

	span := h.metrics.Start("orders.Get")
	order, err := h.service.GetOrder(r.Context(), id)
	span.End(err)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, order)
}

// GetOrdersByUser handles GET /api/orders/user/{userId}.
func (h *Handler) GetOrdersByUser(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(chi.URLParam(r, "userId"), 10, 64)
	if err != nil || userID <= 0 {
		writeError(w, http.StatusBadRequest, "invalid_user_id", "")
		return
	}

	span := h.metrics.Start("orders.ListByUser")
	list, err := h.service.GetOrdersByUser(r.Context(), userID)
	span.End(err)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	if list == nil {
		list = []orders.Order{}
	}

	writeJSON(w, http.StatusOK, list)
}

// ListOrders handles GET /api/orders.
func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	span := h.metrics.Start("orders.List")
	list, err := h.service.ListOrders(r.Context())
	span.End(err)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	if list == nil {
		list = []orders.Order{}
	}

	writeJSON(w, http.StatusOK, list)
}

func (h *Handler) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, orders.ErrCartUnavailable), errors.Is(err, orders.ErrUpstream):
		h.metrics.AddBusFailure()
		writeError(w, http.StatusBadGateway, "upstream_unavailable", err.Error())
	case errors.Is(err, orders.ErrCartEmpty):
		writeError(w, http.StatusUnprocessableEntity, "cart_empty", err.Error())
	case errors.Is(err, orders.ErrCartOwnerMismatch):
		writeError(w, http.StatusUnprocessableEntity, "cart_owner_mismatch", err.Error())
	case errors.Is(err, orders.ErrOrderNotFound):
		writeError(w, http.StatusNotFound, "order_not_found", err.Error())
	case errors.Is(err, orders.ErrAlreadyCanceled):
		writeError(w, http.StatusConflict, "order_already_canceled", err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, ErrorResponse{
		Error:   code,
		Message: msg,
	})
}
