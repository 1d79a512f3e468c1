package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/efreitasn/tradesim/internal/domain"
	"github.com/efreitasn/tradesim/internal/service"
)

// OrderHandler handles HTTP requests for order endpoints.
type OrderHandler struct {
	orderSvc *service.OrderService
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(orderSvc *service.OrderService) *OrderHandler {
	return &OrderHandler{orderSvc: orderSvc}
}

// placeOrderRequest is the JSON request body for POST /orders.
type placeOrderRequest struct {
	AccountID    string           `json:"account_id"`
	InstrumentID string           `json:"instrument_id"`
	Symbol       string           `json:"symbol"`
	Side         string           `json:"side"`
	Quantity     int64            `json:"quantity"`
	StopLoss     *decimal.Decimal `json:"stop_loss"`
	Target       *decimal.Decimal `json:"target"`
	ExpiresAt    *string          `json:"expires_at"`
	Notes        string           `json:"notes"`
}

// modifyOrderRequest is the JSON request body for PATCH /orders/{order_id}.
type modifyOrderRequest struct {
	AccountID string           `json:"account_id"`
	Price     *decimal.Decimal `json:"price"`
	Quantity  *int64           `json:"quantity"`
}

// orderResponse is the JSON representation of an order. Nullable fields
// are always present.
type orderResponse struct {
	OrderID      string  `json:"order_id"`
	AccountID    string  `json:"account_id"`
	InstrumentID string  `json:"instrument_id"`
	Symbol       string  `json:"symbol"`
	Side         string  `json:"side"`
	Quantity     int64   `json:"quantity"`
	Price        string  `json:"price"`
	Gross        string  `json:"gross"`
	StopLoss     *string `json:"stop_loss"`
	Target       *string `json:"target"`
	Status       string  `json:"status"`
	Mode         string  `json:"mode"`
	Notes        string  `json:"notes"`
	CreatedAt    string  `json:"created_at"`
	UpdatedAt    string  `json:"updated_at"`
	ExpiresAt    *string `json:"expires_at"`
	ExecutedAt   *string `json:"executed_at"`
	CancelledAt  *string `json:"cancelled_at"`
	ExpiredAt    *string `json:"expired_at"`
}

// PlaceOrder handles POST /orders. An order that could not be filled
// immediately is still created and returned as pending.
func (h *OrderHandler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	var req placeOrderRequest
	if err := ParseJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	var expiresAt *time.Time
	if req.ExpiresAt != nil {
		t, err := time.Parse(time.RFC3339, *req.ExpiresAt)
		if err != nil {
			WriteError(w, http.StatusBadRequest, "validation_error", "expires_at must be a valid RFC 3339 timestamp")
			return
		}
		expiresAt = &t
	}

	order, err := h.orderSvc.PlaceOrder(r.Context(), service.PlaceOrderRequest{
		AccountID:    req.AccountID,
		InstrumentID: req.InstrumentID,
		Symbol:       req.Symbol,
		Side:         domain.OrderSide(req.Side),
		Quantity:     req.Quantity,
		StopLoss:     req.StopLoss,
		Target:       req.Target,
		ExpiresAt:    expiresAt,
		Notes:        req.Notes,
	})
	if err != nil {
		mapDomainError(w, err)
		return
	}

	WriteJSON(w, http.StatusCreated, buildOrderResponse(order))
}

// GetOrder handles GET /orders/{order_id}.
func (h *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	order, err := h.orderSvc.GetOrder(chi.URLParam(r, "order_id"))
	if err != nil {
		mapDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, buildOrderResponse(order))
}

// ModifyOrder handles PATCH /orders/{order_id}.
func (h *OrderHandler) ModifyOrder(w http.ResponseWriter, r *http.Request) {
	var req modifyOrderRequest
	if err := ParseJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	order, err := h.orderSvc.ModifyOrder(r.Context(), chi.URLParam(r, "order_id"), service.ModifyOrderRequest{
		AccountID: req.AccountID,
		Price:     req.Price,
		Quantity:  req.Quantity,
	})
	if err != nil {
		mapDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, buildOrderResponse(order))
}

// CancelOrder handles DELETE /orders/{order_id}?account_id=.
func (h *OrderHandler) CancelOrder(w http.ResponseWriter, r *http.Request) {
	order, err := h.orderSvc.CancelOrder(r.Context(), chi.URLParam(r, "order_id"), r.URL.Query().Get("account_id"))
	if err != nil {
		mapDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, buildOrderResponse(order))
}

// ProcessExpired handles POST /orders/expire.
func (h *OrderHandler) ProcessExpired(w http.ResponseWriter, r *http.Request) {
	n := h.orderSvc.ProcessExpiredOrders(r.Context())
	WriteJSON(w, http.StatusOK, map[string]int{"expired": n})
}

// ExecutePending handles POST /orders/execute-pending.
func (h *OrderHandler) ExecutePending(w http.ResponseWriter, r *http.Request) {
	n := h.orderSvc.ExecutePending(r.Context())
	WriteJSON(w, http.StatusOK, map[string]int{"executed": n})
}

func buildOrderResponse(o *domain.Order) orderResponse {
	return orderResponse{
		OrderID:      o.OrderID,
		AccountID:    o.AccountID,
		InstrumentID: o.InstrumentID,
		Symbol:       o.Symbol,
		Side:         string(o.Side),
		Quantity:     o.Quantity,
		Price:        domain.FormatAmount(o.Price),
		Gross:        domain.FormatAmount(o.Gross()),
		StopLoss:     formatMoneyPtr(o.StopLoss),
		Target:       formatMoneyPtr(o.Target),
		Status:       string(o.Status),
		Mode:         string(o.Mode),
		Notes:        o.Notes,
		CreatedAt:    formatTime(o.CreatedAt),
		UpdatedAt:    formatTime(o.UpdatedAt),
		ExpiresAt:    formatTimePtr(o.ExpiresAt),
		ExecutedAt:   formatTimePtr(o.ExecutedAt),
		CancelledAt:  formatTimePtr(o.CancelledAt),
		ExpiredAt:    formatTimePtr(o.ExpiredAt),
	}
}
