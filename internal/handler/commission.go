package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/efreitasn/tradesim/internal/service"
)

// CommissionHandler handles HTTP requests for commission rate overrides.
type CommissionHandler struct {
	commissionSvc *service.CommissionService
}

// NewCommissionHandler creates a new CommissionHandler.
func NewCommissionHandler(commissionSvc *service.CommissionService) *CommissionHandler {
	return &CommissionHandler{commissionSvc: commissionSvc}
}

// rateRequest is the JSON request body for PUT /commission-rates/{symbol}.
type rateRequest struct {
	Rate decimal.Decimal `json:"rate"`
}

// rateResponse is a single commission rate. Rates keep their full
// precision.
type rateResponse struct {
	Symbol string `json:"symbol"`
	Rate   string `json:"rate"`
}

// rateListResponse is the JSON response for GET /commission-rates.
type rateListResponse struct {
	DefaultRate string         `json:"default_rate"`
	Rates       []rateResponse `json:"rates"`
}

// List handles GET /commission-rates.
func (h *CommissionHandler) List(w http.ResponseWriter, r *http.Request) {
	rates := h.commissionSvc.ListRates()
	resp := rateListResponse{
		DefaultRate: h.commissionSvc.DefaultRate().String(),
		Rates:       make([]rateResponse, len(rates)),
	}
	for i, rate := range rates {
		resp.Rates[i] = rateResponse{Symbol: rate.Symbol, Rate: rate.Rate.String()}
	}
	WriteJSON(w, http.StatusOK, resp)
}

// Set handles PUT /commission-rates/{symbol}. It responds 201 when the
// override is new and 200 when it replaced one.
func (h *CommissionHandler) Set(w http.ResponseWriter, r *http.Request) {
	var req rateRequest
	if err := ParseJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	symbol := chi.URLParam(r, "symbol")
	created, err := h.commissionSvc.SetRate(symbol, req.Rate)
	if err != nil {
		mapDomainError(w, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	WriteJSON(w, status, rateResponse{Symbol: symbol, Rate: req.Rate.String()})
}

// Remove handles DELETE /commission-rates/{symbol}.
func (h *CommissionHandler) Remove(w http.ResponseWriter, r *http.Request) {
	if err := h.commissionSvc.RemoveRate(chi.URLParam(r, "symbol")); err != nil {
		mapDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
