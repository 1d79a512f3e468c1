package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/efreitasn/tradesim/internal/domain"
	"github.com/efreitasn/tradesim/internal/service"
)

// InstrumentHandler handles HTTP requests for the instrument catalogue.
type InstrumentHandler struct {
	instrumentSvc *service.InstrumentService
}

// NewInstrumentHandler creates a new InstrumentHandler.
func NewInstrumentHandler(instrumentSvc *service.InstrumentService) *InstrumentHandler {
	return &InstrumentHandler{instrumentSvc: instrumentSvc}
}

// registerInstrumentRequest is the JSON request body for POST /instruments.
type registerInstrumentRequest struct {
	InstrumentID string          `json:"instrument_id"`
	Symbol       string          `json:"symbol"`
	Name         string          `json:"name"`
	Price        decimal.Decimal `json:"price"`
}

// priceRequest is the JSON request body for PUT /instruments/{instrument_id}/price.
type priceRequest struct {
	Price decimal.Decimal `json:"price"`
}

// instrumentResponse is the JSON representation of an instrument.
type instrumentResponse struct {
	InstrumentID string `json:"instrument_id"`
	Symbol       string `json:"symbol"`
	Name         string `json:"name"`
	CurrentPrice string `json:"current_price"`
	Active       bool   `json:"active"`
	CreatedAt    string `json:"created_at"`
	UpdatedAt    string `json:"updated_at"`
}

// Register handles POST /instruments.
func (h *InstrumentHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerInstrumentRequest
	if err := ParseJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	inst, err := h.instrumentSvc.Register(service.RegisterInstrumentRequest{
		InstrumentID: req.InstrumentID,
		Symbol:       req.Symbol,
		Name:         req.Name,
		Price:        req.Price,
	})
	if err != nil {
		mapDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, buildInstrumentResponse(inst))
}

// List handles GET /instruments?active=true.
func (h *InstrumentHandler) List(w http.ResponseWriter, r *http.Request) {
	activeOnly := r.URL.Query().Get("active") == "true"
	instruments := h.instrumentSvc.List(activeOnly)

	resp := make([]instrumentResponse, len(instruments))
	for i, inst := range instruments {
		resp[i] = buildInstrumentResponse(inst)
	}
	WriteJSON(w, http.StatusOK, map[string][]instrumentResponse{"instruments": resp})
}

// Get handles GET /instruments/{instrument_id}.
func (h *InstrumentHandler) Get(w http.ResponseWriter, r *http.Request) {
	inst, err := h.instrumentSvc.Get(chi.URLParam(r, "instrument_id"))
	if err != nil {
		mapDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, buildInstrumentResponse(inst))
}

// UpdatePrice handles PUT /instruments/{instrument_id}/price.
func (h *InstrumentHandler) UpdatePrice(w http.ResponseWriter, r *http.Request) {
	var req priceRequest
	if err := ParseJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	inst, err := h.instrumentSvc.UpdatePrice(chi.URLParam(r, "instrument_id"), req.Price)
	if err != nil {
		mapDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, buildInstrumentResponse(inst))
}

// Activate handles POST /instruments/{instrument_id}/activate.
func (h *InstrumentHandler) Activate(w http.ResponseWriter, r *http.Request) {
	h.setActive(w, r, true)
}

// Deactivate handles POST /instruments/{instrument_id}/deactivate.
func (h *InstrumentHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	h.setActive(w, r, false)
}

func (h *InstrumentHandler) setActive(w http.ResponseWriter, r *http.Request, active bool) {
	inst, err := h.instrumentSvc.SetActive(chi.URLParam(r, "instrument_id"), active)
	if err != nil {
		mapDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, buildInstrumentResponse(inst))
}

func buildInstrumentResponse(i *domain.Instrument) instrumentResponse {
	return instrumentResponse{
		InstrumentID: i.InstrumentID,
		Symbol:       i.Symbol,
		Name:         i.Name,
		CurrentPrice: domain.FormatAmount(i.CurrentPrice),
		Active:       i.Active,
		CreatedAt:    formatTime(i.CreatedAt),
		UpdatedAt:    formatTime(i.UpdatedAt),
	}
}
