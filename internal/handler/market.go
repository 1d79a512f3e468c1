package handler

import (
	"net/http"
	"time"

	"github.com/efreitasn/tradesim/internal/engine"
	"github.com/efreitasn/tradesim/internal/service"
)

// MarketHandler handles HTTP requests for the market clock.
type MarketHandler struct {
	marketSvc *service.MarketService
}

// NewMarketHandler creates a new MarketHandler.
func NewMarketHandler(marketSvc *service.MarketService) *MarketHandler {
	return &MarketHandler{marketSvc: marketSvc}
}

// marketStatusResponse is the JSON response for the market endpoints.
type marketStatusResponse struct {
	IsOpen      bool     `json:"is_open"`
	Status      string   `json:"status"`
	OpenTime    string   `json:"open_time"`
	CloseTime   string   `json:"close_time"`
	CurrentTime string   `json:"current_time"`
	TradingDays []string `json:"trading_days"`
	Override    string   `json:"override"`
	Message     string   `json:"message"`
}

// Status handles GET /market/status.
func (h *MarketHandler) Status(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, buildMarketStatusResponse(h.marketSvc.Status()))
}

// Open handles POST /market/open.
func (h *MarketHandler) Open(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, buildMarketStatusResponse(h.marketSvc.ForceOpen()))
}

// Close handles POST /market/close.
func (h *MarketHandler) Close(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, buildMarketStatusResponse(h.marketSvc.ForceClose()))
}

// Reset handles POST /market/reset.
func (h *MarketHandler) Reset(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, buildMarketStatusResponse(h.marketSvc.Reset()))
}

func buildMarketStatusResponse(s engine.MarketStatus) marketStatusResponse {
	return marketStatusResponse{
		IsOpen:      s.IsOpen,
		Status:      s.Status,
		OpenTime:    s.OpenTime,
		CloseTime:   s.CloseTime,
		CurrentTime: s.CurrentTime.Format(time.RFC3339),
		TradingDays: s.TradingDays,
		Override:    string(s.Override),
		Message:     s.Message,
	}
}
