package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/efreitasn/tradesim/internal/domain"
	"github.com/efreitasn/tradesim/internal/service"
)

// PortfolioHandler handles HTTP requests for positions, portfolio
// summaries and transaction history.
type PortfolioHandler struct {
	portfolioSvc   *service.PortfolioService
	transactionSvc *service.TransactionService
}

// NewPortfolioHandler creates a new PortfolioHandler.
func NewPortfolioHandler(portfolioSvc *service.PortfolioService, transactionSvc *service.TransactionService) *PortfolioHandler {
	return &PortfolioHandler{
		portfolioSvc:   portfolioSvc,
		transactionSvc: transactionSvc,
	}
}

// positionResponse is the JSON representation of a position.
type positionResponse struct {
	AccountID         string `json:"account_id"`
	InstrumentID      string `json:"instrument_id"`
	Symbol            string `json:"symbol"`
	Quantity          int64  `json:"quantity"`
	AverageCost       string `json:"average_cost"`
	TotalCostBasis    string `json:"total_cost_basis"`
	CurrentPrice      string `json:"current_price"`
	CurrentValue      string `json:"current_value"`
	ProfitLoss        string `json:"profit_loss"`
	ProfitLossPercent string `json:"profit_loss_percent"`
	UpdatedAt         string `json:"updated_at"`
}

// portfolioResponse is the JSON response for GET /accounts/{account_id}/portfolio.
type portfolioResponse struct {
	AccountID        string             `json:"account_id"`
	TotalCost        string             `json:"total_cost"`
	CurrentValue     string             `json:"current_value"`
	TotalPnL         string             `json:"total_pnl"`
	TotalPnLPercent  string             `json:"total_pnl_percent"`
	AvailableBalance string             `json:"available_balance"`
	Positions        []positionResponse `json:"positions"`
}

// ledgerEntryResponse is a single entry in the transaction history.
type ledgerEntryResponse struct {
	EntryID      string  `json:"entry_id"`
	AccountID    string  `json:"account_id"`
	InstrumentID string  `json:"instrument_id"`
	Symbol       string  `json:"symbol"`
	OrderID      *string `json:"order_id"`
	Side         string  `json:"side"`
	Quantity     int64   `json:"quantity"`
	Price        string  `json:"price"`
	Gross        string  `json:"gross"`
	Commission   string  `json:"commission"`
	Tax          string  `json:"tax"`
	Net          string  `json:"net"`
	Mode         string  `json:"mode"`
	ExecutedAt   string  `json:"executed_at"`
}

// GetPortfolio handles GET /accounts/{account_id}/portfolio.
func (h *PortfolioHandler) GetPortfolio(w http.ResponseWriter, r *http.Request) {
	summary, err := h.portfolioSvc.GetPortfolioSummary(chi.URLParam(r, "account_id"))
	if err != nil {
		mapDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, buildPortfolioResponse(summary))
}

// Recalculate handles POST /accounts/{account_id}/portfolio/recalculate.
func (h *PortfolioHandler) Recalculate(w http.ResponseWriter, r *http.Request) {
	summary, err := h.portfolioSvc.Recalculate(chi.URLParam(r, "account_id"))
	if err != nil {
		mapDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, buildPortfolioResponse(summary))
}

// TopHoldings handles GET /accounts/{account_id}/portfolio/top.
func (h *PortfolioHandler) TopHoldings(w http.ResponseWriter, r *http.Request) {
	h.ranked(w, r, h.portfolioSvc.TopHoldings)
}

// Gainers handles GET /accounts/{account_id}/portfolio/gainers.
func (h *PortfolioHandler) Gainers(w http.ResponseWriter, r *http.Request) {
	h.ranked(w, r, h.portfolioSvc.Gainers)
}

// Losers handles GET /accounts/{account_id}/portfolio/losers.
func (h *PortfolioHandler) Losers(w http.ResponseWriter, r *http.Request) {
	h.ranked(w, r, h.portfolioSvc.Losers)
}

func (h *PortfolioHandler) ranked(w http.ResponseWriter, r *http.Request, rank func(string, int) ([]*domain.Position, error)) {
	limit, err := queryInt(r, "limit", 5)
	if err != nil {
		WriteError(w, http.StatusBadRequest, "validation_error", err.Error())
		return
	}
	if limit < 1 || limit > 100 {
		WriteError(w, http.StatusBadRequest, "validation_error", "limit must be between 1 and 100")
		return
	}

	positions, err := rank(chi.URLParam(r, "account_id"), limit)
	if err != nil {
		mapDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string][]positionResponse{"positions": buildPositionResponses(positions)})
}

// GetPosition handles GET /accounts/{account_id}/positions/{instrument_id}.
func (h *PortfolioHandler) GetPosition(w http.ResponseWriter, r *http.Request) {
	p, err := h.portfolioSvc.GetPosition(chi.URLParam(r, "account_id"), chi.URLParam(r, "instrument_id"))
	if err != nil {
		mapDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, buildPositionResponse(p))
}

// ListTransactions handles GET /accounts/{account_id}/transactions.
func (h *PortfolioHandler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := domain.LedgerFilter{
		InstrumentID: q.Get("instrument_id"),
		Side:         domain.OrderSide(q.Get("side")),
	}
	var err error
	if filter.From, err = queryTime(r, "from"); err != nil {
		WriteError(w, http.StatusBadRequest, "validation_error", err.Error())
		return
	}
	if filter.To, err = queryTime(r, "to"); err != nil {
		WriteError(w, http.StatusBadRequest, "validation_error", err.Error())
		return
	}

	entries, err := h.transactionSvc.History(r.Context(), chi.URLParam(r, "account_id"), filter)
	if err != nil {
		mapDomainError(w, err)
		return
	}

	resp := make([]ledgerEntryResponse, len(entries))
	for i, e := range entries {
		resp[i] = buildLedgerEntryResponse(e)
	}
	WriteJSON(w, http.StatusOK, map[string][]ledgerEntryResponse{"transactions": resp})
}

func buildPortfolioResponse(s domain.PortfolioSummary) portfolioResponse {
	return portfolioResponse{
		AccountID:        s.AccountID,
		TotalCost:        domain.FormatAmount(s.TotalCost),
		CurrentValue:     domain.FormatAmount(s.CurrentValue),
		TotalPnL:         domain.FormatAmount(s.TotalPnL),
		TotalPnLPercent:  domain.FormatAmount(s.TotalPnLPercent),
		AvailableBalance: domain.FormatAmount(s.AvailableBalance),
		Positions:        buildPositionResponses(s.Positions),
	}
}

func buildPositionResponses(ps []*domain.Position) []positionResponse {
	result := make([]positionResponse, len(ps))
	for i, p := range ps {
		result[i] = buildPositionResponse(p)
	}
	return result
}

func buildPositionResponse(p *domain.Position) positionResponse {
	return positionResponse{
		AccountID:         p.AccountID,
		InstrumentID:      p.InstrumentID,
		Symbol:            p.Symbol,
		Quantity:          p.Quantity,
		AverageCost:       domain.FormatAmount(p.AverageCost),
		TotalCostBasis:    domain.FormatAmount(p.TotalCostBasis),
		CurrentPrice:      domain.FormatAmount(p.CurrentPrice),
		CurrentValue:      domain.FormatAmount(p.CurrentValue),
		ProfitLoss:        domain.FormatAmount(p.ProfitLoss),
		ProfitLossPercent: domain.FormatAmount(p.ProfitLossPercent),
		UpdatedAt:         formatTime(p.UpdatedAt),
	}
}

func buildLedgerEntryResponse(e domain.LedgerEntry) ledgerEntryResponse {
	var orderID *string
	if e.OrderID != "" {
		id := e.OrderID
		orderID = &id
	}
	return ledgerEntryResponse{
		EntryID:      e.EntryID,
		AccountID:    e.AccountID,
		InstrumentID: e.InstrumentID,
		Symbol:       e.Symbol,
		OrderID:      orderID,
		Side:         string(e.Side),
		Quantity:     e.Quantity,
		Price:        domain.FormatAmount(e.Price),
		Gross:        domain.FormatAmount(e.Gross),
		Commission:   domain.FormatAmount(e.Commission),
		Tax:          domain.FormatAmount(e.Tax),
		Net:          domain.FormatAmount(e.Net),
		Mode:         string(e.Mode),
		ExecutedAt:   formatTime(e.ExecutedAt),
	}
}
