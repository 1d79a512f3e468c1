package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/efreitasn/tradesim/internal/domain"
	"github.com/efreitasn/tradesim/internal/service"
)

// BrokerHandler handles HTTP requests for broker earnings and
// assignments.
type BrokerHandler struct {
	brokerSvc *service.BrokerService
}

// NewBrokerHandler creates a new BrokerHandler.
func NewBrokerHandler(brokerSvc *service.BrokerService) *BrokerHandler {
	return &BrokerHandler{brokerSvc: brokerSvc}
}

// assignBrokerRequest is the JSON request body for PUT /brokers/assignments/{account_id}.
type assignBrokerRequest struct {
	BrokerID string `json:"broker_id"`
}

// brokerEarningsResponse is the earnings of a single broker.
type brokerEarningsResponse struct {
	BrokerID string `json:"broker_id"`
	Name     string `json:"name"`
	Earnings string `json:"earnings"`
	Active   bool   `json:"active"`
}

// assignmentResponse is the JSON response for the assignment endpoints.
type assignmentResponse struct {
	AccountID string `json:"account_id"`
	BrokerID  string `json:"broker_id"`
}

// ListEarnings handles GET /brokers/earnings.
func (h *BrokerHandler) ListEarnings(w http.ResponseWriter, r *http.Request) {
	earnings := h.brokerSvc.ListEarnings()
	resp := make([]brokerEarningsResponse, len(earnings))
	for i, e := range earnings {
		resp[i] = buildBrokerEarningsResponse(e)
	}
	WriteJSON(w, http.StatusOK, map[string][]brokerEarningsResponse{"brokers": resp})
}

// GetEarnings handles GET /brokers/{broker_id}/earnings.
func (h *BrokerHandler) GetEarnings(w http.ResponseWriter, r *http.Request) {
	e, err := h.brokerSvc.Earnings(chi.URLParam(r, "broker_id"))
	if err != nil {
		mapDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, buildBrokerEarningsResponse(e))
}

// Assign handles PUT /brokers/assignments/{account_id}.
func (h *BrokerHandler) Assign(w http.ResponseWriter, r *http.Request) {
	var req assignBrokerRequest
	if err := ParseJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	accountID := chi.URLParam(r, "account_id")
	if err := h.brokerSvc.Assign(accountID, req.BrokerID); err != nil {
		mapDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, assignmentResponse{AccountID: accountID, BrokerID: req.BrokerID})
}

// Unassign handles DELETE /brokers/assignments/{account_id}. The account
// falls back to the default broker.
func (h *BrokerHandler) Unassign(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "account_id")
	if !h.brokerSvc.Unassign(accountID) {
		WriteError(w, http.StatusNotFound, "assignment_not_found", "no broker assignment for "+accountID)
		return
	}
	broker, _ := h.brokerSvc.BrokerFor(accountID)
	WriteJSON(w, http.StatusOK, assignmentResponse{AccountID: accountID, BrokerID: broker})
}

func buildBrokerEarningsResponse(e *service.BrokerEarnings) brokerEarningsResponse {
	return brokerEarningsResponse{
		BrokerID: e.BrokerID,
		Name:     e.Name,
		Earnings: domain.FormatAmount(e.Earnings),
		Active:   e.Active,
	}
}
