package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/efreitasn/tradesim/internal/domain"
	"github.com/efreitasn/tradesim/internal/service"
)

// AccountHandler handles HTTP requests for account endpoints.
type AccountHandler struct {
	accountSvc *service.AccountService
	orderSvc   *service.OrderService
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(accountSvc *service.AccountService, orderSvc *service.OrderService) *AccountHandler {
	return &AccountHandler{
		accountSvc: accountSvc,
		orderSvc:   orderSvc,
	}
}

// registerAccountRequest is the JSON request body for POST /accounts.
type registerAccountRequest struct {
	AccountID      string          `json:"account_id"`
	Name           string          `json:"name"`
	Role           string          `json:"role"`
	Mode           string          `json:"mode"`
	KYCStatus      string          `json:"kyc_status"`
	InitialBalance decimal.Decimal `json:"initial_balance"`
}

// kycRequest is the JSON request body for PUT /accounts/{account_id}/kyc.
type kycRequest struct {
	KYCStatus string `json:"kyc_status"`
}

// amountRequest is the JSON request body for deposits and withdrawals.
type amountRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

// accountResponse is the JSON representation of an account.
type accountResponse struct {
	AccountID string `json:"account_id"`
	Name      string `json:"name"`
	Role      string `json:"role"`
	KYCStatus string `json:"kyc_status"`
	Mode      string `json:"mode"`
	Balance   string `json:"balance"`
	Active    bool   `json:"active"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// orderListResponse is the JSON response for GET /accounts/{account_id}/orders.
type orderListResponse struct {
	Orders []orderResponse `json:"orders"`
	Total  int             `json:"total"`
	Page   int             `json:"page"`
	Limit  int             `json:"limit"`
}

// Register handles POST /accounts.
func (h *AccountHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerAccountRequest
	if err := ParseJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	account, err := h.accountSvc.Register(service.RegisterAccountRequest{
		AccountID:      req.AccountID,
		Name:           req.Name,
		Role:           domain.Role(req.Role),
		Mode:           domain.AccountMode(req.Mode),
		KYCStatus:      domain.KYCStatus(req.KYCStatus),
		InitialBalance: req.InitialBalance,
	})
	if err != nil {
		mapDomainError(w, err)
		return
	}

	WriteJSON(w, http.StatusCreated, buildAccountResponse(account))
}

// Get handles GET /accounts/{account_id}.
func (h *AccountHandler) Get(w http.ResponseWriter, r *http.Request) {
	account, err := h.accountSvc.Get(chi.URLParam(r, "account_id"))
	if err != nil {
		mapDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, buildAccountResponse(account))
}

// SetKYC handles PUT /accounts/{account_id}/kyc.
func (h *AccountHandler) SetKYC(w http.ResponseWriter, r *http.Request) {
	var req kycRequest
	if err := ParseJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	account, err := h.accountSvc.SetKYCStatus(chi.URLParam(r, "account_id"), domain.KYCStatus(req.KYCStatus))
	if err != nil {
		mapDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, buildAccountResponse(account))
}

// Deactivate handles POST /accounts/{account_id}/deactivate.
func (h *AccountHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	account, err := h.accountSvc.Deactivate(chi.URLParam(r, "account_id"))
	if err != nil {
		mapDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, buildAccountResponse(account))
}

// Deposit handles POST /accounts/{account_id}/deposit.
func (h *AccountHandler) Deposit(w http.ResponseWriter, r *http.Request) {
	h.moveCash(w, r, h.accountSvc.Deposit)
}

// Withdraw handles POST /accounts/{account_id}/withdraw.
func (h *AccountHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	h.moveCash(w, r, h.accountSvc.Withdraw)
}

func (h *AccountHandler) moveCash(w http.ResponseWriter, r *http.Request, move func(string, decimal.Decimal) (*domain.Account, error)) {
	var req amountRequest
	if err := ParseJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	account, err := move(chi.URLParam(r, "account_id"), req.Amount)
	if err != nil {
		mapDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, buildAccountResponse(account))
}

// ListOrders handles GET /accounts/{account_id}/orders.
func (h *AccountHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "account_id")

	var statusFilter *domain.OrderStatus
	if s := r.URL.Query().Get("status"); s != "" {
		status := domain.OrderStatus(s)
		statusFilter = &status
	}

	page, err := queryInt(r, "page", 1)
	if err != nil {
		WriteError(w, http.StatusBadRequest, "validation_error", err.Error())
		return
	}
	limit, err := queryInt(r, "limit", 20)
	if err != nil {
		WriteError(w, http.StatusBadRequest, "validation_error", err.Error())
		return
	}

	orders, total, err := h.orderSvc.ListOrdersByAccount(accountID, statusFilter, page, limit)
	if err != nil {
		mapDomainError(w, err)
		return
	}

	resp := orderListResponse{
		Orders: make([]orderResponse, len(orders)),
		Total:  total,
		Page:   page,
		Limit:  limit,
	}
	for i, o := range orders {
		resp.Orders[i] = buildOrderResponse(o)
	}
	WriteJSON(w, http.StatusOK, resp)
}

func buildAccountResponse(a *domain.Account) accountResponse {
	return accountResponse{
		AccountID: a.AccountID,
		Name:      a.Name,
		Role:      string(a.Role),
		KYCStatus: string(a.KYCStatus),
		Mode:      string(a.Mode),
		Balance:   domain.FormatAmount(a.Balance),
		Active:    a.Active,
		CreatedAt: formatTime(a.CreatedAt),
		UpdatedAt: formatTime(a.UpdatedAt),
	}
}
