package service

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/efreitasn/tradesim/internal/domain"
	"github.com/efreitasn/tradesim/internal/engine"
	"github.com/efreitasn/tradesim/internal/store"
)

var accountIDRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]{1,64}$`)

const maxNameLength = 100

// RegisterAccountRequest represents the input for account registration.
type RegisterAccountRequest struct {
	AccountID      string // generated when empty
	Name           string
	Role           domain.Role        // defaults to RoleRegularUser
	Mode           domain.AccountMode // required
	KYCStatus      domain.KYCStatus   // defaults to KYCPending
	InitialBalance decimal.Decimal
}

// AccountService handles account registration, KYC updates, deactivation
// and cash movements outside of fills.
type AccountService struct {
	accounts *store.AccountStore
	ledger   *engine.AccountLedger
	engine   *engine.OrderEngine
	now      func() time.Time
}

// NewAccountService creates a new AccountService. Deposits and withdrawals
// take the account's serialization token from eng.
func NewAccountService(accounts *store.AccountStore, ledger *engine.AccountLedger, eng *engine.OrderEngine, now func() time.Time) *AccountService {
	if now == nil {
		now = time.Now
	}
	return &AccountService{
		accounts: accounts,
		ledger:   ledger,
		engine:   eng,
		now:      now,
	}
}

// Register validates the request and creates an active account.
func (s *AccountService) Register(req RegisterAccountRequest) (*domain.Account, error) {
	if req.AccountID == "" {
		req.AccountID = uuid.NewString()
	}
	if !accountIDRegex.MatchString(req.AccountID) {
		return nil, &domain.ValidationError{
			Message: "account_id must match ^[a-zA-Z0-9_-]{1,64}$",
		}
	}

	name := strings.TrimSpace(req.Name)
	if name == "" || len(name) > maxNameLength {
		return nil, &domain.ValidationError{
			Message: fmt.Sprintf("name must be between 1 and %d characters", maxNameLength),
		}
	}

	if req.Role == "" {
		req.Role = domain.RoleRegularUser
	}
	if !domain.ValidRole(req.Role) {
		return nil, &domain.ValidationError{
			Message: "role must be one of: user, broker, admin",
		}
	}

	if !domain.ValidAccountMode(req.Mode) {
		return nil, &domain.ValidationError{
			Message: "mode must be one of: virtual, real",
		}
	}

	if req.KYCStatus == "" {
		req.KYCStatus = domain.KYCPending
	}
	if !domain.ValidKYCStatus(req.KYCStatus) {
		return nil, &domain.ValidationError{
			Message: "kyc_status must be one of: pending, approved, rejected, under_review",
		}
	}

	if err := domain.CheckAmount(req.InitialBalance); err != nil {
		return nil, &domain.ValidationError{Message: "initial_balance: " + err.Error()}
	}

	now := s.now()
	account := &domain.Account{
		AccountID: req.AccountID,
		Name:      name,
		Role:      req.Role,
		KYCStatus: req.KYCStatus,
		Mode:      req.Mode,
		Balance:   req.InitialBalance,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.accounts.Create(account); err != nil {
		return nil, err
	}
	return s.accounts.Get(account.AccountID)
}

// Get returns an account by ID.
func (s *AccountService) Get(accountID string) (*domain.Account, error) {
	return s.accounts.Get(accountID)
}

// SetKYCStatus records the outcome of a KYC review.
func (s *AccountService) SetKYCStatus(accountID string, status domain.KYCStatus) (*domain.Account, error) {
	if !domain.ValidKYCStatus(status) {
		return nil, &domain.ValidationError{
			Message: "kyc_status must be one of: pending, approved, rejected, under_review",
		}
	}
	return s.update(accountID, func(a *domain.Account) error {
		a.KYCStatus = status
		return nil
	})
}

// Deactivate marks an account inactive. Accounts are never deleted.
func (s *AccountService) Deactivate(accountID string) (*domain.Account, error) {
	return s.update(accountID, func(a *domain.Account) error {
		a.Active = false
		return nil
	})
}

// Deposit credits amount to an active account.
func (s *AccountService) Deposit(accountID string, amount decimal.Decimal) (*domain.Account, error) {
	return s.move(accountID, amount, s.ledger.Credit)
}

// Withdraw debits amount from an active account. It fails with
// domain.ErrInsufficientFunds rather than overdrawing.
func (s *AccountService) Withdraw(accountID string, amount decimal.Decimal) (*domain.Account, error) {
	return s.move(accountID, amount, s.ledger.Debit)
}

func (s *AccountService) move(accountID string, amount decimal.Decimal, apply func(string, decimal.Decimal) error) (*domain.Account, error) {
	if !amount.IsPositive() {
		return nil, &domain.ValidationError{Message: "amount must be > 0"}
	}
	if err := domain.CheckAmount(amount); err != nil {
		return nil, &domain.ValidationError{Message: "amount: " + err.Error()}
	}

	unlock := s.engine.LockAccount(accountID)
	defer unlock()

	a, err := s.accounts.Get(accountID)
	if err != nil {
		return nil, err
	}
	if !a.Active {
		return nil, domain.ErrAccountInactive
	}
	if err := apply(accountID, amount); err != nil {
		return nil, err
	}
	return s.accounts.Get(accountID)
}

func (s *AccountService) update(accountID string, fn func(*domain.Account) error) (*domain.Account, error) {
	unlock := s.engine.LockAccount(accountID)
	defer unlock()

	err := s.accounts.Update(accountID, func(a *domain.Account) error {
		if err := fn(a); err != nil {
			return err
		}
		a.UpdatedAt = s.now()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.accounts.Get(accountID)
}
