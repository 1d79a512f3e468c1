package engine

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/efreitasn/tradesim/internal/domain"
)

// AccountStore is the account persistence the engine depends on.
type AccountStore interface {
	Get(id string) (*domain.Account, error)
	Update(id string, fn func(*domain.Account) error) error
}

// AccountLedger owns cash balances. Each debit or credit is a single
// atomic read-modify-write on the account.
type AccountLedger struct {
	accounts AccountStore
	now      func() time.Time
}

// NewAccountLedger creates an AccountLedger. A nil now uses time.Now.
func NewAccountLedger(accounts AccountStore, now func() time.Time) *AccountLedger {
	if now == nil {
		now = time.Now
	}
	return &AccountLedger{accounts: accounts, now: now}
}

// Debit subtracts amount from the account's balance. It returns
// domain.ErrInsufficientFunds, leaving the balance untouched, when the
// balance is lower than amount.
func (l *AccountLedger) Debit(accountID string, amount decimal.Decimal) error {
	if amount.IsNegative() {
		return &domain.ValidationError{Message: "debit amount must be >= 0"}
	}
	return l.accounts.Update(accountID, func(a *domain.Account) error {
		if a.Balance.LessThan(amount) {
			return domain.ErrInsufficientFunds
		}
		a.Balance = a.Balance.Sub(amount)
		a.UpdatedAt = l.now()
		return nil
	})
}

// Credit adds amount to the account's balance.
func (l *AccountLedger) Credit(accountID string, amount decimal.Decimal) error {
	if amount.IsNegative() {
		return &domain.ValidationError{Message: "credit amount must be >= 0"}
	}
	return l.accounts.Update(accountID, func(a *domain.Account) error {
		a.Balance = a.Balance.Add(amount)
		a.UpdatedAt = l.now()
		return nil
	})
}

// Balance returns the account's current cash balance.
func (l *AccountLedger) Balance(accountID string) (decimal.Decimal, error) {
	a, err := l.accounts.Get(accountID)
	if err != nil {
		return decimal.Zero, err
	}
	return a.Balance, nil
}
