package service

import (
	"context"

	"github.com/efreitasn/tradesim/internal/domain"
	"github.com/efreitasn/tradesim/internal/engine"
	"github.com/efreitasn/tradesim/internal/store"
)

// TransactionService answers ledger history queries.
type TransactionService struct {
	accounts *store.AccountStore
	ledger   *engine.TransactionLedger
}

// NewTransactionService creates a new TransactionService.
func NewTransactionService(accounts *store.AccountStore, ledger *engine.TransactionLedger) *TransactionService {
	return &TransactionService{accounts: accounts, ledger: ledger}
}

// History returns an account's ledger entries matching filter, oldest
// first.
func (s *TransactionService) History(ctx context.Context, accountID string, filter domain.LedgerFilter) ([]domain.LedgerEntry, error) {
	if _, err := s.accounts.Get(accountID); err != nil {
		return nil, err
	}
	if filter.Side != "" && filter.Side != domain.OrderSideBuy && filter.Side != domain.OrderSideSell {
		return nil, &domain.ValidationError{Message: "side must be buy or sell"}
	}
	if filter.From != nil && filter.To != nil && filter.From.After(*filter.To) {
		return nil, &domain.ValidationError{Message: "from must not be after to"}
	}
	return s.ledger.History(ctx, accountID, filter)
}
