package engine

import (
	"context"
	"time"

	"github.com/efreitasn/tradesim/internal/domain"
	"github.com/efreitasn/tradesim/internal/journal"
)

// Journal is the append-only backend of the TransactionLedger.
type Journal interface {
	Append(ctx context.Context, e domain.LedgerEntry) error
	ListByAccount(ctx context.Context, accountID string) ([]domain.LedgerEntry, error)
}

// TransactionLedger records every fill as an immutable ledger entry.
type TransactionLedger struct {
	journal Journal
	newID   func(time.Time) string
}

// NewTransactionLedger creates a TransactionLedger over j.
func NewTransactionLedger(j Journal) *TransactionLedger {
	return &TransactionLedger{journal: j, newID: journal.NewEntryID}
}

// Record appends the entry for a fill of o with fees at executedAt.
func (l *TransactionLedger) Record(ctx context.Context, o *domain.Order, fees Fees, executedAt time.Time) (domain.LedgerEntry, error) {
	e := domain.LedgerEntry{
		EntryID:      l.newID(executedAt),
		AccountID:    o.AccountID,
		InstrumentID: o.InstrumentID,
		Symbol:       o.Symbol,
		OrderID:      o.OrderID,
		Side:         o.Side,
		Quantity:     o.Quantity,
		Price:        o.Price,
		Gross:        fees.Gross,
		Commission:   fees.Commission,
		Tax:          fees.Tax,
		Net:          fees.Net,
		Mode:         o.Mode,
		ExecutedAt:   executedAt,
	}
	if err := l.journal.Append(ctx, e); err != nil {
		return domain.LedgerEntry{}, err
	}
	return e, nil
}

// History returns an account's entries matching filter, oldest first.
func (l *TransactionLedger) History(ctx context.Context, accountID string, filter domain.LedgerFilter) ([]domain.LedgerEntry, error) {
	all, err := l.journal.ListByAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}
	result := make([]domain.LedgerEntry, 0, len(all))
	for i := range all {
		if filter.Match(&all[i]) {
			result = append(result, all[i])
		}
	}
	return result, nil
}
