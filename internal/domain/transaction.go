package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// LedgerEntry is the immutable record of a single fill. Entries are
// appended once and never mutated or deleted.
type LedgerEntry struct {
	EntryID      string
	AccountID    string
	InstrumentID string
	Symbol       string
	OrderID      string // empty when the fill did not originate from an order
	Side         OrderSide
	Quantity     int64
	Price        decimal.Decimal
	Gross        decimal.Decimal
	Commission   decimal.Decimal
	Tax          decimal.Decimal
	Net          decimal.Decimal
	Mode         AccountMode
	ExecutedAt   time.Time
}

// LedgerFilter narrows a transaction history listing. Zero values match
// everything.
type LedgerFilter struct {
	InstrumentID string
	Side         OrderSide
	From         *time.Time
	To           *time.Time
}

// Match reports whether e satisfies the filter. From and To are inclusive.
func (f LedgerFilter) Match(e *LedgerEntry) bool {
	if f.InstrumentID != "" && e.InstrumentID != f.InstrumentID {
		return false
	}
	if f.Side != "" && e.Side != f.Side {
		return false
	}
	if f.From != nil && e.ExecutedAt.Before(*f.From) {
		return false
	}
	if f.To != nil && e.ExecutedAt.After(*f.To) {
		return false
	}
	return true
}
