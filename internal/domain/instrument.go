package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Instrument is a tradable stock in the catalogue. The current price is
// fed from outside the engine and snapshotted into orders at placement.
type Instrument struct {
	InstrumentID string
	Symbol       string
	Name         string
	CurrentPrice decimal.Decimal
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Tradable reports whether orders may be placed against the instrument.
func (i *Instrument) Tradable() bool {
	return i.Active && i.CurrentPrice.IsPositive()
}
