package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Position is an account's holding in a single instrument. It exists only
// while Quantity >= 1.
//
// AverageCost and TotalCostBasis keep full decimal precision; they are
// rounded only when rendered.
type Position struct {
	AccountID         string
	InstrumentID      string
	Symbol            string
	Quantity          int64
	AverageCost       decimal.Decimal
	TotalCostBasis    decimal.Decimal
	CurrentPrice      decimal.Decimal
	CurrentValue      decimal.Decimal
	ProfitLoss        decimal.Decimal
	ProfitLossPercent decimal.Decimal
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// NewPosition opens a position from a first buy fill.
func NewPosition(accountID, instrumentID, symbol string, qty int64, price decimal.Decimal, now time.Time) *Position {
	return &Position{
		AccountID:      accountID,
		InstrumentID:   instrumentID,
		Symbol:         symbol,
		Quantity:       qty,
		AverageCost:    price,
		TotalCostBasis: price.Mul(decimal.NewFromInt(qty)),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// ApplyBuy adds qty units bought at price and recomputes the weighted
// average cost as basis/quantity, rounded half away from zero to
// AverageCostPlaces digits. The cost basis itself stays exact.
func (p *Position) ApplyBuy(qty int64, price decimal.Decimal, now time.Time) {
	p.TotalCostBasis = p.TotalCostBasis.Add(price.Mul(decimal.NewFromInt(qty)))
	p.Quantity += qty
	p.AverageCost = p.TotalCostBasis.DivRound(decimal.NewFromInt(p.Quantity), AverageCostPlaces)
	p.UpdatedAt = now
}

// ApplySell removes qty units. Average cost is unchanged; the cost basis
// shrinks proportionally. It returns ErrInsufficientHoldings when qty
// exceeds the held quantity. A position left at zero quantity must be
// deleted by the caller.
func (p *Position) ApplySell(qty int64, now time.Time) error {
	if qty > p.Quantity {
		return ErrInsufficientHoldings
	}
	p.Quantity -= qty
	p.TotalCostBasis = p.AverageCost.Mul(decimal.NewFromInt(p.Quantity))
	p.UpdatedAt = now
	return nil
}

// Closed reports whether the position holds nothing.
func (p *Position) Closed() bool {
	return p.Quantity == 0
}

// Revalue recomputes market value and unrealized P&L from price without
// touching quantity or cost basis.
func (p *Position) Revalue(price decimal.Decimal) {
	p.CurrentPrice = price
	p.CurrentValue = price.Mul(decimal.NewFromInt(p.Quantity))
	p.ProfitLoss = p.CurrentValue.Sub(p.TotalCostBasis)
	p.ProfitLossPercent = Percent(p.ProfitLoss, p.TotalCostBasis)
}

// Clone returns a copy of the position.
func (p *Position) Clone() *Position {
	c := *p
	return &c
}

// PortfolioSummary aggregates every open position of an account.
type PortfolioSummary struct {
	AccountID        string
	TotalCost        decimal.Decimal
	CurrentValue     decimal.Decimal
	TotalPnL         decimal.Decimal
	TotalPnLPercent  decimal.Decimal
	AvailableBalance decimal.Decimal
	Positions        []*Position
}

// Summarize builds a PortfolioSummary from positions.
func Summarize(accountID string, balance decimal.Decimal, positions []*Position) PortfolioSummary {
	s := PortfolioSummary{
		AccountID:        accountID,
		TotalCost:        decimal.Zero,
		CurrentValue:     decimal.Zero,
		AvailableBalance: balance,
		Positions:        positions,
	}
	for _, p := range positions {
		s.TotalCost = s.TotalCost.Add(p.TotalCostBasis)
		s.CurrentValue = s.CurrentValue.Add(p.CurrentValue)
	}
	s.TotalPnL = s.CurrentValue.Sub(s.TotalCost)
	s.TotalPnLPercent = Percent(s.TotalPnL, s.TotalCost)
	return s
}
