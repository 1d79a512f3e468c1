package engine

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/efreitasn/tradesim/internal/domain"
	"github.com/efreitasn/tradesim/internal/store"
)

// InstrumentCatalog resolves instruments and their current quoted price.
type InstrumentCatalog interface {
	Get(id string) (*domain.Instrument, error)
}

// HoldingsBook owns per-(account, instrument) positions. Updates to one
// position are serialized by a per-key lock.
type HoldingsBook struct {
	positions   *store.PositionStore
	instruments InstrumentCatalog
	locks       *KeyedMutex
	now         func() time.Time
}

// NewHoldingsBook creates a HoldingsBook. A nil now uses time.Now.
func NewHoldingsBook(positions *store.PositionStore, instruments InstrumentCatalog, now func() time.Time) *HoldingsBook {
	if now == nil {
		now = time.Now
	}
	return &HoldingsBook{
		positions:   positions,
		instruments: instruments,
		locks:       NewKeyedMutex(),
		now:         now,
	}
}

func positionKey(accountID, instrumentID string) string {
	return accountID + "|" + instrumentID
}

// ApplyFill updates the position for a fill of qty units at price and
// revalues it at the instrument's current price. It returns nil when the
// fill closes the position.
func (h *HoldingsBook) ApplyFill(accountID, instrumentID string, side domain.OrderSide, qty int64, price decimal.Decimal) (*domain.Position, error) {
	after, _, err := h.applyFill(accountID, instrumentID, side, qty, price)
	return after, err
}

// applyFill is ApplyFill that also returns the position as it was before
// the fill (nil if none), so the caller can restore it.
func (h *HoldingsBook) applyFill(accountID, instrumentID string, side domain.OrderSide, qty int64, price decimal.Decimal) (after, before *domain.Position, err error) {
	unlock := h.locks.Lock(positionKey(accountID, instrumentID))
	defer unlock()

	inst, err := h.instruments.Get(instrumentID)
	if err != nil {
		return nil, nil, err
	}

	p, err := h.positions.Get(accountID, instrumentID)
	switch {
	case errors.Is(err, domain.ErrPositionNotFound):
		p = nil
	case err != nil:
		return nil, nil, err
	}
	if p != nil {
		before = p.Clone()
	}

	now := h.now()
	switch side {
	case domain.OrderSideBuy:
		if p == nil {
			p = domain.NewPosition(accountID, instrumentID, inst.Symbol, qty, price, now)
		} else {
			p.ApplyBuy(qty, price, now)
		}
	case domain.OrderSideSell:
		if p == nil {
			return nil, nil, domain.ErrInsufficientHoldings
		}
		if err := p.ApplySell(qty, now); err != nil {
			return nil, nil, err
		}
	default:
		return nil, nil, &domain.ValidationError{Message: "side must be buy or sell"}
	}

	if p.Closed() {
		h.positions.Delete(accountID, instrumentID)
		return nil, before, nil
	}
	p.Revalue(inst.CurrentPrice)
	h.positions.Put(p)
	return p, before, nil
}

// restore puts back a position snapshot taken by applyFill. A nil
// snapshot removes the position.
func (h *HoldingsBook) restore(accountID, instrumentID string, snapshot *domain.Position) {
	unlock := h.locks.Lock(positionKey(accountID, instrumentID))
	defer unlock()

	if snapshot == nil {
		h.positions.Delete(accountID, instrumentID)
		return
	}
	h.positions.Put(snapshot)
}

// Get returns the account's position in an instrument, or
// domain.ErrPositionNotFound.
func (h *HoldingsBook) Get(accountID, instrumentID string) (*domain.Position, error) {
	return h.positions.Get(accountID, instrumentID)
}

// List returns every open position of an account, ordered by symbol.
func (h *HoldingsBook) List(accountID string) []*domain.Position {
	return h.positions.ListByAccount(accountID)
}

// RecalculateAll revalues every position of an account at the latest
// instrument prices without touching quantity or cost basis. Positions
// whose instrument cannot be resolved keep their last valuation.
func (h *HoldingsBook) RecalculateAll(accountID string) ([]*domain.Position, error) {
	held := h.positions.ListByAccount(accountID)
	result := make([]*domain.Position, 0, len(held))
	for _, snapshot := range held {
		p, err := h.revalue(accountID, snapshot.InstrumentID)
		if errors.Is(err, domain.ErrPositionNotFound) {
			continue // closed concurrently
		}
		if err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	return result, nil
}

func (h *HoldingsBook) revalue(accountID, instrumentID string) (*domain.Position, error) {
	unlock := h.locks.Lock(positionKey(accountID, instrumentID))
	defer unlock()

	p, err := h.positions.Get(accountID, instrumentID)
	if err != nil {
		return nil, err
	}
	inst, err := h.instruments.Get(instrumentID)
	if err != nil {
		return p, nil
	}
	p.Revalue(inst.CurrentPrice)
	p.UpdatedAt = h.now()
	h.positions.Put(p)
	return p, nil
}
