package store

import (
	"sort"
	"sync"

	"github.com/shopspring/decimal"
)

// CommissionRate is a per-symbol commission override.
type CommissionRate struct {
	Symbol string
	Rate   decimal.Decimal
}

// RateTable is a thread-safe in-memory table of per-symbol commission
// rates. Symbols without an entry fall back to the global default rate.
type RateTable struct {
	mu    sync.RWMutex
	rates map[string]decimal.Decimal // symbol → rate
}

// NewRateTable creates a RateTable seeded with rates.
func NewRateTable(seed map[string]decimal.Decimal) *RateTable {
	t := &RateTable{rates: make(map[string]decimal.Decimal, len(seed))}
	for sym, r := range seed {
		t.rates[sym] = r
	}
	return t
}

// RateFor returns the override for symbol, if any.
func (t *RateTable) RateFor(symbol string) (decimal.Decimal, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	r, ok := t.rates[symbol]
	return r, ok
}

// Set inserts or replaces the rate for symbol. Returns true if a new
// entry was created.
func (t *RateTable) Set(symbol string, rate decimal.Decimal) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	_, exists := t.rates[symbol]
	t.rates[symbol] = rate
	return !exists
}

// Remove deletes the override for symbol. Returns false if there was none.
func (t *RateTable) Remove(symbol string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.rates[symbol]; !ok {
		return false
	}
	delete(t.rates, symbol)
	return true
}

// List returns all overrides ordered by symbol.
func (t *RateTable) List() []CommissionRate {
	t.mu.RLock()
	defer t.mu.RUnlock()

	result := make([]CommissionRate, 0, len(t.rates))
	for sym, r := range t.rates {
		result = append(result, CommissionRate{Symbol: sym, Rate: r})
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Symbol < result[j].Symbol
	})
	return result
}
