package domain

import "sync"

// SymbolRegistry maps stock symbols to instrument IDs in a thread-safe
// manner. A symbol can be claimed by at most one instrument.
type SymbolRegistry struct {
	mu      sync.RWMutex
	symbols map[string]string // symbol → instrument_id
}

// NewSymbolRegistry creates an empty SymbolRegistry.
func NewSymbolRegistry() *SymbolRegistry {
	return &SymbolRegistry{
		symbols: make(map[string]string),
	}
}

// Claim binds symbol to instrumentID. It returns false if the symbol is
// already bound to a different instrument. Safe for concurrent use.
func (r *SymbolRegistry) Claim(symbol, instrumentID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if owner, ok := r.symbols[symbol]; ok && owner != instrumentID {
		return false
	}
	r.symbols[symbol] = instrumentID
	return true
}

// Lookup returns the instrument ID bound to symbol. Safe for concurrent use.
func (r *SymbolRegistry) Lookup(symbol string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.symbols[symbol]
	return id, ok
}

// Exists returns true if the symbol has been claimed. Safe for concurrent use.
func (r *SymbolRegistry) Exists(symbol string) bool {
	_, ok := r.Lookup(symbol)
	return ok
}
