package store

import (
	"context"
	"sync"

	"github.com/efreitasn/tradesim/internal/domain"
)

// TransactionStore is a thread-safe in-memory journal of ledger entries,
// keyed by account. Entries are append-only and chronological.
type TransactionStore struct {
	mu      sync.RWMutex
	entries map[string][]domain.LedgerEntry // account_id → entries (chronological)
}

// NewTransactionStore creates an empty TransactionStore.
func NewTransactionStore() *TransactionStore {
	return &TransactionStore{
		entries: make(map[string][]domain.LedgerEntry),
	}
}

// Append adds an entry to the account's chronological list.
func (s *TransactionStore) Append(_ context.Context, e domain.LedgerEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[e.AccountID] = append(s.entries[e.AccountID], e)
	return nil
}

// ListByAccount returns all entries for an account in chronological order.
// Returns an empty slice if the account has no entries.
func (s *TransactionStore) ListByAccount(_ context.Context, accountID string) ([]domain.LedgerEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := s.entries[accountID]

	// Return a copy to avoid callers mutating the internal slice.
	result := make([]domain.LedgerEntry, len(entries))
	copy(result, entries)
	return result, nil
}
