package store

import (
	"sort"
	"sync"

	"github.com/efreitasn/tradesim/internal/domain"
)

type positionKey struct {
	accountID    string
	instrumentID string
}

// PositionStore is a thread-safe in-memory store for open positions,
// keyed by (account_id, instrument_id). A position with zero quantity is
// never stored.
type PositionStore struct {
	mu        sync.RWMutex
	positions map[positionKey]*domain.Position
}

// NewPositionStore creates an empty PositionStore.
func NewPositionStore() *PositionStore {
	return &PositionStore{
		positions: make(map[positionKey]*domain.Position),
	}
}

// Get retrieves a copy of a position. It returns
// domain.ErrPositionNotFound if the account holds no such instrument.
func (s *PositionStore) Get(accountID, instrumentID string) (*domain.Position, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.positions[positionKey{accountID, instrumentID}]
	if !ok {
		return nil, domain.ErrPositionNotFound
	}
	return p.Clone(), nil
}

// Put stores a copy of p, replacing any existing position for the same
// key. A closed position is removed instead.
func (s *PositionStore) Put(p *domain.Position) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := positionKey{p.AccountID, p.InstrumentID}
	if p.Closed() {
		delete(s.positions, key)
		return
	}
	s.positions[key] = p.Clone()
}

// Delete removes a position. Deleting a missing position is a no-op.
func (s *PositionStore) Delete(accountID, instrumentID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.positions, positionKey{accountID, instrumentID})
}

// ListByAccount returns copies of an account's positions ordered by
// symbol. Returns an empty slice if the account holds nothing.
func (s *PositionStore) ListByAccount(accountID string) []*domain.Position {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.Position, 0)
	for k, p := range s.positions {
		if k.accountID == accountID {
			result = append(result, p.Clone())
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Symbol < result[j].Symbol
	})
	return result
}
