package store

import (
	"sort"
	"sync"

	"github.com/efreitasn/tradesim/internal/domain"
)

// InstrumentStore is a thread-safe in-memory catalogue of instruments,
// keyed by instrument_id with a unique symbol index.
type InstrumentStore struct {
	mu          sync.RWMutex
	instruments map[string]*domain.Instrument
	symbols     *domain.SymbolRegistry
}

// NewInstrumentStore creates an empty InstrumentStore.
func NewInstrumentStore() *InstrumentStore {
	return &InstrumentStore{
		instruments: make(map[string]*domain.Instrument),
		symbols:     domain.NewSymbolRegistry(),
	}
}

// Create adds an instrument. It returns domain.ErrInstrumentAlreadyExists
// if the ID is taken or the symbol is bound to another instrument.
func (s *InstrumentStore) Create(i *domain.Instrument) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.instruments[i.InstrumentID]; exists {
		return domain.ErrInstrumentAlreadyExists
	}
	if !s.symbols.Claim(i.Symbol, i.InstrumentID) {
		return domain.ErrInstrumentAlreadyExists
	}
	c := *i
	s.instruments[i.InstrumentID] = &c
	return nil
}

// Get retrieves a copy of an instrument by ID. It returns
// domain.ErrInstrumentUnavailable if the instrument does not exist.
func (s *InstrumentStore) Get(id string) (*domain.Instrument, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i, ok := s.instruments[id]
	if !ok {
		return nil, domain.ErrInstrumentUnavailable
	}
	c := *i
	return &c, nil
}

// GetBySymbol retrieves a copy of the instrument bound to symbol.
func (s *InstrumentStore) GetBySymbol(symbol string) (*domain.Instrument, error) {
	id, ok := s.symbols.Lookup(symbol)
	if !ok {
		return nil, domain.ErrInstrumentUnavailable
	}
	return s.Get(id)
}

// Update applies fn to a copy of the instrument and stores the result if
// fn returns nil. The symbol cannot be changed through Update.
func (s *InstrumentStore) Update(id string, fn func(*domain.Instrument) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.instruments[id]
	if !ok {
		return domain.ErrInstrumentUnavailable
	}
	c := *i
	if err := fn(&c); err != nil {
		return err
	}
	c.Symbol = i.Symbol
	s.instruments[id] = &c
	return nil
}

// List returns copies of all instruments ordered by symbol. When
// activeOnly is set, inactive instruments are skipped.
func (s *InstrumentStore) List(activeOnly bool) []*domain.Instrument {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.Instrument, 0, len(s.instruments))
	for _, i := range s.instruments {
		if activeOnly && !i.Active {
			continue
		}
		c := *i
		result = append(result, &c)
	}
	sort.Slice(result, func(a, b int) bool {
		return result[a].Symbol < result[b].Symbol
	})
	return result
}
