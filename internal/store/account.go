package store

import (
	"sort"
	"sync"

	"github.com/efreitasn/tradesim/internal/domain"
)

// AccountStore is a thread-safe in-memory store for accounts,
// keyed by account_id. Callers always receive copies.
type AccountStore struct {
	mu       sync.RWMutex
	accounts map[string]*domain.Account
}

// NewAccountStore creates an empty AccountStore.
func NewAccountStore() *AccountStore {
	return &AccountStore{
		accounts: make(map[string]*domain.Account),
	}
}

// Create adds an account to the store. It returns
// domain.ErrAccountAlreadyExists if an account with the same ID
// already exists.
func (s *AccountStore) Create(a *domain.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.accounts[a.AccountID]; exists {
		return domain.ErrAccountAlreadyExists
	}
	c := *a
	s.accounts[a.AccountID] = &c
	return nil
}

// Get retrieves a copy of an account by ID. It returns
// domain.ErrAccountNotFound if the account does not exist.
func (s *AccountStore) Get(id string) (*domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.accounts[id]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	c := *a
	return &c, nil
}

// Update applies fn to a copy of the account and stores the result if fn
// returns nil. The read-modify-write is atomic with respect to other
// Update calls. It returns domain.ErrAccountNotFound if the account does
// not exist, or whatever error fn returns.
func (s *AccountStore) Update(id string, fn func(*domain.Account) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.accounts[id]
	if !ok {
		return domain.ErrAccountNotFound
	}
	c := *a
	if err := fn(&c); err != nil {
		return err
	}
	s.accounts[id] = &c
	return nil
}

// ListByRole returns copies of every account with the given role,
// ordered by account ID.
func (s *AccountStore) ListByRole(role domain.Role) []*domain.Account {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.Account, 0)
	for _, a := range s.accounts {
		if a.Role != role {
			continue
		}
		c := *a
		result = append(result, &c)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].AccountID < result[j].AccountID
	})
	return result
}
