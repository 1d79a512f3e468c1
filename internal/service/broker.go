package service

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/efreitasn/tradesim/internal/domain"
	"github.com/efreitasn/tradesim/internal/store"
)

// BrokerEarnings is the commission a broker has accumulated. It is the
// broker account's balance.
type BrokerEarnings struct {
	BrokerID string
	Name     string
	Earnings decimal.Decimal
	Active   bool
}

// BrokerService reports broker earnings and manages which broker earns
// each account's commission.
type BrokerService struct {
	accounts  *store.AccountStore
	directory *store.BrokerDirectory
}

// NewBrokerService creates a new BrokerService.
func NewBrokerService(accounts *store.AccountStore, directory *store.BrokerDirectory) *BrokerService {
	return &BrokerService{accounts: accounts, directory: directory}
}

// Earnings returns the earnings of one broker. Accounts that are not
// brokers are reported as domain.ErrBrokerUnavailable.
func (s *BrokerService) Earnings(brokerID string) (*BrokerEarnings, error) {
	a, err := s.accounts.Get(brokerID)
	if err != nil {
		return nil, err
	}
	if !a.IsBroker() {
		return nil, domain.ErrBrokerUnavailable
	}
	return toEarnings(a), nil
}

// ListEarnings returns the earnings of every broker ordered by ID.
func (s *BrokerService) ListEarnings() []*BrokerEarnings {
	brokers := s.accounts.ListByRole(domain.RoleBroker)
	result := make([]*BrokerEarnings, len(brokers))
	for i, b := range brokers {
		result[i] = toEarnings(b)
	}
	return result
}

// BrokerFor returns the broker that earns accountID's commission.
func (s *BrokerService) BrokerFor(accountID string) (string, bool) {
	return s.directory.ResolveBrokerFor(accountID)
}

// Assign routes accountID's commission to brokerID. The broker must be an
// active broker account.
func (s *BrokerService) Assign(accountID, brokerID string) error {
	if _, err := s.accounts.Get(accountID); err != nil {
		return err
	}
	b, err := s.accounts.Get(brokerID)
	if err != nil || !b.IsBroker() || !b.Active {
		return fmt.Errorf("%w: %s", domain.ErrBrokerUnavailable, brokerID)
	}
	s.directory.Assign(accountID, brokerID)
	return nil
}

// Unassign falls accountID back to the default broker. It returns false
// if there was no explicit assignment.
func (s *BrokerService) Unassign(accountID string) bool {
	return s.directory.Unassign(accountID)
}

func toEarnings(a *domain.Account) *BrokerEarnings {
	return &BrokerEarnings{
		BrokerID: a.AccountID,
		Name:     a.Name,
		Earnings: a.Balance,
		Active:   a.Active,
	}
}
