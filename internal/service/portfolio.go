package service

import (
	"sort"

	"github.com/efreitasn/tradesim/internal/domain"
	"github.com/efreitasn/tradesim/internal/engine"
	"github.com/efreitasn/tradesim/internal/store"
)

// PortfolioService answers position and portfolio queries.
type PortfolioService struct {
	accounts *store.AccountStore
	ledger   *engine.AccountLedger
	holdings *engine.HoldingsBook
}

// NewPortfolioService creates a new PortfolioService.
func NewPortfolioService(accounts *store.AccountStore, ledger *engine.AccountLedger, holdings *engine.HoldingsBook) *PortfolioService {
	return &PortfolioService{accounts: accounts, ledger: ledger, holdings: holdings}
}

// GetPosition returns an account's position in one instrument.
func (s *PortfolioService) GetPosition(accountID, instrumentID string) (*domain.Position, error) {
	if _, err := s.accounts.Get(accountID); err != nil {
		return nil, err
	}
	return s.holdings.Get(accountID, instrumentID)
}

// GetPortfolioSummary aggregates every open position of an account with
// its available balance. Valuations are as of the last fill or
// recalculation.
func (s *PortfolioService) GetPortfolioSummary(accountID string) (domain.PortfolioSummary, error) {
	balance, err := s.ledger.Balance(accountID)
	if err != nil {
		return domain.PortfolioSummary{}, err
	}
	return domain.Summarize(accountID, balance, s.holdings.List(accountID)), nil
}

// Recalculate revalues every position at the latest prices and returns
// the refreshed summary.
func (s *PortfolioService) Recalculate(accountID string) (domain.PortfolioSummary, error) {
	balance, err := s.ledger.Balance(accountID)
	if err != nil {
		return domain.PortfolioSummary{}, err
	}
	positions, err := s.holdings.RecalculateAll(accountID)
	if err != nil {
		return domain.PortfolioSummary{}, err
	}
	return domain.Summarize(accountID, balance, positions), nil
}

// TopHoldings returns up to n positions with the highest current value.
func (s *PortfolioService) TopHoldings(accountID string, n int) ([]*domain.Position, error) {
	positions, err := s.positions(accountID)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(positions, func(i, j int) bool {
		return positions[i].CurrentValue.GreaterThan(positions[j].CurrentValue)
	})
	return head(positions, n), nil
}

// Gainers returns up to n profitable positions, best percentage first.
func (s *PortfolioService) Gainers(accountID string, n int) ([]*domain.Position, error) {
	positions, err := s.positions(accountID)
	if err != nil {
		return nil, err
	}
	result := positions[:0]
	for _, p := range positions {
		if p.ProfitLoss.IsPositive() {
			result = append(result, p)
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].ProfitLossPercent.GreaterThan(result[j].ProfitLossPercent)
	})
	return head(result, n), nil
}

// Losers returns up to n losing positions, worst percentage first.
func (s *PortfolioService) Losers(accountID string, n int) ([]*domain.Position, error) {
	positions, err := s.positions(accountID)
	if err != nil {
		return nil, err
	}
	result := positions[:0]
	for _, p := range positions {
		if p.ProfitLoss.IsNegative() {
			result = append(result, p)
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].ProfitLossPercent.LessThan(result[j].ProfitLossPercent)
	})
	return head(result, n), nil
}

func (s *PortfolioService) positions(accountID string) ([]*domain.Position, error) {
	if _, err := s.accounts.Get(accountID); err != nil {
		return nil, err
	}
	return s.holdings.List(accountID), nil
}

func head(ps []*domain.Position, n int) []*domain.Position {
	if n > 0 && len(ps) > n {
		return ps[:n]
	}
	return ps
}
