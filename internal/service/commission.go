package service

import (
	"github.com/shopspring/decimal"

	"github.com/efreitasn/tradesim/internal/domain"
	"github.com/efreitasn/tradesim/internal/store"
)

// CommissionService manages per-symbol commission overrides.
type CommissionService struct {
	rates       *store.RateTable
	defaultRate decimal.Decimal
}

// NewCommissionService creates a new CommissionService. defaultRate is
// reported for symbols without an override.
func NewCommissionService(rates *store.RateTable, defaultRate decimal.Decimal) *CommissionService {
	return &CommissionService{rates: rates, defaultRate: defaultRate}
}

// DefaultRate returns the global commission rate.
func (s *CommissionService) DefaultRate() decimal.Decimal {
	return s.defaultRate
}

// RateFor returns the rate charged on symbol and whether it is an override.
func (s *CommissionService) RateFor(symbol string) (decimal.Decimal, bool) {
	if r, ok := s.rates.RateFor(symbol); ok {
		return r, true
	}
	return s.defaultRate, false
}

// SetRate installs an override for symbol. It reports whether the
// override is new.
func (s *CommissionService) SetRate(symbol string, rate decimal.Decimal) (bool, error) {
	if !symbolRegex.MatchString(symbol) {
		return false, &domain.ValidationError{Message: "symbol must match ^[A-Z]{1,10}$"}
	}
	if rate.IsNegative() || rate.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return false, &domain.ValidationError{Message: "rate must be >= 0 and < 1"}
	}
	return s.rates.Set(symbol, rate), nil
}

// RemoveRate drops the override for symbol.
func (s *CommissionService) RemoveRate(symbol string) error {
	if !s.rates.Remove(symbol) {
		return domain.ErrCommissionRateNotFound
	}
	return nil
}

// ListRates returns every override ordered by symbol.
func (s *CommissionService) ListRates() []store.CommissionRate {
	return s.rates.List()
}
