package service

import "github.com/efreitasn/tradesim/internal/engine"

// MarketService exposes the market clock and its manual override.
type MarketService struct {
	clock *engine.MarketClock
}

// NewMarketService creates a new MarketService.
func NewMarketService(clock *engine.MarketClock) *MarketService {
	return &MarketService{clock: clock}
}

// Status returns the current market status.
func (s *MarketService) Status() engine.MarketStatus {
	return s.clock.Status()
}

// ForceOpen opens the market regardless of the schedule.
func (s *MarketService) ForceOpen() engine.MarketStatus {
	s.clock.State().ForceOpen()
	return s.clock.Status()
}

// ForceClose closes the market regardless of the schedule.
func (s *MarketService) ForceClose() engine.MarketStatus {
	s.clock.State().ForceClose()
	return s.clock.Status()
}

// Reset returns the market to its schedule.
func (s *MarketService) Reset() engine.MarketStatus {
	s.clock.State().ResetAutomatic()
	return s.clock.Status()
}
