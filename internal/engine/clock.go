package engine

import (
	"strings"
	"sync"
	"time"

	"github.com/efreitasn/tradesim/internal/domain"
)

// Override is a manual market state that takes precedence over the
// schedule.
type Override string

const (
	OverrideNone   Override = "automatic"
	OverrideOpen   Override = "forced_open"
	OverrideClosed Override = "forced_closed"
)

// MarketClockState holds the manual override. It lives in process memory
// only and starts in automatic mode.
type MarketClockState struct {
	mu       sync.RWMutex
	override Override
}

// NewMarketClockState returns a state in automatic mode.
func NewMarketClockState() *MarketClockState {
	return &MarketClockState{override: OverrideNone}
}

// ForceOpen opens the market regardless of the schedule.
func (s *MarketClockState) ForceOpen() { s.set(OverrideOpen) }

// ForceClose closes the market regardless of the schedule.
func (s *MarketClockState) ForceClose() { s.set(OverrideClosed) }

// ResetAutomatic returns control to the schedule.
func (s *MarketClockState) ResetAutomatic() { s.set(OverrideNone) }

// Override returns the current override.
func (s *MarketClockState) Override() Override {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.override
}

func (s *MarketClockState) set(o Override) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.override = o
}

// Session is the weekly trading schedule. Open and Close are offsets from
// local midnight in Location; the window includes both ends.
type Session struct {
	Open        time.Duration
	Close       time.Duration
	TradingDays []time.Weekday
	Location    *time.Location
}

// DefaultSession is 09:30 to 16:00, Monday to Friday, local time.
func DefaultSession() Session {
	return Session{
		Open:        9*time.Hour + 30*time.Minute,
		Close:       16 * time.Hour,
		TradingDays: []time.Weekday{time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday},
		Location:    time.Local,
	}
}

// Reasons returned by ValidateTrading.
const (
	ReasonRealAlwaysOpen = "real money trading allowed 24/7"
	ReasonVirtualOpen    = "virtual money trading allowed during market hours"
	ReasonVirtualClosed  = "virtual money trading is not allowed: market is closed; real money accounts can trade 24/7"
)

// MarketStatus is a snapshot of the clock for display.
type MarketStatus struct {
	IsOpen      bool
	Status      string // OPEN or CLOSED
	OpenTime    string
	CloseTime   string
	CurrentTime time.Time
	TradingDays []string
	Override    Override
	Message     string
}

// MarketClock decides whether the session is open and whether an account
// mode may trade right now.
type MarketClock struct {
	session Session
	state   *MarketClockState
	now     func() time.Time
}

// NewMarketClock creates a clock. A nil now uses time.Now.
func NewMarketClock(session Session, state *MarketClockState, now func() time.Time) *MarketClock {
	if now == nil {
		now = time.Now
	}
	if session.Location == nil {
		session.Location = time.Local
	}
	if state == nil {
		state = NewMarketClockState()
	}
	return &MarketClock{session: session, state: state, now: now}
}

// State returns the override holder.
func (c *MarketClock) State() *MarketClockState {
	return c.state
}

// IsOpen reports whether the market is open now.
func (c *MarketClock) IsOpen() bool {
	switch c.state.Override() {
	case OverrideOpen:
		return true
	case OverrideClosed:
		return false
	}
	return c.scheduled(c.now())
}

func (c *MarketClock) scheduled(t time.Time) bool {
	local := t.In(c.session.Location)
	if !c.tradingDay(local.Weekday()) {
		return false
	}
	midnight := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, local.Location())
	offset := local.Sub(midnight)
	return offset >= c.session.Open && offset <= c.session.Close
}

func (c *MarketClock) tradingDay(d time.Weekday) bool {
	for _, td := range c.session.TradingDays {
		if td == d {
			return true
		}
	}
	return false
}

// ValidateTrading reports whether an account in mode may trade now, with a
// human-readable reason. Real accounts may always trade.
func (c *MarketClock) ValidateTrading(mode domain.AccountMode) (bool, string) {
	if mode == domain.AccountModeReal {
		return true, ReasonRealAlwaysOpen
	}
	if !c.IsOpen() {
		return false, ReasonVirtualClosed
	}
	return true, ReasonVirtualOpen
}

// Status returns a snapshot of the clock.
func (c *MarketClock) Status() MarketStatus {
	open := c.IsOpen()
	s := MarketStatus{
		IsOpen:      open,
		Status:      "CLOSED",
		OpenTime:    formatOffset(c.session.Open),
		CloseTime:   formatOffset(c.session.Close),
		CurrentTime: c.now().In(c.session.Location),
		Override:    c.state.Override(),
		Message:     "market is closed; trading will resume during market hours",
	}
	if open {
		s.Status = "OPEN"
		s.Message = "market is open for trading"
	}
	for _, d := range c.session.TradingDays {
		s.TradingDays = append(s.TradingDays, strings.ToLower(d.String()[:3]))
	}
	return s
}

func formatOffset(d time.Duration) string {
	return time.Date(0, 1, 1, 0, 0, 0, 0, time.UTC).Add(d).Format("15:04")
}
