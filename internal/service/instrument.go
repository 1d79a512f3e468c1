package service

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/efreitasn/tradesim/internal/domain"
	"github.com/efreitasn/tradesim/internal/store"
)

var symbolRegex = regexp.MustCompile(`^[A-Z]{1,10}$`)

// RegisterInstrumentRequest represents the input for instrument registration.
type RegisterInstrumentRequest struct {
	InstrumentID string // generated when empty
	Symbol       string
	Name         string
	Price        decimal.Decimal
}

// InstrumentService manages the instrument catalogue. Prices are fed from
// outside; updating one does not revalue positions.
type InstrumentService struct {
	instruments *store.InstrumentStore
	now         func() time.Time
}

// NewInstrumentService creates a new InstrumentService.
func NewInstrumentService(instruments *store.InstrumentStore, now func() time.Time) *InstrumentService {
	if now == nil {
		now = time.Now
	}
	return &InstrumentService{instruments: instruments, now: now}
}

// Register validates the request and adds an active instrument.
func (s *InstrumentService) Register(req RegisterInstrumentRequest) (*domain.Instrument, error) {
	if req.InstrumentID == "" {
		req.InstrumentID = uuid.NewString()
	}
	if !accountIDRegex.MatchString(req.InstrumentID) {
		return nil, &domain.ValidationError{
			Message: "instrument_id must match ^[a-zA-Z0-9_-]{1,64}$",
		}
	}
	if !symbolRegex.MatchString(req.Symbol) {
		return nil, &domain.ValidationError{
			Message: "symbol must match ^[A-Z]{1,10}$",
		}
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		name = req.Symbol
	}
	if err := checkPrice(req.Price); err != nil {
		return nil, err
	}

	now := s.now()
	inst := &domain.Instrument{
		InstrumentID: req.InstrumentID,
		Symbol:       req.Symbol,
		Name:         name,
		CurrentPrice: req.Price,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.instruments.Create(inst); err != nil {
		return nil, err
	}
	return s.instruments.Get(inst.InstrumentID)
}

// Get returns an instrument by ID.
func (s *InstrumentService) Get(instrumentID string) (*domain.Instrument, error) {
	return s.instruments.Get(instrumentID)
}

// List returns the catalogue ordered by symbol.
func (s *InstrumentService) List(activeOnly bool) []*domain.Instrument {
	return s.instruments.List(activeOnly)
}

// UpdatePrice sets the current quoted price. Pending orders keep the
// price they snapshotted at placement.
func (s *InstrumentService) UpdatePrice(instrumentID string, price decimal.Decimal) (*domain.Instrument, error) {
	if err := checkPrice(price); err != nil {
		return nil, err
	}
	return s.update(instrumentID, func(i *domain.Instrument) {
		i.CurrentPrice = price
	})
}

// SetActive lists or delists an instrument.
func (s *InstrumentService) SetActive(instrumentID string, active bool) (*domain.Instrument, error) {
	return s.update(instrumentID, func(i *domain.Instrument) {
		i.Active = active
	})
}

func (s *InstrumentService) update(instrumentID string, fn func(*domain.Instrument)) (*domain.Instrument, error) {
	err := s.instruments.Update(instrumentID, func(i *domain.Instrument) error {
		fn(i)
		i.UpdatedAt = s.now()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.instruments.Get(instrumentID)
}

func checkPrice(price decimal.Decimal) error {
	if !price.IsPositive() {
		return &domain.ValidationError{Message: "price must be > 0"}
	}
	if err := domain.CheckAmount(price); err != nil {
		return &domain.ValidationError{Message: "price: " + err.Error()}
	}
	return nil
}
