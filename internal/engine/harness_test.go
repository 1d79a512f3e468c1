package engine

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/efreitasn/tradesim/internal/domain"
	"github.com/efreitasn/tradesim/internal/store"
)

// monday10am is inside the default session.
var monday10am = time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// testClock is a settable time source.
type testClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *testClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = t
}

// failingJournal rejects every append.
type failingJournal struct{}

func (failingJournal) Append(context.Context, domain.LedgerEntry) error {
	return io.ErrClosedPipe
}

func (failingJournal) ListByAccount(context.Context, string) ([]domain.LedgerEntry, error) {
	return nil, nil
}

type harness struct {
	accounts    *store.AccountStore
	instruments *store.InstrumentStore
	orders      *store.OrderStore
	positions   *store.PositionStore
	journal     Journal
	brokers     *store.BrokerDirectory
	rates       *store.RateTable
	state       *MarketClockState
	clock       *testClock
	ledger      *AccountLedger
	holdings    *HoldingsBook
	engine      *OrderEngine
}

// newHarness wires an engine over fresh in-memory stores, with the clock at
// monday10am, a default broker "broker-1" and instrument "aapl" at 170.00.
// A nil journal uses an in-memory one.
func newHarness(t testing.TB, j Journal) *harness {
	t.Helper()
	return newHarnessWithBroker(t, j, "broker-1")
}

// newHarnessWithBroker is newHarness with the given default broker; an
// empty defaultBroker leaves accounts without a broker.
func newHarnessWithBroker(t testing.TB, j Journal, defaultBroker string) *harness {
	t.Helper()
	if j == nil {
		j = store.NewTransactionStore()
	}
	h := &harness{
		accounts:    store.NewAccountStore(),
		instruments: store.NewInstrumentStore(),
		orders:      store.NewOrderStore(),
		positions:   store.NewPositionStore(),
		journal:     j,
		brokers:     store.NewBrokerDirectory(defaultBroker, nil),
		rates:       store.NewRateTable(nil),
		state:       NewMarketClockState(),
		clock:       &testClock{t: monday10am},
	}
	session := DefaultSession()
	session.Location = time.UTC
	logger := discardLogger()

	h.ledger = NewAccountLedger(h.accounts, h.clock.Now)
	h.holdings = NewHoldingsBook(h.positions, h.instruments, h.clock.Now)
	h.engine = NewOrderEngine(Dependencies{
		Accounts:    h.accounts,
		Instruments: h.instruments,
		Orders:      h.orders,
		Ledger:      h.ledger,
		Holdings:    h.holdings,
		Fees:        NewFeeCalculator(d("0.001"), d("0.0005"), h.rates),
		Router:      NewCommissionRouter(h.accounts, h.ledger, logger),
		Brokers:     h.brokers,
		Journal:     NewTransactionLedger(j),
		Clock:       NewMarketClock(session, h.state, h.clock.Now),
		Logger:      logger,
		Now:         h.clock.Now,
	})

	h.addAccount(t, "broker-1", domain.RoleBroker, domain.AccountModeReal, "0")
	h.addInstrument(t, "aapl", "AAPL", "170.00")
	return h
}

func (h *harness) addAccount(t testing.TB, id string, role domain.Role, mode domain.AccountMode, balance string) {
	t.Helper()
	err := h.accounts.Create(&domain.Account{
		AccountID: id,
		Name:      id,
		Role:      role,
		KYCStatus: domain.KYCApproved,
		Mode:      mode,
		Balance:   d(balance),
		Active:    true,
		CreatedAt: monday10am,
	})
	if err != nil {
		t.Fatalf("create account %s: %v", id, err)
	}
}

func (h *harness) addInstrument(t testing.TB, id, symbol, price string) {
	t.Helper()
	err := h.instruments.Create(&domain.Instrument{
		InstrumentID: id,
		Symbol:       symbol,
		Name:         symbol,
		CurrentPrice: d(price),
		Active:       true,
	})
	if err != nil {
		t.Fatalf("create instrument %s: %v", id, err)
	}
}

func (h *harness) setPrice(t testing.TB, id, price string) {
	t.Helper()
	err := h.instruments.Update(id, func(i *domain.Instrument) error {
		i.CurrentPrice = d(price)
		return nil
	})
	if err != nil {
		t.Fatalf("set price: %v", err)
	}
}

func (h *harness) balance(t testing.TB, id string) decimal.Decimal {
	t.Helper()
	b, err := h.ledger.Balance(id)
	if err != nil {
		t.Fatalf("balance %s: %v", id, err)
	}
	return b
}

func (h *harness) place(t testing.TB, accountID string, side domain.OrderSide, qty int64) (*domain.Order, error) {
	t.Helper()
	return h.engine.PlaceOrder(context.Background(), PlaceOrderRequest{
		AccountID:    accountID,
		InstrumentID: "aapl",
		Side:         side,
		Quantity:     qty,
	})
}

func (h *harness) mustPlace(t testing.TB, accountID string, side domain.OrderSide, qty int64) *domain.Order {
	t.Helper()
	o, err := h.place(t, accountID, side, qty)
	if err != nil {
		t.Fatalf("PlaceOrder(%s %d): %v", side, qty, err)
	}
	return o
}
