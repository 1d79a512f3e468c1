package service

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/efreitasn/tradesim/internal/domain"
	"github.com/efreitasn/tradesim/internal/engine"
	"github.com/efreitasn/tradesim/internal/store"
)

// monday10am is inside the default session.
var monday10am = time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// testEnv bundles every service over fresh in-memory stores.
type testEnv struct {
	now         time.Time
	accounts    *store.AccountStore
	instruments *store.InstrumentStore
	orders      *store.OrderStore
	directory   *store.BrokerDirectory
	rates       *store.RateTable
	state       *engine.MarketClockState
	engine      *engine.OrderEngine

	accountSvc     *AccountService
	instrumentSvc  *InstrumentService
	orderSvc       *OrderService
	portfolioSvc   *PortfolioService
	marketSvc      *MarketService
	brokerSvc      *BrokerService
	commissionSvc  *CommissionService
	transactionSvc *TransactionService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{
		now:         monday10am,
		accounts:    store.NewAccountStore(),
		instruments: store.NewInstrumentStore(),
		orders:      store.NewOrderStore(),
		directory:   store.NewBrokerDirectory("broker-1", nil),
		rates:       store.NewRateTable(nil),
		state:       engine.NewMarketClockState(),
	}
	now := func() time.Time { return env.now }
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	session := engine.DefaultSession()
	session.Location = time.UTC
	clock := engine.NewMarketClock(session, env.state, now)
	ledger := engine.NewAccountLedger(env.accounts, now)
	holdings := engine.NewHoldingsBook(store.NewPositionStore(), env.instruments, now)
	transactions := engine.NewTransactionLedger(store.NewTransactionStore())

	env.engine = engine.NewOrderEngine(engine.Dependencies{
		Accounts:    env.accounts,
		Instruments: env.instruments,
		Orders:      env.orders,
		Ledger:      ledger,
		Holdings:    holdings,
		Fees:        engine.NewFeeCalculator(dec("0.001"), dec("0.0005"), env.rates),
		Router:      engine.NewCommissionRouter(env.accounts, ledger, logger),
		Brokers:     env.directory,
		Journal:     transactions,
		Clock:       clock,
		Logger:      logger,
		Now:         now,
	})

	env.accountSvc = NewAccountService(env.accounts, ledger, env.engine, now)
	env.instrumentSvc = NewInstrumentService(env.instruments, now)
	env.orderSvc = NewOrderService(env.engine, env.orders, env.accounts, env.instruments, now)
	env.portfolioSvc = NewPortfolioService(env.accounts, ledger, holdings)
	env.marketSvc = NewMarketService(clock)
	env.brokerSvc = NewBrokerService(env.accounts, env.directory)
	env.commissionSvc = NewCommissionService(env.rates, dec("0.001"))
	env.transactionSvc = NewTransactionService(env.accounts, transactions)

	env.registerAccount(t, "broker-1", domain.RoleBroker, domain.AccountModeReal, "0")
	env.registerInstrument(t, "aapl", "AAPL", "170.00")
	return env
}

func (env *testEnv) registerAccount(t *testing.T, id string, role domain.Role, mode domain.AccountMode, balance string) {
	t.Helper()
	_, err := env.accountSvc.Register(RegisterAccountRequest{
		AccountID:      id,
		Name:           id,
		Role:           role,
		Mode:           mode,
		KYCStatus:      domain.KYCApproved,
		InitialBalance: dec(balance),
	})
	if err != nil {
		t.Fatalf("failed to register account %s: %v", id, err)
	}
}

func (env *testEnv) registerInstrument(t *testing.T, id, symbol, price string) {
	t.Helper()
	_, err := env.instrumentSvc.Register(RegisterInstrumentRequest{
		InstrumentID: id,
		Symbol:       symbol,
		Price:        dec(price),
	})
	if err != nil {
		t.Fatalf("failed to register instrument %s: %v", id, err)
	}
}

func (env *testEnv) buy(t *testing.T, accountID, instrumentID string, qty int64) *domain.Order {
	t.Helper()
	return env.place(t, accountID, instrumentID, domain.OrderSideBuy, qty)
}

func (env *testEnv) place(t *testing.T, accountID, instrumentID string, side domain.OrderSide, qty int64) *domain.Order {
	t.Helper()
	o, err := env.orderSvc.PlaceOrder(context.Background(), PlaceOrderRequest{
		AccountID:    accountID,
		InstrumentID: instrumentID,
		Side:         side,
		Quantity:     qty,
	})
	if err != nil {
		t.Fatalf("PlaceOrder(%s %s %d): %v", side, instrumentID, qty, err)
	}
	return o
}
