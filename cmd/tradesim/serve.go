package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"

	"github.com/efreitasn/tradesim/internal/config"
	"github.com/efreitasn/tradesim/internal/engine"
	"github.com/efreitasn/tradesim/internal/handler"
	"github.com/efreitasn/tradesim/internal/journal"
	"github.com/efreitasn/tradesim/internal/service"
	"github.com/efreitasn/tradesim/internal/store"
)

// app is a fully wired instance of the simulator.
type app struct {
	router  chi.Router
	expiry  *engine.ExpiryManager
	journal journal.Journal
}

// newApp wires stores, engine, services and router from cfg.
func newApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*app, error) {
	j, err := journal.Open(ctx, cfg.JournalDriver, cfg.JournalDSN)
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}

	settings := cfg.Settings
	if settings == nil {
		settings = &config.Settings{}
	}

	// Stores.
	accounts := store.NewAccountStore()
	instruments := store.NewInstrumentStore()
	orders := store.NewOrderStore()
	positions := store.NewPositionStore()
	rates := store.NewRateTable(settings.CommissionRates)
	directory := store.NewBrokerDirectory(cfg.DefaultBrokerID, settings.BrokerAssignments)

	// Engine.
	clock := engine.NewMarketClock(engine.Session{
		Open:        cfg.MarketOpen,
		Close:       cfg.MarketClose,
		TradingDays: cfg.TradingDays,
		Location:    cfg.MarketLocation,
	}, engine.NewMarketClockState(), nil)
	ledger := engine.NewAccountLedger(accounts, nil)
	holdings := engine.NewHoldingsBook(positions, instruments, nil)
	transactions := engine.NewTransactionLedger(j)

	eng := engine.NewOrderEngine(engine.Dependencies{
		Accounts:    accounts,
		Instruments: instruments,
		Orders:      orders,
		Ledger:      ledger,
		Holdings:    holdings,
		Fees:        engine.NewFeeCalculator(cfg.CommissionRate, cfg.TaxRate, rates),
		Router:      engine.NewCommissionRouter(accounts, ledger, logger),
		Brokers:     directory,
		Journal:     transactions,
		Clock:       clock,
		Logger:      logger,
	})

	// Router.
	router := handler.NewRouter(handler.Services{
		Accounts:     service.NewAccountService(accounts, ledger, eng, nil),
		Instruments:  service.NewInstrumentService(instruments, nil),
		Orders:       service.NewOrderService(eng, orders, accounts, instruments, nil),
		Portfolio:    service.NewPortfolioService(accounts, ledger, holdings),
		Transactions: service.NewTransactionService(accounts, transactions),
		Market:       service.NewMarketService(clock),
		Brokers:      service.NewBrokerService(accounts, directory),
		Commissions:  service.NewCommissionService(rates, cfg.CommissionRate),
	}, logger)

	return &app{
		router:  router,
		expiry:  engine.NewExpiryManager(cfg.ExpirationInterval, eng, logger),
		journal: j,
	}, nil
}

func newLogger(level string) *slog.Logger {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
}

func serve(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		return err
	}

	logger := newLogger(cfg.LogLevel)
	slog.SetDefault(logger)

	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to start", slog.String("error", err.Error()))
		return err
	}
	defer a.journal.Close()

	// Start expiration goroutine with cancellable context.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	a.expiry.Start(ctx)

	// Configure HTTP server.
	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      a.router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting",
			slog.String("addr", addr),
			slog.String("journal", cfg.JournalDriver),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	// Wait for SIGINT/SIGTERM or a server failure.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-sigCh:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))
	case err := <-errCh:
		logger.Error("server error", slog.String("error", err.Error()))
		return err
	}

	// Graceful shutdown: stop HTTP server, cancel context (stops expiry goroutine).
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", slog.String("error", err.Error()))
	}
	cancel()

	logger.Info("server stopped")
	return nil
}
