package main

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/efreitasn/tradesim/internal/config"
	"github.com/efreitasn/tradesim/internal/engine"
)

func testConfig() *config.Config {
	session := engine.DefaultSession()
	return &config.Config{
		ExpirationInterval: time.Hour,
		MarketOpen:         session.Open,
		MarketClose:        session.Close,
		MarketLocation:     time.UTC,
		TradingDays:        session.TradingDays,
		CommissionRate:     decimal.RequireFromString("0.001"),
		TaxRate:            decimal.RequireFromString("0.0005"),
		DefaultBrokerID:    "broker-1",
		JournalDriver:      "memory",
	}
}

func TestNewApp(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	a, err := newApp(context.Background(), testConfig(), logger)
	require.NoError(t, err)
	defer a.journal.Close()

	srv := httptest.NewServer(a.router)
	defer srv.Close()

	require.NoError(t, healthcheck(srv.URL))

	n, err := sweep(srv.URL)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestNewApp_UnknownJournal(t *testing.T) {
	cfg := testConfig()
	cfg.JournalDriver = "mongo"
	_, err := newApp(context.Background(), cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	assert.Error(t, err)
}

func TestHealthcheck_Unhealthy(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	assert.Error(t, healthcheck(srv.URL))
}

func TestRootCmd_Subcommands(t *testing.T) {
	root := newRootCmd()
	for _, name := range []string{"serve", "healthcheck", "sweep"} {
		cmd, _, err := root.Find([]string{name})
		require.NoError(t, err)
		assert.Equal(t, name, cmd.Name())
	}
}
