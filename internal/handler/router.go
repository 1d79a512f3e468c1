package handler

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/efreitasn/tradesim/internal/service"
)

// Services groups the application services the router dispatches to.
type Services struct {
	Accounts     *service.AccountService
	Instruments  *service.InstrumentService
	Orders       *service.OrderService
	Portfolio    *service.PortfolioService
	Transactions *service.TransactionService
	Market       *service.MarketService
	Brokers      *service.BrokerService
	Commissions  *service.CommissionService
}

// NewRouter creates a chi router with all routes registered, request logging,
// and Content-Type validation middleware.
func NewRouter(svcs Services, logger *slog.Logger) chi.Router {
	r := chi.NewRouter()

	// Global middleware.
	r.Use(requestLogging(logger))
	r.Use(contentTypeJSON)

	// Create handlers.
	accountH := NewAccountHandler(svcs.Accounts, svcs.Orders)
	instrumentH := NewInstrumentHandler(svcs.Instruments)
	orderH := NewOrderHandler(svcs.Orders)
	portfolioH := NewPortfolioHandler(svcs.Portfolio, svcs.Transactions)
	marketH := NewMarketHandler(svcs.Market)
	brokerH := NewBrokerHandler(svcs.Brokers)
	commissionH := NewCommissionHandler(svcs.Commissions)

	// Health check.
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// Account routes.
	r.Post("/accounts", accountH.Register)
	r.Route("/accounts/{account_id}", func(r chi.Router) {
		r.Get("/", accountH.Get)
		r.Put("/kyc", accountH.SetKYC)
		r.Post("/deactivate", accountH.Deactivate)
		r.Post("/deposit", accountH.Deposit)
		r.Post("/withdraw", accountH.Withdraw)
		r.Get("/orders", accountH.ListOrders)

		r.Get("/portfolio", portfolioH.GetPortfolio)
		r.Post("/portfolio/recalculate", portfolioH.Recalculate)
		r.Get("/portfolio/top", portfolioH.TopHoldings)
		r.Get("/portfolio/gainers", portfolioH.Gainers)
		r.Get("/portfolio/losers", portfolioH.Losers)
		r.Get("/positions/{instrument_id}", portfolioH.GetPosition)
		r.Get("/transactions", portfolioH.ListTransactions)
	})

	// Instrument routes.
	r.Post("/instruments", instrumentH.Register)
	r.Get("/instruments", instrumentH.List)
	r.Get("/instruments/{instrument_id}", instrumentH.Get)
	r.Put("/instruments/{instrument_id}/price", instrumentH.UpdatePrice)
	r.Post("/instruments/{instrument_id}/activate", instrumentH.Activate)
	r.Post("/instruments/{instrument_id}/deactivate", instrumentH.Deactivate)

	// Order routes.
	r.Post("/orders", orderH.PlaceOrder)
	r.Post("/orders/expire", orderH.ProcessExpired)
	r.Post("/orders/execute-pending", orderH.ExecutePending)
	r.Get("/orders/{order_id}", orderH.GetOrder)
	r.Patch("/orders/{order_id}", orderH.ModifyOrder)
	r.Delete("/orders/{order_id}", orderH.CancelOrder)

	// Market routes.
	r.Get("/market/status", marketH.Status)
	r.Post("/market/open", marketH.Open)
	r.Post("/market/close", marketH.Close)
	r.Post("/market/reset", marketH.Reset)

	// Broker routes.
	r.Get("/brokers/earnings", brokerH.ListEarnings)
	r.Get("/brokers/{broker_id}/earnings", brokerH.GetEarnings)
	r.Put("/brokers/assignments/{account_id}", brokerH.Assign)
	r.Delete("/brokers/assignments/{account_id}", brokerH.Unassign)

	// Commission rate routes.
	r.Get("/commission-rates", commissionH.List)
	r.Put("/commission-rates/{symbol}", commissionH.Set)
	r.Delete("/commission-rates/{symbol}", commissionH.Remove)

	return r
}

// requestLogging returns middleware that logs each request's method, path,
// status code, and duration using slog.
func requestLogging(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := &statusWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(ww, r)
			logger.Info("request",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", ww.status),
				slog.Duration("duration", time.Since(start)),
			)
		})
	}
}

// statusWriter wraps http.ResponseWriter to capture the status code.
type statusWriter struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (w *statusWriter) WriteHeader(code int) {
	if !w.wroteHeader {
		w.status = code
		w.wroteHeader = true
	}
	w.ResponseWriter.WriteHeader(code)
}

// contentTypeJSON is middleware that validates Content-Type for POST, PUT, and
// PATCH requests that carry a body. Bodyless action routes such as
// /market/open pass through.
func contentTypeJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hasBody := r.ContentLength != 0
		if hasBody && (r.Method == http.MethodPost || r.Method == http.MethodPut || r.Method == http.MethodPatch) {
			ct := r.Header.Get("Content-Type")
			if ct == "" || !strings.HasPrefix(ct, "application/json") {
				WriteError(w, http.StatusBadRequest, "invalid_request",
					"Content-Type must be application/json")
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}
