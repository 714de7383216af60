package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/iho/kasa/internal/adapter/http/handler"
	"github.com/iho/kasa/internal/adapter/http/middleware"
	"github.com/iho/kasa/internal/usecase"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	AccountHandler   *handler.AccountHandler
	PaymentHandler   *handler.PaymentHandler
	TransferHandler  *handler.TransferHandler
	RateHandler      *handler.RateHandler
	ReportHandler    *handler.ReportHandler
	LedgerHandler    *handler.LedgerHandler
	HealthHandler    *handler.HealthHandler
	IdempotencyStore usecase.IdempotencyStore
	IdempotencyTTL   time.Duration
	Logger           zerolog.Logger
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewLoggingMiddleware(cfg.Logger).Wrap)
	r.Use(middleware.Recovery)
	r.Use(middleware.Metrics)

	// Health endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)
	r.Handle("/metrics", promhttp.Handler())

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		// Idempotency middleware for mutating requests
		if cfg.IdempotencyStore != nil {
			idempotencyMiddleware := middleware.NewIdempotencyMiddleware(cfg.IdempotencyStore, cfg.IdempotencyTTL)
			r.Use(idempotencyMiddleware.Wrap)
		}

		// Accounts
		r.Route("/accounts", func(r chi.Router) {
			r.Post("/", cfg.AccountHandler.Create)
			r.Get("/", cfg.AccountHandler.List)
			r.Get("/{id}", cfg.AccountHandler.Get)
			r.Put("/{id}/active", cfg.AccountHandler.SetActive)
			r.Get("/{id}/balance-history", cfg.PaymentHandler.BalanceHistory)
			r.Get("/{id}/balance-at", cfg.LedgerHandler.BalanceAt)
			r.Get("/{id}/transfers", cfg.TransferHandler.ListByAccount)
			r.Get("/{id}/reconciliation", cfg.LedgerHandler.ReconcileAccount)
		})

		// Payments
		r.Route("/payments", func(r chi.Router) {
			r.Post("/", cfg.PaymentHandler.Create)
			r.Get("/", cfg.PaymentHandler.List)
			r.Get("/{id}", cfg.PaymentHandler.Get)
			r.Put("/{id}", cfg.PaymentHandler.Update)
			r.Post("/{id}/delete-request", cfg.PaymentHandler.RequestDelete)
			r.Delete("/{id}", cfg.PaymentHandler.Delete)
		})

		// Transfers
		r.Route("/transfers", func(r chi.Router) {
			r.Post("/", cfg.TransferHandler.Create)
			r.Get("/{id}", cfg.TransferHandler.Get)
		})

		// Exchange rates
		r.Route("/rates", func(r chi.Router) {
			r.Post("/", cfg.RateHandler.Record)
			r.Get("/cross", cfg.RateHandler.Cross)
			r.Get("/{currency}", cfg.RateHandler.Get)
		})

		// Transaction lines and reports
		r.Route("/items", func(r chi.Router) {
			r.Post("/", cfg.ReportHandler.RecordItem)
		})
		r.Route("/reports", func(r chi.Router) {
			r.Get("/profit-loss", cfg.ReportHandler.ProfitLoss)
			r.Get("/currency-summary", cfg.ReportHandler.CurrencySummary)
		})

		// Ledger-wide operations
		r.Route("/ledger", func(r chi.Router) {
			r.Get("/consistency", cfg.LedgerHandler.CheckConsistency)
			r.Get("/references/{type}/{id}", cfg.LedgerHandler.ReferenceEvents)
		})
	})

	return r
}
