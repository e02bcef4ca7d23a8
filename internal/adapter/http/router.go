package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/finvola/cardledger/internal/adapter/http/handler"
	"github.com/finvola/cardledger/internal/adapter/http/middleware"
	"github.com/finvola/cardledger/internal/usecase"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	LedgerHandler         *handler.LedgerHandler
	AccountHandler        *handler.AccountHandler
	AllocationHandler     *handler.AllocationHandler
	NetworkHandler        *handler.NetworkHandler
	ReconciliationHandler *handler.ReconciliationHandler
	HealthHandler         *handler.HealthHandler
	IdempotencyStore      usecase.IdempotencyStore
	RateLimiter           *middleware.RateLimiter
	Logger                zerolog.Logger
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewLoggingMiddleware(cfg.Logger).Wrap)
	r.Use(middleware.Metrics)
	r.Use(middleware.Recovery)

	if cfg.RateLimiter != nil {
		r.Use(cfg.RateLimiter.Limit)
	}

	// Health and metrics endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)
	r.Handle("/metrics", promhttp.Handler())

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		// Idempotency middleware for mutating requests
		if cfg.IdempotencyStore != nil {
			idempotencyMiddleware := middleware.NewIdempotencyMiddleware(cfg.IdempotencyStore)
			r.Use(idempotencyMiddleware.Wrap)
		}

		// Ledger accounts and journal entries
		r.Route("/ledger-accounts", func(r chi.Router) {
			r.Post("/", cfg.LedgerHandler.CreateLedgerAccount)
			r.Get("/{id}/balance", cfg.LedgerHandler.GetBalance)
		})

		r.Route("/journal-entries", func(r chi.Router) {
			r.Post("/", cfg.LedgerHandler.CreateJournalEntry)
			r.Get("/{id}", cfg.LedgerHandler.GetJournalEntry)
		})

		// Accounts
		r.Route("/accounts", func(r chi.Router) {
			r.Post("/", cfg.AccountHandler.Create)
			r.Get("/", cfg.AccountHandler.List)
			r.Get("/{id}", cfg.AccountHandler.Get)
			r.Post("/{id}/debit", cfg.AccountHandler.Debit)
			r.Post("/{id}/credit", cfg.AccountHandler.Credit)
			r.Get("/{id}/adjustments", cfg.AccountHandler.ListAdjustments)
			r.Get("/{id}/holds", cfg.AccountHandler.ListHolds)
			r.Get("/{id}/reconciliation", cfg.ReconciliationHandler.ReconcileAccount)
		})

		r.Get("/adjustments/{id}", cfg.AccountHandler.GetAdjustment)

		// Allocations
		r.Route("/allocations", func(r chi.Router) {
			r.Post("/", cfg.AllocationHandler.Create)
			r.Post("/reallocate", cfg.AllocationHandler.Reallocate)
			r.Get("/{id}", cfg.AllocationHandler.Get)
			r.Get("/{id}/children", cfg.AllocationHandler.ListChildren)
			r.Get("/{id}/permissions", cfg.AllocationHandler.GetPermissions)
			r.Post("/{id}/fund", cfg.AllocationHandler.Fund)
			r.Post("/{id}/defund", cfg.AllocationHandler.Defund)
		})

		// Card network events
		r.Route("/network", func(r chi.Router) {
			r.Post("/messages", cfg.NetworkHandler.Process)
			r.Get("/messages/{externalRef}", cfg.NetworkHandler.ListByExternalRef)
		})

		// Ledger-wide consistency
		r.Get("/ledger/consistency", cfg.ReconciliationHandler.CheckConsistency)
	})

	return r
}
