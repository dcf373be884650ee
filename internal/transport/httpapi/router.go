package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/nljewellers/ledger/internal/transport/httpapi/handler"
	"github.com/nljewellers/ledger/internal/transport/httpapi/middleware"
	"github.com/nljewellers/ledger/pkg/logger"
)

// Config holds router configuration
type Config struct {
	Logger             *logger.Logger
	AllowedOrigins     []string
	AuthHandler        *handler.AuthHandler
	TransactionHandler *handler.TransactionHandler
	MasterHandler      *handler.MasterHandler
	DraftHandler       *handler.DraftHandler
	ExportHandler      *handler.ExportHandler
	PriceHandler       *handler.PriceHandler
	StatsHandler       *handler.StatsHandler
	HealthHandler      *handler.HealthHandler
	JWTMiddleware      func(http.Handler) http.Handler
}

// NewRouter creates a new HTTP router
func NewRouter(cfg Config) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.Logger(cfg.Logger))
	r.Use(middleware.CORS(cfg.AllowedOrigins))
	r.Use(chimiddleware.Compress(5))
	r.Use(middleware.RateLimit())

	// Health check endpoints (no authentication required)
	r.Get("/health", handler.GetHealth)
	r.Get("/health/live", handler.GetLiveness)
	if cfg.HealthHandler != nil {
		r.Get("/health/ready", cfg.HealthHandler.GetReadiness)
		r.Get("/health/detailed", cfg.HealthHandler.GetHealthDetailed)
	}

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		// Auth routes (public - no authentication required)
		if cfg.AuthHandler != nil {
			r.Post("/auth/login", cfg.AuthHandler.Login)
		}

		// Protected routes (require JWT authentication)
		if cfg.JWTMiddleware != nil {
			r.Group(func(r chi.Router) {
				r.Use(cfg.JWTMiddleware)

				// Ledger routes
				if cfg.TransactionHandler != nil {
					r.Get("/transactions", cfg.TransactionHandler.GetTransactions)
					r.Post("/transactions", cfg.TransactionHandler.SaveTransaction)
					r.Post("/transactions/bulk-delete", cfg.TransactionHandler.BulkDelete)
					r.Post("/transactions/bulk-paid", cfg.TransactionHandler.BulkMarkPaid)
				}

				// Master data routes
				if cfg.MasterHandler != nil {
					r.Get("/customers", cfg.MasterHandler.GetCustomers)
					r.Post("/customers", cfg.MasterHandler.SaveCustomer)
					r.Get("/items", cfg.MasterHandler.GetItems)
					r.Post("/items", cfg.MasterHandler.SaveItem)
				}

				// Draft routes
				if cfg.DraftHandler != nil {
					r.Route("/drafts/{id}", func(r chi.Router) {
						r.Get("/", cfg.DraftHandler.GetDraft)
						r.Put("/", cfg.DraftHandler.PutDraft)
						r.Delete("/", cfg.DraftHandler.DeleteDraft)
					})
				}

				// Export routes
				if cfg.ExportHandler != nil {
					r.Get("/export", cfg.ExportHandler.Export)
				}

				// Gold price routes
				if cfg.PriceHandler != nil {
					r.Get("/price", cfg.PriceHandler.GetRates)
					r.Post("/price/estimate", cfg.PriceHandler.Estimate)
				}

				// Dashboard routes
				if cfg.StatsHandler != nil {
					r.Get("/stats", cfg.StatsHandler.GetStats)
				}
			})
		}
	})

	return r
}
