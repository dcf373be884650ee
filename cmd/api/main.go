package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nljewellers/ledger/internal/infra/gateway/goldapi"
	"github.com/nljewellers/ledger/internal/infra/gateway/sheets"
	infraRedis "github.com/nljewellers/ledger/internal/infra/redis"
	"github.com/nljewellers/ledger/internal/infra/sqlite"
	"github.com/nljewellers/ledger/internal/ledger"
	"github.com/nljewellers/ledger/internal/module/pricing"
	"github.com/nljewellers/ledger/internal/module/stats"
	"github.com/nljewellers/ledger/internal/transport/httpapi"
	"github.com/nljewellers/ledger/internal/transport/httpapi/handler"
	"github.com/nljewellers/ledger/internal/transport/httpapi/middleware"
	"github.com/nljewellers/ledger/pkg/config"
	"github.com/nljewellers/ledger/pkg/logger"

	"github.com/redis/go-redis/v9"
)

func main() {
	// Create context that listens for termination signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.NewDefault(cfg.Env)
	log.Info("Starting NL Jewellers ledger API",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	// Load the purity table (built-in defaults unless a YAML override is set)
	purities, err := config.LoadPurityConfig(cfg.PurityConfigPath)
	if err != nil {
		log.Error("Failed to load purity config", "error", err)
		os.Exit(1)
	}

	// Initialize Redis. Drafts and the rate cache degrade gracefully when it
	// is down, so a failed ping is a warning rather than a fatal error.
	var draftStore ledger.DraftStore
	var rateCache pricing.RateCache
	var redisPinger handler.Pinger

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisURL,
		Password: cfg.RedisPassword,
		DB:       0,
	})
	defer redisClient.Close()

	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Warn("Redis unavailable, drafts and rate caching disabled", "error", err)
	} else {
		log.Info("Redis connection established")
		ds := infraRedis.NewDraftStore(redisClient, log)
		defer ds.Close()
		draftStore = ds
		rateCache = infraRedis.NewRateCache(redisClient, log)
		redisPinger = redisPing{redisClient}
	}

	// Open the local mirror used for cold starts when the sheet is down
	var mirror ledger.Mirror
	var mirrorPinger handler.Pinger
	if cfg.MirrorPath != "" {
		m, err := sqlite.Open(cfg.MirrorPath)
		if err != nil {
			log.Warn("Failed to open mirror, continuing without it", "error", err)
		} else {
			defer m.Close()
			mirror = m
			mirrorPinger = m
			log.Info("Mirror opened", "path", cfg.MirrorPath)
		}
	}

	// Initialize the sheet gateway
	var remote ledger.RemoteStore
	if cfg.SheetURL != "" {
		remote = sheets.NewClientWithTimeout(cfg.SheetURL, cfg.SheetTimeout)
		log.Info("Sheet gateway configured")
	} else {
		log.Warn("SHEET_URL not configured, running in read-only mode")
	}

	// Initialize the ledger service and load the initial snapshot
	cache := ledger.NewCache()
	ledgerSvc := ledger.NewService(cache, remote, mirror, purities, log)
	if err := ledgerSvc.Load(ctx); err != nil {
		log.Warn("Initial load failed, starting with an empty ledger", "error", err)
	}

	// Initialize the gold price service (if an API key is configured)
	var pricingSvc *pricing.Service
	if cfg.GoldAPIKey != "" {
		goldClient := goldapi.NewClient(cfg.GoldAPIURL, cfg.GoldAPIKey)
		pricingSvc = pricing.NewService(goldClient, rateCache, purities, log)
		log.Info("Gold price service initialized")
	} else {
		log.Warn("GOLD_API_KEY not configured, price endpoints disabled")
	}

	statsSvc := stats.NewService(ledgerSvc)
	jwtSvc := middleware.NewJWTService(cfg.JWTSecret)

	// Initialize HTTP handlers
	authHandler := handler.NewAuthHandler(cfg.AdminPasswordHash, jwtSvc)
	transactionHandler := handler.NewTransactionHandler(ledgerSvc)
	masterHandler := handler.NewMasterHandler(ledgerSvc)
	draftHandler := handler.NewDraftHandler(draftStore)
	exportHandler := handler.NewExportHandler(ledgerSvc)
	statsHandler := handler.NewStatsHandler(statsSvc)
	healthHandler := handler.NewHealthHandler(mirrorPinger, redisPinger)

	var priceHandler *handler.PriceHandler
	if pricingSvc != nil {
		priceHandler = handler.NewPriceHandler(pricingSvc)
	}

	// Determine allowed origins for CORS
	allowedOrigins := []string{"http://localhost:5173", "http://localhost:3000"}
	if cfg.IsProduction() {
		if origins := os.Getenv("ALLOWED_ORIGINS"); origins != "" {
			allowedOrigins = []string{origins}
		}
	}

	// Create HTTP router
	routerCfg := httpapi.Config{
		Logger:             log,
		AllowedOrigins:     allowedOrigins,
		AuthHandler:        authHandler,
		TransactionHandler: transactionHandler,
		MasterHandler:      masterHandler,
		DraftHandler:       draftHandler,
		ExportHandler:      exportHandler,
		PriceHandler:       priceHandler,
		StatsHandler:       statsHandler,
		HealthHandler:      healthHandler,
		JWTMiddleware:      middleware.JWTMiddleware(jwtSvc),
	}
	r := httpapi.NewRouter(routerCfg)

	// Create HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info("Server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for termination signal
	<-ctx.Done()
	log.Info("Shutdown signal received")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server shutdown failed", "error", err)
		os.Exit(1)
	}

	log.Info("Server stopped gracefully")
}

// redisPing adapts the go-redis client to the health Pinger interface.
type redisPing struct {
	client *redis.Client
}

func (p redisPing) Ping(ctx context.Context) error {
	return p.client.Ping(ctx).Err()
}
