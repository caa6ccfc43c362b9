package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"care-advisor/internal/api"
	"care-advisor/internal/api/handlers"
	"care-advisor/internal/cache"
	"care-advisor/internal/catalog"
	"care-advisor/internal/metrics"
	"care-advisor/internal/repository"
	"care-advisor/internal/service"
	"care-advisor/pkg/config"
	"care-advisor/pkg/logger"
	"care-advisor/pkg/postgres"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
)

// @title Care Advisor API
// @version 1.0
// @description Recommends care-automation products and features for operational issues described by healthcare staff.

// @contact.name API Support

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize global logger
	if err := logger.Init(cfg.Logger.Level); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	appLogger := logger.Get()
	logger.Info("Starting care advisor service")

	store, err := catalog.Load(cfg.Catalog.Path)
	if err != nil {
		logger.Fatal("Failed to load catalog", zap.String("path", cfg.Catalog.Path), zap.Error(err))
	}
	logger.Info("Catalog loaded", zap.String("path", store.Path()), zap.Int("records", store.Len()))

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	appMetrics := metrics.New(registry)

	ctx := context.Background()

	// Audit sink
	var auditSink service.AuditSink
	if cfg.Audit.Enabled {
		if cfg.Audit.RunMigrations {
			if err := postgres.RunMigrations(&cfg.Database, appLogger); err != nil {
				logger.Fatal("Failed to run migrations", zap.Error(err))
			}
		}

		db, err := postgres.NewPool(ctx, &cfg.Database, appLogger)
		if err != nil {
			logger.Fatal("Failed to connect to database", zap.Error(err))
		}
		defer db.Close()

		auditSink = repository.NewAuditRepository(db, cfg.Audit.Table, logger.Named("audit_repository"))
	} else {
		logger.Warn("Audit logging disabled")
	}

	// Proposal cache
	cacheClient, err := cache.New(&cfg.Cache)
	if err != nil {
		logger.Warn("Proposal cache unavailable, continuing without it", zap.Error(err))
		cacheClient = nil
	}
	if cacheClient != nil {
		defer cacheClient.Close()
	}

	completer, err := service.NewCompleter(cfg, logger.Named("llm"))
	if err != nil {
		logger.Fatal("Failed to initialize LLM provider", zap.Error(err))
	}
	if completer != nil {
		defer completer.Close()
	}

	// Initialize services
	fallbackClient := service.NewFallbackClient(completer, cacheClient, cfg.LLM, appMetrics, logger.Named("fallback"))
	auditLogger := service.NewAuditLogger(auditSink, cfg.Audit, appMetrics, logger.Named("audit"))
	advisoryService := service.NewAdvisoryService(
		store,
		service.NewMatcher(cfg.Matcher),
		fallbackClient,
		service.NewArbiter(cfg.Arbiter),
		service.NewNormalizer(cfg.Output),
		auditLogger,
		appMetrics,
		logger.Named("advisory"),
	)

	// Initialize handlers
	advisoryHandler := handlers.NewAdvisoryHandler(advisoryService, appLogger)
	healthHandler := handlers.NewHealthHandler(store.Len(), cfg.LLM.Provider, auditSink != nil)

	// Setup router
	app := api.SetupRouter(advisoryHandler, healthHandler, registry, &cfg.Server, appLogger)

	// Start server
	go func() {
		addr := ":" + cfg.Server.Port
		logger.Info("Server starting", zap.String("address", addr))
		if err := app.Listen(addr); err != nil {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server")
	if err := app.Shutdown(); err != nil {
		logger.Error("Server shutdown error", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Audit.WriteTimeout+time.Second)
	defer cancel()
	if err := auditLogger.Close(shutdownCtx); err != nil {
		logger.Warn("Audit logger did not drain", zap.Error(err))
	}
}
