package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/apnchris/semaine/internal/api"
	"github.com/apnchris/semaine/internal/config"
	"github.com/apnchris/semaine/internal/repository"
	"github.com/apnchris/semaine/internal/repository/postgres"
	"github.com/apnchris/semaine/internal/sanity"
	"github.com/apnchris/semaine/internal/service"
	"github.com/apnchris/semaine/internal/shopify"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	var logger *zap.Logger
	if cfg.Environment == "production" {
		logger, _ = zap.NewProduction()
	} else {
		logger, _ = zap.NewDevelopment()
	}
	defer logger.Sync()

	logger.Info("Starting product sync server",
		zap.String("port", cfg.Port),
		zap.String("environment", cfg.Environment),
	)

	// Sync-run journal: Postgres when configured, otherwise a no-op so the
	// sync core never depends on the database.
	repos := repository.NewNopRepositories()
	if cfg.Database.Enabled() {
		db, err := postgres.NewConnection(cfg.Database)
		if err != nil {
			logger.Fatal("Failed to connect to database", zap.Error(err))
		}
		defer db.Close()
		if err := postgres.EnsureSchema(db); err != nil {
			logger.Fatal("Failed to ensure database schema", zap.Error(err))
		}
		repos = postgres.NewRepositories(db, logger)
	} else {
		logger.Warn("DB_HOST not set, sync-run journal disabled")
	}

	// Initialize clients and services
	adminClient := shopify.NewClient(cfg.Shopify, logger)
	storefrontClient := shopify.NewStorefrontClient(cfg.Shopify, logger)
	storeClient := sanity.NewClient(cfg.Sanity, logger)

	syncSvc := service.NewSyncService(adminClient, storefrontClient, storeClient, repos, logger)
	fullSyncSvc := service.NewFullSyncService(adminClient, storeClient, repos, logger)

	// Initialize router
	router := api.NewRouter(cfg, syncSvc, fullSyncSvc, repos, logger)

	// Create HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Optional scheduled full sync: runs on startup, then every interval
	syncCtx, cancelSync := context.WithCancel(context.Background())
	defer cancelSync()
	if cfg.FullSyncInterval > 0 {
		go fullSyncSvc.RunFullSyncLoop(syncCtx, cfg.FullSyncInterval)
		logger.Info("Scheduled full sync started", zap.Duration("interval", cfg.FullSyncInterval))
	}

	logger.Info("Server started successfully", zap.String("address", srv.Addr))

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}
