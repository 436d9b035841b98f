package main

import (
	"context"
	"fmt"
	"log"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/apnchris/semaine/internal/config"
	"github.com/apnchris/semaine/internal/repository"
	"github.com/apnchris/semaine/internal/sanity"
	"github.com/apnchris/semaine/internal/service"
	"github.com/apnchris/semaine/internal/shopify"
)

// Runs the bulk catalog importer once from a shell and prints counts.
func main() {
	_ = godotenv.Load(".env")
	_ = godotenv.Load("../.env")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, _ := zap.NewDevelopment()
	defer logger.Sync()

	adminClient := shopify.NewClient(cfg.Shopify, logger)
	storeClient := sanity.NewClient(cfg.Sanity, logger)
	fullSyncSvc := service.NewFullSyncService(adminClient, storeClient, repository.NewNopRepositories(), logger)

	result, err := fullSyncSvc.RunFullSync(context.Background())
	if err != nil {
		logger.Fatal("Full sync failed", zap.Error(err))
	}

	fmt.Printf("Full sync complete: created=%d updated=%d errors=%d\n", result.Created, result.Updated, result.Errors)
	for _, detail := range result.ErrorDetails {
		fmt.Printf("  error: %s\n", detail)
	}
}
