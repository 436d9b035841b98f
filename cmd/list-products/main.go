package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/apnchris/semaine/internal/config"
	"github.com/apnchris/semaine/internal/shopify"
)

// Pages through the Shopify catalog and prints id, handle and status per
// product. Useful for checking credentials before wiring webhooks.
func main() {
	_ = godotenv.Load(".env")
	_ = godotenv.Load("../.env")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, _ := zap.NewDevelopment()
	defer logger.Sync()

	client := shopify.NewClient(cfg.Shopify, logger)

	cursor := ""
	total := 0
	for {
		variables := map[string]interface{}{"first": 50}
		if cursor != "" {
			variables["after"] = cursor
		}

		resp, err := client.Execute(context.Background(), shopify.ProductsPageQuery, variables)
		if err != nil {
			logger.Fatal("Products query failed", zap.Error(err))
		}

		var result struct {
			Products struct {
				PageInfo struct {
					HasNextPage bool   `json:"hasNextPage"`
					EndCursor   string `json:"endCursor"`
				} `json:"pageInfo"`
				Edges []struct {
					Node struct {
						ID     string `json:"id"`
						Title  string `json:"title"`
						Handle string `json:"handle"`
						Status string `json:"status"`
					} `json:"node"`
				} `json:"edges"`
			} `json:"products"`
		}
		if err := json.Unmarshal(resp.Data, &result); err != nil {
			logger.Fatal("Failed to parse products page", zap.Error(err))
		}

		for _, e := range result.Products.Edges {
			total++
			fmt.Printf("%-16s %-40s %s\n", shopify.NumericID(e.Node.ID), e.Node.Handle, e.Node.Status)
		}

		if !result.Products.PageInfo.HasNextPage {
			break
		}
		cursor = result.Products.PageInfo.EndCursor
	}

	fmt.Printf("total: %d products\n", total)
}
