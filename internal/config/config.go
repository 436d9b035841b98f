package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Port        string
	Environment string
	LogLevel    string

	Shopify  ShopifyConfig
	Sanity   SanityConfig
	Database DatabaseConfig

	// AdminAPIKeyHash is a bcrypt hash of the operator key protecting
	// /v1/admin routes; empty disables those routes.
	AdminAPIKeyHash string

	// FullSyncInterval enables the periodic bulk catalog import when > 0.
	FullSyncInterval time.Duration
}

// ShopifyConfig covers both the Admin API (source of truth for the sync) and
// the optional Storefront API used as an availability fallback.
type ShopifyConfig struct {
	StoreDomain           string
	AdminToken            string
	APIVersion            string
	StorefrontDomain      string
	StorefrontAccessToken string
}

// SanityConfig is the content-store connection. APIHost is overridable for
// tests and self-hosted deployments.
type SanityConfig struct {
	ProjectID  string
	Dataset    string
	APIVersion string
	WriteToken string
	APIHost    string
}

// DatabaseConfig is the optional Postgres journal. An empty Host disables it.
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

func (d DatabaseConfig) Enabled() bool {
	return d.Host != ""
}

func Load() (*Config, error) {
	viper.SetConfigType("env")
	viper.SetConfigName(".env")
	viper.AddConfigPath(".")
	viper.AddConfigPath("..")
	viper.AddConfigPath("../..")

	// Set defaults
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("ENVIRONMENT", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("SHOPIFY_API_VERSION", "2024-01")
	viper.SetDefault("SANITY_DATASET", "production")
	viper.SetDefault("SANITY_API_VERSION", "2024-01-01")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_SSLMODE", "disable")

	// Read from environment variables
	viper.AutomaticEnv()

	// Try to read .env file (optional)
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	fullSyncInterval := time.Duration(0)
	if raw := getEnvOrViper("FULL_SYNC_INTERVAL", ""); raw != "" && raw != "0" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid FULL_SYNC_INTERVAL %q: %w", raw, err)
		}
		fullSyncInterval = d
	}

	cfg := &Config{
		Port:        getEnvOrViper("PORT", "8080"),
		Environment: getEnvOrViper("ENVIRONMENT", "development"),
		LogLevel:    getEnvOrViper("LOG_LEVEL", "info"),
		Shopify: ShopifyConfig{
			StoreDomain:           strings.TrimSpace(getEnvOrViper("SHOPIFY_STORE_DOMAIN", "")),
			AdminToken:            strings.TrimSpace(getEnvOrViper("SHOPIFY_ADMIN_API_TOKEN", "")),
			APIVersion:            getEnvOrViper("SHOPIFY_API_VERSION", "2024-01"),
			StorefrontDomain:      strings.TrimSpace(getEnvOrViper("SHOPIFY_STOREFRONT_DOMAIN", "")),
			StorefrontAccessToken: strings.TrimSpace(getEnvOrViper("SHOPIFY_STOREFRONT_ACCESS_TOKEN", "")),
		},
		Sanity: SanityConfig{
			ProjectID:  strings.TrimSpace(getEnvOrViper("SANITY_PROJECT_ID", "")),
			Dataset:    getEnvOrViper("SANITY_DATASET", "production"),
			APIVersion: getEnvOrViper("SANITY_API_VERSION", "2024-01-01"),
			WriteToken: strings.TrimSpace(getEnvOrViper("SANITY_API_WRITE_TOKEN", "")),
			APIHost:    strings.TrimSpace(getEnvOrViper("SANITY_API_HOST", "")),
		},
		Database: DatabaseConfig{
			Host:     getEnvOrViper("DB_HOST", ""),
			Port:     getEnvOrViper("DB_PORT", "5432"),
			User:     getEnvOrViper("DB_USER", "postgres"),
			Password: getEnvOrViper("DB_PASSWORD", "postgres"),
			DBName:   getEnvOrViper("DB_NAME", "semaine"),
			SSLMode:  getEnvOrViper("DB_SSLMODE", "disable"),
		},
		AdminAPIKeyHash:  strings.TrimSpace(getEnvOrViper("ADMIN_API_KEY_HASH", "")),
		FullSyncInterval: fullSyncInterval,
	}

	// Validate required fields
	if cfg.Shopify.StoreDomain == "" {
		return nil, fmt.Errorf("SHOPIFY_STORE_DOMAIN is required")
	}
	if cfg.Shopify.AdminToken == "" {
		return nil, fmt.Errorf("SHOPIFY_ADMIN_API_TOKEN is required")
	}
	if cfg.Sanity.ProjectID == "" {
		return nil, fmt.Errorf("SANITY_PROJECT_ID is required")
	}
	if cfg.Sanity.WriteToken == "" {
		return nil, fmt.Errorf("SANITY_API_WRITE_TOKEN is required")
	}

	return cfg, nil
}

func getEnvOrViper(key, defaultValue string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	if viper.IsSet(key) {
		return viper.GetString(key)
	}
	return defaultValue
}
