package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/apnchris/semaine/internal/api/handlers"
	"github.com/apnchris/semaine/internal/api/middleware"
	"github.com/apnchris/semaine/internal/config"
	"github.com/apnchris/semaine/internal/repository"
	"github.com/apnchris/semaine/internal/service"
)

// NewRouter creates and configures the Gin router
func NewRouter(cfg *config.Config, syncSvc *service.SyncService, fullSyncSvc *service.FullSyncService, repos *repository.Repositories, logger *zap.Logger) *gin.Engine {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Middleware
	router.Use(customRecovery(logger))
	router.Use(loggingMiddleware(logger))

	// Root: friendly response so GET / returns 200 instead of 404
	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"service": "Semaine product sync",
			"endpoints": []string{
				"GET /health",
				"POST /webhooks/shopify/sync",
				"POST /v1/admin/sync/full",
				"GET /v1/admin/sync/runs",
			},
		})
	})

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Shopify webhook: product create/update/sync/delete batches
	router.OPTIONS("/webhooks/shopify/sync", handlers.HandleSyncPreflight())
	router.POST("/webhooks/shopify/sync", handlers.HandleShopifySyncWebhook(syncSvc, logger))

	// Admin routes (operator key required)
	v1 := router.Group("/v1")
	{
		adminRoutes := v1.Group("/admin")
		adminRoutes.Use(middleware.AdminAuthMiddleware(cfg.AdminAPIKeyHash, logger))
		{
			adminRoutes.POST("/sync/full", handlers.HandleFullSync(fullSyncSvc, logger))
			adminRoutes.GET("/sync/runs", handlers.HandleListSyncRuns(repos, logger))
		}
	}

	return router
}

// customRecovery is a custom recovery middleware that logs panics
func customRecovery(logger *zap.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		logger.Error("Panic recovered",
			zap.Any("error", recovered),
			zap.String("path", c.Request.URL.Path),
			zap.String("method", c.Request.Method),
		)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal server error",
			"details": fmt.Sprintf("%v", recovered),
		})
	})
}

// loggingMiddleware logs HTTP requests
func loggingMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		status := c.Writer.Status()
		logger.Info("HTTP request",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", status),
		)
	}
}
