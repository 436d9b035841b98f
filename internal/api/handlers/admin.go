package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/apnchris/semaine/internal/repository"
	"github.com/apnchris/semaine/internal/service"
)

// HandleFullSync handles POST /v1/admin/sync/full: runs the bulk catalog
// importer synchronously and reports counts. No request body.
func HandleFullSync(fullSyncSvc *service.FullSyncService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		result, err := fullSyncSvc.RunFullSync(c.Request.Context())
		if err != nil {
			logger.Error("Full sync failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"success":      true,
			"created":      result.Created,
			"updated":      result.Updated,
			"errors":       result.Errors,
			"errorDetails": result.ErrorDetails,
		})
	}
}

// HandleListSyncRuns handles GET /v1/admin/sync/runs.
func HandleListSyncRuns(repos *repository.Repositories, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit := 50
		if raw := c.Query("limit"); raw != "" {
			if n, err := strconv.Atoi(raw); err == nil && n > 0 {
				limit = n
			}
		}

		runs, err := repos.SyncRun.ListRecent(c.Request.Context(), limit)
		if err != nil {
			logger.Error("Failed to list sync runs", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "failed to list sync runs"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "runs": runs})
	}
}
