package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/apnchris/semaine/internal/domain"
	"github.com/apnchris/semaine/internal/service"
	apperrors "github.com/apnchris/semaine/pkg/errors"
)

// setCORSHeaders mirrors what the webhook sender's browser-side tooling
// expects on every response, success or failure.
func setCORSHeaders(c *gin.Context) {
	c.Header("Access-Control-Allow-Origin", "*")
}

// HandleSyncPreflight handles OPTIONS on the webhook endpoint.
func HandleSyncPreflight() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type")
		c.JSON(http.StatusOK, gin.H{})
	}
}

// HandleShopifySyncWebhook handles POST /webhooks/shopify/sync.
//
// The payload is either a deletion directive (productIds) or a batch of full
// product payloads (products). All mutations from one payload commit as one
// atomic transaction; a commit failure returns 500 with no partial writes and
// the sender is expected to retry the whole batch.
func HandleShopifySyncWebhook(syncSvc *service.SyncService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		setCORSHeaders(c)

		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "failed to read body"})
			return
		}

		var payload domain.WebhookPayload
		if err := json.Unmarshal(body, &payload); err != nil {
			logger.Warn("Webhook payload unparseable", zap.Error(err))
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid JSON: " + err.Error()})
			return
		}

		synced, err := syncSvc.ProcessBatch(c.Request.Context(), payload)
		if err != nil {
			if ve, ok := err.(*apperrors.ErrValidation); ok {
				c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": ve.Error()})
				return
			}
			logger.Error("Sync batch failed", zap.String("action", payload.Action), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
			return
		}

		if payload.IsDeletion() {
			c.JSON(http.StatusOK, gin.H{"success": true})
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "synced": synced})
	}
}
