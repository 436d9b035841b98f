package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	apperrors "github.com/apnchris/semaine/pkg/errors"
)

// AdminAuthMiddleware protects operator endpoints with a single bearer key
// verified against a configured bcrypt hash. An empty hash disables the
// endpoints entirely rather than leaving them open.
func AdminAuthMiddleware(adminKeyHash string, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if adminKeyHash == "" {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "admin endpoints not configured"})
			c.Abort()
			return
		}

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortUnauthorized(c, "missing authorization header")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			abortUnauthorized(c, "invalid authorization header format")
			return
		}

		key := strings.TrimSpace(parts[1])
		if err := bcrypt.CompareHashAndPassword([]byte(adminKeyHash), []byte(key)); err != nil {
			logger.Warn("Admin authentication failed", zap.String("path", c.Request.URL.Path))
			abortUnauthorized(c, "invalid admin key")
			return
		}

		c.Next()
	}
}

func abortUnauthorized(c *gin.Context, message string) {
	err := &apperrors.ErrUnauthorized{Message: message}
	c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	c.Abort()
}
