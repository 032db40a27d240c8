package middleware

import (
	"crypto/subtle"

	"github.com/gin-gonic/gin"

	apperrors "juntos/internal/errors"
)

// APIKeyMiddleware guards operational endpoints such as /metrics by
// comparing the X-API-Key header against the configured key.
func APIKeyMiddleware(apiKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if apiKey == "" {
			c.AbortWithStatusJSON(apperrors.ErrMetricsNotConfigured.StatusCode, ErrorBody(apperrors.ErrMetricsNotConfigured))
			return
		}
		key := c.GetHeader("X-API-Key")
		if subtle.ConstantTimeCompare([]byte(key), []byte(apiKey)) != 1 {
			c.AbortWithStatusJSON(apperrors.ErrInvalidAPIKey.StatusCode, ErrorBody(apperrors.ErrInvalidAPIKey))
			return
		}
		c.Next()
	}
}
