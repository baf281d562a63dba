package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ds124wfegd/shortlink/config"
	"github.com/ds124wfegd/shortlink/internal/pkg/metrics"
	"github.com/ds124wfegd/shortlink/internal/pkg/ratelimit"
)

// RateLimit counts requests per (purpose, client IP) in a fixed
// window and rejects with 429 past the configured maximum.
func RateLimit(limiter *ratelimit.Limiter, m *metrics.Metrics, purpose string, rule config.RateLimitRule) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !limiter.Allow(c.Request.Context(), purpose, c.ClientIP(), rule.WindowSeconds, rule.MaxCount) {
			m.RateLimitedTotal.WithLabelValues(purpose).Inc()
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}

		c.Next()
	}
}
