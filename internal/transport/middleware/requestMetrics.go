package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ds124wfegd/shortlink/internal/pkg/metrics"
)

// RequestMetrics records request count and latency per route.
func RequestMetrics(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}

		c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())

		m.HTTPRequestsTotal.WithLabelValues(path, c.Request.Method, status).Inc()
		m.HTTPRequestDuration.WithLabelValues(path, c.Request.Method).Observe(duration)
	}
}
