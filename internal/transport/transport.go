package transport

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ds124wfegd/shortlink/config"
	"github.com/ds124wfegd/shortlink/internal/pkg/metrics"
	"github.com/ds124wfegd/shortlink/internal/pkg/ratelimit"
	"github.com/ds124wfegd/shortlink/internal/transport/middleware"
)

func InitRoutes(
	linkHandler *LinkHandler,
	analyticsHandler *AnalyticsHandler,
	limiter *ratelimit.Limiter,
	m *metrics.Metrics,
	rlCfg *config.RateLimitConfig,
) *gin.Engine {
	router := gin.New()

	router.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	router.Use(gin.Recovery())
	router.Use(middleware.Logger())
	router.Use(middleware.Timeout(30))
	router.Use(middleware.RequestMetrics(m))

	router.GET("/r/:code",
		middleware.RateLimit(limiter, m, "redirect", rlCfg.Redirect),
		linkHandler.Redirect)

	api := router.Group("/api/v1")
	{
		api.POST("/shorten",
			middleware.RateLimit(limiter, m, "shorten", rlCfg.Shorten),
			linkHandler.Shorten)

		links := api.Group("/links")
		{
			links.GET("/:code", linkHandler.GetLink)
			links.PUT("/:code/destination", linkHandler.UpdateDestination)
			links.DELETE("/:code", linkHandler.Delete)
		}

		api.GET("/analytics/:code", analyticsHandler.GetLinkAnalytics)
	}

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"service": "shortlink",
		})
	})
	return router
}
