package transport

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ds124wfegd/shortlink/internal/service"
)

type AnalyticsHandler struct {
	analyticsService service.AnalyticsService
}

func NewAnalyticsHandler(analyticsService service.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{
		analyticsService: analyticsService,
	}
}

func (h *AnalyticsHandler) GetLinkAnalytics(c *gin.Context) {
	shortCode := c.Param("code")
	timeRange := c.DefaultQuery("range", "7d")

	analytics, err := h.analyticsService.GetLinkAnalytics(c.Request.Context(), shortCode, timeRange)
	if err != nil {
		switch err {
		case service.ErrLinkNotFound:
			c.JSON(http.StatusNotFound, gin.H{"error": "link not found"})
		case service.ErrInvalidRange:
			c.JSON(http.StatusBadRequest, gin.H{"error": "range must be one of 7d, 30d, 90d, all"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get analytics"})
		}
		return
	}

	c.JSON(http.StatusOK, analytics)
}
