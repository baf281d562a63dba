package transport

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ds124wfegd/shortlink/config"
	"github.com/ds124wfegd/shortlink/internal/entity"
	"github.com/ds124wfegd/shortlink/internal/pkg/ratelimit"
	"github.com/ds124wfegd/shortlink/internal/service"
)

type LinkHandler struct {
	linkService     service.LinkService
	redirectService service.RedirectService
	limiter         *ratelimit.Limiter
	guestRule       config.RateLimitRule
}

func NewLinkHandler(
	linkService service.LinkService,
	redirectService service.RedirectService,
	limiter *ratelimit.Limiter,
	guestRule config.RateLimitRule,
) *LinkHandler {
	return &LinkHandler{
		linkService:     linkService,
		redirectService: redirectService,
		limiter:         limiter,
		guestRule:       guestRule,
	}
}

// clickContext captures the request metadata once at the boundary so
// the services stay transport-agnostic.
func clickContext(c *gin.Context) entity.ClickContext {
	return entity.ClickContext{
		IP:        c.ClientIP(),
		UserAgent: c.GetHeader("User-Agent"),
		Referrer:  c.GetHeader("Referer"),
	}
}

func (h *LinkHandler) Redirect(c *gin.Context) {
	shortCode := c.Param("code")

	destination, err := h.redirectService.Resolve(c.Request.Context(), shortCode, clickContext(c))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "link not found"})
		return
	}

	c.Redirect(http.StatusFound, destination)
}

func (h *LinkHandler) Shorten(c *gin.Context) {
	var req entity.ShortenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	// Authentication is an external collaborator; the forwarded user id
	// is all this service sees of it.
	ownerID := c.GetHeader("X-User-ID")

	// Guest links get a stricter creation quota keyed by session.
	if ownerID == "" {
		identifier := req.GuestSessionID
		if identifier == "" {
			identifier = c.ClientIP()
		}
		if !h.limiter.Allow(c.Request.Context(), "guest_shorten", identifier,
			h.guestRule.WindowSeconds, h.guestRule.MaxCount) {
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "guest link quota exceeded"})
			return
		}
	}

	response, err := h.linkService.Shorten(c.Request.Context(), &req, ownerID)
	if err != nil {
		switch err {
		case service.ErrInvalidURL:
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid URL"})
		case service.ErrAliasTaken:
			c.JSON(http.StatusConflict, gin.H{"error": "custom alias already exists"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create link"})
		}
		return
	}

	c.JSON(http.StatusCreated, response)
}

func (h *LinkHandler) GetLink(c *gin.Context) {
	link, err := h.linkService.GetLink(c.Request.Context(), c.Param("code"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "link not found"})
		return
	}

	c.JSON(http.StatusOK, link)
}

func (h *LinkHandler) UpdateDestination(c *gin.Context) {
	var req struct {
		Destination string `json:"destination" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	err := h.linkService.UpdateDestination(c.Request.Context(), c.Param("code"), req.Destination)
	if err != nil {
		switch err {
		case service.ErrLinkNotFound:
			c.JSON(http.StatusNotFound, gin.H{"error": "link not found"})
		case service.ErrInvalidURL:
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid URL"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update link"})
		}
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *LinkHandler) Delete(c *gin.Context) {
	err := h.linkService.Delete(c.Request.Context(), c.Param("code"))
	if err != nil {
		switch err {
		case service.ErrLinkNotFound:
			c.JSON(http.StatusNotFound, gin.H{"error": "link not found"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete link"})
		}
		return
	}

	c.Status(http.StatusNoContent)
}
