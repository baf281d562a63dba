package entity

import "time"

type ShortenRequest struct {
	URL            string `json:"url" binding:"required"`
	CustomAlias    string `json:"custom_alias,omitempty"`
	ExpiresIn      int64  `json:"expires_in,omitempty"` // seconds
	GuestSessionID string `json:"guest_session_id,omitempty"`
}

// Link is the durable record behind a short code. The short code is
// unique and immutable once assigned; changing an alias creates a new
// short code and invalidates the old one.
type Link struct {
	ID             string     `json:"id"`
	ShortCode      string     `json:"short_code"`
	Destination    string     `json:"destination"`
	OwnerID        *string    `json:"owner_id,omitempty"`
	GuestSessionID *string    `json:"guest_session_id,omitempty"`
	Clicks         int64      `json:"clicks"`
	IsActive       bool       `json:"is_active"`
	ExpiresAt      *time.Time `json:"expires_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	LastAccessedAt time.Time  `json:"last_accessed_at"`
	LastActivityAt time.Time  `json:"last_activity_at"`
}

func (l *Link) Expired(now time.Time) bool {
	return l.ExpiresAt != nil && l.ExpiresAt.Before(now)
}

// ClickContext carries the request metadata needed for click tracking.
// It is built once at the transport boundary and passed by value, so
// the services never see a framework request object.
type ClickContext struct {
	IP        string
	UserAgent string
	Referrer  string
}

// CachedLink is the minimal projection of a Link kept in the cache.
// Absence in the cache means "unknown", not "does not exist".
type CachedLink struct {
	LinkID      string `json:"link_id"`
	Destination string `json:"destination"`
	IsActive    bool   `json:"is_active"`
}

type ShortenResponse struct {
	ShortCode   string     `json:"short_code"`
	ShortURL    string     `json:"short_url"`
	Destination string     `json:"destination"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}
