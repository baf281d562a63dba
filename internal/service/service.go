package service

import (
	"context"

	"github.com/ds124wfegd/shortlink/internal/entity"
)

type RedirectService interface {
	Resolve(ctx context.Context, shortCode string, click entity.ClickContext) (string, error)
}

type LinkService interface {
	Shorten(ctx context.Context, req *entity.ShortenRequest, ownerID string) (*entity.ShortenResponse, error)
	GetLink(ctx context.Context, shortCode string) (*entity.Link, error)
	UpdateDestination(ctx context.Context, shortCode, destination string) error
	Delete(ctx context.Context, shortCode string) error
}

type AnalyticsService interface {
	GetLinkAnalytics(ctx context.Context, shortCode, timeRange string) (*entity.Analytics, error)
}

var (
	ErrInvalidURL   = &ServiceError{"invalid URL"}
	ErrAliasTaken   = &ServiceError{"short code already exists"}
	ErrLinkNotFound = &ServiceError{"link not found"}
	ErrInvalidRange = &ServiceError{"invalid time range"}
)

type ServiceError struct {
	message string
}

func (e *ServiceError) Error() string {
	return e.message
}
