package postgres

import (
	"context"
	"time"

	"github.com/ds124wfegd/shortlink/internal/entity"
)

type LinkRepositoryInterface interface {
	Create(ctx context.Context, link *entity.Link) error
	GetByShortCode(ctx context.Context, shortCode string) (*entity.Link, error)
	GetByID(ctx context.Context, id string) (*entity.Link, error)
	Exists(ctx context.Context, shortCode string) (bool, error)
	RecordVisit(ctx context.Context, shortCode string, at time.Time) error
	Deactivate(ctx context.Context, shortCode string) error
	UpdateDestination(ctx context.Context, shortCode, destination string) error
	Delete(ctx context.Context, id string) error
}

type AnalyticsRepositoryInterface interface {
	InsertEvent(ctx context.Context, event *entity.AnalyticsEvent) error
	ListEventsSince(ctx context.Context, linkID string, since time.Time) ([]entity.AnalyticsEvent, error)
	DeleteByLink(ctx context.Context, linkID string) error
}
