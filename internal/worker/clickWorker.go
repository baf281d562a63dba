package worker

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ds124wfegd/shortlink/internal/database/postgres"
	"github.com/ds124wfegd/shortlink/internal/entity"
	"github.com/ds124wfegd/shortlink/internal/pkg/classify"
	"github.com/ds124wfegd/shortlink/internal/pkg/geoip"
	"github.com/ds124wfegd/shortlink/internal/pkg/metrics"
	"github.com/ds124wfegd/shortlink/pkg/queue"
)

const jobTimeout = 10 * time.Second

// ClickWorker turns raw click jobs into enriched analytics events.
// Errors propagate to the queue so its retry policy applies; a click
// for a link that no longer exists completes silently with no event.
type ClickWorker struct {
	linkRepo      postgres.LinkRepositoryInterface
	analyticsRepo postgres.AnalyticsRepositoryInterface
	geo           geoip.Resolver
	metrics       *metrics.Metrics
}

func NewClickWorker(
	linkRepo postgres.LinkRepositoryInterface,
	analyticsRepo postgres.AnalyticsRepositoryInterface,
	geo geoip.Resolver,
	m *metrics.Metrics,
) *ClickWorker {
	return &ClickWorker{
		linkRepo:      linkRepo,
		analyticsRepo: analyticsRepo,
		geo:           geo,
		metrics:       m,
	}
}

func (w *ClickWorker) HandleJob(job *queue.Job) error {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	link, err := w.linkRepo.GetByID(ctx, job.LinkID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			logrus.Debugf("Click job %s references deleted link %s, skipping", job.ID, job.LinkID)
			w.metrics.ClickJobsTotal.WithLabelValues("skipped").Inc()
			return nil
		}
		return fmt.Errorf("failed to resolve link %s: %w", job.LinkID, err)
	}

	event := w.enrich(job, link.ID)
	if err := w.analyticsRepo.InsertEvent(ctx, event); err != nil {
		w.metrics.ClickJobsTotal.WithLabelValues("failed").Inc()
		return fmt.Errorf("failed to persist analytics event: %w", err)
	}

	w.metrics.ClickJobsTotal.WithLabelValues("processed").Inc()
	return nil
}

func (w *ClickWorker) enrich(job *queue.Job, linkID string) *entity.AnalyticsEvent {
	ua := classify.ParseUserAgent(job.UserAgent)
	ip := classify.NormalizeIP(job.IP)
	location := w.geo.Resolve(ip)

	timestamp := job.CreatedAt
	if timestamp.IsZero() {
		timestamp = time.Now()
	}

	return &entity.AnalyticsEvent{
		ID:               uuid.New().String(),
		LinkID:           linkID,
		Timestamp:        timestamp,
		IPAddress:        ip,
		UserAgent:        job.UserAgent,
		Referrer:         job.Referrer,
		ReferrerCategory: classify.Referrer(job.Referrer),
		Country:          location.Country,
		City:             location.City,
		DeviceType:       ua.Device,
		Browser:          ua.Browser,
		OS:               ua.OS,
	}
}
