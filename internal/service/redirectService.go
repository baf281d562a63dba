package service

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ds124wfegd/shortlink/internal/database/postgres"
	"github.com/ds124wfegd/shortlink/internal/database/redis"
	"github.com/ds124wfegd/shortlink/internal/entity"
	"github.com/ds124wfegd/shortlink/internal/pkg/metrics"
	"github.com/ds124wfegd/shortlink/pkg/queue"
)

// trackTimeout bounds the background bookkeeping done after a cache
// hit; the redirect response itself never waits on it.
const trackTimeout = 5 * time.Second

type RedirectServiceImpl struct {
	linkRepo postgres.LinkRepositoryInterface
	cache    redis.LinkCache
	clicks   queue.Queue
	metrics  *metrics.Metrics
	cacheTTL time.Duration
}

func NewRedirectService(
	linkRepo postgres.LinkRepositoryInterface,
	cache redis.LinkCache,
	clicks queue.Queue,
	m *metrics.Metrics,
	cacheTTL time.Duration,
) RedirectService {
	return &RedirectServiceImpl{
		linkRepo: linkRepo,
		cache:    cache,
		clicks:   clicks,
		metrics:  m,
		cacheTTL: cacheTTL,
	}
}

// Resolve maps a short code to its destination. Cache first; on a hit
// the click bookkeeping runs in the background and the destination is
// returned immediately. On a miss, or whenever the cache is
// unreachable, the durable store is the authority. A store failure
// degrades to "not found": a broken redirect is worse than a false
// negative.
func (s *RedirectServiceImpl) Resolve(ctx context.Context, shortCode string, click entity.ClickContext) (string, error) {
	cached, err := s.cache.Get(ctx, shortCode)
	if err == nil && cached != nil {
		s.metrics.CacheHitsTotal.Inc()
		s.metrics.RedirectsTotal.Inc()
		go s.trackCachedVisit(shortCode, click)
		return cached.Destination, nil
	}
	s.metrics.CacheMissesTotal.Inc()

	link, err := s.linkRepo.GetByShortCode(ctx, shortCode)
	if err != nil {
		return "", ErrLinkNotFound
	}
	if !link.IsActive {
		return "", ErrLinkNotFound
	}
	if link.Expired(time.Now()) {
		if err := s.linkRepo.Deactivate(ctx, shortCode); err != nil {
			logrus.Errorf("Failed to deactivate expired link %s: %v", shortCode, err)
		}
		if err := s.cache.Invalidate(ctx, shortCode); err != nil {
			logrus.Warnf("Failed to invalidate expired link %s in cache: %v", shortCode, err)
		}
		return "", ErrLinkNotFound
	}

	if err := s.linkRepo.RecordVisit(ctx, shortCode, time.Now()); err != nil {
		// The redirect still goes through; only the counters lag.
		logrus.Errorf("Failed to record visit on %s: %v", shortCode, err)
	}

	if err := s.cache.Set(ctx, shortCode, &entity.CachedLink{
		LinkID:      link.ID,
		Destination: link.Destination,
		IsActive:    true,
	}, s.cacheTTL); err != nil {
		logrus.Warnf("Failed to cache link %s: %v", shortCode, err)
	}

	s.enqueueClick(link.ID, click)
	s.metrics.RedirectsTotal.Inc()

	return link.Destination, nil
}

// trackCachedVisit is the fallback path behind a cache hit: re-read
// the link for its current state, bump its counters and hand the click
// to the queue. The link may have been deleted since the cache write;
// that lag is accepted.
func (s *RedirectServiceImpl) trackCachedVisit(shortCode string, click entity.ClickContext) {
	ctx, cancel := context.WithTimeout(context.Background(), trackTimeout)
	defer cancel()

	link, err := s.linkRepo.GetByShortCode(ctx, shortCode)
	if err != nil {
		logrus.Warnf("Cached link %s no longer resolvable: %v", shortCode, err)
		return
	}

	if err := s.linkRepo.RecordVisit(ctx, shortCode, time.Now()); err != nil {
		logrus.Errorf("Failed to record visit on %s: %v", shortCode, err)
	}

	s.enqueueClick(link.ID, click)
}

// enqueueClick is fire-and-forget: a failed enqueue is logged and
// swallowed, never surfaced to the redirect.
func (s *RedirectServiceImpl) enqueueClick(linkID string, click entity.ClickContext) {
	ctx, cancel := context.WithTimeout(context.Background(), trackTimeout)
	defer cancel()

	job := &queue.Job{
		LinkID:    linkID,
		IP:        click.IP,
		UserAgent: click.UserAgent,
		Referrer:  click.Referrer,
	}

	if err := s.clicks.Publish(ctx, job); err != nil {
		s.metrics.ClickJobsTotal.WithLabelValues("enqueue_failed").Inc()
		logrus.Errorf("Failed to enqueue click for link %s: %v", linkID, err)
		return
	}
	s.metrics.ClickJobsTotal.WithLabelValues("enqueued").Inc()
}
