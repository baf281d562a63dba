package service

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"time"

	"github.com/ds124wfegd/shortlink/internal/entity"
	"github.com/ds124wfegd/shortlink/internal/pkg/metrics"
	"github.com/ds124wfegd/shortlink/pkg/queue"
)

// Prometheus collectors register globally, so the test binary shares
// one instance.
var testMetrics = metrics.NewMetrics()

var errStoreDown = errors.New("store unavailable")

type fakeLinkRepo struct {
	mu      sync.Mutex
	links   map[string]*entity.Link // keyed by short code
	visits  map[string]int
	failAll bool
}

func newFakeLinkRepo(links ...*entity.Link) *fakeLinkRepo {
	repo := &fakeLinkRepo{
		links:  make(map[string]*entity.Link),
		visits: make(map[string]int),
	}
	for _, link := range links {
		repo.links[link.ShortCode] = link
	}
	return repo
}

func (r *fakeLinkRepo) Create(ctx context.Context, link *entity.Link) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failAll {
		return errStoreDown
	}
	r.links[link.ShortCode] = link
	return nil
}

func (r *fakeLinkRepo) GetByShortCode(ctx context.Context, shortCode string) (*entity.Link, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failAll {
		return nil, errStoreDown
	}
	link, ok := r.links[shortCode]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *link
	return &copied, nil
}

func (r *fakeLinkRepo) GetByID(ctx context.Context, id string) (*entity.Link, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failAll {
		return nil, errStoreDown
	}
	for _, link := range r.links {
		if link.ID == id {
			copied := *link
			return &copied, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (r *fakeLinkRepo) Exists(ctx context.Context, shortCode string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failAll {
		return false, errStoreDown
	}
	_, ok := r.links[shortCode]
	return ok, nil
}

func (r *fakeLinkRepo) RecordVisit(ctx context.Context, shortCode string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failAll {
		return errStoreDown
	}
	link, ok := r.links[shortCode]
	if !ok {
		return nil
	}
	link.Clicks++
	link.LastAccessedAt = at
	link.LastActivityAt = at
	link.IsActive = true
	r.visits[shortCode]++
	return nil
}

func (r *fakeLinkRepo) Deactivate(ctx context.Context, shortCode string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if link, ok := r.links[shortCode]; ok {
		link.IsActive = false
	}
	return nil
}

func (r *fakeLinkRepo) UpdateDestination(ctx context.Context, shortCode, destination string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if link, ok := r.links[shortCode]; ok {
		link.Destination = destination
	}
	return nil
}

func (r *fakeLinkRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for code, link := range r.links {
		if link.ID == id {
			delete(r.links, code)
		}
	}
	return nil
}

func (r *fakeLinkRepo) visitCount(shortCode string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.visits[shortCode]
}

func (r *fakeLinkRepo) link(shortCode string) *entity.Link {
	r.mu.Lock()
	defer r.mu.Unlock()
	link, ok := r.links[shortCode]
	if !ok {
		return nil
	}
	copied := *link
	return &copied
}

type fakeAnalyticsRepo struct {
	mu     sync.Mutex
	events []entity.AnalyticsEvent
}

func (r *fakeAnalyticsRepo) InsertEvent(ctx context.Context, event *entity.AnalyticsEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, *event)
	return nil
}

func (r *fakeAnalyticsRepo) ListEventsSince(ctx context.Context, linkID string, since time.Time) ([]entity.AnalyticsEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var events []entity.AnalyticsEvent
	for _, event := range r.events {
		if event.LinkID == linkID && !event.Timestamp.Before(since) {
			events = append(events, event)
		}
	}
	return events, nil
}

func (r *fakeAnalyticsRepo) DeleteByLink(ctx context.Context, linkID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	var kept []entity.AnalyticsEvent
	for _, event := range r.events {
		if event.LinkID != linkID {
			kept = append(kept, event)
		}
	}
	r.events = kept
	return nil
}

type captureQueue struct {
	mu          sync.Mutex
	jobs        []*queue.Job
	failPublish bool
}

func (q *captureQueue) Publish(ctx context.Context, job *queue.Job) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.failPublish {
		return errors.New("queue unavailable")
	}
	q.jobs = append(q.jobs, job)
	return nil
}

func (q *captureQueue) Subscribe(ctx context.Context, handler func(*queue.Job) error) error {
	return nil
}

func (q *captureQueue) Close() error { return nil }

func (q *captureQueue) count() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.jobs)
}

// brokenCache simulates an unreachable cache backend.
type brokenCache struct{}

func (c *brokenCache) Get(ctx context.Context, shortCode string) (*entity.CachedLink, error) {
	return nil, errors.New("cache unavailable")
}

func (c *brokenCache) Set(ctx context.Context, shortCode string, link *entity.CachedLink, ttl time.Duration) error {
	return errors.New("cache unavailable")
}

func (c *brokenCache) Invalidate(ctx context.Context, shortCode string) error {
	return errors.New("cache unavailable")
}
