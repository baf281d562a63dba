package redis

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/ds124wfegd/shortlink/internal/entity"
)

// ErrCacheMiss is returned by MemoryCache when a key is absent or
// expired, mirroring the redis.Nil miss of the real backend.
var ErrCacheMiss = errors.New("cache miss")

type memoryEntry struct {
	link      entity.CachedLink
	expiresAt time.Time
}

// MemoryCache is a process-local LinkCache used in tests and in
// deployments without Redis. Last write wins, same as the real cache.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string]memoryEntry)}
}

func (m *MemoryCache) Get(ctx context.Context, shortCode string) (*entity.CachedLink, error) {
	m.mu.RLock()
	entry, ok := m.entries[shortCode]
	m.mu.RUnlock()

	if !ok || time.Now().After(entry.expiresAt) {
		return nil, ErrCacheMiss
	}

	link := entry.link
	return &link, nil
}

func (m *MemoryCache) Set(ctx context.Context, shortCode string, link *entity.CachedLink, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}

	m.mu.Lock()
	m.entries[shortCode] = memoryEntry{link: *link, expiresAt: time.Now().Add(ttl)}
	m.mu.Unlock()
	return nil
}

func (m *MemoryCache) Invalidate(ctx context.Context, shortCode string) error {
	m.mu.Lock()
	delete(m.entries, shortCode)
	m.mu.Unlock()
	return nil
}
