package ratelimit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFixedWindowDeniesPastMax(t *testing.T) {
	limiter := NewLimiter(NewMemoryStore())
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		assert.True(t, limiter.Allow(ctx, "redirect", "1.2.3.4", 60, 3), "request %d should pass", i+1)
	}

	assert.False(t, limiter.Allow(ctx, "redirect", "1.2.3.4", 60, 3), "4th request within the window must be denied")
}

func TestWindowResetAllowsAgain(t *testing.T) {
	store := NewMemoryStore()
	now := time.Now()
	store.now = func() time.Time { return now }

	limiter := NewLimiter(store)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.True(t, limiter.Allow(ctx, "auth", "client-a", 60, 3))
	}
	require.False(t, limiter.Allow(ctx, "auth", "client-a", 60, 3))

	// Window elapses
	now = now.Add(61 * time.Second)

	assert.True(t, limiter.Allow(ctx, "auth", "client-a", 60, 3))
}

func TestSeparateIdentifiersDoNotShareWindows(t *testing.T) {
	limiter := NewLimiter(NewMemoryStore())
	ctx := context.Background()

	require.True(t, limiter.Allow(ctx, "redirect", "1.1.1.1", 60, 1))
	require.False(t, limiter.Allow(ctx, "redirect", "1.1.1.1", 60, 1))

	assert.True(t, limiter.Allow(ctx, "redirect", "2.2.2.2", 60, 1))
	assert.True(t, limiter.Allow(ctx, "shorten", "1.1.1.1", 60, 1), "different purpose uses its own counter")
}

type failingStore struct{}

func (s *failingStore) Incr(ctx context.Context, key string) (int64, error) {
	return 0, errors.New("connection refused")
}

func (s *failingStore) Expire(ctx context.Context, key string, ttl time.Duration) error {
	return errors.New("connection refused")
}

func TestFailOpenWhenStoreUnavailable(t *testing.T) {
	limiter := NewLimiter(&failingStore{})

	assert.True(t, limiter.Allow(context.Background(), "redirect", "1.2.3.4", 60, 1))
	assert.True(t, limiter.Allow(context.Background(), "redirect", "1.2.3.4", 60, 1))
}
