// Package ratelimit implements fixed-window request counters over a
// shared counter store. A window admits up to max requests; a burst of
// up to 2x max is possible across a window boundary, which is accepted.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// CounterStore is the narrow slice of the shared store the limiter
// needs: atomic increment and window expiry.
type CounterStore interface {
	Incr(ctx context.Context, key string) (int64, error)
	Expire(ctx context.Context, key string, ttl time.Duration) error
}

type Limiter struct {
	store CounterStore
}

func NewLimiter(store CounterStore) *Limiter {
	return &Limiter{store: store}
}

// Allow atomically counts a request for (purpose, identifier) in the
// current window and reports whether it is within maxCount. The first
// request of a window sets the window TTL. If the counter store is
// unavailable the request is allowed: availability of the protected
// endpoint wins over strict enforcement.
func (l *Limiter) Allow(ctx context.Context, purpose, identifier string, windowSeconds, maxCount int) bool {
	key := fmt.Sprintf("ratelimit:%s:%s", purpose, identifier)

	count, err := l.store.Incr(ctx, key)
	if err != nil {
		logrus.Warnf("Rate limit store unavailable, allowing request: %v", err)
		return true
	}

	if count == 1 {
		if err := l.store.Expire(ctx, key, time.Duration(windowSeconds)*time.Second); err != nil {
			logrus.Warnf("Failed to set rate limit window on %s: %v", key, err)
		}
	}

	return count <= int64(maxCount)
}

// RedisStore backs the limiter with the shared Redis instance.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Incr(ctx context.Context, key string) (int64, error) {
	return s.client.Incr(ctx, key).Result()
}

func (s *RedisStore) Expire(ctx context.Context, key string, ttl time.Duration) error {
	return s.client.Expire(ctx, key, ttl).Err()
}
