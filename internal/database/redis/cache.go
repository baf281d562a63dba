package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/ds124wfegd/shortlink/internal/entity"

	"github.com/redis/go-redis/v9"
)

// LinkCache holds the minimal projection of a link keyed by short
// code. Absence means "unknown", not "does not exist". Invalidate must
// be called by every link-mutation path before it reports success.
type LinkCache interface {
	Get(ctx context.Context, shortCode string) (*entity.CachedLink, error)
	Set(ctx context.Context, shortCode string, link *entity.CachedLink, ttl time.Duration) error
	Invalidate(ctx context.Context, shortCode string) error
}

type CacheRepository struct {
	client *redis.Client
	ttl    time.Duration
}

func NewCacheRepository(client *redis.Client, ttl time.Duration) *CacheRepository {
	return &CacheRepository{
		client: client,
		ttl:    ttl,
	}
}

func (r *CacheRepository) Set(ctx context.Context, shortCode string, link *entity.CachedLink, ttl time.Duration) error {
	data, err := json.Marshal(link)
	if err != nil {
		return err
	}

	if ttl <= 0 {
		ttl = r.ttl
	}

	return r.client.Set(ctx, "link:"+shortCode, data, ttl).Err()
}

func (r *CacheRepository) Get(ctx context.Context, shortCode string) (*entity.CachedLink, error) {
	data, err := r.client.Get(ctx, "link:"+shortCode).Result()
	if err != nil {
		return nil, err
	}

	var link entity.CachedLink
	err = json.Unmarshal([]byte(data), &link)
	if err != nil {
		return nil, err
	}

	return &link, nil
}

func (r *CacheRepository) Invalidate(ctx context.Context, shortCode string) error {
	return r.client.Del(ctx, "link:"+shortCode).Err()
}
