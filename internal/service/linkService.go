package service

import (
	"context"
	"math/rand"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ds124wfegd/shortlink/internal/database/postgres"
	"github.com/ds124wfegd/shortlink/internal/database/redis"
	"github.com/ds124wfegd/shortlink/internal/entity"
)

type LinkServiceImpl struct {
	linkRepo      postgres.LinkRepositoryInterface
	analyticsRepo postgres.AnalyticsRepositoryInterface
	cache         redis.LinkCache
	config        *LinkServiceConfig
}

type LinkServiceConfig struct {
	ShortCodeLength int
	BaseURL         string
	CacheTTL        time.Duration
}

func NewLinkService(
	linkRepo postgres.LinkRepositoryInterface,
	analyticsRepo postgres.AnalyticsRepositoryInterface,
	cache redis.LinkCache,
	config *LinkServiceConfig,
) LinkService {
	return &LinkServiceImpl{
		linkRepo:      linkRepo,
		analyticsRepo: analyticsRepo,
		cache:         cache,
		config:        config,
	}
}

const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

func (s *LinkServiceImpl) generateShortCode() string {
	shortCode := make([]byte, s.config.ShortCodeLength)
	for i := range shortCode {
		shortCode[i] = charset[rand.Intn(len(charset))]
	}
	return string(shortCode)
}

func (s *LinkServiceImpl) Shorten(ctx context.Context, req *entity.ShortenRequest, ownerID string) (*entity.ShortenResponse, error) {
	if _, err := url.ParseRequestURI(req.URL); err != nil {
		return nil, ErrInvalidURL
	}

	var shortCode string
	if req.CustomAlias != "" {
		shortCode = req.CustomAlias
		exists, err := s.linkRepo.Exists(ctx, shortCode)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, ErrAliasTaken
		}
	} else {
		for {
			shortCode = s.generateShortCode()
			exists, err := s.linkRepo.Exists(ctx, shortCode)
			if err != nil {
				return nil, err
			}
			if !exists {
				break
			}
		}
	}

	now := time.Now()
	link := &entity.Link{
		ID:             uuid.New().String(),
		ShortCode:      shortCode,
		Destination:    req.URL,
		Clicks:         0,
		IsActive:       true,
		CreatedAt:      now,
		LastAccessedAt: now,
		LastActivityAt: now,
	}
	if ownerID != "" {
		link.OwnerID = &ownerID
	} else if req.GuestSessionID != "" {
		guestSession := req.GuestSessionID
		link.GuestSessionID = &guestSession
	}
	if req.ExpiresIn > 0 {
		expiresAt := now.Add(time.Duration(req.ExpiresIn) * time.Second)
		link.ExpiresAt = &expiresAt
	}

	if err := s.linkRepo.Create(ctx, link); err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, shortCode, &entity.CachedLink{
		LinkID:      link.ID,
		Destination: link.Destination,
		IsActive:    true,
	}, s.config.CacheTTL); err != nil {
		logrus.Warnf("Failed to cache link %s: %v", shortCode, err)
	}

	return &entity.ShortenResponse{
		ShortCode:   shortCode,
		ShortURL:    s.config.BaseURL + "/r/" + shortCode,
		Destination: req.URL,
		ExpiresAt:   link.ExpiresAt,
		CreatedAt:   link.CreatedAt,
	}, nil
}

func (s *LinkServiceImpl) GetLink(ctx context.Context, shortCode string) (*entity.Link, error) {
	link, err := s.linkRepo.GetByShortCode(ctx, shortCode)
	if err != nil {
		return nil, ErrLinkNotFound
	}
	return link, nil
}

// UpdateDestination changes where a short code points. The cache entry
// is invalidated before success is reported, bounding staleness to at
// most one more cache hit.
func (s *LinkServiceImpl) UpdateDestination(ctx context.Context, shortCode, destination string) error {
	if _, err := url.ParseRequestURI(destination); err != nil {
		return ErrInvalidURL
	}

	if _, err := s.linkRepo.GetByShortCode(ctx, shortCode); err != nil {
		return ErrLinkNotFound
	}

	if err := s.linkRepo.UpdateDestination(ctx, shortCode, destination); err != nil {
		return err
	}

	return s.cache.Invalidate(ctx, shortCode)
}

// Delete removes the link and, in bulk, its analytics events, then
// invalidates the cache entry.
func (s *LinkServiceImpl) Delete(ctx context.Context, shortCode string) error {
	link, err := s.linkRepo.GetByShortCode(ctx, shortCode)
	if err != nil {
		return ErrLinkNotFound
	}

	if err := s.analyticsRepo.DeleteByLink(ctx, link.ID); err != nil {
		return err
	}
	if err := s.linkRepo.Delete(ctx, link.ID); err != nil {
		return err
	}

	return s.cache.Invalidate(ctx, shortCode)
}
