package service

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/ds124wfegd/shortlink/internal/database/postgres"
	"github.com/ds124wfegd/shortlink/internal/entity"
)

const (
	RangeWeek   = "7d"
	Range30Days = "30d"
	Range90Days = "90d"
	RangeAll    = "all"

	hourlyBucket = "2006-01-02 15:00"
	dailyBucket  = "2006-01-02"
)

type AnalyticsServiceImpl struct {
	analyticsRepo postgres.AnalyticsRepositoryInterface
	linkRepo      postgres.LinkRepositoryInterface
}

func NewAnalyticsService(
	analyticsRepo postgres.AnalyticsRepositoryInterface,
	linkRepo postgres.LinkRepositoryInterface,
) AnalyticsService {
	return &AnalyticsServiceImpl{
		analyticsRepo: analyticsRepo,
		linkRepo:      linkRepo,
	}
}

// GetLinkAnalytics computes the grouped read-side statistics for one
// link over the requested range. Everything is derived from the stored
// events on demand; nothing is persisted.
func (s *AnalyticsServiceImpl) GetLinkAnalytics(ctx context.Context, shortCode, timeRange string) (*entity.Analytics, error) {
	since, err := rangeStart(timeRange, time.Now())
	if err != nil {
		return nil, err
	}

	link, err := s.linkRepo.GetByShortCode(ctx, shortCode)
	if err != nil {
		return nil, ErrLinkNotFound
	}

	events, err := s.analyticsRepo.ListEventsSince(ctx, link.ID, since)
	if err != nil {
		return nil, err
	}

	return &entity.Analytics{
		ShortCode:   shortCode,
		Range:       timeRange,
		TotalClicks: link.Clicks,
		Trend:       BuildTrend(events, timeRange, time.Now()),
		Referrers:   GroupByCategory(events, func(e entity.AnalyticsEvent) string { return e.ReferrerCategory }),
		Countries:   GroupByCategory(events, func(e entity.AnalyticsEvent) string { return e.Country }),
		Devices:     GroupByCategory(events, func(e entity.AnalyticsEvent) string { return string(e.DeviceType) }),
		Browsers:    GroupByCategory(events, func(e entity.AnalyticsEvent) string { return e.Browser }),
		PeakHours:   PeakHours(events),
	}, nil
}

func rangeStart(timeRange string, now time.Time) (time.Time, error) {
	switch timeRange {
	case RangeWeek:
		return now.AddDate(0, 0, -7), nil
	case Range30Days:
		return now.AddDate(0, 0, -30), nil
	case Range90Days:
		return now.AddDate(0, 0, -90), nil
	case RangeAll:
		return time.Time{}, nil
	default:
		return time.Time{}, ErrInvalidRange
	}
}

// BuildTrend buckets events hourly for the 7d range and daily for the
// longer ones. Buckets are zero-filled across the whole range so a
// quiet hour still shows up; for "all" the range starts at the first
// event.
func BuildTrend(events []entity.AnalyticsEvent, timeRange string, now time.Time) []entity.TrendPoint {
	layout := dailyBucket
	step := 24 * time.Hour
	if timeRange == RangeWeek {
		layout = hourlyBucket
		step = time.Hour
	}

	start, err := rangeStart(timeRange, now)
	if err != nil {
		return nil
	}
	if start.IsZero() {
		if len(events) == 0 {
			return []entity.TrendPoint{}
		}
		start = events[0].Timestamp
		for _, e := range events[1:] {
			if e.Timestamp.Before(start) {
				start = e.Timestamp
			}
		}
	}
	start = start.Truncate(step)

	counts := make(map[string]int, len(events))
	for _, e := range events {
		counts[e.Timestamp.Format(layout)]++
	}

	var trend []entity.TrendPoint
	for bucket := start; !bucket.After(now); bucket = bucket.Add(step) {
		label := bucket.Format(layout)
		trend = append(trend, entity.TrendPoint{Bucket: label, Clicks: counts[label]})
	}
	return trend
}

// GroupByCategory counts events per category and computes each share
// of the total. Order is by count descending; equal counts keep their
// first-seen order.
func GroupByCategory(events []entity.AnalyticsEvent, key func(entity.AnalyticsEvent) string) []entity.CategoryStat {
	counts := make(map[string]int)
	var order []string
	for _, e := range events {
		name := key(e)
		if _, seen := counts[name]; !seen {
			order = append(order, name)
		}
		counts[name]++
	}

	stats := make([]entity.CategoryStat, 0, len(order))
	for _, name := range order {
		stat := entity.CategoryStat{Name: name, Clicks: counts[name]}
		if len(events) > 0 {
			stat.Percentage = math.Round(float64(counts[name])/float64(len(events))*1000) / 10
		}
		stats = append(stats, stat)
	}

	sort.SliceStable(stats, func(i, j int) bool {
		return stats[i].Clicks > stats[j].Clicks
	})
	return stats
}

// PeakHours returns exactly 24 entries, hours 0-23 ascending,
// zero-filled, regardless of input order or volume.
func PeakHours(events []entity.AnalyticsEvent) []entity.HourStat {
	hours := make([]entity.HourStat, 24)
	for i := range hours {
		hours[i].Hour = i
	}
	for _, e := range events {
		hours[e.Timestamp.Hour()].Clicks++
	}
	return hours
}
