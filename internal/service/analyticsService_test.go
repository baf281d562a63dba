package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ds124wfegd/shortlink/internal/entity"
)

func eventAt(linkID string, at time.Time) entity.AnalyticsEvent {
	return entity.AnalyticsEvent{LinkID: linkID, Timestamp: at}
}

func TestBuildTrendHourlyForWeekRange(t *testing.T) {
	now := time.Date(2026, 8, 29, 12, 30, 0, 0, time.UTC)
	events := []entity.AnalyticsEvent{
		eventAt("id-1", now.Add(-2*time.Hour)),
		eventAt("id-1", now.Add(-2*time.Hour).Add(15*time.Minute)),
		eventAt("id-1", now.Add(-30*time.Minute)),
	}

	trend := BuildTrend(events, RangeWeek, now)

	// 7 days of hourly buckets plus the current partial hour.
	require.Len(t, trend, 7*24+1)
	assert.Equal(t, "2026-08-22 12:00", trend[0].Bucket)
	assert.Equal(t, "2026-08-29 12:00", trend[len(trend)-1].Bucket)

	counts := make(map[string]int)
	for _, point := range trend {
		counts[point.Bucket] = point.Clicks
	}
	assert.Equal(t, 2, counts["2026-08-29 10:00"])
	assert.Equal(t, 1, counts["2026-08-29 12:00"])
	assert.Equal(t, 0, counts["2026-08-29 11:00"])
}

func TestBuildTrendDailyForMonthRange(t *testing.T) {
	now := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	events := []entity.AnalyticsEvent{
		eventAt("id-1", now.AddDate(0, 0, -3)),
		eventAt("id-1", now.AddDate(0, 0, -3).Add(time.Hour)),
		eventAt("id-1", now),
	}

	trend := BuildTrend(events, Range30Days, now)

	require.Len(t, trend, 31)
	assert.Equal(t, "2026-07-30", trend[0].Bucket)

	counts := make(map[string]int)
	for _, point := range trend {
		counts[point.Bucket] = point.Clicks
	}
	assert.Equal(t, 2, counts["2026-08-26"])
	assert.Equal(t, 1, counts["2026-08-29"])
	assert.Equal(t, 0, counts["2026-08-27"])
}

func TestBuildTrendAllStartsAtFirstEvent(t *testing.T) {
	now := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)

	assert.Empty(t, BuildTrend(nil, RangeAll, now))

	events := []entity.AnalyticsEvent{
		eventAt("id-1", now.AddDate(0, 0, -2)),
		eventAt("id-1", now.AddDate(0, 0, -5)),
	}
	trend := BuildTrend(events, RangeAll, now)
	require.NotEmpty(t, trend)
	assert.Equal(t, "2026-08-24", trend[0].Bucket)
	assert.Equal(t, "2026-08-29", trend[len(trend)-1].Bucket)
}

func TestGroupByCategoryPercentages(t *testing.T) {
	events := []entity.AnalyticsEvent{
		{ReferrerCategory: "Social"},
		{ReferrerCategory: "Social"},
		{ReferrerCategory: "Social"},
		{ReferrerCategory: "Direct"},
	}

	stats := GroupByCategory(events, func(e entity.AnalyticsEvent) string { return e.ReferrerCategory })

	require.Len(t, stats, 2)
	assert.Equal(t, entity.CategoryStat{Name: "Social", Clicks: 3, Percentage: 75.0}, stats[0])
	assert.Equal(t, entity.CategoryStat{Name: "Direct", Clicks: 1, Percentage: 25.0}, stats[1])
}

func TestGroupByCategoryTieKeepsFirstSeenOrder(t *testing.T) {
	events := []entity.AnalyticsEvent{
		{Country: "Germany"},
		{Country: "Brazil"},
		{Country: "Germany"},
		{Country: "Brazil"},
		{Country: "Japan"},
	}

	stats := GroupByCategory(events, func(e entity.AnalyticsEvent) string { return e.Country })

	require.Len(t, stats, 3)
	assert.Equal(t, "Germany", stats[0].Name)
	assert.Equal(t, "Brazil", stats[1].Name)
	assert.Equal(t, "Japan", stats[2].Name)
}

func TestGroupByCategoryEmpty(t *testing.T) {
	stats := GroupByCategory(nil, func(e entity.AnalyticsEvent) string { return e.Country })
	assert.Empty(t, stats)
}

func TestPeakHoursAlwaysTwentyFourBuckets(t *testing.T) {
	events := []entity.AnalyticsEvent{
		eventAt("id-1", time.Date(2026, 8, 29, 23, 10, 0, 0, time.UTC)),
		eventAt("id-1", time.Date(2026, 8, 29, 9, 0, 0, 0, time.UTC)),
		eventAt("id-1", time.Date(2026, 8, 28, 9, 45, 0, 0, time.UTC)),
	}

	hours := PeakHours(events)

	require.Len(t, hours, 24)
	for i, stat := range hours {
		assert.Equal(t, i, stat.Hour)
	}
	assert.Equal(t, 2, hours[9].Clicks)
	assert.Equal(t, 1, hours[23].Clicks)
	assert.Equal(t, 0, hours[0].Clicks)
}

func TestPeakHoursEmpty(t *testing.T) {
	hours := PeakHours(nil)
	require.Len(t, hours, 24)
	for _, stat := range hours {
		assert.Zero(t, stat.Clicks)
	}
}

func TestGetLinkAnalytics(t *testing.T) {
	repo := newFakeLinkRepo(activeLink("id-1", "abc123", "https://example.com"))
	analytics := &fakeAnalyticsRepo{}
	now := time.Now()
	for i := 0; i < 3; i++ {
		require.NoError(t, analytics.InsertEvent(context.Background(), &entity.AnalyticsEvent{
			LinkID:           "id-1",
			Timestamp:        now.Add(-time.Duration(i) * time.Hour),
			ReferrerCategory: "Direct",
			Country:          "Germany",
			DeviceType:       entity.DeviceDesktop,
			Browser:          "Chrome",
		}))
	}
	svc := NewAnalyticsService(analytics, repo)

	result, err := svc.GetLinkAnalytics(context.Background(), "abc123", RangeWeek)
	require.NoError(t, err)
	assert.Equal(t, "abc123", result.ShortCode)
	assert.Equal(t, RangeWeek, result.Range)
	require.Len(t, result.Referrers, 1)
	assert.Equal(t, 3, result.Referrers[0].Clicks)
	assert.Equal(t, 100.0, result.Referrers[0].Percentage)
	assert.Len(t, result.PeakHours, 24)

	_, err = svc.GetLinkAnalytics(context.Background(), "abc123", "14d")
	assert.ErrorIs(t, err, ErrInvalidRange)

	_, err = svc.GetLinkAnalytics(context.Background(), "missing", RangeWeek)
	assert.ErrorIs(t, err, ErrLinkNotFound)
}
