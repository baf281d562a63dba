package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors shared across the service.
type Metrics struct {
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	RedirectsTotal   prometheus.Counter
	CacheHitsTotal   prometheus.Counter
	CacheMissesTotal prometheus.Counter
	RateLimitedTotal *prometheus.CounterVec
	ClickJobsTotal   *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	return &Metrics{
		HTTPRequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests by endpoint, method and status code",
			},
			[]string{"endpoint", "method", "status"},
		),
		HTTPRequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency in seconds",
				Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0},
			},
			[]string{"endpoint", "method"},
		),
		RedirectsTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "redirects_total",
				Help: "Total number of redirects served",
			},
		),
		CacheHitsTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "link_cache_hits_total",
				Help: "Total number of link cache hits on the redirect path",
			},
		),
		CacheMissesTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "link_cache_misses_total",
				Help: "Total number of link cache misses on the redirect path",
			},
		),
		RateLimitedTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rate_limited_total",
				Help: "Total number of requests denied by the rate limiter, by purpose",
			},
			[]string{"purpose"},
		),
		ClickJobsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "click_jobs_total",
				Help: "Total number of click jobs by outcome",
			},
			[]string{"outcome"},
		),
	}
}
