package providers

import (
	"time"

	"ade/internal/structures"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type MetricsProviderInterface interface {
	IncRequestsTotal(endpoint string, status int)
	ObserveRequestDuration(endpoint string, duration time.Duration)
	IncCacheHits()
	IncCacheMisses()
	ObservePersistenceDuration(duration time.Duration)
	IncCycle(outcome string)
	IncImpressions()
	IncAnalyticsEvent(kind string, success bool)
	ObserveFetchDuration(duration time.Duration)
	SetActiveSessions(count int)
}

type MetricsProvider struct {
	requestsTotal       *prometheus.CounterVec
	requestDuration     *prometheus.HistogramVec
	cacheHits           prometheus.Counter
	cacheMisses         prometheus.Counter
	persistenceDuration prometheus.Histogram
	cyclesTotal         *prometheus.CounterVec
	impressionsTotal    prometheus.Counter
	analyticsEvents     *prometheus.CounterVec
	fetchDuration       prometheus.Histogram
	activeSessions      prometheus.Gauge
}

func (m *MetricsProvider) IncRequestsTotal(endpoint string, status int) {
	m.requestsTotal.WithLabelValues(endpoint, httpStatusBucket(status)).Inc()
}

func (m *MetricsProvider) ObserveRequestDuration(endpoint string, duration time.Duration) {
	m.requestDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}

func (m *MetricsProvider) IncCacheHits() {
	m.cacheHits.Inc()
}

func (m *MetricsProvider) IncCacheMisses() {
	m.cacheMisses.Inc()
}

func (m *MetricsProvider) ObservePersistenceDuration(duration time.Duration) {
	m.persistenceDuration.Observe(duration.Seconds())
}

func (m *MetricsProvider) IncCycle(outcome string) {
	m.cyclesTotal.WithLabelValues(outcome).Inc()
}

func (m *MetricsProvider) IncImpressions() {
	m.impressionsTotal.Inc()
}

func (m *MetricsProvider) IncAnalyticsEvent(kind string, success bool) {
	status := "ok"
	if !success {
		status = "failed"
	}
	m.analyticsEvents.WithLabelValues(kind, status).Inc()
}

func (m *MetricsProvider) ObserveFetchDuration(duration time.Duration) {
	m.fetchDuration.Observe(duration.Seconds())
}

func (m *MetricsProvider) SetActiveSessions(count int) {
	m.activeSessions.Set(float64(count))
}

func httpStatusBucket(code int) string {
	switch {
	case code < 200:
		return "1xx"
	case code < 300:
		return "2xx"
	case code < 400:
		return "3xx"
	case code < 500:
		return "4xx"
	default:
		return "5xx"
	}
}

func NewMetricsProvider(conf *structures.Config) MetricsProviderInterface {
	if !conf.Metrics.Enabled {
		return &noopMetrics{}
	}

	return &MetricsProvider{
		requestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "ade_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"endpoint", "status"}),

		requestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "ade_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),

		cacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "ade_cache_hits_total",
			Help: "Total number of cache hits",
		}),

		cacheMisses: promauto.NewCounter(prometheus.CounterOpts{
			Name: "ade_cache_misses_total",
			Help: "Total number of cache misses",
		}),

		persistenceDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "ade_persistence_duration_seconds",
			Help:    "Duration of persistence operations in seconds",
			Buckets: prometheus.DefBuckets,
		}),

		cyclesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "ade_cycles_total",
			Help: "Display decision cycles by outcome",
		}, []string{"outcome"}),

		impressionsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "ade_impressions_total",
			Help: "Total number of completed ad impressions",
		}),

		analyticsEvents: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "ade_analytics_events_total",
			Help: "Analytics event dispatches by kind and status",
		}, []string{"kind", "status"}),

		fetchDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "ade_fetch_duration_seconds",
			Help:    "Candidate fetch duration in seconds",
			Buckets: prometheus.DefBuckets,
		}),

		activeSessions: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "ade_active_sessions",
			Help: "Current number of live visitor sessions",
		}),
	}
}

// noopMetrics is a no-op implementation for when metrics are disabled.
type noopMetrics struct{}

func (n *noopMetrics) IncRequestsTotal(_ string, _ int)                 {}
func (n *noopMetrics) ObserveRequestDuration(_ string, _ time.Duration) {}
func (n *noopMetrics) IncCacheHits()                                    {}
func (n *noopMetrics) IncCacheMisses()                                  {}
func (n *noopMetrics) ObservePersistenceDuration(_ time.Duration)       {}
func (n *noopMetrics) IncCycle(_ string)                                {}
func (n *noopMetrics) IncImpressions()                                  {}
func (n *noopMetrics) IncAnalyticsEvent(_ string, _ bool)               {}
func (n *noopMetrics) ObserveFetchDuration(_ time.Duration)             {}
func (n *noopMetrics) SetActiveSessions(_ int)                          {}
