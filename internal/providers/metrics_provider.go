package providers

import (
	"susrolld/internal/services"
	"susrolld/internal/structures"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type MetricsProviderInterface interface {
	IncRequestsTotal(endpoint string, status int)
	ObserveRequestDuration(endpoint string, duration time.Duration)
	IncCacheHits()
	IncCacheMisses()
	IncRolls(result string)
	IncClaims(rarity string)
	IncResets()
	IncFetchAttempts()
	ObserveSourceDuration(duration time.Duration)
	ObservePersistenceDuration(duration time.Duration)
}

const (
	RollResultSuccess   = "success"
	RollResultExhausted = "exhausted"
	RollResultRejected  = "rejected"
)

type MetricsProvider struct {
	requestsTotal       *prometheus.CounterVec
	requestDuration     *prometheus.HistogramVec
	cacheHits           prometheus.Counter
	cacheMisses         prometheus.Counter
	rollsTotal          *prometheus.CounterVec
	claimsTotal         *prometheus.CounterVec
	resetsTotal         prometheus.Counter
	fetchAttemptsTotal  prometheus.Counter
	sourceDuration      prometheus.Histogram
	persistenceDuration prometheus.Histogram
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

func (m *MetricsProvider) IncRolls(result string) {
	m.rollsTotal.WithLabelValues(result).Inc()
}

func (m *MetricsProvider) IncClaims(rarity string) {
	m.claimsTotal.WithLabelValues(rarity).Inc()
}

func (m *MetricsProvider) IncResets() {
	m.resetsTotal.Inc()
}

func (m *MetricsProvider) IncFetchAttempts() {
	m.fetchAttemptsTotal.Inc()
}

func (m *MetricsProvider) ObserveSourceDuration(duration time.Duration) {
	m.sourceDuration.Observe(duration.Seconds())
}

func (m *MetricsProvider) ObservePersistenceDuration(duration time.Duration) {
	m.persistenceDuration.Observe(duration.Seconds())
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

func NewMetricsProvider(conf *structures.Config, service services.AccountServiceInterface) MetricsProviderInterface {
	if !conf.Metrics.Enabled {
		return &noopMetrics{}
	}

	m := &MetricsProvider{
		requestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "susrolld_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"endpoint", "status"}),

		requestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "susrolld_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),

		cacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "susrolld_cache_hits_total",
			Help: "Total number of cache hits",
		}),

		cacheMisses: promauto.NewCounter(prometheus.CounterOpts{
			Name: "susrolld_cache_misses_total",
			Help: "Total number of cache misses",
		}),

		rollsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "susrolld_rolls_total",
			Help: "Total number of roll attempts by result",
		}, []string{"result"}),

		claimsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "susrolld_claims_total",
			Help: "Total number of claimed characters by rarity",
		}, []string{"rarity"}),

		resetsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "susrolld_resets_total",
			Help: "Total number of session resets",
		}),

		fetchAttemptsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "susrolld_fetch_attempts_total",
			Help: "Total number of character fetch attempts against the source",
		}),

		sourceDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "susrolld_source_request_duration_seconds",
			Help:    "Upstream character source request duration in seconds",
			Buckets: prometheus.DefBuckets,
		}),

		persistenceDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "susrolld_persistence_duration_seconds",
			Help:    "Duration of persistence operations in seconds",
			Buckets: prometheus.DefBuckets,
		}),
	}

	promauto.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "susrolld_accounts_total",
		Help: "Total number of registered accounts",
	}, func() float64 {
		return float64(len(service.Usernames()))
	})

	return m
}

// noopMetrics is a no-op implementation for when metrics are disabled.
type noopMetrics struct{}

func (n *noopMetrics) IncRequestsTotal(_ string, _ int)                  {}
func (n *noopMetrics) ObserveRequestDuration(_ string, _ time.Duration)  {}
func (n *noopMetrics) IncCacheHits()                                     {}
func (n *noopMetrics) IncCacheMisses()                                   {}
func (n *noopMetrics) IncRolls(_ string)                                 {}
func (n *noopMetrics) IncClaims(_ string)                                {}
func (n *noopMetrics) IncResets()                                        {}
func (n *noopMetrics) IncFetchAttempts()                                 {}
func (n *noopMetrics) ObserveSourceDuration(_ time.Duration)             {}
func (n *noopMetrics) ObservePersistenceDuration(_ time.Duration)        {}
