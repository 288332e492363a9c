package providers

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/spf13/cast"
	"streakd/internal/structures"
	"time"
)

// Record outcomes reported by the streak engine.
const (
	OutcomeStarted    = "started"
	OutcomeContinued  = "continued"
	OutcomeReset      = "reset"
	OutcomeDuplicate  = "duplicate"
	OutcomeOffDay     = "off_day"
	OutcomeOutOfOrder = "out_of_order"
)

type MetricsProviderInterface interface {
	IncRequestsTotal(endpoint string, status int)
	ObserveRequestDuration(endpoint string, duration time.Duration)
	IncCacheHits()
	IncCacheMisses()
	ObservePersistenceDuration(duration time.Duration)
	IncRecords(outcome string)
	IncMilestones(length int)
}

// RecordCounter exposes the engine's running totals to gauges.
type RecordCounter interface {
	RecordsProcessed() int64
}

type MetricsProvider struct {
	requestsTotal       *prometheus.CounterVec
	requestDuration     *prometheus.HistogramVec
	cacheHits           prometheus.Counter
	cacheMisses         prometheus.Counter
	persistenceDuration prometheus.Histogram
	recordsTotal        *prometheus.CounterVec
	milestonesTotal     *prometheus.CounterVec
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

func (m *MetricsProvider) IncRecords(outcome string) {
	m.recordsTotal.WithLabelValues(outcome).Inc()
}

func (m *MetricsProvider) IncMilestones(length int) {
	m.milestonesTotal.WithLabelValues(cast.ToString(length)).Inc()
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

func NewMetricsProvider(conf *structures.Config, counter RecordCounter) MetricsProviderInterface {
	if !conf.Metrics.Enabled {
		return &noopMetrics{}
	}

	m := &MetricsProvider{
		requestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "streakd_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"endpoint", "status"}),

		requestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "streakd_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),

		cacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "streakd_cache_hits_total",
			Help: "Total number of cache hits",
		}),

		cacheMisses: promauto.NewCounter(prometheus.CounterOpts{
			Name: "streakd_cache_misses_total",
			Help: "Total number of cache misses",
		}),

		persistenceDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "streakd_backup_duration_seconds",
			Help:    "Duration of snapshot backups in seconds",
			Buckets: prometheus.DefBuckets,
		}),

		recordsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "streakd_records_total",
			Help: "Recorded messages by outcome",
		}, []string{"outcome"}),

		milestonesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "streakd_milestones_total",
			Help: "Milestones reached by streak length",
		}, []string{"length"}),
	}

	promauto.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "streakd_records_processed",
		Help: "Messages processed since start",
	}, func() float64 {
		return float64(counter.RecordsProcessed())
	})

	return m
}

// noopMetrics is a no-op implementation for when metrics are disabled.
type noopMetrics struct{}

func (n *noopMetrics) IncRequestsTotal(_ string, _ int)                 {}
func (n *noopMetrics) ObserveRequestDuration(_ string, _ time.Duration) {}
func (n *noopMetrics) IncCacheHits()                                    {}
func (n *noopMetrics) IncCacheMisses()                                  {}
func (n *noopMetrics) ObservePersistenceDuration(_ time.Duration)       {}
func (n *noopMetrics) IncRecords(_ string)                              {}
func (n *noopMetrics) IncMilestones(_ int)                              {}
