package telemetry

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/yunduan-CloudForge/CF-blog-system-sub001/internal/core/port"
)

// RevocationMetricsOptions configures the Prometheus collectors.
type RevocationMetricsOptions struct {
	Registerer prometheus.Registerer
	Namespace  string
}

// RevocationMetrics exposes Prometheus collectors for the revocation service
// and the eviction scheduler.
type RevocationMetrics struct {
	revocations     *prometheus.CounterVec
	cacheHits       prometheus.Counter
	cacheMisses     prometheus.Counter
	failClosed      prometheus.Counter
	cleanupRuns     prometheus.Counter
	cleanupDeleted  prometheus.Counter
	cleanupDuration prometheus.Histogram
	cacheSize       prometheus.Gauge
}

// NewRevocationMetrics constructs and registers the revocation collectors.
func NewRevocationMetrics(opts RevocationMetricsOptions) (*RevocationMetrics, error) {
	namespace := opts.Namespace
	if namespace == "" {
		namespace = "blog"
	}

	reg := opts.Registerer
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	m := &RevocationMetrics{
		revocations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "revocation",
			Name:      "revocations_total",
			Help:      "Total number of token revocations partitioned by reason.",
		}, []string{"reason"}),
		cacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "revocation",
			Name:      "cache_hits_total",
			Help:      "Membership checks answered from the in-process cache.",
		}),
		cacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "revocation",
			Name:      "cache_misses_total",
			Help:      "Membership checks that fell through to the durable store.",
		}),
		failClosed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "revocation",
			Name:      "fail_closed_total",
			Help:      "Checks answered as revoked because the store was unreachable.",
		}),
		cleanupRuns: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "revocation",
			Name:      "cleanup_runs_total",
			Help:      "Completed eviction scheduler ticks.",
		}),
		cleanupDeleted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "revocation",
			Name:      "cleanup_deleted_total",
			Help:      "Expired revocation records physically deleted.",
		}),
		cleanupDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "revocation",
			Name:      "cleanup_duration_seconds",
			Help:      "Duration of eviction scheduler ticks.",
			Buckets:   prometheus.DefBuckets,
		}),
		cacheSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "revocation",
			Name:      "cache_size",
			Help:      "Current number of fingerprints in the membership cache.",
		}),
	}

	collectors := []prometheus.Collector{
		m.revocations,
		m.cacheHits,
		m.cacheMisses,
		m.failClosed,
		m.cleanupRuns,
		m.cleanupDeleted,
		m.cleanupDuration,
		m.cacheSize,
	}
	for _, collector := range collectors {
		if err := reg.Register(collector); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); ok {
				continue
			}
			return nil, fmt.Errorf("register revocation collector: %w", err)
		}
	}

	return m, nil
}

func (m *RevocationMetrics) IncRevocation(reason string) {
	m.revocations.WithLabelValues(reason).Inc()
}

func (m *RevocationMetrics) IncCacheHit() {
	m.cacheHits.Inc()
}

func (m *RevocationMetrics) IncCacheMiss() {
	m.cacheMisses.Inc()
}

func (m *RevocationMetrics) IncFailClosed() {
	m.failClosed.Inc()
}

func (m *RevocationMetrics) ObserveCleanup(deleted int64, cacheSize int, duration time.Duration) {
	m.cleanupRuns.Inc()
	m.cleanupDeleted.Add(float64(deleted))
	m.cleanupDuration.Observe(duration.Seconds())
	m.cacheSize.Set(float64(cacheSize))
}

var _ port.RevocationMetrics = (*RevocationMetrics)(nil)
