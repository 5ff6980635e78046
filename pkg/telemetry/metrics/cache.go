package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/fortitude-run/fortitude/pkg/config"
)

// cacheMetrics tracks storage.Backend cache performance, grounded on
// the teacher's pkg/telemetry/metrics/cache.go (same three metric
// shapes: hits, misses, current size).
type cacheMetrics struct {
	hitsTotal   prometheus.Counter
	missesTotal prometheus.Counter
	entries     prometheus.Gauge
}

func newCacheMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *cacheMetrics {
	m := &cacheMetrics{
		hitsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      "cache_hits_total",
			Help:      "Total number of research cache hits",
		}),
		missesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      "cache_misses_total",
			Help:      "Total number of research cache misses",
		}),
		entries: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      "cache_entries",
			Help:      "Current number of entries in the research cache",
		}),
	}

	registry.MustRegister(m.hitsTotal, m.missesTotal, m.entries)
	return m
}
