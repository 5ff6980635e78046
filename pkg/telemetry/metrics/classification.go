package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/fortitude-run/fortitude/pkg/config"
)

// classificationMetrics tracks pkg/classifier.Classifier.Classify
// outcomes by research type.
type classificationMetrics struct {
	total      *prometheus.CounterVec
	confidence *prometheus.HistogramVec
}

func newClassificationMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *classificationMetrics {
	m := &classificationMetrics{
		total: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "classifications_total",
				Help:      "Total number of queries classified, by research type",
			},
			[]string{"research_type"},
		),
		confidence: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "classification_confidence",
				Help:      "Classifier confidence score distribution, by research type",
				Buckets:   prometheus.LinearBuckets(0, 0.1, 11), // 0.0 .. 1.0
			},
			[]string{"research_type"},
		),
	}

	registry.MustRegister(m.total, m.confidence)
	return m
}
