package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/fortitude-run/fortitude/pkg/config"
)

// pipelineMetrics tracks pkg/pipeline.Pipeline.Process executions.
//
// Metrics (names as built with the default namespace "fortitude" and
// subsystem "research"):
//   - fortitude_research_pipeline_stage_duration_seconds: per-stage latency histogram
//   - fortitude_research_pipeline_runs_total: completed runs by cache hit/miss
//   - fortitude_research_pipeline_quality_score: quality.Result.Composite distribution
type pipelineMetrics struct {
	stageDuration *prometheus.HistogramVec
	runsTotal     *prometheus.CounterVec
	qualityScore  *prometheus.HistogramVec
}

func newPipelineMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *pipelineMetrics {
	m := &pipelineMetrics{
		stageDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "pipeline_stage_duration_seconds",
				Help:      "Duration of each research pipeline stage in seconds",
				Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 14), // 0.5ms to ~8s
			},
			[]string{"stage"},
		),
		runsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "pipeline_runs_total",
				Help:      "Total number of completed pipeline runs by cache outcome",
			},
			[]string{"cache_status"},
		),
		qualityScore: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "pipeline_quality_score",
				Help:      "Composite quality score of freshly computed research results",
				Buckets:   []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 1.0},
			},
			[]string{"provider"},
		),
	}

	registry.MustRegister(m.stageDuration, m.runsTotal, m.qualityScore)
	return m
}
