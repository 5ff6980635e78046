package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/fortitude-run/fortitude/pkg/config"
)

// Collector is the orchestrator for every Prometheus metric Fortitude
// records, mirroring the teacher's pkg/telemetry/metrics.Collector:
// one struct owning a registry plus one sub-struct of MetricVecs per
// concern, with every Record* method short-circuiting when metrics
// are disabled so callers never need their own enabled check.
type Collector struct {
	cfg      *config.MetricsConfig
	registry *prometheus.Registry

	pipeline       *pipelineMetrics
	cache          *cacheMetrics
	classification *classificationMetrics
	auth           *authMetrics
}

// NewCollector builds a Collector registered against registry. A nil
// registry gets a fresh prometheus.Registry, matching the teacher's
// NewCollector so tests don't collide with the global default
// registry.
func NewCollector(cfg *config.MetricsConfig, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	if cfg.Namespace == "" {
		cfg.Namespace = "fortitude"
	}

	return &Collector{
		cfg:            cfg,
		registry:       registry,
		pipeline:       newPipelineMetrics(cfg, registry),
		cache:          newCacheMetrics(cfg, registry),
		classification: newClassificationMetrics(cfg, registry),
		auth:           newAuthMetrics(cfg, registry),
	}
}

// Registry returns the underlying Prometheus registry, e.g. to mount
// additional collectors before building Handler().
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// RecordStage records the duration of one named pipeline stage
// (pkg/pipeline's StageClassify, StageDispatch, ... constants).
func (c *Collector) RecordStage(stage string, duration time.Duration) {
	if c == nil || !c.cfg.Enabled {
		return
	}
	c.pipeline.stageDuration.WithLabelValues(stage).Observe(duration.Seconds())
}

// RecordPipelineRun records the outcome of one full Process call:
// whether it was a cache hit, its quality score (0 on a cache hit,
// since the cached result's own score already landed on record), and
// the provider that served it (empty on a cache hit).
func (c *Collector) RecordPipelineRun(cacheHit bool, qualityScore float64, provider string) {
	if c == nil || !c.cfg.Enabled {
		return
	}
	status := "miss"
	if cacheHit {
		status = "hit"
		c.cache.hitsTotal.Inc()
	} else {
		c.cache.missesTotal.Inc()
	}
	c.pipeline.runsTotal.WithLabelValues(status).Inc()
	if !cacheHit {
		c.pipeline.qualityScore.WithLabelValues(provider).Observe(qualityScore)
	}
}

// RecordClassification records one classifier.Classify outcome.
func (c *Collector) RecordClassification(researchType string, confidence float64) {
	if c == nil || !c.cfg.Enabled {
		return
	}
	c.classification.total.WithLabelValues(researchType).Inc()
	c.classification.confidence.WithLabelValues(researchType).Observe(confidence)
}

// RecordRateLimitRejection records one request rejected by
// pkg/auth's token bucket before it reached the pipeline.
func (c *Collector) RecordRateLimitRejection(clientIdentity string) {
	if c == nil || !c.cfg.Enabled {
		return
	}
	c.auth.rateLimitRejections.Inc()
}

// RecordAuthFailure records one failed authentication attempt by
// reason (e.g. "missing_token", "invalid_token", "forbidden").
func (c *Collector) RecordAuthFailure(reason string) {
	if c == nil || !c.cfg.Enabled {
		return
	}
	c.auth.authFailures.WithLabelValues(reason).Inc()
}

// UpdateCacheSize records the current number of entries held by the
// storage backend, per storage.Backend.Stats.
func (c *Collector) UpdateCacheSize(size int64) {
	if c == nil || !c.cfg.Enabled {
		return
	}
	c.cache.entries.Set(float64(size))
}
