package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/fortitude-run/fortitude/pkg/config"
)

func testConfig() *config.MetricsConfig {
	return &config.MetricsConfig{Enabled: true, Namespace: "test", Subsystem: "fortitude"}
}

func TestNewCollector(t *testing.T) {
	registry := prometheus.NewRegistry()
	c := NewCollector(testConfig(), registry)

	if c == nil {
		t.Fatal("expected non-nil collector")
	}
	if c.Registry() != registry {
		t.Error("collector did not use the supplied registry")
	}
}

func TestNewCollector_NilRegistryGetsFreshOne(t *testing.T) {
	c := NewCollector(testConfig(), nil)
	if c.Registry() == nil {
		t.Fatal("expected a fresh registry when nil was passed")
	}
}

func TestCollector_RecordStage(t *testing.T) {
	c := NewCollector(testConfig(), prometheus.NewRegistry())

	c.RecordStage("classify", 10*time.Millisecond)

	count := testutil.CollectAndCount(c.pipeline.stageDuration)
	if count != 1 {
		t.Errorf("stageDuration series count = %d, want 1", count)
	}
}

func TestCollector_RecordPipelineRun_CacheHitAndMiss(t *testing.T) {
	c := NewCollector(testConfig(), prometheus.NewRegistry())

	c.RecordPipelineRun(true, 0, "")
	c.RecordPipelineRun(false, 0.82, "claude")

	if got := testutil.ToFloat64(c.cache.hitsTotal); got != 1 {
		t.Errorf("cache hits = %v, want 1", got)
	}
	if got := testutil.ToFloat64(c.cache.missesTotal); got != 1 {
		t.Errorf("cache misses = %v, want 1", got)
	}
	if got := testutil.ToFloat64(c.pipeline.runsTotal.WithLabelValues("hit")); got != 1 {
		t.Errorf("runs[hit] = %v, want 1", got)
	}
	if got := testutil.ToFloat64(c.pipeline.runsTotal.WithLabelValues("miss")); got != 1 {
		t.Errorf("runs[miss] = %v, want 1", got)
	}
}

func TestCollector_RecordClassification(t *testing.T) {
	c := NewCollector(testConfig(), prometheus.NewRegistry())

	c.RecordClassification("implementation", 0.9)

	if got := testutil.ToFloat64(c.classification.total.WithLabelValues("implementation")); got != 1 {
		t.Errorf("classification total = %v, want 1", got)
	}
}

func TestCollector_RecordRateLimitRejection(t *testing.T) {
	c := NewCollector(testConfig(), prometheus.NewRegistry())

	c.RecordRateLimitRejection("client-1")
	c.RecordRateLimitRejection("client-2")

	if got := testutil.ToFloat64(c.auth.rateLimitRejections); got != 2 {
		t.Errorf("rate limit rejections = %v, want 2", got)
	}
}

func TestCollector_DisabledCollectorIsANoop(t *testing.T) {
	cfg := testConfig()
	cfg.Enabled = false
	c := NewCollector(cfg, prometheus.NewRegistry())

	c.RecordStage("classify", time.Millisecond)
	c.RecordPipelineRun(false, 0.5, "claude")
	c.RecordClassification("implementation", 0.5)
	c.RecordRateLimitRejection("client-1")
	c.UpdateCacheSize(5)

	if got := testutil.ToFloat64(c.cache.missesTotal); got != 0 {
		t.Errorf("disabled collector recorded a cache miss: %v", got)
	}
}

func TestCollector_NilCollectorIsSafe(t *testing.T) {
	var c *Collector
	c.RecordStage("classify", time.Millisecond)
	c.RecordPipelineRun(true, 0, "")
	c.RecordClassification("implementation", 0.5)
	c.RecordRateLimitRejection("client-1")
	c.RecordAuthFailure("missing_token")
	c.UpdateCacheSize(5)
}

func TestCollector_Handler(t *testing.T) {
	c := NewCollector(testConfig(), prometheus.NewRegistry())
	c.RecordClassification("implementation", 0.5)

	if c.Handler() == nil {
		t.Fatal("expected a non-nil handler")
	}
}
