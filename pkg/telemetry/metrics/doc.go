// Package metrics provides Prometheus metrics collection for Fortitude.
//
// # Overview
//
// The collector exposes Fortitude-domain counters and histograms: per
// stage pipeline latency, cache hit/miss rates, quality score
// distribution labelled by provider, classification counts and
// confidence by research type, and auth rate-limit rejections and
// failures. There is no separate provider request metric. It follows
// the teacher's pkg/telemetry/metrics shape (one *Metrics struct per
// concern, all registered against one *prometheus.Registry owned by
// the Collector) adapted from LLM-proxy concerns (tokens, cost,
// policy hits) to research-broker concerns (pipeline stages, cache,
// quality).
//
// # Usage
//
//	collector := metrics.NewCollector(&cfg.Metrics, nil)
//	pipeline.SetMetrics(collector)
//	http.Handle(cfg.Metrics.Path, collector.Handler())
package metrics
