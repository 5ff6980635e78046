// Package pipeline orchestrates one research request end to end:
// validate, classify, fingerprint and look up the cache, select a
// provider, dispatch under the request deadline, score the answer,
// persist it, and emit stage telemetry. At most one provider dispatch
// runs concurrently per fingerprint; concurrent callers for the same
// query attach to the one in flight instead of triggering duplicate
// work, per spec §5/§8 scenario 7.
package pipeline

import (
	"context"
	"sync"
	"time"

	"github.com/fortitude-run/fortitude/pkg/classifier"
	"github.com/fortitude-run/fortitude/pkg/ferrors"
	"github.com/fortitude-run/fortitude/pkg/providers"
	"github.com/fortitude-run/fortitude/pkg/quality"
	"github.com/fortitude-run/fortitude/pkg/research"
	"github.com/fortitude-run/fortitude/pkg/storage"
	"github.com/fortitude-run/fortitude/pkg/telemetry/metrics"
)

// ProviderSource supplies the ranked set of providers the pipeline may
// dispatch to. pkg/providerfactory.Manager satisfies this.
type ProviderSource interface {
	GetProviders() map[string]providers.Provider
}

// Config tunes one Pipeline.
type Config struct {
	ClassifierOptions classifier.Options
	QualityWeights    research.QualityWeights
	Deadline          time.Duration // overall per-request deadline; 0 means ctx's own deadline governs
	ProviderOrder     []string      // preferred dispatch order; providers not listed are tried last, in map order
}

// Pipeline wires the classifier, storage backend, provider source, and
// quality engine into the Process operation.
type Pipeline struct {
	cfg       Config
	classifier *classifier.Classifier
	quality   *quality.Engine
	store     storage.Backend
	providers ProviderSource
	metrics   *metrics.Collector

	mu       sync.Mutex
	inflight map[string]*build
}

// SetMetrics wires a metrics collector into the pipeline. Optional —
// a Pipeline built without calling this records nothing, since every
// Collector method (and Collector itself) is nil-safe.
func (p *Pipeline) SetMetrics(m *metrics.Collector) {
	p.metrics = m
}

// New wires a Pipeline. classifierImpl, qualityEngine, store, and
// providerSource must all be non-nil.
func New(cfg Config, classifierImpl *classifier.Classifier, qualityEngine *quality.Engine, store storage.Backend, providerSource ProviderSource) *Pipeline {
	if cfg.QualityWeights == nil {
		cfg.QualityWeights = quality.WeightsForProfile(quality.ProfileDefault)
	}
	return &Pipeline{
		cfg:        cfg,
		classifier: classifierImpl,
		quality:    qualityEngine,
		store:      store,
		providers:  providerSource,
		inflight:   make(map[string]*build),
	}
}

// build is the shared-completion handle arrivers for the same
// fingerprint attach to, per spec §9's "in-memory map from fingerprint
// to a shared-completion handle" note.
type build struct {
	done   chan struct{}
	result *research.ResearchResult
	err    error
}

// StageTimings names the eight pipeline stages for telemetry, in
// execution order.
const (
	StageValidate    = "validate_normalize"
	StageClassify    = "classify"
	StageFingerprint = "fingerprint_cache_lookup"
	StageSelect      = "provider_selection"
	StageDispatch    = "dispatch"
	StageScore       = "score"
	StagePersist     = "persist"
	StageTelemetry   = "emit_telemetry"
)

// Process runs the full pipeline for query and returns the persisted
// (or cache-hit) ResearchResult.
func (p *Pipeline) Process(ctx context.Context, query *research.Query) (*research.ResearchResult, error) {
	if p.cfg.Deadline > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.cfg.Deadline)
		defer cancel()
	}

	timings := make(map[string]time.Duration)
	overallStart := time.Now()

	stageStart := time.Now()
	if err := query.Validate(); err != nil {
		return nil, &ferrors.InvalidInputError{Field: "query.text", Message: err.Error()}
	}
	timings[StageValidate] = time.Since(stageStart)

	stageStart = time.Now()
	classified, err := p.classifier.Classify(ctx, query, p.cfg.ClassifierOptions)
	if err != nil {
		return nil, err
	}
	timings[StageClassify] = time.Since(stageStart)
	p.metrics.RecordClassification(string(classified.ResearchType), classified.Confidence)

	stageStart = time.Now()
	fingerprint := research.Fingerprint(query)
	if cached, hit, err := p.store.Lookup(ctx, fingerprint); err != nil {
		return nil, err
	} else if hit {
		timings[StageFingerprint] = time.Since(stageStart)
		cached.Metadata.CacheHit = true
		p.recordStageTimings(timings)
		p.metrics.RecordPipelineRun(true, 0, "")
		return cached, nil
	}
	timings[StageFingerprint] = time.Since(stageStart)

	result, err := p.buildOnce(ctx, fingerprint, classified, timings)
	if err != nil {
		return nil, err
	}

	p.recordStageTimings(timings)
	p.metrics.RecordPipelineRun(false, result.Metadata.QualityScore, result.Metadata.ProviderUsed)

	result.Metadata.ProcessingTimeMs = time.Since(overallStart).Milliseconds()
	if result.Metadata.ProcessingTimeMs <= 0 {
		result.Metadata.ProcessingTimeMs = 1
	}
	return result, nil
}

// recordStageTimings reports every stage duration recorded so far to
// the metrics collector, if one is wired.
func (p *Pipeline) recordStageTimings(timings map[string]time.Duration) {
	for stage, d := range timings {
		p.metrics.RecordStage(stage, d)
	}
}

// buildOnce enforces the at-most-one-concurrent-dispatch-per-fingerprint
// guarantee: the first caller for a fingerprint runs the remaining
// stages and fans its result out to every other caller that arrived
// for the same fingerprint while it was in flight.
func (p *Pipeline) buildOnce(ctx context.Context, fingerprint string, classified *research.ClassifiedRequest, timings map[string]time.Duration) (*research.ResearchResult, error) {
	p.mu.Lock()
	if b, ok := p.inflight[fingerprint]; ok {
		p.mu.Unlock()
		select {
		case <-b.done:
			return cloneResult(b.result), b.err
		case <-ctx.Done():
			return nil, &ferrors.TimeoutError{After: 0}
		}
	}

	b := &build{done: make(chan struct{})}
	p.inflight[fingerprint] = b
	p.mu.Unlock()

	result, err := p.runRemainingStages(ctx, fingerprint, classified, timings)

	p.mu.Lock()
	delete(p.inflight, fingerprint)
	p.mu.Unlock()

	b.result, b.err = result, err
	close(b.done)

	return cloneResult(result), err
}

func cloneResult(r *research.ResearchResult) *research.ResearchResult {
	if r == nil {
		return nil
	}
	cp := *r
	return &cp
}

func (p *Pipeline) runRemainingStages(ctx context.Context, fingerprint string, classified *research.ClassifiedRequest, timings map[string]time.Duration) (*research.ResearchResult, error) {
	stageStart := time.Now()
	ranked := p.rankProviders()
	timings[StageSelect] = time.Since(stageStart)
	if len(ranked) == 0 {
		return nil, &ferrors.ServiceUnavailableError{Message: "no providers available"}
	}

	stageStart = time.Now()
	answer, providerUsed, err := p.dispatch(ctx, ranked, classified.Query.Text)
	timings[StageDispatch] = time.Since(stageStart)
	if err != nil {
		return nil, err
	}

	stageStart = time.Now()
	score, err := p.quality.Evaluate(ctx, &classified.Query, answer, p.cfg.QualityWeights)
	if err != nil {
		return nil, err
	}
	timings[StageScore] = time.Since(stageStart)

	result := &research.ResearchResult{
		Request:         *classified,
		ImmediateAnswer: answer,
		Metadata: research.ResultMetadata{
			CompletedAt:      time.Now(),
			QualityScore:     score.Composite,
			CacheKey:         fingerprint,
			ProviderUsed:     providerUsed,
			StageTimings:     cloneTimings(timings),
			ProcessingTimeMs: 1,
		},
	}

	stageStart = time.Now()
	if _, err := p.store.Store(ctx, result); err != nil {
		return nil, err
	}
	timings[StagePersist] = time.Since(stageStart)

	stageStart = time.Now()
	result.Metadata.StageTimings = cloneTimings(timings)
	timings[StageTelemetry] = time.Since(stageStart)

	return result, nil
}

func cloneTimings(t map[string]time.Duration) map[string]time.Duration {
	out := make(map[string]time.Duration, len(t))
	for k, v := range t {
		out[k] = v
	}
	return out
}

// rankProviders orders healthy providers by cfg.ProviderOrder first,
// then any remaining healthy providers in map iteration order. This
// generalizes the teacher's routing.HealthBasedStrategy decorator
// (pkg/routing/strategies/health_based.go): filter to healthy, then
// apply a selection preference — inlined here rather than kept as a
// separate strategy object, since the pipeline is the only caller.
func (p *Pipeline) rankProviders() []providers.Provider {
	all := p.providers.GetProviders()

	var ranked []providers.Provider
	seen := make(map[string]bool)
	for _, name := range p.cfg.ProviderOrder {
		if prov, ok := all[name]; ok && prov.IsHealthy() {
			ranked = append(ranked, prov)
			seen[name] = true
		}
	}
	for name, prov := range all {
		if !seen[name] && prov.IsHealthy() {
			ranked = append(ranked, prov)
			seen[name] = true
		}
	}
	// Fall back to unhealthy providers only if nothing healthy exists,
	// so a total outage still surfaces a real provider error instead of
	// a synthetic "no providers" one.
	if len(ranked) == 0 {
		for _, name := range p.cfg.ProviderOrder {
			if prov, ok := all[name]; ok && !seen[name] {
				ranked = append(ranked, prov)
				seen[name] = true
			}
		}
		for name, prov := range all {
			if !seen[name] {
				ranked = append(ranked, prov)
				seen[name] = true
			}
		}
	}
	return ranked
}

// dispatch tries ranked providers in order, falling through to the
// next one on an Unhealthy-shaped failure (ServiceUnavailable) or a
// RateLimitExceeded error, per spec §9's provider-fallback note. Any
// other error is returned immediately.
func (p *Pipeline) dispatch(ctx context.Context, ranked []providers.Provider, text string) (answer, providerName string, err error) {
	var lastErr error
	for _, prov := range ranked {
		answer, err := prov.ResearchQuery(ctx, text)
		if err == nil {
			return answer, prov.GetName(), nil
		}
		lastErr = err
		if !isFallbackEligible(err) {
			return "", "", err
		}
	}
	return "", "", lastErr
}

func isFallbackEligible(err error) bool {
	switch err.(type) {
	case *ferrors.ServiceUnavailableError, *ferrors.RateLimitExceededError:
		return true
	default:
		return false
	}
}
