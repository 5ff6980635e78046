package learning

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"math"

	"github.com/fortitude-run/fortitude/pkg/ferrors"
)

// Variant is one arm of an A/B experiment.
type Variant struct {
	Name    string
	Weights map[string]float64 // e.g. quality dimension overrides, provider routing weights
}

// Experiment is a two-variant A/B test registered with the engine.
// Partitioning is deterministic by subject ID so the same subject
// always lands in the same variant for the life of the experiment.
type Experiment struct {
	Name     string
	Control  Variant
	Treatment Variant

	stats map[string]*variantStats // variant name -> running stats
}

type variantStats struct {
	samples int
	sum     float64
	sumSq   float64
}

// RegisterExperiment adds a two-variant experiment under name,
// replacing any experiment already registered under it.
func (e *Engine) RegisterExperiment(name string, control, treatment Variant) error {
	if name == "" {
		return &ferrors.InvalidInputError{Field: "name", Message: "must not be empty"}
	}
	if control.Name == "" || treatment.Name == "" {
		return &ferrors.InvalidInputError{Field: "variant.name", Message: "control and treatment must both be named"}
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.experiments[name] = &Experiment{
		Name: name, Control: control, Treatment: treatment,
		stats: map[string]*variantStats{
			control.Name:   {},
			treatment.Name: {},
		},
	}
	return nil
}

// AssignVariant deterministically partitions subjectID (a user or
// session ID) into the control or treatment arm of the named
// experiment via the low bits of a SHA-256 digest, so repeated calls
// for the same subject always agree.
func (e *Engine) AssignVariant(name, subjectID string) (Variant, error) {
	e.mu.Lock()
	exp, ok := e.experiments[name]
	e.mu.Unlock()
	if !ok {
		return Variant{}, &ferrors.NotFoundError{Kind: "experiment", ID: name}
	}

	sum := sha256.Sum256([]byte(name + "\x00" + subjectID))
	bucket := binary.BigEndian.Uint64(sum[:8]) % 100
	if bucket < 50 {
		return exp.Control, nil
	}
	return exp.Treatment, nil
}

// RecordOutcome attaches one observed metric sample (e.g. a quality
// composite or a satisfaction rating) to the named experiment's
// variant.
func (e *Engine) RecordOutcome(name, variantName string, value float64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	exp, ok := e.experiments[name]
	if !ok {
		return &ferrors.NotFoundError{Kind: "experiment", ID: name}
	}
	s, ok := exp.stats[variantName]
	if !ok {
		return &ferrors.InvalidInputError{Field: "variant", Message: fmt.Sprintf("unknown variant %q", variantName)}
	}
	s.samples++
	s.sum += value
	s.sumSq += value * value
	return nil
}

// VariantResult summarizes one variant's observed outcomes.
type VariantResult struct {
	Variant string
	Samples int
	Mean    float64
	StdDev  float64
}

// ExperimentReport is the outcome of ExperimentResults: per-variant
// stats plus a significance heuristic and a plain-language
// recommendation.
type ExperimentReport struct {
	Control        VariantResult
	Treatment      VariantResult
	Significant    bool
	Recommendation string
}

// ExperimentResults computes per-variant statistics and a
// significance heuristic (Welch's t-statistic against a fixed
// threshold, since the spec leaves the exact test unspecified) for
// the named experiment.
func (e *Engine) ExperimentResults(name string) (*ExperimentReport, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	exp, ok := e.experiments[name]
	if !ok {
		return nil, &ferrors.NotFoundError{Kind: "experiment", ID: name}
	}

	control := summarizeVariant(exp.Control.Name, exp.stats[exp.Control.Name])
	treatment := summarizeVariant(exp.Treatment.Name, exp.stats[exp.Treatment.Name])

	report := &ExperimentReport{Control: control, Treatment: treatment}

	const minSamples = 10
	const tThreshold = 1.96 // ~95% confidence for a two-sided z-test approximation
	if control.Samples >= minSamples && treatment.Samples >= minSamples {
		t := welchT(control, treatment)
		report.Significant = t >= tThreshold || t <= -tThreshold
	}

	switch {
	case !report.Significant:
		report.Recommendation = "insufficient evidence to distinguish variants; keep collecting"
	case treatment.Mean > control.Mean:
		report.Recommendation = "treatment outperforms control; consider promoting it"
	default:
		report.Recommendation = "control outperforms treatment; keep control"
	}
	return report, nil
}

func summarizeVariant(name string, s *variantStats) VariantResult {
	if s == nil || s.samples == 0 {
		return VariantResult{Variant: name}
	}
	mean := s.sum / float64(s.samples)
	variance := s.sumSq/float64(s.samples) - mean*mean
	if variance < 0 {
		variance = 0
	}
	return VariantResult{Variant: name, Samples: s.samples, Mean: mean, StdDev: math.Sqrt(variance)}
}

func welchT(a, b VariantResult) float64 {
	denom := math.Sqrt(a.StdDev*a.StdDev/float64(a.Samples) + b.StdDev*b.StdDev/float64(b.Samples))
	if denom == 0 {
		return 0
	}
	return (a.Mean - b.Mean) / denom
}
