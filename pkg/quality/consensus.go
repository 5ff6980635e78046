package quality

import (
	"context"
	"math"

	"github.com/fortitude-run/fortitude/pkg/research"
)

// ProviderResponse pairs one provider's answer with its name for
// cross-validation.
type ProviderResponse struct {
	Provider string
	Response string
}

// ProviderScore is one provider's score within a ConsensusReport.
type ProviderScore struct {
	Provider string
	Score    *research.QualityScore
}

// ConsensusReport summarizes how several providers' answers to the
// same query agree, per spec §4.4's cross_validate.
type ConsensusReport struct {
	Scores         []ProviderScore
	ConsensusScore float64 // mean pairwise agreement across composites, in [0,1]
	Outliers       []string
}

// CrossValidate scores every response under weights and reports
// pairwise agreement and outliers: providers whose composite deviates
// from the mean by more than 2 standard deviations (or, with fewer
// than 3 responses, by more than outlierAbsThreshold).
func (e *Engine) CrossValidate(ctx context.Context, query *research.Query, responses []ProviderResponse, weights research.QualityWeights) (*ConsensusReport, error) {
	report := &ConsensusReport{Scores: make([]ProviderScore, 0, len(responses))}
	if len(responses) == 0 {
		return report, nil
	}

	composites := make([]float64, 0, len(responses))
	for _, r := range responses {
		score, err := e.Evaluate(ctx, query, r.Response, weights)
		if err != nil {
			return nil, err
		}
		report.Scores = append(report.Scores, ProviderScore{Provider: r.Provider, Score: score})
		composites = append(composites, score.Composite)
	}

	mean, stddev := meanStddev(composites)
	report.ConsensusScore = pairwiseAgreement(composites)

	const outlierAbsThreshold = 0.35
	for i, c := range composites {
		var isOutlier bool
		if len(composites) >= 3 && stddev > 0 {
			isOutlier = math.Abs(c-mean) > 2*stddev
		} else {
			isOutlier = math.Abs(c-mean) > outlierAbsThreshold
		}
		if isOutlier {
			report.Outliers = append(report.Outliers, report.Scores[i].Provider)
		}
	}

	return report, nil
}

// pairwiseAgreement returns 1 minus the mean absolute pairwise
// difference between composites, clamped to [0,1]: identical scores
// agree perfectly (1.0), maximally divergent scores (0 vs 1) agree
// not at all (0.0).
func pairwiseAgreement(composites []float64) float64 {
	n := len(composites)
	if n < 2 {
		return 1.0
	}
	var sumDiff float64
	var pairs int
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			sumDiff += math.Abs(composites[i] - composites[j])
			pairs++
		}
	}
	if pairs == 0 {
		return 1.0
	}
	return clamp01(1 - sumDiff/float64(pairs))
}

func meanStddev(xs []float64) (mean, stddev float64) {
	if len(xs) == 0 {
		return 0, 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	mean = sum / float64(len(xs))

	var sq float64
	for _, x := range xs {
		d := x - mean
		sq += d * d
	}
	stddev = math.Sqrt(sq / float64(len(xs)))
	return mean, stddev
}
