package quality

import (
	"context"
	"math"
	"testing"

	"github.com/fortitude-run/fortitude/pkg/research"
)

func TestEngine_Evaluate_AllDimensionsComputed(t *testing.T) {
	e := New()
	query := &research.Query{Text: "How do I implement retries in Go?"}
	weights := WeightsForProfile(ProfileDefault)

	score, err := e.Evaluate(context.Background(), query, "Use a for loop with exponential backoff. See https://example.com for details.", weights)
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}

	for _, dim := range research.AllQualityDimensions() {
		if _, ok := score.Scores[dim]; !ok {
			t.Errorf("dimension %s not computed", dim)
		}
	}
}

func TestEngine_Evaluate_CompositeInvariant(t *testing.T) {
	e := New()
	query := &research.Query{Text: "What is a mutex?"}
	weights := WeightsForProfile(ProfileTechnical)

	score, err := e.Evaluate(context.Background(), query, "A mutex is a mutual exclusion lock used to protect shared state in concurrent code.", weights)
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}

	want := score.ComputeComposite(weights)
	if math.Abs(score.Composite-want) >= 1e-9 {
		t.Errorf("composite invariant violated: got %v, want %v", score.Composite, want)
	}
}

func TestEngine_Evaluate_NilQuery(t *testing.T) {
	e := New()
	_, err := e.Evaluate(context.Background(), nil, "anything", WeightsForProfile(ProfileDefault))
	if err == nil {
		t.Fatal("expected error for nil query")
	}
}

func TestEngine_Evaluate_EmptyResponseScoresLow(t *testing.T) {
	e := New()
	query := &research.Query{Text: "explain channels"}
	weights := WeightsForProfile(ProfileDefault)

	score, err := e.Evaluate(context.Background(), query, "", weights)
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if score.Composite > 0.3 {
		t.Errorf("expected low composite for empty response, got %v", score.Composite)
	}
}

func TestWeightsForProfile_AllSumToOne(t *testing.T) {
	for _, p := range []Profile{ProfileDefault, ProfileResearchOptimized, ProfileTechnical, ProfileLearning} {
		w := WeightsForProfile(p)
		var sum float64
		for _, v := range w {
			sum += v
		}
		if math.Abs(sum-1.0) >= 1e-9 {
			t.Errorf("profile %s weights sum to %v, want 1.0", p, sum)
		}
		if len(w) != len(research.AllQualityDimensions()) {
			t.Errorf("profile %s assigns %d dimensions, want %d", p, len(w), len(research.AllQualityDimensions()))
		}
	}
}

func TestWeightsForProfile_UnknownFallsBackToDefault(t *testing.T) {
	got := WeightsForProfile(Profile("nonsense"))
	want := WeightsForProfile(ProfileDefault)
	for dim, v := range want {
		if got[dim] != v {
			t.Errorf("unknown profile dimension %s = %v, want %v", dim, got[dim], v)
		}
	}
}

func TestEngine_CrossValidate_Agreement(t *testing.T) {
	e := New()
	query := &research.Query{Text: "What is TCP?"}
	weights := WeightsForProfile(ProfileDefault)

	responses := []ProviderResponse{
		{Provider: "a", Response: "TCP is a reliable, connection-oriented transport protocol."},
		{Provider: "b", Response: "TCP is a connection-oriented, reliable transport layer protocol."},
	}

	report, err := e.CrossValidate(context.Background(), query, responses, weights)
	if err != nil {
		t.Fatalf("CrossValidate() error = %v", err)
	}
	if len(report.Scores) != 2 {
		t.Fatalf("expected 2 scores, got %d", len(report.Scores))
	}
	if report.ConsensusScore < 0.5 {
		t.Errorf("expected high consensus for similar answers, got %v", report.ConsensusScore)
	}
}

func TestEngine_CrossValidate_DetectsOutlier(t *testing.T) {
	e := New()
	query := &research.Query{Text: "What is TCP?"}
	weights := WeightsForProfile(ProfileDefault)

	responses := []ProviderResponse{
		{Provider: "a", Response: "TCP is a reliable, connection-oriented transport protocol used across the internet for ordered, error-checked delivery of data between applications."},
		{Provider: "b", Response: "TCP is a connection-oriented, reliable transport layer protocol used across the internet for ordered, error-checked delivery of data between applications."},
		{Provider: "c", Response: "dunno"},
	}

	report, err := e.CrossValidate(context.Background(), query, responses, weights)
	if err != nil {
		t.Fatalf("CrossValidate() error = %v", err)
	}
	if len(report.Outliers) == 0 {
		t.Error("expected at least one outlier")
	}
}

func TestEngine_CrossValidate_Empty(t *testing.T) {
	e := New()
	report, err := e.CrossValidate(context.Background(), &research.Query{Text: "x"}, nil, WeightsForProfile(ProfileDefault))
	if err != nil {
		t.Fatalf("CrossValidate() error = %v", err)
	}
	if len(report.Scores) != 0 {
		t.Errorf("expected no scores, got %d", len(report.Scores))
	}
}
