package classifier

import (
	"context"
	"testing"

	"github.com/fortitude-run/fortitude/pkg/ferrors"
	"github.com/fortitude-run/fortitude/pkg/research"
)

func TestClassify_BasicImplementation(t *testing.T) {
	c := New(nil)
	req, err := c.Classify(context.Background(), &research.Query{Text: "how do I implement rate limiting in my service"}, Options{})
	if err != nil {
		t.Fatalf("Classify() failed: %v", err)
	}
	if req.ResearchType != research.TypeImplementation {
		t.Errorf("ResearchType = %q, want %q", req.ResearchType, research.TypeImplementation)
	}
	if len(req.Candidates) == 0 {
		t.Error("expected at least one candidate to be recorded for audit")
	}
}

func TestClassify_Troubleshooting(t *testing.T) {
	c := New(nil)
	req, err := c.Classify(context.Background(), &research.Query{Text: "my service keeps crashing with a panic on startup"}, Options{})
	if err != nil {
		t.Fatalf("Classify() failed: %v", err)
	}
	if req.ResearchType != research.TypeTroubleshooting {
		t.Errorf("ResearchType = %q, want %q", req.ResearchType, research.TypeTroubleshooting)
	}
}

func TestClassify_EmptyQueryIsInvalidInput(t *testing.T) {
	c := New(nil)
	_, err := c.Classify(context.Background(), &research.Query{Text: ""}, Options{})
	if err == nil {
		t.Fatal("expected error for empty query")
	}
	if _, ok := err.(*ferrors.InvalidInputError); !ok {
		t.Errorf("expected *ferrors.InvalidInputError, got %T", err)
	}
}

func TestClassify_LowConfidenceThreshold(t *testing.T) {
	c := New(nil)
	_, err := c.Classify(context.Background(), &research.Query{Text: "the weather today is pleasant"}, Options{ConfidenceThreshold: 0.9})
	if err == nil {
		t.Fatal("expected low-confidence error for an unmatched query with a high threshold")
	}
	if _, ok := err.(*ferrors.ClassificationLowConfidenceError); !ok {
		t.Errorf("expected *ferrors.ClassificationLowConfidenceError, got %T", err)
	}
}

func TestClassify_AdvancedDimensions(t *testing.T) {
	c := New(nil)
	req, err := c.Classify(context.Background(), &research.Query{
		Text: "I'm a beginner and this is urgent: our kubernetes deployment is production down",
	}, Options{EnableAdvanced: true, IncludeExplanations: true})
	if err != nil {
		t.Fatalf("Classify() failed: %v", err)
	}
	if req.AudienceLevel == nil || req.AudienceLevel.Label != "beginner" {
		t.Errorf("AudienceLevel = %+v, want beginner", req.AudienceLevel)
	}
	if req.TechnicalDomain == nil || req.TechnicalDomain.Label != "devops" {
		t.Errorf("TechnicalDomain = %+v, want devops", req.TechnicalDomain)
	}
	if req.UrgencyLevel == nil || req.UrgencyLevel.Label != "immediate" {
		t.Errorf("UrgencyLevel = %+v, want immediate", req.UrgencyLevel)
	}
	if req.FallbackUsed {
		t.Error("expected FallbackUsed = false when all three dimensions matched")
	}
}

func TestClassify_AdvancedDisabledLeavesDimensionsNil(t *testing.T) {
	c := New(nil)
	req, err := c.Classify(context.Background(), &research.Query{Text: "how do I implement caching"}, Options{})
	if err != nil {
		t.Fatalf("Classify() failed: %v", err)
	}
	if req.AudienceLevel != nil || req.TechnicalDomain != nil || req.UrgencyLevel != nil {
		t.Error("expected dimension fields to remain nil when advanced classification is disabled")
	}
}

func TestClassify_FallbackUsedOnNoDimensionSignal(t *testing.T) {
	c := New(nil)
	req, err := c.Classify(context.Background(), &research.Query{Text: "implement a thing"}, Options{EnableAdvanced: true})
	if err != nil {
		t.Fatalf("Classify() failed: %v", err)
	}
	if !req.FallbackUsed {
		t.Error("expected FallbackUsed = true when no dimension has keyword signal")
	}
}

func TestOverallConfidence_MeanOfDimensions(t *testing.T) {
	req := &research.ClassifiedRequest{
		Confidence:      0.2,
		AudienceLevel:   &research.DimensionResult{Confidence: 0.8},
		TechnicalDomain: &research.DimensionResult{Confidence: 0.6},
		UrgencyLevel:    &research.DimensionResult{Confidence: 1.0},
	}
	got := OverallConfidence(req)
	audience, domain, urgency := 0.8, 0.6, 1.0
	want := (audience + domain + urgency) / 3
	if got != want {
		t.Errorf("OverallConfidence() = %v, want %v", got, want)
	}
}

func TestOverallConfidence_FallsBackToBasicWhenNoDimensions(t *testing.T) {
	req := &research.ClassifiedRequest{Confidence: 0.42}
	if got := OverallConfidence(req); got != 0.42 {
		t.Errorf("OverallConfidence() = %v, want 0.42", got)
	}
}
