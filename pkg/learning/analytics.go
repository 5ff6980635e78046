package learning

import (
	"time"

	"github.com/fortitude-run/fortitude/pkg/research"
)

// FeedbackDistribution buckets retained feedback by type and, for
// quality ratings, by rating value.
type FeedbackDistribution struct {
	ByType   map[research.FeedbackType]int
	ByRating map[int]int
}

// SatisfactionPoint is one window-bucketed mean rating, used to chart
// a satisfaction trend over time.
type SatisfactionPoint struct {
	BucketStart time.Time
	MeanRating  float64
	Samples     int
}

// Report is the result of Analytics(window): a provider trend
// (global ranking), a feedback-type/rating distribution, a
// satisfaction trend bucketed by day, and any detected anomalies,
// all restricted to feedback within window of now.
type Report struct {
	Window             time.Duration
	ProviderTrend       []ProviderRanking
	FeedbackDistribution FeedbackDistribution
	SatisfactionTrend    []SatisfactionPoint
	Anomalies            []AnomalyReport
}

// Analytics builds a Report covering the trailing window of
// retained feedback as of now.
func (e *Engine) Analytics(now time.Time, window time.Duration) Report {
	cutoff := now.Add(-window)

	e.mu.Lock()
	var inWindow []research.UserFeedback
	for _, fb := range e.allFeedback {
		if !fb.Timestamp.Before(cutoff) {
			inWindow = append(inWindow, fb)
		}
	}
	e.mu.Unlock()

	dist := FeedbackDistribution{
		ByType:   make(map[research.FeedbackType]int),
		ByRating: make(map[int]int),
	}
	dayBuckets := make(map[time.Time][]float64)

	for _, fb := range inWindow {
		dist.ByType[fb.Type]++
		if fb.Rating != nil {
			dist.ByRating[*fb.Rating]++
			day := fb.Timestamp.Truncate(24 * time.Hour)
			dayBuckets[day] = append(dayBuckets[day], float64(*fb.Rating))
		}
	}

	trend := make([]SatisfactionPoint, 0, len(dayBuckets))
	for day, ratings := range dayBuckets {
		var sum float64
		for _, r := range ratings {
			sum += r
		}
		trend = append(trend, SatisfactionPoint{
			BucketStart: day,
			MeanRating:  sum / float64(len(ratings)),
			Samples:     len(ratings),
		})
	}
	sortTrendAsc(trend)

	return Report{
		Window:               window,
		ProviderTrend:        e.GlobalProviderRanking(),
		FeedbackDistribution: dist,
		SatisfactionTrend:    trend,
		Anomalies:            e.DetectAnomalies(2.0),
	}
}

func sortTrendAsc(pts []SatisfactionPoint) {
	for i := 1; i < len(pts); i++ {
		for j := i; j > 0 && pts[j].BucketStart.Before(pts[j-1].BucketStart); j-- {
			pts[j], pts[j-1] = pts[j-1], pts[j]
		}
	}
}
