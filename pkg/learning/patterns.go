package learning

import (
	"math"
	"time"

	"github.com/fortitude-run/fortitude/pkg/research"
)

// patternAccumulator tracks running statistics for one (pattern_type,
// data) key, feeding both the frequency/confidence-threshold
// DetectedPattern surfacing and the running-mean+stddev anomaly
// detector.
type patternAccumulator struct {
	patternType string
	data        string
	frequency   int
	firstSeen   time.Time
	lastSeen    time.Time
	contexts    map[string]string

	// hourly observation counts, used for peak-hour and anomaly
	// detection on a running mean/stddev of per-hour frequency.
	hourCounts map[int]int
}

func patternKey(t, data string) string { return t + "\x00" + data }

// recordPatternLocked folds one feedback event into its pattern
// accumulator, keyed by (research_type, provider) as the default
// pattern dimension: a simple, always-available pairing that still
// lets peak-hour and error-cluster detection work without requiring
// callers to pre-declare pattern shapes.
func (e *Engine) recordPatternLocked(fb research.UserFeedback) {
	ptype := string(fb.Context.ResearchType)
	if ptype == "" {
		ptype = "unclassified"
	}
	data := fb.Provider
	if data == "" {
		data = "unknown"
	}

	key := patternKey(ptype, data)
	acc, ok := e.patterns[key]
	if !ok {
		acc = &patternAccumulator{
			patternType: ptype,
			data:        data,
			firstSeen:   fb.Timestamp,
			contexts:    map[string]string{"domain": fb.Context.Domain, "audience": fb.Context.Audience},
			hourCounts:  make(map[int]int),
		}
		e.patterns[key] = acc
	}
	acc.frequency++
	acc.lastSeen = fb.Timestamp
	acc.hourCounts[fb.Timestamp.Hour()]++
}

// DetectedPatterns returns every accumulated pattern whose frequency
// and confidence cross the given thresholds, tiered by
// research.Significance.
func (e *Engine) DetectedPatterns(minFrequency int, minConfidence float64, now time.Time, staleAfter time.Duration) []research.DetectedPattern {
	e.mu.Lock()
	defer e.mu.Unlock()

	var out []research.DetectedPattern
	for _, acc := range e.patterns {
		if acc.frequency < minFrequency {
			continue
		}
		confidence := patternConfidence(acc)
		if confidence < minConfidence {
			continue
		}
		out = append(out, research.DetectedPattern{
			UsagePattern: research.UsagePattern{
				PatternType: acc.patternType,
				Data:        acc.data,
				Frequency:   acc.frequency,
				LastUsed:    acc.lastSeen,
				Context:     acc.contexts,
			},
			FirstSeen:    acc.firstSeen,
			LastSeen:     acc.lastSeen,
			Confidence:   confidence,
			Significance: research.Significance(acc.frequency, confidence, acc.lastSeen, now, staleAfter),
		})
	}
	return out
}

// patternConfidence grows with sample count, saturating as frequency
// increases: confidence = frequency / (frequency + k), a standard
// Laplace-smoothed count-confidence curve.
func patternConfidence(acc *patternAccumulator) float64 {
	const k = 5.0
	return float64(acc.frequency) / (float64(acc.frequency) + k)
}

// AnomalyReport flags a pattern whose hourly frequency deviates from
// its own running mean by more than the given number of standard
// deviations — used for both peak-hour detection (z > 0) and
// error-cluster detection (pattern_type == "bug_report"-shaped keys).
type AnomalyReport struct {
	PatternType string
	Data        string
	Hour        int
	Count       int
	Mean        float64
	StdDev      float64
	ZScore      float64
}

// DetectAnomalies runs a running-mean+stddev check over every
// pattern's per-hour observation counts and returns the hours whose
// count is more than threshold standard deviations from that
// pattern's mean.
func (e *Engine) DetectAnomalies(threshold float64) []AnomalyReport {
	e.mu.Lock()
	defer e.mu.Unlock()

	var out []AnomalyReport
	for _, acc := range e.patterns {
		if len(acc.hourCounts) < 2 {
			continue
		}
		counts := make([]float64, 0, len(acc.hourCounts))
		for _, c := range acc.hourCounts {
			counts = append(counts, float64(c))
		}
		mean, stddev := meanStddevInts(counts)
		if stddev == 0 {
			continue
		}
		for hour, count := range acc.hourCounts {
			z := (float64(count) - mean) / stddev
			if math.Abs(z) >= threshold {
				out = append(out, AnomalyReport{
					PatternType: acc.patternType,
					Data:        acc.data,
					Hour:        hour,
					Count:       count,
					Mean:        mean,
					StdDev:      stddev,
					ZScore:      z,
				})
			}
		}
	}
	return out
}

func meanStddevInts(xs []float64) (mean, stddev float64) {
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
