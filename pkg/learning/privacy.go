package learning

import (
	"time"

	"github.com/fortitude-run/fortitude/pkg/research"
)

// ExportUserData returns every retained feedback event for userID, for
// the data-export privacy control in spec §4.5. Returns an empty
// slice (never nil-vs-empty ambiguity) when the user has no retained
// feedback or anonymization has stripped user IDs entirely.
func (e *Engine) ExportUserData(userID string) []research.UserFeedback {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]research.UserFeedback, 0)
	for _, fb := range e.allFeedback {
		if fb.UserID == userID {
			out = append(out, fb)
		}
	}
	return out
}

// PruneReport summarizes one Prune call.
type PruneReport struct {
	FeedbackRemoved int
	PatternsRemoved int
}

// Prune discards retained feedback and pattern accumulators older
// than cfg.RetentionInterval as of now. A non-positive
// RetentionInterval (New only leaves a negative one in place)
// disables pruning entirely.
func (e *Engine) Prune(now time.Time) PruneReport {
	if e.cfg.RetentionInterval <= 0 {
		return PruneReport{}
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	cutoff := now.Add(-e.cfg.RetentionInterval)
	var report PruneReport

	kept := e.allFeedback[:0]
	for _, fb := range e.allFeedback {
		if fb.Timestamp.Before(cutoff) {
			report.FeedbackRemoved++
			continue
		}
		kept = append(kept, fb)
	}
	e.allFeedback = kept

	for key, acc := range e.patterns {
		if acc.lastSeen.Before(cutoff) {
			delete(e.patterns, key)
			report.PatternsRemoved++
		}
	}

	return report
}
