// Package learning implements Fortitude's feedback loop: a
// non-blocking collection queue, a batch updater that adapts
// per-user quality weights and provider preference rankings, usage
// analytics, an A/B test harness, and pattern/anomaly detection.
//
// The loop is best-effort per spec §7: a failed update logs and
// continues, and never fails the caller that submitted feedback.
package learning

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/fortitude-run/fortitude/pkg/ferrors"
	"github.com/fortitude-run/fortitude/pkg/research"
)

// Config tunes the learning loop's adaptation behavior.
type Config struct {
	// LearningRate (eta) bounds how much a single feedback event may
	// move a quality weight. Typical range (0, 0.2].
	LearningRate float64

	// MinFeedbackCount gates weight adaptation until a user has
	// submitted at least this many quality ratings.
	MinFeedbackCount int

	// Conservative, when true, leaves weights untouched on low ratings
	// instead of nudging them down.
	Conservative bool

	// QueueSize bounds the feedback channel; Collect drops feedback
	// (and increments Dropped) rather than blocking once it's full.
	QueueSize int

	// AnonymizeUserData strips UserID at collection time, per privacy
	// controls in spec §4.5.
	AnonymizeUserData bool

	// RetentionInterval is how long raw feedback and derived patterns
	// are kept before Prune discards them. New replaces zero with the
	// 90-day default; a negative value disables pruning.
	RetentionInterval time.Duration
}

// DefaultConfig returns reasonable defaults: a conservative learning
// rate, a three-rating warm-up, and a 10k-entry queue.
func DefaultConfig() Config {
	return Config{
		LearningRate:      0.05,
		MinFeedbackCount:  3,
		Conservative:      true,
		QueueSize:         10000,
		AnonymizeUserData: false,
		RetentionInterval: 90 * 24 * time.Hour,
	}
}

// Engine owns the feedback queue and every piece of derived learning
// state: per-user adapted weights, provider preference EMAs, usage
// patterns, and registered A/B experiments.
type Engine struct {
	cfg   Config
	queue chan research.UserFeedback

	mu              sync.Mutex
	feedbackCount   map[string]int // user_id -> quality_rating count
	userWeights     map[string]research.QualityWeights
	userProviders   map[string]map[string]*ema
	globalProviders map[string]*ema
	allFeedback     []research.UserFeedback // retained for analytics/export/prune
	patterns        map[string]*patternAccumulator
	experiments     map[string]*Experiment

	dropped int64
}

// New creates a learning Engine with cfg applied over any zero fields
// from DefaultConfig.
func New(cfg Config) *Engine {
	def := DefaultConfig()
	if cfg.LearningRate <= 0 {
		cfg.LearningRate = def.LearningRate
	}
	if cfg.MinFeedbackCount <= 0 {
		cfg.MinFeedbackCount = def.MinFeedbackCount
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = def.QueueSize
	}
	if cfg.RetentionInterval == 0 {
		cfg.RetentionInterval = def.RetentionInterval
	}

	return &Engine{
		cfg:             cfg,
		queue:           make(chan research.UserFeedback, cfg.QueueSize),
		feedbackCount:   make(map[string]int),
		userWeights:     make(map[string]research.QualityWeights),
		userProviders:   make(map[string]map[string]*ema),
		globalProviders: make(map[string]*ema),
		patterns:        make(map[string]*patternAccumulator),
		experiments:     make(map[string]*Experiment),
	}
}

// Collect validates feedback and enqueues it for the next ApplyUpdates
// batch. It never blocks: if the queue is full the feedback is
// dropped and Dropped() reflects it, matching the spec's
// suspension-point note that feedback enqueue never blocks.
func (e *Engine) Collect(ctx context.Context, fb research.UserFeedback) error {
	if err := fb.Validate(); err != nil {
		return &ferrors.InvalidInputError{Field: "feedback", Message: err.Error()}
	}
	if fb.FeedbackID == "" {
		return &ferrors.InvalidInputError{Field: "feedback.feedback_id", Message: "must not be empty"}
	}
	if fb.Timestamp.IsZero() {
		fb.Timestamp = time.Now()
	}
	if e.cfg.AnonymizeUserData {
		fb.UserID = ""
	}

	select {
	case e.queue <- fb:
		return nil
	default:
		e.mu.Lock()
		e.dropped++
		e.mu.Unlock()
		slog.Warn("learning: feedback queue full, dropping", "feedback_id", fb.FeedbackID)
		return nil
	}
}

// Dropped returns the number of feedback events dropped by a full
// queue since the engine was created.
func (e *Engine) Dropped() int64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.dropped
}

// QueueDepth returns the number of feedback events currently waiting
// for the next ApplyUpdates batch.
func (e *Engine) QueueDepth() int {
	return len(e.queue)
}

// UpdateSummary reports what one ApplyUpdates batch did.
type UpdateSummary struct {
	Processed       int
	WeightsAdapted  int
	ProvidersRanked int
	Duration        time.Duration
}

// ApplyUpdates drains every feedback event currently queued and folds
// it into per-user quality weights, provider preference EMAs, and
// pattern accumulators. It is best-effort: a malformed entry is
// logged and skipped, never returned as an error to the caller.
func (e *Engine) ApplyUpdates(ctx context.Context) (UpdateSummary, error) {
	started := time.Now()
	var summary UpdateSummary

	for {
		select {
		case fb := <-e.queue:
			e.applyOne(fb)
			summary.Processed++
		default:
			summary.Duration = time.Since(started)
			return summary, nil
		}

		select {
		case <-ctx.Done():
			summary.Duration = time.Since(started)
			return summary, ctx.Err()
		default:
		}
	}
}

func (e *Engine) applyOne(fb research.UserFeedback) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.allFeedback = append(e.allFeedback, fb)
	e.recordPatternLocked(fb)

	switch fb.Type {
	case research.FeedbackQualityRating:
		e.adaptWeightsLocked(fb)
	case research.FeedbackProviderPreference:
		e.adaptProviderPreferenceLocked(fb)
	}

	if fb.Type == research.FeedbackQualityRating && fb.Provider != "" {
		e.adaptProviderPreferenceLocked(fb)
	}
}

const anonymousUser = "_anonymous"

func userKey(userID string) string {
	if userID == "" {
		return anonymousUser
	}
	return userID
}

// adaptWeightsLocked implements the high/low-rating weight adaptation
// rule from spec §4.5: a rating >=4 nudges the weights of dimensions
// that scored >=0.8 upward by LearningRate, then renormalizes; a
// rating <=2 either leaves weights untouched (Conservative) or
// mirrors the nudge downward. Ratings of exactly 3 are neutral.
func (e *Engine) adaptWeightsLocked(fb research.UserFeedback) {
	if fb.Rating == nil {
		return
	}
	user := userKey(fb.UserID)
	e.feedbackCount[user]++
	if e.feedbackCount[user] < e.cfg.MinFeedbackCount {
		return
	}

	weights, ok := e.userWeights[user]
	if !ok || len(weights) == 0 {
		weights = make(research.QualityWeights, len(research.AllQualityDimensions()))
		for _, d := range research.AllQualityDimensions() {
			weights[d] = 1.0 / float64(len(research.AllQualityDimensions()))
		}
	}

	rating := *fb.Rating
	var direction float64
	switch {
	case rating >= 4:
		direction = 1
	case rating <= 2:
		if e.cfg.Conservative {
			return
		}
		direction = -1
	default:
		return
	}

	for dim, score := range fb.Context.OriginalDimensionScores {
		if score >= 0.8 {
			weights[dim] += direction * e.cfg.LearningRate * weights[dim]
			if weights[dim] < 0 {
				weights[dim] = 0
			}
		}
	}
	weights.Normalize()
	e.userWeights[user] = weights
}

// UserWeights returns the adapted weight set for userID, or ok=false
// if the user has not yet crossed MinFeedbackCount.
func (e *Engine) UserWeights(userID string) (research.QualityWeights, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	w, ok := e.userWeights[userKey(userID)]
	return w, ok
}
