package learning

import "github.com/fortitude-run/fortitude/pkg/research"

// ema is an exponential moving average with a fixed smoothing factor.
type ema struct {
	value float64
	alpha float64
	seen  int
}

func newEMA(alpha float64) *ema {
	return &ema{alpha: alpha}
}

// update folds sample into the average. The first sample seeds the
// value directly so a single observation doesn't get diluted toward
// zero.
func (e *ema) update(sample float64) {
	if e.seen == 0 {
		e.value = sample
	} else {
		e.value = e.alpha*sample + (1-e.alpha)*e.value
	}
	e.seen++
}

const defaultEMAAlpha = 0.2

// adaptProviderPreferenceLocked folds one feedback event into the
// per-user and global provider preference EMAs. The sample is the
// feedback normalized to [0,1]: a quality rating is (rating-1)/4, a
// provider-preference entry with a relevance_score uses that score
// directly, otherwise a neutral 0.5.
func (e *Engine) adaptProviderPreferenceLocked(fb research.UserFeedback) {
	if fb.Provider == "" {
		return
	}
	sample := normalizedSample(fb)

	user := userKey(fb.UserID)
	perUser, ok := e.userProviders[user]
	if !ok {
		perUser = make(map[string]*ema)
		e.userProviders[user] = perUser
	}
	if perUser[fb.Provider] == nil {
		perUser[fb.Provider] = newEMA(defaultEMAAlpha)
	}
	perUser[fb.Provider].update(sample)

	if e.globalProviders[fb.Provider] == nil {
		e.globalProviders[fb.Provider] = newEMA(defaultEMAAlpha)
	}
	e.globalProviders[fb.Provider].update(sample)
}

func normalizedSample(fb research.UserFeedback) float64 {
	if fb.Rating != nil {
		return (float64(*fb.Rating) - 1) / 4
	}
	if fb.RelevanceScore != nil {
		return *fb.RelevanceScore
	}
	return 0.5
}

// ProviderRanking is one provider's aggregated preference score.
type ProviderRanking struct {
	Provider string
	Score    float64
	Samples  int
}

// GlobalProviderRanking returns every provider's global EMA, sorted
// by descending score, aggregating across all users per spec §4.5's
// "aggregated into global ranking."
func (e *Engine) GlobalProviderRanking() []ProviderRanking {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]ProviderRanking, 0, len(e.globalProviders))
	for name, avg := range e.globalProviders {
		out = append(out, ProviderRanking{Provider: name, Score: avg.value, Samples: avg.seen})
	}
	sortRankingsDesc(out)
	return out
}

// UserProviderRanking returns userID's personal provider preference
// ranking, falling back to an empty slice if the user has no
// observations yet.
func (e *Engine) UserProviderRanking(userID string) []ProviderRanking {
	e.mu.Lock()
	defer e.mu.Unlock()

	perUser := e.userProviders[userKey(userID)]
	out := make([]ProviderRanking, 0, len(perUser))
	for name, avg := range perUser {
		out = append(out, ProviderRanking{Provider: name, Score: avg.value, Samples: avg.seen})
	}
	sortRankingsDesc(out)
	return out
}

func sortRankingsDesc(rs []ProviderRanking) {
	for i := 1; i < len(rs); i++ {
		for j := i; j > 0 && rs[j].Score > rs[j-1].Score; j-- {
			rs[j], rs[j-1] = rs[j-1], rs[j]
		}
	}
}
