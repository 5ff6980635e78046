package storage

import (
	"sort"
	"strings"
	"time"

	"github.com/fortitude-run/fortitude/pkg/research"
)

// selectExpired returns the entries past their expiry as of now,
// regardless of last_accessed — spec requires expired entries to be
// evicted first, before any capacity-driven eviction runs.
func selectExpired(entries []research.CacheEntry, now time.Time) []research.CacheEntry {
	var out []research.CacheEntry
	for _, e := range entries {
		if e.Expired(now) {
			out = append(out, e)
		}
	}
	return out
}

// selectForEviction picks entries to remove, oldest-by-last_accessed
// first, tie-broken by lowest quality_score, until total size drops
// below capacity. entries must already exclude anything selectExpired
// would have picked.
func selectForEviction(entries []research.CacheEntry, currentSize, incoming, capacity int64) []research.CacheEntry {
	if currentSize+incoming < capacity {
		return nil
	}

	candidates := append([]research.CacheEntry(nil), entries...)
	sort.Slice(candidates, func(i, j int) bool {
		if !candidates[i].LastAccessed.Equal(candidates[j].LastAccessed) {
			return candidates[i].LastAccessed.Before(candidates[j].LastAccessed)
		}
		if candidates[i].QualityScore != candidates[j].QualityScore {
			return candidates[i].QualityScore < candidates[j].QualityScore
		}
		return candidates[i].CacheKey < candidates[j].CacheKey
	})

	var evicted []research.CacheEntry
	freed := int64(0)
	for _, e := range candidates {
		if currentSize+incoming-freed < capacity {
			break
		}
		evicted = append(evicted, e)
		freed += e.SizeBytes
	}
	return evicted
}

// matchesInvalidate reports whether entry satisfies criteria. Criteria
// fields combine with AND; an empty criteria matches nothing (callers
// must always restrict).
func matchesInvalidate(e research.CacheEntry, c InvalidateCriteria, now time.Time) bool {
	matchedAnyField := false

	if len(c.Keys) > 0 {
		matchedAnyField = true
		found := false
		for _, k := range c.Keys {
			if k == e.CacheKey {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}

	if c.Pattern != "" {
		matchedAnyField = true
		if !strings.Contains(e.OriginalQuery, c.Pattern) {
			return false
		}
	}

	if c.ResearchType != "" {
		matchedAnyField = true
		if e.ResearchType != c.ResearchType {
			return false
		}
	}

	if len(c.Tags) > 0 {
		matchedAnyField = true
		if !hasAnyTag(e.Tags, c.Tags) {
			return false
		}
	}

	if c.MaxAge > 0 {
		matchedAnyField = true
		if now.Sub(e.CreatedAt) < c.MaxAge {
			return false
		}
	}

	// MinQuality selects entries scoring below it.
	if c.MinQuality != nil {
		matchedAnyField = true
		if e.QualityScore >= *c.MinQuality {
			return false
		}
	}

	return matchedAnyField
}

func hasAnyTag(entryTags, want []string) bool {
	set := make(map[string]struct{}, len(entryTags))
	for _, t := range entryTags {
		set[t] = struct{}{}
	}
	for _, w := range want {
		if _, ok := set[w]; ok {
			return true
		}
	}
	return false
}
