package storage

import (
	"sort"
	"strings"

	"github.com/fortitude-run/fortitude/pkg/research"
)

// matchesSearch reports whether entry satisfies q, mirroring the
// teacher's matchesQuery: every set filter must hold, text search
// matches the original query substring case-insensitively.
func matchesSearch(e research.CacheEntry, q SearchQuery) bool {
	if q.Text != "" && !strings.Contains(strings.ToLower(e.OriginalQuery), strings.ToLower(q.Text)) {
		return false
	}
	if q.Filters.ResearchType != "" && e.ResearchType != q.Filters.ResearchType {
		return false
	}
	if len(q.Filters.Tags) > 0 && !hasAnyTag(e.Tags, q.Filters.Tags) {
		return false
	}
	if q.Filters.MinQuality > 0 && e.QualityScore < q.Filters.MinQuality {
		return false
	}
	if tr := q.Filters.TimeRange; tr != nil {
		if !tr.Start.IsZero() && e.CreatedAt.Before(tr.Start) {
			return false
		}
		if !tr.End.IsZero() && e.CreatedAt.After(tr.End) {
			return false
		}
	}
	return true
}

// sortEntries orders entries in place per SortOrder. Ties always break
// on CacheKey so that pagination is stable across calls.
func sortEntries(entries []research.CacheEntry, order SortOrder) {
	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		switch order {
		case SortOldest:
			if !a.CreatedAt.Equal(b.CreatedAt) {
				return a.CreatedAt.Before(b.CreatedAt)
			}
		case SortQuality:
			if a.QualityScore != b.QualityScore {
				return a.QualityScore > b.QualityScore
			}
		case SortSize:
			if a.SizeBytes != b.SizeBytes {
				return a.SizeBytes > b.SizeBytes
			}
		case SortRelevance:
			// Relevance has no dedicated score on the index record; fall
			// back to quality as the best available proxy, then recency.
			if a.QualityScore != b.QualityScore {
				return a.QualityScore > b.QualityScore
			}
			if !a.CreatedAt.Equal(b.CreatedAt) {
				return a.CreatedAt.After(b.CreatedAt)
			}
		case SortNewest:
			fallthrough
		default:
			if !a.CreatedAt.Equal(b.CreatedAt) {
				return a.CreatedAt.After(b.CreatedAt)
			}
		}
		return a.CacheKey < b.CacheKey
	})
}

// paginate slices entries to [offset, offset+limit), returning an empty
// slice (never nil-panicking) when offset is past the end.
func paginate(entries []research.CacheEntry, offset, limit int) []research.CacheEntry {
	if offset >= len(entries) {
		return []research.CacheEntry{}
	}
	end := offset + limit
	if end > len(entries) {
		end = len(entries)
	}
	return entries[offset:end]
}

// runSearch is the full filter → sort → paginate pipeline shared by
// every Backend implementation.
func runSearch(all []research.CacheEntry, q SearchQuery) *SearchResult {
	q.Normalize()

	var matched []research.CacheEntry
	for _, e := range all {
		if matchesSearch(e, q) {
			matched = append(matched, e)
		}
	}

	sortEntries(matched, q.Sort)
	total := len(matched)
	page := paginate(matched, q.Offset, q.Limit)

	return &SearchResult{Entries: page, Total: total}
}
