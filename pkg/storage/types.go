// Package storage implements Fortitude's content-addressed research
// artifact store: one body file per cache key plus a queryable index of
// CacheEntry metadata, with search, invalidation, eviction, and cleanup.
//
// Two backends satisfy Backend: MemoryStore for tests and ephemeral CLI
// runs, and SQLiteStore for durable deployments. Both share the same
// selection logic for eviction, invalidation, and search (eviction.go,
// search.go) so their behavior cannot drift apart.
package storage

import (
	"context"
	"time"

	"github.com/fortitude-run/fortitude/pkg/research"
)

// SortOrder controls how Search orders its results.
type SortOrder string

const (
	SortRelevance SortOrder = "relevance"
	SortNewest    SortOrder = "newest"
	SortOldest    SortOrder = "oldest"
	SortQuality   SortOrder = "quality"
	SortSize      SortOrder = "size"
)

// TimeRange bounds a search or invalidate operation by entry creation
// time.
type TimeRange struct {
	Start time.Time
	End   time.Time
}

// SearchFilters narrows a Search beyond the free-text query.
type SearchFilters struct {
	ResearchType research.ResearchType
	Tags         []string
	MinQuality   float64
	TimeRange    *TimeRange
	MinRelevance float64
}

// SearchQuery is the input to Backend.Search.
type SearchQuery struct {
	Text    string
	Filters SearchFilters
	Offset  int
	Limit   int
	Sort    SortOrder
}

// Normalize clamps pagination to the documented bounds ([1,100] limit,
// offset >= 0) and applies the default sort order.
func (q *SearchQuery) Normalize() {
	if q.Limit <= 0 {
		q.Limit = 20
	}
	if q.Limit > 100 {
		q.Limit = 100
	}
	if q.Offset < 0 {
		q.Offset = 0
	}
	if q.Sort == "" {
		q.Sort = SortNewest
	}
}

// SearchResult is the output of Backend.Search.
type SearchResult struct {
	Entries []research.CacheEntry
	Total   int
}

// InvalidateCriteria selects the entries Invalidate should act on. A
// zero-value criteria matches nothing; callers must set at least one
// field.
type InvalidateCriteria struct {
	Keys         []string              `json:"keys,omitempty"`
	Pattern      string                `json:"pattern,omitempty"`
	ResearchType research.ResearchType `json:"research_type,omitempty"`
	Tags         []string              `json:"tags,omitempty"`
	MaxAge       time.Duration         `json:"max_age,omitempty"`
	MinQuality   *float64              `json:"min_quality,omitempty"`
	DryRun       bool                  `json:"dry_run,omitempty"`
}

// MutationReport is returned by Invalidate and Cleanup: the number of
// entries affected and the bytes they occupied. A dry_run call must
// report the same counts as the equivalent mutating call.
type MutationReport struct {
	Count      int64
	BytesFreed int64
}

// Stats summarizes the current state of the store.
type Stats struct {
	TotalEntries   int64
	ExpiredEntries int64
	TotalSizeBytes int64
	Hits           int64
	Misses         int64
	AverageAge     time.Duration
	ByResearchType map[research.ResearchType]int64
}

// Backend is the durable, content-addressed persistence contract shared
// by every storage implementation.
type Backend interface {
	// Store persists result under the fingerprint of its request,
	// idempotent by content hash. Returns the cache key.
	Store(ctx context.Context, result *research.ResearchResult) (string, error)

	// Lookup returns the cached result for fingerprint, touching
	// last_accessed on a hit. The second return is false on miss or when
	// the entry is past its expiry.
	Lookup(ctx context.Context, fingerprint string) (*research.ResearchResult, bool, error)

	// Search runs a filtered, paginated, deterministically ordered query
	// over the index.
	Search(ctx context.Context, q SearchQuery) (*SearchResult, error)

	// Invalidate deletes entries matching criteria. With DryRun set, it
	// computes the same report without mutating anything.
	Invalidate(ctx context.Context, c InvalidateCriteria) (MutationReport, error)

	// Cleanup deletes expired entries and evicts over-capacity entries.
	Cleanup(ctx context.Context) (MutationReport, error)

	// Stats returns a snapshot of store-wide counters.
	Stats(ctx context.Context) (Stats, error)

	// Close releases resources held by the backend.
	Close() error
}
