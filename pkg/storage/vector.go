package storage

import (
	"context"

	"github.com/fortitude-run/fortitude/pkg/ferrors"
)

// VectorIndex is the contract a semantic/hybrid search backend would
// satisfy: embed a cache entry's content, and query by nearest
// neighbor. Per spec.md's Non-goals, no implementation ships — this
// interface exists so cmd/fortitude's vector/semantic-search/
// hybrid-search/find-similar commands and pkg/mcpapi's equivalent
// tools have a stable contract to stub against, and so a future
// embedding-backed store can be dropped in without touching either.
type VectorIndex interface {
	// Upsert embeds and indexes the entry at cacheKey. Replaces any
	// existing vector for the same key.
	Upsert(ctx context.Context, cacheKey string, text string) error

	// Query returns the cacheKeys of the topK nearest neighbors to
	// text, nearest first.
	Query(ctx context.Context, text string, topK int) ([]string, error)

	// Delete removes the vector for cacheKey, if any.
	Delete(ctx context.Context, cacheKey string) error

	// Stats reports index size and health.
	Stats(ctx context.Context) (VectorIndexStats, error)
}

// VectorIndexStats summarizes a VectorIndex's current state.
type VectorIndexStats struct {
	VectorCount int64
	Dimensions  int
}

// NoopVectorIndex is the zero-cost VectorIndex every deployment uses
// today: every method returns ErrNotImplemented so callers get a
// consistent, typed failure rather than a nil-pointer panic.
type NoopVectorIndex struct{}

func (NoopVectorIndex) Upsert(ctx context.Context, cacheKey, text string) error {
	return ferrors.ErrNotImplemented
}

func (NoopVectorIndex) Query(ctx context.Context, text string, topK int) ([]string, error) {
	return nil, ferrors.ErrNotImplemented
}

func (NoopVectorIndex) Delete(ctx context.Context, cacheKey string) error {
	return ferrors.ErrNotImplemented
}

func (NoopVectorIndex) Stats(ctx context.Context) (VectorIndexStats, error) {
	return VectorIndexStats{}, ferrors.ErrNotImplemented
}
