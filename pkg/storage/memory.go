package storage

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/fortitude-run/fortitude/pkg/ferrors"
	"github.com/fortitude-run/fortitude/pkg/research"
)

// defaultTTL is applied when a result carries no explicit expiry. It
// mirrors the teacher's cache-entry default in the absence of a
// per-type override from config.
const defaultTTL = 24 * time.Hour

// MemoryStore implements Backend entirely in process memory. It is
// intended for tests and short-lived CLI invocations, not production
// deployments — state does not survive a restart.
type MemoryStore struct {
	mu       sync.RWMutex
	entries  map[string]research.CacheEntry
	bodies   map[string]*research.ResearchResult
	capacity int64
	size     int64
	hits     int64
	misses   int64
}

// NewMemoryStore creates an empty store. capacity bounds total body
// bytes before Store and Cleanup start evicting; zero means unbounded.
func NewMemoryStore(capacity int64) *MemoryStore {
	return &MemoryStore{
		entries:  make(map[string]research.CacheEntry),
		bodies:   make(map[string]*research.ResearchResult),
		capacity: capacity,
	}
}

func (s *MemoryStore) Store(ctx context.Context, result *research.ResearchResult) (string, error) {
	if err := result.Validate(); err != nil {
		return "", &ferrors.InvalidInputError{Field: "result", Message: err.Error()}
	}

	key := research.Fingerprint(&result.Request.Query)
	body, err := json.Marshal(result)
	if err != nil {
		return "", &ferrors.SerializationError{Cause: err}
	}

	now := time.Now()
	entry := research.CacheEntry{
		CacheKey:      key,
		ResearchType:  result.Request.ResearchType,
		OriginalQuery: result.Request.Query.Text,
		CreatedAt:     now,
		LastAccessed:  now,
		ExpiresAt:     now.Add(defaultTTL),
		SizeBytes:     int64(len(body)),
		ContentHash:   research.ContentHash(body),
		QualityScore:  result.Metadata.QualityScore,
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if old, ok := s.entries[key]; ok {
		s.size -= old.SizeBytes
	}

	if s.capacity > 0 {
		others := s.entriesLocked(key)
		for _, ev := range selectForEviction(others, s.size, entry.SizeBytes, s.capacity) {
			s.size -= ev.SizeBytes
			delete(s.entries, ev.CacheKey)
			delete(s.bodies, ev.CacheKey)
		}
	}

	resultCopy := *result
	s.entries[key] = entry
	s.bodies[key] = &resultCopy
	s.size += entry.SizeBytes

	return key, nil
}

func (s *MemoryStore) Lookup(ctx context.Context, fingerprint string) (*research.ResearchResult, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[fingerprint]
	if !ok || entry.Expired(time.Now()) {
		s.misses++
		return nil, false, nil
	}

	entry.LastAccessed = time.Now()
	entry.AccessCount++
	s.entries[fingerprint] = entry
	s.hits++

	resultCopy := *s.bodies[fingerprint]
	resultCopy.Metadata.CacheHit = true
	return &resultCopy, true, nil
}

func (s *MemoryStore) Search(ctx context.Context, q SearchQuery) (*SearchResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return runSearch(s.entriesLocked(""), q), nil
}

func (s *MemoryStore) Invalidate(ctx context.Context, c InvalidateCriteria) (MutationReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	var toDelete []string
	var report MutationReport
	for key, e := range s.entries {
		if matchesInvalidate(e, c, now) {
			toDelete = append(toDelete, key)
			report.Count++
			report.BytesFreed += e.SizeBytes
		}
	}

	if c.DryRun {
		return report, nil
	}

	for _, key := range toDelete {
		s.size -= s.entries[key].SizeBytes
		delete(s.entries, key)
		delete(s.bodies, key)
	}
	return report, nil
}

func (s *MemoryStore) Cleanup(ctx context.Context) (MutationReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	var report MutationReport

	for _, e := range selectExpired(s.entriesLocked(""), now) {
		report.Count++
		report.BytesFreed += e.SizeBytes
		s.size -= e.SizeBytes
		delete(s.entries, e.CacheKey)
		delete(s.bodies, e.CacheKey)
	}

	if s.capacity > 0 {
		for _, e := range selectForEviction(s.entriesLocked(""), s.size, 0, s.capacity) {
			report.Count++
			report.BytesFreed += e.SizeBytes
			s.size -= e.SizeBytes
			delete(s.entries, e.CacheKey)
			delete(s.bodies, e.CacheKey)
		}
	}

	return report, nil
}

func (s *MemoryStore) Stats(ctx context.Context) (Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := Stats{
		Hits:           s.hits,
		Misses:         s.misses,
		TotalSizeBytes: s.size,
		ByResearchType: make(map[research.ResearchType]int64),
	}

	now := time.Now()
	var ageSum time.Duration
	for _, e := range s.entries {
		stats.TotalEntries++
		if e.Expired(now) {
			stats.ExpiredEntries++
		}
		stats.ByResearchType[e.ResearchType]++
		ageSum += now.Sub(e.CreatedAt)
	}
	if stats.TotalEntries > 0 {
		stats.AverageAge = ageSum / time.Duration(stats.TotalEntries)
	}

	return stats, nil
}

func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = make(map[string]research.CacheEntry)
	s.bodies = make(map[string]*research.ResearchResult)
	s.size = 0
	return nil
}

// entriesLocked snapshots the index, excluding exclude if non-empty.
// Caller must hold s.mu.
func (s *MemoryStore) entriesLocked(exclude string) []research.CacheEntry {
	out := make([]research.CacheEntry, 0, len(s.entries))
	for key, e := range s.entries {
		if key == exclude {
			continue
		}
		out = append(out, e)
	}
	return out
}
