package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fortitude-run/fortitude/pkg/ferrors"
	"github.com/fortitude-run/fortitude/pkg/research"
)

// SQLiteConfig configures the durable store.
type SQLiteConfig struct {
	// IndexPath is the SQLite database file holding the CacheEntry index.
	IndexPath string

	// BodyDir holds one JSON file per cache entry, named <cache_key>.json.
	BodyDir string

	// Capacity bounds total body bytes before Store and Cleanup start
	// evicting. Zero means unbounded.
	Capacity int64

	MaxOpenConns int
	MaxIdleConns int
	WALMode      bool
	BusyTimeout  time.Duration
}

// DefaultSQLiteConfig returns sane defaults for a local deployment.
func DefaultSQLiteConfig() *SQLiteConfig {
	return &SQLiteConfig{
		IndexPath:    "data/fortitude-cache.db",
		BodyDir:      "data/fortitude-cache",
		MaxOpenConns: 10,
		MaxIdleConns: 5,
		WALMode:      true,
		BusyTimeout:  5 * time.Second,
	}
}

// SQLiteStore implements Backend with a SQLite metadata index and
// one body file on disk per cache key, for durable deployments.
type SQLiteStore struct {
	db     *sql.DB
	config *SQLiteConfig
	logger *slog.Logger
	mu     sync.Mutex
	hits   int64
	misses int64
}

// NewSQLiteStore opens (creating if necessary) the index database and
// body directory, verifying the schema version matches.
func NewSQLiteStore(config *SQLiteConfig) (*SQLiteStore, error) {
	if config == nil {
		config = DefaultSQLiteConfig()
	}

	logger := slog.Default().With("component", "storage.sqlite")

	if err := os.MkdirAll(config.BodyDir, 0o755); err != nil {
		return nil, &ferrors.StorageIOError{Op: "mkdir_body_dir", Cause: err}
	}
	if err := os.MkdirAll(filepath.Dir(config.IndexPath), 0o755); err != nil {
		return nil, &ferrors.StorageIOError{Op: "mkdir_index_dir", Cause: err}
	}

	db, err := sql.Open(driverName, config.IndexPath)
	if err != nil {
		return nil, &ferrors.StorageIOError{Op: "open", Cause: err}
	}
	db.SetMaxOpenConns(config.MaxOpenConns)
	db.SetMaxIdleConns(config.MaxIdleConns)

	s := &SQLiteStore{db: db, config: config, logger: logger}
	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("sqlite store initialized",
		"index_path", config.IndexPath,
		"body_dir", config.BodyDir,
		"wal_mode", config.WALMode,
	)
	return s, nil
}

func (s *SQLiteStore) initialize() error {
	if s.config.WALMode {
		if _, err := s.db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
			return &ferrors.StorageIOError{Op: "enable_wal", Cause: err}
		}
	}
	busyMs := s.config.BusyTimeout.Milliseconds()
	if _, err := s.db.Exec(fmt.Sprintf("PRAGMA busy_timeout=%d;", busyMs)); err != nil {
		return &ferrors.StorageIOError{Op: "set_busy_timeout", Cause: err}
	}
	if _, err := s.db.Exec(schema); err != nil {
		return &ferrors.StorageIOError{Op: "create_schema", Cause: err}
	}
	if _, err := s.db.Exec(insertSchemaVersion, schemaVersion); err != nil {
		return &ferrors.StorageIOError{Op: "insert_schema_version", Cause: err}
	}

	var version int
	if err := s.db.QueryRow(getSchemaVersion).Scan(&version); err != nil {
		return &ferrors.StorageIOError{Op: "get_schema_version", Cause: err}
	}
	if version != schemaVersion {
		return &ferrors.ConfigurationError{
			Component: "storage.sqlite",
			Field:     "schema_version",
			Message:   fmt.Sprintf("expected %d, found %d; run a migration or delete the index", schemaVersion, version),
		}
	}
	return nil
}

func (s *SQLiteStore) bodyPath(cacheKey string) string {
	return filepath.Join(s.config.BodyDir, cacheKey+".json")
}

func (s *SQLiteStore) Store(ctx context.Context, result *research.ResearchResult) (string, error) {
	if err := result.Validate(); err != nil {
		return "", &ferrors.InvalidInputError{Field: "result", Message: err.Error()}
	}

	key := research.Fingerprint(&result.Request.Query)
	body, err := json.Marshal(result)
	if err != nil {
		return "", &ferrors.SerializationError{Cause: err}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.config.Capacity > 0 {
		if err := s.enforceCapacityLocked(ctx, key, int64(len(body))); err != nil {
			return "", err
		}
	}

	if err := os.WriteFile(s.bodyPath(key), body, 0o644); err != nil {
		return "", &ferrors.StorageIOError{Op: "write_body", Cause: err}
	}

	now := time.Now()
	tags, _ := json.Marshal([]string{})
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO cache_entries (
			cache_key, research_type, original_query, created_at, last_accessed,
			expires_at, size_bytes, content_hash, quality_score, tags, access_count
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 0)
		ON CONFLICT(cache_key) DO UPDATE SET
			last_accessed = excluded.last_accessed,
			size_bytes = excluded.size_bytes,
			content_hash = excluded.content_hash,
			quality_score = excluded.quality_score,
			expires_at = excluded.expires_at
	`,
		key, string(result.Request.ResearchType), result.Request.Query.Text, now, now,
		now.Add(defaultTTL), len(body), research.ContentHash(body), result.Metadata.QualityScore, string(tags),
	)
	if err != nil {
		return "", &ferrors.StorageIOError{Op: "store", Cause: err}
	}

	return key, nil
}

func (s *SQLiteStore) Lookup(ctx context.Context, fingerprint string) (*research.ResearchResult, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var expiresAt time.Time
	err := s.db.QueryRowContext(ctx,
		`SELECT expires_at FROM cache_entries WHERE cache_key = ?`, fingerprint,
	).Scan(&expiresAt)
	if err == sql.ErrNoRows {
		s.misses++
		return nil, false, nil
	}
	if err != nil {
		return nil, false, &ferrors.StorageIOError{Op: "lookup", Cause: err}
	}
	if time.Now().After(expiresAt) {
		s.misses++
		return nil, false, nil
	}

	body, err := os.ReadFile(s.bodyPath(fingerprint))
	if err != nil {
		return nil, false, &ferrors.StorageIOError{Op: "read_body", Cause: err}
	}

	var result research.ResearchResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, false, &ferrors.SerializationError{Cause: err}
	}

	now := time.Now()
	if _, err := s.db.ExecContext(ctx,
		`UPDATE cache_entries SET last_accessed = ?, access_count = access_count + 1 WHERE cache_key = ?`,
		now, fingerprint,
	); err != nil {
		s.logger.Warn("failed to update last_accessed", "cache_key", fingerprint, "error", err)
	}

	s.hits++
	result.Metadata.CacheHit = true
	return &result, true, nil
}

func (s *SQLiteStore) Search(ctx context.Context, q SearchQuery) (*SearchResult, error) {
	entries, err := s.allEntries(ctx)
	if err != nil {
		return nil, err
	}
	return runSearch(entries, q), nil
}

func (s *SQLiteStore) Invalidate(ctx context.Context, c InvalidateCriteria) (MutationReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.allEntries(ctx)
	if err != nil {
		return MutationReport{}, err
	}

	now := time.Now()
	var report MutationReport
	var toDelete []string
	for _, e := range entries {
		if matchesInvalidate(e, c, now) {
			toDelete = append(toDelete, e.CacheKey)
			report.Count++
			report.BytesFreed += e.SizeBytes
		}
	}

	if c.DryRun {
		return report, nil
	}
	return report, s.deleteKeysLocked(ctx, toDelete)
}

func (s *SQLiteStore) Cleanup(ctx context.Context) (MutationReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.allEntries(ctx)
	if err != nil {
		return MutationReport{}, err
	}

	now := time.Now()
	var report MutationReport
	var toDelete []string

	expired := selectExpired(entries, now)
	for _, e := range expired {
		toDelete = append(toDelete, e.CacheKey)
		report.Count++
		report.BytesFreed += e.SizeBytes
	}

	if s.config.Capacity > 0 {
		remaining := subtractByKey(entries, toDelete)
		size := totalSize(remaining)
		for _, e := range selectForEviction(remaining, size, 0, s.config.Capacity) {
			toDelete = append(toDelete, e.CacheKey)
			report.Count++
			report.BytesFreed += e.SizeBytes
		}
	}

	return report, s.deleteKeysLocked(ctx, toDelete)
}

func (s *SQLiteStore) Stats(ctx context.Context) (Stats, error) {
	entries, err := s.allEntries(ctx)
	if err != nil {
		return Stats{}, err
	}

	s.mu.Lock()
	stats := Stats{
		Hits:           s.hits,
		Misses:         s.misses,
		ByResearchType: make(map[research.ResearchType]int64),
	}
	s.mu.Unlock()

	now := time.Now()
	var ageSum time.Duration
	for _, e := range entries {
		stats.TotalEntries++
		stats.TotalSizeBytes += e.SizeBytes
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

func (s *SQLiteStore) Close() error {
	if err := s.db.Close(); err != nil {
		return &ferrors.StorageIOError{Op: "close", Cause: err}
	}
	return nil
}

// enforceCapacityLocked evicts entries, if necessary, to make room for
// an incoming write of incomingSize bytes. Caller must hold s.mu.
func (s *SQLiteStore) enforceCapacityLocked(ctx context.Context, excludeKey string, incomingSize int64) error {
	entries, err := s.allEntries(ctx)
	if err != nil {
		return err
	}
	entries = subtractByKey(entries, []string{excludeKey})

	for _, e := range selectExpired(entries, time.Now()) {
		if delErr := s.deleteKeysLocked(ctx, []string{e.CacheKey}); delErr != nil {
			return delErr
		}
	}
	entries, err = s.allEntries(ctx)
	if err != nil {
		return err
	}
	entries = subtractByKey(entries, []string{excludeKey})

	size := totalSize(entries)
	evictions := selectForEviction(entries, size, incomingSize, s.config.Capacity)
	if len(evictions) == 0 {
		return nil
	}
	keys := make([]string, 0, len(evictions))
	for _, e := range evictions {
		keys = append(keys, e.CacheKey)
	}
	return s.deleteKeysLocked(ctx, keys)
}

func (s *SQLiteStore) deleteKeysLocked(ctx context.Context, keys []string) error {
	for _, key := range keys {
		if _, err := s.db.ExecContext(ctx, `DELETE FROM cache_entries WHERE cache_key = ?`, key); err != nil {
			return &ferrors.StorageIOError{Op: "delete", Cause: err}
		}
		if err := os.Remove(s.bodyPath(key)); err != nil && !os.IsNotExist(err) {
			s.logger.Warn("failed to remove body file", "cache_key", key, "error", err)
		}
	}
	return nil
}

func (s *SQLiteStore) allEntries(ctx context.Context) ([]research.CacheEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT cache_key, research_type, original_query, created_at, last_accessed,
		       expires_at, size_bytes, content_hash, quality_score, tags, access_count
		FROM cache_entries
	`)
	if err != nil {
		return nil, &ferrors.StorageIOError{Op: "query_entries", Cause: err}
	}
	defer rows.Close()

	var out []research.CacheEntry
	for rows.Next() {
		var e research.CacheEntry
		var researchType, tagsJSON string
		if err := rows.Scan(
			&e.CacheKey, &researchType, &e.OriginalQuery, &e.CreatedAt, &e.LastAccessed,
			&e.ExpiresAt, &e.SizeBytes, &e.ContentHash, &e.QualityScore, &tagsJSON, &e.AccessCount,
		); err != nil {
			return nil, &ferrors.StorageIOError{Op: "scan_entry", Cause: err}
		}
		e.ResearchType = research.ResearchType(researchType)
		if tagsJSON != "" {
			json.Unmarshal([]byte(tagsJSON), &e.Tags)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, &ferrors.StorageIOError{Op: "query_entries", Cause: err}
	}
	return out, nil
}

func subtractByKey(entries []research.CacheEntry, exclude []string) []research.CacheEntry {
	if len(exclude) == 0 {
		return entries
	}
	skip := make(map[string]struct{}, len(exclude))
	for _, k := range exclude {
		skip[k] = struct{}{}
	}
	out := make([]research.CacheEntry, 0, len(entries))
	for _, e := range entries {
		if _, ok := skip[e.CacheKey]; !ok {
			out = append(out, e)
		}
	}
	return out
}

func totalSize(entries []research.CacheEntry) int64 {
	var sum int64
	for _, e := range entries {
		sum += e.SizeBytes
	}
	return sum
}
