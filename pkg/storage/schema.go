package storage

// schemaVersion is the current SQLiteStore schema version, checked on
// open so a binary never runs against an index it doesn't understand.
const schemaVersion = 1

// schema creates the cache index. Artifact bodies themselves live as
// individual files under the store's base directory, named by cache
// key; this table is the queryable metadata index over them.
const schema = `
CREATE TABLE IF NOT EXISTS cache_entries (
	cache_key      TEXT PRIMARY KEY,
	research_type  TEXT NOT NULL,
	original_query TEXT NOT NULL,
	created_at     TIMESTAMP NOT NULL,
	last_accessed  TIMESTAMP NOT NULL,
	expires_at     TIMESTAMP NOT NULL,
	size_bytes     INTEGER NOT NULL,
	content_hash   TEXT NOT NULL,
	quality_score  REAL NOT NULL,
	tags           TEXT,
	access_count   INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_cache_entries_research_type ON cache_entries(research_type);
CREATE INDEX IF NOT EXISTS idx_cache_entries_expires_at ON cache_entries(expires_at);
CREATE INDEX IF NOT EXISTS idx_cache_entries_created_at ON cache_entries(created_at);

CREATE TABLE IF NOT EXISTS schema_meta (
	version INTEGER NOT NULL
);
`

const insertSchemaVersion = `INSERT INTO schema_meta (version) SELECT ? WHERE NOT EXISTS (SELECT 1 FROM schema_meta)`
const getSchemaVersion = `SELECT version FROM schema_meta LIMIT 1`
