// Package store implements the SQLite response cache backing the
// registry client's read-through fetches. One table, key to payload,
// with a freshness window enforced on read.
//
// The cache degrades rather than fails: a broken database turns reads
// into misses and writes into logged no-ops, so upstream fetches keep
// working without it. A nil *Cache (no path configured) behaves the
// same way.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"fintel/internal/logging"
)

// DefaultTTL is the freshness window applied when the config leaves it
// unset.
const DefaultTTL = 15 * time.Minute

// Cache is the read-through response cache.
type Cache struct {
	db     *sql.DB
	dbPath string
	ttl    time.Duration
}

// Open initializes the cache database at path, creating the schema when
// missing. An empty path disables caching: Open returns a nil cache
// whose methods are all safe no-ops.
func Open(path string, ttl time.Duration) (*Cache, error) {
	if path == "" {
		logging.Cache("No cache path configured, response caching disabled")
		return nil, nil
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	timer := logging.StartTimer(logging.CategoryCache, "Open")
	defer timer.Stop()

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create cache directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open cache database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		logging.CacheDebug("Failed to set sqlite busy_timeout: %v", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		logging.CacheDebug("Failed to set sqlite journal_mode=WAL: %v", err)
	}

	if err := migrate(db); err != nil {
		db.Close()
		return nil, err
	}

	logging.Cache("Response cache ready at %s (ttl %s)", path, ttl)
	return &Cache{db: db, dbPath: path, ttl: ttl}, nil
}

// migrate creates the schema. Safe to run on every open.
func migrate(db *sql.DB) error {
	const schema = `
	CREATE TABLE IF NOT EXISTS api_cache (
		key        TEXT PRIMARY KEY,
		payload    BLOB NOT NULL,
		fetched_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_api_cache_fetched ON api_cache(fetched_at);
	`
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("initialize cache schema: %w", err)
	}
	return nil
}

// Get returns the cached payload for key. Absent rows, rows older than
// the freshness window, and database faults all read as misses.
func (c *Cache) Get(ctx context.Context, key string) ([]byte, bool) {
	if c == nil {
		return nil, false
	}

	var payload []byte
	var fetchedAt int64
	err := c.db.QueryRowContext(ctx,
		"SELECT payload, fetched_at FROM api_cache WHERE key = ?", key,
	).Scan(&payload, &fetchedAt)
	switch {
	case err == sql.ErrNoRows:
		logging.CacheDebug("miss %s (absent)", key)
		logging.Audit().CacheDecision(key, false)
		return nil, false
	case err != nil:
		logging.CacheWarn("read failed for %s: %v", key, err)
		logging.Audit().CacheDecision(key, false)
		return nil, false
	}

	age := time.Since(time.Unix(fetchedAt, 0))
	if age > c.ttl {
		logging.CacheDebug("miss %s (stale by %s)", key, age-c.ttl)
		logging.Audit().CacheDecision(key, false)
		return nil, false
	}

	logging.CacheDebug("hit %s (age %s)", key, age)
	logging.Audit().CacheDecision(key, true)
	return payload, true
}

// Put stores the payload under key, replacing any previous row. Write
// faults are logged and swallowed.
func (c *Cache) Put(ctx context.Context, key string, payload []byte) {
	if c == nil {
		return
	}
	_, err := c.db.ExecContext(ctx,
		"INSERT OR REPLACE INTO api_cache(key, payload, fetched_at) VALUES(?, ?, ?)",
		key, payload, time.Now().Unix(),
	)
	if err != nil {
		logging.CacheWarn("write failed for %s: %v", key, err)
		return
	}
	logging.CacheDebug("stored %s (%d bytes)", key, len(payload))
}

// Purge deletes rows outside the freshness window and returns how many
// were removed.
func (c *Cache) Purge(ctx context.Context) (int64, error) {
	if c == nil {
		return 0, nil
	}
	cutoff := time.Now().Add(-c.ttl).Unix()
	res, err := c.db.ExecContext(ctx, "DELETE FROM api_cache WHERE fetched_at < ?", cutoff)
	if err != nil {
		return 0, fmt.Errorf("purge cache: %w", err)
	}
	removed, _ := res.RowsAffected()
	if removed > 0 {
		logging.Cache("purged %d expired entries", removed)
	}
	return removed, nil
}

// Close releases the database handle.
func (c *Cache) Close() error {
	if c == nil {
		return nil
	}
	logging.CacheDebug("closing cache at %s", c.dbPath)
	return c.db.Close()
}
