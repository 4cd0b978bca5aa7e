// Package contentcache persists fetched page sources across requests and
// restarts. Entries are keyed by (version, path) and carry a content
// fingerprint that doubles as the HTTP ETag for conditional requests.
package contentcache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/inful/mdfp"
	_ "modernc.org/sqlite"
)

// Entry is one cached page source.
type Entry struct {
	Version     string
	Path        string
	Content     []byte
	Fingerprint string
	FetchedAt   time.Time
}

// Store is a SQLite-backed page cache. Use ":memory:" for an ephemeral
// cache, or a file path for persistence across restarts.
type Store struct {
	db  *sql.DB
	ttl time.Duration
	mu  sync.RWMutex
	now func() time.Time
}

// Open opens or creates the cache database. A zero ttl means entries never
// expire; invalidation then only happens explicitly.
func Open(path string, ttl time.Duration) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open cache database: %w", err)
	}

	store := &Store{db: db, ttl: ttl, now: time.Now}
	if err := store.initialize(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize cache schema: %w", err)
	}
	return store, nil
}

func (s *Store) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS pages (
		version TEXT NOT NULL,
		path TEXT NOT NULL,
		content BLOB NOT NULL,
		fingerprint TEXT NOT NULL,
		fetched_at INTEGER NOT NULL,
		PRIMARY KEY (version, path)
	);
	CREATE INDEX IF NOT EXISTS idx_pages_fetched_at ON pages(fetched_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Get returns the cached source for a page, or ok=false on a miss. Entries
// older than the TTL count as misses; Sweep removes them later.
func (s *Store) Get(ctx context.Context, version, path string) (Entry, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var (
		content     []byte
		fingerprint string
		fetchedUnix int64
	)
	err := s.db.QueryRowContext(ctx,
		"SELECT content, fingerprint, fetched_at FROM pages WHERE version = ? AND path = ?",
		version, path,
	).Scan(&content, &fingerprint, &fetchedUnix)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, fmt.Errorf("query cache entry: %w", err)
	}

	fetchedAt := time.Unix(fetchedUnix, 0)
	if s.expired(fetchedAt) {
		return Entry{}, false, nil
	}
	return Entry{
		Version:     version,
		Path:        path,
		Content:     content,
		Fingerprint: fingerprint,
		FetchedAt:   fetchedAt,
	}, true, nil
}

// Put stores a freshly fetched page source, replacing any previous entry.
// The fingerprint is computed here so every cached page has one.
func (s *Store) Put(ctx context.Context, version, path string, content []byte) (Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry := Entry{
		Version:     version,
		Path:        path,
		Content:     content,
		Fingerprint: Fingerprint(content),
		FetchedAt:   s.now(),
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO pages (version, path, content, fingerprint, fetched_at) VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(version, path) DO UPDATE SET content = excluded.content, fingerprint = excluded.fingerprint, fetched_at = excluded.fetched_at`,
		version, path, content, entry.Fingerprint, entry.FetchedAt.Unix(),
	)
	if err != nil {
		return Entry{}, fmt.Errorf("store cache entry: %w", err)
	}
	return entry, nil
}

// Invalidate drops a single page. Unknown pages are a no-op.
func (s *Store) Invalidate(ctx context.Context, version, path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, "DELETE FROM pages WHERE version = ? AND path = ?", version, path)
	if err != nil {
		return fmt.Errorf("invalidate cache entry: %w", err)
	}
	return nil
}

// InvalidateVersion drops every page of one manual version.
func (s *Store) InvalidateVersion(ctx context.Context, version string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, "DELETE FROM pages WHERE version = ?", version)
	if err != nil {
		return fmt.Errorf("invalidate cache version: %w", err)
	}
	return nil
}

// Purge empties the cache.
func (s *Store) Purge(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.ExecContext(ctx, "DELETE FROM pages"); err != nil {
		return fmt.Errorf("purge cache: %w", err)
	}
	return nil
}

// Sweep deletes entries past the TTL and returns how many were removed.
// With no TTL configured there is nothing to sweep.
func (s *Store) Sweep(ctx context.Context) (int64, error) {
	if s.ttl <= 0 {
		return 0, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-s.ttl).Unix()
	res, err := s.db.ExecContext(ctx, "DELETE FROM pages WHERE fetched_at < ?", cutoff)
	if err != nil {
		return 0, fmt.Errorf("sweep cache: %w", err)
	}
	removed, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("sweep cache rows affected: %w", err)
	}
	return removed, nil
}

// Ping verifies the database answers. Used by daemon health checks.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}

func (s *Store) expired(fetchedAt time.Time) bool {
	return s.ttl > 0 && s.now().Sub(fetchedAt) > s.ttl
}

// Fingerprint computes the canonical content fingerprint for a page source.
// The same fingerprint is exposed as the page's ETag, so clients revalidate
// against content identity rather than fetch time.
func Fingerprint(content []byte) string {
	return mdfp.CalculateFingerprintFromParts("", string(content))
}
