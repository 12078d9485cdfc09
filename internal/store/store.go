// Package store persists extracted palettes in SQLite so repeated runs
// over the same library skip extraction.
package store

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/AnyUserName/coverhue/internal/palette"

	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Entry is one cached palette.
type Entry struct {
	Key       string
	Width     int
	Height    int
	Bins      palette.Histogram
	UpdatedAt time.Time
}

// Store wraps the palette database.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the database at path and applies migrations.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	database, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, pragma := range pragmas {
		if _, err := database.Exec(pragma); err != nil {
			database.Close()
			return nil, fmt.Errorf("apply sqlite pragma %q: %w", pragma, err)
		}
	}

	if err := migrate(database); err != nil {
		database.Close()
		return nil, err
	}
	return &Store{db: database}, nil
}

func migrate(database *sql.DB) error {
	if _, err := database.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			name TEXT PRIMARY KEY,
			applied_at TEXT NOT NULL
		);
	`); err != nil {
		return fmt.Errorf("create schema_migrations: %w", err)
	}

	entries, err := fs.Glob(migrationsFS, "migrations/*.sql")
	if err != nil {
		return fmt.Errorf("list migrations: %w", err)
	}
	sort.Strings(entries)

	for _, name := range entries {
		var count int
		if err := database.QueryRow("SELECT COUNT(1) FROM schema_migrations WHERE name = ?", name).Scan(&count); err != nil {
			return fmt.Errorf("check migration %s: %w", name, err)
		}
		if count > 0 {
			continue
		}

		body, err := migrationsFS.ReadFile(name)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", name, err)
		}
		tx, err := database.Begin()
		if err != nil {
			return fmt.Errorf("start migration tx %s: %w", name, err)
		}
		if _, err := tx.Exec(string(body)); err != nil {
			tx.Rollback()
			return fmt.Errorf("execute migration %s: %w", name, err)
		}
		if _, err := tx.Exec(
			"INSERT INTO schema_migrations(name, applied_at) VALUES (?, ?)",
			name, time.Now().UTC().Format(time.RFC3339),
		); err != nil {
			tx.Rollback()
			return fmt.Errorf("record migration %s: %w", name, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %s: %w", name, err)
		}
	}
	return nil
}

// Get returns the entry for key. ok is false when there is none.
func (s *Store) Get(ctx context.Context, key string) (Entry, bool, error) {
	var (
		e       Entry
		bins    string
		updated string
	)
	err := s.db.QueryRowContext(ctx,
		"SELECT key, width, height, bins, updated_at FROM palettes WHERE key = ?", key,
	).Scan(&e.Key, &e.Width, &e.Height, &bins, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, fmt.Errorf("query palette %s: %w", key, err)
	}
	if err := json.Unmarshal([]byte(bins), &e.Bins); err != nil {
		return Entry{}, false, fmt.Errorf("decode palette %s: %w", key, err)
	}
	e.Bins = palette.NewHistogram(e.Bins)
	e.UpdatedAt, _ = time.Parse(time.RFC3339, updated)
	return e, true, nil
}

// Put inserts or replaces an entry.
func (s *Store) Put(ctx context.Context, e Entry) error {
	bins, err := json.Marshal(e.Bins)
	if err != nil {
		return fmt.Errorf("encode palette %s: %w", e.Key, err)
	}
	if e.UpdatedAt.IsZero() {
		e.UpdatedAt = time.Now()
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO palettes(key, width, height, bins, updated_at) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			width = excluded.width,
			height = excluded.height,
			bins = excluded.bins,
			updated_at = excluded.updated_at`,
		e.Key, e.Width, e.Height, string(bins), e.UpdatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("store palette %s: %w", e.Key, err)
	}
	return nil
}

// Count returns the number of cached palettes.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(1) FROM palettes").Scan(&n); err != nil {
		return 0, fmt.Errorf("count palettes: %w", err)
	}
	return n, nil
}

// Prune removes entries not updated since before.
func (s *Store) Prune(ctx context.Context, before time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM palettes WHERE updated_at < ?", before.UTC().Format(time.RFC3339))
	if err != nil {
		return 0, fmt.Errorf("prune palettes: %w", err)
	}
	return res.RowsAffected()
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Cache adapts a Store to the loader's palette cache. Errors are logged
// and treated as misses.
type Cache struct {
	store  *Store
	logger *slog.Logger
}

// NewCache wraps s. A nil logger discards.
func NewCache(s *Store, logger *slog.Logger) *Cache {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Cache{store: s, logger: logger}
}

func (c *Cache) LookupPalette(key string) (palette.Histogram, bool) {
	e, ok, err := c.store.Get(context.Background(), key)
	if err != nil {
		c.logger.Warn("palette cache lookup failed", "key", key, "err", err)
		return nil, false
	}
	return e.Bins, ok
}

func (c *Cache) StorePalette(key string, width, height int, h palette.Histogram) {
	err := c.store.Put(context.Background(), Entry{Key: key, Width: width, Height: height, Bins: h})
	if err != nil {
		c.logger.Warn("palette cache store failed", "key", key, "err", err)
	}
}
