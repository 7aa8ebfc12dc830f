// Package store provides the SQLite-backed asset cache. Generated
// illustrations are expensive; memoizing them by content key across restarts
// means a re-generated track reuses assets instead of paying for them again.
// Behavioral metrics are deliberately not persisted here.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Store wraps the SQLite asset cache database
type Store struct {
	db *sql.DB
}

// Open opens or creates the asset cache database under statePath
func Open(statePath string) (*Store, error) {
	dbPath := filepath.Join(statePath, "assets.db")

	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create state dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable WAL: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// Close closes the underlying database
func (s *Store) Close() error {
	return s.db.Close()
}

// GetAsset returns the cached asset URL for a content key, if present
func (s *Store) GetAsset(key string) (string, bool, error) {
	if key == "" {
		return "", false, fmt.Errorf("get asset: key is empty")
	}
	var url string
	err := s.db.QueryRow(`SELECT url FROM assets WHERE key = ?`, key).Scan(&url)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get asset: %w", err)
	}
	return url, true, nil
}

// PutAsset stores (or refreshes) the asset URL for a content key
func (s *Store) PutAsset(key, url string) error {
	if key == "" {
		return fmt.Errorf("put asset: key is empty")
	}
	if url == "" {
		return fmt.Errorf("put asset: url is empty")
	}
	now := time.Now().UTC().Format(time.RFC3339Nano)
	_, err := s.db.Exec(
		`INSERT INTO assets (key, url, created_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET url = excluded.url`,
		key, url, now,
	)
	if err != nil {
		return fmt.Errorf("put asset: %w", err)
	}
	return nil
}

// Count returns the number of cached assets
func (s *Store) Count() (int, error) {
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM assets`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count assets: %w", err)
	}
	return n, nil
}

// Oldest returns the creation time of the oldest cached asset, or zero time
// when the cache is empty.
func (s *Store) Oldest() (time.Time, error) {
	var raw sql.NullString
	if err := s.db.QueryRow(`SELECT MIN(created_at) FROM assets`).Scan(&raw); err != nil {
		return time.Time{}, fmt.Errorf("oldest asset: %w", err)
	}
	if !raw.Valid || raw.String == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339Nano, raw.String)
	if err != nil {
		return time.Time{}, fmt.Errorf("oldest asset: parse: %w", err)
	}
	return t, nil
}

// Prune removes assets created before the cutoff and returns how many went
func (s *Store) Prune(cutoff time.Time) (int, error) {
	res, err := s.db.Exec(`DELETE FROM assets WHERE created_at < ?`,
		cutoff.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return 0, fmt.Errorf("prune assets: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("prune assets: %w", err)
	}
	return int(n), nil
}
