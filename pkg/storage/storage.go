package storage

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a state key has never been written.
var ErrNotFound = errors.New("state key not found")

type DB struct {
	sql *sql.DB
}

func Open(path string) (*DB, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	dsn := "file:" + path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		return nil, err
	}
	// Ensure schema exists for convenience.
	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS local_state (
  key        TEXT PRIMARY KEY,
  value      TEXT NOT NULL,
  updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
    `); err != nil {
		return nil, err
	}
	return &DB{sql: db}, nil
}

func (d *DB) Close() error {
	if d == nil || d.sql == nil {
		return nil
	}
	return d.sql.Close()
}

func (d *DB) get(ctx context.Context, key string) (string, error) {
	var v string
	err := d.sql.QueryRowContext(ctx, "SELECT value FROM local_state WHERE key = ?", key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	return v, err
}

func (d *DB) set(ctx context.Context, key, value string) error {
	_, err := d.sql.ExecContext(ctx, `INSERT INTO local_state(key, value, updated_at) VALUES(?, ?, CURRENT_TIMESTAMP)
ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`, key, value)
	return err
}

func (d *DB) delete(ctx context.Context, key string) error {
	_, err := d.sql.ExecContext(ctx, "DELETE FROM local_state WHERE key = ?", key)
	return err
}

// UserID returns the stored user identifier, or "" when nobody is logged in.
func (d *DB) UserID(ctx context.Context) (string, error) {
	v, err := d.get(ctx, keyUserID)
	if errors.Is(err, ErrNotFound) {
		return "", nil
	}
	return v, err
}

// SetUserID stores the user identifier.
func (d *DB) SetUserID(ctx context.Context, userID string) error {
	return d.set(ctx, keyUserID, userID)
}

// ClearUserID forgets the user identifier.
func (d *DB) ClearUserID(ctx context.Context) error {
	return d.delete(ctx, keyUserID)
}

// SavedCourses returns the raw cached JSON array of saved course objects,
// or "" when nothing was cached yet.
func (d *DB) SavedCourses(ctx context.Context) (string, error) {
	v, err := d.get(ctx, keySavedCourses)
	if errors.Is(err, ErrNotFound) {
		return "", nil
	}
	return v, err
}

// SetSavedCourses replaces the cached saved course array.
func (d *DB) SetSavedCourses(ctx context.Context, raw string) error {
	return d.set(ctx, keySavedCourses, raw)
}

// ClearSavedCourses drops the cached saved course array.
func (d *DB) ClearSavedCourses(ctx context.Context) error {
	return d.delete(ctx, keySavedCourses)
}

// Entries lists every stored key with its value and last update, for display.
func (d *DB) Entries(ctx context.Context) ([]Entry, error) {
	rows, err := d.sql.QueryContext(ctx, "SELECT key, value, updated_at FROM local_state ORDER BY key")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		var updatedAt string
		if err := rows.Scan(&e.Key, &e.Value, &updatedAt); err != nil {
			return nil, err
		}
		e.UpdatedAt = parseTimestamp(updatedAt)
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
