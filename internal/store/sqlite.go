package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver.
)

// DefaultKey names the entry holding the save document.
const DefaultKey = "save"

// SQLiteBackend keeps the save document as a single named row in a
// key/value table.
type SQLiteBackend struct {
	db   *sql.DB
	path string
	key  string
	now  func() time.Time
}

// OpenSQLite opens or creates the SQLite database and applies migrations.
func OpenSQLite(path, key string) (*SQLiteBackend, error) {
	if key == "" {
		key = DefaultKey
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	backend := &SQLiteBackend{db: db, path: path, key: key, now: time.Now}
	if err := backend.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return backend, nil
}

func (b *SQLiteBackend) migrate() error {
	stmts := []string{
		`PRAGMA journal_mode = WAL;`,
		`PRAGMA busy_timeout = 5000;`,
		`CREATE TABLE IF NOT EXISTS kv (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);`,
	}
	for _, stmt := range stmts {
		if _, err := b.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// Read implements Backend.
func (b *SQLiteBackend) Read(ctx context.Context) ([]byte, error) {
	var value string
	err := b.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, b.key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNoData
		}
		return nil, fmt.Errorf("failed to read %q: %w", b.key, err)
	}
	return []byte(value), nil
}

// Write implements Backend. The upsert is a single statement, so a failed
// write leaves the previous value in place.
func (b *SQLiteBackend) Write(ctx context.Context, data []byte) error {
	_, err := b.db.ExecContext(ctx,
		`INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		b.key,
		string(data),
		b.now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("failed to write %q: %w", b.key, err)
	}
	return nil
}

// Preserve implements Backend by renaming the row.
func (b *SQLiteBackend) Preserve(ctx context.Context) (string, error) {
	dest := fmt.Sprintf("%s.corrupt-%d", b.key, b.now().UnixMilli())
	res, err := b.db.ExecContext(ctx, `UPDATE kv SET key = ? WHERE key = ?`, dest, b.key)
	if err != nil {
		return "", fmt.Errorf("failed to preserve %q: %w", b.key, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return "", ErrNoData
	}
	return b.path + "#" + dest, nil
}

// Location implements Backend.
func (b *SQLiteBackend) Location() string {
	return b.path + "#" + b.key
}

// Close closes the underlying database.
func (b *SQLiteBackend) Close() error {
	return b.db.Close()
}
