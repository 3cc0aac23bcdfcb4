package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"
)

// SQLite is an engine backed by an embedded SQLite database file. Each
// collection maps to one table of (id BLOB PRIMARY KEY, data BLOB) rows.
// Tables are created lazily on first open; iteration follows rowid order,
// which is insertion order.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) a SQLite database at path. Parent
// directories are created. WAL mode is enabled for concurrent readers;
// writes are committed synchronously before Put/Delete return.
func OpenSQLite(path string) (*SQLite, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("apply %s: %w", pragma, err)
		}
	}

	return &SQLite{db: db}, nil
}

// Table returns the named table, creating it if it does not exist.
func (s *SQLite) Table(ctx context.Context, name string) (Table, error) {
	q := fmt.Sprintf(
		"CREATE TABLE IF NOT EXISTS %s (id BLOB PRIMARY KEY, data BLOB NOT NULL)",
		quoteIdent(name),
	)
	if _, err := s.db.ExecContext(ctx, q); err != nil {
		return nil, fmt.Errorf("create table %q: %w", name, err)
	}
	return &sqliteTable{db: s.db, name: name}, nil
}

// ListTables returns the names of all collection tables in the database.
func (s *SQLite) ListTables(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%'")
	if err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// Close closes the underlying database.
func (s *SQLite) Close() error {
	return s.db.Close()
}

type sqliteTable struct {
	db   *sql.DB
	name string
}

func (t *sqliteTable) Get(ctx context.Context, key []byte) ([]byte, error) {
	q := fmt.Sprintf("SELECT data FROM %s WHERE id = ?", quoteIdent(t.name))

	var data []byte
	err := t.db.QueryRowContext(ctx, q, key).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

func (t *sqliteTable) Put(ctx context.Context, key, value []byte) error {
	q := fmt.Sprintf(
		"INSERT INTO %s (id, data) VALUES (?, ?) ON CONFLICT(id) DO UPDATE SET data = excluded.data",
		quoteIdent(t.name),
	)
	_, err := t.db.ExecContext(ctx, q, key, value)
	return err
}

func (t *sqliteTable) Delete(ctx context.Context, key []byte) error {
	q := fmt.Sprintf("DELETE FROM %s WHERE id = ?", quoteIdent(t.name))
	_, err := t.db.ExecContext(ctx, q, key)
	return err
}

func (t *sqliteTable) Iterate(ctx context.Context, fn func(key, value []byte) error) error {
	q := fmt.Sprintf("SELECT id, data FROM %s ORDER BY rowid", quoteIdent(t.name))

	rows, err := t.db.QueryContext(ctx, q)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var key, value []byte
		if err := rows.Scan(&key, &value); err != nil {
			return err
		}
		if err := fn(key, value); err != nil {
			return err
		}
	}
	return rows.Err()
}

func (t *sqliteTable) Clear(ctx context.Context) error {
	q := fmt.Sprintf("DELETE FROM %s", quoteIdent(t.name))
	_, err := t.db.ExecContext(ctx, q)
	return err
}

// quoteIdent quotes a collection name as a SQL identifier. Collection names
// include parent UUIDs, so they must be treated as arbitrary strings.
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

var _ Engine = (*SQLite)(nil)
