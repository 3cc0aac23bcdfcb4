package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Postgres is an engine backed by a PostgreSQL database. Each collection maps
// to one table of (id BYTEA PRIMARY KEY, data BYTEA, seq BIGSERIAL) rows; seq
// preserves insertion order for iteration. Not an embedded engine, but it
// shares the same contract and is selected the same way at startup.
type Postgres struct {
	pool *pgxpool.Pool
}

// OpenPostgres connects to the database at url with retry and ping
// verification. Attempt i waits i*retryInterval before retrying, so
// simultaneous restarts don't hammer the server.
func OpenPostgres(ctx context.Context, url string, attempts int, retryInterval time.Duration) (*Postgres, error) {
	cfg, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("parse connection url: %w", err)
	}

	attempts = max(attempts, 1)
	for i := range attempts {
		var pool *pgxpool.Pool
		pool, err = pgxpool.NewWithConfig(ctx, cfg)
		if err == nil {
			if err = pool.Ping(ctx); err == nil {
				return &Postgres{pool: pool}, nil
			}
			pool.Close()
		}
		if i == attempts-1 {
			break
		}

		select {
		case <-ctx.Done():
			return nil, errors.Join(err, ctx.Err())
		case <-time.After(time.Duration(i+1) * retryInterval):
		}
	}

	return nil, fmt.Errorf("connect to postgres: %w", err)
}

// NewPostgres wraps an existing connection pool.
func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

// Table returns the named table, creating it if it does not exist.
func (p *Postgres) Table(ctx context.Context, name string) (Table, error) {
	q := fmt.Sprintf(
		"CREATE TABLE IF NOT EXISTS %s (id BYTEA PRIMARY KEY, data BYTEA NOT NULL, seq BIGSERIAL)",
		quoteIdent(name),
	)
	if _, err := p.pool.Exec(ctx, q); err != nil {
		return nil, fmt.Errorf("create table %q: %w", name, err)
	}
	return &postgresTable{pool: p.pool, name: name}, nil
}

// ListTables returns all table names in the public schema.
func (p *Postgres) ListTables(ctx context.Context) ([]string, error) {
	rows, err := p.pool.Query(ctx,
		"SELECT tablename FROM pg_tables WHERE schemaname = 'public'")
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

// Close releases the connection pool.
func (p *Postgres) Close() error {
	p.pool.Close()
	return nil
}

type postgresTable struct {
	pool *pgxpool.Pool
	name string
}

func (t *postgresTable) Get(ctx context.Context, key []byte) ([]byte, error) {
	q := fmt.Sprintf("SELECT data FROM %s WHERE id = $1", quoteIdent(t.name))

	var data []byte
	err := t.pool.QueryRow(ctx, q, key).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

func (t *postgresTable) Put(ctx context.Context, key, value []byte) error {
	// Upsert keeps the original seq, so overwrites don't reorder iteration.
	q := fmt.Sprintf(
		"INSERT INTO %s (id, data) VALUES ($1, $2) ON CONFLICT (id) DO UPDATE SET data = excluded.data",
		quoteIdent(t.name),
	)
	_, err := t.pool.Exec(ctx, q, key, value)
	return err
}

func (t *postgresTable) Delete(ctx context.Context, key []byte) error {
	q := fmt.Sprintf("DELETE FROM %s WHERE id = $1", quoteIdent(t.name))
	_, err := t.pool.Exec(ctx, q, key)
	return err
}

func (t *postgresTable) Iterate(ctx context.Context, fn func(key, value []byte) error) error {
	q := fmt.Sprintf("SELECT id, data FROM %s ORDER BY seq", quoteIdent(t.name))

	rows, err := t.pool.Query(ctx, q)
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

func (t *postgresTable) Clear(ctx context.Context) error {
	q := fmt.Sprintf("DELETE FROM %s", quoteIdent(t.name))
	_, err := t.pool.Exec(ctx, q)
	return err
}

var _ Engine = (*Postgres)(nil)
