package store

import "context"

// Engine is the storage backend abstraction: a set of named, byte-keyed
// tables. One implementation exists per supported engine (memory, SQLite,
// Postgres, Redis), selected at startup via Config.
//
// Engines must be safe for concurrent use from multiple goroutines within a
// single process. Every Put and Delete is committed before the call returns;
// there is no write-behind buffering above the engine's own fsync policy.
type Engine interface {
	// Table returns a handle to the named table, creating it if absent.
	Table(ctx context.Context, name string) (Table, error)

	// ListTables returns the names of all existing tables.
	ListTables(ctx context.Context) ([]string, error)

	// Close releases resources held by the engine.
	Close() error
}

// Table is one physical collection: an unordered bag of (key, value) byte
// pairs addressed by key.
type Table interface {
	// Get returns the value stored under key, or ErrNotFound.
	Get(ctx context.Context, key []byte) ([]byte, error)

	// Put stores value under key, overwriting any prior value.
	Put(ctx context.Context, key, value []byte) error

	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key []byte) error

	// Iterate calls fn for every (key, value) pair in the table's native
	// iteration order. Returning an error from fn stops iteration and
	// propagates the error.
	Iterate(ctx context.Context, fn func(key, value []byte) error) error

	// Clear removes every entry from the table.
	Clear(ctx context.Context) error
}
