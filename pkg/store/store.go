package store

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/basekit/basekit/pkg/codec"
)

// Store binds a storage Engine to a Codec and exposes typed collection
// operations through the package-level generic functions.
//
// A single Store handle is shared read-and-write across all callers. Every
// mutation is a full-record overwrite committed independently; last writer
// wins, and no multi-record transaction is provided.
type Store struct {
	engine Engine
	codec  codec.Codec
	logger *slog.Logger
	sf     singleflight.Group
}

// Option configures a Store.
type Option func(*Store)

// WithCodec overrides the default JSON codec.
func WithCodec(c codec.Codec) Option {
	return func(s *Store) {
		if c != nil {
			s.codec = c
		}
	}
}

// WithLogger sets the logger for store events.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// New creates a Store on top of an engine.
func New(engine Engine, opts ...Option) *Store {
	s := &Store{
		engine: engine,
		codec:  codec.JSON{},
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Engine returns the underlying storage engine.
func (s *Store) Engine() Engine {
	return s.engine
}

// Close closes the underlying engine.
func (s *Store) Close() error {
	return s.engine.Close()
}

// ClearAt empties the named collection. Used for full collection
// regeneration, e.g. content re-import.
func (s *Store) ClearAt(ctx context.Context, collection string) error {
	t, err := s.engine.Table(ctx, collection)
	if err != nil {
		return err
	}
	return t.Clear(ctx)
}

// Collections returns the names of all physical collections whose name
// contains base. This is how parent-scoped sub-collections sharing a naming
// convention are discovered without knowing every parent id.
func (s *Store) Collections(ctx context.Context, base string) ([]string, error) {
	names, err := s.engine.ListTables(ctx)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, name := range names {
		if strings.Contains(name, base) {
			out = append(out, name)
		}
	}
	return out, nil
}

// Get retrieves the record with the given identity from T's collection.
// The collection is scanned linearly; this O(n) cost model is deliberate
// and collections are expected to stay small.
func Get[T Record](ctx context.Context, s *Store, id uuid.UUID) (T, error) {
	var zero T
	return GetAt[T](ctx, s, zero.CollectionName(), id)
}

// GetAt is Get against an explicitly named (typically parent-scoped)
// collection.
func GetAt[T any](ctx context.Context, s *Store, collection string, id uuid.UUID) (T, error) {
	var zero T

	t, err := s.engine.Table(ctx, collection)
	if err != nil {
		return zero, err
	}

	var (
		found bool
		value T
	)
	err = t.Iterate(ctx, func(key, data []byte) error {
		if !bytes.Equal(key, id[:]) {
			return nil
		}
		if err := s.codec.Unmarshal(data, &value); err != nil {
			return err
		}
		found = true
		return errStopIteration
	})
	if err != nil && err != errStopIteration {
		return zero, err
	}
	if !found {
		return zero, &NotFoundError{Collection: collection, ID: id}
	}
	return value, nil
}

// Collection decodes every record in T's collection. Order is the engine's
// native iteration order and is not stable across backends.
func Collection[T Record](ctx context.Context, s *Store) ([]T, error) {
	var zero T
	return CollectionAt[T](ctx, s, zero.CollectionName())
}

// CollectionAt decodes every record in the named collection.
func CollectionAt[T any](ctx context.Context, s *Store, collection string) ([]T, error) {
	t, err := s.engine.Table(ctx, collection)
	if err != nil {
		return nil, err
	}

	var out []T
	err = t.Iterate(ctx, func(_, data []byte) error {
		var v T
		if err := s.codec.Unmarshal(data, &v); err != nil {
			return err
		}
		out = append(out, v)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Set upserts the record into T's collection under its identity. An existing
// record with the same identity is overwritten.
func Set[T Record](ctx context.Context, s *Store, v T) error {
	return SetAt(ctx, s, v.CollectionName(), v)
}

// SetAt upserts the record into an explicitly named collection.
func SetAt[T Record](ctx context.Context, s *Store, collection string, v T) error {
	return SetRaw(ctx, s, collection, v, v.RecordID())
}

// SetRaw upserts an arbitrary value under an arbitrary identity. Used when
// the identity is supplanted, e.g. indexing a record by a secondary id.
func SetRaw(ctx context.Context, s *Store, collection string, v any, id uuid.UUID) error {
	t, err := s.engine.Table(ctx, collection)
	if err != nil {
		return err
	}
	data, err := s.codec.Marshal(v)
	if err != nil {
		return err
	}
	return t.Put(ctx, id[:], data)
}

// Remove deletes the record from T's collection by identity. Removing an
// absent record is not an error.
func Remove[T Record](ctx context.Context, s *Store, v T) error {
	return RemoveAt(ctx, s, v.CollectionName(), v.RecordID())
}

// RemoveAt deletes by identity from an explicitly named collection.
func RemoveAt(ctx context.Context, s *Store, collection string, id uuid.UUID) error {
	t, err := s.engine.Table(ctx, collection)
	if err != nil {
		return err
	}
	return t.Delete(ctx, id[:])
}

// GetOrCreate returns the existing record for id, or constructs T's default,
// persists it and returns it. Concurrent misses for the same id are
// collapsed with singleflight so the default is constructed once; the
// engine-level write still follows last-write-wins.
func GetOrCreate[T Defaulter[T]](ctx context.Context, s *Store, id uuid.UUID) (T, error) {
	var zero T

	if v, err := Get[T](ctx, s, id); err == nil {
		return v, nil
	}

	key := zero.CollectionName() + "/" + id.String()
	v, err, _ := s.sf.Do(key, func() (any, error) {
		// Re-check under the flight: another caller may have created it.
		if v, err := Get[T](ctx, s, id); err == nil {
			return v, nil
		}
		def := zero.Default(id)
		if err := Set(ctx, s, def); err != nil {
			return nil, err
		}
		return def, nil
	})
	if err != nil {
		return zero, err
	}
	return v.(T), nil
}

// Count reports the number of records in T's collection.
func Count[T Record](ctx context.Context, s *Store) (int, error) {
	var zero T

	t, err := s.engine.Table(ctx, zero.CollectionName())
	if err != nil {
		return 0, err
	}
	n := 0
	err = t.Iterate(ctx, func(_, _ []byte) error {
		n++
		return nil
	})
	return n, err
}

// TreesFor lists all physical collections whose name contains T's base
// collection name, including every parent-scoped sub-collection.
func TreesFor[T Record](ctx context.Context, s *Store) ([]string, error) {
	var zero T
	return s.Collections(ctx, zero.CollectionName())
}

// errStopIteration terminates an engine iteration early once the target
// record has been found. Never escapes this package.
var errStopIteration = fmt.Errorf("stop iteration")
