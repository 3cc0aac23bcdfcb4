package store_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/basekit/basekit/pkg/store"
)

func newSQLiteStore(t *testing.T) (*store.Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := store.Open(context.Background(), store.Config{
		Driver: store.DriverSQLite,
		Path:   path,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s, path
}

func TestSQLite_RoundTrip(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s, _ := newSQLiteStore(t)

	n := note{ID: uuid.New(), Title: "durable"}
	require.NoError(t, store.Set(ctx, s, n))

	got, err := store.Get[note](ctx, s, n.ID)
	require.NoError(t, err)
	require.Equal(t, n, got)

	_, err = store.Get[note](ctx, s, uuid.New())
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestSQLite_PersistsAcrossReopen(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s, path := newSQLiteStore(t)

	n := note{ID: uuid.New(), Title: "survives restart"}
	require.NoError(t, store.Set(ctx, s, n))
	require.NoError(t, s.Close())

	reopened, err := store.Open(ctx, store.Config{Driver: store.DriverSQLite, Path: path})
	require.NoError(t, err)
	t.Cleanup(func() { _ = reopened.Close() })

	got, err := store.Get[note](ctx, reopened, n.ID)
	require.NoError(t, err)
	require.Equal(t, n, got)
}

func TestSQLite_IterationOrder(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s, _ := newSQLiteStore(t)

	titles := []string{"first", "second", "third"}
	ids := make([]uuid.UUID, len(titles))
	for i, title := range titles {
		ids[i] = uuid.New()
		require.NoError(t, store.Set(ctx, s, note{ID: ids[i], Title: title}))
	}

	// Updating an existing record keeps its slot in insertion order.
	require.NoError(t, store.Set(ctx, s, note{ID: ids[0], Title: "first updated"}))

	list, err := store.Collection[note](ctx, s)
	require.NoError(t, err)
	require.Len(t, list, 3)
	require.Equal(t, "first updated", list[0].Title)
	require.Equal(t, "second", list[1].Title)
	require.Equal(t, "third", list[2].Title)
}

func TestSQLite_ListTables(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s, _ := newSQLiteStore(t)

	parent := uuid.New()
	sub := store.SubCollectionFor[note](parent)
	require.NoError(t, store.Set(ctx, s, note{ID: uuid.New(), Title: "flat"}))
	require.NoError(t, store.SetAt(ctx, s, sub, note{ID: uuid.New(), Title: "nested"}))

	names, err := s.Engine().ListTables(ctx)
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"notes", sub}, names)

	trees, err := store.TreesFor[note](ctx, s)
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"notes", sub}, trees)
}

func TestSQLite_ClearAt(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s, _ := newSQLiteStore(t)

	require.NoError(t, store.Set(ctx, s, note{ID: uuid.New(), Title: "a"}))
	require.NoError(t, s.ClearAt(ctx, "notes"))

	count, err := store.Count[note](ctx, s)
	require.NoError(t, err)
	require.Zero(t, count)
}
