package store_test

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/basekit/basekit/pkg/store"
)

type note struct {
	ID    uuid.UUID `json:"id"`
	Title string    `json:"title"`
}

func (note) CollectionName() string { return "notes" }
func (n note) RecordID() uuid.UUID  { return n.ID }

type counter struct {
	ID    uuid.UUID `json:"id"`
	Value int       `json:"value"`
}

func (counter) CollectionName() string { return "counters" }
func (c counter) RecordID() uuid.UUID { return c.ID }

func (counter) Default(id uuid.UUID) counter {
	return counter{ID: id, Value: 10}
}

func newMemoryStore(t *testing.T) *store.Store {
	t.Helper()
	s := store.New(store.NewMemory())
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSetGet(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newMemoryStore(t)

	n := note{ID: uuid.New(), Title: "first"}
	require.NoError(t, store.Set(ctx, s, n))

	got, err := store.Get[note](ctx, s, n.ID)
	require.NoError(t, err)
	require.Equal(t, n, got)
}

func TestGet_NotFound(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newMemoryStore(t)

	id := uuid.New()
	_, err := store.Get[note](ctx, s, id)
	require.ErrorIs(t, err, store.ErrNotFound)

	var nf *store.NotFoundError
	require.ErrorAs(t, err, &nf)
	require.Equal(t, "notes", nf.Collection)
	require.Equal(t, id, nf.ID)
}

func TestSet_Overwrite(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newMemoryStore(t)

	n := note{ID: uuid.New(), Title: "v1"}
	require.NoError(t, store.Set(ctx, s, n))
	n.Title = "v2"
	require.NoError(t, store.Set(ctx, s, n))

	got, err := store.Get[note](ctx, s, n.ID)
	require.NoError(t, err)
	require.Equal(t, "v2", got.Title)

	count, err := store.Count[note](ctx, s)
	require.NoError(t, err)
	require.Equal(t, 1, count)
}

func TestRemove_Idempotent(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newMemoryStore(t)

	n := note{ID: uuid.New(), Title: "gone"}
	require.NoError(t, store.Set(ctx, s, n))
	require.NoError(t, store.Remove(ctx, s, n))
	require.NoError(t, store.Remove(ctx, s, n))

	_, err := store.Get[note](ctx, s, n.ID)
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestCollection(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newMemoryStore(t)

	list, err := store.Collection[note](ctx, s)
	require.NoError(t, err)
	require.Empty(t, list)

	for _, title := range []string{"a", "b", "c"} {
		require.NoError(t, store.Set(ctx, s, note{ID: uuid.New(), Title: title}))
	}

	list, err = store.Collection[note](ctx, s)
	require.NoError(t, err)
	require.Len(t, list, 3)
}

func TestSubCollections(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newMemoryStore(t)

	parentA := uuid.New()
	parentB := uuid.New()
	nameA := store.SubCollectionFor[note](parentA)
	nameB := store.SubCollectionFor[note](parentB)
	require.Equal(t, parentA.String()+"_notes", nameA)

	require.NoError(t, store.SetAt(ctx, s, nameA, note{ID: uuid.New(), Title: "for A"}))
	require.NoError(t, store.SetAt(ctx, s, nameA, note{ID: uuid.New(), Title: "also A"}))
	require.NoError(t, store.SetAt(ctx, s, nameB, note{ID: uuid.New(), Title: "for B"}))

	listA, err := store.CollectionAt[note](ctx, s, nameA)
	require.NoError(t, err)
	require.Len(t, listA, 2)

	listB, err := store.CollectionAt[note](ctx, s, nameB)
	require.NoError(t, err)
	require.Len(t, listB, 1)

	// The flat collection is untouched by sub-collection writes.
	flat, err := store.Collection[note](ctx, s)
	require.NoError(t, err)
	require.Empty(t, flat)

	trees, err := store.TreesFor[note](ctx, s)
	require.NoError(t, err)
	require.ElementsMatch(t, []string{nameA, nameB}, trees)
}

func TestClearAt(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newMemoryStore(t)

	require.NoError(t, store.Set(ctx, s, note{ID: uuid.New(), Title: "a"}))
	require.NoError(t, store.Set(ctx, s, note{ID: uuid.New(), Title: "b"}))
	require.NoError(t, s.ClearAt(ctx, "notes"))

	count, err := store.Count[note](ctx, s)
	require.NoError(t, err)
	require.Zero(t, count)
}

func TestSetRaw_SecondaryIdentity(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newMemoryStore(t)

	n := note{ID: uuid.New(), Title: "indexed"}
	altID := uuid.New()
	require.NoError(t, store.SetRaw(ctx, s, "notes_by_alt", n, altID))

	got, err := store.GetAt[note](ctx, s, "notes_by_alt", altID)
	require.NoError(t, err)
	require.Equal(t, n, got)
}

func TestGetOrCreate(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newMemoryStore(t)

	id := uuid.New()

	c, err := store.GetOrCreate[counter](ctx, s, id)
	require.NoError(t, err)
	require.Equal(t, counter{ID: id, Value: 10}, c)

	// Existing record wins over the default.
	c.Value = 42
	require.NoError(t, store.Set(ctx, s, c))
	again, err := store.GetOrCreate[counter](ctx, s, id)
	require.NoError(t, err)
	require.Equal(t, 42, again.Value)
}

func TestGetOrCreate_Concurrent(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newMemoryStore(t)

	id := uuid.New()

	var wg sync.WaitGroup
	results := make([]counter, 16)
	errs := make([]error, len(results))
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i], errs[i] = store.GetOrCreate[counter](ctx, s, id)
		}()
	}
	wg.Wait()

	for i, c := range results {
		require.NoError(t, errs[i])
		require.Equal(t, counter{ID: id, Value: 10}, c)
	}

	count, err := store.Count[counter](ctx, s)
	require.NoError(t, err)
	require.Equal(t, 1, count)
}

func TestStore_AfterClose(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	s := store.New(store.NewMemory())
	require.NoError(t, s.Close())

	_, err := store.Get[note](ctx, s, uuid.New())
	require.ErrorIs(t, err, store.ErrClosed)
}

func TestOpen_UnknownDriver(t *testing.T) {
	t.Parallel()

	_, err := store.Open(context.Background(), store.Config{Driver: "etcd"})
	require.ErrorIs(t, err, store.ErrUnknownDriver)
}
