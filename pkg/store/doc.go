// Package store provides an embedded, pluggable, typed collection store.
//
// Records live in named collections: one physical table per collection,
// holding (identity, encoded-bytes) pairs. Any type becomes storable by
// implementing the small [Record] interface — a stable collection name and a
// UUID identity. Encoding is delegated to a [codec.Codec] (JSON by default),
// and physical storage to an [Engine] selected at startup via [Config]:
//
//   - memory — in-process maps, insertion-order iteration
//   - sqlite — embedded database file (modernc.org/sqlite), WAL mode
//   - postgres — pgx connection pool, one table per collection
//   - redis — one hash per collection
//
// # Typed operations
//
// Operations are package-level generic functions over a shared *Store
// handle:
//
//	s, err := store.Open(ctx, store.Config{Driver: store.DriverSQLite, Path: "app.db"})
//
//	u, err := store.Get[user.User](ctx, s, id)      // scan by identity
//	all, err := store.Collection[user.User](ctx, s) // decode whole collection
//	err = store.Set(ctx, s, u)                      // upsert by identity
//	err = store.Remove(ctx, s, u)                   // idempotent delete
//
// Lookups scan the collection linearly; this O(n) cost model is deliberate.
// Upserts are full-record overwrites with last-write-wins resolution, and
// each write commits independently — there are no multi-record transactions.
//
// # Sub-collections
//
// Child records can be grouped per parent entity in collections named
// "<parent-id>_<base>":
//
//	name := store.SubCollectionFor[user.Comment](postID)
//	err = store.SetAt(ctx, s, name, comment)
//	list, err := store.CollectionAt[user.Comment](ctx, s, name)
//	names, err := store.TreesFor[user.Comment](ctx, s) // all sub-collections
//
// # Error Handling
//
//   - [ErrNotFound] — record absent; expected and recoverable. The concrete
//     [NotFoundError] carries the collection and identity.
//   - [codec.ErrDecode] — record bytes incompatible; fatal to that record only.
//   - engine errors — surfaced as-is, never retried internally.
package store
