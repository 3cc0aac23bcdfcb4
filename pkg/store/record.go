package store

import "github.com/google/uuid"

// Record is the capability interface any storable type implements: it names
// the collection the type lives in and exposes the record's identity.
// Methods must work on the zero value, since generic operations derive the
// collection name before any record exists.
type Record interface {
	// CollectionName returns the stable name of the type's collection.
	CollectionName() string

	// RecordID returns the unique identity addressing the record within
	// its collection.
	RecordID() uuid.UUID
}

// Defaulter is implemented by record types that GetOrCreate can construct
// on a miss. Default is called on the zero value and returns the record to
// persist under the requested identity.
type Defaulter[T any] interface {
	Record
	Default(id uuid.UUID) T
}

// SubCollection returns the name of a parent-scoped sub-collection: the
// convention is "<parent-id>_<base>". Records grouped per parent entity
// (comments under a post, for example) live in one such collection per
// parent.
func SubCollection(parent uuid.UUID, base string) string {
	return parent.String() + "_" + base
}

// SubCollectionFor is the typed form of SubCollection, deriving the base
// name from T's declared collection.
func SubCollectionFor[T Record](parent uuid.UUID) string {
	var zero T
	return SubCollection(parent, zero.CollectionName())
}
