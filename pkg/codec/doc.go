// Package codec converts typed records to and from the opaque byte format
// persisted by the collection store.
//
// The [Codec] interface is backend-agnostic: storage engines move bytes
// around without knowing how they were produced. The default implementation
// is [JSON].
//
// A codec must round-trip exactly: Unmarshal(Marshal(v)) yields a value equal
// to v for every representable value, including optional fields and tagged
// variants. Malformed or schema-incompatible input surfaces as [ErrDecode],
// never as a silently defaulted value.
//
// # Error Handling
//
//   - [ErrEncode] — value could not be serialized
//   - [ErrDecode] — bytes could not be deserialized into the target type
//
// Use [errors.Is] to check:
//
//	if errors.Is(err, codec.ErrDecode) {
//	    // corrupted or incompatible record
//	}
package codec
