package codec

import "errors"

// Sentinel errors for codec operations.
var (
	// ErrEncode is returned when value serialization fails.
	ErrEncode = errors.New("codec: failed to encode value")

	// ErrDecode is returned when bytes cannot be deserialized into the
	// target type. This indicates a corrupted or schema-incompatible record.
	ErrDecode = errors.New("codec: failed to decode value")
)
