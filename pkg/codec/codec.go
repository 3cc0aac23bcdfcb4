package codec

import (
	"bytes"
	"encoding/json"
	"errors"
)

// Codec serializes and deserializes records for storage.
type Codec interface {
	// Marshal encodes a value into its stored byte form.
	Marshal(v any) ([]byte, error)

	// Unmarshal decodes stored bytes into the value pointed to by dst.
	// Returns ErrDecode if the bytes are malformed or incompatible.
	Unmarshal(data []byte, dst any) error
}

// JSON is the default codec. It encodes records as JSON with unknown fields
// rejected on decode, so schema-incompatible data fails loudly instead of
// partially populating a record.
type JSON struct{}

// Marshal encodes v as JSON.
func (JSON) Marshal(v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, errors.Join(ErrEncode, err)
	}
	return data, nil
}

// Unmarshal decodes JSON bytes into dst.
func (JSON) Unmarshal(data []byte, dst any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return errors.Join(ErrDecode, err)
	}
	return nil
}

var _ Codec = JSON{}
