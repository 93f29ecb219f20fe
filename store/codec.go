package store

import (
	"encoding/json"
	"fmt"

	"cosmossdk.io/collections/codec"
)

// JSONValueCodec builds a cosmossdk.io/collections codec.ValueCodec for an
// arbitrary Go struct using encoding/json. The engine has no protoc
// toolchain available to generate proto.Message implementations for its
// state structs (collections' built-in codec.CollValue requires one), so
// state values are serialized with the standard library's JSON codec
// instead — a deliberate, documented exception to "prefer the ecosystem
// library": collections itself is still doing the real work of schema
// management, prefixing and iteration, only leaf (de)serialization falls
// back to stdlib.
func JSONValueCodec[T any](typeName string) codec.ValueCodec[T] {
	return jsonValueCodec[T]{typeName: typeName}
}

type jsonValueCodec[T any] struct {
	typeName string
}

func (c jsonValueCodec[T]) Encode(value T) ([]byte, error) { return json.Marshal(value) }

func (c jsonValueCodec[T]) Decode(b []byte) (T, error) {
	var v T
	err := json.Unmarshal(b, &v)
	return v, err
}

func (c jsonValueCodec[T]) EncodeJSON(value T) ([]byte, error) { return json.Marshal(value) }

func (c jsonValueCodec[T]) DecodeJSON(b []byte) (T, error) { return c.Decode(b) }

func (c jsonValueCodec[T]) Stringify(value T) string {
	bz, err := json.Marshal(value)
	if err != nil {
		return fmt.Sprintf("<%s: %v>", c.typeName, err)
	}
	return string(bz)
}

func (c jsonValueCodec[T]) ValueType() string { return c.typeName }

