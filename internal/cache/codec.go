package cache

import (
	"encoding/json"
	"fmt"

	"github.com/fxamacker/cbor/v2"
	"github.com/vmihailenco/msgpack/v5"
)

// Codec encodes and decodes values V for storage.
type Codec[V any] interface {
	Encode(V) ([]byte, error)
	Decode([]byte) (V, error)
}

type JSONCodec[V any] struct{}

func (JSONCodec[V]) Encode(v V) ([]byte, error) { return json.Marshal(v) }
func (JSONCodec[V]) Decode(b []byte) (V, error) {
	var v V
	err := json.Unmarshal(b, &v)
	return v, err
}

type MsgpackCodec[V any] struct{}

func (MsgpackCodec[V]) Encode(v V) ([]byte, error) { return msgpack.Marshal(v) }
func (MsgpackCodec[V]) Decode(b []byte) (V, error) {
	var v V
	err := msgpack.Unmarshal(b, &v)
	return v, err
}

// CBORCodec keeps timestamps as RFC 3339 strings with nanoseconds so they
// survive a round trip unchanged.
type CBORCodec[V any] struct {
	enc cbor.EncMode
	dec cbor.DecMode
}

func NewCBORCodec[V any]() (CBORCodec[V], error) {
	enc, err := cbor.EncOptions{Time: cbor.TimeRFC3339Nano}.EncMode()
	if err != nil {
		return CBORCodec[V]{}, err
	}
	dec, err := cbor.DecOptions{}.DecMode()
	if err != nil {
		return CBORCodec[V]{}, err
	}
	return CBORCodec[V]{enc: enc, dec: dec}, nil
}

func (c CBORCodec[V]) Encode(v V) ([]byte, error) { return c.enc.Marshal(v) }
func (c CBORCodec[V]) Decode(b []byte) (V, error) {
	var v V
	err := c.dec.Unmarshal(b, &v)
	return v, err
}

// NewCodec returns the codec registered under name: json, msgpack or cbor.
func NewCodec[V any](name string) (Codec[V], error) {
	switch name {
	case "", "json":
		return JSONCodec[V]{}, nil
	case "msgpack":
		return MsgpackCodec[V]{}, nil
	case "cbor":
		c, err := NewCBORCodec[V]()
		if err != nil {
			return nil, fmt.Errorf("cbor codec: %w", err)
		}
		return c, nil
	default:
		return nil, fmt.Errorf("unknown cache codec %q", name)
	}
}
