package igbinary

import (
	"github.com/wippyai/igbinary/codec"
	"github.com/wippyai/igbinary/value"
)

// Serialize encodes v into a complete stream using the default options and
// any given overrides.
func Serialize(v value.Value, opts ...codec.Option) ([]byte, error) {
	return codec.Encode(v, opts...)
}

// Unserialize decodes a complete stream. It returns either the whole value or
// an error, never a partial result.
func Unserialize(data []byte, opts ...codec.Option) (value.Value, error) {
	return codec.Decode(data, opts...)
}

// Marshal converts a Go value with value.FromGo and serializes it.
func Marshal(x any, opts ...codec.Option) ([]byte, error) {
	v, err := value.FromGo(x)
	if err != nil {
		return nil, err
	}
	return Serialize(v, opts...)
}

// Unmarshal decodes data and converts the result with value.ToGo.
func Unmarshal(data []byte, opts ...codec.Option) (any, error) {
	v, err := Unserialize(data, opts...)
	if err != nil {
		return nil, err
	}
	return value.ToGo(v), nil
}
