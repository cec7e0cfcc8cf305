package codec

import "github.com/wippyai/igbinary/value"

// Encode serializes v with a one-off encoder.
func Encode(v value.Value, opts ...Option) ([]byte, error) {
	return NewEncoder(opts...).Encode(v)
}

// Decode deserializes data with a one-off decoder.
func Decode(data []byte, opts ...Option) (value.Value, error) {
	return NewDecoder(opts...).Decode(data)
}
