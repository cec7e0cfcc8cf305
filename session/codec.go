package session

import (
	"github.com/wippyai/igbinary/codec"
	"github.com/wippyai/igbinary/errors"
	"github.com/wippyai/igbinary/value"
)

// Encode serializes session variables. Every key must be a string.
func Encode(vars *value.Array, opts ...codec.Option) ([]byte, error) {
	if vars == nil {
		vars = value.NewArray()
	}
	for k := range vars.All() {
		if !k.IsString() {
			return nil, errors.New(errors.PhaseSession, errors.KindInvalidInput).
				Path(k.PathSegment()).
				Detail("session variable names must be strings").
				Build()
		}
	}
	return codec.Encode(vars, opts...)
}

// Decode parses session data. Empty data is an empty session.
func Decode(data []byte, opts ...codec.Option) (*value.Array, error) {
	if len(data) == 0 {
		return value.NewArray(), nil
	}
	v, err := codec.Decode(data, opts...)
	if err != nil {
		return nil, err
	}
	vars, ok := v.(*value.Array)
	if !ok {
		return nil, errors.New(errors.PhaseSession, errors.KindMalformedInput).
			Detail("session root is %s, not an array", v.Kind()).
			Build()
	}
	for k := range vars.All() {
		if !k.IsString() {
			return nil, errors.New(errors.PhaseSession, errors.KindMalformedInput).
				Path(k.PathSegment()).
				Detail("session variable name is not a string").
				Build()
		}
	}
	return vars, nil
}
