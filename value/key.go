package value

import (
	"strconv"
)

// Key is an array index or property name: either an integer or a byte string.
// The zero Key is the integer 0. Keys are comparable and usable as map keys.
type Key struct {
	s     string
	i     int64
	isStr bool
}

// IntKey returns an integer key.
func IntKey(i int64) Key { return Key{i: i} }

// StrKey returns a string key. No numeric normalization is applied:
// StrKey("1") and IntKey(1) are distinct keys.
func StrKey(s string) Key { return Key{s: s, isStr: true} }

// IsString reports whether k is a string key.
func (k Key) IsString() bool { return k.isStr }

// Int returns the integer of an integer key, or 0.
func (k Key) Int() int64 {
	if k.isStr {
		return 0
	}
	return k.i
}

// Str returns the string of a string key, or "".
func (k Key) Str() string { return k.s }

// Value converts the key into the scalar it was built from.
func (k Key) Value() Value {
	if k.isStr {
		return String(k.s)
	}
	return Int(k.i)
}

func (k Key) String() string {
	if k.isStr {
		return strconv.Quote(k.s)
	}
	return strconv.FormatInt(k.i, 10)
}

// PathSegment renders k for use in an error path.
func (k Key) PathSegment() string {
	if k.isStr {
		return k.s
	}
	return "[" + strconv.FormatInt(k.i, 10) + "]"
}
