package value

import (
	"bytes"
)

// Equal reports whether a and b are structurally equal.
//
// Floats compare by bit pattern, so NaN equals a NaN with the same payload and
// 0.0 differs from -0.0. Arrays compare keys and values in order. Objects
// compare class, properties and any opaque payload. A *Ref only equals another
// *Ref with an equal referent. Cycles are handled by assuming equality for a
// pair of composites already under comparison.
func Equal(a, b Value) bool {
	e := equaler{seen: make(map[[2]any]struct{})}
	return e.equal(orNull(a), orNull(b))
}

type equaler struct {
	seen map[[2]any]struct{}
}

func (e *equaler) enter(a, b any) bool {
	key := [2]any{a, b}
	if _, ok := e.seen[key]; ok {
		return false
	}
	e.seen[key] = struct{}{}
	return true
}

func (e *equaler) equal(a, b Value) bool {
	if a.Kind() != b.Kind() {
		return false
	}
	switch x := a.(type) {
	case Null:
		return true
	case Bool:
		return x == b.(Bool)
	case Int:
		return x == b.(Int)
	case Float:
		return x.Bits() == b.(Float).Bits()
	case String:
		return x == b.(String)
	case Resource:
		return x.Type == b.(Resource).Type
	case Callable:
		return x.Name == b.(Callable).Name
	case *Ref:
		y := b.(*Ref)
		if x == y || !e.enter(x, y) {
			return true
		}
		return e.equal(x.Get(), y.Get())
	case *Array:
		y := b.(*Array)
		if x.d == y.d || !e.enter(x.d, y.d) {
			return true
		}
		return e.omapEqual(&x.d.omap, &y.d.omap)
	case *Object:
		y := b.(*Object)
		if x == y || !e.enter(x, y) {
			return true
		}
		if x.Class != y.Class || !bytes.Equal(x.Serialized, y.Serialized) {
			return false
		}
		return e.omapEqual(&x.props, &y.props)
	}
	return false
}

func (e *equaler) omapEqual(a, b *omap) bool {
	if len(a.keys) != len(b.keys) {
		return false
	}
	for i := range a.keys {
		if a.keys[i] != b.keys[i] {
			return false
		}
		if !e.equal(a.vals[i], b.vals[i]) {
			return false
		}
	}
	return true
}
