package value

import (
	"fmt"
	"math"
	"strconv"
)

// Kind identifies the dynamic type of a Value.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindInt
	KindFloat
	KindString
	KindArray
	KindObject
	KindRef
	KindResource
	KindCallable
)

var kindNames = [...]string{
	KindNull:     "null",
	KindBool:     "bool",
	KindInt:      "int",
	KindFloat:    "float",
	KindString:   "string",
	KindArray:    "array",
	KindObject:   "object",
	KindRef:      "reference",
	KindResource: "resource",
	KindCallable: "callable",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "kind(" + strconv.Itoa(int(k)) + ")"
}

// Composite reports whether values of this kind carry an identity.
func (k Kind) Composite() bool {
	return k == KindArray || k == KindObject || k == KindRef
}

// Value is a dynamically typed runtime value.
// The set of implementations is closed; see the Kind constants.
type Value interface {
	Kind() Kind
	isValue()
}

// Null is the absent value.
type Null struct{}

// Bool is a boolean scalar.
type Bool bool

// Int is a signed 64-bit integer scalar.
type Int int64

// Float is an IEEE-754 double. Comparisons in this package are bitwise.
type Float float64

// String is a binary-safe byte string.
type String string

// Resource stands for a live host handle such as an open file or socket.
// It has no wire representation.
type Resource struct {
	Handle any
	Type   string
}

// Callable stands for a runtime-only function value.
// It has no wire representation.
type Callable struct {
	Fn   any
	Name string
}

func (Null) Kind() Kind     { return KindNull }
func (Bool) Kind() Kind     { return KindBool }
func (Int) Kind() Kind      { return KindInt }
func (Float) Kind() Kind    { return KindFloat }
func (String) Kind() Kind   { return KindString }
func (Resource) Kind() Kind { return KindResource }
func (Callable) Kind() Kind { return KindCallable }

func (Null) isValue()     {}
func (Bool) isValue()     {}
func (Int) isValue()      {}
func (Float) isValue()    {}
func (String) isValue()   {}
func (Resource) isValue() {}
func (Callable) isValue() {}

func (Null) String() string { return "null" }

func (b Bool) String() string { return strconv.FormatBool(bool(b)) }

func (i Int) String() string { return strconv.FormatInt(int64(i), 10) }

func (f Float) String() string {
	v := float64(f)
	switch {
	case math.IsInf(v, 1):
		return "INF"
	case math.IsInf(v, -1):
		return "-INF"
	case math.IsNaN(v):
		return "NAN"
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func (r Resource) String() string { return fmt.Sprintf("resource(%s)", r.Type) }

func (c Callable) String() string { return fmt.Sprintf("callable(%s)", c.Name) }

// Bits returns the raw IEEE-754 bit pattern.
func (f Float) Bits() uint64 { return math.Float64bits(float64(f)) }

// FloatFromBits builds a Float from a raw IEEE-754 bit pattern without
// normalizing NaN payloads.
func FloatFromBits(b uint64) Float { return Float(math.Float64frombits(b)) }

// Deref follows v through any *Ref and returns the referent.
// A nil value dereferences to Null.
func Deref(v Value) Value {
	for {
		switch x := v.(type) {
		case nil:
			return Null{}
		case *Ref:
			v = x.v
		default:
			return v
		}
	}
}

func orNull(v Value) Value {
	if v == nil {
		return Null{}
	}
	return v
}
