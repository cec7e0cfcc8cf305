package value

import (
	"cmp"
	"fmt"
	"math"
	"reflect"
	"slices"
	"strconv"
)

// FromGo converts a plain Go value into a Value.
//
// Supported inputs: nil, Value, bool, all integer and float kinds, string,
// []byte (as a String), slices and arrays (dense arrays), maps with string or
// integer keys (sparse arrays, keys sorted), and pointers to these. Functions
// become Callable; channels and unsafe pointers become Resource. Unsigned
// integers above math.MaxInt64 are rejected.
func FromGo(x any) (Value, error) {
	return fromReflect(reflect.ValueOf(x), 0)
}

// MustFromGo is FromGo that panics on error. Intended for tests and literals.
func MustFromGo(x any) Value {
	v, err := FromGo(x)
	if err != nil {
		panic(err)
	}
	return v
}

const maxConvertDepth = 1024

func fromReflect(rv reflect.Value, depth int) (Value, error) {
	if depth > maxConvertDepth {
		return nil, fmt.Errorf("value: nesting deeper than %d", maxConvertDepth)
	}
	if !rv.IsValid() {
		return Null{}, nil
	}
	if (rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface) && rv.IsNil() {
		return Null{}, nil
	}
	if rv.CanInterface() {
		if v, ok := rv.Interface().(Value); ok {
			return v, nil
		}
	}

	switch rv.Kind() {
	case reflect.Interface, reflect.Pointer:
		return fromReflect(rv.Elem(), depth+1)
	case reflect.Bool:
		return Bool(rv.Bool()), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return Int(rv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		u := rv.Uint()
		if u > math.MaxInt64 {
			return nil, fmt.Errorf("value: unsigned integer %d overflows int64", u)
		}
		return Int(int64(u)), nil
	case reflect.Float32, reflect.Float64:
		return Float(rv.Float()), nil
	case reflect.String:
		return String(rv.String()), nil
	case reflect.Slice:
		if rv.IsNil() {
			return Null{}, nil
		}
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return String(rv.Bytes()), nil
		}
		return fromList(rv, depth)
	case reflect.Array:
		return fromList(rv, depth)
	case reflect.Map:
		if rv.IsNil() {
			return Null{}, nil
		}
		return fromMap(rv, depth)
	case reflect.Func:
		name := rv.Type().String()
		return Callable{Fn: rv.Interface(), Name: name}, nil
	case reflect.Chan, reflect.UnsafePointer:
		var handle any
		if rv.CanInterface() {
			handle = rv.Interface()
		}
		return Resource{Handle: handle, Type: rv.Type().String()}, nil
	}
	return nil, fmt.Errorf("value: cannot convert %s", rv.Type())
}

func fromList(rv reflect.Value, depth int) (Value, error) {
	a := NewArrayCap(rv.Len())
	for i := 0; i < rv.Len(); i++ {
		v, err := fromReflect(rv.Index(i), depth+1)
		if err != nil {
			return nil, err
		}
		a.Insert(IntKey(int64(i)), v)
	}
	return a, nil
}

func fromMap(rv reflect.Value, depth int) (Value, error) {
	type entry struct {
		key Key
		val reflect.Value
	}
	entries := make([]entry, 0, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		k, err := keyFromReflect(iter.Key())
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry{key: k, val: iter.Value()})
	}
	slices.SortFunc(entries, func(a, b entry) int { return compareKeys(a.key, b.key) })

	a := NewArrayCap(len(entries))
	for _, e := range entries {
		v, err := fromReflect(e.val, depth+1)
		if err != nil {
			return nil, err
		}
		if !a.Insert(e.key, v) {
			return nil, fmt.Errorf("value: duplicate key %s", e.key)
		}
	}
	return a, nil
}

func keyFromReflect(rv reflect.Value) (Key, error) {
	for rv.Kind() == reflect.Interface && !rv.IsNil() {
		rv = rv.Elem()
	}
	switch rv.Kind() {
	case reflect.String:
		return StrKey(rv.String()), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return IntKey(rv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		u := rv.Uint()
		if u > math.MaxInt64 {
			return Key{}, fmt.Errorf("value: map key %d overflows int64", u)
		}
		return IntKey(int64(u)), nil
	}
	return Key{}, fmt.Errorf("value: unsupported map key type %s", rv.Type())
}

// compareKeys orders integer keys before string keys.
func compareKeys(a, b Key) int {
	switch {
	case !a.isStr && !b.isStr:
		return cmp.Compare(a.i, b.i)
	case a.isStr && b.isStr:
		return cmp.Compare(a.s, b.s)
	case !a.isStr:
		return -1
	default:
		return 1
	}
}

// ToGo converts v into plain Go values: nil, bool, int64, float64, string,
// []any for list arrays and map[string]any for other arrays and objects.
// Objects carry their class under "@class". References are replaced by their
// referents and composites already on the current path become nil.
func ToGo(v Value) any {
	return toGo(v, make(map[any]bool))
}

func toGo(v Value, path map[any]bool) any {
	switch x := orNull(v).(type) {
	case Null:
		return nil
	case Bool:
		return bool(x)
	case Int:
		return int64(x)
	case Float:
		return float64(x)
	case String:
		return string(x)
	case *Ref:
		if path[x] {
			return nil
		}
		path[x] = true
		defer delete(path, x)
		return toGo(x.Get(), path)
	case *Array:
		if path[x.d] {
			return nil
		}
		path[x.d] = true
		defer delete(path, x.d)
		if x.IsList() {
			out := make([]any, 0, x.Len())
			for _, e := range x.All() {
				out = append(out, toGo(e, path))
			}
			return out
		}
		out := make(map[string]any, x.Len())
		for k, e := range x.All() {
			out[keyString(k)] = toGo(e, path)
		}
		return out
	case *Object:
		if path[x] {
			return nil
		}
		path[x] = true
		defer delete(path, x)
		out := make(map[string]any, x.Len()+1)
		out["@class"] = x.Class
		for k, e := range x.All() {
			out[keyString(k)] = toGo(e, path)
		}
		return out
	case Resource:
		return x.Handle
	case Callable:
		return x.Fn
	}
	return nil
}

func keyString(k Key) string {
	if k.isStr {
		return k.s
	}
	return strconv.FormatInt(k.i, 10)
}
