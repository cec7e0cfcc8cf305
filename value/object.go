package value

import (
	"iter"
)

// StdClass is the class name of generic property bags.
const StdClass = "stdClass"

// Object is a class instance: a class name plus an ordered property map.
// Objects are handles; copying the pointer aliases the instance.
//
// Declared properties are ordinary entries inserted first, dynamic properties
// follow in the order they were attached. Property keys may be integers so
// objects built from array casts round-trip.
type Object struct {
	Class string
	// Serialized holds the opaque payload of an object whose class owns its
	// wire format but could not be resolved when it was decoded. Encoders
	// emit it unchanged.
	Serialized []byte
	props      omap
}

// NewObject returns an instance of class with no properties.
func NewObject(class string) *Object {
	return &Object{Class: class}
}

func (*Object) Kind() Kind { return KindObject }
func (*Object) isValue()   {}

// Len returns the number of properties.
func (o *Object) Len() int { return len(o.props.keys) }

// Get returns the property stored under k.
func (o *Object) Get(k Key) (Value, bool) { return o.props.get(k) }

// Prop is Get for a string property name.
func (o *Object) Prop(name string) (Value, bool) { return o.props.get(StrKey(name)) }

// Has reports whether property k exists.
func (o *Object) Has(k Key) bool {
	_, ok := o.props.find(k)
	return ok
}

// At returns the property at declaration position i.
func (o *Object) At(i int) (Key, Value) { return o.props.keys[i], o.props.vals[i] }

// Set assigns property k. Slots holding a *Ref are written through; passing a
// *Ref binds the slot instead.
func (o *Object) Set(k Key, v Value) {
	if r, ok := v.(*Ref); ok {
		o.Bind(k, r)
		return
	}
	if pos, ok := o.props.find(k); ok {
		if r, isRef := o.props.vals[pos].(*Ref); isRef {
			r.Set(v)
			return
		}
		o.props.vals[pos] = orNull(v)
		return
	}
	o.props.insert(k, v)
}

// SetProp is Set for a string property name.
func (o *Object) SetProp(name string, v Value) { o.Set(StrKey(name), v) }

// Bind makes property k hold r.
func (o *Object) Bind(k Key, r *Ref) {
	if pos, ok := o.props.find(k); ok {
		o.props.vals[pos] = r
		return
	}
	o.props.insert(k, r)
}

// Unset removes property k.
func (o *Object) Unset(k Key) bool { return o.props.remove(k) }

// Insert appends a new property without writing through references.
// It reports false if k already exists.
func (o *Object) Insert(k Key, v Value) bool { return o.props.insert(k, v) }

// Keys returns the property keys in order.
func (o *Object) Keys() []Key { return append([]Key(nil), o.props.keys...) }

// All iterates over the properties in order.
func (o *Object) All() iter.Seq2[Key, Value] { return o.props.all() }
