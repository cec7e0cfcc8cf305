package value

import (
	"iter"
)

// Array is an ordered mapping from Key to Value with copy-on-write storage.
//
// Share returns a second handle over the same storage. The first mutation
// through any handle whose storage is shared detaches that handle onto a
// private copy, so shared handles behave as independent values that happen to
// cost nothing until written. Slots holding a *Ref are the exception: Set on
// such a slot writes through the reference and every alias observes it.
//
// Array handles are not safe for concurrent mutation.
type Array struct {
	d *arrayData
}

type arrayData struct {
	omap
	// handles counts Array handles over this storage. Handles that become
	// unreachable are not subtracted, so a stale count only costs a copy.
	handles int
}

// NewArray returns an empty array.
func NewArray() *Array {
	return &Array{d: &arrayData{handles: 1}}
}

// NewArrayCap returns an empty array with room for n entries.
func NewArrayCap(n int) *Array {
	return &Array{d: &arrayData{omap: newOmap(n), handles: 1}}
}

// List builds a dense array from vs.
func List(vs ...Value) *Array {
	a := NewArrayCap(len(vs))
	for _, v := range vs {
		a.d.insert(IntKey(a.d.next), v)
	}
	return a
}

func (*Array) Kind() Kind { return KindArray }
func (*Array) isValue()   {}

// Identity returns an opaque comparable token naming the storage behind a.
// Handles produced by Share report the same identity until one of them is
// written.
func (a *Array) Identity() any { return a.d }

// Share returns a new handle over the same storage.
func (a *Array) Share() *Array {
	a.d.handles++
	return &Array{d: a.d}
}

// Shared reports whether another handle currently shares a's storage.
func (a *Array) Shared() bool { return a.d.handles > 1 }

func (a *Array) detach() {
	if a.d.handles <= 1 {
		return
	}
	a.d.handles--
	a.d = &arrayData{omap: a.d.clone(), handles: 1}
}

// Len returns the number of entries.
func (a *Array) Len() int { return len(a.d.keys) }

// Get returns the value stored under k. A slot bound to a *Ref returns the
// *Ref itself; use Deref for its current referent.
func (a *Array) Get(k Key) (Value, bool) { return a.d.get(k) }

// Has reports whether k is present.
func (a *Array) Has(k Key) bool {
	_, ok := a.d.find(k)
	return ok
}

// At returns the entry at insertion position i.
func (a *Array) At(i int) (Key, Value) { return a.d.keys[i], a.d.vals[i] }

// Set stores v under k, appending the key if it is new. When the existing
// slot holds a *Ref the write goes through the reference. Passing a *Ref as v
// binds the slot to it, as Bind does.
func (a *Array) Set(k Key, v Value) {
	if r, ok := v.(*Ref); ok {
		a.Bind(k, r)
		return
	}
	if pos, ok := a.d.find(k); ok {
		if r, isRef := a.d.vals[pos].(*Ref); isRef {
			r.Set(v)
			return
		}
		a.detach()
		a.d.vals[pos] = orNull(v)
		return
	}
	a.detach()
	a.d.insert(k, v)
}

// Append stores v under the next free integer key and returns that key.
func (a *Array) Append(v Value) Key {
	k := IntKey(a.d.next)
	a.detach()
	a.d.insert(k, v)
	return k
}

// Bind makes the slot k hold r, replacing any previous value or reference.
func (a *Array) Bind(k Key, r *Ref) {
	a.detach()
	if pos, ok := a.d.find(k); ok {
		a.d.vals[pos] = r
		return
	}
	a.d.insert(k, r)
}

// Unset removes k. It reports whether the key was present.
func (a *Array) Unset(k Key) bool {
	if !a.Has(k) {
		return false
	}
	a.detach()
	return a.d.remove(k)
}

// Insert appends a new entry without detaching shared storage and without
// writing through references. It reports false if k is already present.
// Decoders use it to fill an array whose handle may already have been shared
// by a back-reference.
func (a *Array) Insert(k Key, v Value) bool { return a.d.insert(k, v) }

// NextIndex returns the key Append would use.
func (a *Array) NextIndex() int64 { return a.d.next }

// IsList reports whether the keys are exactly 0..n-1 in insertion order.
// Empty arrays are lists.
func (a *Array) IsList() bool { return a.d.isList() }

// Keys returns the keys in insertion order.
func (a *Array) Keys() []Key { return append([]Key(nil), a.d.keys...) }

// All iterates over the entries in insertion order.
func (a *Array) All() iter.Seq2[Key, Value] { return a.d.all() }
