package value

import (
	"iter"
	"math"
)

// omap is the insertion-ordered key/value store behind arrays and objects.
//
// While the keys are exactly 0..n-1 in order the map is packed and keeps no
// index: lookups are positional. The index is built on the first insertion
// or removal that breaks the run, and is never dropped afterwards. References
// bind to *Ref handles stored in slots, not to slot positions, so building
// the index never invalidates a bound reference.
type omap struct {
	keys  []Key
	vals  []Value
	index map[Key]int
	next  int64
}

func newOmap(capacity int) omap {
	if capacity <= 0 {
		return omap{}
	}
	return omap{
		keys: make([]Key, 0, capacity),
		vals: make([]Value, 0, capacity),
	}
}

func (m *omap) packed() bool { return m.index == nil }

func (m *omap) find(k Key) (int, bool) {
	if m.packed() {
		if k.isStr || k.i < 0 || k.i >= int64(len(m.keys)) {
			return 0, false
		}
		return int(k.i), true
	}
	pos, ok := m.index[k]
	return pos, ok
}

func (m *omap) buildIndex() {
	m.index = make(map[Key]int, len(m.keys)+1)
	for i, k := range m.keys {
		m.index[k] = i
	}
}

// insert appends a new entry. It reports false if k is already present.
func (m *omap) insert(k Key, v Value) bool {
	if _, ok := m.find(k); ok {
		return false
	}
	if m.packed() && (k.isStr || k.i != int64(len(m.keys))) {
		m.buildIndex()
	}
	if !m.packed() {
		m.index[k] = len(m.keys)
	}
	m.keys = append(m.keys, k)
	m.vals = append(m.vals, orNull(v))
	if !k.isStr && k.i >= m.next && k.i < math.MaxInt64 {
		m.next = k.i + 1
	}
	return true
}

func (m *omap) get(k Key) (Value, bool) {
	pos, ok := m.find(k)
	if !ok {
		return nil, false
	}
	return m.vals[pos], true
}

func (m *omap) remove(k Key) bool {
	pos, ok := m.find(k)
	if !ok {
		return false
	}
	if m.packed() && pos != len(m.keys)-1 {
		m.buildIndex()
	}
	copy(m.keys[pos:], m.keys[pos+1:])
	copy(m.vals[pos:], m.vals[pos+1:])
	m.keys = m.keys[:len(m.keys)-1]
	m.vals[len(m.vals)-1] = nil
	m.vals = m.vals[:len(m.vals)-1]
	if !m.packed() {
		delete(m.index, k)
		for i := pos; i < len(m.keys); i++ {
			m.index[m.keys[i]] = i
		}
	}
	return true
}

func (m *omap) clone() omap {
	c := omap{
		keys: append([]Key(nil), m.keys...),
		vals: append([]Value(nil), m.vals...),
		next: m.next,
	}
	if m.index != nil {
		c.index = make(map[Key]int, len(m.index))
		for k, v := range m.index {
			c.index[k] = v
		}
	}
	return c
}

// isList reports whether the keys are exactly 0..n-1 in insertion order.
func (m *omap) isList() bool {
	if m.packed() {
		return true
	}
	for i, k := range m.keys {
		if k.isStr || k.i != int64(i) {
			return false
		}
	}
	return true
}

func (m *omap) all() iter.Seq2[Key, Value] {
	return func(yield func(Key, Value) bool) {
		for i := 0; i < len(m.keys); i++ {
			if !yield(m.keys[i], m.vals[i]) {
				return
			}
		}
	}
}
