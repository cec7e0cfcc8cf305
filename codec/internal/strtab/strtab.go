// Package strtab implements the per-call string tables of the codec.
package strtab

import (
	"hash/maphash"
)

const (
	initialSlots = 16
	// grow when entries exceed 3/4 of the slots
	loadNum = 3
	loadDen = 4
)

// Hasher computes the 64-bit digest used to pre-filter candidates.
// Equal strings must produce equal digests; distinct strings may collide.
type Hasher func(s string) uint64

// Table interns strings during one encode call.
//
// Slots use open addressing with linear probing. A digest match is only a
// candidate; entries are confirmed by full content comparison, so colliding
// digests never merge distinct strings. Growth rehashes the slot array but
// entry indices are positions in the entry list and never change.
type Table struct {
	hash    Hasher
	slots   []slot
	entries []string
}

type slot struct {
	digest uint64
	// index+1 into entries; 0 marks an empty slot
	ref uint32
}

// New returns an empty table using a seeded maphash digest.
func New() *Table {
	seed := maphash.MakeSeed()
	return NewWithHasher(func(s string) uint64 { return maphash.String(seed, s) })
}

// NewWithHasher returns an empty table using h as the digest.
func NewWithHasher(h Hasher) *Table {
	return &Table{hash: h, slots: make([]slot, initialSlots)}
}

// Len returns the number of interned strings.
func (t *Table) Len() int { return len(t.entries) }

// Capacity returns the current number of slots.
func (t *Table) Capacity() int { return len(t.slots) }

// Intern returns the index of s. When s has not been seen before it is
// assigned the next index and seen is false; the caller then writes s inline.
func (t *Table) Intern(s string) (index uint32, seen bool) {
	d := t.hash(s)
	mask := uint64(len(t.slots) - 1)
	for i := d & mask; ; i = (i + 1) & mask {
		sl := t.slots[i]
		if sl.ref == 0 {
			break
		}
		if sl.digest == d && t.entries[sl.ref-1] == s {
			return sl.ref - 1, true
		}
	}

	index = uint32(len(t.entries))
	t.entries = append(t.entries, s)
	if len(t.entries)*loadDen > len(t.slots)*loadNum {
		t.grow()
	} else {
		t.place(d, index)
	}
	return index, false
}

func (t *Table) place(d uint64, index uint32) {
	mask := uint64(len(t.slots) - 1)
	for i := d & mask; ; i = (i + 1) & mask {
		if t.slots[i].ref == 0 {
			t.slots[i] = slot{digest: d, ref: index + 1}
			return
		}
	}
}

func (t *Table) grow() {
	n := len(t.slots) * 2
	for len(t.entries)*loadDen > n*loadNum {
		n *= 2
	}
	old := t.slots
	t.slots = make([]slot, n)
	for _, sl := range old {
		if sl.ref != 0 {
			t.place(sl.digest, sl.ref-1)
		}
	}
	// the newest entry was not placed before growing
	last := uint32(len(t.entries) - 1)
	t.place(t.hash(t.entries[last]), last)
}

// List collects strings in the order a decoder reads them, so string-id
// operands resolve by position.
type List struct {
	entries []string
}

// Add appends s and returns its index.
func (l *List) Add(s string) uint32 {
	l.entries = append(l.entries, s)
	return uint32(len(l.entries) - 1)
}

// Get returns the string at index i.
func (l *List) Get(i uint32) (string, bool) {
	if uint64(i) >= uint64(len(l.entries)) {
		return "", false
	}
	return l.entries[i], true
}

// Len returns the number of collected strings.
func (l *List) Len() int { return len(l.entries) }
