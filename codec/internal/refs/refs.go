// Package refs tracks composite identities within one encode or decode call.
//
// Identities are assigned in first-visit order starting at 0. The encoder and
// decoder visit composites in the same order, so an identity written by one
// names the same composite for the other.
package refs

import (
	"github.com/wippyai/igbinary/value"
)

// EncodeTracker maps composite identity tokens to assigned indices.
// Keys are the comparable tokens that name a composite: *value.Ref,
// *value.Object, or (*value.Array).Identity().
type EncodeTracker struct {
	ids  map[any]uint32
	next uint32
}

// NewEncodeTracker returns an empty tracker.
func NewEncodeTracker() *EncodeTracker {
	return &EncodeTracker{ids: make(map[any]uint32)}
}

// Lookup returns the index previously assigned to key.
func (t *EncodeTracker) Lookup(key any) (uint32, bool) {
	id, ok := t.ids[key]
	return id, ok
}

// Assign gives key the next index. Keys must not be assigned twice.
func (t *EncodeTracker) Assign(key any) uint32 {
	id := t.next
	t.ids[key] = id
	t.next++
	return id
}

// Len returns the number of indices assigned.
func (t *EncodeTracker) Len() int { return int(t.next) }

// DecodeTable holds decoded composites by identity index.
type DecodeTable struct {
	handles []value.Value
}

// NewDecodeTable returns an empty table.
func NewDecodeTable() *DecodeTable {
	return &DecodeTable{handles: make([]value.Value, 0, 4)}
}

// Assign records handle under the next index.
func (t *DecodeTable) Assign(handle value.Value) uint32 {
	t.handles = append(t.handles, handle)
	return uint32(len(t.handles) - 1)
}

// Get returns the handle assigned index id.
func (t *DecodeTable) Get(id uint32) (value.Value, bool) {
	if uint64(id) >= uint64(len(t.handles)) {
		return nil, false
	}
	return t.handles[id], true
}

// Len returns the number of indices assigned.
func (t *DecodeTable) Len() int { return len(t.handles) }
