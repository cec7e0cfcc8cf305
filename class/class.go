package class

import (
	"github.com/wippyai/igbinary/value"
)

// SleepFunc selects the properties to serialize. Each returned entry should be
// a value.String naming a property; other entries are skipped with a warning.
type SleepFunc func(o *value.Object) ([]value.Value, error)

// WakeupFunc finalizes an object after its properties have been assigned.
type WakeupFunc func(o *value.Object) error

// SerializeFunc produces the opaque payload of a class that owns its wire format.
type SerializeFunc func(o *value.Object) ([]byte, error)

// UnserializeFunc restores an object from its opaque payload.
type UnserializeFunc func(o *value.Object, data []byte) error

// DestructFunc releases an object discarded by a failed decode.
type DestructFunc func(o *value.Object)

// Type describes a class: its name, declared properties and optional hooks.
// A nil hook means the class does not have that capability.
type Type struct {
	Sleep       SleepFunc
	Wakeup      WakeupFunc
	Serialize   SerializeFunc
	Unserialize UnserializeFunc
	Destruct    DestructFunc
	Name        string
	// Fields lists declared property names, mangled for visibility where
	// needed (see value.PrivateName and value.ProtectedName).
	Fields []string
}

// New returns an instance of t with every declared field set to null.
func (t *Type) New() *value.Object {
	o := value.NewObject(t.Name)
	for _, f := range t.Fields {
		o.Insert(value.StrKey(f), value.Null{})
	}
	return o
}

// CustomWire reports whether t owns its wire format.
func (t *Type) CustomWire() bool {
	return t.Serialize != nil || t.Unserialize != nil
}
