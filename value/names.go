package value

import (
	"strings"
)

// Visibility is the access level encoded in a mangled property name.
type Visibility uint8

const (
	Public Visibility = iota
	Protected
	Private
)

func (v Visibility) String() string {
	switch v {
	case Protected:
		return "protected"
	case Private:
		return "private"
	default:
		return "public"
	}
}

// PrivateName mangles a private property name: "\x00Class\x00prop".
func PrivateName(class, prop string) string {
	return "\x00" + class + "\x00" + prop
}

// ProtectedName mangles a protected property name: "\x00*\x00prop".
func ProtectedName(prop string) string {
	return "\x00*\x00" + prop
}

// SplitName undoes PrivateName and ProtectedName. Names without a well-formed
// marker are public and returned unchanged.
func SplitName(mangled string) (class, prop string, vis Visibility) {
	if len(mangled) < 3 || mangled[0] != 0 {
		return "", mangled, Public
	}
	end := strings.IndexByte(mangled[1:], 0)
	if end < 0 {
		return "", mangled, Public
	}
	owner := mangled[1 : 1+end]
	prop = mangled[2+end:]
	if owner == "*" {
		return "", prop, Protected
	}
	return owner, prop, Private
}
