package wire

import (
	"fmt"
)

// Tag is the type byte that starts every encoded value.
type Tag byte

const (
	TagNull        Tag = 0x00
	TagSharedRef8  Tag = 0x01
	TagSharedRef16 Tag = 0x02
	TagSharedRef32 Tag = 0x03
	TagFalse       Tag = 0x04
	TagTrue        Tag = 0x05
	TagPosInt8     Tag = 0x06
	TagNegInt8     Tag = 0x07
	TagPosInt16    Tag = 0x08
	TagNegInt16    Tag = 0x09
	TagPosInt32    Tag = 0x0a
	TagNegInt32    Tag = 0x0b
	TagDouble      Tag = 0x0c
	TagEmptyString Tag = 0x0d
	TagStringID8   Tag = 0x0e
	TagStringID16  Tag = 0x0f
	TagStringID32  Tag = 0x10
	TagString8     Tag = 0x11
	TagString16    Tag = 0x12
	TagString32    Tag = 0x13
	TagArray8      Tag = 0x14
	TagArray16     Tag = 0x15
	TagArray32     Tag = 0x16
	TagObject8     Tag = 0x17
	TagObject16    Tag = 0x18
	TagObject32    Tag = 0x19
	TagObjectID8   Tag = 0x1a
	TagObjectID16  Tag = 0x1b
	TagObjectID32  Tag = 0x1c
	TagObjectSer8  Tag = 0x1d
	TagObjectSer16 Tag = 0x1e
	TagObjectSer32 Tag = 0x1f
	TagPosInt64    Tag = 0x20
	TagNegInt64    Tag = 0x21
	TagValueRef8   Tag = 0x22
	TagValueRef16  Tag = 0x23
	TagValueRef32  Tag = 0x24
	TagRef         Tag = 0x25
	TagList8       Tag = 0x26
	TagList16      Tag = 0x27
	TagList32      Tag = 0x28
)

// Family groups the width variants of one tag.
type Family uint8

const (
	FamilyInvalid Family = iota
	FamilyNull
	FamilyBool
	FamilyInt
	FamilyDouble
	FamilyEmptyString
	FamilyString
	FamilyStringID
	FamilyArray
	FamilyList
	FamilyObject
	FamilyObjectID
	FamilyObjectSer
	FamilyValueRef
	FamilySharedRef
	FamilyRef
)

type tagInfo struct {
	name   string
	family Family
	size   int
}

var tagTable = [256]tagInfo{
	TagNull:        {"null", FamilyNull, 0},
	TagSharedRef8:  {"shared_ref8", FamilySharedRef, 1},
	TagSharedRef16: {"shared_ref16", FamilySharedRef, 2},
	TagSharedRef32: {"shared_ref32", FamilySharedRef, 4},
	TagFalse:       {"false", FamilyBool, 0},
	TagTrue:        {"true", FamilyBool, 0},
	TagPosInt8:     {"long8p", FamilyInt, 1},
	TagNegInt8:     {"long8n", FamilyInt, 1},
	TagPosInt16:    {"long16p", FamilyInt, 2},
	TagNegInt16:    {"long16n", FamilyInt, 2},
	TagPosInt32:    {"long32p", FamilyInt, 4},
	TagNegInt32:    {"long32n", FamilyInt, 4},
	TagPosInt64:    {"long64p", FamilyInt, 8},
	TagNegInt64:    {"long64n", FamilyInt, 8},
	TagDouble:      {"double", FamilyDouble, 8},
	TagEmptyString: {"string_empty", FamilyEmptyString, 0},
	TagStringID8:   {"string_id8", FamilyStringID, 1},
	TagStringID16:  {"string_id16", FamilyStringID, 2},
	TagStringID32:  {"string_id32", FamilyStringID, 4},
	TagString8:     {"string8", FamilyString, 1},
	TagString16:    {"string16", FamilyString, 2},
	TagString32:    {"string32", FamilyString, 4},
	TagArray8:      {"array8", FamilyArray, 1},
	TagArray16:     {"array16", FamilyArray, 2},
	TagArray32:     {"array32", FamilyArray, 4},
	TagList8:       {"list8", FamilyList, 1},
	TagList16:      {"list16", FamilyList, 2},
	TagList32:      {"list32", FamilyList, 4},
	TagObject8:     {"object8", FamilyObject, 1},
	TagObject16:    {"object16", FamilyObject, 2},
	TagObject32:    {"object32", FamilyObject, 4},
	TagObjectID8:   {"object_id8", FamilyObjectID, 1},
	TagObjectID16:  {"object_id16", FamilyObjectID, 2},
	TagObjectID32:  {"object_id32", FamilyObjectID, 4},
	TagObjectSer8:  {"object_ser8", FamilyObjectSer, 1},
	TagObjectSer16: {"object_ser16", FamilyObjectSer, 2},
	TagObjectSer32: {"object_ser32", FamilyObjectSer, 4},
	TagValueRef8:   {"objref8", FamilyValueRef, 1},
	TagValueRef16:  {"objref16", FamilyValueRef, 2},
	TagValueRef32:  {"objref32", FamilyValueRef, 4},
	TagRef:         {"ref", FamilyRef, 0},
}

// Valid reports whether t is a known tag.
func (t Tag) Valid() bool {
	return tagTable[t].family != FamilyInvalid
}

// Family returns the tag's family, or FamilyInvalid for unknown bytes.
func (t Tag) Family() Family {
	return tagTable[t].family
}

// OperandSize returns the byte width of the operand that follows the tag:
// the integer magnitude, count, length or index. Tags without an operand
// return 0.
func (t Tag) OperandSize() int {
	return tagTable[t].size
}

func (t Tag) String() string {
	if t.Valid() {
		return tagTable[t].name
	}
	return fmt.Sprintf("unknown(0x%02x)", byte(t))
}

// SizeFor returns the smallest operand size (1, 2 or 4) able to hold n.
func SizeFor(n uint64) int {
	switch {
	case n <= 0xff:
		return 1
	case n <= 0xffff:
		return 2
	default:
		return 4
	}
}

func sized(base Tag, size int) Tag {
	switch size {
	case 1:
		return base
	case 2:
		return base + 1
	default:
		return base + 2
	}
}

// StringTag returns the inline string tag for a string of length n.
func StringTag(n uint64) Tag { return sized(TagString8, SizeFor(n)) }

// StringIDTag returns the string table reference tag for index id.
func StringIDTag(id uint32) Tag { return sized(TagStringID8, SizeFor(uint64(id))) }

// ArrayTag returns the sparse array tag for n entries.
func ArrayTag(n uint64) Tag { return sized(TagArray8, SizeFor(n)) }

// ListTag returns the dense array tag for n entries.
func ListTag(n uint64) Tag { return sized(TagList8, SizeFor(n)) }

// ObjectTag returns the inline class name object tag for a name of length n.
func ObjectTag(n uint64) Tag { return sized(TagObject8, SizeFor(n)) }

// ObjectIDTag returns the object tag whose class name is string table entry id.
func ObjectIDTag(id uint32) Tag { return sized(TagObjectID8, SizeFor(uint64(id))) }

// ObjectSerTag returns the custom payload tag for a payload of n bytes.
func ObjectSerTag(n uint64) Tag { return sized(TagObjectSer8, SizeFor(n)) }

// ValueRefTag returns the value reference tag for identity id.
func ValueRefTag(id uint32) Tag { return sized(TagValueRef8, SizeFor(uint64(id))) }

// SharedRefTag returns the shared reference tag for identity id.
func SharedRefTag(id uint32) Tag { return sized(TagSharedRef8, SizeFor(uint64(id))) }

// IntTag selects the minimal integer tag for v and returns it together with
// the magnitude to write. Negative values are written as their absolute value.
func IntTag(v int64) (Tag, uint64) {
	if v >= 0 {
		m := uint64(v)
		switch {
		case m <= 0xff:
			return TagPosInt8, m
		case m <= 0xffff:
			return TagPosInt16, m
		case m <= 0xffffffff:
			return TagPosInt32, m
		default:
			return TagPosInt64, m
		}
	}
	// -(v+1) cannot overflow, including for math.MinInt64.
	m := uint64(-(v + 1)) + 1
	switch {
	case m <= 0xff:
		return TagNegInt8, m
	case m <= 0xffff:
		return TagNegInt16, m
	case m <= 0xffffffff:
		return TagNegInt32, m
	default:
		return TagNegInt64, m
	}
}

// Negative reports whether an integer tag carries a negative magnitude.
func (t Tag) Negative() bool {
	switch t {
	case TagNegInt8, TagNegInt16, TagNegInt32, TagNegInt64:
		return true
	}
	return false
}

// IntFromMagnitude rebuilds an integer from its tag and magnitude. It reports
// false when the magnitude does not fit in an int64.
func IntFromMagnitude(t Tag, m uint64) (int64, bool) {
	if !t.Negative() {
		if m > 1<<63-1 {
			return 0, false
		}
		return int64(m), true
	}
	switch {
	case m > 1<<63:
		return 0, false
	case m == 1<<63:
		return -1 << 63, true
	}
	return -int64(m), true
}
