package wire

import (
	"encoding/binary"
	"math"
)

// DoubleSize is the encoded size of a double operand.
const DoubleSize = 8

// AppendDouble appends the IEEE-754 bits of f in big-endian order.
// NaN payloads, infinities, signed zeros and subnormals are kept bit-for-bit.
func AppendDouble(dst []byte, f float64) []byte {
	return binary.BigEndian.AppendUint64(dst, math.Float64bits(f))
}

// DoubleBits decodes the raw bit pattern of a double operand.
// b must hold at least DoubleSize bytes.
func DoubleBits(b []byte) uint64 {
	return binary.BigEndian.Uint64(b)
}

// Double decodes a double operand without normalizing it.
func Double(b []byte) float64 {
	return math.Float64frombits(DoubleBits(b))
}
