// Package wire defines the igbinary stream format.
//
// A stream is a 4-byte header followed by exactly one tagged value:
//
//	[version 0x02][flags][0x00][0x00][tag][operand...]
//
// All multi-byte operands are big-endian. Tags come in families whose width
// variants differ only in operand size (1, 2 or 4 bytes, 8 for int64 and
// doubles); encoders always pick the smallest variant that fits.
//
// When a compression flag is set the body following the header is
// [uint32 uncompressed length][zstd frame or LZ4 block].
//
// The package also provides Disassemble, a structural listing of a stream
// that does not build values.
package wire
