package wire

import (
	"github.com/wippyai/igbinary/errors"
)

// Version is the format revision written in the first header byte.
const Version byte = 0x02

// HeaderSize is the fixed size of the stream header.
const HeaderSize = 4

// DefaultMaxPayload caps the decompressed body size when no limit is given.
const DefaultMaxPayload = 64 << 20

// Flags is the header flag byte.
type Flags byte

const (
	// FlagZstd marks a zstd-compressed body.
	FlagZstd Flags = 1 << 0
	// FlagLZ4 marks an LZ4 block-compressed body.
	FlagLZ4 Flags = 1 << 1

	knownFlags = FlagZstd | FlagLZ4
)

// Compression returns the body compression selected by f.
func (f Flags) Compression() Compression {
	switch {
	case f&FlagZstd != 0:
		return CompressionZstd
	case f&FlagLZ4 != 0:
		return CompressionLZ4
	}
	return CompressionNone
}

// Header is the 4-byte stream prefix: version, flags, two reserved zero bytes.
type Header struct {
	Version byte
	Flags   Flags
}

// NewHeader returns the header for a body stored with compression c.
func NewHeader(c Compression) Header {
	return Header{Version: Version, Flags: c.flag()}
}

// Append appends the encoded header to dst.
func (h Header) Append(dst []byte) []byte {
	return append(dst, h.Version, byte(h.Flags), 0, 0)
}

// ParseHeader validates and decodes the header at the start of data.
func ParseHeader(data []byte) (Header, error) {
	if len(data) == 0 {
		return Header{}, errors.New(errors.PhaseDecode, errors.KindMalformedInput).
			Detail("empty input").
			Build()
	}
	if len(data) < HeaderSize {
		return Header{}, errors.Truncated(len(data), "header")
	}
	h := Header{Version: data[0], Flags: Flags(data[1])}
	if h.Version != Version {
		return Header{}, errors.New(errors.PhaseDecode, errors.KindMalformedInput).
			Offset(0).
			Value(h.Version).
			Detail("unsupported format version 0x%02x (expected 0x%02x)", h.Version, Version).
			Build()
	}
	if h.Flags&^knownFlags != 0 {
		return Header{}, errors.New(errors.PhaseDecode, errors.KindMalformedInput).
			Offset(1).
			Value(byte(h.Flags)).
			Detail("unknown header flags 0x%02x", byte(h.Flags)).
			Build()
	}
	if h.Flags&FlagZstd != 0 && h.Flags&FlagLZ4 != 0 {
		return Header{}, errors.New(errors.PhaseDecode, errors.KindMalformedInput).
			Offset(1).
			Detail("conflicting compression flags").
			Build()
	}
	if data[2] != 0 || data[3] != 0 {
		return Header{}, errors.New(errors.PhaseDecode, errors.KindMalformedInput).
			Offset(2).
			Detail("reserved header bytes must be zero").
			Build()
	}
	return h, nil
}
