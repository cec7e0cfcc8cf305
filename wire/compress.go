package wire

import (
	"encoding/binary"
	stderrors "errors"
	"fmt"
	"math"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"

	"github.com/wippyai/igbinary/errors"
)

// Compression selects the body compression recorded in the header flags.
type Compression uint8

const (
	CompressionNone Compression = iota
	CompressionZstd
	CompressionLZ4
)

func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionZstd:
		return "zstd"
	case CompressionLZ4:
		return "lz4"
	default:
		return fmt.Sprintf("unknown(%d)", c)
	}
}

// ParseCompression parses a compression name as produced by String.
func ParseCompression(name string) (Compression, error) {
	switch name {
	case "", "none":
		return CompressionNone, nil
	case "zstd":
		return CompressionZstd, nil
	case "lz4":
		return CompressionLZ4, nil
	default:
		return 0, errors.InvalidInput(errors.PhaseConfig, fmt.Sprintf("unknown compression %q", name))
	}
}

func (c Compression) flag() Flags {
	switch c {
	case CompressionZstd:
		return FlagZstd
	case CompressionLZ4:
		return FlagLZ4
	}
	return 0
}

// zstd.Encoder and zstd.Decoder are safe for concurrent use and are shared
// to avoid repeated initialization.
var (
	zstdEncoder *zstd.Encoder
	zstdDecoder *zstd.Decoder
)

func init() {
	var err error
	zstdEncoder, err = zstd.NewWriter(nil,
		zstd.WithEncoderLevel(zstd.SpeedDefault),
	)
	if err != nil {
		panic("wire: zstd encoder initialization failed: " + err.Error())
	}

	// DecodeAll stops at cap(dst), so the buffer sized from the declared
	// length bounds what a frame may expand to.
	zstdDecoder, err = zstd.NewReader(nil,
		zstd.WithDecodeAllCapLimit(true),
		zstd.WithDecoderMaxMemory(math.MaxUint32),
	)
	if err != nil {
		panic("wire: zstd decoder initialization failed: " + err.Error())
	}
}

// Compress compresses body and returns [uint32 BE uncompressed length][compressed].
// It returns nil without error when the compressed form would not be smaller
// than body; callers then store the body uncompressed.
func Compress(c Compression, body []byte) ([]byte, error) {
	if uint64(len(body)) > math.MaxUint32 {
		return nil, errors.Overflow(errors.PhaseEncode, nil, len(body), "uint32 body length")
	}
	out := binary.BigEndian.AppendUint32(nil, uint32(len(body)))

	switch c {
	case CompressionZstd:
		out = zstdEncoder.EncodeAll(body, out)
		if len(out)-4 >= len(body) {
			return nil, nil
		}
		return out, nil

	case CompressionLZ4:
		bound := lz4.CompressBlockBound(len(body))
		out = append(out, make([]byte, bound)...)
		written, err := lz4.CompressBlock(body, out[4:], nil)
		if err != nil {
			return nil, errors.Wrap(errors.PhaseEncode, errors.KindCompressionFailure, err, "lz4 compress")
		}
		// CompressBlock returns 0 when the data is incompressible.
		if written == 0 || written >= len(body) {
			return nil, nil
		}
		return out[:4+written], nil
	}
	return nil, errors.InvalidInput(errors.PhaseEncode, fmt.Sprintf("unsupported compression %s", c))
}

// Decompress reverses Compress. The declared length must not exceed maxSize
// and must match the decompressed size exactly. Offsets in errors are
// relative to the start of the stream.
func Decompress(c Compression, data []byte, maxSize int) ([]byte, error) {
	if len(data) < 4 {
		return nil, errors.Truncated(HeaderSize+len(data), "compressed body length")
	}
	size := binary.BigEndian.Uint32(data)
	if maxSize > 0 && uint64(size) > uint64(maxSize) {
		return nil, errors.New(errors.PhaseDecode, errors.KindMalformedInput).
			Offset(HeaderSize).
			Value(size).
			Detail("declared body size %d exceeds limit %d", size, maxSize).
			Build()
	}
	compressed := data[4:]

	var (
		out []byte
		err error
	)
	switch c {
	case CompressionZstd:
		out, err = zstdDecoder.DecodeAll(compressed, make([]byte, 0, size))
		if stderrors.Is(err, zstd.ErrDecoderSizeExceeded) {
			return nil, malformedBody(err, fmt.Sprintf("zstd body exceeds declared size %d", size))
		}
		if err != nil {
			return nil, malformedBody(err, "zstd decompress")
		}
	case CompressionLZ4:
		out = make([]byte, size)
		var n int
		n, err = lz4.UncompressBlock(compressed, out)
		if err != nil {
			return nil, malformedBody(err, "lz4 decompress")
		}
		out = out[:n]
	default:
		return nil, errors.InvalidInput(errors.PhaseDecode, fmt.Sprintf("unsupported compression %s", c))
	}

	if len(out) != int(size) {
		return nil, errors.New(errors.PhaseDecode, errors.KindMalformedInput).
			Offset(HeaderSize).
			Detail("%s body is %d bytes, header declared %d", c, len(out), size).
			Build()
	}
	return out, nil
}

func malformedBody(cause error, detail string) error {
	return errors.New(errors.PhaseDecode, errors.KindMalformedInput).
		Offset(HeaderSize + 4).
		Cause(cause).
		Detail("%s", detail).
		Build()
}
