package binary

import (
	"bytes"
	"encoding/binary"
)

// Writer provides buffered writing of big-endian fixed-width fields.
type Writer struct {
	buf *bytes.Buffer
}

// NewWriter creates a new Writer.
func NewWriter() *Writer {
	return &Writer{buf: &bytes.Buffer{}}
}

// Bytes returns the written bytes.
func (w *Writer) Bytes() []byte {
	return w.buf.Bytes()
}

// Len returns the number of bytes written.
func (w *Writer) Len() int {
	return w.buf.Len()
}

// Byte writes a single byte.
func (w *Writer) Byte(b byte) {
	w.buf.WriteByte(b)
}

// WriteBytes writes a byte slice.
func (w *Writer) WriteBytes(data []byte) {
	w.buf.Write(data)
}

// WriteString writes the bytes of s.
func (w *Writer) WriteString(s string) {
	w.buf.WriteString(s)
}

// WriteU16 writes a big-endian uint16.
func (w *Writer) WriteU16(v uint16) {
	var buf [2]byte
	binary.BigEndian.PutUint16(buf[:], v)
	w.buf.Write(buf[:])
}

// WriteU32 writes a big-endian uint32.
func (w *Writer) WriteU32(v uint32) {
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], v)
	w.buf.Write(buf[:])
}

// WriteU64 writes a big-endian uint64.
func (w *Writer) WriteU64(v uint64) {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], v)
	w.buf.Write(buf[:])
}

// WriteUint writes v as an unsigned big-endian integer of size 1, 2, 4 or 8
// bytes. Higher bits that do not fit are dropped.
func (w *Writer) WriteUint(size int, v uint64) {
	switch size {
	case 1:
		w.Byte(byte(v))
	case 2:
		w.WriteU16(uint16(v))
	case 4:
		w.WriteU32(uint32(v))
	default:
		w.WriteU64(v)
	}
}
