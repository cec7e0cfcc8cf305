package wire

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/wippyai/igbinary/errors"
	"github.com/wippyai/igbinary/internal/binary"
)

// maxDisasmDepth bounds recursion while listing untrusted input.
const maxDisasmDepth = 4096

// Token is one tag occurrence in a disassembled stream.
type Token struct {
	// Text is the decoded scalar, quoted string content, or class name.
	Text string
	// Role is "key" for sparse array keys and "class" for object class names.
	Role string
	// Offset is the tag's position. For compressed streams it counts from the
	// start of the decompressed body.
	Offset int
	Depth  int
	// Operand is the integer magnitude, count, length or index that follows
	// the tag, when the tag has one.
	Operand uint64
	Tag     Tag
}

func (t Token) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%08x  %s%s", t.Offset, strings.Repeat("  ", t.Depth), t.Tag)
	if t.Tag.OperandSize() > 0 && t.Tag.Family() != FamilyDouble {
		b.WriteByte(' ')
		b.WriteString(strconv.FormatUint(t.Operand, 10))
	}
	if t.Role != "" {
		b.WriteString(" <")
		b.WriteString(t.Role)
		b.WriteByte('>')
	}
	if t.Text != "" {
		b.WriteString("  ")
		b.WriteString(t.Text)
	}
	return b.String()
}

// Listing is the result of Disassemble.
type Listing struct {
	Header Header
	Tokens []Token
}

// WriteTo prints the listing one token per line.
func (l *Listing) WriteTo(w io.Writer) (int64, error) {
	var total int64
	n, err := fmt.Fprintf(w, "header  version=0x%02x flags=0x%02x compression=%s\n",
		l.Header.Version, byte(l.Header.Flags), l.Header.Flags.Compression())
	total += int64(n)
	if err != nil {
		return total, err
	}
	for _, tok := range l.Tokens {
		n, err := fmt.Fprintln(w, tok.String())
		total += int64(n)
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// Disassemble lists every tag in an encoded stream with its offset, nesting
// depth and operand. It checks structure only: back-references and string
// ids are listed, not resolved. On malformed input the tokens read so far are
// returned together with the error.
func Disassemble(data []byte) (*Listing, error) {
	h, err := ParseHeader(data)
	if err != nil {
		return &Listing{}, err
	}
	body := data[HeaderSize:]
	if c := h.Flags.Compression(); c != CompressionNone {
		body, err = Decompress(c, body, DefaultMaxPayload)
		if err != nil {
			return &Listing{Header: h}, err
		}
	}

	d := &disassembler{r: binary.NewReader(body)}
	l := &Listing{Header: h}
	err = d.value(0, "")
	if err == nil && d.r.Remaining() > 0 {
		err = errors.Malformed(d.r.Position(), "%d trailing bytes after root value", d.r.Remaining())
	}
	l.Tokens = d.tokens
	return l, err
}

type disassembler struct {
	r      *binary.Reader
	tokens []Token
}

func (d *disassembler) emit(tok Token) {
	d.tokens = append(d.tokens, tok)
}

func (d *disassembler) operand(t Tag) (uint64, error) {
	n := t.OperandSize()
	if n == 0 {
		return 0, nil
	}
	v, err := d.r.ReadUint(n)
	if err != nil {
		return 0, errors.Truncated(d.r.Position(), t.String())
	}
	return v, nil
}

func (d *disassembler) bytes(n uint64, what string) ([]byte, error) {
	if n > uint64(d.r.Remaining()) {
		return nil, errors.Truncated(d.r.Position(), what)
	}
	return d.r.ReadBytes(int(n))
}

func (d *disassembler) value(depth int, role string) error {
	if depth > maxDisasmDepth {
		return errors.Malformed(d.r.Position(), "nesting deeper than %d", maxDisasmDepth)
	}
	off := d.r.Position()
	b, err := d.r.ReadByte()
	if err != nil {
		return errors.Truncated(off, "tag")
	}
	t := Tag(b)
	if !t.Valid() {
		return errors.UnknownTag(off, b)
	}
	tok := Token{Offset: off, Depth: depth, Tag: t, Role: role}

	switch t.Family() {
	case FamilyNull:
		tok.Text = "null"
	case FamilyBool:
		tok.Text = strconv.FormatBool(t == TagTrue)
	case FamilyEmptyString:
		tok.Text = `""`
	case FamilyDouble:
		raw, err := d.bytes(DoubleSize, "double")
		if err != nil {
			return err
		}
		tok.Operand = DoubleBits(raw)
		tok.Text = fmt.Sprintf("%v (0x%016x)", Double(raw), tok.Operand)
	case FamilyInt:
		m, err := d.operand(t)
		if err != nil {
			return err
		}
		tok.Operand = m
		if v, ok := IntFromMagnitude(t, m); ok {
			tok.Text = strconv.FormatInt(v, 10)
		} else {
			return errors.Malformed(off, "integer magnitude %d out of range", m)
		}
	case FamilyString:
		n, err := d.operand(t)
		if err != nil {
			return err
		}
		s, err := d.bytes(n, "string")
		if err != nil {
			return err
		}
		tok.Operand = n
		tok.Text = strconv.Quote(string(s))
	case FamilyStringID, FamilyValueRef, FamilySharedRef:
		id, err := d.operand(t)
		if err != nil {
			return err
		}
		tok.Operand = id
	case FamilyRef:
		d.emit(tok)
		return d.value(depth+1, "")
	case FamilyList, FamilyArray:
		n, err := d.operand(t)
		if err != nil {
			return err
		}
		tok.Operand = n
		d.emit(tok)
		return d.entries(t, n, depth)
	case FamilyObject, FamilyObjectID:
		n, err := d.operand(t)
		if err != nil {
			return err
		}
		tok.Operand = n
		tok.Role = "class"
		if t.Family() == FamilyObject {
			name, err := d.bytes(n, "class name")
			if err != nil {
				return err
			}
			tok.Text = strconv.Quote(string(name))
		}
		d.emit(tok)
		return d.objectBody(depth)
	case FamilyObjectSer:
		return errors.Malformed(off, "%s outside an object body", t)
	}
	d.emit(tok)
	return nil
}

func (d *disassembler) entries(t Tag, n uint64, depth int) error {
	// Every entry takes at least one byte per tag.
	if n > uint64(d.r.Remaining()) {
		return errors.Malformed(d.r.Position(), "count %d exceeds %d remaining bytes", n, d.r.Remaining())
	}
	for i := uint64(0); i < n; i++ {
		if t.Family() == FamilyArray {
			if err := d.key(depth + 1); err != nil {
				return err
			}
		}
		if err := d.value(depth+1, ""); err != nil {
			return err
		}
	}
	return nil
}

func (d *disassembler) key(depth int) error {
	b, err := d.r.PeekByte()
	if err != nil {
		return errors.Truncated(d.r.Position(), "key")
	}
	switch Tag(b).Family() {
	case FamilyInt, FamilyString, FamilyStringID, FamilyEmptyString:
		return d.value(depth, "key")
	}
	return errors.Malformed(d.r.Position(), "invalid key tag %s", Tag(b))
}

func (d *disassembler) objectBody(depth int) error {
	off := d.r.Position()
	b, err := d.r.ReadByte()
	if err != nil {
		return errors.Truncated(off, "object body")
	}
	t := Tag(b)
	switch t.Family() {
	case FamilyArray:
		n, err := d.operand(t)
		if err != nil {
			return err
		}
		d.emit(Token{Offset: off, Depth: depth + 1, Tag: t, Operand: n})
		return d.entries(t, n, depth+1)
	case FamilyObjectSer:
		n, err := d.operand(t)
		if err != nil {
			return err
		}
		payload, err := d.bytes(n, "serialized object payload")
		if err != nil {
			return err
		}
		d.emit(Token{Offset: off, Depth: depth + 1, Tag: t, Operand: n, Text: strconv.Quote(string(payload))})
		return nil
	}
	return errors.Malformed(off, "invalid object body tag %s", t)
}
