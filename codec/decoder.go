package codec

import (
	"go.uber.org/zap"

	"github.com/wippyai/igbinary/class"
	"github.com/wippyai/igbinary/codec/internal/refs"
	"github.com/wippyai/igbinary/codec/internal/strtab"
	"github.com/wippyai/igbinary/errors"
	"github.com/wippyai/igbinary/internal/binary"
	"github.com/wippyai/igbinary/value"
	"github.com/wippyai/igbinary/wire"
)

// Decoder deserializes streams. It holds only immutable options and is safe
// for concurrent use; every call gets its own string list, identity table,
// class resolver and teardown list.
type Decoder struct {
	err  error
	opts Options
}

// NewDecoder returns a decoder configured by opts on top of DefaultOptions.
func NewDecoder(opts ...Option) *Decoder {
	return NewDecoderWithOptions(buildOptions(opts))
}

// NewDecoderWithOptions returns a decoder using o as given. Invalid options
// are reported by every Decode call.
func NewDecoderWithOptions(o Options) *Decoder {
	return &Decoder{opts: o, err: o.Validate()}
}

// Options returns a copy of the decoder's options.
func (d *Decoder) Options() Options { return d.opts }

// Decode parses one stream. Either the complete value is returned or an
// error and a nil value; on error, objects of this call that were already
// finalized are destructed before Decode returns.
func (d *Decoder) Decode(data []byte) (value.Value, error) {
	if d.err != nil {
		return nil, d.err
	}
	h, err := wire.ParseHeader(data)
	if err != nil {
		return nil, err
	}

	body := data[wire.HeaderSize:]
	base := wire.HeaderSize
	if c := h.Flags.Compression(); c != wire.CompressionNone {
		body, err = wire.Decompress(c, body, d.opts.MaxPayload)
		if err != nil {
			return nil, err
		}
		base = 0
	}

	log := d.opts.logger()
	st := &decodeState{
		r:        binary.NewReader(body),
		ids:      refs.NewDecodeTable(),
		resolver: class.NewResolver(d.opts.Classes, d.opts.Autoloader, log),
		opts:     &d.opts,
		log:      log,
		base:     base,
		td:       teardown{log: log},
	}

	v, err := st.value()
	if err == nil && st.r.Remaining() > 0 {
		err = st.malformed("%d trailing bytes after root value", st.r.Remaining())
	}
	if err != nil {
		st.td.run()
		return nil, err
	}
	return v, nil
}

type decodeState struct {
	r        *binary.Reader
	strs     strtab.List
	ids      *refs.DecodeTable
	resolver *class.Resolver
	opts     *Options
	log      *zap.Logger
	td       teardown
	path     []string
	base     int
	depth    int
}

func (st *decodeState) offset() int { return st.base + st.r.Position() }

func (st *decodeState) push(seg string) { st.path = append(st.path, seg) }
func (st *decodeState) pop()            { st.path = st.path[:len(st.path)-1] }

func (st *decodeState) currentPath() []string {
	return append([]string(nil), st.path...)
}

func (st *decodeState) malformed(format string, args ...any) error {
	e := errors.Malformed(st.offset(), format, args...)
	e.Path = st.currentPath()
	return e
}

func (st *decodeState) truncated(what string) error {
	e := errors.Truncated(st.offset(), what)
	e.Path = st.currentPath()
	return e
}

func (st *decodeState) enter() error {
	st.depth++
	if st.depth > st.opts.MaxDepth {
		return st.malformed("nesting exceeds max depth %d", st.opts.MaxDepth)
	}
	return nil
}

func (st *decodeState) leave() { st.depth-- }

func (st *decodeState) readTag() (wire.Tag, int, error) {
	off := st.offset()
	b, err := st.r.ReadByte()
	if err != nil {
		return 0, off, st.truncated("tag")
	}
	t := wire.Tag(b)
	if !t.Valid() {
		e := errors.UnknownTag(off, b)
		e.Path = st.currentPath()
		return 0, off, e
	}
	return t, off, nil
}

func (st *decodeState) operand(t wire.Tag) (uint64, error) {
	v, err := st.r.ReadUint(t.OperandSize())
	if err != nil {
		return 0, st.truncated(t.String() + " operand")
	}
	return v, nil
}

func (st *decodeState) bytes(n uint64, what string) ([]byte, error) {
	if n > uint64(st.r.Remaining()) {
		return nil, st.truncated(what)
	}
	return st.r.ReadBytes(int(n))
}

// count reads an element count and checks it against the remaining input
// before anything is allocated. Each element needs at least minSize bytes.
func (st *decodeState) count(t wire.Tag, minSize uint64) (int, error) {
	n, err := st.operand(t)
	if err != nil {
		return 0, err
	}
	if n*minSize > uint64(st.r.Remaining()) {
		return 0, st.malformed("%s count %d exceeds %d remaining bytes", t, n, st.r.Remaining())
	}
	return int(n), nil
}

func (st *decodeState) inlineString(t wire.Tag, what string) (string, error) {
	n, err := st.operand(t)
	if err != nil {
		return "", err
	}
	b, err := st.bytes(n, what)
	if err != nil {
		return "", err
	}
	s := string(b)
	if s != "" {
		st.strs.Add(s)
	}
	return s, nil
}

func (st *decodeState) stringID(t wire.Tag) (string, error) {
	off := st.offset()
	id, err := st.operand(t)
	if err != nil {
		return "", err
	}
	s, ok := st.strs.Get(uint32(id))
	if !ok {
		e := errors.Malformed(off, "string id %d out of range (%d strings)", id, st.strs.Len())
		e.Path = st.currentPath()
		return "", e
	}
	return s, nil
}

func (st *decodeState) value() (value.Value, error) {
	t, off, err := st.readTag()
	if err != nil {
		return nil, err
	}

	switch t.Family() {
	case wire.FamilyNull:
		return value.Null{}, nil
	case wire.FamilyBool:
		return value.Bool(t == wire.TagTrue), nil
	case wire.FamilyInt:
		m, err := st.operand(t)
		if err != nil {
			return nil, err
		}
		i, ok := wire.IntFromMagnitude(t, m)
		if !ok {
			return nil, st.malformed("%s magnitude %d overflows int64", t, m)
		}
		return value.Int(i), nil
	case wire.FamilyDouble:
		b, err := st.bytes(wire.DoubleSize, "double")
		if err != nil {
			return nil, err
		}
		return value.FloatFromBits(wire.DoubleBits(b)), nil
	case wire.FamilyEmptyString:
		return value.String(""), nil
	case wire.FamilyString:
		s, err := st.inlineString(t, "string")
		return value.String(s), err
	case wire.FamilyStringID:
		s, err := st.stringID(t)
		return value.String(s), err
	case wire.FamilyList, wire.FamilyArray:
		return st.array(t)
	case wire.FamilyObject, wire.FamilyObjectID:
		return st.object(t)
	case wire.FamilyRef:
		return st.ref()
	case wire.FamilyValueRef:
		return st.valueRef(t, off)
	case wire.FamilySharedRef:
		return st.sharedRef(t, off)
	}
	e := errors.New(errors.PhaseDecode, errors.KindMalformedInput).
		Path(st.currentPath()...).
		Offset(off).
		Tag(t.String()).
		Detail("tag not valid as a value").
		Build()
	return nil, e
}

func (st *decodeState) lookup(t wire.Tag, off int) (value.Value, error) {
	id, err := st.operand(t)
	if err != nil {
		return nil, err
	}
	h, ok := st.ids.Get(uint32(id))
	if !ok {
		e := errors.DanglingReference(off, uint32(id), st.ids.Len())
		e.Path = st.currentPath()
		e.Tag = t.String()
		return nil, e
	}
	return h, nil
}

func (st *decodeState) valueRef(t wire.Tag, off int) (value.Value, error) {
	h, err := st.lookup(t, off)
	if err != nil {
		return nil, err
	}
	switch x := h.(type) {
	case *value.Array:
		return x.Share(), nil
	case *value.Object:
		return x, nil
	}
	return nil, st.malformed("%s targets a %s", t, h.Kind())
}

func (st *decodeState) sharedRef(t wire.Tag, off int) (value.Value, error) {
	h, err := st.lookup(t, off)
	if err != nil {
		return nil, err
	}
	if r, ok := h.(*value.Ref); ok {
		return r, nil
	}
	return nil, st.malformed("%s targets a %s", t, h.Kind())
}

func (st *decodeState) ref() (value.Value, error) {
	r := value.NewRef(nil)
	st.ids.Assign(r)
	if err := st.enter(); err != nil {
		return nil, err
	}
	defer st.leave()

	v, err := st.value()
	if err != nil {
		return nil, err
	}
	r.Set(v)
	return r, nil
}

func (st *decodeState) key() (value.Key, error) {
	t, _, err := st.readTag()
	if err != nil {
		return value.Key{}, err
	}
	switch t.Family() {
	case wire.FamilyInt:
		m, err := st.operand(t)
		if err != nil {
			return value.Key{}, err
		}
		i, ok := wire.IntFromMagnitude(t, m)
		if !ok {
			return value.Key{}, st.malformed("%s key magnitude %d overflows int64", t, m)
		}
		return value.IntKey(i), nil
	case wire.FamilyEmptyString:
		return value.StrKey(""), nil
	case wire.FamilyString:
		s, err := st.inlineString(t, "key")
		return value.StrKey(s), err
	case wire.FamilyStringID:
		s, err := st.stringID(t)
		return value.StrKey(s), err
	}
	return value.Key{}, st.malformed("%s is not a valid key tag", t)
}

// entries reads count key/value pairs into insert.
func (st *decodeState) entries(n int, insert func(value.Key, value.Value) bool) error {
	for i := 0; i < n; i++ {
		k, err := st.key()
		if err != nil {
			return err
		}
		st.push(k.PathSegment())
		v, err := st.value()
		if err != nil {
			return err
		}
		if !insert(k, v) {
			return st.malformed("duplicate key %s", k)
		}
		st.pop()
	}
	return nil
}

func (st *decodeState) array(t wire.Tag) (value.Value, error) {
	list := t.Family() == wire.FamilyList
	minSize := uint64(2)
	if list {
		minSize = 1
	}
	n, err := st.count(t, minSize)
	if err != nil {
		return nil, err
	}

	// The representation is fixed here, before any child can bind to a slot.
	a := value.NewArrayCap(n)
	st.ids.Assign(a)
	if err := st.enter(); err != nil {
		return nil, err
	}
	defer st.leave()

	if !list {
		if err := st.entries(n, a.Insert); err != nil {
			return nil, err
		}
		return a, nil
	}
	for i := 0; i < n; i++ {
		k := value.IntKey(int64(i))
		st.push(k.PathSegment())
		v, err := st.value()
		if err != nil {
			return nil, err
		}
		a.Insert(k, v)
		st.pop()
	}
	return a, nil
}

func (st *decodeState) object(t wire.Tag) (value.Value, error) {
	var (
		name string
		err  error
	)
	if t.Family() == wire.FamilyObject {
		name, err = st.inlineString(t, "class name")
	} else {
		name, err = st.stringID(t)
	}
	if err != nil {
		return nil, err
	}

	typ, _ := st.resolver.Resolve(name)
	lc := &lifecycle{obj: value.NewObject(name), typ: typ}
	st.ids.Assign(lc.obj)
	if err := st.enter(); err != nil {
		return nil, err
	}
	defer st.leave()

	bt, _, err := st.readTag()
	if err != nil {
		return nil, err
	}
	switch bt.Family() {
	case wire.FamilyArray:
		n, err := st.count(bt, 2)
		if err != nil {
			return nil, err
		}
		if err := st.entries(n, lc.obj.Insert); err != nil {
			return nil, err
		}
		if err := lc.propertiesAssigned(st.currentPath()); err != nil {
			return nil, err
		}
	case wire.FamilyObjectSer:
		n, err := st.operand(bt)
		if err != nil {
			return nil, err
		}
		data, err := st.bytes(n, "serialized object payload")
		if err != nil {
			return nil, err
		}
		if err := lc.customPayload(st.currentPath(), data, st.log); err != nil {
			return nil, err
		}
	default:
		return nil, st.malformed("%s is not a valid object body for class %q", bt, name)
	}

	if !st.td.register(lc) {
		return nil, st.malformed("object of class %q left in state %s", name, lc.state)
	}
	return lc.obj, nil
}
