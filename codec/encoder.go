package codec

import (
	"math"

	"go.uber.org/zap"

	"github.com/wippyai/igbinary/class"
	"github.com/wippyai/igbinary/codec/internal/refs"
	"github.com/wippyai/igbinary/codec/internal/strtab"
	"github.com/wippyai/igbinary/errors"
	"github.com/wippyai/igbinary/internal/binary"
	"github.com/wippyai/igbinary/value"
	"github.com/wippyai/igbinary/wire"
)

// Encoder serializes values. It holds only immutable options and is safe
// for concurrent use; every call gets its own string table and tracker.
type Encoder struct {
	err  error
	opts Options
}

// NewEncoder returns an encoder configured by opts on top of DefaultOptions.
func NewEncoder(opts ...Option) *Encoder {
	return NewEncoderWithOptions(buildOptions(opts))
}

// NewEncoderWithOptions returns an encoder using o as given. Invalid options
// are reported by every Encode call.
func NewEncoderWithOptions(o Options) *Encoder {
	return &Encoder{opts: o, err: o.Validate()}
}

// Options returns a copy of the encoder's options.
func (e *Encoder) Options() Options { return e.opts }

// Encode serializes v into a complete stream: header plus one root value.
// On error no bytes are returned.
func (e *Encoder) Encode(v value.Value) ([]byte, error) {
	if e.err != nil {
		return nil, e.err
	}
	st := &encodeState{
		w:    binary.NewWriter(),
		ids:  refs.NewEncodeTracker(),
		opts: &e.opts,
		log:  e.opts.logger(),
	}
	if e.opts.CompactStrings {
		st.strs = strtab.New()
	}
	if err := st.value(v); err != nil {
		return nil, err
	}
	return e.frame(st.w.Bytes())
}

func (e *Encoder) frame(body []byte) ([]byte, error) {
	if e.opts.Compression != wire.CompressionNone {
		packed, err := wire.Compress(e.opts.Compression, body)
		if err != nil {
			return nil, err
		}
		if packed != nil {
			out := make([]byte, 0, wire.HeaderSize+len(packed))
			out = wire.NewHeader(e.opts.Compression).Append(out)
			return append(out, packed...), nil
		}
		e.opts.logger().Debug("body not compressible, storing uncompressed",
			zap.Stringer("compression", e.opts.Compression),
			zap.Int("size", len(body)))
	}
	out := make([]byte, 0, wire.HeaderSize+len(body))
	out = wire.NewHeader(wire.CompressionNone).Append(out)
	return append(out, body...), nil
}

type encodeState struct {
	w     *binary.Writer
	strs  *strtab.Table
	ids   *refs.EncodeTracker
	opts  *Options
	log   *zap.Logger
	path  []string
	depth int
}

func (st *encodeState) push(seg string) { st.path = append(st.path, seg) }
func (st *encodeState) pop()            { st.path = st.path[:len(st.path)-1] }

func (st *encodeState) currentPath() []string {
	return append([]string(nil), st.path...)
}

func (st *encodeState) enter() error {
	st.depth++
	if st.depth > st.opts.MaxDepth {
		return errors.New(errors.PhaseEncode, errors.KindUnsupportedValue).
			Path(st.currentPath()...).
			Value(st.depth).
			Detail("nesting exceeds max depth %d", st.opts.MaxDepth).
			Build()
	}
	return nil
}

func (st *encodeState) leave() { st.depth-- }

func (st *encodeState) tag(t wire.Tag) { st.w.Byte(byte(t)) }

func (st *encodeState) tagged(t wire.Tag, operand uint64) {
	st.w.Byte(byte(t))
	st.w.WriteUint(t.OperandSize(), operand)
}

func (st *encodeState) value(v value.Value) error {
	switch x := v.(type) {
	case nil, value.Null:
		st.tag(wire.TagNull)
	case value.Bool:
		if x {
			st.tag(wire.TagTrue)
		} else {
			st.tag(wire.TagFalse)
		}
	case value.Int:
		st.tagged(wire.IntTag(int64(x)))
	case value.Float:
		st.tag(wire.TagDouble)
		var buf [wire.DoubleSize]byte
		st.w.WriteBytes(wire.AppendDouble(buf[:0], float64(x)))
	case value.String:
		return st.string(string(x))
	case *value.Array:
		return st.array(x)
	case *value.Object:
		return st.object(x)
	case *value.Ref:
		return st.ref(x)
	case value.Resource:
		return errors.Unsupported(st.currentPath(), "resource of type "+x.Type+" cannot be serialized")
	case value.Callable:
		return errors.Unsupported(st.currentPath(), "callable "+x.Name+" cannot be serialized")
	default:
		return errors.Unsupported(st.currentPath(), "value of kind "+v.Kind().String())
	}
	return nil
}

func (st *encodeState) string(s string) error {
	if s == "" {
		st.tag(wire.TagEmptyString)
		return nil
	}
	if st.strs != nil {
		if id, seen := st.strs.Intern(s); seen {
			st.tagged(wire.StringIDTag(id), uint64(id))
			return nil
		}
	}
	if err := st.checkLength(len(s), "string length"); err != nil {
		return err
	}
	st.tagged(wire.StringTag(uint64(len(s))), uint64(len(s)))
	st.w.WriteString(s)
	return nil
}

func (st *encodeState) checkLength(n int, what string) error {
	if uint64(n) > math.MaxUint32 {
		return errors.Overflow(errors.PhaseEncode, st.currentPath(), n, what)
	}
	return nil
}

func (st *encodeState) key(k value.Key) error {
	if k.IsString() {
		return st.string(k.Str())
	}
	st.tagged(wire.IntTag(k.Int()))
	return nil
}

func (st *encodeState) ref(r *value.Ref) error {
	if id, ok := st.ids.Lookup(r); ok {
		st.tagged(wire.SharedRefTag(id), uint64(id))
		return nil
	}
	st.ids.Assign(r)
	if err := st.enter(); err != nil {
		return err
	}
	defer st.leave()
	st.tag(wire.TagRef)
	return st.value(r.Get())
}

func (st *encodeState) array(a *value.Array) error {
	if id, ok := st.ids.Lookup(a.Identity()); ok {
		st.tagged(wire.ValueRefTag(id), uint64(id))
		return nil
	}
	st.ids.Assign(a.Identity())
	if err := st.enter(); err != nil {
		return err
	}
	defer st.leave()

	n := a.Len()
	if err := st.checkLength(n, "array size"); err != nil {
		return err
	}
	if a.IsList() {
		st.tagged(wire.ListTag(uint64(n)), uint64(n))
		for k, v := range a.All() {
			st.push(k.PathSegment())
			if err := st.value(v); err != nil {
				return err
			}
			st.pop()
		}
		return nil
	}

	st.tagged(wire.ArrayTag(uint64(n)), uint64(n))
	for k, v := range a.All() {
		if err := st.key(k); err != nil {
			return err
		}
		st.push(k.PathSegment())
		if err := st.value(v); err != nil {
			return err
		}
		st.pop()
	}
	return nil
}

func (st *encodeState) object(o *value.Object) error {
	if id, ok := st.ids.Lookup(o); ok {
		st.tagged(wire.ValueRefTag(id), uint64(id))
		return nil
	}
	st.ids.Assign(o)
	if err := st.enter(); err != nil {
		return err
	}
	defer st.leave()

	typ, _ := st.opts.Classes.Lookup(o.Class)

	// The payload is produced before anything about the object is written so
	// a failing hook leaves no class name in the string table.
	payload, custom, err := st.customPayload(o, typ)
	if err != nil {
		return err
	}
	var keys []value.Key
	if !custom {
		keys, err = st.exportedKeys(o, typ)
		if err != nil {
			return err
		}
	}

	if err := st.className(o.Class); err != nil {
		return err
	}

	if custom {
		if err := st.checkLength(len(payload), "serialized object payload"); err != nil {
			return err
		}
		st.tagged(wire.ObjectSerTag(uint64(len(payload))), uint64(len(payload)))
		st.w.WriteBytes(payload)
		return nil
	}

	st.tagged(wire.ArrayTag(uint64(len(keys))), uint64(len(keys)))
	for _, k := range keys {
		v, _ := o.Get(k)
		if err := st.key(k); err != nil {
			return err
		}
		st.push(k.PathSegment())
		if err := st.value(v); err != nil {
			return err
		}
		st.pop()
	}
	return nil
}

func (st *encodeState) className(name string) error {
	if st.strs != nil && name != "" {
		if id, seen := st.strs.Intern(name); seen {
			st.tagged(wire.ObjectIDTag(id), uint64(id))
			return nil
		}
	}
	if err := st.checkLength(len(name), "class name length"); err != nil {
		return err
	}
	st.tagged(wire.ObjectTag(uint64(len(name))), uint64(len(name)))
	st.w.WriteString(name)
	return nil
}

// customPayload returns the opaque payload of an object whose class owns its
// wire format, or of a decoded object that kept one.
func (st *encodeState) customPayload(o *value.Object, typ *class.Type) ([]byte, bool, error) {
	if typ != nil && typ.Serialize != nil {
		data, err := typ.Serialize(o)
		if err != nil {
			return nil, false, errors.HookFailed(errors.PhaseEncode, st.currentPath(), o.Class, "serialize", err)
		}
		return data, true, nil
	}
	if o.Serialized != nil {
		return o.Serialized, true, nil
	}
	return nil, false, nil
}

func (st *encodeState) exportedKeys(o *value.Object, typ *class.Type) ([]value.Key, error) {
	if typ == nil || typ.Sleep == nil {
		return o.Keys(), nil
	}
	names, err := typ.Sleep(o)
	if err != nil {
		return nil, errors.HookFailed(errors.PhaseEncode, st.currentPath(), o.Class, "__sleep", err)
	}
	return class.SelectProperties(o, names, st.log), nil
}
