package codec

import (
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"

	igerrors "github.com/wippyai/igbinary/errors"
	"github.com/wippyai/igbinary/value"
)

func TestRoundTripScalars(t *testing.T) {
	tests := []struct {
		name string
		v    value.Value
	}{
		{"null", value.Null{}},
		{"true", value.Bool(true)},
		{"false", value.Bool(false)},
		{"max int64", value.Int(math.MaxInt64)},
		{"min int64", value.Int(math.MinInt64)},
		{"neg 32 boundary", value.Int(-4294967295)},
		{"neg 64 boundary", value.Int(-4294967296)},
		{"pos 16 boundary", value.Int(65535)},
		{"negative zero", value.Float(math.Copysign(0, -1))},
		{"subnormal", value.FloatFromBits(0x0000000000000001)},
		{"nan payload", value.FloatFromBits(0x7ff8dead0000beef)},
		{"inf", value.Float(math.Inf(-1))},
		{"binary string", value.String("a\x00b\xff")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := Encode(tt.v)
			if err != nil {
				t.Fatalf("Encode: %v", err)
			}
			got, err := Decode(data)
			if err != nil {
				t.Fatalf("Decode: %v", err)
			}
			if !value.Equal(tt.v, got) {
				t.Errorf("Decode = %v, want %v", got, tt.v)
			}
		})
	}
}

func TestDecodeNull(t *testing.T) {
	data, err := Encode(value.Null{})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	got, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got.Kind() != value.KindNull {
		t.Errorf("Decode = %v", got)
	}
}

func TestDecodeNegativeInt(t *testing.T) {
	data, err := Encode(value.Int(-100000))
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if len(data) != 4+1+4 {
		t.Errorf("stream length = %d, want int32 width", len(data))
	}
	got, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got != value.Int(-100000) {
		t.Errorf("Decode = %v", got)
	}
}

func TestDecodeRepeatedStrings(t *testing.T) {
	got, err := Decode(stream(0x26, 0x03, 0x11, 0x01, 'a', 0x0e, 0x00, 0x0e, 0x00))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	a := got.(*value.Array)
	want := []any{"a", "a", "a"}
	if diff := cmp.Diff(want, value.ToGo(a)); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeSelfReference(t *testing.T) {
	r := value.NewRef(nil)
	r.Set(value.List(r))
	data, err := Encode(r)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	got, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	root, ok := got.(*value.Ref)
	if !ok {
		t.Fatalf("root = %T", got)
	}
	a := root.Get().(*value.Array)
	elem, _ := a.Get(value.IntKey(0))
	if elem != root {
		t.Fatalf("element 0 is not the root reference")
	}
	if value.Deref(elem) != a {
		t.Fatalf("element 0 does not point at its container")
	}

	// Writing element 0 goes through the reference and replaces the container.
	a.Set(value.IntKey(0), value.Int(7))
	if root.Get() != value.Int(7) {
		t.Errorf("container = %v after writing element 0", root.Get())
	}
}

func TestDecodeAliasing(t *testing.T) {
	t.Run("value ref to array is copy on write", func(t *testing.T) {
		a := value.List(value.Int(1))
		data, err := Encode(value.List(a, a.Share()))
		if err != nil {
			t.Fatalf("Encode: %v", err)
		}
		got, err := Decode(data)
		if err != nil {
			t.Fatalf("Decode: %v", err)
		}
		root := got.(*value.Array)
		_, first := root.At(0)
		_, second := root.At(1)
		x, y := first.(*value.Array), second.(*value.Array)
		if x.Identity() != y.Identity() {
			t.Fatal("aliases do not share storage")
		}
		y.Set(value.IntKey(0), value.Int(2))
		if v, _ := x.Get(value.IntKey(0)); v != value.Int(1) {
			t.Errorf("write through alias leaked: %v", v)
		}
	})

	t.Run("value ref to object is the same handle", func(t *testing.T) {
		o := value.NewObject(value.StdClass)
		o.SetProp("self", o)
		data, err := Encode(value.List(o, o))
		if err != nil {
			t.Fatalf("Encode: %v", err)
		}
		got, err := Decode(data)
		if err != nil {
			t.Fatalf("Decode: %v", err)
		}
		root := got.(*value.Array)
		_, first := root.At(0)
		_, second := root.At(1)
		if first != second {
			t.Fatal("object aliases are distinct handles")
		}
		self, _ := first.(*value.Object).Prop("self")
		if self != first {
			t.Error("object cycle not restored")
		}
	})

	t.Run("shared ref", func(t *testing.T) {
		r := value.NewRef(value.Int(1))
		o := value.NewObject("Holder")
		o.SetProp("r", r)
		data, err := Encode(value.List(r, r, o))
		if err != nil {
			t.Fatalf("Encode: %v", err)
		}
		got, err := Decode(data)
		if err != nil {
			t.Fatalf("Decode: %v", err)
		}
		root := got.(*value.Array)
		root.Set(value.IntKey(0), value.Int(9))
		for _, k := range []value.Key{value.IntKey(0), value.IntKey(1)} {
			v, _ := root.Get(k)
			if value.Deref(v) != value.Int(9) {
				t.Errorf("slot %s = %v", k, value.Deref(v))
			}
		}
		holder, _ := root.Get(value.IntKey(2))
		inner, _ := holder.(*value.Object).Prop("r")
		if value.Deref(inner) != value.Int(9) {
			t.Errorf("object property = %v", value.Deref(inner))
		}
	})
}

func TestDecodeIntegerPropertyKeys(t *testing.T) {
	o := value.NewObject(value.StdClass)
	o.Set(value.IntKey(0), value.String("zero"))
	o.Set(value.IntKey(-3), value.String("neg"))
	o.SetProp("1x", value.Null{})

	data, err := Encode(o)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	got, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if diff := cmp.Diff(o.Keys(), got.(*value.Object).Keys(), cmp.AllowUnexported(value.Key{})); diff != "" {
		t.Errorf("keys mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeSparseStaysSparse(t *testing.T) {
	a := value.NewArray()
	a.Set(value.IntKey(1), value.Int(1))
	a.Set(value.IntKey(0), value.Int(0))
	data, err := Encode(a)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	got, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got.(*value.Array).IsList() {
		t.Error("out of order keys decoded as a list")
	}
	if !value.Equal(a, got) {
		t.Error("round trip mismatch")
	}
}

func TestDecodeManyStrings(t *testing.T) {
	// More distinct strings than the table's initial capacity, each repeated.
	a := value.NewArray()
	for i := 0; i < 300; i++ {
		a.Append(value.String(string(rune('A'+i%26)) + string(rune('a'+i/26))))
	}
	for i := 0; i < 300; i++ {
		_, v := a.At(i)
		a.Append(v)
	}
	data, err := Encode(a)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	got, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !value.Equal(a, got) {
		t.Error("round trip mismatch")
	}
}

func TestDecodeMalformed(t *testing.T) {
	tests := []struct {
		name   string
		data   []byte
		offset int
	}{
		{"empty", nil, 0},
		{"short header", []byte{0x02, 0x00}, 2},
		{"bad version", []byte{0x01, 0x00, 0x00, 0x00, 0x00}, 0},
		{"unknown flags", []byte{0x02, 0x80, 0x00, 0x00, 0x00}, 1},
		{"reserved bytes", []byte{0x02, 0x00, 0x01, 0x00, 0x00}, 2},
		{"no root", stream(), 4},
		{"trailing bytes", stream(0x00, 0x00), 5},
		{"unknown tag", stream(0xff), 4},
		{"truncated string", stream(0x11, 0x05, 'a'), 6},
		{"truncated operand", stream(0x0a, 0x00), 5},
		{"truncated double", stream(0x0c, 0x00, 0x00), 5},
		{"string id out of range", stream(0x0e, 0x00), 5},
		{"dangling value ref", stream(0x26, 0x01, 0x22, 0x05), 6},
		{"value ref to ref", stream(0x25, 0x22, 0x00), 7},
		{"shared ref to array", stream(0x26, 0x01, 0x01, 0x00), 8},
		{"null key", stream(0x14, 0x01, 0x00, 0x00), 7},
		{"array key", stream(0x14, 0x01, 0x26, 0x00, 0x00), 7},
		{"duplicate key", stream(0x14, 0x02, 0x06, 0x01, 0x00, 0x06, 0x01, 0x00), 12},
		{"huge count", stream(0x16, 0xff, 0xff, 0xff, 0xff), 9},
		{"list count exceeds input", stream(0x26, 0x03, 0x00), 6},
		{"bad object body", stream(0x17, 0x01, 'A', 0x00), 8},
		{"object ser outside object", stream(0x1d, 0x00), 4},
		{"int64 overflow", stream(0x20, 0x80, 0, 0, 0, 0, 0, 0, 0), 13},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode(tt.data)
			if got != nil {
				t.Errorf("Decode returned a value: %v", got)
			}
			if !errors.Is(err, igerrors.ErrMalformedInput) {
				t.Fatalf("err = %v, want malformed input", err)
			}
			var e *igerrors.Error
			if !errors.As(err, &e) {
				t.Fatalf("err is %T", err)
			}
			if e.Offset != tt.offset {
				t.Errorf("offset = %d, want %d (%v)", e.Offset, tt.offset, err)
			}
		})
	}
}

func TestDecodeErrorPath(t *testing.T) {
	data := stream(
		0x14, 0x01,
		0x11, 0x05, 'i', 't', 'e', 'm', 's',
		0x26, 0x02, 0x00, 0xee,
	)
	_, err := Decode(data)
	var e *igerrors.Error
	if !errors.As(err, &e) {
		t.Fatalf("err = %v", err)
	}
	if got := igerrors.JoinPath(e.Path); got != "items[1]" {
		t.Errorf("path = %q", got)
	}
}

func TestDecodeMaxDepth(t *testing.T) {
	var v value.Value = value.Null{}
	for i := 0; i < 10; i++ {
		v = value.List(v)
	}
	data, err := Encode(v)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if _, err := Decode(data, WithMaxDepth(10)); err != nil {
		t.Fatalf("depth 10: %v", err)
	}
	if _, err := Decode(data, WithMaxDepth(9)); !errors.Is(err, igerrors.ErrMalformedInput) {
		t.Errorf("depth 9: err = %v", err)
	}
}

func TestDecoderReuse(t *testing.T) {
	dec := NewDecoder()
	first, err := dec.Decode(stream(0x11, 0x01, 'x'))
	if err != nil {
		t.Fatalf("first: %v", err)
	}
	// String ids are per call, so the second stream cannot see "x".
	if _, err := dec.Decode(stream(0x0e, 0x00)); err == nil {
		t.Error("string table leaked between calls")
	}
	if first != value.String("x") {
		t.Errorf("first = %v", first)
	}
}
