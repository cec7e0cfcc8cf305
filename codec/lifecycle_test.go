package codec

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/wippyai/igbinary/class"
	igerrors "github.com/wippyai/igbinary/errors"
	"github.com/wippyai/igbinary/value"
)

func observed() (*zap.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return zap.New(core), logs
}

func names(ss ...string) []value.Value {
	out := make([]value.Value, len(ss))
	for i, s := range ss {
		out[i] = value.String(s)
	}
	return out
}

func TestSleepSelectsFields(t *testing.T) {
	typ := &class.Type{
		Name:   "Foo",
		Fields: []string{"a", "b", "c"},
		Sleep: func(*value.Object) ([]value.Value, error) {
			return names("a", "b"), nil
		},
	}
	reg := class.MustRegistry(typ)

	o := typ.New()
	o.SetProp("a", value.Int(1))
	o.SetProp("b", value.Int(2))
	o.SetProp("c", value.Int(3))

	data, err := Encode(o, WithClasses(reg))
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	got, err := Decode(data, WithClasses(reg))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	obj := got.(*value.Object)
	want := map[string]any{"@class": "Foo", "a": int64(1), "b": int64(2)}
	if diff := cmp.Diff(want, value.ToGo(obj)); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
	if obj.Has(value.StrKey("c")) {
		t.Error("c populated although not exported")
	}
}

func TestSleepWarnings(t *testing.T) {
	log, logs := observed()
	typ := &class.Type{
		Name: "Foo",
		Sleep: func(*value.Object) ([]value.Value, error) {
			return []value.Value{value.Int(5), value.String("missing"), value.String("prot"), value.String("priv")}, nil
		},
	}
	o := value.NewObject("Foo")
	o.SetProp(value.ProtectedName("prot"), value.Int(1))
	o.SetProp(value.PrivateName("Foo", "priv"), value.Int(2))

	data, err := Encode(o, WithClasses(class.MustRegistry(typ)), WithLogger(log))
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if n := logs.FilterMessageSnippet("__sleep should return").Len(); n != 1 {
		t.Errorf("non-string warnings = %d", n)
	}
	if n := logs.FilterMessageSnippet("does not exist").Len(); n != 1 {
		t.Errorf("missing property warnings = %d", n)
	}

	got, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	keys := got.(*value.Object).Keys()
	want := []value.Key{
		value.StrKey(value.ProtectedName("prot")),
		value.StrKey(value.PrivateName("Foo", "priv")),
	}
	if diff := cmp.Diff(want, keys, cmp.AllowUnexported(value.Key{})); diff != "" {
		t.Errorf("keys mismatch (-want +got):\n%s", diff)
	}
}

func TestEncodeHookFailures(t *testing.T) {
	boom := errors.New("boom")
	tests := []struct {
		name string
		typ  *class.Type
		hook string
	}{
		{
			name: "sleep",
			typ:  &class.Type{Name: "Foo", Sleep: func(*value.Object) ([]value.Value, error) { return nil, boom }},
			hook: "__sleep",
		},
		{
			name: "serialize",
			typ:  &class.Type{Name: "Foo", Serialize: func(*value.Object) ([]byte, error) { return nil, boom }},
			hook: "serialize",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := value.List(value.Int(1), value.NewObject("Foo"))
			data, err := Encode(v, WithClasses(class.MustRegistry(tt.typ)))
			if data != nil {
				t.Errorf("partial output % x", data)
			}
			if !errors.Is(err, igerrors.ErrHookFailure) {
				t.Fatalf("err = %v, want hook failure", err)
			}
			if !errors.Is(err, boom) {
				t.Errorf("cause not wrapped: %v", err)
			}
			if !strings.Contains(err.Error(), tt.hook) {
				t.Errorf("error %q does not name %s", err, tt.hook)
			}
		})
	}
}

func pointType() *class.Type {
	return &class.Type{
		Name: "Point",
		Serialize: func(o *value.Object) ([]byte, error) {
			x, _ := o.Prop("x")
			y, _ := o.Prop("y")
			return fmt.Appendf(nil, "%v,%v", x, y), nil
		},
		Unserialize: func(o *value.Object, data []byte) error {
			var x, y int64
			if _, err := fmt.Sscanf(string(data), "%d,%d", &x, &y); err != nil {
				return err
			}
			o.SetProp("x", value.Int(x))
			o.SetProp("y", value.Int(y))
			return nil
		},
	}
}

func TestCustomWire(t *testing.T) {
	reg := class.MustRegistry(pointType())
	p := value.NewObject("Point")
	p.SetProp("x", value.Int(3))
	p.SetProp("y", value.Int(-4))

	data, err := Encode(p, WithClasses(reg))
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	want := stream(0x17, 0x05, 'P', 'o', 'i', 'n', 't', 0x1d, 0x04, '3', ',', '-', '4')
	if !bytes.Equal(data, want) {
		t.Fatalf("Encode = % x, want % x", data, want)
	}

	got, err := Decode(data, WithClasses(reg))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !value.Equal(p, got) {
		t.Errorf("Decode = %v", value.ToGo(got))
	}
}

func TestCustomWireUnresolvedKeepsPayload(t *testing.T) {
	p := value.NewObject("Point")
	p.SetProp("x", value.Int(1))
	p.SetProp("y", value.Int(2))
	data, err := Encode(p, WithClasses(class.MustRegistry(pointType())))
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	log, logs := observed()
	got, err := Decode(data, WithLogger(log))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	obj := got.(*value.Object)
	if string(obj.Serialized) != "1,2" || obj.Len() != 0 {
		t.Errorf("object = %q with %d props", obj.Serialized, obj.Len())
	}
	if logs.FilterField(zap.String("class", "Point")).Len() == 0 {
		t.Error("no warning for unresolved class")
	}

	again, err := Encode(obj)
	if err != nil {
		t.Fatalf("re-encode: %v", err)
	}
	if !bytes.Equal(data, again) {
		t.Errorf("re-encode = % x, want % x", again, data)
	}

	// A registered class without an unserialize hook also keeps the bytes.
	log, logs = observed()
	reg := class.MustRegistry(&class.Type{Name: "Point"})
	got, err = Decode(data, WithClasses(reg), WithLogger(log))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if string(got.(*value.Object).Serialized) != "1,2" {
		t.Error("payload dropped")
	}
	if logs.FilterMessageSnippet("no unserialize hook").Len() != 1 {
		t.Error("missing warning for class without unserialize hook")
	}
}

// recorder collects destructor calls in order.
type recorder struct {
	destructed []string
}

func (r *recorder) typ(name string) *class.Type {
	return &class.Type{
		Name: name,
		Destruct: func(o *value.Object) {
			id, _ := o.Prop("id")
			r.destructed = append(r.destructed, fmt.Sprintf("%s:%v", o.Class, value.Deref(id)))
		},
	}
}

func obj(name string, id int64) *value.Object {
	o := value.NewObject(name)
	o.SetProp("id", value.Int(id))
	return o
}

func TestWakeup(t *testing.T) {
	t.Run("mutates properties", func(t *testing.T) {
		typ := &class.Type{
			Name: "Conn",
			Wakeup: func(o *value.Object) error {
				o.SetProp("open", value.Bool(true))
				o.SetProp("list", value.List(value.Int(1)))
				return nil
			},
		}
		reg := class.MustRegistry(typ)
		data, err := Encode(obj("Conn", 1))
		if err != nil {
			t.Fatalf("Encode: %v", err)
		}
		got, err := Decode(data, WithClasses(reg))
		if err != nil {
			t.Fatalf("Decode: %v", err)
		}
		want := map[string]any{"@class": "Conn", "id": int64(1), "open": true, "list": []any{int64(1)}}
		if diff := cmp.Diff(want, value.ToGo(got)); diff != "" {
			t.Errorf("mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("writes through bound references", func(t *testing.T) {
		typ := &class.Type{
			Name: "Pair",
			Wakeup: func(o *value.Object) error {
				o.SetProp("a", value.Int(42))
				return nil
			},
		}
		r := value.NewRef(value.Int(1))
		o := value.NewObject("Pair")
		o.SetProp("a", r)
		o.SetProp("b", r)
		data, err := Encode(o)
		if err != nil {
			t.Fatalf("Encode: %v", err)
		}
		got, err := Decode(data, WithClasses(class.MustRegistry(typ)))
		if err != nil {
			t.Fatalf("Decode: %v", err)
		}
		b, _ := got.(*value.Object).Prop("b")
		if value.Deref(b) != value.Int(42) {
			t.Errorf("b = %v", value.Deref(b))
		}
	})

	t.Run("copies stay independent", func(t *testing.T) {
		typ := &class.Type{
			Name: "Box",
			Wakeup: func(o *value.Object) error {
				v, _ := o.Prop("items")
				v.(*value.Array).Append(value.String("woke"))
				return nil
			},
		}
		items := value.List(value.Int(1))
		o := value.NewObject("Box")
		o.SetProp("items", items)
		data, err := Encode(value.List(items.Share(), o))
		if err != nil {
			t.Fatalf("Encode: %v", err)
		}
		got, err := Decode(data, WithClasses(class.MustRegistry(typ)))
		if err != nil {
			t.Fatalf("Decode: %v", err)
		}
		want := []any{
			[]any{int64(1)},
			map[string]any{"@class": "Box", "items": []any{int64(1), "woke"}},
		}
		if diff := cmp.Diff(want, value.ToGo(got)); diff != "" {
			t.Errorf("mismatch (-want +got):\n%s", diff)
		}
	})
}

func TestDecodeFailureTeardown(t *testing.T) {
	boom := errors.New("boom")
	tests := []struct {
		name       string
		failing    func(rec *recorder) *class.Type
		hook       string
		destructed []string
	}{
		{
			name: "wakeup",
			failing: func(rec *recorder) *class.Type {
				typ := rec.typ("Bad")
				typ.Wakeup = func(*value.Object) error { return boom }
				return typ
			},
			hook:       "__wakeup",
			destructed: []string{"Good:2", "Good:1"},
		},
		{
			name: "unserialize",
			failing: func(rec *recorder) *class.Type {
				typ := rec.typ("Bad")
				typ.Serialize = func(*value.Object) ([]byte, error) { return []byte("x"), nil }
				typ.Unserialize = func(*value.Object, []byte) error { return boom }
				return typ
			},
			hook:       "unserialize",
			destructed: []string{"Good:2", "Good:1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &recorder{}
			reg := class.MustRegistry(rec.typ("Good"), tt.failing(rec))

			root := value.List(obj("Good", 1), obj("Good", 2), obj("Bad", 3), obj("Good", 4))
			data, err := Encode(root, WithClasses(reg))
			if err != nil {
				t.Fatalf("Encode: %v", err)
			}

			got, err := Decode(data, WithClasses(reg))
			if got != nil {
				t.Errorf("Decode returned a value: %v", got)
			}
			if !errors.Is(err, igerrors.ErrHookFailure) || !errors.Is(err, boom) {
				t.Fatalf("err = %v", err)
			}
			if !strings.Contains(err.Error(), tt.hook) {
				t.Errorf("error %q does not name %s", err, tt.hook)
			}
			if diff := cmp.Diff(tt.destructed, rec.destructed); diff != "" {
				t.Errorf("destruct order mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDecodeMalformedTeardown(t *testing.T) {
	rec := &recorder{}
	reg := class.MustRegistry(rec.typ("Good"))
	data, err := Encode(value.List(obj("Good", 1)), WithClasses(reg))
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	data = append(data, 0x00)

	if _, err := Decode(data, WithClasses(reg)); !errors.Is(err, igerrors.ErrMalformedInput) {
		t.Fatalf("err = %v", err)
	}
	if diff := cmp.Diff([]string{"Good:1"}, rec.destructed); diff != "" {
		t.Errorf("destruct mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeSuccessNoTeardown(t *testing.T) {
	rec := &recorder{}
	reg := class.MustRegistry(rec.typ("Good"))
	data, err := Encode(value.List(obj("Good", 1), obj("Good", 2)), WithClasses(reg))
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if _, err := Decode(data, WithClasses(reg)); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(rec.destructed) != 0 {
		t.Errorf("destructed on success: %v", rec.destructed)
	}
}

func TestTeardownSurvivesPanickingDestructor(t *testing.T) {
	log, logs := observed()
	var order []string
	td := teardown{log: log}
	mk := func(name string, panics bool) *lifecycle {
		return &lifecycle{
			obj: value.NewObject(name),
			typ: &class.Type{Name: name, Destruct: func(o *value.Object) {
				order = append(order, o.Class)
				if panics {
					panic("destructor failed")
				}
			}},
		}
	}
	for _, lc := range []*lifecycle{mk("A", false), mk("B", true), {obj: value.NewObject("NoDestructor")}} {
		lc.state = stateFinalized
		td.register(lc)
	}
	td.run()

	if diff := cmp.Diff([]string{"B", "A"}, order); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}
	if logs.FilterMessageSnippet("panicked").Len() != 1 {
		t.Error("panic not logged")
	}
}

func TestLifecycleStates(t *testing.T) {
	boom := errors.New("boom")
	tests := []struct {
		name string
		typ  *class.Type
		run  func(lc *lifecycle) error
		want objectState
	}{
		{"no hooks", nil, func(lc *lifecycle) error { return lc.propertiesAssigned(nil) }, stateFinalized},
		{
			"wakeup fails",
			&class.Type{Wakeup: func(*value.Object) error { return boom }},
			func(lc *lifecycle) error { return lc.propertiesAssigned(nil) },
			stateFailed,
		},
		{"payload kept", nil, func(lc *lifecycle) error { return lc.customPayload(nil, []byte("x"), zap.NewNop()) }, stateCustomParsed},
		{
			"unserialize fails",
			&class.Type{Unserialize: func(*value.Object, []byte) error { return boom }},
			func(lc *lifecycle) error { return lc.customPayload(nil, nil, zap.NewNop()) },
			stateFailed,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lc := &lifecycle{obj: value.NewObject("X"), typ: tt.typ}
			err := tt.run(lc)
			if (err != nil) != (tt.want == stateFailed) {
				t.Errorf("err = %v", err)
			}
			if lc.state != tt.want {
				t.Errorf("state = %s, want %s", lc.state, tt.want)
			}
		})
	}
}

func TestTeardownRegistersOnlyCompletedObjects(t *testing.T) {
	destructed := 0
	typ := &class.Type{Name: "X", Destruct: func(*value.Object) { destructed++ }}
	tests := []struct {
		state objectState
		want  bool
	}{
		{stateAllocated, false},
		{statePropertiesAssigned, false},
		{stateFailed, false},
		{stateReady, false},
		{stateFinalized, true},
		{stateCustomParsed, true},
	}
	td := teardown{log: zap.NewNop()}
	for _, tt := range tests {
		t.Run(tt.state.String(), func(t *testing.T) {
			lc := &lifecycle{obj: value.NewObject("X"), typ: typ, state: tt.state}
			if got := td.register(lc); got != tt.want {
				t.Errorf("register = %v, want %v", got, tt.want)
			}
			want := tt.state
			if tt.want {
				want = stateReady
			}
			if lc.state != want {
				t.Errorf("state = %s, want %s", lc.state, want)
			}
		})
	}
	td.run()
	if destructed != 2 {
		t.Errorf("destructed %d objects, want 2", destructed)
	}
}

func TestAutoloaderCalledOncePerClass(t *testing.T) {
	calls := 0
	woke := 0
	auto := class.AutoloadFunc(func(name string) (*class.Type, error) {
		calls++
		return &class.Type{Name: name, Wakeup: func(*value.Object) error {
			woke++
			return nil
		}}, nil
	})
	data, err := Encode(value.List(value.NewObject("Lazy"), value.NewObject("Lazy"), value.NewObject("Lazy")))
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if _, err := Decode(data, WithAutoloader(auto)); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if calls != 1 || woke != 3 {
		t.Errorf("autoload calls = %d, wakeups = %d", calls, woke)
	}
}
