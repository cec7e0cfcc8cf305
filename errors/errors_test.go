package errors

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		contains []string
	}{
		{
			name: "full error",
			err: &Error{
				Phase:     PhaseDecode,
				Kind:      KindMalformedInput,
				Path:      []string{"items", "[3]", "name"},
				Tag:       "string16",
				Offset:    17,
				HasOffset: true,
				Detail:    "length exceeds input",
			},
			contains: []string{"[decode]", "malformed_input", "items[3].name", "offset 17", "string16", "length exceeds input"},
		},
		{
			name:     "offset zero",
			err:      Malformed(0, "bad version byte"),
			contains: []string{"(offset 0)", "bad version byte"},
		},
		{
			name: "minimal error",
			err: &Error{
				Phase: PhaseEncode,
				Kind:  KindUnsupportedValue,
			},
			contains: []string{"[encode]", "unsupported_value"},
		},
		{
			name: "error with cause",
			err: &Error{
				Phase:  PhaseHook,
				Kind:   KindHookFailure,
				Detail: "Obj::__wakeup failed",
				Cause:  errors.New("underlying error"),
			},
			contains: []string{"[hook]", "hook_failure", "Obj::__wakeup", "caused by", "underlying error"},
		},
	}

	if msg := InvalidInput(PhaseConfig, "bad option").Error(); strings.Contains(msg, "offset") {
		t.Errorf("unset offset printed: %q", msg)
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.err.Error()
			for _, s := range tt.contains {
				if !strings.Contains(msg, s) {
					t.Errorf("error message %q does not contain %q", msg, s)
				}
			}
		})
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := &Error{
		Phase: PhaseEncode,
		Kind:  KindHookFailure,
		Cause: cause,
	}

	if !errors.Is(err.Unwrap(), cause) {
		t.Error("Unwrap did not return cause")
	}

	if !errors.Is(err, cause) {
		t.Error("errors.Is did not reach cause through Unwrap")
	}
}

func TestError_Is(t *testing.T) {
	err := &Error{
		Phase: PhaseDecode,
		Kind:  KindMalformedInput,
		Path:  []string{"foo"},
	}

	if !err.Is(&Error{Phase: PhaseDecode, Kind: KindMalformedInput}) {
		t.Error("Is should match same phase and kind")
	}

	if err.Is(&Error{Phase: PhaseEncode, Kind: KindMalformedInput}) {
		t.Error("Is should not match different phase")
	}

	if err.Is(&Error{Phase: PhaseDecode, Kind: KindOverflow}) {
		t.Error("Is should not match different kind")
	}

	if !errors.Is(err, ErrMalformedInput) {
		t.Error("sentinel without phase should match on kind")
	}

	if errors.Is(err, ErrHookFailure) {
		t.Error("sentinel of another kind should not match")
	}
}

func TestIsKind(t *testing.T) {
	inner := HookFailed(PhaseDecode, nil, "Obj", "__wakeup", errors.New("boom"))
	wrapped := fmt.Errorf("unserialize: %w", inner)

	if !IsKind(wrapped, KindHookFailure) {
		t.Error("IsKind should see through fmt wrapping")
	}
	if IsKind(wrapped, KindMalformedInput) {
		t.Error("IsKind matched the wrong kind")
	}
	if IsKind(nil, KindHookFailure) {
		t.Error("IsKind(nil) should be false")
	}
}

func TestBuilder(t *testing.T) {
	cause := errors.New("root")
	err := New(PhaseDecode, KindMalformedInput).
		Path("[0]", "prop").
		Tag("array8").
		Offset(9).
		Value(42).
		Cause(cause).
		Detail("count %d exceeds %d remaining bytes", 200, 3).
		Build()

	if err.Phase != PhaseDecode {
		t.Errorf("Phase = %v, want %v", err.Phase, PhaseDecode)
	}
	if err.Kind != KindMalformedInput {
		t.Errorf("Kind = %v, want %v", err.Kind, KindMalformedInput)
	}
	if len(err.Path) != 2 || err.Path[0] != "[0]" || err.Path[1] != "prop" {
		t.Errorf("Path = %v, want [[0] prop]", err.Path)
	}
	if err.Tag != "array8" {
		t.Errorf("Tag = %v, want 'array8'", err.Tag)
	}
	if err.Offset != 9 {
		t.Errorf("Offset = %v, want 9", err.Offset)
	}
	if err.Value != 42 {
		t.Errorf("Value = %v, want 42", err.Value)
	}
	if !errors.Is(err.Cause, cause) {
		t.Errorf("Cause = %v, want %v", err.Cause, cause)
	}
	if err.Detail != "count 200 exceeds 3 remaining bytes" {
		t.Errorf("Detail = %v", err.Detail)
	}
}

func TestConvenienceConstructors(t *testing.T) {
	t.Run("Truncated", func(t *testing.T) {
		err := Truncated(4, "double")
		if err.Kind != KindMalformedInput || err.Phase != PhaseDecode {
			t.Errorf("got %v/%v", err.Phase, err.Kind)
		}
		if !strings.Contains(err.Detail, "double") {
			t.Errorf("Detail = %q", err.Detail)
		}
	})

	t.Run("UnknownTag", func(t *testing.T) {
		err := UnknownTag(4, 0xfe)
		if err.Value != byte(0xfe) {
			t.Errorf("Value = %v, want 0xfe", err.Value)
		}
		if !strings.Contains(err.Error(), "0xfe") {
			t.Errorf("message %q should name the tag", err.Error())
		}
	})

	t.Run("DanglingReference", func(t *testing.T) {
		err := DanglingReference(12, 7, 2)
		if err.Kind != KindMalformedInput {
			t.Errorf("Kind = %v", err.Kind)
		}
		if err.Value != uint32(7) {
			t.Errorf("Value = %v, want 7", err.Value)
		}
	})

	t.Run("Unsupported", func(t *testing.T) {
		err := Unsupported([]string{"[1]"}, "resource")
		if err.Kind != KindUnsupportedValue || err.Phase != PhaseEncode {
			t.Errorf("got %v/%v", err.Phase, err.Kind)
		}
	})

	t.Run("HookFailed", func(t *testing.T) {
		cause := errors.New("exception in __sleep 0")
		err := HookFailed(PhaseEncode, []string{"[0]"}, "Obj", "__sleep", cause)
		if !errors.Is(err, ErrHookFailure) {
			t.Error("should match ErrHookFailure")
		}
		if !errors.Is(err, cause) {
			t.Error("should wrap hook error")
		}
		if !strings.Contains(err.Error(), "Obj::__sleep") {
			t.Errorf("message %q should name the hook", err.Error())
		}
	})

	t.Run("Overflow", func(t *testing.T) {
		err := Overflow(PhaseEncode, []string{"val"}, 5000, "max depth")
		if err.Kind != KindOverflow {
			t.Errorf("Kind = %v, want %v", err.Kind, KindOverflow)
		}
		if err.Value != 5000 {
			t.Errorf("Value = %v, want 5000", err.Value)
		}
	})

	t.Run("UnresolvableClass", func(t *testing.T) {
		cause := fmt.Errorf("no such file")
		err := UnresolvableClass("Foo", cause)
		if err.Kind != KindUnresolvableClass || err.Phase != PhaseDecode {
			t.Errorf("Phase/Kind = %v/%v", err.Phase, err.Kind)
		}
		if !errors.Is(err, ErrUnresolvableClass) || !errors.Is(err, cause) {
			t.Errorf("errors.Is failed for %v", err)
		}
		if !strings.Contains(err.Error(), `"Foo"`) {
			t.Errorf("Error() = %q", err.Error())
		}
	})

	t.Run("NotFound", func(t *testing.T) {
		err := NotFound(PhaseSession, "session", "abc")
		if err.Kind != KindNotFound {
			t.Errorf("Kind = %v", err.Kind)
		}
	})
}

func TestJoinPath(t *testing.T) {
	tests := []struct {
		path []string
		want string
	}{
		{nil, ""},
		{[]string{"[0]"}, "[0]"},
		{[]string{"a", "b"}, "a.b"},
		{[]string{"[0]", "prop", "[2]", "[5]"}, "[0].prop[2][5]"},
	}
	for _, tt := range tests {
		if got := JoinPath(tt.path); got != tt.want {
			t.Errorf("JoinPath(%v) = %q, want %q", tt.path, got, tt.want)
		}
	}
}
