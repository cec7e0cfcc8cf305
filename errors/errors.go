package errors

import (
	"fmt"
	"strconv"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseEncode  Phase = "encode"  // value to bytes
	PhaseDecode  Phase = "decode"  // bytes to value
	PhaseHook    Phase = "hook"    // class lifecycle hooks
	PhaseConfig  Phase = "config"  // options and config files
	PhaseSession Phase = "session" // session variable handling
)

// Kind categorizes the error
type Kind string

const (
	KindMalformedInput     Kind = "malformed_input"
	KindUnresolvableClass  Kind = "unresolvable_class"
	KindHookFailure        Kind = "hook_failure"
	KindUnsupportedValue   Kind = "unsupported_value"
	KindOverflow           Kind = "overflow"
	KindInvalidInput       Kind = "invalid_input"
	KindNotFound           Kind = "not_found"
	KindDuplicateKey       Kind = "duplicate_key"
	KindCompressionFailure Kind = "compression_failure"
	KindStorageFailure     Kind = "storage_failure"
)

// Sentinels for kind matching with errors.Is regardless of phase.
var (
	ErrMalformedInput    = &Error{Kind: KindMalformedInput}
	ErrHookFailure       = &Error{Kind: KindHookFailure}
	ErrUnsupportedValue  = &Error{Kind: KindUnsupportedValue}
	ErrUnresolvableClass = &Error{Kind: KindUnresolvableClass}
)

// Error is the structured error type used throughout the codec
type Error struct {
	Value  any
	Cause  error
	Phase  Phase
	Kind   Kind
	Tag    string
	Detail string
	Path   []string
	Offset int
	// HasOffset records that Offset was set, since 0 is a valid position.
	HasOffset bool
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if len(e.Path) > 0 {
		b.WriteString(" at ")
		b.WriteString(JoinPath(e.Path))
	}

	if e.HasOffset {
		b.WriteString(" (offset ")
		b.WriteString(strconv.Itoa(e.Offset))
		b.WriteByte(')')
	}

	if e.Tag != "" {
		b.WriteString(": tag ")
		b.WriteString(e.Tag)
	}

	if e.Detail != "" {
		if e.Tag != "" {
			b.WriteString(" - ")
		} else {
			b.WriteString(": ")
		}
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error. A target with an empty
// Phase matches on Kind alone, which is how the Err* sentinels work.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Phase == "" {
		return e.Kind == t.Kind
	}
	return e.Phase == t.Phase && e.Kind == t.Kind
}

// JoinPath renders a path so that index segments attach to their parent:
// ["items", "[3]", "name"] becomes "items[3].name".
func JoinPath(path []string) string {
	var b strings.Builder
	for i, seg := range path {
		if i > 0 && !strings.HasPrefix(seg, "[") {
			b.WriteByte('.')
		}
		b.WriteString(seg)
	}
	return b.String()
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Path sets the value path
func (b *Builder) Path(path ...string) *Builder {
	b.err.Path = path
	return b
}

// Tag sets the wire tag name
func (b *Builder) Tag(t string) *Builder {
	b.err.Tag = t
	return b
}

// Offset sets the byte offset in the input stream
func (b *Builder) Offset(off int) *Builder {
	b.err.Offset = off
	b.err.HasOffset = true
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// Malformed creates a malformed input error at a stream offset
func Malformed(offset int, detail string, args ...any) *Error {
	return &Error{
		Phase:     PhaseDecode,
		Kind:      KindMalformedInput,
		Offset:    offset,
		HasOffset: true,
		Detail:    fmt.Sprintf(detail, args...),
	}
}

// Truncated creates a malformed input error for a stream that ends early
func Truncated(offset int, what string) *Error {
	return &Error{
		Phase:     PhaseDecode,
		Kind:      KindMalformedInput,
		Offset:    offset,
		HasOffset: true,
		Detail:    "unexpected end of data reading " + what,
	}
}

// UnknownTag creates a malformed input error for an unrecognized tag byte
func UnknownTag(offset int, tag byte) *Error {
	return &Error{
		Phase:     PhaseDecode,
		Kind:      KindMalformedInput,
		Offset:    offset,
		HasOffset: true,
		Detail:    fmt.Sprintf("unknown tag 0x%02x", tag),
		Value:     tag,
	}
}

// DanglingReference creates a malformed input error for an unknown identity index
func DanglingReference(offset int, index uint32, assigned int) *Error {
	return &Error{
		Phase:     PhaseDecode,
		Kind:      KindMalformedInput,
		Offset:    offset,
		HasOffset: true,
		Detail:    fmt.Sprintf("reference to identity %d, only %d assigned", index, assigned),
		Value:     index,
	}
}

// Unsupported creates an unsupported value error
func Unsupported(path []string, what string) *Error {
	return &Error{
		Phase:  PhaseEncode,
		Kind:   KindUnsupportedValue,
		Path:   path,
		Detail: what,
	}
}

// Overflow creates an overflow error
func Overflow(phase Phase, path []string, value any, limit string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindOverflow,
		Path:   path,
		Detail: fmt.Sprintf("value %v exceeds %s", value, limit),
		Value:  value,
	}
}

// HookFailed wraps an error raised by a class lifecycle hook
func HookFailed(phase Phase, path []string, class, hook string, cause error) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindHookFailure,
		Path:   path,
		Detail: fmt.Sprintf("%s::%s failed", class, hook),
		Cause:  cause,
	}
}

// UnresolvableClass describes a class name that fell back to a generic
// object. It is logged, never returned from a decode.
func UnresolvableClass(name string, cause error) *Error {
	return &Error{
		Phase:  PhaseDecode,
		Kind:   KindUnresolvableClass,
		Detail: fmt.Sprintf("class %q could not be resolved", name),
		Value:  name,
		Cause:  cause,
	}
}

// NotFound creates a not-found error
func NotFound(phase Phase, what, name string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotFound,
		Detail: fmt.Sprintf("%s %q not found", what, name),
	}
}

// InvalidInput creates an invalid input error
func InvalidInput(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Detail: detail,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}

// IsKind reports whether err is, or wraps, an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	for err != nil {
		if e, ok := err.(*Error); ok && e.Kind == kind {
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}
