// Package errors provides structured error types for the igbinary codec.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error category).
// The Error type includes rich context: value path, wire tag, stream offset, and cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseDecode, errors.KindMalformedInput).
//		Path("[0]", "items").
//		Tag("array16").
//		Offset(12).
//		Detail("count %d exceeds remaining input", n).
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.Truncated(off, "double")
//	err := errors.HookFailed(errors.PhaseDecode, path, "Obj", "__wakeup", cause)
//
// Callers usually only care about the kind. The Err* sentinels carry no
// phase and match any error of their kind:
//
//	if errors.Is(err, igerrors.ErrMalformedInput) {
//		// treat as "no data available"
//	}
//
// All errors implement the standard error interface and support errors.Is/As.
package errors
