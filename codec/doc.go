// Package codec converts values to and from the binary stream format.
//
// An Encoder writes a four byte header followed by exactly one tagged root
// value. Strings are interned per call so repeated content is written once
// and then referenced by index. Composite values (arrays, objects and
// references) receive an identity index on first visit; later visits emit a
// back-reference instead of the contents, which preserves aliasing and lets
// cyclic graphs terminate.
//
// A Decoder reverses the process. Identities are assigned before children
// are read so children may refer back to their ancestors. A value-ref to an
// array yields a copy-on-write alias of it; a value-ref to an object yields
// the same handle; a shared-ref yields the same *value.Ref.
//
// Objects are driven through the hooks of their class.Type:
//
//	encode: Serialize, else Sleep filtered properties, else all properties
//	decode: Unserialize for custom payloads, Wakeup after properties
//
// Decoding is all-or-nothing. When a call fails, objects it already finished
// are destructed in reverse order and no value is returned.
//
// Encoders and decoders hold only immutable options and are safe for
// concurrent use. All per-call state is private to the call.
package codec
