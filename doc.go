// Package igbinary implements a compact binary serialization format for
// dynamically typed values: scalars, ordered arrays, class instances and
// references, including shared and cyclic structures.
//
// # Architecture Overview
//
// The library is organized into several packages with distinct responsibilities:
//
//	igbinary/            Root package with Serialize and Unserialize
//	├── value/           Dynamic value model: arrays, objects, references
//	├── codec/           Encoder, decoder and object lifecycle handling
//	├── class/           Class descriptors, hooks, registry and autoloading
//	├── wire/            Tags, header, compression and disassembler
//	├── session/         Session variable codec and lazy-write manager
//	├── export/          Conversion to JSON, YAML, CBOR and text dumps
//	├── errors/          Structured error types for debugging
//	└── cmd/igbinary/    Command line encoder, decoder and inspector
//
// # Quick Start
//
//	list := value.List(value.String("a"), value.Int(-100000))
//	data, err := igbinary.Serialize(list)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	v, err := igbinary.Unserialize(data)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// # Classes
//
// Objects keep their class name. Behavior attaches through class.Type hooks
// supplied in a class.Registry:
//
//	reg := class.MustRegistry(&class.Type{
//	    Name:   "User",
//	    Sleep:  func(o *value.Object) ([]value.Value, error) { ... },
//	    Wakeup: func(o *value.Object) error { ... },
//	})
//	data, err := igbinary.Serialize(user, codec.WithClasses(reg))
//
// Classes missing from the registry decode as generic objects that keep the
// original class name, so they re-encode unchanged.
//
// # Stream Format
//
// A stream is a four byte header (version 2, flags, two reserved zero bytes)
// followed by one tagged value. Integers are big-endian and use the smallest
// tag that holds their magnitude. The body may be compressed with zstd or lz4,
// which the header flags record.
//
// # Thread Safety
//
// Encoders and decoders are safe for concurrent use. Values are not; a value
// graph should be mutated by one goroutine at a time.
package igbinary
