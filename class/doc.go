// Package class describes object classes and their lifecycle hooks.
//
// A Type is a capability set rather than a Go type: each hook is optional and
// the codec checks for it when it encodes or decodes an instance.
//
//   - Sleep selects which properties are serialized.
//   - Serialize and Unserialize replace the property layout with an opaque
//     payload owned by the class.
//   - Wakeup runs after decoding assigned the properties and may mutate them.
//   - Destruct runs for objects that were fully decoded when a later part of
//     the same decode failed.
//
// Class names are resolved per decode call through a Resolver that consults
// the caller's Registry and, once per name, an optional Autoloader. Names
// that stay unresolved decode as generic objects keeping the original class
// name.
package class
