// Package value defines the dynamically typed values handled by the codec.
//
// Scalars are plain Go types: Null, Bool, Int, Float and String. Composites
// carry an identity and can be the target of back-references:
//
//   - *Array is an ordered map with copy-on-write storage. Share creates a
//     value alias that detaches on first write.
//   - *Object is a handle: class name plus ordered properties.
//   - *Ref is a true shared reference. Container slots holding the same *Ref
//     observe each other's writes.
//
// Resource and Callable model host values with no wire representation.
//
// Building a self-referencing array, the equivalent of $a = [&$a]:
//
//	r := value.NewRef(nil)
//	a := value.List(r)
//	r.Set(a)
//
// Writing through element 0 then reaches the array itself:
//
//	a.Get(value.IntKey(0)) // r
//	value.Deref(r) == a    // same handle
package value
