package value

// Ref is a true shared reference: one storage slot that several container
// slots can hold at once. Writes through any holder are visible to all.
type Ref struct {
	v Value
}

// NewRef returns a reference holding v.
func NewRef(v Value) *Ref {
	r := &Ref{}
	r.Set(v)
	return r
}

func (*Ref) Kind() Kind { return KindRef }
func (*Ref) isValue()   {}

// Get returns the referent. A reference never holds another reference.
func (r *Ref) Get() Value { return orNull(r.v) }

// Set replaces the referent. A *Ref argument is dereferenced first.
func (r *Ref) Set(v Value) {
	if inner, ok := v.(*Ref); ok {
		if inner == r {
			return
		}
		v = inner.Get()
	}
	r.v = orNull(v)
}
