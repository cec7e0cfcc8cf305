package class

import (
	"slices"
	"strings"
	"sync"

	"github.com/wippyai/igbinary/errors"
)

// Registry maps class names to types. Lookups are case-insensitive, matching
// host class name semantics. A Registry is safe for concurrent use.
type Registry struct {
	types map[string]*Type
	mu    sync.RWMutex
}

// NewRegistry returns a registry holding types.
func NewRegistry(types ...*Type) (*Registry, error) {
	r := &Registry{types: make(map[string]*Type, len(types))}
	for _, t := range types {
		if err := r.Register(t); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// MustRegistry is NewRegistry that panics on error.
func MustRegistry(types ...*Type) *Registry {
	r, err := NewRegistry(types...)
	if err != nil {
		panic(err)
	}
	return r
}

// Register adds t. Registering a second type under the same name fails.
func (r *Registry) Register(t *Type) error {
	if t == nil || t.Name == "" {
		return errors.InvalidInput(errors.PhaseConfig, "class type must have a name")
	}
	key := strings.ToLower(t.Name)

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.types[key]; exists {
		return errors.New(errors.PhaseConfig, errors.KindDuplicateKey).
			Detail("class %q already registered", t.Name).
			Build()
	}
	r.types[key] = t
	return nil
}

// Lookup returns the type registered under name.
func (r *Registry) Lookup(name string) (*Type, bool) {
	if r == nil {
		return nil, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.types[strings.ToLower(name)]
	return t, ok
}

// Names returns the registered class names in sorted order.
func (r *Registry) Names() []string {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	names := make([]string, 0, len(r.types))
	for _, t := range r.types {
		names = append(names, t.Name)
	}
	r.mu.RUnlock()
	slices.Sort(names)
	return names
}
