package class

import (
	"go.uber.org/zap"

	"github.com/wippyai/igbinary/errors"
)

// Autoloader is consulted for class names missing from the registry.
// It returns nil when it cannot provide the class.
type Autoloader interface {
	Autoload(name string) (*Type, error)
}

// AutoloadFunc adapts a function to Autoloader.
type AutoloadFunc func(name string) (*Type, error)

// Autoload calls f.
func (f AutoloadFunc) Autoload(name string) (*Type, error) { return f(name) }

// Resolver resolves class names for one decode call. Each name is looked up
// in the registry first and handed to the autoloader at most once; results,
// including misses, are cached for the rest of the call.
type Resolver struct {
	registry *Registry
	auto     Autoloader
	log      *zap.Logger
	cache    map[string]*Type
}

// NewResolver returns a resolver over registry and auto, both optional.
func NewResolver(registry *Registry, auto Autoloader, log *zap.Logger) *Resolver {
	if log == nil {
		log = zap.NewNop()
	}
	return &Resolver{
		registry: registry,
		auto:     auto,
		log:      log,
		cache:    make(map[string]*Type),
	}
}

// Resolve returns the type for name. A false result means the class is
// unresolved and callers fall back to a generic property bag.
func (r *Resolver) Resolve(name string) (*Type, bool) {
	if t, ok := r.cache[name]; ok {
		return t, t != nil
	}
	t := r.resolve(name)
	r.cache[name] = t
	return t, t != nil
}

func (r *Resolver) resolve(name string) *Type {
	if t, ok := r.registry.Lookup(name); ok {
		return t
	}
	if r.auto == nil {
		r.log.Warn("class not registered, using generic object",
			zap.String("class", name),
			zap.Error(errors.UnresolvableClass(name, nil)))
		return nil
	}

	r.log.Debug("autoloading class", zap.String("class", name))
	t, err := r.auto.Autoload(name)
	if err != nil {
		r.log.Warn("autoloader failed, using generic object",
			zap.String("class", name),
			zap.Error(errors.UnresolvableClass(name, err)))
		return nil
	}
	if t == nil {
		// The autoloader may register the class instead of returning it.
		if t, ok := r.registry.Lookup(name); ok {
			return t
		}
		r.log.Warn("class not found after autoload, using generic object",
			zap.String("class", name),
			zap.Error(errors.UnresolvableClass(name, nil)))
		return nil
	}
	return t
}
