package class

import (
	"go.uber.org/zap"

	"github.com/wippyai/igbinary/value"
)

// SelectProperties maps the names returned by a sleep hook onto the keys of
// o's properties. A name matches the plain property first, then its protected
// and private mangled forms. Non-string entries, names with no matching
// property and repeated names are skipped with a warning.
func SelectProperties(o *value.Object, names []value.Value, log *zap.Logger) []value.Key {
	if log == nil {
		log = zap.NewNop()
	}
	keys := make([]value.Key, 0, len(names))
	picked := make(map[value.Key]bool, len(names))

	for i, n := range names {
		s, ok := value.Deref(n).(value.String)
		if !ok {
			log.Warn("__sleep should return an array only containing the names of instance-variables to serialize",
				zap.String("class", o.Class),
				zap.Int("entry", i),
				zap.Stringer("kind", value.Deref(n).Kind()))
			continue
		}

		key, found := matchProperty(o, string(s))
		if !found {
			log.Warn("property returned from __sleep does not exist",
				zap.String("class", o.Class),
				zap.String("property", string(s)))
			continue
		}
		if picked[key] {
			log.Warn("property returned from __sleep more than once",
				zap.String("class", o.Class),
				zap.String("property", string(s)))
			continue
		}
		picked[key] = true
		keys = append(keys, key)
	}
	return keys
}

func matchProperty(o *value.Object, name string) (value.Key, bool) {
	candidates := [...]value.Key{
		value.StrKey(name),
		value.StrKey(value.ProtectedName(name)),
		value.StrKey(value.PrivateName(o.Class, name)),
	}
	for _, k := range candidates {
		if o.Has(k) {
			return k, true
		}
	}
	return value.Key{}, false
}
