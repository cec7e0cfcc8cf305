package export

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/wippyai/igbinary/value"
)

// Dump renders v in the style of PHP's var_dump. Slots holding a reference
// are prefixed with "&"; composites met again on the path from the root print
// as *RECURSION*. Objects are numbered in first-visit order.
func Dump(v value.Value) string {
	d := dumper{onPath: make(map[any]bool), ids: make(map[*value.Object]int)}
	d.value(v, 0)
	return d.b.String()
}

type dumper struct {
	b      strings.Builder
	onPath map[any]bool
	ids    map[*value.Object]int
}

func (d *dumper) line(depth int, format string, args ...any) {
	d.b.WriteString(strings.Repeat("  ", depth))
	fmt.Fprintf(&d.b, format, args...)
	d.b.WriteByte('\n')
}

func (d *dumper) value(v value.Value, depth int) {
	amp := ""
	if r, ok := v.(*value.Ref); ok {
		amp = "&"
		v = r.Get()
	}

	switch x := value.Deref(v).(type) {
	case value.Null:
		d.line(depth, "%sNULL", amp)
	case value.Bool:
		d.line(depth, "%sbool(%t)", amp, bool(x))
	case value.Int:
		d.line(depth, "%sint(%d)", amp, int64(x))
	case value.Float:
		d.line(depth, "%sfloat(%s)", amp, formatFloat(float64(x)))
	case value.String:
		d.line(depth, "%sstring(%d) %q", amp, len(x), string(x))
	case *value.Array:
		id := x.Identity()
		if d.onPath[id] {
			d.line(depth, "*RECURSION*")
			return
		}
		d.onPath[id] = true
		defer delete(d.onPath, id)
		d.line(depth, "%sarray(%d) {", amp, x.Len())
		for k, e := range x.All() {
			d.line(depth+1, "[%s]=>", arrayKey(k))
			d.value(e, depth+1)
		}
		d.line(depth, "}")
	case *value.Object:
		if d.onPath[x] {
			d.line(depth, "*RECURSION*")
			return
		}
		d.onPath[x] = true
		defer delete(d.onPath, x)
		id, ok := d.ids[x]
		if !ok {
			id = len(d.ids) + 1
			d.ids[x] = id
		}
		d.line(depth, "%sobject(%s)#%d (%d) {", amp, x.Class, id, x.Len())
		if x.Serialized != nil {
			d.line(depth+1, "[%q]=>", SerializedKey)
			d.line(depth+1, "string(%d) %q", len(x.Serialized), x.Serialized)
		}
		for k, e := range x.All() {
			d.line(depth+1, "[%s]=>", propertyKey(k))
			d.value(e, depth+1)
		}
		d.line(depth, "}")
	case value.Resource:
		d.line(depth, "%sresource of type (%s)", amp, x.Type)
	case value.Callable:
		d.line(depth, "%scallable(%s)", amp, x.Name)
	}
}

func arrayKey(k value.Key) string {
	if k.IsString() {
		return strconv.Quote(k.Str())
	}
	return strconv.FormatInt(k.Int(), 10)
}

func propertyKey(k value.Key) string {
	if !k.IsString() {
		return strconv.FormatInt(k.Int(), 10)
	}
	class, prop, vis := value.SplitName(k.Str())
	switch vis {
	case value.Protected:
		return strconv.Quote(prop) + ":protected"
	case value.Private:
		return strconv.Quote(prop) + ":" + strconv.Quote(class) + ":private"
	}
	return strconv.Quote(prop)
}

func formatFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NAN"
	case math.IsInf(f, 1):
		return "INF"
	case math.IsInf(f, -1):
		return "-INF"
	}
	if a := math.Abs(f); a != 0 && (a < 1e-4 || a >= 1e15) {
		return strconv.FormatFloat(f, 'E', -1, 64)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}
