package export

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"strconv"

	"github.com/fxamacker/cbor/v2"
	"gopkg.in/yaml.v3"

	"github.com/wippyai/igbinary/value"
)

// Reserved keys in the plain form.
const (
	ClassKey      = "@class"
	SerializedKey = "@serialized"
	RecursionKey  = "@recursion"
)

// Map is an insertion-ordered string-keyed map. It marshals to JSON, YAML and
// CBOR with its keys in order.
type Map struct {
	index map[string]int
	keys  []string
	vals  []any
}

// NewMap returns an empty map.
func NewMap() *Map {
	return &Map{index: make(map[string]int)}
}

// Set stores v under k. An existing key keeps its position.
func (m *Map) Set(k string, v any) {
	if i, ok := m.index[k]; ok {
		m.vals[i] = v
		return
	}
	m.index[k] = len(m.keys)
	m.keys = append(m.keys, k)
	m.vals = append(m.vals, v)
}

// Get returns the value stored under k.
func (m *Map) Get(k string) (any, bool) {
	i, ok := m.index[k]
	if !ok {
		return nil, false
	}
	return m.vals[i], true
}

// Keys returns the keys in order.
func (m *Map) Keys() []string { return append([]string(nil), m.keys...) }

// Len returns the number of entries.
func (m *Map) Len() int { return len(m.keys) }

// MarshalJSON implements json.Marshaler.
func (m *Map) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range m.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		vb, err := json.Marshal(m.vals[i])
		if err != nil {
			return nil, err
		}
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// MarshalYAML implements yaml.Marshaler. Keys are written untagged so that
// integer keys read back as integers.
func (m *Map) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for i, k := range m.keys {
		var val yaml.Node
		if err := val.Encode(m.vals[i]); err != nil {
			return nil, err
		}
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Value: k},
			&val)
	}
	return node, nil
}

// MarshalCBOR implements cbor.Marshaler. Entries keep their order, so the
// output is not in deterministic key order.
func (m *Map) MarshalCBOR() ([]byte, error) {
	out := cborHead(nil, 5, uint64(len(m.keys)))
	for i, k := range m.keys {
		kb, err := cborMode.Marshal(k)
		if err != nil {
			return nil, err
		}
		vb, err := cborMode.Marshal(m.vals[i])
		if err != nil {
			return nil, err
		}
		out = append(out, kb...)
		out = append(out, vb...)
	}
	return out, nil
}

// cborHead appends the initial bytes of a data item of the given major type.
func cborHead(dst []byte, major byte, n uint64) []byte {
	mt := major << 5
	switch {
	case n < 24:
		return append(dst, mt|byte(n))
	case n <= 0xff:
		return append(dst, mt|24, byte(n))
	case n <= 0xffff:
		return append(dst, mt|25, byte(n>>8), byte(n))
	case n <= 0xffffffff:
		return append(dst, mt|26, byte(n>>24), byte(n>>16), byte(n>>8), byte(n))
	}
	return append(dst, mt|27,
		byte(n>>56), byte(n>>48), byte(n>>40), byte(n>>32),
		byte(n>>24), byte(n>>16), byte(n>>8), byte(n))
}

var _ cbor.Marshaler = (*Map)(nil)

// ToPlain converts v to plain Go data. Dense arrays become []any; sparse
// arrays and objects become *Map, objects with their class under ClassKey.
// References are replaced by their referents. A composite met again on the
// path from the root becomes a Map holding RecursionKey and the visit number
// of the composite.
func ToPlain(v value.Value) any {
	p := plainer{onPath: make(map[any]int)}
	return p.plain(v)
}

type plainer struct {
	onPath map[any]int
	visits int
}

func (p *plainer) enter(id any) (int, bool) {
	if n, ok := p.onPath[id]; ok {
		return n, false
	}
	p.visits++
	p.onPath[id] = p.visits
	return p.visits, true
}

func (p *plainer) recursion(n int) *Map {
	m := NewMap()
	m.Set(RecursionKey, int64(n))
	return m
}

func (p *plainer) plain(v value.Value) any {
	switch x := value.Deref(v).(type) {
	case value.Null:
		return nil
	case value.Bool:
		return bool(x)
	case value.Int:
		return int64(x)
	case value.Float:
		return float64(x)
	case value.String:
		return string(x)
	case *value.Array:
		n, ok := p.enter(x.Identity())
		if !ok {
			return p.recursion(n)
		}
		defer delete(p.onPath, x.Identity())
		if x.IsList() {
			out := make([]any, 0, x.Len())
			for _, e := range x.All() {
				out = append(out, p.plain(e))
			}
			return out
		}
		out := NewMap()
		for k, e := range x.All() {
			out.Set(keyText(k), p.plain(e))
		}
		return out
	case *value.Object:
		n, ok := p.enter(x)
		if !ok {
			return p.recursion(n)
		}
		defer delete(p.onPath, x)
		out := NewMap()
		out.Set(ClassKey, x.Class)
		if x.Serialized != nil {
			out.Set(SerializedKey, hex.EncodeToString(x.Serialized))
		}
		for k, e := range x.All() {
			out.Set(keyText(k), p.plain(e))
		}
		return out
	case value.Resource:
		return x.String()
	case value.Callable:
		return x.String()
	}
	return nil
}

func keyText(k value.Key) string {
	if k.IsString() {
		return k.Str()
	}
	return strconv.FormatInt(k.Int(), 10)
}
