package export

import (
	"encoding/hex"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/wippyai/igbinary/errors"
	"github.com/wippyai/igbinary/value"
)

// FromYAML builds a value from a YAML document. JSON input works as well.
//
// Sequences become dense arrays and mappings sparse arrays in document order.
// A mapping whose first key is ClassKey becomes an object of that class; its
// SerializedKey entry, if present, is hex decoded into Object.Serialized.
// Mapping keys tagged as integers become integer keys. Aliases are expanded,
// so anchors do not produce shared values; a document whose aliases expand
// to far more values than it has nodes is rejected.
func FromYAML(data []byte) (value.Value, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, errors.Wrap(errors.PhaseDecode, errors.KindMalformedInput, err, "parse yaml")
	}
	node := &root
	if node.Kind == 0 {
		return value.Null{}, nil
	}
	if node.Kind == yaml.DocumentNode {
		if len(node.Content) == 0 {
			return value.Null{}, nil
		}
		node = node.Content[0]
	}
	yr := &yamlReader{budget: max(minYAMLBudget, yamlExpansionRatio*countNodes(node))}
	return yr.fromNode(node, nil, 0)
}

const (
	maxYAMLDepth = 1024
	// Values built may exceed the document's node count by this factor
	// before alias expansion is considered hostile.
	yamlExpansionRatio = 10
	minYAMLBudget      = 10000
)

// countNodes counts the nodes written in the document, not following aliases.
func countNodes(node *yaml.Node) int {
	n := 1
	for _, c := range node.Content {
		n += countNodes(c)
	}
	return n
}

type yamlReader struct {
	budget   int
	produced int
}

func (yr *yamlReader) fromNode(node *yaml.Node, path []string, depth int) (value.Value, error) {
	if depth > maxYAMLDepth {
		return nil, yamlError(node, path, "document nested too deeply")
	}
	yr.produced++
	if yr.produced > yr.budget {
		return nil, yamlError(node, path, "aliases expand to more than "+strconv.Itoa(yr.budget)+" values")
	}
	switch node.Kind {
	case yaml.AliasNode:
		if node.Alias == nil {
			return value.Null{}, nil
		}
		return yr.fromNode(node.Alias, path, depth+1)
	case yaml.SequenceNode:
		a := value.NewArrayCap(len(node.Content))
		for i, child := range node.Content {
			v, err := yr.fromNode(child, append(path, "["+strconv.Itoa(i)+"]"), depth+1)
			if err != nil {
				return nil, err
			}
			a.Append(v)
		}
		return a, nil
	case yaml.MappingNode:
		if len(node.Content) >= 2 && node.Content[0].Value == ClassKey {
			return yr.objectFromNode(node, path, depth)
		}
		a := value.NewArrayCap(len(node.Content) / 2)
		err := yr.mappingEntries(node, path, depth, func(k value.Key, v value.Value) bool {
			return a.Insert(k, v)
		})
		if err != nil {
			return nil, err
		}
		return a, nil
	case yaml.ScalarNode:
		return scalarFromNode(node, path)
	}
	return nil, yamlError(node, path, "unsupported yaml node")
}

func (yr *yamlReader) objectFromNode(node *yaml.Node, path []string, depth int) (value.Value, error) {
	o := value.NewObject(node.Content[1].Value)
	rest := &yaml.Node{Kind: yaml.MappingNode, Content: node.Content[2:]}
	err := yr.mappingEntries(rest, path, depth, func(k value.Key, v value.Value) bool {
		if k.IsString() && k.Str() == SerializedKey {
			if s, ok := v.(value.String); ok {
				if b, err := hex.DecodeString(string(s)); err == nil {
					o.Serialized = b
					return true
				}
			}
		}
		return o.Insert(k, v)
	})
	if err != nil {
		return nil, err
	}
	return o, nil
}

func (yr *yamlReader) mappingEntries(node *yaml.Node, path []string, depth int, insert func(value.Key, value.Value) bool) error {
	for i := 0; i+1 < len(node.Content); i += 2 {
		kn, vn := node.Content[i], node.Content[i+1]
		k := value.StrKey(kn.Value)
		if kn.ShortTag() == "!!int" {
			if n, err := strconv.ParseInt(kn.Value, 0, 64); err == nil {
				k = value.IntKey(n)
			}
		}
		v, err := yr.fromNode(vn, append(path, k.PathSegment()), depth+1)
		if err != nil {
			return err
		}
		if !insert(k, v) {
			return yamlError(kn, path, "duplicate key "+k.String())
		}
	}
	return nil
}

func scalarFromNode(node *yaml.Node, path []string) (value.Value, error) {
	switch node.ShortTag() {
	case "!!null":
		return value.Null{}, nil
	case "!!bool":
		var b bool
		if err := node.Decode(&b); err != nil {
			return nil, yamlError(node, path, err.Error())
		}
		return value.Bool(b), nil
	case "!!int":
		var n int64
		if err := node.Decode(&n); err != nil {
			return nil, yamlError(node, path, err.Error())
		}
		return value.Int(n), nil
	case "!!float":
		var f float64
		if err := node.Decode(&f); err != nil {
			return nil, yamlError(node, path, err.Error())
		}
		return value.Float(f), nil
	case "!!binary":
		var b []byte
		if err := node.Decode(&b); err != nil {
			return nil, yamlError(node, path, err.Error())
		}
		return value.String(b), nil
	}
	return value.String(node.Value), nil
}

func yamlError(node *yaml.Node, path []string, detail string) error {
	return errors.New(errors.PhaseDecode, errors.KindMalformedInput).
		Path(path...).
		Value(node.Line).
		Detail("line %d: %s", node.Line, detail).
		Build()
}
