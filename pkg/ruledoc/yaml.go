package ruledoc

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"

	"gopkg.in/yaml.v3"
)

// FromYAML decodes a YAML rule document. A stream of several documents is
// merged into one mapping, in stream order. An empty stream yields an empty
// mapping.
func FromYAML(data []byte) (*Map, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	out := NewMap()
	for {
		var doc yaml.Node
		err := dec.Decode(&doc)
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrSyntax, err)
		}
		v, err := fromNode(&doc)
		if err != nil {
			return nil, err
		}
		if v.IsNull() {
			continue
		}
		m, ok := v.AsMap()
		if !ok {
			return nil, fmt.Errorf("%w: top level is a %s", ErrNotMapping, v.Kind())
		}
		out.Append(m.entries...)
	}
}

func fromNode(n *yaml.Node) (Value, error) {
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return Null(), nil
		}
		return fromNode(n.Content[0])
	case yaml.AliasNode:
		return fromNode(n.Alias)
	case yaml.MappingNode:
		return fromMapping(n)
	case yaml.SequenceNode:
		vs := make([]Value, 0, len(n.Content))
		for _, c := range n.Content {
			val, err := fromNode(c)
			if err != nil {
				return Value{}, err
			}
			vs = append(vs, val)
		}
		return List(vs...), nil
	case yaml.ScalarNode:
		return fromScalar(n)
	default:
		return Value{}, fmt.Errorf("%w: line %d: unsupported node", ErrSyntax, n.Line)
	}
}

// fromMapping converts a mapping node, expanding merge keys in place. Keys
// written in the mapping win over merged ones, and earlier merge sources win
// over later ones.
func fromMapping(n *yaml.Node) (Value, error) {
	explicit := make(map[string]bool)
	for i := 0; i+1 < len(n.Content); i += 2 {
		if k := n.Content[i]; !isMergeKey(k) {
			explicit[k.Value] = true
		}
	}
	merged := make(map[string]bool)
	m := NewMap()
	for i := 0; i+1 < len(n.Content); i += 2 {
		k, v := n.Content[i], n.Content[i+1]
		if k.Kind != yaml.ScalarNode {
			return Value{}, fmt.Errorf("%w: line %d: mapping keys must be scalars", ErrSyntax, k.Line)
		}
		if isMergeKey(k) {
			sources, err := mergeSources(v)
			if err != nil {
				return Value{}, err
			}
			for _, src := range sources {
				for _, e := range src.entries {
					if explicit[e.Key] || merged[e.Key] {
						continue
					}
					merged[e.Key] = true
					m.Append(e)
				}
			}
			continue
		}
		val, err := fromNode(v)
		if err != nil {
			return Value{}, err
		}
		m.Append(Field(k.Value, val))
	}
	return MapValue(m), nil
}

func isMergeKey(k *yaml.Node) bool {
	return k.Kind == yaml.ScalarNode && k.ShortTag() == "!!merge"
}

// mergeSources resolves the value of a merge key: a mapping, or a sequence
// of mappings.
func mergeSources(v *yaml.Node) ([]*Map, error) {
	if v.Kind == yaml.AliasNode {
		v = v.Alias
	}
	if v.Kind == yaml.SequenceNode {
		out := make([]*Map, 0, len(v.Content))
		for _, c := range v.Content {
			m, err := mergeMapping(c)
			if err != nil {
				return nil, err
			}
			out = append(out, m)
		}
		return out, nil
	}
	m, err := mergeMapping(v)
	if err != nil {
		return nil, err
	}
	return []*Map{m}, nil
}

func mergeMapping(v *yaml.Node) (*Map, error) {
	if v.Kind == yaml.AliasNode {
		v = v.Alias
	}
	if v.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%w: line %d: merge value must be a mapping", ErrSyntax, v.Line)
	}
	val, err := fromMapping(v)
	if err != nil {
		return nil, err
	}
	m, _ := val.AsMap()
	return m, nil
}

func fromScalar(n *yaml.Node) (Value, error) {
	switch n.ShortTag() {
	case "!!null":
		return Null(), nil
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err != nil {
			return Value{}, fmt.Errorf("%w: line %d: %v", ErrSyntax, n.Line, err)
		}
		return Bool(b), nil
	case "!!int", "!!float":
		var f float64
		if err := n.Decode(&f); err != nil {
			// 0x/0o integer forms decode as int only
			i, ierr := strconv.ParseInt(n.Value, 0, 64)
			if ierr != nil {
				return Value{}, fmt.Errorf("%w: line %d: %v", ErrSyntax, n.Line, err)
			}
			f = float64(i)
		}
		return Number(f), nil
	default:
		return String(n.Value), nil
	}
}
