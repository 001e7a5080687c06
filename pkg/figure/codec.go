package figure

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

// ErrNotObject is returned when a document's root is not an object.
var ErrNotObject = errors.New("document root is not an object")

// DecodeValue decodes a JSON, JSON-with-comments or YAML document into a
// figure value. Documents that start with '{' or '[' are read as JSON
// first; anything else, or JSON that fails to parse, is read as YAML.
// An empty document decodes to an empty object.
func DecodeValue(data []byte) (any, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return NewObject(), nil
	}

	var jsonErr error
	if trimmed[0] == '{' || trimmed[0] == '[' {
		v, err := DecodeJSON(jsonc.ToJSON(trimmed))
		if err == nil {
			return v, nil
		}
		jsonErr = err
	}

	var node yaml.Node
	if err := yaml.Unmarshal(trimmed, &node); err != nil {
		if jsonErr != nil {
			return nil, fmt.Errorf("decode: %w", jsonErr)
		}
		return nil, fmt.Errorf("decode: %w", err)
	}
	return fromYAMLNode(&node)
}

// DecodeObject decodes a document whose root must be an object.
func DecodeObject(data []byte) (*Object, error) {
	v, err := DecodeValue(data)
	if err != nil {
		return nil, err
	}
	o, ok := AsObject(v)
	if !ok {
		return nil, ErrNotObject
	}
	return o, nil
}

// DecodeJSON decodes strict JSON into a figure value, preserving object
// key order. Integers decode as int64, other numbers as float64.
func DecodeJSON(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	return decodeJSONValue(dec)
}

func decodeJSONValue(dec *json.Decoder) (any, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}

	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			obj := NewObject()
			for dec.More() {
				kt, err := dec.Token()
				if err != nil {
					return nil, err
				}
				key, ok := kt.(string)
				if !ok {
					return nil, fmt.Errorf("unexpected object key %v", kt)
				}
				v, err := decodeJSONValue(dec)
				if err != nil {
					return nil, fmt.Errorf("%s: %w", key, err)
				}
				obj.Set(key, v)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return obj, nil
		case '[':
			seq := []any{}
			for dec.More() {
				v, err := decodeJSONValue(dec)
				if err != nil {
					return nil, fmt.Errorf("[%d]: %w", len(seq), err)
				}
				seq = append(seq, v)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return seq, nil
		}
		return nil, fmt.Errorf("unexpected delimiter %v", t)
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return i, nil
		}
		f, err := t.Float64()
		if err != nil {
			return nil, fmt.Errorf("number %s: %w", t, err)
		}
		return f, nil
	default:
		return t, nil
	}
}

const (
	// Alias expansion limits follow yaml.v3's own decoder: small documents
	// may alias freely, large ones must be mostly literal.
	aliasRatioRangeLow  = 400000
	aliasRatioRangeHigh = 4000000
	aliasRatioRange     = float64(aliasRatioRangeHigh - aliasRatioRangeLow)

	// maxAliasNodes caps the values produced through aliases in one document.
	maxAliasNodes = 1 << 20
)

var (
	// ErrAliasCycle is returned for a YAML alias that refers to a node
	// enclosing it.
	ErrAliasCycle = errors.New("yaml alias refers to itself")

	// ErrExcessiveAliasing is returned for YAML documents whose aliases
	// expand far beyond their literal size.
	ErrExcessiveAliasing = errors.New("yaml document contains excessive aliasing")
)

func allowedAliasRatio(decodes int) float64 {
	switch {
	case decodes <= aliasRatioRangeLow:
		return 0.99
	case decodes >= aliasRatioRangeHigh:
		return 0.10
	default:
		return 0.99 - 0.89*(float64(decodes-aliasRatioRangeLow)/aliasRatioRange)
	}
}

// yamlDecoder converts a yaml.Node tree into figure values.
type yamlDecoder struct {
	expanding  map[*yaml.Node]bool // alias targets on the current path
	decodes    int
	aliases    int
	aliasDepth int
	aliasNodes int
}

func fromYAMLNode(n *yaml.Node) (any, error) {
	d := &yamlDecoder{expanding: make(map[*yaml.Node]bool)}
	return d.decode(n)
}

func (d *yamlDecoder) decode(n *yaml.Node) (any, error) {
	d.decodes++
	if d.aliasDepth > 0 {
		d.aliasNodes++
		if d.aliasNodes > maxAliasNodes {
			return nil, ErrExcessiveAliasing
		}
	}

	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return NewObject(), nil
		}
		return d.decode(n.Content[0])
	case yaml.AliasNode:
		return d.alias(n)
	case yaml.MappingNode:
		obj := NewObject()
		for i := 0; i+1 < len(n.Content); i += 2 {
			key := n.Content[i].Value
			v, err := d.decode(n.Content[i+1])
			if err != nil {
				return nil, fmt.Errorf("%s: %w", key, err)
			}
			obj.Set(key, v)
		}
		return obj, nil
	case yaml.SequenceNode:
		seq := make([]any, 0, len(n.Content))
		for i, item := range n.Content {
			v, err := d.decode(item)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			seq = append(seq, v)
		}
		return seq, nil
	case yaml.ScalarNode:
		return yamlScalar(n)
	}
	return nil, fmt.Errorf("line %d: unsupported YAML node", n.Line)
}

func (d *yamlDecoder) alias(n *yaml.Node) (any, error) {
	target := n.Alias
	if target == nil {
		return nil, fmt.Errorf("line %d: unknown alias %q", n.Line, n.Value)
	}
	if d.expanding[target] {
		return nil, fmt.Errorf("line %d: *%s: %w", n.Line, n.Value, ErrAliasCycle)
	}

	d.aliases++
	if d.aliases > 100 && d.decodes > 1000 &&
		float64(d.aliases)/float64(d.decodes) > allowedAliasRatio(d.decodes) {
		return nil, ErrExcessiveAliasing
	}

	d.expanding[target] = true
	d.aliasDepth++
	v, err := d.decode(target)
	d.aliasDepth--
	delete(d.expanding, target)
	return v, err
}

func yamlScalar(n *yaml.Node) (any, error) {
	switch n.ShortTag() {
	case "!!null":
		return nil, nil
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err != nil {
			return nil, err
		}
		return b, nil
	case "!!int":
		var i int64
		if err := n.Decode(&i); err == nil {
			return i, nil
		}
		fallthrough
	case "!!float":
		var f float64
		if err := n.Decode(&f); err != nil {
			return nil, err
		}
		return f, nil
	default:
		return n.Value, nil
	}
}

// MarshalJSON encodes o with keys in insertion order.
func (o *Object) MarshalJSON() ([]byte, error) {
	if o == nil {
		return []byte("null"), nil
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range o.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		vb, err := json.Marshal(o.values[k])
		if err != nil {
			return nil, fmt.Errorf("%s: %w", k, err)
		}
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object, preserving key order.
func (o *Object) UnmarshalJSON(data []byte) error {
	v, err := DecodeJSON(data)
	if err != nil {
		return err
	}
	obj, ok := AsObject(v)
	if !ok {
		return ErrNotObject
	}
	*o = *obj
	return nil
}

// MarshalYAML encodes o as a mapping node with keys in insertion order.
func (o *Object) MarshalYAML() (any, error) {
	return toYAMLNode(o)
}

// UnmarshalYAML decodes a YAML mapping, preserving key order.
func (o *Object) UnmarshalYAML(node *yaml.Node) error {
	v, err := fromYAMLNode(node)
	if err != nil {
		return err
	}
	obj, ok := AsObject(v)
	if !ok {
		return ErrNotObject
	}
	*o = *obj
	return nil
}

func toYAMLNode(v any) (*yaml.Node, error) {
	switch x := v.(type) {
	case *Object:
		if x == nil {
			return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}, nil
		}
		n := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		for _, k := range x.keys {
			vn, err := toYAMLNode(x.values[k])
			if err != nil {
				return nil, fmt.Errorf("%s: %w", k, err)
			}
			n.Content = append(n.Content, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: k}, vn)
		}
		return n, nil
	case []any:
		n := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, item := range x {
			in, err := toYAMLNode(item)
			if err != nil {
				return nil, err
			}
			n.Content = append(n.Content, in)
		}
		return n, nil
	default:
		n := &yaml.Node{}
		if err := n.Encode(x); err != nil {
			return nil, err
		}
		return n, nil
	}
}
