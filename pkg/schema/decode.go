package schema

import (
	"fmt"
	"sort"

	"github.com/mitchellh/mapstructure"
	"github.com/tidwall/gjson"
	orderedmap "github.com/wk8/go-ordered-map/v2"
	"gopkg.in/yaml.v3"
)

// ordered is the intermediate tree every decoder produces before shapes are classified.
type ordered = orderedmap.OrderedMap[string, any]

// descriptorFields mirrors the keys a descriptor object may carry.
type descriptorFields struct {
	Type     string `mapstructure:"type"`
	Required *bool  `mapstructure:"required"`
	Default  any    `mapstructure:"default"`
	Schema   any    `mapstructure:"schema"`
}

var descriptorKeys = map[string]bool{
	"type":     true,
	"required": true,
	"default":  true,
	"schema":   true,
}

// FromMap builds a shorthand schema from loosely typed Go values, as produced
// by encoding/json or yaml.v3 into map[string]any. Go maps carry no order, so
// fields are ordered by name. Values may also be Def or *Raw literals.
func FromMap(m map[string]any) (*Raw, error) {
	return decodeObject(nil, orderedFromMap(m))
}

// ParseJSON decodes a shorthand schema from a JSON document, keeping the
// document's field order.
func ParseJSON(data []byte) (*Raw, error) {
	if !gjson.ValidBytes(data) {
		return nil, newSchemaError(nil, ErrMalformed, "invalid JSON document")
	}
	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return nil, newSchemaError(nil, ErrMalformed, "schema document must be a JSON object")
	}
	return decodeObject(nil, orderedFromJSON(root))
}

// ParseYAML decodes a shorthand schema from a YAML document, keeping the
// document's field order.
func ParseYAML(data []byte) (*Raw, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, newSchemaError(nil, ErrMalformed, err.Error())
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, newSchemaError(nil, ErrMalformed, "empty YAML document")
	}
	root := resolveAlias(doc.Content[0])
	if root.Kind != yaml.MappingNode {
		return nil, newSchemaError(nil, ErrMalformed, "schema document must be a YAML mapping")
	}
	om, err := orderedFromYAML(root)
	if err != nil {
		return nil, newSchemaError(nil, ErrMalformed, err.Error())
	}
	return decodeObject(nil, om)
}

func decodeObject(path []string, om *ordered) (*Raw, error) {
	raw := NewRaw()
	for pair := om.Oldest(); pair != nil; pair = pair.Next() {
		def, err := decodeDef(appendPath(path, pair.Key), pair.Value)
		if err != nil {
			return nil, err
		}
		raw.Set(pair.Key, def)
	}
	return raw, nil
}

func decodeDef(path []string, v any) (Def, error) {
	switch t := v.(type) {
	case string:
		return Tag(t), nil
	case Def:
		return t, nil
	case *Raw:
		return ObjectDescriptor{Schema: t}, nil
	case *ordered:
		return decodeDescriptor(path, t)
	case map[string]any:
		return decodeDescriptor(path, orderedFromMap(t))
	default:
		return nil, newSchemaError(path, ErrMalformed, fmt.Sprintf("unsupported definition of type %T", v))
	}
}

func decodeDescriptor(path []string, om *ordered) (Def, error) {
	input := make(map[string]any, om.Len())
	for pair := om.Oldest(); pair != nil; pair = pair.Next() {
		if !descriptorKeys[pair.Key] {
			return nil, newSchemaError(path, ErrUnknownDescriptorKey, fmt.Sprintf("%q", pair.Key))
		}
		input[pair.Key] = pair.Value
	}

	var fields descriptorFields
	if err := mapstructure.Decode(input, &fields); err != nil {
		return nil, newSchemaError(path, ErrMalformed, err.Error())
	}
	def := plain(fields.Default)

	switch {
	case Tag(fields.Type) == Array:
		if fields.Schema == nil || fields.Schema == "" {
			return nil, newSchemaError(path, ErrArrayMissingSchema, "")
		}
		items, err := decodeItems(path, fields.Schema)
		if err != nil {
			return nil, err
		}
		return ArrayDescriptor{Items: items, Required: fields.Required, Default: def}, nil
	case fields.Schema != nil:
		child, err := decodeChild(path, fields.Schema)
		if err != nil {
			return nil, err
		}
		return ObjectDescriptor{Schema: child, Required: fields.Required, Default: def}, nil
	default:
		return Descriptor{Type: Tag(fields.Type), Required: fields.Required, Default: def}, nil
	}
}

func decodeItems(path []string, v any) (ItemDef, error) {
	switch t := v.(type) {
	case string:
		return Tag(t), nil
	case Tag:
		return t, nil
	case *Raw, *ordered, map[string]any:
		child, err := decodeChild(path, t)
		if err != nil {
			return nil, err
		}
		return child, nil
	default:
		return nil, newSchemaError(path, ErrArrayItemShape, fmt.Sprintf("got %T", v))
	}
}

func decodeChild(path []string, v any) (*Raw, error) {
	switch t := v.(type) {
	case *Raw:
		return t, nil
	case *ordered:
		return decodeObject(path, t)
	case map[string]any:
		return decodeObject(path, orderedFromMap(t))
	default:
		return nil, newSchemaError(path, ErrMalformed, fmt.Sprintf("nested schema must be an object, got %T", v))
	}
}

func orderedFromMap(m map[string]any) *ordered {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	om := orderedmap.New[string, any]()
	for _, k := range keys {
		om.Set(k, m[k])
	}
	return om
}

func orderedFromJSON(res gjson.Result) *ordered {
	om := orderedmap.New[string, any]()
	res.ForEach(func(key, value gjson.Result) bool {
		if value.IsObject() {
			om.Set(key.String(), orderedFromJSON(value))
		} else {
			om.Set(key.String(), value.Value())
		}
		return true
	})
	return om
}

func orderedFromYAML(n *yaml.Node) (*ordered, error) {
	om := orderedmap.New[string, any]()
	for i := 0; i+1 < len(n.Content); i += 2 {
		key, value := n.Content[i], resolveAlias(n.Content[i+1])
		if value.Kind == yaml.MappingNode {
			child, err := orderedFromYAML(value)
			if err != nil {
				return nil, err
			}
			om.Set(key.Value, child)
			continue
		}
		var v any
		if err := value.Decode(&v); err != nil {
			return nil, fmt.Errorf("field %q: %w", key.Value, err)
		}
		om.Set(key.Value, v)
	}
	return om, nil
}

func resolveAlias(n *yaml.Node) *yaml.Node {
	for n.Kind == yaml.AliasNode && n.Alias != nil {
		n = n.Alias
	}
	return n
}

// plain converts ordered intermediates back to map[string]any so default
// values look like ordinary decoded data.
func plain(v any) any {
	switch t := v.(type) {
	case *ordered:
		out := make(map[string]any, t.Len())
		for pair := t.Oldest(); pair != nil; pair = pair.Next() {
			out[pair.Key] = plain(pair.Value)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = plain(e)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = plain(e)
		}
		return out
	default:
		return v
	}
}
