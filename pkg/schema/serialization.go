package schema

import (
	"encoding/json"
	"fmt"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// MarshalJSON serializes the compiled schema in its normalized form, keeping
// field order. Primitive fields carry type and required, objects add schema,
// arrays add isArray and itemSchema.
func (n *Node) MarshalJSON() ([]byte, error) {
	if n == nil {
		return []byte("null"), nil
	}
	return json.Marshal(n.normalized())
}

func (n *Node) normalized() *ordered {
	out := orderedmap.New[string, any]()
	for name, f := range n.All() {
		out.Set(name, f.normalized())
	}
	return out
}

func (f FieldSpec) normalized() *ordered {
	out := orderedmap.New[string, any]()
	out.Set("type", string(f.Type))
	if f.Kind == KindArray {
		out.Set("isArray", true)
	}
	out.Set("required", f.Required)
	if f.HasDefault() {
		out.Set("default", f.Default)
	}
	switch f.Kind {
	case KindObject:
		out.Set("schema", f.Schema.normalized())
	case KindArray:
		if f.Items.Schema != nil {
			out.Set("itemSchema", f.Items.Schema.normalized())
		} else {
			out.Set("itemSchema", string(f.Items.Type))
		}
	}
	return out
}

// MarshalJSON serializes the raw schema back to shorthand, keeping field
// order. ParseJSON reads the result back into an equivalent Raw.
func (r *Raw) MarshalJSON() ([]byte, error) {
	if r == nil {
		return []byte("null"), nil
	}
	doc, err := r.shorthand()
	if err != nil {
		return nil, err
	}
	return json.Marshal(doc)
}

// UnmarshalJSON decodes shorthand JSON into r, replacing its contents.
func (r *Raw) UnmarshalJSON(data []byte) error {
	if r == nil {
		return fmt.Errorf("schema: UnmarshalJSON on nil pointer")
	}
	parsed, err := ParseJSON(data)
	if err != nil {
		return err
	}
	*r = *parsed
	return nil
}

func (r *Raw) shorthand() (*ordered, error) {
	out := orderedmap.New[string, any]()
	if r == nil {
		return out, nil
	}
	for _, f := range r.fields {
		v, err := shorthandDef(f.Def)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", f.Name, err)
		}
		out.Set(f.Name, v)
	}
	return out, nil
}

func shorthandDef(def Def) (any, error) {
	switch d := def.(type) {
	case Tag:
		return string(d), nil
	case Descriptor:
		out := orderedmap.New[string, any]()
		if d.Type != "" {
			out.Set("type", string(d.Type))
		}
		modifiers(out, d.Required, d.Default)
		return out, nil
	case ArrayDescriptor:
		out := orderedmap.New[string, any]()
		out.Set("type", string(Array))
		modifiers(out, d.Required, d.Default)
		switch it := d.Items.(type) {
		case Tag:
			out.Set("schema", string(it))
		case *Raw:
			child, err := it.shorthand()
			if err != nil {
				return nil, err
			}
			out.Set("schema", child)
		default:
			return nil, ErrArrayMissingSchema
		}
		return out, nil
	case ObjectDescriptor:
		out := orderedmap.New[string, any]()
		modifiers(out, d.Required, d.Default)
		child, err := d.Schema.shorthand()
		if err != nil {
			return nil, err
		}
		out.Set("schema", child)
		return out, nil
	default:
		return nil, fmt.Errorf("unsupported definition %T", def)
	}
}

func modifiers(out *ordered, required *bool, def any) {
	if required != nil {
		out.Set("required", *required)
	}
	if def != nil {
		out.Set("default", def)
	}
}
