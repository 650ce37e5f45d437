package schema

import "fmt"

// Compile normalizes a shorthand schema. It is pure: the same input always
// yields a structurally equal Node, and raw is never modified.
func Compile(raw *Raw) (*Node, error) {
	if raw == nil {
		return nil, newSchemaError(nil, ErrMalformed, "nil schema")
	}
	return compile(nil, raw)
}

// MustCompile is like Compile but panics on error. Intended for schemas
// declared as package-level literals.
func MustCompile(raw *Raw) *Node {
	node, err := Compile(raw)
	if err != nil {
		panic(err)
	}
	return node
}

func compile(path []string, raw *Raw) (*Node, error) {
	node := newNode()
	for _, f := range raw.fields {
		spec, err := compileField(appendPath(path, f.Name), f.Def)
		if err != nil {
			return nil, err
		}
		node.fields.Set(f.Name, spec)
	}
	return node, nil
}

func compileField(path []string, def Def) (FieldSpec, error) {
	switch d := def.(type) {
	case Tag:
		if d == Array {
			return FieldSpec{}, newSchemaError(path, ErrArrayNeedsDescriptor, "")
		}
		if !d.Valid() {
			return FieldSpec{}, newSchemaError(path, ErrUnknownType, fmt.Sprintf("%q", string(d)))
		}
		return FieldSpec{Kind: KindPrimitive, Type: d, Required: true}, nil

	case Descriptor:
		typ := d.Type
		if typ == "" {
			typ = TypeOf(d.Default)
			if typ == "" {
				return FieldSpec{}, newSchemaError(path, ErrUntypedDescriptor, "")
			}
		}
		if typ == Array {
			return FieldSpec{}, newSchemaError(path, ErrArrayMissingSchema, "")
		}
		if !typ.Valid() {
			return FieldSpec{}, newSchemaError(path, ErrUnknownType, fmt.Sprintf("%q", string(typ)))
		}
		if err := checkDefault(path, typ, d.Default); err != nil {
			return FieldSpec{}, err
		}
		return FieldSpec{
			Kind:     KindPrimitive,
			Type:     typ,
			Required: required(d.Required),
			Default:  d.Default,
		}, nil

	case ArrayDescriptor:
		items, err := compileItems(path, d.Items)
		if err != nil {
			return FieldSpec{}, err
		}
		if err := checkDefault(path, Array, d.Default); err != nil {
			return FieldSpec{}, err
		}
		return FieldSpec{
			Kind:     KindArray,
			Type:     Array,
			Required: required(d.Required),
			Default:  d.Default,
			Items:    items,
		}, nil

	case ObjectDescriptor:
		if d.Schema == nil {
			return FieldSpec{}, newSchemaError(path, ErrMalformed, "object descriptor without schema")
		}
		child, err := compile(path, d.Schema)
		if err != nil {
			return FieldSpec{}, err
		}
		if err := checkDefault(path, Object, d.Default); err != nil {
			return FieldSpec{}, err
		}
		return FieldSpec{
			Kind:     KindObject,
			Type:     Object,
			Required: required(d.Required),
			Default:  d.Default,
			Schema:   child,
		}, nil

	case nil:
		return FieldSpec{}, newSchemaError(path, ErrMalformed, "missing definition")
	default:
		return FieldSpec{}, newSchemaError(path, ErrMalformed, fmt.Sprintf("unsupported definition %T", def))
	}
}

func compileItems(path []string, items ItemDef) (*ItemSpec, error) {
	switch it := items.(type) {
	case nil:
		return nil, newSchemaError(path, ErrArrayMissingSchema, "")
	case Tag:
		if it == Array {
			return nil, newSchemaError(path, ErrArrayNeedsDescriptor, "nested array items")
		}
		if !it.Valid() {
			return nil, newSchemaError(path, ErrUnknownType, fmt.Sprintf("%q", string(it)))
		}
		return &ItemSpec{Type: it}, nil
	case *Raw:
		if it == nil {
			return nil, newSchemaError(path, ErrArrayMissingSchema, "")
		}
		child, err := compile(path, it)
		if err != nil {
			return nil, err
		}
		return &ItemSpec{Type: Object, Schema: child}, nil
	default:
		return nil, newSchemaError(path, ErrArrayItemShape, fmt.Sprintf("got %T", items))
	}
}

func checkDefault(path []string, typ Tag, value any) error {
	if value == nil {
		return nil
	}
	if got := TypeOf(value); got != typ {
		return newSchemaError(path, ErrDefaultType, fmt.Sprintf("want %s, got %T", typ, value))
	}
	return nil
}

func required(r *bool) bool {
	if r == nil {
		return true
	}
	return *r
}
