package schema

// Def is the definition of one shorthand field. The closed set of variants is
// Tag, Descriptor, ArrayDescriptor and ObjectDescriptor.
type Def interface {
	def()
}

// ItemDef describes the elements of an array: either a Tag or a nested *Raw.
type ItemDef interface {
	item()
}

// Tag is a primitive type tag such as "string" or "number".
type Tag string

const (
	String  Tag = "string"
	Number  Tag = "number"
	Boolean Tag = "boolean"
	Object  Tag = "object"
	Array   Tag = "array"
)

func (Tag) def()  {}
func (Tag) item() {}

// Valid reports whether t is one of the supported type tags.
func (t Tag) Valid() bool {
	switch t {
	case String, Number, Boolean, Object, Array:
		return true
	}
	return false
}

// Descriptor is a primitive field with explicit modifiers.
// An empty Type is inferred from Default.
type Descriptor struct {
	Type     Tag
	Required *bool
	Default  any
}

// ArrayDescriptor is a typed array field.
type ArrayDescriptor struct {
	Items    ItemDef
	Required *bool
	Default  any
}

// ObjectDescriptor is a nested object field.
type ObjectDescriptor struct {
	Schema   *Raw
	Required *bool
	Default  any
}

func (Descriptor) def()       {}
func (ArrayDescriptor) def()  {}
func (ObjectDescriptor) def() {}

// Required returns a pointer to b, for use in descriptor literals.
func Required(b bool) *bool {
	return &b
}

// RawField is one named entry of a Raw schema.
type RawField struct {
	Name string
	Def  Def
}

// Raw is an ordered shorthand schema.
type Raw struct {
	fields []RawField
	index  map[string]int
}

// NewRaw creates an empty shorthand schema.
func NewRaw() *Raw {
	return &Raw{index: make(map[string]int)}
}

func (*Raw) item() {}

// Set adds or replaces the definition for name. A replaced field keeps its
// original position.
func (r *Raw) Set(name string, def Def) *Raw {
	if r.index == nil {
		r.index = make(map[string]int)
	}
	if i, ok := r.index[name]; ok {
		r.fields[i].Def = def
		return r
	}
	r.index[name] = len(r.fields)
	r.fields = append(r.fields, RawField{Name: name, Def: def})
	return r
}

// Get returns the definition stored for name.
func (r *Raw) Get(name string) (Def, bool) {
	if r == nil {
		return nil, false
	}
	i, ok := r.index[name]
	if !ok {
		return nil, false
	}
	return r.fields[i].Def, true
}

// Fields returns the entries in declaration order.
func (r *Raw) Fields() []RawField {
	if r == nil {
		return nil
	}
	out := make([]RawField, len(r.fields))
	copy(out, r.fields)
	return out
}

// Len returns the number of fields.
func (r *Raw) Len() int {
	if r == nil {
		return 0
	}
	return len(r.fields)
}

// Clone returns a deep copy of r. Map and slice defaults are copied too.
func (r *Raw) Clone() *Raw {
	if r == nil {
		return nil
	}
	out := &Raw{
		fields: make([]RawField, len(r.fields)),
		index:  make(map[string]int, len(r.index)),
	}
	for i, f := range r.fields {
		out.fields[i] = RawField{Name: f.Name, Def: cloneDef(f.Def)}
		out.index[f.Name] = i
	}
	return out
}

func cloneDef(def Def) Def {
	switch d := def.(type) {
	case Descriptor:
		d.Required = cloneBool(d.Required)
		d.Default = cloneValue(d.Default)
		return d
	case ArrayDescriptor:
		d.Required = cloneBool(d.Required)
		d.Default = cloneValue(d.Default)
		if items, ok := d.Items.(*Raw); ok {
			d.Items = items.Clone()
		}
		return d
	case ObjectDescriptor:
		d.Required = cloneBool(d.Required)
		d.Default = cloneValue(d.Default)
		d.Schema = d.Schema.Clone()
		return d
	default:
		return def
	}
}

func cloneBool(b *bool) *bool {
	if b == nil {
		return nil
	}
	return Required(*b)
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = cloneValue(e)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = cloneValue(e)
		}
		return out
	default:
		return v
	}
}
