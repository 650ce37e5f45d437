package schema

import (
	"encoding/json"
	"iter"
	"reflect"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Kind classifies a normalized field.
type Kind int

const (
	KindPrimitive Kind = iota
	KindObject
	KindArray
)

func (k Kind) String() string {
	switch k {
	case KindPrimitive:
		return "primitive"
	case KindObject:
		return "object"
	case KindArray:
		return "array"
	default:
		return "unknown"
	}
}

// FieldSpec is the normalized description of one field.
type FieldSpec struct {
	Kind     Kind
	Type     Tag       // Primitive type; Object for KindObject, Array for KindArray
	Required bool      // Defaults to true when the shorthand does not say otherwise
	Default  any       // nil when the field has no default
	Schema   *Node     // Child schema, set for KindObject
	Items    *ItemSpec // Element description, set for KindArray
}

// HasDefault reports whether a default value is attached to the field.
func (f FieldSpec) HasDefault() bool {
	return f.Default != nil
}

// ItemSpec describes array elements. Schema is nil for primitive items.
type ItemSpec struct {
	Type   Tag
	Schema *Node
}

// Node is a compiled schema level. It is immutable and safe for concurrent use.
type Node struct {
	fields *orderedmap.OrderedMap[string, FieldSpec]
}

func newNode() *Node {
	return &Node{fields: orderedmap.New[string, FieldSpec]()}
}

// Len returns the number of fields at this level.
func (n *Node) Len() int {
	if n == nil {
		return 0
	}
	return n.fields.Len()
}

// Field looks up a field by name.
func (n *Node) Field(name string) (FieldSpec, bool) {
	if n == nil {
		return FieldSpec{}, false
	}
	return n.fields.Get(name)
}

// Names returns the field names in declaration order.
func (n *Node) Names() []string {
	names := make([]string, 0, n.Len())
	for name := range n.All() {
		names = append(names, name)
	}
	return names
}

// All iterates the fields in declaration order.
func (n *Node) All() iter.Seq2[string, FieldSpec] {
	return func(yield func(string, FieldSpec) bool) {
		if n == nil {
			return
		}
		for pair := n.fields.Oldest(); pair != nil; pair = pair.Next() {
			if !yield(pair.Key, pair.Value) {
				return
			}
		}
	}
}

// Equal reports whether two compiled schemas are structurally identical,
// including field order.
func (n *Node) Equal(other *Node) bool {
	if n.Len() != other.Len() {
		return false
	}
	if n == nil || other == nil {
		return n.Len() == 0 && other.Len() == 0
	}
	a, b := n.fields.Oldest(), other.fields.Oldest()
	for ; a != nil && b != nil; a, b = a.Next(), b.Next() {
		if a.Key != b.Key || !a.Value.equal(b.Value) {
			return false
		}
	}
	return a == nil && b == nil
}

func (f FieldSpec) equal(o FieldSpec) bool {
	if f.Kind != o.Kind || f.Type != o.Type || f.Required != o.Required {
		return false
	}
	if !reflect.DeepEqual(f.Default, o.Default) {
		return false
	}
	if (f.Schema == nil) != (o.Schema == nil) || !f.Schema.Equal(o.Schema) {
		return false
	}
	if (f.Items == nil) != (o.Items == nil) {
		return false
	}
	if f.Items != nil {
		if f.Items.Type != o.Items.Type || !f.Items.Schema.Equal(o.Items.Schema) {
			return false
		}
	}
	return true
}

// TypeOf returns the type tag a Go value satisfies, or "" when it matches
// none. All numeric kinds and json.Number are numbers, string-keyed maps are
// objects and slices are arrays. nil matches no tag.
func TypeOf(v any) Tag {
	switch v.(type) {
	case nil:
		return ""
	case string:
		return String
	case bool:
		return Boolean
	case json.Number, float64, float32, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return Number
	case map[string]any:
		return Object
	case []any:
		return Array
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.String:
		return String
	case reflect.Bool:
		return Boolean
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return Number
	case reflect.Map:
		if rv.Type().Key().Kind() == reflect.String {
			return Object
		}
	case reflect.Slice, reflect.Array:
		return Array
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return ""
		}
		return TypeOf(rv.Elem().Interface())
	}
	return ""
}
