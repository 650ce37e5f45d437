// Package openapi exports compiled schemas as OpenAPI 3 documents.
package openapi

import (
	"github.com/getkin/kin-openapi/openapi3"

	"github.com/aretw0/shape/pkg/schema"
)

// FromNode converts a compiled schema into an OpenAPI object schema.
// Required fields keep declaration order; defaults are carried over.
// Undeclared properties stay allowed, since pruning happens at validation.
func FromNode(node *schema.Node) *openapi3.Schema {
	out := openapi3.NewObjectSchema()
	for name, f := range node.All() {
		out.WithProperty(name, fromField(f))
		if f.Required {
			out.Required = append(out.Required, name)
		}
	}
	return out
}

func fromField(f schema.FieldSpec) *openapi3.Schema {
	var s *openapi3.Schema
	switch f.Kind {
	case schema.KindObject:
		s = FromNode(f.Schema)
	case schema.KindArray:
		s = openapi3.NewArraySchema().WithItems(fromItems(f.Items))
	default:
		s = primitive(f.Type)
	}
	if f.HasDefault() {
		s.Default = f.Default
	}
	return s
}

func fromItems(items *schema.ItemSpec) *openapi3.Schema {
	if items.Schema != nil {
		return FromNode(items.Schema)
	}
	return primitive(items.Type)
}

func primitive(t schema.Tag) *openapi3.Schema {
	switch t {
	case schema.String:
		return openapi3.NewStringSchema()
	case schema.Number:
		return openapi3.NewFloat64Schema()
	case schema.Boolean:
		return openapi3.NewBoolSchema()
	default:
		return openapi3.NewObjectSchema()
	}
}
