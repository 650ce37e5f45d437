// Package schema turns shorthand object schemas into normalized, immutable
// schema trees.
//
// A shorthand schema maps property names either to a bare type tag or to a
// descriptor:
//
//	raw := schema.NewRaw().
//	    Set("title", schema.String).
//	    Set("stock", schema.Descriptor{Type: schema.Number, Default: 0}).
//	    Set("categories", schema.ArrayDescriptor{Items: schema.String}).
//	    Set("origin", schema.ObjectDescriptor{
//	        Schema: schema.NewRaw().Set("city", schema.String),
//	    })
//
//	node, err := schema.Compile(raw)
//
// The same shape can be decoded from loosely typed Go values (FromMap), from
// JSON (ParseJSON) or from YAML (ParseYAML):
//
//	{
//	  "title": "string",
//	  "stock": {"type": "number", "default": 0},
//	  "categories": {"type": "array", "schema": "string"},
//	  "origin": {"schema": {"city": "string"}}
//	}
//
// Fields are required unless a descriptor sets "required": false. Field order
// is preserved from the source document and drives the order in which the
// engine reports the first violation.
//
// Compilation never returns a partial tree: any malformed definition yields a
// *SchemaError naming the offending field path.
package schema
