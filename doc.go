/*
Package shape validates loosely typed objects against compact, declarative schemas.

A schema maps property names to a bare type tag ("string", "number", "boolean",
"object") or to a descriptor carrying required/default modifiers, nested object
schemas and typed arrays. The schema is compiled once into an immutable tree and
reused for every validation.

# Validation

Each call normalizes a copy of the input object before checking it:

  - Missing fields that declare a default receive a copy of it.
  - Properties the schema does not declare are removed, unless the whitelist is disabled.
  - Fields are then checked in declaration order and the first violation stops the call.

The Result mirrors the path of that violation:

	{"origin": {"city": {"error": "Is required"}}}

# Usage

	raw, err := schema.ParseJSON([]byte(`{
	  "title": {"type": "string", "default": "untitled"},
	  "stock": "number",
	  "categories": {"type": "array", "schema": "string"}
	}`))
	if err != nil {
		log.Fatal(err)
	}

	v, err := shape.New(raw)
	if err != nil {
		log.Fatal(err)
	}

	res := v.Validate(map[string]any{"stock": 3, "categories": []any{"a"}})
	if !res.Valid {
		log.Printf("invalid: %v", res.Err())
	}

For a single validation, Validate compiles and checks in one call. Storage,
HTTP and MCP surfaces live under pkg/adapters; pkg/registry keeps compiled
schemas by name.
*/
package shape
