package openapi

import (
	"sort"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/aretw0/shape/pkg/schema"
)

const resultComponent = "ValidationResult"

// Document describes the validation endpoints of the named schemas, with each
// schema published under components/schemas.
func Document(title, version string, schemas map[string]*schema.Node) *openapi3.T {
	doc := &openapi3.T{
		OpenAPI: "3.0.3",
		Info: &openapi3.Info{
			Title:   title,
			Version: version,
		},
		Paths: openapi3.NewPaths(),
		Components: &openapi3.Components{
			Schemas: openapi3.Schemas{
				resultComponent: openapi3.NewSchemaRef("", resultSchema()),
			},
		},
	}

	names := make([]string, 0, len(schemas))
	for name := range schemas {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		doc.Components.Schemas[name] = openapi3.NewSchemaRef("", FromNode(schemas[name]))
		doc.Paths.Set("/schemas/"+name+"/validate", &openapi3.PathItem{
			Post: validateOperation(name),
		})
	}
	return doc
}

func validateOperation(name string) *openapi3.Operation {
	result := openapi3.NewSchemaRef("#/components/schemas/"+resultComponent, nil)

	op := openapi3.NewOperation()
	op.OperationID = "validate_" + name
	op.Summary = "Validate an object against the " + name + " schema"
	op.RequestBody = &openapi3.RequestBodyRef{
		Value: openapi3.NewRequestBody().
			WithRequired(true).
			WithJSONSchemaRef(openapi3.NewSchemaRef("#/components/schemas/"+name, nil)),
	}
	op.Responses = openapi3.NewResponses(
		openapi3.WithStatus(200, &openapi3.ResponseRef{
			Value: openapi3.NewResponse().WithDescription("The object is valid").WithJSONSchemaRef(result),
		}),
		openapi3.WithStatus(422, &openapi3.ResponseRef{
			Value: openapi3.NewResponse().WithDescription("The object violates the schema").WithJSONSchemaRef(result),
		}),
	)
	return op
}

func resultSchema() *openapi3.Schema {
	errors := openapi3.NewObjectSchema()
	errors.Description = "Nested path to the first violation, ending in {\"error\": message}"

	data := openapi3.NewObjectSchema()
	data.Nullable = true

	s := openapi3.NewObjectSchema().
		WithProperty("isValid", openapi3.NewBoolSchema()).
		WithProperty("errors", errors).
		WithProperty("data", data)
	s.Required = []string{"isValid", "errors", "data"}
	return s
}
