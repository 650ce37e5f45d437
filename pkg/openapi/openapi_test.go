package openapi_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/shape/pkg/openapi"
	"github.com/aretw0/shape/pkg/schema"
)

func productNode(t *testing.T) *schema.Node {
	t.Helper()
	raw, err := schema.ParseJSON([]byte(`{
	  "title": {"type": "string", "default": "title"},
	  "stock": "number",
	  "active": {"type": "boolean", "required": false},
	  "categories": {"type": "array", "schema": "string"},
	  "items": {"type": "array", "required": false, "schema": {"value": "number"}},
	  "origin": {"schema": {"country": {"type": "string", "default": "Argentina"}, "city": "string"}}
	}`))
	require.NoError(t, err)
	node, err := schema.Compile(raw)
	require.NoError(t, err)
	return node
}

func TestFromNode_Shape(t *testing.T) {
	s := openapi.FromNode(productNode(t))

	assert.True(t, s.Type.Is("object"))
	assert.Equal(t, []string{"title", "stock", "categories", "origin"}, s.Required)

	title := s.Properties["title"].Value
	assert.True(t, title.Type.Is("string"))
	assert.Equal(t, "title", title.Default)

	assert.True(t, s.Properties["stock"].Value.Type.Is("number"))
	assert.True(t, s.Properties["active"].Value.Type.Is("boolean"))

	categories := s.Properties["categories"].Value
	assert.True(t, categories.Type.Is("array"))
	assert.True(t, categories.Items.Value.Type.Is("string"))

	items := s.Properties["items"].Value
	assert.True(t, items.Items.Value.Type.Is("object"))
	assert.Equal(t, []string{"value"}, items.Items.Value.Required)

	origin := s.Properties["origin"].Value
	assert.Equal(t, []string{"city"}, origin.Required, "fields with defaults stay required")
	assert.Contains(t, origin.Properties, "country")
}

func TestFromNode_VisitJSON(t *testing.T) {
	s := openapi.FromNode(productNode(t))

	valid := map[string]any{
		"title":      "Lamp",
		"stock":      float64(3),
		"categories": []any{"home"},
		"origin":     map[string]any{"city": "Rosario"},
	}
	assert.NoError(t, s.VisitJSON(valid))

	invalid := map[string]any{
		"title":      "Lamp",
		"stock":      "three",
		"categories": []any{"home"},
		"origin":     map[string]any{"city": "Rosario"},
	}
	assert.Error(t, s.VisitJSON(invalid))

	missing := map[string]any{
		"title":      "Lamp",
		"stock":      float64(3),
		"categories": []any{"home"},
		"origin":     map[string]any{},
	}
	assert.Error(t, s.VisitJSON(missing))
}

func TestDocument(t *testing.T) {
	doc := openapi.Document("shape", "0.1.0", map[string]*schema.Node{
		"product": productNode(t),
		"tag":     schema.MustCompile(schema.NewRaw().Set("label", schema.String)),
	})

	require.NoError(t, doc.Validate(context.Background()))

	assert.NotNil(t, doc.Paths.Find("/schemas/product/validate"))
	assert.NotNil(t, doc.Paths.Find("/schemas/tag/validate"))
	assert.Contains(t, doc.Components.Schemas, "product")
	assert.Contains(t, doc.Components.Schemas, "ValidationResult")

	op := doc.Paths.Find("/schemas/product/validate").Post
	require.NotNil(t, op)
	assert.Equal(t, "validate_product", op.OperationID)
	assert.NotNil(t, op.Responses.Status(422))

	out, err := json.Marshal(doc)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"$ref":"#/components/schemas/product"`)
}

func TestDocument_Empty(t *testing.T) {
	doc := openapi.Document("shape", "dev", nil)
	require.NoError(t, doc.Validate(context.Background()))
	assert.Equal(t, 0, doc.Paths.Len())
}
