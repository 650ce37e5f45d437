package tui

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/shape"
	"github.com/aretw0/shape/pkg/schema"
)

func productValidator(t *testing.T) *shape.Validator {
	t.Helper()
	v, err := shape.NewFromJSON([]byte(`{
	  "title": {"type": "string", "default": "untitled"},
	  "stock": {"type": "number", "required": false},
	  "origin": {"schema": {"city": "string"}},
	  "items": {"type": "array", "schema": {"value": "number"}}
	}`))
	require.NoError(t, err)
	return v
}

func TestPrintResult_Valid(t *testing.T) {
	v := productValidator(t)
	res := v.Validate(map[string]any{"origin": map[string]any{"city": "Rosario"}, "items": []any{}})

	var buf bytes.Buffer
	require.NoError(t, PrintResult(&buf, termenv.Ascii, res))

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "✔ valid\n"), out)
	assert.Contains(t, out, `"title": "untitled"`)
	assert.NotContains(t, out, "\x1b[", "ascii profile must not emit escapes")
}

func TestPrintResult_Invalid(t *testing.T) {
	v := productValidator(t)
	res := v.Validate(map[string]any{"origin": map[string]any{}, "items": []any{}})

	var buf bytes.Buffer
	require.NoError(t, PrintResult(&buf, termenv.Ascii, res))
	assert.Equal(t, "✘ invalid\n  origin.city: Is required\n", buf.String())
}

func TestPrintJSON(t *testing.T) {
	v := productValidator(t)
	res := v.Validate(map[string]any{})

	var buf bytes.Buffer
	require.NoError(t, PrintJSON(&buf, res))
	assert.JSONEq(t, `{"isValid": false, "errors": {"origin": {"error": "Is required"}}, "data": null}`, buf.String())
}

func TestSchemaMarkdown(t *testing.T) {
	md := SchemaMarkdown("product", productValidator(t).Schema())

	want := "# product\n\n" +
		"| Field | Type | Required | Default |\n" +
		"| --- | --- | --- | --- |\n" +
		"| `title` | string | yes | `\"untitled\"` |\n" +
		"| `stock` | number | no |  |\n" +
		"| `origin` | object | yes |  |\n" +
		"| `origin.city` | string | yes |  |\n" +
		"| `items` | array<object> | yes |  |\n" +
		"| `items[].value` | number | yes |  |\n"
	assert.Equal(t, want, md)
}

func TestSchemaMarkdown_PrimitiveArray(t *testing.T) {
	node := schema.MustCompile(schema.NewRaw().Set("tags", schema.ArrayDescriptor{Items: schema.String}))
	assert.Contains(t, SchemaMarkdown("", node), "| `tags` | array<string> | yes |  |")
}

func TestNewRenderer_Plain(t *testing.T) {
	render, err := NewRenderer(false, 80)
	require.NoError(t, err)

	out, err := render(SchemaMarkdown("product", productValidator(t).Schema()))
	require.NoError(t, err)
	assert.Contains(t, out, "product")
	assert.Contains(t, out, "origin.city")
}

func TestPrintBanner(t *testing.T) {
	var buf bytes.Buffer
	PrintBanner(&buf, termenv.Ascii, "1.2.3")
	assert.Contains(t, buf.String(), "v1.2.3")
	assert.NotContains(t, buf.String(), "\x1b[")
}

func TestProfile_NotATerminal(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "out")
	require.NoError(t, err)
	defer f.Close()

	assert.False(t, IsTerminal(f))
	assert.Equal(t, termenv.Ascii, Profile(f))
	assert.Zero(t, Width(f))
}
