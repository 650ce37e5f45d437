package shape_test

import (
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/shape"
	"github.com/aretw0/shape/pkg/schema"
)

const baseSchema = `{
  "title": "string",
  "description": "string",
  "stock": "number",
  "active": "boolean",
  "categories": {"type": "array", "schema": "string"}
}`

const withOrigin = `{
  "title": "string",
  "description": "string",
  "stock": "number",
  "active": "boolean",
  "categories": {"type": "array", "schema": "string"},
  "origin": {"schema": {"country": "string", "city": "string"}}
}`

const withDefaults = `{
  "title": {"type": "string", "default": "title"},
  "description": "string",
  "stock": "number",
  "active": "boolean",
  "categories": {"type": "array", "schema": "string"},
  "origin": {"schema": {"country": {"type": "string", "default": "Argentina"}, "city": "string"}}
}`

const optionalTitle = `{
  "title": {"type": "string", "required": false},
  "description": "string",
  "stock": "number",
  "active": "boolean",
  "categories": {"type": "array", "schema": "string"},
  "address": {"schema": {"street": "string", "number": "number"}}
}`

func raw(t *testing.T, doc string) *schema.Raw {
	t.Helper()
	r, err := schema.ParseJSON([]byte(doc))
	require.NoError(t, err)
	return r
}

// obj decodes a JSON literal the way an HTTP body would arrive.
func obj(t *testing.T, doc string) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal([]byte(doc), &m))
	return m
}

func leaf(msg string) map[string]any {
	return map[string]any{"error": msg}
}

func TestValidate_FirstLevel(t *testing.T) {
	valid := `{"title": "test title", "description": "test desc", "stock": 25, "active": true, "categories": ["category"]}`

	tests := []struct {
		name string
		data string
		want shape.ErrorTree
	}{
		{"valid object", valid, nil},
		{"required by default", `{"description": "test desc", "stock": 25, "active": true, "categories": ["category"]}`,
			shape.ErrorTree{"title": leaf("Is required")}},
		{"number", `{"title": "test title", "description": "test desc", "stock": "25", "active": true, "categories": ["category"]}`,
			shape.ErrorTree{"stock": leaf("stock must be a valid number.")}},
		{"string", `{"title": "test title", "description": 2, "stock": 25, "active": true, "categories": ["category"]}`,
			shape.ErrorTree{"description": leaf("description must be a valid string.")}},
		{"boolean", `{"title": "test title", "description": "test desc", "stock": 25, "active": "true", "categories": ["category"]}`,
			shape.ErrorTree{"active": leaf("active must be a valid boolean.")}},
		{"array", `{"title": "test title", "description": "test desc", "stock": 25, "active": true, "categories": "category"}`,
			shape.ErrorTree{"categories": leaf("categories must be a valid array.")}},
		{"array item", `{"title": "test title", "description": "test desc", "stock": 20, "active": true, "categories": ["category1", 3]}`,
			shape.ErrorTree{"categories": leaf("item with value '3' of array must be a valid string.")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := shape.Validate(raw(t, baseSchema), obj(t, tt.data))
			require.NoError(t, err)

			if tt.want == nil {
				assert.True(t, res.Valid)
				assert.Equal(t, shape.ErrorTree{}, res.Errors)
				assert.Equal(t, obj(t, tt.data), res.Data)
				return
			}
			assert.False(t, res.Valid)
			assert.Nil(t, res.Data)
			assert.Equal(t, tt.want, res.Errors)
		})
	}
}

func TestValidate_SecondLevel(t *testing.T) {
	item := `{"title": "test title", "description": "test desc", "stock": 25, "active": true, "categories": ["category"], "origin": {"country": "Argentina", "city": "MDP"}}`
	v, err := shape.NewFromJSON([]byte(withOrigin))
	require.NoError(t, err)

	t.Run("valid object", func(t *testing.T) {
		res := v.Validate(obj(t, item))
		assert.True(t, res.Valid)
		assert.Equal(t, obj(t, item), res.Data)
	})

	t.Run("first level required", func(t *testing.T) {
		data := obj(t, item)
		delete(data, "origin")
		res := v.Validate(data)
		assert.Equal(t, shape.ErrorTree{"origin": leaf("Is required")}, res.Errors)
	})

	t.Run("second level required", func(t *testing.T) {
		data := obj(t, item)
		delete(data["origin"].(map[string]any), "city")
		res := v.Validate(data)
		assert.Nil(t, res.Data)
		assert.Equal(t, shape.ErrorTree{"origin": map[string]any{"city": leaf("Is required")}}, res.Errors)
	})

	t.Run("second level type", func(t *testing.T) {
		data := obj(t, item)
		data["origin"].(map[string]any)["city"] = 12
		res := v.Validate(data)
		assert.Equal(t, shape.ErrorTree{"origin": map[string]any{"city": leaf("city must be a valid string.")}}, res.Errors)
	})
}

func TestValidate_Defaults(t *testing.T) {
	input := obj(t, `{"description": "test desc", "stock": 25, "active": true, "categories": ["category"], "origin": {"city": "MDP"}}`)

	res, err := shape.Validate(raw(t, withDefaults), input)
	require.NoError(t, err)

	assert.True(t, res.Valid)
	assert.Equal(t, obj(t, `{"title": "title", "description": "test desc", "stock": 25, "active": true, "categories": ["category"], "origin": {"country": "Argentina", "city": "MDP"}}`), res.Data)
	assert.NotContains(t, input, "title", "input is not mutated by default")
}

func TestValidate_OptionalAndPruning(t *testing.T) {
	r := raw(t, optionalTitle)

	t.Run("optional field may be absent", func(t *testing.T) {
		input := `{"description": "test desc", "stock": 25, "active": true, "categories": ["category"], "address": {"street": "Street", "number": 123}}`
		res, err := shape.Validate(r, obj(t, input))
		require.NoError(t, err)
		assert.True(t, res.Valid)
		assert.Equal(t, obj(t, input), res.Data)
	})

	t.Run("unknown fields are removed", func(t *testing.T) {
		input := obj(t, `{"title": "test title", "description": "test desc", "stock": 25, "active": true, "categories": ["category"], "address": {"street": "Street", "number": 123, "floor": 2}, "saraza": "saraza", "query": "SELECT *"}`)
		res, err := shape.Validate(r, input)
		require.NoError(t, err)
		assert.True(t, res.Valid)
		assert.Equal(t, obj(t, `{"title": "test title", "description": "test desc", "stock": 25, "active": true, "categories": ["category"], "address": {"street": "Street", "number": 123}}`), res.Data)
	})
}

func TestValidate_WhitelistDisabled(t *testing.T) {
	t.Run("first level", func(t *testing.T) {
		res, err := shape.Validate(raw(t, baseSchema),
			obj(t, `{"title": "1", "description": "2", "price": 3, "stock": 4, "active": true, "categories": ["6", "7"], "saraza": true}`),
			shape.WithWhitelist(false))
		require.NoError(t, err)
		assert.True(t, res.Valid)
		assert.Equal(t, true, res.Data["saraza"])
		assert.Equal(t, float64(3), res.Data["price"])
	})

	t.Run("second level", func(t *testing.T) {
		res, err := shape.Validate(raw(t, optionalTitle),
			obj(t, `{"title": "1", "description": "2", "stock": 4, "active": true, "categories": ["6"], "address": {"street": "strobel", "number": 4051, "saraza": true}}`),
			shape.WithWhitelist(false))
		require.NoError(t, err)
		assert.True(t, res.Valid)
		assert.Equal(t, true, res.Data["address"].(map[string]any)["saraza"])
	})
}

func TestValidate_ArrayOfObjects(t *testing.T) {
	v, err := shape.NewFromJSON([]byte(`{
		"title": "string",
		"categories": {"type": "array", "schema": {"name": "string", "value": "number"}}
	}`))
	require.NoError(t, err)

	res := v.Validate(obj(t, `{"title": "t", "categories": [{"name": "category2", "value": 2}, {"name": "category1", "value": 1}]}`))
	assert.True(t, res.Valid)

	res = v.Validate(obj(t, `{"title": "t", "categories": [{"name": "category2", "value": "2"}, {"name": "category1", "value": 1}]}`))
	assert.False(t, res.Valid)
	assert.Equal(t, shape.ErrorTree{"categories": map[string]any{"value": leaf("value must be a valid number.")}}, res.Errors)
}

func TestValidator_ResultsAreIndependent(t *testing.T) {
	v, err := shape.NewFromJSON([]byte(baseSchema))
	require.NoError(t, err)

	bad := v.Validate(obj(t, `{"description": "d", "stock": 1, "active": true, "categories": []}`))
	require.False(t, bad.Valid)

	good := v.Validate(obj(t, `{"title": "t", "description": "d", "stock": 1, "active": true, "categories": []}`))
	assert.True(t, good.Valid)
	assert.Empty(t, good.Errors)
	assert.Equal(t, shape.ErrorTree{"title": leaf("Is required")}, bad.Errors)
}

func TestValidator_PerCallOptions(t *testing.T) {
	v, err := shape.NewFromJSON([]byte(`{"title": "string"}`))
	require.NoError(t, err)

	input := map[string]any{"title": "t", "extra": 1}

	assert.NotContains(t, v.Validate(input).Data, "extra")
	assert.Contains(t, v.Validate(input, shape.WithWhitelist(false)).Data, "extra")

	res := v.Validate(input, shape.WithInPlace(true))
	require.True(t, res.Valid)
	assert.NotContains(t, input, "extra")

	lenient, err := shape.NewFromJSON([]byte(`{"title": "string"}`), shape.WithWhitelist(false))
	require.NoError(t, err)
	kept := map[string]any{"title": "t", "extra": 1}
	res = lenient.Validate(kept, shape.WithInPlace(true))
	require.True(t, res.Valid)
	assert.Contains(t, kept, "extra", "per-call options keep the validator's settings")
}

func TestValidator_ConcurrentUse(t *testing.T) {
	v, err := shape.NewFromJSON([]byte(withDefaults))
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			data := map[string]any{"description": "d", "stock": i, "active": true, "categories": []any{}, "origin": map[string]any{"city": "c"}}
			if i%2 == 0 {
				delete(data, "stock")
			}
			res := v.Validate(data)
			assert.Equal(t, i%2 != 0, res.Valid)
		}(i)
	}
	wg.Wait()
}

func TestNew_SchemaErrors(t *testing.T) {
	_, err := shape.NewFromMap(map[string]any{"tags": "array"})
	assert.True(t, errors.Is(err, schema.ErrArrayNeedsDescriptor))

	_, err = shape.NewFromJSON([]byte(`{"tags": {"type": "array"}}`))
	assert.ErrorIs(t, err, schema.ErrArrayMissingSchema)

	_, err = shape.ValidateMap(map[string]any{"tags": map[string]any{"type": "array", "schema": []any{"string"}}}, nil)
	assert.ErrorIs(t, err, schema.ErrArrayItemShape)

	assert.Panics(t, func() {
		shape.MustNew(schema.NewRaw().Set("tags", schema.Array))
	})
}

func TestValidator_Schema(t *testing.T) {
	r := raw(t, withOrigin)
	v, err := shape.New(r)
	require.NoError(t, err)

	assert.NotSame(t, r, v.Raw())
	assert.True(t, v.Schema().Equal(schema.MustCompile(v.Raw())))
	assert.Equal(t, []string{"title", "description", "stock", "active", "categories", "origin"}, v.Schema().Names())
}

func TestValidator_RawIsIsolated(t *testing.T) {
	r := schema.NewRaw().
		Set("title", schema.String).
		Set("tags", schema.ArrayDescriptor{Items: schema.String, Default: []any{"a"}})
	v, err := shape.New(r)
	require.NoError(t, err)

	r.Set("extra", schema.Number)
	v.Raw().Set("other", schema.Boolean)

	got := v.Raw()
	assert.Equal(t, 2, got.Len())
	assert.True(t, v.Schema().Equal(schema.MustCompile(got)))

	tags, _ := got.Get("tags")
	tags.(schema.ArrayDescriptor).Default.([]any)[0] = "changed"
	again, _ := v.Raw().Get("tags")
	assert.Equal(t, []any{"a"}, again.(schema.ArrayDescriptor).Default)
}

func TestValidateMap(t *testing.T) {
	res, err := shape.ValidateMap(
		map[string]any{"title": map[string]any{"type": "string", "default": "x"}},
		map[string]any{},
	)
	require.NoError(t, err)
	assert.True(t, res.Valid)
	assert.Equal(t, map[string]any{"title": "x"}, res.Data)
}
