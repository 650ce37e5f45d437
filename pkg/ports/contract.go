package ports

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/shape/pkg/schema"
)

// contractSchema exercises every shorthand variant, declared out of
// alphabetical order so stores that lose field order are caught.
func contractSchema() *schema.Raw {
	return schema.NewRaw().
		Set("title", schema.Descriptor{Type: schema.String, Default: "untitled"}).
		Set("stock", schema.Number).
		Set("active", schema.Descriptor{Type: schema.Boolean, Required: schema.Required(false)}).
		Set("categories", schema.ArrayDescriptor{Items: schema.String}).
		Set("items", schema.ArrayDescriptor{Items: schema.NewRaw().Set("value", schema.Number)}).
		Set("origin", schema.ObjectDescriptor{
			Schema: schema.NewRaw().Set("country", schema.String).Set("city", schema.String),
		})
}

// RunSchemaStoreContract runs a suite of tests to verify that a SchemaStore
// implementation adheres to the defined interface contract.
func RunSchemaStoreContract(t *testing.T, store SchemaStore) {
	ctx := context.Background()
	name := "contract-" + time.Now().Format("20060102150405")

	t.Run("Save and Load", func(t *testing.T) {
		raw := contractSchema()
		require.NoError(t, store.Save(ctx, name, raw), "Save should not return error")

		loaded, err := store.Load(ctx, name)
		require.NoError(t, err, "Load should not return error")

		want := schema.MustCompile(raw)
		got, err := schema.Compile(loaded)
		require.NoError(t, err, "loaded schema should compile")
		assert.Equal(t, want.Names(), got.Names(), "field order must survive storage")
		assert.True(t, want.Equal(got), "loaded schema should compile to the same tree")
	})

	t.Run("Save Replaces", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, name, schema.NewRaw().Set("only", schema.String)))

		loaded, err := store.Load(ctx, name)
		require.NoError(t, err)
		assert.Equal(t, 1, loaded.Len())
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+name)
		assert.ErrorIs(t, err, ErrSchemaNotFound)
	})

	t.Run("Invalid Name", func(t *testing.T) {
		err := store.Save(ctx, "../escape", contractSchema())
		assert.ErrorIs(t, err, ErrInvalidName)

		_, err = store.Load(ctx, "")
		assert.ErrorIs(t, err, ErrInvalidName)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, name, contractSchema()))

		require.NoError(t, store.Delete(ctx, name), "Delete should not return error")

		_, err := store.Load(ctx, name)
		assert.ErrorIs(t, err, ErrSchemaNotFound, "Load after Delete should return ErrSchemaNotFound")

		assert.NoError(t, store.Delete(ctx, name), "deleting twice is not an error")
	})

	t.Run("List", func(t *testing.T) {
		id1 := name + "-b"
		id2 := name + "-a"
		require.NoError(t, store.Save(ctx, id1, contractSchema()))
		require.NoError(t, store.Save(ctx, id2, contractSchema()))

		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		names, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, names, id1)
		assert.Contains(t, names, id2)
		assert.IsNonDecreasing(t, names, "names are listed in ascending order")
	})
}
