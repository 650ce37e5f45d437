package file_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/shape/pkg/adapters/file"
	"github.com/aretw0/shape/pkg/ports"
	"github.com/aretw0/shape/pkg/schema"
)

func TestFileStore_Contract(t *testing.T) {
	store := file.New(t.TempDir())
	ports.RunSchemaStoreContract(t, store)
}

func TestFileStore_ReadsYAML(t *testing.T) {
	dir := t.TempDir()
	doc := "title: string\norigin:\n  schema:\n    city: string\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "product.yaml"), []byte(doc), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0644))

	store := file.New(dir)
	ctx := context.Background()

	names, err := store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"product"}, names)

	raw, err := store.Load(ctx, "product")
	require.NoError(t, err)
	assert.Equal(t, []string{"title", "origin"}, schema.MustCompile(raw).Names())
}

func TestFileStore_SaveReplacesYAML(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "product.yml"), []byte("title: string\n"), 0644))

	store := file.New(dir)
	ctx := context.Background()
	require.NoError(t, store.Save(ctx, "product", schema.NewRaw().Set("stock", schema.Number)))

	_, err := os.Stat(filepath.Join(dir, "product.yml"))
	assert.True(t, os.IsNotExist(err))

	raw, err := store.Load(ctx, "product")
	require.NoError(t, err)
	_, ok := raw.Get("stock")
	assert.True(t, ok)
}

func TestFileStore_BrokenFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.json"), []byte(`{"tags": {"type": "array"}}`), 0644))

	_, err := file.New(dir).Load(context.Background(), "broken")
	assert.ErrorIs(t, err, schema.ErrArrayMissingSchema)
}

func TestFileStore_ListMissingDir(t *testing.T) {
	names, err := file.New(filepath.Join(t.TempDir(), "absent")).List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestLoadData(t *testing.T) {
	dir := t.TempDir()
	jsonPath := filepath.Join(dir, "item.json")
	yamlPath := filepath.Join(dir, "item.yaml")
	require.NoError(t, os.WriteFile(jsonPath, []byte(`{"stock": 9007199254740993, "origin": {"city": "MDP"}}`), 0644))
	require.NoError(t, os.WriteFile(yamlPath, []byte("stock: 25\norigin:\n  city: MDP\n"), 0644))

	fromJSON, err := file.LoadData(jsonPath)
	require.NoError(t, err)
	assert.Equal(t, json.Number("9007199254740993"), fromJSON["stock"])

	fromYAML, err := file.LoadData(yamlPath)
	require.NoError(t, err)
	assert.Equal(t, 25, fromYAML["stock"])
	assert.Equal(t, map[string]any{"city": "MDP"}, fromYAML["origin"])

	_, err = file.DecodeData([]byte(`[1, 2]`), true)
	assert.Error(t, err)
	_, err = file.DecodeData([]byte(`null`), true)
	assert.Error(t, err)
}

func TestLoadSchema_ByExtension(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "schema.yml")
	require.NoError(t, os.WriteFile(path, []byte("b: string\na: number\n"), 0644))

	raw, err := file.LoadSchema(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a"}, schema.MustCompile(raw).Names())

	_, err = file.LoadSchema(filepath.Join(dir, "missing.json"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
