package file

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aretw0/shape/pkg/ports"
	"github.com/aretw0/shape/pkg/schema"
)

// extensions are probed in this order when loading a schema by name.
var extensions = []string{".json", ".yaml", ".yml"}

// Store implements ports.SchemaStore over a directory of schema files.
// Schemas are written as <name>.json; hand-written <name>.yaml or
// <name>.yml files are read as well.
type Store struct {
	BasePath string
}

// New creates a new Store with the given base path.
// If basePath is empty, it defaults to ".shape/schemas".
func New(basePath string) *Store {
	if basePath == "" {
		basePath = filepath.Join(".shape", "schemas")
	}
	return &Store{BasePath: basePath}
}

// Save writes the schema as JSON atomically: temp file, fsync, rename.
// Any YAML file for the same name is removed so Load sees a single source.
func (s *Store) Save(ctx context.Context, name string, raw *schema.Raw) error {
	if err := ports.ValidateName(name); err != nil {
		return err
	}
	if err := os.MkdirAll(s.BasePath, 0755); err != nil {
		return fmt.Errorf("failed to ensure schema directory: %w", err)
	}

	data, err := raw.MarshalJSON()
	if err != nil {
		return fmt.Errorf("failed to marshal schema %s: %w", name, err)
	}

	tmpFile, err := os.CreateTemp(s.BasePath, "tmp-"+name+"-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
	}()

	if _, err := tmpFile.Write(data); err != nil {
		return fmt.Errorf("failed to write to temp file: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		return fmt.Errorf("failed to fsync temp file: %w", err)
	}
	// Windows cannot rename an open file.
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	destPath := filepath.Join(s.BasePath, name+".json")
	if _, err := os.Stat(destPath); err == nil {
		// os.Rename does not overwrite on Windows.
		if err := os.Remove(destPath); err != nil {
			return fmt.Errorf("failed to remove existing schema file for overwrite: %w", err)
		}
	}
	if err := os.Rename(tmpPath, destPath); err != nil {
		return fmt.Errorf("failed to rename temp file to schema file: %w", err)
	}

	for _, ext := range extensions[1:] {
		if err := os.Remove(filepath.Join(s.BasePath, name+ext)); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove stale schema file: %w", err)
		}
	}
	return nil
}

// Load reads the first of <name>.json, <name>.yaml, <name>.yml that exists.
func (s *Store) Load(ctx context.Context, name string) (*schema.Raw, error) {
	if err := ports.ValidateName(name); err != nil {
		return nil, err
	}
	for _, ext := range extensions {
		raw, err := LoadSchema(filepath.Join(s.BasePath, name+ext))
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		return raw, err
	}
	return nil, ports.ErrSchemaNotFound
}

// Delete removes every file stored for name.
func (s *Store) Delete(ctx context.Context, name string) error {
	if err := ports.ValidateName(name); err != nil {
		return err
	}
	for _, ext := range extensions {
		if err := os.Remove(filepath.Join(s.BasePath, name+ext)); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to delete schema file: %w", err)
		}
	}
	return nil
}

// List returns the names of schema files in the directory, in ascending order.
func (s *Store) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.BasePath)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to read schema directory: %w", err)
	}

	seen := make(map[string]bool)
	names := []string{}
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), "tmp-") {
			continue
		}
		ext := filepath.Ext(entry.Name())
		if !isSchemaExt(ext) {
			continue
		}
		name := strings.TrimSuffix(entry.Name(), ext)
		if ports.ValidateName(name) != nil || seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func isSchemaExt(ext string) bool {
	for _, e := range extensions {
		if strings.EqualFold(e, ext) {
			return true
		}
	}
	return false
}
