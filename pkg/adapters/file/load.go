package file

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/aretw0/shape/pkg/schema"
)

// LoadSchema reads a shorthand schema file. Files ending in .json are parsed
// as JSON; anything else is parsed as YAML.
func LoadSchema(path string) (*schema.Raw, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if isJSON(path) {
		raw, err := schema.ParseJSON(data)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
		}
		return raw, nil
	}
	raw, err := schema.ParseYAML(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
	}
	return raw, nil
}

// LoadData reads an object to validate. JSON numbers are kept as json.Number
// so large integers survive unchanged.
func LoadData(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return DecodeData(data, isJSON(path))
}

// DecodeData decodes a JSON or YAML document whose root must be an object.
func DecodeData(data []byte, asJSON bool) (map[string]any, error) {
	var obj map[string]any
	if asJSON {
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()
		if err := dec.Decode(&obj); err != nil {
			return nil, fmt.Errorf("failed to parse data: %w", err)
		}
	} else if err := yaml.Unmarshal(data, &obj); err != nil {
		return nil, fmt.Errorf("failed to parse data: %w", err)
	}
	if obj == nil {
		return nil, fmt.Errorf("failed to parse data: document root must be an object")
	}
	return obj, nil
}

func isJSON(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".json")
}
