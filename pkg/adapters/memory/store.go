package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/aretw0/shape/pkg/ports"
	"github.com/aretw0/shape/pkg/schema"
)

// Store implements ports.SchemaStore in memory.
// Schemas are kept serialized, so callers never share state with the store.
// Safe for concurrent use.
type Store struct {
	data map[string][]byte
	mu   sync.RWMutex
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{
		data: make(map[string][]byte),
	}
}

// NewStoreWith creates a store seeded with the given schemas.
func NewStoreWith(schemas map[string]*schema.Raw) (*Store, error) {
	s := NewStore()
	for name, raw := range schemas {
		if err := s.Save(context.Background(), name, raw); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Save persists the schema in memory.
func (s *Store) Save(ctx context.Context, name string, raw *schema.Raw) error {
	if err := ports.ValidateName(name); err != nil {
		return err
	}
	data, err := json.Marshal(raw)
	if err != nil {
		return fmt.Errorf("failed to marshal schema %s: %w", name, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[name] = data
	return nil
}

// Load retrieves the schema from memory.
func (s *Store) Load(ctx context.Context, name string) (*schema.Raw, error) {
	if err := ports.ValidateName(name); err != nil {
		return nil, err
	}

	s.mu.RLock()
	data, ok := s.data[name]
	s.mu.RUnlock()
	if !ok {
		return nil, ports.ErrSchemaNotFound
	}

	return schema.ParseJSON(data)
}

// Delete removes the schema.
func (s *Store) Delete(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, name)
	return nil
}

// List returns stored schema names in ascending order.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.data))
	for name := range s.data {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}
