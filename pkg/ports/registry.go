package ports

import (
	"context"

	"github.com/aretw0/shape"
	"github.com/aretw0/shape/pkg/schema"
)

// SchemaRegistry resolves schema names to compiled validators.
// This is the interface used by adapters (HTTP, MCP) to serve named schemas.
type SchemaRegistry interface {
	// Put compiles raw and stores it under name. Schemas that fail to
	// compile are never stored.
	Put(ctx context.Context, name string, raw *schema.Raw) (*shape.Validator, error)

	// Get returns the validator for name, or ErrSchemaNotFound.
	Get(ctx context.Context, name string) (*shape.Validator, error)

	// Delete removes the schema and any cached validator.
	Delete(ctx context.Context, name string) error

	// List returns the stored names in ascending order.
	List(ctx context.Context) ([]string, error)

	// Validate checks obj against the named schema. Data violations are
	// reported in the Result; the error is reserved for lookup failures.
	Validate(ctx context.Context, name string, obj map[string]any, opts ...shape.Option) (shape.Result, error)

	// ValidateInline compiles raw for a single call without storing it.
	ValidateInline(raw *schema.Raw, obj map[string]any, opts ...shape.Option) (shape.Result, error)
}
