package ports

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/aretw0/shape/pkg/schema"
)

var (
	// ErrSchemaNotFound is returned when no schema is stored under a name.
	ErrSchemaNotFound = errors.New("schema not found")
	// ErrInvalidName is returned for names that cannot be used as storage keys.
	ErrInvalidName = errors.New("invalid schema name")
)

var namePattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// ValidateName checks that name is usable as a file name and a Redis key
// suffix: letters, digits, '.', '_' and '-', not starting with a separator.
func ValidateName(name string) error {
	if len(name) > 128 || !namePattern.MatchString(name) || strings.Contains(name, "..") {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}

// SchemaStore persists shorthand schemas. Implementations must keep the
// field order of the stored schema.
type SchemaStore interface {
	// Save stores raw under name, replacing any previous version.
	Save(ctx context.Context, name string, raw *schema.Raw) error

	// Load retrieves the schema stored under name.
	// Returns ErrSchemaNotFound if nothing is stored.
	Load(ctx context.Context, name string) (*schema.Raw, error)

	// Delete removes the schema. Deleting a missing name is not an error.
	Delete(ctx context.Context, name string) error

	// List returns the stored names in ascending order.
	List(ctx context.Context) ([]string, error)
}
