package middleware

import (
	"context"
	"errors"

	"github.com/aretw0/shape/pkg/ports"
	"github.com/aretw0/shape/pkg/schema"
)

// ErrReadOnly is returned by writes through a read-only store.
var ErrReadOnly = errors.New("schema store is read-only")

type readOnly struct {
	ports.SchemaStore
}

// ReadOnly rejects Save and Delete, leaving Load and List untouched.
func ReadOnly() Middleware {
	return func(next ports.SchemaStore) ports.SchemaStore {
		return readOnly{next}
	}
}

func (readOnly) Save(context.Context, string, *schema.Raw) error {
	return ErrReadOnly
}

func (readOnly) Delete(context.Context, string) error {
	return ErrReadOnly
}
