package schema

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrArrayNeedsDescriptor = errors.New("array fields require a descriptor object with an explicit item schema")
	ErrArrayMissingSchema   = errors.New("array schema needs a schema prop")
	ErrArrayItemShape       = errors.New("array item schema must be a schema object or string primitive")
	ErrUnknownType          = errors.New("unknown type tag")
	ErrUntypedDescriptor    = errors.New("descriptor needs a type, a schema or a default")
	ErrUnknownDescriptorKey = errors.New("unknown descriptor key")
	ErrDefaultType          = errors.New("default value does not match the field type")
	ErrMalformed            = errors.New("malformed schema")
)

// SchemaError reports a definition that cannot be compiled.
type SchemaError struct {
	Path   []string // Field path from the schema root; empty for document-level problems
	Err    error    // One of the Err* sentinels
	Detail string   // Optional extra context
}

func (e *SchemaError) Error() string {
	msg := e.Err.Error()
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if len(e.Path) == 0 {
		return "schema: " + msg
	}
	return fmt.Sprintf("schema: field %q: %s", strings.Join(e.Path, "."), msg)
}

func (e *SchemaError) Unwrap() error {
	return e.Err
}

func newSchemaError(path []string, err error, detail string) *SchemaError {
	return &SchemaError{Path: path, Err: err, Detail: detail}
}

// appendPath returns a fresh slice so sibling paths never share a backing array.
func appendPath(path []string, name string) []string {
	out := make([]string, len(path), len(path)+1)
	copy(out, path)
	return append(out, name)
}
