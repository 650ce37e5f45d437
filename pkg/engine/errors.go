package engine

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/aretw0/shape/pkg/schema"
)

// MsgRequired is reported when a required field is absent.
const MsgRequired = "Is required"

// ErrorTree mirrors the object's property path down to the failing field,
// ending in a leaf of the form {"error": message}.
type ErrorTree map[string]any

// FieldError is the first violation found by a validation call.
type FieldError struct {
	Path    []string
	Message string
}

func (e *FieldError) Error() string {
	if len(e.Path) == 0 {
		return e.Message
	}
	return fmt.Sprintf("field %q: %s", strings.Join(e.Path, "."), e.Message)
}

// Tree nests the message under every path segment from the root.
func (e *FieldError) Tree() ErrorTree {
	var node any = map[string]any{"error": e.Message}
	if len(e.Path) == 0 {
		return ErrorTree(node.(map[string]any))
	}
	for i := len(e.Path) - 1; i > 0; i-- {
		node = map[string]any{e.Path[i]: node}
	}
	return ErrorTree{e.Path[0]: node}
}

func requiredError(path []string) *FieldError {
	return &FieldError{Path: path, Message: MsgRequired}
}

func typeError(path []string, key string, want schema.Tag) *FieldError {
	return &FieldError{Path: path, Message: fmt.Sprintf("%s must be a valid %s.", key, want)}
}

func itemError(path []string, value any, want schema.Tag) *FieldError {
	return &FieldError{
		Path:    path,
		Message: fmt.Sprintf("item with value '%s' of array must be a valid %s.", formatValue(value), want),
	}
}

// formatValue renders an array item the way it reads in a JSON document,
// with strings left unquoted.
func formatValue(v any) string {
	switch t := v.(type) {
	case nil:
		return "null"
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case float64:
		return formatNumber(t, 64)
	case float32:
		return formatNumber(float64(t), 32)
	case json.Number:
		return t.String()
	}
	if data, err := json.Marshal(v); err == nil {
		return string(data)
	}
	return fmt.Sprint(v)
}

// formatNumber prints f in plain decimal between 1e-6 and 1e21 and in
// exponent form ("1e+21", "1.5e-7") outside that range.
func formatNumber(f float64, bits int) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case f == 0:
		return "0"
	}
	if abs := math.Abs(f); abs >= 1e-6 && abs < 1e21 {
		return strconv.FormatFloat(f, 'f', -1, bits)
	}
	s := strconv.FormatFloat(f, 'e', -1, bits)
	mant, exp, _ := strings.Cut(s, "e")
	sign, digits := exp[:1], strings.TrimLeft(exp[1:], "0")
	return mant + "e" + sign + digits
}
