package engine

import "github.com/aretw0/shape/pkg/schema"

// check walks node in declaration order and returns the first violation.
func check(node *schema.Node, obj map[string]any, path []string) *FieldError {
	for name, f := range node.All() {
		fieldPath := extend(path, name)

		value, ok := obj[name]
		if !ok {
			if f.Required {
				return requiredError(fieldPath)
			}
			continue
		}

		switch f.Kind {
		case schema.KindArray:
			items, ok := toArray(value)
			if !ok {
				return typeError(fieldPath, name, schema.Array)
			}
			for _, item := range items {
				if ferr := checkItem(f.Items, item, fieldPath); ferr != nil {
					return ferr
				}
			}
		case schema.KindObject:
			child, ok := toObject(value)
			if !ok {
				return typeError(fieldPath, name, schema.Object)
			}
			if ferr := check(f.Schema, child, fieldPath); ferr != nil {
				return ferr
			}
		default:
			if schema.TypeOf(value) != f.Type {
				return typeError(fieldPath, name, f.Type)
			}
		}
	}
	return nil
}

// checkItem validates one array element. Errors inside object elements are
// reported under the array field's path.
func checkItem(items *schema.ItemSpec, item any, path []string) *FieldError {
	if items.Schema == nil {
		if schema.TypeOf(item) != items.Type {
			return itemError(path, item, items.Type)
		}
		return nil
	}
	child, ok := toObject(item)
	if !ok {
		return itemError(path, item, schema.Object)
	}
	return check(items.Schema, child, path)
}

func extend(path []string, name string) []string {
	out := make([]string, len(path), len(path)+1)
	copy(out, path)
	return append(out, name)
}
