package engine

import "github.com/aretw0/shape/pkg/schema"

// normalize applies defaults and prunes undeclared properties, descending
// into declared object fields. Arrays are left for the check pass.
func (e *Engine) normalize(node *schema.Node, obj map[string]any) {
	for name, f := range node.All() {
		if _, ok := obj[name]; !ok && f.HasDefault() {
			obj[name] = copyValue(f.Default)
		}
	}

	for key, value := range obj {
		f, known := node.Field(key)
		if !known {
			if e.whitelist {
				delete(obj, key)
			}
			continue
		}
		if f.Kind != schema.KindObject {
			continue
		}
		if child, ok := toObject(value); ok {
			obj[key] = child
			e.normalize(f.Schema, child)
		}
	}
}
