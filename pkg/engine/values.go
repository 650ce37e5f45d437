package engine

import "reflect"

// toObject returns v as a map[string]any. String-keyed maps of other types
// are converted into a fresh map; anything else reports false.
func toObject(v any) (map[string]any, bool) {
	switch t := v.(type) {
	case map[string]any:
		if t == nil {
			return map[string]any{}, true
		}
		return t, true
	case nil:
		return nil, false
	}

	rv := indirect(reflect.ValueOf(v))
	if !rv.IsValid() || rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
		return nil, false
	}
	out := make(map[string]any, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		out[iter.Key().String()] = iter.Value().Interface()
	}
	return out, true
}

// toArray returns v as a []any, converting typed slices and arrays.
func toArray(v any) ([]any, bool) {
	switch t := v.(type) {
	case []any:
		return t, true
	case nil:
		return nil, false
	}

	rv := indirect(reflect.ValueOf(v))
	if !rv.IsValid() || (rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array) {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}

func indirect(rv reflect.Value) reflect.Value {
	for rv.IsValid() && (rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface) {
		if rv.IsNil() {
			return reflect.Value{}
		}
		rv = rv.Elem()
	}
	return rv
}

// copyValue deep-copies objects and arrays so the result never aliases the
// input or a schema default. Scalars are returned as is.
func copyValue(v any) any {
	if obj, ok := toObject(v); ok {
		out := make(map[string]any, len(obj))
		for k, e := range obj {
			out[k] = copyValue(e)
		}
		return out
	}
	if arr, ok := toArray(v); ok {
		out := make([]any, len(arr))
		for i, e := range arr {
			out[i] = copyValue(e)
		}
		return out
	}
	return v
}
