package schema

import (
	"encoding/json"
	"testing"
)

type label string

func TestTypeOf(t *testing.T) {
	str := "x"
	var nilMap map[string]any

	tests := []struct {
		value any
		want  Tag
	}{
		{"hello", String},
		{"", String},
		{label("x"), String},
		{&str, String},
		{true, Boolean},
		{42, Number},
		{int8(4), Number},
		{uint64(4), Number},
		{3.14, Number},
		{float32(1), Number},
		{json.Number("25"), Number},
		{map[string]any{}, Object},
		{map[string]string{"a": "b"}, Object},
		{nilMap, Object},
		{map[int]any{}, ""},
		{[]any{1}, Array},
		{[]string{"a"}, Array},
		{[2]int{1, 2}, Array},
		{nil, ""},
		{(*string)(nil), ""},
		{struct{}{}, ""},
	}

	for _, tt := range tests {
		if got := TypeOf(tt.value); got != tt.want {
			t.Errorf("TypeOf(%#v) = %q, want %q", tt.value, got, tt.want)
		}
	}
}

func TestTagValid(t *testing.T) {
	for _, tag := range []Tag{String, Number, Boolean, Object, Array} {
		if !tag.Valid() {
			t.Errorf("%q should be valid", tag)
		}
	}
	for _, tag := range []Tag{"", "int", "String", "[string]"} {
		if tag.Valid() {
			t.Errorf("%q should not be valid", tag)
		}
	}
}

func TestKindString(t *testing.T) {
	if KindArray.String() != "array" || KindObject.String() != "object" || KindPrimitive.String() != "primitive" {
		t.Error("unexpected Kind names")
	}
	if Kind(9).String() != "unknown" {
		t.Error("out of range Kind should be unknown")
	}
}
