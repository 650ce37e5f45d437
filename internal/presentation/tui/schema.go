package tui

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aretw0/shape/pkg/schema"
)

// SchemaMarkdown renders a compiled schema as a markdown table. Nested
// fields are listed with dotted paths, array items with a "[]" suffix.
func SchemaMarkdown(title string, node *schema.Node) string {
	var sb strings.Builder
	if title != "" {
		fmt.Fprintf(&sb, "# %s\n\n", title)
	}
	sb.WriteString("| Field | Type | Required | Default |\n")
	sb.WriteString("| --- | --- | --- | --- |\n")
	writeRows(&sb, "", node)
	return sb.String()
}

func writeRows(sb *strings.Builder, prefix string, node *schema.Node) {
	for name, f := range node.All() {
		path := prefix + name
		fmt.Fprintf(sb, "| `%s` | %s | %s | %s |\n", path, typeLabel(f), yesNo(f.Required), defaultLabel(f))

		switch f.Kind {
		case schema.KindObject:
			writeRows(sb, path+".", f.Schema)
		case schema.KindArray:
			if f.Items.Schema != nil {
				writeRows(sb, path+"[].", f.Items.Schema)
			}
		}
	}
}

func typeLabel(f schema.FieldSpec) string {
	if f.Kind == schema.KindArray {
		return fmt.Sprintf("array<%s>", f.Items.Type)
	}
	return string(f.Type)
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func defaultLabel(f schema.FieldSpec) string {
	if !f.HasDefault() {
		return ""
	}
	out, err := json.Marshal(f.Default)
	if err != nil {
		return fmt.Sprint(f.Default)
	}
	return "`" + strings.ReplaceAll(string(out), "|", `\|`) + "`"
}
