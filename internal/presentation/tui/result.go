package tui

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/muesli/termenv"

	"github.com/aretw0/shape"
)

const (
	colorValid   = "#22c55e"
	colorInvalid = "#ef4444"
)

// PrintResult writes a human readable summary of res. Valid results are
// followed by the normalized data; invalid ones by the failing path.
func PrintResult(w io.Writer, p termenv.Profile, res shape.Result) error {
	if !res.Valid {
		fmt.Fprintln(w, p.String("✘ invalid").Foreground(p.Color(colorInvalid)).Bold())
		if f := res.Failure(); f != nil {
			path := strings.Join(f.Path, ".")
			fmt.Fprintf(w, "  %s: %s\n", p.String(path).Bold(), f.Message)
		}
		return nil
	}

	fmt.Fprintln(w, p.String("✔ valid").Foreground(p.Color(colorValid)).Bold())
	out, err := json.MarshalIndent(res.Data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode data: %w", err)
	}
	fmt.Fprintln(w, string(out))
	return nil
}

// PrintJSON writes res in its wire form.
func PrintJSON(w io.Writer, res shape.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}
