package tui

import (
	"github.com/charmbracelet/glamour"
)

// NewRenderer returns a function that renders markdown using glamour.
// Styled output is used on terminals; pipes and files get the plain
// "notty" style so the markdown stays readable.
func NewRenderer(styled bool, width int) (func(string) (string, error), error) {
	opts := []glamour.TermRendererOption{glamour.WithStandardStyle("notty")}
	if styled {
		opts = []glamour.TermRendererOption{glamour.WithAutoStyle()}
	}
	if width > 0 {
		opts = append(opts, glamour.WithWordWrap(width))
	}

	r, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return nil, err
	}
	return r.Render, nil
}
