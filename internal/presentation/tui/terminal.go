package tui

import (
	"os"

	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// Profile picks the color profile for f. Anything that is not a terminal
// gets termenv.Ascii, which strips all styling.
func Profile(f *os.File) termenv.Profile {
	if !IsTerminal(f) {
		return termenv.Ascii
	}
	return termenv.NewOutput(f).EnvColorProfile()
}

// Width returns the terminal width of f, or 0 when it is unknown.
func Width(f *os.File) int {
	if !IsTerminal(f) {
		return 0
	}
	w, _, err := term.GetSize(int(f.Fd()))
	if err != nil {
		return 0
	}
	return w
}
