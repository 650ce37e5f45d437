package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

var bannerLines = []struct {
	text  string
	color string
}{
	{`      _                      `, "#818cf8"},
	{`  ___| |__   __ _ _ __   ___ `, "#a78bfa"},
	{` / __| '_ \ / _' | '_ \ / _ \`, "#c084fc"},
	{` \__ \ | | | (_| | |_) |  __/`, "#e879f9"},
	{` |___/_| |_|\__,_| .__/ \___|`, "#f472b6"},
	{`                 |_|         `, "#fb7185"},
}

// PrintBanner writes the shape banner followed by the version.
func PrintBanner(w io.Writer, p termenv.Profile, version string) {
	fmt.Fprintln(w)
	for _, l := range bannerLines {
		fmt.Fprintln(w, p.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintln(w, p.String("  v"+version).Faint())
	fmt.Fprintln(w)
}
