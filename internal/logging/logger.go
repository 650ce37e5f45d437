package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Format selects the slog handler.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// New creates the application logger on Stderr, keeping Stdout free for
// validation output and JSON-RPC traffic.
func New(level slog.Level, format Format) *slog.Logger {
	return NewWithWriter(os.Stderr, level, format)
}

// NewWithWriter is New with an explicit destination.
// It standardizes common keys ("error" -> "err").
func NewWithWriter(w io.Writer, level slog.Level, format Format) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == "error" {
				a.Key = "err"
			}
			return a
		},
	}
	if format == FormatJSON {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// ParseLevel maps a flag value such as "debug" or "WARN" to a slog level.
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log level %q", s)
	}
	return level, nil
}

// ParseFormat validates a --log-format value.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "", FormatText:
		return FormatText, nil
	case FormatJSON:
		return f, nil
	default:
		return FormatText, fmt.Errorf("invalid log format %q (want text or json)", s)
	}
}

// NewNop returns a no-op logger.
func NewNop() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
