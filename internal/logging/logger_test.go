package logging

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWithWriter_RenamesErrorKey(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(&buf, slog.LevelInfo, FormatText)

	logger.Error("store failed", "error", errors.New("boom"))

	assert.Contains(t, buf.String(), "err=boom")
	assert.NotContains(t, buf.String(), "error=boom")
}

func TestNewWithWriter_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(&buf, slog.LevelDebug, FormatJSON)

	logger.Debug("validation failed", "path", "origin.city")

	assert.Contains(t, buf.String(), `"path":"origin.city"`)
}

func TestNewWithWriter_FiltersLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(&buf, slog.LevelWarn, FormatText)

	logger.Info("hidden")
	assert.Empty(t, buf.String())
}

func TestParseLevel(t *testing.T) {
	level, err := ParseLevel("debug")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)

	level, err = ParseLevel("WARN")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelWarn, level)

	_, err = ParseLevel("verbose")
	assert.Error(t, err)
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("JSON")
	require.NoError(t, err)
	assert.Equal(t, FormatJSON, f)

	f, err = ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatText, f)

	_, err = ParseFormat("xml")
	assert.Error(t, err)
}
