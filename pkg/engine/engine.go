// Package engine validates and normalizes loosely typed objects against a
// compiled schema.
//
// Each call runs two passes. The first applies defaults for absent fields and,
// when the whitelist is enabled, prunes properties the schema does not
// declare. The second walks the schema in declaration order and stops at the
// first violation.
package engine

import (
	"log/slog"
	"strings"

	"github.com/aretw0/shape/internal/logging"
	"github.com/aretw0/shape/pkg/schema"
)

// Engine runs validations. It holds no per-call state, so one Engine may be
// shared by concurrent callers as long as they do not share input objects in
// in-place mode.
type Engine struct {
	whitelist bool
	inPlace   bool
	logger    *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithWhitelist toggles pruning of undeclared properties (default: true).
func WithWhitelist(enabled bool) Option {
	return func(e *Engine) {
		e.whitelist = enabled
	}
}

// WithInPlace makes Validate mutate the caller's object instead of a copy.
func WithInPlace(enabled bool) Option {
	return func(e *Engine) {
		e.inPlace = enabled
	}
}

// WithLogger sets the structured logger used for failure diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// New creates an Engine with the whitelist enabled.
func New(opts ...Option) *Engine {
	e := &Engine{
		whitelist: true,
		logger:    logging.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// With returns a copy of the engine with opts applied on top.
func (e *Engine) With(opts ...Option) *Engine {
	clone := *e
	for _, opt := range opts {
		opt(&clone)
	}
	return &clone
}

// Validate checks obj against node. Unless the engine runs in place, obj is
// left untouched and the normalized object is returned in Result.Data.
// A nil obj is treated as an empty object.
func (e *Engine) Validate(node *schema.Node, obj map[string]any) Result {
	switch {
	case obj == nil:
		obj = map[string]any{}
	case !e.inPlace:
		obj = copyValue(obj).(map[string]any)
	}

	e.normalize(node, obj)

	if ferr := check(node, obj, nil); ferr != nil {
		e.logger.Debug("validation failed",
			"path", strings.Join(ferr.Path, "."),
			"reason", ferr.Message,
		)
		return failed(ferr)
	}
	return Result{Valid: true, Errors: ErrorTree{}, Data: obj}
}
