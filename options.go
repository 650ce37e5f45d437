package shape

import (
	"log/slog"

	"github.com/aretw0/shape/internal/logging"
	"github.com/aretw0/shape/pkg/engine"
)

// Option configures a Validator or a single validation call.
type Option func(*options)

type options struct {
	whitelist bool
	inPlace   bool
	logger    *slog.Logger
}

func defaultOptions() options {
	return options{
		whitelist: true,
		logger:    logging.NewNop(),
	}
}

func (o options) apply(opts []Option) options {
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func (o options) engineOptions() []engine.Option {
	return []engine.Option{
		engine.WithWhitelist(o.whitelist),
		engine.WithInPlace(o.inPlace),
		engine.WithLogger(o.logger),
	}
}

// WithWhitelist controls pruning of properties the schema does not declare
// (default: true).
func WithWhitelist(enabled bool) Option {
	return func(o *options) {
		o.whitelist = enabled
	}
}

// WithInPlace applies defaults and pruning directly to the caller's object
// instead of a copy. The object must not be shared with concurrent calls.
func WithInPlace(enabled bool) Option {
	return func(o *options) {
		o.inPlace = enabled
	}
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}
