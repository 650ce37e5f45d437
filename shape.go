package shape

import (
	"fmt"

	"github.com/aretw0/shape/pkg/engine"
	"github.com/aretw0/shape/pkg/schema"
)

// Result is the outcome of one validation call.
type Result = engine.Result

// ErrorTree is the nested error mapping carried by a failed Result.
type ErrorTree = engine.ErrorTree

// Validator pairs a compiled schema with validation settings. It is safe for
// concurrent use.
type Validator struct {
	raw    *schema.Raw
	node   *schema.Node
	opts   options
	engine *engine.Engine
}

// New compiles raw and returns a Validator for it.
func New(raw *schema.Raw, opts ...Option) (*Validator, error) {
	o := defaultOptions().apply(opts)

	node, err := schema.Compile(raw)
	if err != nil {
		o.logger.Debug("schema compilation failed", "error", err)
		return nil, err
	}
	o.logger.Debug("schema compiled", "fields", node.Len())

	return &Validator{
		raw:    raw.Clone(),
		node:   node,
		opts:   o,
		engine: engine.New(o.engineOptions()...),
	}, nil
}

// NewFromMap builds a Validator from a schema decoded into Go maps.
func NewFromMap(m map[string]any, opts ...Option) (*Validator, error) {
	raw, err := schema.FromMap(m)
	if err != nil {
		return nil, err
	}
	return New(raw, opts...)
}

// NewFromJSON builds a Validator from a JSON shorthand schema.
func NewFromJSON(data []byte, opts ...Option) (*Validator, error) {
	raw, err := schema.ParseJSON(data)
	if err != nil {
		return nil, err
	}
	return New(raw, opts...)
}

// MustNew is like New but panics if the schema does not compile.
func MustNew(raw *schema.Raw, opts ...Option) *Validator {
	v, err := New(raw, opts...)
	if err != nil {
		panic(fmt.Sprintf("shape: %v", err))
	}
	return v
}

// Validate checks obj and returns a self-contained result. Options given
// here override the Validator's settings for this call only.
func (v *Validator) Validate(obj map[string]any, opts ...Option) Result {
	eng := v.engine
	if len(opts) > 0 {
		eng = v.engine.With(v.opts.apply(opts).engineOptions()...)
	}
	return eng.Validate(v.node, obj)
}

// Schema returns the compiled schema.
func (v *Validator) Schema() *schema.Node {
	return v.node
}

// Raw returns a copy of the shorthand schema the Validator was built from.
func (v *Validator) Raw() *schema.Raw {
	return v.raw.Clone()
}

// Validate compiles raw and checks obj in one call. Only schema errors are
// returned as error; data violations are reported in the Result.
func Validate(raw *schema.Raw, obj map[string]any, opts ...Option) (Result, error) {
	v, err := New(raw, opts...)
	if err != nil {
		return Result{}, err
	}
	return v.Validate(obj), nil
}

// ValidateMap is Validate for a schema decoded into Go maps.
func ValidateMap(raw map[string]any, obj map[string]any, opts ...Option) (Result, error) {
	v, err := NewFromMap(raw, opts...)
	if err != nil {
		return Result{}, err
	}
	return v.Validate(obj), nil
}
