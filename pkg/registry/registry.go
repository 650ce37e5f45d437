// Package registry keeps named schemas compiled once and ready to validate.
package registry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/shape"
	"github.com/aretw0/shape/internal/logging"
	"github.com/aretw0/shape/pkg/metrics"
	"github.com/aretw0/shape/pkg/ports"
	"github.com/aretw0/shape/pkg/schema"
)

// DefaultLockTTL bounds how long a crashed writer can hold a schema lock.
const DefaultLockTTL = 10 * time.Second

type entry struct {
	validator *shape.Validator
	loadedAt  time.Time
}

// Registry implements ports.SchemaRegistry over a SchemaStore, caching
// compiled validators. Safe for concurrent use.
type Registry struct {
	store     ports.SchemaStore
	locker    ports.DistributedLocker
	lockTTL   time.Duration
	cacheTTL  time.Duration
	validator []shape.Option
	metrics   *metrics.Recorder
	logger    *slog.Logger

	mu    sync.RWMutex
	cache map[string]entry
	// gen counts writes per name. A load only fills the cache if no Put or
	// Delete for that name finished while it ran.
	gen map[string]uint64
}

// Option configures a Registry.
type Option func(*Registry)

// WithValidatorOptions sets the options every cached validator is built with.
func WithValidatorOptions(opts ...shape.Option) Option {
	return func(r *Registry) {
		r.validator = append(r.validator, opts...)
	}
}

// WithLocker serializes writes to the same name across replicas.
func WithLocker(locker ports.DistributedLocker, ttl time.Duration) Option {
	return func(r *Registry) {
		r.locker = locker
		if ttl > 0 {
			r.lockTTL = ttl
		}
	}
}

// WithCacheTTL makes cached validators expire, so schemas written by other
// replicas are picked up. Zero (the default) caches until Put or Delete.
func WithCacheTTL(ttl time.Duration) Option {
	return func(r *Registry) {
		r.cacheTTL = ttl
	}
}

// WithMetrics records validations and compile failures.
func WithMetrics(rec *metrics.Recorder) Option {
	return func(r *Registry) {
		r.metrics = rec
	}
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Registry) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// New creates a registry over store.
func New(store ports.SchemaStore, opts ...Option) *Registry {
	r := &Registry{
		store:   store,
		lockTTL: DefaultLockTTL,
		logger:  logging.NewNop(),
		cache:   make(map[string]entry),
		gen:     make(map[string]uint64),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Put compiles raw and persists it. Schemas that fail to compile are never
// stored, and the returned error wraps the *schema.SchemaError.
func (r *Registry) Put(ctx context.Context, name string, raw *schema.Raw) (*shape.Validator, error) {
	if err := ports.ValidateName(name); err != nil {
		return nil, err
	}
	v, err := r.compile(raw)
	if err != nil {
		return nil, err
	}

	unlock, err := r.lock(ctx, name)
	if err != nil {
		return nil, err
	}
	defer unlock()

	if err := r.store.Save(ctx, name, raw); err != nil {
		return nil, fmt.Errorf("failed to store schema %s: %w", name, err)
	}

	r.mu.Lock()
	r.gen[name]++
	r.cache[name] = entry{validator: v, loadedAt: time.Now()}
	r.mu.Unlock()

	r.logger.Info("schema stored", "schema", name, "fields", v.Schema().Len())
	return v, nil
}

// Get returns the validator for name, loading and compiling it on first use.
func (r *Registry) Get(ctx context.Context, name string) (*shape.Validator, error) {
	r.mu.RLock()
	e, ok := r.cache[name]
	gen := r.gen[name]
	r.mu.RUnlock()
	if ok && !r.expired(e) {
		return e.validator, nil
	}

	raw, err := r.store.Load(ctx, name)
	if err != nil {
		if errors.Is(err, ports.ErrSchemaNotFound) {
			r.mu.Lock()
			if r.gen[name] == gen {
				delete(r.cache, name)
			}
			r.mu.Unlock()
		}
		return nil, err
	}
	v, err := r.compile(raw)
	if err != nil {
		r.logger.Error("stored schema does not compile", "schema", name, "error", err)
		return nil, fmt.Errorf("stored schema %s: %w", name, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.gen[name] != gen {
		// Stale load: a Put or Delete finished meanwhile.
		if cur, ok := r.cache[name]; ok {
			return cur.validator, nil
		}
		return v, nil
	}
	r.cache[name] = entry{validator: v, loadedAt: time.Now()}
	return v, nil
}

// Delete removes the schema from the store and the cache.
func (r *Registry) Delete(ctx context.Context, name string) error {
	unlock, err := r.lock(ctx, name)
	if err != nil {
		return err
	}
	defer unlock()

	if err := r.store.Delete(ctx, name); err != nil {
		return fmt.Errorf("failed to delete schema %s: %w", name, err)
	}
	r.mu.Lock()
	r.gen[name]++
	delete(r.cache, name)
	r.mu.Unlock()
	r.logger.Info("schema deleted", "schema", name)
	return nil
}

// List delegates to the store.
func (r *Registry) List(ctx context.Context) ([]string, error) {
	return r.store.List(ctx)
}

// Validate checks obj against the named schema and records metrics.
func (r *Registry) Validate(ctx context.Context, name string, obj map[string]any, opts ...shape.Option) (shape.Result, error) {
	v, err := r.Get(ctx, name)
	if err != nil {
		return shape.Result{}, err
	}
	start := time.Now()
	res := v.Validate(obj, opts...)
	r.metrics.ObserveValidation(name, res.Valid, time.Since(start))
	return res, nil
}

// ValidateInline compiles raw for a single call, recording metrics under
// the "inline" schema label.
func (r *Registry) ValidateInline(raw *schema.Raw, obj map[string]any, opts ...shape.Option) (shape.Result, error) {
	v, err := r.compile(raw)
	if err != nil {
		return shape.Result{}, err
	}
	start := time.Now()
	res := v.Validate(obj, opts...)
	r.metrics.ObserveValidation("", res.Valid, time.Since(start))
	return res, nil
}

func (r *Registry) compile(raw *schema.Raw) (*shape.Validator, error) {
	opts := append([]shape.Option{shape.WithLogger(r.logger)}, r.validator...)
	v, err := shape.New(raw, opts...)
	if err != nil {
		r.metrics.CompileFailed()
		return nil, err
	}
	return v, nil
}

func (r *Registry) lock(ctx context.Context, name string) (func(), error) {
	if r.locker == nil {
		return func() {}, nil
	}
	unlock, err := r.locker.Lock(ctx, "schema:"+name, r.lockTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to lock schema %s: %w", name, err)
	}
	return func() {
		// Release even if the request context was canceled meanwhile.
		if err := unlock(context.WithoutCancel(ctx)); err != nil {
			r.logger.Warn("failed to release schema lock", "schema", name, "error", err)
		}
	}, nil
}

func (r *Registry) expired(e entry) bool {
	return r.cacheTTL > 0 && time.Since(e.loadedAt) > r.cacheTTL
}

