package registry_test

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/shape"
	"github.com/aretw0/shape/pkg/adapters/memory"
	"github.com/aretw0/shape/pkg/metrics"
	"github.com/aretw0/shape/pkg/ports"
	"github.com/aretw0/shape/pkg/registry"
	"github.com/aretw0/shape/pkg/schema"
)

var _ ports.SchemaRegistry = (*registry.Registry)(nil)

// countingStore wraps a memory store and counts loads.
type countingStore struct {
	*memory.Store
	loads atomic.Int32
}

func (s *countingStore) Load(ctx context.Context, name string) (*schema.Raw, error) {
	s.loads.Add(1)
	return s.Store.Load(ctx, name)
}

// recordingLocker records which keys were locked and unlocked.
type recordingLocker struct {
	mu     sync.Mutex
	events []string
}

func (l *recordingLocker) Lock(ctx context.Context, key string, ttl time.Duration) (ports.UnlockFunc, error) {
	l.mu.Lock()
	l.events = append(l.events, "lock "+key)
	l.mu.Unlock()
	return func(ctx context.Context) error {
		l.mu.Lock()
		l.events = append(l.events, "unlock "+key)
		l.mu.Unlock()
		return nil
	}, nil
}

func productRaw() *schema.Raw {
	return schema.NewRaw().
		Set("title", schema.Descriptor{Type: schema.String, Default: "untitled"}).
		Set("stock", schema.Number)
}

func TestRegistry_PutGetValidate(t *testing.T) {
	ctx := context.Background()
	reg := registry.New(memory.NewStore())

	v, err := reg.Put(ctx, "product", productRaw())
	require.NoError(t, err)
	assert.Equal(t, []string{"title", "stock"}, v.Schema().Names())

	got, err := reg.Get(ctx, "product")
	require.NoError(t, err)
	assert.Same(t, v, got, "Put primes the cache")

	res, err := reg.Validate(ctx, "product", map[string]any{"stock": 1})
	require.NoError(t, err)
	assert.True(t, res.Valid)
	assert.Equal(t, "untitled", res.Data["title"])

	names, err := reg.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"product"}, names)
}

func TestRegistry_PutRejectsInvalidSchema(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	reg := registry.New(store)

	_, err := reg.Put(ctx, "bad", schema.NewRaw().Set("tags", schema.Array))
	assert.ErrorIs(t, err, schema.ErrArrayNeedsDescriptor)

	_, err = store.Load(ctx, "bad")
	assert.ErrorIs(t, err, ports.ErrSchemaNotFound, "invalid schemas are never stored")

	_, err = reg.Put(ctx, "bad/name", productRaw())
	assert.ErrorIs(t, err, ports.ErrInvalidName)
}

func TestRegistry_CompilesOnce(t *testing.T) {
	ctx := context.Background()
	seeded, err := memory.NewStoreWith(map[string]*schema.Raw{"product": productRaw()})
	require.NoError(t, err)
	store := &countingStore{Store: seeded}
	reg := registry.New(store)

	for i := 0; i < 5; i++ {
		_, err := reg.Get(ctx, "product")
		require.NoError(t, err)
	}
	assert.Equal(t, int32(1), store.loads.Load())

	require.NoError(t, reg.Delete(ctx, "product"))
	_, err = reg.Get(ctx, "product")
	assert.ErrorIs(t, err, ports.ErrSchemaNotFound)
}

func TestRegistry_CacheTTL(t *testing.T) {
	ctx := context.Background()
	seeded, err := memory.NewStoreWith(map[string]*schema.Raw{"product": productRaw()})
	require.NoError(t, err)
	store := &countingStore{Store: seeded}
	reg := registry.New(store, registry.WithCacheTTL(time.Nanosecond))

	_, err = reg.Get(ctx, "product")
	require.NoError(t, err)
	time.Sleep(time.Millisecond)
	_, err = reg.Get(ctx, "product")
	require.NoError(t, err)

	assert.Equal(t, int32(2), store.loads.Load())
}

func TestRegistry_ValidatorOptions(t *testing.T) {
	ctx := context.Background()
	reg := registry.New(memory.NewStore(), registry.WithValidatorOptions(shape.WithWhitelist(false)))

	_, err := reg.Put(ctx, "product", productRaw())
	require.NoError(t, err)

	res, err := reg.Validate(ctx, "product", map[string]any{"stock": 1, "extra": true})
	require.NoError(t, err)
	assert.Equal(t, true, res.Data["extra"])

	res, err = reg.Validate(ctx, "product", map[string]any{"stock": 1, "extra": true}, shape.WithWhitelist(true))
	require.NoError(t, err)
	assert.NotContains(t, res.Data, "extra")
}

func TestRegistry_Locking(t *testing.T) {
	ctx := context.Background()
	locker := &recordingLocker{}
	reg := registry.New(memory.NewStore(), registry.WithLocker(locker, time.Second))

	_, err := reg.Put(ctx, "product", productRaw())
	require.NoError(t, err)
	require.NoError(t, reg.Delete(ctx, "product"))

	assert.Equal(t, []string{
		"lock schema:product", "unlock schema:product",
		"lock schema:product", "unlock schema:product",
	}, locker.events)
}

func TestRegistry_Metrics(t *testing.T) {
	ctx := context.Background()
	promReg := prometheus.NewRegistry()
	rec, err := metrics.NewRecorder(promReg)
	require.NoError(t, err)

	reg := registry.New(memory.NewStore(), registry.WithMetrics(rec))
	_, err = reg.Put(ctx, "product", productRaw())
	require.NoError(t, err)

	_, _ = reg.Validate(ctx, "product", map[string]any{"stock": 1})
	_, _ = reg.Validate(ctx, "product", map[string]any{})
	_, _ = reg.Put(ctx, "bad", schema.NewRaw().Set("x", schema.Tag("int")))
	_, _ = reg.ValidateInline(schema.NewRaw().Set("x", schema.String), map[string]any{"x": "y"})

	expected := `
# HELP shape_validations_total Total number of validations by schema and outcome
# TYPE shape_validations_total counter
shape_validations_total{outcome="invalid",schema="product"} 1
shape_validations_total{outcome="valid",schema="inline"} 1
shape_validations_total{outcome="valid",schema="product"} 1
# HELP shape_schema_compile_failures_total Total number of schemas rejected by the compiler
# TYPE shape_schema_compile_failures_total counter
shape_schema_compile_failures_total 1
`
	assert.NoError(t, testutil.GatherAndCompare(promReg, strings.NewReader(expected),
		"shape_validations_total", "shape_schema_compile_failures_total"))
}

func TestRegistry_ValidateUnknown(t *testing.T) {
	_, err := registry.New(memory.NewStore()).Validate(context.Background(), "missing", nil)
	assert.ErrorIs(t, err, ports.ErrSchemaNotFound)
}

// pausingStore holds the first Load after reading, until release is closed.
type pausingStore struct {
	*memory.Store
	paused  atomic.Bool
	loaded  chan struct{}
	release chan struct{}
}

func newPausingStore(t *testing.T, raw *schema.Raw) *pausingStore {
	t.Helper()
	inner, err := memory.NewStoreWith(map[string]*schema.Raw{"product": raw})
	require.NoError(t, err)
	return &pausingStore{Store: inner, loaded: make(chan struct{}), release: make(chan struct{})}
}

func (s *pausingStore) Load(ctx context.Context, name string) (*schema.Raw, error) {
	raw, err := s.Store.Load(ctx, name)
	if s.paused.CompareAndSwap(false, true) {
		close(s.loaded)
		<-s.release
	}
	return raw, err
}

func TestRegistry_LoadDoesNotOverwriteNewerPut(t *testing.T) {
	ctx := context.Background()
	store := newPausingStore(t, schema.NewRaw().Set("old", schema.String))
	reg := registry.New(store)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = reg.Get(ctx, "product")
	}()
	<-store.loaded

	_, err := reg.Put(ctx, "product", schema.NewRaw().Set("new", schema.String))
	require.NoError(t, err)
	close(store.release)
	<-done

	v, err := reg.Get(ctx, "product")
	require.NoError(t, err)
	assert.Equal(t, []string{"new"}, v.Schema().Names())
}

func TestRegistry_LoadDoesNotRestoreDeleted(t *testing.T) {
	ctx := context.Background()
	store := newPausingStore(t, productRaw())
	reg := registry.New(store)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = reg.Get(ctx, "product")
	}()
	<-store.loaded

	require.NoError(t, reg.Delete(ctx, "product"))
	close(store.release)
	<-done

	_, err := reg.Get(ctx, "product")
	assert.ErrorIs(t, err, ports.ErrSchemaNotFound)
}
