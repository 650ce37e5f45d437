package redis

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	backend "github.com/redis/go-redis/v9"

	"github.com/aretw0/shape/pkg/ports"
	"github.com/aretw0/shape/pkg/schema"
)

// DefaultPrefix namespaces schema keys.
const DefaultPrefix = "shape:schema:"

// farFuture is the index score of schemas that never expire (2100-01-01).
const farFuture = 4102444800

// Store implements ports.SchemaStore using Redis.
// Each schema is a JSON string key; a sorted set indexes the names.
type Store struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
}

type Option func(*Store)

// WithTTL sets the expiration for stored schemas.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		s.ttl = ttl
	}
}

// WithPrefix sets the key prefix for schemas.
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		s.prefix = prefix
	}
}

// New creates a new Redis store with options.
func New(address, password string, db int, opts ...Option) *Store {
	return NewFromClient(backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	}), opts...)
}

// NewFromURL creates a store from a redis:// or rediss:// URL.
func NewFromURL(url string, opts ...Option) (*Store, error) {
	cfg, err := backend.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	return NewFromClient(backend.NewClient(cfg), opts...), nil
}

// NewFromClient creates a new Redis store from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Store {
	store := &Store{
		client: client,
		prefix: DefaultPrefix,
	}
	for _, opt := range opts {
		opt(store)
	}
	return store
}

func (s *Store) key(name string) string {
	return s.prefix + name
}

// Schema names cannot contain '@', so the index never collides with a schema key.
func (s *Store) indexKey() string {
	return s.prefix + "@index"
}

// Save persists the schema to Redis.
func (s *Store) Save(ctx context.Context, name string, raw *schema.Raw) error {
	if err := ports.ValidateName(name); err != nil {
		return err
	}
	data, err := raw.MarshalJSON()
	if err != nil {
		return fmt.Errorf("failed to marshal schema: %w", err)
	}

	score := float64(time.Now().Add(s.ttl).Unix())
	if s.ttl == 0 {
		score = farFuture
	}

	pipe := s.client.Pipeline()
	pipe.Set(ctx, s.key(name), data, s.ttl)
	pipe.ZAdd(ctx, s.indexKey(), backend.Z{Score: score, Member: name})

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save to redis: %w", err)
	}
	return nil
}

// Load retrieves the schema from Redis.
func (s *Store) Load(ctx context.Context, name string) (*schema.Raw, error) {
	if err := ports.ValidateName(name); err != nil {
		return nil, err
	}
	val, err := s.client.Get(ctx, s.key(name)).Bytes()
	if err != nil {
		if errors.Is(err, backend.Nil) {
			return nil, ports.ErrSchemaNotFound
		}
		return nil, fmt.Errorf("failed to get from redis: %w", err)
	}

	raw, err := schema.ParseJSON(val)
	if err != nil {
		return nil, fmt.Errorf("failed to decode schema %s: %w", name, err)
	}
	return raw, nil
}

// Delete removes the schema and its index entry.
func (s *Store) Delete(ctx context.Context, name string) error {
	if err := ports.ValidateName(name); err != nil {
		return err
	}
	pipe := s.client.Pipeline()
	pipe.Del(ctx, s.key(name))
	pipe.ZRem(ctx, s.indexKey(), name)

	_, err := pipe.Exec(ctx)
	return err
}

// List returns stored names in ascending order, pruning expired index
// entries first.
func (s *Store) List(ctx context.Context) ([]string, error) {
	now := float64(time.Now().Unix())
	if err := s.client.ZRemRangeByScore(ctx, s.indexKey(), "-inf", fmt.Sprintf("%f", now)).Err(); err != nil {
		return nil, fmt.Errorf("failed to prune expired schemas: %w", err)
	}

	names, err := s.client.ZRange(ctx, s.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list schemas: %w", err)
	}
	sort.Strings(names)
	return names, nil
}

// Ping checks connectivity. shape serve uses it for GET /health.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Client exposes the underlying client, e.g. to share it with a Locker.
func (s *Store) Client() *backend.Client {
	return s.client
}

// Close closes the redis client.
func (s *Store) Close() error {
	return s.client.Close()
}
