package main

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"strings"

	"github.com/aretw0/shape/pkg/adapters/file"
	"github.com/aretw0/shape/pkg/adapters/redis"
	"github.com/aretw0/shape/pkg/persistence/middleware"
	"github.com/aretw0/shape/pkg/ports"
	"github.com/aretw0/shape/pkg/registry"
)

const defaultStore = ".shape/schemas"

const lockPrefix = "shape:"

// Environment variables holding base64 AES-256 keys for encrypted stores.
const (
	envStoreKey          = "SHAPE_STORE_KEY"
	envStoreFallbackKeys = "SHAPE_STORE_FALLBACK_KEYS"
)

// backend is an opened schema store plus what the registry needs around it.
type backend struct {
	store  ports.SchemaStore
	locker ports.DistributedLocker
	ping   func(ctx context.Context) error
	close  func() error
}

// openStore opens a directory store, or a Redis store when spec is a
// redis:// or rediss:// URL. Redis stores also provide a distributed locker.
// Schemas are encrypted at rest when SHAPE_STORE_KEY is set.
func openStore(spec string, readOnly bool) (*backend, error) {
	b, err := openBase(spec)
	if err != nil {
		return nil, err
	}

	var mws []middleware.Middleware
	if readOnly {
		mws = append(mws, middleware.ReadOnly())
	}
	enc, err := encryptionFromEnv()
	if err != nil {
		_ = b.close()
		return nil, err
	}
	if enc != nil {
		mws = append(mws, enc)
	}
	b.store = middleware.Chain(b.store, mws...)
	return b, nil
}

func openBase(spec string) (*backend, error) {
	if strings.HasPrefix(spec, "redis://") || strings.HasPrefix(spec, "rediss://") {
		store, err := redis.NewFromURL(spec)
		if err != nil {
			return nil, err
		}
		return &backend{
			store:  store,
			locker: redis.NewLocker(store.Client(), lockPrefix),
			ping:   store.Ping,
			close:  store.Close,
		}, nil
	}

	if spec == "" {
		spec = defaultStore
	}
	return &backend{
		store: file.New(spec),
		close: func() error { return nil },
	}, nil
}

func encryptionFromEnv() (middleware.Middleware, error) {
	active := os.Getenv(envStoreKey)
	if active == "" {
		return nil, nil
	}

	cfg := middleware.EncryptionConfig{}
	key, err := base64.StdEncoding.DecodeString(active)
	if err != nil {
		return nil, fmt.Errorf("%s is not valid base64: %w", envStoreKey, err)
	}
	cfg.ActiveKey = key

	for _, s := range strings.Split(os.Getenv(envStoreFallbackKeys), ",") {
		if s = strings.TrimSpace(s); s == "" {
			continue
		}
		k, err := base64.StdEncoding.DecodeString(s)
		if err != nil {
			return nil, fmt.Errorf("%s holds an invalid key: %w", envStoreFallbackKeys, err)
		}
		cfg.FallbackKeys = append(cfg.FallbackKeys, k)
	}

	return middleware.NewEncryptionMiddleware(cfg)
}

func (b *backend) registry(opts ...registry.Option) *registry.Registry {
	opts = append([]registry.Option{registry.WithLogger(logger)}, opts...)
	if b.locker != nil {
		opts = append(opts, registry.WithLocker(b.locker, registry.DefaultLockTTL))
	}
	return registry.New(b.store, opts...)
}
