package ports

import (
	"context"
	"time"
)

// UnlockFunc is a function that releases a distributed lock.
type UnlockFunc func(ctx context.Context) error

// DistributedLocker defines the interface for distributed concurrency control.
// The registry uses it to serialize writes to one schema name across replicas.
type DistributedLocker interface {
	// Lock blocks until the lock for key is acquired or ctx is canceled.
	// The lock expires after ttl if it is never released.
	// Returns an UnlockFunc that MUST be called to release the lock.
	Lock(ctx context.Context, key string, ttl time.Duration) (UnlockFunc, error)
}
