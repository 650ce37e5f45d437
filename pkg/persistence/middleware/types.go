// Package middleware wraps a SchemaStore with extra behavior such as
// encryption at rest or write protection.
package middleware

import "github.com/aretw0/shape/pkg/ports"

// Middleware allows wrapping a SchemaStore to add behavior.
type Middleware func(ports.SchemaStore) ports.SchemaStore

// Chain applies middlewares so that the first one is the outermost.
func Chain(store ports.SchemaStore, mws ...Middleware) ports.SchemaStore {
	for i := len(mws) - 1; i >= 0; i-- {
		store = mws[i](store)
	}
	return store
}
