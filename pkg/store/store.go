// Package store persists named scene documents.
//
// A document is the JSON produced by pkg/save. Stores treat it as opaque
// bytes; validation happens when a document is decoded.
//
// # Backends
//
//   - [FileStore]: one <name>.json file per scene in a directory (CLI default)
//   - [RedisStore]: one key per scene, for shared deployments
//   - [MongoStore]: one document per scene in a collection
//   - [NullStore]: stores nothing, for tests and --no-store runs
//
// Wrappers compose over any backend:
//
//   - [NewLRU]: in-process read-through cache
//   - [NewScoped]: name prefix for multi-tenant isolation
//
// Use [Open] to build a store from [Options].
package store

import (
	"context"
)

// Store persists named documents.
type Store interface {
	// Get returns the document stored under name. hit is false when absent.
	Get(ctx context.Context, name string) (data []byte, hit bool, err error)

	// Put stores data under name, replacing any previous document.
	Put(ctx context.Context, name string, data []byte) error

	// Delete removes name. Deleting an absent name is not an error.
	Delete(ctx context.Context, name string) error

	// List returns the stored names in lexical order.
	List(ctx context.Context) ([]string, error)

	// Close releases backend resources.
	Close() error
}
