// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard dependencies
// on specific observability backends. Consumers register hooks at startup to
// receive events about scene edits, save/load and store operations.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// The core packages (scene, save) never call hooks; the workspace and store
// layers do, so the geometry cache stays free of ambient state.
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetSceneHooks(&mySceneHooks{})
//	    observability.SetStoreHooks(&myStoreHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Scene().OnNodeLoaded(ctx, id, inserted)
//	observability.Store().OnStoreGet(ctx, "redis", hit)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Scene Hooks
// =============================================================================

// SceneHooks receives events from workspace edits and save/load.
type SceneHooks interface {
	// OnNodeLoaded records a LoadNode. inserted is false for an upsert.
	OnNodeLoaded(ctx context.Context, id string, inserted bool)

	// OnNodeRemoved records a node removal.
	OnNodeRemoved(ctx context.Context, id string)

	// OnEncode records a scene being serialized.
	OnEncode(ctx context.Context, nodeCount int, duration time.Duration)

	// OnDecode records a scene being restored. err is non-nil on failure.
	OnDecode(ctx context.Context, nodeCount int, duration time.Duration, err error)
}

// =============================================================================
// Store Hooks
// =============================================================================

// StoreHooks receives events from document store operations.
type StoreHooks interface {
	// OnStoreGet records a lookup against the named backend.
	OnStoreGet(ctx context.Context, backend string, hit bool)

	// OnStorePut records a write of size bytes.
	OnStorePut(ctx context.Context, backend string, size int)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopSceneHooks is a no-op implementation of SceneHooks.
type NoopSceneHooks struct{}

func (NoopSceneHooks) OnNodeLoaded(context.Context, string, bool)          {}
func (NoopSceneHooks) OnNodeRemoved(context.Context, string)               {}
func (NoopSceneHooks) OnEncode(context.Context, int, time.Duration)        {}
func (NoopSceneHooks) OnDecode(context.Context, int, time.Duration, error) {}

// NoopStoreHooks is a no-op implementation of StoreHooks.
type NoopStoreHooks struct{}

func (NoopStoreHooks) OnStoreGet(context.Context, string, bool) {}
func (NoopStoreHooks) OnStorePut(context.Context, string, int)  {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	sceneHooks SceneHooks = NoopSceneHooks{}
	storeHooks StoreHooks = NoopStoreHooks{}
	hooksMu    sync.RWMutex
)

// SetSceneHooks registers custom scene hooks.
// This should be called once at application startup before any scene operations.
func SetSceneHooks(h SceneHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		sceneHooks = h
	}
}

// SetStoreHooks registers custom store hooks.
// This should be called once at application startup before any store operations.
func SetStoreHooks(h StoreHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		storeHooks = h
	}
}

// Scene returns the registered scene hooks.
func Scene() SceneHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return sceneHooks
}

// Store returns the registered store hooks.
func Store() StoreHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return storeHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	sceneHooks = NoopSceneHooks{}
	storeHooks = NoopStoreHooks{}
}
