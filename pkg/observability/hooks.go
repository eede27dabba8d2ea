// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard
// dependencies on specific observability backends. Consumers can register
// hooks at startup to receive events about family discovery, layout
// optimization, and store operations.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// This approach:
//   - Avoids import cycles (hooks are registered by main, not by libraries)
//   - Keeps the engine dependency-free from observability frameworks
//   - Allows different backends (OpenTelemetry, Prometheus, DataDog, etc.)
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetEngineHooks(&myEngineHooks{})
//	    // ... run application
//	}
//
// The engine calls hooks to emit events:
//
//	observability.Engine().OnOptimizeStart(ctx, hash, chainCount)
//	// ... run the search ...
//	observability.Engine().OnOptimizeComplete(ctx, hash, score, generations, duration, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// EngineHooks receives events from the discovery and optimization engine.
type EngineHooks interface {
	// Discovery events
	OnDiscoveryStart(ctx context.Context, nodeCount, linkCount int)
	OnDiscoveryComplete(ctx context.Context, registered int, duration time.Duration, err error)

	// Optimization events
	OnOptimizeStart(ctx context.Context, familyHash string, chainCount int)
	OnOptimizeComplete(ctx context.Context, familyHash string, score float64, generations int, duration time.Duration, err error)

	// Invalidation events
	OnInvalidate(ctx context.Context, familyHash string)
}

// StoreHooks receives events from store operations.
type StoreHooks interface {
	// OnLayoutHit records a layout read that found a fresh record.
	OnLayoutHit(ctx context.Context, familyHash string)

	// OnLayoutMiss records a layout read that found nothing or a stale
	// record.
	OnLayoutMiss(ctx context.Context, familyHash string)

	// OnLayoutWrite records a layout persist.
	OnLayoutWrite(ctx context.Context, familyHash string)
}

// NoopEngineHooks is a no-op implementation of EngineHooks.
type NoopEngineHooks struct{}

func (NoopEngineHooks) OnDiscoveryStart(context.Context, int, int) {}
func (NoopEngineHooks) OnDiscoveryComplete(context.Context, int, time.Duration, error) {
}
func (NoopEngineHooks) OnOptimizeStart(context.Context, string, int) {}
func (NoopEngineHooks) OnOptimizeComplete(context.Context, string, float64, int, time.Duration, error) {
}
func (NoopEngineHooks) OnInvalidate(context.Context, string) {}

// NoopStoreHooks is a no-op implementation of StoreHooks.
type NoopStoreHooks struct{}

func (NoopStoreHooks) OnLayoutHit(context.Context, string)   {}
func (NoopStoreHooks) OnLayoutMiss(context.Context, string)  {}
func (NoopStoreHooks) OnLayoutWrite(context.Context, string) {}

var (
	mu          sync.RWMutex
	engineHooks EngineHooks = NoopEngineHooks{}
	storeHooks  StoreHooks  = NoopStoreHooks{}
)

// SetEngineHooks registers engine hooks. Pass nil to restore the no-op
// implementation. Call at startup, before the engine runs.
func SetEngineHooks(h EngineHooks) {
	mu.Lock()
	defer mu.Unlock()
	if h == nil {
		engineHooks = NoopEngineHooks{}
		return
	}
	engineHooks = h
}

// SetStoreHooks registers store hooks. Pass nil to restore the no-op
// implementation.
func SetStoreHooks(h StoreHooks) {
	mu.Lock()
	defer mu.Unlock()
	if h == nil {
		storeHooks = NoopStoreHooks{}
		return
	}
	storeHooks = h
}

// Engine returns the registered engine hooks, never nil.
func Engine() EngineHooks {
	mu.RLock()
	defer mu.RUnlock()
	return engineHooks
}

// Store returns the registered store hooks, never nil.
func Store() StoreHooks {
	mu.RLock()
	defer mu.RUnlock()
	return storeHooks
}
