// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard dependencies
// on specific observability backends. Consumers can register hooks at startup
// to receive events about editor mutations, snapshot persistence, and layout
// runs.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// Hooks are registered by main, not by libraries, so the editor and storage
// packages never import a logging or metrics backend directly.
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetEditorHooks(&myEditorHooks{})
//	    observability.SetStorageHooks(&myStorageHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Layout().OnLayoutStart(ctx, "graphviz", len(req.Nodes))
//	// ... run engine ...
//	observability.Layout().OnLayoutComplete(ctx, "graphviz", placed, time.Since(start), err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Editor Hooks
// =============================================================================

// EditorHooks receives events from the interactive editor.
type EditorHooks interface {
	// OnMutation records a committed graph mutation with the resulting sizes.
	OnMutation(ctx context.Context, op string, nodes, edges int)

	// OnSave records an autosave attempt.
	OnSave(ctx context.Context, nodes, edges int, duration time.Duration, err error)
}

// =============================================================================
// Storage Hooks
// =============================================================================

// StorageHooks receives events from the persistence gateway.
type StorageHooks interface {
	// OnLoad records a snapshot read. found is false for a missing or
	// unreadable snapshot.
	OnLoad(ctx context.Context, backend, key string, found bool, duration time.Duration, err error)

	// OnStore records a snapshot write of size bytes.
	OnStore(ctx context.Context, backend, key string, size int, duration time.Duration, err error)
}

// =============================================================================
// Layout Hooks
// =============================================================================

// LayoutHooks receives events from layout engine runs.
type LayoutHooks interface {
	// OnLayoutStart records a layout request being handed to an engine.
	OnLayoutStart(ctx context.Context, engine string, nodeCount int)

	// OnLayoutComplete records the outcome. placed is the number of nodes
	// whose positions were applied.
	OnLayoutComplete(ctx context.Context, engine string, placed int, duration time.Duration, err error)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopEditorHooks is a no-op implementation of EditorHooks.
type NoopEditorHooks struct{}

func (NoopEditorHooks) OnMutation(context.Context, string, int, int)               {}
func (NoopEditorHooks) OnSave(context.Context, int, int, time.Duration, error) {}

// NoopStorageHooks is a no-op implementation of StorageHooks.
type NoopStorageHooks struct{}

func (NoopStorageHooks) OnLoad(context.Context, string, string, bool, time.Duration, error) {}
func (NoopStorageHooks) OnStore(context.Context, string, string, int, time.Duration, error) {}

// NoopLayoutHooks is a no-op implementation of LayoutHooks.
type NoopLayoutHooks struct{}

func (NoopLayoutHooks) OnLayoutStart(context.Context, string, int) {}
func (NoopLayoutHooks) OnLayoutComplete(context.Context, string, int, time.Duration, error) {
}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	editorHooks  EditorHooks  = NoopEditorHooks{}
	storageHooks StorageHooks = NoopStorageHooks{}
	layoutHooks  LayoutHooks  = NoopLayoutHooks{}
	hooksMu      sync.RWMutex
)

// SetEditorHooks registers custom editor hooks.
// This should be called once at application startup before any editing.
func SetEditorHooks(h EditorHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		editorHooks = h
	}
}

// SetStorageHooks registers custom storage hooks.
// This should be called once at application startup before any storage operations.
func SetStorageHooks(h StorageHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		storageHooks = h
	}
}

// SetLayoutHooks registers custom layout hooks.
// This should be called once at application startup before any layout runs.
func SetLayoutHooks(h LayoutHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		layoutHooks = h
	}
}

// Editor returns the registered editor hooks.
func Editor() EditorHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return editorHooks
}

// Storage returns the registered storage hooks.
func Storage() StorageHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return storageHooks
}

// Layout returns the registered layout hooks.
func Layout() LayoutHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return layoutHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	editorHooks = NoopEditorHooks{}
	storageHooks = NoopStorageHooks{}
	layoutHooks = NoopLayoutHooks{}
}
