// Package observability provides hooks for instrumenting layout and edit
// operations.
//
// The engine stays free of any metrics or tracing dependency: it emits
// events through small hook interfaces with no-op defaults, and a host
// registers real implementations at startup.
//
// # Usage
//
// Register hooks before running the engine:
//
//	func main() {
//	    observability.SetLayoutHooks(&myLayoutHooks{})
//	    observability.SetEditHooks(&myEditHooks{})
//	    // ... run application
//	}
//
// Libraries call the accessors to emit events:
//
//	start := time.Now()
//	// ... lay out the rung ...
//	observability.Layout().OnRungLayout(rung, elements, time.Since(start), err)
//
// All operations run on the single interaction thread, so hooks carry no
// context and must not block.
package observability

import (
	"sync"
	"time"
)

// =============================================================================
// Layout Hooks
// =============================================================================

// LayoutHooks receives events from the layout engine.
type LayoutHooks interface {
	// OnRungLayout records one rung layout pass.
	OnRungLayout(rung int, elements int, duration time.Duration, err error)

	// OnCascade records a height-change cascade: the edited rung and how many
	// rungs below it were repositioned.
	OnCascade(rung int, repositioned int)
}

// =============================================================================
// Edit Hooks
// =============================================================================

// EditHooks receives events from the structural editor.
type EditHooks interface {
	// OnEdit records a structural edit. op is the operation name
	// ("insert", "delete", "move", "create_branch", "delete_branch").
	OnEdit(op string, rung int, duration time.Duration, err error)

	// OnRejected records an edit refused with a user-facing reason.
	OnRejected(op string, rung int, reason string)
}

// =============================================================================
// Render Hooks
// =============================================================================

// RenderHooks receives events from render sinks.
type RenderHooks interface {
	// OnRender records a full render pass into a sink.
	OnRender(format string, rungs int, duration time.Duration, err error)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopLayoutHooks is a no-op implementation of LayoutHooks.
type NoopLayoutHooks struct{}

func (NoopLayoutHooks) OnRungLayout(int, int, time.Duration, error) {}
func (NoopLayoutHooks) OnCascade(int, int)                          {}

// NoopEditHooks is a no-op implementation of EditHooks.
type NoopEditHooks struct{}

func (NoopEditHooks) OnEdit(string, int, time.Duration, error) {}
func (NoopEditHooks) OnRejected(string, int, string)           {}

// NoopRenderHooks is a no-op implementation of RenderHooks.
type NoopRenderHooks struct{}

func (NoopRenderHooks) OnRender(string, int, time.Duration, error) {}

// =============================================================================
// Registry
// =============================================================================

var (
	mu          sync.RWMutex
	layoutHooks LayoutHooks = NoopLayoutHooks{}
	editHooks   EditHooks   = NoopEditHooks{}
	renderHooks RenderHooks = NoopRenderHooks{}
)

// SetLayoutHooks registers the layout hook implementation.
func SetLayoutHooks(h LayoutHooks) {
	mu.Lock()
	defer mu.Unlock()
	if h == nil {
		h = NoopLayoutHooks{}
	}
	layoutHooks = h
}

// SetEditHooks registers the edit hook implementation.
func SetEditHooks(h EditHooks) {
	mu.Lock()
	defer mu.Unlock()
	if h == nil {
		h = NoopEditHooks{}
	}
	editHooks = h
}

// SetRenderHooks registers the render hook implementation.
func SetRenderHooks(h RenderHooks) {
	mu.Lock()
	defer mu.Unlock()
	if h == nil {
		h = NoopRenderHooks{}
	}
	renderHooks = h
}

// Layout returns the registered layout hooks.
func Layout() LayoutHooks {
	mu.RLock()
	defer mu.RUnlock()
	return layoutHooks
}

// Edit returns the registered edit hooks.
func Edit() EditHooks {
	mu.RLock()
	defer mu.RUnlock()
	return editHooks
}

// Render returns the registered render hooks.
func Render() RenderHooks {
	mu.RLock()
	defer mu.RUnlock()
	return renderHooks
}
