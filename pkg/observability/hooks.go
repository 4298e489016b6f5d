// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard dependencies
// on specific observability backends. Consumers can register hooks at startup
// to receive events about layout passes, viewport motion, and API requests.
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
//   - Keeps the canvas core free of observability frameworks
//   - Allows different backends (OpenTelemetry, Prometheus, DataDog, etc.)
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetPassHooks(&myPassHooks{})
//	    observability.SetMotionHooks(&myMotionHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Pass().OnPassStart(ctx, registered)
//	// ... resolve visibility ...
//	observability.Pass().OnPassComplete(ctx, stats, duration)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Pass Hooks
// =============================================================================

// PassStats summarizes one layout pass.
type PassStats struct {
	Registered int // items declared by the embedding surface
	Candidates int // items returned by the index (or scanned)
	Visible    int // items that survived culling
	Cells      int // non-empty spatial index cells
}

// PassHooks receives events from layout passes.
type PassHooks interface {
	OnPassStart(ctx context.Context, registered int)
	OnPassComplete(ctx context.Context, stats PassStats, duration time.Duration)

	// OnMeasured records a WrapContent item leaving the unmeasured state.
	OnMeasured(ctx context.Context, index int)
}

// =============================================================================
// Motion Hooks
// =============================================================================

// FlingEnd explains why a fling stopped.
type FlingEnd string

const (
	FlingDecayed   FlingEnd = "decayed"   // velocity fell under the stop threshold
	FlingPreempted FlingEnd = "preempted" // a drag, pan or cancel took over
	FlingAborted   FlingEnd = "aborted"   // the caller's context ended
)

// MotionHooks receives events from viewport motion.
type MotionHooks interface {
	OnFlingStart(ctx context.Context, speed float64)
	OnFlingEnd(ctx context.Context, reason FlingEnd, ticks int, duration time.Duration)
	OnZoom(ctx context.Context, oldScale, newScale float64)
}

// =============================================================================
// HTTP Hooks
// =============================================================================

// HTTPHooks receives events from the HTTP control API.
type HTTPHooks interface {
	// OnRequest records an incoming HTTP request.
	OnRequest(ctx context.Context, method, path string)

	// OnResponse records a completed HTTP response.
	OnResponse(ctx context.Context, method, path string, statusCode int, duration time.Duration)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopPassHooks is a no-op implementation of PassHooks.
type NoopPassHooks struct{}

func (NoopPassHooks) OnPassStart(context.Context, int)                         {}
func (NoopPassHooks) OnPassComplete(context.Context, PassStats, time.Duration) {}
func (NoopPassHooks) OnMeasured(context.Context, int)                          {}

// NoopMotionHooks is a no-op implementation of MotionHooks.
type NoopMotionHooks struct{}

func (NoopMotionHooks) OnFlingStart(context.Context, float64)                    {}
func (NoopMotionHooks) OnFlingEnd(context.Context, FlingEnd, int, time.Duration) {}
func (NoopMotionHooks) OnZoom(context.Context, float64, float64)                 {}

// NoopHTTPHooks is a no-op implementation of HTTPHooks.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string)                      {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, int, time.Duration) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	passHooks   PassHooks   = NoopPassHooks{}
	motionHooks MotionHooks = NoopMotionHooks{}
	httpHooks   HTTPHooks   = NoopHTTPHooks{}
	hooksMu     sync.RWMutex
)

// SetPassHooks registers custom pass hooks.
// This should be called once at application startup before any layout pass.
func SetPassHooks(h PassHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		passHooks = h
	}
}

// SetMotionHooks registers custom motion hooks.
// This should be called once at application startup before any viewport motion.
func SetMotionHooks(h MotionHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		motionHooks = h
	}
}

// SetHTTPHooks registers custom HTTP hooks.
// This should be called once at application startup before serving requests.
func SetHTTPHooks(h HTTPHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		httpHooks = h
	}
}

// Pass returns the registered pass hooks.
func Pass() PassHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return passHooks
}

// Motion returns the registered motion hooks.
func Motion() MotionHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return motionHooks
}

// HTTP returns the registered HTTP hooks.
func HTTP() HTTPHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return httpHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	passHooks = NoopPassHooks{}
	motionHooks = NoopMotionHooks{}
	httpHooks = NoopHTTPHooks{}
}
