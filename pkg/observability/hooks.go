// Package observability provides hooks for redraws, metrics and tracing.
//
// This package enables optional instrumentation without adding hard dependencies
// on specific observability backends or user interfaces. Consumers register hooks
// at startup to receive events about colorings, boundary retraces and HTTP
// requests served by the facade.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// A collaborator that draws the graph registers [ColoringHooks] and repaints a
// node whenever OnColorChange fires. The coloring core never imports any UI.
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetColoringHooks(&myRedrawHooks{})
//	    observability.SetEmbeddingHooks(&myBoundaryHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Coloring().OnColorChange(id, oldColor, newColor)
//	observability.Embedding().OnBoundaryUpdate(boundary, enclosed, steps, fallback)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Coloring Hooks
// =============================================================================

// ColoringHooks receives events from palette assignment and the overflow resolver.
// Colors are passed as plain ints so this package stays free of graph imports.
type ColoringHooks interface {
	// OnColorChange fires for every committed color change of a single node.
	OnColorChange(node, from, to int)

	// OnOverflow fires when a node is handed to the resolver.
	OnOverflow(node int, reason string)

	// OnKempeSwap fires after a chain of the given size swapped c1 and c2.
	OnKempeSwap(node, c1, c2, chainSize int)

	// OnRebalance fires when the global rebalance swapped two colors.
	OnRebalance(from, to, swapped int)

	// OnExhaustion fires when no Kempe swap frees a color.
	OnExhaustion(node int, err error)
}

// =============================================================================
// Embedding Hooks
// =============================================================================

// EmbeddingHooks receives events from rotation and boundary maintenance.
type EmbeddingHooks interface {
	// OnBoundaryUpdate fires after every boundary retrace.
	OnBoundaryUpdate(boundary, enclosed, steps int, fallback bool)

	// OnAngleWarning fires when two edges at a node leave closer than the
	// configured minimum gap.
	OnAngleWarning(node, first, next int, gap float64)
}

// =============================================================================
// HTTP Hooks
// =============================================================================

// HTTPHooks receives events from the HTTP facade.
type HTTPHooks interface {
	// OnRequest records an incoming HTTP request.
	OnRequest(ctx context.Context, method, path string)

	// OnResponse records a completed HTTP response.
	OnResponse(ctx context.Context, method, path string, statusCode int, duration time.Duration)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopColoringHooks is a no-op implementation of ColoringHooks.
type NoopColoringHooks struct{}

func (NoopColoringHooks) OnColorChange(int, int, int)    {}
func (NoopColoringHooks) OnOverflow(int, string)         {}
func (NoopColoringHooks) OnKempeSwap(int, int, int, int) {}
func (NoopColoringHooks) OnRebalance(int, int, int)      {}
func (NoopColoringHooks) OnExhaustion(int, error)        {}

// NoopEmbeddingHooks is a no-op implementation of EmbeddingHooks.
type NoopEmbeddingHooks struct{}

func (NoopEmbeddingHooks) OnBoundaryUpdate(int, int, int, bool)  {}
func (NoopEmbeddingHooks) OnAngleWarning(int, int, int, float64) {}

// NoopHTTPHooks is a no-op implementation of HTTPHooks.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string)                      {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, int, time.Duration) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	coloringHooks  ColoringHooks  = NoopColoringHooks{}
	embeddingHooks EmbeddingHooks = NoopEmbeddingHooks{}
	httpHooks      HTTPHooks      = NoopHTTPHooks{}
	hooksMu        sync.RWMutex
)

// SetColoringHooks registers custom coloring hooks.
// This should be called once at application startup before any engine is built.
func SetColoringHooks(h ColoringHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		coloringHooks = h
	}
}

// SetEmbeddingHooks registers custom embedding hooks.
func SetEmbeddingHooks(h EmbeddingHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		embeddingHooks = h
	}
}

// SetHTTPHooks registers custom HTTP hooks.
// This should be called once at application startup before serving.
func SetHTTPHooks(h HTTPHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		httpHooks = h
	}
}

// Coloring returns the registered coloring hooks.
func Coloring() ColoringHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return coloringHooks
}

// Embedding returns the registered embedding hooks.
func Embedding() EmbeddingHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return embeddingHooks
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
	coloringHooks = NoopColoringHooks{}
	embeddingHooks = NoopEmbeddingHooks{}
	httpHooks = NoopHTTPHooks{}
}
