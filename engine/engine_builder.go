package engine

import (
	"time"

	"github.com/Carmen-Shannon/framegraph-go/engine/graph"
	"github.com/Carmen-Shannon/framegraph-go/engine/renderer"
	"github.com/Carmen-Shannon/framegraph-go/engine/window"
)

// EngineBuilderOption is a functional option for configuring an Engine.
// Use the With* functions to create options that are applied directly to the
// engine instance.
type EngineBuilderOption func(*engine)

// WithProfiling enables or disables periodic frame statistics logging.
//
// Parameters:
//   - enabled: if true, enables profiling
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithProfiling(enabled bool) EngineBuilderOption {
	return func(e *engine) {
		e.profilingEnabled = enabled
	}
}

// WithTickRate sets the engine tick rate in ticks per second.
// Values <= 0 are treated as the default (60Hz).
//
// Parameters:
//   - fps: target ticks per second (default 60)
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithTickRate(fps float64) EngineBuilderOption {
	return func(e *engine) {
		if fps <= 0 {
			fps = 60.0
		}
		e.engineTickRate = time.Second / time.Duration(fps)
	}
}

// WithWindow sets a custom configured window for the engine to use rather
// than allowing the engine to create and manage one internally.
//
// Parameters:
//   - w: a pre-configured Window instance
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithWindow(w window.Window) EngineBuilderOption {
	return func(e *engine) {
		e.window = w
	}
}

// WithBackend sets a custom backend instead of creating the WebGPU backend
// over the window surface.
//
// Parameters:
//   - b: a pre-configured backend instance
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithBackend(b renderer.WGPUBackend) EngineBuilderOption {
	return func(e *engine) {
		e.backend = b
	}
}

// WithResolver sets a custom graph resolver, e.g. one configured with a
// different minimum draw extent.
//
// Parameters:
//   - r: the resolver to use for LoadConfig
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithResolver(r graph.GraphResolver) EngineBuilderOption {
	return func(e *engine) {
		e.resolver = r
	}
}

// WithFramesInFlight sets the number of buffered frame slots shared by the
// backend and renderer. The default is 2; values below 1 are ignored.
//
// Parameters:
//   - n: the frame ring size
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithFramesInFlight(n int) EngineBuilderOption {
	return func(e *engine) {
		if n >= 1 {
			e.framesInFlight = n
		}
	}
}

// WithShaderDir sets the directory configuration documents resolve shader
// file references against.
//
// Parameters:
//   - dir: the shader source directory
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithShaderDir(dir string) EngineBuilderOption {
	return func(e *engine) {
		e.shaderDir = dir
	}
}

// WithRenderFrameLimit sets an optional render frame rate cap in frames per
// second. Pass 0 to uncap the render loop (default).
//
// Parameters:
//   - fps: maximum render frames per second (0 = uncapped)
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithRenderFrameLimit(fps float64) EngineBuilderOption {
	return func(e *engine) {
		if fps <= 0 {
			e.renderFrameLimit = 0
			return
		}
		e.renderFrameLimit = time.Second / time.Duration(fps)
	}
}
