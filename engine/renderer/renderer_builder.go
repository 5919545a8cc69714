package renderer

// RendererBuilderOption is a functional option for configuring a Renderer
// during creation.
type RendererBuilderOption func(*renderer)

// WithFramesInFlight sets the number of buffered frame slots. The default is
// 2; values below 1 are ignored.
//
// Parameters:
//   - n: the frame ring size
//
// Returns:
//   - RendererBuilderOption: the option to apply
func WithFramesInFlight(n int) RendererBuilderOption {
	return func(r *renderer) {
		if n >= 1 {
			r.framesInFlight = n
		}
	}
}

// WithPrepWorkers sets the worker count for parallel draw-list preparation.
// The default is the number of CPUs; values below 1 are ignored.
//
// Parameters:
//   - n: the worker count
//
// Returns:
//   - RendererBuilderOption: the option to apply
func WithPrepWorkers(n int) RendererBuilderOption {
	return func(r *renderer) {
		if n >= 1 {
			r.prepWorkers = n
		}
	}
}
