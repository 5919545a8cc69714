package renderer

import "github.com/cogentcore/webgpu/wgpu"

// WGPUBackendBuilderOption is a functional option for configuring the WebGPU
// backend during creation.
type WGPUBackendBuilderOption func(*wgpuRendererBackendImpl)

// WithPresentMode sets the surface present mode. The default is FIFO.
//
// Parameters:
//   - mode: the present mode to configure the surface with
//
// Returns:
//   - WGPUBackendBuilderOption: the option to apply
func WithPresentMode(mode wgpu.PresentMode) WGPUBackendBuilderOption {
	return func(b *wgpuRendererBackendImpl) {
		b.presentMode = mode
	}
}

// WithForceFallbackAdapter forces selection of a software fallback adapter.
//
// Returns:
//   - WGPUBackendBuilderOption: the option to apply
func WithForceFallbackAdapter() WGPUBackendBuilderOption {
	return func(b *wgpuRendererBackendImpl) {
		b.forceFallbackAdapter = true
	}
}

// WithBackendFramesInFlight sets the number of per-slot uniform buffer sets
// the backend allocates. It must match the renderer's frame ring size. The
// default is 2; values below 1 are ignored.
//
// Parameters:
//   - n: the slot count
//
// Returns:
//   - WGPUBackendBuilderOption: the option to apply
func WithBackendFramesInFlight(n int) WGPUBackendBuilderOption {
	return func(b *wgpuRendererBackendImpl) {
		if n >= 1 {
			b.framesInFlight = n
		}
	}
}
