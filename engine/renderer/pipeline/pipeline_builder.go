package pipeline

import (
	"github.com/Carmen-Shannon/framegraph-go/common"
	"github.com/cogentcore/webgpu/wgpu"
)

// DescriptorBuilderOption is a functional option for configuring a pipeline
// Descriptor during creation.
type DescriptorBuilderOption func(*Descriptor)

// WithAttributes sets the vertex-attribute layout the pipeline consumes.
//
// Parameters:
//   - attributes: the vertex attribute flags
//
// Returns:
//   - DescriptorBuilderOption: the option to apply
func WithAttributes(attributes common.VertexAttribute) DescriptorBuilderOption {
	return func(d *Descriptor) {
		d.attributes = attributes
	}
}

// WithBindings sets the descriptor-binding list. Order is insignificant for
// structural identity.
//
// Parameters:
//   - bindings: the binding list
//
// Returns:
//   - DescriptorBuilderOption: the option to apply
func WithBindings(bindings ...Binding) DescriptorBuilderOption {
	return func(d *Descriptor) {
		d.bindings = bindings
	}
}

// WithTopology sets the primitive topology. The default is triangle list.
//
// Parameters:
//   - topology: the primitive topology
//
// Returns:
//   - DescriptorBuilderOption: the option to apply
func WithTopology(topology wgpu.PrimitiveTopology) DescriptorBuilderOption {
	return func(d *Descriptor) {
		d.topology = topology
	}
}

// WithCullMode sets the cull mode. The default is back-face culling.
//
// Parameters:
//   - cullMode: the cull mode
//
// Returns:
//   - DescriptorBuilderOption: the option to apply
func WithCullMode(cullMode wgpu.CullMode) DescriptorBuilderOption {
	return func(d *Descriptor) {
		d.cullMode = cullMode
	}
}

// WithFrontFace sets the front-face winding order. The default is counter-clockwise.
//
// Parameters:
//   - frontFace: the winding order
//
// Returns:
//   - DescriptorBuilderOption: the option to apply
func WithFrontFace(frontFace wgpu.FrontFace) DescriptorBuilderOption {
	return func(d *Descriptor) {
		d.frontFace = frontFace
	}
}

// WithDepthTest sets the depth-test state. The default enables testing and
// writing with a less-or-equal compare.
//
// Parameters:
//   - depthTest: the depth-test state
//
// Returns:
//   - DescriptorBuilderOption: the option to apply
func WithDepthTest(depthTest DepthTest) DescriptorBuilderOption {
	return func(d *Descriptor) {
		d.depthTest = depthTest
	}
}

// WithBlendMode sets the blend mode. The default is opaque.
//
// Parameters:
//   - blendMode: the blend mode
//
// Returns:
//   - DescriptorBuilderOption: the option to apply
func WithBlendMode(blendMode common.BlendMode) DescriptorBuilderOption {
	return func(d *Descriptor) {
		d.blendMode = blendMode
	}
}

// WithColorFormat sets the color target format.
//
// Parameters:
//   - format: the color attachment format
//
// Returns:
//   - DescriptorBuilderOption: the option to apply
func WithColorFormat(format wgpu.TextureFormat) DescriptorBuilderOption {
	return func(d *Descriptor) {
		d.colorFormat = format
	}
}

// WithDepthFormat sets the depth target format.
//
// Parameters:
//   - format: the depth attachment format
//
// Returns:
//   - DescriptorBuilderOption: the option to apply
func WithDepthFormat(format wgpu.TextureFormat) DescriptorBuilderOption {
	return func(d *Descriptor) {
		d.depthFormat = format
	}
}
