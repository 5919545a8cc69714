package material

import "github.com/Carmen-Shannon/framegraph-go/common"

// DescriptorBuilderOption is a functional option for configuring a material
// Descriptor during creation.
type DescriptorBuilderOption func(*descriptor)

// WithAttributes sets the vertex-attribute mask the material's shaders
// consume. The default is position only.
//
// Parameters:
//   - attributes: the attribute flags
//
// Returns:
//   - DescriptorBuilderOption: the option to apply
func WithAttributes(attributes common.VertexAttribute) DescriptorBuilderOption {
	return func(d *descriptor) {
		d.attributes = attributes
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
	return func(d *descriptor) {
		d.blendMode = blendMode
	}
}

// WithProperties sets the material's bound property slots.
//
// Parameters:
//   - properties: the property slots in declaration order
//
// Returns:
//   - DescriptorBuilderOption: the option to apply
func WithProperties(properties ...Property) DescriptorBuilderOption {
	return func(d *descriptor) {
		d.properties = properties
	}
}

// WithObjectLayout sets the per-object data layout the material's shaders
// expect. Materials that omit this use the registry's default layout.
//
// Parameters:
//   - layout: the object layout flags
//
// Returns:
//   - DescriptorBuilderOption: the option to apply
func WithObjectLayout(layout common.ObjectLayout) DescriptorBuilderOption {
	return func(d *descriptor) {
		d.objectLayout = layout
		d.hasLayout = true
	}
}
