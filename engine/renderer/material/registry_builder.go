package material

import (
	"github.com/Carmen-Shannon/framegraph-go/common"
	"github.com/cogentcore/webgpu/wgpu"
)

// RegistryBuilderOption is a functional option for configuring a material
// Registry during creation.
type RegistryBuilderOption func(*registry)

// WithDefaultObjectLayout sets the object layout applied to materials that do
// not declare one. The default is a world matrix only.
//
// Parameters:
//   - layout: the fallback object layout
//
// Returns:
//   - RegistryBuilderOption: the option to apply
func WithDefaultObjectLayout(layout common.ObjectLayout) RegistryBuilderOption {
	return func(r *registry) {
		r.defaultLayout = layout
	}
}

// WithCullMode sets the cull mode applied to material-resolved pipelines.
// The default is back-face culling.
//
// Parameters:
//   - cullMode: the cull mode
//
// Returns:
//   - RegistryBuilderOption: the option to apply
func WithCullMode(cullMode wgpu.CullMode) RegistryBuilderOption {
	return func(r *registry) {
		r.cullMode = cullMode
	}
}

// WithFrontFace sets the front-face winding applied to material-resolved
// pipelines. The default is counter-clockwise.
//
// Parameters:
//   - frontFace: the winding order
//
// Returns:
//   - RegistryBuilderOption: the option to apply
func WithFrontFace(frontFace wgpu.FrontFace) RegistryBuilderOption {
	return func(r *registry) {
		r.frontFace = frontFace
	}
}

// WithMaterials registers an initial set of materials.
//
// Parameters:
//   - materials: the material descriptors to register
//
// Returns:
//   - RegistryBuilderOption: the option to apply
func WithMaterials(materials ...Descriptor) RegistryBuilderOption {
	return func(r *registry) {
		for _, m := range materials {
			r.materials[m.Name()] = m
		}
	}
}
