// package material defines pass-agnostic material descriptors and the
// registry that realizes them into concrete pipelines per pass.
package material

import (
	"errors"

	"github.com/Carmen-Shannon/framegraph-go/common"
	"github.com/Carmen-Shannon/framegraph-go/engine/renderer/shader"
)

var (
	// ErrUnknownMaterial is returned when resolving a material name that was
	// never registered.
	ErrUnknownMaterial = errors.New("unknown material")

	// ErrLayoutMismatch is returned when a material declares vertex
	// attributes the pass's object layout cannot supply.
	ErrLayoutMismatch = errors.New("material attributes unsupported by pass object layout")
)

// PropertyKind identifies what a bound material property slot holds.
type PropertyKind int

const (
	// PropertyKindTexture is a sampled texture slot. It binds as a texture
	// and sampler pair in the material group.
	PropertyKindTexture PropertyKind = iota

	// PropertyKindUniform is a uniform buffer slot.
	PropertyKindUniform
)

// String returns the property kind name used in configuration files.
func (k PropertyKind) String() string {
	switch k {
	case PropertyKindUniform:
		return "uniform"
	default:
		return "texture"
	}
}

// Property is one named bound slot of a material.
type Property struct {
	// Name is the slot name referenced by object data at draw time.
	Name string

	// Kind is what the slot holds.
	Kind PropertyKind
}

// descriptor is the implementation of the Descriptor interface.
type descriptor struct {
	name           string
	vertexShader   shader.Shader
	fragmentShader shader.Shader
	attributes     common.VertexAttribute
	blendMode      common.BlendMode
	properties     []Property
	objectLayout   common.ObjectLayout
	hasLayout      bool
}

// Descriptor is a pass-agnostic description of how to shade an object. It is
// realized into a pipeline only in the context of a specific pass's target
// and fixed-function requirements, through the Registry.
type Descriptor interface {
	// Name returns the unique material name.
	//
	// Returns:
	//   - string: the material name
	Name() string

	// VertexShader returns the vertex stage shader.
	//
	// Returns:
	//   - shader.Shader: the vertex shader
	VertexShader() shader.Shader

	// FragmentShader returns the fragment stage shader.
	//
	// Returns:
	//   - shader.Shader: the fragment shader
	FragmentShader() shader.Shader

	// Attributes returns the vertex-attribute mask the material's shaders consume.
	//
	// Returns:
	//   - common.VertexAttribute: the attribute flags
	Attributes() common.VertexAttribute

	// BlendMode returns the material's blend mode. Alpha-blended materials
	// are drawn in the transparent phase of a pass.
	//
	// Returns:
	//   - common.BlendMode: the blend mode
	BlendMode() common.BlendMode

	// Properties returns the material's bound property slots in declaration
	// order. The returned slice must not be modified.
	//
	// Returns:
	//   - []Property: the property slots
	Properties() []Property

	// ObjectLayout returns the per-object data layout the material's shaders
	// expect, and whether the material declared one. Materials without an
	// explicit layout use the registry's default.
	//
	// Returns:
	//   - common.ObjectLayout: the declared layout
	//   - bool: true if the material declared a layout
	ObjectLayout() (common.ObjectLayout, bool)
}

var _ Descriptor = &descriptor{}

// NewDescriptor is the entry point to create a new material Descriptor.
//
// Parameters:
//   - name: the unique material name
//   - vertexShader: the vertex stage shader
//   - fragmentShader: the fragment stage shader
//   - opts: a variadic list of DescriptorBuilderOption functions to configure the material
//
// Returns:
//   - Descriptor: a new material descriptor
func NewDescriptor(name string, vertexShader, fragmentShader shader.Shader, opts ...DescriptorBuilderOption) Descriptor {
	d := &descriptor{
		name:           name,
		vertexShader:   vertexShader,
		fragmentShader: fragmentShader,
		attributes:     common.VertexAttributePosition,
		blendMode:      common.BlendModeOpaque,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *descriptor) Name() string {
	return d.name
}

func (d *descriptor) VertexShader() shader.Shader {
	return d.vertexShader
}

func (d *descriptor) FragmentShader() shader.Shader {
	return d.fragmentShader
}

func (d *descriptor) Attributes() common.VertexAttribute {
	return d.attributes
}

func (d *descriptor) BlendMode() common.BlendMode {
	return d.blendMode
}

func (d *descriptor) Properties() []Property {
	return d.properties
}

func (d *descriptor) ObjectLayout() (common.ObjectLayout, bool) {
	return d.objectLayout, d.hasLayout
}
