// package pipeline defines structural pipeline descriptors and the registry
// that caches backend pipeline objects by descriptor identity.
package pipeline

import (
	"fmt"
	"hash/fnv"
	"sort"

	"github.com/Carmen-Shannon/framegraph-go/common"
	"github.com/Carmen-Shannon/framegraph-go/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

// BindingGroup identifies which descriptor group a binding belongs to.
type BindingGroup int

const (
	// BindingGroupScene holds scene-level uniforms shared by every object in a pass.
	BindingGroupScene BindingGroup = iota

	// BindingGroupMaterial holds per-material resources (textures, samplers, uniforms).
	BindingGroupMaterial
)

// String returns the group name used in configuration files.
func (g BindingGroup) String() string {
	switch g {
	case BindingGroupMaterial:
		return "material"
	default:
		return "scene"
	}
}

// BindingKind identifies the descriptor kind of a binding.
type BindingKind int

const (
	// BindingKindUniform is a uniform buffer binding.
	BindingKindUniform BindingKind = iota

	// BindingKindTexture is a sampled texture binding.
	BindingKindTexture

	// BindingKindSampler is a sampler binding.
	BindingKindSampler
)

// String returns the kind name used in configuration files.
func (k BindingKind) String() string {
	switch k {
	case BindingKindTexture:
		return "texture"
	case BindingKindSampler:
		return "sampler"
	default:
		return "uniform"
	}
}

// Binding is one entry of a pipeline's descriptor-binding list.
type Binding struct {
	// Group is the descriptor group the binding targets.
	Group BindingGroup

	// Stages are the shader stages the binding is visible to.
	Stages wgpu.ShaderStage

	// Kind is the descriptor kind of the binding.
	Kind BindingKind
}

// DepthTest is the depth-test portion of a pipeline's fixed-function state.
type DepthTest struct {
	// Enable turns depth testing on.
	Enable bool

	// WriteEnable turns depth writes on. Only meaningful when Enable is set.
	WriteEnable bool

	// Compare is the depth comparison function.
	Compare wgpu.CompareFunction
}

// Descriptor is the full structural description of a render pipeline. Two
// descriptors with equal fields identify the same backend pipeline; the
// registry caches on Key, a structural hash, so identical configurations
// share one backend object.
type Descriptor struct {
	// vertexShader and fragmentShader are the stage sources. Identity uses
	// the shader key and entry point, not the source text.
	vertexShader, fragmentShader shader.Shader

	// attributes is the vertex-attribute layout the pipeline consumes.
	attributes common.VertexAttribute

	// bindings is the descriptor-binding list. Order is insignificant for
	// identity; Key sorts a copy canonically before hashing.
	bindings []Binding

	// Fixed-function state.
	topology  wgpu.PrimitiveTopology
	cullMode  wgpu.CullMode
	frontFace wgpu.FrontFace
	depthTest DepthTest
	blendMode common.BlendMode

	// Target attachment formats. Undefined means the pipeline has no target
	// of that kind.
	colorFormat wgpu.TextureFormat
	depthFormat wgpu.TextureFormat
}

// NewDescriptor is the entry point to create a pipeline Descriptor. Vertex
// and fragment shaders are required; everything else has defaults matching a
// standard opaque triangle pipeline and can be overridden with options.
//
// Parameters:
//   - vertexShader: the vertex stage shader
//   - fragmentShader: the fragment stage shader
//   - opts: a variadic list of DescriptorBuilderOption functions to configure the descriptor
//
// Returns:
//   - Descriptor: the configured descriptor
func NewDescriptor(vertexShader, fragmentShader shader.Shader, opts ...DescriptorBuilderOption) Descriptor {
	d := Descriptor{
		vertexShader:   vertexShader,
		fragmentShader: fragmentShader,
		topology:       wgpu.PrimitiveTopologyTriangleList,
		cullMode:       wgpu.CullModeBack,
		frontFace:      wgpu.FrontFaceCCW,
		depthTest: DepthTest{
			Enable:      true,
			WriteEnable: true,
			Compare:     wgpu.CompareFunctionLessEqual,
		},
		blendMode: common.BlendModeOpaque,
	}
	for _, opt := range opts {
		opt(&d)
	}
	return d
}

// VertexShader returns the vertex stage shader.
func (d Descriptor) VertexShader() shader.Shader { return d.vertexShader }

// FragmentShader returns the fragment stage shader.
func (d Descriptor) FragmentShader() shader.Shader { return d.fragmentShader }

// Attributes returns the vertex-attribute layout.
func (d Descriptor) Attributes() common.VertexAttribute { return d.attributes }

// Bindings returns the descriptor-binding list. The returned slice must not
// be modified.
func (d Descriptor) Bindings() []Binding { return d.bindings }

// Topology returns the primitive topology.
func (d Descriptor) Topology() wgpu.PrimitiveTopology { return d.topology }

// CullMode returns the cull mode.
func (d Descriptor) CullMode() wgpu.CullMode { return d.cullMode }

// FrontFace returns the front-face winding order.
func (d Descriptor) FrontFace() wgpu.FrontFace { return d.frontFace }

// DepthTest returns the depth-test state.
func (d Descriptor) DepthTest() DepthTest { return d.depthTest }

// BlendMode returns the blend mode.
func (d Descriptor) BlendMode() common.BlendMode { return d.blendMode }

// ColorFormat returns the color target format, or TextureFormatUndefined.
func (d Descriptor) ColorFormat() wgpu.TextureFormat { return d.colorFormat }

// DepthFormat returns the depth target format, or TextureFormatUndefined.
func (d Descriptor) DepthFormat() wgpu.TextureFormat { return d.depthFormat }

// Key returns the structural identity of the descriptor as an FNV-1a hash of
// a canonical field encoding. Bindings are sorted before hashing so binding
// declaration order never affects identity.
//
// Returns:
//   - string: the hex-encoded structural hash
func (d Descriptor) Key() string {
	h := fnv.New64a()

	writeShader := func(s shader.Shader) {
		if s == nil {
			fmt.Fprint(h, "-;")
			return
		}
		fmt.Fprintf(h, "%s:%s;", s.Key(), s.EntryPoint())
	}
	writeShader(d.vertexShader)
	writeShader(d.fragmentShader)

	sorted := append([]Binding(nil), d.bindings...)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Group != sorted[j].Group {
			return sorted[i].Group < sorted[j].Group
		}
		if sorted[i].Kind != sorted[j].Kind {
			return sorted[i].Kind < sorted[j].Kind
		}
		return sorted[i].Stages < sorted[j].Stages
	})
	for _, b := range sorted {
		fmt.Fprintf(h, "b%d.%d.%d;", b.Group, b.Kind, b.Stages)
	}

	fmt.Fprintf(h, "a%d;t%d;c%d;f%d;d%t.%t.%d;m%d;cf%d;df%d",
		d.attributes, d.topology, d.cullMode, d.frontFace,
		d.depthTest.Enable, d.depthTest.WriteEnable, d.depthTest.Compare,
		d.blendMode, d.colorFormat, d.depthFormat,
	)

	return fmt.Sprintf("%016x", h.Sum64())
}
