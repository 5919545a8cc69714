package material

import (
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/framegraph-go/common"
	"github.com/Carmen-Shannon/framegraph-go/engine/graph"
	"github.com/Carmen-Shannon/framegraph-go/engine/renderer/pipeline"
	"github.com/cogentcore/webgpu/wgpu"
)

// registry is the implementation of the Registry interface.
type registry struct {
	mu        sync.Mutex
	pipelines pipeline.Registry
	materials map[string]Descriptor
	resolved  map[string]pipeline.Handle

	// Fixed-function defaults applied to every material-resolved pipeline.
	defaultLayout common.ObjectLayout
	cullMode      wgpu.CullMode
	frontFace     wgpu.FrontFace
}

// Registry resolves (material, pass) pairs into concrete pipelines. A
// material is pass-agnostic; the registry combines its shader, attribute and
// blend fields with the pass's target formats, depth policy and layout
// requirements, then delegates caching to the pipeline registry.
//
// Lookups are safe for concurrent readers; cache-miss insertion holds an
// exclusive guard.
type Registry interface {
	// Register adds a material to the registry. Registering two materials
	// with the same name is an error.
	//
	// Parameters:
	//   - desc: the material descriptor
	//
	// Returns:
	//   - error: non-nil if the name is already registered
	Register(desc Descriptor) error

	// Material retrieves a registered material by name.
	//
	// Parameters:
	//   - name: the material name
	//
	// Returns:
	//   - Descriptor: the material descriptor
	//   - bool: true if the material is registered
	Material(name string) (Descriptor, bool)

	// Resolve realizes a material into a pipeline for one pass.
	// Attribute compatibility with the pass's object layout is checked here,
	// at resolve time, never at draw time: a material consuming normals needs
	// NormalMatrix in the pass layout, a material consuming positions needs
	// WorldMatrix, and the material's own object layout (or the registry
	// default when it declares none) must be a subset of the pass layout.
	// Violations fail with ErrLayoutMismatch naming both sides.
	//
	// Resolution is cached per (material, pass) pair.
	//
	// Parameters:
	//   - name: the material name
	//   - pass: the resolved pass the material is drawn in
	//
	// Returns:
	//   - pipeline.Handle: the pipeline to bind for this pair
	//   - error: ErrUnknownMaterial, ErrLayoutMismatch, or a pipeline creation failure
	Resolve(name string, pass graph.ResolvedPass) (pipeline.Handle, error)

	// Reset drops every cached (material, pass) resolution. Called on graph
	// reload, when pass target formats may have changed.
	Reset()
}

var _ Registry = &registry{}

// NewRegistry is the entry point to create a new material Registry bound to a
// pipeline registry.
//
// Parameters:
//   - pipelines: the pipeline registry resolutions delegate to
//   - opts: a variadic list of RegistryBuilderOption functions to configure the registry
//
// Returns:
//   - Registry: a new material registry
func NewRegistry(pipelines pipeline.Registry, opts ...RegistryBuilderOption) Registry {
	r := &registry{
		pipelines:     pipelines,
		materials:     make(map[string]Descriptor),
		resolved:      make(map[string]pipeline.Handle),
		defaultLayout: common.ObjectLayoutWorldMatrix,
		cullMode:      wgpu.CullModeBack,
		frontFace:     wgpu.FrontFaceCCW,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *registry) Register(desc Descriptor) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.materials[desc.Name()]; ok {
		return fmt.Errorf("material %q already registered", desc.Name())
	}
	r.materials[desc.Name()] = desc
	return nil
}

func (r *registry) Material(name string) (Descriptor, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	desc, ok := r.materials[name]
	return desc, ok
}

func (r *registry) Resolve(name string, pass graph.ResolvedPass) (pipeline.Handle, error) {
	cacheKey := name + "|" + pass.Name

	r.mu.Lock()
	defer r.mu.Unlock()

	if handle, ok := r.resolved[cacheKey]; ok {
		return handle, nil
	}

	mat, ok := r.materials[name]
	if !ok {
		return 0, fmt.Errorf("material %q: %w", name, ErrUnknownMaterial)
	}
	if err := r.checkLayout(mat, pass); err != nil {
		return 0, err
	}

	handle, err := r.pipelines.GetOrCreate(r.buildDescriptor(mat, pass))
	if err != nil {
		return 0, fmt.Errorf("material %q in pass %q: %w", name, pass.Name, err)
	}
	r.resolved[cacheKey] = handle

	common.Logger().Debug("material resolved", "material", name, "pass", pass.Name)
	return handle, nil
}

func (r *registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	clear(r.resolved)
}

// checkLayout verifies the pass's object layout can supply everything the
// material's shaders consume.
func (r *registry) checkLayout(mat Descriptor, pass graph.ResolvedPass) error {
	attrs := mat.Attributes()
	if attrs.Has(common.VertexAttributeNormal) || attrs.Has(common.VertexAttributeTangent) || attrs.Has(common.VertexAttributeBitangent) {
		if !pass.ObjectLayout.Has(common.ObjectLayoutNormalMatrix) {
			return fmt.Errorf("material %q needs a normal matrix but pass %q object layout is %s: %w",
				mat.Name(), pass.Name, pass.ObjectLayout, ErrLayoutMismatch)
		}
	}
	if attrs.Has(common.VertexAttributePosition) && !pass.ObjectLayout.Has(common.ObjectLayoutWorldMatrix) {
		return fmt.Errorf("material %q needs a world matrix but pass %q object layout is %s: %w",
			mat.Name(), pass.Name, pass.ObjectLayout, ErrLayoutMismatch)
	}

	layout, declared := mat.ObjectLayout()
	if !declared {
		layout = r.defaultLayout
	}
	if !pass.ObjectLayout.Has(layout) {
		return fmt.Errorf("material %q object layout %s exceeds pass %q layout %s: %w",
			mat.Name(), layout, pass.Name, pass.ObjectLayout, ErrLayoutMismatch)
	}
	return nil
}

// buildDescriptor combines the material's shading fields with the pass's
// target and binding requirements into a structural pipeline descriptor.
func (r *registry) buildDescriptor(mat Descriptor, pass graph.ResolvedPass) pipeline.Descriptor {
	var bindings []pipeline.Binding
	if pass.SceneLayout != 0 {
		bindings = append(bindings, pipeline.Binding{
			Group:  pipeline.BindingGroupScene,
			Stages: wgpu.ShaderStageVertex | wgpu.ShaderStageFragment,
			Kind:   pipeline.BindingKindUniform,
		})
	}
	for _, prop := range mat.Properties() {
		switch prop.Kind {
		case PropertyKindTexture:
			bindings = append(bindings,
				pipeline.Binding{Group: pipeline.BindingGroupMaterial, Stages: wgpu.ShaderStageFragment, Kind: pipeline.BindingKindTexture},
				pipeline.Binding{Group: pipeline.BindingGroupMaterial, Stages: wgpu.ShaderStageFragment, Kind: pipeline.BindingKindSampler},
			)
		case PropertyKindUniform:
			bindings = append(bindings, pipeline.Binding{
				Group:  pipeline.BindingGroupMaterial,
				Stages: wgpu.ShaderStageFragment,
				Kind:   pipeline.BindingKindUniform,
			})
		}
	}

	// Transparent materials read depth but never write it, so blended
	// fragments cannot occlude each other.
	depthWrite := pass.DepthWrite && mat.BlendMode() == common.BlendModeOpaque

	return pipeline.NewDescriptor(mat.VertexShader(), mat.FragmentShader(),
		pipeline.WithAttributes(mat.Attributes()),
		pipeline.WithBindings(bindings...),
		pipeline.WithCullMode(r.cullMode),
		pipeline.WithFrontFace(r.frontFace),
		pipeline.WithBlendMode(mat.BlendMode()),
		pipeline.WithColorFormat(pass.ColorFormat),
		pipeline.WithDepthFormat(pass.DepthFormat),
		pipeline.WithDepthTest(pipeline.DepthTest{
			Enable:      pass.DepthFormat != wgpu.TextureFormatUndefined,
			WriteEnable: depthWrite,
			Compare:     wgpu.CompareFunctionLessEqual,
		}),
	)
}
