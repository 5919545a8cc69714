package renderer

import (
	"fmt"
	"runtime"
	"sync"

	"github.com/Carmen-Shannon/framegraph-go/common"
	"github.com/Carmen-Shannon/framegraph-go/engine/graph"
	"github.com/Carmen-Shannon/framegraph-go/engine/renderer/pipeline"
	"github.com/cogentcore/webgpu/wgpu"
)

// objectStride is the aligned size of one per-object data block in the
// dynamic uniform buffer (WebGPU's minimum dynamic offset alignment).
const objectStride = 256

// maxObjectsPerFrame bounds the per-slot object buffer.
const maxObjectsPerFrame = 4096

// wgpuImage is one backend-owned texture with its render view.
type wgpuImage struct {
	texture *wgpu.Texture
	view    *wgpu.TextureView
	extent  common.Extent2D
}

// wgpuMesh holds the vertex and index buffers for one registered mesh.
type wgpuMesh struct {
	vertexBuffer *wgpu.Buffer
	indexBuffer  *wgpu.Buffer
}

// wgpuPipeline pairs a compiled render pipeline with the group indices its
// layout uses, so draw-time binding matches pipeline creation.
type wgpuPipeline struct {
	pipeline    *wgpu.RenderPipeline
	hasScene    bool
	objectGroup uint32
}

// wgpuFrameSlot is the per-frame-slot GPU state: a scene uniform buffer and a
// dynamic-offset object buffer with their bind groups, recycled once the
// slot's previous frame completes.
type wgpuFrameSlot struct {
	sceneBuffer  *wgpu.Buffer
	sceneGroup   *wgpu.BindGroup
	objectBuffer *wgpu.Buffer
	objectGroup  *wgpu.BindGroup
	objectData   []byte
	objectCount  uint32
}

// wgpuRendererBackendImpl is the WebGPU implementation of the Backend
// interface. It is command-recording glue: resource dependency reasoning
// lives in the graph and renderer, not here.
type wgpuRendererBackendImpl struct {
	mu *sync.Mutex

	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	device   *wgpu.Device
	queue    *wgpu.Queue
	surface  *wgpu.Surface

	surfaceFormat wgpu.TextureFormat
	surfaceExtent common.Extent2D
	presentMode   wgpu.PresentMode

	forceFallbackAdapter bool
	framesInFlight       int

	sceneLayout  *wgpu.BindGroupLayout
	objectLayout *wgpu.BindGroupLayout

	nextHandle uint64
	images     map[ImageHandle]*wgpuImage
	pipelines  map[pipeline.Handle]*wgpuPipeline
	meshes     map[MeshHandle]*wgpuMesh

	slots []*wgpuFrameSlot

	// Frame recording state for the slot currently between BeginFrame and
	// Submit.
	encoder        *wgpu.CommandEncoder
	pass           *wgpu.RenderPassEncoder
	currentSlot    int
	boundPipeline  *wgpuPipeline
	pendingObject  bool
	pendingOffset  uint32
	surfaceTexture *wgpu.Texture
	surfaceView    *wgpu.TextureView
	surfaceHandle  ImageHandle
}

// WGPUBackend is the concrete WebGPU backend surface. Beyond the Backend
// contract it exposes mesh registration and the underlying device and queue
// so hosts can upload their own resources.
type WGPUBackend interface {
	Backend

	// Device returns the WebGPU device.
	//
	// Returns:
	//   - *wgpu.Device: the device
	Device() *wgpu.Device

	// Queue returns the WebGPU queue.
	//
	// Returns:
	//   - *wgpu.Queue: the queue
	Queue() *wgpu.Queue

	// CreateMesh uploads interleaved vertex data and 32-bit index data and
	// registers them as a drawable mesh.
	//
	// Parameters:
	//   - vertexData: the raw vertex bytes
	//   - indexData: the raw index bytes (uint32 indices)
	//
	// Returns:
	//   - MeshHandle: the registered mesh
	//   - error: the buffer creation failure, nil on success
	CreateMesh(vertexData, indexData []byte) (MeshHandle, error)
}

var _ WGPUBackend = &wgpuRendererBackendImpl{}

// NewWGPUBackend is the entry point to create the WebGPU backend over a
// window surface.
//
// Parameters:
//   - surfaceDescriptor: the window surface to render to
//   - opts: a variadic list of WGPUBackendBuilderOption functions to configure the backend
//
// Returns:
//   - WGPUBackend: the initialized backend
//   - error: an adapter or device acquisition failure, nil on success
func NewWGPUBackend(surfaceDescriptor *wgpu.SurfaceDescriptor, opts ...WGPUBackendBuilderOption) (WGPUBackend, error) {
	runtime.LockOSThread()
	b := &wgpuRendererBackendImpl{
		mu:             &sync.Mutex{},
		instance:       wgpu.CreateInstance(nil),
		presentMode:    wgpu.PresentModeFifo,
		framesInFlight: 2,
		nextHandle:     1,
		images:         make(map[ImageHandle]*wgpuImage),
		pipelines:      make(map[pipeline.Handle]*wgpuPipeline),
		meshes:         make(map[MeshHandle]*wgpuMesh),
	}
	for _, opt := range opts {
		opt(b)
	}

	b.surface = b.instance.CreateSurface(surfaceDescriptor)

	adapter, err := b.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		ForceFallbackAdapter: b.forceFallbackAdapter,
		CompatibleSurface:    b.surface,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to acquire adapter: %w", err)
	}
	b.adapter = adapter

	device, err := adapter.RequestDevice(&wgpu.DeviceDescriptor{
		Label: "Render Graph Device",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to acquire device: %w", err)
	}
	b.device = device
	b.queue = device.GetQueue()

	if err := b.createSharedLayouts(); err != nil {
		return nil, err
	}
	if err := b.createFrameSlots(); err != nil {
		return nil, err
	}

	common.Logger().Info("webgpu backend initialized", "frames_in_flight", b.framesInFlight)
	return b, nil
}

// createSharedLayouts builds the scene and object bind group layouts shared
// by every pipeline: group 0 is one scene uniform buffer, the last group is
// one dynamic-offset uniform buffer carrying per-object data.
func (b *wgpuRendererBackendImpl) createSharedLayouts() error {
	sceneLayout, err := b.device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label: "Scene Data Layout",
		Entries: []wgpu.BindGroupLayoutEntry{{
			Binding:    0,
			Visibility: wgpu.ShaderStageVertex | wgpu.ShaderStageFragment,
			Buffer:     wgpu.BufferBindingLayout{Type: wgpu.BufferBindingTypeUniform},
		}},
	})
	if err != nil {
		return fmt.Errorf("failed to create scene bind group layout: %w", err)
	}
	b.sceneLayout = sceneLayout

	objectLayout, err := b.device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label: "Object Data Layout",
		Entries: []wgpu.BindGroupLayoutEntry{{
			Binding:    0,
			Visibility: wgpu.ShaderStageVertex | wgpu.ShaderStageFragment,
			Buffer: wgpu.BufferBindingLayout{
				Type:             wgpu.BufferBindingTypeUniform,
				HasDynamicOffset: true,
			},
		}},
	})
	if err != nil {
		return fmt.Errorf("failed to create object bind group layout: %w", err)
	}
	b.objectLayout = objectLayout
	return nil
}

// createFrameSlots allocates the per-slot uniform buffers and bind groups.
func (b *wgpuRendererBackendImpl) createFrameSlots() error {
	b.slots = make([]*wgpuFrameSlot, b.framesInFlight)
	for i := range b.slots {
		sceneBuffer, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
			Label: fmt.Sprintf("Scene Buffer Slot %d", i),
			Size:  objectStride,
			Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
		})
		if err != nil {
			return fmt.Errorf("failed to create scene buffer for slot %d: %w", i, err)
		}
		sceneGroup, err := b.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
			Label:  fmt.Sprintf("Scene Bind Group Slot %d", i),
			Layout: b.sceneLayout,
			Entries: []wgpu.BindGroupEntry{{
				Binding: 0,
				Buffer:  sceneBuffer,
				Size:    objectStride,
			}},
		})
		if err != nil {
			return fmt.Errorf("failed to create scene bind group for slot %d: %w", i, err)
		}

		objectBuffer, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
			Label: fmt.Sprintf("Object Buffer Slot %d", i),
			Size:  objectStride * maxObjectsPerFrame,
			Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
		})
		if err != nil {
			return fmt.Errorf("failed to create object buffer for slot %d: %w", i, err)
		}
		objectGroup, err := b.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
			Label:  fmt.Sprintf("Object Bind Group Slot %d", i),
			Layout: b.objectLayout,
			Entries: []wgpu.BindGroupEntry{{
				Binding: 0,
				Buffer:  objectBuffer,
				Size:    objectStride,
			}},
		})
		if err != nil {
			return fmt.Errorf("failed to create object bind group for slot %d: %w", i, err)
		}

		b.slots[i] = &wgpuFrameSlot{
			sceneBuffer:  sceneBuffer,
			sceneGroup:   sceneGroup,
			objectBuffer: objectBuffer,
			objectGroup:  objectGroup,
			objectData:   make([]byte, objectStride*maxObjectsPerFrame),
		}
	}
	return nil
}

func (b *wgpuRendererBackendImpl) Device() *wgpu.Device {
	return b.device
}

func (b *wgpuRendererBackendImpl) Queue() *wgpu.Queue {
	return b.queue
}

func (b *wgpuRendererBackendImpl) Configure(extent common.Extent2D) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	capabilities := b.surface.GetCapabilities(b.adapter)
	if len(capabilities.Formats) == 0 {
		return fmt.Errorf("surface reports no supported formats")
	}
	b.surfaceFormat = capabilities.Formats[0]

	b.surface.Configure(b.adapter, b.device, &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment | wgpu.TextureUsageCopyDst,
		Format:      b.surfaceFormat,
		Width:       extent.Width,
		Height:      extent.Height,
		PresentMode: b.presentMode,
		AlphaMode:   capabilities.AlphaModes[0],
	})
	b.surfaceExtent = extent
	return nil
}

func (b *wgpuRendererBackendImpl) SurfaceExtent() common.Extent2D {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.surfaceExtent
}

func (b *wgpuRendererBackendImpl) CreateImage(desc graph.AttachmentDescriptor, extent common.Extent2D) (ImageHandle, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	usage := wgpu.TextureUsageRenderAttachment | wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopySrc
	texture, err := b.device.CreateTexture(&wgpu.TextureDescriptor{
		Label: desc.Name,
		Size: wgpu.Extent3D{
			Width:              extent.Width,
			Height:             extent.Height,
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        desc.Format,
		Usage:         usage,
	})
	if err != nil {
		return 0, err
	}
	view, err := texture.CreateView(nil)
	if err != nil {
		texture.Release()
		return 0, err
	}

	handle := ImageHandle(b.nextHandle)
	b.nextHandle++
	b.images[handle] = &wgpuImage{texture: texture, view: view, extent: extent}
	return handle, nil
}

func (b *wgpuRendererBackendImpl) DestroyImage(handle ImageHandle) {
	b.mu.Lock()
	defer b.mu.Unlock()

	img, ok := b.images[handle]
	if !ok {
		return
	}
	img.view.Release()
	img.texture.Release()
	delete(b.images, handle)
}

func (b *wgpuRendererBackendImpl) CreatePipeline(desc pipeline.Descriptor) (pipeline.Handle, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	vs, err := b.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label: desc.VertexShader().Key(),
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{
			Code: desc.VertexShader().Source(),
		},
	})
	if err != nil {
		return 0, err
	}
	fs, err := b.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label: desc.FragmentShader().Key(),
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{
			Code: desc.FragmentShader().Source(),
		},
	})
	if err != nil {
		return 0, err
	}

	// Group 0 is the shared scene layout when any scene binding is declared;
	// the object data group always follows last.
	var layouts []*wgpu.BindGroupLayout
	hasScene := false
	for _, binding := range desc.Bindings() {
		if binding.Group == pipeline.BindingGroupScene {
			hasScene = true
		}
	}
	if hasScene {
		layouts = append(layouts, b.sceneLayout)
	}
	objectGroup := uint32(len(layouts))
	layouts = append(layouts, b.objectLayout)

	pipelineLayout, err := b.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            desc.Key(),
		BindGroupLayouts: layouts,
	})
	if err != nil {
		return 0, err
	}

	created, err := b.device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  desc.Key() + " Render Pipeline",
		Layout: pipelineLayout,
		Vertex: wgpu.VertexState{
			Module:     vs,
			EntryPoint: desc.VertexShader().EntryPoint(),
			Buffers:    vertexBufferLayouts(desc.Attributes()),
		},
		Fragment: fragmentState(fs, desc),
		Primitive: wgpu.PrimitiveState{
			Topology:  desc.Topology(),
			FrontFace: desc.FrontFace(),
			CullMode:  desc.CullMode(),
		},
		Multisample: wgpu.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
		DepthStencil: depthStencilState(desc),
	})
	if err != nil {
		return 0, err
	}

	handle := pipeline.Handle(b.nextHandle)
	b.nextHandle++
	b.pipelines[handle] = &wgpuPipeline{
		pipeline:    created,
		hasScene:    hasScene,
		objectGroup: objectGroup,
	}
	return handle, nil
}

func (b *wgpuRendererBackendImpl) DestroyPipeline(handle pipeline.Handle) {
	b.mu.Lock()
	defer b.mu.Unlock()

	p, ok := b.pipelines[handle]
	if !ok {
		return
	}
	p.pipeline.Release()
	delete(b.pipelines, handle)
}

func (b *wgpuRendererBackendImpl) CreateMesh(vertexData, indexData []byte) (MeshHandle, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	mesh := &wgpuMesh{}
	if len(vertexData) > 0 {
		buf, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
			Label: "Mesh Vertex Buffer",
			Size:  uint64(len(vertexData)),
			Usage: wgpu.BufferUsageVertex | wgpu.BufferUsageCopyDst,
		})
		if err != nil {
			return 0, err
		}
		b.queue.WriteBuffer(buf, 0, vertexData)
		mesh.vertexBuffer = buf
	}
	if len(indexData) > 0 {
		buf, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
			Label: "Mesh Index Buffer",
			Size:  uint64(len(indexData)),
			Usage: wgpu.BufferUsageIndex | wgpu.BufferUsageCopyDst,
		})
		if err != nil {
			return 0, err
		}
		b.queue.WriteBuffer(buf, 0, indexData)
		mesh.indexBuffer = buf
	}

	handle := MeshHandle(b.nextHandle)
	b.nextHandle++
	b.meshes[handle] = mesh
	return handle, nil
}

func (b *wgpuRendererBackendImpl) AcquireImage() (ImageHandle, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	texture, err := b.surface.GetCurrentTexture()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrSurfaceOutdated, err)
	}
	view, err := texture.CreateView(nil)
	if err != nil {
		return 0, err
	}

	b.surfaceTexture = texture
	b.surfaceView = view
	b.surfaceHandle = ImageHandle(b.nextHandle)
	b.nextHandle++
	return b.surfaceHandle, nil
}

func (b *wgpuRendererBackendImpl) BeginFrame(slot int) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	encoder, err := b.device.CreateCommandEncoder(nil)
	if err != nil {
		return err
	}
	b.encoder = encoder
	b.currentSlot = slot
	b.slots[slot].objectCount = 0
	return nil
}

// Barrier is a no-op on WebGPU: the implementation tracks usage hazards
// itself, so the graph's computed barriers need no explicit command here.
func (b *wgpuRendererBackendImpl) Barrier(image ImageHandle, prev, next graph.AccessMode) {
	common.Logger().Debug("barrier", "image", uint64(image), "prev", prev.String(), "next", next.String())
}

func (b *wgpuRendererBackendImpl) BeginPass(target PassTarget) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.encoder == nil {
		return fmt.Errorf("pass %q: no frame in progress", target.Pass)
	}

	desc := &wgpu.RenderPassDescriptor{Label: target.Pass}
	if target.Color != 0 {
		view, err := b.viewFor(target.Color)
		if err != nil {
			return fmt.Errorf("pass %q color target: %w", target.Pass, err)
		}
		loadOp := wgpu.LoadOpLoad
		if target.ClearColor {
			loadOp = wgpu.LoadOpClear
		}
		desc.ColorAttachments = []wgpu.RenderPassColorAttachment{{
			View:       view,
			LoadOp:     loadOp,
			StoreOp:    wgpu.StoreOpStore,
			ClearValue: wgpu.Color{R: 0, G: 0, B: 0, A: 1},
		}}
	}
	if target.Depth != 0 {
		view, err := b.viewFor(target.Depth)
		if err != nil {
			return fmt.Errorf("pass %q depth target: %w", target.Pass, err)
		}
		loadOp := wgpu.LoadOpLoad
		if target.ClearDepth {
			loadOp = wgpu.LoadOpClear
		}
		desc.DepthStencilAttachment = &wgpu.RenderPassDepthStencilAttachment{
			View:            view,
			DepthLoadOp:     loadOp,
			DepthStoreOp:    wgpu.StoreOpStore,
			DepthClearValue: 1.0,
		}
	}

	b.pass = b.encoder.BeginRenderPass(desc)
	b.boundPipeline = nil
	b.pendingObject = false
	return nil
}

func (b *wgpuRendererBackendImpl) EndPass() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.pass == nil {
		return
	}
	b.pass.End()
	b.pass.Release()
	b.pass = nil
}

func (b *wgpuRendererBackendImpl) BindPipeline(handle pipeline.Handle) {
	b.mu.Lock()
	defer b.mu.Unlock()

	p, ok := b.pipelines[handle]
	if !ok || b.pass == nil {
		return
	}
	b.pass.SetPipeline(p.pipeline)
	if p.hasScene {
		b.pass.SetBindGroup(0, b.slots[b.currentSlot].sceneGroup, nil)
	}
	b.boundPipeline = p
}

func (b *wgpuRendererBackendImpl) BindSceneData(data []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(data) == 0 {
		return
	}
	b.queue.WriteBuffer(b.slots[b.currentSlot].sceneBuffer, 0, data)
}

func (b *wgpuRendererBackendImpl) PushObjectData(data []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()

	slot := b.slots[b.currentSlot]
	if slot.objectCount >= maxObjectsPerFrame {
		common.Logger().Warn("object buffer full, draw data dropped", "slot", b.currentSlot)
		return
	}
	offset := slot.objectCount * objectStride
	copy(slot.objectData[offset:offset+objectStride], data)
	b.pendingOffset = offset
	b.pendingObject = true
	slot.objectCount++
}

func (b *wgpuRendererBackendImpl) Draw(mesh MeshHandle, indexCount uint32) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.pass == nil || b.boundPipeline == nil {
		return
	}
	if b.pendingObject {
		b.pass.SetBindGroup(b.boundPipeline.objectGroup, b.slots[b.currentSlot].objectGroup, []uint32{b.pendingOffset})
		b.pendingObject = false
	}

	m, ok := b.meshes[mesh]
	if !ok {
		return
	}
	if m.vertexBuffer != nil {
		b.pass.SetVertexBuffer(0, m.vertexBuffer, 0, wgpu.WholeSize)
	}
	if m.indexBuffer != nil {
		b.pass.SetIndexBuffer(m.indexBuffer, wgpu.IndexFormatUint32, 0, wgpu.WholeSize)
		b.pass.DrawIndexed(indexCount, 1, 0, 0, 0)
		return
	}
	b.pass.Draw(indexCount, 1, 0, 0)
}

func (b *wgpuRendererBackendImpl) Submit(slot int) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.submitLocked(slot)
}

func (b *wgpuRendererBackendImpl) submitLocked(slot int) error {
	if b.encoder == nil {
		return nil
	}

	s := b.slots[slot]
	if s.objectCount > 0 {
		b.queue.WriteBuffer(s.objectBuffer, 0, s.objectData[:s.objectCount*objectStride])
	}

	commands, err := b.encoder.Finish(nil)
	if err != nil {
		b.encoder.Release()
		b.encoder = nil
		return err
	}
	b.queue.Submit(commands)
	commands.Release()
	b.encoder.Release()
	b.encoder = nil
	return nil
}

func (b *wgpuRendererBackendImpl) Present(source, surface ImageHandle, slot int) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if surface != b.surfaceHandle || b.surfaceTexture == nil {
		return fmt.Errorf("%w: presented surface image is not the acquired one", ErrSurfaceOutdated)
	}
	src, ok := b.images[source]
	if !ok {
		return fmt.Errorf("present source image %d not found", uint64(source))
	}

	// Present as a blit: copy the draw attachment into the surface image.
	// The copy extent is bounded by both images.
	copyExtent := src.extent.Max(common.Extent2D{})
	if b.surfaceExtent.Width < copyExtent.Width {
		copyExtent.Width = b.surfaceExtent.Width
	}
	if b.surfaceExtent.Height < copyExtent.Height {
		copyExtent.Height = b.surfaceExtent.Height
	}
	b.encoder.CopyTextureToTexture(
		&wgpu.ImageCopyTexture{Texture: src.texture},
		&wgpu.ImageCopyTexture{Texture: b.surfaceTexture},
		&wgpu.Extent3D{
			Width:              copyExtent.Width,
			Height:             copyExtent.Height,
			DepthOrArrayLayers: 1,
		},
	)

	if err := b.submitLocked(slot); err != nil {
		return err
	}
	b.surface.Present()

	b.surfaceView.Release()
	b.surfaceTexture.Release()
	b.surfaceTexture = nil
	b.surfaceView = nil
	b.surfaceHandle = 0
	return nil
}

func (b *wgpuRendererBackendImpl) WaitFrame(slot int) {
	// wgpu-native exposes no per-submission fences through this binding;
	// polling the device to idle is the conservative equivalent.
	b.device.Poll(true, nil)
}

func (b *wgpuRendererBackendImpl) Wait() {
	b.device.Poll(true, nil)
}

// viewFor resolves an image handle to its render view, including the
// currently acquired surface image.
func (b *wgpuRendererBackendImpl) viewFor(handle ImageHandle) (*wgpu.TextureView, error) {
	if handle == b.surfaceHandle && b.surfaceView != nil {
		return b.surfaceView, nil
	}
	img, ok := b.images[handle]
	if !ok {
		return nil, fmt.Errorf("image %d not found", uint64(handle))
	}
	return img.view, nil
}

// vertexBufferLayouts derives the interleaved vertex buffer layout from an
// attribute mask. Attribute order and formats are fixed by flag declaration
// order.
func vertexBufferLayouts(attributes common.VertexAttribute) []wgpu.VertexBufferLayout {
	type attrSpec struct {
		flag   common.VertexAttribute
		format wgpu.VertexFormat
		size   uint64
	}
	specs := []attrSpec{
		{common.VertexAttributePosition, wgpu.VertexFormatFloat32x3, 12},
		{common.VertexAttributeColor, wgpu.VertexFormatFloat32x4, 16},
		{common.VertexAttributeTexture, wgpu.VertexFormatFloat32x2, 8},
		{common.VertexAttributeNormal, wgpu.VertexFormatFloat32x3, 12},
		{common.VertexAttributeTangent, wgpu.VertexFormatFloat32x3, 12},
		{common.VertexAttributeBitangent, wgpu.VertexFormatFloat32x3, 12},
	}

	var attrs []wgpu.VertexAttribute
	var offset uint64
	var location uint32
	for _, spec := range specs {
		if !attributes.Has(spec.flag) {
			continue
		}
		attrs = append(attrs, wgpu.VertexAttribute{
			Format:         spec.format,
			Offset:         offset,
			ShaderLocation: location,
		})
		offset += spec.size
		location++
	}
	if len(attrs) == 0 {
		return nil
	}
	return []wgpu.VertexBufferLayout{{
		ArrayStride: offset,
		StepMode:    wgpu.VertexStepModeVertex,
		Attributes:  attrs,
	}}
}

// fragmentState builds the fragment stage with the descriptor's color target
// and blend mode. Alpha materials use standard source-alpha blending.
func fragmentState(module *wgpu.ShaderModule, desc pipeline.Descriptor) *wgpu.FragmentState {
	if desc.ColorFormat() == wgpu.TextureFormatUndefined {
		return nil
	}
	state := wgpu.ColorTargetState{
		Format:    desc.ColorFormat(),
		WriteMask: wgpu.ColorWriteMaskAll,
	}
	if desc.BlendMode() == common.BlendModeAlpha {
		state.Blend = &wgpu.BlendState{
			Color: wgpu.BlendComponent{
				SrcFactor: wgpu.BlendFactorSrcAlpha,
				DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
				Operation: wgpu.BlendOperationAdd,
			},
			Alpha: wgpu.BlendComponent{
				SrcFactor: wgpu.BlendFactorOne,
				DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
				Operation: wgpu.BlendOperationAdd,
			},
		}
	}
	return &wgpu.FragmentState{
		Module:     module,
		EntryPoint: desc.FragmentShader().EntryPoint(),
		Targets:    []wgpu.ColorTargetState{state},
	}
}

// depthStencilState builds the depth state, or nil when the pipeline has no
// depth target.
func depthStencilState(desc pipeline.Descriptor) *wgpu.DepthStencilState {
	if desc.DepthFormat() == wgpu.TextureFormatUndefined {
		return nil
	}
	compare := desc.DepthTest().Compare
	if !desc.DepthTest().Enable {
		compare = wgpu.CompareFunctionAlways
	}
	return &wgpu.DepthStencilState{
		Format:            desc.DepthFormat(),
		DepthWriteEnabled: desc.DepthTest().WriteEnable,
		DepthCompare:      compare,
		StencilFront: wgpu.StencilFaceState{
			Compare: wgpu.CompareFunctionAlways,
		},
		StencilBack: wgpu.StencilFaceState{
			Compare: wgpu.CompareFunctionAlways,
		},
	}
}
