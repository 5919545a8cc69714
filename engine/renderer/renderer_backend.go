package renderer

import (
	"errors"

	"github.com/Carmen-Shannon/framegraph-go/common"
	"github.com/Carmen-Shannon/framegraph-go/engine/graph"
	"github.com/Carmen-Shannon/framegraph-go/engine/renderer/pipeline"
)

// ImageHandle identifies a backend image resource (an attachment or the
// acquired surface image).
type ImageHandle uint64

// MeshHandle identifies backend vertex and index buffers for one mesh.
type MeshHandle uint64

// ErrSurfaceOutdated is returned by AcquireImage and Present when the output
// surface no longer matches the window (typically after a resize). The
// renderer recovers by rebuilding attachments at the new surface extent and
// retrying the frame once.
var ErrSurfaceOutdated = errors.New("output surface is outdated")

// PassTarget describes the render targets one pass draws into.
type PassTarget struct {
	// Pass is the pass name, for backend labels and diagnostics.
	Pass string

	// Color is the color target, or 0 when the pass has none.
	Color ImageHandle

	// Depth is the depth target, or 0 when the pass has none.
	Depth ImageHandle

	// ClearColor and ClearDepth request clearing the respective target when
	// the pass begins.
	ClearColor bool
	ClearDepth bool

	// DepthWrite enables depth writes for the pass's depth target.
	DepthWrite bool

	// Extent is the draw extent for this pass's targets.
	Extent common.Extent2D
}

// Backend is the graphics surface the renderer drives. A frame is recorded
// between BeginFrame and Submit (or Present, which implies Submit) against a
// numbered frame slot; WaitFrame blocks until a slot's prior GPU work
// completes. The concrete implementation wraps WebGPU; tests substitute a
// recording mock.
//
// Backend embeds pipeline.Backend so the same object serves the pipeline
// registry.
type Backend interface {
	pipeline.Backend

	// Configure (re)configures the output surface at the given extent.
	// Called at startup and when recovering from ErrSurfaceOutdated.
	//
	// Parameters:
	//   - extent: the new surface extent in pixels
	//
	// Returns:
	//   - error: the configuration failure, nil on success
	Configure(extent common.Extent2D) error

	// SurfaceExtent returns the current output surface extent.
	//
	// Returns:
	//   - common.Extent2D: the surface extent in pixels
	SurfaceExtent() common.Extent2D

	// CreateImage allocates an image for an attachment at the given extent.
	//
	// Parameters:
	//   - desc: the attachment descriptor
	//   - extent: the image extent in pixels
	//
	// Returns:
	//   - ImageHandle: the image handle
	//   - error: the allocation failure, nil on success
	CreateImage(desc graph.AttachmentDescriptor, extent common.Extent2D) (ImageHandle, error)

	// DestroyImage releases an attachment image.
	//
	// Parameters:
	//   - handle: the image to release
	DestroyImage(handle ImageHandle)

	// AcquireImage acquires the next output surface image for presentation.
	//
	// Returns:
	//   - ImageHandle: the acquired surface image
	//   - error: ErrSurfaceOutdated when the surface is stale, or a fatal device error
	AcquireImage() (ImageHandle, error)

	// BeginFrame starts command recording for a frame slot. The slot must not
	// be in flight.
	//
	// Parameters:
	//   - slot: the frame slot index
	//
	// Returns:
	//   - error: the recording setup failure, nil on success
	BeginFrame(slot int) error

	// Barrier records a synchronization point on an image between two
	// accesses. The previous access must complete before the next begins.
	//
	// Parameters:
	//   - image: the image the barrier covers
	//   - prev: the previous access mode
	//   - next: the upcoming access mode
	Barrier(image ImageHandle, prev, next graph.AccessMode)

	// BeginPass starts a render pass against the given targets. Must be
	// paired with EndPass.
	//
	// Parameters:
	//   - target: the pass targets and clear policy
	//
	// Returns:
	//   - error: the pass setup failure, nil on success
	BeginPass(target PassTarget) error

	// EndPass ends the current render pass.
	EndPass()

	// BindPipeline binds a pipeline for subsequent draws in the current pass.
	//
	// Parameters:
	//   - handle: the pipeline to bind
	BindPipeline(handle pipeline.Handle)

	// BindSceneData uploads and binds the scene-level uniform block for the
	// current pass.
	//
	// Parameters:
	//   - data: the encoded scene uniform block
	BindSceneData(data []byte)

	// PushObjectData pushes the per-object data block for the next draw.
	//
	// Parameters:
	//   - data: the encoded per-object block
	PushObjectData(data []byte)

	// Draw issues an indexed draw for a mesh.
	//
	// Parameters:
	//   - mesh: the mesh buffers to draw
	//   - indexCount: the number of indices to draw
	Draw(mesh MeshHandle, indexCount uint32)

	// Submit finishes recording for a slot and submits it to the GPU with a
	// completion signal the slot's next WaitFrame observes.
	//
	// Parameters:
	//   - slot: the frame slot index
	//
	// Returns:
	//   - error: the submission failure, nil on success
	Submit(slot int) error

	// Present records a copy of source into the acquired surface image,
	// submits the slot's commands and presents the surface. It implies
	// Submit for the slot.
	//
	// Parameters:
	//   - source: the attachment image to present
	//   - surface: the acquired surface image
	//   - slot: the frame slot index
	//
	// Returns:
	//   - error: ErrSurfaceOutdated when the surface went stale, or a fatal device error
	Present(source, surface ImageHandle, slot int) error

	// WaitFrame blocks until the GPU work previously submitted for a slot has
	// completed. This is the only routine blocking point in steady-state
	// operation.
	//
	// Parameters:
	//   - slot: the frame slot index
	WaitFrame(slot int)

	// Wait blocks until all submitted GPU work has completed. Used during
	// shutdown and surface rebuilds before releasing resources.
	Wait()
}
