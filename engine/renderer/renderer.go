// package renderer executes resolved render graphs frame by frame against a
// graphics backend, with an explicit ring of buffered frame slots.
package renderer

import (
	"errors"
	"fmt"
	"runtime"
	"sync"

	"github.com/Carmen-Shannon/framegraph-go/common"
	"github.com/Carmen-Shannon/framegraph-go/engine/graph"
	"github.com/Carmen-Shannon/framegraph-go/engine/renderer/material"
	"github.com/Carmen-Shannon/framegraph-go/engine/renderer/pipeline"
)

// renderer is the implementation of the Renderer interface. It owns the
// frame ring and the graph's attachment images; pipeline and material
// registries are passed in so multiple renderers can share them and shutdown
// ordering stays explicit.
type renderer struct {
	mu        sync.Mutex
	backend   Backend
	pipelines pipeline.Registry
	materials material.Registry
	graph     graph.RenderGraph

	images    map[string]ImageHandle
	ring      []*FrameContext
	drawLists *drawListBuilder

	frameNumber uint64
	// steady selects between the initial and steady-state transition tables.
	// It resets whenever attachments are rebuilt, since fresh images carry no
	// previous-frame contents.
	steady bool

	stats FrameStats

	framesInFlight int
	prepWorkers    int
}

// Renderer drives a resolved RenderGraph against a backend. A single
// goroutine records frames; draw-list preparation fans out internally.
type Renderer interface {
	// RenderFrame records and submits one frame: for each pass in graph
	// order it applies the precomputed transitions, then either presents
	// (Present pass, which ends the frame) or binds scene data and draws the
	// matching objects, opaque phase first, transparent phase back to front.
	//
	// Before recording, RenderFrame blocks until the slot's previous frame
	// has completed on the GPU. A stale surface is recovered internally by
	// rebuilding attachments at the new surface extent and retrying once;
	// any other error is fatal for the frame and propagates.
	//
	// Parameters:
	//   - scene: the scene-level uniform input for the frame
	//   - objects: all drawable objects; passes filter by tag and transparency
	//
	// Returns:
	//   - error: the frame failure, nil on success
	RenderFrame(scene SceneData, objects []DrawObject) error

	// Resize reconfigures the surface and rebuilds attachments at a new
	// extent. All in-flight frames are drained first.
	//
	// Parameters:
	//   - extent: the new surface extent in pixels
	//
	// Returns:
	//   - error: the rebuild failure, nil on success
	Resize(extent common.Extent2D) error

	// Reload swaps in a newly resolved graph, rebuilding attachments and
	// dropping cached material resolutions. All in-flight frames are drained
	// first.
	//
	// Parameters:
	//   - g: the new resolved graph
	//
	// Returns:
	//   - error: the rebuild failure, nil on success
	Reload(g graph.RenderGraph) error

	// Stats returns the work counters of the most recently recorded frame.
	//
	// Returns:
	//   - FrameStats: the last frame's per-pass counters
	Stats() FrameStats

	// Shutdown drains every in-flight frame slot, then releases attachment
	// images, cached material resolutions and backend pipelines, in that
	// order. The renderer is unusable afterwards.
	Shutdown()
}

var _ Renderer = &renderer{}

// NewRenderer is the entry point to create a new Renderer for a resolved
// graph. It allocates the graph's attachment images immediately.
//
// Parameters:
//   - backend: the graphics backend to record against
//   - g: the resolved render graph to execute
//   - pipelines: the pipeline registry, shared with fixed-pipeline registration
//   - materials: the material registry used to resolve per-object pipelines
//   - opts: a variadic list of RendererBuilderOption functions to configure the renderer
//
// Returns:
//   - Renderer: the renderer, ready for RenderFrame
//   - error: an attachment allocation failure, nil on success
func NewRenderer(backend Backend, g graph.RenderGraph, pipelines pipeline.Registry, materials material.Registry, opts ...RendererBuilderOption) (Renderer, error) {
	r := &renderer{
		backend:        backend,
		pipelines:      pipelines,
		materials:      materials,
		graph:          g,
		images:         make(map[string]ImageHandle),
		framesInFlight: 2,
		prepWorkers:    runtime.NumCPU(),
	}
	for _, opt := range opts {
		opt(r)
	}

	r.ring = newFrameRing(r.framesInFlight)
	r.drawLists = newDrawListBuilder(materials, r.prepWorkers)

	if err := r.createAttachments(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *renderer) RenderFrame(scene SceneData, objects []DrawObject) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	slot := int(r.frameNumber % uint64(len(r.ring)))
	ctx := r.ring[slot]
	if ctx.inFlight {
		// The only routine blocking point: slot reuse waits for the previous
		// frame that used it.
		r.backend.WaitFrame(slot)
		ctx.inFlight = false
	}

	err := r.recordFrame(ctx, scene, objects)
	if errors.Is(err, ErrSurfaceOutdated) {
		common.Logger().Warn("surface outdated, rebuilding attachments", "frame", r.frameNumber)
		if rebuildErr := r.rebuild(r.backend.SurfaceExtent()); rebuildErr != nil {
			return rebuildErr
		}
		// One bounded retry per frame, never more.
		err = r.recordFrame(ctx, scene, objects)
	}
	if err != nil {
		return err
	}

	ctx.inFlight = true
	ctx.frameNumber = r.frameNumber
	r.frameNumber++
	r.steady = true
	return nil
}

func (r *renderer) Resize(extent common.Extent2D) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rebuild(extent)
}

func (r *renderer) Reload(g graph.RenderGraph) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.graph = g
	// Pass target formats may have changed; cached material resolutions are
	// stale.
	r.materials.Reset()
	return r.rebuild(r.backend.SurfaceExtent())
}

func (r *renderer) Stats() FrameStats {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stats
}

func (r *renderer) Shutdown() {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Drain every in-flight slot before releasing anything the GPU may still
	// reference.
	r.drainLocked()
	r.backend.Wait()

	for name, handle := range r.images {
		r.backend.DestroyImage(handle)
		delete(r.images, name)
	}
	r.materials.Reset()
	r.pipelines.Shutdown()
}

// recordFrame records and submits one frame into ctx's slot.
func (r *renderer) recordFrame(ctx *FrameContext, scene SceneData, objects []DrawObject) error {
	surface, err := r.backend.AcquireImage()
	if err != nil {
		return err
	}
	if err := r.backend.BeginFrame(ctx.slot); err != nil {
		return err
	}

	stats := FrameStats{FrameNumber: r.frameNumber}
	presented := false

	for _, pass := range r.graph.Passes() {
		ps := PassStats{Name: pass.Name}

		transitions := pass.SteadyTransitions
		if !r.steady {
			transitions = pass.Transitions
		}
		for _, tr := range transitions {
			if !tr.Barrier {
				continue
			}
			r.backend.Barrier(r.imageFor(tr.Attachment, surface), tr.Prev, tr.Next)
			ps.Barriers++
		}

		if pass.Type == graph.PassTypePresent {
			if err := r.backend.Present(r.imageFor(pass.Target, surface), surface, ctx.slot); err != nil {
				return err
			}
			presented = true
			stats.Passes = append(stats.Passes, ps)
			// Present is the terminal consumer; nothing runs after it.
			break
		}

		if err := r.recordMaterialPass(pass, transitions, surface, scene, objects, &ps); err != nil {
			return err
		}
		stats.Passes = append(stats.Passes, ps)
	}

	if !presented {
		if err := r.backend.Submit(ctx.slot); err != nil {
			return err
		}
	}

	r.stats = stats
	return nil
}

// recordMaterialPass records one drawing pass: scene bindings, the opaque
// phase, then the transparent phase.
func (r *renderer) recordMaterialPass(pass graph.ResolvedPass, transitions []graph.Transition, surface ImageHandle, scene SceneData, objects []DrawObject, ps *PassStats) error {
	var fixed pipeline.Handle
	hasFixed := pass.Pipeline != ""
	if hasFixed {
		handle, ok := r.pipelines.LookupName(pass.Pipeline)
		if !ok {
			return fmt.Errorf("render pipeline %q not found in cache", pass.Pipeline)
		}
		fixed = handle
	}

	opaque, transparent, err := r.drawLists.build(pass, fixed, hasFixed, objects)
	if err != nil {
		return err
	}

	if err := r.backend.BeginPass(r.passTarget(pass, transitions, surface)); err != nil {
		return err
	}
	if pass.SceneLayout != 0 {
		r.backend.BindSceneData(encodeSceneData(scene, pass.SceneLayout))
	}

	var bound pipeline.Handle
	draw := func(items []drawItem) {
		for _, item := range items {
			if item.pipeline != bound {
				r.backend.BindPipeline(item.pipeline)
				bound = item.pipeline
				ps.PipelineBinds++
			}
			if pass.ObjectLayout != 0 {
				r.backend.PushObjectData(encodeObjectData(item, pass.ObjectLayout))
			}
			r.backend.Draw(item.object.Mesh, item.object.IndexCount)
			ps.Draws++
		}
	}
	draw(opaque)
	draw(transparent)

	r.backend.EndPass()
	return nil
}

// passTarget collects a pass's render targets and clear policy from its
// accesses and transitions.
func (r *renderer) passTarget(pass graph.ResolvedPass, transitions []graph.Transition, surface ImageHandle) PassTarget {
	target := PassTarget{
		Pass:       pass.Name,
		DepthWrite: pass.DepthWrite,
		Extent:     r.graph.DrawExtent(r.backend.SurfaceExtent()),
	}

	var colorName, depthName string
	for _, acc := range pass.Accesses {
		desc, ok := r.graph.Attachment(acc.Attachment)
		if !ok {
			continue
		}
		switch desc.Kind {
		case graph.AttachmentKindColor:
			if acc.Access.Writes() && colorName == "" {
				colorName = acc.Attachment
			}
		case graph.AttachmentKindDepth:
			if depthName == "" {
				depthName = acc.Attachment
			}
		}
	}

	if colorName != "" {
		target.Color = r.imageFor(colorName, surface)
	}
	if depthName != "" {
		target.Depth = r.imageFor(depthName, surface)
	}
	for _, tr := range transitions {
		if !tr.Clear {
			continue
		}
		switch tr.Attachment {
		case colorName:
			target.ClearColor = true
		case depthName:
			target.ClearDepth = true
		}
	}
	return target
}

// imageFor maps an attachment name to its backend image. External
// attachments resolve to the frame's acquired surface image.
func (r *renderer) imageFor(name string, surface ImageHandle) ImageHandle {
	if desc, ok := r.graph.Attachment(name); ok && desc.External {
		return surface
	}
	return r.images[name]
}

// createAttachments allocates images for every non-external attachment.
// Attachments without an explicit extent derive theirs from the surface.
func (r *renderer) createAttachments() error {
	drawExtent := r.graph.DrawExtent(r.backend.SurfaceExtent())
	for _, desc := range r.graph.Attachments() {
		if desc.External {
			continue
		}
		extent := desc.Extent
		if extent.IsZero() {
			extent = drawExtent
		}
		handle, err := r.backend.CreateImage(desc, extent)
		if err != nil {
			return fmt.Errorf("failed to create image for attachment %q: %w", desc.Name, err)
		}
		r.images[desc.Name] = handle
	}
	return nil
}

// rebuild reconfigures the surface and recreates attachment images at a new
// extent. Cached pipelines stay valid since formats are unchanged; the
// transition tables restart from the initial frame because fresh images
// carry no previous contents.
func (r *renderer) rebuild(extent common.Extent2D) error {
	r.drainLocked()
	r.backend.Wait()

	if err := r.backend.Configure(extent); err != nil {
		return err
	}
	for name, handle := range r.images {
		r.backend.DestroyImage(handle)
		delete(r.images, name)
	}
	if err := r.createAttachments(); err != nil {
		return err
	}
	r.steady = false

	common.Logger().Info("attachments rebuilt", "width", extent.Width, "height", extent.Height)
	return nil
}

// drainLocked waits out every in-flight slot. Callers hold r.mu.
func (r *renderer) drainLocked() {
	for _, ctx := range r.ring {
		if ctx.inFlight {
			r.backend.WaitFrame(ctx.slot)
			ctx.inFlight = false
		}
	}
}
