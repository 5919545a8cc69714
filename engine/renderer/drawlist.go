package renderer

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/framegraph-go/common"
	"github.com/Carmen-Shannon/framegraph-go/engine/graph"
	"github.com/Carmen-Shannon/framegraph-go/engine/renderer/material"
	"github.com/Carmen-Shannon/framegraph-go/engine/renderer/pipeline"
)

// DrawObject is one drawable item submitted for a frame. Objects carry a
// semantic tag; each pass draws only the objects whose tag matches its own.
type DrawObject struct {
	// Tag is matched against the pass's semantic tag.
	Tag string

	// Transparent routes the object to the transparent phase of a pass.
	// Transparent objects draw after opaque ones, back to front.
	Transparent bool

	// Material names the registered material shading this object. Ignored in
	// passes with a fixed pipeline.
	Material string

	// World is the object's world transform, column-major.
	World [16]float32

	// VertexBufferAddress is the GPU address of the object's vertex buffer,
	// pushed when the pass object layout requests it.
	VertexBufferAddress uint64

	// Depth is the object's view-space depth, used to order the transparent
	// phase back to front.
	Depth float32

	// Mesh is the backend mesh to draw.
	Mesh MeshHandle

	// IndexCount is the number of indices to draw.
	IndexCount uint32
}

// drawItem is a DrawObject prepared for one pass: its pipeline resolved and
// its derived per-object data computed.
type drawItem struct {
	object   DrawObject
	pipeline pipeline.Handle
	normal   [12]float32
}

// drawChunkSize is the number of objects one prep task handles.
const drawChunkSize = 64

// drawListBuilder prepares per-pass draw lists. Filtering, material
// resolution and normal-matrix derivation run on a bounded worker pool;
// workers persist across frames, avoiding per-frame goroutine spawn overhead.
// Registry lookups are safe for concurrent readers, so chunks resolve
// materials in parallel.
type drawListBuilder struct {
	pool      worker.DynamicWorkerPool
	materials material.Registry
}

// newDrawListBuilder creates a builder with the given worker count.
// Queue size of 256 accommodates typical chunk counts with headroom.
func newDrawListBuilder(materials material.Registry, workers int) *drawListBuilder {
	return &drawListBuilder{
		pool:      worker.NewDynamicWorkerPool(workers, 256, 1*time.Second),
		materials: materials,
	}
}

// chunkResult is one task's share of the prepared lists, merged in submit
// order so the outcome is deterministic.
type chunkResult struct {
	opaque      []drawItem
	transparent []drawItem
	err         error
}

// build prepares the opaque and transparent draw lists for one pass. The
// opaque list is sorted by resolved pipeline to minimize pipeline switches;
// the transparent list is sorted back to front since blending is
// order-dependent. Both phases filter the full object list, so callers never
// pre-sort or pre-filter.
func (b *drawListBuilder) build(pass graph.ResolvedPass, fixed pipeline.Handle, hasFixed bool, objects []DrawObject) ([]drawItem, []drawItem, error) {
	chunks := (len(objects) + drawChunkSize - 1) / drawChunkSize
	results := make([]chunkResult, chunks)

	// A WaitGroup provides the per-build barrier since pool.Wait() blocks
	// until workers idle-exit, which is unsuitable for frame-rate workloads.
	var wg sync.WaitGroup
	for i := range chunks {
		start := i * drawChunkSize
		end := min(start+drawChunkSize, len(objects))
		res := &results[i]

		wg.Add(1)
		b.pool.SubmitTask(worker.Task{
			ID: i,
			Do: func() (any, error) {
				defer wg.Done()
				res.opaque, res.transparent, res.err = b.prepareChunk(pass, fixed, hasFixed, objects[start:end])
				return nil, nil
			},
		})
	}
	wg.Wait()

	var opaque, transparent []drawItem
	for i := range results {
		if results[i].err != nil {
			return nil, nil, results[i].err
		}
		opaque = append(opaque, results[i].opaque...)
		transparent = append(transparent, results[i].transparent...)
	}

	sort.SliceStable(opaque, func(i, j int) bool {
		return opaque[i].pipeline < opaque[j].pipeline
	})
	sort.SliceStable(transparent, func(i, j int) bool {
		return transparent[i].object.Depth > transparent[j].object.Depth
	})

	return opaque, transparent, nil
}

// prepareChunk filters and resolves one slice of the object list.
func (b *drawListBuilder) prepareChunk(pass graph.ResolvedPass, fixed pipeline.Handle, hasFixed bool, objects []DrawObject) ([]drawItem, []drawItem, error) {
	var opaque, transparent []drawItem
	for _, obj := range objects {
		if obj.Tag != pass.Tag {
			continue
		}
		if obj.Transparent && !pass.RenderTransparent {
			continue
		}
		if !obj.Transparent && !pass.RenderOpaque {
			continue
		}

		item := drawItem{object: obj, pipeline: fixed}
		if !hasFixed {
			handle, err := b.materials.Resolve(obj.Material, pass)
			if err != nil {
				return nil, nil, fmt.Errorf("pass %q: %w", pass.Name, err)
			}
			item.pipeline = handle
		}
		if pass.ObjectLayout.Has(common.ObjectLayoutNormalMatrix) {
			world := obj.World
			common.NormalMatrix(item.normal[:], world[:])
		}

		if obj.Transparent {
			transparent = append(transparent, item)
		} else {
			opaque = append(opaque, item)
		}
	}
	return opaque, transparent, nil
}
