package graph

import (
	"bytes"
	"fmt"

	"github.com/Carmen-Shannon/framegraph-go/common"
	"github.com/cogentcore/webgpu/wgpu"
)

const (
	// defaultFrameWidth and defaultFrameHeight are the default floor for
	// surface-derived draw extents.
	defaultFrameWidth  = 1920
	defaultFrameHeight = 1080
)

// ResolvedPass is one scheduled pass with its precomputed transition tables
// and target formats.
type ResolvedPass struct {
	PassDescriptor

	// Transitions are the attachment-state changes to apply before this pass
	// on the first frame after a graph (re)build.
	Transitions []Transition

	// SteadyTransitions are the transitions for every subsequent frame. They
	// differ from Transitions only where a persistent attachment's first use
	// carries the previous frame's final access.
	SteadyTransitions []Transition

	// ColorFormat is the format of the first color attachment this pass
	// writes, or TextureFormatUndefined when it writes none.
	ColorFormat wgpu.TextureFormat

	// DepthFormat is the format of the depth attachment this pass uses, or
	// TextureFormatUndefined when it uses none.
	DepthFormat wgpu.TextureFormat

	// DepthWrite reports whether this pass declares write access on its depth
	// attachment.
	DepthWrite bool
}

// renderGraph is the implementation of the RenderGraph interface.
type renderGraph struct {
	passes      []ResolvedPass
	attachments map[string]AttachmentDescriptor
	scale       float32
	minExtent   common.Extent2D
}

// RenderGraph is a validated, ordered execution plan. It is immutable during
// frame execution and rebuilt on configuration reload or surface resize.
type RenderGraph interface {
	// Passes returns the scheduled passes in execution order. The returned
	// slice must not be modified.
	//
	// Returns:
	//   - []ResolvedPass: the ordered resolved passes
	Passes() []ResolvedPass

	// Attachment retrieves a declared attachment by name.
	//
	// Parameters:
	//   - name: the attachment name
	//
	// Returns:
	//   - AttachmentDescriptor: the attachment descriptor
	//   - bool: true if the attachment exists
	Attachment(name string) (AttachmentDescriptor, bool)

	// Attachments returns all declared attachments. Order is unspecified.
	//
	// Returns:
	//   - []AttachmentDescriptor: the declared attachments
	Attachments() []AttachmentDescriptor

	// Scale returns the render-scaling factor applied to surface-derived
	// draw extents. Always positive.
	//
	// Returns:
	//   - float32: the render scale
	Scale() float32

	// DrawExtent derives the extent offscreen targets are created at for a
	// given output surface size: the surface extent scaled by the render
	// scale, clamped up to the configured minimum.
	//
	// Parameters:
	//   - surface: the current output surface extent
	//
	// Returns:
	//   - common.Extent2D: the derived draw extent
	DrawExtent(surface common.Extent2D) common.Extent2D

	// TransitionTable serializes both per-pass transition tables into a
	// deterministic byte form. Resolving the same descriptor twice yields
	// byte-identical tables, which makes the serialization usable as a cheap
	// graph-identity check across reloads.
	//
	// Returns:
	//   - []byte: the serialized transition tables
	TransitionTable() []byte
}

var _ RenderGraph = &renderGraph{}

func (g *renderGraph) Passes() []ResolvedPass {
	return g.passes
}

func (g *renderGraph) Attachment(name string) (AttachmentDescriptor, bool) {
	desc, ok := g.attachments[name]
	return desc, ok
}

func (g *renderGraph) Attachments() []AttachmentDescriptor {
	out := make([]AttachmentDescriptor, 0, len(g.attachments))
	for _, desc := range g.attachments {
		out = append(out, desc)
	}
	return out
}

func (g *renderGraph) Scale() float32 {
	return g.scale
}

func (g *renderGraph) DrawExtent(surface common.Extent2D) common.Extent2D {
	return surface.Scale(g.scale).Max(g.minExtent)
}

func (g *renderGraph) TransitionTable() []byte {
	var buf bytes.Buffer
	for _, pass := range g.passes {
		fmt.Fprintf(&buf, "pass %s\n", pass.Name)
		writeTransitions(&buf, "first", pass.Transitions)
		writeTransitions(&buf, "steady", pass.SteadyTransitions)
	}
	return buf.Bytes()
}

// writeTransitions appends one table section. Transition order follows the
// pass's declared access order, so the output is deterministic.
func writeTransitions(buf *bytes.Buffer, label string, transitions []Transition) {
	for _, tr := range transitions {
		prev := "none"
		if tr.HasPrev {
			prev = tr.Prev.String()
		}
		fmt.Fprintf(buf, "  %s %s %s->%s barrier=%t clear=%t\n", label, tr.Attachment, prev, tr.Next.String(), tr.Barrier, tr.Clear)
	}
}
