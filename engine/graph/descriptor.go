// package graph holds the declarative render-graph model and its resolution
// logic. A Descriptor (schedule, passes, attachments) is validated and turned
// into an immutable RenderGraph whose per-pass transition tables drive barrier
// placement during frame execution.
package graph

import (
	"github.com/Carmen-Shannon/framegraph-go/common"
	"github.com/cogentcore/webgpu/wgpu"
)

// AttachmentKind identifies what a named image attachment holds.
type AttachmentKind int

const (
	// AttachmentKindColor is a color render target.
	AttachmentKindColor AttachmentKind = iota

	// AttachmentKindDepth is a depth render target.
	AttachmentKindDepth
)

// String returns the attachment kind name used in configuration files.
func (k AttachmentKind) String() string {
	switch k {
	case AttachmentKindDepth:
		return "depth"
	default:
		return "color"
	}
}

// AccessMode describes how a pass touches an attachment.
type AccessMode int

const (
	// AccessModeRead is a read-only access (sampling or depth testing without write).
	AccessModeRead AccessMode = iota

	// AccessModeWrite is a write-only access (rendering into the attachment).
	AccessModeWrite

	// AccessModeReadWrite reads and writes the attachment within the same pass.
	AccessModeReadWrite
)

// Reads reports whether the access observes the attachment's contents.
func (a AccessMode) Reads() bool {
	return a == AccessModeRead || a == AccessModeReadWrite
}

// Writes reports whether the access modifies the attachment's contents.
func (a AccessMode) Writes() bool {
	return a == AccessModeWrite || a == AccessModeReadWrite
}

// String returns the access mode name used in configuration files.
func (a AccessMode) String() string {
	switch a {
	case AccessModeWrite:
		return "write"
	case AccessModeReadWrite:
		return "readwrite"
	default:
		return "read"
	}
}

// PassType distinguishes the two kinds of scheduled work.
type PassType int

const (
	// PassTypeMaterial is a drawing pass that submits per-object work through
	// material-resolved pipelines.
	PassTypeMaterial PassType = iota

	// PassTypePresent hands one attachment to the backend's present operation.
	// A present pass is always the last consumer of its target.
	PassTypePresent
)

// String returns the pass type name used in configuration files.
func (t PassType) String() string {
	switch t {
	case PassTypePresent:
		return "present"
	default:
		return "material"
	}
}

// ImageLayout is the backend-facing layout an attachment is created in.
type ImageLayout int

const (
	// ImageLayoutUndefined leaves the initial layout unspecified.
	ImageLayoutUndefined ImageLayout = iota

	// ImageLayoutColorAttachment is optimal for color rendering.
	ImageLayoutColorAttachment

	// ImageLayoutDepthAttachment is optimal for depth testing and writes.
	ImageLayoutDepthAttachment

	// ImageLayoutShaderReadOnly is optimal for sampling in a shader.
	ImageLayoutShaderReadOnly

	// ImageLayoutTransferSrc is optimal as a copy source (present-as-blit).
	ImageLayoutTransferSrc

	// ImageLayoutTransferDst is optimal as a copy destination.
	ImageLayoutTransferDst

	// ImageLayoutPresent is the layout required by the surface for presentation.
	ImageLayoutPresent
)

// String returns the layout name used in configuration files.
func (l ImageLayout) String() string {
	switch l {
	case ImageLayoutColorAttachment:
		return "color"
	case ImageLayoutDepthAttachment:
		return "depth"
	case ImageLayoutShaderReadOnly:
		return "shader-read"
	case ImageLayoutTransferSrc:
		return "transfer-src"
	case ImageLayoutTransferDst:
		return "transfer-dst"
	case ImageLayoutPresent:
		return "present"
	default:
		return "undefined"
	}
}

// AttachmentDescriptor declares a named image resource shared between passes.
type AttachmentDescriptor struct {
	// Name is the unique key other declarations reference this attachment by.
	Name string

	// Kind selects color or depth usage.
	Kind AttachmentKind

	// Format is the pixel format the attachment is created with.
	Format wgpu.TextureFormat

	// Layout is the layout the attachment is created in.
	Layout ImageLayout

	// Extent is the explicit size in pixels. A zero extent means "derive from
	// the output surface" at graph build time.
	Extent common.Extent2D

	// External marks an attachment supplied by the backend (e.g. the acquired
	// surface image). External attachments are exempt from the producer rule
	// and are re-acquired every frame.
	External bool

	// Transient marks an attachment scoped to a single frame. Transient
	// attachments do not carry their final access into the next frame's
	// transition table.
	Transient bool
}

// AccessDeclaration binds one attachment access to a pass.
type AccessDeclaration struct {
	// Attachment is the name of the accessed attachment.
	Attachment string

	// Access is how the pass touches the attachment.
	Access AccessMode

	// Clear requests a clear on first use. Clearing an attachment any later
	// than its first scheduled use is a validation error.
	Clear bool
}

// PassDescriptor declares one unit of scheduled GPU work.
type PassDescriptor struct {
	// Name is the unique key the schedule references this pass by.
	Name string

	// Type selects material drawing or presentation.
	Type PassType

	// Tag is the semantic tag drawable objects must match to be submitted to
	// this pass.
	Tag string

	// Pipeline optionally names a fixed pipeline from the pipelines
	// configuration. When set, objects drawn in this pass use it instead of
	// per-material resolution.
	Pipeline string

	// Accesses is the ordered list of attachment accesses this pass declares.
	// Present passes declare none; their single access is implied by Target.
	Accesses []AccessDeclaration

	// RenderOpaque enables the opaque phase of this pass.
	RenderOpaque bool

	// RenderTransparent enables the transparent phase of this pass.
	RenderTransparent bool

	// ObjectLayout selects the per-object data pushed for every drawn item.
	ObjectLayout common.ObjectLayout

	// SceneLayout selects the scene-level uniforms bound before drawing.
	SceneLayout common.SceneLayout

	// Target is the attachment a present pass hands to the backend. Empty for
	// material passes.
	Target string
}

// Descriptor is the full declarative model a RenderGraph is resolved from.
// Passes and attachments are declared as ordered lists so duplicate names can
// be detected and reported rather than silently collapsed.
type Descriptor struct {
	// Schedule is the author-specified total order of pass names. It is
	// validated for consistency, never inferred or reordered.
	Schedule []string

	// Passes is the set of declared passes.
	Passes []PassDescriptor

	// Attachments is the set of declared attachments.
	Attachments []AttachmentDescriptor

	// Scale is the render-scaling factor applied when deriving the draw extent
	// from the output surface. Zero or negative means 1.0 (no scaling).
	Scale float32
}
