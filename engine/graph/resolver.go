package graph

import (
	"fmt"

	"github.com/Carmen-Shannon/framegraph-go/common"
	"github.com/cogentcore/webgpu/wgpu"
)

// graphResolver is the implementation of the GraphResolver interface.
type graphResolver struct {
	// minExtent is the floor applied to derived draw extents so offscreen
	// targets never shrink below a usable frame size.
	minExtent common.Extent2D
}

// GraphResolver validates a Descriptor against the scheduling rules and
// produces an executable RenderGraph. Resolution is a load or reload-time
// cost, never per-frame.
type GraphResolver interface {
	// Resolve validates the descriptor and builds the ordered RenderGraph
	// with precomputed per-pass transition tables.
	//
	// The schedule is author-specified; Resolve checks it for consistency but
	// never reorders it. Each validation rule fails with its own sentinel
	// error (see errors.go) wrapped with the offending pass and attachment
	// names.
	//
	// Parameters:
	//   - desc: the full declarative model to resolve
	//
	// Returns:
	//   - RenderGraph: the immutable resolved graph
	//   - error: the first validation failure, nil on success
	Resolve(desc Descriptor) (RenderGraph, error)
}

var _ GraphResolver = &graphResolver{}

// NewGraphResolver is the entry point to create a new GraphResolver.
//
// Parameters:
//   - opts: a variadic list of GraphResolverBuilderOption functions to configure the resolver
//
// Returns:
//   - GraphResolver: a new GraphResolver instance
func NewGraphResolver(opts ...GraphResolverBuilderOption) GraphResolver {
	r := &graphResolver{
		minExtent: common.Extent2D{Width: defaultFrameWidth, Height: defaultFrameHeight},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *graphResolver) Resolve(desc Descriptor) (RenderGraph, error) {
	passes := make(map[string]PassDescriptor, len(desc.Passes))
	for _, p := range desc.Passes {
		if _, ok := passes[p.Name]; ok {
			return nil, fmt.Errorf("pass %q: %w", p.Name, ErrDuplicatePass)
		}
		passes[p.Name] = p
	}

	attachments := make(map[string]AttachmentDescriptor, len(desc.Attachments))
	for _, a := range desc.Attachments {
		if _, ok := attachments[a.Name]; ok {
			return nil, fmt.Errorf("attachment %q: %w", a.Name, ErrDuplicateAttachment)
		}
		attachments[a.Name] = a
	}

	// Schedule consistency: every scheduled name declared exactly once, every
	// declared pass scheduled.
	scheduled := make(map[string]bool, len(desc.Schedule))
	ordered := make([]PassDescriptor, 0, len(desc.Schedule))
	for _, name := range desc.Schedule {
		p, ok := passes[name]
		if !ok {
			return nil, fmt.Errorf("pass %q: %w", name, ErrUnknownPass)
		}
		if scheduled[name] {
			return nil, fmt.Errorf("pass %q scheduled twice: %w", name, ErrDuplicatePass)
		}
		scheduled[name] = true
		ordered = append(ordered, p)
	}
	for _, p := range desc.Passes {
		if !scheduled[p.Name] {
			return nil, fmt.Errorf("pass %q: %w", p.Name, ErrOrphanPass)
		}
	}

	if err := r.validateAccesses(ordered, attachments); err != nil {
		return nil, err
	}
	if err := r.validatePresent(ordered); err != nil {
		return nil, err
	}
	if err := r.validateProducers(ordered, attachments); err != nil {
		return nil, err
	}

	firstTable, steadyTable, err := NewAttachmentTracker(attachments).Track(ordered)
	if err != nil {
		return nil, err
	}

	resolved := make([]ResolvedPass, len(ordered))
	for i, p := range ordered {
		colorFormat, depthFormat, depthWrite := targetFormats(p, attachments)
		resolved[i] = ResolvedPass{
			PassDescriptor:    p,
			Transitions:       firstTable[i],
			SteadyTransitions: steadyTable[i],
			ColorFormat:       colorFormat,
			DepthFormat:       depthFormat,
			DepthWrite:        depthWrite,
		}
	}

	scale := desc.Scale
	if scale <= 0 {
		scale = 1.0
	}

	common.Logger().Info("render graph resolved",
		"passes", len(resolved),
		"attachments", len(attachments),
		"scale", scale,
	)

	return &renderGraph{
		passes:      resolved,
		attachments: attachments,
		scale:       scale,
		minExtent:   r.minExtent,
	}, nil
}

// validateAccesses checks that every attachment reference resolves, including
// present targets.
func (r *graphResolver) validateAccesses(ordered []PassDescriptor, attachments map[string]AttachmentDescriptor) error {
	for _, p := range ordered {
		for _, acc := range p.Accesses {
			if _, ok := attachments[acc.Attachment]; !ok {
				return fmt.Errorf("pass %q, attachment %q: %w", p.Name, acc.Attachment, ErrUnknownAttachment)
			}
		}
		if p.Target != "" {
			if _, ok := attachments[p.Target]; !ok {
				return fmt.Errorf("pass %q, attachment %q: %w", p.Name, p.Target, ErrUnknownAttachment)
			}
		}
	}
	return nil
}

// validatePresent enforces the present pass shape and the terminal-consumer
// rule: no pass after a present may write the presented attachment.
func (r *graphResolver) validatePresent(ordered []PassDescriptor) error {
	for i, p := range ordered {
		switch p.Type {
		case PassTypePresent:
			if p.Target == "" {
				return fmt.Errorf("pass %q declares no target: %w", p.Name, ErrPresentAccess)
			}
			if len(p.Accesses) != 0 {
				return fmt.Errorf("pass %q declares %d accesses beside its target: %w", p.Name, len(p.Accesses), ErrPresentAccess)
			}
			for _, later := range ordered[i+1:] {
				for _, acc := range later.Accesses {
					if acc.Attachment == p.Target && acc.Access.Writes() {
						return fmt.Errorf("pass %q writes attachment %q presented by pass %q: %w", later.Name, p.Target, p.Name, ErrWriteAfterPresent)
					}
				}
			}
		default:
			if p.Target != "" {
				return fmt.Errorf("pass %q is not a present pass but declares target %q: %w", p.Name, p.Target, ErrPresentAccess)
			}
		}
	}
	return nil
}

// validateProducers rejects reads of attachments no earlier pass has written.
// A read-write first access counts as producing since the pass writes the
// attachment itself; external attachments are supplied by the backend and
// exempt.
func (r *graphResolver) validateProducers(ordered []PassDescriptor, attachments map[string]AttachmentDescriptor) error {
	written := make(map[string]bool, len(attachments))
	for _, p := range ordered {
		accesses := p.Accesses
		if p.Type == PassTypePresent {
			accesses = []AccessDeclaration{{Attachment: p.Target, Access: AccessModeRead}}
		}
		for _, acc := range accesses {
			if acc.Access == AccessModeRead && !written[acc.Attachment] && !attachments[acc.Attachment].External {
				return fmt.Errorf("pass %q reads attachment %q: %w", p.Name, acc.Attachment, ErrNoProducer)
			}
			if acc.Access.Writes() {
				written[acc.Attachment] = true
			}
		}
	}
	return nil
}

// targetFormats derives the color and depth target formats a pass renders
// into from its accesses, plus whether the pass writes depth. Undefined
// formats mean the pass has no target of that kind.
func targetFormats(p PassDescriptor, attachments map[string]AttachmentDescriptor) (wgpu.TextureFormat, wgpu.TextureFormat, bool) {
	var colorFormat, depthFormat wgpu.TextureFormat
	var depthWrite bool
	for _, acc := range p.Accesses {
		desc := attachments[acc.Attachment]
		switch desc.Kind {
		case AttachmentKindColor:
			if acc.Access.Writes() && colorFormat == wgpu.TextureFormatUndefined {
				colorFormat = desc.Format
			}
		case AttachmentKindDepth:
			if depthFormat == wgpu.TextureFormatUndefined {
				depthFormat = desc.Format
			}
			if acc.Access.Writes() {
				depthWrite = true
			}
		}
	}
	return colorFormat, depthFormat, depthWrite
}
