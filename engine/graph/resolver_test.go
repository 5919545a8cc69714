package graph

import (
	"bytes"
	"errors"
	"testing"

	"github.com/Carmen-Shannon/framegraph-go/common"
	"github.com/cogentcore/webgpu/wgpu"
)

// forwardDescriptor is the depth/forward/present shape most resolver tests
// start from.
func forwardDescriptor() Descriptor {
	return Descriptor{
		Schedule: []string{"depth", "forward", "present"},
		Passes: []PassDescriptor{
			{
				Name: "depth",
				Type: PassTypeMaterial,
				Tag:  "depth",
				Accesses: []AccessDeclaration{
					{Attachment: "depth", Access: AccessModeWrite, Clear: true},
				},
				RenderOpaque: true,
				ObjectLayout: common.ObjectLayoutWorldMatrix,
				SceneLayout:  common.SceneLayoutCameraViewProj,
			},
			{
				Name: "forward",
				Type: PassTypeMaterial,
				Tag:  "forward",
				Accesses: []AccessDeclaration{
					{Attachment: "draw", Access: AccessModeWrite, Clear: true},
					{Attachment: "depth", Access: AccessModeRead},
				},
				RenderOpaque:      true,
				RenderTransparent: true,
				ObjectLayout:      common.ObjectLayoutWorldMatrix | common.ObjectLayoutNormalMatrix,
				SceneLayout:       common.SceneLayoutCameraViewProj | common.SceneLayoutLightDirection,
			},
			{
				Name:   "present",
				Type:   PassTypePresent,
				Target: "draw",
			},
		},
		Attachments: []AttachmentDescriptor{
			{Name: "draw", Kind: AttachmentKindColor, Format: wgpu.TextureFormatRGBA16Float, Layout: ImageLayoutColorAttachment},
			{Name: "depth", Kind: AttachmentKindDepth, Format: wgpu.TextureFormatDepth32Float, Layout: ImageLayoutDepthAttachment},
		},
	}
}

func TestResolveForwardSchedule(t *testing.T) {
	g, err := NewGraphResolver().Resolve(forwardDescriptor())
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	passes := g.Passes()
	if len(passes) != 3 {
		t.Fatalf("got %d passes, want 3", len(passes))
	}
	for i, name := range []string{"depth", "forward", "present"} {
		if passes[i].Name != name {
			t.Errorf("pass %d = %q, want %q", i, passes[i].Name, name)
		}
	}

	// forward's depth read records the depth pass's write as previous access.
	var depthRead *Transition
	for i := range passes[1].Transitions {
		if passes[1].Transitions[i].Attachment == "depth" {
			depthRead = &passes[1].Transitions[i]
		}
	}
	if depthRead == nil {
		t.Fatal("forward pass has no transition for the depth attachment")
	}
	if !depthRead.HasPrev || depthRead.Prev != AccessModeWrite || !depthRead.Barrier {
		t.Errorf("forward depth transition = %+v, want barriered read after write", *depthRead)
	}

	// Target formats derived from written attachments.
	if passes[1].ColorFormat != wgpu.TextureFormatRGBA16Float {
		t.Errorf("forward color format = %v, want RGBA16Float", passes[1].ColorFormat)
	}
	if passes[1].DepthFormat != wgpu.TextureFormatDepth32Float {
		t.Errorf("forward depth format = %v, want Depth32Float", passes[1].DepthFormat)
	}
	if passes[0].ColorFormat != wgpu.TextureFormatUndefined {
		t.Errorf("depth-only pass color format = %v, want undefined", passes[0].ColorFormat)
	}
}

func TestResolveErrors(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Descriptor)
		wantErr error
	}{
		{
			name:    "unknown pass in schedule",
			mutate:  func(d *Descriptor) { d.Schedule = append(d.Schedule, "bloom") },
			wantErr: ErrUnknownPass,
		},
		{
			name: "orphan pass",
			mutate: func(d *Descriptor) {
				d.Passes = append(d.Passes, PassDescriptor{Name: "bloom", Type: PassTypeMaterial})
			},
			wantErr: ErrOrphanPass,
		},
		{
			name: "duplicate pass name",
			mutate: func(d *Descriptor) {
				d.Passes = append(d.Passes, PassDescriptor{Name: "forward", Type: PassTypeMaterial})
			},
			wantErr: ErrDuplicatePass,
		},
		{
			name:    "pass scheduled twice",
			mutate:  func(d *Descriptor) { d.Schedule = []string{"depth", "depth", "forward", "present"} },
			wantErr: ErrDuplicatePass,
		},
		{
			name: "duplicate attachment name",
			mutate: func(d *Descriptor) {
				d.Attachments = append(d.Attachments, AttachmentDescriptor{Name: "draw", Kind: AttachmentKindColor})
			},
			wantErr: ErrDuplicateAttachment,
		},
		{
			name: "unknown attachment reference",
			mutate: func(d *Descriptor) {
				d.Passes[1].Accesses = append(d.Passes[1].Accesses, AccessDeclaration{Attachment: "velocity", Access: AccessModeWrite})
			},
			wantErr: ErrUnknownAttachment,
		},
		{
			name:    "unknown present target",
			mutate:  func(d *Descriptor) { d.Passes[2].Target = "velocity" },
			wantErr: ErrUnknownAttachment,
		},
		{
			name: "present pass with extra accesses",
			mutate: func(d *Descriptor) {
				d.Passes[2].Accesses = []AccessDeclaration{{Attachment: "depth", Access: AccessModeRead}}
			},
			wantErr: ErrPresentAccess,
		},
		{
			name:    "present pass without target",
			mutate:  func(d *Descriptor) { d.Passes[2].Target = "" },
			wantErr: ErrPresentAccess,
		},
		{
			name:    "material pass with target",
			mutate:  func(d *Descriptor) { d.Passes[1].Target = "draw" },
			wantErr: ErrPresentAccess,
		},
		{
			name: "read before any writer",
			mutate: func(d *Descriptor) {
				d.Passes[0].Accesses = append(d.Passes[0].Accesses, AccessDeclaration{Attachment: "draw", Access: AccessModeRead})
			},
			wantErr: ErrNoProducer,
		},
		{
			name: "clear after first use",
			mutate: func(d *Descriptor) {
				d.Passes[1].Accesses[1].Clear = true
			},
			wantErr: ErrClearAfterUse,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			desc := forwardDescriptor()
			tt.mutate(&desc)
			_, err := NewGraphResolver().Resolve(desc)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("got %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestResolveWriteAfterPresent(t *testing.T) {
	// Present targets depth while a later pass still writes it.
	desc := forwardDescriptor()
	desc.Schedule = []string{"depth", "present", "forward"}
	desc.Passes[2].Target = "depth"
	desc.Passes[1].Accesses[1].Access = AccessModeReadWrite

	_, err := NewGraphResolver().Resolve(desc)
	if !errors.Is(err, ErrWriteAfterPresent) {
		t.Fatalf("got %v, want ErrWriteAfterPresent", err)
	}
}

func TestResolveExternalAttachmentNeedsNoProducer(t *testing.T) {
	desc := forwardDescriptor()
	desc.Attachments = append(desc.Attachments, AttachmentDescriptor{
		Name: "surface", Kind: AttachmentKindColor, External: true,
	})
	desc.Passes[1].Accesses = append(desc.Passes[1].Accesses, AccessDeclaration{
		Attachment: "surface", Access: AccessModeRead,
	})

	if _, err := NewGraphResolver().Resolve(desc); err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
}

func TestResolveReadWriteFirstAccessProduces(t *testing.T) {
	// A read-write first access writes the attachment itself, so it is not a
	// producer-rule violation.
	desc := forwardDescriptor()
	desc.Passes[0].Accesses = []AccessDeclaration{
		{Attachment: "depth", Access: AccessModeReadWrite, Clear: true},
	}

	if _, err := NewGraphResolver().Resolve(desc); err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
}

func TestTransitionTableStable(t *testing.T) {
	r := NewGraphResolver()
	a, err := r.Resolve(forwardDescriptor())
	if err != nil {
		t.Fatalf("first Resolve failed: %v", err)
	}
	b, err := r.Resolve(forwardDescriptor())
	if err != nil {
		t.Fatalf("second Resolve failed: %v", err)
	}

	if !bytes.Equal(a.TransitionTable(), b.TransitionTable()) {
		t.Error("resolving the same descriptor twice produced different transition tables")
	}
	if len(a.TransitionTable()) == 0 {
		t.Error("transition table is empty")
	}
}

func TestDrawExtent(t *testing.T) {
	tests := []struct {
		name    string
		scale   float32
		min     common.Extent2D
		surface common.Extent2D
		want    common.Extent2D
	}{
		{
			name:    "unscaled surface below floor",
			scale:   0,
			min:     common.Extent2D{Width: 1920, Height: 1080},
			surface: common.Extent2D{Width: 1280, Height: 720},
			want:    common.Extent2D{Width: 1920, Height: 1080},
		},
		{
			name:    "surface above floor",
			scale:   1,
			min:     common.Extent2D{Width: 1920, Height: 1080},
			surface: common.Extent2D{Width: 2560, Height: 1440},
			want:    common.Extent2D{Width: 2560, Height: 1440},
		},
		{
			name:    "downscaled then clamped",
			scale:   0.5,
			min:     common.Extent2D{Width: 1920, Height: 1080},
			surface: common.Extent2D{Width: 2560, Height: 1440},
			want:    common.Extent2D{Width: 1920, Height: 1080},
		},
		{
			name:    "upscaled without floor",
			scale:   2,
			min:     common.Extent2D{},
			surface: common.Extent2D{Width: 800, Height: 600},
			want:    common.Extent2D{Width: 1600, Height: 1200},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			desc := forwardDescriptor()
			desc.Scale = tt.scale
			g, err := NewGraphResolver(WithMinimumExtent(tt.min)).Resolve(desc)
			if err != nil {
				t.Fatalf("Resolve failed: %v", err)
			}
			if got := g.DrawExtent(tt.surface); got != tt.want {
				t.Errorf("DrawExtent(%v) = %v, want %v", tt.surface, got, tt.want)
			}
		})
	}
}
