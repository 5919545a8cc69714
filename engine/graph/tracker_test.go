package graph

import (
	"errors"
	"testing"
)

func trackerAttachments() map[string]AttachmentDescriptor {
	return map[string]AttachmentDescriptor{
		"draw":    {Name: "draw", Kind: AttachmentKindColor},
		"depth":   {Name: "depth", Kind: AttachmentKindDepth},
		"surface": {Name: "surface", Kind: AttachmentKindColor, External: true},
		"scratch": {Name: "scratch", Kind: AttachmentKindColor, Transient: true},
	}
}

func TestTrackFirstOccurrenceHasNoPrev(t *testing.T) {
	passes := []PassDescriptor{
		{Name: "depth", Type: PassTypeMaterial, Accesses: []AccessDeclaration{
			{Attachment: "depth", Access: AccessModeWrite, Clear: true},
		}},
		{Name: "forward", Type: PassTypeMaterial, Accesses: []AccessDeclaration{
			{Attachment: "draw", Access: AccessModeWrite},
			{Attachment: "depth", Access: AccessModeRead},
		}},
		{Name: "present", Type: PassTypePresent, Target: "draw"},
	}

	first, _, err := NewAttachmentTracker(trackerAttachments()).Track(passes)
	if err != nil {
		t.Fatalf("Track failed: %v", err)
	}

	if len(first) != len(passes) {
		t.Fatalf("got %d pass entries, want %d", len(first), len(passes))
	}
	for i, want := range []int{1, 2, 1} {
		if len(first[i]) != want {
			t.Errorf("pass %d: got %d transitions, want %d", i, len(first[i]), want)
		}
	}

	// First occurrences carry no previous access.
	if first[0][0].HasPrev {
		t.Error("depth pass: first use of depth attachment should have no previous access")
	}
	if first[1][0].HasPrev {
		t.Error("forward pass: first use of draw attachment should have no previous access")
	}

	// forward reads depth after the depth pass wrote it: read-after-write barrier.
	depthRead := first[1][1]
	if !depthRead.HasPrev || depthRead.Prev != AccessModeWrite {
		t.Errorf("forward depth read: prev = (%v, HasPrev=%t), want write", depthRead.Prev, depthRead.HasPrev)
	}
	if !depthRead.Barrier {
		t.Error("forward depth read: expected a barrier after the depth write")
	}

	// present reads draw after forward wrote it.
	presentRead := first[2][0]
	if presentRead.Attachment != "draw" || !presentRead.Barrier {
		t.Errorf("present transition = %+v, want barriered read of draw", presentRead)
	}
}

func TestTrackConsecutiveReadsNeedNoBarrier(t *testing.T) {
	passes := []PassDescriptor{
		{Name: "fill", Type: PassTypeMaterial, Accesses: []AccessDeclaration{
			{Attachment: "depth", Access: AccessModeWrite},
		}},
		{Name: "a", Type: PassTypeMaterial, Accesses: []AccessDeclaration{
			{Attachment: "depth", Access: AccessModeRead},
		}},
		{Name: "b", Type: PassTypeMaterial, Accesses: []AccessDeclaration{
			{Attachment: "depth", Access: AccessModeRead},
		}},
	}

	first, _, err := NewAttachmentTracker(trackerAttachments()).Track(passes)
	if err != nil {
		t.Fatalf("Track failed: %v", err)
	}
	if !first[1][0].Barrier {
		t.Error("read after write should require a barrier")
	}
	if first[2][0].Barrier {
		t.Error("read after read should not require a barrier")
	}
}

func TestTrackClearAfterUse(t *testing.T) {
	passes := []PassDescriptor{
		{Name: "first", Type: PassTypeMaterial, Accesses: []AccessDeclaration{
			{Attachment: "draw", Access: AccessModeWrite},
		}},
		{Name: "second", Type: PassTypeMaterial, Accesses: []AccessDeclaration{
			{Attachment: "draw", Access: AccessModeWrite, Clear: true},
		}},
	}

	_, _, err := NewAttachmentTracker(trackerAttachments()).Track(passes)
	if !errors.Is(err, ErrClearAfterUse) {
		t.Fatalf("got %v, want ErrClearAfterUse", err)
	}
}

func TestTrackSteadyStateCarriesFinalAccess(t *testing.T) {
	passes := []PassDescriptor{
		{Name: "depth", Type: PassTypeMaterial, Accesses: []AccessDeclaration{
			{Attachment: "depth", Access: AccessModeWrite, Clear: true},
		}},
		{Name: "forward", Type: PassTypeMaterial, Accesses: []AccessDeclaration{
			{Attachment: "depth", Access: AccessModeRead},
			{Attachment: "surface", Access: AccessModeWrite},
			{Attachment: "scratch", Access: AccessModeWrite},
		}},
	}

	first, steady, err := NewAttachmentTracker(trackerAttachments()).Track(passes)
	if err != nil {
		t.Fatalf("Track failed: %v", err)
	}

	// Persistent depth: frame-final access (read) carries into the next
	// frame's first use, and the write there still needs a barrier.
	if first[0][0].HasPrev {
		t.Error("initial frame: first depth use should have no previous access")
	}
	carried := steady[0][0]
	if !carried.HasPrev || carried.Prev != AccessModeRead {
		t.Errorf("steady depth use: prev = (%v, HasPrev=%t), want carried read", carried.Prev, carried.HasPrev)
	}
	if !carried.Barrier {
		t.Error("steady depth use: write after carried read should require a barrier")
	}

	// External and transient attachments never carry state across frames.
	if steady[1][1].HasPrev {
		t.Error("external attachment should not carry previous-frame access")
	}
	if steady[1][2].HasPrev {
		t.Error("transient attachment should not carry previous-frame access")
	}
}
