package graph

import "fmt"

// Transition is one attachment-state change to apply immediately before a
// pass executes. One Transition record exists per (pass, attachment-access)
// occurrence in the schedule.
type Transition struct {
	// Attachment is the name of the attachment changing state.
	Attachment string

	// Prev is the previous access on this attachment. Only meaningful when
	// HasPrev is true.
	Prev AccessMode

	// HasPrev reports whether the attachment was accessed earlier. The first
	// occurrence of an attachment in a frame has no previous access.
	HasPrev bool

	// Next is the access the upcoming pass declares.
	Next AccessMode

	// Barrier reports whether the backend must serialize the previous access
	// against this one. Two consecutive reads never need a barrier; any pair
	// involving a write does.
	Barrier bool

	// Clear requests clearing the attachment as part of this transition.
	Clear bool
}

// attachmentTracker is the implementation of the AttachmentTracker interface.
// It holds the declared attachment set the walk validates references against.
type attachmentTracker struct {
	attachments map[string]AttachmentDescriptor
}

// AttachmentTracker computes, for an ordered pass list, the attachment-state
// transitions each pass must apply before executing.
type AttachmentTracker interface {
	// Track walks the ordered pass list once and produces two transition
	// tables, both indexed by pass position. The first table describes the
	// initial frame, where the first occurrence of every attachment has no
	// previous access. The steady table describes every subsequent frame: for
	// persistent attachments the first occurrence carries the final access of
	// the previous frame as its previous access, so cross-frame write
	// visibility is covered by the same barrier rule.
	//
	// Clear is only legal on an attachment's first occurrence in the
	// schedule; a later clear fails with ErrClearAfterUse.
	//
	// Parameters:
	//   - passes: the scheduled passes in execution order
	//
	// Returns:
	//   - [][]Transition: initial-frame transitions per pass
	//   - [][]Transition: steady-state transitions per pass
	//   - error: ErrClearAfterUse wrapped with pass and attachment names
	Track(passes []PassDescriptor) ([][]Transition, [][]Transition, error)
}

var _ AttachmentTracker = &attachmentTracker{}

// NewAttachmentTracker is the entry point to create a new AttachmentTracker
// over a declared attachment set. References are assumed validated by the
// resolver; the tracker only derives transitions.
//
// Parameters:
//   - attachments: declared attachments keyed by name
//
// Returns:
//   - AttachmentTracker: a tracker ready to walk schedules
func NewAttachmentTracker(attachments map[string]AttachmentDescriptor) AttachmentTracker {
	return &attachmentTracker{attachments: attachments}
}

func (t *attachmentTracker) Track(passes []PassDescriptor) ([][]Transition, [][]Transition, error) {
	first := make([][]Transition, len(passes))
	lastAccess := make(map[string]AccessMode, len(t.attachments))

	// firstUse remembers where each attachment's first occurrence landed so
	// the steady table can rewrite it with the frame-final access.
	type usePos struct{ pass, idx int }
	firstUse := make(map[string]usePos, len(t.attachments))

	for i, pass := range passes {
		accesses := pass.Accesses
		if pass.Type == PassTypePresent {
			// Presenting reads the target (the backend copies it to the
			// surface image), so it participates in tracking as a read.
			accesses = []AccessDeclaration{{Attachment: pass.Target, Access: AccessModeRead}}
		}

		transitions := make([]Transition, 0, len(accesses))
		for _, acc := range accesses {
			prev, seen := lastAccess[acc.Attachment]
			if acc.Clear && seen {
				return nil, nil, fmt.Errorf("pass %q, attachment %q: %w", pass.Name, acc.Attachment, ErrClearAfterUse)
			}
			if !seen {
				firstUse[acc.Attachment] = usePos{pass: i, idx: len(transitions)}
			}
			transitions = append(transitions, Transition{
				Attachment: acc.Attachment,
				Prev:       prev,
				HasPrev:    seen,
				Next:       acc.Access,
				Barrier:    seen && (prev.Writes() || acc.Access.Writes()),
				Clear:      acc.Clear,
			})
			lastAccess[acc.Attachment] = acc.Access
		}
		first[i] = transitions
	}

	// Steady state: persistent attachments keep their contents across frames,
	// so their first access in frame i+1 must observe frame i's last access.
	// External attachments are re-acquired each frame and transients are
	// recycled, neither carries state over.
	steady := make([][]Transition, len(passes))
	for i := range first {
		steady[i] = append([]Transition(nil), first[i]...)
	}
	for name, pos := range firstUse {
		desc := t.attachments[name]
		if desc.External || desc.Transient {
			continue
		}
		tr := &steady[pos.pass][pos.idx]
		tr.Prev = lastAccess[name]
		tr.HasPrev = true
		tr.Barrier = tr.Prev.Writes() || tr.Next.Writes()
	}

	return first, steady, nil
}
