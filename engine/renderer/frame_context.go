package renderer

// FrameContext is the mutable state of one buffered frame slot. Contexts are
// owned exclusively by the renderer and recycled round-robin: frame i records
// into slot i modulo the ring size, after waiting for that slot's previous
// frame to complete.
type FrameContext struct {
	slot        int
	frameNumber uint64
	inFlight    bool
}

// Slot returns the ring index of this context.
func (c *FrameContext) Slot() int {
	return c.slot
}

// FrameNumber returns the number of the last frame recorded into this slot.
func (c *FrameContext) FrameNumber() uint64 {
	return c.frameNumber
}

// InFlight reports whether the slot's last frame is still submitted and
// unconfirmed.
func (c *FrameContext) InFlight() bool {
	return c.inFlight
}

// newFrameRing allocates n frame contexts.
func newFrameRing(n int) []*FrameContext {
	ring := make([]*FrameContext, n)
	for i := range ring {
		ring[i] = &FrameContext{slot: i}
	}
	return ring
}
