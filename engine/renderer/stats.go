package renderer

// PassStats counts the work one pass recorded in a frame.
type PassStats struct {
	// Name is the pass name.
	Name string

	// Draws is the number of draw calls issued.
	Draws int

	// PipelineBinds is the number of pipeline binds issued. With objects
	// sorted by resolved pipeline this stays well below Draws.
	PipelineBinds int

	// Barriers is the number of attachment barriers recorded before the pass.
	Barriers int
}

// FrameStats is the per-pass work recorded for one frame. Counters reset
// every frame.
type FrameStats struct {
	// FrameNumber is the frame the stats describe.
	FrameNumber uint64

	// Passes holds one entry per executed pass, in schedule order.
	Passes []PassStats
}

// Draws returns the total draw calls across all passes.
func (s FrameStats) Draws() int {
	total := 0
	for _, p := range s.Passes {
		total += p.Draws
	}
	return total
}

// PipelineBinds returns the total pipeline binds across all passes.
func (s FrameStats) PipelineBinds() int {
	total := 0
	for _, p := range s.Passes {
		total += p.PipelineBinds
	}
	return total
}

// Barriers returns the total attachment barriers across all passes.
func (s FrameStats) Barriers() int {
	total := 0
	for _, p := range s.Passes {
		total += p.Barriers
	}
	return total
}
