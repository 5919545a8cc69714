// package profiler aggregates per-frame renderer counters and process memory
// statistics, reporting them through the shared logger at a fixed interval.
package profiler

import (
	"runtime"
	"time"

	"github.com/Carmen-Shannon/framegraph-go/common"
	"github.com/Carmen-Shannon/framegraph-go/engine/renderer"
)

// Profiler tracks frame rate, renderer workload and memory statistics.
type Profiler struct {
	frameCount     int
	draws          int
	pipelineBinds  int
	barriers       int
	lastTime       time.Time
	updateInterval time.Duration
	memStats       runtime.MemStats
	lastTotalAlloc uint64
}

// NewProfiler creates a new Profiler with a one second reporting interval.
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler() *Profiler {
	return &Profiler{
		lastTime:       time.Now(),
		updateInterval: time.Second,
	}
}

// Tick should be called once per frame with that frame's renderer counters.
// When the reporting interval has elapsed it logs the aggregated statistics
// and resets the window.
//
// Parameters:
//   - stats: the counters of the frame just rendered
//
// Returns:
//   - bool: true if stats were logged this tick, false otherwise
func (p *Profiler) Tick(stats renderer.FrameStats) bool {
	p.frameCount++
	p.draws += stats.Draws()
	p.pipelineBinds += stats.PipelineBinds()
	p.barriers += stats.Barriers()

	currentTime := time.Now()
	elapsed := currentTime.Sub(p.lastTime)
	if elapsed < p.updateInterval {
		return false
	}

	fps := float64(p.frameCount) / elapsed.Seconds()

	runtime.ReadMemStats(&p.memStats)
	allocMB := float64(p.memStats.Alloc) / 1024 / 1024
	allocDelta := p.memStats.TotalAlloc - p.lastTotalAlloc
	allocRateMB := float64(allocDelta) / 1024 / 1024 / elapsed.Seconds()

	common.Logger().Info("frame profile",
		"fps", fps,
		"draws_per_frame", p.draws/p.frameCount,
		"pipeline_binds_per_frame", p.pipelineBinds/p.frameCount,
		"barriers_per_frame", p.barriers/p.frameCount,
		"heap_mb", allocMB,
		"alloc_rate_mb_s", allocRateMB,
		"gc_count", p.memStats.NumGC,
	)

	p.frameCount = 0
	p.draws = 0
	p.pipelineBinds = 0
	p.barriers = 0
	p.lastTime = currentTime
	p.lastTotalAlloc = p.memStats.TotalAlloc
	return true
}
