// package engine is the host loop tying the pieces together: a window, the
// WebGPU backend, configuration loading and the frame renderer. The
// render-graph core is usable without it; the engine exists so applications
// get a working loop out of the box.
package engine

import (
	"fmt"
	"sync"
	"time"

	"github.com/Carmen-Shannon/framegraph-go/common"
	"github.com/Carmen-Shannon/framegraph-go/engine/config"
	"github.com/Carmen-Shannon/framegraph-go/engine/graph"
	"github.com/Carmen-Shannon/framegraph-go/engine/profiler"
	"github.com/Carmen-Shannon/framegraph-go/engine/renderer"
	"github.com/Carmen-Shannon/framegraph-go/engine/renderer/material"
	"github.com/Carmen-Shannon/framegraph-go/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/framegraph-go/engine/window"
)

// FrameFunc supplies one frame's scene data and drawable objects. Called on
// the render goroutine every frame.
type FrameFunc func(deltaTime float32) (renderer.SceneData, []renderer.DrawObject)

// engine is the implementation of the Engine interface.
// Coordinates the tick, render and window threads.
type engine struct {
	tickRateChannel chan time.Duration

	running bool
	wg      sync.WaitGroup

	quitChannel chan struct{}
	quitOnce    sync.Once

	window  window.Window
	backend renderer.WGPUBackend

	loader    config.Loader
	resolver  graph.GraphResolver
	pipelines pipeline.Registry
	materials material.Registry
	renderer  renderer.Renderer

	profiler         *profiler.Profiler
	profilingEnabled bool

	engineTickRate time.Duration
	tickCallback   func(deltaTime float32)
	frameCallback  FrameFunc

	renderFrameLimit time.Duration

	framesInFlight int
	shaderDir      string
}

// Engine orchestrates the tick loop, render loop and window management around
// a configured render graph.
type Engine interface {
	// Window returns the underlying window.
	//
	// Returns:
	//   - window.Window: the window instance
	Window() window.Window

	// Backend returns the WebGPU backend, for host-side resource uploads
	// (meshes, device access).
	//
	// Returns:
	//   - renderer.WGPUBackend: the backend instance
	Backend() renderer.WGPUBackend

	// Renderer returns the active frame renderer, or nil before LoadConfig.
	//
	// Returns:
	//   - renderer.Renderer: the renderer instance
	Renderer() renderer.Renderer

	// LoadConfig decodes and resolves the graph, pipelines and materials
	// documents, registering everything with the engine's registries. Called
	// once at startup; calling it again reloads the graph and rebuilds
	// attachments.
	//
	// Parameters:
	//   - graphPath: the graph document path
	//   - pipelinesPath: the pipelines document path, empty to skip
	//   - materialsPath: the materials document path, empty to skip
	//
	// Returns:
	//   - error: the load, decode or resolution failure, nil on success
	LoadConfig(graphPath, pipelinesPath, materialsPath string) error

	// EnableProfiler enables periodic frame statistics logging.
	EnableProfiler()

	// DisableProfiler disables frame statistics logging.
	DisableProfiler()

	// SetTickRate sets the engine tick rate in ticks per second.
	//
	// Parameters:
	//   - fps: target ticks per second (defaults to 60 if <= 0)
	SetTickRate(fps float64)

	// SetTickCallback registers the function called each engine tick. Use this
	// for simulation updates.
	//
	// Parameters:
	//   - callback: function to call at the configured tick rate, receiving the delta time in seconds
	SetTickCallback(callback func(deltaTime float32))

	// SetFrameCallback registers the function supplying each frame's scene
	// data and drawable objects.
	//
	// Parameters:
	//   - callback: the per-frame supplier
	SetFrameCallback(callback FrameFunc)

	// SetRenderFrameLimit sets an optional render frame rate cap in frames per
	// second. Pass 0 to uncap the render loop (default).
	//
	// Parameters:
	//   - fps: maximum render frames per second (0 = uncapped)
	SetRenderFrameLimit(fps float64)

	// Run starts the main engine loop (blocks until the window closes).
	Run()

	// Quit signals all engine goroutines to stop and shuts down the engine.
	// Safe to call multiple times; subsequent calls are no-ops.
	Quit()
}

var _ Engine = &engine{}

// NewEngine creates a new Engine: it spawns the window, brings up the WebGPU
// backend over its surface and prepares the registries. The render graph
// itself is loaded separately with LoadConfig.
//
// Parameters:
//   - options: functional options for engine configuration
//
// Returns:
//   - Engine: the newly created engine
//   - error: the window or backend initialization failure, nil on success
func NewEngine(options ...EngineBuilderOption) (Engine, error) {
	e := &engine{
		tickRateChannel: make(chan time.Duration, 1),
		quitChannel:     make(chan struct{}),
		profiler:        profiler.NewProfiler(),
		engineTickRate:  time.Second / 60,
		framesInFlight:  2,
		shaderDir:       ".",
		resolver:        graph.NewGraphResolver(),
	}
	for _, opt := range options {
		opt(e)
	}

	if e.window == nil {
		w, err := window.NewWindow()
		if err != nil {
			return nil, err
		}
		e.window = w
	}

	if e.backend == nil {
		backend, err := renderer.NewWGPUBackend(e.window.SurfaceDescriptor(),
			renderer.WithBackendFramesInFlight(e.framesInFlight),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create backend: %w", err)
		}
		e.backend = backend
	}
	if err := e.backend.Configure(e.windowExtent()); err != nil {
		return nil, fmt.Errorf("failed to configure surface: %w", err)
	}

	e.loader = config.NewLoader(config.WithShaderDir(e.shaderDir))
	e.pipelines = pipeline.NewRegistry(e.backend)
	e.materials = material.NewRegistry(e.pipelines)

	e.window.SetResizeCallback(func(width, height int) {
		if e.renderer == nil || width == 0 || height == 0 {
			return
		}
		extent := common.Extent2D{Width: uint32(width), Height: uint32(height)}
		if err := e.renderer.Resize(extent); err != nil {
			common.Logger().Error("resize failed", "error", err)
		}
	})

	return e, nil
}

func (e *engine) Window() window.Window {
	return e.window
}

func (e *engine) Backend() renderer.WGPUBackend {
	return e.backend
}

func (e *engine) Renderer() renderer.Renderer {
	return e.renderer
}

func (e *engine) LoadConfig(graphPath, pipelinesPath, materialsPath string) error {
	graphDesc, err := e.loader.LoadGraph(graphPath)
	if err != nil {
		return err
	}

	if pipelinesPath != "" {
		named, err := e.loader.LoadPipelines(pipelinesPath)
		if err != nil {
			return err
		}
		for _, np := range named {
			if _, err := e.pipelines.Register(np.Name, np.Descriptor); err != nil {
				return err
			}
		}
	}

	if materialsPath != "" {
		set, err := e.loader.LoadMaterials(materialsPath)
		if err != nil {
			return err
		}
		if set.DefaultObjectLayout != 0 {
			// The default layout option only applies at registry creation, so
			// a config-supplied default needs a fresh registry.
			e.materials = material.NewRegistry(e.pipelines,
				material.WithDefaultObjectLayout(set.DefaultObjectLayout),
			)
		}
		for _, m := range set.Materials {
			if err := e.materials.Register(m); err != nil {
				return err
			}
		}
	}

	resolved, err := e.resolver.Resolve(graphDesc)
	if err != nil {
		return err
	}

	if e.renderer != nil {
		return e.renderer.Reload(resolved)
	}
	r, err := renderer.NewRenderer(e.backend, resolved, e.pipelines, e.materials,
		renderer.WithFramesInFlight(e.framesInFlight),
	)
	if err != nil {
		return err
	}
	e.renderer = r
	return nil
}

func (e *engine) Run() {
	e.running = true
	e.handle()
	e.window.ProcessMessages()
	e.Quit()
	e.wg.Wait()

	if e.renderer != nil {
		e.renderer.Shutdown()
	}
}

func (e *engine) Quit() {
	e.signalQuit()
}

// signalQuit closes the quit channel to signal all goroutines to exit.
func (e *engine) signalQuit() {
	e.quitOnce.Do(func() {
		e.running = false
		close(e.quitChannel)
	})
}

// handle launches the tick, render and quit goroutines.
func (e *engine) handle() {
	e.wg.Add(3)
	go e.handleTick()
	go e.handleRender()
	go e.handleQuit()
}

// handleTick runs the fixed-rate tick loop in its own goroutine, listening
// for dynamic rate changes via tickRateChannel.
func (e *engine) handleTick() {
	defer e.wg.Done()

	ticker := time.NewTicker(e.engineTickRate)
	defer ticker.Stop()

	lastTick := time.Now()

	for {
		select {
		case <-e.quitChannel:
			return
		case <-ticker.C:
			now := time.Now()
			dt := float32(now.Sub(lastTick).Seconds())
			lastTick = now

			if e.tickCallback != nil {
				e.tickCallback(dt)
			}
		case newRate := <-e.tickRateChannel:
			ticker.Reset(newRate)
			e.engineTickRate = newRate
		}
	}
}

// handleRender runs the render loop in its own goroutine. Each iteration
// pulls the frame's scene and objects from the frame callback and hands them
// to the renderer; stale-surface recovery happens inside RenderFrame.
func (e *engine) handleRender() {
	defer e.wg.Done()
	defer func() {
		if r := recover(); r != nil {
			common.Logger().Error("render goroutine recovered from panic", "panic", r)
			e.signalQuit()
		}
	}()

	lastRender := time.Now()

	for {
		select {
		case <-e.quitChannel:
			return
		default:
			now := time.Now()
			dt := float32(now.Sub(lastRender).Seconds())
			lastRender = now

			if e.renderer != nil {
				var scene renderer.SceneData
				var objects []renderer.DrawObject
				if e.frameCallback != nil {
					scene, objects = e.frameCallback(dt)
				}
				if err := e.renderer.RenderFrame(scene, objects); err != nil {
					common.Logger().Error("frame failed", "error", err)
					e.signalQuit()
					return
				}
				if e.profilingEnabled {
					e.profiler.Tick(e.renderer.Stats())
				}
			}

			if e.renderFrameLimit > 0 {
				elapsed := time.Since(lastRender)
				if remaining := e.renderFrameLimit - elapsed; remaining > 0 {
					time.Sleep(remaining)
				}
			}
		}
	}
}

// handleQuit blocks until the quit channel is closed.
func (e *engine) handleQuit() {
	defer e.wg.Done()
	<-e.quitChannel
}

func (e *engine) EnableProfiler() {
	e.profilingEnabled = true
}

func (e *engine) DisableProfiler() {
	e.profilingEnabled = false
}

// SetTickRate sets the engine tick rate in ticks per second.
// If the engine is running, the change takes effect immediately.
func (e *engine) SetTickRate(fps float64) {
	if fps <= 0 {
		fps = 60
	}
	newRate := time.Second / time.Duration(fps)

	if e.running {
		// Non-blocking send: if an update is already pending, replace it.
		select {
		case e.tickRateChannel <- newRate:
		default:
			select {
			case <-e.tickRateChannel:
			default:
			}
			e.tickRateChannel <- newRate
		}
	} else {
		e.engineTickRate = newRate
	}
}

func (e *engine) SetTickCallback(callback func(deltaTime float32)) {
	e.tickCallback = callback
}

func (e *engine) SetFrameCallback(callback FrameFunc) {
	e.frameCallback = callback
}

// SetRenderFrameLimit sets an optional render frame rate cap.
// Pass 0 to uncap the render loop.
func (e *engine) SetRenderFrameLimit(fps float64) {
	if fps <= 0 {
		e.renderFrameLimit = 0
		return
	}
	e.renderFrameLimit = time.Second / time.Duration(fps)
}

// windowExtent converts the window's framebuffer size to a surface extent.
func (e *engine) windowExtent() common.Extent2D {
	return common.Extent2D{
		Width:  uint32(e.window.Width()),
		Height: uint32(e.window.Height()),
	}
}
