package renderer

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/Carmen-Shannon/framegraph-go/common"
	"github.com/Carmen-Shannon/framegraph-go/engine/graph"
	"github.com/Carmen-Shannon/framegraph-go/engine/renderer/material"
	"github.com/Carmen-Shannon/framegraph-go/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/framegraph-go/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

// recordingBackend logs every backend call in order so tests can assert
// frame-pacing, draw ordering and shutdown sequencing.
type recordingBackend struct {
	mu     sync.Mutex
	events []string

	nextHandle      uint64
	surfaceExtent   common.Extent2D
	acquireFailures int
}

var _ Backend = &recordingBackend{}

func newRecordingBackend() *recordingBackend {
	return &recordingBackend{
		nextHandle:    1,
		surfaceExtent: common.Extent2D{Width: 800, Height: 600},
	}
}

func (b *recordingBackend) record(format string, args ...any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, fmt.Sprintf(format, args...))
}

func (b *recordingBackend) handle() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	h := b.nextHandle
	b.nextHandle++
	return h
}

func (b *recordingBackend) CreatePipeline(desc pipeline.Descriptor) (pipeline.Handle, error) {
	h := b.handle()
	b.record("create-pipeline %d", h)
	return pipeline.Handle(h), nil
}

func (b *recordingBackend) DestroyPipeline(handle pipeline.Handle) {
	b.record("destroy-pipeline %d", uint64(handle))
}

func (b *recordingBackend) Configure(extent common.Extent2D) error {
	b.mu.Lock()
	b.surfaceExtent = extent
	b.mu.Unlock()
	b.record("configure %dx%d", extent.Width, extent.Height)
	return nil
}

func (b *recordingBackend) SurfaceExtent() common.Extent2D {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.surfaceExtent
}

func (b *recordingBackend) CreateImage(desc graph.AttachmentDescriptor, extent common.Extent2D) (ImageHandle, error) {
	h := b.handle()
	b.record("create-image %s", desc.Name)
	return ImageHandle(h), nil
}

func (b *recordingBackend) DestroyImage(handle ImageHandle) {
	b.record("destroy-image %d", uint64(handle))
}

func (b *recordingBackend) AcquireImage() (ImageHandle, error) {
	b.mu.Lock()
	failing := b.acquireFailures > 0
	if failing {
		b.acquireFailures--
	}
	b.mu.Unlock()
	if failing {
		b.record("acquire-failed")
		return 0, ErrSurfaceOutdated
	}
	h := b.handle()
	b.record("acquire")
	return ImageHandle(h), nil
}

func (b *recordingBackend) BeginFrame(slot int) error {
	b.record("beginframe %d", slot)
	return nil
}

func (b *recordingBackend) Barrier(image ImageHandle, prev, next graph.AccessMode) {
	b.record("barrier %s->%s", prev, next)
}

func (b *recordingBackend) BeginPass(target PassTarget) error {
	b.record("beginpass %s", target.Pass)
	return nil
}

func (b *recordingBackend) EndPass() {
	b.record("endpass")
}

func (b *recordingBackend) BindPipeline(handle pipeline.Handle) {
	b.record("bind-pipeline %d", uint64(handle))
}

func (b *recordingBackend) BindSceneData(data []byte) {
	b.record("scene-data %d", len(data))
}

func (b *recordingBackend) PushObjectData(data []byte) {
	b.record("object-data %d", len(data))
}

func (b *recordingBackend) Draw(mesh MeshHandle, indexCount uint32) {
	b.record("draw %d", uint64(mesh))
}

func (b *recordingBackend) Submit(slot int) error {
	b.record("submit %d", slot)
	return nil
}

func (b *recordingBackend) Present(source, surface ImageHandle, slot int) error {
	b.record("present %d", slot)
	return nil
}

func (b *recordingBackend) WaitFrame(slot int) {
	b.record("waitframe %d", slot)
}

func (b *recordingBackend) Wait() {
	b.record("wait")
}

func (b *recordingBackend) snapshot() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.events...)
}

// eventIndex returns the index of the nth occurrence of event, or -1.
func eventIndex(events []string, event string, n int) int {
	seen := 0
	for i, e := range events {
		if e == event {
			seen++
			if seen == n {
				return i
			}
		}
	}
	return -1
}

func countEvents(events []string, prefix string) int {
	total := 0
	for _, e := range events {
		if strings.HasPrefix(e, prefix) {
			total++
		}
	}
	return total
}

// testGraph resolves the reference forward-plus-present schedule: a forward
// pass drawing into an offscreen color and depth pair, then a present of the
// offscreen color.
func testGraph(t *testing.T, fixedPipeline string) graph.RenderGraph {
	t.Helper()

	g, err := graph.NewGraphResolver(
		graph.WithMinimumExtent(common.Extent2D{Width: 1, Height: 1}),
	).Resolve(graph.Descriptor{
		Schedule: []string{"forward", "present"},
		Passes: []graph.PassDescriptor{
			{
				Name:     "forward",
				Type:     graph.PassTypeMaterial,
				Tag:      "main",
				Pipeline: fixedPipeline,
				Accesses: []graph.AccessDeclaration{
					{Attachment: "draw", Access: graph.AccessModeWrite, Clear: true},
					{Attachment: "depth", Access: graph.AccessModeReadWrite, Clear: true},
				},
				RenderOpaque:      true,
				RenderTransparent: true,
				ObjectLayout:      common.ObjectLayoutWorldMatrix,
				SceneLayout:       common.SceneLayoutCameraViewProj,
			},
			{Name: "present", Type: graph.PassTypePresent, Target: "draw"},
		},
		Attachments: []graph.AttachmentDescriptor{
			{Name: "draw", Kind: graph.AttachmentKindColor, Format: wgpu.TextureFormatRGBA16Float, Layout: graph.ImageLayoutColorAttachment},
			{Name: "depth", Kind: graph.AttachmentKindDepth, Format: wgpu.TextureFormatDepth32Float, Layout: graph.ImageLayoutDepthAttachment},
		},
	})
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	return g
}

func litMaterial() material.Descriptor {
	vs := shader.NewShader("lit_vert", shader.ShaderTypeVertex, shader.WithSource("@vertex fn main() {}"))
	fs := shader.NewShader("lit_frag", shader.ShaderTypeFragment, shader.WithSource("@fragment fn main() {}"))
	return material.NewDescriptor("lit", vs, fs,
		material.WithAttributes(common.VertexAttributePosition),
	)
}

func newTestRenderer(t *testing.T, backend *recordingBackend, fixedPipeline string, opts ...RendererBuilderOption) Renderer {
	t.Helper()

	pipelines := pipeline.NewRegistry(backend)
	materials := material.NewRegistry(pipelines)
	if err := materials.Register(litMaterial()); err != nil {
		t.Fatalf("Register returned error: %v", err)
	}

	opts = append([]RendererBuilderOption{WithPrepWorkers(1)}, opts...)
	r, err := NewRenderer(backend, testGraph(t, fixedPipeline), pipelines, materials, opts...)
	if err != nil {
		t.Fatalf("NewRenderer returned error: %v", err)
	}
	return r
}

func testObject(transparent bool, depth float32, mesh MeshHandle) DrawObject {
	obj := DrawObject{
		Tag:         "main",
		Transparent: transparent,
		Material:    "lit",
		Depth:       depth,
		Mesh:        mesh,
		IndexCount:  36,
	}
	common.Identity(obj.World[:])
	return obj
}

func TestRenderFrameWaitsBeforeSlotReuse(t *testing.T) {
	backend := newRecordingBackend()
	r := newTestRenderer(t, backend, "", WithFramesInFlight(3))

	objects := []DrawObject{testObject(false, 0, 10)}
	for frame := range 5 {
		if err := r.RenderFrame(SceneData{}, objects); err != nil {
			t.Fatalf("RenderFrame %d returned error: %v", frame, err)
		}
	}

	events := backend.snapshot()
	if got := countEvents(events, "waitframe 0"); got != 1 {
		t.Errorf("expected slot 0 waited once, got %d", got)
	}
	if got := countEvents(events, "waitframe 1"); got != 1 {
		t.Errorf("expected slot 1 waited once, got %d", got)
	}
	if got := countEvents(events, "waitframe 2"); got != 0 {
		t.Errorf("expected slot 2 never waited, got %d waits", got)
	}

	// Frame 3 reuses slot 0: its wait must land after frame 0's submission
	// and before frame 3 starts recording.
	wait := eventIndex(events, "waitframe 0", 1)
	firstPresent := eventIndex(events, "present 0", 1)
	reuse := eventIndex(events, "beginframe 0", 2)
	if wait < firstPresent || wait > reuse {
		t.Errorf("slot 0 wait at %d, expected between present %d and reuse %d", wait, firstPresent, reuse)
	}
}

func TestRenderFrameRecoversFromOutdatedSurface(t *testing.T) {
	backend := newRecordingBackend()
	r := newTestRenderer(t, backend, "")
	backend.acquireFailures = 1

	if err := r.RenderFrame(SceneData{}, []DrawObject{testObject(false, 0, 10)}); err != nil {
		t.Fatalf("RenderFrame returned error: %v", err)
	}

	events := backend.snapshot()
	if got := countEvents(events, "configure"); got != 1 {
		t.Errorf("expected one surface reconfigure, got %d", got)
	}
	if got := countEvents(events, "destroy-image"); got != 2 {
		t.Errorf("expected both attachments destroyed on rebuild, got %d", got)
	}
	if got := countEvents(events, "create-image"); got != 4 {
		t.Errorf("expected attachments created twice (init and rebuild), got %d", got)
	}
	if got := countEvents(events, "present"); got != 1 {
		t.Errorf("expected the retried frame to present, got %d presents", got)
	}
}

func TestRenderFrameRetriesOnlyOnce(t *testing.T) {
	backend := newRecordingBackend()
	r := newTestRenderer(t, backend, "")
	backend.acquireFailures = 2

	err := r.RenderFrame(SceneData{}, nil)
	if !errors.Is(err, ErrSurfaceOutdated) {
		t.Fatalf("expected ErrSurfaceOutdated after failed retry, got %v", err)
	}

	if got := countEvents(backend.snapshot(), "acquire-failed"); got != 2 {
		t.Errorf("expected exactly two acquire attempts, got %d", got)
	}
}

func TestRenderFrameMinimizesPipelineBinds(t *testing.T) {
	backend := newRecordingBackend()
	r := newTestRenderer(t, backend, "")

	objects := []DrawObject{
		testObject(false, 0, 10),
		testObject(false, 0, 11),
		testObject(false, 0, 12),
		testObject(true, 0.5, 13),
	}
	if err := r.RenderFrame(SceneData{}, objects); err != nil {
		t.Fatalf("RenderFrame returned error: %v", err)
	}

	stats := r.Stats()
	if len(stats.Passes) != 2 {
		t.Fatalf("expected stats for 2 passes, got %d", len(stats.Passes))
	}
	forward := stats.Passes[0]
	if forward.Draws != 4 {
		t.Errorf("expected 4 draws, got %d", forward.Draws)
	}
	if forward.PipelineBinds != 1 {
		t.Errorf("expected a single pipeline bind for a shared material, got %d", forward.PipelineBinds)
	}
}

func TestRenderFrameDrawOrder(t *testing.T) {
	backend := newRecordingBackend()
	r := newTestRenderer(t, backend, "")

	// One opaque object plus transparent objects at mixed depths. The opaque
	// phase draws first; transparent draws follow back to front.
	objects := []DrawObject{
		testObject(true, 0.2, 21),
		testObject(false, 0, 10),
		testObject(true, 0.9, 22),
		testObject(true, 0.5, 23),
	}
	if err := r.RenderFrame(SceneData{}, objects); err != nil {
		t.Fatalf("RenderFrame returned error: %v", err)
	}

	var draws []string
	for _, e := range backend.snapshot() {
		if strings.HasPrefix(e, "draw ") {
			draws = append(draws, e)
		}
	}
	want := []string{"draw 10", "draw 22", "draw 23", "draw 21"}
	if len(draws) != len(want) {
		t.Fatalf("expected %d draws, got %d: %v", len(want), len(draws), draws)
	}
	for i := range want {
		if draws[i] != want[i] {
			t.Errorf("draw %d: expected %q, got %q", i, want[i], draws[i])
		}
	}
}

func TestRenderFrameTransitionTables(t *testing.T) {
	backend := newRecordingBackend()
	r := newTestRenderer(t, backend, "")

	objects := []DrawObject{testObject(false, 0, 10)}

	// Initial frame: only the present read of the freshly written color
	// target needs a barrier.
	if err := r.RenderFrame(SceneData{}, objects); err != nil {
		t.Fatalf("RenderFrame returned error: %v", err)
	}
	if got := r.Stats().Barriers(); got != 1 {
		t.Errorf("initial frame: expected 1 barrier, got %d", got)
	}

	// Steady state: persistent attachments carry last frame's access, so the
	// forward pass's first touches of both targets barrier too.
	if err := r.RenderFrame(SceneData{}, objects); err != nil {
		t.Fatalf("RenderFrame returned error: %v", err)
	}
	if got := r.Stats().Barriers(); got != 3 {
		t.Errorf("steady frame: expected 3 barriers, got %d", got)
	}
}

func TestRenderFramePresentImpliesSubmit(t *testing.T) {
	backend := newRecordingBackend()
	r := newTestRenderer(t, backend, "")

	if err := r.RenderFrame(SceneData{}, nil); err != nil {
		t.Fatalf("RenderFrame returned error: %v", err)
	}

	events := backend.snapshot()
	if got := countEvents(events, "present 0"); got != 1 {
		t.Errorf("expected one present, got %d", got)
	}
	if got := countEvents(events, "submit"); got != 0 {
		t.Errorf("expected no explicit submit when the frame presents, got %d", got)
	}
}

func TestRenderFrameMissingFixedPipeline(t *testing.T) {
	backend := newRecordingBackend()
	r := newTestRenderer(t, backend, "wireframe")

	err := r.RenderFrame(SceneData{}, nil)
	if err == nil {
		t.Fatal("expected error for unregistered fixed pipeline, got nil")
	}
	if !strings.Contains(err.Error(), "not found in cache") {
		t.Errorf("expected cache-miss error, got %v", err)
	}
}

func TestShutdownReleaseOrder(t *testing.T) {
	backend := newRecordingBackend()
	r := newTestRenderer(t, backend, "")

	if err := r.RenderFrame(SceneData{}, []DrawObject{testObject(false, 0, 10)}); err != nil {
		t.Fatalf("RenderFrame returned error: %v", err)
	}
	r.Shutdown()

	events := backend.snapshot()
	wait := eventIndex(events, "waitframe 0", 1)
	idle := eventIndex(events, "wait", 1)
	if wait == -1 || idle == -1 || wait > idle {
		t.Errorf("expected in-flight slot drained (at %d) before device idle wait (at %d)", wait, idle)
	}

	lastImage := -1
	firstPipeline := len(events)
	for i, e := range events {
		if strings.HasPrefix(e, "destroy-image") {
			lastImage = i
		}
		if strings.HasPrefix(e, "destroy-pipeline") && i < firstPipeline {
			firstPipeline = i
		}
	}
	if lastImage == -1 {
		t.Fatal("expected attachment images destroyed on shutdown")
	}
	if firstPipeline == len(events) {
		t.Fatal("expected pipelines destroyed on shutdown")
	}
	if idle > lastImage {
		t.Errorf("expected device idle wait (at %d) before image destruction (at %d)", idle, lastImage)
	}
	if lastImage > firstPipeline {
		t.Errorf("expected images destroyed (last at %d) before pipelines (first at %d)", lastImage, firstPipeline)
	}
}
