// package camera computes the view-projection state a frame's scene uniforms
// carry. It is a convenience for hosts; the renderer only sees the resulting
// SceneData fields.
package camera

import (
	"sync"

	"github.com/Carmen-Shannon/framegraph-go/common"
)

type cameraImpl struct {
	mu *sync.Mutex

	position [3]float32
	target   [3]float32
	up       [3]float32

	fov    float32
	aspect float32
	near   float32
	far    float32

	viewMatrix           [16]float32
	projectionMatrix     [16]float32
	viewProjectionMatrix [16]float32
}

// Camera holds perspective settings and computes view/projection matrices
// from its position and target.
type Camera interface {
	// Position returns the camera's world position.
	//
	// Returns:
	//   - [3]float32: the position
	Position() [3]float32

	// ViewProjectionMatrix returns the current combined view-projection matrix
	// as 16 floats (column-major).
	//
	// Returns:
	//   - [16]float32: the combined view-projection matrix
	ViewProjectionMatrix() [16]float32

	// SetPosition moves the camera and recomputes matrices.
	//
	// Parameters:
	//   - x, y, z: the new world position
	SetPosition(x, y, z float32)

	// SetTarget points the camera at a world position and recomputes matrices.
	//
	// Parameters:
	//   - x, y, z: the look-at target
	SetTarget(x, y, z float32)

	// SetAspect sets the aspect ratio (width / height) and recomputes
	// matrices. Call from the window resize callback.
	//
	// Parameters:
	//   - aspect: the new aspect ratio
	SetAspect(aspect float32)
}

var _ Camera = &cameraImpl{}

// NewCamera creates a new Camera with the specified options.
//
// Parameters:
//   - opts: a variadic list of CameraBuilderOption functions to configure the camera
//
// Returns:
//   - Camera: the configured camera with matrices computed
func NewCamera(opts ...CameraBuilderOption) Camera {
	c := &cameraImpl{
		mu:       &sync.Mutex{},
		position: [3]float32{0, 2, 5},
		up:       [3]float32{0, 1, 0},
		fov:      1.0472, // 60 degrees
		aspect:   16.0 / 9.0,
		near:     0.1,
		far:      1000,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.recompute()
	return c
}

func (c *cameraImpl) Position() [3]float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.position
}

func (c *cameraImpl) ViewProjectionMatrix() [16]float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewProjectionMatrix
}

func (c *cameraImpl) SetPosition(x, y, z float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.position = [3]float32{x, y, z}
	c.recompute()
}

func (c *cameraImpl) SetTarget(x, y, z float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.target = [3]float32{x, y, z}
	c.recompute()
}

func (c *cameraImpl) SetAspect(aspect float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if aspect > 0 {
		c.aspect = aspect
	}
	c.recompute()
}

// recompute rebuilds the view, projection and combined matrices. Callers hold
// c.mu.
func (c *cameraImpl) recompute() {
	common.LookAt(c.viewMatrix[:],
		c.position[0], c.position[1], c.position[2],
		c.target[0], c.target[1], c.target[2],
		c.up[0], c.up[1], c.up[2],
	)
	common.Perspective(c.projectionMatrix[:], c.fov, c.aspect, c.near, c.far)
	common.Mul4(c.viewProjectionMatrix[:], c.projectionMatrix[:], c.viewMatrix[:])
}
