// package light holds the directional light state a frame's scene uniforms
// carry.
package light

import "sync"

type lightImpl struct {
	mu *sync.Mutex

	direction [3]float32
	color     [4]float32
	ambient   [4]float32
}

// Light is a single directional light source. Its fields map onto the
// light_direction, light_color and light_ambient_color scene layout flags.
type Light interface {
	// Direction returns the light's world-space direction.
	//
	// Returns:
	//   - [3]float32: the direction
	Direction() [3]float32

	// Color returns the light's RGBA color, intensity in alpha.
	//
	// Returns:
	//   - [4]float32: the color
	Color() [4]float32

	// AmbientColor returns the ambient RGBA contribution.
	//
	// Returns:
	//   - [4]float32: the ambient color
	AmbientColor() [4]float32

	// SetDirection updates the light's world-space direction.
	//
	// Parameters:
	//   - x, y, z: the direction components
	SetDirection(x, y, z float32)

	// SetColor updates the light's color, intensity in alpha.
	//
	// Parameters:
	//   - r, g, b, a: the color components
	SetColor(r, g, b, a float32)
}

var _ Light = &lightImpl{}

// NewLight creates a new directional Light with the specified options.
//
// Parameters:
//   - opts: a variadic list of LightBuilderOption functions to configure the light
//
// Returns:
//   - Light: the configured light
func NewLight(opts ...LightBuilderOption) Light {
	l := &lightImpl{
		mu:        &sync.Mutex{},
		direction: [3]float32{0, -1, 0},
		color:     [4]float32{1, 1, 1, 1},
		ambient:   [4]float32{0.1, 0.1, 0.1, 1},
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *lightImpl) Direction() [3]float32 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.direction
}

func (l *lightImpl) Color() [4]float32 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.color
}

func (l *lightImpl) AmbientColor() [4]float32 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.ambient
}

func (l *lightImpl) SetDirection(x, y, z float32) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.direction = [3]float32{x, y, z}
}

func (l *lightImpl) SetColor(r, g, b, a float32) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.color = [4]float32{r, g, b, a}
}
