package light

// LightBuilderOption is a functional option for configuring a Light.
// Use the With* functions to create options.
type LightBuilderOption func(*lightImpl)

// WithDirection sets the light's world-space direction.
//
// Parameters:
//   - x, y, z: the direction components
//
// Returns:
//   - LightBuilderOption: option function to apply
func WithDirection(x, y, z float32) LightBuilderOption {
	return func(l *lightImpl) {
		l.direction = [3]float32{x, y, z}
	}
}

// WithColor sets the light's color, intensity in alpha.
//
// Parameters:
//   - r, g, b, a: the color components
//
// Returns:
//   - LightBuilderOption: option function to apply
func WithColor(r, g, b, a float32) LightBuilderOption {
	return func(l *lightImpl) {
		l.color = [4]float32{r, g, b, a}
	}
}

// WithAmbientColor sets the ambient RGBA contribution.
//
// Parameters:
//   - r, g, b, a: the ambient color components
//
// Returns:
//   - LightBuilderOption: option function to apply
func WithAmbientColor(r, g, b, a float32) LightBuilderOption {
	return func(l *lightImpl) {
		l.ambient = [4]float32{r, g, b, a}
	}
}
