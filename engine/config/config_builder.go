package config

// LoaderBuilderOption is a functional option for configuring a Loader during
// creation.
type LoaderBuilderOption func(*loader)

// WithShaderDir sets the directory shader file references resolve against.
// The default is the working directory.
//
// Parameters:
//   - dir: the shader source directory
//
// Returns:
//   - LoaderBuilderOption: the option to apply
func WithShaderDir(dir string) LoaderBuilderOption {
	return func(l *loader) {
		l.shaderDir = dir
	}
}
