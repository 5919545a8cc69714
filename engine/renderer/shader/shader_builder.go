package shader

// ShaderBuilderOption is a functional option for configuring a Shader during creation.
type ShaderBuilderOption func(*shader)

// WithSource sets the raw shader source code.
//
// Parameters:
//   - source: the shader source
//
// Returns:
//   - ShaderBuilderOption: the option to apply
func WithSource(source string) ShaderBuilderOption {
	return func(s *shader) {
		s.source = source
	}
}

// WithEntryPoint sets the entry point name. The default is "main".
//
// Parameters:
//   - entryPoint: the entry point name
//
// Returns:
//   - ShaderBuilderOption: the option to apply
func WithEntryPoint(entryPoint string) ShaderBuilderOption {
	return func(s *shader) {
		s.entryPoint = entryPoint
	}
}
