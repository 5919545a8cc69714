// package shader holds references to shader sources consumed by pipeline
// creation. Shaders are opaque source blobs with an entry point; no
// compilation or reflection happens on the CPU side.
package shader

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ShaderType identifies which pipeline stage a shader targets.
type ShaderType int

const (
	// ShaderTypeVertex is the vertex shader stage.
	ShaderTypeVertex ShaderType = iota

	// ShaderTypeFragment is the fragment shader stage.
	ShaderTypeFragment
)

// String returns the stage name used in configuration files.
func (t ShaderType) String() string {
	switch t {
	case ShaderTypeFragment:
		return "fragment"
	default:
		return "vertex"
	}
}

// shader is the implementation of the Shader interface.
// It holds the source reference data required for pipeline creation.
type shader struct {
	key        string
	source     string
	shaderType ShaderType
	entryPoint string
}

// Shader defines the interface for a shader source reference. It exposes the
// shader's unique key, stage, entry point and raw source, which is everything
// pipeline creation needs; the backend compiles the source itself.
type Shader interface {
	// Key retrieves the unique identifier for this shader, used for caching
	// and structural pipeline identity.
	//
	// Returns:
	//   - string: the shader's unique key
	Key() string

	// Type returns the pipeline stage this shader targets.
	//
	// Returns:
	//   - ShaderType: the shader stage (vertex or fragment)
	Type() ShaderType

	// EntryPoint returns the entry point name for this shader.
	//
	// Returns:
	//   - string: the entry point name (e.g. "vs_main")
	EntryPoint() string

	// Source retrieves the raw shader source code.
	//
	// Returns:
	//   - string: the source code of the shader
	Source() string
}

var _ Shader = &shader{}

// NewShader is the entry point to create a new Shader from in-memory source.
//
// Parameters:
//   - key: the unique key for this shader
//   - shaderType: the stage the shader targets
//   - opts: a variadic list of ShaderBuilderOption functions to configure the shader
//
// Returns:
//   - Shader: a new Shader instance
func NewShader(key string, shaderType ShaderType, opts ...ShaderBuilderOption) Shader {
	s := &shader{
		key:        key,
		shaderType: shaderType,
		entryPoint: "main",
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load reads a shader source file from disk and wraps it in a Shader keyed by
// the file's base name.
//
// Parameters:
//   - path: the path to the source file
//   - shaderType: the stage the shader targets
//   - entryPoint: the entry point name; empty means "main"
//
// Returns:
//   - Shader: the loaded shader
//   - error: the read failure, nil on success
func Load(path string, shaderType ShaderType, entryPoint string) (Shader, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read shader %q: %w", path, err)
	}
	key := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	opts := []ShaderBuilderOption{WithSource(string(data))}
	if entryPoint != "" {
		opts = append(opts, WithEntryPoint(entryPoint))
	}
	return NewShader(key, shaderType, opts...), nil
}

func (s *shader) Key() string {
	return s.key
}

func (s *shader) Type() ShaderType {
	return s.shaderType
}

func (s *shader) EntryPoint() string {
	return s.entryPoint
}

func (s *shader) Source() string {
	return s.source
}
