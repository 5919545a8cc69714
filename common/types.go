// package common contains common types that are used throughout this engine. They are not interface-wrapped structs, just plain structs and
// bit-flag sets that express commonly used data-types shared between the graph, pipeline, material and renderer packages.
package common

import "strings"

// Extent2D describes a two-dimensional image size in pixels.
// A zero extent on an attachment descriptor means "derive from the output surface".
type Extent2D struct {
	// Width is the horizontal size in pixels.
	Width uint32
	// Height is the vertical size in pixels.
	Height uint32
}

// IsZero reports whether the extent is unset (both dimensions zero).
func (e Extent2D) IsZero() bool {
	return e.Width == 0 && e.Height == 0
}

// Scale returns the extent multiplied by the given factor, truncated to whole pixels.
//
// Parameters:
//   - factor: the scale factor to apply to both dimensions
//
// Returns:
//   - Extent2D: the scaled extent
func (e Extent2D) Scale(factor float32) Extent2D {
	return Extent2D{
		Width:  uint32(float32(e.Width) * factor),
		Height: uint32(float32(e.Height) * factor),
	}
}

// Max returns an extent whose dimensions are the component-wise maximum of e and other.
//
// Parameters:
//   - other: the extent to compare against
//
// Returns:
//   - Extent2D: the component-wise maximum
func (e Extent2D) Max(other Extent2D) Extent2D {
	out := e
	if other.Width > out.Width {
		out.Width = other.Width
	}
	if other.Height > out.Height {
		out.Height = other.Height
	}
	return out
}

// VertexAttribute is a bit-flag set describing which per-vertex attributes a material's
// vertex layout carries. Flags compose with bitwise OR.
type VertexAttribute uint32

const (
	// VertexAttributePosition is the vertex position attribute (vec3).
	VertexAttributePosition VertexAttribute = 1 << iota

	// VertexAttributeColor is the per-vertex color attribute (vec4).
	VertexAttributeColor

	// VertexAttributeTexture is the texture coordinate attribute (vec2).
	VertexAttributeTexture

	// VertexAttributeNormal is the vertex normal attribute (vec3).
	VertexAttributeNormal

	// VertexAttributeTangent is the vertex tangent attribute (vec3).
	VertexAttributeTangent

	// VertexAttributeBitangent is the vertex bitangent attribute (vec3).
	VertexAttributeBitangent
)

var vertexAttributeNames = []struct {
	flag VertexAttribute
	name string
}{
	{VertexAttributePosition, "position"},
	{VertexAttributeColor, "color"},
	{VertexAttributeTexture, "texture"},
	{VertexAttributeNormal, "normal"},
	{VertexAttributeTangent, "tangent"},
	{VertexAttributeBitangent, "bitangent"},
}

// Has reports whether all bits of flag are set.
func (v VertexAttribute) Has(flag VertexAttribute) bool {
	return v&flag == flag
}

// String renders the attribute set as a "|"-separated list of flag names, for diagnostics.
func (v VertexAttribute) String() string {
	var parts []string
	for _, entry := range vertexAttributeNames {
		if v.Has(entry.flag) {
			parts = append(parts, entry.name)
		}
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, "|")
}

// ObjectLayout is a bit-flag set describing which per-object data a pass pushes
// for every drawn item. Flags compose with bitwise OR; the push order is fixed
// to the declaration order of the constants below.
type ObjectLayout uint32

const (
	// ObjectLayoutWorldMatrix is the object's world transform (mat4, 64 bytes).
	ObjectLayoutWorldMatrix ObjectLayout = 1 << iota

	// ObjectLayoutNormalMatrix is the object's normal matrix (mat3 stored as three
	// padded vec4 columns, 48 bytes).
	ObjectLayoutNormalMatrix

	// ObjectLayoutVertexBufferAddress is the GPU address of the object's vertex buffer (u64, 8 bytes).
	ObjectLayoutVertexBufferAddress
)

var objectLayoutNames = []struct {
	flag ObjectLayout
	name string
	size int
}{
	{ObjectLayoutWorldMatrix, "world_matrix", 64},
	{ObjectLayoutNormalMatrix, "normal_matrix", 48},
	{ObjectLayoutVertexBufferAddress, "vertex_buffer_address", 8},
}

// Has reports whether all bits of flag are set.
func (o ObjectLayout) Has(flag ObjectLayout) bool {
	return o&flag == flag
}

// Size returns the total byte size of the per-object data block selected by this layout.
func (o ObjectLayout) Size() int {
	size := 0
	for _, entry := range objectLayoutNames {
		if o.Has(entry.flag) {
			size += entry.size
		}
	}
	return size
}

// String renders the layout as a "|"-separated list of flag names, for diagnostics.
func (o ObjectLayout) String() string {
	var parts []string
	for _, entry := range objectLayoutNames {
		if o.Has(entry.flag) {
			parts = append(parts, entry.name)
		}
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, "|")
}

// SceneLayout is a bit-flag set describing which scene-level uniforms a pass binds
// before drawing. Flags compose with bitwise OR; the upload order is fixed to the
// declaration order of the constants below.
type SceneLayout uint32

const (
	// SceneLayoutCameraViewProj is the combined camera view-projection matrix (mat4, 64 bytes).
	SceneLayoutCameraViewProj SceneLayout = 1 << iota

	// SceneLayoutCameraPosition is the camera world position (vec3 padded to 16 bytes).
	SceneLayoutCameraPosition

	// SceneLayoutCameraViewport is the output viewport size in pixels (vec2, 8 bytes).
	SceneLayoutCameraViewport

	// SceneLayoutLightDirection is the normalized main light direction (vec3 padded to 16 bytes).
	SceneLayoutLightDirection

	// SceneLayoutLightColor is the main light color (vec4, 16 bytes).
	SceneLayoutLightColor

	// SceneLayoutLightAmbientColor is the ambient light color (vec4, 16 bytes).
	SceneLayoutLightAmbientColor
)

var sceneLayoutNames = []struct {
	flag SceneLayout
	name string
	size int
}{
	{SceneLayoutCameraViewProj, "camera_view_proj", 64},
	{SceneLayoutCameraPosition, "camera_position", 16},
	{SceneLayoutCameraViewport, "camera_viewport", 8},
	{SceneLayoutLightDirection, "light_direction", 16},
	{SceneLayoutLightColor, "light_color", 16},
	{SceneLayoutLightAmbientColor, "light_ambient_color", 16},
}

// Has reports whether all bits of flag are set.
func (s SceneLayout) Has(flag SceneLayout) bool {
	return s&flag == flag
}

// Size returns the total byte size of the scene uniform block selected by this layout.
func (s SceneLayout) Size() int {
	size := 0
	for _, entry := range sceneLayoutNames {
		if s.Has(entry.flag) {
			size += entry.size
		}
	}
	return size
}

// String renders the layout as a "|"-separated list of flag names, for diagnostics.
func (s SceneLayout) String() string {
	var parts []string
	for _, entry := range sceneLayoutNames {
		if s.Has(entry.flag) {
			parts = append(parts, entry.name)
		}
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, "|")
}

// BlendMode selects how a material's fragments combine with the target attachment.
type BlendMode int

const (
	// BlendModeOpaque disables blending; fragments overwrite the target.
	BlendModeOpaque BlendMode = iota

	// BlendModeAlpha enables standard source-alpha blending. Materials using this
	// mode are drawn in the transparent phase of a pass, back to front.
	BlendModeAlpha
)

// String returns the blend mode name used in configuration files.
func (b BlendMode) String() string {
	switch b {
	case BlendModeAlpha:
		return "alpha"
	default:
		return "opaque"
	}
}
