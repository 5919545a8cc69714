package renderer

import (
	"encoding/binary"
	"math"

	"github.com/Carmen-Shannon/framegraph-go/common"
)

// SceneData is the scene-level uniform input for one frame. Each pass binds
// the subset its scene layout selects, in flag declaration order.
type SceneData struct {
	// CameraViewProj is the combined view-projection matrix, column-major.
	CameraViewProj [16]float32

	// CameraPosition is the camera world position.
	CameraPosition [3]float32

	// Viewport is the draw extent in pixels.
	Viewport [2]float32

	// LightDirection is the normalized main light direction.
	LightDirection [3]float32

	// LightColor is the main light color.
	LightColor [4]float32

	// LightAmbientColor is the ambient light color.
	LightAmbientColor [4]float32
}

// encodeSceneData packs the layout-selected fields into the uniform block
// layout the shaders expect: vec3 fields pad to 16 bytes, the viewport is a
// packed vec2.
func encodeSceneData(scene SceneData, layout common.SceneLayout) []byte {
	out := make([]byte, 0, layout.Size())
	if layout.Has(common.SceneLayoutCameraViewProj) {
		out = appendFloats(out, scene.CameraViewProj[:]...)
	}
	if layout.Has(common.SceneLayoutCameraPosition) {
		out = appendFloats(out, scene.CameraPosition[0], scene.CameraPosition[1], scene.CameraPosition[2], 0)
	}
	if layout.Has(common.SceneLayoutCameraViewport) {
		out = appendFloats(out, scene.Viewport[0], scene.Viewport[1])
	}
	if layout.Has(common.SceneLayoutLightDirection) {
		out = appendFloats(out, scene.LightDirection[0], scene.LightDirection[1], scene.LightDirection[2], 0)
	}
	if layout.Has(common.SceneLayoutLightColor) {
		out = appendFloats(out, scene.LightColor[:]...)
	}
	if layout.Has(common.SceneLayoutLightAmbientColor) {
		out = appendFloats(out, scene.LightAmbientColor[:]...)
	}
	return out
}

// encodeObjectData packs the layout-selected per-object fields in flag
// declaration order: world matrix, normal matrix (three padded vec4 columns),
// vertex buffer address.
func encodeObjectData(item drawItem, layout common.ObjectLayout) []byte {
	out := make([]byte, 0, layout.Size())
	if layout.Has(common.ObjectLayoutWorldMatrix) {
		out = appendFloats(out, item.object.World[:]...)
	}
	if layout.Has(common.ObjectLayoutNormalMatrix) {
		out = appendFloats(out, item.normal[:]...)
	}
	if layout.Has(common.ObjectLayoutVertexBufferAddress) {
		out = binary.LittleEndian.AppendUint64(out, item.object.VertexBufferAddress)
	}
	return out
}

func appendFloats(out []byte, values ...float32) []byte {
	for _, v := range values {
		out = binary.LittleEndian.AppendUint32(out, math.Float32bits(v))
	}
	return out
}
