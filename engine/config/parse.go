package config

import (
	"fmt"

	"github.com/Carmen-Shannon/framegraph-go/common"
	"github.com/Carmen-Shannon/framegraph-go/engine/graph"
	"github.com/Carmen-Shannon/framegraph-go/engine/renderer/pipeline"
	"github.com/cogentcore/webgpu/wgpu"
)

// The configuration vocabulary mirrors the String() names of the enums it
// decodes into, so a resolved graph's diagnostics read back in the same words
// the author wrote.

func parsePassType(s string) (graph.PassType, error) {
	switch s {
	case "material", "":
		return graph.PassTypeMaterial, nil
	case "present":
		return graph.PassTypePresent, nil
	default:
		return 0, fmt.Errorf("unknown pass type %q", s)
	}
}

func parseAccess(s string) (graph.AccessMode, error) {
	switch s {
	case "read":
		return graph.AccessModeRead, nil
	case "write":
		return graph.AccessModeWrite, nil
	case "readwrite":
		return graph.AccessModeReadWrite, nil
	default:
		return 0, fmt.Errorf("unknown access mode %q", s)
	}
}

func parseAttachmentKind(s string) (graph.AttachmentKind, error) {
	switch s {
	case "color":
		return graph.AttachmentKindColor, nil
	case "depth":
		return graph.AttachmentKindDepth, nil
	default:
		return 0, fmt.Errorf("unknown attachment usage %q", s)
	}
}

func parseImageLayout(s string) (graph.ImageLayout, error) {
	switch s {
	case "undefined", "":
		return graph.ImageLayoutUndefined, nil
	case "color":
		return graph.ImageLayoutColorAttachment, nil
	case "depth":
		return graph.ImageLayoutDepthAttachment, nil
	case "shader-read":
		return graph.ImageLayoutShaderReadOnly, nil
	case "transfer-src":
		return graph.ImageLayoutTransferSrc, nil
	case "transfer-dst":
		return graph.ImageLayoutTransferDst, nil
	case "present":
		return graph.ImageLayoutPresent, nil
	default:
		return 0, fmt.Errorf("unknown image layout %q", s)
	}
}

// textureFormats is the subset of formats the configuration surface names.
var textureFormats = map[string]wgpu.TextureFormat{
	"rgba8-unorm":   wgpu.TextureFormatRGBA8Unorm,
	"bgra8-unorm":   wgpu.TextureFormatBGRA8Unorm,
	"rgba16-float":  wgpu.TextureFormatRGBA16Float,
	"rgba32-float":  wgpu.TextureFormatRGBA32Float,
	"rg16-float":    wgpu.TextureFormatRG16Float,
	"r32-float":     wgpu.TextureFormatR32Float,
	"depth32-float": wgpu.TextureFormatDepth32Float,
	"depth24-plus":  wgpu.TextureFormatDepth24Plus,
}

func parseTextureFormat(s string) (wgpu.TextureFormat, error) {
	if s == "" {
		return wgpu.TextureFormatUndefined, nil
	}
	format, ok := textureFormats[s]
	if !ok {
		return wgpu.TextureFormatUndefined, fmt.Errorf("unknown texture format %q", s)
	}
	return format, nil
}

func parseObjectLayout(flags []string) (common.ObjectLayout, error) {
	var layout common.ObjectLayout
	for _, flag := range flags {
		switch flag {
		case "world_matrix":
			layout |= common.ObjectLayoutWorldMatrix
		case "normal_matrix":
			layout |= common.ObjectLayoutNormalMatrix
		case "vertex_buffer_address":
			layout |= common.ObjectLayoutVertexBufferAddress
		default:
			return 0, fmt.Errorf("unknown object layout flag %q", flag)
		}
	}
	return layout, nil
}

func parseSceneLayout(flags []string) (common.SceneLayout, error) {
	var layout common.SceneLayout
	for _, flag := range flags {
		switch flag {
		case "camera_view_proj":
			layout |= common.SceneLayoutCameraViewProj
		case "camera_position":
			layout |= common.SceneLayoutCameraPosition
		case "camera_viewport":
			layout |= common.SceneLayoutCameraViewport
		case "light_direction":
			layout |= common.SceneLayoutLightDirection
		case "light_color":
			layout |= common.SceneLayoutLightColor
		case "light_ambient_color":
			layout |= common.SceneLayoutLightAmbientColor
		default:
			return 0, fmt.Errorf("unknown scene layout flag %q", flag)
		}
	}
	return layout, nil
}

func parseVertexAttributes(flags []string) (common.VertexAttribute, error) {
	var attrs common.VertexAttribute
	for _, flag := range flags {
		switch flag {
		case "position":
			attrs |= common.VertexAttributePosition
		case "color":
			attrs |= common.VertexAttributeColor
		case "texture":
			attrs |= common.VertexAttributeTexture
		case "normal":
			attrs |= common.VertexAttributeNormal
		case "tangent":
			attrs |= common.VertexAttributeTangent
		case "bitangent":
			attrs |= common.VertexAttributeBitangent
		default:
			return 0, fmt.Errorf("unknown vertex attribute %q", flag)
		}
	}
	return attrs, nil
}

func parseBlendMode(s string) (common.BlendMode, error) {
	switch s {
	case "opaque", "":
		return common.BlendModeOpaque, nil
	case "alpha":
		return common.BlendModeAlpha, nil
	default:
		return 0, fmt.Errorf("unknown blend mode %q", s)
	}
}

// parsePolygonMode maps the fill mode onto a primitive topology: line mode
// renders wireframes as line lists.
func parsePolygonMode(s string) (wgpu.PrimitiveTopology, error) {
	switch s {
	case "fill", "":
		return wgpu.PrimitiveTopologyTriangleList, nil
	case "line":
		return wgpu.PrimitiveTopologyLineList, nil
	default:
		return 0, fmt.Errorf("unknown polygon mode %q", s)
	}
}

func parseCullMode(s string) (wgpu.CullMode, error) {
	switch s {
	case "back", "":
		return wgpu.CullModeBack, nil
	case "front":
		return wgpu.CullModeFront, nil
	case "none":
		return wgpu.CullModeNone, nil
	default:
		return 0, fmt.Errorf("unknown cull mode %q", s)
	}
}

func parseFrontFace(s string) (wgpu.FrontFace, error) {
	switch s {
	case "ccw", "":
		return wgpu.FrontFaceCCW, nil
	case "cw":
		return wgpu.FrontFaceCW, nil
	default:
		return 0, fmt.Errorf("unknown front face %q", s)
	}
}

func parseCompare(s string) (wgpu.CompareFunction, error) {
	switch s {
	case "less-equal", "":
		return wgpu.CompareFunctionLessEqual, nil
	case "less":
		return wgpu.CompareFunctionLess, nil
	case "equal":
		return wgpu.CompareFunctionEqual, nil
	case "greater":
		return wgpu.CompareFunctionGreater, nil
	case "greater-equal":
		return wgpu.CompareFunctionGreaterEqual, nil
	case "always":
		return wgpu.CompareFunctionAlways, nil
	case "never":
		return wgpu.CompareFunctionNever, nil
	default:
		return 0, fmt.Errorf("unknown compare function %q", s)
	}
}

func parseBindingGroup(s string) (pipeline.BindingGroup, error) {
	switch s {
	case "scene":
		return pipeline.BindingGroupScene, nil
	case "material", "object":
		return pipeline.BindingGroupMaterial, nil
	default:
		return 0, fmt.Errorf("unknown binding group %q", s)
	}
}

func parseBindingKind(s string) (pipeline.BindingKind, error) {
	switch s {
	case "uniform":
		return pipeline.BindingKindUniform, nil
	case "texture":
		return pipeline.BindingKindTexture, nil
	case "sampler":
		return pipeline.BindingKindSampler, nil
	default:
		return 0, fmt.Errorf("unknown descriptor type %q", s)
	}
}

// parseStages accepts a single stage name or a "|"-joined combination.
func parseStages(s string) (wgpu.ShaderStage, error) {
	var stages wgpu.ShaderStage
	start := 0
	for i := 0; i <= len(s); i++ {
		if i < len(s) && s[i] != '|' {
			continue
		}
		switch s[start:i] {
		case "vertex":
			stages |= wgpu.ShaderStageVertex
		case "fragment":
			stages |= wgpu.ShaderStageFragment
		case "":
		default:
			return 0, fmt.Errorf("unknown shader stage %q", s[start:i])
		}
		start = i + 1
	}
	if stages == 0 {
		return 0, fmt.Errorf("binding declares no shader stage")
	}
	return stages, nil
}
