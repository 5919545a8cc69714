package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Carmen-Shannon/framegraph-go/common"
	"github.com/Carmen-Shannon/framegraph-go/engine/graph"
	"github.com/Carmen-Shannon/framegraph-go/engine/renderer/material"
	"github.com/cogentcore/webgpu/wgpu"
)

const graphYAML = `
schedule: [depth, forward, present]
passes:
  depth:
    ty: material
    tag: forward
    attachments:
      depth: {access: write, clear: true}
    render_opaque: true
    object_layout: [world_matrix]
    scene_layout: [camera_view_proj]
  forward:
    ty: material
    tag: forward
    attachments:
      draw: {access: write, clear: true}
      depth: {access: read}
    render_opaque: true
    render_transparent: true
    object_layout: [world_matrix, normal_matrix]
    scene_layout: [camera_view_proj, camera_position, light_direction, light_color]
  present:
    ty: present
    target: draw
attachments:
  draw: {usage: color, format: rgba16-float, layout: color}
  depth: {usage: depth, format: depth32-float, layout: depth}
render_scaling: 0.5
`

func TestParseGraph(t *testing.T) {
	desc, err := NewLoader().ParseGraph([]byte(graphYAML))
	if err != nil {
		t.Fatalf("ParseGraph returned error: %v", err)
	}

	if len(desc.Schedule) != 3 || desc.Schedule[0] != "depth" {
		t.Errorf("unexpected schedule: %v", desc.Schedule)
	}
	if desc.Scale != 0.5 {
		t.Errorf("expected render scaling 0.5, got %v", desc.Scale)
	}
	if len(desc.Passes) != 3 {
		t.Fatalf("expected 3 passes, got %d", len(desc.Passes))
	}
	if len(desc.Attachments) != 2 {
		t.Fatalf("expected 2 attachments, got %d", len(desc.Attachments))
	}

	var forward graph.PassDescriptor
	for _, p := range desc.Passes {
		if p.Name == "forward" {
			forward = p
		}
	}
	if forward.Type != graph.PassTypeMaterial || forward.Tag != "forward" {
		t.Errorf("unexpected forward pass header: type=%s tag=%q", forward.Type, forward.Tag)
	}
	if !forward.RenderOpaque || !forward.RenderTransparent {
		t.Error("expected both render phases enabled on forward pass")
	}
	if forward.ObjectLayout != common.ObjectLayoutWorldMatrix|common.ObjectLayoutNormalMatrix {
		t.Errorf("unexpected object layout: %s", forward.ObjectLayout)
	}
	wantScene := common.SceneLayoutCameraViewProj | common.SceneLayoutCameraPosition |
		common.SceneLayoutLightDirection | common.SceneLayoutLightColor
	if forward.SceneLayout != wantScene {
		t.Errorf("unexpected scene layout: %s", forward.SceneLayout)
	}

	// Declaration order of pass accesses must survive decoding: the color
	// write comes before the depth read.
	if len(forward.Accesses) != 2 {
		t.Fatalf("expected 2 accesses, got %d", len(forward.Accesses))
	}
	if forward.Accesses[0].Attachment != "draw" || forward.Accesses[0].Access != graph.AccessModeWrite || !forward.Accesses[0].Clear {
		t.Errorf("unexpected first access: %+v", forward.Accesses[0])
	}
	if forward.Accesses[1].Attachment != "depth" || forward.Accesses[1].Access != graph.AccessModeRead || forward.Accesses[1].Clear {
		t.Errorf("unexpected second access: %+v", forward.Accesses[1])
	}

	for _, att := range desc.Attachments {
		switch att.Name {
		case "draw":
			if att.Kind != graph.AttachmentKindColor || att.Format != wgpu.TextureFormatRGBA16Float || att.Layout != graph.ImageLayoutColorAttachment {
				t.Errorf("unexpected draw attachment: %+v", att)
			}
		case "depth":
			if att.Kind != graph.AttachmentKindDepth || att.Format != wgpu.TextureFormatDepth32Float {
				t.Errorf("unexpected depth attachment: %+v", att)
			}
		}
	}

	// The decoded document must resolve as-is.
	if _, err := graph.NewGraphResolver().Resolve(desc); err != nil {
		t.Errorf("decoded graph failed to resolve: %v", err)
	}
}

func TestParseGraphErrors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{
			name: "unknown access mode",
			yaml: "passes:\n  p:\n    attachments:\n      a: {access: mutate}\n",
			want: `unknown access mode "mutate"`,
		},
		{
			name: "unknown pass type",
			yaml: "passes:\n  p:\n    ty: compute\n",
			want: `unknown pass type "compute"`,
		},
		{
			name: "unknown object layout flag",
			yaml: "passes:\n  p:\n    object_layout: [model_matrix]\n",
			want: `unknown object layout flag "model_matrix"`,
		},
		{
			name: "unknown format",
			yaml: "attachments:\n  a: {usage: color, format: rgba4-unorm}\n",
			want: `unknown texture format "rgba4-unorm"`,
		},
		{
			name: "unknown usage",
			yaml: "attachments:\n  a: {usage: stencil}\n",
			want: `unknown attachment usage "stencil"`,
		},
	}

	loader := NewLoader()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := loader.ParseGraph([]byte(tt.yaml))
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}

// writeShaders creates placeholder shader sources and returns their directory.
func writeShaders(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"wire.vert.wgsl": "@vertex fn vs_main() {}",
		"wire.frag.wgsl": "@fragment fn fs_main() {}",
		"lit.vert.wgsl":  "@vertex fn main() {}",
		"lit.frag.wgsl":  "@fragment fn main() {}",
	}
	for name, src := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(src), 0o644); err != nil {
			t.Fatalf("failed to write shader %s: %v", name, err)
		}
	}
	return dir
}

func TestParsePipelines(t *testing.T) {
	doc := `
pipelines:
  wireframe:
    vertex_shader: {file: wire.vert.wgsl, entry: vs_main}
    fragment_shader: {file: wire.frag.wgsl, entry: fs_main}
    vertex_attributes: [position, color]
    bindings:
      - {group: scene, stage: vertex|fragment, descriptor_type: uniform}
    polygon_mode: line
    cull_mode: none
    front_face: ccw
    attachments: {color_format: rgba16-float, depth_format: depth32-float}
    depth_test: {enable: true, write_enable: false, compare: less-equal}
`
	loader := NewLoader(WithShaderDir(writeShaders(t)))
	pipelines, err := loader.ParsePipelines([]byte(doc))
	if err != nil {
		t.Fatalf("ParsePipelines returned error: %v", err)
	}
	if len(pipelines) != 1 || pipelines[0].Name != "wireframe" {
		t.Fatalf("expected one pipeline named wireframe, got %+v", pipelines)
	}

	desc := pipelines[0].Descriptor
	if desc.VertexShader().EntryPoint() != "vs_main" {
		t.Errorf("expected vertex entry vs_main, got %q", desc.VertexShader().EntryPoint())
	}
	if desc.Attributes() != common.VertexAttributePosition|common.VertexAttributeColor {
		t.Errorf("unexpected attributes: %s", desc.Attributes())
	}
	if len(desc.Bindings()) != 1 {
		t.Errorf("expected 1 binding, got %d", len(desc.Bindings()))
	}
	if desc.Topology() != wgpu.PrimitiveTopologyLineList {
		t.Errorf("expected line list topology for line polygon mode, got %v", desc.Topology())
	}
	if desc.CullMode() != wgpu.CullModeNone {
		t.Errorf("unexpected cull mode: %v", desc.CullMode())
	}
	if desc.ColorFormat() != wgpu.TextureFormatRGBA16Float || desc.DepthFormat() != wgpu.TextureFormatDepth32Float {
		t.Errorf("unexpected target formats: %v / %v", desc.ColorFormat(), desc.DepthFormat())
	}
	dt := desc.DepthTest()
	if !dt.Enable || dt.WriteEnable || dt.Compare != wgpu.CompareFunctionLessEqual {
		t.Errorf("unexpected depth test: %+v", dt)
	}
}

func TestParsePipelinesMissingShader(t *testing.T) {
	doc := `
pipelines:
  broken:
    vertex_shader: {file: missing.wgsl}
    fragment_shader: {file: missing.wgsl}
`
	_, err := NewLoader(WithShaderDir(t.TempDir())).ParsePipelines([]byte(doc))
	if err == nil {
		t.Fatal("expected error for missing shader file, got nil")
	}
	if !strings.Contains(err.Error(), `pipeline "broken"`) {
		t.Errorf("expected error naming the pipeline, got %v", err)
	}
}

func TestParseMaterials(t *testing.T) {
	doc := `
default:
  object_layout: [world_matrix]
materials:
  lit:
    vertex_shader: {file: lit.vert.wgsl}
    fragment_shader: {file: lit.frag.wgsl}
    vertex_attributes: [position, normal, texture]
    properties:
      albedo: texture
      tint: uniform
  glass:
    vertex_shader: {file: lit.vert.wgsl}
    fragment_shader: {file: lit.frag.wgsl}
    vertex_attributes: [position]
    blend_mode: alpha
    object_layout: [world_matrix, vertex_buffer_address]
`
	loader := NewLoader(WithShaderDir(writeShaders(t)))
	set, err := loader.ParseMaterials([]byte(doc))
	if err != nil {
		t.Fatalf("ParseMaterials returned error: %v", err)
	}

	if set.DefaultObjectLayout != common.ObjectLayoutWorldMatrix {
		t.Errorf("unexpected default layout: %s", set.DefaultObjectLayout)
	}
	if len(set.Materials) != 2 {
		t.Fatalf("expected 2 materials, got %d", len(set.Materials))
	}

	byName := make(map[string]material.Descriptor)
	for _, m := range set.Materials {
		byName[m.Name()] = m
	}

	lit := byName["lit"]
	if lit.Attributes() != common.VertexAttributePosition|common.VertexAttributeNormal|common.VertexAttributeTexture {
		t.Errorf("unexpected lit attributes: %s", lit.Attributes())
	}
	if lit.BlendMode() != common.BlendModeOpaque {
		t.Errorf("expected lit to default to opaque, got %s", lit.BlendMode())
	}
	if _, declared := lit.ObjectLayout(); declared {
		t.Error("expected lit to inherit the default object layout")
	}
	props := lit.Properties()
	if len(props) != 2 || props[0].Name != "albedo" || props[0].Kind != material.PropertyKindTexture {
		t.Errorf("unexpected lit properties: %+v", props)
	}
	if props[1].Name != "tint" || props[1].Kind != material.PropertyKindUniform {
		t.Errorf("unexpected second property: %+v", props[1])
	}

	glass := byName["glass"]
	if glass.BlendMode() != common.BlendModeAlpha {
		t.Errorf("expected glass alpha blend, got %s", glass.BlendMode())
	}
	layout, declared := glass.ObjectLayout()
	if !declared || layout != common.ObjectLayoutWorldMatrix|common.ObjectLayoutVertexBufferAddress {
		t.Errorf("unexpected glass layout: declared=%t %s", declared, layout)
	}
}

func TestParseMaterialsUnknownPropertyKind(t *testing.T) {
	doc := `
materials:
  bad:
    vertex_shader: {file: lit.vert.wgsl}
    fragment_shader: {file: lit.frag.wgsl}
    properties:
      albedo: storage
`
	_, err := NewLoader(WithShaderDir(writeShaders(t))).ParseMaterials([]byte(doc))
	if err == nil {
		t.Fatal("expected error for unknown property kind, got nil")
	}
	if !strings.Contains(err.Error(), `unknown kind "storage"`) {
		t.Errorf("expected property kind error, got %v", err)
	}
}
