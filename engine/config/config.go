// package config decodes the declarative YAML documents (graph, pipelines,
// materials) into the descriptor types the resolver and registries consume.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/Carmen-Shannon/framegraph-go/common"
	"github.com/Carmen-Shannon/framegraph-go/engine/graph"
	"github.com/Carmen-Shannon/framegraph-go/engine/renderer/material"
	"github.com/Carmen-Shannon/framegraph-go/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/framegraph-go/engine/renderer/shader"
	"gopkg.in/yaml.v3"
)

// NamedPipeline is one entry of the pipelines document: a fixed pipeline
// registered under the name passes reference it by.
type NamedPipeline struct {
	// Name is the key passes use in their pipeline field.
	Name string

	// Descriptor is the decoded pipeline configuration.
	Descriptor pipeline.Descriptor
}

// MaterialSet is the decoded materials document.
type MaterialSet struct {
	// DefaultObjectLayout is the fallback layout from the document's default
	// section, applied when a material omits its own. Zero when the document
	// declares no default.
	DefaultObjectLayout common.ObjectLayout

	// Materials holds the decoded material descriptors in declaration order.
	Materials []material.Descriptor
}

// loader is the implementation of the Loader interface.
type loader struct {
	// shaderDir is the directory shader file references resolve against.
	shaderDir string
}

// Loader decodes configuration documents. Documents reference shader sources
// by file name; the loader reads them relative to its configured shader
// directory.
type Loader interface {
	// LoadGraph reads and decodes a graph document from disk.
	//
	// Parameters:
	//   - path: the document path
	//
	// Returns:
	//   - graph.Descriptor: the decoded graph model, ready for resolution
	//   - error: the read or decode failure, nil on success
	LoadGraph(path string) (graph.Descriptor, error)

	// ParseGraph decodes a graph document from memory.
	//
	// Parameters:
	//   - data: the raw YAML document
	//
	// Returns:
	//   - graph.Descriptor: the decoded graph model, ready for resolution
	//   - error: the decode failure, nil on success
	ParseGraph(data []byte) (graph.Descriptor, error)

	// LoadPipelines reads and decodes a pipelines document from disk,
	// loading the shader sources it references.
	//
	// Parameters:
	//   - path: the document path
	//
	// Returns:
	//   - []NamedPipeline: the decoded pipelines in declaration order
	//   - error: the read, decode or shader load failure, nil on success
	LoadPipelines(path string) ([]NamedPipeline, error)

	// ParsePipelines decodes a pipelines document from memory, loading the
	// shader sources it references.
	//
	// Parameters:
	//   - data: the raw YAML document
	//
	// Returns:
	//   - []NamedPipeline: the decoded pipelines in declaration order
	//   - error: the decode or shader load failure, nil on success
	ParsePipelines(data []byte) ([]NamedPipeline, error)

	// LoadMaterials reads and decodes a materials document from disk,
	// loading the shader sources it references.
	//
	// Parameters:
	//   - path: the document path
	//
	// Returns:
	//   - MaterialSet: the decoded materials and document defaults
	//   - error: the read, decode or shader load failure, nil on success
	LoadMaterials(path string) (MaterialSet, error)

	// ParseMaterials decodes a materials document from memory, loading the
	// shader sources it references.
	//
	// Parameters:
	//   - data: the raw YAML document
	//
	// Returns:
	//   - MaterialSet: the decoded materials and document defaults
	//   - error: the decode or shader load failure, nil on success
	ParseMaterials(data []byte) (MaterialSet, error)
}

var _ Loader = &loader{}

// NewLoader is the entry point to create a new configuration Loader.
//
// Parameters:
//   - opts: a variadic list of LoaderBuilderOption functions to configure the loader
//
// Returns:
//   - Loader: a new Loader instance
func NewLoader(opts ...LoaderBuilderOption) Loader {
	l := &loader{shaderDir: "."}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Document shapes. Pass and attachment sets decode through yaml.Node so the
// author's declaration order survives into the descriptor slices; plain Go
// maps would shuffle it.

type graphDocument struct {
	Schedule      []string  `yaml:"schedule"`
	Passes        yaml.Node `yaml:"passes"`
	Attachments   yaml.Node `yaml:"attachments"`
	RenderScaling float32   `yaml:"render_scaling"`
}

type passDocument struct {
	Type              string    `yaml:"ty"`
	Tag               string    `yaml:"tag"`
	Pipeline          string    `yaml:"pipeline"`
	Attachments       yaml.Node `yaml:"attachments"`
	RenderOpaque      bool      `yaml:"render_opaque"`
	RenderTransparent bool      `yaml:"render_transparent"`
	ObjectLayout      []string  `yaml:"object_layout"`
	SceneLayout       []string  `yaml:"scene_layout"`
	Target            string    `yaml:"target"`
}

type accessDocument struct {
	Access string `yaml:"access"`
	Clear  bool   `yaml:"clear"`
}

type extentDocument struct {
	Width  uint32 `yaml:"width"`
	Height uint32 `yaml:"height"`
}

type attachmentDocument struct {
	Usage     string          `yaml:"usage"`
	Format    string          `yaml:"format"`
	Layout    string          `yaml:"layout"`
	Extent    *extentDocument `yaml:"extent"`
	External  bool            `yaml:"external"`
	Transient bool            `yaml:"transient"`
}

type shaderDocument struct {
	File  string `yaml:"file"`
	Entry string `yaml:"entry"`
}

type bindingDocument struct {
	Group          string `yaml:"group"`
	Stage          string `yaml:"stage"`
	DescriptorType string `yaml:"descriptor_type"`
}

type depthTestDocument struct {
	Enable      bool   `yaml:"enable"`
	WriteEnable *bool  `yaml:"write_enable"`
	Compare     string `yaml:"compare"`
}

type pipelineTargetsDocument struct {
	ColorFormat string `yaml:"color_format"`
	DepthFormat string `yaml:"depth_format"`
}

type pipelinesDocument struct {
	Pipelines yaml.Node `yaml:"pipelines"`
}

type pipelineDocument struct {
	VertexShader     shaderDocument          `yaml:"vertex_shader"`
	FragmentShader   shaderDocument          `yaml:"fragment_shader"`
	VertexAttributes []string                `yaml:"vertex_attributes"`
	Bindings         []bindingDocument       `yaml:"bindings"`
	PolygonMode      string                  `yaml:"polygon_mode"`
	CullMode         string                  `yaml:"cull_mode"`
	FrontFace        string                  `yaml:"front_face"`
	Attachments      pipelineTargetsDocument `yaml:"attachments"`
	DepthTest        *depthTestDocument      `yaml:"depth_test"`
}

type materialsDocument struct {
	Default *struct {
		ObjectLayout []string `yaml:"object_layout"`
	} `yaml:"default"`
	Materials yaml.Node `yaml:"materials"`
}

type materialDocument struct {
	VertexShader     shaderDocument `yaml:"vertex_shader"`
	FragmentShader   shaderDocument `yaml:"fragment_shader"`
	VertexAttributes []string       `yaml:"vertex_attributes"`
	BlendMode        string         `yaml:"blend_mode"`
	ObjectLayout     []string       `yaml:"object_layout"`
	Properties       yaml.Node      `yaml:"properties"`
}

// eachMapping visits a YAML mapping node's entries in document order. An
// absent node visits nothing.
func eachMapping(node yaml.Node, visit func(name string, value *yaml.Node) error) error {
	if node.Kind == 0 {
		return nil
	}
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("expected a mapping at line %d", node.Line)
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		if err := visit(node.Content[i].Value, node.Content[i+1]); err != nil {
			return err
		}
	}
	return nil
}

func (l *loader) LoadGraph(path string) (graph.Descriptor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return graph.Descriptor{}, fmt.Errorf("failed to read graph config %q: %w", path, err)
	}
	return l.ParseGraph(data)
}

func (l *loader) ParseGraph(data []byte) (graph.Descriptor, error) {
	var doc graphDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return graph.Descriptor{}, fmt.Errorf("failed to decode graph config: %w", err)
	}

	desc := graph.Descriptor{
		Schedule: doc.Schedule,
		Scale:    doc.RenderScaling,
	}

	err := eachMapping(doc.Passes, func(name string, value *yaml.Node) error {
		pass, err := decodePass(name, value)
		if err != nil {
			return fmt.Errorf("pass %q: %w", name, err)
		}
		desc.Passes = append(desc.Passes, pass)
		return nil
	})
	if err != nil {
		return graph.Descriptor{}, err
	}

	err = eachMapping(doc.Attachments, func(name string, value *yaml.Node) error {
		att, err := decodeAttachment(name, value)
		if err != nil {
			return fmt.Errorf("attachment %q: %w", name, err)
		}
		desc.Attachments = append(desc.Attachments, att)
		return nil
	})
	if err != nil {
		return graph.Descriptor{}, err
	}

	return desc, nil
}

func decodePass(name string, node *yaml.Node) (graph.PassDescriptor, error) {
	var doc passDocument
	if err := node.Decode(&doc); err != nil {
		return graph.PassDescriptor{}, err
	}

	passType, err := parsePassType(doc.Type)
	if err != nil {
		return graph.PassDescriptor{}, err
	}
	objectLayout, err := parseObjectLayout(doc.ObjectLayout)
	if err != nil {
		return graph.PassDescriptor{}, err
	}
	sceneLayout, err := parseSceneLayout(doc.SceneLayout)
	if err != nil {
		return graph.PassDescriptor{}, err
	}

	pass := graph.PassDescriptor{
		Name:              name,
		Type:              passType,
		Tag:               doc.Tag,
		Pipeline:          doc.Pipeline,
		RenderOpaque:      doc.RenderOpaque,
		RenderTransparent: doc.RenderTransparent,
		ObjectLayout:      objectLayout,
		SceneLayout:       sceneLayout,
		Target:            doc.Target,
	}

	err = eachMapping(doc.Attachments, func(attName string, value *yaml.Node) error {
		var acc accessDocument
		if err := value.Decode(&acc); err != nil {
			return fmt.Errorf("attachment %q: %w", attName, err)
		}
		access, err := parseAccess(acc.Access)
		if err != nil {
			return fmt.Errorf("attachment %q: %w", attName, err)
		}
		pass.Accesses = append(pass.Accesses, graph.AccessDeclaration{
			Attachment: attName,
			Access:     access,
			Clear:      acc.Clear,
		})
		return nil
	})
	if err != nil {
		return graph.PassDescriptor{}, err
	}

	return pass, nil
}

func decodeAttachment(name string, node *yaml.Node) (graph.AttachmentDescriptor, error) {
	var doc attachmentDocument
	if err := node.Decode(&doc); err != nil {
		return graph.AttachmentDescriptor{}, err
	}

	kind, err := parseAttachmentKind(doc.Usage)
	if err != nil {
		return graph.AttachmentDescriptor{}, err
	}
	format, err := parseTextureFormat(doc.Format)
	if err != nil {
		return graph.AttachmentDescriptor{}, err
	}
	layout, err := parseImageLayout(doc.Layout)
	if err != nil {
		return graph.AttachmentDescriptor{}, err
	}

	att := graph.AttachmentDescriptor{
		Name:      name,
		Kind:      kind,
		Format:    format,
		Layout:    layout,
		External:  doc.External,
		Transient: doc.Transient,
	}
	if doc.Extent != nil {
		att.Extent = common.Extent2D{Width: doc.Extent.Width, Height: doc.Extent.Height}
	}
	return att, nil
}

func (l *loader) LoadPipelines(path string) ([]NamedPipeline, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read pipelines config %q: %w", path, err)
	}
	return l.ParsePipelines(data)
}

func (l *loader) ParsePipelines(data []byte) ([]NamedPipeline, error) {
	var doc pipelinesDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode pipelines config: %w", err)
	}

	var pipelines []NamedPipeline
	err := eachMapping(doc.Pipelines, func(name string, value *yaml.Node) error {
		desc, err := l.decodePipeline(value)
		if err != nil {
			return fmt.Errorf("pipeline %q: %w", name, err)
		}
		pipelines = append(pipelines, NamedPipeline{Name: name, Descriptor: desc})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return pipelines, nil
}

func (l *loader) decodePipeline(node *yaml.Node) (pipeline.Descriptor, error) {
	var doc pipelineDocument
	if err := node.Decode(&doc); err != nil {
		return pipeline.Descriptor{}, err
	}

	vs, err := l.loadShader(doc.VertexShader, shader.ShaderTypeVertex)
	if err != nil {
		return pipeline.Descriptor{}, err
	}
	fs, err := l.loadShader(doc.FragmentShader, shader.ShaderTypeFragment)
	if err != nil {
		return pipeline.Descriptor{}, err
	}

	attrs, err := parseVertexAttributes(doc.VertexAttributes)
	if err != nil {
		return pipeline.Descriptor{}, err
	}
	topology, err := parsePolygonMode(doc.PolygonMode)
	if err != nil {
		return pipeline.Descriptor{}, err
	}
	cullMode, err := parseCullMode(doc.CullMode)
	if err != nil {
		return pipeline.Descriptor{}, err
	}
	frontFace, err := parseFrontFace(doc.FrontFace)
	if err != nil {
		return pipeline.Descriptor{}, err
	}
	colorFormat, err := parseTextureFormat(doc.Attachments.ColorFormat)
	if err != nil {
		return pipeline.Descriptor{}, err
	}
	depthFormat, err := parseTextureFormat(doc.Attachments.DepthFormat)
	if err != nil {
		return pipeline.Descriptor{}, err
	}

	var bindings []pipeline.Binding
	for i, b := range doc.Bindings {
		group, err := parseBindingGroup(b.Group)
		if err != nil {
			return pipeline.Descriptor{}, fmt.Errorf("binding %d: %w", i, err)
		}
		stages, err := parseStages(b.Stage)
		if err != nil {
			return pipeline.Descriptor{}, fmt.Errorf("binding %d: %w", i, err)
		}
		kind, err := parseBindingKind(b.DescriptorType)
		if err != nil {
			return pipeline.Descriptor{}, fmt.Errorf("binding %d: %w", i, err)
		}
		bindings = append(bindings, pipeline.Binding{Group: group, Stages: stages, Kind: kind})
	}

	opts := []pipeline.DescriptorBuilderOption{
		pipeline.WithAttributes(attrs),
		pipeline.WithBindings(bindings...),
		pipeline.WithTopology(topology),
		pipeline.WithCullMode(cullMode),
		pipeline.WithFrontFace(frontFace),
		pipeline.WithColorFormat(colorFormat),
		pipeline.WithDepthFormat(depthFormat),
	}
	if doc.DepthTest != nil {
		compare, err := parseCompare(doc.DepthTest.Compare)
		if err != nil {
			return pipeline.Descriptor{}, err
		}
		writeEnable := doc.DepthTest.Enable
		if doc.DepthTest.WriteEnable != nil {
			writeEnable = *doc.DepthTest.WriteEnable
		}
		opts = append(opts, pipeline.WithDepthTest(pipeline.DepthTest{
			Enable:      doc.DepthTest.Enable,
			WriteEnable: writeEnable,
			Compare:     compare,
		}))
	}

	return pipeline.NewDescriptor(vs, fs, opts...), nil
}

func (l *loader) LoadMaterials(path string) (MaterialSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return MaterialSet{}, fmt.Errorf("failed to read materials config %q: %w", path, err)
	}
	return l.ParseMaterials(data)
}

func (l *loader) ParseMaterials(data []byte) (MaterialSet, error) {
	var doc materialsDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return MaterialSet{}, fmt.Errorf("failed to decode materials config: %w", err)
	}

	var set MaterialSet
	if doc.Default != nil {
		layout, err := parseObjectLayout(doc.Default.ObjectLayout)
		if err != nil {
			return MaterialSet{}, fmt.Errorf("default object layout: %w", err)
		}
		set.DefaultObjectLayout = layout
	}

	err := eachMapping(doc.Materials, func(name string, value *yaml.Node) error {
		desc, err := l.decodeMaterial(name, value)
		if err != nil {
			return fmt.Errorf("material %q: %w", name, err)
		}
		set.Materials = append(set.Materials, desc)
		return nil
	})
	if err != nil {
		return MaterialSet{}, err
	}
	return set, nil
}

func (l *loader) decodeMaterial(name string, node *yaml.Node) (material.Descriptor, error) {
	var doc materialDocument
	if err := node.Decode(&doc); err != nil {
		return nil, err
	}

	vs, err := l.loadShader(doc.VertexShader, shader.ShaderTypeVertex)
	if err != nil {
		return nil, err
	}
	fs, err := l.loadShader(doc.FragmentShader, shader.ShaderTypeFragment)
	if err != nil {
		return nil, err
	}
	attrs, err := parseVertexAttributes(doc.VertexAttributes)
	if err != nil {
		return nil, err
	}
	blend, err := parseBlendMode(doc.BlendMode)
	if err != nil {
		return nil, err
	}

	opts := []material.DescriptorBuilderOption{
		material.WithAttributes(attrs),
		material.WithBlendMode(blend),
	}
	if len(doc.ObjectLayout) > 0 {
		layout, err := parseObjectLayout(doc.ObjectLayout)
		if err != nil {
			return nil, err
		}
		opts = append(opts, material.WithObjectLayout(layout))
	}

	var properties []material.Property
	err = eachMapping(doc.Properties, func(propName string, value *yaml.Node) error {
		var kind string
		if err := value.Decode(&kind); err != nil {
			return fmt.Errorf("property %q: %w", propName, err)
		}
		switch kind {
		case "texture":
			properties = append(properties, material.Property{Name: propName, Kind: material.PropertyKindTexture})
		case "uniform":
			properties = append(properties, material.Property{Name: propName, Kind: material.PropertyKindUniform})
		default:
			return fmt.Errorf("property %q: unknown kind %q", propName, kind)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(properties) > 0 {
		opts = append(opts, material.WithProperties(properties...))
	}

	return material.NewDescriptor(name, vs, fs, opts...), nil
}

// loadShader reads a referenced shader source relative to the loader's
// shader directory.
func (l *loader) loadShader(doc shaderDocument, shaderType shader.ShaderType) (shader.Shader, error) {
	if doc.File == "" {
		return nil, fmt.Errorf("missing %s shader file", shaderType)
	}
	return shader.Load(filepath.Join(l.shaderDir, doc.File), shaderType, doc.Entry)
}
