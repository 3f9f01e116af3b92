package pipeline

import (
	"errors"
	"fmt"
	"sort"

	"github.com/Carmen-Shannon/oxy-primer/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

// ErrMissingShader is returned by Validate when the vertex or fragment stage is not set.
var ErrMissingShader = errors.New("both vertex and fragment shaders must be set to create a render pipeline")

// DrawState is the fixed-function state a program draws with.
type DrawState struct {
	// DepthTest discards fragments that fail a less-than compare against the depth buffer.
	DepthTest bool
	// DepthWrite stores the depth of passing fragments.
	DepthWrite bool
	Cull       wgpu.CullMode
	Topology   wgpu.PrimitiveTopology
}

// pipeline is the implementation of the Pipeline interface.
type pipeline struct {
	key string

	vertexShader, fragmentShader shader.Shader
	state                        DrawState

	// set by the renderer once the GPU pipeline exists
	renderPipeline *wgpu.RenderPipeline
}

// Pipeline is a compiled program: a vertex/fragment shader pair plus the DrawState its draw
// calls run with. Color output is opaque and writes every channel.
type Pipeline interface {
	// PipelineKey returns the key the renderer registers this pipeline under.
	PipelineKey() string

	// Shader retrieves the shader for the given stage, or nil if not set.
	//
	// Parameters:
	//   - shaderType: the stage to retrieve
	//
	// Returns:
	//   - shader.Shader: the shader for the stage, or nil
	Shader(shaderType shader.ShaderType) shader.Shader

	// Validate reports whether the pipeline has everything needed for GPU creation.
	//
	// Returns:
	//   - error: ErrMissingShader if a stage is missing, or an error if the vertex shader has no vertex input layout
	Validate() error

	// BindGroupLayoutDescriptors merges the bind group layouts declared by both stages.
	// Entries declared by both stages at the same binding have their visibility ORed together.
	//
	// Returns:
	//   - map[int]wgpu.BindGroupLayoutDescriptor: the merged descriptors keyed by group index
	BindGroupLayoutDescriptors() map[int]wgpu.BindGroupLayoutDescriptor

	// DrawState returns the fixed-function state of the program.
	DrawState() DrawState

	// RenderPipeline returns the GPU render pipeline, or nil before registration.
	RenderPipeline() *wgpu.RenderPipeline

	// SetRenderPipeline stores the GPU render pipeline created by the renderer.
	SetRenderPipeline(rp *wgpu.RenderPipeline)
}

var _ Pipeline = &pipeline{}

// NewPipeline creates a render Pipeline. The default DrawState suits flat 2D programs: no depth
// test or write, no culling, triangle lists. 3D programs add WithDepth.
//
// Parameters:
//   - key: the unique key for this pipeline
//   - opts: a variadic list of PipelineBuilderOption functions to configure the pipeline
//
// Returns:
//   - Pipeline: a new Pipeline instance with the specified configuration
func NewPipeline(key string, opts ...PipelineBuilderOption) Pipeline {
	p := &pipeline{
		key: key,
		state: DrawState{
			Cull:     wgpu.CullModeNone,
			Topology: wgpu.PrimitiveTopologyTriangleList,
		},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *pipeline) PipelineKey() string {
	return p.key
}

func (p *pipeline) Shader(shaderType shader.ShaderType) shader.Shader {
	switch shaderType {
	case shader.ShaderTypeVertex:
		return p.vertexShader
	case shader.ShaderTypeFragment:
		return p.fragmentShader
	default:
		return nil
	}
}

func (p *pipeline) Validate() error {
	if p.vertexShader == nil || p.fragmentShader == nil {
		return fmt.Errorf("pipeline %q: %w", p.key, ErrMissingShader)
	}
	if p.vertexShader.VertexLayout() == nil {
		return fmt.Errorf("pipeline %q: vertex shader %q declares no vertex input struct", p.key, p.vertexShader.Key())
	}
	return nil
}

func (p *pipeline) BindGroupLayoutDescriptors() map[int]wgpu.BindGroupLayoutDescriptor {
	var vertexLayouts, fragmentLayouts map[int]wgpu.BindGroupLayoutDescriptor
	if p.vertexShader != nil {
		vertexLayouts = p.vertexShader.BindGroupLayoutDescriptors()
	}
	if p.fragmentShader != nil {
		fragmentLayouts = p.fragmentShader.BindGroupLayoutDescriptors()
	}
	return mergeBindGroupLayouts(p.key, vertexLayouts, fragmentLayouts)
}

func (p *pipeline) DrawState() DrawState {
	return p.state
}

func (p *pipeline) RenderPipeline() *wgpu.RenderPipeline {
	return p.renderPipeline
}

func (p *pipeline) SetRenderPipeline(rp *wgpu.RenderPipeline) {
	p.renderPipeline = rp
}

// mergeBindGroupLayouts merges the bind group layout descriptors of a vertex and fragment shader.
// For each group index present in either shader, entries with the same binding number have their
// Visibility flags ORed together and entries unique to one shader keep their visibility.
//
// Parameters:
//   - label: the label given to merged descriptors
//   - vertexLayouts: bind group layout descriptors from the vertex shader
//   - fragmentLayouts: bind group layout descriptors from the fragment shader
//
// Returns:
//   - map[int]wgpu.BindGroupLayoutDescriptor: the merged descriptors keyed by group index
func mergeBindGroupLayouts(label string, vertexLayouts, fragmentLayouts map[int]wgpu.BindGroupLayoutDescriptor) map[int]wgpu.BindGroupLayoutDescriptor {
	entriesByGroup := make(map[int]map[uint32]wgpu.BindGroupLayoutEntry)
	collect := func(layouts map[int]wgpu.BindGroupLayoutDescriptor) {
		for g, desc := range layouts {
			if entriesByGroup[g] == nil {
				entriesByGroup[g] = make(map[uint32]wgpu.BindGroupLayoutEntry)
			}
			for _, e := range desc.Entries {
				if existing, ok := entriesByGroup[g][e.Binding]; ok {
					existing.Visibility |= e.Visibility
					entriesByGroup[g][e.Binding] = existing
					continue
				}
				entriesByGroup[g][e.Binding] = e
			}
		}
	}
	collect(vertexLayouts)
	collect(fragmentLayouts)

	merged := make(map[int]wgpu.BindGroupLayoutDescriptor, len(entriesByGroup))
	for g, byBinding := range entriesByGroup {
		entries := make([]wgpu.BindGroupLayoutEntry, 0, len(byBinding))
		for _, e := range byBinding {
			entries = append(entries, e)
		}
		sort.Slice(entries, func(i, j int) bool {
			return entries[i].Binding < entries[j].Binding
		})
		merged[g] = wgpu.BindGroupLayoutDescriptor{
			Label:   fmt.Sprintf("%s group %d", label, g),
			Entries: entries,
		}
	}
	return merged
}
