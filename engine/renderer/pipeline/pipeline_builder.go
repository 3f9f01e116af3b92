package pipeline

import (
	"github.com/Carmen-Shannon/oxy-primer/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

// PipelineBuilderOption configures a Pipeline in NewPipeline.
type PipelineBuilderOption func(*pipeline)

// WithVertexShader sets the vertex stage.
func WithVertexShader(s shader.Shader) PipelineBuilderOption {
	return func(p *pipeline) {
		p.vertexShader = s
	}
}

// WithFragmentShader sets the fragment stage.
func WithFragmentShader(s shader.Shader) PipelineBuilderOption {
	return func(p *pipeline) {
		p.fragmentShader = s
	}
}

// WithDepth turns depth testing and depth writing on or off together, the pairing 3D programs
// use.
//
// Parameters:
//   - enabled: true for depth-tested, depth-writing draws
//
// Returns:
//   - PipelineBuilderOption: option function to apply
func WithDepth(enabled bool) PipelineBuilderOption {
	return func(p *pipeline) {
		p.state.DepthTest = enabled
		p.state.DepthWrite = enabled
	}
}

// WithDepthReadOnly tests fragments against the depth buffer without writing it.
func WithDepthReadOnly() PipelineBuilderOption {
	return func(p *pipeline) {
		p.state.DepthTest = true
		p.state.DepthWrite = false
	}
}

// WithCullMode sets which faces are culled. Meshes built by the mesh package wind
// counter-clockwise.
func WithCullMode(mode wgpu.CullMode) PipelineBuilderOption {
	return func(p *pipeline) {
		p.state.Cull = mode
	}
}

// WithTopology sets how vertices assemble into primitives. It must match the topology of the
// meshes drawn with the program.
//
// Parameters:
//   - topology: the primitive topology, e.g. wgpu.PrimitiveTopologyTriangleList
//
// Returns:
//   - PipelineBuilderOption: option function to apply
func WithTopology(topology wgpu.PrimitiveTopology) PipelineBuilderOption {
	return func(p *pipeline) {
		p.state.Topology = topology
	}
}
