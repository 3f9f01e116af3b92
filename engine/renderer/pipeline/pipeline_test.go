package pipeline

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-primer/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const vertexSource = `
struct Globals { model: mat4x4<f32>, projection: mat4x4<f32>, light: vec4<f32>, params: vec4<f32>, };
@group(0) @binding(0) var<uniform> globals: Globals;
struct VertexInput { @location(0) position: vec3<f32>, @location(1) normal: vec3<f32>, };
struct VertexOutput { @builtin(position) clip: vec4<f32>, @location(0) shade: f32, };
@vertex
fn vs_main(in: VertexInput) -> VertexOutput {
    var out: VertexOutput;
    out.clip = globals.projection * globals.model * vec4<f32>(in.position, 1.0);
    out.shade = dot(in.normal, globals.light.xyz);
    return out;
}
`

const fragmentSource = `
struct Globals { model: mat4x4<f32>, projection: mat4x4<f32>, light: vec4<f32>, params: vec4<f32>, };
@group(0) @binding(0) var<uniform> globals: Globals;
@group(0) @binding(1) var diffuse: texture_2d<f32>;
@fragment
fn fs_main(@location(0) shade: f32) -> @location(0) vec4<f32> {
    return vec4<f32>(shade, shade, shade, 1.0) * globals.params.x;
}
`

func mustShader(t *testing.T, key string, st shader.ShaderType, src string) shader.Shader {
	t.Helper()
	s, err := shader.NewShader(key, st, src)
	require.NoError(t, err)
	return s
}

func TestNewPipelineDefaults(t *testing.T) {
	p := NewPipeline("flat")

	assert.Equal(t, "flat", p.PipelineKey())
	assert.Equal(t, DrawState{
		Cull:     wgpu.CullModeNone,
		Topology: wgpu.PrimitiveTopologyTriangleList,
	}, p.DrawState())
	assert.Nil(t, p.RenderPipeline())
	assert.ErrorIs(t, p.Validate(), ErrMissingShader)
}

func TestPipelineOptions(t *testing.T) {
	p := NewPipeline("lit",
		WithDepth(true),
		WithCullMode(wgpu.CullModeBack),
		WithTopology(wgpu.PrimitiveTopologyTriangleStrip),
	)
	assert.Equal(t, DrawState{
		DepthTest:  true,
		DepthWrite: true,
		Cull:       wgpu.CullModeBack,
		Topology:   wgpu.PrimitiveTopologyTriangleStrip,
	}, p.DrawState())

	state := NewPipeline("overlay", WithDepthReadOnly()).DrawState()
	assert.True(t, state.DepthTest)
	assert.False(t, state.DepthWrite)

	state = NewPipeline("flat", WithDepth(true), WithDepth(false)).DrawState()
	assert.False(t, state.DepthTest, "later options win")
}

func TestPipelineValidate(t *testing.T) {
	vs := mustShader(t, "lit.vs", shader.ShaderTypeVertex, vertexSource)
	fs := mustShader(t, "lit.fs", shader.ShaderTypeFragment, fragmentSource)

	p := NewPipeline("lit", WithVertexShader(vs), WithFragmentShader(fs))
	require.NoError(t, p.Validate())
	assert.Same(t, vs, p.Shader(shader.ShaderTypeVertex))
	assert.Same(t, fs, p.Shader(shader.ShaderTypeFragment))

	// a fragment source used as a vertex stage has no vertex inputs
	noInputs := mustShader(t, "fs-as-vs", shader.ShaderTypeFragment, fragmentSource)
	p = NewPipeline("broken", WithVertexShader(noInputs), WithFragmentShader(fs))
	assert.Error(t, p.Validate())
}

func TestBindGroupLayoutDescriptorsMergeVisibility(t *testing.T) {
	vs := mustShader(t, "lit.vs", shader.ShaderTypeVertex, vertexSource)
	fs := mustShader(t, "lit.fs", shader.ShaderTypeFragment, fragmentSource)
	p := NewPipeline("lit", WithVertexShader(vs), WithFragmentShader(fs))

	layouts := p.BindGroupLayoutDescriptors()
	require.Len(t, layouts, 1)
	group := layouts[0]
	assert.Equal(t, "lit group 0", group.Label)
	require.Len(t, group.Entries, 2)

	globals := group.Entries[0]
	assert.Equal(t, uint32(0), globals.Binding)
	assert.Equal(t, wgpu.ShaderStageVertex|wgpu.ShaderStageFragment, globals.Visibility)
	assert.Equal(t, uint64(160), globals.Buffer.MinBindingSize)

	texture := group.Entries[1]
	assert.Equal(t, uint32(1), texture.Binding)
	assert.Equal(t, wgpu.ShaderStageFragment, texture.Visibility)
}
