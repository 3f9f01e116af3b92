package shader

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testVertexSource = `
struct Globals {
    model: mat4x4<f32>,
    projection: mat4x4<f32>,
    light: vec4<f32>,
    params: vec4<f32>,
};

@group(0) @binding(0) var<uniform> globals: Globals;

struct VertexInput {
    @location(0) position: vec2<f32>,
    @location(1) tex_coords: vec2<f32>,
};

struct VertexOutput {
    @builtin(position) clip: vec4<f32>,
    @location(0) tex_coords: vec2<f32>,
};

// @vertex fn commented_out() {}
@vertex
fn vs_main(in: VertexInput) -> VertexOutput {
    var out: VertexOutput;
    out.clip = globals.projection * globals.model * vec4<f32>(in.position, 0.0, 1.0);
    out.tex_coords = in.tex_coords;
    return out;
}
`

const testFragmentSource = `
/* block comment with @group(3) @binding(3) var<uniform> ghost: f32; */
@group(0) @binding(1) var diffuse: texture_2d<f32>;
@group(0) @binding(2) var diffuse_sampler: sampler;

@fragment
fn fs_main(@location(0) tex_coords: vec2<f32>) -> @location(0) vec4<f32> {
    return textureSample(diffuse, diffuse_sampler, tex_coords);
}
`

func TestNewShaderVertexReflection(t *testing.T) {
	s, err := NewShader("textured.vs", ShaderTypeVertex, testVertexSource)
	require.NoError(t, err)

	assert.Equal(t, "vs_main", s.EntryPoint())
	assert.Equal(t, ShaderTypeVertex, s.ShaderType())

	layout := s.VertexLayout()
	require.NotNil(t, layout)
	assert.Equal(t, uint64(16), layout.ArrayStride)
	require.Len(t, layout.Attributes, 2)
	assert.Equal(t, wgpu.VertexFormatFloat32x2, layout.Attributes[1].Format)
	assert.Equal(t, uint64(8), layout.Attributes[1].Offset)
	assert.Equal(t, uint32(1), layout.Attributes[1].ShaderLocation)

	groups := s.BindGroupLayoutDescriptors()
	require.Contains(t, groups, 0)
	require.Len(t, groups[0].Entries, 1)
	entry := groups[0].Entries[0]
	assert.Equal(t, wgpu.BufferBindingTypeUniform, entry.Buffer.Type)
	assert.Equal(t, uint64(160), entry.Buffer.MinBindingSize)
	assert.Equal(t, wgpu.ShaderStageVertex, entry.Visibility)
	assert.Equal(t, "globals", s.BindGroupVarName(0, 0))
}

func TestNewShaderFragmentReflection(t *testing.T) {
	s, err := NewShader("textured.fs", ShaderTypeFragment, testFragmentSource)
	require.NoError(t, err)

	assert.Equal(t, "fs_main", s.EntryPoint())
	assert.Nil(t, s.VertexLayout())

	groups := s.BindGroupLayoutDescriptors()
	assert.NotContains(t, groups, 3)
	require.Len(t, groups[0].Entries, 2)
	assert.Equal(t, wgpu.TextureSampleTypeFloat, groups[0].Entries[0].Texture.SampleType)
	assert.Equal(t, wgpu.TextureViewDimension2D, groups[0].Entries[0].Texture.ViewDimension)
	assert.Equal(t, wgpu.SamplerBindingTypeFiltering, groups[0].Entries[1].Sampler.Type)

	binding, ok := s.BindGroupFromVarName(0, "diffuse_sampler")
	assert.True(t, ok)
	assert.Equal(t, 2, binding)
	_, ok = s.BindGroupFromVarName(0, "missing")
	assert.False(t, ok)
}

func TestNewShaderErrors(t *testing.T) {
	_, err := NewShader("empty", ShaderTypeVertex, "")
	assert.ErrorIs(t, err, ErrEmptySource)

	_, err = NewShader("wrong stage", ShaderTypeVertex, testFragmentSource)
	assert.ErrorIs(t, err, ErrNoEntryPoint)
}

func TestNewShaderFromPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vs.wgsl")
	require.NoError(t, os.WriteFile(path, []byte(testVertexSource), 0o600))

	s, err := NewShaderFromPath("file.vs", ShaderTypeVertex, path)
	require.NoError(t, err)
	assert.Equal(t, testVertexSource, s.Source())

	_, err = NewShaderFromPath("missing", ShaderTypeVertex, filepath.Join(t.TempDir(), "nope.wgsl"))
	assert.Error(t, err)
}

func TestResolveTypeLayout(t *testing.T) {
	known := computeStructSizes(parseStructBlocks(`
struct Outer { inner: Inner, scale: f32, };
struct Inner { a: vec3<f32>, };
`))
	assert.Equal(t, wgslTypeLayout{16, 16}, known["Inner"])
	assert.Equal(t, wgslTypeLayout{32, 16}, known["Outer"])

	arr, ok := resolveTypeLayout("array<vec3<f32>, 4>", known)
	assert.True(t, ok)
	assert.Equal(t, uint64(64), arr.size)

	_, ok = resolveTypeLayout("array<f32>", known)
	assert.False(t, ok)
}

func TestStripComments(t *testing.T) {
	src := "a // line\nb /* x /* nested */ y */ c"
	assert.Equal(t, "a \nb  c", stripComments(src))
}

func TestWGSLModuleSkipsVertexOutputs(t *testing.T) {
	m := newWGSLModule(`
struct VertexOutput { @builtin(position) clip: vec4<f32>, @location(0) uv: vec2<f32>, };
// struct Hidden { @location(0) p: vec3<f32>, };
struct VertexInput { @location(0) position: vec2<f32>, @location(1) uv: vec2<f32>, };
@vertex fn main(in: VertexInput) -> VertexOutput { var out: VertexOutput; return out; }
`)
	assert.Len(t, m.structs, 2, "commented-out structs are ignored")
	assert.Equal(t, "main", m.entryPoint(ShaderTypeVertex))
	assert.Empty(t, m.entryPoint(ShaderTypeFragment))

	layout := m.vertexLayout()
	require.NotNil(t, layout)
	assert.Equal(t, uint64(16), layout.ArrayStride)
	require.Len(t, layout.Attributes, 2)
	assert.Equal(t, uint64(8), layout.Attributes[1].Offset)
	assert.Equal(t, uint32(1), layout.Attributes[1].ShaderLocation)
}
