package variant

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-primer/common"
	"github.com/Carmen-Shannon/oxy-primer/engine/renderer"
	"github.com/Carmen-Shannon/oxy-primer/engine/renderer/pipeline"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNamesAndLookup(t *testing.T) {
	assert.Equal(t, []string{"animated", "lit", "perspective", "teapot", "textured", "triangle"}, Names())

	for _, name := range Names() {
		v, err := Lookup(name)
		require.NoError(t, err)
		assert.Equal(t, name, v.Name)
		assert.NotEmpty(t, v.Description)
	}

	_, err := Lookup("cube")
	assert.Error(t, err)
}

func TestVariantShadersMatchMeshes(t *testing.T) {
	for _, name := range Names() {
		t.Run(name, func(t *testing.T) {
			v, err := Lookup(name)
			require.NoError(t, err)

			vs, fs, err := v.Shaders()
			require.NoError(t, err)
			assert.Equal(t, "vs_main", vs.EntryPoint())
			assert.Equal(t, "fs_main", fs.EntryPoint())

			m, err := v.Mesh()
			require.NoError(t, err)
			assert.NoError(t, renderer.CheckMeshCompatible(vs, m))

			opts := append([]pipeline.PipelineBuilderOption{
				pipeline.WithVertexShader(vs),
				pipeline.WithFragmentShader(fs),
			}, v.PipelineOptions()...)
			p := pipeline.NewPipeline(name, opts...)
			require.NoError(t, p.Validate())
			assert.Equal(t, v.Depth, p.DrawState().DepthTest)
			assert.Equal(t, v.Depth, p.DrawState().DepthWrite)

			groups := p.BindGroupLayoutDescriptors()
			require.Contains(t, groups, 0)
			globals := groups[0].Entries[0]
			assert.Equal(t, uint32(0), globals.Binding)
			assert.Equal(t, common.UniformsSize, globals.Buffer.MinBindingSize)
			assert.Equal(t, "globals", vs.BindGroupVarName(0, 0))
		})
	}
}

func TestTexturedVariantBindings(t *testing.T) {
	v := Textured()
	vs, fs, err := v.Shaders()
	require.NoError(t, err)

	groups := pipeline.NewPipeline(v.Name, pipeline.WithVertexShader(vs), pipeline.WithFragmentShader(fs)).BindGroupLayoutDescriptors()
	require.Len(t, groups[0].Entries, 3)
	assert.Equal(t, wgpu.TextureSampleTypeFloat, groups[0].Entries[1].Texture.SampleType)
	assert.Equal(t, wgpu.SamplerBindingTypeFiltering, groups[0].Entries[2].Sampler.Type)

	img, err := common.DecodeImage(v.Texture)
	require.NoError(t, err)
	assert.Equal(t, uint32(8), img.Width)
	assert.Equal(t, uint32(8), img.Height)
}

func TestLitVariantsUseLightAndDepth(t *testing.T) {
	for _, v := range []Variant{Lit(), Perspective()} {
		assert.True(t, v.Depth, v.Name)
		assert.Equal(t, DefaultLightDirection, v.LightDirection, v.Name)

		_, fs, err := v.Shaders()
		require.NoError(t, err)
		groups := fs.BindGroupLayoutDescriptors()
		require.Contains(t, groups, 0, "the lit fragment stage reads the light from globals")
		assert.Equal(t, wgpu.ShaderStageFragment, groups[0].Entries[0].Visibility)
	}
	assert.False(t, Teapot().Depth)
	assert.True(t, Perspective().Projection)
	assert.False(t, Lit().Projection)
}

func TestVariantTransforms(t *testing.T) {
	assert.Equal(t, common.Identity(), Triangle().Transform(0.3))

	moved := Animated().Transform(0.25)
	assert.InDelta(t, 0.25, moved[12], 1e-6, "x translation follows time")

	perspective := Perspective().Transform(0.1)
	assert.InDelta(t, 0.01, perspective[0], 1e-6)
	assert.InDelta(t, 3.0, perspective[14], 1e-6)
	assert.Equal(t, perspective, Perspective().Transform(-0.4), "the perspective model matrix is fixed")

	lit := Lit().Transform(0)
	assert.InDelta(t, 0.01, lit[0], 1e-6)
	assert.InDelta(t, 0.5, lit[14], 1e-6)
}

func TestLoopOptionsCount(t *testing.T) {
	assert.Len(t, Lit().LoopOptions(), 4)
	assert.Len(t, Triangle().PipelineOptions(), 1)
}
