package renderer

import (
	"errors"
	"testing"

	"github.com/Carmen-Shannon/oxy-primer/common"
	"github.com/Carmen-Shannon/oxy-primer/engine/frame"
	"github.com/Carmen-Shannon/oxy-primer/engine/mesh"
	"github.com/Carmen-Shannon/oxy-primer/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-primer/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-primer/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const texturedVS = `
struct Globals { model: mat4x4<f32>, projection: mat4x4<f32>, light: vec4<f32>, params: vec4<f32>, };
@group(0) @binding(0) var<uniform> globals: Globals;
struct VertexInput { @location(0) position: vec2<f32>, @location(1) tex_coords: vec2<f32>, };
struct VertexOutput { @builtin(position) clip: vec4<f32>, @location(0) tex_coords: vec2<f32>, };
@vertex
fn vs_main(in: VertexInput) -> VertexOutput {
    var out: VertexOutput;
    out.clip = globals.projection * globals.model * vec4<f32>(in.position, 0.0, 1.0);
    out.tex_coords = in.tex_coords;
    return out;
}
`

const texturedFS = `
@group(0) @binding(1) var diffuse: texture_2d<f32>;
@group(0) @binding(2) var diffuse_sampler: sampler;
@fragment
fn fs_main(@location(0) tex_coords: vec2<f32>) -> @location(0) vec4<f32> {
    return textureSample(diffuse, diffuse_sampler, tex_coords);
}
`

const flatFS = `
@fragment
fn fs_main() -> @location(0) vec4<f32> {
    return vec4<f32>(1.0, 0.0, 0.0, 1.0);
}
`

// fakeBackend records the calls the renderer makes, standing in for a GPU.
type fakeBackend struct {
	calls       []string
	configured  [][2]int
	writes      []bind_group_provider.BufferWrite
	clearColor  common.Color
	clearDepth  bool
	registerErr error
	beginErr    error
}

var _ RendererBackend = &fakeBackend{}

func (f *fakeBackend) ConfigureSurface(width, height int) error {
	f.configured = append(f.configured, [2]int{width, height})
	return nil
}

func (f *fakeBackend) SetPresentMode(PresentMode) {}

func (f *fakeBackend) RegisterRenderPipeline(pipeline.Pipeline, map[int]bind_group_provider.BindGroupProvider) error {
	f.calls = append(f.calls, "register")
	return f.registerErr
}

func (f *fakeBackend) InitMeshBuffers(provider bind_group_provider.BindGroupProvider, _, indexData []byte, vertexCount, indexCount int) error {
	f.calls = append(f.calls, "mesh")
	if len(indexData) == 0 {
		indexCount = 0
	}
	provider.SetGeometry(&wgpu.Buffer{}, nil, vertexCount, indexCount)
	return nil
}

func (f *fakeBackend) InitBindGroup(provider bind_group_provider.BindGroupProvider, _ wgpu.BindGroupLayoutDescriptor) error {
	f.calls = append(f.calls, "bindgroup")
	provider.SetBindGroup(&wgpu.BindGroup{})
	return nil
}

func (f *fakeBackend) InitTextureView(bind_group_provider.BindGroupProvider, int, common.TextureStagingData) error {
	f.calls = append(f.calls, "texture")
	return nil
}

func (f *fakeBackend) InitSampler(bind_group_provider.BindGroupProvider, int, common.SamplerStagingData) error {
	f.calls = append(f.calls, "sampler")
	return nil
}

func (f *fakeBackend) WriteBuffers(writes []bind_group_provider.BufferWrite) {
	f.calls = append(f.calls, "write")
	f.writes = append(f.writes, writes...)
}

func (f *fakeBackend) BeginFrame() error {
	f.calls = append(f.calls, "begin")
	return f.beginErr
}

func (f *fakeBackend) BeginPass(color common.Color, clearDepth bool) {
	f.calls = append(f.calls, "pass")
	f.clearColor = color
	f.clearDepth = clearDepth
}

func (f *fakeBackend) DrawCall(pipeline.Pipeline, bind_group_provider.BindGroupProvider, map[int]bind_group_provider.BindGroupProvider) {
	f.calls = append(f.calls, "draw")
}

func (f *fakeBackend) EndFrame() error {
	f.calls = append(f.calls, "end")
	return nil
}

func (f *fakeBackend) Present() {
	f.calls = append(f.calls, "present")
}

func (f *fakeBackend) Release() {}

func newTestRenderer(t *testing.T, backend *fakeBackend, options ...RendererBuilderOption) *renderer {
	t.Helper()
	r := newRenderer(options...)
	require.NoError(t, r.attach(backend, 640, 480))
	return r
}

func texturedQuad() mesh.Mesh {
	return mesh.NewMesh("quad", []mesh.TexturedVertex{
		{Position: [2]float32{-0.5, -0.5}, TexCoords: [2]float32{0, 0}},
		{Position: [2]float32{0.5, -0.5}, TexCoords: [2]float32{1, 0}},
		{Position: [2]float32{0.5, 0.5}, TexCoords: [2]float32{1, 1}},
		{Position: [2]float32{-0.5, 0.5}, TexCoords: [2]float32{0, 1}},
	}, mesh.WithIndices([]uint32{0, 1, 2, 0, 2, 3}))
}

func compileTextured(t *testing.T, r *renderer) pipeline.Pipeline {
	t.Helper()
	vs, err := shader.NewShader("textured.vs", shader.ShaderTypeVertex, texturedVS)
	require.NoError(t, err)
	fs, err := shader.NewShader("textured.fs", shader.ShaderTypeFragment, texturedFS)
	require.NoError(t, err)
	p, err := r.CompileProgram("textured", vs, fs)
	require.NoError(t, err)
	return p
}

func TestAttachClampsViewport(t *testing.T) {
	backend := &fakeBackend{}
	r := newRenderer()
	require.NoError(t, r.attach(backend, 0, 0))

	w, h := r.Viewport()
	assert.Equal(t, 1, w)
	assert.Equal(t, 1, h)
	assert.Equal(t, [][2]int{{1, 1}}, backend.configured)
}

func TestResize(t *testing.T) {
	backend := &fakeBackend{}
	r := newTestRenderer(t, backend)

	require.NoError(t, r.Resize(0, 300))
	require.NoError(t, r.Resize(640, 480))
	require.NoError(t, r.Resize(800, 600))

	w, h := r.Viewport()
	assert.Equal(t, 800, w)
	assert.Equal(t, 600, h)
	assert.Equal(t, [][2]int{{640, 480}, {800, 600}}, backend.configured)
}

func TestCompileProgramDefersTexturedGroup(t *testing.T) {
	backend := &fakeBackend{}
	r := newTestRenderer(t, backend)

	p := compileTextured(t, r)
	assert.Equal(t, []string{"register"}, backend.calls)
	assert.Same(t, p, r.Program("textured"))

	again := compileTextured(t, r)
	assert.Same(t, p, again)

	prog := r.programs["textured"]
	require.NotNil(t, prog.globals)
	assert.Equal(t, 0, prog.globals.group)
	assert.Equal(t, 0, prog.globals.binding)
	assert.Equal(t, common.UniformsSize, prog.globals.size)
}

func TestCompileProgramErrors(t *testing.T) {
	backend := &fakeBackend{registerErr: errors.New("bad wgsl")}
	r := newTestRenderer(t, backend)

	vs, err := shader.NewShader("textured.vs", shader.ShaderTypeVertex, texturedVS)
	require.NoError(t, err)
	fs, err := shader.NewShader("flat.fs", shader.ShaderTypeFragment, flatFS)
	require.NoError(t, err)

	_, err = r.CompileProgram("broken", vs, fs)
	var setupErr *common.SetupError
	require.ErrorAs(t, err, &setupErr)
	assert.Equal(t, common.SetupStagePipeline, setupErr.Stage)
	assert.Nil(t, r.Program("broken"))

	_, err = r.CompileProgram("missing", vs, nil)
	require.ErrorAs(t, err, &setupErr)
	assert.Equal(t, common.SetupStageShader, setupErr.Stage)
	assert.ErrorIs(t, err, pipeline.ErrMissingShader)
}

func TestFrameLifecycle(t *testing.T) {
	backend := &fakeBackend{}
	r := newTestRenderer(t, backend)
	p := compileTextured(t, r)

	quad, err := r.UploadMesh(texturedQuad())
	require.NoError(t, err)
	assert.Equal(t, 6, quad.IndexCount())

	target, err := r.BeginFrame()
	require.NoError(t, err)
	err = target.Draw(frame.DrawCall{Mesh: quad, Program: p})
	assert.ErrorContains(t, err, "incomplete")
	require.NoError(t, target.Present())

	staging := common.TextureStagingData{Pixels: make([]byte, 2*2*4), Width: 2, Height: 2}
	require.NoError(t, r.UploadTexture(p, staging, common.SamplerStagingData{}))

	backend.calls = nil
	target, err = r.BeginFrame()
	require.NoError(t, err)

	_, err = r.BeginFrame()
	assert.ErrorIs(t, err, ErrFrameInProgress)

	red := common.Color{R: 1, A: 1}
	target.Clear(red, false)
	uniforms := common.Uniforms{Model: common.Identity(), Projection: common.Identity()}
	require.NoError(t, target.Draw(frame.DrawCall{Mesh: quad, Program: p, Uniforms: uniforms}))
	target.Clear(common.Color{}, true)
	require.NoError(t, target.Present())
	assert.ErrorIs(t, target.Present(), ErrFramePresented)

	assert.Equal(t, []string{"begin", "pass", "write", "draw", "end", "present"}, backend.calls)
	assert.Equal(t, red, backend.clearColor)
	assert.False(t, backend.clearDepth)

	require.Len(t, backend.writes, 1)
	assert.Len(t, backend.writes[0].Data, int(common.UniformsSize))
	assert.Equal(t, 0, backend.writes[0].Binding)
}

func TestPresentWithoutDrawStillClears(t *testing.T) {
	backend := &fakeBackend{}
	r := newTestRenderer(t, backend, WithClearColor(common.Color{G: 1, A: 1}))

	target, err := r.BeginFrame()
	require.NoError(t, err)
	require.NoError(t, target.Present())

	assert.Equal(t, []string{"begin", "pass", "end", "present"}, backend.calls)
	assert.Equal(t, common.Color{G: 1, A: 1}, backend.clearColor)
	assert.True(t, backend.clearDepth)
}

func TestDrawRejectsForeignHandles(t *testing.T) {
	backend := &fakeBackend{}
	r := newTestRenderer(t, backend)
	p := compileTextured(t, r)

	target, err := r.BeginFrame()
	require.NoError(t, err)
	defer func() { _ = target.Present() }()

	assert.Error(t, target.Draw(frame.DrawCall{Mesh: bind_group_provider.NewBindGroupProvider("never uploaded"), Program: p}))
	assert.Error(t, target.Draw(frame.DrawCall{Mesh: bind_group_provider.NewBindGroupProvider("x"), Program: pipeline.NewPipeline("other")}))
	assert.Error(t, target.Draw(frame.DrawCall{}))
}

func TestBeginFrameError(t *testing.T) {
	backend := &fakeBackend{beginErr: errors.New("surface lost")}
	r := newTestRenderer(t, backend)

	_, err := r.BeginFrame()
	assert.ErrorContains(t, err, "surface lost")
	assert.False(t, r.frameActive)
}

func TestUploadErrors(t *testing.T) {
	backend := &fakeBackend{}
	r := newTestRenderer(t, backend)

	empty := mesh.NewMesh[mesh.Vertex2D]("empty", nil)
	_, err := r.UploadMesh(empty)
	assert.True(t, common.IsSetupError(err))

	p := compileTextured(t, r)
	err = r.UploadTexture(p, common.TextureStagingData{Pixels: []byte{1, 2, 3}, Width: 1, Height: 1}, common.SamplerStagingData{})
	assert.True(t, common.IsSetupError(err))

	err = r.UploadTexture(pipeline.NewPipeline("unknown"), common.TextureStagingData{}, common.SamplerStagingData{})
	assert.True(t, common.IsSetupError(err))
}

func TestCheckMeshCompatible(t *testing.T) {
	vs, err := shader.NewShader("textured.vs", shader.ShaderTypeVertex, texturedVS)
	require.NoError(t, err)

	assert.NoError(t, CheckMeshCompatible(vs, texturedQuad()))

	tri := mesh.NewMesh("tri", []mesh.Vertex2D{{Position: [2]float32{0, 1}}, {}, {}})
	err = CheckMeshCompatible(vs, tri)
	var setupErr *common.SetupError
	require.ErrorAs(t, err, &setupErr)
	assert.Equal(t, common.SetupStageMesh, setupErr.Stage)
}

func TestPrimitiveTopology(t *testing.T) {
	assert.Equal(t, wgpu.PrimitiveTopologyTriangleList, PrimitiveTopology(mesh.TopologyTriangleList))
	assert.Equal(t, wgpu.PrimitiveTopologyTriangleStrip, PrimitiveTopology(mesh.TopologyTriangleStrip))
	assert.Equal(t, wgpu.PrimitiveTopologyLineList, PrimitiveTopology(mesh.TopologyLineList))
}

func TestParsePresentMode(t *testing.T) {
	mode, ok := ParsePresentMode("uncapped")
	assert.True(t, ok)
	assert.Equal(t, PresentModeUncapped, mode)

	_, ok = ParsePresentMode("adaptive")
	assert.False(t, ok)
}

func TestSurfaceModesNeedFormatAndAlphaMode(t *testing.T) {
	format, alpha, err := surfaceModes(wgpu.SurfaceCapabilities{
		Formats:    []wgpu.TextureFormat{wgpu.TextureFormatBGRA8UnormSrgb, wgpu.TextureFormatRGBA8Unorm},
		AlphaModes: []wgpu.CompositeAlphaMode{wgpu.CompositeAlphaModeOpaque},
	})
	require.NoError(t, err)
	assert.Equal(t, wgpu.TextureFormatBGRA8UnormSrgb, format)
	assert.Equal(t, wgpu.CompositeAlphaModeOpaque, alpha)

	_, _, err = surfaceModes(wgpu.SurfaceCapabilities{
		Formats: []wgpu.TextureFormat{wgpu.TextureFormatBGRA8UnormSrgb},
	})
	assert.Error(t, err)

	_, _, err = surfaceModes(wgpu.SurfaceCapabilities{})
	assert.Error(t, err)
}
