package renderer

import (
	"errors"
	"fmt"
	"log"
	"sort"
	"sync"

	"github.com/Carmen-Shannon/oxy-primer/common"
	"github.com/Carmen-Shannon/oxy-primer/engine/frame"
	"github.com/Carmen-Shannon/oxy-primer/engine/mesh"
	"github.com/Carmen-Shannon/oxy-primer/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-primer/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-primer/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-primer/engine/window"
	"github.com/cogentcore/webgpu/wgpu"
)

// GlobalsVarName is the WGSL variable name whose uniform buffer receives the per-frame
// common.Uniforms block on every draw.
const GlobalsVarName = "globals"

// ErrFrameInProgress is returned by BeginFrame while the previous target has not been presented.
var ErrFrameInProgress = errors.New("previous frame has not been presented")

// program is a compiled pipeline plus one provider per bind group index.
type program struct {
	pipeline    pipeline.Pipeline
	groups      map[int]bind_group_provider.BindGroupProvider
	descriptors map[int]wgpu.BindGroupLayoutDescriptor

	// globals locates the uniform buffer named GlobalsVarName, if the program declares one.
	globals *uniformSlot
}

// uniformSlot is the group, binding and byte size of a uniform buffer.
type uniformSlot struct {
	group   int
	binding int
	size    uint64
}

// renderer is the implementation of the Renderer interface.
type renderer struct {
	mu *sync.Mutex

	backend RendererBackend

	programs map[string]*program
	meshes   []bind_group_provider.BindGroupProvider

	width, height int
	clearColor    common.Color
	frameActive   bool

	// Pre-creation config collected from builder options
	forceFallbackAdapter bool
	presentMode          PresentMode
	msaa                 MSAASampleCount
}

// Renderer compiles programs, uploads geometry and textures, and acquires frames.
// It is the frame.Surface the render loop draws into: compiled pipelines act as frame.Program
// handles and uploaded meshes as frame.Mesh handles.
type Renderer interface {
	frame.Surface

	// CompileProgram compiles a vertex/fragment shader pair into a render pipeline and allocates
	// its bind groups. Groups that only hold buffers are ready immediately; groups with texture
	// or sampler bindings become ready after UploadTexture.
	//
	// Parameters:
	//   - key: the unique key for the program
	//   - vertex: the vertex shader
	//   - fragment: the fragment shader
	//   - opts: draw parameters (depth, culling, topology)
	//
	// Returns:
	//   - pipeline.Pipeline: the compiled program
	//   - error: a *common.SetupError at the shader or pipeline stage
	CompileProgram(key string, vertex, fragment shader.Shader, opts ...pipeline.PipelineBuilderOption) (pipeline.Pipeline, error)

	// UploadMesh copies a mesh's vertices (and indices, if any) into GPU buffers.
	//
	// Parameters:
	//   - m: the mesh to upload
	//
	// Returns:
	//   - bind_group_provider.BindGroupProvider: the uploaded mesh handle
	//   - error: a *common.SetupError at the buffer stage
	UploadMesh(m mesh.Mesh) (bind_group_provider.BindGroupProvider, error)

	// UploadTexture uploads decoded pixels into the program's texture binding, creates the
	// sampler for its sampler binding and finishes that bind group.
	//
	// Parameters:
	//   - p: a program returned by CompileProgram
	//   - staging: the decoded RGBA8 pixels
	//   - sampler: the sampler configuration, zero fields take defaults
	//
	// Returns:
	//   - error: a *common.SetupError at the texture stage
	UploadTexture(p pipeline.Pipeline, staging common.TextureStagingData, sampler common.SamplerStagingData) error

	// Program returns the compiled program with the given key, or nil.
	//
	// Parameters:
	//   - key: the program key
	//
	// Returns:
	//   - pipeline.Pipeline: the program or nil
	Program(key string) pipeline.Pipeline

	// Resize reconfigures the surface for a new framebuffer size. Zero sizes (a minimized window)
	// are ignored.
	//
	// Parameters:
	//   - width: the new width in pixels
	//   - height: the new height in pixels
	//
	// Returns:
	//   - error: error if the surface could not be reconfigured
	Resize(width, height int) error

	// Release frees every program, mesh and the device.
	Release()
}

var _ Renderer = &renderer{}

// NewRenderer creates a Renderer that draws into the window's surface.
//
// Parameters:
//   - backendType: the type of rendering backend to use (e.g., WGPU)
//   - w: the window providing the surface descriptor and initial size
//   - options: variadic list of RendererBuilderOption functions to configure the Renderer
//
// Returns:
//   - Renderer: the configured renderer
//   - error: a *common.SetupError at the device stage
func NewRenderer(backendType RendererBackendType, w window.Window, options ...RendererBuilderOption) (Renderer, error) {
	r := newRenderer(options...)

	var backend RendererBackend
	switch backendType {
	case BackendTypeWGPU:
		fallthrough
	default:
		b, err := newWGPURendererBackend(w.SurfaceDescriptor(), r.forceFallbackAdapter, r.msaa)
		if err != nil {
			return nil, common.NewSetupError(common.SetupStageDevice, "renderer", err)
		}
		backend = b
	}

	if err := r.attach(backend, w.Width(), w.Height()); err != nil {
		backend.Release()
		return nil, err
	}
	return r, nil
}

// newRenderer applies options over the defaults without touching the GPU.
func newRenderer(options ...RendererBuilderOption) *renderer {
	r := &renderer{
		mu:          &sync.Mutex{},
		programs:    make(map[string]*program),
		clearColor:  common.Color{R: 0, G: 0, B: 1, A: 1},
		presentMode: PresentModeVSync,
		msaa:        MSAAOff,
	}
	for _, opt := range options {
		opt(r)
	}
	return r
}

// attach binds a backend and configures the surface at the initial size.
func (r *renderer) attach(backend RendererBackend, width, height int) error {
	r.backend = backend
	r.width, r.height = max(width, 1), max(height, 1)
	r.backend.SetPresentMode(r.presentMode)
	if err := r.backend.ConfigureSurface(r.width, r.height); err != nil {
		return common.NewSetupError(common.SetupStageDevice, "surface", err)
	}
	log.Printf("[Renderer] surface configured at %dx%d (msaa %d)", r.width, r.height, r.msaa)
	return nil
}

func (r *renderer) Viewport() (int, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.width, r.height
}

func (r *renderer) Resize(width, height int) error {
	if width <= 0 || height <= 0 {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if width == r.width && height == r.height {
		return nil
	}
	if err := r.backend.ConfigureSurface(width, height); err != nil {
		return fmt.Errorf("resize to %dx%d: %w", width, height, err)
	}
	r.width, r.height = width, height
	return nil
}

func (r *renderer) CompileProgram(key string, vertex, fragment shader.Shader, opts ...pipeline.PipelineBuilderOption) (pipeline.Pipeline, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.programs[key]; ok {
		return existing.pipeline, nil
	}

	opts = append([]pipeline.PipelineBuilderOption{
		pipeline.WithVertexShader(vertex),
		pipeline.WithFragmentShader(fragment),
	}, opts...)
	p := pipeline.NewPipeline(key, opts...)
	if err := p.Validate(); err != nil {
		return nil, common.NewSetupError(common.SetupStageShader, key, err)
	}

	prog := &program{
		pipeline:    p,
		groups:      make(map[int]bind_group_provider.BindGroupProvider),
		descriptors: p.BindGroupLayoutDescriptors(),
	}
	for g := range prog.descriptors {
		prog.groups[g] = bind_group_provider.NewBindGroupProvider(fmt.Sprintf("%s group %d", key, g))
	}
	prog.globals = findGlobals(p, prog.descriptors)

	if err := r.backend.RegisterRenderPipeline(p, prog.groups); err != nil {
		prog.release()
		return nil, common.NewSetupError(common.SetupStagePipeline, key, err)
	}

	for g, desc := range prog.descriptors {
		if !buffersOnly(desc) {
			continue
		}
		if err := r.backend.InitBindGroup(prog.groups[g], desc); err != nil {
			prog.release()
			return nil, common.NewSetupError(common.SetupStageBuffer, key, err)
		}
	}

	r.programs[key] = prog
	log.Printf("[Renderer] compiled program %q (%d bind groups)", key, len(prog.groups))
	return p, nil
}

func (r *renderer) Program(key string) pipeline.Pipeline {
	r.mu.Lock()
	defer r.mu.Unlock()
	if prog, ok := r.programs[key]; ok {
		return prog.pipeline
	}
	return nil
}

func (r *renderer) UploadMesh(m mesh.Mesh) (bind_group_provider.BindGroupProvider, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if m.VertexCount() == 0 {
		return nil, common.NewSetupError(common.SetupStageBuffer, m.Label(), errors.New("mesh has no vertices"))
	}

	provider := bind_group_provider.NewBindGroupProvider(m.Label())
	var indexData []byte
	if m.Indexed() {
		indexData = m.IndexData()
	}
	if err := r.backend.InitMeshBuffers(provider, m.VertexData(), indexData, m.VertexCount(), m.IndexCount()); err != nil {
		provider.Release()
		return nil, common.NewSetupError(common.SetupStageBuffer, m.Label(), err)
	}
	r.meshes = append(r.meshes, provider)
	return provider, nil
}

func (r *renderer) UploadTexture(p pipeline.Pipeline, staging common.TextureStagingData, sampler common.SamplerStagingData) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	prog, ok := r.programs[p.PipelineKey()]
	if !ok {
		return common.NewSetupError(common.SetupStageTexture, p.PipelineKey(), errors.New("program was not compiled by this renderer"))
	}
	if staging.Width == 0 || staging.Height == 0 || len(staging.Pixels) != int(staging.Width*staging.Height*4) {
		return common.NewSetupError(common.SetupStageTexture, p.PipelineKey(),
			fmt.Errorf("staging data %dx%d does not match %d pixel bytes", staging.Width, staging.Height, len(staging.Pixels)))
	}

	for _, g := range sortedGroups(prog.descriptors) {
		desc := prog.descriptors[g]
		if buffersOnly(desc) {
			continue
		}
		provider := prog.groups[g]
		for _, entry := range desc.Entries {
			var err error
			switch {
			case entry.Texture.SampleType != wgpu.TextureSampleTypeUndefined:
				err = r.backend.InitTextureView(provider, int(entry.Binding), staging)
			case entry.Sampler.Type != wgpu.SamplerBindingTypeUndefined:
				err = r.backend.InitSampler(provider, int(entry.Binding), sampler)
			}
			if err != nil {
				return common.NewSetupError(common.SetupStageTexture, p.PipelineKey(), err)
			}
		}
		if err := r.backend.InitBindGroup(provider, desc); err != nil {
			return common.NewSetupError(common.SetupStageTexture, p.PipelineKey(), err)
		}
		return nil
	}
	return common.NewSetupError(common.SetupStageTexture, p.PipelineKey(), errors.New("program declares no texture binding"))
}

func (r *renderer) BeginFrame() (frame.Target, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.frameActive {
		return nil, ErrFrameInProgress
	}
	if err := r.backend.BeginFrame(); err != nil {
		return nil, fmt.Errorf("acquire frame: %w", err)
	}
	r.frameActive = true
	return &target{r: r, color: r.clearColor, clearDepth: true}, nil
}

// draw validates a call against the registered programs and records it. Called by target.
func (r *renderer) draw(call frame.DrawCall) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if call.Program == nil || call.Mesh == nil {
		return errors.New("draw call needs a mesh and a program")
	}
	prog, ok := r.programs[call.Program.PipelineKey()]
	if !ok {
		return fmt.Errorf("program %q was not compiled by this renderer", call.Program.PipelineKey())
	}
	meshProvider, ok := call.Mesh.(bind_group_provider.BindGroupProvider)
	if !ok || !meshProvider.Uploaded() {
		return fmt.Errorf("mesh %q was not uploaded by this renderer", call.Mesh.Label())
	}
	for g, provider := range prog.groups {
		if !provider.Ready() {
			return fmt.Errorf("program %q bind group %d is incomplete", prog.pipeline.PipelineKey(), g)
		}
	}

	if prog.globals != nil {
		data := common.StructToBytes(&call.Uniforms)
		if uint64(len(data)) > prog.globals.size {
			data = data[:prog.globals.size]
		}
		r.backend.WriteBuffers([]bind_group_provider.BufferWrite{{
			Provider: prog.groups[prog.globals.group],
			Binding:  prog.globals.binding,
			Data:     data,
		}})
	}
	r.backend.DrawCall(prog.pipeline, meshProvider, prog.groups)
	return nil
}

// finish ends, submits and presents the active frame. Called by target.
func (r *renderer) finish() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.frameActive = false
	if err := r.backend.EndFrame(); err != nil {
		return err
	}
	r.backend.Present()
	return nil
}

// beginPass starts the frame's render pass. Called by target.
func (r *renderer) beginPass(color common.Color, clearDepth bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.backend.BeginPass(color, clearDepth)
}

func (r *renderer) Release() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, prog := range r.programs {
		prog.release()
	}
	r.programs = make(map[string]*program)
	for _, m := range r.meshes {
		m.Release()
	}
	r.meshes = nil
	if r.backend != nil {
		r.backend.Release()
	}
}

func (p *program) release() {
	for _, provider := range p.groups {
		provider.Release()
	}
	if rp := p.pipeline.RenderPipeline(); rp != nil {
		rp.Release()
		p.pipeline.SetRenderPipeline(nil)
	}
}

// findGlobals locates the uniform buffer named GlobalsVarName in either stage.
func findGlobals(p pipeline.Pipeline, descriptors map[int]wgpu.BindGroupLayoutDescriptor) *uniformSlot {
	for _, st := range []shader.ShaderType{shader.ShaderTypeVertex, shader.ShaderTypeFragment} {
		s := p.Shader(st)
		for _, g := range sortedGroups(descriptors) {
			binding, ok := s.BindGroupFromVarName(g, GlobalsVarName)
			if !ok {
				continue
			}
			for _, entry := range descriptors[g].Entries {
				if int(entry.Binding) == binding && entry.Buffer.Type == wgpu.BufferBindingTypeUniform {
					return &uniformSlot{group: g, binding: binding, size: entry.Buffer.MinBindingSize}
				}
			}
		}
	}
	return nil
}

// buffersOnly reports whether a group holds no texture or sampler bindings.
func buffersOnly(desc wgpu.BindGroupLayoutDescriptor) bool {
	for _, entry := range desc.Entries {
		if entry.Texture.SampleType != wgpu.TextureSampleTypeUndefined || entry.Sampler.Type != wgpu.SamplerBindingTypeUndefined {
			return false
		}
	}
	return true
}

func sortedGroups(descriptors map[int]wgpu.BindGroupLayoutDescriptor) []int {
	groups := make([]int, 0, len(descriptors))
	for g := range descriptors {
		groups = append(groups, g)
	}
	sort.Ints(groups)
	return groups
}

// PrimitiveTopology maps a mesh topology onto the WebGPU primitive topology.
//
// Parameters:
//   - t: the mesh topology
//
// Returns:
//   - wgpu.PrimitiveTopology: the matching primitive topology
func PrimitiveTopology(t mesh.Topology) wgpu.PrimitiveTopology {
	switch t {
	case mesh.TopologyTriangleStrip:
		return wgpu.PrimitiveTopologyTriangleStrip
	case mesh.TopologyLineList:
		return wgpu.PrimitiveTopologyLineList
	default:
		return wgpu.PrimitiveTopologyTriangleList
	}
}

// CheckMeshCompatible reports whether a mesh's vertex records match the vertex shader's inputs:
// same stride and, per shader location, the same format and offset.
//
// Parameters:
//   - vertex: the vertex shader
//   - m: the mesh to be drawn with it
//
// Returns:
//   - error: a *common.SetupError at the mesh stage describing the first mismatch
func CheckMeshCompatible(vertex shader.Shader, m mesh.Mesh) error {
	wanted := vertex.VertexLayout()
	if wanted == nil {
		return common.NewSetupError(common.SetupStageMesh, m.Label(), fmt.Errorf("shader %q has no vertex inputs", vertex.Key()))
	}
	got := m.Layout()
	if wanted.ArrayStride != got.Stride {
		return common.NewSetupError(common.SetupStageMesh, m.Label(),
			fmt.Errorf("vertex stride %d does not match shader %q stride %d", got.Stride, vertex.Key(), wanted.ArrayStride))
	}
	byLocation := make(map[uint32]mesh.Attribute, len(got.Attributes))
	for _, a := range got.Attributes {
		byLocation[a.Location] = a
	}
	for _, attr := range wanted.Attributes {
		a, ok := byLocation[attr.ShaderLocation]
		if !ok {
			return common.NewSetupError(common.SetupStageMesh, m.Label(), fmt.Errorf("mesh has no attribute for location %d", attr.ShaderLocation))
		}
		if vertexFormat(a.Format) != attr.Format || a.Offset != attr.Offset {
			return common.NewSetupError(common.SetupStageMesh, m.Label(),
				fmt.Errorf("attribute %q at location %d does not match shader %q", a.Name, attr.ShaderLocation, vertex.Key()))
		}
	}
	return nil
}

func vertexFormat(f mesh.AttributeFormat) wgpu.VertexFormat {
	switch f {
	case mesh.AttributeFormatFloat32x2:
		return wgpu.VertexFormatFloat32x2
	case mesh.AttributeFormatFloat32x3:
		return wgpu.VertexFormatFloat32x3
	default:
		return wgpu.VertexFormatUndefined
	}
}
