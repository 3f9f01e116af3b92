package bind_group_provider

import (
	"github.com/cogentcore/webgpu/wgpu"
)

// geometry is the vertex data of an uploaded mesh.
type geometry struct {
	vertexBuffer *wgpu.Buffer
	indexBuffer  *wgpu.Buffer
	vertexCount  int
	indexCount   int
}

// bindGroupProvider is the unexported implementation of BindGroupProvider.
type bindGroupProvider struct {
	label string

	// GPU objects below are created by the renderer backend and freed by Release.

	bindGroup       *wgpu.BindGroup
	bindGroupLayout *wgpu.BindGroupLayout
	buffers         map[int]*wgpu.Buffer
	textureViews    map[int]*wgpu.TextureView
	samplers        map[int]*wgpu.Sampler

	geometry geometry
}

// BindGroupProvider holds the GPU resources behind one bind group of a program, or behind one
// uploaded mesh. Programs own one provider per bind group index (the globals uniform buffer, the
// texture view, the sampler); an uploaded mesh is a provider carrying vertex and index buffers and
// doubles as the frame.Mesh handle the render loop draws.
type BindGroupProvider interface {
	// Release frees every GPU object the provider holds. Releasing twice is a no-op.
	Release()

	// Label returns the debug label, also used for the GPU objects created for the provider.
	//
	// Returns:
	//   - string: the debug label
	Label() string

	// Ready reports whether the bind group has been created.
	Ready() bool

	// Uploaded reports whether a vertex buffer has been created.
	Uploaded() bool

	// BindGroup returns the bind group, or nil before the backend created it.
	//
	// Returns:
	//   - *wgpu.BindGroup: the bind group or nil
	BindGroup() *wgpu.BindGroup

	// BindGroupLayout returns the layout the bind group is created against, or nil.
	//
	// Returns:
	//   - *wgpu.BindGroupLayout: the bind group layout or nil
	BindGroupLayout() *wgpu.BindGroupLayout

	// Buffer returns the uniform buffer at a binding, or nil.
	//
	// Parameters:
	//   - binding: the binding index
	//
	// Returns:
	//   - *wgpu.Buffer: the buffer or nil
	Buffer(binding int) *wgpu.Buffer

	// Buffers returns every uniform buffer keyed by binding index.
	Buffers() map[int]*wgpu.Buffer

	// TextureView returns the texture view at a binding, or nil.
	//
	// Parameters:
	//   - binding: the binding index
	//
	// Returns:
	//   - *wgpu.TextureView: the texture view or nil
	TextureView(binding int) *wgpu.TextureView

	// Sampler returns the sampler at a binding, or nil.
	//
	// Parameters:
	//   - binding: the binding index
	//
	// Returns:
	//   - *wgpu.Sampler: the sampler or nil
	Sampler(binding int) *wgpu.Sampler

	// VertexBuffer returns the vertex buffer of an uploaded mesh, or nil.
	VertexBuffer() *wgpu.Buffer

	// IndexBuffer returns the index buffer of an uploaded indexed mesh, or nil.
	IndexBuffer() *wgpu.Buffer

	// VertexCount returns the number of uploaded vertices.
	VertexCount() int

	// IndexCount returns the number of uploaded indices, zero for non-indexed meshes.
	IndexCount() int

	// SetBindGroup stores the bind group created by the backend.
	SetBindGroup(bg *wgpu.BindGroup)

	// SetBindGroupLayout stores the layout created when the program's pipeline was registered.
	SetBindGroupLayout(bgl *wgpu.BindGroupLayout)

	// SetBuffer stores a uniform buffer for a binding.
	//
	// Parameters:
	//   - binding: the binding index
	//   - buf: the created buffer
	SetBuffer(binding int, buf *wgpu.Buffer)

	// SetTextureView stores a texture view for a binding.
	//
	// Parameters:
	//   - binding: the binding index
	//   - tv: the texture view to store
	SetTextureView(binding int, tv *wgpu.TextureView)

	// SetSampler stores a sampler for a binding.
	//
	// Parameters:
	//   - binding: the binding index
	//   - s: the sampler to store
	SetSampler(binding int, s *wgpu.Sampler)

	// SetGeometry stores the buffers of an uploaded mesh.
	//
	// Parameters:
	//   - vertex: the vertex buffer
	//   - index: the index buffer, nil for non-indexed meshes
	//   - vertexCount: the number of vertices
	//   - indexCount: the number of indices, zero for non-indexed meshes
	SetGeometry(vertex, index *wgpu.Buffer, vertexCount, indexCount int)
}

var _ BindGroupProvider = &bindGroupProvider{}

// NewBindGroupProvider creates an empty provider. The renderer backend fills it in.
//
// Parameters:
//   - label: the debug label, also used as the label of the GPU objects created for it
//   - options: a variadic list of options to configure the provider
//
// Returns:
//   - BindGroupProvider: the new provider
func NewBindGroupProvider(label string, options ...BindGroupProviderOption) BindGroupProvider {
	p := &bindGroupProvider{
		label:        label,
		buffers:      make(map[int]*wgpu.Buffer),
		textureViews: make(map[int]*wgpu.TextureView),
		samplers:     make(map[int]*wgpu.Sampler),
	}
	for _, opt := range options {
		opt(p)
	}
	return p
}

func (p *bindGroupProvider) Label() string {
	return p.label
}

func (p *bindGroupProvider) Ready() bool {
	return p.bindGroup != nil
}

func (p *bindGroupProvider) Uploaded() bool {
	return p.geometry.vertexBuffer != nil
}

func (p *bindGroupProvider) BindGroup() *wgpu.BindGroup {
	return p.bindGroup
}

func (p *bindGroupProvider) BindGroupLayout() *wgpu.BindGroupLayout {
	return p.bindGroupLayout
}

func (p *bindGroupProvider) Buffer(binding int) *wgpu.Buffer {
	return p.buffers[binding]
}

func (p *bindGroupProvider) Buffers() map[int]*wgpu.Buffer {
	return p.buffers
}

func (p *bindGroupProvider) TextureView(binding int) *wgpu.TextureView {
	return p.textureViews[binding]
}

func (p *bindGroupProvider) Sampler(binding int) *wgpu.Sampler {
	return p.samplers[binding]
}

func (p *bindGroupProvider) VertexBuffer() *wgpu.Buffer {
	return p.geometry.vertexBuffer
}

func (p *bindGroupProvider) IndexBuffer() *wgpu.Buffer {
	return p.geometry.indexBuffer
}

func (p *bindGroupProvider) VertexCount() int {
	return p.geometry.vertexCount
}

func (p *bindGroupProvider) IndexCount() int {
	return p.geometry.indexCount
}

func (p *bindGroupProvider) SetBindGroup(bg *wgpu.BindGroup) {
	p.bindGroup = bg
}

func (p *bindGroupProvider) SetBindGroupLayout(bgl *wgpu.BindGroupLayout) {
	p.bindGroupLayout = bgl
}

func (p *bindGroupProvider) SetBuffer(binding int, buf *wgpu.Buffer) {
	p.buffers[binding] = buf
}

func (p *bindGroupProvider) SetTextureView(binding int, tv *wgpu.TextureView) {
	p.textureViews[binding] = tv
}

func (p *bindGroupProvider) SetSampler(binding int, s *wgpu.Sampler) {
	p.samplers[binding] = s
}

func (p *bindGroupProvider) SetGeometry(vertex, index *wgpu.Buffer, vertexCount, indexCount int) {
	p.geometry = geometry{
		vertexBuffer: vertex,
		indexBuffer:  index,
		vertexCount:  vertexCount,
		indexCount:   indexCount,
	}
}

func (p *bindGroupProvider) Release() {
	releaseAll(p.textureViews)
	releaseAll(p.samplers)
	releaseAll(p.buffers)

	if p.bindGroup != nil {
		p.bindGroup.Release()
		p.bindGroup = nil
	}
	if p.bindGroupLayout != nil {
		p.bindGroupLayout.Release()
		p.bindGroupLayout = nil
	}
	if p.geometry.vertexBuffer != nil {
		p.geometry.vertexBuffer.Release()
	}
	if p.geometry.indexBuffer != nil {
		p.geometry.indexBuffer.Release()
	}
	p.geometry = geometry{}
}

// releaseAll releases and removes every non-nil entry of m. Nil entries stay.
func releaseAll[V interface {
	comparable
	Release()
}](m map[int]V) {
	var zero V
	for k, v := range m {
		if v == zero {
			continue
		}
		v.Release()
		delete(m, k)
	}
}
