package renderer

import (
	"github.com/Carmen-Shannon/oxy-primer/common"
	"github.com/Carmen-Shannon/oxy-primer/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-primer/engine/renderer/pipeline"
	"github.com/cogentcore/webgpu/wgpu"
)

// RendererBackendType identifies the GPU backend implementation used by the Renderer.
type RendererBackendType int

const (
	// BackendTypeWGPU selects the WebGPU-based rendering backend.
	BackendTypeWGPU RendererBackendType = iota
)

// PresentMode controls how rendered frames are presented to the display surface.
type PresentMode int

const (
	// PresentModeVSync waits for the next vertical blank before presenting, capping frame rate
	// to the monitor's refresh rate. Eliminates tearing.
	PresentModeVSync PresentMode = iota

	// PresentModeUncapped presents frames immediately without waiting for vertical blank.
	// May cause screen tearing but provides the lowest latency.
	PresentModeUncapped
)

// ParsePresentMode maps a settings value ("vsync" or "uncapped") to a PresentMode.
//
// Parameters:
//   - s: the textual present mode
//
// Returns:
//   - PresentMode: the matching mode
//   - bool: false if s names no mode
func ParsePresentMode(s string) (PresentMode, bool) {
	switch s {
	case "vsync":
		return PresentModeVSync, true
	case "uncapped":
		return PresentModeUncapped, true
	default:
		return PresentModeVSync, false
	}
}

// MSAASampleCount controls the number of samples used for multisample anti-aliasing (MSAA).
// WebGPU guarantees support for 1 (off) and 4.
type MSAASampleCount uint32

const (
	// MSAAOff disables multisample anti-aliasing (sample count 1). This is the default.
	MSAAOff MSAASampleCount = 1

	// MSAA4x enables 4× multisample anti-aliasing.
	MSAA4x MSAASampleCount = 4
)

// RendererBackend is the top-level backend interface for the Renderer.
// It embeds the concrete backend interface for the selected GPU API.
type RendererBackend interface {
	wgpuRendererBackend
}

// wgpuRendererBackend is the set of GPU operations the Renderer drives. Frame operations follow
// the order BeginFrame, BeginPass, DrawCall (any number), EndFrame, Present.
type wgpuRendererBackend interface {
	// ConfigureSurface (re)configures the swapchain and the depth/MSAA attachments for a size.
	//
	// Parameters:
	//   - width: the surface width in pixels
	//   - height: the surface height in pixels
	//
	// Returns:
	//   - error: error if an attachment could not be created
	ConfigureSurface(width, height int) error

	// SetPresentMode sets the present mode used by the next ConfigureSurface call.
	//
	// Parameters:
	//   - mode: the PresentMode to use
	SetPresentMode(mode PresentMode)

	// RegisterRenderPipeline compiles both shader modules, creates one bind group layout per
	// group (stored on the matching provider) and the render pipeline (stored on p).
	//
	// Parameters:
	//   - p: the validated pipeline
	//   - groups: one provider per bind group index declared by the shaders
	//
	// Returns:
	//   - error: error if a module, layout or the pipeline could not be created
	RegisterRenderPipeline(p pipeline.Pipeline, groups map[int]bind_group_provider.BindGroupProvider) error

	// InitMeshBuffers creates the vertex buffer and, for indexed meshes, the index buffer.
	//
	// Parameters:
	//   - provider: the provider the buffers are stored on
	//   - vertexData: the packed vertex bytes
	//   - indexData: the packed uint32 indices, empty for non-indexed meshes
	//   - vertexCount: the number of vertices
	//   - indexCount: the number of indices
	//
	// Returns:
	//   - error: error if buffer creation fails
	InitMeshBuffers(provider bind_group_provider.BindGroupProvider, vertexData, indexData []byte, vertexCount, indexCount int) error

	// InitBindGroup creates the uniform buffers a layout names and the bind group itself. Texture
	// and sampler entries must already be present on the provider.
	//
	// Parameters:
	//   - provider: the provider holding the layout and resources
	//   - descriptor: the layout descriptor for the group
	//
	// Returns:
	//   - error: error if a resource is missing or creation fails
	InitBindGroup(provider bind_group_provider.BindGroupProvider, descriptor wgpu.BindGroupLayoutDescriptor) error

	// InitTextureView uploads RGBA8 pixels into a new texture and stores its view.
	//
	// Parameters:
	//   - provider: the provider the view is stored on
	//   - binding: the texture binding index
	//   - stagingData: the decoded pixels and size
	//
	// Returns:
	//   - error: error if texture creation fails
	InitTextureView(provider bind_group_provider.BindGroupProvider, binding int, stagingData common.TextureStagingData) error

	// InitSampler creates a sampler and stores it on the provider.
	//
	// Parameters:
	//   - provider: the provider the sampler is stored on
	//   - binding: the sampler binding index
	//   - samplerStagingData: the sampler configuration, zero fields take defaults
	//
	// Returns:
	//   - error: error if sampler creation fails
	InitSampler(provider bind_group_provider.BindGroupProvider, binding int, samplerStagingData common.SamplerStagingData) error

	// WriteBuffers queues buffer writes on the device queue.
	//
	// Parameters:
	//   - writes: the writes to queue
	WriteBuffers(writes []bind_group_provider.BufferWrite)

	// BeginFrame acquires the next swapchain texture and creates the frame's command encoder.
	//
	// Returns:
	//   - error: error if the texture or encoder could not be acquired
	BeginFrame() error

	// BeginPass begins the frame's render pass with the given clear values.
	//
	// Parameters:
	//   - color: the color attachment clear value
	//   - clearDepth: true to clear the depth attachment to 1.0
	BeginPass(color common.Color, clearDepth bool)

	// DrawCall records one draw with the pipeline, bind groups and mesh buffers.
	//
	// Parameters:
	//   - p: the registered pipeline
	//   - meshProvider: the provider holding vertex and index buffers
	//   - groups: the bind group providers keyed by group index
	DrawCall(p pipeline.Pipeline, meshProvider bind_group_provider.BindGroupProvider, groups map[int]bind_group_provider.BindGroupProvider)

	// EndFrame ends the render pass and submits the command buffer.
	//
	// Returns:
	//   - error: error if the command buffer could not be finished
	EndFrame() error

	// Present presents the acquired texture and releases the frame's references.
	Present()

	// Release frees the attachments, device, surface and instance.
	Release()
}
