package renderer

import (
	"errors"
	"fmt"
	"runtime"
	"sort"
	"sync"

	"github.com/Carmen-Shannon/oxy-primer/common"
	"github.com/Carmen-Shannon/oxy-primer/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-primer/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-primer/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

// depthFormat is the format of the depth attachment every pipeline is created against.
const depthFormat = wgpu.TextureFormatDepth24Plus

type wgpuRendererBackendImpl struct {
	mu     *sync.Mutex
	device *wgpu.Device
	queue  *wgpu.Queue

	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	surface  *wgpu.Surface

	surfaceFormat *wgpu.TextureFormat
	// size-dependent render targets, recreated by ConfigureSurface
	msaa, depth attachment

	presentMode wgpu.PresentMode
	sampleCount MSAASampleCount

	// Frame state, valid between BeginFrame and Present.
	frameEncoder *wgpu.CommandEncoder
	framePass    *wgpu.RenderPassEncoder
	frameSurface *wgpu.Texture
	frameView    *wgpu.TextureView
}

var _ RendererBackend = &wgpuRendererBackendImpl{}

// newWGPURendererBackend creates the instance, surface, adapter, device and queue. The calling
// goroutine is locked to its OS thread since the surface belongs to the window's thread.
//
// Parameters:
//   - surfaceDescriptor: the platform surface descriptor from the window
//   - forceFallbackAdapter: true to request a software adapter
//   - sampleCount: the MSAA sample count for the main pass
//
// Returns:
//   - *wgpuRendererBackendImpl: the backend, surface not yet configured
//   - error: error if no adapter or device could be obtained
func newWGPURendererBackend(surfaceDescriptor *wgpu.SurfaceDescriptor, forceFallbackAdapter bool, sampleCount MSAASampleCount) (*wgpuRendererBackendImpl, error) {
	if surfaceDescriptor == nil {
		return nil, errors.New("window has no surface descriptor")
	}
	runtime.LockOSThread()

	b := &wgpuRendererBackendImpl{
		mu:          &sync.Mutex{},
		instance:    wgpu.CreateInstance(nil),
		presentMode: wgpu.PresentModeFifo,
		sampleCount: sampleCount,
	}
	b.surface = b.instance.CreateSurface(surfaceDescriptor)

	adapter, err := b.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		ForceFallbackAdapter: forceFallbackAdapter,
		CompatibleSurface:    b.surface,
	})
	if err != nil {
		b.Release()
		return nil, fmt.Errorf("request adapter: %w", err)
	}
	b.adapter = adapter

	device, err := adapter.RequestDevice(&wgpu.DeviceDescriptor{
		Label: "Main Device",
	})
	if err != nil {
		b.Release()
		return nil, fmt.Errorf("request device: %w", err)
	}
	b.device = device
	b.queue = device.GetQueue()

	return b, nil
}

func (b *wgpuRendererBackendImpl) ConfigureSurface(width, height int) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	format, alphaMode, err := surfaceModes(b.surface.GetCapabilities(b.adapter))
	if err != nil {
		return err
	}

	// New targets are built before the old ones go, so a failure leaves the previous size usable.
	var msaa attachment
	if b.sampleCount > 1 {
		// The pass draws into the MSAA target and resolves into the swapchain view.
		if msaa, err = newAttachment(b.device, "MSAA Target", format, width, height, b.sampleCount); err != nil {
			return err
		}
	}
	// Depth sample count must match the color attachment.
	depth, err := newAttachment(b.device, "Depth Target", depthFormat, width, height, b.sampleCount)
	if err != nil {
		msaa.release()
		return err
	}

	b.surfaceFormat = &format
	b.surface.Configure(b.adapter, b.device, &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      format,
		Width:       uint32(width),
		Height:      uint32(height),
		PresentMode: b.presentMode,
		AlphaMode:   alphaMode,
	})
	b.releaseAttachments()
	b.msaa, b.depth = msaa, depth
	return nil
}

// surfaceModes picks the preferred (first) format and alpha mode the surface reports.
func surfaceModes(capabilities wgpu.SurfaceCapabilities) (wgpu.TextureFormat, wgpu.CompositeAlphaMode, error) {
	if len(capabilities.Formats) == 0 {
		return 0, 0, errors.New("surface reports no supported formats")
	}
	if len(capabilities.AlphaModes) == 0 {
		return 0, 0, errors.New("surface reports no supported alpha modes")
	}
	return capabilities.Formats[0], capabilities.AlphaModes[0], nil
}

// releaseAttachments frees the size-dependent targets. Caller holds mu.
func (b *wgpuRendererBackendImpl) releaseAttachments() {
	b.msaa.release()
	b.depth.release()
}

// attachment is a render target texture with the one view passes use.
type attachment struct {
	texture *wgpu.Texture
	view    *wgpu.TextureView
}

func newAttachment(device *wgpu.Device, label string, format wgpu.TextureFormat, width, height int, samples MSAASampleCount) (attachment, error) {
	texture, err := device.CreateTexture(&wgpu.TextureDescriptor{
		Label:         label,
		Size:          wgpu.Extent3D{Width: uint32(width), Height: uint32(height), DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   uint32(samples),
		Dimension:     wgpu.TextureDimension2D,
		Format:        format,
		Usage:         wgpu.TextureUsageRenderAttachment,
	})
	if err != nil {
		return attachment{}, fmt.Errorf("create %s: %w", label, err)
	}
	view, err := texture.CreateView(nil)
	if err != nil {
		texture.Release()
		return attachment{}, fmt.Errorf("create %s view: %w", label, err)
	}
	return attachment{texture: texture, view: view}, nil
}

func (a *attachment) release() {
	if a.view != nil {
		a.view.Release()
	}
	if a.texture != nil {
		a.texture.Release()
	}
	*a = attachment{}
}

func (b *wgpuRendererBackendImpl) SetPresentMode(mode PresentMode) {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch mode {
	case PresentModeUncapped:
		b.presentMode = wgpu.PresentModeImmediate
	case PresentModeVSync:
		fallthrough
	default:
		b.presentMode = wgpu.PresentModeFifo
	}
}

// createModule compiles one WGSL stage. Caller holds mu.
func (b *wgpuRendererBackendImpl) createModule(s shader.Shader) (*wgpu.ShaderModule, error) {
	module, err := b.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          s.Key(),
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: s.Source()},
	})
	if err != nil {
		return nil, fmt.Errorf("compile %s: %w", s.Key(), err)
	}
	return module, nil
}

func (b *wgpuRendererBackendImpl) RegisterRenderPipeline(p pipeline.Pipeline, groups map[int]bind_group_provider.BindGroupProvider) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	vertexShader := p.Shader(shader.ShaderTypeVertex)
	fragmentShader := p.Shader(shader.ShaderTypeFragment)

	vs, err := b.createModule(vertexShader)
	if err != nil {
		return err
	}
	defer vs.Release()
	fs, err := b.createModule(fragmentShader)
	if err != nil {
		return err
	}
	defer fs.Release()

	descriptors := p.BindGroupLayoutDescriptors()
	indices := make([]int, 0, len(descriptors))
	for g := range descriptors {
		indices = append(indices, g)
	}
	sort.Ints(indices)

	bindGroupLayouts := make([]*wgpu.BindGroupLayout, 0, len(indices))
	for i, g := range indices {
		if g != i {
			return fmt.Errorf("bind group %d declared without group %d", g, i)
		}
		desc := descriptors[g]
		layout, layoutErr := b.device.CreateBindGroupLayout(&desc)
		if layoutErr != nil {
			return fmt.Errorf("create bind group layout %d: %w", g, layoutErr)
		}
		groups[g].SetBindGroupLayout(layout)
		bindGroupLayouts = append(bindGroupLayouts, layout)
	}

	pipelineLayout, err := b.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            p.PipelineKey(),
		BindGroupLayouts: bindGroupLayouts,
	})
	if err != nil {
		return fmt.Errorf("create pipeline layout: %w", err)
	}
	defer pipelineLayout.Release()

	state := p.DrawState()
	colorTarget := wgpu.ColorTargetState{
		Format:    *b.surfaceFormat,
		WriteMask: wgpu.ColorWriteMaskAll,
	}

	// Programs without depth testing still carry a depth state so they fit the shared pass.
	depthCompare := wgpu.CompareFunctionLess
	if !state.DepthTest {
		depthCompare = wgpu.CompareFunctionAlways
	}

	created, err := b.device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  p.PipelineKey() + " Render Pipeline",
		Layout: pipelineLayout,
		Vertex: wgpu.VertexState{
			Module:     vs,
			EntryPoint: vertexShader.EntryPoint(),
			Buffers:    []wgpu.VertexBufferLayout{*vertexShader.VertexLayout()},
		},
		Fragment: &wgpu.FragmentState{
			Module:     fs,
			EntryPoint: fragmentShader.EntryPoint(),
			Targets:    []wgpu.ColorTargetState{colorTarget},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  state.Topology,
			FrontFace: wgpu.FrontFaceCCW,
			CullMode:  state.Cull,
		},
		Multisample: wgpu.MultisampleState{
			Count: uint32(b.sampleCount),
			Mask:  0xFFFFFFFF,
		},
		DepthStencil: &wgpu.DepthStencilState{
			Format:            depthFormat,
			DepthWriteEnabled: state.DepthWrite,
			DepthCompare:      depthCompare,
			StencilFront: wgpu.StencilFaceState{
				Compare: wgpu.CompareFunctionAlways,
			},
			StencilBack: wgpu.StencilFaceState{
				Compare: wgpu.CompareFunctionAlways,
			},
		},
	})
	if err != nil {
		return fmt.Errorf("create render pipeline: %w", err)
	}
	p.SetRenderPipeline(created)

	return nil
}

func (b *wgpuRendererBackendImpl) InitMeshBuffers(provider bind_group_provider.BindGroupProvider, vertexData, indexData []byte, vertexCount, indexCount int) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	vertexBuf, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: provider.Label() + " Vertex Buffer",
		Size:  uint64(len(vertexData)),
		Usage: wgpu.BufferUsageVertex | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return err
	}
	b.queue.WriteBuffer(vertexBuf, 0, vertexData)

	var indexBuf *wgpu.Buffer
	if len(indexData) > 0 {
		indexBuf, err = b.device.CreateBuffer(&wgpu.BufferDescriptor{
			Label: provider.Label() + " Index Buffer",
			Size:  uint64(len(indexData)),
			Usage: wgpu.BufferUsageIndex | wgpu.BufferUsageCopyDst,
		})
		if err != nil {
			vertexBuf.Release()
			return err
		}
		b.queue.WriteBuffer(indexBuf, 0, indexData)
	} else {
		indexCount = 0
	}

	provider.SetGeometry(vertexBuf, indexBuf, vertexCount, indexCount)
	return nil
}

func (b *wgpuRendererBackendImpl) InitBindGroup(provider bind_group_provider.BindGroupProvider, descriptor wgpu.BindGroupLayoutDescriptor) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	layout := provider.BindGroupLayout()
	if layout == nil {
		return fmt.Errorf("%s has no bind group layout", provider.Label())
	}

	entries := make([]wgpu.BindGroupEntry, len(descriptor.Entries))
	for i, layoutEntry := range descriptor.Entries {
		entry, err := b.bindingResource(provider, layoutEntry)
		if err != nil {
			return fmt.Errorf("%s: %w", provider.Label(), err)
		}
		entries[i] = entry
	}

	bindGroup, err := b.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:   provider.Label() + " Bind Group",
		Layout:  layout,
		Entries: entries,
	})
	if err != nil {
		return err
	}
	provider.SetBindGroup(bindGroup)

	return nil
}

// bindingResource resolves the resource bound at one layout entry. Texture and sampler bindings
// must already be set on the provider; missing buffers are created at the entry's minimum size.
// Caller holds mu.
func (b *wgpuRendererBackendImpl) bindingResource(provider bind_group_provider.BindGroupProvider, layoutEntry wgpu.BindGroupLayoutEntry) (wgpu.BindGroupEntry, error) {
	binding := int(layoutEntry.Binding)
	entry := wgpu.BindGroupEntry{Binding: layoutEntry.Binding}

	switch {
	case layoutEntry.Texture.SampleType != wgpu.TextureSampleTypeUndefined:
		if entry.TextureView = provider.TextureView(binding); entry.TextureView == nil {
			return entry, fmt.Errorf("texture binding %d has no texture view", binding)
		}
	case layoutEntry.Sampler.Type != wgpu.SamplerBindingTypeUndefined:
		if entry.Sampler = provider.Sampler(binding); entry.Sampler == nil {
			return entry, fmt.Errorf("sampler binding %d has no sampler", binding)
		}
	default:
		buf := provider.Buffer(binding)
		if buf == nil {
			usage := wgpu.BufferUsageStorage
			if layoutEntry.Buffer.Type == wgpu.BufferBindingTypeUniform {
				usage = wgpu.BufferUsageUniform
			}
			var err error
			buf, err = b.device.CreateBuffer(&wgpu.BufferDescriptor{
				Label: fmt.Sprintf("%s Buffer %d", provider.Label(), binding),
				Size:  layoutEntry.Buffer.MinBindingSize,
				Usage: usage | wgpu.BufferUsageCopyDst,
			})
			if err != nil {
				return entry, fmt.Errorf("create buffer %d: %w", binding, err)
			}
			provider.SetBuffer(binding, buf)
		}
		entry.Buffer = buf
		entry.Size = wgpu.WholeSize
	}
	return entry, nil
}

func (b *wgpuRendererBackendImpl) InitTextureView(provider bind_group_provider.BindGroupProvider, binding int, staging common.TextureStagingData) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	extent := wgpu.Extent3D{Width: staging.Width, Height: staging.Height, DepthOrArrayLayers: 1}
	texture, err := b.device.CreateTexture(&wgpu.TextureDescriptor{
		Label:         provider.Label() + " Texture",
		Usage:         wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopyDst,
		Dimension:     wgpu.TextureDimension2D,
		Size:          extent,
		Format:        wgpu.TextureFormatRGBA8UnormSrgb,
		MipLevelCount: 1,
		SampleCount:   1,
	})
	if err != nil {
		return fmt.Errorf("create texture: %w", err)
	}
	// The view keeps the texture alive; the handle itself is not needed past this call.
	defer texture.Release()

	b.queue.WriteTexture(
		&wgpu.ImageCopyTexture{Texture: texture, Aspect: wgpu.TextureAspectAll},
		staging.Pixels,
		&wgpu.TextureDataLayout{BytesPerRow: 4 * staging.Width, RowsPerImage: staging.Height},
		&extent,
	)

	view, err := texture.CreateView(nil)
	if err != nil {
		return fmt.Errorf("create texture view: %w", err)
	}
	provider.SetTextureView(binding, view)
	return nil
}

func (b *wgpuRendererBackendImpl) InitSampler(provider bind_group_provider.BindGroupProvider, binding int, staging common.SamplerStagingData) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	sampler, err := b.device.CreateSampler(samplerDescriptor(provider.Label()+" Sampler", staging))
	if err != nil {
		return fmt.Errorf("create sampler: %w", err)
	}
	provider.SetSampler(binding, sampler)
	return nil
}

// samplerDescriptor fills unset staging fields with clamped, linearly filtered defaults.
func samplerDescriptor(label string, staging common.SamplerStagingData) *wgpu.SamplerDescriptor {
	clamp := wgpu.AddressModeClampToEdge
	return &wgpu.SamplerDescriptor{
		Label:         label,
		AddressModeU:  common.Coalesce(staging.AddressModeU, clamp),
		AddressModeV:  common.Coalesce(staging.AddressModeV, clamp),
		AddressModeW:  common.Coalesce(staging.AddressModeW, clamp),
		MagFilter:     common.Coalesce(staging.MagFilter, wgpu.FilterModeLinear),
		MinFilter:     common.Coalesce(staging.MinFilter, wgpu.FilterModeLinear),
		MipmapFilter:  common.Coalesce(staging.MipmapFilter, wgpu.MipmapFilterModeNearest),
		LodMaxClamp:   32,
		MaxAnisotropy: common.Coalesce(staging.MaxAnisotropy, 1),
	}
}

func (b *wgpuRendererBackendImpl) WriteBuffers(writes []bind_group_provider.BufferWrite) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, w := range writes {
		buf := w.Provider.Buffer(w.Binding)
		if buf == nil {
			continue
		}
		b.queue.WriteBuffer(buf, w.Offset, w.Data)
	}
}

func (b *wgpuRendererBackendImpl) BeginFrame() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.frameSurface != nil {
		return errors.New("previous frame surface not yet presented")
	}

	surfaceTexture, err := b.surface.GetCurrentTexture()
	if err != nil {
		return err
	}
	view, err := surfaceTexture.CreateView(nil)
	if err != nil {
		surfaceTexture.Release()
		return err
	}
	encoder, err := b.device.CreateCommandEncoder(nil)
	if err != nil {
		view.Release()
		surfaceTexture.Release()
		return err
	}

	b.frameEncoder = encoder
	b.frameSurface = surfaceTexture
	b.frameView = view
	return nil
}

func (b *wgpuRendererBackendImpl) BeginPass(color common.Color, clearDepth bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.frameEncoder == nil || b.framePass != nil {
		return
	}

	colorAttachment := wgpu.RenderPassColorAttachment{
		View:    b.frameView,
		LoadOp:  wgpu.LoadOpClear,
		StoreOp: wgpu.StoreOpStore,
		ClearValue: wgpu.Color{
			R: color.R, G: color.G, B: color.B, A: color.A,
		},
	}
	if b.sampleCount > 1 {
		colorAttachment.View = b.msaa.view
		colorAttachment.ResolveTarget = b.frameView
		colorAttachment.StoreOp = wgpu.StoreOpDiscard
	}

	depthLoad := wgpu.LoadOpLoad
	if clearDepth {
		depthLoad = wgpu.LoadOpClear
	}

	b.framePass = b.frameEncoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{colorAttachment},
		DepthStencilAttachment: &wgpu.RenderPassDepthStencilAttachment{
			View:            b.depth.view,
			DepthLoadOp:     depthLoad,
			DepthStoreOp:    wgpu.StoreOpStore,
			DepthClearValue: 1.0,
		},
	})
}

func (b *wgpuRendererBackendImpl) DrawCall(p pipeline.Pipeline, meshProvider bind_group_provider.BindGroupProvider, groups map[int]bind_group_provider.BindGroupProvider) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.framePass == nil {
		return
	}

	b.framePass.SetPipeline(p.RenderPipeline())
	for g, provider := range groups {
		b.framePass.SetBindGroup(uint32(g), provider.BindGroup(), nil)
	}

	b.framePass.SetVertexBuffer(0, meshProvider.VertexBuffer(), 0, wgpu.WholeSize)
	if meshProvider.IndexCount() > 0 {
		b.framePass.SetIndexBuffer(meshProvider.IndexBuffer(), wgpu.IndexFormatUint32, 0, wgpu.WholeSize)
		b.framePass.DrawIndexed(uint32(meshProvider.IndexCount()), 1, 0, 0, 0)
		return
	}
	b.framePass.Draw(uint32(meshProvider.VertexCount()), 1, 0, 0)
}

func (b *wgpuRendererBackendImpl) EndFrame() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.frameEncoder == nil {
		return errors.New("no frame in progress")
	}
	if b.framePass != nil {
		b.framePass.End()
		b.framePass.Release()
		b.framePass = nil
	}

	commandBuffer, err := b.frameEncoder.Finish(nil)
	b.frameEncoder.Release()
	b.frameEncoder = nil
	if err != nil {
		b.releaseFrameTexture()
		return fmt.Errorf("finish command buffer: %w", err)
	}

	b.queue.Submit(commandBuffer)
	commandBuffer.Release()
	return nil
}

func (b *wgpuRendererBackendImpl) Present() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.frameSurface == nil {
		return
	}
	b.surface.Present()
	b.releaseFrameTexture()
}

// releaseFrameTexture drops the frame's swapchain view and texture. Caller holds mu.
func (b *wgpuRendererBackendImpl) releaseFrameTexture() {
	if b.frameView != nil {
		b.frameView.Release()
		b.frameView = nil
	}
	if b.frameSurface != nil {
		b.frameSurface.Release()
		b.frameSurface = nil
	}
}

func (b *wgpuRendererBackendImpl) Release() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.releaseFrameTexture()
	b.releaseAttachments()
	if b.queue != nil {
		b.queue.Release()
		b.queue = nil
	}
	if b.device != nil {
		b.device.Release()
		b.device = nil
	}
	if b.adapter != nil {
		b.adapter.Release()
		b.adapter = nil
	}
	if b.surface != nil {
		b.surface.Release()
		b.surface = nil
	}
	if b.instance != nil {
		b.instance.Release()
		b.instance = nil
	}
}
