package engine

import (
	"errors"
	"log"

	"github.com/Carmen-Shannon/oxy-primer/common"
	"github.com/Carmen-Shannon/oxy-primer/engine/assets"
	"github.com/Carmen-Shannon/oxy-primer/engine/frame"
	"github.com/Carmen-Shannon/oxy-primer/engine/loop"
	"github.com/Carmen-Shannon/oxy-primer/engine/mesh"
	"github.com/Carmen-Shannon/oxy-primer/engine/renderer"
	"github.com/Carmen-Shannon/oxy-primer/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-primer/engine/settings"
	"github.com/Carmen-Shannon/oxy-primer/engine/variant"
	"github.com/Carmen-Shannon/oxy-primer/engine/window"
)

// ErrNotSetUp is returned by Run when no variant was set up.
var ErrNotSetUp = errors.New("engine has no variant set up")

const (
	meshLabel    = "mesh"
	textureLabel = "texture"
)

// engine implements the Engine interface.
// Owns the window, the renderer and the loop of the variant that was set up.
type engine struct {
	settings settings.Settings

	window   window.Window
	renderer renderer.Renderer

	profilingEnabled *bool

	variant variant.Variant
	loop    loop.Loop

	closed bool
}

// Engine is the main entry point. It opens the window and the renderer, prepares one variant and
// runs its render loop on the calling goroutine until the window closes.
type Engine interface {
	// Window returns the underlying window.
	//
	// Returns:
	//   - window.Window: the window instance
	Window() window.Window

	// Renderer returns the renderer drawing into the window.
	//
	// Returns:
	//   - renderer.Renderer: the renderer instance
	Renderer() renderer.Renderer

	// Settings returns the settings the engine was created with.
	Settings() settings.Settings

	// Setup prepares the variant's assets, compiles its program and uploads its mesh and texture.
	// Setting up a second variant replaces the first one's loop.
	//
	// Parameters:
	//   - v: the variant to prepare
	//
	// Returns:
	//   - error: a *common.SetupError naming the failed stage
	Setup(v variant.Variant) error

	// Loop returns the loop built by Setup, or nil.
	Loop() loop.Loop

	// Run draws frames until the window closes. It blocks the calling goroutine, which must be
	// the goroutine that created the window.
	//
	// Returns:
	//   - error: nil on a normal close, ErrNotSetUp or the fatal *common.DrawError otherwise
	Run() error

	// Close releases the renderer and closes the window. Safe to call more than once.
	Close()
}

var _ Engine = &engine{}

// NewEngine creates an Engine. Without WithWindow or WithRenderer it creates both from the settings.
//
// Parameters:
//   - options: functional options for engine configuration
//
// Returns:
//   - Engine: the newly created engine
//   - error: a *common.SetupError if the window or the device could not be created
func NewEngine(options ...EngineBuilderOption) (Engine, error) {
	e := &engine{
		settings: settings.Default(),
	}
	for _, opt := range options {
		opt(e)
	}
	if e.profilingEnabled != nil {
		e.settings.Profiling.Enabled = *e.profilingEnabled
	}

	if e.window == nil {
		w, err := window.NewWindow(e.settings.WindowOptions()...)
		if err != nil {
			return nil, err
		}
		e.window = w
	}
	if e.renderer == nil {
		r, err := renderer.NewRenderer(renderer.BackendTypeWGPU, e.window, e.settings.RendererOptions()...)
		if err != nil {
			e.window.Close()
			return nil, err
		}
		e.renderer = r
	}
	return e, nil
}

func (e *engine) Window() window.Window {
	return e.window
}

func (e *engine) Renderer() renderer.Renderer {
	return e.renderer
}

func (e *engine) Settings() settings.Settings {
	return e.settings
}

func (e *engine) Loop() loop.Loop {
	return e.loop
}

func (e *engine) Setup(v variant.Variant) error {
	bundle, err := e.prepare(v)
	if err != nil {
		return err
	}

	vs, fs, err := v.Shaders()
	if err != nil {
		return common.NewSetupError(common.SetupStageShader, v.Name, err)
	}

	m, ok := bundle.Mesh(meshLabel)
	if !ok {
		return common.NewSetupError(common.SetupStageMesh, v.Name, errors.New("no mesh was prepared"))
	}
	if err := renderer.CheckMeshCompatible(vs, m); err != nil {
		return err
	}

	opts := append(v.PipelineOptions(), pipeline.WithTopology(renderer.PrimitiveTopology(m.Topology())))
	program, err := e.renderer.CompileProgram(v.Name, vs, fs, opts...)
	if err != nil {
		return err
	}
	if img, ok := bundle.Image(textureLabel); ok {
		if err := e.renderer.UploadTexture(program, img, v.Sampler); err != nil {
			return err
		}
	}
	handle, err := e.renderer.UploadMesh(m)
	if err != nil {
		return err
	}

	e.variant = v
	pump := &eventPump{window: e.window, renderer: e.renderer}
	e.loop = loop.NewLoop(pump, pump, handle, program, e.loopOptions(v)...)

	log.Printf("[Engine] variant %q ready: %d vertices, %d indices", v.Name, m.VertexCount(), m.IndexCount())
	return nil
}

// prepare decodes the variant's texture and builds its mesh on the setup worker pool.
func (e *engine) prepare(v variant.Variant) (assets.Bundle, error) {
	meshRequest := assets.MeshRequest(meshLabel, v.Mesh)
	if path := e.settings.Assets.MeshPath; path != "" && v.MeshFileCompatible {
		meshRequest = assets.GLTFFileRequest(meshLabel, path, mesh.WithLabel(v.Name))
		log.Printf("[Engine] loading mesh for %q from %s", v.Name, path)
	}

	requests := []assets.Request{meshRequest}
	if v.Texture != nil {
		requests = append(requests, assets.ImageRequest(textureLabel, v.Texture))
	}

	preparer := assets.NewPreparer(assets.WithWorkers(e.settings.Assets.Workers))
	return preparer.Prepare(requests...)
}

// loopOptions combines the settings-driven options with the variant's own.
func (e *engine) loopOptions(v variant.Variant) []loop.LoopBuilderOption {
	opts := []loop.LoopBuilderOption{
		loop.WithClock(e.settings.NewClock()),
		loop.WithClearColor(e.settings.ClearColor()),
		loop.WithFrameLimit(e.settings.Renderer.FrameLimit),
	}
	if p := e.settings.NewProfiler(); p != nil {
		opts = append(opts, loop.WithProfiler(p))
	}
	return append(opts, v.LoopOptions()...)
}

func (e *engine) Run() error {
	if e.loop == nil {
		return ErrNotSetUp
	}
	log.Printf("[Engine] running %q", e.variant.Name)
	return e.loop.Run()
}

func (e *engine) Close() {
	if e.closed {
		return
	}
	e.closed = true
	if e.renderer != nil {
		e.renderer.Release()
	}
	if e.window != nil {
		if err := e.window.Close(); err != nil {
			log.Printf("[Engine] failed to close window: %v", err)
		}
	}
}

// eventPump forwards window events to the loop and applies framebuffer resizes to the renderer
// before the next frame is acquired. It is also the loop's surface: a failed resize is returned
// by the next BeginFrame, which ends the loop with a DrawError.
type eventPump struct {
	window    window.Window
	renderer  renderer.Renderer
	resizeErr error
}

var (
	_ frame.EventSource = &eventPump{}
	_ frame.Surface     = &eventPump{}
)

func (p *eventPump) PollEvents() []common.Event {
	events := p.window.PollEvents()
	for _, ev := range events {
		if ev.Type != common.EventTypeResized || p.resizeErr != nil {
			continue
		}
		if err := p.renderer.Resize(ev.Width, ev.Height); err != nil {
			log.Printf("[Engine] resize to %dx%d failed: %v", ev.Width, ev.Height, err)
			p.resizeErr = err
		}
	}
	return events
}

func (p *eventPump) Viewport() (int, int) {
	return p.renderer.Viewport()
}

func (p *eventPump) BeginFrame() (frame.Target, error) {
	if p.resizeErr != nil {
		return nil, p.resizeErr
	}
	return p.renderer.BeginFrame()
}
