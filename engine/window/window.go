package window

import (
	"github.com/Carmen-Shannon/oxy-primer/common"
	"github.com/cogentcore/webgpu/wgpu"
)

// Window provides platform windowing and input event polling.
// Input callbacks are collected into a queue that PollEvents drains once per frame.
type Window interface {
	// PollEvents pumps the platform event queue and returns every event collected since the previous poll.
	// A close request (window close button or Escape) is reported as common.EventTypeClosed.
	//
	// Returns:
	//   - []common.Event: pending events in arrival order, possibly empty
	PollEvents() []common.Event

	// SurfaceDescriptor returns a wgpu.SurfaceDescriptor suitable for creating a WebGPU surface.
	// The descriptor is platform-appropriate (Windows HWND, X11 Xlib, Wayland, macOS Metal, etc.)
	// and is created by the wgpuglfw bridge from the underlying GLFW window.
	//
	// Returns:
	//   - *wgpu.SurfaceDescriptor: the platform-specific surface descriptor, or nil if window is not initialized
	SurfaceDescriptor() *wgpu.SurfaceDescriptor

	// IsRunning returns true if the window is still active.
	//
	// Returns:
	//   - bool: true if window is running, false if closed
	IsRunning() bool

	// Close closes the window and releases platform resources.
	//
	// Returns:
	//   - error: error if close operation fails
	Close() error

	// Title returns the window title.
	//
	// Returns:
	//   - string: the title text
	Title() string

	// Width returns the current framebuffer width in pixels.
	//
	// Returns:
	//   - int: width in pixels
	Width() int

	// Height returns the current framebuffer height in pixels.
	//
	// Returns:
	//   - int: height in pixels
	Height() int
}

// sizeLimits bounds the window size during resize.
type sizeLimits struct {
	minWidth, minHeight int
	maxWidth, maxHeight int
}

// clamp returns width and height moved into the limits.
func (l sizeLimits) clamp(width, height int) (int, int) {
	return min(max(width, l.minWidth), l.maxWidth), min(max(height, l.minHeight), l.maxHeight)
}

// engineWindow is the implementation of the Window interface.
type engineWindow struct {
	title     string
	limits    sizeLimits
	resizable bool

	// current framebuffer size, updated by resize events
	width, height int

	// events pushed by platform callbacks until the next PollEvents
	pending []common.Event
	// set once a Closed event is queued so it is reported only once
	closeQueued bool

	// nil until spawned and after Close
	platform *glfwWindow
}

var _ Window = &engineWindow{}

// NewWindow creates and spawns a new Window with the specified options.
// Applies default values first, then each option in order.
//
// Parameters:
//   - options: functional options to configure the window
//
// Returns:
//   - Window: the spawned window
//   - error: a *common.SetupError if the platform window could not be created
func NewWindow(options ...WindowBuilderOption) (Window, error) {
	w := newEngineWindow(options...)
	platform, err := spawnGLFW(w)
	if err != nil {
		return nil, common.NewSetupError(common.SetupStageWindow, w.title, err)
	}
	w.platform = platform
	return w, nil
}

// newEngineWindow applies defaults and options without touching the platform.
func newEngineWindow(options ...WindowBuilderOption) *engineWindow {
	w := &engineWindow{
		title:     "oxy-primer",
		limits:    sizeLimits{minWidth: 200, minHeight: 200, maxWidth: 1600, maxHeight: 1200},
		width:     1024,
		height:    768,
		resizable: true,
	}
	for _, opt := range options {
		opt(w)
	}
	w.width, w.height = w.limits.clamp(w.width, w.height)
	return w
}

func (w *engineWindow) PollEvents() []common.Event {
	w.platform.pollEvents()
	if !w.closeQueued && !w.platform.alive() {
		w.pushClose()
	}
	return w.drain()
}

// push appends an event to the pending queue.
func (w *engineWindow) push(e common.Event) {
	w.pending = append(w.pending, e)
}

// pushClose queues a single Closed event.
func (w *engineWindow) pushClose() {
	if w.closeQueued {
		return
	}
	w.closeQueued = true
	w.push(common.Event{Type: common.EventTypeClosed})
}

// pushResize records the new framebuffer size and queues a Resized event.
func (w *engineWindow) pushResize(width, height int) {
	w.width = width
	w.height = height
	w.push(common.Event{Type: common.EventTypeResized, Width: width, Height: height})
}

// drain returns the pending events and empties the queue.
func (w *engineWindow) drain() []common.Event {
	if len(w.pending) == 0 {
		return nil
	}
	out := w.pending
	w.pending = nil
	return out
}

func (w *engineWindow) SurfaceDescriptor() *wgpu.SurfaceDescriptor {
	return w.platform.surfaceDescriptor()
}

func (w *engineWindow) IsRunning() bool {
	return w.platform.alive()
}

func (w *engineWindow) Close() error {
	err := w.platform.destroy()
	w.platform = nil
	return err
}

func (w *engineWindow) Title() string {
	return w.title
}

func (w *engineWindow) Width() int {
	return w.width
}

func (w *engineWindow) Height() int {
	return w.height
}
