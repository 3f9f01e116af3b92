package window

import (
	"errors"
	"fmt"
	"runtime"

	"github.com/Carmen-Shannon/oxy-primer/common"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/cogentcore/webgpu/wgpuglfw"
	"github.com/go-gl/glfw/v3.3/glfw"
)

var errNotSpawned = errors.New("window is not initialized")

// glfwWindow is a spawned GLFW window. Its callbacks feed the owning engineWindow's queue.
type glfwWindow struct {
	handle *glfw.Window
	// cleared by Escape and Close, before GLFW itself reports ShouldClose
	running bool
}

// spawnGLFW creates the GLFW window without a client API, since WebGPU renders into it.
//
// GLFW reference: https://www.glfw.org/docs/latest/window_guide.html
func spawnGLFW(w *engineWindow) (*glfwWindow, error) {
	// GLFW calls must stay on the thread that initialized it.
	runtime.LockOSThread()

	if err := glfw.Init(); err != nil {
		return nil, fmt.Errorf("initialize GLFW: %w", err)
	}
	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)
	resizable := glfw.False
	if w.resizable {
		resizable = glfw.True
	}
	glfw.WindowHint(glfw.Resizable, resizable)

	handle, err := glfw.CreateWindow(w.width, w.height, w.title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, fmt.Errorf("create GLFW window: %w", err)
	}
	l := w.limits
	handle.SetSizeLimits(l.minWidth, l.minHeight, l.maxWidth, l.maxHeight)

	gw := &glfwWindow{handle: handle, running: true}
	gw.forward(w)

	// The framebuffer can be larger than the requested size on high-DPI displays.
	w.width, w.height = handle.GetFramebufferSize()
	return gw, nil
}

// forward registers the callbacks that turn GLFW input into queued events. They run inside
// glfw.PollEvents.
func (gw *glfwWindow) forward(w *engineWindow) {
	gw.handle.SetCloseCallback(func(*glfw.Window) {
		w.pushClose()
	})
	gw.handle.SetKeyCallback(func(_ *glfw.Window, key glfw.Key, _ int, action glfw.Action, _ glfw.ModifierKey) {
		if key == glfw.KeyEscape && action == glfw.Press {
			gw.running = false
			w.pushClose()
			return
		}
		switch action {
		case glfw.Press, glfw.Repeat:
			w.push(common.Event{Type: common.EventTypeKeyDown, Key: uint32(key)})
		case glfw.Release:
			w.push(common.Event{Type: common.EventTypeKeyUp, Key: uint32(key)})
		}
	})
	// Framebuffer size, not window size, is what the surface is configured with.
	gw.handle.SetFramebufferSizeCallback(func(_ *glfw.Window, width, height int) {
		w.pushResize(width, height)
	})
}

func (gw *glfwWindow) alive() bool {
	return gw != nil && gw.running && !gw.handle.ShouldClose()
}

// surfaceDescriptor uses the wgpuglfw bridge, which covers Windows, X11, Wayland and macOS.
func (gw *glfwWindow) surfaceDescriptor() *wgpu.SurfaceDescriptor {
	if gw == nil {
		return nil
	}
	return wgpuglfw.GetSurfaceDescriptor(gw.handle)
}

func (gw *glfwWindow) pollEvents() {
	if gw != nil {
		glfw.PollEvents()
	}
}

// destroy closes the window and terminates GLFW.
func (gw *glfwWindow) destroy() error {
	if gw == nil {
		return errNotSpawned
	}
	gw.running = false
	gw.handle.Destroy()
	glfw.Terminate()
	return nil
}
