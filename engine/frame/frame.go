// Package frame declares the contracts between the render loop and a graphics back end.
// Nothing here touches the GPU, so the loop can be driven by any implementation, including fakes.
package frame

import (
	"github.com/Carmen-Shannon/oxy-primer/common"
)

// Mesh is an uploaded vertex buffer with an optional index buffer.
type Mesh interface {
	// Label returns the debug label of the uploaded geometry.
	Label() string
}

// Program is a compiled vertex/fragment program together with its fixed draw parameters.
type Program interface {
	// PipelineKey returns the unique key the program was compiled under.
	PipelineKey() string
}

// DrawCall is everything one draw binds: geometry, program and the per-frame uniform values.
type DrawCall struct {
	Mesh     Mesh
	Program  Program
	Uniforms common.Uniforms
}

// Target is a single acquired frame. A target is used for exactly one frame:
// Clear, then Draw, then Present.
type Target interface {
	// Clear sets the color (and optionally depth) the frame is cleared to.
	//
	// Parameters:
	//   - color: the clear color
	//   - clearDepth: true to also clear the depth buffer
	Clear(color common.Color, clearDepth bool)

	// Draw issues one draw call into the frame.
	//
	// Parameters:
	//   - call: the geometry, program and uniforms to draw with
	//
	// Returns:
	//   - error: error if the back end rejects the draw
	Draw(call DrawCall) error

	// Present submits the frame and hands it to the display.
	//
	// Returns:
	//   - error: error if submission or presentation fails
	Present() error
}

// Surface is where frames are acquired from.
type Surface interface {
	// Viewport returns the current framebuffer size in pixels.
	//
	// Returns:
	//   - int: width in pixels
	//   - int: height in pixels
	Viewport() (int, int)

	// BeginFrame acquires the next frame.
	//
	// Returns:
	//   - Target: the acquired frame
	//   - error: error if no frame could be acquired
	BeginFrame() (Target, error)
}

// EventSource delivers window and input events.
type EventSource interface {
	// PollEvents returns the events that arrived since the previous poll.
	//
	// Returns:
	//   - []common.Event: pending events, possibly empty
	PollEvents() []common.Event
}
