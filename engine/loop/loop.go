package loop

import (
	"log"
	"time"

	"github.com/Carmen-Shannon/oxy-primer/common"
	"github.com/Carmen-Shannon/oxy-primer/engine/clock"
	"github.com/Carmen-Shannon/oxy-primer/engine/frame"
	"github.com/Carmen-Shannon/oxy-primer/engine/profiler"
)

// State is the render loop state. The loop starts Running and ends Terminated.
type State int

const (
	// StateRunning means the loop keeps drawing frames.
	StateRunning State = iota

	// StateTerminated means a close signal or a fatal frame error stopped the loop.
	StateTerminated
)

func (s State) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StateTerminated:
		return "terminated"
	default:
		return "unknown"
	}
}

// loop is the implementation of the Loop interface.
type loop struct {
	surface frame.Surface
	events  frame.EventSource
	mesh    frame.Mesh
	program frame.Program

	clock     clock.Clock
	transform TransformFunc

	projection      bool
	perspectiveOpts []common.PerspectiveOption
	depth           bool
	clearColor      common.Color
	lightDirection  [4]float32

	profiler   *profiler.Profiler
	frameLimit time.Duration
	sleep      func(time.Duration)

	state  State
	time   float32
	frames uint64
}

// Loop is the per-frame render loop: advance time, build uniforms, clear, draw once, present,
// poll events. A close event moves it to StateTerminated.
type Loop interface {
	// Step runs exactly one frame iteration. Calling Step on a terminated loop is a no-op.
	//
	// Returns:
	//   - State: the state after the iteration
	//   - error: a *common.DrawError if acquiring, drawing or presenting the frame failed
	Step() (State, error)

	// Run steps until the loop terminates.
	//
	// Returns:
	//   - error: nil on a normal close, the fatal frame error otherwise
	Run() error

	// State returns the current loop state.
	State() State

	// Time returns the current time value threaded through the loop.
	Time() float32

	// Frames returns the number of frames presented so far.
	Frames() uint64
}

var _ Loop = &loop{}

// NewLoop creates a render loop drawing mesh with program onto surface and polling events.
// Without options it draws a static, unprojected mesh with the default clock.
//
// Parameters:
//   - surface: the frame source
//   - events: the window/input event source
//   - mesh: the uploaded geometry to draw every frame
//   - program: the compiled program to draw with
//   - options: functional options to configure the loop
//
// Returns:
//   - Loop: the loop in StateRunning
func NewLoop(surface frame.Surface, events frame.EventSource, mesh frame.Mesh, program frame.Program, options ...LoopBuilderOption) Loop {
	l := &loop{
		surface:    surface,
		events:     events,
		mesh:       mesh,
		program:    program,
		transform:  Static(),
		clearColor: common.Color{R: 0, G: 0, B: 1, A: 1},
		sleep:      time.Sleep,
		state:      StateRunning,
	}
	for _, opt := range options {
		opt(l)
	}
	if l.clock == nil {
		l.clock = clock.NewClock()
	}
	l.time = l.clock.Time()
	return l
}

func (l *loop) Step() (State, error) {
	if l.state == StateTerminated {
		return l.state, nil
	}
	started := time.Now()

	l.time = l.clock.Advance(l.time)

	width, height := l.surface.Viewport()
	projection := common.Identity()
	if l.projection {
		projection = common.BuildPerspective(width, height, l.perspectiveOpts...)
	}

	target, err := l.surface.BeginFrame()
	if err != nil {
		return l.fail(err)
	}
	target.Clear(l.clearColor, l.depth)

	call := frame.DrawCall{
		Mesh:    l.mesh,
		Program: l.program,
		Uniforms: common.Uniforms{
			Model:          l.transform(l.time),
			Projection:     projection,
			LightDirection: l.lightDirection,
			Params:         [4]float32{l.time, 0, 0, 0},
		},
	}
	if err := target.Draw(call); err != nil {
		return l.fail(err)
	}
	if err := target.Present(); err != nil {
		return l.fail(err)
	}
	l.frames++

	if l.profiler != nil {
		l.profiler.Tick()
	}

	if common.ContainsClose(l.events.PollEvents()) {
		l.state = StateTerminated
		return l.state, nil
	}

	if l.frameLimit > 0 {
		if remaining := l.frameLimit - time.Since(started); remaining > 0 {
			l.sleep(remaining)
		}
	}
	return l.state, nil
}

// fail terminates the loop and wraps err as the frame's DrawError.
func (l *loop) fail(err error) (State, error) {
	l.state = StateTerminated
	return l.state, &common.DrawError{Frame: l.frames, Err: err}
}

func (l *loop) Run() error {
	for {
		state, err := l.Step()
		if err != nil {
			return err
		}
		if state == StateTerminated {
			log.Printf("[Loop] close requested after %d frames", l.frames)
			return nil
		}
	}
}

func (l *loop) State() State {
	return l.state
}

func (l *loop) Time() float32 {
	return l.time
}

func (l *loop) Frames() uint64 {
	return l.frames
}
