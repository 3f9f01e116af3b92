package loop

import (
	"time"

	"github.com/Carmen-Shannon/oxy-primer/common"
	"github.com/Carmen-Shannon/oxy-primer/engine/clock"
	"github.com/Carmen-Shannon/oxy-primer/engine/profiler"
)

// LoopBuilderOption is a functional option for configuring a loop.
type LoopBuilderOption func(l *loop)

// WithClock sets the animation clock. The loop starts from the clock's current time value.
//
// Parameters:
//   - c: the clock to advance time with
//
// Returns:
//   - LoopBuilderOption: option function to apply
func WithClock(c clock.Clock) LoopBuilderOption {
	return func(l *loop) {
		l.clock = c
	}
}

// WithTransform sets the function that derives the model matrix from time.
//
// Parameters:
//   - fn: the per-frame transform function (nil keeps Static)
//
// Returns:
//   - LoopBuilderOption: option function to apply
func WithTransform(fn TransformFunc) LoopBuilderOption {
	return func(l *loop) {
		if fn != nil {
			l.transform = fn
		}
	}
}

// WithProjection enables rebuilding the perspective matrix from the viewport every frame.
// When disabled the projection uniform is the identity.
//
// Parameters:
//   - enabled: true to compute a perspective matrix each frame
//   - opts: overrides passed through to common.BuildPerspective
//
// Returns:
//   - LoopBuilderOption: option function to apply
func WithProjection(enabled bool, opts ...common.PerspectiveOption) LoopBuilderOption {
	return func(l *loop) {
		l.projection = enabled
		l.perspectiveOpts = opts
	}
}

// WithDepth makes every frame clear the depth buffer along with the color buffer.
//
// Parameters:
//   - enabled: true for 3D variants with depth testing
//
// Returns:
//   - LoopBuilderOption: option function to apply
func WithDepth(enabled bool) LoopBuilderOption {
	return func(l *loop) {
		l.depth = enabled
	}
}

// WithClearColor sets the constant color frames are cleared to.
//
// Parameters:
//   - c: the clear color
//
// Returns:
//   - LoopBuilderOption: option function to apply
func WithClearColor(c common.Color) LoopBuilderOption {
	return func(l *loop) {
		l.clearColor = c
	}
}

// WithLightDirection sets the fixed light direction passed to lit programs.
//
// Parameters:
//   - dir: the light direction (not required to be normalized)
//
// Returns:
//   - LoopBuilderOption: option function to apply
func WithLightDirection(dir [3]float32) LoopBuilderOption {
	return func(l *loop) {
		l.lightDirection = [4]float32{dir[0], dir[1], dir[2], 0}
	}
}

// WithProfiler ticks p after every presented frame.
//
// Parameters:
//   - p: the profiler to tick (nil disables profiling)
//
// Returns:
//   - LoopBuilderOption: option function to apply
func WithProfiler(p *profiler.Profiler) LoopBuilderOption {
	return func(l *loop) {
		l.profiler = p
	}
}

// WithFrameLimit caps the loop at fps frames per second. Pass 0 to run uncapped (default),
// leaving pacing to the present mode.
//
// Parameters:
//   - fps: maximum frames per second (0 = uncapped)
//
// Returns:
//   - LoopBuilderOption: option function to apply
func WithFrameLimit(fps float64) LoopBuilderOption {
	return func(l *loop) {
		if fps <= 0 {
			l.frameLimit = 0
			return
		}
		l.frameLimit = time.Duration(float64(time.Second) / fps)
	}
}
