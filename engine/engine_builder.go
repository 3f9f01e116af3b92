package engine

import (
	"github.com/Carmen-Shannon/oxy-primer/engine/renderer"
	"github.com/Carmen-Shannon/oxy-primer/engine/settings"
	"github.com/Carmen-Shannon/oxy-primer/engine/window"
)

// EngineBuilderOption is a functional option for configuring an Engine.
// Use the With* functions to create options that are applied directly to the engine instance.
type EngineBuilderOption func(*engine)

// WithProfiling enables or disables performance profiling output, overriding the settings file.
//
// Parameters:
//   - enabled: if true, enables performance profiling
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithProfiling(enabled bool) EngineBuilderOption {
	return func(e *engine) {
		e.profilingEnabled = &enabled
	}
}

// WithWindow sets a custom configured window for the engine to use rather than allowing the engine
// to create and manage one internally.
//
// Parameters:
//   - w: a pre-configured Window instance
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithWindow(w window.Window) EngineBuilderOption {
	return func(e *engine) {
		e.window = w
	}
}

// WithRenderer sets a renderer created by the caller. It must draw into the engine's window.
//
// Parameters:
//   - r: a pre-configured Renderer instance
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithRenderer(r renderer.Renderer) EngineBuilderOption {
	return func(e *engine) {
		e.renderer = r
	}
}

// WithSettings replaces the default settings. The window, renderer, clock, profiler and asset
// options are all derived from them.
//
// Parameters:
//   - s: the settings to use
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithSettings(s settings.Settings) EngineBuilderOption {
	return func(e *engine) {
		e.settings = s
	}
}
