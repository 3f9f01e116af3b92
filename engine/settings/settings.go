// Package settings reads the TOML file that configures the window, the renderer, the animation
// clock and profiling. Every key is optional; missing keys keep their defaults.
//
// Example file:
//
//	[window]
//	title = "teapot"
//	width = 1280
//	height = 720
//
//	[renderer]
//	present_mode = "uncapped"
//	msaa = 4
//	clear_color = [0.0, 0.0, 1.0, 1.0]
package settings

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/Carmen-Shannon/oxy-primer/common"
	"github.com/Carmen-Shannon/oxy-primer/engine/clock"
	"github.com/Carmen-Shannon/oxy-primer/engine/profiler"
	"github.com/Carmen-Shannon/oxy-primer/engine/renderer"
	"github.com/Carmen-Shannon/oxy-primer/engine/window"
	"github.com/pelletier/go-toml/v2"
)

// WindowSettings configures the window.
type WindowSettings struct {
	Title     string `toml:"title"`
	Width     int    `toml:"width"`
	Height    int    `toml:"height"`
	Resizable bool   `toml:"resizable"`
}

// RendererSettings configures the surface and frame pacing.
type RendererSettings struct {
	// PresentMode is "vsync" or "uncapped".
	PresentMode string `toml:"present_mode"`
	// MSAA is the sample count, 1 or 4.
	MSAA int `toml:"msaa"`
	// ClearColor is RGBA in [0, 1].
	ClearColor [4]float64 `toml:"clear_color"`
	// SoftwareRenderer forces the fallback adapter.
	SoftwareRenderer bool `toml:"software_renderer"`
	// FrameLimit caps frames per second, 0 for no cap.
	FrameLimit float64 `toml:"frame_limit"`
}

// ClockSettings configures the animation clock.
type ClockSettings struct {
	Step  float32 `toml:"step"`
	Lower float32 `toml:"lower"`
	Upper float32 `toml:"upper"`
	Start float32 `toml:"start"`
}

// ProfilingSettings configures the frame statistics logger.
type ProfilingSettings struct {
	Enabled         bool    `toml:"enabled"`
	IntervalSeconds float64 `toml:"interval_seconds"`
}

// AssetSettings points variants at files on disk.
type AssetSettings struct {
	// MeshPath, when set, replaces a variant's built-in mesh with the glTF file at this path.
	MeshPath string `toml:"mesh_path"`
	// Workers bounds the setup worker pool, 0 for one per CPU.
	Workers int `toml:"workers"`
}

// Settings is the full configuration file.
type Settings struct {
	Window    WindowSettings    `toml:"window"`
	Renderer  RendererSettings  `toml:"renderer"`
	Clock     ClockSettings     `toml:"clock"`
	Profiling ProfilingSettings `toml:"profiling"`
	Assets    AssetSettings     `toml:"assets"`
}

// Default returns the settings used when no file is present: an 800x600 resizable window, vsync,
// no MSAA, a blue clear color and a clock that starts at -0.5 and wraps at 0.5.
func Default() Settings {
	return Settings{
		Window: WindowSettings{
			Title:     "oxy-primer",
			Width:     800,
			Height:    600,
			Resizable: true,
		},
		Renderer: RendererSettings{
			PresentMode: "vsync",
			MSAA:        int(renderer.MSAAOff),
			ClearColor:  [4]float64{0, 0, 1, 1},
		},
		Clock: ClockSettings{
			Step:  clock.DefaultStep,
			Lower: -clock.DefaultBound,
			Upper: clock.DefaultBound,
			Start: -clock.DefaultBound,
		},
		Profiling: ProfilingSettings{
			IntervalSeconds: 1,
		},
	}
}

// Load reads settings from a TOML file. A missing file yields Default.
//
// Parameters:
//   - path: the file to read
//
// Returns:
//   - Settings: the parsed settings layered over Default
//   - error: a *common.SetupError at the settings stage
func Load(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return Settings{}, common.NewSetupError(common.SetupStageSettings, path, err)
	}
	s, err := Parse(data)
	if err != nil {
		var se *common.SetupError
		if errors.As(err, &se) {
			se.Label = path
		}
		return Settings{}, err
	}
	return s, nil
}

// Parse decodes TOML settings. Unknown keys are rejected so typos do not pass silently.
//
// Parameters:
//   - data: the TOML text
//
// Returns:
//   - Settings: the parsed settings layered over Default
//   - error: a *common.SetupError at the settings stage
func Parse(data []byte) (Settings, error) {
	s := Default()
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&s); err != nil {
		var derr *toml.DecodeError
		if errors.As(err, &derr) {
			row, col := derr.Position()
			err = fmt.Errorf("line %d column %d: %w", row, col, err)
		}
		return Settings{}, common.NewSetupError(common.SetupStageSettings, "", err)
	}
	if err := s.Validate(); err != nil {
		return Settings{}, common.NewSetupError(common.SetupStageSettings, "", err)
	}
	return s, nil
}

// Save writes s as TOML to path.
//
// Parameters:
//   - s: the settings to write
//   - path: the destination file
//
// Returns:
//   - error: error if encoding or writing fails
func Save(s Settings, path string) error {
	data, err := toml.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write settings %s: %w", path, err)
	}
	return nil
}

// Validate checks value ranges.
//
// Returns:
//   - error: the first invalid value, or nil
func (s Settings) Validate() error {
	if s.Window.Width <= 0 || s.Window.Height <= 0 {
		return fmt.Errorf("window size %dx%d must be positive", s.Window.Width, s.Window.Height)
	}
	if _, ok := renderer.ParsePresentMode(s.Renderer.PresentMode); !ok {
		return fmt.Errorf("unknown present mode %q (want vsync or uncapped)", s.Renderer.PresentMode)
	}
	switch renderer.MSAASampleCount(s.Renderer.MSAA) {
	case renderer.MSAAOff, renderer.MSAA4x:
	default:
		return fmt.Errorf("msaa sample count %d is not supported (want 1 or 4)", s.Renderer.MSAA)
	}
	for _, c := range s.Renderer.ClearColor {
		if c < 0 || c > 1 {
			return fmt.Errorf("clear color %v must be within [0, 1]", s.Renderer.ClearColor)
		}
	}
	if s.Renderer.FrameLimit < 0 {
		return fmt.Errorf("frame limit %v must not be negative", s.Renderer.FrameLimit)
	}
	if s.Clock.Step <= 0 {
		return fmt.Errorf("clock step %v must be positive", s.Clock.Step)
	}
	if s.Clock.Lower >= s.Clock.Upper {
		return fmt.Errorf("clock bounds [%v, %v] are empty", s.Clock.Lower, s.Clock.Upper)
	}
	if s.Assets.Workers < 0 {
		return fmt.Errorf("worker count %d must not be negative", s.Assets.Workers)
	}
	return nil
}

// ClearColor returns the configured clear color.
func (s Settings) ClearColor() common.Color {
	c := s.Renderer.ClearColor
	return common.Color{R: c[0], G: c[1], B: c[2], A: c[3]}
}

// WindowOptions converts the window section into window options.
func (s Settings) WindowOptions() []window.WindowBuilderOption {
	return []window.WindowBuilderOption{
		window.WithTitle(s.Window.Title),
		window.WithSize(s.Window.Width, s.Window.Height),
		window.WithResizable(s.Window.Resizable),
	}
}

// RendererOptions converts the renderer section into renderer options.
func (s Settings) RendererOptions() []renderer.RendererBuilderOption {
	mode, _ := renderer.ParsePresentMode(s.Renderer.PresentMode)
	return []renderer.RendererBuilderOption{
		renderer.WithPresentMode(mode),
		renderer.WithMSAA(renderer.MSAASampleCount(s.Renderer.MSAA)),
		renderer.WithForceSoftwareRenderer(s.Renderer.SoftwareRenderer),
		renderer.WithClearColor(s.ClearColor()),
	}
}

// NewClock builds the animation clock the clock section describes.
func (s Settings) NewClock() clock.Clock {
	return clock.NewClock(
		clock.WithStep(s.Clock.Step),
		clock.WithBounds(s.Clock.Lower, s.Clock.Upper),
		clock.WithStart(s.Clock.Start),
	)
}

// NewProfiler builds the profiler, or returns nil when profiling is disabled.
func (s Settings) NewProfiler() *profiler.Profiler {
	if !s.Profiling.Enabled {
		return nil
	}
	return profiler.NewProfiler(profiler.WithInterval(time.Duration(s.Profiling.IntervalSeconds * float64(time.Second))))
}
