package common

import (
	"errors"
	"fmt"
)

// SetupStage names the one-time initialization step a SetupError came from.
type SetupStage string

const (
	SetupStageWindow   SetupStage = "window"
	SetupStageDevice   SetupStage = "device"
	SetupStageShader   SetupStage = "shader"
	SetupStagePipeline SetupStage = "pipeline"
	SetupStageBuffer   SetupStage = "buffer"
	SetupStageTexture  SetupStage = "texture"
	SetupStageImage    SetupStage = "image"
	SetupStageMesh     SetupStage = "mesh"
	SetupStageSettings SetupStage = "settings"
)

var errEmptyImage = errors.New("empty image data")

// SetupError reports a failure while creating the window, device, programs, buffers or textures.
// These are unrecoverable configuration errors; callers abort instead of retrying.
type SetupError struct {
	Stage SetupStage
	Label string
	Err   error
}

func (e *SetupError) Error() string {
	if e.Label != "" {
		return fmt.Sprintf("%s setup failed for %q: %v", e.Stage, e.Label, e.Err)
	}
	return fmt.Sprintf("%s setup failed: %v", e.Stage, e.Err)
}

func (e *SetupError) Unwrap() error {
	return e.Err
}

// NewSetupError wraps err as a SetupError for the given stage and resource label.
//
// Parameters:
//   - stage: the setup step that failed
//   - label: the resource being created (may be empty)
//   - err: the underlying error
//
// Returns:
//   - error: the wrapped error, or nil if err is nil
func NewSetupError(stage SetupStage, label string, err error) error {
	if err == nil {
		return nil
	}
	return &SetupError{Stage: stage, Label: label, Err: err}
}

// DrawError reports a per-frame failure: frame acquisition, a rejected draw call or presentation.
type DrawError struct {
	Frame uint64
	Err   error
}

func (e *DrawError) Error() string {
	return fmt.Sprintf("draw failed on frame %d: %v", e.Frame, e.Err)
}

func (e *DrawError) Unwrap() error {
	return e.Err
}

// DecodeError reports an image byte buffer that is not a valid image in the expected format.
type DecodeError struct {
	Format string
	Err    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("failed to decode %s image: %v", e.Format, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// IsSetupError reports whether err wraps a *SetupError.
func IsSetupError(err error) bool {
	var se *SetupError
	return errors.As(err, &se)
}

// IsDrawError reports whether err wraps a *DrawError.
func IsDrawError(err error) bool {
	var de *DrawError
	return errors.As(err, &de)
}
