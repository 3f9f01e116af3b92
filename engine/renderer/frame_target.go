package renderer

import (
	"errors"

	"github.com/Carmen-Shannon/oxy-primer/common"
	"github.com/Carmen-Shannon/oxy-primer/engine/frame"
)

// ErrFramePresented is returned when a target is used after Present.
var ErrFramePresented = errors.New("frame already presented")

// target is one acquired frame. The render pass begins on the first Draw or on Present, so a
// Clear issued after BeginFrame still decides the pass's clear values.
type target struct {
	r *renderer

	color      common.Color
	clearDepth bool

	passBegun bool
	presented bool
}

var _ frame.Target = &target{}

func (t *target) Clear(color common.Color, clearDepth bool) {
	if t.passBegun {
		return
	}
	t.color = color
	t.clearDepth = clearDepth
}

func (t *target) Draw(call frame.DrawCall) error {
	if t.presented {
		return ErrFramePresented
	}
	t.beginPass()
	return t.r.draw(call)
}

func (t *target) Present() error {
	if t.presented {
		return ErrFramePresented
	}
	t.beginPass()
	t.presented = true
	return t.r.finish()
}

func (t *target) beginPass() {
	if t.passBegun {
		return
	}
	t.passBegun = true
	t.r.beginPass(t.color, t.clearDepth)
}
