package loop

import (
	"errors"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-primer/common"
	"github.com/Carmen-Shannon/oxy-primer/engine/clock"
	"github.com/Carmen-Shannon/oxy-primer/engine/frame"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMesh struct{}

func (fakeMesh) Label() string { return "fake mesh" }

type fakeProgram struct{}

func (fakeProgram) PipelineKey() string { return "fake program" }

type clearRecord struct {
	color common.Color
	depth bool
}

type fakeSurface struct {
	width, height int

	log       []string
	clears    []clearRecord
	draws     []frame.DrawCall
	presents  int
	beginErr  error
	drawErr   error
	presentEr error
}

func (s *fakeSurface) Viewport() (int, int) {
	s.log = append(s.log, "viewport")
	return s.width, s.height
}

func (s *fakeSurface) BeginFrame() (frame.Target, error) {
	s.log = append(s.log, "begin")
	if s.beginErr != nil {
		return nil, s.beginErr
	}
	return &fakeTarget{s: s}, nil
}

type fakeTarget struct {
	s *fakeSurface
}

func (t *fakeTarget) Clear(c common.Color, depth bool) {
	t.s.log = append(t.s.log, "clear")
	t.s.clears = append(t.s.clears, clearRecord{c, depth})
}

func (t *fakeTarget) Draw(call frame.DrawCall) error {
	t.s.log = append(t.s.log, "draw")
	if t.s.drawErr != nil {
		return t.s.drawErr
	}
	t.s.draws = append(t.s.draws, call)
	return nil
}

func (t *fakeTarget) Present() error {
	t.s.log = append(t.s.log, "present")
	if t.s.presentEr != nil {
		return t.s.presentEr
	}
	t.s.presents++
	return nil
}

// fakeEvents returns queued batches in order, then nothing.
type fakeEvents struct {
	batches [][]common.Event
	polls   int
}

func (e *fakeEvents) PollEvents() []common.Event {
	e.polls++
	if len(e.batches) == 0 {
		return nil
	}
	next := e.batches[0]
	e.batches = e.batches[1:]
	return next
}

func closeAfter(frames int) *fakeEvents {
	e := &fakeEvents{}
	for i := 1; i < frames; i++ {
		e.batches = append(e.batches, nil)
	}
	e.batches = append(e.batches, []common.Event{{Type: common.EventTypeClosed}})
	return e
}

func TestRunCloseOnFirstPoll(t *testing.T) {
	surface := &fakeSurface{width: 800, height: 600}
	events := closeAfter(1)

	l := NewLoop(surface, events, fakeMesh{}, fakeProgram{})
	require.NoError(t, l.Run())

	assert.Len(t, surface.draws, 1)
	assert.Equal(t, 1, surface.presents)
	assert.Equal(t, 1, events.polls)
	assert.Equal(t, StateTerminated, l.State())
	assert.Equal(t, uint64(1), l.Frames())
	assert.Equal(t, []string{"viewport", "begin", "clear", "draw", "present"}, surface.log)
}

func TestRunMultipleFramesAdvancesTime(t *testing.T) {
	surface := &fakeSurface{width: 640, height: 480}
	l := NewLoop(surface, closeAfter(3), fakeMesh{}, fakeProgram{})
	require.NoError(t, l.Run())

	require.Len(t, surface.draws, 3)
	want := float32(0)
	for i, d := range surface.draws {
		want = clock.Advance(want)
		assert.Equal(t, want, d.Uniforms.Params[0], "frame %d", i)
	}
	assert.Equal(t, want, l.Time())
}

func TestStepAfterTerminateIsNoop(t *testing.T) {
	surface := &fakeSurface{width: 1, height: 1}
	l := NewLoop(surface, closeAfter(1), fakeMesh{}, fakeProgram{})

	state, err := l.Step()
	require.NoError(t, err)
	assert.Equal(t, StateTerminated, state)

	state, err = l.Step()
	require.NoError(t, err)
	assert.Equal(t, StateTerminated, state)
	assert.Len(t, surface.draws, 1)
}

func TestNonCloseEventsKeepRunning(t *testing.T) {
	surface := &fakeSurface{width: 10, height: 10}
	events := &fakeEvents{batches: [][]common.Event{
		{{Type: common.EventTypeResized, Width: 20, Height: 20}, {Type: common.EventTypeKeyDown, Key: common.KeyEsc}},
	}}
	l := NewLoop(surface, events, fakeMesh{}, fakeProgram{})

	state, err := l.Step()
	require.NoError(t, err)
	assert.Equal(t, StateRunning, state)
}

func TestDrawCallCarriesUniforms(t *testing.T) {
	surface := &fakeSurface{width: 1600, height: 1200}
	c := clock.NewClock(clock.WithStep(0.1), clock.WithBounds(-1, 1))
	l := NewLoop(surface, closeAfter(1), fakeMesh{}, fakeProgram{},
		WithClock(c),
		WithTransform(TranslateX(2)),
		WithProjection(true),
		WithDepth(true),
		WithClearColor(common.Color{R: 0.5, A: 1}),
		WithLightDirection([3]float32{-1, 0.4, 0.9}),
	)
	require.NoError(t, l.Run())

	require.Len(t, surface.draws, 1)
	call := surface.draws[0]
	assert.Equal(t, fakeMesh{}, call.Mesh)
	assert.Equal(t, fakeProgram{}, call.Program)
	assert.Equal(t, common.Translation(0.2, 0, 0), call.Uniforms.Model)
	assert.Equal(t, common.BuildPerspective(800, 600), call.Uniforms.Projection)
	assert.Equal(t, [4]float32{-1, 0.4, 0.9, 0}, call.Uniforms.LightDirection)
	assert.Equal(t, []clearRecord{{common.Color{R: 0.5, A: 1}, true}}, surface.clears)
}

func TestWithoutProjectionUsesIdentity(t *testing.T) {
	surface := &fakeSurface{width: 300, height: 100}
	l := NewLoop(surface, closeAfter(1), fakeMesh{}, fakeProgram{})
	require.NoError(t, l.Run())

	assert.Equal(t, common.Identity(), surface.draws[0].Uniforms.Projection)
	assert.False(t, surface.clears[0].depth)
}

func TestFrameErrorsAreFatal(t *testing.T) {
	boom := errors.New("boom")
	tests := []struct {
		name    string
		surface *fakeSurface
		log     []string
	}{
		{"begin", &fakeSurface{beginErr: boom}, []string{"viewport", "begin"}},
		{"draw", &fakeSurface{drawErr: boom}, []string{"viewport", "begin", "clear", "draw"}},
		{"present", &fakeSurface{presentEr: boom}, []string{"viewport", "begin", "clear", "draw", "present"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			events := &fakeEvents{}
			l := NewLoop(tt.surface, events, fakeMesh{}, fakeProgram{})

			err := l.Run()
			require.Error(t, err)
			assert.ErrorIs(t, err, boom)
			assert.True(t, common.IsDrawError(err))
			assert.Equal(t, StateTerminated, l.State())
			assert.Equal(t, tt.log, tt.surface.log)
			assert.Zero(t, events.polls)
		})
	}
}

func TestFrameLimitSleepsRemainder(t *testing.T) {
	surface := &fakeSurface{width: 1, height: 1}
	l := NewLoop(surface, &fakeEvents{}, fakeMesh{}, fakeProgram{}, WithFrameLimit(1)).(*loop)

	var slept time.Duration
	l.sleep = func(d time.Duration) { slept += d }

	_, err := l.Step()
	require.NoError(t, err)
	assert.Greater(t, slept, 900*time.Millisecond)
	assert.LessOrEqual(t, slept, time.Second)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "running", StateRunning.String())
	assert.Equal(t, "terminated", StateTerminated.String())
}
