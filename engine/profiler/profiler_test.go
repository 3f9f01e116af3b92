package profiler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestProfilerReportsAfterInterval(t *testing.T) {
	now := time.Unix(0, 0)
	var lines int
	p := NewProfiler(
		WithInterval(time.Second),
		WithClock(func() time.Time { return now }),
		WithLogf(func(string, ...any) { lines++ }),
	)

	for i := 0; i < 59; i++ {
		now = now.Add(10 * time.Millisecond)
		assert.False(t, p.Tick())
	}
	now = time.Unix(2, 0)
	assert.True(t, p.Tick())

	assert.Equal(t, 1, lines)
	assert.Equal(t, 60, p.Last().Frames)
	assert.InDelta(t, 30.0, p.Last().FPS, 1e-9)

	now = now.Add(time.Millisecond)
	assert.False(t, p.Tick(), "window restarts after a report")
}
