package clock

const (
	// DefaultStep is the amount the time value advances per frame.
	DefaultStep float32 = 0.0002

	// DefaultBound is the magnitude of the wrap range [-DefaultBound, +DefaultBound].
	DefaultBound float32 = 0.5
)

// Advance moves t forward by DefaultStep and wraps it to -DefaultBound once it passes +DefaultBound.
// The wrap is a single overflow check, not modular arithmetic. Advance is pure.
//
// Parameters:
//   - t: the current time value
//
// Returns:
//   - float32: the next time value
func Advance(t float32) float32 {
	return advance(t, DefaultStep, -DefaultBound, DefaultBound)
}

func advance(t, step, lower, upper float32) float32 {
	next := t + step
	if next > upper {
		return lower
	}
	return next
}

// clock is the implementation of the Clock interface.
type clock struct {
	step  float32
	lower float32
	upper float32
	start float32
	now   float32
}

// Clock is the animation clock feeding the frame renderer. It owns the configured step and wrap
// bounds and optionally threads the current time value through successive ticks.
type Clock interface {
	// Advance returns t moved forward by one step, wrapped into the clock's bounds.
	// It does not touch the clock's own time value.
	//
	// Parameters:
	//   - t: the time value to advance
	//
	// Returns:
	//   - float32: the advanced time value
	Advance(t float32) float32

	// Tick advances the clock's own time value by one step and returns it.
	//
	// Returns:
	//   - float32: the new time value
	Tick() float32

	// Time returns the clock's current time value.
	//
	// Returns:
	//   - float32: the current time value
	Time() float32

	// Reset restores the time value to the configured start.
	Reset()

	// Bounds returns the lower and upper wrap bounds.
	//
	// Returns:
	//   - float32: the lower bound the value resets to
	//   - float32: the upper bound that triggers the reset
	Bounds() (float32, float32)

	// Step returns the per-tick increment.
	//
	// Returns:
	//   - float32: the step
	Step() float32
}

var _ Clock = &clock{}

// NewClock creates a Clock with DefaultStep and ±DefaultBound unless overridden by options.
// The start value is clamped into the bounds.
//
// Parameters:
//   - options: functional options to configure the clock
//
// Returns:
//   - Clock: the configured clock
func NewClock(options ...ClockBuilderOption) Clock {
	c := &clock{
		step:  DefaultStep,
		lower: -DefaultBound,
		upper: DefaultBound,
	}
	for _, opt := range options {
		opt(c)
	}
	c.start = min(max(c.start, c.lower), c.upper)
	c.now = c.start
	return c
}

func (c *clock) Advance(t float32) float32 {
	return advance(t, c.step, c.lower, c.upper)
}

func (c *clock) Tick() float32 {
	c.now = c.Advance(c.now)
	return c.now
}

func (c *clock) Time() float32 {
	return c.now
}

func (c *clock) Reset() {
	c.now = c.start
}

func (c *clock) Bounds() (float32, float32) {
	return c.lower, c.upper
}

func (c *clock) Step() float32 {
	return c.step
}
