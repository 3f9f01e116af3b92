package clock

// ClockBuilderOption is a functional option for configuring a clock.
type ClockBuilderOption func(c *clock)

// WithStep sets the per-tick increment. Non-positive values are ignored.
//
// Parameters:
//   - step: the amount added on each advance
//
// Returns:
//   - ClockBuilderOption: option function to apply
func WithStep(step float32) ClockBuilderOption {
	return func(c *clock) {
		if step > 0 {
			c.step = step
		}
	}
}

// WithBounds sets the wrap range. The value resets to lower once it exceeds upper.
// Ranges where lower >= upper are ignored.
//
// Parameters:
//   - lower: the value to reset to
//   - upper: the value that triggers the reset when exceeded
//
// Returns:
//   - ClockBuilderOption: option function to apply
func WithBounds(lower, upper float32) ClockBuilderOption {
	return func(c *clock) {
		if lower < upper {
			c.lower = lower
			c.upper = upper
		}
	}
}

// WithStart sets the initial time value (default 0).
//
// Parameters:
//   - start: the first time value
//
// Returns:
//   - ClockBuilderOption: option function to apply
func WithStart(start float32) ClockBuilderOption {
	return func(c *clock) {
		c.start = start
	}
}
