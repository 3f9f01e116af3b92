package assets

import "time"

// PreparerBuilderOption is a functional option for configuring a preparer.
type PreparerBuilderOption func(p *preparer)

// WithWorkers sets the maximum number of concurrent workers. Values below 1 are ignored.
//
// Parameters:
//   - n: the maximum number of workers
//
// Returns:
//   - PreparerBuilderOption: option function to apply
func WithWorkers(n int) PreparerBuilderOption {
	return func(p *preparer) {
		if n > 0 {
			p.workers = n
		}
	}
}

// WithQueueSize sets the task queue capacity of the pool.
//
// Parameters:
//   - n: the queue capacity
//
// Returns:
//   - PreparerBuilderOption: option function to apply
func WithQueueSize(n int) PreparerBuilderOption {
	return func(p *preparer) {
		if n > 0 {
			p.queue = n
		}
	}
}

// WithIdleTimeout sets how long an idle worker waits before exiting.
func WithIdleTimeout(d time.Duration) PreparerBuilderOption {
	return func(p *preparer) {
		if d > 0 {
			p.idle = d
		}
	}
}
