package runner

import (
	"log/slog"
	"time"

	"github.com/aretw0/stackbt/pkg/domain"
)

// Option defines a functional option for configuring the Runner.
type Option func(*Runner)

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithInterval sets the pause between ticks. Zero ticks back to back.
func WithInterval(d time.Duration) Option {
	return func(r *Runner) {
		r.interval = d
	}
}

// WithMaxTicks stops the loop after n ticks even if the root is still pending.
// Zero means no limit.
func WithMaxTicks(n int) Option {
	return func(r *Runner) {
		r.maxTicks = n
	}
}

// WithWorld sets the function that supplies the world of each tick.
func WithWorld(world func() any) Option {
	return func(r *Runner) {
		r.world = world
	}
}

// WithObserver registers a callback run after every successful tick.
func WithObserver(fn func(r domain.Result, snap domain.Snapshot)) Option {
	return func(r *Runner) {
		r.observer = fn
	}
}
