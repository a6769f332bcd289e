package leaf

import (
	"time"

	"github.com/aretw0/stackbt/pkg/domain"
)

// Action runs fn on every tick until it returns something other than Pending.
func Action(name string, fn func(ctx *domain.Context) domain.Result, opts ...Option) *Leaf {
	return New(name, func(ctx *domain.Context, _ any) (domain.Result, any) {
		return fn(ctx), nil
	}, opts...)
}

// Condition completes immediately with Success when fn holds and Failure otherwise.
func Condition(name string, fn func(ctx *domain.Context) bool) *Leaf {
	return New(name, func(ctx *domain.Context, _ any) (domain.Result, any) {
		if fn(ctx) {
			return domain.Succeed(nil), nil
		}
		return domain.Fail(nil), nil
	})
}

// Always completes immediately with r on every entry.
func Always(name string, r domain.Result) *Leaf {
	return New(name, func(*domain.Context, any) (domain.Result, any) {
		return r, nil
	})
}

// Succeed is a leaf that always completes with Success.
func Succeed(name string) *Leaf { return Always(name, domain.Succeed(nil)) }

// Fail is a leaf that always completes with Failure.
func Fail(name string) *Leaf { return Always(name, domain.Fail(nil)) }

// Wait stays Pending for ticks evaluation cycles, then succeeds.
// Wait(name, 0) succeeds on entry.
func Wait(name string, ticks int) *Leaf {
	return New(name, func(_ *domain.Context, data any) (domain.Result, any) {
		remaining := ticks
		if n, ok := data.(int); ok {
			remaining = n
		}
		if remaining <= 0 {
			return domain.Succeed(nil), nil
		}
		return domain.Pending(), remaining - 1
	})
}

// WaitUntil stays Pending until pred holds, then succeeds.
func WaitUntil(name string, pred func(ctx *domain.Context) bool) *Leaf {
	return New(name, func(ctx *domain.Context, _ any) (domain.Result, any) {
		if pred(ctx) {
			return domain.Succeed(nil), nil
		}
		return domain.Pending(), nil
	})
}

// Sleep stays Pending until d has elapsed on the context clock since entry.
func Sleep(name string, d time.Duration) *Leaf {
	return New(name, func(ctx *domain.Context, data any) (domain.Result, any) {
		started, ok := data.(time.Time)
		if !ok {
			started = ctx.Now
		}
		if ctx.Now.Sub(started) >= d {
			return domain.Succeed(nil), nil
		}
		return domain.Pending(), started
	})
}
