package runner

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/aretw0/stackbt"
	"github.com/aretw0/stackbt/pkg/domain"
)

// Runner handles the tick loop of a tree.
type Runner struct {
	interval time.Duration
	maxTicks int
	world    func() any
	observer func(domain.Result, domain.Snapshot)
	logger   *slog.Logger
}

// New creates a Runner.
func New(opts ...Option) *Runner {
	r := &Runner{
		world:  func() any { return nil },
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run ticks tree until its root completes and returns the root's result.
//
// When the tick budget runs out first, the pending result is returned with a
// nil error and the tree is left suspended. When ctx is cancelled, the tree
// is reset and ctx.Err() is returned. A configuration error ends the loop.
func (r *Runner) Run(ctx context.Context, tree *stackbt.Tree) (domain.Result, error) {
	var pause <-chan time.Time
	if r.interval > 0 {
		ticker := time.NewTicker(r.interval)
		defer ticker.Stop()
		pause = ticker.C
	}

	var last domain.Result
	for n := 1; r.maxTicks <= 0 || n <= r.maxTicks; n++ {
		if err := ctx.Err(); err != nil {
			return r.interrupt(ctx, tree, last, err)
		}

		res, err := tree.Tick(ctx, r.world())
		if err != nil {
			return res, err
		}
		last = res
		if r.observer != nil {
			r.observer(res, tree.Snapshot())
		}
		if !res.IsPending() {
			r.logger.Debug("Root completed", "tick", tree.Ticks(), "result", res.String())
			return res, nil
		}

		if pause != nil && n != r.maxTicks {
			select {
			case <-ctx.Done():
			case <-pause:
			}
		}
	}
	if err := ctx.Err(); err != nil {
		return r.interrupt(ctx, tree, last, err)
	}
	r.logger.Debug("Tick budget exhausted", "ticks", r.maxTicks)
	return last, nil
}

func (r *Runner) interrupt(ctx context.Context, tree *stackbt.Tree, last domain.Result, err error) (domain.Result, error) {
	r.logger.Info("Run interrupted", "ticks", tree.Ticks(), "err", err)
	tree.Reset(context.WithoutCancel(ctx))
	return last, err
}
