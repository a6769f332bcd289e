package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/stackbt/pkg/domain"
)

// LogHooks returns lifecycle hooks that trace every event at debug level.
func LogHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnFramePush: func(ctx context.Context, e *domain.FrameEvent) {
			logger.DebugContext(ctx, "Push Frame", "node", e.Node, "kind", e.Kind, "depth", e.Depth)
		},
		OnFramePop: func(ctx context.Context, e *domain.FrameEvent) {
			logger.DebugContext(ctx, "Pop Frame", "node", e.Node, "depth", e.Depth, "result", e.Result.String())
		},
		OnAbort: func(ctx context.Context, e *domain.FrameEvent) {
			logger.DebugContext(ctx, "Abort Frame", "node", e.Node, "depth", e.Depth, "reason", e.Result.Reason)
		},
		OnTick: func(ctx context.Context, e *domain.TickEvent) {
			if e.Err != nil {
				logger.DebugContext(ctx, "Tick (Error)", "tick", e.Tick, "err", e.Err)
				return
			}
			logger.DebugContext(ctx, "Tick", "tick", e.Tick, "result", e.Result.String(), "depth", e.Depth, "duration", e.Duration)
		},
	}
}
