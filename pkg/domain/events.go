package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventFramePush EventType = "frame_push"
	EventFramePop  EventType = "frame_pop"
	EventAbort     EventType = "abort"
	EventTick      EventType = "tick"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	TreeID    string    `json:"tree_id,omitempty"`
}

// FrameEvent represents a frame entering or leaving a stack.
type FrameEvent struct {
	EventBase
	Node   string `json:"node"`
	Kind   string `json:"kind"`
	Depth  int    `json:"depth"`
	Result Result `json:"result"` // set on pop and abort
}

// TickEvent is emitted once per driver tick.
type TickEvent struct {
	EventBase
	Tick     uint64        `json:"tick"`
	Result   Result        `json:"result"`
	Depth    int           `json:"depth"` // frames left on the stack
	Duration time.Duration `json:"duration"`
	Err      error         `json:"-"`
}

// LifecycleHooks defines callbacks for observability. Any field may be nil.
type LifecycleHooks struct {
	OnFramePush func(context.Context, *FrameEvent)
	OnFramePop  func(context.Context, *FrameEvent)
	OnAbort     func(context.Context, *FrameEvent)
	OnTick      func(context.Context, *TickEvent)
}

// Merge returns hooks that call h first and then other.
func (h LifecycleHooks) Merge(other LifecycleHooks) LifecycleHooks {
	return LifecycleHooks{
		OnFramePush: chainFrame(h.OnFramePush, other.OnFramePush),
		OnFramePop:  chainFrame(h.OnFramePop, other.OnFramePop),
		OnAbort:     chainFrame(h.OnAbort, other.OnAbort),
		OnTick:      chainTick(h.OnTick, other.OnTick),
	}
}

func chainFrame(a, b func(context.Context, *FrameEvent)) func(context.Context, *FrameEvent) {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	return func(ctx context.Context, e *FrameEvent) {
		a(ctx, e)
		b(ctx, e)
	}
}

func chainTick(a, b func(context.Context, *TickEvent)) func(context.Context, *TickEvent) {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	return func(ctx context.Context, e *TickEvent) {
		a(ctx, e)
		b(ctx, e)
	}
}
