package domain

import (
	"context"
	"io"
	"log/slog"
	"time"
)

// Context is threaded through every Tick call of one evaluation cycle.
// World is the host's opaque handle; the core only passes it through.
type Context struct {
	context.Context

	World  any
	Tick   uint64
	Now    time.Time
	Logger *slog.Logger

	// Env is set by the outermost stack and inherited by nested ones.
	Env Env
}

// Env carries per-tree execution settings down to nested stacks.
type Env struct {
	TreeID   string
	MaxDepth int
	Hooks    LifecycleHooks
}

// NewContext builds a Context for a single tick. A nil parent becomes context.Background().
func NewContext(parent context.Context, world any, tick uint64, now time.Time) *Context {
	if parent == nil {
		parent = context.Background()
	}
	return &Context{
		Context: parent,
		World:   world,
		Tick:    tick,
		Now:     now,
		Logger:  slog.New(slog.NewJSONHandler(io.Discard, nil)),
	}
}

// Log returns the context logger, never nil.
func (c *Context) Log() *slog.Logger {
	if c == nil || c.Logger == nil {
		return slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	return c.Logger
}
