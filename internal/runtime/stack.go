package runtime

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/aretw0/stackbt/pkg/domain"
)

// DefaultMaxDepth bounds how deep a single path (nested stacks included) may grow.
// Any well-formed tree is far shallower; hitting it means the tree is cyclic.
const DefaultMaxDepth = 256

// Stack is the execution stack of one node tree: the chain of suspended
// frames from the root to the currently active node.
//
// Between ticks the stack is exactly one linear path. Composites that must
// watch several children (or re-check every tick) keep them in nested
// Stacks stored in their own frame data.
//
// A Stack must not be ticked concurrently.
type Stack struct {
	root     domain.Node
	frames   []*domain.Frame
	base     int
	maxDepth int
	nested   bool
	treeID   string
	hooks    domain.LifecycleHooks
	logger   *slog.Logger
}

// Option configures a Stack.
type Option func(*Stack)

// WithMaxDepth sets the path depth limit.
func WithMaxDepth(n int) Option {
	return func(s *Stack) {
		if n > 0 {
			s.maxDepth = n
		}
	}
}

// WithHooks registers observability hooks.
func WithHooks(h domain.LifecycleHooks) Option {
	return func(s *Stack) {
		s.hooks = h
	}
}

// WithLogger sets a structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Stack) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithTreeID tags emitted events with the owning tree's ID.
func WithTreeID(id string) Option {
	return func(s *Stack) {
		s.treeID = id
	}
}

// New creates an empty stack for root. Frames are pushed lazily on the first Tick.
func New(root domain.Node, opts ...Option) *Stack {
	s := &Stack{
		root:     root,
		maxDepth: DefaultMaxDepth,
		logger:   slog.New(slog.NewJSONHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Nested creates a stack for root hosted inside parent's frame. It inherits
// the tree settings carried by ctx and continues parent's depth numbering.
func Nested(ctx *domain.Context, parent *domain.Frame, root domain.Node) *Stack {
	return &Stack{
		root:     root,
		base:     parent.Depth + 1,
		maxDepth: orDefault(ctx.Env.MaxDepth),
		nested:   true,
		treeID:   ctx.Env.TreeID,
		hooks:    ctx.Env.Hooks,
		logger:   ctx.Log(),
	}
}

func orDefault(n int) int {
	if n <= 0 {
		return DefaultMaxDepth
	}
	return n
}

// Root returns the node this stack drives.
func (s *Stack) Root() domain.Node { return s.root }

// Len returns the number of live frames.
func (s *Stack) Len() int { return len(s.frames) }

// Empty reports whether no frame is live (never ticked, completed, or reset).
func (s *Stack) Empty() bool { return len(s.frames) == 0 }

// Path returns a read-only view of the live frames, root first.
func (s *Stack) Path() []domain.FrameInfo {
	path := make([]domain.FrameInfo, 0, len(s.frames))
	for _, f := range s.frames {
		path = append(path, f.Info())
	}
	return path
}

// Tick resumes the stack for one evaluation cycle.
//
// An empty stack starts from the root. Otherwise the top frame is resumed.
// Descend requests push frames and results pop them, handing each popped
// result to the new top, all inside this call. The loop stops when a frame
// yields Pending (the stack stays suspended) or the root pops (the stack is
// empty again and the root's result is returned).
//
// A configuration error aborts every live frame before it is returned.
func (s *Stack) Tick(ctx *domain.Context) (domain.Result, error) {
	if !s.nested {
		ctx.Env.TreeID = s.treeID
		ctx.Env.MaxDepth = s.maxDepth
		ctx.Env.Hooks = s.hooks
	}

	if len(s.frames) == 0 {
		if s.root == nil {
			return domain.Result{}, domain.Misconfigured("<nil>", "stack has no root node")
		}
		if err := s.push(ctx, s.root); err != nil {
			return domain.Result{}, err
		}
	}

	var child *domain.Result
	for {
		top := s.frames[len(s.frames)-1]
		top.Child = child
		step, err := top.Node.Tick(ctx, top)
		top.Child = nil
		if err != nil {
			s.logger.Debug("Configuration Error", "node", domain.Describe(top.Node).Name, "depth", top.Depth, "err", err)
			s.Abort(ctx, "configuration error")
			return domain.Result{}, err
		}

		if next := step.Child(); next != nil {
			if err := s.push(ctx, next); err != nil {
				s.Abort(ctx, "configuration error")
				return domain.Result{}, err
			}
			child = nil
			continue
		}

		r := step.Result()
		if r.IsPending() {
			return r, nil
		}
		s.pop(ctx, r)
		if len(s.frames) == 0 {
			return r, nil
		}
		child = &r
	}
}

// Abort discards every live frame, innermost first, giving each node that
// implements domain.Aborter its one chance to release what it holds.
func (s *Stack) Abort(ctx *domain.Context, reason string) {
	for i := len(s.frames) - 1; i >= 0; i-- {
		f := s.frames[i]
		if a, ok := f.Node.(domain.Aborter); ok {
			a.Abort(ctx, f)
		}
		s.emit(ctx, s.hooks.OnAbort, domain.EventAbort, f, domain.Abort(reason))
		s.frames[i] = nil
	}
	s.frames = s.frames[:0]
}

func (s *Stack) push(ctx *domain.Context, n domain.Node) error {
	depth := s.base + len(s.frames)
	if depth >= s.maxDepth {
		parent := "<root>"
		if len(s.frames) > 0 {
			parent = domain.Describe(s.frames[len(s.frames)-1].Node).Name
		}
		return domain.Misconfigured(parent, "path depth limit %d exceeded (cyclic tree?)", s.maxDepth)
	}
	f := &domain.Frame{Node: n, Depth: depth}
	s.frames = append(s.frames, f)
	s.emit(ctx, s.hooks.OnFramePush, domain.EventFramePush, f, domain.Result{})
	return nil
}

func (s *Stack) pop(ctx *domain.Context, r domain.Result) {
	last := len(s.frames) - 1
	f := s.frames[last]
	s.frames[last] = nil
	s.frames = s.frames[:last]
	s.emit(ctx, s.hooks.OnFramePop, domain.EventFramePop, f, r)
}

func (s *Stack) emit(ctx *domain.Context, hook func(context.Context, *domain.FrameEvent), typ domain.EventType, f *domain.Frame, r domain.Result) {
	if hook == nil {
		return
	}
	d := domain.Describe(f.Node)
	hook(ctx, &domain.FrameEvent{
		EventBase: domain.EventBase{
			Timestamp: time.Now(),
			Type:      typ,
			TreeID:    s.treeID,
		},
		Node:   d.Name,
		Kind:   d.Kind,
		Depth:  f.Depth,
		Result: r,
	})
}
