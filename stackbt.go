package stackbt

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/aretw0/stackbt/internal/runtime"
	"github.com/aretw0/stackbt/pkg/domain"
	"github.com/aretw0/stackbt/pkg/ports"
	"github.com/google/uuid"
)

// Tree is the driver handle of one tree instance: the entry point the host
// calls once per evaluation cycle.
//
// A Tree owns its execution stack exclusively. Calls must be serialized by
// the host; a Tree is not safe for concurrent use.
type Tree struct {
	root      domain.Node
	stack     *runtime.Stack
	id        string
	name      string
	hooks     domain.LifecycleHooks
	logger    *slog.Logger
	clock     func() time.Time
	maxDepth  int
	latch     bool
	publisher ports.SnapshotPublisher

	ticks   uint64
	world   any
	last    domain.Result
	settled bool
	failure error
}

// Option defines a functional option for configuring a Tree.
type Option func(*Tree)

// WithLogger sets a custom structured logger for the tree and its nodes.
func WithLogger(logger *slog.Logger) Option {
	return func(t *Tree) {
		t.logger = logger
	}
}

// WithLifecycleHooks registers observability hooks. Calling it twice merges the hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(t *Tree) {
		t.hooks = t.hooks.Merge(hooks)
	}
}

// WithClock sets the source of domain.Context.Now (default time.Now).
func WithClock(clock func() time.Time) Option {
	return func(t *Tree) {
		t.clock = clock
	}
}

// WithMaxDepth bounds the active path length; exceeding it is a configuration error.
func WithMaxDepth(n int) Option {
	return func(t *Tree) {
		t.maxDepth = n
	}
}

// WithLatch makes a completed tree a no-op: further ticks return the terminal
// result without touching any node until Reset. By default a completed tree
// restarts from its root on the next tick.
func WithLatch() Option {
	return func(t *Tree) {
		t.latch = true
	}
}

// WithName labels the tree in logs, events and snapshots.
func WithName(name string) Option {
	return func(t *Tree) {
		t.name = name
	}
}

// WithID overrides the generated tree ID.
func WithID(id string) Option {
	return func(t *Tree) {
		t.id = id
	}
}

// WithSnapshotPublisher publishes a snapshot after every tick.
func WithSnapshotPublisher(p ports.SnapshotPublisher) Option {
	return func(t *Tree) {
		t.publisher = p
	}
}

// New creates a tree instance for root. The node graph is checked for nil
// children and cycles before anything is ticked.
func New(root domain.Node, opts ...Option) (*Tree, error) {
	t := &Tree{
		root:     root,
		clock:    time.Now,
		maxDepth: runtime.DefaultMaxDepth,
	}
	for _, opt := range opts {
		opt(t)
	}

	if err := Validate(root, t.maxDepth); err != nil {
		return nil, err
	}

	if t.id == "" {
		t.id = uuid.NewString()
	}
	if t.name == "" {
		t.name = domain.Describe(root).Name
	}
	if t.logger == nil {
		t.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	t.logger = t.logger.With("tree", t.name)

	t.stack = runtime.New(root,
		runtime.WithMaxDepth(t.maxDepth),
		runtime.WithHooks(t.hooks),
		runtime.WithLogger(t.logger),
		runtime.WithTreeID(t.id),
	)
	return t, nil
}

// Validate walks the static node graph of root and reports nil children and
// paths deeper than maxDepth, which only a cyclic graph produces.
func Validate(root domain.Node, maxDepth int) error {
	if root == nil {
		return domain.Misconfigured("<nil>", "tree has no root node")
	}
	if maxDepth <= 0 {
		maxDepth = runtime.DefaultMaxDepth
	}
	return validate(root, 0, maxDepth)
}

func validate(n domain.Node, depth, maxDepth int) error {
	d := domain.Describe(n)
	if depth >= maxDepth {
		return domain.Misconfigured(d.Name, "path depth limit %d exceeded (cyclic tree?)", maxDepth)
	}
	for i, c := range d.Children {
		if c == nil {
			return domain.Misconfigured(d.Name, "child %d is nil", i)
		}
		if err := validate(c, depth+1, maxDepth); err != nil {
			return err
		}
	}
	return nil
}

// Tick runs one evaluation cycle with world as the host's opaque handle.
//
// Pending is the common result: the tree is suspended until the next call.
// A configuration error is fatal to the instance: it is returned once, and
// every later call returns ErrTreeFailed wrapping it.
func (t *Tree) Tick(ctx context.Context, world any) (domain.Result, error) {
	if t.failure != nil {
		return domain.Result{}, fmt.Errorf("%w: %w", domain.ErrTreeFailed, t.failure)
	}
	if t.latch && t.settled {
		return t.last, nil
	}

	t.ticks++
	t.world = world
	start := time.Now()
	dctx := domain.NewContext(ctx, world, t.ticks, t.clock())
	dctx.Logger = t.logger

	r, err := t.stack.Tick(dctx)
	if err != nil {
		t.failure = err
		t.logger.Error("Tree failed", "tick", t.ticks, "err", err)
	} else {
		t.last = r
		t.settled = !r.IsPending()
		t.logger.Debug("Tick", "tick", t.ticks, "status", r.Status, "depth", t.stack.Len())
	}

	if t.hooks.OnTick != nil {
		t.hooks.OnTick(ctx, &domain.TickEvent{
			EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventTick, TreeID: t.id},
			Tick:      t.ticks,
			Result:    r,
			Depth:     t.stack.Len(),
			Duration:  time.Since(start),
			Err:       err,
		})
	}
	t.publish(ctx)

	if err != nil {
		return domain.Result{}, err
	}
	return r, nil
}

// Reset aborts every live frame, innermost first, and returns the tree to
// its pre-first-tick state. A failed tree stays failed: rebuild it instead.
func (t *Tree) Reset(ctx context.Context) {
	dctx := domain.NewContext(ctx, t.world, t.ticks, t.clock())
	dctx.Logger = t.logger
	dctx.Env = domain.Env{TreeID: t.id, MaxDepth: t.maxDepth, Hooks: t.hooks}
	t.stack.Abort(dctx, "reset")

	t.ticks = 0
	t.world = nil
	t.last = domain.Result{}
	t.settled = false
	t.logger.Debug("Tree reset")
	t.publish(ctx)
}

func (t *Tree) publish(ctx context.Context) {
	if t.publisher == nil {
		return
	}
	if err := t.publisher.Publish(ctx, t.Snapshot()); err != nil {
		t.logger.Warn("Snapshot publish failed", "err", err)
	}
}

// Snapshot returns the current state of the tree: the active path (nested
// stacks included, as frame branches) and the last result.
func (t *Tree) Snapshot() domain.Snapshot {
	return domain.Snapshot{
		TreeID:    t.id,
		Name:      t.name,
		Tick:      t.ticks,
		Path:      t.stack.Path(),
		Last:      t.last,
		Failed:    t.failure != nil,
		Timestamp: t.clock(),
	}
}

// ID returns the tree instance ID.
func (t *Tree) ID() string { return t.id }

// Name returns the tree label.
func (t *Tree) Name() string { return t.name }

// Root returns the root node.
func (t *Tree) Root() domain.Node { return t.root }

// Ticks returns the number of evaluation cycles run since creation or the last Reset.
func (t *Tree) Ticks() uint64 { return t.ticks }

// Err returns the configuration error that failed the tree, if any.
func (t *Tree) Err() error { return t.failure }
