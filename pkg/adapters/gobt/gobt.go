package gobt

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/aretw0/stackbt/internal/runtime"
	"github.com/aretw0/stackbt/pkg/domain"
	"github.com/joeycumines/go-behaviortree"
)

// ErrAborted is returned by an exported node whose root was aborted.
var ErrAborted = errors.New("node aborted")

// TickError is the Value of the failure an imported node yields when its
// tick returned an error.
type TickError struct {
	Node string
	Err  error
}

func (e *TickError) Error() string {
	return fmt.Sprintf("node %q: %v", e.Node, e.Err)
}

func (e *TickError) Unwrap() error { return e.Err }

// Node is a go-behaviortree node running as a stackbt leaf.
type Node struct {
	name string
	node behaviortree.Node
}

// Import wraps node. Running maps to Pending; a tick error becomes a failure
// carrying a *TickError.
func Import(name string, node behaviortree.Node) *Node {
	return &Node{name: name, node: node}
}

// Tick implements domain.Node.
func (n *Node) Tick(ctx *domain.Context, _ *domain.Frame) (domain.Step, error) {
	if n.node == nil {
		return domain.Step{}, domain.Misconfigured(n.name, "go-behaviortree node is nil")
	}
	status, err := n.node.Tick()
	if err != nil {
		ctx.Log().Debug("Imported node failed", "node", n.name, "err", err)
		return domain.Yield(domain.Fail(&TickError{Node: n.name, Err: err})), nil
	}
	switch status {
	case behaviortree.Running:
		return domain.Wait(), nil
	case behaviortree.Success:
		return domain.Yield(domain.Succeed(nil)), nil
	default:
		return domain.Yield(domain.Fail(nil)), nil
	}
}

// Describe implements domain.Describer.
func (n *Node) Describe() domain.Descriptor {
	return domain.Descriptor{Name: n.name, Kind: domain.KindLeaf}
}

// ExportOption configures Export.
type ExportOption func(*exporter)

// WithWorld sets the world handed to every tick.
func WithWorld(world any) ExportOption {
	return func(e *exporter) {
		e.world = world
	}
}

// WithContext sets the parent context of every tick (default context.Background()).
func WithContext(ctx context.Context) ExportOption {
	return func(e *exporter) {
		e.ctx = ctx
	}
}

// WithLogger sets the logger handed to nodes.
func WithLogger(logger *slog.Logger) ExportOption {
	return func(e *exporter) {
		if logger != nil {
			e.logger = logger
		}
	}
}

type exporter struct {
	stack  *runtime.Stack
	ctx    context.Context
	world  any
	logger *slog.Logger
	ticks  uint64
}

// Export returns a go-behaviortree node that drives root on its own stack,
// one stackbt tick per go-behaviortree tick. Pending maps to Running; an
// aborted root is a failure with ErrAborted. Configuration errors are
// returned as tick errors.
func Export(root domain.Node, opts ...ExportOption) behaviortree.Node {
	e := &exporter{
		ctx:    context.Background(),
		logger: slog.New(slog.NewJSONHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.stack = runtime.New(root, runtime.WithLogger(e.logger))
	return behaviortree.New(e.tick)
}

func (e *exporter) tick([]behaviortree.Node) (behaviortree.Status, error) {
	e.ticks++
	ctx := domain.NewContext(e.ctx, e.world, e.ticks, time.Now())
	ctx.Logger = e.logger

	r, err := e.stack.Tick(ctx)
	switch {
	case err != nil:
		return behaviortree.Failure, err
	case r.IsPending():
		return behaviortree.Running, nil
	case r.IsAborted():
		return behaviortree.Failure, fmt.Errorf("%w: %s", ErrAborted, r.Reason)
	case r.Succeeded():
		return behaviortree.Success, nil
	default:
		return behaviortree.Failure, nil
	}
}
