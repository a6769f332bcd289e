package runtime_test

import (
	"context"
	"testing"

	"github.com/aretw0/stackbt/internal/runtime"
	"github.com/aretw0/stackbt/internal/testutils"
	"github.com/aretw0/stackbt/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// wrap descends into its child once and yields the child's result.
type wrap struct {
	name  string
	child domain.Node
}

func (w *wrap) Tick(_ *domain.Context, f *domain.Frame) (domain.Step, error) {
	if f.Child == nil {
		f.Data = true
		return domain.Descend(w.child), nil
	}
	return domain.Yield(*f.Child), nil
}

func (w *wrap) Describe() domain.Descriptor {
	return domain.Descriptor{Name: w.name, Kind: domain.KindDecorator, Children: []domain.Node{w.child}}
}

// loop descends into itself forever.
type loop struct{}

func (l *loop) Tick(_ *domain.Context, _ *domain.Frame) (domain.Step, error) {
	return domain.Descend(l), nil
}

func TestStack_LeafCompletesInOneTick(t *testing.T) {
	p := testutils.NewProbe("leaf", domain.Succeed(42))
	s := runtime.New(p)

	r, err := s.Tick(testutils.Ctx(1))
	require.NoError(t, err)
	assert.True(t, r.Succeeded())
	assert.Equal(t, 42, r.Value)
	assert.True(t, s.Empty())
	assert.Equal(t, 1, p.Ticks)
}

func TestStack_PendingSuspendsOnTop(t *testing.T) {
	p := testutils.Pendings("leaf", 2, domain.Succeed(nil))
	s := runtime.New(&wrap{name: "outer", child: &wrap{name: "inner", child: p}})

	for tick := uint64(1); tick <= 2; tick++ {
		r, err := s.Tick(testutils.Ctx(tick))
		require.NoError(t, err)
		assert.True(t, r.IsPending(), "tick %d", tick)
		require.Equal(t, 3, s.Len())
	}

	path := s.Path()
	assert.Equal(t, []string{"outer", "inner", "leaf"}, []string{path[0].Name, path[1].Name, path[2].Name})
	assert.Equal(t, []int{0, 1, 2}, []int{path[0].Depth, path[1].Depth, path[2].Depth})

	r, err := s.Tick(testutils.Ctx(3))
	require.NoError(t, err)
	assert.True(t, r.Succeeded())
	assert.True(t, s.Empty())
	assert.Equal(t, 1, p.Entries, "a suspended leaf is resumed, not re-entered")
	assert.Equal(t, 3, p.Ticks)
}

func TestStack_RestartsAfterCompletion(t *testing.T) {
	p := testutils.NewProbe("leaf", domain.Succeed(nil))
	s := runtime.New(p)

	for tick := uint64(1); tick <= 3; tick++ {
		_, err := s.Tick(testutils.Ctx(tick))
		require.NoError(t, err)
	}
	assert.Equal(t, 3, p.Entries)
}

func TestStack_NilRoot(t *testing.T) {
	_, err := runtime.New(nil).Tick(testutils.Ctx(1))
	assert.ErrorIs(t, err, domain.ErrConfiguration)
}

func TestStack_CyclicTreeHitsDepthLimit(t *testing.T) {
	s := runtime.New(&loop{}, runtime.WithMaxDepth(16))

	_, err := s.Tick(testutils.Ctx(1))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrConfiguration)
	assert.True(t, s.Empty(), "frames are discarded after a configuration error")
}

func TestStack_AbortInnermostFirst(t *testing.T) {
	p := testutils.Forever("leaf")
	var aborted []string
	hooks := domain.LifecycleHooks{
		OnAbort: func(_ context.Context, e *domain.FrameEvent) {
			aborted = append(aborted, e.Node)
			assert.Equal(t, "reset", e.Result.Reason)
		},
	}
	s := runtime.New(&wrap{name: "outer", child: p}, runtime.WithHooks(hooks), runtime.WithTreeID("t-1"))

	_, err := s.Tick(testutils.Ctx(1))
	require.NoError(t, err)

	s.Abort(testutils.Ctx(2), "reset")
	assert.Equal(t, []string{"leaf", "outer"}, aborted)
	assert.Equal(t, []string{"leaf"}, p.Aborts)
	assert.True(t, s.Empty())

	// Aborting an empty stack is a no-op.
	s.Abort(testutils.Ctx(3), "reset")
	assert.Len(t, p.Aborts, 1)
}

func TestStack_PushPopHooks(t *testing.T) {
	var events []string
	hooks := domain.LifecycleHooks{
		OnFramePush: func(_ context.Context, e *domain.FrameEvent) {
			events = append(events, "push:"+e.Node)
			assert.Equal(t, "t-1", e.TreeID)
		},
		OnFramePop: func(_ context.Context, e *domain.FrameEvent) {
			events = append(events, "pop:"+e.Node+":"+e.Result.String())
		},
	}
	s := runtime.New(&wrap{name: "outer", child: testutils.NewProbe("leaf", domain.Fail(nil))},
		runtime.WithHooks(hooks), runtime.WithTreeID("t-1"))

	r, err := s.Tick(testutils.Ctx(1))
	require.NoError(t, err)
	assert.True(t, r.Failed())
	assert.Equal(t, []string{
		"push:outer",
		"push:leaf",
		"pop:leaf:complete(failure)",
		"pop:outer:complete(failure)",
	}, events)
}

func TestNested_ContinuesDepthNumbering(t *testing.T) {
	ctx := testutils.Ctx(1)
	ctx.Env.MaxDepth = 4
	parent := &domain.Frame{Node: &loop{}, Depth: 2}

	sub := runtime.Nested(ctx, parent, testutils.Forever("leaf"))
	_, err := sub.Tick(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, sub.Path()[0].Depth)

	deep := runtime.Nested(ctx, parent, &loop{})
	_, err = deep.Tick(ctx)
	assert.ErrorIs(t, err, domain.ErrConfiguration)
}
