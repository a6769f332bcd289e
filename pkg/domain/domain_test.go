package domain_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/aretw0/stackbt/pkg/domain"
	"github.com/stretchr/testify/assert"
)

type bare struct{}

func (bare) Tick(*domain.Context, *domain.Frame) (domain.Step, error) {
	return domain.Wait(), nil
}

type branch struct {
	name string
	kids []domain.Node
}

func (b *branch) Tick(*domain.Context, *domain.Frame) (domain.Step, error) {
	return domain.Wait(), nil
}

func (b *branch) Describe() domain.Descriptor {
	return domain.Descriptor{Name: b.name, Kind: domain.KindSequence, Children: b.kids}
}

func TestResult(t *testing.T) {
	tests := []struct {
		r    domain.Result
		want string
	}{
		{domain.Pending(), "pending"},
		{domain.Succeed(1), "complete(success)"},
		{domain.Fail(nil), "complete(failure)"},
		{domain.Abort(""), "aborted"},
		{domain.Abort("timeout"), "aborted(timeout)"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.r.String())
	}

	assert.True(t, domain.Succeed(nil).Invert().Failed())
	assert.True(t, domain.Fail(nil).Invert().Succeeded())
	assert.True(t, domain.Pending().Invert().IsPending())
	assert.Equal(t, "x", domain.Complete(domain.Failure, "x").Invert().Value)
	assert.False(t, domain.Abort("x").Failed(), "aborted is not a failure")
}

func TestStep(t *testing.T) {
	child := bare{}
	assert.Equal(t, domain.Node(child), domain.Descend(child).Child())
	assert.Nil(t, domain.Yield(domain.Succeed(nil)).Child())
	assert.True(t, domain.Wait().Result().IsPending())
}

func TestConfigurationError(t *testing.T) {
	cause := errors.New("missing rule")
	err := fmt.Errorf("tick 3: %w", &domain.ConfigurationError{Node: "guard", Reason: `state "idle"`, Err: cause})

	assert.ErrorIs(t, err, domain.ErrConfiguration)
	assert.ErrorIs(t, err, cause)
	assert.EqualError(t, err, `tick 3: configuration error in "guard": state "idle": missing rule`)

	var ce *domain.ConfigurationError
	assert.ErrorAs(t, domain.Misconfigured("seq", "no children"), &ce)
	assert.Equal(t, "no children", ce.Reason)
}

func TestDescribeAndWalk(t *testing.T) {
	assert.Equal(t, domain.Descriptor{Name: "domain_test.bare", Kind: domain.KindLeaf}, domain.Describe(bare{}))

	root := &branch{name: "root", kids: []domain.Node{
		&branch{name: "a", kids: []domain.Node{bare{}}},
		&branch{name: "b"},
	}}
	var visited []string
	domain.Walk(root, func(n domain.Node, depth int) bool {
		d := domain.Describe(n)
		visited = append(visited, fmt.Sprintf("%s@%d", d.Name, depth))
		return d.Name != "a"
	})
	assert.Equal(t, []string{"root@0", "a@1", "b@1"}, visited)
}

func TestFrameInfo(t *testing.T) {
	f := &domain.Frame{Node: &branch{name: "seq"}, Depth: 2}
	assert.True(t, f.FirstEntry())
	assert.Equal(t, domain.FrameInfo{Name: "seq", Kind: domain.KindSequence, Depth: 2}, f.Info())
}

func TestLifecycleHooks_Merge(t *testing.T) {
	var calls []string
	a := domain.LifecycleHooks{
		OnFramePush: func(context.Context, *domain.FrameEvent) { calls = append(calls, "a.push") },
		OnTick:      func(context.Context, *domain.TickEvent) { calls = append(calls, "a.tick") },
	}
	b := domain.LifecycleHooks{
		OnFramePush: func(context.Context, *domain.FrameEvent) { calls = append(calls, "b.push") },
		OnAbort:     func(context.Context, *domain.FrameEvent) { calls = append(calls, "b.abort") },
	}
	h := a.Merge(b)
	h.OnFramePush(context.Background(), &domain.FrameEvent{})
	h.OnTick(context.Background(), &domain.TickEvent{})
	h.OnAbort(context.Background(), &domain.FrameEvent{})

	assert.Equal(t, []string{"a.push", "b.push", "a.tick", "b.abort"}, calls)
	assert.Nil(t, h.OnFramePop)
}

func TestContext(t *testing.T) {
	ctx := domain.NewContext(nil, 7, 3, time.Unix(0, 0))
	assert.NotNil(t, ctx.Context)
	assert.Equal(t, 7, ctx.World)
	assert.NotNil(t, ctx.Log())

	var nilCtx *domain.Context
	assert.NotNil(t, nilCtx.Log())
}

func TestSnapshotActive(t *testing.T) {
	var empty *domain.Snapshot
	_, ok := empty.Active()
	assert.False(t, ok)

	snap := &domain.Snapshot{Path: []domain.FrameInfo{{Name: "root"}, {Name: "leaf"}}}
	f, ok := snap.Active()
	assert.True(t, ok)
	assert.Equal(t, "leaf", f.Name)
}
