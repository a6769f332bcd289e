package bt_test

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/stackbt/internal/runtime"
	"github.com/aretw0/stackbt/internal/testutils"
	"github.com/aretw0/stackbt/pkg/bt"
	"github.com/aretw0/stackbt/pkg/domain"
	"github.com/aretw0/stackbt/pkg/leaf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type npc struct {
	HP int
}

func TestInputMapper_ProjectsWorld(t *testing.T) {
	var seen []any
	low := leaf.Condition("low-hp", func(ctx *domain.Context) bool {
		seen = append(seen, ctx.World)
		return ctx.World.(int) < 5
	})
	m := must(bt.NewInputMapper("hp", low, func(ctx *domain.Context) any {
		return ctx.World.(*npc).HP
	}))

	s := runtime.New(m)
	world := &npc{HP: 9}
	r, err := s.Tick(domain.NewContext(context.Background(), world, 1, time.Unix(1, 0)))
	require.NoError(t, err)
	assert.Equal(t, "complete(failure)", r.String())

	world.HP = 2
	r, err = s.Tick(domain.NewContext(context.Background(), world, 2, time.Unix(2, 0)))
	require.NoError(t, err)
	assert.Equal(t, "complete(success)", r.String())
	assert.Equal(t, []any{9, 2}, seen)
}

func TestInputMapper_AbortReachesChild(t *testing.T) {
	child := testutils.Forever("child")
	m := must(bt.NewInputMapper("m", child, func(*domain.Context) any { return nil }))

	s := runtime.New(m)
	_, err := s.Tick(testutils.Ctx(1))
	require.NoError(t, err)
	s.Abort(testutils.Ctx(2), "reset")
	assert.Equal(t, []string{"child"}, child.Aborts)
}

func TestPostReset_RestartsFinishedChild(t *testing.T) {
	child := testutils.Pendings("child", 2, domain.Succeed(nil))
	p := must(bt.NewPostReset("loop", child, func(_ *domain.Context, r domain.Result) bool {
		return r.Succeeded()
	}))

	rs := run(t, p, 4)
	assert.Equal(t, []string{"pending", "pending", "pending", "pending"}, statuses(rs))
	assert.Equal(t, 2, child.Entries)
	assert.Empty(t, child.Aborts)
}

func TestPostReset_AbortsRunningChild(t *testing.T) {
	child := testutils.Forever("child")
	p := must(bt.NewPostReset("every-other", child, func(ctx *domain.Context, _ domain.Result) bool {
		return ctx.Tick == 2
	}))

	rs := run(t, p, 3)
	assert.Equal(t, []string{"pending", "pending", "pending"}, statuses(rs))
	assert.Equal(t, []string{"child"}, child.Aborts)
	assert.Equal(t, 2, child.Entries)
}

func TestPostReset_PassesThroughOtherResults(t *testing.T) {
	p := must(bt.NewPostReset("r", leaf.Fail("f"), func(_ *domain.Context, r domain.Result) bool {
		return r.Succeeded()
	}))

	rs := run(t, p, 1)
	assert.Equal(t, []string{"complete(failure)"}, statuses(rs))
}

func TestMapping_RequiresFunction(t *testing.T) {
	_, err := bt.NewInputMapper("m", leaf.Succeed("a"), nil)
	assert.ErrorIs(t, err, domain.ErrConfiguration)
	_, err = bt.NewPostReset("r", leaf.Succeed("a"), nil)
	assert.ErrorIs(t, err, domain.ErrConfiguration)
}
