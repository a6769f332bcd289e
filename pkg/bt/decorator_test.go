package bt_test

import (
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

func TestInverter(t *testing.T) {
	inv, err := bt.Inverter("not", leaf.Always("v", domain.Succeed("x")))
	require.NoError(t, err)

	rs := run(t, inv, 1)
	assert.True(t, rs[0].Failed())
	assert.Equal(t, "x", rs[0].Value)

	rs = run(t, bt.MustInverter("not", testutils.Pendings("p", 1, domain.Fail(nil))), 2)
	assert.Equal(t, []string{"pending", "complete(success)"}, statuses(rs))
}

func TestInverter_LeavesAbortedAlone(t *testing.T) {
	rs := run(t, bt.MustInverter("not", testutils.NewProbe("a", domain.Abort("why"))), 1)
	assert.True(t, rs[0].IsAborted())
}

func TestForceOutcome(t *testing.T) {
	ok, err := bt.ForceSuccess("ok", leaf.Fail("f"))
	require.NoError(t, err)
	assert.True(t, run(t, ok, 1)[0].Succeeded())

	bad, err := bt.ForceFailure("bad", leaf.Succeed("s"))
	require.NoError(t, err)
	assert.True(t, run(t, bad, 1)[0].Failed())
}

func TestDecorator_NilChild(t *testing.T) {
	_, err := bt.Inverter("not", nil)
	assert.ErrorIs(t, err, domain.ErrConfiguration)

	_, err = bt.NewTimeout("t", nil, 3)
	assert.ErrorIs(t, err, domain.ErrConfiguration)

	_, err = bt.NewGuard("g", leaf.Succeed("s"), nil)
	assert.ErrorIs(t, err, domain.ErrConfiguration)
}

func TestRepeat_RunsChildNTimes(t *testing.T) {
	child := testutils.NewProbe("child", domain.Succeed(nil))
	rep, err := bt.NewRepeat("rep", child, 3)
	require.NoError(t, err)

	rs := run(t, rep, 4)
	assert.Equal(t, []string{"pending", "pending", "complete(success)", "pending"}, statuses(rs))
	assert.Equal(t, 4, child.Entries, "the fourth tick restarts the repeat")
}

func TestRepeat_StopsOnFailure(t *testing.T) {
	child := testutils.NewProbe("child", domain.Fail(nil))
	rep, err := bt.NewRepeat("rep", child, 0)
	require.NoError(t, err)

	rs := run(t, rep, 1)
	assert.True(t, rs[0].Failed())
}

func TestRepeatUntil_RestartsOnCompletion(t *testing.T) {
	attempts := 0
	child := leaf.Action("try", func(*domain.Context) domain.Result {
		attempts++
		if attempts == 3 {
			return domain.Fail("third")
		}
		return domain.Succeed(nil)
	})
	rep, err := bt.NewRepeatUntil("until", child, domain.Failure)
	require.NoError(t, err)

	rs := run(t, rep, 3)
	assert.Equal(t, []string{"pending", "pending", "complete(failure)"}, statuses(rs))
	assert.Equal(t, "third", rs[2].Value)
}

func TestTimeout_AbortsAfterTickBudget(t *testing.T) {
	child := testutils.Forever("child")
	to, err := bt.NewTimeout("to", child, 2)
	require.NoError(t, err)

	rs := run(t, to, 3)
	assert.Equal(t, []string{"pending", "pending", "aborted(timeout)"}, statuses(rs))
	assert.Equal(t, 2, child.Ticks)
	assert.Equal(t, []string{"child"}, child.Aborts)
}

func TestTimeout_ChildFinishingInTime(t *testing.T) {
	child := testutils.Pendings("child", 1, domain.Succeed(nil))
	to, err := bt.NewTimeout("to", child, 2)
	require.NoError(t, err)

	rs := run(t, to, 2)
	assert.Equal(t, []string{"pending", "complete(success)"}, statuses(rs))
	assert.Empty(t, child.Aborts)
}

func TestDeadline_UsesContextClock(t *testing.T) {
	child := testutils.Forever("child")
	// testutils.Ctx advances the clock by one second per tick.
	to, err := bt.NewDeadline("to", child, 2*time.Second)
	require.NoError(t, err)

	rs := run(t, to, 3)
	assert.Equal(t, []string{"pending", "pending", "aborted(timeout)"}, statuses(rs))

	_, err = bt.NewDeadline("to", child, 0)
	assert.ErrorIs(t, err, domain.ErrConfiguration)
}

func TestTimeout_ParentAbortReachesChild(t *testing.T) {
	child := testutils.Forever("child")
	s := runtime.New(must(bt.NewTimeout("to", child, 10)))

	_, err := s.Tick(testutils.Ctx(1))
	require.NoError(t, err)
	s.Abort(testutils.Ctx(2), "reset")
	assert.Equal(t, []string{"child"}, child.Aborts)
}

func TestGuard_FailsAndAbortsWhenConditionBreaks(t *testing.T) {
	armed := true
	child := testutils.Forever("child")
	g, err := bt.NewGuard("armed", child, func(*domain.Context) bool { return armed })
	require.NoError(t, err)

	s := runtime.New(g)
	r, err := s.Tick(testutils.Ctx(1))
	require.NoError(t, err)
	assert.True(t, r.IsPending())

	armed = false
	r, err = s.Tick(testutils.Ctx(2))
	require.NoError(t, err)
	assert.True(t, r.Failed())
	assert.Equal(t, bt.GuardFailure{Guard: "armed"}, r.Value)
	assert.Equal(t, []string{"child"}, child.Aborts)
}

func TestPausable(t *testing.T) {
	decision := bt.Play
	child := testutils.Pendings("child", 2, domain.Succeed(nil))
	p, err := bt.NewPausable("p", child, func(*domain.Context) bt.StepDecision { return decision })
	require.NoError(t, err)

	s := runtime.New(p)
	tick := func(n uint64) domain.Result {
		r, err := s.Tick(testutils.Ctx(n))
		require.NoError(t, err)
		return r
	}

	assert.True(t, tick(1).IsPending())
	assert.Equal(t, 1, child.Ticks)

	decision = bt.Pause
	assert.True(t, tick(2).IsPending())
	assert.Equal(t, 1, child.Ticks, "paused child is not ticked")

	decision = bt.ResetPlay
	assert.True(t, tick(3).IsPending())
	assert.Equal(t, 2, child.Entries)
	assert.Equal(t, []string{"child"}, child.Aborts)

	decision = bt.Play
	assert.True(t, tick(4).IsPending())
	assert.True(t, tick(5).Succeeded())
}

func TestDecorators_RestartAfterCompletion(t *testing.T) {
	always := func(*domain.Context) bool { return true }
	tests := []struct {
		name string
		wrap func(child domain.Node) (domain.Node, error)
		want string
	}{
		{"inverter", func(c domain.Node) (domain.Node, error) { return bt.Inverter("not", c) }, "complete(failure)"},
		{"guard", func(c domain.Node) (domain.Node, error) { return bt.NewGuard("g", c, always) }, "complete(success)"},
		// A two-tick budget spent on the first run must start over on re-entry.
		{"timeout", func(c domain.Node) (domain.Node, error) { return bt.NewTimeout("to", c, 2) }, "complete(success)"},
		{"deadline", func(c domain.Node) (domain.Node, error) { return bt.NewDeadline("to", c, 2*time.Second) }, "complete(success)"},
		{"pausable", func(c domain.Node) (domain.Node, error) {
			return bt.NewPausable("p", c, func(*domain.Context) bt.StepDecision { return bt.Play })
		}, "complete(success)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			child := testutils.Pendings("child", 1, domain.Succeed(nil))
			n, err := tt.wrap(child)
			require.NoError(t, err)

			rs := run(t, n, 4)
			assert.Equal(t, []string{"pending", tt.want, "pending", tt.want}, statuses(rs))
			assert.Equal(t, 2, child.Entries)
			assert.Empty(t, child.Aborts)
		})
	}
}

func TestDecorators_Describe(t *testing.T) {
	d := domain.Describe(bt.MustInverter("not", leaf.Succeed("s")))
	assert.Equal(t, domain.KindDecorator, d.Kind)
	assert.Len(t, d.Children, 1)
}

func must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}
