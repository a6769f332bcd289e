package fsm_test

import (
	"testing"

	"github.com/aretw0/stackbt/internal/runtime"
	"github.com/aretw0/stackbt/internal/testutils"
	"github.com/aretw0/stackbt/pkg/bt"
	"github.com/aretw0/stackbt/pkg/domain"
	"github.com/aretw0/stackbt/pkg/fsm"
	"github.com/aretw0/stackbt/pkg/leaf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tick(t *testing.T, s *runtime.Stack, n uint64) domain.Result {
	t.Helper()
	r, err := s.Tick(testutils.Ctx(n))
	require.NoError(t, err)
	return r
}

func activeState(s *runtime.Stack) string {
	if s.Empty() {
		return ""
	}
	return s.Path()[0].State
}

func TestMachine_GoNowChainsWithinTick(t *testing.T) {
	patrol := testutils.NewProbe("patrol", domain.Succeed(nil))
	chase := testutils.Pendings("chase", 1, domain.Succeed("caught"))
	m := fsm.New("guard").
		Initial("patrol").
		State("patrol", patrol, fsm.Table{Success: fsm.GoNow("chase"), Failure: fsm.Stay()}).
		State("chase", chase, fsm.Table{Success: fsm.Propagate(), Failure: fsm.GoTo("patrol")}).
		MustBuild()

	s := runtime.New(m)
	assert.True(t, tick(t, s, 1).IsPending())
	assert.Equal(t, "chase", activeState(s))
	assert.Equal(t, 1, chase.Ticks, "chase is entered in the same tick")

	r := tick(t, s, 2)
	assert.True(t, r.Succeeded())
	assert.Equal(t, "caught", r.Value)
	assert.True(t, s.Empty())
}

func TestMachine_GoToDefersToNextTick(t *testing.T) {
	a := testutils.NewProbe("a", domain.Succeed(nil))
	b := testutils.NewProbe("b", domain.Fail("end"))
	m := fsm.New("m").
		Initial("a").
		State("a", a, fsm.Always(fsm.GoTo("b"))).
		State("b", b, fsm.Always(fsm.CompleteWith(domain.Success))).
		MustBuild()

	s := runtime.New(m)
	assert.True(t, tick(t, s, 1).IsPending())
	assert.Equal(t, "b", activeState(s))
	assert.Zero(t, b.Ticks)

	r := tick(t, s, 2)
	assert.True(t, r.Succeeded())
	assert.Equal(t, "end", r.Value, "CompleteWith keeps the child's value")
}

func TestMachine_StayKeepsPendingChild(t *testing.T) {
	child := testutils.Pendings("work", 2, domain.Succeed(nil))
	m := fsm.New("m").
		Initial("work").
		State("work", child, fsm.Table{Success: fsm.Done(domain.Succeed("ok")), Failure: fsm.Stay(), Aborted: fsm.Stay()}).
		MustBuild()

	s := runtime.New(m)
	assert.True(t, tick(t, s, 1).IsPending())
	assert.True(t, tick(t, s, 2).IsPending())
	r := tick(t, s, 3)
	assert.Equal(t, "ok", r.Value)
	assert.Equal(t, 1, child.Entries)
}

func TestMachine_StayOnCompletionReentersState(t *testing.T) {
	child := testutils.NewProbe("c", domain.Fail(nil))
	m := fsm.New("m").Initial("c").State("c", child, fsm.Always(fsm.Stay())).MustBuild()

	s := runtime.New(m)
	for i := uint64(1); i <= 3; i++ {
		assert.True(t, tick(t, s, i).IsPending())
	}
	assert.Equal(t, 3, child.Entries)
}

func TestMachine_MissingEntryIsConfigurationError(t *testing.T) {
	m := fsm.New("m").
		Initial("a").
		State("a", leaf.Fail("a"), fsm.Table{Success: fsm.Stay()}).
		MustBuild()

	s := runtime.New(m)
	_, err := s.Tick(testutils.Ctx(1))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrConfiguration)
	assert.Contains(t, err.Error(), `state "a"`)
	assert.True(t, s.Empty())
}

func TestMachine_PendingRuleLeavesRunningChild(t *testing.T) {
	stop := false
	busy := testutils.Forever("busy")
	m := fsm.New("m").
		Initial("busy").
		State("busy", busy, fsm.Rule(func(_ *domain.Context, r domain.Result) (fsm.Decision, error) {
			if stop {
				return fsm.GoNow("idle"), nil
			}
			return fsm.Stay(), nil
		})).
		State("idle", leaf.Succeed("idle"), fsm.Always(fsm.Propagate())).
		MustBuild()

	s := runtime.New(m)
	assert.True(t, tick(t, s, 1).IsPending())
	stop = true
	assert.True(t, tick(t, s, 2).Succeeded())
	assert.Equal(t, []string{"busy"}, busy.Aborts)
}

func TestMachine_HopLimit(t *testing.T) {
	a := testutils.NewProbe("a")
	b := testutils.NewProbe("b")
	m := fsm.New("m").
		Initial("a").
		State("a", a, fsm.Always(fsm.GoNow("b"))).
		State("b", b, fsm.Always(fsm.GoNow("a"))).
		MustBuild(fsm.WithMaxHops(3))

	s := runtime.New(m)
	assert.True(t, tick(t, s, 1).IsPending())
	assert.Equal(t, 2, a.Ticks)
	assert.Equal(t, 2, b.Ticks)
	assert.Equal(t, "a", activeState(s), "the target is entered next tick")

	assert.True(t, tick(t, s, 2).IsPending())
	assert.Equal(t, 4, a.Ticks)
}

func TestMachine_RestartsFromInitial(t *testing.T) {
	var seen []string
	m := fsm.New("m").
		Initial("a").
		State("a", leaf.Succeed("a"), fsm.Always(fsm.GoNow("b"))).
		State("b", leaf.Succeed("b"), fsm.Always(fsm.Propagate())).
		MustBuild(fsm.WithTransitionHook(func(_ *domain.Context, from, to string) {
			seen = append(seen, from+">"+to)
		}))

	s := runtime.New(m)
	assert.True(t, tick(t, s, 1).Succeeded())
	assert.True(t, tick(t, s, 2).Succeeded())
	assert.Equal(t, []string{"a>b", "a>b"}, seen)
}

func TestMachine_HostsComposites(t *testing.T) {
	work := bt.MustSequence("work", leaf.Wait("walk", 1), leaf.Succeed("arrive"))
	m := fsm.New("m").
		Initial("go").
		State("go", work, fsm.Table{Success: fsm.Propagate(), Failure: fsm.Propagate()}).
		MustBuild()

	s := runtime.New(m)
	assert.True(t, tick(t, s, 1).IsPending())
	path := s.Path()
	require.Len(t, path, 1)
	require.Len(t, path[0].Branches, 1)
	assert.Equal(t, "walk", path[0].Branches[0][1].Name)
	assert.Equal(t, 2, path[0].Branches[0][1].Depth)

	assert.True(t, tick(t, s, 2).Succeeded())
}

func TestMachine_DonePendingFromRule(t *testing.T) {
	m := fsm.New("m").
		Initial("a").
		State("a", leaf.Succeed("a"), fsm.Rule(func(*domain.Context, domain.Result) (fsm.Decision, error) {
			return fsm.Done(domain.Pending()), nil
		})).
		MustBuild()

	_, err := runtime.New(m).Tick(testutils.Ctx(1))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrConfiguration)
	assert.Contains(t, err.Error(), "completes with a pending result")
}

func TestMachine_StrictTables(t *testing.T) {
	build := func(table fsm.Table, opts ...fsm.Option) *runtime.Stack {
		return runtime.New(fsm.New("m").Initial("busy").State("busy", testutils.Forever("busy"), table).MustBuild(opts...))
	}
	loose := fsm.Always(fsm.Propagate())

	assert.True(t, tick(t, build(loose), 1).IsPending(), "Pending defaults to Stay")

	_, err := build(loose, fsm.WithStrictTables()).Tick(testutils.Ctx(1))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrConfiguration)
	assert.Contains(t, err.Error(), "no transition for pending")

	explicit := loose
	explicit.Pending = fsm.Stay()
	assert.True(t, tick(t, build(explicit, fsm.WithStrictTables()), 1).IsPending())
}

func TestMachine_PushSuspendsAndPopResumes(t *testing.T) {
	open := false
	game := testutils.Pendings("game", 3, domain.Succeed("won"))
	menu := testutils.Pendings("menu", 1, domain.Succeed(nil))
	var hops []string
	m := fsm.New("ui").
		Initial("game").
		State("game", game, fsm.Rule(func(_ *domain.Context, r domain.Result) (fsm.Decision, error) {
			if !r.IsPending() {
				return fsm.Propagate(), nil
			}
			if open {
				open = false
				return fsm.Push("menu"), nil
			}
			return fsm.Stay(), nil
		})).
		State("menu", menu, fsm.Always(fsm.Pop())).
		MustBuild(fsm.WithTransitionHook(func(_ *domain.Context, from, to string) {
			hops = append(hops, from+"->"+to)
		}))

	s := runtime.New(m)
	assert.True(t, tick(t, s, 1).IsPending())
	open = true
	assert.True(t, tick(t, s, 2).IsPending())
	assert.Equal(t, "game > menu", activeState(s))
	assert.Equal(t, 2, game.Ticks, "game is suspended, not ticked")

	assert.True(t, tick(t, s, 3).IsPending())
	assert.True(t, tick(t, s, 4).IsPending())
	assert.Equal(t, "game", activeState(s))

	assert.True(t, tick(t, s, 5).IsPending())
	r := tick(t, s, 6)
	assert.True(t, r.Succeeded())
	assert.Equal(t, "won", r.Value)
	assert.Equal(t, 1, game.Entries, "game resumes where it was suspended")
	assert.Empty(t, game.Aborts)
	assert.Equal(t, []string{"game->menu", "menu->game"}, hops)
}

func TestMachine_PopWithoutPushIsConfigurationError(t *testing.T) {
	m := fsm.New("m").Initial("a").State("a", leaf.Succeed("a"), fsm.Always(fsm.Pop())).MustBuild()

	s := runtime.New(m)
	_, err := s.Tick(testutils.Ctx(1))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrConfiguration)
	assert.Contains(t, err.Error(), "no suspended state")
	assert.True(t, s.Empty())
}

func TestMachine_AbortReleasesSuspendedStates(t *testing.T) {
	game := testutils.Forever("game")
	menu := testutils.Forever("menu")
	m := fsm.New("ui").
		Initial("game").
		State("game", game, fsm.Table{Pending: fsm.Push("menu"), Success: fsm.Propagate(), Failure: fsm.Propagate(), Aborted: fsm.Propagate()}).
		State("menu", menu, fsm.Always(fsm.Pop())).
		MustBuild()

	s := runtime.New(m)
	assert.True(t, tick(t, s, 1).IsPending())
	assert.True(t, tick(t, s, 2).IsPending())
	s.Abort(testutils.Ctx(3), "reset")

	assert.Equal(t, []string{"menu"}, menu.Aborts)
	assert.Equal(t, []string{"game"}, game.Aborts)
	assert.Contains(t, m.Edges(), fsm.Edge{From: "game", To: "menu", On: "pending", Push: true})
}

func TestMachine_PushdownLimit(t *testing.T) {
	a := testutils.Forever("a")
	m := fsm.New("m").
		Initial("a").
		State("a", a, fsm.Table{Pending: fsm.Push("a"), Success: fsm.Propagate(), Failure: fsm.Propagate(), Aborted: fsm.Propagate()}).
		MustBuild(fsm.WithMaxPushdown(2))

	s := runtime.New(m)
	assert.True(t, tick(t, s, 1).IsPending())
	assert.True(t, tick(t, s, 2).IsPending())
	_, err := s.Tick(testutils.Ctx(3))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrConfiguration)
	assert.Contains(t, err.Error(), "pushdown limit of 2")
	assert.Len(t, a.Aborts, 3, "active and suspended children are released")
}

func TestBuilder_Validate(t *testing.T) {
	tests := []struct {
		name    string
		builder *fsm.Builder
		want    string
	}{
		{
			name:    "no initial",
			builder: fsm.New("m").State("a", leaf.Succeed("a"), fsm.Always(fsm.Stay())),
			want:    "no initial state",
		},
		{
			name:    "undefined initial",
			builder: fsm.New("m").Initial("x").State("a", leaf.Succeed("a"), fsm.Always(fsm.Stay())),
			want:    `initial state "x" not defined`,
		},
		{
			name:    "undefined target",
			builder: fsm.New("m").Initial("a").State("a", leaf.Succeed("a"), fsm.Always(fsm.GoTo("b"))),
			want:    `undefined state "b"`,
		},
		{
			name:    "nil node",
			builder: fsm.New("m").Initial("a").State("a", nil, fsm.Always(fsm.Stay())),
			want:    "has no node",
		},
		{
			name:    "nil rules",
			builder: fsm.New("m").Initial("a").State("a", leaf.Succeed("a"), nil),
			want:    "no transition rules",
		},
		{
			name:    "undefined push target",
			builder: fsm.New("m").Initial("a").State("a", leaf.Succeed("a"), fsm.Always(fsm.Push("menu"))),
			want:    `undefined state "menu"`,
		},
		{
			name:    "pending completion",
			builder: fsm.New("m").Initial("a").State("a", leaf.Succeed("a"), fsm.Always(fsm.Done(domain.Pending()))),
			want:    "completes with a pending result",
		},
		{
			name: "duplicate state",
			builder: fsm.New("m").Initial("a").
				State("a", leaf.Succeed("a"), fsm.Always(fsm.Stay())).
				State("a", leaf.Succeed("a"), fsm.Always(fsm.Stay())),
			want: "declared twice",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.builder.Build()
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrConfiguration)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestMachine_Describe(t *testing.T) {
	m := fsm.New("m").
		Initial("b").
		State("a", leaf.Succeed("a"), fsm.Always(fsm.Stay())).
		State("b", leaf.Succeed("b"), fsm.Always(fsm.Stay())).
		MustBuild()

	d := domain.Describe(m)
	assert.Equal(t, domain.KindStateMachine, d.Kind)
	assert.Len(t, d.Children, 2)
	assert.Equal(t, []string{"a", "b"}, m.States())
	assert.Equal(t, "b", m.Initial())
}

func TestMachine_Edges(t *testing.T) {
	m := fsm.New("m").
		Initial("a").
		State("a", leaf.Succeed("a"), fsm.Table{Success: fsm.GoNow("b"), Failure: fsm.Stay()}).
		State("b", leaf.Succeed("b"), fsm.Table{Success: fsm.Propagate(), Failure: fsm.GoTo("a"), Aborted: fsm.GoTo("a")}).
		State("c", leaf.Succeed("c"), fsm.Rule(func(*domain.Context, domain.Result) (fsm.Decision, error) {
			return fsm.GoTo("a"), nil
		})).
		MustBuild()

	assert.Equal(t, []fsm.Edge{
		{From: "a", To: "b", On: "success", Now: true},
		{From: "b", To: "a", On: "failure"},
		{From: "b", To: "a", On: "aborted"},
	}, m.Edges())

	n, ok := m.Node("c")
	require.True(t, ok)
	assert.Equal(t, "c", domain.Describe(n).Name)
}
