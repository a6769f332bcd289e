package gobt_test

import (
	"errors"
	"testing"

	"github.com/aretw0/stackbt/internal/runtime"
	"github.com/aretw0/stackbt/internal/testutils"
	"github.com/aretw0/stackbt/pkg/adapters/gobt"
	"github.com/aretw0/stackbt/pkg/bt"
	"github.com/aretw0/stackbt/pkg/domain"
	"github.com/aretw0/stackbt/pkg/leaf"
	"github.com/joeycumines/go-behaviortree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countdown is Running until it has been ticked n times, then returns status.
func countdown(n int, status behaviortree.Status) (behaviortree.Node, *int) {
	calls := new(int)
	return behaviortree.New(func([]behaviortree.Node) (behaviortree.Status, error) {
		*calls++
		if *calls < n {
			return behaviortree.Running, nil
		}
		return status, nil
	}), calls
}

func TestImport_MapsStatuses(t *testing.T) {
	tests := []struct {
		name   string
		status behaviortree.Status
		want   func(domain.Result) bool
	}{
		{"success", behaviortree.Success, domain.Result.Succeeded},
		{"failure", behaviortree.Failure, domain.Result.Failed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			node, calls := countdown(3, tt.status)
			d := testutils.NewDriver(runtime.New(gobt.Import("legacy", node)).Tick)

			for range 2 {
				r, err := d.Next()
				require.NoError(t, err)
				assert.True(t, r.IsPending())
			}
			r, err := d.Next()
			require.NoError(t, err)
			assert.True(t, tt.want(r), "got %s", r)
			assert.Equal(t, 3, *calls)
		})
	}
}

func TestImport_TickErrorIsFailure(t *testing.T) {
	boom := errors.New("boom")
	node := behaviortree.New(func([]behaviortree.Node) (behaviortree.Status, error) {
		return behaviortree.Failure, boom
	})

	r, err := runtime.New(gobt.Import("legacy", node)).Tick(testutils.Ctx(1))
	require.NoError(t, err)
	require.True(t, r.Failed())

	var te *gobt.TickError
	require.ErrorAs(t, r.Value.(error), &te)
	assert.Equal(t, "legacy", te.Node)
	assert.ErrorIs(t, te, boom)
}

func TestImport_NilNode(t *testing.T) {
	_, err := runtime.New(gobt.Import("legacy", nil)).Tick(testutils.Ctx(1))
	assert.ErrorIs(t, err, domain.ErrConfiguration)
}

func TestImport_InsideComposite(t *testing.T) {
	node, _ := countdown(2, behaviortree.Success)
	root := bt.MustSequence("root", gobt.Import("legacy", node), leaf.Succeed("after"))
	d := testutils.NewDriver(runtime.New(root).Tick)

	r, err := d.Next()
	require.NoError(t, err)
	assert.True(t, r.IsPending())

	r, err = d.Next()
	require.NoError(t, err)
	assert.True(t, r.Succeeded())
}

func TestExport(t *testing.T) {
	seen := 0
	root := bt.MustSequence("root",
		leaf.Wait("wait", 1),
		leaf.Action("count", func(ctx *domain.Context) domain.Result {
			seen = ctx.World.(int)
			return domain.Succeed(nil)
		}),
	)
	node := gobt.Export(root, gobt.WithWorld(42))

	status, err := node.Tick()
	require.NoError(t, err)
	assert.Equal(t, behaviortree.Running, status)

	status, err = node.Tick()
	require.NoError(t, err)
	assert.Equal(t, behaviortree.Success, status)
	assert.Equal(t, 42, seen)
}

func TestExport_InsideGoBehaviortreeSequence(t *testing.T) {
	tree := behaviortree.New(
		behaviortree.Sequence,
		gobt.Export(leaf.Succeed("ok")),
		gobt.Export(leaf.Fail("nope")),
	)
	status, err := tree.Tick()
	require.NoError(t, err)
	assert.Equal(t, behaviortree.Failure, status)
}

func TestExport_Errors(t *testing.T) {
	_, err := gobt.Export(nil).Tick()
	assert.ErrorIs(t, err, domain.ErrConfiguration)

	aborted := leaf.Always("cancelled", domain.Abort("stop"))
	status, err := gobt.Export(aborted).Tick()
	assert.Equal(t, behaviortree.Failure, status)
	assert.ErrorIs(t, err, gobt.ErrAborted)
}
