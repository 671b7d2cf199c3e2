package source

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	rbtest "github.com/arloliu/rebalance/testing"
	"github.com/arloliu/rebalance/types"
)

func TestStatic_Snapshot(t *testing.T) {
	t.Run("returns the placement", func(t *testing.T) {
		state := rbtest.MockCluster(3, 1, 0)
		src := NewStatic(state)

		result, err := src.Snapshot(context.Background())

		require.NoError(t, err)
		require.Equal(t, state, result)
	})

	t.Run("returns empty placement for nil", func(t *testing.T) {
		src := NewStatic(nil)

		result, err := src.Snapshot(context.Background())

		require.NoError(t, err)
		require.NotNil(t, result)
		require.Empty(t, result)
	})

	t.Run("returns independent copies", func(t *testing.T) {
		state := rbtest.MockCluster(2, 2)
		src := NewStatic(state)

		first, err := src.Snapshot(context.Background())
		require.NoError(t, err)
		for s := range first {
			first[s] = nil
		}

		second, err := src.Snapshot(context.Background())
		require.NoError(t, err)
		require.Equal(t, 4, second.TotalRegions())
	})

	t.Run("is isolated from the caller's map", func(t *testing.T) {
		state := rbtest.MockCluster(1, 1)
		src := NewStatic(state)
		for s := range state {
			delete(state, s)
		}

		result, err := src.Snapshot(context.Background())
		require.NoError(t, err)
		require.Len(t, result, 2)
	})

	t.Run("honors cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := NewStatic(rbtest.MockCluster(1)).Snapshot(ctx)
		require.ErrorIs(t, err, context.Canceled)
	})
}

func TestStatic_Update(t *testing.T) {
	src := NewStatic(rbtest.MockCluster(1, 1))

	src.Update(rbtest.MockCluster(1, 1, 1))

	result, err := src.Snapshot(context.Background())
	require.NoError(t, err)
	require.Len(t, result, 3)
}

func TestStatic_Apply(t *testing.T) {
	state := rbtest.MockCluster(2, 0)
	servers := state.Servers()
	src := NewStatic(state)

	t.Run("moves regions", func(t *testing.T) {
		plan := types.RegionPlan{Region: state[servers[0]][0], Source: servers[0], Destination: servers[1]}

		require.NoError(t, src.Apply([]types.RegionPlan{plan}))

		result, err := src.Snapshot(context.Background())
		require.NoError(t, err)
		require.Equal(t, 1, result.Load(servers[0]))
		require.Equal(t, 1, result.Load(servers[1]))
	})

	t.Run("leaves placement unchanged on stale plan", func(t *testing.T) {
		stale := types.RegionPlan{Region: types.Region{Table: "missing"}, Source: servers[0], Destination: servers[1]}

		err := src.Apply([]types.RegionPlan{stale})
		require.ErrorIs(t, err, types.ErrStalePlan)

		result, err := src.Snapshot(context.Background())
		require.NoError(t, err)
		require.Equal(t, 1, result.Load(servers[0]))
	})
}
