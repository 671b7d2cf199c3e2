package planner

import (
	"fmt"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/require"

	rbtest "github.com/arloliu/rebalance/testing"
	"github.com/arloliu/rebalance/types"
)

// clusterShapes lists per-server region counts covering degenerate,
// small and heavily skewed clusters.
var clusterShapes = [][]int{
	// 1 server
	{0},
	{1},
	{10},
	// 2 servers
	{0, 0},
	{2, 0},
	{2, 1},
	{2, 2},
	{2, 3},
	{2, 4},
	{1, 1},
	{0, 1},
	{10, 1},
	{14, 1432},
	{47, 53},
	// 3 servers
	{0, 1, 2},
	{1, 2, 3},
	{0, 2, 2},
	{0, 3, 0},
	{0, 4, 0},
	{20, 20, 0},
	// 4 servers
	{0, 1, 2, 3},
	{4, 0, 0, 0},
	{5, 0, 0, 0},
	{6, 6, 0, 0},
	{6, 2, 0, 0},
	{6, 1, 0, 0},
	{6, 0, 0, 0},
	{4, 4, 4, 7},
	{4, 4, 4, 8},
	{0, 0, 0, 7},
	// 5 servers
	{1, 1, 1, 1, 4},
	// more servers
	{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15},
	{0, 0, 0, 0, 0, 0, 0, 0, 0, 10},
	{6, 6, 5, 6, 6, 6, 6, 6, 6, 1},
	{0, 0, 0, 0, 0, 0, 0, 0, 0, 54},
	{0, 0, 0, 0, 0, 0, 0, 0, 0, 55},
	{0, 0, 0, 0, 0, 0, 0, 0, 0, 56},
	{0, 0, 0, 0, 0, 0, 0, 0, 0, 16},
	{1, 1, 1, 1, 1, 1, 1, 1, 1, 8},
	{1, 1, 1, 1, 1, 1, 1, 1, 1, 9},
	{1, 1, 1, 1, 1, 1, 1, 1, 1, 10},
	{1, 1, 1, 1, 1, 1, 1, 1, 1, 123},
	{1, 1, 1, 1, 1, 1, 1, 1, 1, 155},
	{0, 0, 144, 1, 1, 1, 1, 1123, 133, 138, 12, 1444},
	{0, 0, 144, 1, 0, 4, 1, 1123, 133, 138, 12, 1444},
	// in-band settling on both sides
	{3, 3, 3, 0},
	{5, 0, 2},
	{7, 5, 5, 5},
}

func TestPlan_BalancesClusterShapes(t *testing.T) {
	for _, loads := range clusterShapes {
		t.Run(fmt.Sprint(loads), func(t *testing.T) {
			state := rbtest.MockCluster(loads...)

			plans, stats := Plan(state)

			balanced := rbtest.AssertPlansValid(t, state, plans)
			rbtest.AssertBalanced(t, balanced)
			require.Equal(t, len(plans), stats.Moves)
			require.Equal(t, minimalMoves(state), len(plans), "move count should be minimal")
			assertTouchBound(t, state, balanced, plans)
		})
	}
}

func TestPlan_RandomIdentities(t *testing.T) {
	rng := rand.New(rand.NewPCG(42, 1024))

	for range 200 {
		n := 1 + rng.IntN(12)
		loads := make([]int, n)
		for i := range loads {
			loads[i] = rng.IntN(40)
		}
		state := rbtest.RandomCluster(rng, loads...)

		plans, _ := Plan(state)

		rbtest.AssertBalanced(t, rbtest.AssertPlansValid(t, state, plans))
		require.Equal(t, minimalMoves(state), len(plans), "loads=%v", loads)
	}
}

func TestPlan_Scenarios(t *testing.T) {
	t.Run("two servers 2 and 4 need one move from the heavy server", func(t *testing.T) {
		state := rbtest.MockCluster(2, 4)
		light, heavy := server(state, 0), server(state, 1)

		plans, _ := Plan(state)

		require.Len(t, plans, 1)
		require.Equal(t, heavy, plans[0].Source)
		require.Equal(t, light, plans[0].Destination)
		require.Equal(t, state[heavy][0], plans[0].Region, "first hosted region moves")

		out := rbtest.AssertPlansValid(t, state, plans)
		require.Equal(t, 3, out.Load(light))
		require.Equal(t, 3, out.Load(heavy))
	})

	t.Run("three servers 0 1 2 need one move from the load-2 server", func(t *testing.T) {
		state := rbtest.MockCluster(0, 1, 2)

		plans, _ := Plan(state)

		require.Len(t, plans, 1)
		require.Equal(t, server(state, 2), plans[0].Source)
		require.Equal(t, server(state, 0), plans[0].Destination)

		out := rbtest.AssertPlansValid(t, state, plans)
		require.Equal(t, map[types.ServerInfo]int{
			server(state, 0): 1, server(state, 1): 1, server(state, 2): 1,
		}, out.Loads())
	})

	t.Run("leftover deficit is taken from servers at ceil in identity order", func(t *testing.T) {
		state := rbtest.MockCluster(3, 3, 3, 0)

		plans, stats := Plan(state)

		require.Equal(t, 0, stats.Overloaded)
		require.Equal(t, 1, stats.Underloaded)
		require.Len(t, plans, 2)
		require.Equal(t, server(state, 0), plans[0].Source)
		require.Equal(t, server(state, 1), plans[1].Source)
		require.Equal(t, server(state, 3), plans[0].Destination)
	})

	t.Run("leftover excess is given to servers at floor", func(t *testing.T) {
		state := rbtest.MockCluster(4, 4, 4, 7)

		plans, stats := Plan(state)

		require.Equal(t, 1, stats.Overloaded)
		require.Equal(t, 0, stats.Underloaded)
		require.Len(t, plans, 2)
		for _, p := range plans {
			require.Equal(t, server(state, 3), p.Source)
		}
		require.Equal(t, server(state, 0), plans[0].Destination)
		require.Equal(t, server(state, 1), plans[1].Destination)
	})
}

func TestPlan_DegenerateInputs(t *testing.T) {
	t.Run("nil snapshot", func(t *testing.T) {
		plans, stats := Plan(nil)
		require.Empty(t, plans)
		require.Equal(t, 0, stats.Servers)
	})

	t.Run("zero regions", func(t *testing.T) {
		plans, stats := Plan(rbtest.MockCluster(0, 0, 0))
		require.Empty(t, plans)
		require.True(t, stats.StrictBalanced)
	})

	t.Run("single server", func(t *testing.T) {
		plans, _ := Plan(rbtest.MockCluster(10))
		require.Empty(t, plans)
	})
}

func TestPlan_NoOpWhenBalanced(t *testing.T) {
	for _, loads := range [][]int{{1, 1}, {2, 3}, {3, 3, 2}, {5, 6, 5, 6, 5}} {
		state := rbtest.MockCluster(loads...)

		plans, stats := Plan(state)

		require.Empty(t, plans, "loads=%v", loads)
		require.True(t, stats.StrictBalanced)
		require.True(t, stats.LooseBalanced)
		require.Zero(t, stats.Overloaded)
		require.Zero(t, stats.Underloaded)
	}
}

func TestPlan_DoesNotMutateSnapshot(t *testing.T) {
	state := rbtest.MockCluster(0, 9, 3)
	before := state.Clone()

	_, _ = Plan(state)

	require.Equal(t, before, state)
}

func TestPlan_Deterministic(t *testing.T) {
	state := rbtest.MockCluster(0, 0, 144, 1, 0, 4, 1, 1123, 133, 138, 12, 1444)

	first, _ := Plan(state)
	for range 5 {
		again, _ := Plan(state)
		require.Equal(t, first, again)
	}
}

func TestPlan_Stats(t *testing.T) {
	plans, stats := Plan(rbtest.MockCluster(10, 1, 1))

	require.Equal(t, 3, stats.Servers)
	require.Equal(t, 12, stats.Regions)
	require.Equal(t, 4, stats.FloorAvg)
	require.Equal(t, 4, stats.CeilAvg)
	require.Equal(t, 1, stats.Overloaded)
	require.Equal(t, 2, stats.Underloaded)
	require.Equal(t, 6, stats.Moves)
	require.Len(t, plans, 6)
	require.False(t, stats.StrictBalanced)
	require.False(t, stats.LooseBalanced)
}

// server returns the i-th server of a MockCluster snapshot.
func server(state types.ClusterState, i int) types.ServerInfo {
	return state.Servers()[i]
}

// minimalMoves is the lower bound on moves for a snapshot: every region
// above ceil must leave, every slot below floor must be filled, and exactly
// total%n servers may stay at ceil.
func minimalMoves(state types.ClusterState) int {
	n := len(state)
	if n < 2 {
		return 0
	}

	floorAvg, ceilAvg := state.Bounds()
	rem := state.TotalRegions() % n

	excess, deficit, atOrAboveCeil := 0, 0, 0
	for _, load := range state.Loads() {
		if load > ceilAvg {
			excess += load - ceilAvg
		}
		if load < floorAvg {
			deficit += floorAvg - load
		}
		if ceilAvg > floorAvg && load >= ceilAvg {
			atOrAboveCeil++
		}
	}

	// Servers at or above ceil beyond the quota must drop one more to floor.
	extra := max(0, atOrAboveCeil-rem)

	return max(excess+extra, deficit)
}

// assertTouchBound checks that no server is a source or destination more
// often than |initial load - final load|.
func assertTouchBound(t *testing.T, before, after types.ClusterState, plans []types.RegionPlan) {
	t.Helper()

	touched := make(map[types.ServerInfo]int)
	for _, p := range plans {
		touched[p.Source]++
		touched[p.Destination]++
	}
	for s, count := range touched {
		diff := before.Load(s) - after.Load(s)
		if diff < 0 {
			diff = -diff
		}
		require.LessOrEqual(t, count, diff, "server %s touched %d times", s, count)
	}
}
