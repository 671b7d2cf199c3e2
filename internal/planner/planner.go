package planner

import (
	"github.com/arloliu/rebalance/types"
)

// Plan computes the ordered region moves that balance the snapshot.
//
// The algorithm:
//  1. Compute floor(avg) and ceil(avg) over all servers
//  2. Return nothing when the cluster already sits in that band
//  3. Greedily pair the most overloaded server (load > ceil) with the most
//     underloaded one (load < floor), moving one region at a time and
//     re-queuing each side on its live load
//  4. When one side runs out, settle the other side against in-band servers:
//     leftover underloaded servers take one region each from servers at
//     ceil, leftover overloaded servers give one region each to servers at
//     floor
//
// Phase 4 is what makes exactly total%servers servers end at ceil.
//
// A source server gives away regions in the order they appear in the
// snapshot. Sources never receive during a call, so no region moves twice.
//
// Parameters:
//   - state: Snapshot to balance (not modified)
//
// Returns:
//   - []types.RegionPlan: Plans in execution order (nil when none needed)
//   - types.BalanceStats: Shape and outcome of the decision
func Plan(state types.ClusterState) ([]types.RegionPlan, types.BalanceStats) {
	stats := types.BalanceStats{
		Servers:        len(state),
		Regions:        state.TotalRegions(),
		StrictBalanced: state.IsBalanced(),
		LooseBalanced:  state.Spread() < 2,
	}
	stats.FloorAvg, stats.CeilAvg = state.Bounds()

	if stats.Servers < 2 || stats.Regions == 0 || stats.StrictBalanced {
		return nil, stats
	}

	w := newWorkspace(state)
	floorAvg, ceilAvg := stats.FloorAvg, stats.CeilAvg

	var overloaded, underloaded []types.ServerInfo
	for _, s := range state.Servers() {
		switch load := w.loads[s]; {
		case load > ceilAvg:
			overloaded = append(overloaded, s)
		case load < floorAvg:
			underloaded = append(underloaded, s)
		}
	}
	stats.Overloaded = len(overloaded)
	stats.Underloaded = len(underloaded)

	over := newServerQueue(w.loads, true, overloaded...)
	under := newServerQueue(w.loads, false, underloaded...)
	w.drain(over, under, ceilAvg, floorAvg)

	if under.Len() > 0 {
		donors := newServerQueue(w.loads, true, w.serversAt(ceilAvg, floorAvg)...)
		w.drain(donors, under, floorAvg, floorAvg)
	}

	if over.Len() > 0 {
		receivers := newServerQueue(w.loads, false, w.serversAt(floorAvg, ceilAvg)...)
		w.drain(over, receivers, ceilAvg, ceilAvg)
	}

	stats.Moves = len(w.plans)

	return w.plans, stats
}

// workspace holds the call-local simulation of a balancing run.
type workspace struct {
	state types.ClusterState
	order []types.ServerInfo
	loads map[types.ServerInfo]int
	next  map[types.ServerInfo]int // index of the next region a source gives away
	plans []types.RegionPlan
}

func newWorkspace(state types.ClusterState) *workspace {
	return &workspace{
		state: state,
		order: state.Servers(),
		loads: state.Loads(),
		next:  make(map[types.ServerInfo]int),
	}
}

// drain pairs donors with receivers until either queue is empty.
//
// A donor is re-queued while its load stays above donorLimit, a receiver
// while its load stays below receiverLimit.
func (w *workspace) drain(donors, receivers *serverQueue, donorLimit, receiverLimit int) {
	for donors.Len() > 0 && receivers.Len() > 0 {
		src := donors.pop()
		dst := receivers.pop()

		w.move(src, dst)

		if w.loads[src] > donorLimit {
			donors.push(src)
		}
		if w.loads[dst] < receiverLimit {
			receivers.push(dst)
		}
	}
}

// move records one region moving from src to dst and updates simulated loads.
func (w *workspace) move(src, dst types.ServerInfo) {
	idx := w.next[src]
	w.next[src] = idx + 1

	w.plans = append(w.plans, types.RegionPlan{
		Region:      w.state[src][idx],
		Source:      src,
		Destination: dst,
	})
	w.loads[src]--
	w.loads[dst]++
}

// serversAt returns servers whose live load equals load, or nil when
// load == other (the band has a single value and nothing can move within it).
func (w *workspace) serversAt(load, other int) []types.ServerInfo {
	if load == other {
		return nil
	}

	var out []types.ServerInfo
	for _, s := range w.order {
		if w.loads[s] == load {
			out = append(out, s)
		}
	}

	return out
}
