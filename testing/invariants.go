package testing

import (
	"testing"

	"github.com/arloliu/rebalance/types"
)

// AssertBalanced verifies that every server hosts floor(avg) or ceil(avg) regions.
//
// Parameters:
//   - t: testing handle
//   - state: snapshot to check (typically the result of replaying plans)
func AssertBalanced(t testing.TB, state types.ClusterState) {
	t.Helper()

	floorAvg, ceilAvg := state.Bounds()
	for _, s := range state.Servers() {
		load := state.Load(s)
		if load < floorAvg || load > ceilAvg {
			t.Fatalf("server %s hosts %d regions, want within [%d, %d] (loads=%v)",
				s, load, floorAvg, ceilAvg, loadList(state))
		}
	}
}

// AssertPlansValid replays plans against state, failing on the first plan
// whose source does not host its region at that point, and returns the
// resulting snapshot. It also fails if any region is moved more than once.
//
// Parameters:
//   - t: testing handle
//   - state: snapshot the plans were computed from
//   - plans: plans in execution order
//
// Returns:
//   - types.ClusterState: snapshot after all plans are applied
func AssertPlansValid(t testing.TB, state types.ClusterState, plans []types.RegionPlan) types.ClusterState {
	t.Helper()

	moved := make(map[types.Region]struct{}, len(plans))
	for _, p := range plans {
		if _, ok := moved[p.Region]; ok {
			t.Fatalf("region %s moved more than once", p.Region.ID())
		}
		moved[p.Region] = struct{}{}
	}

	out, err := state.Apply(plans)
	if err != nil {
		t.Fatalf("plans do not replay against snapshot: %v", err)
	}

	return out
}

// AssertBulkBalanced verifies a bulk assignment: every region assigned
// exactly once, only supplied servers used, and per-server counts in
// {floor, ceil} of regions/servers.
func AssertBulkBalanced(t testing.TB, regions []types.Region, servers []types.ServerInfo, assignments map[types.ServerInfo][]types.Region) {
	t.Helper()

	known := make(map[types.ServerInfo]struct{}, len(servers))
	for _, s := range servers {
		known[s] = struct{}{}
	}

	seen := make(map[types.Region]struct{}, len(regions))
	for s, rs := range assignments {
		if _, ok := known[s]; !ok {
			t.Fatalf("assignment uses unknown server %s", s)
		}
		for _, r := range rs {
			if _, ok := seen[r]; ok {
				t.Fatalf("duplicate region detected: %s", r.ID())
			}
			seen[r] = struct{}{}
		}
	}
	if len(seen) != len(regions) {
		t.Fatalf("assigned %d unique regions, want %d", len(seen), len(regions))
	}

	// Bounds count distinct servers; callers may pass duplicates.
	n := len(known)
	if n == 0 {
		return
	}
	floorAvg := len(regions) / n
	ceilAvg := floorAvg
	if len(regions)%n != 0 {
		ceilAvg++
	}
	for s := range known {
		if got := len(assignments[s]); got < floorAvg || got > ceilAvg {
			t.Fatalf("server %s got %d regions, want within [%d, %d]", s, got, floorAvg, ceilAvg)
		}
	}
}

// AssertImmediateComplete verifies that every region maps to one of the supplied servers.
func AssertImmediateComplete(t testing.TB, regions []types.Region, servers []types.ServerInfo, assignments map[types.Region]types.ServerInfo) {
	t.Helper()

	known := make(map[types.ServerInfo]struct{}, len(servers))
	for _, s := range servers {
		known[s] = struct{}{}
	}

	for _, r := range regions {
		s, ok := assignments[r]
		if !ok {
			t.Fatalf("region %s has no assignment", r.ID())
		}
		if _, ok := known[s]; !ok {
			t.Fatalf("region %s assigned to unknown server %s", r.ID(), s)
		}
	}
	if len(assignments) != len(regions) {
		t.Fatalf("assignment has %d entries, want %d", len(assignments), len(regions))
	}
}

// loadList renders loads in server identity order for failure messages.
func loadList(state types.ClusterState) []int {
	servers := state.Servers()
	out := make([]int, len(servers))
	for i, s := range servers {
		out[i] = state.Load(s)
	}

	return out
}
