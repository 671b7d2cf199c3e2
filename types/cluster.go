package types

import (
	"fmt"
	"slices"
)

// ClusterState maps each server to the regions it currently hosts.
//
// A ClusterState is a read-only snapshot for a single balancing decision.
// Every region is expected to appear under exactly one server; callers that
// cannot guarantee this can check with Validate.
//
// A server with no regions is still a valid balancing target and should be
// present with an empty (or nil) slice.
type ClusterState map[ServerInfo][]Region

// Servers returns the servers of the snapshot sorted by identity.
//
// Returns:
//   - []ServerInfo: Newly allocated, sorted server list
func (cs ClusterState) Servers() []ServerInfo {
	servers := make([]ServerInfo, 0, len(cs))
	for s := range cs {
		servers = append(servers, s)
	}
	slices.SortFunc(servers, ServerInfo.Compare)

	return servers
}

// Load returns the number of regions hosted by the server (0 if unknown).
func (cs ClusterState) Load(server ServerInfo) int {
	return len(cs[server])
}

// Loads returns a fresh map of per-server region counts.
//
// The returned map is owned by the caller and may be mutated freely.
func (cs ClusterState) Loads() map[ServerInfo]int {
	loads := make(map[ServerInfo]int, len(cs))
	for s, regions := range cs {
		loads[s] = len(regions)
	}

	return loads
}

// TotalRegions returns the number of regions across all servers.
func (cs ClusterState) TotalRegions() int {
	total := 0
	for _, regions := range cs {
		total += len(regions)
	}

	return total
}

// Clone returns a deep copy of the snapshot.
func (cs ClusterState) Clone() ClusterState {
	if cs == nil {
		return nil
	}

	out := make(ClusterState, len(cs))
	for s, regions := range cs {
		out[s] = slices.Clone(regions)
	}

	return out
}

// Bounds returns floor and ceiling of the average load.
//
// Returns:
//   - floorAvg: floor(total / servers), 0 for an empty cluster
//   - ceilAvg: ceil(total / servers), 0 for an empty cluster
func (cs ClusterState) Bounds() (floorAvg, ceilAvg int) {
	n := len(cs)
	if n == 0 {
		return 0, 0
	}

	total := cs.TotalRegions()
	floorAvg = total / n
	ceilAvg = floorAvg
	if total%n != 0 {
		ceilAvg++
	}

	return floorAvg, ceilAvg
}

// IsBalanced reports whether every server load lies in {floor(avg), ceil(avg)}.
//
// An empty cluster and a single-server cluster are always balanced.
func (cs ClusterState) IsBalanced() bool {
	floorAvg, ceilAvg := cs.Bounds()
	for _, regions := range cs {
		if len(regions) < floorAvg || len(regions) > ceilAvg {
			return false
		}
	}

	return true
}

// Spread returns max load - min load (0 for an empty cluster).
func (cs ClusterState) Spread() int {
	if len(cs) == 0 {
		return 0
	}

	minLoad, maxLoad := -1, 0
	for _, regions := range cs {
		l := len(regions)
		if minLoad < 0 || l < minLoad {
			minLoad = l
		}
		maxLoad = max(maxLoad, l)
	}

	return maxLoad - minLoad
}

// Validate checks that no region appears more than once in the snapshot.
//
// Returns:
//   - error: ErrDuplicateRegion naming the first duplicate found, nil otherwise
func (cs ClusterState) Validate() error {
	owner := make(map[Region]ServerInfo, cs.TotalRegions())
	for _, s := range cs.Servers() {
		for _, r := range cs[s] {
			if prev, ok := owner[r]; ok {
				return fmt.Errorf("%w: %s on %s and %s", ErrDuplicateRegion, r.ID(), prev, s)
			}
			owner[r] = s
		}
	}

	return nil
}

// Apply replays plans in order against a copy of the snapshot.
//
// Each plan must be well formed, reference known servers, and move a region
// that its source hosts at that point of the replay.
//
// Parameters:
//   - plans: Plans to replay, in execution order
//
// Returns:
//   - ClusterState: New snapshot with all plans applied
//   - error: ErrInvalidPlan, ErrUnknownServer or ErrStalePlan on the first bad plan
func (cs ClusterState) Apply(plans []RegionPlan) (ClusterState, error) {
	out := cs.Clone()
	if out == nil {
		out = ClusterState{}
	}

	for i, p := range plans {
		if err := out.move(p); err != nil {
			return nil, fmt.Errorf("plan %d: %w", i, err)
		}
	}

	return out, nil
}

// Reconcile splits plans into those still applicable to this snapshot and
// those whose preconditions no longer hold.
//
// Plans are checked in order against this snapshot with the valid ones
// applied as they pass, so a later plan sees the effect of earlier ones.
// This is meant to be called against a fresh snapshot just before executing
// plans computed from an older one.
//
// Parameters:
//   - plans: Plans computed from an earlier snapshot
//
// Returns:
//   - valid: Plans that can still be executed, in the original order
//   - stale: Plans that must be discarded
func (cs ClusterState) Reconcile(plans []RegionPlan) (valid, stale []RegionPlan) {
	work := cs.Clone()
	for _, p := range plans {
		if err := work.move(p); err != nil {
			stale = append(stale, p)
			continue
		}
		valid = append(valid, p)
	}

	return valid, stale
}

// move applies a single plan in place. The state must be owned by the caller.
func (cs ClusterState) move(p RegionPlan) error {
	if err := p.Validate(); err != nil {
		return err
	}

	src, ok := cs[p.Source]
	if !ok {
		return fmt.Errorf("%w: source %s", ErrUnknownServer, p.Source)
	}
	if _, ok := cs[p.Destination]; !ok {
		return fmt.Errorf("%w: destination %s", ErrUnknownServer, p.Destination)
	}

	idx := slices.Index(src, p.Region)
	if idx < 0 {
		return fmt.Errorf("%w: %s not hosted by %s", ErrStalePlan, p.Region.ID(), p.Source)
	}

	cs[p.Source] = slices.Delete(src, idx, idx+1)
	cs[p.Destination] = append(cs[p.Destination], p.Region)

	return nil
}
