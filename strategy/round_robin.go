package strategy

import (
	"slices"

	"github.com/arloliu/rebalance/types"
)

// RoundRobin implements round-robin bulk assignment.
type RoundRobin struct{}

var _ types.BulkStrategy = (*RoundRobin)(nil)

// NewRoundRobin creates a new round-robin strategy.
//
// The strategy distributes regions evenly across servers in a simple
// round-robin fashion. Assignment is predictable but ignores any previous
// placement.
//
// Returns:
//   - *RoundRobin: Initialized round-robin strategy
//
// Example:
//
//	b, err := rebalance.NewBalancer(&cfg, rebalance.WithBulkStrategy(strategy.NewRoundRobin()))
func NewRoundRobin() *RoundRobin {
	return &RoundRobin{}
}

// Assign calculates a bulk assignment using round-robin distribution.
//
// The algorithm:
//  1. Sort a copy of the servers by identity (duplicates collapse)
//  2. Give region i to server i mod n, keeping region order per server
//
// Parameters:
//   - regions: Regions to place
//   - servers: Candidate servers (not modified)
//
// Returns:
//   - map[types.ServerInfo][]types.Region: Every server, possibly with no regions
//   - error: ErrNoServers when servers is empty
//
// Example:
//
//	assignments, err := strategy.NewRoundRobin().Assign(regions, servers)
func (rr *RoundRobin) Assign(regions []types.Region, servers []types.ServerInfo) (map[types.ServerInfo][]types.Region, error) {
	if len(servers) == 0 {
		return nil, ErrNoServers
	}

	sorted := slices.Clone(servers)
	slices.SortFunc(sorted, types.ServerInfo.Compare)
	sorted = slices.Compact(sorted)

	n := len(sorted)
	assignments := make(map[types.ServerInfo][]types.Region, n)
	for i, s := range sorted {
		// Server i receives regions i, i+n, i+2n, ...
		count := 0
		if i < len(regions) {
			count = (len(regions)-i-1)/n + 1
		}
		assignments[s] = make([]types.Region, 0, count)
	}

	for i, r := range regions {
		s := sorted[i%n]
		assignments[s] = append(assignments[s], r)
	}

	return assignments, nil
}
