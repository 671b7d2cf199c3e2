package strategy

import (
	"container/heap"

	"github.com/arloliu/rebalance/types"
)

// LeastLoaded implements immediate assignment by picking, for every region,
// the server that has received the fewest regions so far in the call.
//
// Only regions passed to Assign are counted: the strategy does not see the
// regions a server already hosts. The result is complete and incidentally
// balanced over the supplied regions.
type LeastLoaded struct{}

var _ types.ImmediateStrategy = (*LeastLoaded)(nil)

// NewLeastLoaded creates a new least-loaded immediate strategy.
//
// Returns:
//   - *LeastLoaded: Initialized strategy
func NewLeastLoaded() *LeastLoaded {
	return &LeastLoaded{}
}

// Assign places every region on the currently least-assigned server.
//
// Ties are broken by server identity, so the result is deterministic for a
// given input.
//
// Parameters:
//   - regions: Regions without a current owner
//   - servers: Candidate servers (not modified)
//
// Returns:
//   - map[types.Region]types.ServerInfo: One entry per region
//   - error: ErrNoServers when servers is empty
func (ll *LeastLoaded) Assign(regions []types.Region, servers []types.ServerInfo) (map[types.Region]types.ServerInfo, error) {
	if len(servers) == 0 {
		return nil, ErrNoServers
	}

	q := newCountQueue(servers)
	assignments := make(map[types.Region]types.ServerInfo, len(regions))
	for _, r := range regions {
		assignments[r] = q.take()
	}

	return assignments, nil
}

// countQueue is a min-heap of servers keyed on the number of regions handed
// out during one Assign call.
type countQueue struct {
	servers []types.ServerInfo
	counts  []int
}

var _ heap.Interface = (*countQueue)(nil)

func newCountQueue(servers []types.ServerInfo) *countQueue {
	seen := make(map[types.ServerInfo]struct{}, len(servers))
	q := &countQueue{servers: make([]types.ServerInfo, 0, len(servers))}
	for _, s := range servers {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		q.servers = append(q.servers, s)
	}
	q.counts = make([]int, len(q.servers))
	heap.Init(q)

	return q
}

// take returns the least-assigned server and charges it one region.
func (q *countQueue) take() types.ServerInfo {
	s := q.servers[0]
	q.counts[0]++
	heap.Fix(q, 0)

	return s
}

func (q *countQueue) Len() int { return len(q.servers) }

func (q *countQueue) Less(i, j int) bool {
	if q.counts[i] != q.counts[j] {
		return q.counts[i] < q.counts[j]
	}

	return q.servers[i].Compare(q.servers[j]) < 0
}

func (q *countQueue) Swap(i, j int) {
	q.servers[i], q.servers[j] = q.servers[j], q.servers[i]
	q.counts[i], q.counts[j] = q.counts[j], q.counts[i]
}

// Push and Pop are never called: the server set is fixed for a call.
func (q *countQueue) Push(any) { panic("countQueue: push not supported") }

func (q *countQueue) Pop() any { panic("countQueue: pop not supported") }
