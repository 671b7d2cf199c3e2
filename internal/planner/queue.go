package planner

import (
	"container/heap"

	"github.com/arloliu/rebalance/types"
)

// serverQueue is a priority queue of servers keyed on live simulated load.
//
// With maxFirst the most loaded server is popped first, otherwise the least
// loaded one. Equal loads pop in server identity order so plans are
// reproducible.
//
// Loads of queued servers must not change while they are in the queue; the
// planner only mutates servers it has popped.
type serverQueue struct {
	servers  []types.ServerInfo
	loads    map[types.ServerInfo]int
	maxFirst bool
}

var _ heap.Interface = (*serverQueue)(nil)

func newServerQueue(loads map[types.ServerInfo]int, maxFirst bool, servers ...types.ServerInfo) *serverQueue {
	q := &serverQueue{
		servers:  append([]types.ServerInfo(nil), servers...),
		loads:    loads,
		maxFirst: maxFirst,
	}
	heap.Init(q)

	return q
}

func (q *serverQueue) Len() int { return len(q.servers) }

func (q *serverQueue) Less(i, j int) bool {
	li, lj := q.loads[q.servers[i]], q.loads[q.servers[j]]
	if li != lj {
		if q.maxFirst {
			return li > lj
		}

		return li < lj
	}

	return q.servers[i].Compare(q.servers[j]) < 0
}

func (q *serverQueue) Swap(i, j int) { q.servers[i], q.servers[j] = q.servers[j], q.servers[i] }

func (q *serverQueue) Push(x any) { q.servers = append(q.servers, x.(types.ServerInfo)) }

func (q *serverQueue) Pop() any {
	n := len(q.servers)
	s := q.servers[n-1]
	q.servers = q.servers[:n-1]

	return s
}

func (q *serverQueue) push(s types.ServerInfo) { heap.Push(q, s) }

func (q *serverQueue) pop() types.ServerInfo { return heap.Pop(q).(types.ServerInfo) }
