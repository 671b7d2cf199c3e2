package source

import (
	"context"
	"sync"

	"github.com/arloliu/rebalance/types"
)

// Static implements a cluster source backed by an in-memory snapshot.
type Static struct {
	mu    sync.RWMutex
	state types.ClusterState
}

var _ types.ClusterSource = (*Static)(nil)

// NewStatic creates a new static cluster source.
//
// The source returns a copy of the given placement on every Snapshot call.
// Useful for testing and for tools that load a placement from a file.
//
// Parameters:
//   - state: Initial placement (copied)
//
// Returns:
//   - *Static: Initialized static source
//
// Example:
//
//	src := source.NewStatic(types.ClusterState{
//	    rs1: {r1, r2, r3},
//	    rs2: {},
//	})
//	plans, err := balancer.Rebalance(ctx, src, sink)
func NewStatic(state types.ClusterState) *Static {
	return &Static{state: cloneOrEmpty(state)}
}

// Snapshot returns a copy of the current placement.
//
// Returns:
//   - types.ClusterState: Snapshot owned by the caller
//   - error: ctx.Err() if the context is already done
func (s *Static) Snapshot(ctx context.Context) (types.ClusterState, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.state.Clone(), nil
}

// Update replaces the placement.
//
// This lets tests simulate servers joining or leaving between rounds.
//
// Parameters:
//   - state: New placement (copied)
func (s *Static) Update(state types.ClusterState) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = cloneOrEmpty(state)
}

// Apply executes plans against the stored placement, as an executor would.
//
// Either every plan applies or the placement is left unchanged.
//
// Returns:
//   - error: The first plan error from types.ClusterState.Apply
func (s *Static) Apply(plans []types.RegionPlan) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := s.state.Apply(plans)
	if err != nil {
		return err
	}
	s.state = next

	return nil
}

func cloneOrEmpty(state types.ClusterState) types.ClusterState {
	if state == nil {
		return types.ClusterState{}
	}

	return state.Clone()
}
