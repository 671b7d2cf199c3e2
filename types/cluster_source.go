package types

import "context"

// ClusterSource provides point-in-time snapshots of region placement.
//
// Implementations typically wrap the cluster membership and assignment
// tracking of a coordinator:
//   - Static: fixed snapshot for testing
//   - Custom: live view built from server reports
type ClusterSource interface {
	// Snapshot returns the current placement.
	//
	// Implementations should:
	//   - Return a copy the caller may keep
	//   - Include live servers with no regions as empty entries
	//   - Handle context cancellation gracefully
	//
	// Parameters:
	//   - ctx: Context for cancellation and timeout
	//
	// Returns:
	//   - ClusterState: Current placement snapshot
	//   - error: Snapshot error (nil on success)
	Snapshot(ctx context.Context) (ClusterState, error)
}

// PlanSink receives computed move plans for execution by the coordinator.
//
// The sink owns everything after planning: opening and closing regions,
// tracking in-transit state, and discarding plans that went stale.
type PlanSink interface {
	// PublishPlans hands an ordered plan list to the executor.
	//
	// Parameters:
	//   - ctx: Context for cancellation and timeout
	//   - plans: Non-empty ordered list of plans
	//
	// Returns:
	//   - error: Publishing error (nil on success)
	PublishPlans(ctx context.Context, plans []RegionPlan) error
}
