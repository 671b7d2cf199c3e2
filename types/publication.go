package types

import "time"

// Assignment lifecycle values recorded with published assignments.
const (
	// LifecycleBulk marks assignments computed by a bulk strategy (bootstrap).
	LifecycleBulk = "bulk"

	// LifecycleImmediate marks assignments computed for orphaned regions.
	LifecycleImmediate = "immediate"
)

// PlanBatch is one published list of region moves.
//
// Version increases with every publication from the same bucket, including
// across coordinator restarts, so executors can discard stale batches.
type PlanBatch struct {
	// Version is a monotonically increasing publication version.
	Version int64 `json:"version"`

	// CreatedAt is the time the batch was published.
	CreatedAt time.Time `json:"createdAt"`

	// Plans are the moves in execution order.
	Plans []RegionPlan `json:"plans"`
}

// ServerAssignment is the published set of regions a server should open.
type ServerAssignment struct {
	// Version is a monotonically increasing publication version.
	Version int64 `json:"version"`

	// Lifecycle indicates how the assignment was computed (LifecycleBulk, LifecycleImmediate).
	Lifecycle string `json:"lifecycle"`

	// Server is the server the regions are assigned to.
	Server ServerInfo `json:"server"`

	// Regions is the list of regions assigned to Server.
	Regions []Region `json:"regions"`
}

// ServerReport is the periodic report of the regions a server hosts.
//
// Reports are written by the servers themselves and read back by a
// coordinator to build a ClusterState.
type ServerReport struct {
	// Server is the reporting server.
	Server ServerInfo `json:"server"`

	// Regions are the regions the server had open when reporting.
	Regions []Region `json:"regions"`

	// ReportedAt is the time the report was written.
	ReportedAt time.Time `json:"reportedAt"`
}
