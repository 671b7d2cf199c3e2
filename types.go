package rebalance

import "github.com/arloliu/rebalance/types"

// Re-export types from the types package.
//
// Internal packages depend on types without depending on the root package,
// which avoids import cycles while users can still write rebalance.Region.
type (
	ServerInfo       = types.ServerInfo
	Region           = types.Region
	ClusterState     = types.ClusterState
	RegionPlan       = types.RegionPlan
	BalanceStats     = types.BalanceStats
	PlanBatch        = types.PlanBatch
	ServerAssignment = types.ServerAssignment
	ServerReport     = types.ServerReport
)

// Re-export interfaces from the types package for convenience.
type (
	BulkStrategy      = types.BulkStrategy
	ImmediateStrategy = types.ImmediateStrategy
	ClusterSource     = types.ClusterSource
	PlanSink          = types.PlanSink
	MetricsCollector  = types.MetricsCollector
	Logger            = types.Logger
)

// Re-export assignment lifecycle values.
const (
	LifecycleBulk      = types.LifecycleBulk
	LifecycleImmediate = types.LifecycleImmediate
)
