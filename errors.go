package rebalance

import "github.com/arloliu/rebalance/types"

// Sentinel errors re-exported from the types package.
var (
	// ErrInvalidConfig is returned when the configuration is invalid.
	ErrInvalidConfig = types.ErrInvalidConfig

	// ErrUnknownStrategy is returned when a configured strategy name is not recognized.
	ErrUnknownStrategy = types.ErrUnknownStrategy

	// ErrClusterSourceRequired is returned when Rebalance is called without a source.
	ErrClusterSourceRequired = types.ErrClusterSourceRequired

	// ErrPlanSinkRequired is returned when Rebalance is called without a sink.
	ErrPlanSinkRequired = types.ErrPlanSinkRequired

	// ErrSnapshotFailed is returned when the cluster source cannot produce a snapshot.
	ErrSnapshotFailed = types.ErrSnapshotFailed

	// ErrNoServers is returned by strategies called without servers.
	ErrNoServers = types.ErrNoServers

	// ErrInvalidPlan is returned for a plan whose source equals its destination.
	ErrInvalidPlan = types.ErrInvalidPlan

	// ErrUnknownServer is returned when a plan references a server missing from the snapshot.
	ErrUnknownServer = types.ErrUnknownServer

	// ErrStalePlan is returned when a plan's source no longer hosts its region.
	ErrStalePlan = types.ErrStalePlan

	// ErrDuplicateRegion is returned when a region appears under more than one server.
	ErrDuplicateRegion = types.ErrDuplicateRegion

	// ErrPublishFailed is returned when handing plans to a sink fails.
	ErrPublishFailed = types.ErrPublishFailed

	// ErrDeleteFailed is returned when removing stale publications fails.
	ErrDeleteFailed = types.ErrDeleteFailed

	// ErrNoPlansPublished is returned when reading plans from an empty bucket.
	ErrNoPlansPublished = types.ErrNoPlansPublished

	// ErrConnectivity indicates a NATS/KV connectivity issue.
	ErrConnectivity = types.ErrConnectivity
)
