package types

import (
	"errors"
	"strings"
)

// Sentinel errors for the rebalance library.
//
// Degenerate inputs (no servers, no regions) are not errors at the public
// API; these sentinels cover strategy-level conditions, plan validation,
// configuration and collaborator failures. Wrap with
// fmt.Errorf("%w: detail", ErrX) and test with errors.Is.

// Balancer errors - Public API errors returned by the Balancer facade.
var (
	// ErrInvalidConfig is returned when the configuration is invalid.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrUnknownStrategy is returned when a configured strategy name is not recognized.
	ErrUnknownStrategy = errors.New("unknown assignment strategy")

	// ErrClusterSourceRequired is returned when Rebalance is called without a source.
	ErrClusterSourceRequired = errors.New("cluster source is required")

	// ErrPlanSinkRequired is returned when Rebalance is called without a sink.
	ErrPlanSinkRequired = errors.New("plan sink is required")

	// ErrSnapshotFailed is returned when the cluster source cannot produce a snapshot.
	ErrSnapshotFailed = errors.New("failed to obtain cluster snapshot")
)

// Strategy errors - Returned by assignment strategies.
var (
	// ErrNoServers indicates that no servers were provided for assignment.
	ErrNoServers = errors.New("no servers available for assignment")
)

// Plan errors - Returned when replaying or validating plans against a snapshot.
var (
	// ErrInvalidPlan is returned for a malformed plan (source equals destination).
	ErrInvalidPlan = errors.New("invalid region plan")

	// ErrUnknownServer is returned when a plan references a server missing from the snapshot.
	ErrUnknownServer = errors.New("unknown server")

	// ErrStalePlan is returned when a plan's source no longer hosts its region.
	ErrStalePlan = errors.New("stale region plan")

	// ErrDuplicateRegion is returned when a region appears under more than one server.
	ErrDuplicateRegion = errors.New("region assigned to more than one server")
)

// Publisher errors - Returned by the NATS KV plan publisher.
var (
	// ErrPublishFailed is returned when publishing to NATS KV fails.
	ErrPublishFailed = errors.New("failed to publish")

	// ErrDeleteFailed is returned when deleting a stale key from NATS KV fails.
	ErrDeleteFailed = errors.New("failed to delete")

	// ErrNoPlansPublished is returned when no plan batch has been published yet.
	ErrNoPlansPublished = errors.New("no plans published")

	// ErrConnectivity indicates a NATS/KV connectivity issue.
	// Used to distinguish network failures from application errors.
	ErrConnectivity = errors.New("connectivity issue")

	// ErrNoKeysFound is returned when NATS KV returns no keys (expected condition).
	ErrNoKeysFound = errors.New("no keys found")
)

// IsNoKeysFoundError checks if an error indicates that no keys were found in NATS KV.
//
// This function handles NATS-specific "no keys found" errors which may come as:
//   - Direct error: "nats: no keys found"
//   - Wrapped error: "failed to list KV keys: nats: no keys found"
//
// Parameters:
//   - err: The error to check
//
// Returns:
//   - bool: true if the error indicates no keys were found, false otherwise
func IsNoKeysFoundError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrNoKeysFound) {
		return true
	}

	return strings.Contains(err.Error(), "no keys found")
}
