package types

// MetricsCollector defines methods for recording operational metrics.
//
// Implementations should be non-blocking and thread-safe: balancing calls
// may run concurrently on independent snapshots.
//
// This interface composes smaller, domain-focused interfaces for better modularity.
type MetricsCollector interface {
	BalanceMetrics
	AssignmentMetrics
	PublishMetrics
	ReportMetrics
}

// BalanceMetrics defines metrics for balancing decisions.
type BalanceMetrics interface {
	// RecordBalanceDuration records the time taken to compute a plan.
	//
	// Parameters:
	//   - duration: Time taken in seconds
	RecordBalanceDuration(duration float64)

	// RecordClusterShape sets the server and region counts of the last snapshot (gauges).
	RecordClusterShape(servers, regions int)

	// RecordOutOfBand sets how many servers were above ceil(avg) and below floor(avg).
	RecordOutOfBand(overloaded, underloaded int)

	// RecordPlans records the number of plans emitted by one balancing call.
	RecordPlans(count int)
}

// AssignmentMetrics defines metrics for bulk and immediate assignment.
type AssignmentMetrics interface {
	// RecordAssignment records one assignment call.
	//
	// Parameters:
	//   - kind: Assignment kind ("bulk", "immediate")
	//   - assigned: Number of regions that received a server
	//   - unassigned: Number of regions left without a server
	RecordAssignment(kind string, assigned, unassigned int)
}

// PublishMetrics defines metrics for handing plans to the executor.
type PublishMetrics interface {
	// RecordPublish records a publish attempt.
	//
	// Parameters:
	//   - kind: What was published ("plans", "assignments")
	//   - success: true if the publish succeeded
	RecordPublish(kind string, success bool)

	// RecordKVOperationDuration records NATS KV operation latency.
	//
	// Parameters:
	//   - operation: Operation type ("get", "put", "delete", "keys")
	//   - duration: Time taken in seconds
	RecordKVOperationDuration(operation string, duration float64)
}

// ReportMetrics defines metrics for server region reports.
type ReportMetrics interface {
	// RecordReport records one report written by a server.
	//
	// Parameters:
	//   - success: true if the report was stored
	RecordReport(success bool)

	// RecordReportsRead records the outcome of building a snapshot from reports.
	//
	// Parameters:
	//   - live: Reports used in the snapshot
	//   - skipped: Reports dropped as expired or undecodable
	RecordReportsRead(live, skipped int)
}
