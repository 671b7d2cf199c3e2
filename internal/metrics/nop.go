// Package metrics provides MetricsCollector implementations.
package metrics

import "github.com/arloliu/rebalance/types"

// NopMetrics implements a no-op metrics collector.
//
// All metrics are discarded. Useful for testing or when external
// metrics collection is used.
type NopMetrics struct{}

// Compile-time assertion that NopMetrics implements MetricsCollector.
var _ types.MetricsCollector = (*NopMetrics)(nil)

// NewNop creates a new no-op metrics collector.
//
// Returns:
//   - *NopMetrics: A new no-op metrics collector instance
//
// Example:
//
//	b, err := rebalance.NewBalancer(&cfg, rebalance.WithMetrics(metrics.NewNop()))
func NewNop() *NopMetrics {
	return &NopMetrics{}
}

// BalanceMetrics implementation

// RecordBalanceDuration discards the balance duration metric.
func (n *NopMetrics) RecordBalanceDuration(_ /* duration */ float64) {
	// No-op
}

// RecordClusterShape discards the cluster shape gauges.
func (n *NopMetrics) RecordClusterShape(_ /* servers */, _ /* regions */ int) {
	// No-op
}

// RecordOutOfBand discards the out-of-band server gauges.
func (n *NopMetrics) RecordOutOfBand(_ /* overloaded */, _ /* underloaded */ int) {
	// No-op
}

// RecordPlans discards the plan counter.
func (n *NopMetrics) RecordPlans(_ /* count */ int) {
	// No-op
}

// AssignmentMetrics implementation

// RecordAssignment discards the assignment metric.
func (n *NopMetrics) RecordAssignment(_ /* kind */ string, _ /* assigned */, _ /* unassigned */ int) {
	// No-op
}

// PublishMetrics implementation

// RecordPublish discards the publish result metric.
func (n *NopMetrics) RecordPublish(_ /* kind */ string, _ /* success */ bool) {
	// No-op
}

// RecordKVOperationDuration discards the KV operation duration metric.
func (n *NopMetrics) RecordKVOperationDuration(_ /* operation */ string, _ /* duration */ float64) {
	// No-op
}

// ReportMetrics implementation

// RecordReport discards the report result metric.
func (n *NopMetrics) RecordReport(_ /* success */ bool) {
	// No-op
}

// RecordReportsRead discards the report read counts.
func (n *NopMetrics) RecordReportsRead(_ /* live */, _ /* skipped */ int) {
	// No-op
}
