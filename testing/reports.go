package testing

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/nats-io/nats.go/jetstream"

	"github.com/arloliu/rebalance/internal/kvutil"
	"github.com/arloliu/rebalance/types"
)

// PutReport writes one server report under "<prefix>.<server token>", the
// key a source.Reporter would use.
func PutReport(t testing.TB, kv jetstream.KeyValue, prefix string, report types.ServerReport) {
	t.Helper()

	data, err := json.Marshal(report)
	if err != nil {
		t.Fatalf("Failed to marshal report for %s: %v", report.Server, err)
	}

	if _, err := kv.Put(t.Context(), prefix+"."+kvutil.ServerToken(report.Server), data); err != nil {
		t.Fatalf("Failed to put report for %s: %v", report.Server, err)
	}
}

// PutReports writes one report per server of state, all stamped reportedAt.
//
// Parameters:
//   - t: Testing context
//   - kv: Report bucket
//   - prefix: Report key prefix
//   - state: Placement to report
//   - reportedAt: Report timestamp
func PutReports(t testing.TB, kv jetstream.KeyValue, prefix string, state types.ClusterState, reportedAt time.Time) {
	t.Helper()

	for _, s := range state.Servers() {
		PutReport(t, kv, prefix, types.ServerReport{Server: s, Regions: state[s], ReportedAt: reportedAt})
	}
}
