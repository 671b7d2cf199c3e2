// Package testing provides test utilities for the rebalance library.
//
// It follows Go's convention of shipping testing helpers in a dedicated
// package (similar to net/http/httptest).
//
// Key utilities:
//   - MockCluster / RandomCluster: Build snapshots from a list of per-server loads
//   - RandomServers / RandomRegions: Random identities for assignment tests
//   - AssertBalanced, AssertPlansValid, AssertBulkBalanced, AssertImmediateComplete:
//     Invariant checks shared by the planner, strategy and facade tests
//   - StartEmbeddedNATS / CreateJetStreamKV: In-process JetStream for publisher tests
//   - PutReport / PutReports: Seed a report bucket the way source.Reporter writes it
//   - NewTestLogger: Logger that writes through testing.TB
//
// Example usage:
//
//	import (
//	    "testing"
//	    rbtest "github.com/arloliu/rebalance/testing"
//	)
//
//	func TestMyPlanner(t *testing.T) {
//	    state := rbtest.MockCluster(2, 4)
//	    plans := balancer.BalanceCluster(state)
//	    rbtest.AssertBalanced(t, rbtest.AssertPlansValid(t, state, plans))
//	}
package testing
