// Package rebalance provides a region placement and balancing engine.
//
// The engine is a pure decision component for a coordinator that distributes
// regions (independently placeable key ranges) over servers. Given a snapshot
// of which server hosts which regions, it answers three questions:
//
//   - Which moves bring every server to floor(avg) or ceil(avg) regions?
//     (Balancer.BalanceCluster)
//   - How should a batch of regions be spread over servers at bootstrap?
//     (Balancer.BulkAssignment)
//   - Where should regions that lost their server go right now?
//     (Balancer.ImmediateAssignment)
//
// The engine never executes moves. Membership, transport and executing
// plans are left to the caller, which plugs them in as a ClusterSource and a
// PlanSink. The publisher package provides a PlanSink backed by NATS
// JetStream KV, and the source package a ClusterSource assembled from the
// reports region servers write to the same KV store
// (Balancer.NewPublisher, Balancer.NewKVSource).
//
// # Quick Start
//
//	cfg := rebalance.DefaultConfig()
//	b, err := rebalance.NewBalancer(&cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	plans := b.BalanceCluster(rebalance.ClusterState{
//	    rs1: {r1, r2, r3, r4},
//	    rs2: {r5},
//	    rs3: {},
//	})
//	for _, p := range plans {
//	    fmt.Println(p) // region: source -> destination
//	}
//
// # Balance Invariant
//
// With T regions over N servers, a cluster is balanced when every server
// hosts floor(T/N) or ceil(T/N) regions. BalanceCluster returns no plans for
// an already balanced cluster, and otherwise returns a move list after which
// exactly T mod N servers sit at ceil(T/N). No region moves twice within one
// list, and plans are ordered as they were decided.
//
// Plans are computed against a point-in-time snapshot. Re-check them with
// ClusterState.Reconcile against a fresh snapshot before executing.
//
// # Strategies
//
// Bulk assignment defaults to strategy.RoundRobin. Immediate assignment
// defaults to strategy.LeastLoaded; set Config.ImmediateStrategy to
// "consistent-hash" for placements that stay stable across calls.
//
// # Degenerate Inputs
//
// No servers, no regions, or a single server never produce an error from the
// Balancer: the result is simply empty.
package rebalance
