// Package publisher hands balancing output to executors through a NATS
// JetStream KeyValue bucket.
//
// Keys written under the configured prefix:
//
//	<prefix>.plans                          latest types.PlanBatch
//	<prefix>.assign.<host>_<port>_<start>   types.ServerAssignment per server
//
// Every publication bumps a single version counter. The counter is recovered
// from the bucket on startup with DiscoverHighestVersion, so it keeps
// increasing when a new coordinator takes over.
package publisher
