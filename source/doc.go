// Package source provides built-in cluster source implementations.
//
// Cluster sources produce the placement snapshot a balancing round works on.
// The package includes:
//
//   - Static: In-memory placement, replaced with Update or advanced with Apply
//   - KV: Placement assembled from server reports stored in NATS KV
//
// # Server Reports
//
// Each region server runs a Reporter that rewrites its open regions to the
// report bucket every ReportInterval. The bucket TTL (ReportTTL) removes the
// reports of servers that stopped, so a crashed server leaves the snapshot
// without any coordinator-side failure detection.
//
// Reports are stored under the key format:
//
//	{prefix}.{host}_{port}_{startcode}
//
// Example: "report.rs-1_16020_1700000000"
//
// Custom sources can be implemented by satisfying the types.ClusterSource interface.
package source
