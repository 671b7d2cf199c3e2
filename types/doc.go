// Package types provides core type definitions and interfaces for the rebalance library.
//
// This package contains shared types that are used across multiple packages in the
// library. By keeping these types in a separate package, we avoid import cycles
// between the root rebalance package and its internal implementations.
//
// Key types:
//   - ServerInfo: Identity of a server that hosts regions
//   - Region: Opaque, individually placeable unit of data
//   - ClusterState: Point-in-time snapshot of region placement
//   - RegionPlan: A single region move from one server to another
//   - Logger: Structured logging interface
//   - MetricsCollector: Metrics recording interface
package types
