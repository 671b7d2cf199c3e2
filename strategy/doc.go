// Package strategy provides built-in region assignment strategies.
//
// Two kinds of strategy exist:
//
//   - Bulk (types.BulkStrategy): distributes a batch of regions over servers
//     with no placement history, e.g. at cluster bootstrap.
//   - Immediate (types.ImmediateStrategy): places regions that lost their
//     owner as quickly as possible. Only completeness is guaranteed; a later
//     balancing pass restores the balance invariant.
//
// Built-in strategies:
//
//   - RoundRobin (bulk): region i goes to the i-th server in identity order,
//     modulo the server count. Every server ends within one region of every
//     other.
//   - LeastLoaded (immediate, default): each region goes to the server that
//     received the fewest regions so far, ties broken by identity.
//   - ConsistentHash (immediate): xxh3 hash ring with virtual nodes. Stable
//     across calls, so a region keeps landing on the same server while the
//     server set is unchanged. Not balanced.
//
// Custom strategies can be implemented by satisfying either interface.
package strategy
