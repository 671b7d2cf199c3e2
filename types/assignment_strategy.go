package types

// BulkStrategy distributes a batch of regions across servers that have no
// prior placement history (cluster bootstrap).
//
// Strategy implementations should:
//   - Be deterministic (same input → same output)
//   - Handle edge cases (no servers, no regions)
//   - Never mutate the input slices
//   - Be stateless (safe for concurrent use)
type BulkStrategy interface {
	// Assign calculates a full server → regions assignment.
	//
	// Parameters:
	//   - regions: Regions to place, in caller order
	//   - servers: Candidate servers
	//
	// Returns:
	//   - map[ServerInfo][]Region: Map from server to assigned regions
	//   - error: ErrNoServers when servers is empty
	Assign(regions []Region, servers []ServerInfo) (map[ServerInfo][]Region, error)
}

// ImmediateStrategy places unassigned regions as fast as possible.
//
// The only hard guarantee is completeness: every region gets exactly one
// server from the supplied set. Balance is left to a later balancing pass.
type ImmediateStrategy interface {
	// Assign calculates a region → server assignment.
	//
	// Parameters:
	//   - regions: Regions without a current owner
	//   - servers: Candidate servers
	//
	// Returns:
	//   - map[Region]ServerInfo: Map from region to chosen server
	//   - error: ErrNoServers when servers is empty
	Assign(regions []Region, servers []ServerInfo) (map[Region]ServerInfo, error)
}
