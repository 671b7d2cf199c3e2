package strategy

import (
	"github.com/arloliu/rebalance/internal/hash"
	"github.com/arloliu/rebalance/types"
)

// DefaultVirtualNodes is the number of virtual nodes placed per server when
// no WithVirtualNodes option is given.
const DefaultVirtualNodes = 150

// ConsistentHash implements immediate assignment with a consistent hash ring.
type ConsistentHash struct {
	virtualNodes int
	hashSeed     uint64
}

var _ types.ImmediateStrategy = (*ConsistentHash)(nil)

// ConsistentHashOption configures a ConsistentHash strategy.
type ConsistentHashOption func(*ConsistentHash)

// NewConsistentHash creates a new consistent hash strategy.
//
// The strategy uses a hash ring with virtual nodes. As long as the server set
// does not change, a region always maps to the same server, and adding or
// removing a server only moves the regions adjacent to it on the ring.
//
// Parameters:
//   - opts: Optional configuration (WithVirtualNodes, WithHashSeed)
//
// Returns:
//   - *ConsistentHash: Initialized consistent hash strategy
//
// Example:
//
//	s := strategy.NewConsistentHash(
//	    strategy.WithVirtualNodes(300),
//	)
//	b, err := rebalance.NewBalancer(&cfg, rebalance.WithImmediateStrategy(s))
func NewConsistentHash(opts ...ConsistentHashOption) *ConsistentHash {
	ch := &ConsistentHash{
		virtualNodes: DefaultVirtualNodes,
		hashSeed:     0,
	}

	for _, opt := range opts {
		opt(ch)
	}

	if ch.virtualNodes <= 0 {
		ch.virtualNodes = DefaultVirtualNodes
	}

	return ch
}

// WithVirtualNodes sets the number of virtual nodes per server.
//
// Higher values provide better distribution but increase memory usage.
// Recommended range: 100-300 (default: 150).
//
// Parameters:
//   - nodes: Number of virtual nodes per server
//
// Returns:
//   - ConsistentHashOption: Configuration option
func WithVirtualNodes(nodes int) ConsistentHashOption {
	return func(ch *ConsistentHash) {
		ch.virtualNodes = nodes
	}
}

// WithHashSeed sets a custom hash seed for the ring.
//
// Parameters:
//   - seed: Hash seed value
//
// Returns:
//   - ConsistentHashOption: Configuration option
func WithHashSeed(seed uint64) ConsistentHashOption {
	return func(ch *ConsistentHash) {
		ch.hashSeed = seed
	}
}

// Assign maps every region to the first server clockwise on the ring.
//
// Parameters:
//   - regions: Regions without a current owner
//   - servers: Candidate servers (not modified)
//
// Returns:
//   - map[types.Region]types.ServerInfo: One entry per region
//   - error: ErrNoServers when servers is empty
func (ch *ConsistentHash) Assign(regions []types.Region, servers []types.ServerInfo) (map[types.Region]types.ServerInfo, error) {
	if len(servers) == 0 {
		return nil, ErrNoServers
	}

	ring := hash.NewRing(servers, ch.virtualNodes, ch.hashSeed)
	ringServers := ring.Servers()

	assignments := make(map[types.Region]types.ServerInfo, len(regions))
	for _, r := range regions {
		assignments[r] = ringServers[ring.LocateIndex(r)]
	}

	return assignments, nil
}
