package hash

import (
	"cmp"
	"encoding/binary"
	"slices"

	"github.com/zeebo/xxh3"

	"github.com/arloliu/rebalance/types"
)

// Ring implements a consistent hash ring with virtual nodes.
//
// The ring maps regions to servers using consistent hashing, which keeps most
// placements stable when servers join or leave.
type Ring struct {
	// nodes contains all virtual nodes on the ring, sorted by hash
	nodes []virtualNode

	// servers holds the unique servers present on the ring, in input order
	servers []types.ServerInfo

	// seed for hash function (0 means no seed)
	seed uint64
}

// virtualNode represents a virtual node on the hash ring.
type virtualNode struct {
	hash      uint64 // Position on the ring
	serverIdx int    // Index of the owning server in servers slice
}

// NewRing creates a new consistent hash ring.
//
// Parameters:
//   - servers: Servers to place on the ring (duplicates are ignored)
//   - virtualNodesPerServer: Number of virtual nodes per server (higher = better distribution)
//   - seed: Seed for hash function (0 for the unseeded variant)
//
// Returns:
//   - *Ring: Initialized hash ring
//
// Example:
//
//	ring := hash.NewRing(servers, 150, 0)
//	server, ok := ring.Locate(region)
func NewRing(servers []types.ServerInfo, virtualNodesPerServer int, seed uint64) *Ring {
	ring := &Ring{
		nodes:   make([]virtualNode, 0, len(servers)*virtualNodesPerServer),
		servers: make([]types.ServerInfo, 0, len(servers)),
		seed:    seed,
	}

	seen := make(map[types.ServerInfo]struct{}, len(servers))
	for _, s := range servers {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		ring.servers = append(ring.servers, s)
	}

	for i, s := range ring.servers {
		ring.addServer(s, i, virtualNodesPerServer)
	}

	// Equal hashes are ordered by server identity so the ring layout does not
	// depend on input order.
	slices.SortFunc(ring.nodes, func(a, b virtualNode) int {
		if c := cmp.Compare(a.hash, b.hash); c != 0 {
			return c
		}

		return ring.servers[a.serverIdx].Compare(ring.servers[b.serverIdx])
	})

	return ring
}

// Locate finds the server responsible for a region.
//
// Uses binary search to find the first virtual node whose hash is >= the
// region hash, wrapping around to the first node past the end of the ring.
//
// Returns:
//   - types.ServerInfo: Owning server
//   - bool: false when the ring is empty
func (r *Ring) Locate(region types.Region) (types.ServerInfo, bool) {
	idx := r.LocateIndex(region)
	if idx < 0 {
		return types.ServerInfo{}, false
	}

	return r.servers[idx], true
}

// LocateIndex returns the index into Servers() of the server responsible for
// the region, or -1 if the ring is empty.
func (r *Ring) LocateIndex(region types.Region) int {
	if len(r.nodes) == 0 {
		return -1
	}

	return r.nodeAt(region.HashIDSeed(r.seed)).serverIdx
}

// Servers returns the unique servers on the ring.
func (r *Ring) Servers() []types.ServerInfo {
	return slices.Clone(r.servers)
}

// Size returns the total number of virtual nodes on the ring.
func (r *Ring) Size() int {
	return len(r.nodes)
}

// addServer adds virtual nodes for a server to the ring.
func (r *Ring) addServer(s types.ServerInfo, serverIdx int, virtualNodes int) {
	base := xxh3.HashStringSeed(s.String(), r.seed)
	for i := range virtualNodes {
		// Fold the vnode index using the server hash as seed.
		var ib [8]byte
		binary.LittleEndian.PutUint64(ib[:], uint64(i)) //nolint:gosec
		r.nodes = append(r.nodes, virtualNode{
			hash:      xxh3.HashSeed(ib[:], base),
			serverIdx: serverIdx,
		})
	}
}

// nodeAt returns the first virtual node clockwise from target.
func (r *Ring) nodeAt(target uint64) virtualNode {
	idx, _ := slices.BinarySearchFunc(r.nodes, target, func(node virtualNode, t uint64) int {
		return cmp.Compare(node.hash, t)
	})
	if idx >= len(r.nodes) {
		idx = 0
	}

	return r.nodes[idx]
}
