package testing

import (
	"encoding/binary"
	"fmt"
	"math/rand/v2"

	"github.com/arloliu/rebalance/types"
)

// MockCluster builds a snapshot with one server per load entry.
//
// Servers are named "server-NN" in load order, so MockCluster(2, 4) yields
// server-00 with 2 regions and server-01 with 4. Every region is unique
// across the snapshot.
//
// Parameters:
//   - loads: Region count per server
//
// Returns:
//   - types.ClusterState: Deterministic snapshot
func MockCluster(loads ...int) types.ClusterState {
	state := make(types.ClusterState, len(loads))
	next := 0
	for i, load := range loads {
		s := types.ServerInfo{Host: fmt.Sprintf("server-%02d", i), Port: 16020, StartCode: int64(i)}
		regions := make([]types.Region, load)
		for j := range regions {
			regions[j] = types.Region{
				Table:    "table",
				StartKey: fmt.Sprintf("%08d", next),
				EndKey:   fmt.Sprintf("%08d", next+1),
			}
			next++
		}
		state[s] = regions
	}

	return state
}

// RandomCluster builds a snapshot like MockCluster but with random server
// and region identities drawn from rng.
func RandomCluster(rng *rand.Rand, loads ...int) types.ClusterState {
	servers := RandomServers(rng, len(loads))
	total := 0
	for _, l := range loads {
		total += l
	}
	regions := RandomRegions(rng, total)

	state := make(types.ClusterState, len(loads))
	offset := 0
	for i, load := range loads {
		state[servers[i]] = regions[offset : offset+load : offset+load]
		offset += load
	}

	return state
}

// RandomServers returns n distinct servers with random host, port and start code.
func RandomServers(rng *rand.Rand, n int) []types.ServerInfo {
	seen := make(map[types.ServerInfo]struct{}, n)
	out := make([]types.ServerInfo, 0, n)
	for len(out) < n {
		s := types.ServerInfo{
			Host:      randomString(rng, 16),
			Port:      rng.IntN(60000),
			StartCode: rng.Int64(),
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}

	return out
}

// RandomRegions returns n distinct regions of table "table" with random 16-byte boundaries.
func RandomRegions(rng *rand.Rand, n int) []types.Region {
	out := make([]types.Region, n)
	for i := range out {
		var start, end [16]byte
		binary.BigEndian.PutUint64(start[:8], rng.Uint64())
		binary.BigEndian.PutUint64(end[:8], rng.Uint64())
		// Index suffix keeps boundaries unique even on hash collisions.
		binary.BigEndian.PutUint64(start[8:], uint64(i)) //nolint:gosec
		binary.BigEndian.PutUint64(end[8:], uint64(i)+1) //nolint:gosec
		out[i] = types.Region{
			Table:    "table",
			StartKey: fmt.Sprintf("%x", start),
			EndKey:   fmt.Sprintf("%x", end),
		}
	}

	return out
}

const letters = "abcdefghijklmnopqrstuvwxyz0123456789"

func randomString(rng *rand.Rand, n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = letters[rng.IntN(len(letters))]
	}

	return string(b)
}
