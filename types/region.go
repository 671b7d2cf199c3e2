package types

import (
	"cmp"
	"strings"

	"github.com/zeebo/xxh3"
)

// Region represents one individually placeable key range of a table.
//
// The engine treats regions as opaque identities: only equality and ordering
// matter, never the key range content.
type Region struct {
	// Table is the name of the owning table.
	Table string `json:"table"`

	// StartKey is the inclusive start of the key range ("" = beginning of table).
	StartKey string `json:"startKey"`

	// EndKey is the exclusive end of the key range ("" = end of table).
	EndKey string `json:"endKey"`
}

// ID returns the canonical "table,startKey,endKey" region name.
//
// Returns:
//   - string: Comma-joined identity
func (r Region) ID() string {
	return strings.Join([]string{r.Table, r.StartKey, r.EndKey}, ",")
}

// Compare performs a lexicographic comparison of region identities.
//
// Ordering rules:
//   - Table in string order
//   - Then StartKey, then EndKey
//
// Returns:
//   - int: -1 if r < q, 0 if equal, +1 if r > q
func (r Region) Compare(q Region) int {
	if c := cmp.Compare(r.Table, q.Table); c != 0 {
		return c
	}
	if c := cmp.Compare(r.StartKey, q.StartKey); c != 0 {
		return c
	}

	return cmp.Compare(r.EndKey, q.EndKey)
}

// HashID returns the unseeded 64-bit hash of the region identity.
func (r Region) HashID() uint64 {
	return r.HashIDSeed(0)
}

// HashIDSeed folds the region fields into a single xxh3 hash.
//
// Each field hash becomes the seed for the next one, so no intermediate
// joined string is built.
//
// Parameters:
//   - seed: Hash seed (0 for the unseeded variant)
//
// Returns:
//   - uint64: Stable hash of the region identity
func (r Region) HashIDSeed(seed uint64) uint64 {
	h := xxh3.HashStringSeed(r.Table, seed)
	h = xxh3.HashStringSeed(r.StartKey, h)

	return xxh3.HashStringSeed(r.EndKey, h)
}
