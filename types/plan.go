package types

import "fmt"

// RegionPlan describes moving one region from a source to a destination server.
type RegionPlan struct {
	// Region is the region to move.
	Region Region `json:"region"`

	// Source is the server currently hosting the region.
	Source ServerInfo `json:"source"`

	// Destination is the server that should host the region after the move.
	Destination ServerInfo `json:"destination"`
}

// String renders the plan for logging.
func (p RegionPlan) String() string {
	return fmt.Sprintf("%s: %s -> %s", p.Region.ID(), p.Source, p.Destination)
}

// Validate checks the plan shape without consulting any cluster state.
//
// Returns:
//   - error: ErrInvalidPlan when source and destination are the same server
func (p RegionPlan) Validate() error {
	if p.Source == p.Destination {
		return fmt.Errorf("%w: source equals destination for region %s", ErrInvalidPlan, p.Region.ID())
	}

	return nil
}

// BalanceStats summarizes a single balancing decision.
type BalanceStats struct {
	// Servers is the number of servers in the snapshot.
	Servers int

	// Regions is the total number of regions in the snapshot.
	Regions int

	// FloorAvg is floor(Regions / Servers).
	FloorAvg int

	// CeilAvg is ceil(Regions / Servers).
	CeilAvg int

	// Overloaded is the number of servers above CeilAvg before planning.
	Overloaded int

	// Underloaded is the number of servers below FloorAvg before planning.
	Underloaded int

	// Moves is the number of plans emitted.
	Moves int

	// StrictBalanced reports whether every server load was in {FloorAvg, CeilAvg}.
	StrictBalanced bool

	// LooseBalanced reports whether max load - min load < 2.
	LooseBalanced bool
}
