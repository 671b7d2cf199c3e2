// Package planner computes the region moves that bring a cluster snapshot
// into the balanced state: every server hosting floor(avg) or ceil(avg)
// regions.
//
// Planning is a pure function of the snapshot. Loads are simulated on a
// call-local working copy; the snapshot itself is never mutated.
package planner
