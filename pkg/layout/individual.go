package layout

// Individual is one candidate lane assignment: a mapping from chain ID to a
// non-negative lane index. Lane indices need not be unique; two chains may
// share a lane when their time spans do not conflict.
type Individual map[string]int

// Clone returns an independent copy of the assignment.
func (in Individual) Clone() Individual {
	out := make(Individual, len(in))
	for id, lane := range in {
		out[id] = lane
	}
	return out
}

// MaxLane returns the highest lane index in use, or -1 for an empty
// assignment.
func (in Individual) MaxLane() int {
	max := -1
	for _, lane := range in {
		if lane > max {
			max = lane
		}
	}
	return max
}

// LaneCount returns the number of distinct lanes in use.
func (in Individual) LaneCount() int {
	seen := make(map[int]struct{}, len(in))
	for _, lane := range in {
		seen[lane] = struct{}{}
	}
	return len(seen)
}
