package genetic

import (
	"github.com/lanefold/lanefold/pkg/layout"
)

// mutate applies at most one mutation to the individual. A strategy is
// preferred by weighted roll, then strategies are tried in priority order
// (swap, heuristic, compaction, exploration) starting from the preferred
// one, so a lower-priority strategy still applies when an earlier one is
// inapplicable. Exploration always applies, so one strategy always runs.
func (o *Optimizer) mutate(ind layout.Individual) {
	strategies := []func(layout.Individual) bool{
		o.mutateSwap,
		o.mutateHeuristic,
		o.mutateCompaction,
		o.mutateExploration,
	}
	for i := o.preferredStrategy(); i < len(strategies); i++ {
		if strategies[i](ind) {
			return
		}
	}
}

// preferredStrategy rolls against the configured strategy weights and
// returns the index of the chosen strategy in priority order.
func (o *Optimizer) preferredStrategy() int {
	s := o.params.Strategies
	weights := []float64{s.Swap, s.Heuristic, s.Compaction, s.Exploration}
	roll := o.rng.Float64() * s.total()
	for i, w := range weights {
		if roll < w {
			return i
		}
		roll -= w
	}
	return len(weights) - 1
}

// mutateSwap exchanges the lanes of two randomly chosen chains. It fixes
// topology without changing the number of lanes in use.
func (o *Optimizer) mutateSwap(ind layout.Individual) bool {
	if len(o.ids) < 2 {
		return false
	}
	i := o.rng.IntN(len(o.ids))
	j := o.rng.IntN(len(o.ids) - 1)
	if j >= i {
		j++
	}
	a, b := o.ids[i], o.ids[j]
	ind[a], ind[b] = ind[b], ind[a]
	return true
}

// mutateHeuristic moves one random chain onto the lane of a randomly chosen
// relative, preferring parents over children.
func (o *Optimizer) mutateHeuristic(ind layout.Individual) bool {
	id := o.ids[o.rng.IntN(len(o.ids))]
	if parents := o.env.Parents(id); len(parents) > 0 {
		ind[id] = ind[parents[o.rng.IntN(len(parents))].Parent]
		return true
	}
	if children := o.env.Children(id); len(children) > 0 {
		ind[id] = ind[children[o.rng.IntN(len(children))].Child]
		return true
	}
	return false
}

// mutateCompaction moves a random chain to a lane already used by some
// other chain.
func (o *Optimizer) mutateCompaction(ind layout.Individual) bool {
	if len(o.ids) < 2 {
		return false
	}
	id := o.ids[o.rng.IntN(len(o.ids))]
	lanes := make([]int, 0, len(ind))
	seen := make(map[int]struct{}, len(ind))
	for _, other := range o.ids {
		if other == id {
			continue
		}
		if _, ok := seen[ind[other]]; !ok {
			seen[ind[other]] = struct{}{}
			lanes = append(lanes, ind[other])
		}
	}
	if len(lanes) == 0 {
		return false
	}
	ind[id] = lanes[o.rng.IntN(len(lanes))]
	return true
}

// mutateExploration moves a random chain to any lane in
// [0, currentMaxLane+2], the only strategy that can grow the lane count.
func (o *Optimizer) mutateExploration(ind layout.Individual) bool {
	id := o.ids[o.rng.IntN(len(o.ids))]
	ind[id] = o.rng.IntN(ind.MaxLane() + 3)
	return true
}
