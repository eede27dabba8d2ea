package cost

import (
	"slices"

	"github.com/lanefold/lanefold/pkg/layout"
	"github.com/lanefold/lanefold/pkg/lineage/chain"
)

// Penalty shape of the overlap term. The spacing bonus is bounded by
// spacingBonus and therefore stays far below a single hard penalty, so a
// satisfied assignment can never look better than one with a real violation.
const (
	overlapHardPenalty = 1000.0
	overlapScale       = 50.0
	spacingBonus       = 2.0
	spacingWindow      = 8

	minGapFamily   = 0
	minGapStranger = 2
)

// Segment is a vertical connector drawn between the lanes of two chains at
// the year of their relation. Segments whose endpoints share a lane have
// zero height and never block anything.
type Segment struct {
	Lo, Hi int // lane range, Lo <= Hi
	Year   int
	Parent string // chain ID of the parent side
	Child  string // chain ID of the child side
}

// Occupancy indexes chains by lane for collision probing.
type Occupancy struct {
	byLane map[int][]*chain.Chain
}

// Probe reports whether any chain at the given lane is active in the given
// year.
func (o *Occupancy) Probe(lane, year int) bool {
	for _, c := range o.byLane[lane] {
		if c.Start <= year && year <= c.End {
			return true
		}
	}
	return false
}

// Env is the immutable evaluation context for one family: its chains, their
// cross-chain relations, and the configured weights. An Env can score any
// number of candidate assignments; it never stores per-candidate state.
type Env struct {
	chains  map[string]*chain.Chain
	order   []string // sorted chain IDs, fixes float summation order
	rel     chain.ByChain
	rels    []chain.Relation
	related map[string]map[string]bool
	weights Weights
}

// NewEnv builds an evaluation context from a chain decomposition.
func NewEnv(chains []*chain.Chain, rels []chain.Relation, w Weights) *Env {
	e := &Env{
		chains:  make(map[string]*chain.Chain, len(chains)),
		order:   make([]string, 0, len(chains)),
		rel:     chain.Index(rels),
		rels:    rels,
		related: make(map[string]map[string]bool),
		weights: w,
	}
	for _, c := range chains {
		e.chains[c.ID] = c
		e.order = append(e.order, c.ID)
	}
	slices.Sort(e.order)
	for _, r := range rels {
		e.mark(r.Parent, r.Child)
		e.mark(r.Child, r.Parent)
	}
	return e
}

func (e *Env) mark(a, b string) {
	m := e.related[a]
	if m == nil {
		m = make(map[string]bool)
		e.related[a] = m
	}
	m[b] = true
}

// ChainIDs returns the chain IDs of the environment in sorted order.
func (e *Env) ChainIDs() []string { return e.order }

// Weights returns the configured weights.
func (e *Env) Weights() Weights { return e.weights }

// Related reports whether two chains are connected by a direct relation.
func (e *Env) Related(a, b string) bool { return e.related[a][b] }

// Parents returns relations where the given chain is the child side.
func (e *Env) Parents(id string) []chain.Relation { return e.rel.Parents[id] }

// Children returns relations where the given chain is the parent side.
func (e *Env) Children(id string) []chain.Relation { return e.rel.Children[id] }

// Segments derives the vertical connector segments implied by a candidate
// assignment. Relations with an unassigned endpoint produce no segment.
func (e *Env) Segments(lanes layout.Individual) []Segment {
	segs := make([]Segment, 0, len(e.rels))
	for _, r := range e.rels {
		pl, ok := lanes[r.Parent]
		if !ok {
			continue
		}
		cl, ok := lanes[r.Child]
		if !ok {
			continue
		}
		lo, hi := pl, cl
		if lo > hi {
			lo, hi = hi, lo
		}
		segs = append(segs, Segment{Lo: lo, Hi: hi, Year: r.Year, Parent: r.Parent, Child: r.Child})
	}
	return segs
}

// OccupancyOf indexes the environment's chains by their assigned lanes.
// Chains without an assignment are left out.
func (e *Env) OccupancyOf(lanes layout.Individual) *Occupancy {
	occ := &Occupancy{byLane: make(map[int][]*chain.Chain)}
	for _, id := range e.order {
		if lane, ok := lanes[id]; ok {
			occ.byLane[lane] = append(occ.byLane[lane], e.chains[id])
		}
	}
	return occ
}

// Chain scores placing the chain with the given ID at candidateLane, with
// all other chains placed per lanes. It derives segments and occupancy from
// the assignment; callers scoring many chains against one assignment should
// use [Env.Individual] instead.
func (e *Env) Chain(id string, candidateLane int, lanes layout.Individual) (float64, Breakdown) {
	c, ok := e.chains[id]
	if !ok {
		panic("cost: unknown chain " + id)
	}
	b := e.chainAt(c, candidateLane, lanes, e.Segments(lanes), e.OccupancyOf(lanes))
	return b.Total(), b
}

// Individual scores a complete assignment: the sum of the per-chain cost
// over every chain in the environment. All chains must be assigned; a
// missing entry is a programming-contract violation and panics.
func (e *Env) Individual(lanes layout.Individual) (float64, Breakdown) {
	segs := e.Segments(lanes)
	occ := e.OccupancyOf(lanes)
	var total Breakdown
	for _, id := range e.order {
		lane, ok := lanes[id]
		if !ok {
			panic("cost: assignment missing chain " + id)
		}
		b := e.chainAt(e.chains[id], lane, lanes, segs, occ)
		total.Add(b)
	}
	return total.Total(), total
}

func (e *Env) chainAt(c *chain.Chain, lane int, lanes layout.Individual, segs []Segment, occ *Occupancy) Breakdown {
	var b Breakdown
	w := e.weights

	if w.Attraction > 0 {
		b.Attraction = w.Attraction * e.attraction(c, lane, lanes)
	}
	if w.CutThrough > 0 {
		b.CutThrough = w.CutThrough * float64(e.cutThrough(c, lane, lanes, occ))
	}
	if w.Blocker > 0 {
		b.Blocker = w.Blocker * float64(e.blockers(c, lane, segs))
	}
	if w.YShape > 0 {
		b.YShape = w.YShape * float64(e.yShape(c, lane, lanes))
	}
	if w.Overlap > 0 {
		b.Overlap = w.Overlap * e.overlap(c, lane, lanes)
	}
	return b
}

// attraction is the squared distance from the candidate lane to the mean
// lane of parent chains plus the squared distance to the mean lane of child
// chains. A side without placed relatives contributes zero.
func (e *Env) attraction(c *chain.Chain, lane int, lanes layout.Individual) float64 {
	side := func(rels []chain.Relation, pick func(chain.Relation) string) float64 {
		sum, n := 0.0, 0
		for _, r := range rels {
			if l, ok := lanes[pick(r)]; ok {
				sum += float64(l)
				n++
			}
		}
		if n == 0 {
			return 0
		}
		d := float64(lane) - sum/float64(n)
		return d * d
	}
	return side(e.rel.Parents[c.ID], func(r chain.Relation) string { return r.Parent }) +
		side(e.rel.Children[c.ID], func(r chain.Relation) string { return r.Child })
}

// cutThrough counts occupied lanes crossed by connectors to relatives more
// than one lane away. Occupancy is probed at the year of each relation.
func (e *Env) cutThrough(c *chain.Chain, lane int, lanes layout.Individual, occ *Occupancy) int {
	count := 0
	probe := func(other string, year int) {
		ol, ok := lanes[other]
		if !ok {
			return
		}
		lo, hi := lane, ol
		if lo > hi {
			lo, hi = hi, lo
		}
		if hi-lo <= 1 {
			return
		}
		for k := lo + 1; k < hi; k++ {
			if occ.Probe(k, year) {
				count++
			}
		}
	}
	for _, r := range e.rel.Parents[c.ID] {
		probe(r.Parent, r.Year)
	}
	for _, r := range e.rel.Children[c.ID] {
		probe(r.Child, r.Year)
	}
	return count
}

// blockers counts segments between two other chains that straddle the
// candidate lane while this chain is active, with a one-year pad on the end
// of the span. The chain's own relations never block it.
func (e *Env) blockers(c *chain.Chain, lane int, segs []Segment) int {
	count := 0
	for _, s := range segs {
		if s.Parent == c.ID || s.Child == c.ID {
			continue
		}
		if s.Lo < lane && lane < s.Hi && c.Start <= s.Year && s.Year <= c.End+1 {
			count++
		}
	}
	return count
}

// yShape counts merge/split siblings (other parents of this chain's
// children, other children of this chain's parents) placed within one lane
// of the candidate.
func (e *Env) yShape(c *chain.Chain, lane int, lanes layout.Individual) int {
	count := 0
	near := func(sibling string) {
		if sibling == c.ID {
			return
		}
		if sl, ok := lanes[sibling]; ok && abs(sl-lane) <= 1 {
			count++
		}
	}
	for _, up := range e.rel.Parents[c.ID] {
		for _, r := range e.rel.Children[up.Parent] {
			near(r.Child)
		}
	}
	for _, down := range e.rel.Children[c.ID] {
		for _, r := range e.rel.Parents[down.Child] {
			near(r.Parent)
		}
	}
	return count
}

// overlap scores the sharing of the candidate lane with every other chain
// assigned to it. Direct relatives may touch (gap >= 0); strangers need a
// gap of at least two years. Violations pay a fixed penalty plus a
// magnitude term; legal moderate proximity of strangers earns a small,
// bounded bonus.
func (e *Env) overlap(c *chain.Chain, lane int, lanes layout.Individual) float64 {
	score := 0.0
	for _, id := range e.order {
		if id == c.ID {
			continue
		}
		if ol, ok := lanes[id]; !ok || ol != lane {
			continue
		}
		o := e.chains[id]
		gap := timeGap(c, o)

		minGap := minGapStranger
		family := e.Related(c.ID, id)
		if family {
			minGap = minGapFamily
		}

		switch {
		case gap < minGap:
			score += overlapHardPenalty + overlapScale*float64(minGap-gap)
		case !family && gap <= minGapStranger+spacingWindow:
			score -= spacingBonus * (1 - float64(gap-minGapStranger)/float64(spacingWindow+1))
		}
	}
	return score
}

// timeGap returns the number of free years between two spans. Zero means
// the spans touch back to back; negative values measure real overlap.
func timeGap(a, b *chain.Chain) int {
	switch {
	case a.End < b.Start:
		return b.Start - a.End - 1
	case b.End < a.Start:
		return a.Start - b.End - 1
	default:
		return -(min(a.End, b.End) - max(a.Start, b.Start) + 1)
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
