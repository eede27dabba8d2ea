package chain

import (
	"github.com/lanefold/lanefold/pkg/lineage"
)

// Chain is a maximal run of nodes connected by unambiguous 1:1,
// non-overlapping succession. The chain's identity is the ID of its first
// node. Nodes are ordered by succession, which coincides with time order.
//
// Chains are built once per optimization pass from a graph snapshot and are
// immutable thereafter.
type Chain struct {
	ID    string
	Nodes []lineage.NodeHandle

	// Start is the founding year of the first node; End is the effective
	// end year of the last node.
	Start int
	End   int
}

// Len returns the number of nodes in the chain.
func (c *Chain) Len() int { return len(c.Nodes) }

// Build decomposes the graph into chains. referenceYear is used to derive
// effective end years for nodes without a recorded dissolution.
//
// A node continues its predecessor's chain only when the hand-off is
// unambiguous on both sides and the two spans do not visually overlap
// (predecessor end + 1 must not exceed successor start). When a node has
// several links on one side of a transition, a single LEGAL_TRANSFER link is
// treated as the sole continuation candidate; two or more legal transfers on
// the same side are unresolvable and break the chain. With no legal transfer
// present, a unique non-overlapping hand-off link wins over mid-life branch
// links.
//
// Build is deterministic: chains are emitted in first-node insertion order,
// and every node appears in exactly one chain.
func Build(g *lineage.Graph, referenceYear int) []*Chain {
	n := g.NodeCount()
	succ := make([]lineage.NodeHandle, n)
	pred := make([]lineage.NodeHandle, n)
	for i := range succ {
		succ[i] = -1
		pred[i] = -1
	}

	for u := lineage.NodeHandle(0); int(u) < n; u++ {
		l, ok := continuationLink(g, u, referenceYear)
		if !ok {
			continue
		}
		v := g.ChildHandle(l)
		back, ok := predecessorLink(g, v, referenceYear)
		if !ok || back != l {
			continue
		}
		if overlaps(g, u, v, referenceYear) {
			continue
		}
		succ[u] = v
		pred[v] = u
	}

	chains := make([]*Chain, 0, n)
	for h := lineage.NodeHandle(0); int(h) < n; h++ {
		if pred[h] >= 0 {
			continue // continues another chain
		}
		c := &Chain{ID: g.Node(h).ID, Start: g.Node(h).Founded}
		for cur := h; cur >= 0; cur = succ[cur] {
			c.Nodes = append(c.Nodes, cur)
			c.End = g.Node(cur).EffectiveEnd(referenceYear)
		}
		chains = append(chains, c)
	}
	return chains
}

// overlaps reports whether the successor v cannot share a lane position with
// its predecessor u: the spans visually collide when u's effective end plus
// one exceeds v's founding year.
func overlaps(g *lineage.Graph, u, v lineage.NodeHandle, referenceYear int) bool {
	_, uEnd := g.Span(u, referenceYear)
	return uEnd+1 > g.Node(v).Founded
}

// continuationLink selects the single outgoing link of u that may continue
// u's chain, applying the transition tie-break rules. Returns false when no
// link qualifies or the transition is ambiguous.
func continuationLink(g *lineage.Graph, u lineage.NodeHandle, referenceYear int) (lineage.LinkHandle, bool) {
	return resolveSide(g, g.Outgoing(u), func(l lineage.LinkHandle) bool {
		return !overlaps(g, u, g.ChildHandle(l), referenceYear)
	})
}

// predecessorLink selects the single incoming link of v that may attach v to
// a preceding chain, mirroring the outgoing tie-break rules.
func predecessorLink(g *lineage.Graph, v lineage.NodeHandle, referenceYear int) (lineage.LinkHandle, bool) {
	return resolveSide(g, g.Incoming(v), func(l lineage.LinkHandle) bool {
		return !overlaps(g, g.ParentHandle(l), v, referenceYear)
	})
}

// resolveSide applies the transition tie-break to one side of a node:
//
//  1. a single link is its own answer;
//  2. exactly one LEGAL_TRANSFER among several links is the sole
//     continuation candidate;
//  3. two or more LEGAL_TRANSFER links are unresolvable;
//  4. with no legal transfer, a unique non-overlapping hand-off wins over
//     mid-life branch links.
func resolveSide(g *lineage.Graph, side []lineage.LinkHandle, clear func(lineage.LinkHandle) bool) (lineage.LinkHandle, bool) {
	switch len(side) {
	case 0:
		return -1, false
	case 1:
		return side[0], true
	}

	var legal lineage.LinkHandle = -1
	legalCount := 0
	for _, l := range side {
		if g.Link(l).Type == lineage.LinkLegalTransfer {
			legal = l
			legalCount++
		}
	}
	switch {
	case legalCount == 1:
		return legal, true
	case legalCount > 1:
		return -1, false
	}

	var handoff lineage.LinkHandle = -1
	for _, l := range side {
		if !clear(l) {
			continue
		}
		if handoff >= 0 {
			return -1, false // two clear hand-offs, unresolvable
		}
		handoff = l
	}
	if handoff < 0 {
		return -1, false
	}
	return handoff, true
}
