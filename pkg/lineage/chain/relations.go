package chain

import (
	"github.com/lanefold/lanefold/pkg/lineage"
)

// Relation is a cross-chain link: a succession event whose parent and child
// nodes ended up in different chains. Relations are rendered as vertical
// connectors between lanes and drive the relational terms of the layout
// cost function.
type Relation struct {
	Parent string // chain ID of the parent side
	Child  string // chain ID of the child side
	Year   int
	Type   lineage.LinkType
	LinkID string
}

// Relations extracts the cross-chain relations induced by the graph's links
// over the given chain decomposition. Links whose endpoints fall within the
// same chain are internal hand-offs and are omitted.
//
// The result preserves the graph's link insertion order, keeping downstream
// cost evaluation deterministic.
func Relations(g *lineage.Graph, chains []*Chain) []Relation {
	chainOf := make(map[lineage.NodeHandle]string, g.NodeCount())
	for _, c := range chains {
		for _, h := range c.Nodes {
			chainOf[h] = c.ID
		}
	}

	var rels []Relation
	for l := lineage.LinkHandle(0); int(l) < g.LinkCount(); l++ {
		link := g.Link(l)
		pc := chainOf[g.ParentHandle(l)]
		cc := chainOf[g.ChildHandle(l)]
		if pc == cc {
			continue
		}
		rels = append(rels, Relation{
			Parent: pc,
			Child:  cc,
			Year:   link.Year,
			Type:   link.Type,
			LinkID: link.ID,
		})
	}
	return rels
}

// ByChain indexes relations from the perspective of each chain.
type ByChain struct {
	// Parents maps a chain ID to relations where the chain is the child.
	Parents map[string][]Relation
	// Children maps a chain ID to relations where the chain is the parent.
	Children map[string][]Relation
}

// Index groups relations by chain for parent/child lookups.
func Index(rels []Relation) ByChain {
	b := ByChain{
		Parents:  make(map[string][]Relation),
		Children: make(map[string][]Relation),
	}
	for _, r := range rels {
		b.Parents[r.Child] = append(b.Parents[r.Child], r)
		b.Children[r.Parent] = append(b.Children[r.Parent], r)
	}
	return b
}
