package lineage

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidNodeID is returned by [Graph.AddNode] when the node ID is
	// empty. All nodes must have non-empty identifiers.
	ErrInvalidNodeID = errors.New("node ID must not be empty")

	// ErrDuplicateNodeID is returned by [Graph.AddNode] when a node with
	// the same ID already exists. Node IDs must be unique.
	ErrDuplicateNodeID = errors.New("duplicate node ID")

	// ErrInvalidSpan is returned by [Graph.AddNode] when the dissolution
	// year precedes the founding year.
	ErrInvalidSpan = errors.New("dissolution year before founding year")

	// ErrUnknownParentNode is returned by [Graph.AddLink] when the Parent
	// node does not exist in the graph.
	ErrUnknownParentNode = errors.New("unknown parent node")

	// ErrUnknownChildNode is returned by [Graph.AddLink] when the Child
	// node does not exist in the graph.
	ErrUnknownChildNode = errors.New("unknown child node")

	// ErrSelfLink is returned by [Graph.AddLink] when Parent and Child
	// reference the same node.
	ErrSelfLink = errors.New("link must connect two distinct nodes")

	// ErrInvalidLinkType is returned by [Graph.AddLink] for unrecognized
	// link types.
	ErrInvalidLinkType = errors.New("invalid link type")
)

// NodeHandle addresses a node inside a Graph arena.
type NodeHandle int

// LinkHandle addresses a link inside a Graph arena.
type LinkHandle int

// Graph is an arena of nodes and links with adjacency indices. Nodes and
// links are stored by value and addressed by integer handles; handles are
// stable for the lifetime of the graph.
//
// The zero value is not usable - use NewGraph. Graph is not safe for
// concurrent mutation; a fully built graph may be read concurrently.
type Graph struct {
	nodes  []Node
	links  []Link
	byID   map[string]NodeHandle
	linkID map[string]LinkHandle

	outgoing [][]LinkHandle // node handle -> links where node is parent
	incoming [][]LinkHandle // node handle -> links where node is child
}

// NewGraph creates an empty graph.
func NewGraph() *Graph {
	return &Graph{
		byID:   make(map[string]NodeHandle),
		linkID: make(map[string]LinkHandle),
	}
}

// AddNode appends a node to the arena and returns its handle.
// Returns ErrInvalidNodeID, ErrDuplicateNodeID or ErrInvalidSpan on bad input.
func (g *Graph) AddNode(n Node) (NodeHandle, error) {
	if n.ID == "" {
		return -1, ErrInvalidNodeID
	}
	if _, exists := g.byID[n.ID]; exists {
		return -1, fmt.Errorf("node %s: %w", n.ID, ErrDuplicateNodeID)
	}
	if n.Dissolved != 0 && n.Dissolved < n.Founded {
		return -1, fmt.Errorf("node %s: %w", n.ID, ErrInvalidSpan)
	}
	h := NodeHandle(len(g.nodes))
	g.nodes = append(g.nodes, n)
	g.byID[n.ID] = h
	g.outgoing = append(g.outgoing, nil)
	g.incoming = append(g.incoming, nil)
	return h, nil
}

// AddLink appends a link between two existing nodes and returns its handle.
// Returns ErrUnknownParentNode, ErrUnknownChildNode, ErrSelfLink or
// ErrInvalidLinkType on bad input.
func (g *Graph) AddLink(l Link) (LinkHandle, error) {
	if l.Parent == l.Child {
		return -1, fmt.Errorf("link %s: %w", l.ID, ErrSelfLink)
	}
	if !l.Type.Valid() {
		return -1, fmt.Errorf("link %s: type %q: %w", l.ID, l.Type, ErrInvalidLinkType)
	}
	parent, ok := g.byID[l.Parent]
	if !ok {
		return -1, fmt.Errorf("link %s: parent %s: %w", l.ID, l.Parent, ErrUnknownParentNode)
	}
	child, ok := g.byID[l.Child]
	if !ok {
		return -1, fmt.Errorf("link %s: child %s: %w", l.ID, l.Child, ErrUnknownChildNode)
	}
	h := LinkHandle(len(g.links))
	g.links = append(g.links, l)
	if l.ID != "" {
		g.linkID[l.ID] = h
	}
	g.outgoing[parent] = append(g.outgoing[parent], h)
	g.incoming[child] = append(g.incoming[child], h)
	return h, nil
}

// Node returns the node stored at handle h.
func (g *Graph) Node(h NodeHandle) Node { return g.nodes[h] }

// Link returns the link stored at handle h.
func (g *Graph) Link(h LinkHandle) Link { return g.links[h] }

// NodeByID returns the handle for a node ID.
func (g *Graph) NodeByID(id string) (NodeHandle, bool) {
	h, ok := g.byID[id]
	return h, ok
}

// LinkByID returns the handle for a link ID.
func (g *Graph) LinkByID(id string) (LinkHandle, bool) {
	h, ok := g.linkID[id]
	return h, ok
}

// NodeCount returns the number of nodes in the arena.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// LinkCount returns the number of links in the arena.
func (g *Graph) LinkCount() int { return len(g.links) }

// Outgoing returns handles of links where h is the parent.
// The returned slice is a read-only view.
func (g *Graph) Outgoing(h NodeHandle) []LinkHandle { return g.outgoing[h] }

// Incoming returns handles of links where h is the child.
// The returned slice is a read-only view.
func (g *Graph) Incoming(h NodeHandle) []LinkHandle { return g.incoming[h] }

// ChildHandle resolves the child endpoint of a link to its node handle.
func (g *Graph) ChildHandle(h LinkHandle) NodeHandle { return g.byID[g.links[h].Child] }

// ParentHandle resolves the parent endpoint of a link to its node handle.
func (g *Graph) ParentHandle(h LinkHandle) NodeHandle { return g.byID[g.links[h].Parent] }

// Span returns the [start, end] years of the node at h, deriving the end via
// [Node.EffectiveEnd].
func (g *Graph) Span(h NodeHandle, referenceYear int) (start, end int) {
	n := g.nodes[h]
	return n.Founded, n.EffectiveEnd(referenceYear)
}

// Report summarizes records skipped while building a graph from raw input.
type Report struct {
	SkippedNodes int
	SkippedLinks int
	Problems     []error
}

// FromRecords builds a graph from raw node and link records.
//
// Malformed records are skipped and counted in the returned Report rather
/// than aborting the build: a single bad link from an external data source
// must not prevent the rest of the genealogy from being processed.
func FromRecords(nodes []Node, links []Link) (*Graph, Report) {
	g := NewGraph()
	var rep Report
	for _, n := range nodes {
		if _, err := g.AddNode(n); err != nil {
			rep.SkippedNodes++
			rep.Problems = append(rep.Problems, err)
		}
	}
	for _, l := range links {
		if _, err := g.AddLink(l); err != nil {
			rep.SkippedLinks++
			rep.Problems = append(rep.Problems, err)
		}
	}
	return g, rep
}
