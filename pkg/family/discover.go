package family

import (
	"context"
	"errors"
	"slices"
	"time"

	"github.com/charmbracelet/log"

	"github.com/lanefold/lanefold/pkg/lineage"
	"github.com/lanefold/lanefold/pkg/store"
)

// DefaultMinNodes is the complexity threshold below which a component is
// not worth registering: trivially small families render fine without
// optimization.
const DefaultMinNodes = 3

// Discoverer partitions the lineage graph into connected components and
// registers those worth optimizing.
type Discoverer struct {
	Store store.Store

	// MinNodes is the minimum component node count; components below it
	// are ignored. Defaults to DefaultMinNodes when zero.
	MinNodes int

	// ReferenceYear derives effective end years for nodes without a
	// recorded dissolution.
	ReferenceYear int

	Logger *log.Logger
}

// component is one connected piece of the undirected link adjacency.
type component struct {
	nodes []lineage.NodeHandle
	links []lineage.LinkHandle
}

// Discover traverses the graph, registers every qualifying component that
// is not yet known, and returns the newly registered families.
//
// Before inserting a new family, any existing registration whose node set
// intersects the new component but whose hash differs is deleted: a merge
// or split that joined or divided previously separate families supersedes
// the outdated grouping. Discovery is idempotent - re-running over an
// unchanged graph registers nothing and prunes nothing.
func (d *Discoverer) Discover(ctx context.Context, g *lineage.Graph) ([]store.FamilyRecord, error) {
	minNodes := d.MinNodes
	if minNodes <= 0 {
		minNodes = DefaultMinNodes
	}
	logger := d.Logger
	if logger == nil {
		logger = log.Default()
	}

	var registered []store.FamilyRecord
	for _, comp := range components(g) {
		if len(comp.links) == 0 || len(comp.nodes) < minNodes {
			continue
		}
		rec := d.record(g, comp)

		_, err := d.Store.GetFamily(ctx, rec.Hash)
		if err == nil {
			continue // already registered, nothing to do
		}
		if !errors.Is(err, store.ErrNotFound) {
			return registered, err
		}

		if err := d.prune(ctx, rec); err != nil {
			return registered, err
		}
		if err := d.Store.PutFamily(ctx, rec); err != nil {
			return registered, err
		}
		logger.Info("registered family",
			"hash", shortHash(rec.Hash),
			"nodes", rec.NodeCount,
			"links", rec.LinkCount)
		registered = append(registered, rec)
	}
	return registered, nil
}

// record builds the family registration for a component.
func (d *Discoverer) record(g *lineage.Graph, comp component) store.FamilyRecord {
	fp := Fingerprint(g, comp.nodes, comp.links, d.ReferenceYear)
	nodeIDs := make([]string, len(comp.nodes))
	for i, h := range comp.nodes {
		nodeIDs[i] = g.Node(h).ID
	}
	linkIDs := make([]string, len(comp.links))
	for i, h := range comp.links {
		linkIDs[i] = g.Link(h).ID
	}
	slices.Sort(nodeIDs)
	slices.Sort(linkIDs)
	return store.FamilyRecord{
		Hash:        Hash(fp),
		Fingerprint: fp,
		NodeIDs:     nodeIDs,
		LinkIDs:     linkIDs,
		NodeCount:   len(comp.nodes),
		LinkCount:   len(comp.links),
		Discovered:  time.Now().UTC(),
	}
}

// prune deletes registered families that overlap the new component's node
// set under a different hash. Their topology changed; the new registration
// supersedes them.
func (d *Discoverer) prune(ctx context.Context, rec store.FamilyRecord) error {
	existing, err := d.Store.ListFamilies(ctx)
	if err != nil {
		return err
	}
	members := make(map[string]bool, len(rec.NodeIDs))
	for _, id := range rec.NodeIDs {
		members[id] = true
	}
	for _, old := range existing {
		if old.Hash == rec.Hash {
			continue
		}
		for _, id := range old.NodeIDs {
			if members[id] {
				if d.Logger != nil {
					d.Logger.Info("superseding family",
						"old", shortHash(old.Hash),
						"new", shortHash(rec.Hash))
				}
				if err := d.Store.DeleteFamily(ctx, old.Hash); err != nil {
					return err
				}
				break
			}
		}
	}
	return nil
}

// components collects the connected components of the graph via
// breadth-first traversal over an undirected view of the link adjacency.
// Both directions are traversed regardless of link type. Components are
// emitted in order of their smallest node handle, making discovery
// deterministic.
func components(g *lineage.Graph) []component {
	seen := make([]bool, g.NodeCount())
	var comps []component

	for start := lineage.NodeHandle(0); int(start) < g.NodeCount(); start++ {
		if seen[start] {
			continue
		}
		seen[start] = true
		comp := component{nodes: []lineage.NodeHandle{start}}
		linkSeen := make(map[lineage.LinkHandle]bool)

		queue := []lineage.NodeHandle{start}
		for qi := 0; qi < len(queue); qi++ {
			u := queue[qi]
			visit := func(l lineage.LinkHandle, next lineage.NodeHandle) {
				if !linkSeen[l] {
					linkSeen[l] = true
					comp.links = append(comp.links, l)
				}
				if !seen[next] {
					seen[next] = true
					comp.nodes = append(comp.nodes, next)
					queue = append(queue, next)
				}
			}
			for _, l := range g.Outgoing(u) {
				visit(l, g.ChildHandle(l))
			}
			for _, l := range g.Incoming(u) {
				visit(l, g.ParentHandle(l))
			}
		}
		comps = append(comps, comp)
	}
	return comps
}

// shortHash truncates a hash for log lines.
func shortHash(h string) string {
	if len(h) > 12 {
		return h[:12]
	}
	return h
}
