package family

import (
	"context"

	"github.com/charmbracelet/log"

	"github.com/lanefold/lanefold/pkg/lineage"
	"github.com/lanefold/lanefold/pkg/observability"
	"github.com/lanefold/lanefold/pkg/store"
)

// LinkChangeKind classifies a link mutation reported by the persistence
// layer.
type LinkChangeKind string

const (
	LinkInserted LinkChangeKind = "inserted"
	LinkUpdated  LinkChangeKind = "updated"
	LinkDeleted  LinkChangeKind = "deleted"
)

// Invalidation accumulates the effects of one structural mutation. It is
// returned to the caller instead of being tracked in process-global state,
// so tests and callers can observe exactly what a change invalidated.
type Invalidation struct {
	// MarkedStale lists the hashes of families whose layout was flagged
	// for recomputation.
	MarkedStale []string

	// NeedsDiscovery signals that the component structure may have
	// changed and discovery should run again: a link insertion can join
	// families or push a small component over the registration threshold.
	NeedsDiscovery bool
}

// Invalidator marks registered family layouts stale in response to
// structural node and link mutations. The persistence layer invokes its
// hooks post-commit.
type Invalidator struct {
	Store  store.Store
	Logger *log.Logger
}

// OnNodeChange reacts to a node update. Only structural fields matter: a
// change to the founding or dissolution year marks every family referencing
// the node stale, while name and metadata edits never trigger
// invalidation.
func (iv *Invalidator) OnNodeChange(ctx context.Context, before, after lineage.Node) (Invalidation, error) {
	if before.Founded == after.Founded && before.Dissolved == after.Dissolved {
		return Invalidation{}, nil
	}
	return iv.markReferencing(ctx, after.ID)
}

// OnLinkChange reacts to a link mutation. Any kind marks the families
// referencing either endpoint stale; an insertion additionally requests a
// discovery pass, since it may have connected previously separate families
// or lifted a component over the size threshold.
func (iv *Invalidator) OnLinkChange(ctx context.Context, l lineage.Link, kind LinkChangeKind) (Invalidation, error) {
	inv, err := iv.markReferencing(ctx, l.Parent, l.Child)
	if err != nil {
		return inv, err
	}
	if kind == LinkInserted {
		inv.NeedsDiscovery = true
	}
	return inv, nil
}

// markReferencing flags the layouts of all families whose fingerprint
// references any of the given nodes.
func (iv *Invalidator) markReferencing(ctx context.Context, nodeIDs ...string) (Invalidation, error) {
	families, err := iv.Store.ListFamilies(ctx)
	if err != nil {
		return Invalidation{}, err
	}
	var inv Invalidation
	for _, f := range families {
		if !referencesAny(&f, nodeIDs) {
			continue
		}
		if err := iv.Store.MarkStale(ctx, f.Hash); err != nil {
			return inv, err
		}
		inv.MarkedStale = append(inv.MarkedStale, f.Hash)
		observability.Engine().OnInvalidate(ctx, f.Hash)
		if iv.Logger != nil {
			iv.Logger.Debug("marked family stale", "hash", shortHash(f.Hash))
		}
	}
	return inv, nil
}

func referencesAny(f *store.FamilyRecord, nodeIDs []string) bool {
	for _, id := range nodeIDs {
		if f.References(id) {
			return true
		}
	}
	return false
}
