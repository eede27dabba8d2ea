// Package store persists family registrations and precomputed layouts, the
// engine's sole persisted artifact.
//
// Records are keyed by family hash. Four backends share one interface:
//   - MemoryStore: mutex-guarded maps for tests and one-shot CLI runs
//   - FileStore: JSON records under sha-sharded directories
//   - RedisStore: JSON values in Redis for multi-instance deployments
//   - MongoStore: families/layouts collections with upsert-by-hash
package store

import (
	"context"
	"errors"
	"slices"
	"time"

	"github.com/lanefold/lanefold/pkg/layout"
	"github.com/lanefold/lanefold/pkg/layout/cost"
	"github.com/lanefold/lanefold/pkg/lineage"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// FamilyRecord registers one discovered family: a connected component of
// the lineage graph worth optimizing, identified by the hash of its
// structural fingerprint.
type FamilyRecord struct {
	Hash        string    `json:"hash" bson:"hash"`
	Fingerprint string    `json:"fingerprint" bson:"fingerprint"`
	NodeIDs     []string  `json:"node_ids" bson:"node_ids"` // sorted
	LinkIDs     []string  `json:"link_ids" bson:"link_ids"` // sorted
	NodeCount   int       `json:"node_count" bson:"node_count"`
	LinkCount   int       `json:"link_count" bson:"link_count"`
	Discovered  time.Time `json:"discovered" bson:"discovered"`
}

// References reports whether the family's fingerprint covers the given node.
func (f *FamilyRecord) References(nodeID string) bool {
	for _, id := range f.NodeIDs {
		if id == nodeID {
			return true
		}
	}
	return false
}

// ChainSnapshot preserves one chain of the decomposition a layout was
// computed from.
type ChainSnapshot struct {
	ID      string   `json:"id" bson:"id"`
	NodeIDs []string `json:"node_ids" bson:"node_ids"`
	Start   int      `json:"start" bson:"start"`
	End     int      `json:"end" bson:"end"`
}

// RelationSnapshot preserves one cross-chain relation of the decomposition.
type RelationSnapshot struct {
	Parent string           `json:"parent" bson:"parent"`
	Child  string           `json:"child" bson:"child"`
	Year   int              `json:"year" bson:"year"`
	Type   lineage.LinkType `json:"type" bson:"type"`
	LinkID string           `json:"link_id,omitempty" bson:"link_id,omitempty"`
}

// LayoutRecord is the precomputed layout for one family: the best lane
// assignment found, the chain snapshot it was computed from, and its score.
// The Stale flag marks layouts invalidated by structural data changes; the
// record is replaced, never deleted, when the runner recomputes it.
type LayoutRecord struct {
	FamilyHash string             `json:"family_hash" bson:"family_hash"`
	Lanes      layout.Individual  `json:"lanes" bson:"lanes"`
	Chains     []ChainSnapshot    `json:"chains" bson:"chains"`
	Relations  []RelationSnapshot `json:"relations,omitempty" bson:"relations,omitempty"`

	Score          float64        `json:"score" bson:"score"`
	Breakdown      cost.Breakdown `json:"breakdown" bson:"breakdown"`
	Generations    int            `json:"generations" bson:"generations"`
	BestGeneration int            `json:"best_generation" bson:"best_generation"`
	LaneCount      int            `json:"lane_count" bson:"lane_count"`

	Stale bool `json:"stale" bson:"stale"`

	// StaleEpoch counts how often the layout has been marked stale. The
	// runner compares epochs around a run to detect marks that landed
	// while the optimization was in flight, so they are never lost.
	StaleEpoch int64 `json:"stale_epoch" bson:"stale_epoch"`

	Created time.Time `json:"created" bson:"created"`
	Updated time.Time `json:"updated" bson:"updated"`
}

// Store is the persistence interface for family and layout records.
//
// Implementations must be safe for concurrent use: the optimization runner
// reads and writes records from parallel per-family workers, and
// invalidation hooks may mark layouts stale while an optimization is in
// flight.
type Store interface {
	// PutFamily registers or replaces a family record.
	PutFamily(ctx context.Context, f FamilyRecord) error

	// GetFamily returns the family with the given hash, or ErrNotFound.
	GetFamily(ctx context.Context, hash string) (FamilyRecord, error)

	// ListFamilies returns all registered families.
	ListFamilies(ctx context.Context) ([]FamilyRecord, error)

	// DeleteFamily removes a family and its layout. Removing an unknown
	// hash is not an error.
	DeleteFamily(ctx context.Context, hash string) error

	// PutLayout stores or replaces the layout for a family.
	PutLayout(ctx context.Context, l LayoutRecord) error

	// CompleteLayout persists the result of an optimization run. Unlike
	// PutLayout it is epoch-aware: when the stored record's StaleEpoch
	// has advanced past the given record's, the write keeps the stale
	// flag and the higher epoch, so a mark set while the run was in
	// flight survives the persist.
	CompleteLayout(ctx context.Context, l LayoutRecord) error

	// GetLayout returns the layout for the given family hash, or
	// ErrNotFound.
	GetLayout(ctx context.Context, hash string) (LayoutRecord, error)

	// MarkStale flags the family's layout as stale. Marking a family
	// without a layout is a no-op: a missing layout is already pending.
	MarkStale(ctx context.Context, hash string) error

	// Ping verifies the backend is reachable.
	Ping(ctx context.Context) error

	// Close releases backend resources.
	Close() error
}

// Pending returns the hashes of families whose layout is missing or stale,
// in sorted order. This is the runner's work queue.
func Pending(ctx context.Context, s Store) ([]string, error) {
	families, err := s.ListFamilies(ctx)
	if err != nil {
		return nil, err
	}
	var pending []string
	for _, f := range families {
		l, err := s.GetLayout(ctx, f.Hash)
		switch {
		case errors.Is(err, ErrNotFound):
			pending = append(pending, f.Hash)
		case err != nil:
			return nil, err
		case l.Stale:
			pending = append(pending, f.Hash)
		}
	}
	slices.Sort(pending)
	return pending, nil
}
