// Package runner orchestrates the optimization of discovered families:
// rebuild chains, run the genetic search, persist the result.
//
// Families are independent, so the runner optimizes them concurrently with
// a bounded worker pool. Within one family the search is sequential. The
// persisted family/layout store is the only shared mutable resource; the
// runner guarantees at most one in-flight optimization per family hash and
// never loses a stale mark set while an optimization is running.
package runner

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/lanefold/lanefold/pkg/errors"
	"github.com/lanefold/lanefold/pkg/family"
	"github.com/lanefold/lanefold/pkg/layout/cost"
	"github.com/lanefold/lanefold/pkg/layout/genetic"
	"github.com/lanefold/lanefold/pkg/lineage"
	"github.com/lanefold/lanefold/pkg/lineage/chain"
	"github.com/lanefold/lanefold/pkg/observability"
	"github.com/lanefold/lanefold/pkg/store"
)

// RunConfig is the parameter snapshot one optimization run operates with.
type RunConfig struct {
	Genetic       genetic.Params
	Weights       cost.Weights
	ReferenceYear int
}

// ConfigSource yields the parameters for the next run. Implementations may
// hot-reload between calls; a run keeps the snapshot it started with.
type ConfigSource interface {
	Snapshot() (RunConfig, error)
}

// StaticConfig is a ConfigSource with fixed parameters, mostly for tests.
type StaticConfig RunConfig

// Snapshot implements ConfigSource.
func (c StaticConfig) Snapshot() (RunConfig, error) { return RunConfig(c), nil }

// ErrInFlight is returned by Optimize when an optimization for the same
// family hash is already running.
var ErrInFlight = errors.New(errors.ErrCodeUnsupported, "optimization already in flight for this family")

// maxPasses bounds how often one batch re-queues families that were marked
// stale while their optimization was running.
const maxPasses = 3

// Runner drives family optimization against a store.
type Runner struct {
	Store  store.Store
	Source ConfigSource
	Logger *log.Logger

	// Workers bounds concurrent family optimizations. Defaults to 4.
	Workers int

	// Discovery, when set, lets Run register new families before
	// optimizing. Optimize works without it.
	Discovery *family.Discoverer

	// Progress, when set, is installed on every optimizer so callers can
	// observe the search per generation. Called from worker goroutines.
	Progress func(familyHash string, generation int, bestScore float64)

	mu       sync.Mutex
	inFlight map[string]bool
}

// BatchReport summarizes one Run invocation.
type BatchReport struct {
	RunID      string
	Discovered int
	Optimized  int
	Failed     int
	Passes     int
	Duration   time.Duration
}

// Run discovers families in the graph (when a Discoverer is configured) and
// optimizes every family whose layout is missing or stale. Families marked
// stale while their optimization was in flight are re-queued in a
// subsequent pass. Per-family failures are logged and skipped; they never
// abort the batch.
func (r *Runner) Run(ctx context.Context, g *lineage.Graph) (*BatchReport, error) {
	runID := shortID(uuid.NewString())
	logger := r.logger().With("run_id", runID)
	start := time.Now()
	report := &BatchReport{RunID: runID}

	if r.Discovery != nil {
		observability.Engine().OnDiscoveryStart(ctx, g.NodeCount(), g.LinkCount())
		registered, err := r.Discovery.Discover(ctx, g)
		observability.Engine().OnDiscoveryComplete(ctx, len(registered), time.Since(start), err)
		if err != nil {
			return report, errors.Wrap(errors.ErrCodeStore, err, "family discovery")
		}
		report.Discovered = len(registered)
	}

	for pass := 0; pass < maxPasses; pass++ {
		pending, err := store.Pending(ctx, r.Store)
		if err != nil {
			return report, errors.Wrap(errors.ErrCodeStore, err, "list pending families")
		}
		if len(pending) == 0 {
			break
		}
		report.Passes++
		logger.Info("optimizing families", "pending", len(pending), "pass", report.Passes)

		eg, egCtx := errgroup.WithContext(ctx)
		eg.SetLimit(r.workers())
		var mu sync.Mutex
		for _, hash := range pending {
			eg.Go(func() error {
				_, err := r.optimizeIsolated(egCtx, g, hash, logger)
				mu.Lock()
				defer mu.Unlock()
				if err != nil {
					report.Failed++
				} else {
					report.Optimized++
				}
				return nil // failures are isolated, never cancel siblings
			})
		}
		if err := eg.Wait(); err != nil {
			return report, err
		}
		if ctx.Err() != nil {
			break
		}
	}

	report.Duration = time.Since(start)
	logger.Info("batch complete",
		"discovered", report.Discovered,
		"optimized", report.Optimized,
		"failed", report.Failed,
		"duration", report.Duration.Round(time.Millisecond))
	return report, nil
}

// optimizeIsolated runs one family optimization, converting panics and
// errors into log lines so one bad family cannot take down the batch.
func (r *Runner) optimizeIsolated(ctx context.Context, g *lineage.Graph, hash string, logger *log.Logger) (rec *store.LayoutRecord, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = errors.New(errors.ErrCodeInternal, "optimization panicked: %v", p)
		}
		if err != nil {
			logger.Error("family optimization failed", "hash", shortID(hash), "err", err)
		}
	}()
	return r.Optimize(ctx, g, hash)
}

// Optimize rebuilds the chains of one registered family, runs the genetic
// search and persists the resulting layout. At most one optimization per
// family hash may be in flight; concurrent calls for the same hash get
// ErrInFlight.
//
// A timeout or cancellation during the search is not an error: the best
// assignment found so far is persisted and returned.
func (r *Runner) Optimize(ctx context.Context, g *lineage.Graph, hash string) (*store.LayoutRecord, error) {
	if !r.acquire(hash) {
		return nil, ErrInFlight
	}
	defer r.release(hash)

	cfg, err := r.Source.Snapshot()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "load run configuration")
	}
	if cfg.ReferenceYear == 0 {
		cfg.ReferenceYear = time.Now().Year()
	}
	if err := cfg.Genetic.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Weights.Validate(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "cost weights")
	}

	fam, err := r.Store.GetFamily(ctx, hash)
	if err == store.ErrNotFound {
		return nil, errors.New(errors.ErrCodeFamilyNotFound, "family %s is not registered", shortID(hash))
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStore, err, "load family %s", shortID(hash))
	}

	// Epoch before the run; marks arriving later must survive the persist.
	startEpoch := int64(0)
	prior, err := r.Store.GetLayout(ctx, hash)
	if err == nil {
		startEpoch = prior.StaleEpoch
	} else if err != store.ErrNotFound {
		return nil, errors.Wrap(errors.ErrCodeStore, err, "load layout %s", shortID(hash))
	}

	sub, rep := subgraph(g, fam)
	if sub.NodeCount() == 0 {
		return nil, errors.New(errors.ErrCodeInvalidGraph,
			"graph contains none of family %s's %d members", shortID(hash), fam.NodeCount)
	}
	if rep.SkippedNodes > 0 || rep.SkippedLinks > 0 {
		r.logger().Warn("family snapshot incomplete",
			"hash", shortID(hash),
			"missing_nodes", rep.SkippedNodes,
			"missing_links", rep.SkippedLinks)
	}

	chains := chain.Build(sub, cfg.ReferenceYear)
	rels := chain.Relations(sub, chains)
	env := cost.NewEnv(chains, rels, cfg.Weights)

	opt, err := genetic.New(env, cfg.Genetic)
	if err != nil {
		return nil, err
	}
	if r.Progress != nil {
		opt.Progress = func(gen int, best float64) { r.Progress(hash, gen, best) }
	}

	start := time.Now()
	observability.Engine().OnOptimizeStart(ctx, hash, len(chains))
	res := opt.Run(ctx)
	elapsed := time.Since(start)
	observability.Engine().OnOptimizeComplete(ctx, hash, res.Score, res.Generations, elapsed, nil)

	rec := buildRecord(sub, fam.Hash, chains, rels, res)
	rec.Created = prior.Created
	if rec.Created.IsZero() {
		rec.Created = time.Now().UTC()
	}
	rec.Updated = time.Now().UTC()
	rec.StaleEpoch = startEpoch

	// CompleteLayout is epoch-aware: a mark set mid-run bumped the stored
	// epoch, and the persist keeps the flag and the higher epoch rather
	// than overwriting them. The re-read picks the surviving mark up so
	// callers and the next pass of the batch see the layout as pending.
	if err := r.Store.CompleteLayout(ctx, *rec); err != nil {
		return nil, errors.Wrap(errors.ErrCodeStore, err, "persist layout %s", shortID(hash))
	}
	observability.Store().OnLayoutWrite(ctx, hash)
	if stored, err := r.Store.GetLayout(ctx, hash); err == nil {
		rec = &stored
	}

	r.logger().Info("optimized family",
		"hash", shortID(hash),
		"chains", len(chains),
		"lanes", res.Lanes,
		"score", res.Score,
		"generations", res.Generations,
		"timed_out", res.TimedOut,
		"duration", elapsed.Round(time.Millisecond))
	return rec, nil
}

// Layout returns the persisted layout for a family, recomputing it first
// when it is missing or stale. This is the read path presentation
// collaborators use.
//
// A nil graph turns Layout into a read-only peek: a stale record is
// returned as is, a missing one yields LAYOUT_NOT_FOUND instead of a
// recompute.
func (r *Runner) Layout(ctx context.Context, g *lineage.Graph, hash string) (*store.LayoutRecord, error) {
	rec, err := r.Store.GetLayout(ctx, hash)
	if err == nil && (!rec.Stale || g == nil) {
		observability.Store().OnLayoutHit(ctx, hash)
		return &rec, nil
	}
	if err != nil && err != store.ErrNotFound {
		return nil, errors.Wrap(errors.ErrCodeStore, err, "load layout %s", shortID(hash))
	}
	observability.Store().OnLayoutMiss(ctx, hash)
	if g == nil {
		return nil, errors.New(errors.ErrCodeLayoutNotFound, "no layout computed for family %s", shortID(hash))
	}
	return r.Optimize(ctx, g, hash)
}

func (r *Runner) acquire(hash string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.inFlight == nil {
		r.inFlight = make(map[string]bool)
	}
	if r.inFlight[hash] {
		return false
	}
	r.inFlight[hash] = true
	return true
}

func (r *Runner) release(hash string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.inFlight, hash)
}

func (r *Runner) workers() int {
	if r.Workers > 0 {
		return r.Workers
	}
	return 4
}

func (r *Runner) logger() *log.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return log.Default()
}

// subgraph extracts the family's registered nodes and links from the
// current graph. Members missing from the graph (deleted since
// registration) are reported, not fatal; the next discovery pass will
// supersede the registration.
func subgraph(g *lineage.Graph, fam store.FamilyRecord) (*lineage.Graph, lineage.Report) {
	nodes := make([]lineage.Node, 0, len(fam.NodeIDs))
	missing := lineage.Report{}
	for _, id := range fam.NodeIDs {
		h, ok := g.NodeByID(id)
		if !ok {
			missing.SkippedNodes++
			continue
		}
		nodes = append(nodes, g.Node(h))
	}
	links := make([]lineage.Link, 0, len(fam.LinkIDs))
	for _, id := range fam.LinkIDs {
		h, ok := g.LinkByID(id)
		if !ok {
			missing.SkippedLinks++
			continue
		}
		links = append(links, g.Link(h))
	}
	sub, rep := lineage.FromRecords(nodes, links)
	rep.SkippedNodes += missing.SkippedNodes
	rep.SkippedLinks += missing.SkippedLinks
	return sub, rep
}

// buildRecord snapshots the decomposition and search result into a layout
// record.
func buildRecord(g *lineage.Graph, hash string, chains []*chain.Chain, rels []chain.Relation, res *genetic.Result) *store.LayoutRecord {
	snaps := make([]store.ChainSnapshot, len(chains))
	for i, c := range chains {
		ids := make([]string, len(c.Nodes))
		for j, h := range c.Nodes {
			ids[j] = g.Node(h).ID
		}
		snaps[i] = store.ChainSnapshot{ID: c.ID, NodeIDs: ids, Start: c.Start, End: c.End}
	}
	relSnaps := make([]store.RelationSnapshot, len(rels))
	for i, rel := range rels {
		relSnaps[i] = store.RelationSnapshot{
			Parent: rel.Parent,
			Child:  rel.Child,
			Year:   rel.Year,
			Type:   rel.Type,
			LinkID: rel.LinkID,
		}
	}
	return &store.LayoutRecord{
		FamilyHash:     hash,
		Lanes:          res.Best,
		Chains:         snaps,
		Relations:      relSnaps,
		Score:          res.Score,
		Breakdown:      res.Breakdown,
		Generations:    res.Generations,
		BestGeneration: res.BestGeneration,
		LaneCount:      res.Lanes,
	}
}

// shortID truncates hashes and UUIDs for log lines.
func shortID(id string) string {
	if len(id) > 12 {
		return id[:12]
	}
	return id
}
