package genetic

import (
	"context"
	"testing"
	"time"

	"github.com/lanefold/lanefold/pkg/layout"
	"github.com/lanefold/lanefold/pkg/layout/cost"
	"github.com/lanefold/lanefold/pkg/lineage"
	"github.com/lanefold/lanefold/pkg/lineage/chain"
)

func span(id string, start, end int) *chain.Chain {
	return &chain.Chain{ID: id, Start: start, End: end}
}

// testEnv builds a small family: two overlapping strangers plus a successor
// pair, enough structure for the search to have something to solve.
func testEnv() *cost.Env {
	chains := []*chain.Chain{
		span("a", 1900, 1950),
		span("b", 1940, 1970),
		span("c", 1951, 1980),
	}
	rels := []chain.Relation{
		{Parent: "a", Child: "c", Year: 1951, Type: lineage.LinkSplit},
	}
	return cost.NewEnv(chains, rels, cost.DefaultWeights())
}

func fastParams() Params {
	p := DefaultParams()
	p.PopulationSize = 20
	p.MaxGenerations = 60
	p.TimeoutSeconds = 5
	return p
}

func TestNewValidates(t *testing.T) {
	bad := DefaultParams()
	bad.PopulationSize = 0
	if _, err := New(testEnv(), bad); err == nil {
		t.Error("New() accepted invalid parameters")
	}
	if _, err := New(testEnv(), DefaultParams()); err != nil {
		t.Errorf("New() = %v, want nil", err)
	}
}

func TestRunEmptyEnv(t *testing.T) {
	env := cost.NewEnv(nil, nil, cost.DefaultWeights())
	opt, err := New(env, fastParams())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	res := opt.Run(context.Background())
	if res.Best == nil {
		t.Fatal("Run() Best = nil, want empty individual")
	}
	if len(res.Best) != 0 || res.Score != 0 || res.Generations != 0 {
		t.Errorf("Run() = %+v, want empty zero-score result", res)
	}
}

func TestRunAssignsEveryChain(t *testing.T) {
	opt, err := New(testEnv(), fastParams())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	res := opt.Run(context.Background())

	for _, id := range []string{"a", "b", "c"} {
		if _, ok := res.Best[id]; !ok {
			t.Errorf("Best missing chain %q", id)
		}
	}
	if res.Lanes != res.Best.LaneCount() {
		t.Errorf("Lanes = %d, LaneCount() = %d", res.Lanes, res.Best.LaneCount())
	}
	if res.Score != res.Breakdown.Total() {
		t.Errorf("Score = %v, Breakdown.Total() = %v", res.Score, res.Breakdown.Total())
	}
}

func TestRunSeparatesOverlappingStrangers(t *testing.T) {
	// a and b overlap and are unrelated; any decent search keeps them off a
	// shared lane, so the score stays below one hard violation.
	opt, err := New(testEnv(), fastParams())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	res := opt.Run(context.Background())

	if res.Best["a"] == res.Best["b"] {
		t.Errorf("overlapping strangers share lane %d, score %v", res.Best["a"], res.Score)
	}
	if res.Score >= 1000 {
		t.Errorf("Score = %v, want below a hard violation", res.Score)
	}
}

func TestProgressMonotonic(t *testing.T) {
	opt, err := New(testEnv(), fastParams())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	var scores []float64
	opt.Progress = func(gen int, best float64) {
		scores = append(scores, best)
	}
	opt.Run(context.Background())

	if len(scores) == 0 {
		t.Fatal("Progress was never called")
	}
	for i := 1; i < len(scores); i++ {
		if scores[i] > scores[i-1] {
			t.Fatalf("best score worsened at generation %d: %v -> %v", i+1, scores[i-1], scores[i])
		}
	}
}

func TestRunDeterministicWithSeed(t *testing.T) {
	run := func() *Result {
		p := fastParams()
		p.Seed = 7
		opt, err := New(testEnv(), p)
		if err != nil {
			t.Fatalf("New() error = %v", err)
		}
		return opt.Run(context.Background())
	}
	r1, r2 := run(), run()

	if r1.Score != r2.Score {
		t.Errorf("scores differ: %v vs %v", r1.Score, r2.Score)
	}
	for id, lane := range r1.Best {
		if r2.Best[id] != lane {
			t.Errorf("chain %q lane differs: %d vs %d", id, lane, r2.Best[id])
		}
	}
}

func TestRunCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	opt, err := New(testEnv(), fastParams())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	res := opt.Run(ctx)

	if !res.TimedOut {
		t.Error("TimedOut = false for cancelled context")
	}
	if res.Best == nil || len(res.Best) != 3 {
		t.Errorf("Best = %v, want a complete best-effort assignment", res.Best)
	}
}

func TestRunTimeout(t *testing.T) {
	p := fastParams()
	p.TimeoutSeconds = 0.001
	p.MaxGenerations = 1_000_000
	p.Patience = 0

	opt, err := New(testEnv(), p)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	start := time.Now()
	res := opt.Run(context.Background())
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Fatalf("Run() took %v despite 1ms budget", elapsed)
	}
	if !res.TimedOut {
		t.Error("TimedOut = false after exceeding the budget")
	}
}

func TestPatienceStopsEarly(t *testing.T) {
	p := fastParams()
	p.MaxGenerations = 10_000
	p.Patience = 5

	opt, err := New(testEnv(), p)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	res := opt.Run(context.Background())
	if res.Generations >= p.MaxGenerations {
		t.Errorf("Generations = %d, expected early stop well below %d", res.Generations, p.MaxGenerations)
	}
}

func TestMutatePreservesChainSet(t *testing.T) {
	opt, err := New(testEnv(), fastParams())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	ind := layout.Individual{"a": 0, "b": 1, "c": 2}
	for i := 0; i < 200; i++ {
		opt.mutate(ind)
		if len(ind) != 3 {
			t.Fatalf("mutation %d changed chain set: %v", i, ind)
		}
		for _, id := range []string{"a", "b", "c"} {
			if lane, ok := ind[id]; !ok || lane < 0 {
				t.Fatalf("mutation %d produced bad lane for %q: %v", i, id, ind)
			}
		}
	}
}

func TestCrossoverTakesLanesFromParents(t *testing.T) {
	opt, err := New(testEnv(), fastParams())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	a := layout.Individual{"a": 0, "b": 1, "c": 2}
	b := layout.Individual{"a": 5, "b": 6, "c": 7}
	for i := 0; i < 50; i++ {
		child := opt.crossover(a, b)
		if len(child) != 3 {
			t.Fatalf("crossover produced %d chains, want 3", len(child))
		}
		for id, lane := range child {
			if lane != a[id] && lane != b[id] {
				t.Fatalf("chain %q lane %d comes from neither parent", id, lane)
			}
		}
	}
}

func TestParamsValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Params)
		wantOK bool
	}{
		{name: "Defaults", mutate: func(p *Params) {}, wantOK: true},
		{name: "ZeroPopulation", mutate: func(p *Params) { p.PopulationSize = 0 }},
		{name: "NegativeGenerations", mutate: func(p *Params) { p.MaxGenerations = -1 }},
		{name: "MutationRateAboveOne", mutate: func(p *Params) { p.MutationRate = 1.5 }},
		{name: "ZeroTournament", mutate: func(p *Params) { p.TournamentSize = 0 }},
		{name: "NegativeTimeout", mutate: func(p *Params) { p.TimeoutSeconds = -1 }},
		{name: "NegativeStrategyWeight", mutate: func(p *Params) { p.Strategies.Swap = -0.1 }},
		{name: "AllStrategiesZero", mutate: func(p *Params) { p.Strategies = StrategyWeights{} }},
		{name: "ZeroGenerationsAllowed", mutate: func(p *Params) { p.MaxGenerations = 0 }, wantOK: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := DefaultParams()
			tt.mutate(&p)
			err := p.Validate()
			if tt.wantOK && err != nil {
				t.Errorf("Validate() = %v, want nil", err)
			}
			if !tt.wantOK && err == nil {
				t.Error("Validate() = nil, want error")
			}
		})
	}
}
