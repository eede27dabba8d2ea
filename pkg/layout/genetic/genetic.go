package genetic

import (
	"context"
	"math"
	"math/rand/v2"
	"time"

	"github.com/lanefold/lanefold/pkg/layout"
	"github.com/lanefold/lanefold/pkg/layout/cost"
)

// Result is the outcome of one optimizer run.
type Result struct {
	// Best is the best assignment found. Never nil; empty for an empty
	// chain list.
	Best layout.Individual

	Score          float64
	Generations    int // generations actually run
	BestGeneration int // generation at which Best was found
	Breakdown      cost.Breakdown
	Lanes          int // distinct lanes used by Best

	// TimedOut records that the run stopped on its wall-clock budget or a
	// cancelled context rather than convergence. This is a normal exit,
	// not a failure.
	TimedOut bool
}

// Optimizer runs the genetic search against one cost environment. Create
// with [New]; an Optimizer is single-use state for one family and must not
// be shared between goroutines.
type Optimizer struct {
	// Progress, when set, is invoked once per generation with the current
	// best score.
	Progress func(generation int, bestScore float64)

	env    *cost.Env
	params Params
	rng    *rand.Rand
	ids    []string
}

// New creates an optimizer for the given environment, failing fast on
// invalid parameters.
func New(env *cost.Env, p Params) (*Optimizer, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	seed := p.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return &Optimizer{
		env:    env,
		params: p,
		rng:    rand.New(rand.NewPCG(seed, seed)),
		ids:    env.ChainIDs(),
	}, nil
}

type scored struct {
	ind   layout.Individual
	score float64
}

// Run executes the search until the generation cap, the timeout, or the
// patience budget is reached. Cancellation via ctx behaves like a timeout:
// the best assignment found so far is returned, never an error.
func (o *Optimizer) Run(ctx context.Context) *Result {
	if len(o.ids) == 0 {
		return &Result{Best: layout.Individual{}}
	}

	var deadline time.Time
	if t := o.params.Timeout(); t > 0 {
		deadline = time.Now().Add(t)
	}

	pop := o.initialPopulation()
	best := o.evaluate(pop)
	bestGen, stagnant := 0, 0

	res := &Result{}
	gen := 0
	for gen < o.params.MaxGenerations {
		if ctx.Err() != nil || (!deadline.IsZero() && time.Now().After(deadline)) {
			res.TimedOut = true
			break
		}
		gen++

		pop = o.nextGeneration(pop, best)
		genBest := o.evaluate(pop)

		// Elitism keeps the best individual in every population, so the
		// best score can only stay or improve.
		if improvement := best.score - genBest.score; improvement > o.params.MinImprovement {
			stagnant = 0
		} else {
			stagnant++
		}
		if genBest.score < best.score {
			best = scored{ind: genBest.ind.Clone(), score: genBest.score}
			bestGen = gen
		}
		if o.Progress != nil {
			o.Progress(gen, best.score)
		}
		if o.params.Patience > 0 && stagnant >= o.params.Patience {
			break
		}
	}

	res.Best = best.ind
	res.Generations = gen
	res.BestGeneration = bestGen
	res.Score, res.Breakdown = o.env.Individual(best.ind)
	res.Lanes = best.ind.LaneCount()
	return res
}

// initialPopulation seeds individuals from a compact random lane range
// sized to max(3, chainCount^0.6), biasing the search toward few lanes.
func (o *Optimizer) initialPopulation() []scored {
	laneRange := int(math.Pow(float64(len(o.ids)), 0.6))
	if laneRange < 3 {
		laneRange = 3
	}
	pop := make([]scored, o.params.PopulationSize)
	for i := range pop {
		ind := make(layout.Individual, len(o.ids))
		for _, id := range o.ids {
			ind[id] = o.rng.IntN(laneRange)
		}
		pop[i] = scored{ind: ind, score: math.NaN()}
	}
	return pop
}

// evaluate recomputes every individual's fitness from scratch and returns
// the generation's best. Incremental caching is deliberately absent: moving
// one chain can change the attraction and overlap terms of every other
// chain.
func (o *Optimizer) evaluate(pop []scored) scored {
	best := scored{score: math.Inf(1)}
	for i := range pop {
		score, _ := o.env.Individual(pop[i].ind)
		pop[i].score = score
		if score < best.score {
			best = pop[i]
		}
	}
	return scored{ind: best.ind.Clone(), score: best.score}
}

// nextGeneration breeds a replacement population. The best-known individual
// is carried over unchanged; the rest is produced by tournament selection,
// uniform crossover and at most one mutation per offspring.
func (o *Optimizer) nextGeneration(pop []scored, best scored) []scored {
	next := make([]scored, 0, len(pop))
	next = append(next, scored{ind: best.ind.Clone(), score: best.score})
	for len(next) < len(pop) {
		a := o.tournament(pop)
		b := o.tournament(pop)
		child := o.crossover(a.ind, b.ind)
		if o.rng.Float64() < o.params.MutationRate {
			o.mutate(child)
		}
		next = append(next, scored{ind: child, score: math.NaN()})
	}
	return next
}

// tournament samples TournamentSize individuals with replacement and keeps
// the lowest-cost one.
func (o *Optimizer) tournament(pop []scored) scored {
	best := pop[o.rng.IntN(len(pop))]
	for i := 1; i < o.params.TournamentSize; i++ {
		if c := pop[o.rng.IntN(len(pop))]; c.score < best.score {
			best = c
		}
	}
	return best
}

// crossover builds a child by picking each chain's lane from either parent
// with equal probability. Both parents assign the same chain set, so the
// child does too.
func (o *Optimizer) crossover(a, b layout.Individual) layout.Individual {
	child := make(layout.Individual, len(o.ids))
	for _, id := range o.ids {
		if o.rng.IntN(2) == 0 {
			child[id] = a[id]
		} else {
			child[id] = b[id]
		}
	}
	return child
}
