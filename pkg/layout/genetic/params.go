package genetic

import (
	"time"

	"github.com/lanefold/lanefold/pkg/errors"
)

// StrategyWeights holds the selection probability weight of each mutation
// strategy. Strategies with weight zero are never preferred, but a strategy
// may still run as a fallback when a preferred one is inapplicable.
type StrategyWeights struct {
	Swap        float64 `toml:"swap" json:"swap"`
	Heuristic   float64 `toml:"heuristic" json:"heuristic"`
	Compaction  float64 `toml:"compaction" json:"compaction"`
	Exploration float64 `toml:"exploration" json:"exploration"`
}

func (s StrategyWeights) total() float64 {
	return s.Swap + s.Heuristic + s.Compaction + s.Exploration
}

// Params configures one optimizer run. All parameters are hot-reloadable
// between runs; a running search keeps the parameters it started with.
type Params struct {
	PopulationSize int     `toml:"population_size" json:"population_size"`
	MaxGenerations int     `toml:"max_generations" json:"max_generations"`
	MutationRate   float64 `toml:"mutation_rate" json:"mutation_rate"`
	TournamentSize int     `toml:"tournament_size" json:"tournament_size"`

	// TimeoutSeconds bounds wall-clock time per run. Zero disables the
	// timeout.
	TimeoutSeconds float64 `toml:"timeout_seconds" json:"timeout_seconds"`

	// Patience is the number of consecutive generations without an
	// improvement greater than MinImprovement tolerated before the search
	// stops early. Zero disables the stagnation check.
	Patience       int     `toml:"patience" json:"patience"`
	MinImprovement float64 `toml:"min_improvement" json:"min_improvement"`

	Strategies StrategyWeights `toml:"strategies" json:"strategies"`

	// Seed makes runs reproducible. Zero seeds from the clock.
	Seed uint64 `toml:"seed" json:"seed"`
}

// DefaultParams returns the parameters used when no configuration overrides
// them.
func DefaultParams() Params {
	return Params{
		PopulationSize: 80,
		MaxGenerations: 400,
		MutationRate:   0.85,
		TournamentSize: 4,
		TimeoutSeconds: 20,
		Patience:       60,
		MinImprovement: 1e-9,
		Strategies: StrategyWeights{
			Swap:        0.25,
			Heuristic:   0.30,
			Compaction:  0.25,
			Exploration: 0.20,
		},
		Seed: 42,
	}
}

// Timeout returns TimeoutSeconds as a duration.
func (p Params) Timeout() time.Duration {
	return time.Duration(p.TimeoutSeconds * float64(time.Second))
}

// Validate checks the parameters and fails fast before a run starts.
func (p Params) Validate() error {
	if p.PopulationSize <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "population size must be positive, got %d", p.PopulationSize)
	}
	if p.MaxGenerations < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "generation cap must not be negative, got %d", p.MaxGenerations)
	}
	if p.MutationRate < 0 || p.MutationRate > 1 {
		return errors.New(errors.ErrCodeInvalidConfig, "mutation rate must be in [0, 1], got %v", p.MutationRate)
	}
	if p.TournamentSize <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "tournament size must be positive, got %d", p.TournamentSize)
	}
	if p.TimeoutSeconds < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "timeout must not be negative, got %v", p.TimeoutSeconds)
	}
	if p.Patience < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "patience must not be negative, got %d", p.Patience)
	}
	if p.MinImprovement < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "minimum improvement must not be negative, got %v", p.MinImprovement)
	}
	s := p.Strategies
	if s.Swap < 0 || s.Heuristic < 0 || s.Compaction < 0 || s.Exploration < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "mutation strategy weights must not be negative")
	}
	if s.total() <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "at least one mutation strategy weight must be positive")
	}
	return nil
}
