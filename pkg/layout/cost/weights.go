package cost

import "fmt"

// Weights controls the relative strength of each cost term. A weight of zero
// disables its term entirely.
type Weights struct {
	Attraction float64 `toml:"attraction" json:"attraction"`
	CutThrough float64 `toml:"cut_through" json:"cut_through"`
	Blocker    float64 `toml:"blocker" json:"blocker"`
	YShape     float64 `toml:"y_shape" json:"y_shape"`
	Overlap    float64 `toml:"overlap" json:"overlap"`
}

// DefaultWeights returns the weights used when no configuration overrides
// them. The defaults keep overlap violations dominant over every shaping
// term.
func DefaultWeights() Weights {
	return Weights{
		Attraction: 1.0,
		CutThrough: 0.8,
		Blocker:    2.0,
		YShape:     1.5,
		Overlap:    1.0,
	}
}

// Validate checks that all weights are non-negative.
func (w Weights) Validate() error {
	checks := []struct {
		name  string
		value float64
	}{
		{"attraction", w.Attraction},
		{"cut_through", w.CutThrough},
		{"blocker", w.Blocker},
		{"y_shape", w.YShape},
		{"overlap", w.Overlap},
	}
	for _, c := range checks {
		if c.value < 0 {
			return fmt.Errorf("weight %s must not be negative, got %v", c.name, c.value)
		}
	}
	return nil
}

// Breakdown reports the contribution of each term to a score.
type Breakdown struct {
	Attraction float64 `json:"attraction" bson:"attraction"`
	CutThrough float64 `json:"cut_through" bson:"cut_through"`
	Blocker    float64 `json:"blocker" bson:"blocker"`
	YShape     float64 `json:"y_shape" bson:"y_shape"`
	Overlap    float64 `json:"overlap" bson:"overlap"`
}

// Total returns the sum of all terms.
func (b Breakdown) Total() float64 {
	return b.Attraction + b.CutThrough + b.Blocker + b.YShape + b.Overlap
}

// Add accumulates another breakdown into b.
func (b *Breakdown) Add(o Breakdown) {
	b.Attraction += o.Attraction
	b.CutThrough += o.CutThrough
	b.Blocker += o.Blocker
	b.YShape += o.YShape
	b.Overlap += o.Overlap
}
