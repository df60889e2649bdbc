package store

import "math"

// WeightPolicy computes an item's next learning weight from its previous one.
type WeightPolicy struct {
	Initial float64 `yaml:"initial" mapstructure:"initial"` // Weight of newly imported items
	Penalty float64 `yaml:"penalty" mapstructure:"penalty"` // Added on a wrong answer
	Reward  float64 `yaml:"reward" mapstructure:"reward"`   // Subtracted on a correct answer
	Ceiling float64 `yaml:"ceiling" mapstructure:"ceiling"` // Upper bound, 0 for none
}

// DefaultWeightPolicy starts new items due for review.
var DefaultWeightPolicy = WeightPolicy{Initial: 1, Penalty: 1, Reward: 0.5, Ceiling: 10}

// Next returns the weight after an answer. Wrong answers raise the weight up to
// Ceiling; correct answers lower it, never below 0.
func (p WeightPolicy) Next(previous float64, correct bool) float64 {
	previous = math.Max(previous, 0)
	if correct {
		return math.Max(previous-p.Reward, 0)
	}
	next := previous + p.Penalty
	if p.Ceiling > 0 {
		next = math.Min(next, p.Ceiling)
	}
	return next
}
