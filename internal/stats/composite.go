package stats

import (
	"fmt"
	"math"
	"sort"

	"github.com/dollydang/sprint-portfolio-analytics/internal/errors"
)

// weightTolerance absorbs float accumulation when checking that a weight
// table sums to one.
const weightTolerance = 1e-9

// Component is one named input to a weighted composite.
type Component struct {
	Value  float64
	Weight float64
}

// Composite is a weighted normalized composite: named components whose
// weights must sum to one. Health scoring, risk scoring, and portfolio
// health all share this shape.
type Composite map[string]Component

// Validate checks that the component weights sum to one and that no weight
// is negative. Call it when configuration is loaded, not per computation.
func (c Composite) Validate() error {
	if len(c) == 0 {
		return errors.NewConfigurationError("composite has no components", nil)
	}
	sum := 0.0
	for name, comp := range c {
		if comp.Weight < 0 {
			return errors.NewConfigurationError(
				fmt.Sprintf("composite component %q has negative weight %v", name, comp.Weight), nil)
		}
		sum += comp.Weight
	}
	if math.Abs(sum-1.0) > weightTolerance {
		return errors.NewConfigurationError(
			fmt.Sprintf("composite weights sum to %v, want 1.0", sum), nil)
	}
	return nil
}

// Score returns the weighted sum of component values.
func (c Composite) Score() float64 {
	s := 0.0
	for _, comp := range c {
		s += comp.Weight * comp.Value
	}
	return s
}

// Breakdown returns each component's weighted contribution, keyed by name.
func (c Composite) Breakdown() map[string]float64 {
	out := make(map[string]float64, len(c))
	for name, comp := range c {
		out[name] = comp.Weight * comp.Value
	}
	return out
}

// ValidateWeights checks a bare weight table the same way Validate checks a
// composite. Used by configs that hold weights separate from values.
func ValidateWeights(weights map[string]float64) error {
	if len(weights) == 0 {
		return errors.NewConfigurationError("weight table is empty", nil)
	}
	names := make([]string, 0, len(weights))
	for name := range weights {
		names = append(names, name)
	}
	sort.Strings(names)
	sum := 0.0
	for _, name := range names {
		w := weights[name]
		if w < 0 {
			return errors.NewConfigurationError(
				fmt.Sprintf("weight %q is negative: %v", name, w), nil)
		}
		sum += w
	}
	if math.Abs(sum-1.0) > weightTolerance {
		return errors.NewConfigurationError(
			fmt.Sprintf("weights sum to %v, want 1.0", sum), nil)
	}
	return nil
}
