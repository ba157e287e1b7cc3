// Package predictive holds the stochastic and forward-looking models:
// composite sprint health, the Monte Carlo velocity simulation, initiative
// risk scoring, and the linear capacity forecast.
package predictive

import (
	"fmt"

	"github.com/dollydang/sprint-portfolio-analytics/internal/errors"
	"github.com/dollydang/sprint-portfolio-analytics/internal/stats"
)

// Weight table keys. Both tables are closed: Validate rejects missing or
// unexpected entries.
const (
	WeightVelocityConsistency = "velocity_consistency"
	WeightEstimationAccuracy  = "estimation_accuracy"
	WeightCompletionRate      = "completion_rate"
	WeightBlockerImpact       = "blocker_impact"

	WeightCapacityRisk    = "capacity"
	WeightVolatilityRisk  = "volatility"
	WeightUtilizationRisk = "utilization"
	WeightProgressRisk    = "progress"
)

// Minimum history each statistical method needs. Fewer points fail with an
// insufficient-history error rather than approximating.
const (
	MinMonteCarloHistory = 3
	MinForecastHistory   = 4
)

// Config parameterizes all predictive models. It is passed explicitly into
// each computation; nothing here is ambient state.
type Config struct {
	HealthWeights map[string]float64
	RiskWeights   map[string]float64
	// Simulations is the Monte Carlo trial count; the sole quality-for-speed
	// tunable.
	Simulations int
	// Seed drives the bootstrap sampler. Zero selects a wall-clock seed;
	// any other value makes runs exactly reproducible.
	Seed int64
}

// DefaultConfig returns the standard weight tables and simulation count.
func DefaultConfig() Config {
	return Config{
		HealthWeights: map[string]float64{
			WeightVelocityConsistency: 0.30,
			WeightEstimationAccuracy:  0.25,
			WeightCompletionRate:      0.25,
			WeightBlockerImpact:       0.20,
		},
		RiskWeights: map[string]float64{
			WeightCapacityRisk:    0.35,
			WeightVolatilityRisk:  0.25,
			WeightUtilizationRisk: 0.25,
			WeightProgressRisk:    0.15,
		},
		Simulations: 1000,
	}
}

// Validate checks both weight tables sum to one and carry exactly the
// expected keys. Call at configuration load, not per computation.
func (c Config) Validate() error {
	if err := validateKeys("health", c.HealthWeights,
		WeightVelocityConsistency, WeightEstimationAccuracy, WeightCompletionRate, WeightBlockerImpact); err != nil {
		return err
	}
	if err := stats.ValidateWeights(c.HealthWeights); err != nil {
		return err
	}
	if err := validateKeys("risk", c.RiskWeights,
		WeightCapacityRisk, WeightVolatilityRisk, WeightUtilizationRisk, WeightProgressRisk); err != nil {
		return err
	}
	if err := stats.ValidateWeights(c.RiskWeights); err != nil {
		return err
	}
	if c.Simulations <= 0 {
		return errors.NewConfigurationError(
			fmt.Sprintf("simulation count must be positive, got %d", c.Simulations), nil)
	}
	return nil
}

func validateKeys(table string, weights map[string]float64, keys ...string) error {
	if len(weights) != len(keys) {
		return errors.NewConfigurationError(
			fmt.Sprintf("%s weight table has %d entries, want %d", table, len(weights), len(keys)), nil)
	}
	for _, k := range keys {
		if _, ok := weights[k]; !ok {
			return errors.NewConfigurationError(
				fmt.Sprintf("%s weight table is missing %q", table, k), nil)
		}
	}
	return nil
}
