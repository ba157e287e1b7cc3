// Package prioritization scores and buckets initiatives by impact, effort,
// and strategic weight, and produces the deterministic portfolio ranking.
package prioritization

import (
	"fmt"
	"sort"

	"github.com/dollydang/sprint-portfolio-analytics/internal/errors"
	"github.com/dollydang/sprint-portfolio-analytics/internal/stats"
	"github.com/dollydang/sprint-portfolio-analytics/internal/types"
)

// ThresholdMode selects how quadrant cutoffs are derived.
type ThresholdMode string

const (
	// ThresholdMedian derives impact and effort cutoffs from the medians of
	// the initiative set being classified.
	ThresholdMedian ThresholdMode = "median"
	// ThresholdFixed uses the absolute cutoffs in the config.
	ThresholdFixed ThresholdMode = "fixed"
)

// Quadrant is one of the four impact/effort prioritization buckets.
type Quadrant string

const (
	QuadrantQuickWin     Quadrant = "quick_win"
	QuadrantMajorProject Quadrant = "major_project"
	QuadrantFillIn       Quadrant = "fill_in"
	QuadrantTimeSink     Quadrant = "time_sink"
)

// Config holds prioritization parameters. Strategic weights form a closed
// table: scoring an initiative with a category outside it is a
// configuration error, never a silent default.
type Config struct {
	StrategicWeights map[types.StrategicCategory]float64
	// EffortEpsilon floors the effort divisor so zero-effort initiatives
	// score high but bounded instead of dividing by zero.
	EffortEpsilon float64
	// MaxPriority caps the score a near-zero-effort initiative can reach.
	MaxPriority float64

	ThresholdMode        ThresholdMode
	FixedImpactThreshold float64
	FixedEffortThreshold float64
}

// DefaultConfig returns the standard strategic weight table and
// median-based quadrant thresholds.
func DefaultConfig() Config {
	return Config{
		StrategicWeights: map[types.StrategicCategory]float64{
			types.CategoryRevenueGrowth:       1.5,
			types.CategoryCustomerExperience:  1.3,
			types.CategoryCostReduction:       1.2,
			types.CategoryTechnicalExcellence: 1.1,
			types.CategoryProcessImprovement:  1.0,
		},
		EffortEpsilon: 0.1,
		MaxPriority:   100,
		ThresholdMode: ThresholdMedian,
	}
}

// Validate checks the config for usable values.
func (c Config) Validate() error {
	if len(c.StrategicWeights) == 0 {
		return errors.NewConfigurationError("strategic weight table is empty", nil)
	}
	for cat, w := range c.StrategicWeights {
		if !cat.IsValid() {
			return errors.NewConfigurationError(
				fmt.Sprintf("strategic weight table contains unknown category %q", cat), nil)
		}
		if w <= 0 {
			return errors.NewConfigurationError(
				fmt.Sprintf("strategic weight for %q must be positive, got %v", cat, w), nil)
		}
	}
	if c.EffortEpsilon <= 0 {
		return errors.NewConfigurationError("effort epsilon must be positive", nil)
	}
	if c.MaxPriority <= 0 {
		return errors.NewConfigurationError("max priority must be positive", nil)
	}
	if c.ThresholdMode != ThresholdMedian && c.ThresholdMode != ThresholdFixed {
		return errors.NewConfigurationError(
			fmt.Sprintf("unknown threshold mode %q", c.ThresholdMode), nil)
	}
	return nil
}

// Score computes (impact / max(effort, epsilon)) * strategicWeight, capped
// at MaxPriority. An unrecognized strategic category fails.
func Score(init types.Initiative, cfg Config) (float64, error) {
	weight, ok := cfg.StrategicWeights[init.Category]
	if !ok {
		return 0, errors.NewConfigurationError(
			fmt.Sprintf("no strategic weight for category %q", init.Category), nil)
	}
	effort := init.Effort
	if effort < cfg.EffortEpsilon {
		effort = cfg.EffortEpsilon
	}
	score := init.Impact / effort * weight
	if score > cfg.MaxPriority {
		score = cfg.MaxPriority
	}
	return score, nil
}

// Thresholds are the impact/effort cutoffs used for quadrant bucketing.
type Thresholds struct {
	Impact float64 `json:"impact"`
	Effort float64 `json:"effort"`
}

// ComputeThresholds resolves the quadrant cutoffs for the given set per the
// configured mode.
func ComputeThresholds(initiatives []types.Initiative, cfg Config) Thresholds {
	if cfg.ThresholdMode == ThresholdFixed {
		return Thresholds{Impact: cfg.FixedImpactThreshold, Effort: cfg.FixedEffortThreshold}
	}
	impacts := make([]float64, len(initiatives))
	efforts := make([]float64, len(initiatives))
	for i, init := range initiatives {
		impacts[i] = init.Impact
		efforts[i] = init.Effort
	}
	return Thresholds{Impact: stats.Median(impacts), Effort: stats.Median(efforts)}
}

// ClassifyOne buckets a single initiative against resolved thresholds.
// Impact at or above the cutoff counts as high; effort strictly above the
// cutoff counts as high.
func ClassifyOne(init types.Initiative, th Thresholds) Quadrant {
	highImpact := init.Impact >= th.Impact
	highEffort := init.Effort > th.Effort
	switch {
	case highImpact && !highEffort:
		return QuadrantQuickWin
	case highImpact && highEffort:
		return QuadrantMajorProject
	case !highImpact && !highEffort:
		return QuadrantFillIn
	default:
		return QuadrantTimeSink
	}
}

// Classify buckets every initiative, keyed by initiative ID.
func Classify(initiatives []types.Initiative, cfg Config) map[string]Quadrant {
	th := ComputeThresholds(initiatives, cfg)
	out := make(map[string]Quadrant, len(initiatives))
	for _, init := range initiatives {
		out[init.ID] = ClassifyOne(init, th)
	}
	return out
}

// Ranked pairs an initiative with its derived priority score and quadrant.
type Ranked struct {
	Initiative types.Initiative `json:"initiative"`
	Score      float64          `json:"score"`
	Quadrant   Quadrant         `json:"quadrant"`
}

// Rank produces the portfolio's total priority order: score descending,
// ties broken by impact descending, then initiative ID ascending so
// identical inputs always rank identically. The input slice is not
// reordered.
func Rank(initiatives []types.Initiative, cfg Config) ([]Ranked, error) {
	th := ComputeThresholds(initiatives, cfg)
	ranked := make([]Ranked, len(initiatives))
	for i, init := range initiatives {
		score, err := Score(init, cfg)
		if err != nil {
			return nil, err
		}
		ranked[i] = Ranked{Initiative: init, Score: score, Quadrant: ClassifyOne(init, th)}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		if ranked[i].Initiative.Impact != ranked[j].Initiative.Impact {
			return ranked[i].Initiative.Impact > ranked[j].Initiative.Impact
		}
		return ranked[i].Initiative.ID < ranked[j].Initiative.ID
	})
	return ranked, nil
}
