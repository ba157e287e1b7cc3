package predictive

import (
	"github.com/dollydang/sprint-portfolio-analytics/internal/metrics"
	"github.com/dollydang/sprint-portfolio-analytics/internal/stats"
)

// Zone classifies a health score.
type Zone string

const (
	ZoneGreen  Zone = "green"
	ZoneYellow Zone = "yellow"
	ZoneRed    Zone = "red"
)

// zoneFor maps a 0-100 score to its zone: [80,100] green, [60,80) yellow,
// below red.
func zoneFor(score float64) Zone {
	switch {
	case score >= 80:
		return ZoneGreen
	case score >= 60:
		return ZoneYellow
	default:
		return ZoneRed
	}
}

// Health is the composite 0-100 delivery-quality score for one sprint.
type Health struct {
	SprintID  string             `json:"sprint_id"`
	Score     float64            `json:"score"`
	Zone      Zone               `json:"zone"`
	Breakdown map[string]float64 `json:"breakdown"`
}

// SprintHealth combines the sprint's pre-scaled metrics with the
// sequence-level velocity consistency using the configured weight table.
// When the sprint has no tracked estimation accuracy, its weight is
// redistributed proportionally over the remaining components so the score
// stays a 0-100 composite instead of silently scoring the gap as zero.
// Config validation is assumed done at load; see Config.Validate.
func SprintHealth(m metrics.SprintMetrics, velocityConsistency float64, cfg Config) Health {
	values := map[string]float64{
		WeightVelocityConsistency: velocityConsistency,
		WeightEstimationAccuracy:  m.EstimationAccuracy,
		WeightCompletionRate:      m.CompletionRate,
		WeightBlockerImpact:       m.BlockerImpact,
	}

	weights := cfg.HealthWeights
	if !m.AccuracyKnown {
		weights = redistribute(weights, WeightEstimationAccuracy)
		delete(values, WeightEstimationAccuracy)
	}

	composite := make(stats.Composite, len(values))
	for name, v := range values {
		composite[name] = stats.Component{Value: v, Weight: weights[name]}
	}

	score := stats.Clip(composite.Score(), 0, 100)
	return Health{
		SprintID:  m.SprintID,
		Score:     score,
		Zone:      zoneFor(score),
		Breakdown: composite.Breakdown(),
	}
}

// redistribute removes one component's weight and scales the rest back up
// to a unit sum.
func redistribute(weights map[string]float64, drop string) map[string]float64 {
	remaining := 1 - weights[drop]
	if remaining <= 0 {
		return weights
	}
	out := make(map[string]float64, len(weights)-1)
	for name, w := range weights {
		if name == drop {
			continue
		}
		out[name] = w / remaining
	}
	return out
}
