package predictive

import (
	"sort"

	"github.com/dollydang/sprint-portfolio-analytics/internal/stats"
	"github.com/dollydang/sprint-portfolio-analytics/internal/types"
)

// RiskLevel classifies a 0-1 risk score.
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// riskLevelFor maps a score to its level: [0,0.3) low, [0.3,0.6) medium,
// above high.
func riskLevelFor(score float64) RiskLevel {
	switch {
	case score < 0.3:
		return RiskLow
	case score < 0.6:
		return RiskMedium
	default:
		return RiskHigh
	}
}

// Over-utilization is penalized twice as steeply as under-utilization:
// a stretched team misses targets faster than an idle one.
const (
	overUtilizationSlope  = 2.0
	underUtilizationSlope = 1.0
)

// TeamState carries the team-level aggregates risk scoring reads: where the
// team is in time, how fast it moves, and how stretched it is.
type TeamState struct {
	CurrentSprint int     `json:"current_sprint"`
	AvgVelocity   float64 `json:"avg_velocity"`
	VelocityCV    float64 `json:"velocity_cv"`
	Utilization   float64 `json:"utilization"`
}

// Risk is the composite 0-1 miss-likelihood for one initiative. Saturated
// marks the clamp case: the target sprint already passed with work
// incomplete, so the score is pinned to 1 regardless of factor magnitudes.
type Risk struct {
	InitiativeID string             `json:"initiative_id"`
	Name         string             `json:"name"`
	Score        float64            `json:"score"`
	Level        RiskLevel          `json:"level"`
	Saturated    bool               `json:"saturated"`
	Factors      map[string]float64 `json:"factors"`
}

// InitiativeRisk combines four normalized sub-scores with the configured
// weights. Config validation is assumed done at load.
func InitiativeRisk(init types.Initiative, ts TeamState, cfg Config) Risk {
	factors := map[string]float64{
		WeightCapacityRisk:    capacityRisk(init, ts),
		WeightVolatilityRisk:  stats.Clip01(ts.VelocityCV),
		WeightUtilizationRisk: utilizationRisk(ts.Utilization),
		WeightProgressRisk:    progressRisk(init, ts),
	}

	composite := make(stats.Composite, len(factors))
	for name, v := range factors {
		composite[name] = stats.Component{Value: v, Weight: cfg.RiskWeights[name]}
	}

	r := Risk{
		InitiativeID: init.ID,
		Name:         init.Name,
		Score:        stats.Clip01(composite.Score()),
		Factors:      factors,
	}

	if pastTargetIncomplete(init, ts) {
		r.Score = 1.0
		r.Saturated = true
	}
	r.Level = riskLevelFor(r.Score)
	return r
}

// AssessPortfolio scores every initiative still in play (backlog or
// active), highest risk first; ties order by initiative ID.
func AssessPortfolio(initiatives []types.Initiative, ts TeamState, cfg Config) []Risk {
	var out []Risk
	for _, init := range initiatives {
		if init.Status == types.InitiativeCompleted || init.Status == types.InitiativeDeprioritized {
			continue
		}
		out = append(out, InitiativeRisk(init, ts, cfg))
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].InitiativeID < out[j].InitiativeID
	})
	return out
}

// pastTargetIncomplete holds once the target sprint is strictly behind the
// team with work remaining. An initiative still inside its target sprint
// can close out; its factors carry the urgency instead of the clamp.
func pastTargetIncomplete(init types.Initiative, ts TeamState) bool {
	if ts.CurrentSprint <= init.TargetSprint {
		return false
	}
	return init.EstimatedPoints > 0 && init.CompletedPoints < init.EstimatedPoints
}

// capacityRisk compares the initiative's remaining points against the
// velocity-derived capacity left before the target sprint: a ratio at or
// above 1 is certain trouble, below it risk falls linearly.
func capacityRisk(init types.Initiative, ts TeamState) float64 {
	remaining := init.EstimatedPoints - init.CompletedPoints
	if remaining <= 0 {
		return 0
	}
	sprintsLeft := float64(init.TargetSprint - ts.CurrentSprint)
	if sprintsLeft <= 0 {
		return 1
	}
	available := ts.AvgVelocity * sprintsLeft
	if available <= 0 {
		return 1
	}
	return stats.Clip01(remaining / available)
}

// utilizationRisk grows in both directions away from the fair-share point
// 1.0, over-utilization steeper than under.
func utilizationRisk(u float64) float64 {
	if u >= 1 {
		return stats.Clip01((u - 1) * overUtilizationSlope)
	}
	return stats.Clip01((1 - u) * underUtilizationSlope)
}

// progressRisk measures the shortfall between a linear time-based progress
// baseline and actual delivered progress. Initiatives without a point
// estimate have no measurable shortfall.
func progressRisk(init types.Initiative, ts TeamState) float64 {
	if init.EstimatedPoints <= 0 {
		return 0
	}
	span := float64(init.TargetSprint - init.StartSprint)
	expected := 1.0
	if span > 0 {
		expected = stats.Clip01(float64(ts.CurrentSprint-init.StartSprint) / span)
	}
	actual := stats.Clip01(init.CompletedPoints / init.EstimatedPoints)
	if expected <= actual {
		return 0
	}
	return expected - actual
}
