package metrics

import (
	"github.com/dollydang/sprint-portfolio-analytics/internal/stats"
	"github.com/dollydang/sprint-portfolio-analytics/internal/types"
)

// TrendDirection indicates where velocity is heading over the observed
// sprints.
type TrendDirection string

const (
	TrendImproving TrendDirection = "improving"
	TrendDeclining TrendDirection = "declining"
	TrendStable    TrendDirection = "stable"
)

// trendband is the percent change inside which velocity counts as stable.
const trendBand = 5.0

// VelocityTrend compares early velocity against recent velocity.
type VelocityTrend struct {
	EarlyMean      float64        `json:"early_mean"`
	LateMean       float64        `json:"late_mean"`
	ImprovementPct float64        `json:"improvement_pct"`
	Direction      TrendDirection `json:"direction"`
}

// Trend measures velocity improvement from the first three sprints to the
// last three (shorter histories use what exists, split in half).
func Trend(sprints []types.Sprint) VelocityTrend {
	vs := Velocities(sprints)
	if len(vs) < 2 {
		return VelocityTrend{Direction: TrendStable}
	}
	window := 3
	if len(vs) < 2*window {
		window = len(vs) / 2
	}
	early := stats.Mean(vs[:window])
	late := stats.Mean(vs[len(vs)-window:])

	t := VelocityTrend{EarlyMean: early, LateMean: late, Direction: TrendStable}
	if early != 0 {
		t.ImprovementPct = (late - early) / early * 100
	}
	switch {
	case t.ImprovementPct > trendBand:
		t.Direction = TrendImproving
	case t.ImprovementPct < -trendBand:
		t.Direction = TrendDeclining
	}
	return t
}

// RollingVelocity returns the trailing-window moving average of completed
// points, one value per sprint. Early sprints average over what exists.
func RollingVelocity(sprints []types.Sprint, window int) []float64 {
	if window <= 0 {
		window = 3
	}
	vs := Velocities(sprints)
	out := make([]float64, len(vs))
	for i := range vs {
		lo := i - window + 1
		if lo < 0 {
			lo = 0
		}
		out[i] = stats.Mean(vs[lo : i+1])
	}
	return out
}

// Predictability is 1 minus the coefficient of variation of velocity,
// clipped to [0,1]. A team delivering the same points every sprint scores 1.
func Predictability(sprints []types.Sprint) float64 {
	if len(sprints) < 2 {
		return 0
	}
	return stats.Clip01(1 - stats.CoefVariation(Velocities(sprints)))
}

// CycleTimeStats summarizes cycle time over completed stories.
type CycleTimeStats struct {
	Mean    float64 `json:"mean"`
	Median  float64 `json:"median"`
	P90     float64 `json:"p90"`
	Samples int     `json:"samples"`
}

// CycleTime summarizes days-to-done over completed stories. Zero samples
// yields a zero-valued summary.
func CycleTime(stories []types.Story) CycleTimeStats {
	var days []float64
	for _, st := range stories {
		if st.Status == types.StatusDone {
			days = append(days, st.CycleTimeDays)
		}
	}
	if len(days) == 0 {
		return CycleTimeStats{}
	}
	return CycleTimeStats{
		Mean:    stats.Mean(days),
		Median:  stats.Median(days),
		P90:     stats.Percentile(days, 90),
		Samples: len(days),
	}
}

// StoryTypeDistribution counts stories per type per sprint, keyed by sprint
// ID.
func StoryTypeDistribution(stories []types.Story) map[string]map[types.StoryType]int {
	out := make(map[string]map[types.StoryType]int)
	for _, st := range stories {
		if out[st.SprintID] == nil {
			out[st.SprintID] = make(map[types.StoryType]int)
		}
		out[st.SprintID][st.Type]++
	}
	return out
}

// TeamContribution returns each member's share of all completed points,
// keyed by member ID. Shares sum to 1 when any points were completed.
func TeamContribution(stories []types.Story, team []types.TeamMember) map[string]float64 {
	points := make(map[string]float64, len(team))
	total := 0.0
	for _, st := range stories {
		if st.Status != types.StatusDone {
			continue
		}
		points[st.AssigneeID] += st.Estimate
		total += st.Estimate
	}

	out := make(map[string]float64, len(team))
	for _, m := range team {
		if total == 0 {
			out[m.ID] = 0
			continue
		}
		out[m.ID] = points[m.ID] / total
	}
	return out
}

// QualityTrend returns the bug share of each sprint's stories, in the given
// sprint order. Sprints with no stories score 0.
func QualityTrend(sprints []types.Sprint, stories []types.Story) []float64 {
	counts := make(map[string]int)
	bugs := make(map[string]int)
	for _, st := range stories {
		counts[st.SprintID]++
		if st.Type == types.TypeBug {
			bugs[st.SprintID]++
		}
	}

	out := make([]float64, len(sprints))
	for i, sp := range sprints {
		if counts[sp.ID] == 0 {
			continue
		}
		out[i] = float64(bugs[sp.ID]) / float64(counts[sp.ID])
	}
	return out
}
