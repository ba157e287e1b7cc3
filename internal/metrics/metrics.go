// Package metrics computes per-sprint and aggregate descriptive statistics
// from raw delivery records. Everything here is a pure function of its
// inputs; degenerate-but-valid inputs (zero commitments, zero estimates)
// produce defined zero or sentinel results rather than errors.
package metrics

import (
	"github.com/dollydang/sprint-portfolio-analytics/internal/stats"
	"github.com/dollydang/sprint-portfolio-analytics/internal/types"
)

// SprintMetrics holds the derived per-sprint figures, each pre-scaled to
// 0-100 so downstream composites can weight them directly. AccuracyKnown is
// false when no story in the sprint carried a tracked actual effort.
type SprintMetrics struct {
	SprintID           string  `json:"sprint_id"`
	Number             int     `json:"number"`
	Velocity           float64 `json:"velocity"`
	CompletionRate     float64 `json:"completion_rate"`
	EstimationAccuracy float64 `json:"estimation_accuracy"`
	AccuracyKnown      bool    `json:"accuracy_known"`
	BlockerImpact      float64 `json:"blocker_impact"`
}

// SprintMetricSet keys per-sprint metrics by sprint ID.
type SprintMetricSet map[string]SprintMetrics

// Compute builds the metric set for every sprint. Stories are matched to
// sprints by SprintID; sprints with no matching stories still get velocity,
// completion rate, and blocker impact.
func Compute(sprints []types.Sprint, stories []types.Story) SprintMetricSet {
	bySprint := make(map[string][]types.Story, len(sprints))
	for _, st := range stories {
		bySprint[st.SprintID] = append(bySprint[st.SprintID], st)
	}

	set := make(SprintMetricSet, len(sprints))
	for _, sp := range sprints {
		accuracy, known := EstimationAccuracy(bySprint[sp.ID])
		set[sp.ID] = SprintMetrics{
			SprintID:           sp.ID,
			Number:             sp.Number,
			Velocity:           sp.CompletedPoints,
			CompletionRate:     CompletionRate(sp),
			EstimationAccuracy: accuracy,
			AccuracyKnown:      known,
			BlockerImpact:      BlockerImpact(sp),
		}
	}
	return set
}

// Velocities extracts completed points in the given sprint order.
func Velocities(sprints []types.Sprint) []float64 {
	vs := make([]float64, len(sprints))
	for i, sp := range sprints {
		vs[i] = sp.CompletedPoints
	}
	return vs
}

// VelocityConsistency scores how stable completed points are across the
// trailing window (window <= 0 means all sprints): max(0, 1 - stdev/mean)
// scaled to 0-100. A zero mean or fewer than two sprints scores 0.
func VelocityConsistency(sprints []types.Sprint, window int) float64 {
	if len(sprints) < 2 {
		return 0
	}
	vs := Velocities(sprints)
	if window > 0 && window < len(vs) {
		vs = vs[len(vs)-window:]
	}
	if len(vs) < 2 {
		return 0
	}
	mean := stats.Mean(vs)
	if mean == 0 {
		return 0
	}
	return stats.Clip01(1-stats.StdDev(vs)/mean) * 100
}

// EstimationAccuracy measures 1 - mean(|estimate-actual|/estimate) over
// stories with both an estimate and a tracked actual effort, clamped to
// [0,1] and scaled to 0-100. The second return is false when no story
// qualifies; the numeric value is meaningless in that case.
func EstimationAccuracy(stories []types.Story) (float64, bool) {
	var errSum float64
	n := 0
	for _, st := range stories {
		if st.ActualEffort == nil || st.Estimate <= 0 {
			continue
		}
		diff := st.Estimate - *st.ActualEffort
		if diff < 0 {
			diff = -diff
		}
		errSum += diff / st.Estimate
		n++
	}
	if n == 0 {
		return 0, false
	}
	return stats.Clip01(1-errSum/float64(n)) * 100, true
}

// CompletionRate is completed over committed story count for the sprint, as
// a 0-100 percentage. A zero-commitment sprint is degenerate but valid and
// rates 0.
func CompletionRate(sp types.Sprint) float64 {
	if sp.CommittedStories == 0 {
		return 0
	}
	return float64(sp.CompletedStories) / float64(sp.CommittedStories) * 100
}

// BlockerImpact is the fraction of story-days NOT lost to blockers, scaled
// to 0-100. A sprint with no tracked story-days lost nothing and scores 100.
func BlockerImpact(sp types.Sprint) float64 {
	if sp.TotalStoryDays <= 0 {
		return 100
	}
	lost := sp.BlockedStoryDays / sp.TotalStoryDays
	if lost > 1 {
		lost = 1
	}
	return (1 - lost) * 100
}

// CapacityUtilization compares a member's mean delivered points against a
// fair-share baseline (mean team capacity divided by team size). 1.0 is
// exactly fair share; above is over-utilized, below under-utilized.
func CapacityUtilization(member types.TeamMember, sprints []types.Sprint, teamSize int) float64 {
	if teamSize <= 0 || len(sprints) == 0 {
		return 0
	}
	baseline := stats.Mean(capacities(sprints)) / float64(teamSize)
	if baseline == 0 {
		return 0
	}
	return stats.Mean(member.Delivered) / baseline
}

// TeamUtilization computes capacity utilization for every member, keyed by
// member ID.
func TeamUtilization(team []types.TeamMember, sprints []types.Sprint) map[string]float64 {
	out := make(map[string]float64, len(team))
	for _, m := range team {
		out[m.ID] = CapacityUtilization(m, sprints, len(team))
	}
	return out
}

func capacities(sprints []types.Sprint) []float64 {
	cs := make([]float64, len(sprints))
	for i, sp := range sprints {
		cs[i] = sp.PlannedCapacity
	}
	return cs
}
