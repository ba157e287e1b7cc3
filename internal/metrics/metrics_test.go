package metrics

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dollydang/sprint-portfolio-analytics/internal/types"
)

func sprintsWithVelocities(velocities ...float64) []types.Sprint {
	sprints := make([]types.Sprint, len(velocities))
	for i, v := range velocities {
		sprints[i] = types.Sprint{
			ID:              fmt.Sprintf("sprint-%d", i+1),
			Number:          i + 1,
			PlannedCapacity: 50,
			CompletedPoints: v,
		}
	}
	return sprints
}

func floatPtr(v float64) *float64 { return &v }

func TestVelocityConsistency(t *testing.T) {
	tests := []struct {
		name       string
		velocities []float64
		window     int
		check      func(t *testing.T, got float64)
	}{
		{
			name:       "identical non-zero velocities score exactly 100",
			velocities: []float64{40, 40, 40, 40},
			check: func(t *testing.T, got float64) {
				assert.Equal(t, 100.0, got)
			},
		},
		{
			name:       "stable velocities score above 90",
			velocities: []float64{38, 42, 40, 41},
			check: func(t *testing.T, got float64) {
				assert.Greater(t, got, 90.0)
				assert.Less(t, got, 100.0, "only identical velocities reach 100")
			},
		},
		{
			name:       "zero mean scores 0",
			velocities: []float64{0, 0, 0},
			check: func(t *testing.T, got float64) {
				assert.Equal(t, 0.0, got)
			},
		},
		{
			name:       "wildly varying velocities score low",
			velocities: []float64{5, 80, 10, 90},
			check: func(t *testing.T, got float64) {
				assert.Less(t, got, 50.0)
			},
		},
		{
			name:       "single sprint scores 0",
			velocities: []float64{40},
			check: func(t *testing.T, got float64) {
				assert.Equal(t, 0.0, got)
			},
		},
		{
			name:       "trailing window ignores early volatility",
			velocities: []float64{5, 90, 40, 40, 40},
			window:     3,
			check: func(t *testing.T, got float64) {
				assert.Equal(t, 100.0, got)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := VelocityConsistency(sprintsWithVelocities(tt.velocities...), tt.window)
			assert.GreaterOrEqual(t, got, 0.0)
			assert.LessOrEqual(t, got, 100.0)
			tt.check(t, got)
		})
	}
}

func TestEstimationAccuracy(t *testing.T) {
	tests := []struct {
		name      string
		stories   []types.Story
		expected  float64
		wantKnown bool
	}{
		{
			name:      "no stories is a sentinel",
			stories:   nil,
			wantKnown: false,
		},
		{
			name: "no tracked actuals is a sentinel",
			stories: []types.Story{
				{ID: "s1", Estimate: 5},
				{ID: "s2", Estimate: 8},
			},
			wantKnown: false,
		},
		{
			name: "perfect estimates score 100",
			stories: []types.Story{
				{ID: "s1", Estimate: 5, ActualEffort: floatPtr(5)},
				{ID: "s2", Estimate: 8, ActualEffort: floatPtr(8)},
			},
			expected:  100,
			wantKnown: true,
		},
		{
			name: "fifty percent overrun scores 50",
			stories: []types.Story{
				{ID: "s1", Estimate: 10, ActualEffort: floatPtr(15)},
			},
			expected:  50,
			wantKnown: true,
		},
		{
			name: "zero estimate stories are excluded",
			stories: []types.Story{
				{ID: "s1", Estimate: 0, ActualEffort: floatPtr(3)},
				{ID: "s2", Estimate: 10, ActualEffort: floatPtr(10)},
			},
			expected:  100,
			wantKnown: true,
		},
		{
			name: "extreme miss clamps to 0",
			stories: []types.Story{
				{ID: "s1", Estimate: 1, ActualEffort: floatPtr(10)},
			},
			expected:  0,
			wantKnown: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, known := EstimationAccuracy(tt.stories)
			require.Equal(t, tt.wantKnown, known)
			if known {
				assert.InDelta(t, tt.expected, got, 1e-12)
			}
		})
	}
}

func TestCompletionRate(t *testing.T) {
	tests := []struct {
		name     string
		sprint   types.Sprint
		expected float64
	}{
		{
			name:     "zero commitments rate 0, never panic",
			sprint:   types.Sprint{CommittedStories: 0, CompletedStories: 0},
			expected: 0,
		},
		{
			name:     "partial completion",
			sprint:   types.Sprint{CommittedStories: 10, CompletedStories: 8},
			expected: 80,
		},
		{
			name:     "over-delivery exceeds 100",
			sprint:   types.Sprint{CommittedStories: 10, CompletedStories: 12},
			expected: 120,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, CompletionRate(tt.sprint), 1e-12)
		})
	}
}

func TestBlockerImpact(t *testing.T) {
	tests := []struct {
		name     string
		sprint   types.Sprint
		expected float64
	}{
		{
			name:     "no story days tracked scores 100",
			sprint:   types.Sprint{TotalStoryDays: 0},
			expected: 100,
		},
		{
			name:     "ten percent blocked scores 90",
			sprint:   types.Sprint{BlockedStoryDays: 5, TotalStoryDays: 50},
			expected: 90,
		},
		{
			name:     "blocked beyond total saturates at 0",
			sprint:   types.Sprint{BlockedStoryDays: 80, TotalStoryDays: 50},
			expected: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, BlockerImpact(tt.sprint), 1e-12)
		})
	}
}

func TestCapacityUtilization(t *testing.T) {
	sprints := sprintsWithVelocities(40, 40, 40) // planned capacity 50 each

	tests := []struct {
		name     string
		member   types.TeamMember
		teamSize int
		expected float64
	}{
		{
			name:     "fair share delivery is exactly 1.0",
			member:   types.TeamMember{ID: "m1", Delivered: []float64{10, 10, 10}},
			teamSize: 5,
			expected: 1.0,
		},
		{
			name:     "over-delivery exceeds 1.0",
			member:   types.TeamMember{ID: "m2", Delivered: []float64{15, 15, 15}},
			teamSize: 5,
			expected: 1.5,
		},
		{
			name:     "under-delivery sits below 1.0",
			member:   types.TeamMember{ID: "m3", Delivered: []float64{5, 5, 5}},
			teamSize: 5,
			expected: 0.5,
		},
		{
			name:     "zero team size returns 0",
			member:   types.TeamMember{ID: "m4", Delivered: []float64{10}},
			teamSize: 0,
			expected: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CapacityUtilization(tt.member, sprints, tt.teamSize)
			assert.InDelta(t, tt.expected, got, 1e-12)
		})
	}
}

func TestTeamUtilization(t *testing.T) {
	sprints := sprintsWithVelocities(40, 40)
	team := []types.TeamMember{
		{ID: "m1", Delivered: []float64{25, 25}},
		{ID: "m2", Delivered: []float64{25, 25}},
	}

	got := TeamUtilization(team, sprints)
	require.Len(t, got, 2)
	// baseline is 50/2 = 25 per member
	assert.InDelta(t, 1.0, got["m1"], 1e-12)
	assert.InDelta(t, 1.0, got["m2"], 1e-12)
}

func TestCompute(t *testing.T) {
	sprints := []types.Sprint{
		{
			ID: "s1", Number: 1, CompletedPoints: 40,
			CommittedStories: 10, CompletedStories: 8,
			BlockedStoryDays: 5, TotalStoryDays: 50,
		},
		{
			ID: "s2", Number: 2, CompletedPoints: 42,
			CommittedStories: 10, CompletedStories: 10,
		},
	}
	stories := []types.Story{
		{ID: "st1", SprintID: "s1", Estimate: 10, ActualEffort: floatPtr(10), Status: types.StatusDone},
		{ID: "st2", SprintID: "s2", Estimate: 8, Status: types.StatusDone},
	}

	set := Compute(sprints, stories)
	require.Len(t, set, 2)

	s1 := set["s1"]
	assert.Equal(t, 40.0, s1.Velocity)
	assert.InDelta(t, 80.0, s1.CompletionRate, 1e-12)
	assert.InDelta(t, 90.0, s1.BlockerImpact, 1e-12)
	assert.True(t, s1.AccuracyKnown)
	assert.InDelta(t, 100.0, s1.EstimationAccuracy, 1e-12)

	s2 := set["s2"]
	assert.Equal(t, 42.0, s2.Velocity)
	assert.False(t, s2.AccuracyKnown, "sprint without tracked actuals should be a sentinel")
	assert.InDelta(t, 100.0, s2.BlockerImpact, 1e-12)
}
