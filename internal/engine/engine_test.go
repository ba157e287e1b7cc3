package engine

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/dollydang/sprint-portfolio-analytics/internal/errors"
	"github.com/dollydang/sprint-portfolio-analytics/internal/predictive"
	"github.com/dollydang/sprint-portfolio-analytics/internal/types"
)

func testDataset() types.Dataset {
	start := time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC)
	velocities := []float64{38, 42, 40, 41, 39, 43}

	sprints := make([]types.Sprint, len(velocities))
	for i, v := range velocities {
		sprints[i] = types.Sprint{
			ID:               fmt.Sprintf("sprint-%d", i+1),
			Number:           i + 1,
			StartDate:        start.AddDate(0, 0, 14*i),
			EndDate:          start.AddDate(0, 0, 14*i+13),
			PlannedCapacity:  50,
			CommittedPoints:  42,
			CompletedPoints:  v,
			CommittedStories: 10,
			CompletedStories: 9,
			BlockedStoryDays: 4,
			TotalStoryDays:   60,
		}
	}

	actual := 5.0
	stories := []types.Story{
		{ID: "st-1", SprintID: "sprint-6", AssigneeID: "m1", Estimate: 5, ActualEffort: &actual,
			Status: types.StatusDone, Type: types.TypeFeature, CycleTimeDays: 3},
		{ID: "st-2", SprintID: "sprint-6", AssigneeID: "m2", Estimate: 8,
			Status: types.StatusDone, Type: types.TypeBug, CycleTimeDays: 5},
		{ID: "st-3", SprintID: "sprint-5", AssigneeID: "m1", Estimate: 3,
			Status: types.StatusInProgress, Type: types.TypeTechDebt, CycleTimeDays: 2},
	}

	initiatives := []types.Initiative{
		{ID: "init-1", Name: "Self-serve onboarding", Impact: 9, Effort: 3,
			Category: types.CategoryRevenueGrowth, Status: types.InitiativeActive,
			EstimatedPoints: 120, CompletedPoints: 70, StartSprint: 1, TargetSprint: 10},
		{ID: "init-2", Name: "Billing rewrite", Impact: 6, Effort: 8,
			Category: types.CategoryCostReduction, Status: types.InitiativeBacklog,
			EstimatedPoints: 200, CompletedPoints: 0, StartSprint: 7, TargetSprint: 16},
		{ID: "init-3", Name: "Docs refresh", Impact: 3, Effort: 7,
			Category: types.CategoryProcessImprovement, Status: types.InitiativeActive,
			EstimatedPoints: 40, CompletedPoints: 10, StartSprint: 2, TargetSprint: 8},
	}

	team := []types.TeamMember{
		{ID: "m1", Name: "Avery", Role: "engineer", CapacityPerSprint: 25,
			Delivered: []float64{19, 21, 20, 21, 19, 22}},
		{ID: "m2", Name: "Jordan", Role: "engineer", CapacityPerSprint: 25,
			Delivered: []float64{19, 21, 20, 20, 20, 21}},
	}

	return types.Dataset{Sprints: sprints, Stories: stories, Initiatives: initiatives, Team: team}
}

func seededEngine(t *testing.T, seed int64) *Engine {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Predictive.Seed = seed
	eng, err := New(cfg)
	require.NoError(t, err)
	return eng
}

func TestNewRejectsBadConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Predictive.HealthWeights[predictive.WeightVelocityConsistency] = 0.9

	_, err := New(cfg)
	require.Error(t, err)
	assert.True(t, apperrors.IsConfiguration(err))
}

func TestAnalyze(t *testing.T) {
	eng := seededEngine(t, 42)
	report, err := eng.Analyze(testDataset())
	require.NoError(t, err)

	assert.Equal(t, "sprint-6", report.CurrentSprint.ID)
	assert.Len(t, report.Metrics, 6)

	// stable fixture velocities keep every score comfortably high
	assert.Greater(t, report.Consistency, 90.0)
	assert.Greater(t, report.Predictability, 0.9)
	assert.NotEqual(t, predictive.ZoneRed, report.Health.Zone)

	require.Len(t, report.Ranked, 3)
	assert.Equal(t, "init-1", report.Ranked[0].Initiative.ID)

	require.Len(t, report.Risks, 3, "every non-terminal initiative gets a risk score")
	assert.Equal(t, 42.0, report.Commitment.TargetPoints)
	assert.Equal(t, int64(42), report.Commitment.Seed)

	require.Len(t, report.Forecast.Points, 3)
	for _, p := range report.Forecast.Points {
		assert.GreaterOrEqual(t, p.Lower, 0.0)
		assert.LessOrEqual(t, p.Lower, p.Upper)
	}

	assert.Greater(t, report.PortfolioHealth, 0.0)
	assert.Equal(t, 0.0, report.SuccessRate, "nothing in the fixture is completed")
	assert.NotZero(t, report.GeneratedAt)
	assert.Len(t, report.QualityTrend, 6)
	assert.Len(t, report.Utilization, 2)
}

func TestAnalyzeSeededRepeatability(t *testing.T) {
	ds := testDataset()

	first, err := seededEngine(t, 7).Analyze(ds)
	require.NoError(t, err)
	second, err := seededEngine(t, 7).Analyze(ds)
	require.NoError(t, err)

	assert.Equal(t, first.Commitment, second.Commitment)
	assert.Equal(t, first.Ranked, second.Ranked)
	assert.Equal(t, first.Risks, second.Risks)
	assert.Equal(t, first.Recommendations, second.Recommendations)
}

func TestAnalyzeValidation(t *testing.T) {
	eng := seededEngine(t, 1)

	t.Run("empty dataset", func(t *testing.T) {
		_, err := eng.Analyze(types.Dataset{})
		require.Error(t, err)
	})

	t.Run("non-increasing sprint numbers", func(t *testing.T) {
		ds := testDataset()
		ds.Sprints[2].Number = ds.Sprints[1].Number
		_, err := eng.Analyze(ds)
		require.Error(t, err)
	})

	t.Run("unknown story status", func(t *testing.T) {
		ds := testDataset()
		ds.Stories[0].Status = "paused"
		_, err := eng.Analyze(ds)
		require.Error(t, err)
	})

	t.Run("unknown story type", func(t *testing.T) {
		ds := testDataset()
		ds.Stories[0].Type = "chore"
		_, err := eng.Analyze(ds)
		require.Error(t, err)
	})
}

func TestAnalyzeInsufficientHistory(t *testing.T) {
	eng := seededEngine(t, 1)
	ds := testDataset()
	ds.Sprints = ds.Sprints[:2] // below the Monte Carlo minimum

	_, err := eng.Analyze(ds)
	require.Error(t, err)
	assert.True(t, apperrors.IsInsufficientHistory(err))
}

func TestAnalyzeDoesNotMutateDataset(t *testing.T) {
	eng := seededEngine(t, 1)
	ds := testDataset()

	_, err := eng.Analyze(ds)
	require.NoError(t, err)

	fresh := testDataset()
	assert.Equal(t, fresh.Sprints, ds.Sprints)
	assert.Equal(t, fresh.Initiatives, ds.Initiatives)
	assert.Equal(t, fresh.Stories, ds.Stories)
}
