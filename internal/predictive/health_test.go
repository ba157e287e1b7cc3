package predictive

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dollydang/sprint-portfolio-analytics/internal/metrics"
)

func TestZoneFor(t *testing.T) {
	tests := []struct {
		score    float64
		expected Zone
	}{
		{100, ZoneGreen},
		{80, ZoneGreen},
		{79.99, ZoneYellow},
		{60, ZoneYellow},
		{59.99, ZoneRed},
		{0, ZoneRed},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, zoneFor(tt.score), "score %v", tt.score)
	}
}

func TestSprintHealth(t *testing.T) {
	cfg := DefaultConfig()

	t.Run("all components equal score that value", func(t *testing.T) {
		m := metrics.SprintMetrics{
			SprintID:           "s1",
			CompletionRate:     75,
			EstimationAccuracy: 75,
			AccuracyKnown:      true,
			BlockerImpact:      75,
		}
		h := SprintHealth(m, 75, cfg)
		assert.InDelta(t, 75.0, h.Score, 1e-9)
		assert.Equal(t, ZoneYellow, h.Zone)
	})

	t.Run("weighted blend", func(t *testing.T) {
		m := metrics.SprintMetrics{
			SprintID:           "s1",
			CompletionRate:     60,
			EstimationAccuracy: 80,
			AccuracyKnown:      true,
			BlockerImpact:      40,
		}
		// 0.30*100 + 0.25*80 + 0.25*60 + 0.20*40 = 73
		h := SprintHealth(m, 100, cfg)
		assert.InDelta(t, 73.0, h.Score, 1e-9)
		assert.Equal(t, ZoneYellow, h.Zone)
	})

	t.Run("perfect sprint is green", func(t *testing.T) {
		m := metrics.SprintMetrics{
			SprintID:           "s1",
			CompletionRate:     100,
			EstimationAccuracy: 100,
			AccuracyKnown:      true,
			BlockerImpact:      100,
		}
		h := SprintHealth(m, 100, cfg)
		assert.InDelta(t, 100.0, h.Score, 1e-9)
		assert.Equal(t, ZoneGreen, h.Zone)
	})

	t.Run("breakdown carries every component", func(t *testing.T) {
		m := metrics.SprintMetrics{
			SprintID:           "s1",
			CompletionRate:     90,
			EstimationAccuracy: 85,
			AccuracyKnown:      true,
			BlockerImpact:      95,
		}
		h := SprintHealth(m, 88, cfg)
		require.Len(t, h.Breakdown, 4)
		assert.InDelta(t, 88.0, h.Breakdown[WeightVelocityConsistency], 1e-12)
		assert.InDelta(t, 85.0, h.Breakdown[WeightEstimationAccuracy], 1e-12)
	})
}

func TestSprintHealthUnknownAccuracy(t *testing.T) {
	cfg := DefaultConfig()
	m := metrics.SprintMetrics{
		SprintID:       "s1",
		CompletionRate: 80,
		AccuracyKnown:  false,
		BlockerImpact:  80,
	}

	h := SprintHealth(m, 80, cfg)

	// The accuracy weight redistributes over the rest, so uniform remaining
	// components still score their common value rather than being dragged
	// toward zero.
	assert.InDelta(t, 80.0, h.Score, 1e-9)
	require.Len(t, h.Breakdown, 3)
	_, present := h.Breakdown[WeightEstimationAccuracy]
	assert.False(t, present, "untracked accuracy must not appear in the breakdown")
}

func TestSprintHealthScoreBounded(t *testing.T) {
	cfg := DefaultConfig()
	m := metrics.SprintMetrics{
		SprintID:           "s1",
		CompletionRate:     150, // over-delivery pushes past 100 pre-clip
		EstimationAccuracy: 100,
		AccuracyKnown:      true,
		BlockerImpact:      100,
	}
	h := SprintHealth(m, 100, cfg)
	assert.LessOrEqual(t, h.Score, 100.0)
	assert.GreaterOrEqual(t, h.Score, 0.0)
}
