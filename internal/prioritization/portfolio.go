package prioritization

import (
	"github.com/dollydang/sprint-portfolio-analytics/internal/stats"
	"github.com/dollydang/sprint-portfolio-analytics/internal/types"
)

// QuickWins returns the high-impact, low-effort initiatives in rank order.
func QuickWins(ranked []Ranked) []Ranked {
	return filterQuadrant(ranked, QuadrantQuickWin)
}

// TimeSinks returns the low-impact, high-effort initiatives in rank order.
// These are the deprioritization candidates.
func TimeSinks(ranked []Ranked) []Ranked {
	return filterQuadrant(ranked, QuadrantTimeSink)
}

func filterQuadrant(ranked []Ranked, q Quadrant) []Ranked {
	var out []Ranked
	for _, r := range ranked {
		if r.Quadrant == q {
			out = append(out, r)
		}
	}
	return out
}

// Composition counts initiatives per quadrant.
func Composition(ranked []Ranked) map[Quadrant]int {
	out := make(map[Quadrant]int, 4)
	for _, r := range ranked {
		out[r.Quadrant]++
	}
	return out
}

// portfolioHealthWeights blend delivery progress with quadrant balance.
// The table is fixed, not caller-supplied, and must sum to one for
// PortfolioHealth to stay on the 0-100 scale.
var portfolioHealthWeights = map[string]float64{
	"progress": 0.6,
	"balance":  0.4,
}

// PortfolioHealth scores the initiative portfolio 0-100: how far along its
// estimated points are, blended with how little of it sits in the time-sink
// quadrant. An empty portfolio scores 0.
func PortfolioHealth(ranked []Ranked) float64 {
	if len(ranked) == 0 {
		return 0
	}

	var estimated, completed float64
	sinks := 0
	for _, r := range ranked {
		estimated += r.Initiative.EstimatedPoints
		completed += r.Initiative.CompletedPoints
		if r.Quadrant == QuadrantTimeSink {
			sinks++
		}
	}

	progress := 0.0
	if estimated > 0 {
		progress = stats.Clip01(completed / estimated)
	}
	balance := 1 - float64(sinks)/float64(len(ranked))

	composite := stats.Composite{
		"progress": {Value: progress, Weight: portfolioHealthWeights["progress"]},
		"balance":  {Value: balance, Weight: portfolioHealthWeights["balance"]},
	}
	return composite.Score() * 100
}

// SuccessRate is the fraction of initiatives already completed, 0-100.
func SuccessRate(initiatives []types.Initiative) float64 {
	if len(initiatives) == 0 {
		return 0
	}
	done := 0
	for _, init := range initiatives {
		if init.Status == types.InitiativeCompleted {
			done++
		}
	}
	return float64(done) / float64(len(initiatives)) * 100
}
