package predictive

import (
	"github.com/dollydang/sprint-portfolio-analytics/internal/errors"
	"github.com/dollydang/sprint-portfolio-analytics/internal/stats"
)

// forecastZ is the normal quantile for a 95% confidence interval.
const forecastZ = 1.96

// ForecastPoint is one projected sprint. Step counts forward from the last
// historical sprint, starting at 1.
type ForecastPoint struct {
	Step     int     `json:"step"`
	Expected float64 `json:"expected"`
	Lower    float64 `json:"lower"`
	Upper    float64 `json:"upper"`
}

// ForecastSeries is the linear velocity projection with its fit parameters,
// so callers can render the trend line alongside the intervals.
type ForecastSeries struct {
	Slope       float64         `json:"slope"`
	Intercept   float64         `json:"intercept"`
	ResidualStd float64         `json:"residual_std"`
	Points      []ForecastPoint `json:"points"`
}

// CapacityForecast projects velocity horizonSprints steps ahead with an
// ordinary-least-squares trend over sprint index. Each point carries a 95%
// interval from residual variance, floored at zero since negative velocity
// is meaningless. Requires at least MinForecastHistory points: two points
// always fit a line, four give it signal. Horizon defaults to 3.
func CapacityForecast(history []float64, horizonSprints int, cfg Config) (ForecastSeries, error) {
	if len(history) < MinForecastHistory {
		return ForecastSeries{}, errors.NewInsufficientHistoryError(
			"capacity forecast", MinForecastHistory, len(history))
	}
	if horizonSprints <= 0 {
		horizonSprints = 3
	}

	xs := make([]float64, len(history))
	for i := range xs {
		xs[i] = float64(i)
	}
	slope, intercept := stats.FitLine(xs, history)
	residual := stats.ResidualStdDev(xs, history, slope, intercept)

	points := make([]ForecastPoint, horizonSprints)
	for i := 0; i < horizonSprints; i++ {
		x := float64(len(history) + i)
		expected := slope*x + intercept
		margin := forecastZ * residual
		points[i] = ForecastPoint{
			Step:     i + 1,
			Expected: expected,
			Lower:    max0(expected - margin),
			Upper:    max0(expected + margin),
		}
	}

	return ForecastSeries{
		Slope:       slope,
		Intercept:   intercept,
		ResidualStd: residual,
		Points:      points,
	}, nil
}

func max0(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}
