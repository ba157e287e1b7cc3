package predictive

import (
	"math/rand"
	"time"

	"github.com/dollydang/sprint-portfolio-analytics/internal/errors"
	"github.com/dollydang/sprint-portfolio-analytics/internal/stats"
)

// SampleStats summarizes the realized bootstrap sample set, exposed so
// callers can sanity-check the probability against the distribution it came
// from.
type SampleStats struct {
	Mean float64 `json:"mean"`
	P10  float64 `json:"p10"`
	P50  float64 `json:"p50"`
	P90  float64 `json:"p90"`
}

// MonteCarloResult is the outcome of one simulation run. Seed is the seed
// actually used, so a wall-clock-seeded run can still be replayed.
type MonteCarloResult struct {
	TargetPoints float64     `json:"target_points"`
	Probability  float64     `json:"probability"`
	Simulations  int         `json:"simulations"`
	Seed         int64       `json:"seed"`
	Stats        SampleStats `json:"stats"`
}

// MonteCarloForecast estimates the probability of completing targetPoints
// in a sprint by bootstrap-resampling historical velocities: each trial
// draws one historical velocity with replacement and counts a hit when it
// meets the target. Resampling the empirical distribution avoids assuming
// normality on small samples. Requires at least MinMonteCarloHistory points.
func MonteCarloForecast(history []float64, targetPoints float64, cfg Config) (MonteCarloResult, error) {
	if len(history) < MinMonteCarloHistory {
		return MonteCarloResult{}, errors.NewInsufficientHistoryError(
			"monte carlo forecast", MinMonteCarloHistory, len(history))
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	samples := make([]float64, cfg.Simulations)
	hits := 0
	for i := 0; i < cfg.Simulations; i++ {
		v := history[rng.Intn(len(history))]
		samples[i] = v
		if v >= targetPoints {
			hits++
		}
	}

	return MonteCarloResult{
		TargetPoints: targetPoints,
		Probability:  float64(hits) / float64(cfg.Simulations),
		Simulations:  cfg.Simulations,
		Seed:         seed,
		Stats: SampleStats{
			Mean: stats.Mean(samples),
			P10:  stats.Percentile(samples, 10),
			P50:  stats.Percentile(samples, 50),
			P90:  stats.Percentile(samples, 90),
		},
	}, nil
}

// Bucket is one bar of the sampled-velocity histogram.
type Bucket struct {
	Low   float64 `json:"low"`
	High  float64 `json:"high"`
	Count int     `json:"count"`
}

// DistributionBuckets runs the bootstrap sampler and buckets the realized
// velocities into a histogram for charting. Bucket count defaults to 10.
func DistributionBuckets(history []float64, buckets int, cfg Config) ([]Bucket, error) {
	if len(history) < MinMonteCarloHistory {
		return nil, errors.NewInsufficientHistoryError(
			"velocity distribution", MinMonteCarloHistory, len(history))
	}
	if buckets <= 0 {
		buckets = 10
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	samples := make([]float64, cfg.Simulations)
	lo, hi := history[0], history[0]
	for i := 0; i < cfg.Simulations; i++ {
		v := history[rng.Intn(len(history))]
		samples[i] = v
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}

	if hi == lo {
		// Degenerate history: everything lands in a single bucket.
		return []Bucket{{Low: lo, High: hi, Count: len(samples)}}, nil
	}

	out := make([]Bucket, buckets)
	width := (hi - lo) / float64(buckets)
	for i := range out {
		out[i] = Bucket{Low: lo + float64(i)*width, High: lo + float64(i+1)*width}
	}
	for _, v := range samples {
		idx := int((v - lo) / width)
		if idx >= buckets {
			idx = buckets - 1
		}
		out[idx].Count++
	}
	return out, nil
}
