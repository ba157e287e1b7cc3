// Package stats provides the shared numeric helpers the analytics
// components build on: descriptive statistics, percentiles, and an
// ordinary-least-squares line fit for trend projection.
package stats

import (
	"math"
	"sort"
)

// Sum returns the sum of xs.
func Sum(xs []float64) float64 {
	s := 0.0
	for _, v := range xs {
		s += v
	}
	return s
}

// Mean returns the arithmetic mean of xs, or 0 for an empty slice.
func Mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	return Sum(xs) / float64(len(xs))
}

// StdDev returns the sample standard deviation (n-1 denominator) of xs.
// Fewer than two values carry no spread information and return 0.
func StdDev(xs []float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	m := Mean(xs)
	ss := 0.0
	for _, v := range xs {
		d := v - m
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(xs)-1))
}

// CoefVariation returns stdev/mean, or 0 when the mean is 0.
func CoefVariation(xs []float64) float64 {
	m := Mean(xs)
	if m == 0 {
		return 0
	}
	return StdDev(xs) / m
}

// Median returns the middle value of xs without mutating it.
func Median(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	cp := append([]float64(nil), xs...)
	sort.Float64s(cp)
	mid := len(cp) / 2
	if len(cp)%2 == 1 {
		return cp[mid]
	}
	return 0.5 * (cp[mid-1] + cp[mid])
}

// Percentile returns the p-th percentile (0-100) of xs using linear
// interpolation between closest ranks. It does not mutate xs.
func Percentile(xs []float64, p float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	cp := append([]float64(nil), xs...)
	sort.Float64s(cp)
	if p <= 0 {
		return cp[0]
	}
	if p >= 100 {
		return cp[len(cp)-1]
	}
	rank := p / 100 * float64(len(cp)-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	if lo == hi {
		return cp[lo]
	}
	frac := rank - float64(lo)
	return cp[lo] + frac*(cp[hi]-cp[lo])
}

// Clip bounds x to [lo, hi].
func Clip(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

// Clip01 bounds x to the unit interval.
func Clip01(x float64) float64 {
	return Clip(x, 0, 1)
}

// FitLine fits y = slope*x + intercept by ordinary least squares. A
// degenerate x spread (all identical, or fewer than two points) yields a
// flat line at the mean of ys.
func FitLine(xs, ys []float64) (slope, intercept float64) {
	n := len(xs)
	if n != len(ys) || n < 2 {
		return 0, Mean(ys)
	}
	mx := Mean(xs)
	my := Mean(ys)
	var sxx, sxy float64
	for i := 0; i < n; i++ {
		dx := xs[i] - mx
		sxx += dx * dx
		sxy += dx * (ys[i] - my)
	}
	if sxx == 0 {
		return 0, my
	}
	slope = sxy / sxx
	intercept = my - slope*mx
	return slope, intercept
}

// ResidualStdDev returns the standard deviation of the fit residuals for
// the line (slope, intercept) over (xs, ys), with n-2 degrees of freedom.
func ResidualStdDev(xs, ys []float64, slope, intercept float64) float64 {
	n := len(xs)
	if n != len(ys) || n < 3 {
		return 0
	}
	ss := 0.0
	for i := 0; i < n; i++ {
		r := ys[i] - (slope*xs[i] + intercept)
		ss += r * r
	}
	return math.Sqrt(ss / float64(n-2))
}
