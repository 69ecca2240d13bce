// Package stats holds the small set of series statistics the calibration
// and signal engine needs: moments, ordinary least squares, and the price
// transforms (returns, log levels) feeding them.
package stats

import "math"

// Mean returns the arithmetic mean, 0 for an empty slice.
func Mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range xs {
		sum += v
	}
	return sum / float64(len(xs))
}

// MeanStd computes the mean and the population (N-denominator) standard
// deviation. The population convention matches the original calibration
// pipeline and is pinned by tests.
func MeanStd(xs []float64) (mean, std float64) {
	if len(xs) == 0 {
		return 0, 0
	}
	mean = Mean(xs)
	if len(xs) == 1 {
		return mean, 0
	}
	varSum := 0.0
	for _, v := range xs {
		d := v - mean
		varSum += d * d
	}
	return mean, math.Sqrt(varSum / float64(len(xs)))
}

// LinearRegression fits y = intercept + slope*x by ordinary least squares.
// A degenerate regressor (zero variance) yields slope 0 and intercept
// mean(y); callers that need a real fit must check the input first.
func LinearRegression(x, y []float64) (slope, intercept float64) {
	if len(x) != len(y) || len(x) == 0 {
		return 0, 0
	}

	meanX := Mean(x)
	meanY := Mean(y)

	var num, den float64
	for i := range x {
		dx := x[i] - meanX
		num += dx * (y[i] - meanY)
		den += dx * dx
	}
	if den < 1e-10 {
		return 0, meanY
	}
	slope = num / den
	intercept = meanY - slope*meanX
	return slope, intercept
}

// PercentChanges converts a price level series into per-step simple
// returns: r[i] = p[i+1]/p[i] - 1. The result is one shorter than the
// input. Non-positive prices produce a zero return for that step.
func PercentChanges(prices []float64) []float64 {
	if len(prices) < 2 {
		return nil
	}
	out := make([]float64, len(prices)-1)
	for i := 1; i < len(prices); i++ {
		if prices[i-1] <= 0 {
			out[i-1] = 0
			continue
		}
		out[i-1] = prices[i]/prices[i-1] - 1
	}
	return out
}

// CumulativeReturns converts a price level series into cumulative simple
// returns anchored at the first observation: c[i] = p[i+1]/p[0] - 1,
// built by compounding per-step changes. The result is one shorter than
// the input, aligned with PercentChanges.
func CumulativeReturns(prices []float64) []float64 {
	changes := PercentChanges(prices)
	if changes == nil {
		return nil
	}
	out := make([]float64, len(changes))
	acc := 1.0
	for i, r := range changes {
		acc *= 1 + r
		out[i] = acc - 1
	}
	return out
}

// LogSeries returns the natural log of each price level. ok is false if
// any level is non-positive.
func LogSeries(prices []float64) (logs []float64, ok bool) {
	logs = make([]float64, len(prices))
	for i, p := range prices {
		if p <= 0 {
			return nil, false
		}
		logs[i] = math.Log(p)
	}
	return logs, true
}

// Tail returns the last n elements (the whole slice if it is shorter).
// The returned slice aliases the input.
func Tail(xs []float64, n int) []float64 {
	if n <= 0 || n >= len(xs) {
		return xs
	}
	return xs[len(xs)-n:]
}
