// Package features computes the technical and statistical series the
// preparation pipeline feeds into sequence models. Every function here is
// pure and NaN-tolerant: undefined results (short history, division by
// zero inputs) propagate as NaN and never abort a computation.
package features

import "math"

// Diff returns the first difference of x. The first element is NaN.
func Diff(x []float64) []float64 {
	out := make([]float64, len(x))
	if len(x) == 0 {
		return out
	}
	out[0] = math.NaN()
	for i := 1; i < len(x); i++ {
		out[i] = x[i] - x[i-1]
	}
	return out
}

// Shift returns x delayed by lag rows. The first lag elements are NaN.
func Shift(x []float64, lag int) []float64 {
	out := make([]float64, len(x))
	for i := range out {
		if i < lag {
			out[i] = math.NaN()
		} else {
			out[i] = x[i-lag]
		}
	}
	return out
}

// LogReturns returns ln(x[i]/x[i-1]). Undefined at row 0.
func LogReturns(x []float64) []float64 {
	out := make([]float64, len(x))
	if len(x) == 0 {
		return out
	}
	out[0] = math.NaN()
	for i := 1; i < len(x); i++ {
		out[i] = math.Log(x[i] / x[i-1])
	}
	return out
}

// PctChange returns the fractional change over the given period,
// x[i]/x[i-period] - 1. The first period elements are NaN.
func PctChange(x []float64, period int) []float64 {
	out := make([]float64, len(x))
	for i := range out {
		if i < period {
			out[i] = math.NaN()
		} else {
			out[i] = x[i]/x[i-period] - 1
		}
	}
	return out
}

// RollingMean returns the mean over a trailing window. An element is NaN
// until a full window is available or while the window contains NaN.
func RollingMean(x []float64, window int) []float64 {
	return rollingApply(x, window, func(w []float64) float64 {
		sum := 0.0
		for _, v := range w {
			sum += v
		}
		return sum / float64(len(w))
	})
}

// RollingStd returns the sample standard deviation (n-1 denominator) over a
// trailing window.
func RollingStd(x []float64, window int) []float64 {
	return rollingApply(x, window, func(w []float64) float64 {
		n := float64(len(w))
		if n < 2 {
			return math.NaN()
		}
		sum := 0.0
		for _, v := range w {
			sum += v
		}
		mean := sum / n
		ss := 0.0
		for _, v := range w {
			d := v - mean
			ss += d * d
		}
		return math.Sqrt(ss / (n - 1))
	})
}

// RollingMin returns the minimum over a trailing window.
func RollingMin(x []float64, window int) []float64 {
	return rollingApply(x, window, func(w []float64) float64 {
		m := w[0]
		for _, v := range w[1:] {
			if v < m {
				m = v
			}
		}
		return m
	})
}

// RollingMax returns the maximum over a trailing window.
func RollingMax(x []float64, window int) []float64 {
	return rollingApply(x, window, func(w []float64) float64 {
		m := w[0]
		for _, v := range w[1:] {
			if v > m {
				m = v
			}
		}
		return m
	})
}

// rollingApply evaluates fn over every full trailing window of x. Windows
// containing NaN yield NaN, mirroring a rolling aggregate with
// min_periods equal to the window.
func rollingApply(x []float64, window int, fn func([]float64) float64) []float64 {
	out := make([]float64, len(x))
	for i := range out {
		if window <= 0 || i < window-1 {
			out[i] = math.NaN()
			continue
		}
		w := x[i-window+1 : i+1]
		hasNaN := false
		for _, v := range w {
			if math.IsNaN(v) {
				hasNaN = true
				break
			}
		}
		if hasNaN {
			out[i] = math.NaN()
			continue
		}
		out[i] = fn(w)
	}
	return out
}

// EMA returns the exponential moving average parameterized by span, with
// decay 2/(span+1). The recursion warm-starts from the first observation
// using expanding weights, so early values are defined immediately instead
// of waiting for a full window. NaN inputs decay the running weights and
// repeat the previous estimate.
func EMA(x []float64, span int) []float64 {
	out := make([]float64, len(x))
	alpha := 2.0 / (float64(span) + 1.0)
	beta := 1.0 - alpha

	started := false
	var num, den float64
	for i, v := range x {
		if !started {
			if math.IsNaN(v) {
				out[i] = math.NaN()
				continue
			}
			num, den = v, 1.0
			started = true
			out[i] = v
			continue
		}
		num *= beta
		den *= beta
		if !math.IsNaN(v) {
			num += v
			den += 1.0
		}
		out[i] = num / den
	}
	return out
}

// CumProd returns the running product of x. NaN elements stay NaN in the
// output but do not reset the running product.
func CumProd(x []float64) []float64 {
	out := make([]float64, len(x))
	prod := 1.0
	for i, v := range x {
		if math.IsNaN(v) {
			out[i] = math.NaN()
			continue
		}
		prod *= v
		out[i] = prod
	}
	return out
}

// addConst returns elementwise x+c.
func addConst(x []float64, c float64) []float64 {
	out := make([]float64, len(x))
	for i, v := range x {
		out[i] = v + c
	}
	return out
}

// mul returns elementwise x*y.
func mul(x, y []float64) []float64 {
	out := make([]float64, len(x))
	for i := range x {
		out[i] = x[i] * y[i]
	}
	return out
}

// div returns elementwise x/y. Division by zero yields ±Inf or NaN, which
// the assembler later neutralizes to missing.
func div(x, y []float64) []float64 {
	out := make([]float64, len(x))
	for i := range x {
		out[i] = x[i] / y[i]
	}
	return out
}
