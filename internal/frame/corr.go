package frame

import "math"

// Corr computes the Pearson correlation between two columns over all rows.
// Rows are assumed NaN-free (call DropNA first); a zero-variance column
// yields NaN, which ranking treats as no correlation.
func (f *Frame) Corr(a, b string) float64 {
	x, okA := f.cols[a]
	y, okB := f.cols[b]
	if !okA || !okB || len(x) == 0 {
		return math.NaN()
	}
	return Pearson(x, y)
}

// Pearson computes the Pearson correlation coefficient of two equal-length
// series.
func Pearson(x, y []float64) float64 {
	n := float64(len(x))
	if n == 0 || len(x) != len(y) {
		return math.NaN()
	}
	var sumX, sumY float64
	for i := range x {
		sumX += x[i]
		sumY += y[i]
	}
	meanX := sumX / n
	meanY := sumY / n

	var cov, varX, varY float64
	for i := range x {
		dx := x[i] - meanX
		dy := y[i] - meanY
		cov += dx * dy
		varX += dx * dx
		varY += dy * dy
	}
	denom := math.Sqrt(varX * varY)
	if denom == 0 {
		return math.NaN()
	}
	return cov / denom
}
