// Package sequence normalizes a selected feature table and slices it into
// fixed-length overlapping windows for supervised sequence learning.
package sequence

import "fmt"

// MinMaxScaler is a fitted linear transform mapping each column's observed
// minimum and maximum onto 0 and 1. A zero-range column scales to 0 and
// inverts back to its minimum. The inverse is written as an endpoint
// interpolation so a fitted minimum or maximum round-trips exactly.
type MinMaxScaler struct {
	DataMin []float64
	DataMax []float64
}

// FitScaler fits a scaler over column-major data: cols[j] is the full
// series of column j.
func FitScaler(cols [][]float64) *MinMaxScaler {
	s := &MinMaxScaler{
		DataMin: make([]float64, len(cols)),
		DataMax: make([]float64, len(cols)),
	}
	for j, col := range cols {
		if len(col) == 0 {
			continue
		}
		lo, hi := col[0], col[0]
		for _, v := range col[1:] {
			if v < lo {
				lo = v
			}
			if v > hi {
				hi = v
			}
		}
		s.DataMin[j] = lo
		s.DataMax[j] = hi
	}
	return s
}

// NumColumns returns the number of fitted columns.
func (s *MinMaxScaler) NumColumns() int { return len(s.DataMin) }

// TransformValue scales one value of column j.
func (s *MinMaxScaler) TransformValue(j int, v float64) float64 {
	r := s.DataMax[j] - s.DataMin[j]
	if r == 0 {
		return 0
	}
	return (v - s.DataMin[j]) / r
}

// InverseValue maps a scaled value of column j back to original units.
func (s *MinMaxScaler) InverseValue(j int, v float64) float64 {
	// v*max + (1-v)*min keeps the fitted endpoints exact under floating point.
	return v*s.DataMax[j] + (1-v)*s.DataMin[j]
}

// Transform scales one row across all fitted columns.
func (s *MinMaxScaler) Transform(row []float64) ([]float64, error) {
	if len(row) != len(s.DataMin) {
		return nil, fmt.Errorf("transform: row width %d does not match fitted columns %d", len(row), len(s.DataMin))
	}
	out := make([]float64, len(row))
	for j, v := range row {
		out[j] = s.TransformValue(j, v)
	}
	return out, nil
}

// Inverse maps one scaled row back to original units.
func (s *MinMaxScaler) Inverse(row []float64) ([]float64, error) {
	if len(row) != len(s.DataMin) {
		return nil, fmt.Errorf("inverse: row width %d does not match fitted columns %d", len(row), len(s.DataMin))
	}
	out := make([]float64, len(row))
	for j, v := range row {
		out[j] = s.InverseValue(j, v)
	}
	return out, nil
}

// TransformColumns scales column-major data in bulk.
func (s *MinMaxScaler) TransformColumns(cols [][]float64) ([][]float64, error) {
	if len(cols) != len(s.DataMin) {
		return nil, fmt.Errorf("transform: %d columns do not match fitted %d", len(cols), len(s.DataMin))
	}
	out := make([][]float64, len(cols))
	for j, col := range cols {
		scaled := make([]float64, len(col))
		for i, v := range col {
			scaled[i] = s.TransformValue(j, v)
		}
		out[j] = scaled
	}
	return out, nil
}
