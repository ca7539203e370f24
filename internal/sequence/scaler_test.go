package sequence

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScalerMapsEndpointsToUnitRange(t *testing.T) {
	s := FitScaler([][]float64{{10, 20, 15}, {-4, 0, 4}})

	assert.Equal(t, 0.0, s.TransformValue(0, 10))
	assert.Equal(t, 1.0, s.TransformValue(0, 20))
	assert.InDelta(t, 0.5, s.TransformValue(0, 15), 1e-12)
	assert.Equal(t, 0.5, s.TransformValue(1, 0))
}

func TestScalerZeroRangeColumn(t *testing.T) {
	s := FitScaler([][]float64{{7, 7, 7}})

	assert.Equal(t, 0.0, s.TransformValue(0, 7))
	assert.Equal(t, 0.0, s.TransformValue(0, 123))
	// Inverting the zero-range column lands on the fitted minimum.
	assert.Equal(t, 7.0, s.InverseValue(0, 0))
}

func TestScalerExactEndpointRoundTrip(t *testing.T) {
	// Awkward endpoints that naive v*(max-min)+min would not recover
	// exactly under floating point.
	lo, hi := 0.1, 0.3
	s := FitScaler([][]float64{{lo, hi}})

	assert.Equal(t, lo, s.InverseValue(0, s.TransformValue(0, lo)))
	assert.Equal(t, hi, s.InverseValue(0, s.TransformValue(0, hi)))
}

func TestScalerRowWidthChecks(t *testing.T) {
	s := FitScaler([][]float64{{1, 2}, {3, 4}})

	_, err := s.Transform([]float64{1})
	require.Error(t, err)
	_, err = s.Inverse([]float64{1, 2, 3})
	require.Error(t, err)
	_, err = s.TransformColumns([][]float64{{1}})
	require.Error(t, err)

	out, err := s.Transform([]float64{1, 4})
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 1}, out)
}

func TestScalerInverseRow(t *testing.T) {
	s := FitScaler([][]float64{{100, 200}, {0, 50}})

	scaled, err := s.Transform([]float64{150, 25})
	require.NoError(t, err)
	back, err := s.Inverse(scaled)
	require.NoError(t, err)
	assert.InDelta(t, 150, back[0], 1e-9)
	assert.InDelta(t, 25, back[1], 1e-9)
}
