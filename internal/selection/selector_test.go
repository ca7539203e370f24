package selection

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"FeatureMill/internal/frame"
)

func testFrame(t *testing.T, cols map[string][]float64, order []string) *frame.Frame {
	t.Helper()
	n := 0
	for _, s := range cols {
		n = len(s)
		break
	}
	dates := make([]time.Time, n)
	for i := range dates {
		dates[i] = time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, i)
	}
	f, err := frame.New(dates)
	require.NoError(t, err)
	for _, name := range order {
		require.NoError(t, f.AddColumn(name, cols[name]))
	}
	return f
}

func TestSelectRanksByAbsoluteCorrelation(t *testing.T) {
	target := []float64{1, 2, 3, 4, 5, 6}
	f := testFrame(t, map[string][]float64{
		"Close":    target,
		"perfect":  {2, 4, 6, 8, 10, 12},
		"inverse":  {6, 5, 4, 3, 2, 1},
		"weak":     {1, 5, 2, 6, 3, 9},
		"constant": {7, 7, 7, 7, 7, 7},
	}, []string{"Close", "perfect", "inverse", "weak", "constant"})

	sel := NewSelector(50, 0.95)
	res, err := sel.Select(f, "Close")
	require.NoError(t, err)

	require.Len(t, res.Ranked, 4)
	// Perfect and inverse both score |1| and keep insertion order.
	assert.Equal(t, "perfect", res.Ranked[0].Name)
	assert.Equal(t, "inverse", res.Ranked[1].Name)
	assert.Equal(t, "weak", res.Ranked[2].Name)
	// Constant columns have no defined correlation and sort last.
	assert.Equal(t, "constant", res.Ranked[3].Name)
	assert.True(t, math.IsNaN(res.Ranked[3].Corr))
	assert.InDelta(t, 1.0, res.Ranked[0].Corr, 1e-12)
}

func TestSelectGreedyDecorrelation(t *testing.T) {
	// perfect and inverse correlate perfectly with each other, so only
	// the first of the two survives the pairwise gate.
	target := []float64{1, 2, 3, 4, 5, 6}
	f := testFrame(t, map[string][]float64{
		"Close":   target,
		"perfect": {2, 4, 6, 8, 10, 12},
		"inverse": {6, 5, 4, 3, 2, 1},
		"weak":    {3, 1, 4, 1, 5, 9},
	}, []string{"Close", "perfect", "inverse", "weak"})

	res, err := NewSelector(50, 0.95).Select(f, "Close")
	require.NoError(t, err)

	assert.Equal(t, []string{"perfect", "weak"}, res.Accepted)
	// The result frame leads with the target in selection order.
	assert.Equal(t, []string{"Close", "perfect", "weak"}, res.Frame.Names())
}

func TestSelectTopRankedAlwaysAccepted(t *testing.T) {
	target := []float64{1, 2, 3, 4, 5, 6}
	f := testFrame(t, map[string][]float64{
		"Close": target,
		"a":     {2, 4, 6, 8, 10, 12},
	}, []string{"Close", "a"})

	res, err := NewSelector(50, 0.01).Select(f, "Close")
	require.NoError(t, err)
	// A brutal threshold still cannot reject the first candidate.
	assert.Equal(t, []string{"a"}, res.Accepted)
}

func TestSelectHonorsMaxFeatures(t *testing.T) {
	target := []float64{1, 2, 3, 4, 5, 6}
	f := testFrame(t, map[string][]float64{
		"Close": target,
		"a":     {1, 3, 2, 5, 4, 7},
		"b":     {9, 2, 8, 1, 7, 3},
		"c":     {1, 1, 2, 3, 5, 8},
	}, []string{"Close", "a", "b", "c"})

	res, err := NewSelector(2, 1.1).Select(f, "Close")
	require.NoError(t, err)
	// Only the top two ranked columns are even considered.
	assert.Len(t, res.Accepted, 2)
	assert.Len(t, res.Ranked, 3)
}

func TestSelectDropsIncompleteRows(t *testing.T) {
	nan := math.NaN()
	f := testFrame(t, map[string][]float64{
		"Close": {1, 2, 3, 4, 5, 6},
		"a":     {nan, 4, 6, 8, 10, 12},
	}, []string{"Close", "a"})

	res, err := NewSelector(50, 0.95).Select(f, "Close")
	require.NoError(t, err)
	assert.Equal(t, 5, res.Frame.Len())
}

func TestSelectMissingTarget(t *testing.T) {
	f := testFrame(t, map[string][]float64{
		"a": {1, 2, 3},
	}, []string{"a"})

	_, err := NewSelector(50, 0.95).Select(f, "Close")
	var schemaErr *frame.SchemaError
	require.True(t, errors.As(err, &schemaErr))
	assert.Equal(t, []string{"Close"}, schemaErr.Missing)
}

func TestSelectNoCompleteRows(t *testing.T) {
	nan := math.NaN()
	f := testFrame(t, map[string][]float64{
		"Close": {1, 2, 3},
		"a":     {nan, nan, nan},
	}, []string{"Close", "a"})

	_, err := NewSelector(50, 0.95).Select(f, "Close")
	var insufficient *frame.InsufficientDataError
	require.True(t, errors.As(err, &insufficient))
	assert.Equal(t, 1, insufficient.Need)
	assert.Equal(t, 0, insufficient.Got)
}

func TestSelectDeterministic(t *testing.T) {
	target := []float64{1, 2, 3, 4, 5, 6, 7, 8}
	f := testFrame(t, map[string][]float64{
		"Close": target,
		"a":     {2, 4, 6, 8, 10, 12, 14, 16},
		"b":     {8, 7, 6, 5, 4, 3, 2, 1},
		"c":     {1, 4, 2, 5, 3, 6, 4, 7},
		"d":     {5, 5, 6, 6, 7, 7, 8, 8},
	}, []string{"Close", "a", "b", "c", "d"})

	first, err := NewSelector(50, 0.95).Select(f, "Close")
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := NewSelector(50, 0.95).Select(f, "Close")
		require.NoError(t, err)
		assert.Equal(t, first.Accepted, again.Accepted)
		assert.Equal(t, first.Ranked, again.Ranked)
	}
}
