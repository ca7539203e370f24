package features

import (
	"math"
	"testing"
)

func almostEqual(a, b, eps float64) bool {
	if math.IsNaN(a) || math.IsNaN(b) {
		return false
	}
	return math.Abs(a-b) <= eps
}

func TestShift(t *testing.T) {
	out := Shift([]float64{1, 2, 3, 4}, 2)
	if !math.IsNaN(out[0]) || !math.IsNaN(out[1]) {
		t.Fatalf("first lag rows must be NaN: %v", out)
	}
	if out[2] != 1 || out[3] != 2 {
		t.Fatalf("unexpected shifted values: %v", out)
	}
}

func TestLogReturns(t *testing.T) {
	out := LogReturns([]float64{100, 110, 99})
	if !math.IsNaN(out[0]) {
		t.Fatal("row 0 must be undefined")
	}
	if !almostEqual(out[1], math.Log(1.1), 1e-12) {
		t.Fatalf("unexpected log return: %g", out[1])
	}
	if !almostEqual(out[2], math.Log(0.9), 1e-12) {
		t.Fatalf("unexpected log return: %g", out[2])
	}
}

func TestPctChange(t *testing.T) {
	out := PctChange([]float64{100, 110, 121}, 1)
	if !math.IsNaN(out[0]) {
		t.Fatal("row 0 must be undefined")
	}
	if !almostEqual(out[1], 0.1, 1e-12) || !almostEqual(out[2], 0.1, 1e-12) {
		t.Fatalf("unexpected pct change: %v", out)
	}
}

func TestRollingMeanWarmupAndNaN(t *testing.T) {
	nan := math.NaN()
	x := []float64{1, 2, 3, nan, 5, 6, 7}
	out := RollingMean(x, 3)

	// First window-1 rows undefined.
	if !math.IsNaN(out[0]) || !math.IsNaN(out[1]) {
		t.Fatalf("warm-up rows must be NaN: %v", out)
	}
	if !almostEqual(out[2], 2, 1e-12) {
		t.Fatalf("mean of 1,2,3 wrong: %g", out[2])
	}
	// Any NaN inside the window poisons it.
	for _, i := range []int{3, 4, 5} {
		if !math.IsNaN(out[i]) {
			t.Fatalf("window containing NaN must yield NaN at %d: %v", i, out)
		}
	}
	if !almostEqual(out[6], 6, 1e-12) {
		t.Fatalf("mean of 5,6,7 wrong: %g", out[6])
	}
}

func TestRollingStdSampleDenominator(t *testing.T) {
	out := RollingStd([]float64{2, 4, 4, 4, 5, 5, 7, 9}, 8)
	// Sample std of the classic dataset is sqrt(32/7).
	want := math.Sqrt(32.0 / 7.0)
	if !almostEqual(out[7], want, 1e-12) {
		t.Fatalf("sample std wrong: got %g want %g", out[7], want)
	}
}

func TestRollingMinMax(t *testing.T) {
	x := []float64{5, 1, 4, 2, 8}
	mins := RollingMin(x, 3)
	maxs := RollingMax(x, 3)
	if mins[2] != 1 || mins[4] != 2 {
		t.Fatalf("rolling min wrong: %v", mins)
	}
	if maxs[2] != 5 || maxs[4] != 8 {
		t.Fatalf("rolling max wrong: %v", maxs)
	}
}

func TestEMAWarmStartWeights(t *testing.T) {
	// span=3 -> alpha=0.5. With adjusted warm-up the second output is
	// (x1 + 0.5*x0) / 1.5.
	out := EMA([]float64{2, 4, 8}, 3)
	if out[0] != 2 {
		t.Fatalf("ema must start at first observation: %g", out[0])
	}
	want1 := (4 + 0.5*2) / 1.5
	if !almostEqual(out[1], want1, 1e-12) {
		t.Fatalf("ema[1] got %g want %g", out[1], want1)
	}
	want2 := (8 + 0.5*4 + 0.25*2) / 1.75
	if !almostEqual(out[2], want2, 1e-12) {
		t.Fatalf("ema[2] got %g want %g", out[2], want2)
	}
}

func TestEMANaNRepeatsPrevious(t *testing.T) {
	nan := math.NaN()
	out := EMA([]float64{nan, 2, nan, 4}, 3)
	if !math.IsNaN(out[0]) {
		t.Fatal("leading NaN must stay NaN")
	}
	if out[1] != 2 {
		t.Fatalf("ema must start at first real value: %g", out[1])
	}
	if out[2] != 2 {
		t.Fatalf("NaN input must repeat the estimate: %g", out[2])
	}
	// After the gap the old weight has decayed twice.
	want := (4 + 0.25*2) / 1.25
	if !almostEqual(out[3], want, 1e-12) {
		t.Fatalf("ema after gap got %g want %g", out[3], want)
	}
}

func TestCumProdSkipsNaN(t *testing.T) {
	nan := math.NaN()
	out := CumProd([]float64{2, nan, 3})
	if out[0] != 2 || !math.IsNaN(out[1]) || out[2] != 6 {
		t.Fatalf("cumprod must skip NaN without resetting: %v", out)
	}
}

func TestDiff(t *testing.T) {
	out := Diff([]float64{3, 5, 4})
	if !math.IsNaN(out[0]) || out[1] != 2 || out[2] != -1 {
		t.Fatalf("unexpected diff: %v", out)
	}
}
