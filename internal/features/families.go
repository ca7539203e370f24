package features

import (
	"fmt"
	"math"

	"FeatureMill/internal/frame"
)

// Feature is a single named series produced by a family.
type Feature struct {
	Name   string
	Series []float64
}

// Family is one closed category of engineered features. Implementations are
// stateless; Compute never mutates the source frame and never fails on
// degenerate numerics, only on absent source columns.
type Family interface {
	Name() string
	Compute(f *frame.Frame) ([]Feature, error)
}

// ReturnFeatures derives the return-based bundle from the close price:
// log and simple returns, 20- and 60-period return volatility, cumulative
// growth, and an annualized 20-period mean/std ratio scaled by sqrt(252).
type ReturnFeatures struct{}

func (ReturnFeatures) Name() string { return "returns" }

func (ReturnFeatures) Compute(f *frame.Frame) ([]Feature, error) {
	prices, ok := f.Column("Close")
	if !ok {
		return nil, fmt.Errorf("return features: column Close not found")
	}

	logRet := LogReturns(prices)
	simple := PctChange(prices, 1)

	sharpe := div(RollingMean(logRet, 20), RollingStd(logRet, 20))
	for i, v := range sharpe {
		sharpe[i] = v * math.Sqrt(252)
	}

	return []Feature{
		{"return_log_returns", logRet},
		{"return_simple_returns", simple},
		{"return_volatility_20", RollingStd(logRet, 20)},
		{"return_volatility_60", RollingStd(logRet, 60)},
		{"return_cumulative_returns", CumProd(addConst(simple, 1))},
		{"return_sharpe_ratio", sharpe},
	}, nil
}

// MovingAverages computes a simple rolling mean of the close for every
// configured window.
type MovingAverages struct {
	Windows []int
}

func (MovingAverages) Name() string { return "moving averages" }

func (m MovingAverages) Compute(f *frame.Frame) ([]Feature, error) {
	prices, ok := f.Column("Close")
	if !ok {
		return nil, fmt.Errorf("moving averages: column Close not found")
	}
	out := make([]Feature, 0, len(m.Windows))
	for _, w := range m.Windows {
		out = append(out, Feature{fmt.Sprintf("ma_%d", w), RollingMean(prices, w)})
	}
	return out, nil
}

// Momentum computes the percentage change of the close over every
// configured lookback period.
type Momentum struct {
	Periods []int
}

func (Momentum) Name() string { return "momentum" }

func (m Momentum) Compute(f *frame.Frame) ([]Feature, error) {
	prices, ok := f.Column("Close")
	if !ok {
		return nil, fmt.Errorf("momentum: column Close not found")
	}
	out := make([]Feature, 0, len(m.Periods))
	for _, p := range m.Periods {
		out = append(out, Feature{fmt.Sprintf("momentum_%d", p), PctChange(prices, p)})
	}
	return out, nil
}

// VolumeFeatures derives rolling volume means, the 20-period volume-price
// trend, and the ratio of current to 20-period mean volume. The ratio is
// undefined where the trailing mean volume is zero.
type VolumeFeatures struct {
	Windows []int
}

func (VolumeFeatures) Name() string { return "volume" }

func (v VolumeFeatures) Compute(f *frame.Frame) ([]Feature, error) {
	volume, ok := f.Column("Volume")
	if !ok {
		return nil, fmt.Errorf("volume features: column Volume not found")
	}
	prices, ok := f.Column("Close")
	if !ok {
		return nil, fmt.Errorf("volume features: column Close not found")
	}

	out := make([]Feature, 0, len(v.Windows)+2)
	for _, w := range v.Windows {
		out = append(out, Feature{fmt.Sprintf("volume_ma_%d", w), RollingMean(volume, w)})
	}
	out = append(out,
		Feature{"volume_price_trend", RollingMean(mul(volume, prices), 20)},
		Feature{"volume_ratio", div(volume, RollingMean(volume, 20))},
	)
	return out, nil
}

// TechnicalIndicators computes Bollinger bands, MACD, and the stochastic
// oscillator over the close price. Band position is intentionally not
// clamped to [0,1]; prices beyond the bands fall outside the range.
type TechnicalIndicators struct{}

func (TechnicalIndicators) Name() string { return "technical indicators" }

func (TechnicalIndicators) Compute(f *frame.Frame) ([]Feature, error) {
	prices, ok := f.Column("Close")
	if !ok {
		return nil, fmt.Errorf("technical indicators: column Close not found")
	}
	n := len(prices)

	ma20 := RollingMean(prices, 20)
	std20 := RollingStd(prices, 20)
	upper := make([]float64, n)
	lower := make([]float64, n)
	width := make([]float64, n)
	position := make([]float64, n)
	for i := 0; i < n; i++ {
		upper[i] = ma20[i] + 2*std20[i]
		lower[i] = ma20[i] - 2*std20[i]
		width[i] = (upper[i] - lower[i]) / ma20[i]
		position[i] = (prices[i] - lower[i]) / (upper[i] - lower[i])
	}

	macd := make([]float64, n)
	ema12 := EMA(prices, 12)
	ema26 := EMA(prices, 26)
	for i := 0; i < n; i++ {
		macd[i] = ema12[i] - ema26[i]
	}
	signal := EMA(macd, 9)
	histogram := make([]float64, n)
	for i := 0; i < n; i++ {
		histogram[i] = macd[i] - signal[i]
	}

	low14 := RollingMin(prices, 14)
	high14 := RollingMax(prices, 14)
	stochK := make([]float64, n)
	for i := 0; i < n; i++ {
		stochK[i] = 100 * (prices[i] - low14[i]) / (high14[i] - low14[i])
	}

	return []Feature{
		{"tech_bb_upper", upper},
		{"tech_bb_lower", lower},
		{"tech_bb_width", width},
		{"tech_bb_position", position},
		{"tech_macd", macd},
		{"tech_macd_signal", signal},
		{"tech_macd_histogram", histogram},
		{"tech_stoch_k", stochK},
		{"tech_stoch_d", RollingMean(stochK, 3)},
	}, nil
}

// LagFeatures emits delayed copies of one source column for every
// configured lag. The source may be a raw or a previously derived column.
type LagFeatures struct {
	Column string
	Lags   []int
}

func (l LagFeatures) Name() string { return "lags of " + l.Column }

func (l LagFeatures) Compute(f *frame.Frame) ([]Feature, error) {
	src, ok := f.Column(l.Column)
	if !ok {
		return nil, fmt.Errorf("lag features: column %s not found", l.Column)
	}
	out := make([]Feature, 0, len(l.Lags))
	for _, lag := range l.Lags {
		out = append(out, Feature{fmt.Sprintf("%s_lag_%d", l.Column, lag), Shift(src, lag)})
	}
	return out, nil
}

// RSI computes the relative strength index over the given window: trailing
// mean gain over trailing mean loss, folded into 100 - 100/(1+rs). When the
// loss window is exactly zero and the gain window is not, the ratio is
// unbounded and RSI saturates at exactly 100.
func RSI(prices []float64, window int) []float64 {
	delta := Diff(prices)
	gains := make([]float64, len(delta))
	losses := make([]float64, len(delta))
	for i, d := range delta {
		if math.IsNaN(d) {
			gains[i] = math.NaN()
			losses[i] = math.NaN()
			continue
		}
		if d > 0 {
			gains[i] = d
		}
		if d < 0 {
			losses[i] = -d
		}
	}

	gain := RollingMean(gains, window)
	loss := RollingMean(losses, window)
	out := make([]float64, len(prices))
	for i := range out {
		rs := gain[i] / loss[i]
		out[i] = 100 - 100/(1+rs)
	}
	return out
}
