package stats

import (
	"fmt"
	"math"

	"FeatureMill/internal/domain/models"
	"FeatureMill/internal/features"
	"FeatureMill/pkg/logger"
)

// Calculator derives chart indicator series and scalar statistics from
// daily candle history.
type Calculator struct {
	log *logger.Logger
}

func NewCalculator() *Calculator {
	return &Calculator{}
}

// SetLogger injects a logger. Safe to skip; a nil logger drops output.
func (c *Calculator) SetLogger(l *logger.Logger) {
	if l != nil {
		c.log = l
	}
}

// Compute builds the full statistics bundle for one symbol.
func (c *Calculator) Compute(symbol string, candles []models.Candle) (*models.StatsBundle, error) {
	if len(candles) == 0 {
		return nil, fmt.Errorf("no candle history for %s", symbol)
	}

	n := len(candles)
	dates := make([]string, n)
	open := make([]float64, n)
	high := make([]float64, n)
	low := make([]float64, n)
	closes := make([]float64, n)
	volume := make([]float64, n)
	for i, cd := range candles {
		dates[i] = cd.Date.Format("2006-01-02")
		open[i] = cd.Open
		high[i] = cd.High
		low[i] = cd.Low
		closes[i] = cd.Close
		volume[i] = cd.Volume
	}

	bundle := &models.StatsBundle{
		Symbol:  symbol,
		Metrics: c.metrics(closes, high, low, volume),
		Chart: models.ChartData{
			Dates:      dates,
			Close:      closes,
			Open:       open,
			High:       high,
			Low:        low,
			Volume:     volume,
			Indicators: c.indicators(closes, high, low, volume),
		},
	}

	if c.log != nil {
		c.log.Info("statistics computed",
			logger.String("symbol", symbol),
			logger.Int("rows", n))
	}
	return bundle, nil
}

func (c *Calculator) indicators(closes, high, low, volume []float64) models.ChartIndicators {
	sma20 := features.RollingMean(closes, 20)
	std20 := features.RollingStd(closes, 20)
	ema12 := features.EMA(closes, 12)
	ema26 := features.EMA(closes, 26)

	n := len(closes)
	macd := make([]float64, n)
	for i := range macd {
		macd[i] = ema12[i] - ema26[i]
	}
	signal := features.EMA(macd, 9)
	histogram := make([]float64, n)
	bollUpper := make([]float64, n)
	bollLower := make([]float64, n)
	for i := 0; i < n; i++ {
		histogram[i] = macd[i] - signal[i]
		bollUpper[i] = sma20[i] + 2*std20[i]
		bollLower[i] = sma20[i] - 2*std20[i]
	}

	low14 := features.RollingMin(low, 14)
	high14 := features.RollingMax(high, 14)
	stochK := make([]float64, n)
	for i := 0; i < n; i++ {
		stochK[i] = (closes[i] - low14[i]) / (high14[i] - low14[i]) * 100
	}
	stochD := features.RollingMean(stochK, 3)

	volSMA := features.RollingMean(volume, 20)
	volRatio := make([]float64, n)
	for i := 0; i < n; i++ {
		volRatio[i] = volume[i] / volSMA[i]
	}

	// Momentum is close over close ten rows back, with the warm-up as 0.
	shifted := features.Shift(closes, 10)
	momentum := make([]float64, n)
	for i := 0; i < n; i++ {
		m := closes[i] / shifted[i]
		if math.IsNaN(m) {
			m = 0
		}
		momentum[i] = m
	}

	return models.ChartIndicators{
		SMA20:           sma20,
		SMA50:           features.RollingMean(closes, 50),
		SMA200:          features.RollingMean(closes, 200),
		EMA12:           ema12,
		EMA26:           ema26,
		BollingerUpper:  bollUpper,
		BollingerLower:  bollLower,
		BollingerMiddle: sma20,
		RSI:             features.RSI(closes, 14),
		MACD:            macd,
		MACDSignal:      signal,
		MACDHistogram:   histogram,
		StochK:          stochK,
		StochD:          stochD,
		VolumeSMA:       volSMA,
		VolumeRatio:     volRatio,
		Momentum:        momentum,
		Volatility:      features.RollingStd(closes, 20),
	}
}

func (c *Calculator) metrics(closes, high, low, volume []float64) models.StatsMetrics {
	n := len(closes)
	current := closes[n-1]

	m := models.StatsMetrics{
		CurrentPrice:     current,
		PriceChange1D:    changeAbs(closes, 1),
		PriceChange1W:    changeAbs(closes, 5),
		PriceChange1M:    changeAbs(closes, 20),
		PriceChange3M:    changeAbs(closes, 62),
		PriceChange1Y:    changeAbs(closes, 251),
		PriceChange1DPct: changePct(closes, 1),
		PriceChange1WPct: changePct(closes, 5),
		PriceChange1MPct: changePct(closes, 20),
		PriceChange3MPct: changePct(closes, 62),
		PriceChange1YPct: changePct(closes, 251),
	}

	returns := dropNaN(features.PctChange(closes, 1))
	if len(returns) >= 20 {
		m.Volatility20D = safe(last(features.RollingStd(returns, 20)) * math.Sqrt(252))
	}
	if len(returns) >= 60 {
		m.Volatility60D = safe(last(features.RollingStd(returns, 60)) * math.Sqrt(252))
	}

	m.SupportLevel = safe(last(features.RollingMin(low, 20)))
	m.ResistanceLevel = safe(last(features.RollingMax(high, 20)))

	if n >= 20 {
		m.SMA20Current = safe(last(features.RollingMean(closes, 20)))
	}
	if n >= 50 {
		m.SMA50Current = safe(last(features.RollingMean(closes, 50)))
	}
	if n >= 200 {
		m.SMA200Current = safe(last(features.RollingMean(closes, 200)))
	}
	m.AboveSMA20 = current > m.SMA20Current
	m.AboveSMA50 = current > m.SMA50Current
	m.AboveSMA200 = current > m.SMA200Current

	if n >= 20 {
		m.AvgVolume20 = safe(last(features.RollingMean(volume, 20)))
	}
	if m.AvgVolume20 > 0 {
		m.VolumeRatioCurrent = volume[n-1] / m.AvgVolume20
	}
	return m
}

// changeAbs returns the last value minus the value lag rows back, or 0 with
// too little history.
func changeAbs(x []float64, lag int) float64 {
	n := len(x)
	if n <= lag {
		return 0
	}
	return x[n-1] - x[n-1-lag]
}

func changePct(x []float64, lag int) float64 {
	n := len(x)
	if n <= lag || x[n-1-lag] == 0 {
		return 0
	}
	return (x[n-1] - x[n-1-lag]) / x[n-1-lag] * 100
}

func dropNaN(x []float64) []float64 {
	out := make([]float64, 0, len(x))
	for _, v := range x {
		if !math.IsNaN(v) {
			out = append(out, v)
		}
	}
	return out
}

func last(x []float64) float64 {
	if len(x) == 0 {
		return math.NaN()
	}
	return x[len(x)-1]
}

// safe maps NaN/Inf to 0 so scalar metrics always JSON-encode.
func safe(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
