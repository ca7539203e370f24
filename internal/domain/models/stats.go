package models

import (
	"math"
	"strconv"
)

// Series marshals NaN entries as JSON null so warm-up gaps in rolling
// indicators survive encoding.
type Series []float64

func (s Series) MarshalJSON() ([]byte, error) {
	buf := make([]byte, 0, len(s)*8+2)
	buf = append(buf, '[')
	for i, v := range s {
		if i > 0 {
			buf = append(buf, ',')
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			buf = append(buf, "null"...)
			continue
		}
		buf = strconv.AppendFloat(buf, v, 'g', -1, 64)
	}
	buf = append(buf, ']')
	return buf, nil
}

// ChartIndicators holds per-date indicator series aligned with Dates.
type ChartIndicators struct {
	SMA20           Series `json:"sma_20"`
	SMA50           Series `json:"sma_50"`
	SMA200          Series `json:"sma_200"`
	EMA12           Series `json:"ema_12"`
	EMA26           Series `json:"ema_26"`
	BollingerUpper  Series `json:"bollinger_upper"`
	BollingerLower  Series `json:"bollinger_lower"`
	BollingerMiddle Series `json:"bollinger_middle"`
	RSI             Series `json:"rsi"`
	MACD            Series `json:"macd"`
	MACDSignal      Series `json:"macd_signal"`
	MACDHistogram   Series `json:"macd_histogram"`
	StochK          Series `json:"stoch_k"`
	StochD          Series `json:"stoch_d"`
	VolumeSMA       Series `json:"volume_sma"`
	VolumeRatio     Series `json:"volume_ratio"`
	Momentum        Series `json:"momentum"`
	Volatility      Series `json:"volatility"`
}

// ChartData is the OHLCV history plus indicator overlays.
type ChartData struct {
	Dates      []string        `json:"dates"`
	Close      Series          `json:"close"`
	Open       Series          `json:"open"`
	High       Series          `json:"high"`
	Low        Series          `json:"low"`
	Volume     Series          `json:"volume"`
	Indicators ChartIndicators `json:"indicators"`
}

// StatsMetrics holds scalar statistics over the history tail.
type StatsMetrics struct {
	CurrentPrice       float64 `json:"current_price"`
	PriceChange1D      float64 `json:"price_change_1d"`
	PriceChange1W      float64 `json:"price_change_1w"`
	PriceChange1M      float64 `json:"price_change_1m"`
	PriceChange3M      float64 `json:"price_change_3m"`
	PriceChange1Y      float64 `json:"price_change_1y"`
	PriceChange1DPct   float64 `json:"price_change_1d_pct"`
	PriceChange1WPct   float64 `json:"price_change_1w_pct"`
	PriceChange1MPct   float64 `json:"price_change_1m_pct"`
	PriceChange3MPct   float64 `json:"price_change_3m_pct"`
	PriceChange1YPct   float64 `json:"price_change_1y_pct"`
	Volatility20D      float64 `json:"volatility_20d"`
	Volatility60D      float64 `json:"volatility_60d"`
	SupportLevel       float64 `json:"support_level"`
	ResistanceLevel    float64 `json:"resistance_level"`
	SMA20Current       float64 `json:"sma_20_current"`
	SMA50Current       float64 `json:"sma_50_current"`
	SMA200Current      float64 `json:"sma_200_current"`
	AboveSMA20         bool    `json:"above_sma_20"`
	AboveSMA50         bool    `json:"above_sma_50"`
	AboveSMA200        bool    `json:"above_sma_200"`
	AvgVolume20        float64 `json:"avg_volume_20"`
	VolumeRatioCurrent float64 `json:"volume_ratio_current"`
}

// StatsBundle is the full statistics payload for one symbol.
type StatsBundle struct {
	Symbol  string       `json:"symbol"`
	Metrics StatsMetrics `json:"metrics"`
	Chart   ChartData    `json:"chart_data"`
}
