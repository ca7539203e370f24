package features

import (
	"errors"
	"math"
	"testing"
	"time"

	"FeatureMill/internal/frame"
)

func TestAssembleSchemaValidation(t *testing.T) {
	dates := []time.Time{
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
	}
	f, err := frame.New(dates)
	if err != nil {
		t.Fatalf("frame: %v", err)
	}
	if err := f.AddColumn("Close", []float64{1, 2}); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := f.AddColumn("Volume", []float64{10, 20}); err != nil {
		t.Fatalf("add: %v", err)
	}

	_, err = NewAssembler(Config{}).Assemble(f)
	var schemaErr *frame.SchemaError
	if !errors.As(err, &schemaErr) {
		t.Fatalf("expected SchemaError, got %v", err)
	}
	want := []string{"Open", "High", "Low"}
	if len(schemaErr.Missing) != len(want) {
		t.Fatalf("missing = %v, want %v", schemaErr.Missing, want)
	}
	for i, name := range want {
		if schemaErr.Missing[i] != name {
			t.Fatalf("missing = %v, want %v", schemaErr.Missing, want)
		}
	}
}

func TestAssembleProducesFullTable(t *testing.T) {
	src := rampFrame(t)
	wide, err := NewAssembler(Config{}).Assemble(src)
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}

	if wide.Len() != src.Len() {
		t.Fatalf("row count changed: %d -> %d", src.Len(), wide.Len())
	}

	mustHave := []string{
		"Open", "High", "Low", "Close", "Volume",
		"return_log_returns", "return_simple_returns",
		"return_volatility_20", "return_volatility_60",
		"return_cumulative_returns", "return_sharpe_ratio",
		"ma_5", "ma_10", "ma_20", "ma_50",
		"momentum_1", "momentum_3", "momentum_5", "momentum_10",
		"volume_ma_5", "volume_ma_10", "volume_ma_20",
		"volume_price_trend", "volume_ratio",
		"tech_bb_upper", "tech_bb_lower", "tech_bb_width", "tech_bb_position",
		"tech_macd", "tech_macd_signal", "tech_macd_histogram",
		"tech_stoch_k", "tech_stoch_d",
		"rsi",
		"Close_lag_1", "Close_lag_2", "Close_lag_3", "Close_lag_5", "Close_lag_10",
		"Volume_lag_1", "Volume_lag_5",
		"return_log_returns_lag_1", "rsi_lag_1",
		"high_low_ratio", "open_close_ratio",
		"price_range", "price_range_pct",
		"volume_price_ratio", "dollar_volume",
	}
	for _, name := range mustHave {
		if !wide.Has(name) {
			t.Fatalf("column %s missing from assembled frame", name)
		}
	}

	// Lag of a derived column reaches back into the same column.
	rsi, _ := wide.Column("rsi")
	rsiLag, _ := wide.Column("rsi_lag_1")
	if rsiLag[20] != rsi[19] {
		t.Fatalf("rsi_lag_1[20] = %g, want %g", rsiLag[20], rsi[19])
	}

	// The source frame stays untouched.
	if src.Width() != 5 {
		t.Fatalf("source frame was mutated, width %d", src.Width())
	}
}

func TestAssembleNeutralizesInfinities(t *testing.T) {
	src := rampFrame(t)
	low, _ := src.Column("Low")
	zeroed := append([]float64(nil), low...)
	zeroed[60] = 0
	if err := src.AddColumn("Low", zeroed); err != nil {
		t.Fatalf("replace Low: %v", err)
	}

	wide, err := NewAssembler(Config{}).Assemble(src)
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}

	// High over a zero low would be +Inf; it must come out as a gap.
	ratio, _ := wide.Column("high_low_ratio")
	if !math.IsNaN(ratio[60]) {
		t.Fatalf("high_low_ratio[60] = %g, want NaN", ratio[60])
	}
	for _, name := range wide.Names() {
		col, _ := wide.Column(name)
		for i, v := range col {
			if math.IsInf(v, 0) {
				t.Fatalf("column %s row %d keeps infinity", name, i)
			}
		}
	}
}

func TestAssembleHonorsLagConfig(t *testing.T) {
	src := rampFrame(t)
	a := NewAssembler(Config{Lags: []int{1}})
	wide, err := a.Assemble(src)
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	if !wide.Has("Close_lag_1") || wide.Has("Close_lag_2") {
		t.Fatal("lag config not honored")
	}
}
