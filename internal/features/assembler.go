package features

import (
	"fmt"

	"FeatureMill/internal/frame"
	applogger "FeatureMill/pkg/logger"
)

// RequiredColumns are the raw inputs every source frame must carry.
var RequiredColumns = []string{"Open", "High", "Low", "Close", "Volume"}

// Config carries the tunables of the assembly stage. Zero values fall back
// to the defaults below.
type Config struct {
	MAWindows       []int
	MomentumPeriods []int
	VolumeWindows   []int
	RSIWindow       int
	Lags            []int
}

// DefaultConfig returns the standard parameterization.
func DefaultConfig() Config {
	return Config{
		MAWindows:       []int{5, 10, 20, 50},
		MomentumPeriods: []int{1, 3, 5, 10},
		VolumeWindows:   []int{5, 10, 20},
		RSIWindow:       14,
		Lags:            []int{1, 2, 3, 5, 10},
	}
}

func (c *Config) applyDefaults() {
	def := DefaultConfig()
	if len(c.MAWindows) == 0 {
		c.MAWindows = def.MAWindows
	}
	if len(c.MomentumPeriods) == 0 {
		c.MomentumPeriods = def.MomentumPeriods
	}
	if len(c.VolumeWindows) == 0 {
		c.VolumeWindows = def.VolumeWindows
	}
	if c.RSIWindow <= 0 {
		c.RSIWindow = def.RSIWindow
	}
	if len(c.Lags) == 0 {
		c.Lags = def.Lags
	}
}

// Assembler widens a raw OHLCV frame into the full engineered feature table.
// It validates the input schema, runs every feature family, adds lag, ratio
// and volume-price columns, and neutralizes infinities. Rows are never
// dropped here; gaps are left for the selection stage to decide on.
type Assembler struct {
	cfg Config
	log *applogger.Logger
}

// NewAssembler builds an assembler with the given config.
func NewAssembler(cfg Config) *Assembler {
	cfg.applyDefaults()
	return &Assembler{cfg: cfg}
}

// SetLogger injects a structured logger for per-category progress notices.
// The notices are observational only.
func (a *Assembler) SetLogger(l *applogger.Logger) { a.log = l }

// lagSources are the derived columns that receive lagged copies.
func (a *Assembler) lagSources() []string {
	return []string{"Close", "Volume", "return_log_returns", "rsi"}
}

// Assemble produces the wide feature frame. The output keeps the source
// date index and row count exactly; early rows of windowed columns are NaN.
func (a *Assembler) Assemble(src *frame.Frame) (*frame.Frame, error) {
	if missing := src.Missing(RequiredColumns); len(missing) > 0 {
		return nil, &frame.SchemaError{Missing: missing}
	}

	wide, err := frame.New(src.Dates())
	if err != nil {
		return nil, fmt.Errorf("assemble: %w", err)
	}
	for _, name := range RequiredColumns {
		col, _ := src.Column(name)
		if err := wide.AddColumn(name, col); err != nil {
			return nil, fmt.Errorf("assemble: %w", err)
		}
	}

	families := []Family{
		ReturnFeatures{},
		MovingAverages{Windows: a.cfg.MAWindows},
		Momentum{Periods: a.cfg.MomentumPeriods},
		VolumeFeatures{Windows: a.cfg.VolumeWindows},
		TechnicalIndicators{},
	}
	for _, fam := range families {
		if err := a.apply(wide, fam); err != nil {
			return nil, err
		}
	}

	a.notice("computing rsi")
	prices, _ := wide.Column("Close")
	if err := wide.AddColumn("rsi", RSI(prices, a.cfg.RSIWindow)); err != nil {
		return nil, fmt.Errorf("assemble rsi: %w", err)
	}

	for _, source := range a.lagSources() {
		if !wide.Has(source) {
			continue
		}
		if err := a.apply(wide, LagFeatures{Column: source, Lags: a.cfg.Lags}); err != nil {
			return nil, err
		}
	}

	if err := a.addRatios(wide); err != nil {
		return nil, err
	}

	wide.NeutralizeInf()
	a.notice("assembly complete")
	if a.log != nil {
		a.log.Info("feature table assembled",
			applogger.Int("rows", wide.Len()),
			applogger.Int("columns", wide.Width()),
		)
	}
	return wide, nil
}

// addRatios appends the manual price ratio/spread and volume-price columns.
func (a *Assembler) addRatios(wide *frame.Frame) error {
	a.notice("computing price ratios")
	open, _ := wide.Column("Open")
	high, _ := wide.Column("High")
	low, _ := wide.Column("Low")
	closeP, _ := wide.Column("Close")
	volume, _ := wide.Column("Volume")

	priceRange := make([]float64, len(high))
	for i := range high {
		priceRange[i] = high[i] - low[i]
	}

	cols := []Feature{
		{"high_low_ratio", div(high, low)},
		{"open_close_ratio", div(open, closeP)},
		{"price_range", priceRange},
		{"price_range_pct", div(priceRange, closeP)},
		{"volume_price_ratio", div(volume, closeP)},
		{"dollar_volume", mul(volume, closeP)},
	}
	for _, c := range cols {
		if err := wide.AddColumn(c.Name, c.Series); err != nil {
			return fmt.Errorf("assemble %s: %w", c.Name, err)
		}
	}
	return nil
}

func (a *Assembler) apply(wide *frame.Frame, fam Family) error {
	a.notice("computing " + fam.Name())
	feats, err := fam.Compute(wide)
	if err != nil {
		return fmt.Errorf("assemble %s: %w", fam.Name(), err)
	}
	for _, f := range feats {
		if err := wide.AddColumn(f.Name, f.Series); err != nil {
			return fmt.Errorf("assemble %s: %w", fam.Name(), err)
		}
	}
	return nil
}

func (a *Assembler) notice(msg string) {
	if a.log != nil {
		a.log.Info(msg)
	}
}
