package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/samber/lo"

	"FeatureMill/internal/domain/models"
	domrepo "FeatureMill/internal/domain/repository"
	"FeatureMill/internal/features"
	"FeatureMill/internal/frame"
	"FeatureMill/internal/selection"
	"FeatureMill/internal/sequence"
	"FeatureMill/pkg/config"
	applogger "FeatureMill/pkg/logger"
)

// PreparedDataset is the output of one full pipeline run.
type PreparedDataset struct {
	Summary  *models.DatasetSummary
	Dataset  *sequence.Dataset
	Selected *frame.Frame

	// RawRows is the candle count before feature engineering; the
	// train/predict minimum-history guards apply to it.
	RawRows   int
	LastClose float64
}

// DatasetPreparer runs candles through assembly, selection and
// windowing, then persists and announces the result.
type DatasetPreparer struct {
	cfg       *config.Config
	source    domrepo.CandleSource
	store     domrepo.SnapshotStore
	publisher domrepo.Publisher
	metrics   domrepo.Metrics
	log       *applogger.Logger
}

func NewDatasetPreparer(cfg *config.Config, source domrepo.CandleSource) *DatasetPreparer {
	return &DatasetPreparer{cfg: cfg, source: source}
}

// SetLogger injects a structured logger.
func (p *DatasetPreparer) SetLogger(l *applogger.Logger) { p.log = l }

// SetStore enables candle mirroring and snapshot persistence.
func (p *DatasetPreparer) SetStore(s domrepo.SnapshotStore) { p.store = s }

// SetPublisher enables dataset-ready events.
func (p *DatasetPreparer) SetPublisher(pub domrepo.Publisher) { p.publisher = pub }

// SetMetrics enables pipeline measurements.
func (p *DatasetPreparer) SetMetrics(m domrepo.Metrics) { p.metrics = m }

// Prepare runs the pipeline for one symbol. maxFeatures <= 0 falls back
// to the configured generic cap.
func (p *DatasetPreparer) Prepare(ctx context.Context, symbol string, maxFeatures int) (*PreparedDataset, error) {
	if maxFeatures <= 0 {
		maxFeatures = p.cfg.Pipeline.MaxFeatures
	}

	out, err := p.run(ctx, symbol, maxFeatures)
	if p.metrics != nil {
		if err != nil {
			p.metrics.RecordRun(symbol, "error")
		} else {
			p.metrics.RecordRun(symbol, "ok")
		}
	}
	return out, err
}

func (p *DatasetPreparer) run(ctx context.Context, symbol string, maxFeatures int) (*PreparedDataset, error) {
	pc := p.cfg.Pipeline

	candles, err := p.loadCandles(ctx, symbol)
	if err != nil {
		return nil, err
	}
	src, err := frameFromCandles(candles)
	if err != nil {
		return nil, fmt.Errorf("build frame for %s: %w", symbol, err)
	}

	asm := features.NewAssembler(features.Config{
		MAWindows:       pc.MAWindows,
		MomentumPeriods: pc.MomentumPeriods,
		VolumeWindows:   pc.VolumeWindows,
		RSIWindow:       pc.RSIWindow,
		Lags:            pc.Lags,
	})
	asm.SetLogger(p.log)

	start := time.Now()
	wide, err := asm.Assemble(src)
	if err != nil {
		p.recordError("assemble")
		return nil, fmt.Errorf("assemble features for %s: %w", symbol, err)
	}
	p.recordStage(symbol, "assemble", start, wide.Width())

	sel := selection.NewSelector(maxFeatures, pc.CorrelationThreshold)
	sel.SetLogger(p.log)

	start = time.Now()
	res, err := sel.Select(wide, pc.TargetColumn)
	if err != nil {
		p.recordError("select")
		return nil, fmt.Errorf("select features for %s: %w", symbol, err)
	}
	p.recordStage(symbol, "select", start, len(res.Accepted))

	builder := sequence.NewBuilder(pc.SequenceLength, pc.TestSize)
	builder.SetLogger(p.log)

	start = time.Now()
	ds, err := builder.Build(res.Frame, pc.TargetColumn)
	if err != nil {
		p.recordError("build")
		return nil, fmt.Errorf("build sequences for %s: %w", symbol, err)
	}
	p.recordStage(symbol, "build", start, 0)
	if p.metrics != nil {
		p.metrics.RecordWindows(symbol, "train", len(ds.XTrain))
		p.metrics.RecordWindows(symbol, "test", len(ds.XTest))
	}

	summary := &models.DatasetSummary{
		Symbol:           symbol,
		Target:           pc.TargetColumn,
		PreparedAt:       time.Now().UTC(),
		Rows:             res.Frame.Len(),
		TotalFeatures:    wide.Width(),
		SelectedFeatures: res.Accepted,
		Ranked: lo.Map(res.Ranked, func(r selection.Rank, _ int) models.FeatureRank {
			return models.FeatureRank{Name: r.Name, Correlation: r.Corr}
		}),
		SequenceLength: builder.SequenceLength,
		TrainWindows:   len(ds.XTrain),
		TestWindows:    len(ds.XTest),
	}

	p.persist(ctx, symbol, candles, res)
	p.announce(ctx, summary)

	if p.log != nil {
		p.log.Info("dataset prepared",
			applogger.String("symbol", symbol),
			applogger.Int("rows", summary.Rows),
			applogger.Int("selected", len(summary.SelectedFeatures)),
			applogger.Int("train_windows", summary.TrainWindows),
			applogger.Int("test_windows", summary.TestWindows),
		)
	}

	return &PreparedDataset{
		Summary:   summary,
		Dataset:   ds,
		Selected:  res.Frame,
		RawRows:   len(candles),
		LastClose: candles[len(candles)-1].Close,
	}, nil
}

func (p *DatasetPreparer) loadCandles(ctx context.Context, symbol string) ([]models.Candle, error) {
	to := time.Now().UTC()
	from := to.AddDate(0, 0, -p.cfg.Pipeline.LookbackDays)

	candles, err := p.source.GetCandles(ctx, symbol, from, to)
	if err != nil {
		p.recordError("fetch")
		return nil, fmt.Errorf("load candles for %s: %w", symbol, err)
	}
	if len(candles) == 0 {
		return nil, fmt.Errorf("no candle history for %s", symbol)
	}
	return candles, nil
}

// persist is best effort; a storage failure does not fail the run.
func (p *DatasetPreparer) persist(ctx context.Context, symbol string, candles []models.Candle, res *selection.Result) {
	if p.store == nil {
		return
	}
	if err := p.store.StoreCandles(ctx, candles); err != nil {
		p.recordError("store")
		if p.log != nil {
			p.log.Warn("candle mirror failed", applogger.String("symbol", symbol), applogger.Error(err))
		}
	}

	rows := make([]models.SnapshotRow, 0, res.Frame.Len()*len(res.Accepted))
	dates := res.Frame.Dates()
	for _, name := range res.Accepted {
		col, _ := res.Frame.Column(name)
		for i, v := range col {
			rows = append(rows, models.SnapshotRow{
				Symbol: symbol,
				Date:   dates[i],
				Name:   name,
				Value:  v,
			})
		}
	}
	if err := p.store.StoreSnapshot(ctx, rows); err != nil {
		p.recordError("store")
		if p.log != nil {
			p.log.Warn("snapshot store failed", applogger.String("symbol", symbol), applogger.Error(err))
		}
	}
}

func (p *DatasetPreparer) announce(ctx context.Context, summary *models.DatasetSummary) {
	if p.publisher == nil {
		return
	}
	event := &models.DatasetEvent{
		Symbol:       summary.Symbol,
		PreparedAt:   summary.PreparedAt,
		Rows:         summary.Rows,
		Features:     summary.SelectedFeatures,
		TrainWindows: summary.TrainWindows,
		TestWindows:  summary.TestWindows,
	}
	if err := p.publisher.PublishDatasetReady(ctx, event); err != nil {
		p.recordError("publish")
		if p.log != nil {
			p.log.Warn("dataset event publish failed",
				applogger.String("symbol", summary.Symbol), applogger.Error(err))
		}
	}
}

func (p *DatasetPreparer) recordStage(symbol, stage string, start time.Time, count int) {
	if p.metrics == nil {
		return
	}
	p.metrics.RecordStageDuration(stage, time.Since(start).Seconds())
	if count > 0 {
		p.metrics.RecordFeatureCount(symbol, stage, count)
	}
}

func (p *DatasetPreparer) recordError(kind string) {
	if p.metrics != nil {
		p.metrics.RecordError(kind)
	}
}

// frameFromCandles converts sorted candles into the pipeline's input
// table. Duplicate dates keep the first occurrence.
func frameFromCandles(candles []models.Candle) (*frame.Frame, error) {
	unique := make([]models.Candle, 0, len(candles))
	for i, c := range candles {
		if i > 0 && !c.Date.After(unique[len(unique)-1].Date) {
			continue
		}
		unique = append(unique, c)
	}

	dates := lo.Map(unique, func(c models.Candle, _ int) time.Time { return c.Date })
	f, err := frame.New(dates)
	if err != nil {
		return nil, err
	}

	cols := map[string]func(models.Candle) float64{
		"Open":   func(c models.Candle) float64 { return c.Open },
		"High":   func(c models.Candle) float64 { return c.High },
		"Low":    func(c models.Candle) float64 { return c.Low },
		"Close":  func(c models.Candle) float64 { return c.Close },
		"Volume": func(c models.Candle) float64 { return c.Volume },
	}
	for _, name := range []string{"Open", "High", "Low", "Close", "Volume"} {
		get := cols[name]
		if err := f.AddColumn(name, lo.Map(unique, func(c models.Candle, _ int) float64 { return get(c) })); err != nil {
			return nil, err
		}
	}
	return f, nil
}
