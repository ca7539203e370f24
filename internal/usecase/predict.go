package usecase

import (
	"context"
	"fmt"
	"time"

	"FeatureMill/internal/domain/models"
	"FeatureMill/internal/frame"
	"FeatureMill/internal/sequence"
	"FeatureMill/internal/service/model"
	"FeatureMill/pkg/config"
	applogger "FeatureMill/pkg/logger"
)

// Predictor produces multi-day price forecasts by rolling the last
// scaled window through the model service one step at a time.
type Predictor struct {
	cfg   *config.Config
	prep  *DatasetPreparer
	model *model.Client
	log   *applogger.Logger
}

func NewPredictor(cfg *config.Config, prep *DatasetPreparer, mc *model.Client) *Predictor {
	return &Predictor{cfg: cfg, prep: prep, model: mc}
}

// SetLogger injects a structured logger.
func (p *Predictor) SetLogger(l *applogger.Logger) { p.log = l }

// Predict forecasts daysAhead closing prices. daysAhead <= 0 falls back
// to the configured horizon.
func (p *Predictor) Predict(ctx context.Context, symbol string, daysAhead int) (*models.Forecast, error) {
	if daysAhead <= 0 {
		daysAhead = p.cfg.Model.DaysAhead
	}

	prepared, err := p.prep.Prepare(ctx, symbol, p.cfg.Pipeline.ModelMaxFeatures)
	if err != nil {
		return nil, err
	}
	if prepared.RawRows < p.cfg.Pipeline.MinPredictRows {
		return nil, &frame.InsufficientDataError{
			Need: p.cfg.Pipeline.MinPredictRows,
			Got:  prepared.RawRows,
		}
	}

	ds := prepared.Dataset
	window := lastWindow(ds)
	if window == nil {
		return nil, fmt.Errorf("no windows available for %s", symbol)
	}

	now := time.Now().UTC()
	points := make([]models.PricePoint, 0, daysAhead)
	for i := 0; i < daysAhead; i++ {
		scaled, err := p.model.Predict(ctx, &models.PredictRequest{Symbol: symbol, Window: window})
		if err != nil {
			return nil, fmt.Errorf("predict %s day %d: %w", symbol, i+1, err)
		}
		points = append(points, models.PricePoint{
			Date:  now.AddDate(0, 0, i+1),
			Price: ds.TargetScaler.InverseValue(0, scaled),
		})
		window = rollWindow(window, scaled)
	}

	if p.log != nil {
		p.log.Info("forecast produced",
			applogger.String("symbol", symbol),
			applogger.Int("days", daysAhead),
			applogger.Float64("last_price", prepared.LastClose),
		)
	}

	return &models.Forecast{
		Symbol:       symbol,
		GeneratedAt:  now,
		CurrentPrice: prepared.LastClose,
		Predictions:  points,
	}, nil
}

// lastWindow deep-copies the most recent input window, preferring the
// test split.
func lastWindow(ds *sequence.Dataset) [][]float64 {
	var src [][]float64
	switch {
	case len(ds.XTest) > 0:
		src = ds.XTest[len(ds.XTest)-1]
	case len(ds.XTrain) > 0:
		src = ds.XTrain[len(ds.XTrain)-1]
	default:
		return nil
	}

	out := make([][]float64, len(src))
	for i, row := range src {
		out[i] = append([]float64(nil), row...)
	}
	return out
}

// rollWindow advances the window one step: rows shift up by one and the
// vacated last row repeats the evicted first row with its leading
// feature replaced by the scaled prediction.
func rollWindow(window [][]float64, scaled float64) [][]float64 {
	if len(window) == 0 {
		return window
	}
	first := append([]float64(nil), window[0]...)
	if len(first) > 0 {
		first[0] = scaled
	}
	return append(window[1:], first)
}
