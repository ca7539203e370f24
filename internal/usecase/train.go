package usecase

import (
	"context"
	"fmt"

	"FeatureMill/internal/domain/models"
	"FeatureMill/internal/frame"
	"FeatureMill/internal/service/model"
	"FeatureMill/pkg/config"
	applogger "FeatureMill/pkg/logger"
)

// Trainer prepares a reduced dataset and delegates model fitting to the
// external model service.
type Trainer struct {
	cfg   *config.Config
	prep  *DatasetPreparer
	model *model.Client
	log   *applogger.Logger
}

func NewTrainer(cfg *config.Config, prep *DatasetPreparer, mc *model.Client) *Trainer {
	return &Trainer{cfg: cfg, prep: prep, model: mc}
}

// SetLogger injects a structured logger.
func (t *Trainer) SetLogger(l *applogger.Logger) { t.log = l }

// Train runs the pipeline with the training feature cap and posts the
// dataset to the model service.
func (t *Trainer) Train(ctx context.Context, symbol string) (*models.TrainResult, error) {
	prepared, err := t.prep.Prepare(ctx, symbol, t.cfg.Pipeline.ModelMaxFeatures)
	if err != nil {
		return nil, err
	}
	if prepared.RawRows < t.cfg.Pipeline.MinTrainRows {
		return nil, &frame.InsufficientDataError{
			Need: t.cfg.Pipeline.MinTrainRows,
			Got:  prepared.RawRows,
		}
	}

	ds := prepared.Dataset
	result, err := t.model.Train(ctx, &models.TrainRequest{
		Symbol:         symbol,
		FeatureNames:   ds.FeatureNames,
		SequenceLength: prepared.Summary.SequenceLength,
		XTrain:         ds.XTrain,
		YTrain:         ds.YTrain,
		XTest:          ds.XTest,
		YTest:          ds.YTest,
	})
	if err != nil {
		return nil, fmt.Errorf("train %s: %w", symbol, err)
	}

	if t.log != nil {
		t.log.Info("training delegated",
			applogger.String("symbol", symbol),
			applogger.Int("features", len(ds.FeatureNames)),
			applogger.Float64("test_loss", result.TestLoss),
		)
	}
	return result, nil
}
