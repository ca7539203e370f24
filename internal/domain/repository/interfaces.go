package repository

import (
	"context"
	"time"

	"FeatureMill/internal/domain/models"
)

// CandleSource provides daily OHLCV history for one symbol, sorted by
// date ascending.
type CandleSource interface {
	GetCandles(ctx context.Context, symbol string, from, to time.Time) ([]models.Candle, error)
}

// SnapshotStore persists candles and selected-feature snapshots.
type SnapshotStore interface {
	Init(ctx context.Context) error
	StoreCandles(ctx context.Context, candles []models.Candle) error
	StoreSnapshot(ctx context.Context, rows []models.SnapshotRow) error
	Health(ctx context.Context) error
	Close() error
}

// Publisher emits dataset-ready events to downstream consumers.
type Publisher interface {
	PublishDatasetReady(ctx context.Context, event *models.DatasetEvent) error
	Close() error
}

// Metrics records pipeline measurements.
type Metrics interface {
	RecordRun(symbol, status string)
	RecordError(kind string)
	RecordStageDuration(stage string, seconds float64)
	RecordFeatureCount(symbol, stage string, count int)
	RecordWindows(symbol, split string, count int)
}
