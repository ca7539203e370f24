package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"FeatureMill/internal/domain/models"
	domrepo "FeatureMill/internal/domain/repository"
	pkgch "FeatureMill/pkg/clickhouse"
	applogger "FeatureMill/pkg/logger"
)

const (
	candleTable   = "featuremill.daily_candles"
	snapshotTable = "featuremill.feature_snapshots"
)

var schemaDDL = []string{
	`CREATE DATABASE IF NOT EXISTS featuremill`,
	`CREATE TABLE IF NOT EXISTS ` + candleTable + ` (
        date   Date,
        symbol LowCardinality(String),
        open   Float64,
        high   Float64,
        low    Float64,
        close  Float64,
        volume Float64
    ) ENGINE = ReplacingMergeTree
    ORDER BY (symbol, date)`,
	`CREATE TABLE IF NOT EXISTS ` + snapshotTable + ` (
        date   Date,
        symbol LowCardinality(String),
        name   LowCardinality(String),
        value  Float64
    ) ENGINE = ReplacingMergeTree
    ORDER BY (symbol, name, date)`,
}

// CHCandleStore implements CandleSource and SnapshotStore backed by
// ClickHouse.
type CHCandleStore struct {
	client *pkgch.Client
	db     *sql.DB
	l      *applogger.Logger
}

func NewCHCandleStore(ch *pkgch.Client) *CHCandleStore {
	return &CHCandleStore{client: ch, db: ch.DB()}
}

// SetLogger injects a structured logger.
func (s *CHCandleStore) SetLogger(l *applogger.Logger) { s.l = l }

var (
	_ domrepo.CandleSource  = (*CHCandleStore)(nil)
	_ domrepo.SnapshotStore = (*CHCandleStore)(nil)
)

// Init ensures the database and tables exist.
func (s *CHCandleStore) Init(ctx context.Context) error {
	if err := s.client.InitSchema(ctx, schemaDDL); err != nil {
		return fmt.Errorf("init schema: %w", err)
	}
	if s.l != nil {
		s.l.Info("clickhouse schema ready")
	}
	return nil
}

func (s *CHCandleStore) GetCandles(ctx context.Context, symbol string, from, to time.Time) ([]models.Candle, error) {
	start := time.Now()
	const q = `
        SELECT date, symbol, open, high, low, close, volume
        FROM ` + candleTable + ` FINAL
        WHERE symbol = ? AND date >= ? AND date <= ?
        ORDER BY date ASC
    `
	rows, err := s.db.QueryContext(ctx, q, symbol, from, to)
	if err != nil {
		if s.l != nil {
			s.l.Error("clickhouse candle query error",
				applogger.String("symbol", symbol),
				applogger.Error(err),
			)
		}
		return nil, fmt.Errorf("get candles: %w", err)
	}
	defer rows.Close()

	out := make([]models.Candle, 0, 512)
	for rows.Next() {
		var c models.Candle
		if err := rows.Scan(&c.Date, &c.Symbol, &c.Open, &c.High, &c.Low, &c.Close, &c.Volume); err != nil {
			return nil, fmt.Errorf("scan candle: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}

	if s.l != nil {
		s.l.Info("clickhouse candles loaded",
			applogger.String("symbol", symbol),
			applogger.Int("rows", len(out)),
			applogger.Duration("duration_ms", time.Since(start)),
		)
	}
	return out, nil
}

// StoreCandles inserts daily candles in one batch.
func (s *CHCandleStore) StoreCandles(ctx context.Context, candles []models.Candle) error {
	if len(candles) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin batch: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO `+candleTable+` (date, symbol, open, high, low, close, volume)`)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("prepare candle insert: %w", err)
	}
	defer stmt.Close()

	for _, c := range candles {
		if _, err := stmt.ExecContext(ctx, c.Date, c.Symbol, c.Open, c.High, c.Low, c.Close, c.Volume); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("append candle: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit candle batch: %w", err)
	}
	if s.l != nil {
		s.l.Debug("candles stored", applogger.Int("rows", len(candles)))
	}
	return nil
}

// StoreSnapshot inserts selected-feature values in one batch.
func (s *CHCandleStore) StoreSnapshot(ctx context.Context, rows []models.SnapshotRow) error {
	if len(rows) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin batch: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO `+snapshotTable+` (date, symbol, name, value)`)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("prepare snapshot insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range rows {
		if _, err := stmt.ExecContext(ctx, r.Date, r.Symbol, r.Name, r.Value); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("append snapshot row: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit snapshot batch: %w", err)
	}
	if s.l != nil {
		s.l.Debug("snapshot stored", applogger.Int("rows", len(rows)))
	}
	return nil
}

func (s *CHCandleStore) Health(ctx context.Context) error {
	return s.client.Health(ctx)
}

func (s *CHCandleStore) Close() error {
	return s.client.Close()
}
