package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"FeatureMill/internal/domain/models"
	domrepo "FeatureMill/internal/domain/repository"
	"FeatureMill/internal/stats"
	"FeatureMill/pkg/cache"
	"FeatureMill/pkg/config"
	applogger "FeatureMill/pkg/logger"
)

// StatsProvider serves statistics bundles with TTL caching in front of
// the candle source.
type StatsProvider struct {
	cfg    *config.Config
	source domrepo.CandleSource
	calc   *stats.Calculator
	cache  cache.Cache
	log    *applogger.Logger
}

func NewStatsProvider(cfg *config.Config, source domrepo.CandleSource, calc *stats.Calculator) *StatsProvider {
	return &StatsProvider{cfg: cfg, source: source, calc: calc}
}

// SetLogger injects a structured logger.
func (s *StatsProvider) SetLogger(l *applogger.Logger) { s.log = l }

// SetCache enables read-through caching of bundles.
func (s *StatsProvider) SetCache(c cache.Cache) { s.cache = c }

// Get returns the statistics bundle for one symbol.
func (s *StatsProvider) Get(ctx context.Context, symbol string) (*models.StatsBundle, error) {
	key := "stats:" + symbol

	if s.cache != nil {
		var cached models.StatsBundle
		err := s.cache.Get(ctx, key, &cached)
		if err == nil {
			return &cached, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) && s.log != nil {
			s.log.Warn("stats cache read failed", applogger.String("symbol", symbol), applogger.Error(err))
		}
	}

	to := time.Now().UTC()
	from := to.AddDate(0, 0, -s.cfg.Pipeline.LookbackDays)
	candles, err := s.source.GetCandles(ctx, symbol, from, to)
	if err != nil {
		return nil, fmt.Errorf("load candles for %s: %w", symbol, err)
	}

	bundle, err := s.calc.Compute(symbol, candles)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, bundle, s.cfg.Cache.StatsTTL); err != nil && s.log != nil {
			s.log.Warn("stats cache write failed", applogger.String("symbol", symbol), applogger.Error(err))
		}
	}
	return bundle, nil
}
