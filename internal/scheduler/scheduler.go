package scheduler

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"

	"FeatureMill/internal/usecase"
	"FeatureMill/pkg/config"
	applogger "FeatureMill/pkg/logger"
	"FeatureMill/pkg/queue"
)

// Scheduler enqueues nightly dataset refreshes for the configured
// symbols. Runs go through the queue so the workers execute them with
// the usual retry policy.
type Scheduler struct {
	cron    *cron.Cron
	cfg     *config.Config
	q       *queue.RedisQueue
	log     *applogger.Logger
	entryID cron.EntryID
}

func New(cfg *config.Config, q *queue.RedisQueue, log *applogger.Logger) *Scheduler {
	return &Scheduler{
		cron: cron.New(cron.WithSeconds()),
		cfg:  cfg,
		q:    q,
		log:  log,
	}
}

// Start registers the refresh task and begins the cron loop.
func (s *Scheduler) Start() error {
	id, err := s.cron.AddFunc(s.cfg.Scheduler.Spec, s.refreshAll)
	if err != nil {
		return fmt.Errorf("register refresh task: %w", err)
	}
	s.entryID = id
	s.cron.Start()
	s.log.Info("scheduler started",
		applogger.String("spec", s.cfg.Scheduler.Spec),
		applogger.Strings("symbols", s.cfg.Scheduler.Symbols),
	)
	return nil
}

// Stop halts the cron loop, waiting for a running task up to ctx.
func (s *Scheduler) Stop(ctx context.Context) error {
	done := s.cron.Stop().Done()
	select {
	case <-done:
	case <-ctx.Done():
		return fmt.Errorf("scheduler stop: %w", ctx.Err())
	}
	s.log.Info("scheduler stopped")
	return nil
}

func (s *Scheduler) refreshAll() {
	ctx := context.Background()
	for _, symbol := range s.cfg.Scheduler.Symbols {
		payload := usecase.PrepareJobPayload{Symbol: symbol}
		if err := s.q.Publish(ctx, usecase.PrepareJobType, payload); err != nil {
			s.log.Error("refresh enqueue failed",
				applogger.String("symbol", symbol), applogger.Error(err))
			continue
		}
		s.log.Debug("refresh enqueued", applogger.String("symbol", symbol))
	}
}
