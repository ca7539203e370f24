package usecase

import (
	"context"
	"encoding/json"
	"fmt"

	applogger "FeatureMill/pkg/logger"
	"FeatureMill/pkg/queue"
)

// PrepareJobType is the queue message type for async dataset runs.
const PrepareJobType = "dataset.prepare"

// PrepareJobPayload identifies the symbol to run.
type PrepareJobPayload struct {
	Symbol string `json:"symbol"`
}

// PrepareJob executes queued dataset-preparation runs.
type PrepareJob struct {
	prep *DatasetPreparer
	log  *applogger.Logger
}

func NewPrepareJob(prep *DatasetPreparer, log *applogger.Logger) *PrepareJob {
	return &PrepareJob{prep: prep, log: log}
}

var _ queue.Job = (*PrepareJob)(nil)

func (j *PrepareJob) Name() string { return "dataset-prepare" }
func (j *PrepareJob) Type() string { return PrepareJobType }

func (j *PrepareJob) Handle(ctx context.Context, payload json.RawMessage) error {
	p, err := queue.ParsePayload[PrepareJobPayload](payload)
	if err != nil {
		return fmt.Errorf("parse prepare payload: %w", err)
	}
	if p.Symbol == "" {
		return fmt.Errorf("prepare payload missing symbol")
	}

	if _, err := j.prep.Prepare(ctx, p.Symbol, 0); err != nil {
		return fmt.Errorf("prepare %s: %w", p.Symbol, err)
	}
	if j.log != nil {
		j.log.Info("queued preparation done", applogger.String("symbol", p.Symbol))
	}
	return nil
}
