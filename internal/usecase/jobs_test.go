package usecase

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrepareJobHandle(t *testing.T) {
	cfg := testConfig(t)
	source := &fakeSource{candles: testCandles(250)}
	job := NewPrepareJob(NewDatasetPreparer(cfg, source), nil)

	assert.Equal(t, "dataset-prepare", job.Name())
	assert.Equal(t, PrepareJobType, job.Type())

	payload, err := json.Marshal(PrepareJobPayload{Symbol: "TEST"})
	require.NoError(t, err)
	require.NoError(t, job.Handle(context.Background(), payload))
	assert.Equal(t, "TEST", source.symbol)
}

func TestPrepareJobRejectsBadPayload(t *testing.T) {
	cfg := testConfig(t)
	job := NewPrepareJob(NewDatasetPreparer(cfg, &fakeSource{}), nil)

	err := job.Handle(context.Background(), json.RawMessage(`{`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse prepare payload")

	err = job.Handle(context.Background(), json.RawMessage(`{}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing symbol")
}
