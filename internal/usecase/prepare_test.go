package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/creasty/defaults"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"FeatureMill/internal/domain/models"
	"FeatureMill/pkg/config"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	var c config.Config
	require.NoError(t, defaults.Set(&c))
	return &c
}

// fakeSource serves a fixed candle slice and records the requested range.
type fakeSource struct {
	candles []models.Candle
	err     error

	symbol   string
	from, to time.Time
}

func (f *fakeSource) GetCandles(_ context.Context, symbol string, from, to time.Time) ([]models.Candle, error) {
	f.symbol, f.from, f.to = symbol, from, to
	return f.candles, f.err
}

type fakeStore struct {
	candles  []models.Candle
	snapshot []models.SnapshotRow
	err      error
}

func (f *fakeStore) Init(context.Context) error { return nil }
func (f *fakeStore) StoreCandles(_ context.Context, c []models.Candle) error {
	f.candles = c
	return f.err
}
func (f *fakeStore) StoreSnapshot(_ context.Context, rows []models.SnapshotRow) error {
	f.snapshot = rows
	return f.err
}
func (f *fakeStore) Health(context.Context) error { return nil }
func (f *fakeStore) Close() error                 { return nil }

type fakePublisher struct {
	events []*models.DatasetEvent
	err    error
}

func (f *fakePublisher) PublishDatasetReady(_ context.Context, e *models.DatasetEvent) error {
	f.events = append(f.events, e)
	return f.err
}
func (f *fakePublisher) Close() error { return nil }

type fakeMetrics struct {
	runs    map[string]int
	errs    map[string]int
	windows map[string]int
}

func newFakeMetrics() *fakeMetrics {
	return &fakeMetrics{runs: map[string]int{}, errs: map[string]int{}, windows: map[string]int{}}
}
func (f *fakeMetrics) RecordRun(_, outcome string)        { f.runs[outcome]++ }
func (f *fakeMetrics) RecordError(kind string)            { f.errs[kind]++ }
func (f *fakeMetrics) RecordStageDuration(string, float64) {}
func (f *fakeMetrics) RecordFeatureCount(string, string, int) {}
func (f *fakeMetrics) RecordWindows(_, split string, n int) { f.windows[split] = n }

// testCandles builds a mildly oscillating price history long enough for
// the default 60-row sequence length.
func testCandles(n int) []models.Candle {
	out := make([]models.Candle, n)
	for i := 0; i < n; i++ {
		base := 100 + float64(i)*0.5
		wiggle := float64(i%5) - 2
		price := base + wiggle
		out[i] = models.Candle{
			Date:   time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, i),
			Symbol: "TEST",
			Open:   price - 0.3,
			High:   price + 1.2,
			Low:    price - 1.1,
			Close:  price,
			Volume: 1_000_000 + float64((i%11)-5)*10_000,
		}
	}
	return out
}

func TestPrepareEndToEnd(t *testing.T) {
	cfg := testConfig(t)
	source := &fakeSource{candles: testCandles(250)}
	store := &fakeStore{}
	pub := &fakePublisher{}
	metrics := newFakeMetrics()

	prep := NewDatasetPreparer(cfg, source)
	prep.SetStore(store)
	prep.SetPublisher(pub)
	prep.SetMetrics(metrics)

	out, err := prep.Prepare(context.Background(), "TEST", 0)
	require.NoError(t, err)

	assert.Equal(t, "TEST", source.symbol)
	assert.Equal(t, 250, out.RawRows)
	assert.Equal(t, testCandles(250)[249].Close, out.LastClose)

	s := out.Summary
	assert.Equal(t, "TEST", s.Symbol)
	assert.Equal(t, "Close", s.Target)
	assert.Equal(t, 60, s.SequenceLength)
	assert.NotEmpty(t, s.SelectedFeatures)
	assert.LessOrEqual(t, len(s.SelectedFeatures), cfg.Pipeline.MaxFeatures)
	assert.NotEmpty(t, s.Ranked)
	assert.Equal(t, s.TrainWindows, len(out.Dataset.XTrain))
	assert.Equal(t, s.TestWindows, len(out.Dataset.XTest))
	assert.Equal(t, s.TrainWindows+s.TestWindows, out.Dataset.Windows())

	// The selected frame leads with the target.
	require.NotEmpty(t, out.Selected.Names())
	assert.Equal(t, "Close", out.Selected.Names()[0])

	// Persistence mirrors raw candles and writes one snapshot row per
	// selected cell.
	assert.Len(t, store.candles, 250)
	assert.Len(t, store.snapshot, s.Rows*len(s.SelectedFeatures))

	require.Len(t, pub.events, 1)
	assert.Equal(t, "TEST", pub.events[0].Symbol)
	assert.Equal(t, s.Rows, pub.events[0].Rows)

	assert.Equal(t, 1, metrics.runs["ok"])
	assert.Equal(t, s.TrainWindows, metrics.windows["train"])
}

func TestPrepareStorageFailureIsBestEffort(t *testing.T) {
	cfg := testConfig(t)
	prep := NewDatasetPreparer(cfg, &fakeSource{candles: testCandles(250)})
	prep.SetStore(&fakeStore{err: errors.New("clickhouse down")})

	_, err := prep.Prepare(context.Background(), "TEST", 0)
	require.NoError(t, err)
}

func TestPrepareNoHistory(t *testing.T) {
	cfg := testConfig(t)
	metrics := newFakeMetrics()
	prep := NewDatasetPreparer(cfg, &fakeSource{})
	prep.SetMetrics(metrics)

	_, err := prep.Prepare(context.Background(), "NOPE", 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no candle history")
	assert.Equal(t, 1, metrics.runs["error"])
}

func TestPrepareSourceFailure(t *testing.T) {
	cfg := testConfig(t)
	metrics := newFakeMetrics()
	prep := NewDatasetPreparer(cfg, &fakeSource{err: errors.New("boom")})
	prep.SetMetrics(metrics)

	_, err := prep.Prepare(context.Background(), "TEST", 0)
	require.Error(t, err)
	assert.Equal(t, 1, metrics.errs["fetch"])
}

func TestPrepareRequestsLookbackRange(t *testing.T) {
	cfg := testConfig(t)
	source := &fakeSource{candles: testCandles(250)}
	prep := NewDatasetPreparer(cfg, source)

	_, err := prep.Prepare(context.Background(), "TEST", 0)
	require.NoError(t, err)

	span := source.to.Sub(source.from)
	assert.InDelta(t, float64(cfg.Pipeline.LookbackDays), span.Hours()/24, 1.5)
}

func TestFrameFromCandlesDropsDuplicateDates(t *testing.T) {
	candles := testCandles(5)
	candles[2].Date = candles[1].Date
	candles[2].Close = -1

	f, err := frameFromCandles(candles)
	require.NoError(t, err)
	assert.Equal(t, 4, f.Len())

	closes, _ := f.Column("Close")
	// The first occurrence wins.
	assert.NotContains(t, closes, -1.0)
}
