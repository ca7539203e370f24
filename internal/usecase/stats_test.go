package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"FeatureMill/internal/stats"
	"FeatureMill/pkg/cache"
)

func TestStatsProviderComputesAndCaches(t *testing.T) {
	cfg := testConfig(t)
	source := &fakeSource{candles: testCandles(120)}
	provider := NewStatsProvider(cfg, source, stats.NewCalculator())

	mem := cache.NewMemory(time.Minute)
	defer mem.Close()
	provider.SetCache(mem)

	first, err := provider.Get(context.Background(), "TEST")
	require.NoError(t, err)
	assert.Equal(t, "TEST", first.Symbol)
	assert.NotZero(t, first.Metrics.CurrentPrice)

	// The second read must come from cache, not the source.
	source.candles = nil
	second, err := provider.Get(context.Background(), "TEST")
	require.NoError(t, err)
	assert.Equal(t, first.Metrics.CurrentPrice, second.Metrics.CurrentPrice)
	assert.Len(t, second.Chart.Dates, 120)
}

func TestStatsProviderWithoutCache(t *testing.T) {
	cfg := testConfig(t)
	provider := NewStatsProvider(cfg, &fakeSource{candles: testCandles(120)}, stats.NewCalculator())

	bundle, err := provider.Get(context.Background(), "TEST")
	require.NoError(t, err)
	assert.Len(t, bundle.Chart.Close, 120)
}

func TestStatsProviderSourceError(t *testing.T) {
	cfg := testConfig(t)
	provider := NewStatsProvider(cfg, &fakeSource{err: errors.New("unreachable")}, stats.NewCalculator())

	_, err := provider.Get(context.Background(), "TEST")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load candles")
}
