package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"FeatureMill/internal/domain/models"
	"FeatureMill/internal/frame"
	"FeatureMill/internal/service/model"
	xhttp "FeatureMill/pkg/http"
)

func modelServer(t *testing.T, scaled float64, calls *[]models.PredictRequest) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/model/predict":
			var req models.PredictRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			if calls != nil {
				*calls = append(*calls, req)
			}
			json.NewEncoder(w).Encode(models.PredictResult{Scaled: scaled})
		case "/model/train":
			var req models.TrainRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			json.NewEncoder(w).Encode(models.TrainResult{
				Symbol: req.Symbol, Epochs: 50, TrainLoss: 0.01, TestLoss: 0.02,
			})
		default:
			http.NotFound(w, r)
		}
	}))
}

func TestPredictRollsWindowForward(t *testing.T) {
	var calls []models.PredictRequest
	srv := modelServer(t, 0.5, &calls)
	defer srv.Close()

	cfg := testConfig(t)
	prep := NewDatasetPreparer(cfg, &fakeSource{candles: testCandles(250)})
	mc := model.NewClient(xhttp.NewClient(), srv.URL)
	pred := NewPredictor(cfg, prep, mc)

	forecast, err := pred.Predict(context.Background(), "TEST", 3)
	require.NoError(t, err)

	require.Len(t, forecast.Predictions, 3)
	require.Len(t, calls, 3)
	assert.Equal(t, "TEST", forecast.Symbol)
	assert.Equal(t, testCandles(250)[249].Close, forecast.CurrentPrice)

	// Forecast dates step one day at a time from generation time.
	for i, p := range forecast.Predictions {
		assert.Equal(t, forecast.GeneratedAt.AddDate(0, 0, i+1).Day(), p.Date.Day(), "point %d", i)
	}

	// A constant scaled output of 0.5 inverts to the midpoint of the
	// fitted close range on every step.
	ds := calls[0].Window
	require.NotEmpty(t, ds)
	for _, p := range forecast.Predictions {
		assert.Equal(t, forecast.Predictions[0].Price, p.Price)
	}

	// The second call's window is the first call's shifted by one row
	// with the prediction written into the vacated slot.
	w0, w1 := calls[0].Window, calls[1].Window
	require.Equal(t, len(w0), len(w1))
	assert.Equal(t, w0[1], w1[0])
	assert.Equal(t, 0.5, w1[len(w1)-1][0])
	assert.Equal(t, w0[0][1:], w1[len(w1)-1][1:])
}

func TestPredictInsufficientHistory(t *testing.T) {
	srv := modelServer(t, 0.5, nil)
	defer srv.Close()

	cfg := testConfig(t)
	cfg.Pipeline.MinPredictRows = 1000
	prep := NewDatasetPreparer(cfg, &fakeSource{candles: testCandles(250)})
	pred := NewPredictor(cfg, prep, model.NewClient(xhttp.NewClient(), srv.URL))

	_, err := pred.Predict(context.Background(), "TEST", 3)
	var insufficient *frame.InsufficientDataError
	require.True(t, errors.As(err, &insufficient))
	assert.Equal(t, 1000, insufficient.Need)
	assert.Equal(t, 250, insufficient.Got)
}

func TestPredictDefaultHorizon(t *testing.T) {
	var calls []models.PredictRequest
	srv := modelServer(t, 0.4, &calls)
	defer srv.Close()

	cfg := testConfig(t)
	cfg.Model.DaysAhead = 2
	prep := NewDatasetPreparer(cfg, &fakeSource{candles: testCandles(250)})
	pred := NewPredictor(cfg, prep, model.NewClient(xhttp.NewClient(), srv.URL))

	forecast, err := pred.Predict(context.Background(), "TEST", 0)
	require.NoError(t, err)
	assert.Len(t, forecast.Predictions, 2)
}

func TestRollWindow(t *testing.T) {
	window := [][]float64{
		{0.1, 0.2, 0.3},
		{0.4, 0.5, 0.6},
		{0.7, 0.8, 0.9},
	}
	rolled := rollWindow(window, 0.99)

	require.Len(t, rolled, 3)
	assert.Equal(t, []float64{0.4, 0.5, 0.6}, rolled[0])
	assert.Equal(t, []float64{0.7, 0.8, 0.9}, rolled[1])
	assert.Equal(t, []float64{0.99, 0.2, 0.3}, rolled[2])
}

func TestTrainDelegatesToModelService(t *testing.T) {
	srv := modelServer(t, 0.5, nil)
	defer srv.Close()

	cfg := testConfig(t)
	prep := NewDatasetPreparer(cfg, &fakeSource{candles: testCandles(250)})
	trainer := NewTrainer(cfg, prep, model.NewClient(xhttp.NewClient(), srv.URL))

	result, err := trainer.Train(context.Background(), "TEST")
	require.NoError(t, err)
	assert.Equal(t, "TEST", result.Symbol)
	assert.Equal(t, 50, result.Epochs)
	assert.InDelta(t, 0.02, result.TestLoss, 1e-12)
}

func TestTrainInsufficientHistory(t *testing.T) {
	srv := modelServer(t, 0.5, nil)
	defer srv.Close()

	cfg := testConfig(t)
	prep := NewDatasetPreparer(cfg, &fakeSource{candles: testCandles(250)})
	cfg.Pipeline.MinTrainRows = 500
	trainer := NewTrainer(cfg, prep, model.NewClient(xhttp.NewClient(), srv.URL))

	_, err := trainer.Train(context.Background(), "TEST")
	var insufficient *frame.InsufficientDataError
	require.True(t, errors.As(err, &insufficient))
}
