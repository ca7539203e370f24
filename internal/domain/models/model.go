package models

import "time"

// TrainRequest is posted to the model service to fit a new model.
type TrainRequest struct {
	Symbol         string        `json:"symbol"`
	FeatureNames   []string      `json:"feature_names"`
	SequenceLength int           `json:"sequence_length"`
	XTrain         [][][]float64 `json:"x_train"`
	YTrain         []float64     `json:"y_train"`
	XTest          [][][]float64 `json:"x_test"`
	YTest          []float64     `json:"y_test"`
}

// TrainResult is the model service's training report.
type TrainResult struct {
	Symbol    string  `json:"symbol"`
	Epochs    int     `json:"epochs"`
	TrainLoss float64 `json:"train_loss"`
	TestLoss  float64 `json:"test_loss"`
}

// PredictRequest carries one scaled input window.
type PredictRequest struct {
	Symbol string      `json:"symbol"`
	Window [][]float64 `json:"window"`
}

// PredictResult is the scaled model output for one window.
type PredictResult struct {
	Scaled float64 `json:"scaled"`
}

// PricePoint is one predicted close price.
type PricePoint struct {
	Date  time.Time `json:"date"`
	Price float64   `json:"price"`
}

// Forecast is a multi-day price prediction.
type Forecast struct {
	Symbol       string       `json:"symbol"`
	GeneratedAt  time.Time    `json:"generated_at"`
	CurrentPrice float64      `json:"current_price"`
	Predictions  []PricePoint `json:"predictions"`
}
