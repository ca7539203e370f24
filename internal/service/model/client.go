package model

import (
	"context"
	"fmt"
	"time"

	"FeatureMill/internal/domain/models"
	xhttp "FeatureMill/pkg/http"
	applogger "FeatureMill/pkg/logger"
)

// Client talks to the external sequence-model service. Training and
// inference are delegated; this service only ships scaled tensors and
// reads scaled outputs back.
type Client struct {
	http    *xhttp.Client
	baseURL string
	l       *applogger.Logger
}

func NewClient(client *xhttp.Client, baseURL string) *Client {
	return &Client{http: client, baseURL: baseURL}
}

// SetLogger injects a structured logger.
func (c *Client) SetLogger(l *applogger.Logger) { c.l = l }

// Train posts a prepared dataset and waits for the training report.
func (c *Client) Train(ctx context.Context, req *models.TrainRequest) (*models.TrainResult, error) {
	start := time.Now()
	var result models.TrainResult
	err := c.http.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodPost,
		URL:    c.baseURL + "/model/train",
		Body:   req,
	}, &result)
	if err != nil {
		return nil, fmt.Errorf("model train %s: %w", req.Symbol, err)
	}
	if c.l != nil {
		c.l.Info("model trained",
			applogger.String("symbol", req.Symbol),
			applogger.Int("train_windows", len(req.XTrain)),
			applogger.Float64("test_loss", result.TestLoss),
			applogger.Duration("duration_ms", time.Since(start)),
		)
	}
	return &result, nil
}

// Predict sends one scaled window and returns the scaled output.
func (c *Client) Predict(ctx context.Context, req *models.PredictRequest) (float64, error) {
	var result models.PredictResult
	err := c.http.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodPost,
		URL:    c.baseURL + "/model/predict",
		Body:   req,
	}, &result)
	if err != nil {
		return 0, fmt.Errorf("model predict %s: %w", req.Symbol, err)
	}
	return result.Scaled, nil
}
