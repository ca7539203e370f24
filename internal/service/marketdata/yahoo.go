package marketdata

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"time"

	"FeatureMill/internal/domain/models"
	domrepo "FeatureMill/internal/domain/repository"
	xhttp "FeatureMill/pkg/http"
	applogger "FeatureMill/pkg/logger"
	"FeatureMill/pkg/util"
)

// ChartSource fetches daily candles from a Yahoo-chart-style HTTP API.
// It is the alternative CandleSource for symbols not mirrored into
// ClickHouse yet.
type ChartSource struct {
	client  *xhttp.Client
	baseURL string
	l       *applogger.Logger
}

func NewChartSource(client *xhttp.Client, baseURL string) *ChartSource {
	return &ChartSource{client: client, baseURL: baseURL}
}

// SetLogger injects a structured logger.
func (s *ChartSource) SetLogger(l *applogger.Logger) { s.l = l }

var _ domrepo.CandleSource = (*ChartSource)(nil)

type chartResponse struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []*float64 `json:"open"`
					High   []*float64 `json:"high"`
					Low    []*float64 `json:"low"`
					Close  []*float64 `json:"close"`
					Volume []*float64 `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

func (s *ChartSource) GetCandles(ctx context.Context, symbol string, from, to time.Time) ([]models.Candle, error) {
	var payload chartResponse
	err := s.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    fmt.Sprintf("%s/v8/finance/chart/%s", s.baseURL, url.PathEscape(symbol)),
		Headers: map[string]string{
			"User-Agent": "Mozilla/5.0",
		},
		QueryParams: map[string][]string{
			"interval": {"1d"},
			"period1":  {strconv.FormatInt(from.Unix(), 10)},
			"period2":  {strconv.FormatInt(to.Unix(), 10)},
		},
	}, &payload)
	if err != nil {
		return nil, fmt.Errorf("chart fetch %s: %w", symbol, err)
	}

	if payload.Chart.Error != nil {
		return nil, fmt.Errorf("chart api error for %s: %s", symbol, payload.Chart.Error.Description)
	}
	if len(payload.Chart.Result) == 0 || len(payload.Chart.Result[0].Indicators.Quote) == 0 {
		return nil, fmt.Errorf("chart api returned no data for %s", symbol)
	}

	result := payload.Chart.Result[0]
	quote := result.Indicators.Quote[0]
	candles := make([]models.Candle, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		o := deref(quote.Open, i)
		h := deref(quote.High, i)
		l := deref(quote.Low, i)
		c := deref(quote.Close, i)
		// Null bars appear on holidays; skip them.
		if o == 0 && h == 0 && l == 0 && c == 0 {
			continue
		}
		candles = append(candles, models.Candle{
			Date:   util.TradingDate(time.Unix(ts, 0)),
			Symbol: symbol,
			Open:   o,
			High:   h,
			Low:    l,
			Close:  c,
			Volume: deref(quote.Volume, i),
		})
	}
	sort.Slice(candles, func(i, j int) bool { return candles[i].Date.Before(candles[j].Date) })

	if s.l != nil {
		s.l.Info("chart candles fetched",
			applogger.String("symbol", symbol),
			applogger.Int("rows", len(candles)),
		)
	}
	return candles, nil
}

func deref(xs []*float64, i int) float64 {
	if i >= len(xs) || xs[i] == nil {
		return 0
	}
	return *xs[i]
}
