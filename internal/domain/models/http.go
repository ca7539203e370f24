package models

// PrepareRequest triggers a dataset-preparation run.
type PrepareRequest struct {
	Symbol      string `json:"symbol" query:"symbol" validate:"required,min=1,max=12"`
	MaxFeatures int    `json:"max_features" query:"max_features" validate:"gte=0,lte=500"`
	Async       bool   `json:"async" query:"async"`
}

// RankingRequest asks for the correlation ranking diagnostic.
type RankingRequest struct {
	Symbol string `query:"symbol" validate:"required,min=1,max=12"`
}

// StatsRequest asks for the statistics bundle.
type StatsRequest struct {
	Symbol string `query:"symbol" validate:"required,min=1,max=12"`
}

// TrainRunRequest delegates a training run for one symbol.
type TrainRunRequest struct {
	Symbol string `json:"symbol" validate:"required,min=1,max=12"`
}

// PredictRunRequest asks for a multi-day forecast.
type PredictRunRequest struct {
	Symbol    string `json:"symbol" validate:"required,min=1,max=12"`
	DaysAhead int    `json:"days_ahead" validate:"gte=0,lte=365"`
}

// RankingResponse is the selection diagnostic payload.
type RankingResponse struct {
	Symbol   string        `json:"symbol"`
	Target   string        `json:"target"`
	Ranked   []FeatureRank `json:"ranked"`
	Accepted []string      `json:"accepted"`
}
