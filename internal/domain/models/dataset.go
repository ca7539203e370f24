package models

import (
	"encoding/json"
	"math"
	"time"
)

// FeatureRank pairs a feature name with its absolute correlation to the
// target column. An undefined correlation (constant column) encodes as
// null.
type FeatureRank struct {
	Name        string  `json:"name"`
	Correlation float64 `json:"correlation"`
}

func (r FeatureRank) MarshalJSON() ([]byte, error) {
	var corr interface{}
	if !math.IsNaN(r.Correlation) && !math.IsInf(r.Correlation, 0) {
		corr = r.Correlation
	}
	return json.Marshal(struct {
		Name        string      `json:"name"`
		Correlation interface{} `json:"correlation"`
	}{Name: r.Name, Correlation: corr})
}

// DatasetSummary describes one dataset-preparation run.
type DatasetSummary struct {
	Symbol           string        `json:"symbol"`
	Target           string        `json:"target"`
	PreparedAt       time.Time     `json:"prepared_at"`
	Rows             int           `json:"rows"`
	TotalFeatures    int           `json:"total_features"`
	SelectedFeatures []string      `json:"selected_features"`
	Ranked           []FeatureRank `json:"ranked,omitempty"`
	SequenceLength   int           `json:"sequence_length"`
	TrainWindows     int           `json:"train_windows"`
	TestWindows      int           `json:"test_windows"`
}

// DatasetEvent is published after a successful run.
type DatasetEvent struct {
	Symbol       string    `json:"symbol"`
	PreparedAt   time.Time `json:"prepared_at"`
	Rows         int       `json:"rows"`
	Features     []string  `json:"features"`
	TrainWindows int       `json:"train_windows"`
	TestWindows  int       `json:"test_windows"`
}

// SnapshotRow is one persisted feature value in long format.
type SnapshotRow struct {
	Symbol string    `json:"symbol"`
	Date   time.Time `json:"date"`
	Name   string    `json:"name"`
	Value  float64   `json:"value"`
}
