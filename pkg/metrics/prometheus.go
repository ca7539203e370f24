package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain/repository.Metrics using Prometheus.
type Recorder struct {
	runsTotal     *prometheus.CounterVec
	errorsTotal   *prometheus.CounterVec
	stageDuration *prometheus.HistogramVec
	featureCount  *prometheus.GaugeVec
	windowCount   *prometheus.GaugeVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		runsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "featuremill_pipeline_runs_total",
				Help: "Total number of pipeline runs by outcome",
			},
			[]string{"symbol", "status"},
		),
		errorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "featuremill_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		stageDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "featuremill_stage_duration_seconds",
				Help:    "Duration of pipeline stages in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"stage"},
		),
		featureCount: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "featuremill_feature_count",
				Help: "Feature count per pipeline stage for the last run",
			},
			[]string{"symbol", "stage"},
		),
		windowCount: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "featuremill_sequence_windows",
				Help: "Sequence window count of the last run per split",
			},
			[]string{"symbol", "split"},
		),
	}
}

// RecordRun records one pipeline run outcome.
func (r *Recorder) RecordRun(symbol, status string) {
	r.runsTotal.WithLabelValues(symbol, status).Inc()
}

// RecordError records an error occurrence by kind.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordStageDuration records how long a pipeline stage took.
func (r *Recorder) RecordStageDuration(stage string, seconds float64) {
	r.stageDuration.WithLabelValues(stage).Observe(seconds)
}

// RecordFeatureCount records the column count after a stage.
func (r *Recorder) RecordFeatureCount(symbol, stage string, n int) {
	r.featureCount.WithLabelValues(symbol, stage).Set(float64(n))
}

// RecordWindows records the train/test window counts of a run.
func (r *Recorder) RecordWindows(symbol, split string, n int) {
	r.windowCount.WithLabelValues(symbol, split).Set(float64(n))
}
