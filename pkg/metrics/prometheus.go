package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	datasetLoads   *prometheus.CounterVec
	datasetRows    *prometheus.GaugeVec
	droppedRows    *prometheus.GaugeVec
	renderPasses   *prometheus.CounterVec
	renderDuration prometheus.Histogram
	cacheResults   *prometheus.CounterVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		datasetLoads: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "volpulse_dataset_loads_total",
				Help: "Total number of dataset load attempts",
			},
			[]string{"source", "status"},
		),
		datasetRows: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "volpulse_dataset_rows",
				Help: "Rows in the last successfully loaded dataset",
			},
			[]string{"source"},
		),
		droppedRows: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "volpulse_dataset_dropped_rows",
				Help: "Rows dropped for unparsable dates in the last load",
			},
			[]string{"source"},
		),
		renderPasses: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "volpulse_render_passes_total",
				Help: "Dashboard render passes by resulting state",
			},
			[]string{"state"},
		),
		renderDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "volpulse_render_duration_seconds",
				Help:    "Duration of one filter-metrics-charts render pass",
				Buckets: prometheus.DefBuckets,
			},
		),
		cacheResults: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "volpulse_cache_results_total",
				Help: "Cache lookups by cache name and hit/miss result",
			},
			[]string{"cache", "result"},
		),
	}
}

// RecordDatasetLoad records one load attempt and its outcome.
func (r *Recorder) RecordDatasetLoad(source, status string) {
	r.datasetLoads.WithLabelValues(source, status).Inc()
}

// RecordDatasetRows records row and drop counts of the last load.
func (r *Recorder) RecordDatasetRows(source string, rows, dropped int) {
	r.datasetRows.WithLabelValues(source).Set(float64(rows))
	r.droppedRows.WithLabelValues(source).Set(float64(dropped))
}

// RecordRenderPass counts a render pass by its resulting state.
func (r *Recorder) RecordRenderPass(state string) {
	r.renderPasses.WithLabelValues(state).Inc()
}

// RecordRenderDuration records pass latency in seconds.
func (r *Recorder) RecordRenderDuration(seconds float64) {
	r.renderDuration.Observe(seconds)
}

// RecordCacheResult counts a cache hit or miss.
func (r *Recorder) RecordCacheResult(cache, result string) {
	r.cacheResults.WithLabelValues(cache, result).Inc()
}
