package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// gridding pipeline.
type Metrics struct {
	RunsTotal       *prometheus.CounterVec // labels: variable, region, outcome={success,config_error,data_error,numerical_error,error}
	PipelineRunning prometheus.Gauge

	// Station filtering metrics.
	StationsLoaded   *prometheus.HistogramVec // labels: variable, region
	StationsRetained *prometheus.HistogramVec // labels: variable, region

	// Per-stage timing.
	StageDuration *prometheus.HistogramVec // labels: stage={load,project,decluster,interpolate,clip,write}
	RunDuration   prometheus.Histogram
}

// NewMetrics creates and registers all pipeline metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		RunsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "normals_gridder",
			Name:      "runs_total",
			Help:      "Completed variable/region runs by outcome.",
		}, []string{"variable", "region", "outcome"}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "normals_gridder",
			Name:      "pipeline_running",
			Help:      "1 while the batch is active, 0 when shut down.",
		}),
		StationsLoaded: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "normals_gridder",
			Name:      "stations_loaded",
			Help:      "Stations passing the quality filter per run.",
			Buckets:   []float64{10, 50, 100, 250, 500, 1000, 2500, 5000, 10000},
		}, []string{"variable", "region"}),
		StationsRetained: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "normals_gridder",
			Name:      "stations_retained",
			Help:      "Stations surviving bounds filtering and declustering per run.",
			Buckets:   []float64{10, 50, 100, 250, 500, 1000, 2500, 5000, 10000},
		}, []string{"variable", "region"}),
		StageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "normals_gridder",
			Name:      "stage_duration_seconds",
			Help:      "Duration of each pipeline stage.",
			Buckets:   []float64{0.01, 0.1, 0.5, 1, 5, 15, 60, 300, 900},
		}, []string{"stage"}),
		RunDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "normals_gridder",
			Name:      "run_duration_seconds",
			Help:      "Duration of a complete variable/region run.",
			Buckets:   []float64{0.1, 1, 5, 15, 60, 300, 900, 1800},
		}),
	}

	prometheus.MustRegister(
		m.RunsTotal,
		m.PipelineRunning,
		m.StationsLoaded,
		m.StationsRetained,
		m.StageDuration,
		m.RunDuration,
	)

	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		RunsTotal:        prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "normals_gridder", Name: "runs_total"}, []string{"variable", "region", "outcome"}),
		PipelineRunning:  prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "normals_gridder", Name: "pipeline_running"}),
		StationsLoaded:   prometheus.NewHistogramVec(prometheus.HistogramOpts{Namespace: "normals_gridder", Name: "stations_loaded"}, []string{"variable", "region"}),
		StationsRetained: prometheus.NewHistogramVec(prometheus.HistogramOpts{Namespace: "normals_gridder", Name: "stations_retained"}, []string{"variable", "region"}),
		StageDuration:    prometheus.NewHistogramVec(prometheus.HistogramOpts{Namespace: "normals_gridder", Name: "stage_duration_seconds"}, []string{"stage"}),
		RunDuration:      prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "normals_gridder", Name: "run_duration_seconds"}),
	}
}
