package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// analysis service.
type Metrics struct {
	AnalysesTotal  prometheus.Counter
	AnalysisErrors prometheus.Counter
	OutagesFound   prometheus.Counter

	ReadingsPerAnalysis prometheus.Histogram
	GroupsPerAnalysis   prometheus.Histogram
	AnalysisDuration    prometheus.Histogram

	// Result publishing metrics.
	PublishErrors  prometheus.Counter
	PublishEnabled prometheus.Gauge
}

// NewMetrics creates and registers all service metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		AnalysesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "supply_analysis",
			Name:      "runs_total",
			Help:      "Total completed analysis runs.",
		}),
		AnalysisErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "supply_analysis",
			Name:      "run_errors_total",
			Help:      "Total analysis runs aborted on malformed input or failure.",
		}),
		OutagesFound: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "supply_analysis",
			Name:      "outages_found_total",
			Help:      "Total aggregated outages emitted across all runs.",
		}),
		ReadingsPerAnalysis: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "supply_analysis",
			Name:      "readings_per_run",
			Help:      "Number of pressure readings in an analysis run.",
			Buckets:   []float64{10, 50, 100, 500, 1000, 5000, 10000, 50000},
		}),
		GroupsPerAnalysis: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "supply_analysis",
			Name:      "property_groups_per_run",
			Help:      "Number of distinct property elevations in an analysis run.",
			Buckets:   []float64{1, 2, 5, 10, 25, 50, 100, 250},
		}),
		AnalysisDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "supply_analysis",
			Name:      "run_duration_seconds",
			Help:      "Duration of a complete analysis run.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2.5, 5},
		}),
		PublishErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "supply_analysis",
			Name:      "publish_errors_total",
			Help:      "Total failures publishing analysis summaries.",
		}),
		PublishEnabled: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "supply_analysis",
			Name:      "publish_enabled",
			Help:      "1 when summary publishing is enabled, 0 otherwise.",
		}),
	}

	prometheus.MustRegister(
		m.AnalysesTotal,
		m.AnalysisErrors,
		m.OutagesFound,
		m.ReadingsPerAnalysis,
		m.GroupsPerAnalysis,
		m.AnalysisDuration,
		m.PublishErrors,
		m.PublishEnabled,
	)

	return m
}

// NewMetricsForTesting creates Metrics with a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		AnalysesTotal:       prometheus.NewCounter(prometheus.CounterOpts{Namespace: "supply_analysis", Name: "runs_total"}),
		AnalysisErrors:      prometheus.NewCounter(prometheus.CounterOpts{Namespace: "supply_analysis", Name: "run_errors_total"}),
		OutagesFound:        prometheus.NewCounter(prometheus.CounterOpts{Namespace: "supply_analysis", Name: "outages_found_total"}),
		ReadingsPerAnalysis: prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "supply_analysis", Name: "readings_per_run"}),
		GroupsPerAnalysis:   prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "supply_analysis", Name: "property_groups_per_run"}),
		AnalysisDuration:    prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "supply_analysis", Name: "run_duration_seconds"}),
		PublishErrors:       prometheus.NewCounter(prometheus.CounterOpts{Namespace: "supply_analysis", Name: "publish_errors_total"}),
		PublishEnabled:      prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "supply_analysis", Name: "publish_enabled"}),
	}
}
