package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// analysis service.
type Metrics struct {
	AnalysesTotal    *prometheus.CounterVec // labels: variable, outcome={success,no_data,error}
	AnalysisDuration prometheus.Histogram
	RequestsRejected prometheus.Counter

	// Result cache metrics.
	CacheLookups *prometheus.CounterVec // labels: result={hit,miss,expired}
	CacheEnabled prometheus.Gauge

	// Sample source metrics.
	SourceRequests      *prometheus.CounterVec   // labels: source={synthetic,power}, outcome={success,error,empty}
	SourceFetchDuration *prometheus.HistogramVec // labels: source

	// Export and publishing metrics.
	ExportsTotal     *prometheus.CounterVec // labels: format={csv,timeseries,json}
	ReportsPublished prometheus.Counter
}

// NewMetrics creates and registers all service metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		AnalysesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "weather_prob",
			Name:      "analyses_total",
			Help:      "Per-variable analyses by outcome.",
		}, []string{"variable", "outcome"}),
		AnalysisDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "weather_prob",
			Name:      "analysis_duration_seconds",
			Help:      "Duration of a complete analysis request.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2.5, 5},
		}),
		RequestsRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "weather_prob",
			Name:      "requests_rejected_total",
			Help:      "Analysis requests rejected by validation.",
		}),
		CacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "weather_prob",
			Name:      "cache_lookups_total",
			Help:      "Result cache lookups by result.",
		}, []string{"result"}),
		CacheEnabled: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "weather_prob",
			Name:      "cache_enabled",
			Help:      "1 when the result cache is enabled, 0 otherwise.",
		}),
		SourceRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "weather_prob",
			Name:      "source_requests_total",
			Help:      "Sample source fetches by source and outcome.",
		}, []string{"source", "outcome"}),
		SourceFetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "weather_prob",
			Name:      "source_fetch_duration_seconds",
			Help:      "Sample source fetch duration in seconds.",
			Buckets:   []float64{0.001, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"source"}),
		ExportsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "weather_prob",
			Name:      "exports_total",
			Help:      "Report exports by format.",
		}, []string{"format"}),
		ReportsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "weather_prob",
			Name:      "reports_published_total",
			Help:      "Completed reports published to the sink topic.",
		}),
	}

	prometheus.MustRegister(
		m.AnalysesTotal,
		m.AnalysisDuration,
		m.RequestsRejected,
		m.CacheLookups,
		m.CacheEnabled,
		m.SourceRequests,
		m.SourceFetchDuration,
		m.ExportsTotal,
		m.ReportsPublished,
	)

	return m
}

// NewMetricsForTesting creates Metrics with a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		AnalysesTotal:       prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "weather_prob", Name: "analyses_total"}, []string{"variable", "outcome"}),
		AnalysisDuration:    prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "weather_prob", Name: "analysis_duration_seconds"}),
		RequestsRejected:    prometheus.NewCounter(prometheus.CounterOpts{Namespace: "weather_prob", Name: "requests_rejected_total"}),
		CacheLookups:        prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "weather_prob", Name: "cache_lookups_total"}, []string{"result"}),
		CacheEnabled:        prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "weather_prob", Name: "cache_enabled"}),
		SourceRequests:      prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "weather_prob", Name: "source_requests_total"}, []string{"source", "outcome"}),
		SourceFetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{Namespace: "weather_prob", Name: "source_fetch_duration_seconds"}, []string{"source"}),
		ExportsTotal:        prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "weather_prob", Name: "exports_total"}, []string{"format"}),
		ReportsPublished:    prometheus.NewCounter(prometheus.CounterOpts{Namespace: "weather_prob", Name: "reports_published_total"}),
	}
}
