package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// quote pipeline.
type Metrics struct {
	QuotesTotal   prometheus.Counter
	QuoteErrors   *prometheus.CounterVec // labels: reason={invalid_geometry,data_unavailable,internal}
	QuoteDuration prometheus.Histogram

	// Aggregation metrics.
	AggregationFallbacks *prometheus.CounterVec // labels: dataset
	DatasetSamples       *prometheus.HistogramVec
	DatasetSubstituted   *prometheus.CounterVec // labels: dataset

	// Report publishing metrics.
	ReportsPublished prometheus.Counter
	PublishErrors    prometheus.Counter
	PublishEnabled   prometheus.Gauge
}

// NewMetrics creates and registers all quote metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		QuotesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "parcel_risk",
			Name:      "quotes_total",
			Help:      "Total risk quotes computed successfully.",
		}),
		QuoteErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "parcel_risk",
			Name:      "quote_errors_total",
			Help:      "Quote failures by reason.",
		}, []string{"reason"}),
		QuoteDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "parcel_risk",
			Name:      "quote_duration_seconds",
			Help:      "Duration of a complete load-aggregate-score-price cycle.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2.5},
		}),
		AggregationFallbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "parcel_risk",
			Name:      "aggregation_fallback_total",
			Help:      "Aggregations that used the nearest-sample fallback, by dataset.",
		}, []string{"dataset"}),
		DatasetSamples: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "parcel_risk",
			Name:      "dataset_samples",
			Help:      "Samples loaded per dataset table.",
			Buckets:   []float64{1, 10, 50, 100, 500, 1000, 5000},
		}, []string{"dataset"}),
		DatasetSubstituted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "parcel_risk",
			Name:      "dataset_substituted_total",
			Help:      "Quotes where a dataset aggregate was replaced by its neutral default.",
		}, []string{"dataset"}),
		ReportsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "parcel_risk",
			Name:      "reports_published_total",
			Help:      "Risk reports published to the sink topic.",
		}),
		PublishErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "parcel_risk",
			Name:      "publish_errors_total",
			Help:      "Failed report publishes.",
		}),
		PublishEnabled: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "parcel_risk",
			Name:      "publish_enabled",
			Help:      "1 when report publishing is enabled, 0 otherwise.",
		}),
	}

	prometheus.MustRegister(
		m.QuotesTotal,
		m.QuoteErrors,
		m.QuoteDuration,
		m.AggregationFallbacks,
		m.DatasetSamples,
		m.DatasetSubstituted,
		m.ReportsPublished,
		m.PublishErrors,
		m.PublishEnabled,
	)

	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		QuotesTotal:          prometheus.NewCounter(prometheus.CounterOpts{Namespace: "parcel_risk", Name: "quotes_total"}),
		QuoteErrors:          prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "parcel_risk", Name: "quote_errors_total"}, []string{"reason"}),
		QuoteDuration:        prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "parcel_risk", Name: "quote_duration_seconds"}),
		AggregationFallbacks: prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "parcel_risk", Name: "aggregation_fallback_total"}, []string{"dataset"}),
		DatasetSamples:       prometheus.NewHistogramVec(prometheus.HistogramOpts{Namespace: "parcel_risk", Name: "dataset_samples"}, []string{"dataset"}),
		DatasetSubstituted:   prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "parcel_risk", Name: "dataset_substituted_total"}, []string{"dataset"}),
		ReportsPublished:     prometheus.NewCounter(prometheus.CounterOpts{Namespace: "parcel_risk", Name: "reports_published_total"}),
		PublishErrors:        prometheus.NewCounter(prometheus.CounterOpts{Namespace: "parcel_risk", Name: "publish_errors_total"}),
		PublishEnabled:       prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "parcel_risk", Name: "publish_enabled"}),
	}
}
