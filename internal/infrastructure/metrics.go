package infrastructure

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus instruments for report ingestion and the
// HTTP surface. One instance is shared across the application.
type Metrics struct {
	Registry *prometheus.Registry

	ReportsLoaded  *prometheus.CounterVec
	RecordsLoaded  prometheus.Counter
	MissingColumns *prometheus.CounterVec
	Aggregations   *prometheus.CounterVec
	HTTPRequests   *prometheus.CounterVec
	HTTPDuration   *prometheus.HistogramVec
}

// NewMetrics creates and registers all application metrics on a fresh
// registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,
		ReportsLoaded: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "bizreport_reports_loaded_total",
			Help: "Business report files loaded, by report type.",
		}, []string{"type"}),
		RecordsLoaded: factory.NewCounter(prometheus.CounterOpts{
			Name: "bizreport_records_loaded_total",
			Help: "Raw report rows loaded across all files.",
		}),
		MissingColumns: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "bizreport_missing_columns_total",
			Help: "Expected report columns that failed to resolve, by segment.",
		}, []string{"segment"}),
		Aggregations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "bizreport_aggregations_total",
			Help: "Aggregation runs, by grouping and segment.",
		}, []string{"grouping", "segment"}),
		HTTPRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "bizreport_http_requests_total",
			Help: "HTTP requests, by method, path pattern and status class.",
		}, []string{"method", "path", "status"}),
		HTTPDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "bizreport_http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path"}),
	}
}
