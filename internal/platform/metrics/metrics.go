package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry owns every collector exported on /metrics.
type Registry struct {
	registry *prometheus.Registry

	uploads          *prometheus.CounterVec
	recordsAssigned  *prometheus.CounterVec
	uploadRecords    prometheus.Histogram
	httpRequests     *prometheus.CounterVec
	httpRequestTimes *prometheus.HistogramVec
}

func NewRegistry(namespace string) *Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Registry{
		registry: reg,
		uploads: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "list_uploads_total",
			Help:      "Contact list uploads by file type and outcome.",
		}, []string{"file_type", "outcome"}),
		recordsAssigned: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_distributed_total",
			Help:      "Contact records assigned to agents.",
		}, []string{"file_type"}),
		uploadRecords: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "upload_records",
			Help:      "Valid records per distributed upload.",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
		}),
		httpRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status code.",
		}, []string{"method", "route", "status"}),
		httpRequestTimes: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by method and route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
}

// ObserveUpload records one upload attempt.
func (r *Registry) ObserveUpload(fileType string, outcome string, records int) {
	if r == nil {
		return
	}
	r.uploads.WithLabelValues(fileType, outcome).Inc()
	if records > 0 {
		r.recordsAssigned.WithLabelValues(fileType).Add(float64(records))
		r.uploadRecords.Observe(float64(records))
	}
}

// ObserveRequest records one served HTTP request.
func (r *Registry) ObserveRequest(method string, route string, status int, elapsed time.Duration) {
	if r == nil {
		return
	}
	r.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	r.httpRequestTimes.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// Handler exposes the registry in the Prometheus text format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

// Gatherer is used by tests to read collected values.
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.registry
}
