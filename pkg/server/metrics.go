package server

import (
	"time"

	"github.com/nearzap/nearzap/pkg/transformer"
	"github.com/nearzap/nearzap/pkg/zapier"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// unregisteredKey labels requests for operations that don't exist.
const unregisteredKey = "unregistered"

// Metrics contains the Prometheus metrics of the HTTP surface
type Metrics struct {
	OperationRequests *prometheus.CounterVec
	OperationErrors   *prometheus.CounterVec
	OperationDuration *prometheus.HistogramVec
}

func NewMetrics(registry prometheus.Registerer) *Metrics {
	factory := promauto.With(registry)

	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return &Metrics{
		OperationRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "nearzap_operation_requests_total",
			Help: "The total number of operation requests",
		}, []string{"kind", "key"}),
		OperationErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "nearzap_operation_errors_total",
			Help: "The total number of failed operation requests by error kind",
		}, []string{"kind", "key", "error_kind"}),
		OperationDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "nearzap_operation_duration_seconds",
			Help:    "Time spent performing an operation",
			Buckets: prometheus.DefBuckets,
		}, []string{"kind", "key"}),
	}
}

func (m *Metrics) observe(kind transformer.Kind, key string, zerr *zapier.Error, took time.Duration) {
	m.OperationRequests.WithLabelValues(string(kind), key).Inc()
	m.OperationDuration.WithLabelValues(string(kind), key).Observe(took.Seconds())
	if zerr != nil {
		m.OperationErrors.WithLabelValues(string(kind), key, string(zerr.Kind)).Inc()
	}
}
