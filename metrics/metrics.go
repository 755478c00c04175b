package metrics

import (
	"strconv"
	"time"

	"github.com/erpcompany/erp/health"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// NewRegistry returns a registry with the Go runtime and process
// collectors installed.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// HTTPMetrics records served requests.
type HTTPMetrics struct {
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
}

func NewHTTPMetrics(reg prometheus.Registerer) *HTTPMetrics {
	factory := promauto.With(reg)
	return &HTTPMetrics{
		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests served",
			},
			[]string{"method", "route", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Time taken to serve HTTP requests",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
	}
}

// Observe records one request. route is the matched pattern, not the raw
// path, to keep label cardinality bounded.
func (m *HTTPMetrics) Observe(method, route string, status int, elapsed time.Duration) {
	m.RequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.RequestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// HealthMetrics mirrors health reports as gauges, 1 for UP and 0 for DOWN.
type HealthMetrics struct {
	Status    prometheus.Gauge
	Component *prometheus.GaugeVec
}

func NewHealthMetrics(reg prometheus.Registerer) *HealthMetrics {
	factory := promauto.With(reg)
	return &HealthMetrics{
		Status: factory.NewGauge(prometheus.GaugeOpts{
			Name: "application_health_status",
			Help: "Aggregate health status (1 = UP)",
		}),
		Component: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "application_health_component_status",
				Help: "Health status per component (1 = UP)",
			},
			[]string{"component"},
		),
	}
}

// Update is a health.Registry change listener.
func (m *HealthMetrics) Update(r health.Report) {
	m.Status.Set(gaugeValue(r.Status))
	for name, c := range r.Components {
		m.Component.WithLabelValues(name).Set(gaugeValue(c.Status))
	}
}

func gaugeValue(s health.Status) float64 {
	if s == health.StatusUp {
		return 1
	}
	return 0
}
