package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector holds the service's prometheus collectors. A nil *Collector is
// valid and records nothing.
type Collector struct {
	registry *prometheus.Registry

	requests     *prometheus.CounterVec
	duration     *prometheus.HistogramVec
	decisions    *prometheus.CounterVec
	auditRecords prometheus.Counter
}

func New() *Collector {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &Collector{
		registry: reg,
		requests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "hrm_http_requests_total",
			Help: "HTTP requests by method and status code",
		}, []string{"method", "status"}),
		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "hrm_http_request_duration_seconds",
			Help:    "HTTP request latency by method",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"method"}),
		decisions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "hrm_access_decisions_total",
			Help: "Record and field access decisions by operation, role and outcome",
		}, []string{"operation", "role", "outcome"}),
		auditRecords: factory.NewCounter(prometheus.CounterOpts{
			Name: "hrm_audit_records_total",
			Help: "Field audit records handed to the audit sink",
		}),
	}
}

func (c *Collector) Record(method string, status int, d time.Duration) {
	if c == nil {
		return
	}
	c.requests.WithLabelValues(method, strconv.Itoa(status)).Inc()
	c.duration.WithLabelValues(method).Observe(d.Seconds())
}

func (c *Collector) IncDecision(operation, role, outcome string) {
	if c == nil {
		return
	}
	c.decisions.WithLabelValues(operation, role, outcome).Inc()
}

func (c *Collector) AddAuditRecords(n int) {
	if c == nil || n <= 0 {
		return
	}
	c.auditRecords.Add(float64(n))
}

func (c *Collector) Handler() http.Handler {
	if c == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}
