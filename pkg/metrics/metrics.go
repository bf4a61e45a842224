// Package metrics defines the Prometheus collectors exported on /metrics.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Sub-query outcomes counted by FanOut.
const (
	OutcomeOK     = "ok"
	OutcomeFailed = "failed"
)

// Metrics groups the application's collectors. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	requests   *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	subqueries *prometheus.CounterVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP requests by route, method and status code.",
		}, []string{"route", "method", "code"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "method"}),
		subqueries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "stu_fanout_subqueries_total",
			Help: "Fan-out sub-queries by outcome.",
		}, []string{"outcome"}),
	}
	reg.MustRegister(m.requests, m.duration, m.subqueries)
	return m
}

// ObserveRequest records one finished HTTP request.
func (m *Metrics) ObserveRequest(route, method string, code int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(route, method, strconv.Itoa(code)).Inc()
	m.duration.WithLabelValues(route, method).Observe(elapsed.Seconds())
}

// ObserveFanOut records the sub-query outcomes of one fan-out run.
func (m *Metrics) ObserveFanOut(total, failed int) {
	if m == nil {
		return
	}
	m.subqueries.WithLabelValues(OutcomeOK).Add(float64(total - failed))
	m.subqueries.WithLabelValues(OutcomeFailed).Add(float64(failed))
}
