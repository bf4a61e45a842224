package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserve(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ObserveRequest("/api/music", "POST", 200, 10*time.Millisecond)
	m.ObserveRequest("/api/music", "POST", 200, 20*time.Millisecond)
	m.ObserveFanOut(3, 1)

	if got := testutil.ToFloat64(m.requests.WithLabelValues("/api/music", "POST", "200")); got != 2 {
		t.Errorf("requests = %v", got)
	}
	if got := testutil.ToFloat64(m.subqueries.WithLabelValues(OutcomeOK)); got != 2 {
		t.Errorf("ok sub-queries = %v", got)
	}
	if got := testutil.ToFloat64(m.subqueries.WithLabelValues(OutcomeFailed)); got != 1 {
		t.Errorf("failed sub-queries = %v", got)
	}
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	m.ObserveRequest("/", "GET", 200, time.Second)
	m.ObserveFanOut(1, 0)
}
