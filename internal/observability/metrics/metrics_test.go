package metrics

import (
	"errors"
	"testing"
	"time"

	kafka_middleware "tidyslot/pkg/kafka/middleware"

	"github.com/prometheus/client_golang/prometheus"
)

var _ kafka_middleware.Observer = (*Metrics)(nil)

func counterValue(t *testing.T, reg *prometheus.Registry, name string, labels map[string]string) float64 {
	t.Helper()
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
	next:
		for _, metric := range mf.GetMetric() {
			for _, lp := range metric.GetLabel() {
				if want, ok := labels[lp.GetName()]; ok && want != lp.GetValue() {
					continue next
				}
			}
			return metric.GetCounter().GetValue()
		}
	}
	return 0
}

func TestMetricsObserve(t *testing.T) {
	m := New(nil)
	m.ObserveAssignments("balanced", OutcomeAssigned, 2)
	m.ObserveBatch("balanced", 20*time.Millisecond)
	m.ObservePublish("provider-assignments", time.Millisecond, nil)
	m.ObserveHTTP("GET", 200, time.Millisecond)
}

func TestMetricsCustomRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ObserveAssignments("distance", OutcomeAssigned, 3)
	m.ObserveAssignments("distance", OutcomeUnassigned, 1)
	m.ObserveAssignments("distance", OutcomeFailed, 0)
	m.ObserveSideEffectError("notification")
	m.ObserveConsume("auto-assign-requests", time.Millisecond, errors.New("boom"))

	if got := counterValue(t, reg, "tidyslot_assignment_jobs_total", map[string]string{"outcome": OutcomeAssigned}); got != 3 {
		t.Errorf("expected 3 assigned, got %v", got)
	}
	if got := counterValue(t, reg, "tidyslot_assignment_jobs_total", map[string]string{"outcome": OutcomeUnassigned}); got != 1 {
		t.Errorf("expected 1 unassigned, got %v", got)
	}
	if got := counterValue(t, reg, "tidyslot_assignment_side_effect_errors_total", map[string]string{"kind": "notification"}); got != 1 {
		t.Errorf("expected 1 notification error, got %v", got)
	}
}

func TestMetricsNilSafe(t *testing.T) {
	var m *Metrics
	m.ObserveAssignments("rating", OutcomeAssigned, 1)
	m.ObserveBatch("rating", time.Second)
	m.ObserveSideEffectError("audit")
	m.ObservePublish("t", time.Millisecond, nil)
	m.ObserveConsume("t", time.Millisecond, nil)
	m.ObserveHTTP("POST", 500, time.Millisecond)
}

func TestNewRegistry_IncludesRuntimeCollectors(t *testing.T) {
	reg := NewRegistry()
	New(reg).ObserveHTTP("GET", 200, time.Millisecond)

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	seen := map[string]bool{}
	for _, mf := range families {
		seen[mf.GetName()] = true
	}
	for _, name := range []string{"go_goroutines", "tidyslot_http_requests_total"} {
		if !seen[name] {
			t.Errorf("expected %s to be registered", name)
		}
	}
}
