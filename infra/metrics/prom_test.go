package metrics

import (
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	coremetrics "github.com/kilianp07/loadplan/core/metrics"
)

func TestPromSink_RecordPlan(t *testing.T) {
	reg := prometheus.NewRegistry()
	sink, err := NewPromSinkWithRegistry("", reg)
	if err != nil {
		t.Fatalf("create sink: %v", err)
	}
	rec := coremetrics.PlanResult{
		PlanID:      "p1",
		VehicleID:   "truck-1",
		Orders:      4,
		Capacity:    1000,
		TotalWeight: 800,
		MaxValue:    800,
		UpperBound:  1000,
		Duration:    20 * time.Millisecond,
		Time:        time.Now(),
	}
	if err := sink.RecordPlan(rec); err != nil {
		t.Fatalf("record error: %v", err)
	}
	if err := sink.RecordPlan(coremetrics.PlanResult{Capacity: 100, TotalWeight: 50}); err != nil {
		t.Fatalf("record error: %v", err)
	}

	expected := `
# HELP plans_total Total number of computed load plans
# TYPE plans_total counter
plans_total{vehicle_id="truck-1"} 1
plans_total{vehicle_id="unassigned"} 1
`
	if err := testutil.CollectAndCompare(sink.plans, strings.NewReader(expected)); err != nil {
		t.Errorf("unexpected metrics: %v", err)
	}
	if v := testutil.ToFloat64(sink.utilization); v != 0.5 {
		t.Errorf("expected utilization 0.5 got %v", v)
	}
	if v := testutil.ToFloat64(sink.gap); v != 0.2 {
		t.Errorf("expected gap 0.2 got %v", v)
	}
	if c := testutil.CollectAndCount(sink.duration); c != 1 {
		t.Errorf("expected one duration histogram, got %d", c)
	}
}

func TestPromSink_RecordPlanFailure(t *testing.T) {
	reg := prometheus.NewRegistry()
	sink, err := NewPromSinkWithRegistry("loadplan", reg)
	if err != nil {
		t.Fatalf("create sink: %v", err)
	}
	_ = sink.RecordPlanFailure(coremetrics.PlanFailure{Reason: "invalid_request"})
	_ = sink.RecordPlanFailure(coremetrics.PlanFailure{Reason: "invalid_request"})

	expected := `
# HELP loadplan_plan_failures_total Planning requests that produced no plan
# TYPE loadplan_plan_failures_total counter
loadplan_plan_failures_total{reason="invalid_request"} 2
`
	if err := testutil.CollectAndCompare(sink.failures, strings.NewReader(expected)); err != nil {
		t.Errorf("unexpected metrics: %v", err)
	}
}

// Registering twice on the same registry reuses the existing collectors.
func TestPromSink_AlreadyRegistered(t *testing.T) {
	reg := prometheus.NewRegistry()
	first, err := NewPromSinkWithRegistry("dup", reg)
	if err != nil {
		t.Fatalf("first: %v", err)
	}
	second, err := NewPromSinkWithRegistry("dup", reg)
	if err != nil {
		t.Fatalf("second: %v", err)
	}
	_ = first.RecordPlan(coremetrics.PlanResult{VehicleID: "v"})
	_ = second.RecordPlan(coremetrics.PlanResult{VehicleID: "v"})
	if v := testutil.ToFloat64(first.plans.WithLabelValues("v")); v != 2 {
		t.Fatalf("expected shared counter at 2 got %v", v)
	}
}
