package metrics

import "time"

// PlanResult is one computed plan to be recorded.
type PlanResult struct {
	PlanID      string
	VehicleID   string
	Orders      int
	Candidates  int
	Capacity    float64
	TotalWeight float64
	MaxValue    float64
	UpperBound  float64
	Scale       float64
	Duration    time.Duration
	Time        time.Time
}

// Utilization returns the share of capacity used, between 0 and 1.
func (r PlanResult) Utilization() float64 {
	if r.Capacity <= 0 {
		return 0
	}
	return r.TotalWeight / r.Capacity
}

// MetricsSink records planning results for observability purposes.
type MetricsSink interface {
	RecordPlan(res PlanResult) error
}

// PlanFailure describes a planning request that produced no plan.
type PlanFailure struct {
	VehicleID string
	Reason    string
	Error     string
	Time      time.Time
}

// FailureRecorder is implemented by sinks able to record failures.
type FailureRecorder interface {
	RecordPlanFailure(f PlanFailure) error
}

// NopSink implements MetricsSink with no-op methods.
type NopSink struct{}

func (NopSink) RecordPlan(PlanResult) error         { return nil }
func (NopSink) RecordPlanFailure(PlanFailure) error { return nil }
