package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/kilianp07/loadplan/core/metrics"
)

// PromSink records planning outcomes in Prometheus metrics.
type PromSink struct {
	plans       *prometheus.CounterVec
	failures    *prometheus.CounterVec
	duration    prometheus.Histogram
	utilization prometheus.Gauge
	gap         prometheus.Gauge
	selected    prometheus.Histogram
}

// NewPromSink registers planning metrics on the default Prometheus registerer.
// The /metrics endpoint is served separately by StartPromServer.
func NewPromSink(namespace string) (*PromSink, error) {
	return NewPromSinkWithRegistry(namespace, prometheus.DefaultRegisterer)
}

// register returns the collector already registered under the same
// descriptor when there is one.
func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromSinkWithRegistry(namespace string, reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	s := &PromSink{
		plans: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "plans_total",
			Help:      "Total number of computed load plans",
		}, []string{"vehicle_id"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "plan_failures_total",
			Help:      "Planning requests that produced no plan",
		}, []string{"reason"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "plan_solve_duration_seconds",
			Help:      "Time spent building and reconstructing the selection",
			Buckets:   prometheus.DefBuckets,
		}),
		utilization: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "plan_capacity_utilization_ratio",
			Help:      "Share of vehicle capacity used by the last plan",
		}),
		gap: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "plan_relaxation_gap_ratio",
			Help:      "Relative distance between the last plan and its linear relaxation bound",
		}),
		selected: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "plan_selected_orders",
			Help:      "Number of orders selected per plan",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 10),
		}),
	}
	var err error
	if s.plans, err = register(reg, s.plans); err != nil {
		return nil, err
	}
	if s.failures, err = register(reg, s.failures); err != nil {
		return nil, err
	}
	if s.duration, err = register(reg, s.duration); err != nil {
		return nil, err
	}
	if s.utilization, err = register(reg, s.utilization); err != nil {
		return nil, err
	}
	if s.gap, err = register(reg, s.gap); err != nil {
		return nil, err
	}
	if s.selected, err = register(reg, s.selected); err != nil {
		return nil, err
	}
	return s, nil
}

// RecordPlan updates counters, latency and utilization for one plan.
func (s *PromSink) RecordPlan(r coremetrics.PlanResult) error {
	vehicle := r.VehicleID
	if vehicle == "" {
		vehicle = "unassigned"
	}
	s.plans.WithLabelValues(vehicle).Inc()
	s.duration.Observe(r.Duration.Seconds())
	s.utilization.Set(r.Utilization())
	s.selected.Observe(float64(r.Orders))
	if r.UpperBound > 0 {
		s.gap.Set((r.UpperBound - r.MaxValue) / r.UpperBound)
	}
	return nil
}

// RecordPlanFailure increments the failure counter for the reason.
func (s *PromSink) RecordPlanFailure(f coremetrics.PlanFailure) error {
	s.failures.WithLabelValues(f.Reason).Inc()
	return nil
}
