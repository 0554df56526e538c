package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/kilianp07/loadplan/core/logger"
	"github.com/kilianp07/loadplan/core/model"
	"github.com/kilianp07/loadplan/core/planning"
)

// Optimizer computes a single vehicle plan.
type Optimizer interface {
	Optimize(ctx context.Context, req planning.Request) (model.Plan, error)
}

// FleetPlan is the outcome of one planning round.
type FleetPlan struct {
	Plans []model.Plan `json:"plans"`
	// Idle lists vehicles left empty because no remaining order fit.
	Idle []string `json:"idle,omitempty"`
	// Unassigned holds the orders no vehicle could take.
	Unassigned []model.Order `json:"unassigned"`
}

// TotalWeight sums the load of every plan.
func (f FleetPlan) TotalWeight() float64 {
	var sum float64
	for _, p := range f.Plans {
		sum += p.Stats.TotalWeight
	}
	return sum
}

// Scheduler assigns orders to vehicles.
type Scheduler struct {
	planner Optimizer
	log     logger.Logger
}

// New returns a Scheduler planning each vehicle with p. A nil log discards
// messages.
func New(p Optimizer, log logger.Logger) *Scheduler {
	if log == nil {
		log = logger.Nop{}
	}
	return &Scheduler{planner: p, log: log}
}

// PlanFleet fills the vehicles of cfg in turn with the orders still
// unassigned.
func (s *Scheduler) PlanFleet(ctx context.Context, cfg FleetConfig, orders []model.Order) (FleetPlan, error) {
	if err := validateFleet(cfg.Vehicles); err != nil {
		return FleetPlan{}, err
	}
	if len(orders) == 0 {
		return FleetPlan{}, fmt.Errorf("%w: no orders", planning.ErrInvalidRequest)
	}
	vehicles := append([]model.Vehicle(nil), cfg.Vehicles...)
	if cfg.LargestFirst {
		sort.SliceStable(vehicles, func(i, j int) bool { return vehicles[i].CapacityKg > vehicles[j].CapacityKg })
	}

	remaining := append([]model.Order(nil), orders...)
	var out FleetPlan
	for _, v := range vehicles {
		if len(remaining) == 0 {
			out.Idle = append(out.Idle, v.ID)
			continue
		}
		plan, err := s.planner.Optimize(ctx, planning.Request{VehicleID: v.ID, Orders: remaining, Capacity: v.CapacityKg})
		if errors.Is(err, planning.ErrNoFeasibleOrders) {
			s.log.Infof("vehicle %s left empty: %v", v.ID, err)
			out.Idle = append(out.Idle, v.ID)
			continue
		}
		if err != nil {
			return FleetPlan{}, fmt.Errorf("vehicle %s: %w", v.ID, err)
		}
		out.Plans = append(out.Plans, plan)
		remaining = without(remaining, plan)
	}
	out.Unassigned = remaining
	if out.Unassigned == nil {
		out.Unassigned = []model.Order{}
	}
	s.log.Infof("fleet round: %d plans, %d idle vehicles, %d orders unassigned",
		len(out.Plans), len(out.Idle), len(out.Unassigned))
	return out, nil
}

// without drops the orders selected by plan. Solution entry IDs index the
// order list the plan was computed from.
func without(orders []model.Order, plan model.Plan) []model.Order {
	taken := make(map[int]bool, len(plan.Solution))
	for _, e := range plan.Solution {
		taken[e.ID] = true
	}
	rest := make([]model.Order, 0, len(orders)-len(taken))
	for i, o := range orders {
		if !taken[i] {
			rest = append(rest, o)
		}
	}
	return rest
}

func validateFleet(vehicles []model.Vehicle) error {
	if len(vehicles) == 0 {
		return fmt.Errorf("%w: no vehicles", planning.ErrInvalidRequest)
	}
	seen := make(map[string]bool, len(vehicles))
	for i, v := range vehicles {
		if v.ID == "" {
			return fmt.Errorf("%w: vehicle %d has no id", planning.ErrInvalidRequest, i)
		}
		if seen[v.ID] {
			return fmt.Errorf("%w: duplicate vehicle %s", planning.ErrInvalidRequest, v.ID)
		}
		seen[v.ID] = true
		if !(v.CapacityKg > 0) {
			return fmt.Errorf("%w: vehicle %s capacity must be positive", planning.ErrInvalidRequest, v.ID)
		}
	}
	return nil
}
