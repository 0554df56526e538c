package planning

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kilianp07/loadplan/core/events"
	"github.com/kilianp07/loadplan/core/knapsack"
	"github.com/kilianp07/loadplan/core/logger"
	"github.com/kilianp07/loadplan/core/model"
	coremon "github.com/kilianp07/loadplan/core/monitoring"
	"github.com/kilianp07/loadplan/core/planning/logging"
	"github.com/kilianp07/loadplan/internal/eventbus"
)

// Request describes one planning run.
type Request struct {
	VehicleID string        `json:"vehicle_id,omitempty"`
	Orders    []model.Order `json:"orders"`
	Capacity  float64       `json:"capacity"`
	// Scale overrides the configured scale when positive.
	Scale float64 `json:"scale,omitempty"`
}

// Planner selects the orders to load on a vehicle.
type Planner struct {
	cfg    Config
	logger logger.Logger
	bus    eventbus.EventBus
	store  logging.LogStore
	now    func() time.Time

	mu      sync.Mutex
	history []model.Plan
}

// NewPlanner creates a Planner. bus may be nil.
func NewPlanner(cfg Config, bus eventbus.EventBus, log logger.Logger) (*Planner, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = logger.Nop{}
	}
	return &Planner{cfg: cfg, logger: log, bus: bus, now: time.Now}, nil
}

// SetLogStore configures the store used to persist plans.
func (p *Planner) SetLogStore(store logging.LogStore) {
	p.mu.Lock()
	p.store = store
	p.mu.Unlock()
}

// Optimize computes the heaviest selection of req.Orders that fits
// req.Capacity.
func (p *Planner) Optimize(ctx context.Context, req Request) (model.Plan, error) {
	plan, err := p.optimize(ctx, req)
	if err != nil {
		p.fail(req, err)
		return model.Plan{}, err
	}
	p.record(ctx, plan)
	return plan, nil
}

func (p *Planner) optimize(ctx context.Context, req Request) (model.Plan, error) {
	start := p.now()
	if err := checkRequest(req); err != nil {
		return model.Plan{}, err
	}
	scale := p.cfg.Scale
	if req.Scale > 0 {
		scale = req.Scale
	}
	items := candidates(req.Orders, req.Capacity)
	if len(items) == 0 {
		return model.Plan{}, fmt.Errorf("%w: %d orders, capacity %.2f", ErrNoFeasibleOrders, len(req.Orders), req.Capacity)
	}
	if err := ctx.Err(); err != nil {
		return model.Plan{}, err
	}

	solver := knapsack.New(
		knapsack.WithScale(scale),
		knapsack.WithWorkers(p.cfg.Workers),
		knapsack.WithLogger(p.logger),
	)
	if err := solver.Configure(items, req.Capacity); err != nil {
		if errors.Is(err, knapsack.ErrInvalidInput) {
			return model.Plan{}, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
		}
		return model.Plan{}, err
	}
	res, err := solver.Resolve()
	if err != nil {
		return model.Plan{}, fmt.Errorf("resolve: %w", err)
	}
	entries, err := solver.ReconstructSolution()
	if err != nil {
		return model.Plan{}, fmt.Errorf("reconstruct: %w", err)
	}

	selected := make([]model.Order, 0, len(entries))
	for _, e := range entries {
		if e.ID < 0 || e.ID >= len(req.Orders) {
			return model.Plan{}, fmt.Errorf("reconstruct: entry %d references no order", e.ID)
		}
		selected = append(selected, req.Orders[e.ID])
	}
	total := model.TotalWeight(selected)
	if total > req.Capacity {
		return model.Plan{}, fmt.Errorf("%w: %.2f > %.2f", ErrCapacityExceeded, total, req.Capacity)
	}

	plan := model.Plan{
		ID:        uuid.NewString(),
		VehicleID: req.VehicleID,
		CreatedAt: start,
		Capacity:  req.Capacity,
		Scale:     scale,
		Selected:  selected,
		Stats: model.PlanStats{
			OrderCount:        len(selected),
			CandidateCount:    len(items),
			TotalWeight:       total,
			TotalValue:        knapsack.TotalValue(entries),
			RemainingCapacity: req.Capacity - total,
			Efficiency:        round2(total / req.Capacity * 100),
		},
		MaxValue:   knapsack.TotalValue(entries),
		TableValue: res.MaxValue,
		Solution:   entries,
	}
	if p.cfg.ReportBound {
		ub, err := knapsack.UpperBound(items, req.Capacity)
		if err != nil {
			p.logger.Warnf("upper bound for plan %s: %v", plan.ID, err)
		} else {
			plan.UpperBound = ub
		}
	}
	plan.Duration = p.now().Sub(start)
	p.logger.Infof("plan %s: %d/%d orders, %.2f of %.2f kg (%.2f%%)",
		plan.ID, len(selected), len(items), total, req.Capacity, plan.Stats.Efficiency)
	return plan, nil
}

func checkRequest(req Request) error {
	if len(req.Orders) == 0 {
		return fmt.Errorf("%w: no orders", ErrInvalidRequest)
	}
	if math.IsNaN(req.Capacity) || math.IsInf(req.Capacity, 0) || req.Capacity <= 0 {
		return fmt.Errorf("%w: capacity must be a positive number, got %v", ErrInvalidRequest, req.Capacity)
	}
	if req.Scale < 0 || math.IsNaN(req.Scale) {
		return fmt.Errorf("%w: scale must not be negative, got %v", ErrInvalidRequest, req.Scale)
	}
	return nil
}

// candidates maps every order able to fit on its own to a single unit item.
// Item IDs are indexes into orders.
func candidates(orders []model.Order, capacity float64) []knapsack.Item {
	items := make([]knapsack.Item, 0, len(orders))
	for i, o := range orders {
		w := o.WeightKg
		if math.IsNaN(w) || w <= 0 || w > capacity {
			continue
		}
		items = append(items, knapsack.Item{ID: i, Weight: w, Value: w, Limit: 1})
	}
	return items
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }

func (p *Planner) fail(req Request, err error) {
	reason := failureReason(err)
	p.logger.Warnf("planning failed (%s): %v", reason, err)
	if !IsClientError(err) && reason != "canceled" {
		tags := coremon.Tags("planning", req.VehicleID)
		tags["reason"] = reason
		coremon.CaptureException(err, tags)
	}
	if p.bus != nil {
		p.bus.Publish(events.PlanFailedEvent{VehicleID: req.VehicleID, Reason: reason, Err: err})
	}
}

func (p *Planner) record(ctx context.Context, plan model.Plan) {
	p.mu.Lock()
	p.history = append(p.history, plan)
	if n := len(p.history) - p.cfg.HistoryLimit; n > 0 {
		p.history = append([]model.Plan(nil), p.history[n:]...)
	}
	store := p.store
	p.mu.Unlock()

	if store != nil {
		if err := store.Append(ctx, logging.NewLogRecord(plan)); err != nil {
			p.logger.Errorf("append plan log %s: %v", plan.ID, err)
		}
	}
	if p.bus != nil {
		p.bus.Publish(events.PlanEvent{Plan: plan})
	}
}

// History returns plans matching q. The plan log is used when configured;
// otherwise the recent in-memory history is filtered.
func (p *Planner) History(ctx context.Context, q logging.LogQuery) ([]model.Plan, error) {
	p.mu.Lock()
	store := p.store
	recent := append([]model.Plan(nil), p.history...)
	p.mu.Unlock()

	if store != nil {
		recs, err := store.Query(ctx, q)
		if err != nil {
			return nil, fmt.Errorf("query plan log: %w", err)
		}
		plans := make([]model.Plan, len(recs))
		for i, r := range recs {
			plans[i] = r.Plan
		}
		return plans, nil
	}
	var plans []model.Plan
	for _, plan := range recent {
		if q.Match(logging.NewLogRecord(plan)) {
			plans = append(plans, plan)
		}
		if q.Limit > 0 && len(plans) == q.Limit {
			break
		}
	}
	return plans, nil
}
