package metrics

import (
	"context"
	"time"

	"github.com/kilianp07/loadplan/core/events"
	corelogger "github.com/kilianp07/loadplan/core/logger"
	coremetrics "github.com/kilianp07/loadplan/core/metrics"
	"github.com/kilianp07/loadplan/internal/eventbus"
)

// StartEventCollector subscribes to the event bus and records metrics for
// planning events. It stops when the context is canceled or the bus closes.
func StartEventCollector(ctx context.Context, bus eventbus.EventBus, sink coremetrics.MetricsSink, log corelogger.Logger) {
	if bus == nil || sink == nil {
		return
	}
	if log == nil {
		log = corelogger.Nop{}
	}
	sub := bus.Subscribe()
	go func() {
		defer bus.Unsubscribe(sub)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-sub:
				if !ok {
					return
				}
				if err := collect(sink, ev); err != nil {
					log.Warnf("record metrics: %v", err)
				}
			}
		}
	}()
}

func collect(sink coremetrics.MetricsSink, ev eventbus.Event) error {
	switch e := ev.(type) {
	case events.PlanEvent:
		p := e.Plan
		return sink.RecordPlan(coremetrics.PlanResult{
			PlanID:      p.ID,
			VehicleID:   p.VehicleID,
			Orders:      p.Stats.OrderCount,
			Candidates:  p.Stats.CandidateCount,
			Capacity:    p.Capacity,
			TotalWeight: p.Stats.TotalWeight,
			MaxValue:    p.MaxValue,
			UpperBound:  p.UpperBound,
			Scale:       p.Scale,
			Duration:    p.Duration,
			Time:        p.CreatedAt,
		})
	case events.PlanFailedEvent:
		r, ok := sink.(coremetrics.FailureRecorder)
		if !ok {
			return nil
		}
		errStr := ""
		if e.Err != nil {
			errStr = e.Err.Error()
		}
		return r.RecordPlanFailure(coremetrics.PlanFailure{
			VehicleID: e.VehicleID,
			Reason:    e.Reason,
			Error:     errStr,
			Time:      time.Now(),
		})
	}
	return nil
}
