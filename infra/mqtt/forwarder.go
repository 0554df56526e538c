package mqtt

import (
	"context"
	"errors"
	"time"

	"github.com/kilianp07/loadplan/core/events"
	"github.com/kilianp07/loadplan/core/logger"
	coremqtt "github.com/kilianp07/loadplan/core/mqtt"
	"github.com/kilianp07/loadplan/internal/eventbus"
)

// DefaultAckTimeout bounds how long a forwarded plan waits for its ack.
const DefaultAckTimeout = 30 * time.Second

// StartPlanForwarder publishes every PlanEvent seen on bus through pub until
// ctx is canceled or the bus closes. Acknowledgments are awaited in the
// background so a slow vehicle does not hold up later plans.
func StartPlanForwarder(ctx context.Context, bus eventbus.EventBus, pub Publisher, ackTimeout time.Duration, log logger.Logger) {
	if bus == nil || pub == nil {
		return
	}
	if log == nil {
		log = logger.Nop{}
	}
	if ackTimeout <= 0 {
		ackTimeout = DefaultAckTimeout
	}
	ch := bus.Subscribe()
	go func() {
		defer bus.Unsubscribe(ch)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-ch:
				if !ok {
					return
				}
				pe, ok := ev.(events.PlanEvent)
				if !ok {
					continue
				}
				msgID, err := pub.PublishPlan(pe.Plan)
				if err != nil {
					log.Errorf("forward plan %s: %v", pe.Plan.ID, err)
					continue
				}
				go awaitAck(pub, msgID, pe.Plan.ID, ackTimeout, log)
			}
		}
	}()
}

func awaitAck(pub Publisher, msgID, planID string, timeout time.Duration, log logger.Logger) {
	ok, err := pub.WaitForAck(msgID, timeout)
	switch {
	case errors.Is(err, coremqtt.ErrAckTimeout):
		log.Warnf("plan %s not acknowledged within %s", planID, timeout)
	case err != nil:
		log.Errorf("ack for plan %s: %v", planID, err)
	case ok:
		log.Infof("plan %s acknowledged", planID)
	}
}
