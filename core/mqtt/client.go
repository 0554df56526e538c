package mqtt

import (
	"time"

	"github.com/kilianp07/loadplan/core/model"
)

// Publisher delivers computed plans to the vehicles and loading docks
// listening on the broker.
type Publisher interface {
	// PublishPlan sends the plan and returns the message identifier used to
	// track the acknowledgment.
	PublishPlan(plan model.Plan) (messageID string, err error)

	// WaitForAck waits for an acknowledgment for the provided message
	// identifier or until the timeout expires.
	WaitForAck(messageID string, timeout time.Duration) (bool, error)
}
