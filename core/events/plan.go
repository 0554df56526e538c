package events

import "github.com/kilianp07/loadplan/core/model"

// PlanEvent is published after a plan has been computed.
type PlanEvent struct {
	Plan model.Plan
}

// PlanFailedEvent is published when a planning request does not produce a
// plan. Reason is a short machine friendly label such as "invalid_request".
type PlanFailedEvent struct {
	VehicleID string
	Reason    string
	Err       error
}
