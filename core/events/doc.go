// Package events defines the planning events emitted on the event bus.
//
// Available event types:
//   - PlanEvent: a plan was computed
//   - PlanFailedEvent: a planning request was rejected or failed
package events
