package planning

import (
	"context"
	"errors"
)

var (
	// ErrInvalidRequest is returned for requests that can never be planned,
	// such as an empty order list or a non-positive capacity.
	ErrInvalidRequest = errors.New("invalid planning request")
	// ErrNoFeasibleOrders is returned when no order fits the vehicle on its own.
	ErrNoFeasibleOrders = errors.New("no order fits the vehicle capacity")
	// ErrCapacityExceeded is returned when the selected orders weigh more than
	// the vehicle capacity.
	ErrCapacityExceeded = errors.New("selected orders exceed vehicle capacity")
)

// failureReason labels err for events and metrics.
func failureReason(err error) string {
	switch {
	case errors.Is(err, ErrInvalidRequest):
		return "invalid_request"
	case errors.Is(err, ErrNoFeasibleOrders):
		return "no_feasible_orders"
	case errors.Is(err, ErrCapacityExceeded):
		return "capacity_exceeded"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "solver_error"
	}
}

// IsClientError reports whether err was caused by the request itself rather
// than by the planner.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidRequest) || errors.Is(err, ErrNoFeasibleOrders)
}
