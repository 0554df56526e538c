package model

import (
	"time"

	"github.com/kilianp07/loadplan/core/knapsack"
)

// PlanStats summarizes how well a plan fills the vehicle.
type PlanStats struct {
	OrderCount        int     `json:"order_count"`
	CandidateCount    int     `json:"candidate_count"`
	TotalWeight       float64 `json:"total_weight"`
	TotalValue        float64 `json:"total_value"`
	RemainingCapacity float64 `json:"remaining_capacity"`
	// Efficiency is the share of capacity used, in percent.
	Efficiency float64 `json:"efficiency"`
}

// Plan is the load selected for one vehicle trip. MaxValue is the value of
// the selected orders; TableValue is the optimum read from the quantized
// table, which can differ from MaxValue when weights do not fall on bucket
// boundaries.
type Plan struct {
	ID         string           `json:"id"`
	VehicleID  string           `json:"vehicle_id,omitempty"`
	CreatedAt  time.Time        `json:"created_at"`
	Capacity   float64          `json:"capacity"`
	Scale      float64          `json:"scale"`
	Selected   []Order          `json:"selected"`
	Stats      PlanStats        `json:"stats"`
	MaxValue   float64          `json:"max_value"`
	TableValue float64          `json:"table_value"`
	UpperBound float64          `json:"upper_bound,omitempty"`
	Solution   []knapsack.Entry `json:"solution"`
	Duration   time.Duration    `json:"duration"`
}

// Gap returns how far the selection is from the linear relaxation bound, as
// a fraction of the bound. It is zero when no bound was computed.
func (p Plan) Gap() float64 {
	if p.UpperBound <= 0 {
		return 0
	}
	return (p.UpperBound - p.MaxValue) / p.UpperBound
}
