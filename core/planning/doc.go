// Package planning turns shipment orders into a vehicle load plan.
//
// The Planner maps each order to a single-unit knapsack item whose value is
// its weight, so the optimum is the heaviest admissible load. Orders that
// cannot fit on their own are dropped before solving. Computed plans are
// published on the event bus and appended to the plan log when one is
// configured.
package planning
