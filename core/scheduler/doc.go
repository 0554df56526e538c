// Package scheduler spreads a backlog of orders over a fleet. Vehicles are
// filled one after another, each with the heaviest load the remaining
// orders allow.
package scheduler
