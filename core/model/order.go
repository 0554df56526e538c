package model

import "time"

// Order is a shipment order waiting to be loaded on a vehicle.
type Order struct {
	ID       string    `json:"id" yaml:"id"`
	Client   string    `json:"client,omitempty" yaml:"client"`
	Province string    `json:"province,omitempty" yaml:"province"`
	Date     time.Time `json:"date,omitempty" yaml:"date"`
	// WeightKg is the load the order puts on the vehicle.
	WeightKg float64 `json:"weight_kg" yaml:"weight_kg"`
}

// TotalWeight sums the weight of the given orders.
func TotalWeight(orders []Order) float64 {
	var sum float64
	for _, o := range orders {
		sum += o.WeightKg
	}
	return sum
}
