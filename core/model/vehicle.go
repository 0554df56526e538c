package model

// Vehicle is a truck available for a delivery trip.
type Vehicle struct {
	ID   string `json:"id" yaml:"id"`
	Name string `json:"name,omitempty" yaml:"name"`
	// CapacityKg is the maximum load the vehicle can carry.
	CapacityKg float64 `json:"capacity_kg" yaml:"capacity_kg"`
}
