package knapsack

import (
	"fmt"
	"math"
)

// MaxBuckets is the largest capacity/scale ratio a solver accepts. It bounds
// the number of rows of each table.
const MaxBuckets = 1 << 24

// MaxCells is the largest number of cells, rows times item columns, a single
// table may hold. Resolve allocates two tables of this size.
const MaxCells = 1 << 25

func finitePositive(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}

// validate checks items and capacity against the given scale. It never
// mutates solver state.
func validate(items []Item, capacity, scale float64) error {
	if len(items) == 0 {
		return &InputError{Index: -1, Field: "items", Reason: "must contain at least one item"}
	}
	if !finitePositive(capacity) {
		return &InputError{Index: -1, Field: "capacity", Reason: "must be a positive number"}
	}
	if capacity < scale {
		return &InputError{Index: -1, Field: "capacity", Reason: "must be at least the scale"}
	}
	for i, it := range items {
		if err := validateItem(i, it); err != nil {
			return err
		}
	}
	if scale > 0 {
		return validateSize(capacity, scale, len(items))
	}
	return nil
}

// validateSize rejects capacities whose tables would not fit in memory.
// Ratios are compared as floats before any conversion to int.
func validateSize(capacity, scale float64, itemCount int) error {
	buckets := math.Floor(capacity / scale)
	if buckets > MaxBuckets {
		return &InputError{Index: -1, Field: "capacity",
			Reason: fmt.Sprintf("spans %.0f buckets of %g, limit is %d", buckets, scale, MaxBuckets)}
	}
	if cells := (buckets + 2) * float64(itemCount+1); cells > MaxCells {
		return &InputError{Index: -1, Field: "capacity",
			Reason: fmt.Sprintf("needs %.0f table cells for %d items, limit is %d", cells, itemCount, MaxCells)}
	}
	return nil
}

func validateItem(idx int, it Item) error {
	if !finitePositive(it.Weight) {
		return &InputError{Index: idx, Field: "weight", Reason: "must be a positive number"}
	}
	if !finitePositive(it.Value) {
		return &InputError{Index: idx, Field: "value", Reason: "must be a positive number"}
	}
	if it.Limit <= 0 && it.Limit != Unbounded {
		return &InputError{Index: idx, Field: "limit", Reason: "must be a positive integer or Unbounded"}
	}
	return nil
}

func validateScale(scale, capacity float64, itemCount int) error {
	if !finitePositive(scale) {
		return &InputError{Index: -1, Field: "scale", Reason: "must be a positive number"}
	}
	if capacity > 0 && scale > capacity {
		return &InputError{Index: -1, Field: "scale", Reason: "cannot exceed the capacity"}
	}
	if capacity > 0 {
		return validateSize(capacity, scale, itemCount)
	}
	return nil
}
