package knapsack

import (
	"fmt"
	"math"

	"github.com/kilianp07/loadplan/core/logger"
)

// Reconstruct walks the quantities table from its terminal cell back to the
// first item and returns the chosen entries in item order.
//
// An entry heavier than the capacity still available is skipped and logged.
// A correctly filled table should never produce one.
func Reconstruct(items []Item, quantities *Table, capacity, scale float64, log logger.Logger) ([]Entry, error) {
	if quantities == nil || quantities.Rows() < 2 {
		return nil, fmt.Errorf("%w: no quantities table", ErrReconstruction)
	}
	if quantities.Cols() != len(items)+1 {
		return nil, fmt.Errorf("%w: table has %d item columns, expected %d", ErrReconstruction, quantities.Cols()-1, len(items))
	}
	if log == nil {
		log = logger.Nop{}
	}

	var picked []Entry
	remaining := capacity
	row := quantities.Rows() - 1
	for i := len(items); i >= 1; i-- {
		if row < 1 || row >= quantities.Rows() {
			break
		}
		units := int(quantities.At(row, i))
		if units <= 0 {
			continue
		}
		it := items[i-1]
		weight := it.Weight * float64(units)
		if weight > remaining {
			log.Warnf("skipping item %d: %d units weigh %.3f, only %.3f left", it.ID, units, weight, remaining)
			continue
		}
		picked = append(picked, Entry{
			ID:          it.ID,
			Weight:      it.Weight,
			Value:       it.Value,
			UnitsUsed:   units,
			TotalWeight: weight,
			TotalValue:  it.Value * float64(units),
		})
		remaining -= weight
		row = int(math.Floor(remaining/scale)) + 1
	}

	for l, r := 0, len(picked)-1; l < r; l, r = l+1, r-1 {
		picked[l], picked[r] = picked[r], picked[l]
	}
	return picked, nil
}
