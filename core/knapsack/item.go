package knapsack

// Unbounded marks an item that may be selected any number of times.
const Unbounded = -1

// DefaultScale is the bucket width used when no scale is configured.
const DefaultScale = 100.0

// Item is one candidate for the selection.
type Item struct {
	ID     int     `json:"id"`
	Weight float64 `json:"weight"`
	Value  float64 `json:"value"`
	// Limit is the maximum number of units, or Unbounded.
	Limit int `json:"limit"`
}

// IsUnbounded reports whether the item has no repeat limit.
func (it Item) IsUnbounded() bool { return it.Limit == Unbounded }

// Entry is one line of a reconstructed solution.
type Entry struct {
	ID          int     `json:"id"`
	Weight      float64 `json:"weight"`
	Value       float64 `json:"value"`
	UnitsUsed   int     `json:"units_used"`
	TotalWeight float64 `json:"total_weight"`
	TotalValue  float64 `json:"total_value"`
}

// Result is the outcome of a Resolve call.
type Result struct {
	MaxValue          float64 `json:"max_value"`
	Values            *Table  `json:"-"`
	Quantities        *Table  `json:"-"`
	Capacity          float64 `json:"capacity"`
	Scale             float64 `json:"scale"`
	QuantizedCapacity int     `json:"quantized_capacity"`
}

// TotalWeight sums the weight of all entries.
func TotalWeight(entries []Entry) float64 {
	var sum float64
	for _, e := range entries {
		sum += e.TotalWeight
	}
	return sum
}

// TotalValue sums the value of all entries.
func TotalValue(entries []Entry) float64 {
	var sum float64
	for _, e := range entries {
		sum += e.TotalValue
	}
	return sum
}
