package knapsack

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize/convex/lp"
)

// lpSolve points to the simplex call. Tests override it to simulate solver
// failures.
var lpSolve = lp.Simplex

// UpperBound solves the linear relaxation of the problem, where unit counts
// may be fractional, and returns its optimum. No integral selection can
// exceed it.
//
// In standard form every variable is non-negative and every constraint an
// equality:
//
//	sum(w_i*x_i) + s      = capacity
//	x_i          + t_i    = u_i        u_i = min(limit_i, floor(capacity/w_i))
func UpperBound(items []Item, capacity float64) (float64, error) {
	if err := validate(items, capacity, 0); err != nil {
		return 0, err
	}
	n := len(items)
	cols := 2*n + 1
	c := make([]float64, cols)
	a := mat.NewDense(n+1, cols, nil)
	b := make([]float64, n+1)

	b[0] = capacity
	a.Set(0, n, 1)
	for i, it := range items {
		c[i] = -it.Value
		a.Set(0, i, it.Weight)
		a.Set(i+1, i, 1)
		a.Set(i+1, n+1+i, 1)
		b[i+1] = float64(unitBound(it, capacity))
	}

	opt, _, err := lpSolve(c, a, b, 1e-10, nil)
	if err != nil {
		return 0, fmt.Errorf("lp relaxation: %w", err)
	}
	return math.Max(-opt, 0), nil
}
