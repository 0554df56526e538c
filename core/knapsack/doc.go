// Package knapsack selects, from a list of weighted items with per-item repeat
// limits, the multiset that maximizes total value under a capacity budget.
//
// The solver fills a dynamic-programming table whose capacity axis is
// quantized into buckets of Scale units. Bucketing bounds the table size for
// large capacities; every feasibility check still uses the true capacity, so a
// reported selection never exceeds the budget. A parallel quantities table
// records how many units of each item produced the optimum of every cell and
// is what Reconstruct walks to recover the selection.
//
// Typical use:
//
//	s := knapsack.New(knapsack.WithScale(1))
//	if err := s.Configure(items, 500); err != nil {
//	    return err
//	}
//	res, err := s.Resolve()
//	if err != nil {
//	    return err
//	}
//	entries, err := s.ReconstructSolution()
//
// A Solver is not safe for concurrent Resolve calls; use one instance per
// goroutine.
package knapsack
