package knapsack

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exampleItems() []Item {
	return []Item{
		{ID: 0, Weight: 2, Value: 3, Limit: 5},
		{ID: 1, Weight: 3, Value: 4, Limit: Unbounded},
	}
}

func TestSolver_Example(t *testing.T) {
	s := New(WithScale(1))
	require.NoError(t, s.Configure(exampleItems(), 5))

	res, err := s.Resolve()
	require.NoError(t, err)
	assert.Equal(t, 7.0, res.MaxValue)
	assert.Equal(t, 5, res.QuantizedCapacity)
	assert.Equal(t, 7, res.Values.Rows())
	assert.Equal(t, 3, res.Values.Cols())

	sol, err := s.ReconstructSolution()
	require.NoError(t, err)
	want := []Entry{
		{ID: 0, Weight: 2, Value: 3, UnitsUsed: 1, TotalWeight: 2, TotalValue: 3},
		{ID: 1, Weight: 3, Value: 4, UnitsUsed: 1, TotalWeight: 3, TotalValue: 4},
	}
	assert.Equal(t, want, sol)
	assert.Equal(t, 5.0, TotalWeight(sol))
}

// randomCase builds a small instance with integer weights so that scale 1
// makes the table exact.
func randomCase(rng *rand.Rand, maxItems, maxWeight int) []Item {
	n := 1 + rng.Intn(maxItems)
	items := make([]Item, n)
	for i := range items {
		limit := 1 + rng.Intn(3)
		if rng.Intn(4) == 0 {
			limit = Unbounded
		}
		items[i] = Item{
			ID:     i,
			Weight: float64(1 + rng.Intn(maxWeight)),
			Value:  float64(1 + rng.Intn(10)),
			Limit:  limit,
		}
	}
	return items
}

// bruteForce enumerates every feasible combination of unit counts.
func bruteForce(items []Item, capacity float64) float64 {
	var best float64
	var walk func(i int, weight, value float64)
	walk = func(i int, weight, value float64) {
		if i == len(items) {
			if value > best {
				best = value
			}
			return
		}
		it := items[i]
		for k := 0; ; k++ {
			if !it.IsUnbounded() && k > it.Limit {
				return
			}
			w := weight + it.Weight*float64(k)
			if w > capacity {
				return
			}
			walk(i+1, w, value+it.Value*float64(k))
		}
	}
	walk(0, 0, 0)
	return best
}

func TestSolver_MatchesBruteForce(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for n := 0; n < 300; n++ {
		items := randomCase(rng, 6, 8)
		capacity := float64(1 + rng.Intn(20))

		s := New(WithScale(1))
		require.NoError(t, s.Configure(items, capacity))
		res, err := s.Resolve()
		require.NoError(t, err)

		want := bruteForce(items, capacity)
		if res.MaxValue != want {
			t.Fatalf("case %d: items %+v capacity %v: got %v want %v", n, items, capacity, res.MaxValue, want)
		}

		sol, err := s.ReconstructSolution()
		require.NoError(t, err)
		if TotalWeight(sol) > capacity {
			t.Fatalf("case %d: solution weight %v exceeds capacity %v", n, TotalWeight(sol), capacity)
		}
		if TotalValue(sol) != res.MaxValue {
			t.Fatalf("case %d: solution value %v != max value %v", n, TotalValue(sol), res.MaxValue)
		}
		for i := 1; i < len(sol); i++ {
			if sol[i-1].ID >= sol[i].ID {
				t.Fatalf("case %d: entries out of order: %+v", n, sol)
			}
		}
		for _, e := range sol {
			it := items[e.ID]
			if !it.IsUnbounded() && e.UnitsUsed > it.Limit {
				t.Fatalf("case %d: item %d used %d times, limit %d", n, e.ID, e.UnitsUsed, it.Limit)
			}
		}
	}
}

func TestSolver_ResolveIsIdempotent(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	items := randomCase(rng, 6, 40)
	s := New(WithScale(5))
	require.NoError(t, s.Configure(items, 120))

	first, err := s.Resolve()
	require.NoError(t, err)
	second, err := s.Resolve()
	require.NoError(t, err)

	assert.Equal(t, first.MaxValue, second.MaxValue)
	assert.True(t, first.Values.Equal(second.Values))
	assert.True(t, first.Quantities.Equal(second.Quantities))
}

func TestSolver_ScaleNeverImprovesOptimum(t *testing.T) {
	rng := rand.New(rand.NewSource(99))
	for n := 0; n < 100; n++ {
		items := randomCase(rng, 6, 60)
		capacity := float64(100 + rng.Intn(200))

		exact := New(WithScale(1))
		require.NoError(t, exact.Configure(items, capacity))
		ref, err := exact.Resolve()
		require.NoError(t, err)

		for _, scale := range []float64{3, 10, 50, 100} {
			coarse := New(WithScale(scale))
			require.NoError(t, coarse.Configure(items, capacity))
			res, err := coarse.Resolve()
			require.NoError(t, err)
			if res.MaxValue > ref.MaxValue {
				t.Fatalf("case %d scale %v: %v exceeds exact optimum %v", n, scale, res.MaxValue, ref.MaxValue)
			}
			sol, err := coarse.ReconstructSolution()
			require.NoError(t, err)
			if TotalWeight(sol) > capacity {
				t.Fatalf("case %d scale %v: solution weight %v exceeds capacity %v", n, scale, TotalWeight(sol), capacity)
			}
			if TotalValue(sol) > ref.MaxValue {
				t.Fatalf("case %d scale %v: solution value %v exceeds exact optimum %v", n, scale, TotalValue(sol), ref.MaxValue)
			}
		}
	}
}

func TestSolver_CoarseScaleTableAndSelectionDiffer(t *testing.T) {
	// The table's terminal row stands for 200 while reconstruction starts
	// from the real capacity of 217.
	items := []Item{
		{ID: 0, Weight: 100, Value: 100, Limit: 1},
		{ID: 1, Weight: 110, Value: 110, Limit: 1},
	}
	s := New(WithScale(100))
	require.NoError(t, s.Configure(items, 217))
	res, err := s.Resolve()
	require.NoError(t, err)
	assert.Equal(t, 110.0, res.MaxValue)

	sol, err := s.ReconstructSolution()
	require.NoError(t, err)
	assert.Equal(t, 210.0, TotalValue(sol))
	assert.LessOrEqual(t, TotalWeight(sol), 217.0)

	exact := New(WithScale(1))
	require.NoError(t, exact.Configure(items, 217))
	ref, err := exact.Resolve()
	require.NoError(t, err)
	assert.Equal(t, 210.0, ref.MaxValue)
	exactSol, err := exact.ReconstructSolution()
	require.NoError(t, err)
	assert.Equal(t, ref.MaxValue, TotalValue(exactSol))
}

func TestSolver_ScaledMultiples(t *testing.T) {
	// Weights and capacity on bucket boundaries lose nothing to quantization.
	items := []Item{
		{ID: 10, Weight: 200, Value: 200, Limit: 1},
		{ID: 11, Weight: 300, Value: 300, Limit: 1},
		{ID: 12, Weight: 400, Value: 400, Limit: 1},
		{ID: 13, Weight: 700, Value: 700, Limit: 1},
	}
	s := New()
	require.NoError(t, s.Configure(items, 1000))
	res, err := s.Resolve()
	require.NoError(t, err)
	assert.Equal(t, 1000.0, res.MaxValue)

	sol, err := s.ReconstructSolution()
	require.NoError(t, err)
	assert.Equal(t, 1000.0, TotalWeight(sol))
	assert.Equal(t, res.MaxValue, TotalValue(sol))
}

func TestSolver_TieBreakPrefersMoreUnits(t *testing.T) {
	// One unit of item 1 and two units of item 0 are worth the same; the
	// later candidate wins the tie.
	items := []Item{
		{ID: 0, Weight: 1, Value: 2, Limit: 2},
		{ID: 1, Weight: 2, Value: 4, Limit: 1},
	}
	s := New(WithScale(1))
	require.NoError(t, s.Configure(items, 2))
	res, err := s.Resolve()
	require.NoError(t, err)
	assert.Equal(t, 4.0, res.MaxValue)
	assert.Equal(t, 1.0, res.Quantities.At(3, 2))

	sol, err := s.ReconstructSolution()
	require.NoError(t, err)
	require.Len(t, sol, 1)
	assert.Equal(t, 1, sol[0].ID)
}

func TestSolver_UnboundedTerminates(t *testing.T) {
	it := Item{ID: 0, Weight: 3, Value: 1, Limit: Unbounded}
	assert.Equal(t, 3, unitBound(it, 10))
	assert.Equal(t, 0, unitBound(it, 2))
	it.Limit = 2
	assert.Equal(t, 2, unitBound(it, 10))

	s := New()
	require.NoError(t, s.Configure([]Item{{ID: 0, Weight: 0.5, Value: 1, Limit: Unbounded}}, 1000))
	res, err := s.Resolve()
	require.NoError(t, err)
	assert.Equal(t, 2000.0, res.MaxValue)
	assert.Equal(t, 2000.0, res.Quantities.At(res.Quantities.Rows()-1, 1))
}

func TestSolver_ParallelMatchesSequential(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	for n := 0; n < 20; n++ {
		items := randomCase(rng, 8, 30)
		capacity := float64(150 + rng.Intn(100))

		seq := New(WithScale(1))
		require.NoError(t, seq.Configure(items, capacity))
		want, err := seq.Resolve()
		require.NoError(t, err)

		par := New(WithScale(1), WithWorkers(4))
		require.NoError(t, par.Configure(items, capacity))
		got, err := par.Resolve()
		require.NoError(t, err)

		if !want.Values.Equal(got.Values) || !want.Quantities.Equal(got.Quantities) {
			t.Fatalf("case %d: parallel tables differ from sequential", n)
		}
	}
}

func TestSolver_OrderingErrors(t *testing.T) {
	s := New()
	_, err := s.Resolve()
	assert.ErrorIs(t, err, ErrNotConfigured)

	_, err = s.ReconstructSolution()
	assert.ErrorIs(t, err, ErrReconstruction)
	_, err = s.Result()
	assert.ErrorIs(t, err, ErrReconstruction)

	require.NoError(t, s.Configure(exampleItems(), 500))
	_, err = s.ReconstructSolution()
	assert.ErrorIs(t, err, ErrReconstruction)
}

func TestSolver_ConfigureFailureKeepsState(t *testing.T) {
	s := New(WithScale(1))
	require.NoError(t, s.Configure(exampleItems(), 5))

	bad := append(exampleItems(), Item{ID: 2, Weight: -1, Value: 1, Limit: 1})
	err := s.Configure(bad, 9)
	require.ErrorIs(t, err, ErrInvalidInput)
	var inErr *InputError
	require.True(t, errors.As(err, &inErr))
	assert.Equal(t, 2, inErr.Index)
	assert.Equal(t, "weight", inErr.Field)

	assert.Equal(t, 5.0, s.capacity)
	assert.Len(t, s.items, 2)
	res, err := s.Resolve()
	require.NoError(t, err)
	assert.Equal(t, 7.0, res.MaxValue)
}

func TestSolver_SetScale(t *testing.T) {
	s := New()
	require.NoError(t, s.SetScale(10))
	assert.Equal(t, 10.0, s.Scale())

	require.NoError(t, s.Configure(exampleItems(), 50))
	_, err := s.Resolve()
	require.NoError(t, err)

	assert.ErrorIs(t, s.SetScale(0), ErrInvalidInput)
	assert.ErrorIs(t, s.SetScale(-3), ErrInvalidInput)
	assert.ErrorIs(t, s.SetScale(51), ErrInvalidInput)

	// a rejected scale keeps the tables
	_, err = s.Result()
	require.NoError(t, err)

	require.NoError(t, s.SetScale(1))
	_, err = s.ReconstructSolution()
	assert.ErrorIs(t, err, ErrReconstruction)

	res, err := s.Resolve()
	require.NoError(t, err)
	assert.Equal(t, 50, res.QuantizedCapacity)
	assert.Equal(t, 1.0, res.Scale)
}

func TestSolver_RejectsOversizedTables(t *testing.T) {
	items := []Item{{ID: 1, Weight: 1, Value: 1, Limit: 1}}
	s := New(WithScale(1))
	err := s.Configure(items, 1e300)
	require.ErrorIs(t, err, ErrInvalidInput)
	var inErr *InputError
	require.True(t, errors.As(err, &inErr))
	assert.Equal(t, "capacity", inErr.Field)
	_, err = s.Resolve()
	assert.ErrorIs(t, err, ErrNotConfigured)

	// accepted at a coarse scale, rejected once the scale makes the table too large
	s = New(WithScale(1e6))
	require.NoError(t, s.Configure(items, 1e11))
	err = s.SetScale(1)
	require.ErrorIs(t, err, ErrInvalidInput)
	require.True(t, errors.As(err, &inErr))
	assert.Equal(t, "capacity", inErr.Field)
	assert.Equal(t, 1e6, s.Scale())

	res, err := s.Resolve()
	require.NoError(t, err)
	assert.Equal(t, 100000, res.QuantizedCapacity)
}

func TestSolver_CapacityBelowScale(t *testing.T) {
	s := New()
	err := s.Configure(exampleItems(), 99)
	require.ErrorIs(t, err, ErrInvalidInput)
	var inErr *InputError
	require.True(t, errors.As(err, &inErr))
	assert.Equal(t, -1, inErr.Index)
	assert.Equal(t, "capacity", inErr.Field)
}
