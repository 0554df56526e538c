package knapsack

import (
	"fmt"
	"math"
	"time"

	"github.com/kilianp07/loadplan/core/logger"
)

// Solver holds one problem configuration and the tables of its last
// resolution.
type Solver struct {
	items     []Item
	capacity  float64
	scale     float64
	quantized int
	workers   int
	log       logger.Logger

	result *Result
}

// Option customizes a Solver.
type Option func(*Solver)

// WithScale sets the initial bucket width. Non-positive values are ignored.
func WithScale(scale float64) Option {
	return func(s *Solver) {
		if scale > 0 {
			s.scale = scale
		}
	}
}

// WithLogger injects the logger used for progress and guard messages.
func WithLogger(l logger.Logger) Option {
	return func(s *Solver) {
		if l != nil {
			s.log = l
		}
	}
}

// WithWorkers splits the rows of each column across n goroutines.
func WithWorkers(n int) Option {
	return func(s *Solver) { s.workers = n }
}

// New returns an unconfigured solver using DefaultScale.
func New(opts ...Option) *Solver {
	s := &Solver{scale: DefaultScale, workers: 1, log: logger.Nop{}}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Configure validates and stores the problem. On error the previous
// configuration is kept.
func (s *Solver) Configure(items []Item, capacity float64) error {
	if err := validate(items, capacity, s.scale); err != nil {
		return err
	}
	s.items = append([]Item(nil), items...)
	s.capacity = capacity
	s.quantized = int(math.Floor(capacity / s.scale))
	s.result = nil
	s.log.Debugw("solver configured", map[string]any{
		"items":      len(items),
		"capacity":   capacity,
		"scale":      s.scale,
		"table_rows": s.quantized + 2,
	})
	return nil
}

// SetScale changes the bucket width and drops any resolved tables.
func (s *Solver) SetScale(scale float64) error {
	if err := validateScale(scale, s.capacity, len(s.items)); err != nil {
		return err
	}
	s.scale = scale
	if s.capacity > 0 {
		s.quantized = int(math.Floor(s.capacity / scale))
	}
	s.result = nil
	s.log.Debugf("scale set to %g", scale)
	return nil
}

// Scale returns the current bucket width.
func (s *Solver) Scale() float64 { return s.scale }

// Resolve fills the value and quantity tables and returns the optimum.
func (s *Solver) Resolve() (*Result, error) {
	if len(s.items) == 0 {
		return nil, ErrNotConfigured
	}
	start := time.Now()
	n := len(s.items)
	p := &pass{
		items:      s.items,
		capacity:   s.capacity,
		scale:      s.scale,
		values:     BuildTable(n, s.quantized, s.scale),
		quantities: BuildTable(n, s.quantized, s.scale),
	}
	if err := p.run(s.workers); err != nil {
		s.result = nil
		return nil, err
	}
	res := &Result{
		MaxValue:          p.values.At(s.quantized+1, n),
		Values:            p.values,
		Quantities:        p.quantities,
		Capacity:          s.capacity,
		Scale:             s.scale,
		QuantizedCapacity: s.quantized,
	}
	s.result = res
	s.log.Debugf("resolved %d items over %d rows in %s: max value %g", n, s.quantized+1, time.Since(start), res.MaxValue)
	return res, nil
}

// Result returns the outcome of the last Resolve call.
func (s *Solver) Result() (*Result, error) {
	if s.result == nil {
		return nil, fmt.Errorf("%w: call Resolve first", ErrReconstruction)
	}
	return s.result, nil
}

// ReconstructSolution recovers the chosen entries from the last resolution.
func (s *Solver) ReconstructSolution() ([]Entry, error) {
	res, err := s.Result()
	if err != nil {
		return nil, err
	}
	return Reconstruct(s.items, res.Quantities, res.Capacity, res.Scale, s.log)
}
