package knapsack

import (
	"errors"
	"fmt"
	"math"

	"golang.org/x/sync/errgroup"
)

// Candidate is one way to fill a cell: Units of the current item on top of
// the best value reachable by the previous items with the remaining capacity.
type Candidate struct {
	Value float64
	Units int
}

var errNoCandidate = errors.New("no comparable candidate")

// Max returns the candidate with the greatest value. Ties go to the later
// candidate, so with candidates listed by increasing unit count the fuller
// load wins.
func Max(cands []Candidate) (Candidate, error) {
	best := -1
	bestVal := math.Inf(-1)
	for i, c := range cands {
		if math.IsNaN(c.Value) {
			continue
		}
		if c.Value >= bestVal {
			bestVal = c.Value
			best = i
		}
	}
	if best < 0 {
		return Candidate{}, errNoCandidate
	}
	return cands[best], nil
}

// unitBound is the largest unit count worth probing for it at realCap.
func unitBound(it Item, realCap float64) int {
	if realCap < it.Weight {
		return 0
	}
	n := int(math.Floor(realCap / it.Weight))
	if !it.IsUnbounded() && it.Limit < n {
		n = it.Limit
	}
	return n
}

// pass holds the state of one Resolve call.
type pass struct {
	items      []Item
	capacity   float64
	scale      float64
	values     *Table
	quantities *Table
}

func (p *pass) run(workers int) error {
	for i := 1; i <= len(p.items); i++ {
		if err := p.fillColumn(i, workers); err != nil {
			return err
		}
	}
	return nil
}

// fillColumn computes every row of column i. Rows only read column i-1, so
// they are split across workers when more than one is configured.
func (p *pass) fillColumn(i, workers int) error {
	rows := p.values.Rows()
	if workers <= 1 || rows-1 < 2*workers {
		for j := 1; j < rows; j++ {
			if err := p.fillCell(i, j); err != nil {
				return err
			}
		}
		return nil
	}
	var g errgroup.Group
	g.SetLimit(workers)
	chunk := (rows - 1 + workers - 1) / workers
	for lo := 1; lo < rows; lo += chunk {
		lo := lo
		hi := min(lo+chunk, rows)
		g.Go(func() error {
			for j := lo; j < hi; j++ {
				if err := p.fillCell(i, j); err != nil {
					return err
				}
			}
			return nil
		})
	}
	return g.Wait()
}

func (p *pass) fillCell(i, j int) error {
	if i < 1 || i > len(p.items) {
		return &RecurrenceError{Item: i, Row: j, Reason: "item not found"}
	}
	it := p.items[i-1]
	realCap := math.Min(p.values.RowLabel(j), p.capacity)

	if i == 1 {
		value, units := firstColumn(it, realCap)
		p.values.Set(j, i, value)
		p.quantities.Set(j, i, float64(units))
		return nil
	}

	cands, err := p.candidates(it, i, j, realCap)
	if err != nil {
		return err
	}
	best, err := Max(cands)
	if err != nil {
		return &RecurrenceError{Item: i, Row: j, Reason: err.Error()}
	}
	p.values.Set(j, i, best.Value)
	p.quantities.Set(j, i, float64(best.Units))
	return nil
}

// firstColumn takes as many units as fit, since nothing else competes for
// the capacity.
func firstColumn(it Item, realCap float64) (float64, int) {
	var total float64
	units := 0
	bound := unitBound(it, realCap)
	for k := 1; k <= bound; k++ {
		if it.Weight*float64(k) > realCap {
			break
		}
		total += it.Value
		units = k
	}
	return total, units
}

func (p *pass) candidates(it Item, i, j int, realCap float64) ([]Candidate, error) {
	bound := unitBound(it, realCap)
	cands := make([]Candidate, 1, bound+1)
	cands[0] = Candidate{Value: p.values.At(j, i-1)}
	for k := 1; k <= bound; k++ {
		cost := it.Weight * float64(k)
		if cost > realCap {
			break
		}
		prev := int(math.Floor((realCap-cost)/p.scale)) + 1
		if !p.values.inBounds(prev, i-1) {
			return nil, &RecurrenceError{Item: i, Row: j, Reason: fmt.Sprintf("previous row %d out of range", prev)}
		}
		cands = append(cands, Candidate{Value: float64(k)*it.Value + p.values.At(prev, i-1), Units: k})
	}
	return cands, nil
}
