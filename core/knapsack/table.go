package knapsack

import "encoding/json"

// Table is a dense grid indexed by (row, column). Row 0 and column 0 hold
// axis labels: row r is labelled with the capacity (r-1)*scale and column c
// with the 1-based item index c.
type Table struct {
	cells [][]float64
}

// BuildTable returns a zeroed table with quantized+2 rows and itemCount+1
// columns and its axis labels filled in.
func BuildTable(itemCount, quantized int, scale float64) *Table {
	rows := quantized + 2
	cols := itemCount + 1
	backing := make([]float64, rows*cols)
	cells := make([][]float64, rows)
	for r := range cells {
		cells[r] = backing[r*cols : (r+1)*cols : (r+1)*cols]
	}
	for c := 1; c < cols; c++ {
		cells[0][c] = float64(c)
	}
	for r := 1; r < rows; r++ {
		cells[r][0] = float64(r-1) * scale
	}
	return &Table{cells: cells}
}

// Rows returns the number of rows including the label row.
func (t *Table) Rows() int { return len(t.cells) }

// Cols returns the number of columns including the label column.
func (t *Table) Cols() int {
	if len(t.cells) == 0 {
		return 0
	}
	return len(t.cells[0])
}

// At returns the cell at (r, c).
func (t *Table) At(r, c int) float64 { return t.cells[r][c] }

// Set writes v at (r, c).
func (t *Table) Set(r, c int, v float64) { t.cells[r][c] = v }

// RowLabel returns the capacity represented by row r.
func (t *Table) RowLabel(r int) float64 { return t.cells[r][0] }

func (t *Table) inBounds(r, c int) bool {
	return r >= 0 && r < t.Rows() && c >= 0 && c < t.Cols()
}

// Equal reports whether both tables hold the same cells.
func (t *Table) Equal(o *Table) bool {
	if t.Rows() != o.Rows() || t.Cols() != o.Cols() {
		return false
	}
	for r := range t.cells {
		for c := range t.cells[r] {
			if t.cells[r][c] != o.cells[r][c] {
				return false
			}
		}
	}
	return true
}

// MarshalJSON encodes the grid as nested arrays.
func (t *Table) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.cells)
}
