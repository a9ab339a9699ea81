package dataset

import (
	"errors"
	"fmt"
)

var ErrOutOfRange = errors.New("cell out of range")

// Dataset is a header row plus data rows. Row 0 of Rows is the first data
// row and doubles as the preview sample. A Dataset is not modified after
// loading; partitioning works on copies.
type Dataset struct {
	Header []string
	Rows   [][]Cell
}

// New builds a Dataset, padding every row with Missing cells to the header width.
func New(header []string, rows [][]Cell) *Dataset {
	width := len(header)
	for _, row := range rows {
		if len(row) > width {
			width = len(row)
		}
	}
	h := make([]string, width)
	copy(h, header)

	padded := make([][]Cell, len(rows))
	for i, row := range rows {
		r := make([]Cell, width)
		copy(r, row)
		padded[i] = r
	}
	return &Dataset{Header: h, Rows: padded}
}

// Len is the number of data rows.
func (d *Dataset) Len() int { return len(d.Rows) }

// Width is the number of columns.
func (d *Dataset) Width() int { return len(d.Header) }

// Sample returns the first data row.
func (d *Dataset) Sample() ([]Cell, bool) {
	if len(d.Rows) == 0 {
		return nil, false
	}
	return d.Rows[0], true
}

// Cell returns the value at a 0-based data row and column.
func (d *Dataset) Cell(row, col int) (Cell, error) {
	if row < 0 || row >= len(d.Rows) {
		return Cell{}, fmt.Errorf("row %d: %w", row, ErrOutOfRange)
	}
	if col < 0 || col >= len(d.Rows[row]) {
		return Cell{}, fmt.Errorf("column %d: %w", col, ErrOutOfRange)
	}
	return d.Rows[row][col], nil
}

// Copy returns a deep copy of the dataset.
func (d *Dataset) Copy() *Dataset {
	return New(d.Header, d.Rows)
}

// Slice returns rows [start, end) as a new dataset sharing no row storage.
func (d *Dataset) Slice(start, end int) *Dataset {
	if start < 0 {
		start = 0
	}
	if end > len(d.Rows) {
		end = len(d.Rows)
	}
	if start >= end {
		return New(d.Header, nil)
	}
	return New(d.Header, d.Rows[start:end])
}

// Select returns the rows at the given indices, in the given order.
func (d *Dataset) Select(indices []int) *Dataset {
	rows := make([][]Cell, 0, len(indices))
	for _, i := range indices {
		if i >= 0 && i < len(d.Rows) {
			rows = append(rows, d.Rows[i])
		}
	}
	return New(d.Header, rows)
}
