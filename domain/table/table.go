// Package table holds the immutable rectangular table every chart and
// statistic in dataviz is computed from.
package table

import (
	"fmt"

	"dataviz/internal/errors"
)

// Table is an ordered set of uniquely named columns plus rows of cells.
// Every row has exactly as many cells as there are columns. A Table is never
// mutated after construction, so it can be shared between goroutines.
type Table struct {
	columns []string
	index   map[string]int
	rows    [][]Cell
}

// New builds a table from a header and rows. Rows whose width differs from
// the header are rejected with a SHAPE_ERROR rather than padded or truncated.
func New(header []string, rows [][]Cell) (*Table, error) {
	index := make(map[string]int, len(header))
	for i, name := range header {
		if _, dup := index[name]; dup {
			return nil, errors.ShapeError(fmt.Sprintf("duplicate column name %q", name))
		}
		index[name] = i
	}

	copied := make([][]Cell, len(rows))
	for i, row := range rows {
		if len(row) != len(header) {
			return nil, errors.ShapeError(fmt.Sprintf(
				"row %d has %d cells, expected %d", i+1, len(row), len(header)))
		}
		copied[i] = append([]Cell(nil), row...)
	}

	return &Table{
		columns: append([]string(nil), header...),
		index:   index,
		rows:    copied,
	}, nil
}

// Empty returns a table with no columns and no rows.
func Empty() *Table {
	return &Table{index: map[string]int{}}
}

// Columns returns the column names in order.
func (t *Table) Columns() []string {
	return append([]string(nil), t.columns...)
}

// Width is the number of columns.
func (t *Table) Width() int { return len(t.columns) }

// Len is the number of rows.
func (t *Table) Len() int { return len(t.rows) }

func (t *Table) Has(name string) bool {
	_, ok := t.index[name]
	return ok
}

// Index returns the position of the named column.
func (t *Table) Index(name string) (int, bool) {
	i, ok := t.index[name]
	return i, ok
}

// Column returns a copy of the named column's cells.
func (t *Table) Column(name string) ([]Cell, error) {
	i, ok := t.index[name]
	if !ok {
		return nil, errors.ColumnNotFound(name)
	}
	out := make([]Cell, len(t.rows))
	for r, row := range t.rows {
		out[r] = row[i]
	}
	return out, nil
}

// Row returns a copy of row i.
func (t *Table) Row(i int) []Cell {
	return append([]Cell(nil), t.rows[i]...)
}

// At returns the cell at (row, col).
func (t *Table) At(row, col int) Cell {
	return t.rows[row][col]
}
