// Package table holds the in-memory tabular representation every pipeline
// stage consumes and produces, plus tolerant cell coercions.
package table

import (
	"fmt"
	"slices"
)

// Table is a header plus rows of loosely typed cells. A nil cell is missing.
// Cells hold string, float64, int64, bool or time.Time values.
type Table struct {
	Name    string
	Columns []string
	Rows    [][]any
}

// New creates an empty table with the given header.
func New(name string, columns []string) *Table {
	return &Table{Name: name, Columns: slices.Clone(columns)}
}

// Len returns the number of rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// Index returns the position of col, or -1.
func (t *Table) Index(col string) int {
	return slices.Index(t.Columns, col)
}

// Has reports whether col is part of the header.
func (t *Table) Has(col string) bool {
	return t.Index(col) >= 0
}

// Cell returns the value at row r, column c. Short rows read as missing.
func (t *Table) Cell(r, c int) any {
	if c < 0 || r < 0 || r >= len(t.Rows) {
		return nil
	}
	row := t.Rows[r]
	if c >= len(row) {
		return nil
	}
	return row[c]
}

// Append adds a row. Rows shorter than the header are padded with nil.
func (t *Table) Append(row ...any) {
	out := make([]any, len(t.Columns))
	copy(out, row)
	t.Rows = append(t.Rows, out)
}

// Column returns a copy of every cell of col. Unknown columns return nil.
func (t *Table) Column(col string) []any {
	idx := t.Index(col)
	if idx < 0 {
		return nil
	}
	out := make([]any, len(t.Rows))
	for i := range t.Rows {
		out[i] = t.Cell(i, idx)
	}
	return out
}

// Map returns a new table with the same header whose cells are fn(cell).
func (t *Table) Map(fn func(col string, v any) any) *Table {
	out := New(t.Name, t.Columns)
	out.Rows = make([][]any, len(t.Rows))
	for i, row := range t.Rows {
		nr := make([]any, len(t.Columns))
		for j := range t.Columns {
			var v any
			if j < len(row) {
				v = row[j]
			}
			nr[j] = fn(t.Columns[j], v)
		}
		out.Rows[i] = nr
	}
	return out
}

// Rename returns a shallow copy of t with a new header of the same width.
func (t *Table) Rename(columns []string) (*Table, error) {
	if len(columns) != len(t.Columns) {
		return nil, fmt.Errorf("rename %s: %d columns for a %d-column table", t.Name, len(columns), len(t.Columns))
	}
	return &Table{Name: t.Name, Columns: slices.Clone(columns), Rows: t.Rows}, nil
}

// Select keeps the rows at the given indexes, in order.
func (t *Table) Select(idx []int) *Table {
	out := New(t.Name, t.Columns)
	out.Rows = make([][]any, 0, len(idx))
	for _, i := range idx {
		out.Rows = append(out.Rows, t.Rows[i])
	}
	return out
}

// ColumnDiff lists the header differences between two tables.
type ColumnDiff struct {
	Left      string
	Right     string
	OnlyLeft  []string
	OnlyRight []string
}

// Empty reports whether both tables share exactly the same column set.
func (d ColumnDiff) Empty() bool {
	return len(d.OnlyLeft) == 0 && len(d.OnlyRight) == 0
}

// Diff compares the column sets of a and b, preserving header order.
func Diff(a, b *Table) ColumnDiff {
	d := ColumnDiff{Left: a.Name, Right: b.Name}
	for _, c := range a.Columns {
		if !b.Has(c) {
			d.OnlyLeft = append(d.OnlyLeft, c)
		}
	}
	for _, c := range b.Columns {
		if !a.Has(c) {
			d.OnlyRight = append(d.OnlyRight, c)
		}
	}
	return d
}

// Union stacks tables vertically. The header is the first table's columns
// followed by unseen columns in order of first appearance; cells a table
// lacks are missing.
func Union(name string, tables ...*Table) *Table {
	var cols []string
	seen := make(map[string]bool)
	for _, t := range tables {
		for _, c := range t.Columns {
			if !seen[c] {
				seen[c] = true
				cols = append(cols, c)
			}
		}
	}
	out := New(name, cols)
	for _, t := range tables {
		pos := make([]int, len(t.Columns))
		for j, c := range t.Columns {
			pos[j] = out.Index(c)
		}
		for i := range t.Rows {
			row := make([]any, len(cols))
			for j := range t.Columns {
				row[pos[j]] = t.Cell(i, j)
			}
			out.Rows = append(out.Rows, row)
		}
	}
	return out
}
