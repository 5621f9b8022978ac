// Package table holds the parsed tabular input consumed by catalogs: column
// metadata plus row arrays. Readers for VOTable documents and SQL databases
// produce Tables; the catalog package turns them into sources.
package table

import (
	"fmt"

	"github.com/leapstack-labs/skyoverlay/pkg/field"
)

// Table is a parsed table.
type Table struct {
	Name    string
	Columns []field.Column
	Rows    [][]any
}

// FromArray builds a table from bare column names and row arrays.
func FromArray(name string, columnNames []string, rows [][]any) *Table {
	cols := make([]field.Column, len(columnNames))
	for i, n := range columnNames {
		cols[i] = field.Column{Name: n}
	}
	return &Table{Name: name, Columns: cols, Rows: rows}
}

// ColumnNames returns the label of every column.
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Label()
	}
	return names
}

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.Rows) }

// Head returns a shallow copy limited to the first n rows. n <= 0 keeps every
// row.
func (t *Table) Head(n int) *Table {
	rows := t.Rows
	if n > 0 && n < len(rows) {
		rows = rows[:n]
	}
	return &Table{Name: t.Name, Columns: t.Columns, Rows: rows}
}

// Validate checks that every row has one cell per column.
func (t *Table) Validate() error {
	for i, row := range t.Rows {
		if len(row) != len(t.Columns) {
			return fmt.Errorf("table %q: row %d has %d cells, expected %d", t.Name, i, len(row), len(t.Columns))
		}
	}
	return nil
}
