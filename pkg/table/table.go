// Package table provides the in-memory tabular value returned by every load.
//
// A Table is an ordered set of uniquely named columns, each holding one value
// per row. Values are stored column-major, so RowCount and ColumnCount are
// read straight off the stored data and always agree with it.
//
// Tables are created fresh by each load and owned by the caller. They are not
// safe for concurrent mutation, but nothing in this module mutates a Table
// after Build returns it.
package table

import (
	"fmt"
	"reflect"
	"strings"
)

// Table is an in-memory table of named columns.
type Table struct {
	name    string
	columns []string
	index   map[string]int
	values  [][]any
	rows    int
}

// Empty returns a table with no columns and no rows.
func Empty(name string) *Table {
	return &Table{name: name, index: map[string]int{}}
}

// Name returns the table's name, usually the source table or file stem.
func (t *Table) Name() string { return t.name }

// RowCount returns the number of rows.
func (t *Table) RowCount() int { return t.rows }

// ColumnCount returns the number of columns.
func (t *Table) ColumnCount() int { return len(t.columns) }

// Shape returns (rows, columns).
func (t *Table) Shape() (int, int) { return t.rows, len(t.columns) }

// Columns returns a copy of the column names in order.
func (t *Table) Columns() []string {
	out := make([]string, len(t.columns))
	copy(out, t.columns)
	return out
}

// HasColumn reports whether name is a column.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.index[name]
	return ok
}

// Column returns the values of the named column.
func (t *Table) Column(name string) ([]any, bool) {
	i, ok := t.index[name]
	if !ok {
		return nil, false
	}
	return t.ColumnAt(i), true
}

// ColumnAt returns a copy of the values of column i.
func (t *Table) ColumnAt(i int) []any {
	out := make([]any, t.rows)
	copy(out, t.values[i])
	return out
}

// Value returns the value at row r, column c.
func (t *Table) Value(r, c int) any {
	return t.values[c][r]
}

// Row returns the values of row r in column order.
func (t *Table) Row(r int) []any {
	row := make([]any, len(t.columns))
	for c := range t.columns {
		row[c] = t.values[c][r]
	}
	return row
}

// Rows returns every row in order.
func (t *Table) Rows() [][]any {
	rows := make([][]any, t.rows)
	for r := range rows {
		rows[r] = t.Row(r)
	}
	return rows
}

// Records returns every row as a column-name keyed map.
func (t *Table) Records() []map[string]any {
	records := make([]map[string]any, t.rows)
	for r := range records {
		rec := make(map[string]any, len(t.columns))
		for c, name := range t.columns {
			rec[name] = t.values[c][r]
		}
		records[r] = rec
	}
	return records
}

// Head returns a new table holding the first n rows.
func (t *Table) Head(n int) *Table {
	if n < 0 {
		n = 0
	}
	if n > t.rows {
		n = t.rows
	}
	values := make([][]any, len(t.columns))
	for c := range t.values {
		values[c] = append([]any(nil), t.values[c][:n]...)
	}
	return &Table{
		name:    t.name,
		columns: t.Columns(),
		index:   t.copyIndex(),
		values:  values,
		rows:    n,
	}
}

// Equal reports whether both tables have the same columns and values.
// Names are not compared.
func (t *Table) Equal(other *Table) bool {
	if other == nil {
		return false
	}
	if t.rows != other.rows || !reflect.DeepEqual(t.columns, other.columns) {
		return false
	}
	return reflect.DeepEqual(t.values, other.values)
}

// String returns a short summary such as "users: 3 rows x 2 columns [id name]".
func (t *Table) String() string {
	name := t.name
	if name == "" {
		name = "table"
	}
	return fmt.Sprintf("%s: %d rows x %d columns [%s]", name, t.rows, len(t.columns), strings.Join(t.columns, " "))
}

func (t *Table) copyIndex() map[string]int {
	idx := make(map[string]int, len(t.index))
	for k, v := range t.index {
		idx[k] = v
	}
	return idx
}
