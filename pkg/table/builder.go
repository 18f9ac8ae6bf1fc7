package table

import (
	"fmt"
	"strconv"
)

// Builder accumulates rows and produces a Table.
type Builder struct {
	name    string
	columns []string
	values  [][]any
	rows    int
}

// NewBuilder creates a builder for the given columns. Blank names become
// "Unnamed: <position>" and repeated names get ".1", ".2"... suffixes so every
// column name in the result is unique.
func NewBuilder(name string, columns []string) *Builder {
	cols := UniqueColumns(columns)
	return &Builder{
		name:    name,
		columns: cols,
		values:  make([][]any, len(cols)),
	}
}

// Columns returns the deduplicated column names.
func (b *Builder) Columns() []string {
	out := make([]string, len(b.columns))
	copy(out, b.columns)
	return out
}

// Len returns the number of rows appended so far.
func (b *Builder) Len() int { return b.rows }

// AppendRow appends one row. The row must have exactly one value per column.
func (b *Builder) AppendRow(row []any) error {
	if len(row) != len(b.columns) {
		return fmt.Errorf("row %d has %d values, expected %d", b.rows, len(row), len(b.columns))
	}
	for c, v := range row {
		b.values[c] = append(b.values[c], v)
	}
	b.rows++
	return nil
}

// Build returns the finished table. The builder must not be used afterwards.
func (b *Builder) Build() *Table {
	index := make(map[string]int, len(b.columns))
	for i, name := range b.columns {
		index[name] = i
	}
	values := b.values
	for c := range values {
		if values[c] == nil {
			values[c] = []any{}
		}
	}
	return &Table{
		name:    b.name,
		columns: b.columns,
		index:   index,
		values:  values,
		rows:    b.rows,
	}
}

// FromRows builds a table from row-major data.
func FromRows(name string, columns []string, rows [][]any) (*Table, error) {
	b := NewBuilder(name, columns)
	for _, row := range rows {
		if err := b.AppendRow(row); err != nil {
			return nil, err
		}
	}
	return b.Build(), nil
}

// FromColumns builds a table from column-major data. Every column must hold
// the same number of values.
func FromColumns(name string, columns []string, values [][]any) (*Table, error) {
	if len(values) != len(columns) {
		return nil, fmt.Errorf("got %d value columns for %d names", len(values), len(columns))
	}
	rows := 0
	for c := range values {
		if c == 0 {
			rows = len(values[c])
		} else if len(values[c]) != rows {
			return nil, fmt.Errorf("column %d has %d values, expected %d", c, len(values[c]), rows)
		}
	}
	b := NewBuilder(name, columns)
	for c := range values {
		b.values[c] = values[c]
	}
	b.rows = rows
	return b.Build(), nil
}

// UniqueColumns returns names with blanks filled in and duplicates suffixed.
func UniqueColumns(names []string) []string {
	out := make([]string, len(names))
	seen := make(map[string]bool, len(names))
	for i, name := range names {
		if name == "" {
			name = "Unnamed: " + strconv.Itoa(i)
		}
		candidate := name
		for n := 1; seen[candidate]; n++ {
			candidate = name + "." + strconv.Itoa(n)
		}
		seen[candidate] = true
		out[i] = candidate
	}
	return out
}

// IndexColumns returns "0", "1", ... "n-1", used when a source has no header.
func IndexColumns(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = strconv.Itoa(i)
	}
	return out
}
