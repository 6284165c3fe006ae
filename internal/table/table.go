// Package table holds the delimited-table model: parsing raw text into a Table,
// projecting columns by index, and rendering a Table back to text.
package table

import "strings"

// DefaultDelimiter is used when no delimiter is configured.
const DefaultDelimiter = "\t"

// Table is a header row plus data rows split on a literal delimiter.
// A Table is never mutated after construction; every transformation
// returns a new one.
type Table struct {
	Columns   []string   `json:"columns" yaml:"columns"`
	Rows      [][]string `json:"rows" yaml:"rows"`
	Delimiter string     `json:"delimiter" yaml:"delimiter"`
}

// Width returns the number of header columns.
func (t *Table) Width() int {
	return len(t.Columns)
}

// Len returns the number of data rows.
func (t *Table) Len() int {
	return len(t.Rows)
}

// Row returns a copy of the data row at index.
func (t *Table) Row(index int) ([]string, error) {
	if index < 0 || index >= len(t.Rows) {
		return nil, RowIndexError{Index: index, Len: len(t.Rows)}
	}
	return append([]string(nil), t.Rows[index]...), nil
}

// Column returns a single-column table for the header column at index.
func (t *Table) Column(index int) (*Table, error) {
	return Project(t, []int{index})
}

// WithDelimiter returns a copy of t that renders with delimiter.
func (t *Table) WithDelimiter(delimiter string) *Table {
	out := t.clone()
	out.Delimiter = delimiter
	return out
}

// Head returns a copy of t holding at most n data rows.
func (t *Table) Head(n int) *Table {
	out := t.clone()
	if n >= 0 && n < len(out.Rows) {
		out.Rows = out.Rows[:n]
	}
	return out
}

// Validate reports the first data row whose width differs from the header.
func (t *Table) Validate() error {
	for i, row := range t.Rows {
		if len(row) != len(t.Columns) {
			return RowWidthError{Row: i, Index: -1, Width: len(row), Want: len(t.Columns)}
		}
	}
	return nil
}

// Equal reports whether both tables have the same columns, rows and delimiter.
func (t *Table) Equal(other *Table) bool {
	if t == nil || other == nil {
		return t == other
	}
	if t.Delimiter != other.Delimiter || !equalFields(t.Columns, other.Columns) || len(t.Rows) != len(other.Rows) {
		return false
	}
	for i := range t.Rows {
		if !equalFields(t.Rows[i], other.Rows[i]) {
			return false
		}
	}
	return true
}

func (t *Table) clone() *Table {
	out := &Table{
		Columns:   append([]string{}, t.Columns...),
		Rows:      make([][]string, len(t.Rows)),
		Delimiter: t.Delimiter,
	}
	for i, row := range t.Rows {
		out.Rows[i] = append([]string{}, row...)
	}
	return out
}

func equalFields(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// splitLines splits text on \n, \r\n and lone \r. A trailing terminator
// does not produce an empty final line.
func splitLines(raw string) []string {
	if raw == "" {
		return nil
	}
	raw = strings.ReplaceAll(raw, "\r\n", "\n")
	raw = strings.ReplaceAll(raw, "\r", "\n")
	lines := strings.Split(raw, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}
