package table

// Project returns a new table holding the columns at indices, in order.
// Indices may repeat. Every index is checked against the header width
// before any row is built, so a failed projection returns no table.
func Project(t *Table, indices []int) (*Table, error) {
	width := len(t.Columns)
	for _, i := range indices {
		if i < 0 || i >= width {
			return nil, IndexOutOfRangeError{Index: i, Width: width}
		}
	}

	out := &Table{
		Columns:   make([]string, 0, len(indices)),
		Rows:      make([][]string, 0, len(t.Rows)),
		Delimiter: t.Delimiter,
	}
	for _, i := range indices {
		out.Columns = append(out.Columns, t.Columns[i])
	}

	for n, row := range t.Rows {
		projected := make([]string, 0, len(indices))
		for _, i := range indices {
			if i >= len(row) {
				return nil, RowWidthError{Row: n, Index: i, Width: len(row), Want: width}
			}
			projected = append(projected, row[i])
		}
		out.Rows = append(out.Rows, projected)
	}

	return out, nil
}
