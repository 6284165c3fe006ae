package table

import "fmt"

// Error types returned by Parse and Project.
type (
	// EmptyInputError indicates the input has no header line.
	EmptyInputError struct{}
	// InvalidDelimiterError indicates an empty delimiter or one containing a
	// line break.
	InvalidDelimiterError struct {
		Delimiter string
	}
	// IndexOutOfRangeError indicates a column index outside the header width.
	IndexOutOfRangeError struct {
		Index int
		Width int
	}
	// RowWidthError indicates a data row narrower or wider than required.
	// Row is zero-based among data rows. Index is the requested column, or -1
	// when the row was checked against the header width as a whole.
	RowWidthError struct {
		Row   int
		Index int
		Width int
		Want  int
	}
	// RowIndexError indicates a data row index outside the table.
	RowIndexError struct {
		Index int
		Len   int
	}
)

func (EmptyInputError) Error() string { return "empty input: no header line" }

func (e InvalidDelimiterError) Error() string {
	if e.Delimiter == "" {
		return "delimiter must not be empty"
	}
	return fmt.Sprintf("delimiter %q must not contain a line break", e.Delimiter)
}

func (e IndexOutOfRangeError) Error() string {
	if e.Width == 0 {
		return fmt.Sprintf("column index %d out of range: table has no columns", e.Index)
	}
	return fmt.Sprintf("column index %d out of range: valid range is 0..%d", e.Index, e.Width-1)
}

func (e RowWidthError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("row %d has %d fields, header has %d", e.Row+1, e.Width, e.Want)
	}
	return fmt.Sprintf("row %d has %d fields, no field at column index %d", e.Row+1, e.Width, e.Index)
}

func (e RowIndexError) Error() string {
	return fmt.Sprintf("row index %d out of range: table has %d rows", e.Index, e.Len)
}
