package table

import "strings"

// Parse splits raw into lines and each line into fields on delimiter.
// The first line becomes the header. Rows whose width differs from the
// header are kept as-is; use Validate to reject them.
func Parse(raw, delimiter string) (*Table, error) {
	if err := ValidateDelimiter(delimiter); err != nil {
		return nil, err
	}

	lines := splitLines(raw)
	if len(lines) == 0 {
		return nil, EmptyInputError{}
	}

	t := &Table{
		Columns:   strings.Split(lines[0], delimiter),
		Rows:      make([][]string, 0, len(lines)-1),
		Delimiter: delimiter,
	}
	for _, line := range lines[1:] {
		t.Rows = append(t.Rows, strings.Split(line, delimiter))
	}
	return t, nil
}

// ValidateDelimiter rejects delimiters that cannot separate fields within a
// line: the empty string and anything containing \n or \r.
func ValidateDelimiter(delimiter string) error {
	if delimiter == "" || strings.ContainsAny(delimiter, "\r\n") {
		return InvalidDelimiterError{Delimiter: delimiter}
	}
	return nil
}
