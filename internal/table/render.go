package table

import "strings"

// Render joins the header and each row with the table delimiter, one line
// each, separated by "\n" with no trailing newline.
func Render(t *Table) string {
	var b strings.Builder
	b.WriteString(strings.Join(t.Columns, t.Delimiter))
	for _, row := range t.Rows {
		b.WriteByte('\n')
		b.WriteString(strings.Join(row, t.Delimiter))
	}
	return b.String()
}

// RenderRows is Render without the header line.
func RenderRows(t *Table) string {
	lines := make([]string, 0, len(t.Rows))
	for _, row := range t.Rows {
		lines = append(lines, strings.Join(row, t.Delimiter))
	}
	return strings.Join(lines, "\n")
}
