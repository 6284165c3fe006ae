package output

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/itchyny/gojq"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"gopkg.in/yaml.v3"

	coltable "github.com/salmonumbrella/colcut/internal/table"
)

// Format represents the output format type.
type Format string

const (
	// FormatText is the delimiter-joined rendering (default).
	FormatText Format = "text"
	// FormatJSON is pretty-printed JSON format.
	FormatJSON Format = "json"
	// FormatNDJSON is newline-delimited JSON format.
	FormatNDJSON Format = "ndjson"
	// FormatTable is whitespace-aligned columns.
	FormatTable Format = "table"
	// FormatPretty is a box-drawn table.
	FormatPretty Format = "pretty"
	// FormatYAML is YAML format.
	FormatYAML Format = "yaml"
)

// ParseFormat converts a string to a Format type.
// Empty string defaults to FormatText.
// Returns error if the format is invalid.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case FormatText, "":
		return FormatText, nil
	case FormatJSON:
		return FormatJSON, nil
	case FormatNDJSON:
		return FormatNDJSON, nil
	case FormatTable:
		return FormatTable, nil
	case FormatPretty:
		return FormatPretty, nil
	case FormatYAML:
		return FormatYAML, nil
	default:
		return "", errors.New("invalid --output format (expected text|json|ndjson|table|pretty|yaml)")
	}
}

// IsStructured reports whether the format is machine-readable structured output.
func IsStructured(format Format) bool {
	switch format {
	case FormatJSON, FormatNDJSON, FormatYAML:
		return true
	default:
		return false
	}
}

// Printer handles output formatting across different formats.
type Printer struct {
	w      io.Writer
	format Format
}

// NewPrinter creates a new Printer that writes to w in the given format.
func NewPrinter(w io.Writer, format Format) *Printer {
	return &Printer{
		w:      w,
		format: format,
	}
}

// PrintTable writes t in the configured format, honoring the row limit and
// header suppression stored in ctx.
func (p *Printer) PrintTable(ctx context.Context, t *coltable.Table) error {
	if t == nil {
		return nil
	}
	if limit := LimitFromContext(ctx); limit > 0 {
		t = t.Head(limit)
	}
	noHeader := NoHeaderFromContext(ctx)

	switch p.format {
	case FormatText:
		return p.printRendered(t, noHeader)
	case FormatTable:
		return p.printAligned(t, noHeader)
	case FormatPretty:
		return p.printPretty(t, noHeader)
	case FormatNDJSON:
		return p.printTableNDJSON(ctx, t, noHeader)
	case FormatJSON, FormatYAML:
		return p.Print(ctx, Document(t))
	default:
		return fmt.Errorf("unsupported format: %s", p.format)
	}
}

// Print outputs generic data (maps, slices, scalars) in the configured format.
func (p *Printer) Print(ctx context.Context, data interface{}) error {
	if data == nil {
		return nil
	}

	switch p.format {
	case FormatJSON:
		return p.printJSON(ctx, data)
	case FormatNDJSON:
		return p.printNDJSON(ctx, data)
	case FormatYAML:
		return p.printYAML(data)
	case FormatText:
		return p.printText(data)
	case FormatTable, FormatPretty:
		return fmt.Errorf("%s format requires tabular data", p.format)
	default:
		return fmt.Errorf("unsupported format: %s", p.format)
	}
}

// Document converts t into JSON-compatible values usable by gojq.
func Document(t *coltable.Table) map[string]interface{} {
	columns := make([]interface{}, 0, len(t.Columns))
	for _, c := range t.Columns {
		columns = append(columns, c)
	}
	rows := make([]interface{}, 0, len(t.Rows))
	for _, row := range t.Rows {
		rows = append(rows, fieldsToAny(row))
	}
	return map[string]interface{}{
		"columns":   columns,
		"rows":      rows,
		"delimiter": t.Delimiter,
	}
}

func fieldsToAny(fields []string) []interface{} {
	out := make([]interface{}, 0, len(fields))
	for _, f := range fields {
		out = append(out, f)
	}
	return out
}

func (p *Printer) printRendered(t *coltable.Table, noHeader bool) error {
	rendered := coltable.Render(t)
	if noHeader {
		if len(t.Rows) == 0 {
			return nil
		}
		rendered = coltable.RenderRows(t)
	}
	_, err := fmt.Fprintln(p.w, rendered)
	return err
}

// printJSON outputs data as pretty-printed JSON.
// If a jq query is present in the context, it filters the output.
func (p *Printer) printJSON(ctx context.Context, data interface{}) error {
	query := QueryFromContext(ctx)
	if query == "" {
		enc := json.NewEncoder(p.w)
		enc.SetEscapeHTML(false)
		enc.SetIndent("", "  ")
		return enc.Encode(data)
	}

	return p.runQuery(query, data)
}

// printNDJSON outputs data as newline-delimited JSON.
// If a jq query is present in the context, it filters the output.
func (p *Printer) printNDJSON(ctx context.Context, data interface{}) error {
	if query := QueryFromContext(ctx); query != "" {
		return p.runQuery(query, data)
	}

	enc := json.NewEncoder(p.w)
	enc.SetEscapeHTML(false)
	if items, ok := data.([]interface{}); ok {
		for _, item := range items {
			if err := enc.Encode(item); err != nil {
				return err
			}
		}
		return nil
	}
	return enc.Encode(data)
}

// printTableNDJSON writes the header and each row as one JSON array per line.
func (p *Printer) printTableNDJSON(ctx context.Context, t *coltable.Table, noHeader bool) error {
	if QueryFromContext(ctx) != "" {
		return p.printNDJSON(ctx, Document(t))
	}

	lines := make([]interface{}, 0, len(t.Rows)+1)
	if !noHeader {
		lines = append(lines, fieldsToAny(t.Columns))
	}
	for _, row := range t.Rows {
		lines = append(lines, fieldsToAny(row))
	}
	return p.printNDJSON(ctx, lines)
}

func (p *Printer) runQuery(query string, data interface{}) error {
	parsed, err := gojq.Parse(query)
	if err != nil {
		return fmt.Errorf("invalid --query: %w", err)
	}

	code, err := gojq.Compile(parsed)
	if err != nil {
		return fmt.Errorf("invalid --query: %w", err)
	}

	iter := code.Run(data)
	enc := json.NewEncoder(p.w)
	enc.SetEscapeHTML(false)

	for {
		v, ok := iter.Next()
		if !ok {
			break
		}
		if err, isErr := v.(error); isErr {
			return fmt.Errorf("query error: %w", err)
		}
		if err := enc.Encode(v); err != nil {
			return err
		}
	}

	return nil
}

// printYAML outputs data as YAML.
func (p *Printer) printYAML(data interface{}) error {
	enc := yaml.NewEncoder(p.w)
	enc.SetIndent(2)
	defer func() { _ = enc.Close() }()
	return enc.Encode(data)
}

// printText writes list items one per line and anything else with fmt defaults.
func (p *Printer) printText(data interface{}) error {
	if items, ok := data.([]interface{}); ok {
		for _, item := range items {
			if _, err := fmt.Fprintln(p.w, item); err != nil {
				return err
			}
		}
		return nil
	}
	_, err := fmt.Fprintln(p.w, data)
	return err
}

func (p *Printer) printAligned(t *coltable.Table, noHeader bool) error {
	w := tabwriter.NewWriter(p.w, 0, 0, 2, ' ', 0)

	if !noHeader {
		writeTabbed(w, t.Columns)
	}
	for _, row := range t.Rows {
		writeTabbed(w, row)
	}

	return w.Flush()
}

func writeTabbed(w io.Writer, cells []string) {
	for i, cell := range cells {
		if i > 0 {
			fmt.Fprint(w, "\t")
		}
		fmt.Fprint(w, cell)
	}
	fmt.Fprintln(w)
}

func (p *Printer) printPretty(t *coltable.Table, noHeader bool) error {
	tw := table.NewWriter()
	if !noHeader {
		tw.AppendHeader(toRow(t.Columns))
	}
	for _, row := range t.Rows {
		tw.AppendRow(toRow(row))
	}
	tw.SetStyle(table.StyleLight)
	tw.Style().Format = table.FormatOptions{
		Footer: text.FormatDefault,
		Header: text.FormatDefault,
		Row:    text.FormatDefault,
	}
	tw.SuppressTrailingSpaces()

	_, err := fmt.Fprintln(p.w, tw.Render())
	return err
}

func toRow(fields []string) table.Row {
	row := make(table.Row, 0, len(fields))
	for _, f := range fields {
		row = append(row, f)
	}
	return row
}
