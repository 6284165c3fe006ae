package cmd

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/salmonumbrella/colcut/internal/fields"
	"github.com/salmonumbrella/colcut/internal/output"
	"github.com/salmonumbrella/colcut/internal/source"
	"github.com/salmonumbrella/colcut/internal/table"
)

func runCut(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cmd.SilenceUsage = true

	// Field specs are validated before any input is read.
	indices, err := fields.ParseAll(fieldSpecs)
	if err != nil {
		return err
	}
	logger.Printf("fields %q -> indices %v", fieldSpecs, indices)

	path := ""
	if len(args) == 1 {
		path = args[0]
	}
	stdin := stdinFromContext(ctx)
	if source.IsStdin(path) && stdinIsTerminal(stdin) {
		fmt.Fprintln(stderrFromContext(ctx), "colcut: reading table from terminal (end with Ctrl-D)")
	}

	raw, err := source.Read(path, stdin)
	if err != nil {
		return err
	}
	logger.Printf("read %d bytes from %s", len(raw), sourceName(path))

	projected, err := extract(raw, indices, settings)
	if err != nil {
		return userFieldError(err)
	}
	logger.Printf("projected %d columns x %d rows", projected.Width(), projected.Len())

	return writeResult(cmd, projected)
}

// extract runs parse, optional width validation and projection.
func extract(raw string, indices []int, s runSettings) (*table.Table, error) {
	parsed, err := table.Parse(raw, s.delimiter)
	if err != nil {
		return nil, err
	}
	logger.Printf("parsed %d columns x %d rows", parsed.Width(), parsed.Len())

	if s.strict {
		if err := parsed.Validate(); err != nil {
			return nil, err
		}
	}

	projected, err := table.Project(parsed, indices)
	if err != nil {
		return nil, err
	}
	if s.outputDelimiter != "" {
		projected = projected.WithDelimiter(s.outputDelimiter)
	}
	return projected, nil
}

func writeResult(cmd *cobra.Command, t *table.Table) error {
	ctx := cmd.Context()
	if outFile == "" {
		return output.NewPrinter(stdoutFromContext(ctx), GetOutputFormat()).PrintTable(ctx, t)
	}

	var buf bytes.Buffer
	if err := output.NewPrinter(&buf, GetOutputFormat()).PrintTable(ctx, t); err != nil {
		return err
	}
	size := buf.Len()
	if err := writeFileFunc(outFile, &buf); err != nil {
		return fmt.Errorf("write %s: %w", outFile, err)
	}
	logger.Printf("wrote %d bytes to %s", size, outFile)
	return nil
}

// fieldError restates a column index failure in the 1-based field numbers
// given on the command line.
type fieldError struct {
	msg string
	err error
}

func (e fieldError) Error() string { return e.msg }

func (e fieldError) Unwrap() error { return e.err }

func userFieldError(err error) error {
	var rangeErr table.IndexOutOfRangeError
	if errors.As(err, &rangeErr) {
		if rangeErr.Width == 0 {
			return fieldError{msg: fmt.Sprintf("field %d out of range: input has no columns", rangeErr.Index+1), err: err}
		}
		return fieldError{
			msg: fmt.Sprintf("field %d out of range: valid fields are 1..%d", rangeErr.Index+1, rangeErr.Width),
			err: err,
		}
	}

	var widthErr table.RowWidthError
	if errors.As(err, &widthErr) && widthErr.Index >= 0 {
		return fieldError{
			msg: fmt.Sprintf("row %d has %d fields, no field %d", widthErr.Row+1, widthErr.Width, widthErr.Index+1),
			err: err,
		}
	}
	return err
}

func sourceName(path string) string {
	if source.IsStdin(path) {
		return "stdin"
	}
	return path
}
