package cmd

import (
	"context"

	"github.com/salmonumbrella/colcut/internal/output"
)

func structuredOutputRequested() bool {
	return output.IsStructured(GetOutputFormat())
}

func printStructured(ctx context.Context, data interface{}) error {
	format := GetOutputFormat()
	if !output.IsStructured(format) {
		format = output.FormatText
	}
	printer := output.NewPrinter(stdoutFromContext(ctx), format)
	return printer.Print(ctx, data)
}
