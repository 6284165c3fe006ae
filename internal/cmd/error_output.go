package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/salmonumbrella/colcut/internal/fields"
	"github.com/salmonumbrella/colcut/internal/output"
	"github.com/salmonumbrella/colcut/internal/source"
	"github.com/salmonumbrella/colcut/internal/table"
)

func validateErrorFormat(format string) error {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "auto", "text", "json", "yaml":
		return nil
	default:
		return fmt.Errorf("invalid --error-format %q (expected auto|text|json|yaml)", format)
	}
}

func effectiveErrorFormat(ctx context.Context) string {
	format := strings.ToLower(strings.TrimSpace(ErrorFormatFromContext(ctx)))
	if format == "" || format == "auto" {
		if ctx == nil {
			return "text"
		}
		switch output.FormatFromContext(ctx) {
		case output.FormatJSON, output.FormatNDJSON:
			return "json"
		case output.FormatYAML:
			return "yaml"
		default:
			return "text"
		}
	}
	return format
}

func printCommandError(ctx context.Context, err error) {
	if err == nil {
		return
	}

	switch effectiveErrorFormat(ctx) {
	case "json":
		enc := json.NewEncoder(stderrFromContext(ctx))
		enc.SetEscapeHTML(false)
		_ = enc.Encode(buildErrorEnvelope(err))
		return
	case "yaml":
		enc := yaml.NewEncoder(stderrFromContext(ctx))
		enc.SetIndent(2)
		_ = enc.Encode(buildErrorEnvelope(err))
		_ = enc.Close()
		return
	}

	_, _ = fmt.Fprintln(stderrFromContext(ctx), "colcut:", err)
}

func buildErrorEnvelope(err error) map[string]interface{} {
	errMap := map[string]interface{}{
		"message":  err.Error(),
		"category": "system",
		"type":     "error",
	}

	var emptyErr table.EmptyInputError
	if errors.As(err, &emptyErr) {
		errMap["type"] = "empty_input"
		errMap["category"] = "user"
	}

	var delimErr table.InvalidDelimiterError
	if errors.As(err, &delimErr) {
		errMap["type"] = "invalid_delimiter"
		errMap["category"] = "user"
	}

	var rangeErr table.IndexOutOfRangeError
	if errors.As(err, &rangeErr) {
		errMap["type"] = "index_out_of_range"
		errMap["category"] = "user"
		errMap["field"] = rangeErr.Index + 1
		errMap["width"] = rangeErr.Width
	}

	var widthErr table.RowWidthError
	if errors.As(err, &widthErr) {
		errMap["type"] = "row_width"
		errMap["category"] = "user"
		errMap["row"] = widthErr.Row + 1
		errMap["fields"] = widthErr.Width
		if widthErr.Index >= 0 {
			errMap["field"] = widthErr.Index + 1
		}
	}

	var specErr fields.InvalidFieldSpecError
	if errors.As(err, &specErr) {
		errMap["type"] = "invalid_field_spec"
		errMap["category"] = "user"
		errMap["token"] = specErr.Token
	}

	var readErr source.SourceReadError
	if errors.As(err, &readErr) {
		errMap["type"] = "source_read"
		errMap["source"] = readErr.Name()
	}

	return map[string]interface{}{"error": errMap}
}
