// Package fields parses user-facing field lists such as "2", "1,3", "1 3"
// or "2-4" into zero-based column indices.
package fields

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/kballard/go-shellquote"
)

// MaxRangeSpan bounds how many fields a single range may expand to.
const MaxRangeSpan = 1 << 16

// InvalidFieldSpecError indicates a field token that is not a positive
// integer, a list of them, or an ascending range.
type InvalidFieldSpecError struct {
	Token  string
	Reason string
	Err    error
}

func (e InvalidFieldSpecError) Error() string {
	msg := fmt.Sprintf("invalid field spec %q: %s", e.Token, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e InvalidFieldSpecError) Unwrap() error { return e.Err }

// Separator returns the list separator inferred for token: a space only
// when the token contains a space and no comma, otherwise a comma.
func Separator(token string) string {
	if strings.Contains(token, " ") && !strings.Contains(token, ",") {
		return " "
	}
	return ","
}

// Parse converts one field token into zero-based indices, preserving order
// and repeats.
func Parse(token string) ([]int, error) {
	trimmed := strings.TrimSpace(token)
	if trimmed == "" {
		return nil, InvalidFieldSpecError{Token: token, Reason: "empty field list"}
	}

	var parts []string
	if Separator(trimmed) == " " {
		split, err := shellquote.Split(trimmed)
		if err != nil {
			return nil, InvalidFieldSpecError{Token: token, Reason: "cannot split list", Err: err}
		}
		parts = split
	} else {
		parts = strings.Split(trimmed, ",")
	}

	indices := make([]int, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			return nil, InvalidFieldSpecError{Token: token, Reason: "empty list item"}
		}
		parsed, err := parseItem(token, part)
		if err != nil {
			return nil, err
		}
		indices = append(indices, parsed...)
	}
	return indices, nil
}

// ParseAll parses every token in order and concatenates the results.
func ParseAll(tokens []string) ([]int, error) {
	var indices []int
	for _, token := range tokens {
		parsed, err := Parse(token)
		if err != nil {
			return nil, err
		}
		indices = append(indices, parsed...)
	}
	return indices, nil
}

func parseItem(token, item string) ([]int, error) {
	start, end, isRange := strings.Cut(item, "-")
	if !isRange {
		n, err := parsePosition(token, item)
		if err != nil {
			return nil, err
		}
		return []int{n - 1}, nil
	}

	from, err := parsePosition(token, strings.TrimSpace(start))
	if err != nil {
		return nil, err
	}
	to, err := parsePosition(token, strings.TrimSpace(end))
	if err != nil {
		return nil, err
	}
	if to < from {
		return nil, InvalidFieldSpecError{Token: token, Reason: fmt.Sprintf("descending range %s", item)}
	}
	if to-from >= MaxRangeSpan {
		return nil, InvalidFieldSpecError{Token: token, Reason: fmt.Sprintf("range too large %s (at most %d fields)", item, MaxRangeSpan)}
	}

	out := make([]int, 0, to-from+1)
	for n := from; n <= to; n++ {
		out = append(out, n-1)
	}
	return out, nil
}

func parsePosition(token, s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, InvalidFieldSpecError{Token: token, Reason: fmt.Sprintf("%q is not an integer", s), Err: err}
	}
	if n < 1 {
		return 0, InvalidFieldSpecError{Token: token, Reason: fmt.Sprintf("field %d is not positive (fields start at 1)", n)}
	}
	return n, nil
}
