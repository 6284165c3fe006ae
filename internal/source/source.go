// Package source reads the raw table text from a file or standard input.
package source

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// Stdin is the path that selects standard input.
const Stdin = "-"

// SourceReadError indicates the input could not be read.
type SourceReadError struct {
	Source string
	Err    error
}

func (e SourceReadError) Error() string {
	return fmt.Sprintf("failed to read %s: %v", e.Name(), e.Err)
}

func (e SourceReadError) Unwrap() error { return e.Err }

// Name returns the display name of the source.
func (e SourceReadError) Name() string {
	if IsStdin(e.Source) {
		return "standard input"
	}
	return e.Source
}

// IsStdin reports whether path selects standard input.
func IsStdin(path string) bool {
	trimmed := strings.TrimSpace(path)
	return trimmed == "" || trimmed == Stdin
}

// Read drains path, or stdin when path is empty or "-", to completion.
// Content is returned untouched; whitespace is data.
func Read(path string, stdin io.Reader) (string, error) {
	var r io.Reader
	if IsStdin(path) {
		if stdin != nil {
			r = stdin
		} else {
			r = os.Stdin
		}
	} else {
		file, err := os.Open(path)
		if err != nil {
			return "", SourceReadError{Source: path, Err: err}
		}
		defer file.Close()
		r = file
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return "", SourceReadError{Source: path, Err: err}
	}
	return string(data), nil
}
