package cmd

import (
	"io"
	"log"
)

// logger writes debug traces to stderr when --debug is set.
var logger = log.New(io.Discard, "[colcut] ", 0)

func configureLogger(w io.Writer, enabled bool) {
	if !enabled || w == nil {
		logger.SetOutput(io.Discard)
		return
	}
	logger.SetOutput(w)
}
