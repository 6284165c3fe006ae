package cmd

import (
	"github.com/natefinch/atomic"

	"github.com/salmonumbrella/colcut/internal/config"
)

var (
	loadEnvFunc     = config.LoadEnv
	writeFileFunc   = atomic.WriteFile
	stdinIsTerminal = isTerminal
)
