package cmd

import (
	"fmt"
	"strings"

	"github.com/salmonumbrella/colcut/internal/config"
	"github.com/salmonumbrella/colcut/internal/output"
	"github.com/salmonumbrella/colcut/internal/table"
	"github.com/spf13/cobra"
)

type runSettings struct {
	delimiter       string
	outputDelimiter string
	format          output.Format
	strict          bool
}

func defaultSettings() runSettings {
	return runSettings{
		delimiter: table.DefaultDelimiter,
		format:    output.FormatText,
	}
}

// loadConfigFromFlag loads config from --config, then COLCUT_CONFIG, then the default path.
func loadConfigFromFlag(env config.Env) (*config.Config, error) {
	path, err := configPath(env)
	if err != nil {
		return nil, err
	}
	return config.Load(path)
}

func configPath(env config.Env) (string, error) {
	if strings.TrimSpace(configFile) != "" {
		return strings.TrimSpace(configFile), nil
	}
	if strings.TrimSpace(env.ConfigPath) != "" {
		return strings.TrimSpace(env.ConfigPath), nil
	}
	return config.DefaultConfigPath()
}

func flagChanged(cmd *cobra.Command, name string) bool {
	if cmd == nil {
		return false
	}
	if cmd.Flags().Changed(name) {
		return true
	}
	return cmd.InheritedFlags().Changed(name)
}

// resolveSettings merges settings with precedence flags > env > config > defaults.
func resolveSettings(cmd *cobra.Command, cfg *config.Config, env config.Env) (runSettings, error) {
	s := defaultSettings()

	merged := config.Config{}
	if cfg != nil {
		merged = *cfg
	}
	merged.ApplyEnv(env)

	if merged.Delimiter != "" {
		s.delimiter = decodeEscapes(merged.Delimiter)
	}
	if merged.OutputDelimiter != "" {
		s.outputDelimiter = decodeEscapes(merged.OutputDelimiter)
	}
	s.strict = merged.Strict

	if flagChanged(cmd, "delimiter") {
		s.delimiter = decodeEscapes(delimiter)
	}
	if flagChanged(cmd, "output-delimiter") {
		s.outputDelimiter = decodeEscapes(outputDelimiter)
	}
	if flagChanged(cmd, "strict") {
		s.strict = strictMode
	}
	if err := table.ValidateDelimiter(s.delimiter); err != nil {
		return runSettings{}, err
	}

	formatStr := outputFmt
	if !flagChanged(cmd, "output") && strings.TrimSpace(merged.OutputFormat) != "" {
		formatStr = merged.OutputFormat
	}
	format, err := output.ParseFormat(formatStr)
	if err != nil {
		return runSettings{}, err
	}
	s.format = format

	return s, nil
}

var escapeReplacer = strings.NewReplacer(`\\`, `\`, `\t`, "\t")

// decodeEscapes turns a literally typed \t into a tab so that -d '\t' works.
func decodeEscapes(s string) string {
	return escapeReplacer.Replace(s)
}

func formatConfigLoadError(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("load config: %w", err)
}
