package cmd

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/salmonumbrella/colcut/internal/config"
	"github.com/salmonumbrella/colcut/internal/output"
	"github.com/salmonumbrella/colcut/internal/table"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage CLI configuration",
	Long: `Manage CLI configuration stored in ~/.config/colcut/config.yaml.

Use --config or COLCUT_CONFIG to point at another file; paths ending in
.toml are read and written as TOML. Supported keys are delimiter,
output_delimiter, output_format, error_format and strict.`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfigForCommand()
		if err != nil {
			return formatConfigLoadError(err)
		}
		if structuredOutputRequested() {
			return printStructured(cmd.Context(), configOutput(cfg))
		}

		out := stdoutFromContext(cmd.Context())
		fmt.Fprintln(out, "Config:")
		fmt.Fprintf(out, "  delimiter: %q\n", cfg.Delimiter)
		fmt.Fprintf(out, "  output_delimiter: %q\n", cfg.OutputDelimiter)
		fmt.Fprintf(out, "  output_format: %s\n", cfg.OutputFormat)
		fmt.Fprintf(out, "  error_format: %s\n", cfg.ErrorFormat)
		fmt.Fprintf(out, "  strict: %t\n", cfg.Strict)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Args:  cobra.ExactArgs(2),
	RunE:  runConfigSet,
}

var configUnsetCmd = &cobra.Command{
	Use:   "unset <key>",
	Short: "Unset a configuration value",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigUnset,
}

var configKeysCmd = &cobra.Command{
	Use:   "keys",
	Short: "List supported configuration keys",
	RunE: func(cmd *cobra.Command, args []string) error {
		keys := supportedConfigKeys()
		sort.Strings(keys)

		items := make([]interface{}, 0, len(keys))
		for _, key := range keys {
			items = append(items, key)
		}
		return printStructured(cmd.Context(), items)
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file path in use",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := resolvedConfigPath()
		if err != nil {
			return err
		}
		var data interface{} = path
		if structuredOutputRequested() {
			data = map[string]interface{}{"path": path}
		}
		return printStructured(cmd.Context(), data)
	},
}

func resolvedConfigPath() (string, error) {
	env, err := loadEnvFunc(nil)
	if err != nil {
		return "", err
	}
	return configPath(env)
}

func loadConfigForCommand() (*config.Config, error) {
	path, err := resolvedConfigPath()
	if err != nil {
		return nil, err
	}
	return config.Load(path)
}

func supportedConfigKeys() []string {
	return []string{
		"delimiter",
		"output_delimiter",
		"output_format",
		"error_format",
		"strict",
	}
}

func applyConfigValue(cfg *config.Config, key, value string) error {
	switch key {
	case "delimiter":
		if err := table.ValidateDelimiter(decodeEscapes(value)); err != nil {
			return err
		}
		cfg.Delimiter = value
	case "output_delimiter":
		cfg.OutputDelimiter = value
	case "output_format":
		format, err := output.ParseFormat(value)
		if err != nil {
			return err
		}
		cfg.OutputFormat = string(format)
	case "error_format":
		if err := validateErrorFormat(value); err != nil {
			return err
		}
		cfg.ErrorFormat = strings.ToLower(strings.TrimSpace(value))
	case "strict":
		strict, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid value for strict: %q (expected true or false)", value)
		}
		cfg.Strict = strict
	default:
		return fmt.Errorf("unknown config key: %s", key)
	}
	return nil
}

func clearConfigValue(cfg *config.Config, key string) error {
	switch key {
	case "delimiter":
		cfg.Delimiter = ""
	case "output_delimiter":
		cfg.OutputDelimiter = ""
	case "output_format":
		cfg.OutputFormat = ""
	case "error_format":
		cfg.ErrorFormat = ""
	case "strict":
		cfg.Strict = false
	default:
		return fmt.Errorf("unknown config key: %s", key)
	}
	return nil
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configUnsetCmd)
	configCmd.AddCommand(configKeysCmd)
	configCmd.AddCommand(configPathCmd)

	rootCmd.AddCommand(configCmd)
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	key := strings.ToLower(strings.TrimSpace(args[0]))
	// Delimiters are whitespace-sensitive.
	value := args[1]
	if key != "delimiter" && key != "output_delimiter" {
		value = strings.TrimSpace(value)
	}

	cfg, err := loadConfigForCommand()
	if err != nil {
		return formatConfigLoadError(err)
	}

	if err := applyConfigValue(cfg, key, value); err != nil {
		return err
	}

	path, err := resolvedConfigPath()
	if err != nil {
		return err
	}
	if err := cfg.Save(path); err != nil {
		return err
	}

	if structuredOutputRequested() {
		return printStructured(cmd.Context(), map[string]interface{}{
			"status": "updated",
			"key":    key,
			"value":  value,
		})
	}

	fmt.Fprintf(stdoutFromContext(cmd.Context()), "Updated %s\n", key)
	return nil
}

func runConfigUnset(cmd *cobra.Command, args []string) error {
	key := strings.ToLower(strings.TrimSpace(args[0]))

	cfg, err := loadConfigForCommand()
	if err != nil {
		return formatConfigLoadError(err)
	}

	if err := clearConfigValue(cfg, key); err != nil {
		return err
	}

	path, err := resolvedConfigPath()
	if err != nil {
		return err
	}
	if err := cfg.Save(path); err != nil {
		return err
	}

	if structuredOutputRequested() {
		return printStructured(cmd.Context(), map[string]interface{}{
			"status": "unset",
			"key":    key,
		})
	}

	fmt.Fprintf(stdoutFromContext(cmd.Context()), "Unset %s\n", key)
	return nil
}

func configOutput(cfg *config.Config) map[string]interface{} {
	return map[string]interface{}{
		"delimiter":        cfg.Delimiter,
		"output_delimiter": cfg.OutputDelimiter,
		"output_format":    cfg.OutputFormat,
		"error_format":     cfg.ErrorFormat,
		"strict":           cfg.Strict,
	}
}
