package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/salmonumbrella/colcut/internal/config"
	"github.com/salmonumbrella/colcut/internal/output"
	"github.com/salmonumbrella/colcut/internal/table"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var (
	// Version is set at build time
	version = "dev"
	// Commit is set at build time
	commit = "none"
	// Date is set at build time
	date = "unknown"
)

// SetVersionInfo sets the version information from build flags
func SetVersionInfo(v, c, d string) {
	version = v
	commit = c
	date = d
	rootCmd.Version = v
	rootCmd.SetVersionTemplate(versionTemplate())
}

// Global flags
var (
	fieldSpecs      []string
	delimiter       string
	outputDelimiter string
	outputFmt       string
	outputType      output.Format
	queryExpr       string
	errorFmt        string
	configFile      string
	strictMode      bool
	noHeader        bool
	rowLimit        int
	outFile         string
	debug           bool
)

// settings is the effective configuration after flags, env and config file
// have been merged.
var settings = defaultSettings()

var rootCmd = &cobra.Command{
	Use:   "colcut [flags] [FILE|-]",
	Short: "Extract columns from delimiter-separated text",
	Long: `colcut reads delimiter-separated text from FILE (or standard input when FILE
is omitted or "-"), treats the first line as the header, and prints only the
requested columns in the requested order.

Fields are 1-based and may be given as a single index, a comma or space
separated list, or an ascending range:

  colcut -f 2 data.tsv
  colcut -f 1,3 -d , data.csv
  colcut -f "3 1 1" < data.tsv
  colcut -f 2-4 -o pretty data.tsv

Environment Variables:
  COLCUT_DELIMITER      Default field delimiter
  COLCUT_OUTPUT_FORMAT  Default output format
  COLCUT_STRICT         Reject ragged rows right after parsing
  COLCUT_CONFIG         Config file path`,
	Version:       version,
	Args:          cobra.MaximumNArgs(1),
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		ctx := withIO(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout(), cmd.ErrOrStderr())
		ctx = WithErrorFormat(ctx, errorFmt)
		cmd.SetContext(ctx)

		if err := validateErrorFormat(errorFmt); err != nil {
			return err
		}
		if rowLimit < 0 {
			return fmt.Errorf("--limit must not be negative, got %d", rowLimit)
		}
		configureLogger(stderrFromContext(ctx), debug)

		env, err := loadEnvFunc(nil)
		if err != nil {
			return err
		}

		// Config subcommands manage the file themselves.
		var cfg *config.Config
		if cmd.Name() == "config" || (cmd.Parent() != nil && cmd.Parent().Name() == "config") {
			cfg = &config.Config{}
		} else {
			loaded, err := loadConfigFromFlag(env)
			if err != nil {
				return formatConfigLoadError(err)
			}
			cfg = loaded
		}

		resolved, err := resolveSettings(cmd, cfg, env)
		if err != nil {
			return err
		}
		settings = resolved
		outputType = resolved.format
		outputFmt = string(resolved.format)

		ctx = output.WithFormat(ctx, resolved.format)
		ctx = output.WithQuery(ctx, queryExpr)
		ctx = output.WithLimit(ctx, rowLimit)
		ctx = output.WithNoHeader(ctx, noHeader)
		if !flagChanged(cmd, "error-format") && strings.TrimSpace(cfg.ErrorFormat) != "" {
			ctx = WithErrorFormat(ctx, cfg.ErrorFormat)
		}
		cmd.SetContext(ctx)

		if effectiveErrorFormat(ctx) != "text" {
			cmd.SilenceUsage = true
		}
		if queryExpr != "" && resolved.format != output.FormatJSON && resolved.format != output.FormatNDJSON {
			return fmt.Errorf("--query requires --output json or ndjson")
		}
		logger.Printf("delimiter=%q output_delimiter=%q format=%s strict=%t", resolved.delimiter, resolved.outputDelimiter, resolved.format, resolved.strict)
		return nil
	},
	RunE: runCut,
}

// Execute runs the root command
func Execute() error {
	cmd, err := rootCmd.ExecuteC()
	if err != nil {
		printCommandError(cmd.Context(), err)
		return err
	}
	return nil
}

// GetOutputFormat returns the configured output format
func GetOutputFormat() output.Format {
	if outputType != "" {
		return outputType
	}
	parsed, err := output.ParseFormat(outputFmt)
	if err != nil {
		return output.FormatText
	}
	return parsed
}

func versionTemplate() string {
	return fmt.Sprintf("colcut version %s (commit: %s, built: %s)\n", version, commit, date)
}

func init() {
	rootCmd.SetVersionTemplate(versionTemplate())

	rootCmd.Flags().StringArrayVarP(&fieldSpecs, "fields", "f", nil, "Fields to print, 1-based (e.g. 2, 1,3, \"1 3\", 2-4); repeatable")
	rootCmd.Flags().StringVarP(&delimiter, "delimiter", "d", table.DefaultDelimiter, "Field delimiter for input and output (env: COLCUT_DELIMITER)")
	rootCmd.Flags().StringVar(&outputDelimiter, "output-delimiter", "", "Delimiter for output only (default: --delimiter)")
	rootCmd.Flags().BoolVar(&strictMode, "strict", false, "Reject rows whose width differs from the header (env: COLCUT_STRICT)")
	rootCmd.Flags().BoolVar(&noHeader, "no-header", false, "Omit the header line from tabular output")
	rootCmd.Flags().IntVar(&rowLimit, "limit", 0, "Print at most N data rows (0 = unlimited)")
	rootCmd.Flags().StringVar(&outFile, "out-file", "", "Write the result atomically to this path instead of stdout")
	_ = rootCmd.MarkFlagRequired("fields")

	rootCmd.PersistentFlags().StringVarP(&outputFmt, "output", "o", "text", "Output format (text|json|ndjson|table|pretty|yaml)")
	rootCmd.PersistentFlags().StringVar(&queryExpr, "query", "", "jq expression to filter JSON output")
	rootCmd.PersistentFlags().StringVar(&errorFmt, "error-format", "auto", "Error output format (auto|text|json|yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug output")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Config file (default: ~/.config/colcut/config.yaml, env: COLCUT_CONFIG)")
}

func isTerminal(r io.Reader) bool {
	file, ok := r.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(file.Fd()))
}
