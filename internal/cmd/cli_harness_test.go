package cmd

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/pflag"

	"github.com/salmonumbrella/colcut/internal/config"
	"github.com/salmonumbrella/colcut/internal/fields"
	"github.com/salmonumbrella/colcut/internal/source"
	"github.com/salmonumbrella/colcut/internal/table"
)

// runCLI executes the root command with an isolated config path and
// environment, returning captured stdout and stderr.
func runCLI(t *testing.T, stdin io.Reader, env config.Env, args ...string) (string, string, error) {
	t.Helper()
	restore := snapshotCLIState()
	defer restore()

	if stdin == nil {
		stdin = &bytes.Buffer{}
	}
	out := &bytes.Buffer{}
	errBuf := &bytes.Buffer{}

	rootCmd.SetOut(out)
	rootCmd.SetErr(errBuf)
	rootCmd.SetIn(stdin)
	rootCmd.SetContext(withIO(context.Background(), stdin, out, errBuf))

	prevLoadEnv := loadEnvFunc
	loadEnvFunc = func(map[string]string) (config.Env, error) { return env, nil }
	defer func() { loadEnvFunc = prevLoadEnv }()

	hasConfig := false
	for _, a := range args {
		if a == "--config" || strings.HasPrefix(a, "--config=") {
			hasConfig = true
		}
	}
	if !hasConfig && env.ConfigPath == "" {
		args = append([]string{"--config", filepath.Join(t.TempDir(), "config.yaml")}, args...)
	}

	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), errBuf.String(), err
}

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func snapshotCLIState() func() {
	prevFieldSpecs := fieldSpecs
	prevDelimiter := delimiter
	prevOutputDelimiter := outputDelimiter
	prevOutputFmt := outputFmt
	prevOutputType := outputType
	prevQueryExpr := queryExpr
	prevErrorFmt := errorFmt
	prevConfig := configFile
	prevStrict := strictMode
	prevNoHeader := noHeader
	prevRowLimit := rowLimit
	prevOutFile := outFile
	prevDebug := debug
	prevSettings := settings

	prevOut := rootCmd.OutOrStdout()
	prevErr := rootCmd.ErrOrStderr()
	prevIn := rootCmd.InOrStdin()
	prevCtx := rootCmd.Context()

	return func() {
		fieldSpecs = prevFieldSpecs
		delimiter = prevDelimiter
		outputDelimiter = prevOutputDelimiter
		outputFmt = prevOutputFmt
		outputType = prevOutputType
		queryExpr = prevQueryExpr
		errorFmt = prevErrorFmt
		configFile = prevConfig
		strictMode = prevStrict
		noHeader = prevNoHeader
		rowLimit = prevRowLimit
		outFile = prevOutFile
		debug = prevDebug
		settings = prevSettings
		configureLogger(nil, false)

		rootCmd.SetOut(prevOut)
		rootCmd.SetErr(prevErr)
		rootCmd.SetIn(prevIn)
		rootCmd.SetContext(prevCtx)
		rootCmd.SetArgs(nil)
		resetFlagChanges(rootCmd)
		for _, sub := range rootCmd.Commands() {
			resetFlagChanges(sub)
			for _, leaf := range sub.Commands() {
				resetFlagChanges(leaf)
			}
		}
	}
}

func resetFlagChanges(cmdFlagSet interface {
	Flags() *pflag.FlagSet
	PersistentFlags() *pflag.FlagSet
	InheritedFlags() *pflag.FlagSet
},
) {
	if cmdFlagSet == nil {
		return
	}
	cmdFlagSet.Flags().VisitAll(func(f *pflag.Flag) {
		f.Changed = false
	})
	cmdFlagSet.PersistentFlags().VisitAll(func(f *pflag.Flag) {
		f.Changed = false
	})
	cmdFlagSet.InheritedFlags().VisitAll(func(f *pflag.Flag) {
		f.Changed = false
	})
}

func TestCLI_SingleFieldFromStdin(t *testing.T) {
	stdin := strings.NewReader("f0\tf1\tf2\n1\t2\t3\n4\t5\t6")

	out, errOut, err := runCLI(t, stdin, config.Env{}, "-f", "2")
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if out != "f1\n2\n5\n" {
		t.Errorf("stdout = %q", out)
	}
	if errOut != "" {
		t.Errorf("expected empty stderr, got %q", errOut)
	}
}

func TestCLI_CustomDelimiterFromFile(t *testing.T) {
	path := writeTempFile(t, "data.csv", "a,b,c\n1,2,3\n")

	out, _, err := runCLI(t, nil, config.Env{}, "-d", ",", "-f", "1,3", path)
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if out != "a,c\n1,3\n" {
		t.Errorf("stdout = %q", out)
	}
}

func TestCLI_AttachedShorthandAndRepeatedFields(t *testing.T) {
	stdin := strings.NewReader("a,b,c\n1,2,3\n")

	out, _, err := runCLI(t, stdin, config.Env{}, "-d,", "-f3", "-f", "1 1", "-")
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if out != "c,a,a\n3,1,1\n" {
		t.Errorf("stdout = %q", out)
	}
}

func TestCLI_RangeAndOutputDelimiter(t *testing.T) {
	stdin := strings.NewReader("a,b,c,d\n1,2,3,4\n")

	out, _, err := runCLI(t, stdin, config.Env{}, "-d", ",", "--output-delimiter", `\t`, "-f", "2-3")
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if out != "b\tc\n2\t3\n" {
		t.Errorf("stdout = %q", out)
	}
}

func TestCLI_EscapedTabDelimiter(t *testing.T) {
	stdin := strings.NewReader("a\tb\n1\t2\n")

	out, _, err := runCLI(t, stdin, config.Env{}, "-d", `\t`, "-f", "2")
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if out != "b\n2\n" {
		t.Errorf("stdout = %q", out)
	}
}

func TestCLI_NoHeaderAndLimit(t *testing.T) {
	stdin := strings.NewReader("a\tb\n1\t2\n3\t4\n5\t6\n")

	out, _, err := runCLI(t, stdin, config.Env{}, "-f", "2", "--no-header", "--limit", "2")
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if out != "2\n4\n" {
		t.Errorf("stdout = %q", out)
	}
}

type unreadable struct{ t *testing.T }

func (u unreadable) Read([]byte) (int, error) {
	u.t.Error("input was read before the field spec was validated")
	return 0, io.EOF
}

func TestCLI_InvalidFieldSpecBeforeRead(t *testing.T) {
	_, _, err := runCLI(t, unreadable{t: t}, config.Env{}, "-f", "x")

	var specErr fields.InvalidFieldSpecError
	if !errors.As(err, &specErr) {
		t.Fatalf("expected InvalidFieldSpecError, got %v", err)
	}
	if specErr.Token != "x" {
		t.Errorf("Token = %q", specErr.Token)
	}
}

func TestCLI_MissingFields(t *testing.T) {
	_, _, err := runCLI(t, strings.NewReader("a\n1\n"), config.Env{})
	if err == nil || !strings.Contains(err.Error(), `required flag(s) "fields" not set`) {
		t.Fatalf("expected required flag error, got %v", err)
	}
}

func TestCLI_IndexOutOfRange(t *testing.T) {
	out, _, err := runCLI(t, strings.NewReader("a\tb\n1\t2\n"), config.Env{}, "-f", "3")

	var rangeErr table.IndexOutOfRangeError
	if !errors.As(err, &rangeErr) {
		t.Fatalf("expected IndexOutOfRangeError, got %v", err)
	}
	if rangeErr.Index != 2 || rangeErr.Width != 2 {
		t.Errorf("unexpected error fields: %+v", rangeErr)
	}
	if err.Error() != "field 3 out of range: valid fields are 1..2" {
		t.Errorf("message = %q", err.Error())
	}
	if out != "" {
		t.Errorf("expected no partial output, got %q", out)
	}
}

func TestCLI_RaggedRow(t *testing.T) {
	stdin := strings.NewReader("a,b,c\n1,2,3\n4\n")

	_, _, err := runCLI(t, stdin, config.Env{}, "-d", ",", "-f", "2")

	var widthErr table.RowWidthError
	if !errors.As(err, &widthErr) {
		t.Fatalf("expected RowWidthError, got %v", err)
	}
	if widthErr.Row != 1 || widthErr.Index != 1 {
		t.Errorf("unexpected error fields: %+v", widthErr)
	}
	if err.Error() != "row 2 has 1 fields, no field 2" {
		t.Errorf("message = %q", err.Error())
	}
}

func TestCLI_StrictRejectsWideRow(t *testing.T) {
	raw := "a,b\n1,2,3\n"

	out, _, err := runCLI(t, strings.NewReader(raw), config.Env{}, "-d", ",", "-f", "1")
	if err != nil {
		t.Fatalf("non-strict execute: %v", err)
	}
	if out != "a\n1\n" {
		t.Errorf("stdout = %q", out)
	}

	_, _, err = runCLI(t, strings.NewReader(raw), config.Env{}, "-d", ",", "-f", "1", "--strict")
	var widthErr table.RowWidthError
	if !errors.As(err, &widthErr) {
		t.Fatalf("expected RowWidthError in strict mode, got %v", err)
	}
	if widthErr.Index != -1 || widthErr.Width != 3 || widthErr.Want != 2 {
		t.Errorf("unexpected error fields: %+v", widthErr)
	}
}

func TestCLI_EmptyInput(t *testing.T) {
	_, _, err := runCLI(t, strings.NewReader(""), config.Env{}, "-f", "1")

	var emptyErr table.EmptyInputError
	if !errors.As(err, &emptyErr) {
		t.Fatalf("expected EmptyInputError, got %v", err)
	}
}

func TestCLI_MissingFile(t *testing.T) {
	_, _, err := runCLI(t, nil, config.Env{}, "-f", "1", filepath.Join(t.TempDir(), "missing.tsv"))

	var readErr source.SourceReadError
	if !errors.As(err, &readErr) {
		t.Fatalf("expected SourceReadError, got %v", err)
	}
}

func TestCLI_EmptyDelimiter(t *testing.T) {
	_, _, err := runCLI(t, strings.NewReader("a\n"), config.Env{}, "-d", "", "-f", "1")

	var delimErr table.InvalidDelimiterError
	if !errors.As(err, &delimErr) {
		t.Fatalf("expected InvalidDelimiterError, got %v", err)
	}
}

func TestCLI_NewlineDelimiter(t *testing.T) {
	out, _, err := runCLI(t, strings.NewReader("a,b\n1,2\n"), config.Env{}, "-f", "1", "-d", "\n")

	var delimErr table.InvalidDelimiterError
	if !errors.As(err, &delimErr) {
		t.Fatalf("expected InvalidDelimiterError, got %v", err)
	}
	if out != "" {
		t.Errorf("expected no output, got %q", out)
	}
}

func TestCLI_NegativeLimit(t *testing.T) {
	out, _, err := runCLI(t, strings.NewReader("a\n1\n2\n"), config.Env{}, "-f", "1", "--limit=-3")
	if err == nil || !strings.Contains(err.Error(), "--limit must not be negative") {
		t.Fatalf("expected negative limit error, got %v", err)
	}
	if out != "" {
		t.Errorf("expected no output, got %q", out)
	}
}

func TestCLI_ConfigAndEnvPrecedence(t *testing.T) {
	cfgPath := writeTempFile(t, "config.yaml", "delimiter: \";\"\noutput_format: json\n")
	stdin := "a;b|c\n1;2|3\n"

	// Config file delimiter applies.
	out, _, err := runCLI(t, strings.NewReader(stdin), config.Env{}, "--config", cfgPath, "-o", "text", "-f", "2")
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if out != "b|c\n2|3\n" {
		t.Errorf("config delimiter: stdout = %q", out)
	}

	// Env overrides config.
	out, _, err = runCLI(t, strings.NewReader(stdin), config.Env{Delimiter: "|"}, "--config", cfgPath, "-o", "text", "-f", "2")
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if out != "c\n3\n" {
		t.Errorf("env delimiter: stdout = %q", out)
	}

	// Flag overrides env.
	out, _, err = runCLI(t, strings.NewReader(stdin), config.Env{Delimiter: "|"}, "--config", cfgPath, "-o", "text", "-d", ";", "-f", "1")
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if out != "a\n1\n" {
		t.Errorf("flag delimiter: stdout = %q", out)
	}
}

func TestCLI_ConfigPathFromEnv(t *testing.T) {
	cfgPath := writeTempFile(t, "colcut.toml", "delimiter = \",\"\n")

	out, _, err := runCLI(t, strings.NewReader("a,b\n1,2\n"), config.Env{ConfigPath: cfgPath}, "-f", "2")
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if out != "b\n2\n" {
		t.Errorf("stdout = %q", out)
	}
}

func TestCLI_JSONQuery(t *testing.T) {
	stdin := strings.NewReader("name\tqty\napple\t3\nbanana\t12\n")

	out, _, err := runCLI(t, stdin, config.Env{}, "-f", "2,1", "-o", "json", "--query", ".rows | map(.[0])")
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if out != "[\"3\",\"12\"]\n" {
		t.Errorf("stdout = %q", out)
	}
}

func TestCLI_QueryRequiresJSON(t *testing.T) {
	_, _, err := runCLI(t, strings.NewReader("a\n1\n"), config.Env{}, "-f", "1", "--query", ".")
	if err == nil || !strings.Contains(err.Error(), "--query requires") {
		t.Fatalf("expected query format error, got %v", err)
	}
}

func TestCLI_OutFile(t *testing.T) {
	target := filepath.Join(t.TempDir(), "result.tsv")

	out, _, err := runCLI(t, strings.NewReader("a\tb\n1\t2\n"), config.Env{}, "-f", "2", "--out-file", target)
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if out != "" {
		t.Errorf("expected nothing on stdout, got %q", out)
	}

	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("read result: %v", err)
	}
	if string(data) != "b\n2\n" {
		t.Errorf("file content = %q", string(data))
	}
}

func TestCLI_TerminalHintAndDebug(t *testing.T) {
	prev := stdinIsTerminal
	stdinIsTerminal = func(io.Reader) bool { return true }
	defer func() { stdinIsTerminal = prev }()

	_, errOut, err := runCLI(t, strings.NewReader("a\n1\n"), config.Env{}, "-f", "1", "--debug")
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !strings.Contains(errOut, "reading table from terminal") {
		t.Errorf("expected terminal hint, got %q", errOut)
	}
	if !strings.Contains(errOut, "[colcut] parsed 1 columns x 1 rows") {
		t.Errorf("expected debug trace, got %q", errOut)
	}
}
