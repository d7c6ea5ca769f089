package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/knorrfg/leviscript/internal/cli"
	"github.com/knorrfg/leviscript/internal/vm"
)

var evalExpr string

var runCmd = &cobra.Command{
	Use:   "run [file]",
	Short: "Run a Leviscript program",
	Long: `Lex, parse, infer, build, and execute a Leviscript program from a
file or an inline expression.

Examples:
  leviscript run script.lev
  leviscript run -e 'echo("hi")'
  leviscript run --verbose script.lev`,
	Args: cobra.MaximumNArgs(1),
	RunE: runScript,
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().StringVarP(&evalExpr, "eval", "e", "", "evaluate inline source instead of reading from a file")
}

func runScript(_ *cobra.Command, args []string) error {
	filename, src, err := readSource(args, evalExpr)
	if err != nil {
		return err
	}

	code, debug, reg, err := compile(filename, src)
	if err != nil {
		return err
	}

	log, err := cli.NewLogger(verbose)
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	runner := vm.NewRunner(code, debug, reg)
	if verbose {
		runner.SetTrace(cli.TraceHook(log))
	}

	exitCode, runErr := runner.Run()
	if runErr != nil {
		return fmt.Errorf("runtime error: %w", runErr)
	}
	if exitCode != 0 {
		os.Exit(int(exitCode))
	}
	return nil
}

// readSource resolves the program source either from evalExpr or from a
// single file argument.
func readSource(args []string, evalExpr string) (filename, src string, err error) {
	if evalExpr != "" {
		return "<eval>", evalExpr, nil
	}
	if len(args) != 1 {
		return "", "", fmt.Errorf("either provide a file path or use -e for inline source")
	}
	content, err := os.ReadFile(args[0])
	if err != nil {
		return "", "", fmt.Errorf("failed to read file %s: %w", args[0], err)
	}
	return args[0], string(content), nil
}
