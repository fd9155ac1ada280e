package cmd

import (
	"fmt"
	"os"

	"github.com/markab/tracejs/pkg/tracejs"
	"github.com/spf13/cobra"
)

var (
	runEval  string
	runTrace bool
)

var runCmd = &cobra.Command{
	Use:   "run [file]",
	Short: "Run a JavaScript file or expression",
	Long: `Compile and run a JavaScript program from a file or inline source.

Examples:
  # Run a script file
  tracejs run script.js

  # Run inline source
  tracejs run -e "var x = 1 + 2; x;"

  # Run with a print-output trace
  tracejs run --trace script.js`,
	Args: cobra.MaximumNArgs(1),
	RunE: runScript,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runEval, "eval", "e", "", "run inline source instead of reading from a file")
	runCmd.Flags().BoolVar(&runTrace, "trace", false, "print a trace of completion values to stderr")
}

func runScript(cmd *cobra.Command, args []string) error {
	source, name, err := readSource(runEval, args)
	if err != nil {
		return err
	}

	strict, _ := cmd.Flags().GetBool("strict")
	opts := []tracejs.Option{tracejs.WithSourceName(name), tracejs.WithStrictMode(strict)}
	if runTrace {
		opts = append(opts, tracejs.WithOutput(os.Stderr))
	}

	engine := tracejs.New(opts...)
	completion, err := engine.Execute(source)
	if err != nil {
		return err
	}
	if runTrace {
		fmt.Fprintf(os.Stderr, "[completion] %s\n", completion.String())
	}
	return nil
}

// readSource resolves run/lex/parse/disasm's shared "-e expr, else
// file" input convention; with neither, it returns an error (there is
// no stdin fallback).
func readSource(eval string, args []string) (source, name string, err error) {
	if eval != "" {
		return eval, "<eval>", nil
	}
	if len(args) == 1 {
		content, err := os.ReadFile(args[0])
		if err != nil {
			return "", "", fmt.Errorf("failed to read file %s: %w", args[0], err)
		}
		return string(content), args[0], nil
	}
	return "", "", fmt.Errorf("either provide a file path or use -e for inline source")
}
