package cmd

import (
	"fmt"

	"github.com/markab/tracejs/internal/parser"
	"github.com/spf13/cobra"
)

var parseEval string

var parseCmd = &cobra.Command{
	Use:   "parse [file]",
	Short: "Parse JavaScript source and print its AST",
	Long: `Parse a JavaScript program and print the resulting AST's string
form, for debugging the parser.

Examples:
  tracejs parse script.js
  tracejs parse -e "1 + 2 * 3;"`,
	Args: cobra.MaximumNArgs(1),
	RunE: runParse,
}

func init() {
	rootCmd.AddCommand(parseCmd)

	parseCmd.Flags().StringVarP(&parseEval, "eval", "e", "", "parse inline source instead of reading from a file")
}

func runParse(_ *cobra.Command, args []string) error {
	source, name, err := readSource(parseEval, args)
	if err != nil {
		return err
	}

	prog, hints, err := parser.Parse(source, name)
	if err != nil {
		return err
	}

	fmt.Println(prog.String())
	fmt.Printf("hints: eval=%v arguments=%v with=%v this=%v\n",
		hints.HasEval, hints.HasArguments, hints.HasWith, hints.ReadsThis)
	return nil
}
