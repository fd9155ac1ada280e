package cmd

import (
	"fmt"

	"github.com/markab/tracejs/pkg/tracejs"
	"github.com/spf13/cobra"
)

var evalCmd = &cobra.Command{
	Use:   "eval <expression>",
	Short: "Evaluate a single JavaScript expression and print its value",
	Long: `Evaluate a JavaScript expression and print the resulting value,
the way a REPL's single-expression eval would.

Examples:
  tracejs eval "1 + 2"
  tracejs eval "[1, 2, 3].length"`,
	Args: cobra.ExactArgs(1),
	RunE: evalExpression,
}

func init() {
	rootCmd.AddCommand(evalCmd)
}

func evalExpression(cmd *cobra.Command, args []string) error {
	strict, _ := cmd.Flags().GetBool("strict")
	engine := tracejs.New(tracejs.WithSourceName("<eval>"), tracejs.WithStrictMode(strict))

	result, err := engine.Evaluate(args[0])
	if err != nil {
		return err
	}
	fmt.Println(result.String())
	return nil
}
