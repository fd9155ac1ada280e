// Package cmd implements the tracejs command-line surface: run, eval,
// lex, parse, disasm. One subcommand per pipeline stage, each writing
// its stage's output to stdout for inspection, mirroring the teacher's
// cmd/dwscript/cmd/{run,parse,lex,fmt}.go one-for-one in structure.
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Version information, overridable by build flags the way the
// teacher's cmd/dwscript/cmd/root.go does.
var (
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "tracejs",
	Short: "tracejs: a type-tracking ahead-of-time JavaScript compiler",
	Long: `tracejs compiles JavaScript source directly to a typed stack-machine
program instead of interpreting a syntax tree: it tracks the static
type of every local, argument, and property as it compiles, and
recompiles a function the moment a property it inlined widens under
it.`,
	Version: Version,
}

// Execute runs the root command; main.go's only job is to call this
// and turn a returned error into an exit code.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf(`{{with .Name}}{{printf "%%s " .}}{{end}}{{printf "version %%s" .Version}}
Commit: %s
Built:  %s
`, GitCommit, BuildDate))

	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().Bool("strict", false, "compile in strict mode")
}
