package cmd

import (
	"fmt"
	"os"

	"github.com/markab/tracejs/internal/lexer"
	"github.com/spf13/cobra"
)

var (
	lexEval     string
	lexShowPos  bool
	lexOnlyErrs bool
)

var lexCmd = &cobra.Command{
	Use:   "lex [file]",
	Short: "Tokenize a JavaScript file or expression",
	Long: `Tokenize a JavaScript program and print the resulting tokens, for
debugging the lexer.

Examples:
  tracejs lex script.js
  tracejs lex -e "var x = 42;" --show-pos`,
	Args: cobra.MaximumNArgs(1),
	RunE: lexScript,
}

func init() {
	rootCmd.AddCommand(lexCmd)

	lexCmd.Flags().StringVarP(&lexEval, "eval", "e", "", "tokenize inline source instead of reading from a file")
	lexCmd.Flags().BoolVar(&lexShowPos, "show-pos", false, "show token positions (line:column)")
	lexCmd.Flags().BoolVar(&lexOnlyErrs, "only-errors", false, "show only tokens the lexer rejected")
}

func lexScript(_ *cobra.Command, args []string) error {
	source, _, err := readSource(lexEval, args)
	if err != nil {
		return err
	}

	l := lexer.New(source, "<lex>")
	errorCount := 0
	for {
		tok, err := l.Next()
		if err != nil {
			errorCount++
			if !lexOnlyErrs {
				fmt.Printf("[ERROR] %v\n", err)
			} else {
				fmt.Println(err)
			}
			break
		}
		if lexOnlyErrs {
			if tok.Type == lexer.TokenEOF {
				break
			}
			continue
		}
		printToken(tok)
		if tok.Type == lexer.TokenEOF {
			break
		}
	}

	if lexOnlyErrs && errorCount > 0 {
		return fmt.Errorf("found %d illegal token(s)", errorCount)
	}
	return nil
}

func printToken(tok lexer.Token) {
	out := fmt.Sprintf("[%-10s] %q", tok.Type, tok.Lexeme)
	if lexShowPos {
		out += fmt.Sprintf(" @%d:%d", tok.Line, tok.Column)
	}
	fmt.Fprintln(os.Stdout, out)
}
