// Command tracejs is the command-line driver over pkg/tracejs,
// mirroring the teacher's cmd/dwscript one-for-one in structure: a
// thin main.go delegating straight to a cobra command tree.
package main

import (
	"fmt"
	"os"

	"github.com/markab/tracejs/cmd/tracejs/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
