package runtime

import (
	"fmt"
	"strings"

	"github.com/markab/tracejs/internal/errors"
)

// FormatStack walks an Arguments chain via its caller links (§9's
// "callee/caller resolved through the method-lookup table") and
// produces `at <function> (<path>:<line>)` lines, the same line shape
// errors.JavaScriptException.Stack() formats from a pre-built
// []errors.StackFrame, and returns the formatted text. It does not
// populate JavaScriptException.Frames: internal/vmexec builds that
// frame list itself from its own call frames when it raises an
// exception.
func FormatStack(leaf *Arguments, source string, lines map[*Arguments]int) string {
	var frames []errors.StackFrame
	for a := leaf; a != nil; a = a.Caller() {
		name := "<anonymous>"
		if c := a.Callee(); c != nil {
			name = c.Name()
			if name == "" {
				name = "<anonymous>"
			}
		}
		frames = append(frames, errors.StackFrame{
			Function: name,
			Path:     source,
			Line:     lines[a],
		})
	}
	var sb strings.Builder
	for _, f := range frames {
		sb.WriteString(fmt.Sprintf("    at %s (%s:%d)\n", f.Function, f.Path, f.Line))
	}
	return strings.TrimRight(sb.String(), "\n")
}
