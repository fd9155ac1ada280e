package compiler

import (
	"github.com/markab/tracejs/internal/ast"
	"github.com/markab/tracejs/internal/optinfo"
	"github.com/markab/tracejs/internal/types"
)

// hoistVars pre-declares every `var` (including `function` declarations,
// which the parser desugars to `var name = function ...`) reachable
// from body without crossing a nested function boundary, matching
// §4.8 step 2: by the time EmitCode runs, a forward reference to a
// hoisted name already resolves instead of taking the
// ReferenceError path Identifier.EmitCode falls back to for names
// Context never saw.
func hoistVars(body []ast.Statement, oi *optinfo.OptimizationInfo) {
	walkStatements(body, func(s ast.Statement) {
		decl, ok := s.(*ast.VarDeclaration)
		if !ok || decl.Kind != ast.DeclVar {
			return
		}
		for _, d := range decl.Declarators {
			t := types.TUnknown
			if _, isFn := d.Init.(*ast.FunctionExpression); isFn {
				t = types.TAny
			}
			if oi.IsTopLevel {
				oi.HoistGlobal(d.Name, t)
			} else {
				oi.DeclareLocal(d.Name, t)
			}
		}
	})
}
