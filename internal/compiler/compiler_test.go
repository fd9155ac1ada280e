package compiler_test

import (
	"testing"

	"github.com/markab/tracejs/internal/compiler"
	"github.com/markab/tracejs/internal/emitter"
	"github.com/markab/tracejs/internal/optinfo"
	"github.com/markab/tracejs/internal/parser"
	"github.com/markab/tracejs/internal/types"
)

func compile(t *testing.T, c *compiler.Compiler, src string) *compiler.Result {
	t.Helper()
	prog, hints, err := parser.Parse(src, "<test>")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	result, err := c.CompileProgram(prog, false, optinfo.Hints(hints))
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	return result
}

func TestCompileProgramProducesChunkAndGlobal(t *testing.T) {
	c := compiler.New("<test>")
	result := compile(t, c, "var x = 1 + 2;")
	if result.Chunk == nil {
		t.Fatalf("expected a non-nil top-level chunk")
	}
	if _, ok := result.Globals.Resolve("x"); !ok {
		t.Errorf("expected global x to be declared")
	}
}

func TestCompileProgramRegistersFunctionEntry(t *testing.T) {
	c := compiler.New("<test>")
	result := compile(t, c, "function add(a, b) { return a + b; }")
	if _, ok := result.Functions["add"]; !ok {
		t.Errorf("expected function entry for add")
	}
}

func TestCompilerAccumulatesGlobalsAcrossCalls(t *testing.T) {
	c := compiler.New("<test>")
	compile(t, c, "var first = 1;")
	result := compile(t, c, "var second = first + 1;")
	if _, ok := result.Globals.Resolve("first"); !ok {
		t.Errorf("expected first global to survive into the second compile")
	}
	if _, ok := result.Globals.Resolve("second"); !ok {
		t.Errorf("expected second global to be declared")
	}
}

func TestCompilerExposesPrototypesAndGlobals(t *testing.T) {
	c := compiler.New("<test>")
	if c.Prototypes() == nil {
		t.Errorf("expected a non-nil prototype registry before any compile")
	}
	if c.Globals() == nil {
		t.Errorf("expected a non-nil global scope before any compile")
	}
}

func TestCompileProgramInfersLiteralParamTypes(t *testing.T) {
	c := compiler.New("<test>")
	result := compile(t, c, `
		function add(a, b) { return a + b; }
		add(2, 3);
	`)
	entry, ok := result.Functions["add"]
	if !ok {
		t.Fatalf("expected function entry for add")
	}
	if len(entry.ParamTypes) != 2 || entry.ParamTypes[0] != types.TInt || entry.ParamTypes[1] != types.TInt {
		t.Errorf("ParamTypes = %v, want [integer integer]", entry.ParamTypes)
	}
}

// TestCompileProgramRecompilesDependentOnPropertyWiden exercises one full
// collapse->recompile round: peek is compiled before Box ever widens the
// v field off Unknown, so its first compile has to take the dynamic
// OpAddDynamic path; once Box's own compile widens v to Integer, peek
// (already registered as v's dependent) is queued and rebuilt, and its
// final chunk should have settled on the static OpAddInt path instead.
func TestCompileProgramRecompilesDependentOnPropertyWiden(t *testing.T) {
	c := compiler.New("<test>")
	result := compile(t, c, `
		function peek(b) { return b.v + 1; }
		function Box(v) { this.v = v; }
		var a = peek(new Box(1));
	`)
	entry, ok := result.Functions["peek"]
	if !ok {
		t.Fatalf("expected function entry for peek")
	}
	var sawAddInt, sawAddDynamic bool
	for _, instr := range entry.Chunk.Instructions {
		switch instr.Op {
		case emitter.OpAddInt:
			sawAddInt = true
		case emitter.OpAddDynamic:
			sawAddDynamic = true
		}
	}
	if !sawAddInt {
		t.Errorf("expected peek's recompiled chunk to use the static integer add path")
	}
	if sawAddDynamic {
		t.Errorf("expected peek's final chunk to have dropped the dynamic add path after Box.v widened")
	}
}
