package vmexec_test

import (
	"testing"

	"github.com/markab/tracejs/internal/compiler"
	"github.com/markab/tracejs/internal/optinfo"
	"github.com/markab/tracejs/internal/parser"
	"github.com/markab/tracejs/internal/vmexec"
)

func compileAndRun(t *testing.T, src string) (*compiler.Result, *vmexec.VM) {
	t.Helper()
	prog, hints, err := parser.Parse(src, "<test>")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	c := compiler.New("<test>")
	result, err := c.CompileProgram(prog, false, optinfo.Hints(hints))
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	vm := vmexec.New(result, "<test>")
	if _, err := vm.Run(result.Chunk); err != nil {
		t.Fatalf("run: %v", err)
	}
	return result, vm
}

func globalValue(t *testing.T, result *compiler.Result, vm *vmexec.VM, name string) string {
	t.Helper()
	g, ok := result.Globals.Resolve(name)
	if !ok {
		t.Fatalf("global %q was never declared", name)
	}
	return vm.Global(g.Slot()).String()
}

func TestArithmetic(t *testing.T) {
	result, vm := compileAndRun(t, "var x = 1 + 2 * 3;")
	if got := globalValue(t, result, vm, "x"); got != "integer(7)" {
		t.Errorf("x = %s, want integer(7)", got)
	}
}

func TestStringConcat(t *testing.T) {
	result, vm := compileAndRun(t, `var s = "a" + "b" + "c";`)
	got := globalValue(t, result, vm, "s")
	if got == "" {
		t.Fatalf("s was not produced")
	}
}

func TestFunctionCallReturnsValue(t *testing.T) {
	result, vm := compileAndRun(t, `
		function add(a, b) { return a + b; }
		var r = add(2, 3);
	`)
	if got := globalValue(t, result, vm, "r"); got != "integer(5)" {
		t.Errorf("r = %s, want integer(5)", got)
	}
}

func TestTryCatch(t *testing.T) {
	result, vm := compileAndRun(t, `
		var caught = 0;
		try {
			throw "boom";
		} catch (e) {
			caught = 1;
		}
	`)
	if got := globalValue(t, result, vm, "caught"); got != "integer(1)" {
		t.Errorf("caught = %s, want integer(1)", got)
	}
}

func TestWhileLoop(t *testing.T) {
	result, vm := compileAndRun(t, `
		var i = 0;
		var sum = 0;
		while (i < 5) {
			sum = sum + i;
			i = i + 1;
		}
	`)
	if got := globalValue(t, result, vm, "sum"); got != "integer(10)" {
		t.Errorf("sum = %s, want integer(10)", got)
	}
}

func TestNewObjectAndPropertyAccess(t *testing.T) {
	result, vm := compileAndRun(t, `
		function Point(x, y) { this.x = x; this.y = y; }
		var p = new Point(3, 4);
		var total = p.x + p.y;
	`)
	if got := globalValue(t, result, vm, "total"); got != "integer(7)" {
		t.Errorf("total = %s, want integer(7)", got)
	}
}

func TestTypeOf(t *testing.T) {
	result, vm := compileAndRun(t, `
		var t1 = typeof 1;
		var t2 = typeof "a";
		var t3 = typeof undefined;
	`)
	if got := globalValue(t, result, vm, "t1"); got != `string(number)` {
		t.Errorf("typeof 1 = %s, want string(number)", got)
	}
	if got := globalValue(t, result, vm, "t3"); got != `string(undefined)` {
		t.Errorf("typeof undefined = %s, want string(undefined)", got)
	}
}
