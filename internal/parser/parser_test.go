package parser

import "testing"

func TestParseProgramStatementCount(t *testing.T) {
	prog, _, err := Parse("var x = 1; var y = 2;", "<test>")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(prog.Body) != 2 {
		t.Errorf("len(Body) = %d, want 2", len(prog.Body))
	}
}

func TestParseHintsDetectEvalAndArguments(t *testing.T) {
	_, hints, err := Parse("function f() { eval(arguments[0]); }", "<test>")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !hints.HasEval {
		t.Errorf("expected HasEval")
	}
	if !hints.HasArguments {
		t.Errorf("expected HasArguments")
	}
}

func TestParseHintsReadsThis(t *testing.T) {
	_, hints, err := Parse("function f() { return this.x; }", "<test>")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !hints.ReadsThis {
		t.Errorf("expected ReadsThis")
	}
}

func TestParseStrictDirectiveRejectsDuplicateParams(t *testing.T) {
	_, _, err := Parse(`"use strict"; function f(a, a) { return a; }`, "<test>")
	if err == nil {
		t.Fatalf("expected duplicate parameter name to be rejected under strict mode")
	}
}

func TestParseSyntaxErrorReportsPosition(t *testing.T) {
	_, _, err := Parse("var x = ;", "<test>")
	if err == nil {
		t.Fatalf("expected a syntax error")
	}
}
