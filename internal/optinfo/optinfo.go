// Package optinfo implements the per-compilation scratch state (C9):
// the break/continue stack, long-jump callback, finally-depth
// threshold, cached regex slots, and identifier resolution against the
// active scope chain. OptimizationInfo implements ast.Context
// structurally so internal/ast never imports this package.
//
// Grounded on the teacher's per-Compiler scratch fields
// (compiler_core.go: loop/break/continue bookkeeping alongside the
// symbol table) generalised to JS's richer label model (§3
// "OptimizationInfo", §4.9).
package optinfo

import (
	"fmt"

	"github.com/markab/tracejs/internal/ast"
	"github.com/markab/tracejs/internal/emitter"
	"github.com/markab/tracejs/internal/types"
	"github.com/markab/tracejs/internal/vars"
)

// target is one entry of the break/continue stack (§3: "entries:
// label names, break label, continue label, labelled-only flag").
type target struct {
	label        string
	breakLabel   *emitter.Label
	continueLabel *emitter.Label // nil for switch / bare labelled statements
}

// Hints records the method-optimization triggers the parser discovers
// syntactically (§3, §9 "arguments object").
type Hints struct {
	HasEval      bool
	HasArguments bool
	HasWith      bool
	ReadsThis    bool
}

// OptimizationInfo is one function's (or the top-level script's)
// compile-time scratch state.
type OptimizationInfo struct {
	FunctionName string
	SourceName   string
	Strict       bool
	IsTopLevel   bool // true for the top-level script scope: DeclareLocal hoists to globals, not a leased slot (§4.8 step 2)
	Hints        Hints

	globals *vars.GlobalScope

	builder *emitter.Builder
	locals  map[string]vars.Variable

	targets []target

	returnLabel *emitter.Label
	returnSlot  int

	finallyDepth   int
	longJumpTarget *emitter.Label // set by RequestLongJump, consumed by the enclosing try emitter's dispatch

	regexSlots map[ast.Node]int
}

// New creates the scratch state for one method generator run. globals
// is the engine-wide GlobalScope (shared across every compile for one
// ScriptEngine), letting ResolveIdentifier fall back to JS globals for
// bare names that are not args/locals.
func New(b *emitter.Builder, functionName, sourceName string, strict, isTopLevel bool, globals *vars.GlobalScope) *OptimizationInfo {
	oi := &OptimizationInfo{
		FunctionName: functionName,
		SourceName:   sourceName,
		Strict:       strict,
		IsTopLevel:   isTopLevel,
		globals:      globals,
		builder:      b,
		locals:       make(map[string]vars.Variable),
		regexSlots:   make(map[ast.Node]int),
	}
	oi.returnLabel = b.NewLabel()
	oi.returnSlot = b.LeaseLocal()
	return oi
}

func (oi *OptimizationInfo) IsStrict() bool { return oi.Strict }

// BindArg registers a parameter's ArgVariable in scope, called by the
// method generator during step 1 of §4.8.
func (oi *OptimizationInfo) BindArg(v *vars.ArgVariable) { oi.locals[v.Name()] = v }

// BindSynthetic registers a compiler-resolved variable (a prototype
// member key or constructor-instance key, per ast.MemberExpression /
// ast.NewExpression) directly into scope, so ResolveIdentifier serves
// it exactly like a real identifier.
func (oi *OptimizationInfo) BindSynthetic(key string, v vars.Variable) { oi.locals[key] = v }

// ResolveIdentifier looks up name against locals/args/synthetic keys
// first, then the engine's global scope, per §4.3's Identifier rule.
func (oi *OptimizationInfo) ResolveIdentifier(name string) (vars.Variable, bool) {
	if v, ok := oi.locals[name]; ok {
		return v, true
	}
	if oi.globals == nil {
		return nil, false
	}
	return oi.globals.Resolve(name)
}

// DeclareLocal leases a fresh Builder local slot and registers it in
// scope (§4.8 step 2). The top-level script's `var`/function
// declarations are hoisted to true engine globals separately, before
// EmitCode runs, by the method generator's hoisting pass (HoistGlobal);
// that pre-registration means ResolveIdentifier already succeeds for
// every hoisted top-level name, so DeclareLocal here only ever
// allocates slot-backed locals — the path §4.8 describes for function
// bodies, and the fallback this compiler takes for any declaration the
// hoist pass did not anticipate.
func (oi *OptimizationInfo) DeclareLocal(name string, t types.Type) *vars.LocalVariable {
	if existing, ok := oi.locals[name]; ok {
		if lv, ok := existing.(*vars.LocalVariable); ok {
			lv.SetType(types.Join(lv.Type(), t))
			return lv
		}
	}
	slot := oi.builder.LeaseLocal()
	lv := vars.NewLocal(name, slot, t)
	oi.locals[name] = lv
	return lv
}

// HoistGlobal pre-declares a top-level `var`/function name as a real
// engine global and binds it into scope, so later ResolveIdentifier
// calls against it resolve to the GlobalVariable instead of triggering
// a fallback local allocation (§4.8 step 2 "globals for top-level
// script").
func (oi *OptimizationInfo) HoistGlobal(name string, t types.Type) *vars.GlobalVariable {
	g := oi.globals.Declare(name, t)
	oi.locals[name] = g
	return g
}

func (oi *OptimizationInfo) PushLoopTargets(label string, breakL, continueL *emitter.Label) {
	oi.targets = append(oi.targets, target{label: label, breakLabel: breakL, continueLabel: continueL})
}

func (oi *OptimizationInfo) PushSwitchTarget(label string, breakL *emitter.Label) {
	oi.targets = append(oi.targets, target{label: label, breakLabel: breakL})
}

func (oi *OptimizationInfo) PopTarget() {
	if len(oi.targets) > 0 {
		oi.targets = oi.targets[:len(oi.targets)-1]
	}
}

// BreakTarget implements §4.9: unlabelled break targets the innermost
// entry regardless of kind; labelled break searches the whole stack
// for a matching label.
func (oi *OptimizationInfo) BreakTarget(label string) (*emitter.Label, error) {
	if label == "" {
		if len(oi.targets) == 0 {
			return nil, fmt.Errorf("SyntaxError: illegal break statement")
		}
		return oi.targets[len(oi.targets)-1].breakLabel, nil
	}
	for i := len(oi.targets) - 1; i >= 0; i-- {
		if oi.targets[i].label == label {
			return oi.targets[i].breakLabel, nil
		}
	}
	return nil, fmt.Errorf("SyntaxError: undefined label '%s'", label)
}

// ContinueTarget implements §4.9: unlabelled continue targets the
// innermost loop (an entry with a non-nil continueLabel, skipping
// switch/bare-labelled entries); labelled continue to a non-loop label
// is a SyntaxError.
func (oi *OptimizationInfo) ContinueTarget(label string) (*emitter.Label, error) {
	if label == "" {
		for i := len(oi.targets) - 1; i >= 0; i-- {
			if oi.targets[i].continueLabel != nil {
				return oi.targets[i].continueLabel, nil
			}
		}
		return nil, fmt.Errorf("SyntaxError: illegal continue statement")
	}
	for i := len(oi.targets) - 1; i >= 0; i-- {
		if oi.targets[i].label == label {
			if oi.targets[i].continueLabel == nil {
				return nil, fmt.Errorf("SyntaxError: continue label '%s' does not target a loop", label)
			}
			return oi.targets[i].continueLabel, nil
		}
	}
	return nil, fmt.Errorf("SyntaxError: undefined label '%s'", label)
}

// DeclareLabel checks a label being opened against every label
// currently active on the stack (§4.9 "declaring a label that
// collides with an in-scope label is a SyntaxError").
func (oi *OptimizationInfo) DeclareLabel(name string) error {
	for _, t := range oi.targets {
		if t.label == name {
			return fmt.Errorf("SyntaxError: label '%s' has already been declared", name)
		}
	}
	return nil
}

func (oi *OptimizationInfo) ReturnLabel() *emitter.Label { return oi.returnLabel }
func (oi *OptimizationInfo) ReturnSlot() int             { return oi.returnSlot }

func (oi *OptimizationInfo) FinallyDepth() int { return oi.finallyDepth }

// EnterFinally/ExitFinally bracket a finally block's emission; called
// by ast.TryStatement.EmitCode around its Finally body (§4.9).
func (oi *OptimizationInfo) EnterFinally() { oi.finallyDepth++ }
func (oi *OptimizationInfo) ExitFinally()  { oi.finallyDepth-- }

// RequestLongJump records a jump target that must cross a finally
// boundary; the enclosing try/catch/finally emitter drains this via
// TakeLongJump after emitting the finally body (§4.9, §9's two-stage
// protocol: this call corresponds to the callback that "stores a
// pending-exit code in a scratch slot").
func (oi *OptimizationInfo) RequestLongJump(target *emitter.Label) {
	oi.longJumpTarget = target
}

// TakeLongJump returns and clears the most recently requested
// long-jump target, if any.
func (oi *OptimizationInfo) TakeLongJump() (*emitter.Label, bool) {
	t := oi.longJumpTarget
	oi.longJumpTarget = nil
	return t, t != nil
}

func (oi *OptimizationInfo) CachedRegexSlot(node ast.Node) (int, bool) {
	slot, ok := oi.regexSlots[node]
	return slot, ok
}

func (oi *OptimizationInfo) SetCachedRegexSlot(node ast.Node, slot int) {
	oi.regexSlots[node] = slot
}
