// Package tracejs is the host embedding API (§6 "ScriptEngine"): the
// surface an embedding Go program links against to compile and run
// JavaScript source, exchange values with it, and extend its
// prototype chain with Go-backed computed properties.
//
// Grounded on the teacher's cmd/dwscript-wasm/main.go and
// examples/ffi/main.go, the two places the teacher itself embeds its
// engine in a host program (construct an interpreter, feed it source,
// read back a result) — generalised from the teacher's
// interp.New(io.Writer)-plus-bespoke-FFI-registration shape into a
// single Engine with functional options, since this engine's
// interpreter (internal/compiler + internal/vmexec) is two
// collaborating long-lived values rather than the teacher's one.
package tracejs

import (
	"fmt"

	"github.com/markab/tracejs/internal/compiler"
	"github.com/markab/tracejs/internal/errors"
	"github.com/markab/tracejs/internal/optinfo"
	"github.com/markab/tracejs/internal/parser"
	"github.com/markab/tracejs/internal/proto"
	"github.com/markab/tracejs/internal/runtime"
	"github.com/markab/tracejs/internal/types"
	"github.com/markab/tracejs/internal/vmexec"
)

// Value is the host-facing alias for a compiled runtime value. Host
// code never constructs internal/runtime.Value fields directly; it
// goes through the constructors below (Undefined, Bool, Int, ...).
type Value = runtime.Value

// completionSlot is the synthetic global name Evaluate threads its
// expression result through, since a top-level ExpressionStatement
// always pops its value (§4.3 EmitCode contract) and the only other
// channel out of a compiled program is a declared global.
const completionSlot = "__tracejs_result__"

// Engine is one embeddable ScriptEngine instance (§6): a single
// compiler.Compiler accumulating prototypes, globals, and compiled
// functions across every Execute/Evaluate call, plus host-registered
// globals and accessors that get replayed into a freshly built VM each
// run (a VM is rebuilt per run because compiler.Result's Functions map,
// while the same underlying map as the compiler's, is only ever
// snapshotted into name/dependent lookup tables at vmexec.NewWithOutput
// time — see DESIGN.md).
type Engine struct {
	cfg      config
	compiler *compiler.Compiler

	hostGlobals   map[string]Value
	hostAccessors []registeredAccessor

	vm     *vmexec.VM
	result *compiler.Result
}

type registeredAccessor struct {
	name string
	get  func(this Value) Value
	set  func(this, value Value)
}

// New creates an Engine with the given options applied over the
// teacher-matching defaults: strict mode off, output discarded. No
// debug symbols are recorded (the compiler gives its builders no
// symbol writer).
func New(opts ...Option) *Engine {
	cfg := defaultConfig()
	for _, o := range opts {
		o(&cfg)
	}
	e := &Engine{
		cfg:         cfg,
		compiler:    compiler.New(cfg.sourceName),
		hostGlobals: make(map[string]Value),
	}
	return e
}

// Execute compiles and runs source as a top-level program, returning
// its completion value (§6). Prototypes, globals, and functions
// declared by source remain visible to later Execute/Evaluate calls on
// the same Engine (§5 "Shared-resource policy").
func (e *Engine) Execute(source string) (Value, error) {
	return e.run(source, "")
}

// Evaluate compiles expr as a single expression and returns its value,
// the way a REPL's `eval` command does (§6). expr must be a valid JS
// AssignmentExpression; Evaluate wraps it in a synthetic `var`
// declaration internally so the expression's value survives past the
// statement that computes it.
func (e *Engine) Evaluate(expr string) (Value, error) {
	return e.run(expr, completionSlot)
}

func (e *Engine) run(source, wantGlobal string) (Value, error) {
	src := source
	if wantGlobal != "" {
		src = "var " + wantGlobal + " = (" + source + ");"
	}

	prog, hints, err := parser.Parse(src, e.cfg.sourceName)
	if err != nil {
		return runtime.Undefined(), err
	}

	result, err := e.compiler.CompileProgram(prog, e.cfg.strict, optinfo.Hints(hints))
	if err != nil {
		return runtime.Undefined(), err
	}
	e.result = result
	e.rebuildVM()

	completion, err := e.vm.Run(result.Chunk)
	if err != nil {
		return runtime.Undefined(), err
	}
	if wantGlobal == "" {
		return completion, nil
	}
	if g, ok := result.Globals.Resolve(wantGlobal); ok {
		return e.vm.Global(g.Slot()), nil
	}
	return completion, nil
}

// rebuildVM constructs a fresh VM over the latest compiler.Result and
// replays every host-registered global value and accessor into it, so
// newly compiled functions/prototypes are visible (vmexec.NewWithOutput
// snapshots Result.Functions/Prototypes once, at construction) without
// losing state an embedder set up before this run.
func (e *Engine) rebuildVM() {
	vm := vmexec.NewWithOutput(e.result, e.cfg.sourceName, e.cfg.out)
	for name, v := range e.hostGlobals {
		if g, ok := e.result.Globals.Resolve(name); ok {
			vm.SetGlobal(g.Slot(), v)
		}
	}
	for _, a := range e.hostAccessors {
		vm.RegisterAccessor(a.name, a.get, a.set)
	}
	e.vm = vm
}

// SetGlobalValue binds name as an engine-wide global (§6
// SetGlobalValue), visible to any script this Engine subsequently
// compiles as a free identifier. Declaring the slot through
// compiler.Globals means a script reading the name before it is ever
// assigned from JS sees the host's value rather than a ReferenceError.
func (e *Engine) SetGlobalValue(name string, v Value) {
	e.hostGlobals[name] = v
	g := e.compiler.Globals().Declare(name, types.TAny)
	if e.vm != nil {
		e.vm.SetGlobal(g.Slot(), v)
	}
}

// GetGlobalValue reads back an engine-wide global (§6
// GetGlobalValue), whether it was set by the host or by a script's
// own top-level `var`.
func (e *Engine) GetGlobalValue(name string) (Value, bool) {
	if g, ok := e.compiler.Globals().Resolve(name); ok && e.vm != nil {
		return e.vm.Global(g.Slot()), true
	}
	v, ok := e.hostGlobals[name]
	return v, ok
}

// HostAccessor is a Go-backed computed property: get is called on
// every read, set (may be nil for a read-only property) on every
// write.
type HostAccessor struct {
	Name string
	Get  func(this Value) Value
	Set  func(this, value Value)
}

// RegisterHostType defines a named prototype (§6 RegisterHostType)
// whose properties are all Go-backed accessors rather than script
// fields — finalised immediately, since every property on a host type
// is known at registration time, not discovered from constructor-body
// assignments the way a script-defined prototype's fields are (§4.7).
// The returned Prototype's New method allocates instances of it.
func (e *Engine) RegisterHostType(name string, accessors []HostAccessor) *Prototype {
	registry := e.compiler.Prototypes()
	p := registry.New(name, nil)
	for _, a := range accessors {
		p.AddProperty(a.Name, proto.PropertyValue{IsAccessorPair: true, FieldType: types.TAny}, proto.Enumerable|proto.Configurable)
		e.hostAccessors = append(e.hostAccessors, registeredAccessor{name: a.Name, get: a.Get, set: a.Set})
		if e.vm != nil {
			e.vm.RegisterAccessor(a.Name, a.Get, a.Set)
		}
	}
	p.Finalise()
	return &Prototype{p: p}
}

// Prototype is the host-facing handle RegisterHostType returns.
type Prototype struct{ p *proto.Prototype }

// New allocates one instance of a host-registered prototype (§6
// "host objects"). Its fields resolve entirely through the accessors
// RegisterHostType wired in; it carries no field storage of its own.
func (hp *Prototype) New() Value {
	return runtime.ObjVal(runtime.NewObject(hp.p.Ref(), 0))
}

// Exception adapts a *errors.JavaScriptException to the stack-trace
// form §7 describes, for hosts that want the formatted stack rather
// than walking Frames themselves.
func Exception(err error) (*errors.JavaScriptException, bool) {
	exc, ok := err.(*errors.JavaScriptException)
	return exc, ok
}

// Undefined, Null, Bool, Int, Double, and Str construct host-side
// values for SetGlobalValue / HostAccessor bodies to pass into the
// engine, mirroring internal/runtime's own constructors one for one so
// embedders never import internal/runtime directly.
func Undefined() Value      { return runtime.Undefined() }
func Null() Value           { return runtime.Null() }
func Bool(b bool) Value     { return runtime.Bool(b) }
func Int(i int64) Value     { return runtime.Int(i) }
func Double(f float64) Value { return runtime.Double(f) }
func Str(s string) Value    { return runtime.Str(s) }

// ToJSON and FromJSON expose internal/runtime's gjson/sjson-backed
// host-global bridge (§6 "hostGlobals may carry arbitrary JSON-shaped
// values") without requiring an embedder to import internal/runtime.
func ToJSON(v Value) (string, error) { return runtime.ToJSON(v) }
func FromJSON(doc string) Value      { return runtime.FromJSON(doc) }

func (e *Engine) String() string {
	return fmt.Sprintf("tracejs.Engine{source=%s strict=%v}", e.cfg.sourceName, e.cfg.strict)
}
