// Package compiler implements the method generator (C8): the driver
// that turns a parsed Program into a top-level Chunk plus one compiled
// Chunk per function, builds the engine's prototype registry from
// constructor-body field assignments, and recompiles any function
// whose inlined property types have since widened.
//
// Grounded on the teacher's internal/bytecode.Compiler (compiler_core.go:
// a single long-lived Compiler holding globals/functions/locals tables
// and driving per-node compilation) adapted to this engine's AST nodes
// already knowing how to emit themselves — the method generator here
// only supplies the Context (optinfo.OptimizationInfo), allocates
// argument/local slots up front, and owns cross-function concerns the
// teacher's compiler_core.go also centralises: global/local slot
// bookkeeping and a func-name table (functions map[string]functionInfo).
package compiler

import (
	"fmt"

	"github.com/markab/tracejs/internal/ast"
	"github.com/markab/tracejs/internal/emitter"
	"github.com/markab/tracejs/internal/optinfo"
	"github.com/markab/tracejs/internal/proto"
	"github.com/markab/tracejs/internal/types"
	"github.com/markab/tracejs/internal/vars"
)

// FunctionEntry is one compiled function: its source AST (kept so a
// recompile can simply re-run EmitCode against it), its current
// Chunk, and, if it doubles as a constructor, the Prototype it
// allocates instances of.
type FunctionEntry struct {
	Name       string
	AST        *ast.FunctionExpression
	Chunk      *emitter.Chunk
	ParamTypes []types.Type
	Dependent  proto.Dependent
	CtorOf     *proto.Prototype
	Strict     bool
}

// Result is everything the embedding API needs to run a compiled
// program: the top-level chunk, every function's chunk keyed by the
// name the runtime's MakeClosure intrinsic looks functions up by, and
// the prototype registry instances get allocated against.
type Result struct {
	Chunk      *emitter.Chunk
	Functions  map[string]*FunctionEntry
	Prototypes *proto.Registry
	Globals    *vars.GlobalScope
}

// Compiler is the engine-scoped method generator: one instance per
// ScriptEngine, reused across incremental compiles so prototypes and
// globals accumulate rather than reset (§5 "Shared-resource policy").
type Compiler struct {
	sourceName string
	registry   *proto.Registry
	globals    *vars.GlobalScope

	// synth holds every compiler-resolved identifier key (`#member#...`,
	// `#ctor-proto#...`) seeded into each new OptimizationInfo's scope,
	// so ast.MemberExpression / ast.NewExpression's ctx.ResolveIdentifier
	// calls succeed without internal/ast ever importing internal/proto.
	synth map[string]vars.Variable

	funcs     map[string]*FunctionEntry
	byDep     map[proto.Dependent]*FunctionEntry
	pending   map[proto.Dependent]bool
	nextDep   uint32
	anonCount int

	// inferredParams holds inferParamTypes' pre-pass result for the
	// program currently being compiled: function name to per-parameter
	// static type, joined across every literal-typed call site found.
	inferredParams map[string][]types.Type
}

// New creates a Compiler for one ScriptEngine. sourceName is used only
// for diagnostics (error positions, stack frames).
func New(sourceName string) *Compiler {
	return &Compiler{
		sourceName: sourceName,
		registry:   proto.NewRegistry(),
		globals:    vars.NewGlobalScope(),
		synth:      make(map[string]vars.Variable),
		funcs:      make(map[string]*FunctionEntry),
		byDep:      make(map[proto.Dependent]*FunctionEntry),
		pending:    make(map[proto.Dependent]bool),
	}
}

// MarkRecompileNeeded implements vars.RecompileSink: a property a
// compiled function inlined has widened, so that function must be
// rebuilt against its new static type before its Chunk is trusted
// again (§9 "Recompilation").
func (c *Compiler) MarkRecompileNeeded(d proto.Dependent) {
	c.pending[d] = true
}

// Prototypes exposes the engine-wide registry CompileProgram's Result
// also carries, so an embedder (pkg/tracejs) can define host-backed
// prototypes before the first script ever compiles: RegisterHostType
// needs a live *proto.Registry to add properties to, and a Result only
// exists after a successful compile.
func (c *Compiler) Prototypes() *proto.Registry { return c.registry }

// Globals exposes the engine-wide global table for the same reason:
// pkg/tracejs's SetGlobalValue can declare a host global's slot ahead
// of any script compiling against it.
func (c *Compiler) Globals() *vars.GlobalScope { return c.globals }

// CompileProgram compiles one top-level script: it discovers
// constructor-shaped functions, compiles every function literal in
// the program (recursively, including nested closures), drains any
// recompiles those compiles trigger, then compiles the top-level
// statement list itself.
func (c *Compiler) CompileProgram(prog *ast.Program, strict bool, hints optinfo.Hints) (*Result, error) {
	c.discoverPrototypes(prog.Body)
	c.inferParamTypes(prog.Body)

	for _, fn := range collectFunctionExpressions(prog.Body) {
		if err := c.compileFunctionEntry(fn, strict); err != nil {
			return nil, err
		}
	}
	if err := c.drainRecompiles(); err != nil {
		return nil, err
	}

	b := emitter.NewBuilder(0, nil)
	oi := optinfo.New(b, "<main>", c.sourceName, strict, true, c.globals)
	oi.Hints = hints
	c.seedSynthetic(oi)
	hoistVars(prog.Body, oi)

	for _, s := range prog.Body {
		b.Annotate(s.Pos().Line, s.Pos().Column)
		s.EmitCode(b, oi)
	}
	b.MarkLabel(oi.ReturnLabel())
	b.Halt()
	if err := b.ResolveLabels(); err != nil {
		return nil, fmt.Errorf("compiler: %s: %w", c.sourceName, err)
	}

	return &Result{
		Chunk:      b.Chunk(),
		Functions:  c.funcs,
		Prototypes: c.registry,
		Globals:    c.globals,
	}, nil
}

func (c *Compiler) seedSynthetic(oi *optinfo.OptimizationInfo) {
	for k, v := range c.synth {
		oi.BindSynthetic(k, v)
	}
}

// keyFor names a function entry: its declared name if non-anonymous
// (functions are compiled once per distinct name, matching how the
// runtime's MakeClosure intrinsic addresses them by name), otherwise
// a private incrementing key so every anonymous literal still gets its
// own entry.
func (c *Compiler) keyFor(fn *ast.FunctionExpression) string {
	if fn.Name != "" {
		return fn.Name
	}
	c.anonCount++
	return fmt.Sprintf("#anon#%d", c.anonCount)
}

func (c *Compiler) compileFunctionEntry(fn *ast.FunctionExpression, outerStrict bool) error {
	key := c.keyFor(fn)
	entry, exists := c.funcs[key]
	if !exists {
		entry = &FunctionEntry{
			Name:       key,
			AST:        fn,
			ParamTypes: c.paramTypesFor(key, fn),
			Dependent:  proto.Dependent(c.nextDep),
			Strict:     outerStrict,
		}
		c.nextDep++
		c.byDep[entry.Dependent] = entry
		if p, ok := c.registry.ByName(fn.Name); ok {
			if _, hasCtor := p.Constructor(); !hasCtor {
				entry.CtorOf = p
			}
		}
		c.funcs[key] = entry
	}
	return c.recompileEntry(entry)
}

// recompileEntry (re)builds one function's Chunk, reusing the
// strictness it was first compiled under (a recompile triggered later
// by a widened property must not silently lose "use strict"). It
// re-registers the function as a dependent of every currently known
// prototype member (§9): this engine's compile-time use-def tracking
// is deliberately coarse — a function becomes a dependent of everything
// it *could* have referenced through `this`/member access rather than
// only what it actually read — trading a few unnecessary recompiles for
// not needing a separate read-set analysis pass over the body.
func (c *Compiler) recompileEntry(entry *FunctionEntry) error {
	fn := entry.AST
	numArgs := len(fn.Params) + 1
	b := emitter.NewBuilder(numArgs, nil)
	oi := optinfo.New(b, entry.Name, c.sourceName, entry.Strict, false, c.globals)
	c.seedSynthetic(oi)

	instanceType := types.TAny
	if entry.CtorOf != nil {
		instanceType = types.Obj(entry.CtorOf.Ref())
	}
	oi.BindArg(vars.NewArg("this", 0, instanceType))

	for i, p := range fn.Params {
		oi.BindArg(vars.NewArg(p.Name, i+1, entry.ParamTypes[i]))
	}

	hoistVars(fn.Body, oi)
	for _, s := range fn.Body {
		b.Annotate(s.Pos().Line, s.Pos().Column)
		s.EmitCode(b, oi)
	}
	b.MarkLabel(oi.ReturnLabel())
	b.Return()
	if err := b.ResolveLabels(); err != nil {
		return fmt.Errorf("compiler: function %s: %w", entry.Name, err)
	}

	entry.Chunk = b.Chunk()
	if entry.CtorOf != nil {
		entry.CtorOf.SetConstructor(proto.MethodHandle{ID: uint32(entry.Dependent), Params: entry.ParamTypes})
	}
	c.registerDependent(entry)
	return nil
}

// registerDependent marks entry as a dependent of every property
// variable currently reachable through the synthetic scope, so a
// later widen anywhere queues this function for recompilation.
func (c *Compiler) registerDependent(entry *FunctionEntry) {
	for _, p := range c.registry.AllPropertyVariables() {
		p.AddDependent(entry.Dependent)
	}
}

// drainRecompiles processes the recompile queue until it empties.
// Termination is guaranteed because a property's static type only
// ever moves up a finite lattice (types.Join never revisits a type
// once collapsed to Any); the iteration cap is a defensive backstop
// against a future bug in that invariant, not an expected exit path.
func (c *Compiler) drainRecompiles() error {
	const maxRounds = 100000
	for round := 0; len(c.pending) > 0; round++ {
		if round >= maxRounds {
			return fmt.Errorf("compiler: recompile queue did not converge after %d rounds", maxRounds)
		}
		var dep proto.Dependent
		for d := range c.pending {
			dep = d
			break
		}
		delete(c.pending, dep)
		entry, ok := c.byDep[dep]
		if !ok {
			continue
		}
		if err := c.recompileEntry(entry); err != nil {
			return err
		}
	}
	return nil
}
