package ast

import (
	"strings"

	"github.com/markab/tracejs/internal/emitter"
	"github.com/markab/tracejs/internal/types"
)

// ArrayLiteral is `[a, b, c]`.
type ArrayLiteral struct {
	Elements []Expression
	Pos_     SourcePosition
}

func (a *ArrayLiteral) Pos() SourcePosition { return a.Pos_ }
func (a *ArrayLiteral) String() string {
	parts := make([]string, len(a.Elements))
	for i, e := range a.Elements {
		parts[i] = e.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
func (a *ArrayLiteral) expressionNode()               {}
func (a *ArrayLiteral) ResultType(Context) types.Type { return types.TAny }

func (a *ArrayLiteral) EmitCode(e *emitter.Builder, ctx Context) {
	e.LoadConstInt(int64(len(a.Elements)))
	e.NewArraySized()
	for i, el := range a.Elements {
		e.Dup()
		e.LoadConstInt(int64(i))
		el.EmitCode(e, ctx)
		e.Convert(el.ResultType(ctx), types.TAny)
		e.StoreIndexed()
	}
}

// ObjectProperty is one `key: value` entry of an ObjectLiteral.
type ObjectProperty struct {
	Key   string
	Value Expression
}

// ObjectLiteral is `{ a: 1, b: 2 }`.
type ObjectLiteral struct {
	Properties []ObjectProperty
	Pos_       SourcePosition
}

func (o *ObjectLiteral) Pos() SourcePosition { return o.Pos_ }
func (o *ObjectLiteral) String() string {
	parts := make([]string, len(o.Properties))
	for i, p := range o.Properties {
		parts[i] = p.Key + ": " + p.Value.String()
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
func (o *ObjectLiteral) expressionNode()               {}
func (o *ObjectLiteral) ResultType(Context) types.Type { return types.TAny }

func (o *ObjectLiteral) EmitCode(e *emitter.Builder, ctx Context) {
	e.NewObject(0) // object literals get the bare Object prototype; proto resolution happens at runtime
	for _, p := range o.Properties {
		e.Dup()
		e.LoadConstString(p.Key)
		p.Value.EmitCode(e, ctx)
		e.Convert(p.Value.ResultType(ctx), types.TAny)
		e.StoreIndexed()
	}
}

// Param is one formal parameter of a FunctionExpression.
type Param struct {
	Name string
	Type types.Type // TAny unless the caller is statically known (§4.8 step 1)
}

// FunctionExpression is a named or anonymous function literal. Its
// body is compiled by internal/compiler, which compiles every function
// in the program up front in CompileProgram — FunctionExpression itself
// only records the AST, per §4.8's "Method generator" being the actual
// compilation driver.
type FunctionExpression struct {
	Name   string // empty for anonymous
	Params []Param
	Body   []Statement
	Pos_   SourcePosition
}

func (f *FunctionExpression) Pos() SourcePosition { return f.Pos_ }
func (f *FunctionExpression) String() string {
	names := make([]string, len(f.Params))
	for i, p := range f.Params {
		names[i] = p.Name
	}
	return "function " + f.Name + "(" + strings.Join(names, ", ") + ") { ... }"
}
func (f *FunctionExpression) expressionNode()               {}
func (f *FunctionExpression) ResultType(Context) types.Type { return types.TAny }

// EmitCode, for a function expression appearing in expression
// position, pushes a closure value referencing the (possibly not yet
// compiled) method handle; internal/compiler registers the handle and
// resolves EmitCode against it before driving this node, so the
// instruction here is a fixed-arity closure construction, not a
// compile trigger.
func (f *FunctionExpression) EmitCode(e *emitter.Builder, ctx Context) {
	e.LoadConstString(f.Name)
	e.CallIntrinsic("MakeClosure", 1) // bound to this function's already-compiled handle by the compiler
}

// ParamTypes satisfies CallExpression.staticSignature when the callee
// is a direct function literal reference.
func (f *FunctionExpression) ParamTypes() ([]types.Type, bool) {
	out := make([]types.Type, len(f.Params))
	for i, p := range f.Params {
		out[i] = p.Type
	}
	return out, true
}
