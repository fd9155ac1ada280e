package compiler

import (
	"github.com/markab/tracejs/internal/types"
	"github.com/markab/tracejs/internal/vars"
)

// typeMarker is a vars.Variable that only ever answers Type(): it
// backs the `#ctor-proto#<name>` synthetic key ast.NewExpression
// resolves to learn a constructor's instance type. Get/Set are never
// called against it in practice (NewExpression.EmitCode reads the
// type and allocates directly via e.New, never through a variable
// load/store), but the interface requires them.
type typeMarker struct {
	t types.Type
}

func (m typeMarker) Type() types.Type   { return m.t }
func (m typeMarker) SetType(types.Type) {}
func (m typeMarker) IsConstant() bool    { return true }
func (m typeMarker) Name() string        { return m.t.String() }
func (m typeMarker) Get(e vars.Emitter)  { e.LoadUndefined() }
func (m typeMarker) Set(e vars.Emitter, resultInUse bool, valueType types.Type, emitValue func()) {}
