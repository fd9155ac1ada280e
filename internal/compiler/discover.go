package compiler

import (
	"github.com/markab/tracejs/internal/ast"
	"github.com/markab/tracejs/internal/proto"
	"github.com/markab/tracejs/internal/types"
	"github.com/markab/tracejs/internal/vars"
)

// discoverPrototypes builds the engine's prototype registry by
// inferring a constructor's instance shape from its own body, the way
// a hidden-class-style JIT derives an object's shape from the
// assignments a constructor actually performs rather than from a
// separate class declaration syntax JS doesn't require (§4.7, §9
// "Prototype system"): every named function that assigns at least one
// `this.prop = ...` field is registered as a constructor, and each
// assigned property becomes a field on its instance prototype.
func (c *Compiler) discoverPrototypes(body []ast.Statement) {
	for _, fn := range collectFunctionExpressions(body) {
		if fn.Name == "" {
			continue
		}
		props := thisAssignedProps(fn.Body)
		if len(props) == 0 {
			continue
		}
		p := c.registry.New(fn.Name, nil)
		instanceType := types.Obj(p.Ref())
		for _, name := range props {
			// Seeded at the bottom of the lattice: the constructor's own
			// first `this.prop = <expr>` write adopts the written value's
			// type through PropertyVariable.Widen (§4.6 rule 1), rather
			// than forcing every field to Any before anything ever runs.
			pv := p.AddProperty(name, proto.PropertyValue{FieldType: types.TUnknown}, proto.Enumerable|proto.Writable)
			c.synth["#member#"+instanceType.String()+"#"+name] = vars.NewProperty(pv, c)
		}
		c.synth["#ctor-proto#"+fn.Name] = typeMarker{t: instanceType}
	}
}

// thisAssignedProps returns, in first-seen order, every property name
// assigned through `this.prop = ...` anywhere in body (not crossing a
// nested function boundary — an inner closure's own `this` is a
// different receiver).
func thisAssignedProps(body []ast.Statement) []string {
	var names []string
	seen := make(map[string]bool)
	record := func(name string) {
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	var visit func(ast.Expression)
	visit = func(e ast.Expression) {
		a, ok := e.(*ast.AssignmentExpression)
		if !ok {
			return
		}
		m, ok := a.Target.(*ast.MemberExpression)
		if !ok {
			return
		}
		id, ok := m.Object.(*ast.Identifier)
		if !ok || id.Name != "this" {
			return
		}
		record(m.Property)
	}
	walkStatements(body, func(s ast.Statement) {
		walkStatementExprs(s, visit)
	})
	return names
}
