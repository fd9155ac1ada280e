package vars

import "github.com/markab/tracejs/internal/types"

// GlobalScope is the engine-wide flat table of GlobalVariables (§3
// "GlobalVariable ... property on the engine root"), shared by every
// OptimizationInfo compiling a top-level script for one ScriptEngine.
// Unlike locals, global slots are never released: a script's top-level
// `var` declarations live for the engine's lifetime.
type GlobalScope struct {
	byName map[string]*GlobalVariable
	next   int
}

func NewGlobalScope() *GlobalScope {
	return &GlobalScope{byName: make(map[string]*GlobalVariable)}
}

func (g *GlobalScope) Resolve(name string) (*GlobalVariable, bool) {
	v, ok := g.byName[name]
	return v, ok
}

// Declare returns the existing global for name, widening its type, or
// allocates a fresh slot.
func (g *GlobalScope) Declare(name string, t types.Type) *GlobalVariable {
	if v, ok := g.byName[name]; ok {
		v.SetType(types.Join(v.Type(), t))
		return v
	}
	v := NewGlobal(name, g.next, t)
	g.next++
	g.byName[name] = v
	return v
}

func (g *GlobalScope) Len() int { return g.next }
