package proto

import (
	"fmt"

	"github.com/markab/tracejs/internal/types"
)

// Registry owns every Prototype minted for one ScriptEngine. It is
// engine-scoped, never process-scoped (§9 "Global mutable state"):
// two engines never share a Registry, and it is mutated only by the
// compiler on its owning thread (§5 "Shared-resource policy").
type Registry struct {
	byRef  map[types.ProtoRef]*Prototype
	byName map[string]*Prototype
	nextID uint32
	global *Prototype
}

// NewRegistry creates an empty registry and its root global prototype
// (the JS global object is itself a prototype, per §3's ScriptEngine
// definition).
func NewRegistry() *Registry {
	r := &Registry{
		byRef:  make(map[types.ProtoRef]*Prototype),
		byName: make(map[string]*Prototype),
	}
	r.global = r.New("global", nil)
	return r
}

// New allocates a fresh prototype bound to this registry. parent may
// be nil (root of a chain). New never introduces a cycle because
// parent must already exist in the registry or be nil — there is no
// way to retroactively rewire an existing prototype's parent through
// this API (§8 invariant 3).
func (r *Registry) New(name string, parent *Prototype) *Prototype {
	ref := types.NewProtoRef(r.nextID)
	r.nextID++
	p := newPrototype(ref, name, parent)
	r.byRef[ref] = p
	if name != "" {
		r.byName[name] = p
	}
	return p
}

func (r *Registry) Global() *Prototype { return r.global }

func (r *Registry) ByRef(ref types.ProtoRef) (*Prototype, bool) {
	p, ok := r.byRef[ref]
	return p, ok
}

func (r *Registry) ByName(name string) (*Prototype, bool) {
	p, ok := r.byName[name]
	return p, ok
}

// Resolve walks the global prototype's chain for a top-level
// identifier, the entry point §4.7 describes as "resolution of
// identifier names against the global prototype".
func (r *Registry) Resolve(name string) (*Prototype, *PropertyVariable, bool) {
	return r.global.Lookup(name)
}

// AllPropertyVariables returns every PropertyVariable registered
// across every prototype in the registry, used by internal/compiler
// to register a freshly compiled function as a dependent of the
// properties it could have referenced (§9 "Recompilation").
func (r *Registry) AllPropertyVariables() []*PropertyVariable {
	var out []*PropertyVariable
	for _, p := range r.byRef {
		for _, name := range p.order {
			out = append(out, p.props[name])
		}
	}
	return out
}

// Validate checks the acyclicity invariant (§8 invariant 3). It is not
// called on every mutation (parent linkage can only be set at
// creation time, so cycles are structurally impossible) — it exists as
// a defensive check for host-constructed chains via RegisterHostType,
// which can supply an arbitrary parent reference.
func (r *Registry) Validate() error {
	for _, p := range r.byRef {
		seen := make(map[types.ProtoRef]bool)
		for cur := p; cur != nil; cur = cur.parent {
			if seen[cur.ref] {
				return fmt.Errorf("proto: cycle detected in prototype chain starting at %s", p.name)
			}
			seen[cur.ref] = true
		}
	}
	return nil
}
