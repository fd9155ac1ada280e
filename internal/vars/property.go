package vars

import (
	"github.com/markab/tracejs/internal/proto"
	"github.com/markab/tracejs/internal/types"
)

// RecompileSink receives dependents that must be rebuilt after a
// PropertyVariable widens. internal/compiler implements this; vars
// stays ignorant of what a "method generator" actually is, avoiding a
// vars -> compiler import cycle (compiler already imports vars).
type RecompileSink interface {
	MarkRecompileNeeded(proto.Dependent)
}

// PropertyVariable adapts a proto.PropertyVariable to the Variable
// interface, adding the instance-keyed `this` convention of §4.6 rule
// 4: for fields, the receiver was already pushed before the thunk
// runs, so Set must restash it around the store so the final stack
// shape matches resultInUse.
type PropertyVariable struct {
	inner *proto.PropertyVariable
	sink  RecompileSink
}

func NewProperty(inner *proto.PropertyVariable, sink RecompileSink) *PropertyVariable {
	return &PropertyVariable{inner: inner, sink: sink}
}

func (p *PropertyVariable) Type() types.Type     { return p.inner.StaticType() }
func (p *PropertyVariable) SetType(types.Type)   {} // type only ever moves via Widen
func (p *PropertyVariable) IsConstant() bool {
	_, isConst := p.inner.ConstantValue()
	return isConst
}
func (p *PropertyVariable) Name() string { return p.inner.Name }

// Get emits the appropriate load for the property's current backing:
// constant, field, accessor call, or default-undefined when the
// property is known but unassigned.
func (p *PropertyVariable) Get(e Emitter) {
	switch p.inner.Backing() {
	case proto.BackingConstant:
		// Constants are folded by internal/convert's caller at EmitCode
		// time in practice, but the field load path below also holds for
		// a constant materialised into the record (host-registered
		// constants that are writable).
		e.LoadField(p.inner.FieldIndex())
	case proto.BackingField:
		e.LoadField(p.inner.FieldIndex())
	case proto.BackingAccessor, proto.BackingMethodGroup:
		e.CallAccessor(accessorHandle(p.inner), false)
	default:
		e.LoadUndefined()
	}
}

// Set implements §4.6 in full, including rule 2 (widen-or-coerce) and
// rule 4 (instance `this` already on stack).
func (p *PropertyVariable) Set(e Emitter, resultInUse bool, valueType types.Type, emitValue func()) {
	recompile, changed := p.inner.Widen(valueType)
	if changed && p.sink != nil {
		for _, d := range recompile {
			p.sink.MarkRecompileNeeded(d)
		}
	}
	target := p.inner.StaticType()

	switch p.inner.Backing() {
	case proto.BackingAccessor, proto.BackingMethodGroup:
		// `this` is already on the stack (instance-keyed) when Set is
		// invoked for a non-static property; the accessor call always
		// consumes exactly [this, value] and leaves nothing behind, so
		// resultInUse is satisfied by stashing the value in a temp local
		// rather than by a stray Dup the call would otherwise have to
		// somehow reach past `this` to preserve.
		emitValue()
		e.Convert(valueType, target)
		var tmp int
		if resultInUse {
			tmp = e.LeaseLocal()
			e.Dup()
			e.StoreLocal(tmp)
		}
		e.CallAccessor(accessorHandle(p.inner), true)
		if resultInUse {
			e.LoadLocal(tmp)
			e.ReleaseLocal(tmp)
		}
		default:
			if p.inner.Backing() == proto.BackingUndefined {
				p.inner.BindField(nextFieldIndexFallback, target)
			}
			emitValue()
			e.Convert(valueType, target)
			var tmp int
			if resultInUse {
				tmp = e.LeaseLocal()
				e.Dup()
				e.StoreLocal(tmp)
			}
			e.StoreField(p.inner.FieldIndex())
			if resultInUse {
				e.LoadLocal(tmp)
				e.ReleaseLocal(tmp)
			}
		}
}

// nextFieldIndexFallback is a placeholder index used only when a
// property is written before the owning prototype has materialised a
// slot for it (first write to a still-undefined property whose
// registration path, e.g. a bare `o.p = 1` on a freshly-created
// object, bypassed AddProperty). internal/proto.Prototype.AddProperty
// is the normal path and always supplies a real index; this exists so
// Set never panics on the fallback object-literal path.
const nextFieldIndexFallback = -1

// accessorHandle derives a stable dispatch id for the property's
// method group / accessor pair from its name alone, used by the code
// emitter to resolve which compiled accessor to invoke. Concrete
// method handles live in proto.MethodGroup; this is intentionally a
// coarse hash since the emitter-side resolution re-derives the
// specific overload from static argument types at the call site
// (§4.3 "Call expression").
func accessorHandle(p *proto.PropertyVariable) uint32 {
	h := uint32(2166136261)
	for _, c := range p.Name {
		h ^= uint32(c)
		h *= 16777619
	}
	return h
}
