package vmexec

import (
	"strconv"

	"github.com/markab/tracejs/internal/proto"
	"github.com/markab/tracejs/internal/runtime"
)

// getIndexed implements OpLoadIndexed's dynamic lookup: the key may
// arrive as an Integer (array literal/index-expression element access)
// or a String (object property access, including a computed
// `obj[expr]` where expr evaluated to a non-numeric value) — neither
// ArrayLiteral nor ObjectLiteral normalise the key's static type before
// emitting OpStoreIndexed, so the dynamic form has to handle both.
func (vm *VM) getIndexed(container, key runtime.Value) runtime.Value {
	if arr, ok := container.AsArray(); ok {
		idx, ok := arrayIndex(key)
		if !ok {
			return runtime.Undefined()
		}
		return arr.Get(idx)
	}
	if obj, ok := container.AsObject(); ok {
		return vm.getProperty(obj, runtime.ToString(key))
	}
	return runtime.Undefined()
}

func (vm *VM) setIndexed(container, key, value runtime.Value) {
	if arr, ok := container.AsArray(); ok {
		if idx, ok := arrayIndex(key); ok {
			arr.Set(idx, value)
		}
		return
	}
	if obj, ok := container.AsObject(); ok {
		vm.setProperty(obj, runtime.ToString(key), value)
	}
}

func arrayIndex(key runtime.Value) (int, bool) {
	if i, ok := key.AsInt(); ok {
		return int(i), true
	}
	if f, ok := key.AsDouble(); ok {
		return int(f), true
	}
	if s, ok := key.AsString(); ok {
		n, err := strconv.Atoi(s)
		if err != nil {
			return 0, false
		}
		return n, true
	}
	return 0, false
}

// getProperty resolves a named property against an object's own extra
// slots first (every dynamically added property lands there, §4.7's
// "accessor pair" and "new property after finalisation" cases
// included), then against the hidden-class chain for a field, a
// constant, or a host-registered accessor (pkg/tracejs.RegisterHostType
// — the one BackingAccessor case with no call-site argument types to
// dispatch on, so reaching it dynamically still resolves correctly). A
// method group reached only through this dynamic path still has no
// argument types to dispatch on and resolves to Undefined, the same
// simplification OpCallMethod's unused handle already accepts for
// dynamic call dispatch in general.
func (vm *VM) getProperty(obj *runtime.Object, name string) runtime.Value {
	if v, ok := obj.GetExtra(name); ok {
		return v
	}
	p, ok := vm.result.Prototypes.ByRef(obj.Proto)
	if !ok {
		return runtime.Undefined()
	}
	_, pv, ok := p.Lookup(name)
	if !ok {
		return runtime.Undefined()
	}
	switch pv.Backing() {
	case proto.BackingField:
		return obj.Field(pv.FieldIndex())
	case proto.BackingConstant:
		v, _ := pv.ConstantValue()
		return constantToValue(v)
	case proto.BackingAccessor:
		if ha, ok := vm.hostAccessors[accessorHandle(name)]; ok {
			return ha.get(runtime.ObjVal(obj))
		}
		return runtime.Undefined()
	default:
		return runtime.Undefined()
	}
}

func (vm *VM) setProperty(obj *runtime.Object, name string, value runtime.Value) {
	if p, ok := vm.result.Prototypes.ByRef(obj.Proto); ok {
		if _, pv, ok := p.Lookup(name); ok {
			switch pv.Backing() {
			case proto.BackingField:
				obj.SetField(pv.FieldIndex(), value)
				return
			case proto.BackingAccessor:
				if ha, ok := vm.hostAccessors[accessorHandle(name)]; ok && ha.set != nil {
					ha.set(runtime.ObjVal(obj), value)
				}
				return
			}
		}
	}
	obj.SetExtra(name, value)
}

// constantToValue adapts a PropertyVariable's constant payload (stored
// as interface{} by internal/proto, which has no dependency on
// internal/runtime) into a Value.
func constantToValue(v interface{}) runtime.Value {
	switch x := v.(type) {
	case int64:
		return runtime.Int(x)
	case int:
		return runtime.Int(int64(x))
	case float64:
		return runtime.Double(x)
	case string:
		return runtime.Str(x)
	case bool:
		return runtime.Bool(x)
	case runtime.Value:
		return x
	default:
		return runtime.Undefined()
	}
}
