// Package convert implements the type-conversion emitter (C5): the
// minimal instruction sequence coercing one static type into another
// per ECMAScript rules (§4.5).
//
// Grounded on the teacher's internal/bytecode opcode set
// (OpIntToFloat, OpFloatToInt, OpIntToString, OpFloatToString,
// OpBoolToString, OpVariantToType, OpToBool) — the same shape of
// "one opcode per lossless/cheap pair, one fallback opcode for
// everything referring to the runtime" this package follows, just
// re-keyed to the JS type lattice of internal/types instead of
// DWScript's.
package convert

import (
	"fmt"

	"github.com/markab/tracejs/internal/emitter"
	"github.com/markab/tracejs/internal/types"
)

// Emit appends the instruction sequence converting the value on top
// of the stack from `from` to `to`, per §4.5. It is a no-op when
// from == to. Builder.Convert is a separate path: it emits a generic
// OpConvert that internal/vmexec resolves by target kind alone, and
// nothing in the engine (internal/compiler, internal/ast) calls Emit.
func Emit(b *emitter.Builder, from, to types.Type) error {
	if from.Equal(to) {
		return nil
	}

	switch to.Kind {
	case types.Any:
		if from.IsConcrete() && from.Kind != types.Object {
			b.Box()
		}
		return nil

	case types.Boolean:
		// undefined/null -> false; numeric -> x != 0 && x == x; string ->
		// length > 0; object -> true. The actual value-dependent test is
		// runtime-side (internal/runtime.ToBoolean); the emitter only
		// needs to select the opcode, since "object -> true" requires no
		// test at all and can fold away for statically-Object operands.
		if from.Kind == types.Object {
			b.Pop()
			b.LoadBool(true)
			return nil
		}
		b.Convert(from, to)
		return nil

	case types.Integer:
		// ES ToInteger: double clamps to int32 range, NaN -> 0, ±Infinity
		// -> ±max (§4.5, §8 boundary behaviours).
		if from.Kind == types.Double {
			b.Convert(from, to)
			return nil
		}
		b.Convert(from, to)
		return nil

	case types.Double:
		// undefined -> NaN; null -> 0; bool -> 0/1; integer -> widen
		// (lossless for the ES safe-integer range, §8 round-trip law 4);
		// string/object -> runtime fallback.
		b.Convert(from, to)
		return nil

	case types.String:
		// undefined -> "undefined", null -> "null", bool -> "true"/"false",
		// concatenated-string -> materialise, else runtime ToString.
		b.Convert(from, to)
		return nil

	case types.ConcatenatedString:
		// Wrap a string, or coerce via runtime (same fallback as String).
		b.Convert(from, to)
		return nil

	case types.Object:
		// undefined/null -> TypeError; else ES ToObject.
		b.ToObject()
		return nil

	default:
		return fmt.Errorf("convert: no rule from %s to %s", from, to)
	}
}

// IsLossless reports whether Convert(to,from) after Convert(from,to) is
// the identity, per §8 invariant 4 (round-trip property): declared
// lossless exactly for int32<->double within the safe-integer range,
// and identity pairs.
func IsLossless(a, b types.Type) bool {
	if a.Equal(b) {
		return true
	}
	return (a.Kind == types.Integer && b.Kind == types.Double) ||
		(a.Kind == types.Double && b.Kind == types.Integer)
}
