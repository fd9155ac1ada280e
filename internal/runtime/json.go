package runtime

import (
	"strconv"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/markab/tracejs/internal/types"
)

// FromJSON and ToJSON bridge host-supplied JSON-shaped values (§6
// "hostGlobals may carry arbitrary JSON-shaped values") to/from
// runtime.Value without a full unmarshal into a Go struct, using
// gjson/sjson's path-based get/set the way pkg/tracejs's
// RegisterHostType wires a host object whose fields are only known at
// registration time, not compile time.

// FromJSON parses a JSON document into a runtime Value tree: objects
// become *Object (fields only in Extra, since a host-supplied value
// has no internal/proto prototype backing its layout), arrays become
// *Array, and JSON scalars map onto the matching primitive Kind.
func FromJSON(doc string) Value {
	return fromResult(gjson.Parse(doc))
}

func fromResult(r gjson.Result) Value {
	switch r.Type {
	case gjson.Null:
		return Null()
	case gjson.False:
		return Bool(false)
	case gjson.True:
		return Bool(true)
	case gjson.Number:
		if r.Num == float64(int64(r.Num)) {
			return Int(int64(r.Num))
		}
		return Double(r.Num)
	case gjson.String:
		return Str(r.Str)
	case gjson.JSON:
		if r.IsArray() {
			elems := r.Array()
			arr := NewArray(len(elems))
			for i, el := range elems {
				arr.Set(i, fromResult(el))
			}
			return ArrayVal(arr)
		}
		obj := NewObject(hostObjectProto, 0)
		r.ForEach(func(key, value gjson.Result) bool {
			obj.SetExtra(key.String(), fromResult(value))
			return true
		})
		return ObjVal(obj)
	default:
		return Undefined()
	}
}

// hostObjectProto is the zero ProtoRef, used for values materialised
// from raw JSON with no compiled prototype of their own — property
// access against one of these always falls through to the dynamic
// Extra-map path, never the static field path, so an arbitrary
// ProtoRef zero value never collides with a real compiled prototype's
// layout (field access is gated on Backing, not on Proto equality).
var hostObjectProto = types.NewProtoRef(0)

// ToJSON serialises a runtime Value back into a JSON document. Object
// field names are only available for expando (Extra) properties,
// since proto-backed Fields carry no name at the runtime layer — a
// value built purely from compiled fields (no host JSON roundtrip)
// therefore serialises only its Extra-visible surface, matching the
// host bridge's actual use (values constructed from FromJSON in the
// first place, or explicitly exported onto Extra by host code).
func ToJSON(v Value) (string, error) {
	switch {
	case v.IsUndefined(), v.IsNull():
		return "null", nil
	}
	if b, ok := v.AsBool(); ok {
		return strconv.FormatBool(b), nil
	}
	if i, ok := v.AsInt(); ok {
		return strconv.FormatInt(i, 10), nil
	}
	if f, ok := v.AsDouble(); ok {
		return strconv.FormatFloat(f, 'g', -1, 64), nil
	}
	if s, ok := v.AsString(); ok {
		return strconv.Quote(s), nil
	}
	if c, ok := v.AsConcat(); ok {
		return strconv.Quote(c.Materialize()), nil
	}
	if arr, ok := v.AsArray(); ok {
		doc := "[]"
		for i, el := range arr.Elements {
			raw, err := ToJSON(el)
			if err != nil {
				return "", err
			}
			var err2 error
			doc, err2 = sjson.SetRaw(doc, strconv.Itoa(i), raw)
			if err2 != nil {
				return "", err2
			}
		}
		return doc, nil
	}
	if obj, ok := v.AsObject(); ok {
		doc := "{}"
		for _, name := range obj.OrderedExtra {
			raw, err := ToJSON(obj.Extra[name])
			if err != nil {
				return "", err
			}
			var err2 error
			doc, err2 = sjson.SetRaw(doc, name, raw)
			if err2 != nil {
				return "", err2
			}
		}
		return doc, nil
	}
	return "null", nil // Closure/Enumerator have no JSON form
}
