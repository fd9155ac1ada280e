package runtime

import "testing"

func TestFromJSONScalars(t *testing.T) {
	if v := FromJSON("42"); v.Kind.String() != "integer" {
		t.Errorf("expected integer kind, got %s", v.Kind)
	}
	if v := FromJSON("4.5"); v.Kind.String() != "double" {
		t.Errorf("expected double kind, got %s", v.Kind)
	}
	if v := FromJSON(`"hi"`); ToString(v) != "hi" {
		t.Errorf("expected string hi")
	}
	if v := FromJSON("null"); !v.IsNull() {
		t.Errorf("expected null")
	}
}

func TestFromJSONObjectRoundtrip(t *testing.T) {
	doc := `{"name":"ada","age":36,"tags":["x","y"]}`
	v := FromJSON(doc)
	obj, ok := v.AsObject()
	if !ok {
		t.Fatalf("expected object value")
	}
	name, ok := obj.GetExtra("name")
	if !ok || ToString(name) != "ada" {
		t.Errorf("expected name=ada, got %v", name)
	}
	tags, ok := obj.GetExtra("tags")
	if !ok {
		t.Fatalf("expected tags property")
	}
	arr, ok := tags.AsArray()
	if !ok || arr.Length() != 2 {
		t.Fatalf("expected 2-element array, got %v", tags)
	}

	out, err := ToJSON(v)
	if err != nil {
		t.Fatalf("ToJSON: %v", err)
	}
	back := FromJSON(out)
	backName, _ := back.AsObject()
	n, _ := backName.GetExtra("name")
	if ToString(n) != "ada" {
		t.Errorf("roundtrip lost name property, got %q", out)
	}
}
