package tracejs_test

import (
	"testing"

	"github.com/markab/tracejs/pkg/tracejs"
)

func TestEvaluateArithmetic(t *testing.T) {
	engine := tracejs.New(tracejs.WithSourceName("<test>"))
	v, err := engine.Evaluate("1 + 2 * 3")
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if v.String() != "integer(7)" {
		t.Errorf("got %s, want integer(7)", v.String())
	}
}

func TestExecuteThenGetGlobalValue(t *testing.T) {
	engine := tracejs.New()
	if _, err := engine.Execute("var greeting = \"hi\";"); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	v, ok := engine.GetGlobalValue("greeting")
	if !ok {
		t.Fatalf("expected greeting to be set")
	}
	if v.String() != "string(hi)" {
		t.Errorf("got %s, want string(hi)", v.String())
	}
}

func TestSetGlobalValueVisibleToScript(t *testing.T) {
	engine := tracejs.New()
	engine.SetGlobalValue("hostValue", tracejs.Int(41))
	v, err := engine.Evaluate("hostValue + 1")
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if v.String() != "integer(42)" {
		t.Errorf("got %s, want integer(42)", v.String())
	}
}

func TestRegisterHostTypeAccessor(t *testing.T) {
	engine := tracejs.New()
	calls := 0
	proto := engine.RegisterHostType("Counter", []tracejs.HostAccessor{
		{
			Name: "count",
			Get: func(this tracejs.Value) tracejs.Value {
				calls++
				return tracejs.Int(int64(calls))
			},
		},
	})
	engine.SetGlobalValue("counter", proto.New())

	v, err := engine.Evaluate("counter.count")
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if v.String() != "integer(1)" {
		t.Errorf("got %s, want integer(1)", v.String())
	}
}

func TestOptionsFromYAML(t *testing.T) {
	opts, err := tracejs.OptionsFromYAML([]byte("strict: true\nsourceName: app.js\n"))
	if err != nil {
		t.Fatalf("OptionsFromYAML: %v", err)
	}
	engine := tracejs.New(opts...)
	if _, err := engine.Execute("var x = 1;"); err != nil {
		t.Fatalf("Execute: %v", err)
	}
}
