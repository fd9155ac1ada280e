package cliargs

import "testing"

func TestParseLastValueWins(t *testing.T) {
	s := Parse([]string{"mode:fast", "MODE:slow"})
	if got := s.Get("mode", ""); got != "slow" {
		t.Errorf("Get(mode) = %q, want %q", got, "slow")
	}
}

func TestParseEqualsSeparator(t *testing.T) {
	s := Parse([]string{"name=ada"})
	if got := s.Get("NAME", ""); got != "ada" {
		t.Errorf("Get(NAME) = %q, want %q", got, "ada")
	}
}

func TestParseBareFlag(t *testing.T) {
	s := Parse([]string{"verbose"})
	if !s.Bool("verbose", false) {
		t.Errorf("expected bare flag to be truthy")
	}
}

func TestGetDefault(t *testing.T) {
	s := Parse(nil)
	if got := s.Get("missing", "fallback"); got != "fallback" {
		t.Errorf("Get(missing) = %q, want %q", got, "fallback")
	}
	if s.Has("missing") {
		t.Errorf("Has(missing) = true, want false")
	}
}

func TestBoolVariants(t *testing.T) {
	s := Parse([]string{"a:true", "b:1", "c:yes", "d:no"})
	for _, key := range []string{"a", "b", "c"} {
		if !s.Bool(key, false) {
			t.Errorf("Bool(%s) = false, want true", key)
		}
	}
	if s.Bool("d", true) {
		t.Errorf("Bool(d) = true, want false")
	}
}
