// Package cliargs reproduces the command-line surface's key/key:value
// argument semantics (§6: case-insensitive, repeatable, last-value-wins,
// default fallback) as a small standalone helper, for embedders that
// still pass `key:value` strings instead of using cmd/tracejs's cobra
// flags directly.
//
// Grounded on the teacher's own flag-parsing style in
// cmd/dwscript/cmd/run.go (plain string flags read with
// cmd.Flags().GetBool/GetString, case-sensitive by convention) adapted
// to a case-insensitive, repeatable key:value form cobra's own flag
// package does not give you for free.
package cliargs

import "strings"

// Set is a parsed key:value / key=value argument list. Keys are
// case-folded on both insert and lookup; a repeated key's last
// occurrence wins.
type Set struct {
	values map[string]string
}

// Parse splits each arg on the first `:` or `=`, whichever occurs
// first. An arg with neither separator is treated as a bare flag
// (value "true"). Later entries for the same key (case-insensitively)
// overwrite earlier ones.
func Parse(args []string) *Set {
	s := &Set{values: make(map[string]string, len(args))}
	for _, arg := range args {
		key, value := splitKV(arg)
		s.values[strings.ToLower(key)] = value
	}
	return s
}

func splitKV(arg string) (string, string) {
	colon := strings.IndexByte(arg, ':')
	equals := strings.IndexByte(arg, '=')
	idx := colon
	if idx == -1 || (equals != -1 && equals < idx) {
		idx = equals
	}
	if idx == -1 {
		return arg, "true"
	}
	return arg[:idx], arg[idx+1:]
}

// Get returns the value for key (case-insensitive), or def if key was
// never supplied.
func (s *Set) Get(key, def string) string {
	if v, ok := s.values[strings.ToLower(key)]; ok {
		return v
	}
	return def
}

// Has reports whether key was supplied at all.
func (s *Set) Has(key string) bool {
	_, ok := s.values[strings.ToLower(key)]
	return ok
}

// Bool interprets a key's value as a boolean flag ("true"/"1"/"yes"
// are true, anything else false), defaulting to def when key is
// absent.
func (s *Set) Bool(key string, def bool) bool {
	v, ok := s.values[strings.ToLower(key)]
	if !ok {
		return def
	}
	switch strings.ToLower(v) {
	case "true", "1", "yes":
		return true
	default:
		return false
	}
}
