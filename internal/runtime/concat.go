package runtime

import "strings"

// ConcatenatedString is a rope-like lazy string builder (§3, §4.5):
// repeated `+` concatenation against a ConcatenatedString-typed
// variable accumulates parts without materialising the full string
// until something observes it (ToString, comparison, indexing).
// Grounded on the same "avoid O(n^2) repeated concatenation" concern
// the teacher addresses with strings.Builder inside its own
// string-heavy opcodes, generalised here into a persistent value
// instead of a transient builder, since a ConcatenatedString is itself
// a first-class typed value that can be stored in a variable and
// appended to across multiple statements.
type ConcatenatedString struct {
	parts        []string
	materialized string
	done         bool
}

func NewConcatenatedString(s string) *ConcatenatedString {
	return &ConcatenatedString{parts: []string{s}}
}

// Append returns a new ConcatenatedString sharing this one's parts
// plus the addition — concatenation never mutates a
// ConcatenatedString already observed by another variable, since §8
// requires value semantics for every JS primitive including this one.
func (c *ConcatenatedString) Append(s string) *ConcatenatedString {
	parts := make([]string, len(c.parts), len(c.parts)+1)
	copy(parts, c.parts)
	parts = append(parts, s)
	return &ConcatenatedString{parts: parts}
}

func (c *ConcatenatedString) Materialize() string {
	if !c.done {
		c.materialized = strings.Join(c.parts, "")
		c.parts = []string{c.materialized}
		c.done = true
	}
	return c.materialized
}

func (c *ConcatenatedString) Len() int {
	if c.done {
		return len(c.materialized)
	}
	n := 0
	for _, p := range c.parts {
		n += len(p)
	}
	return n
}
