package runtime

import (
	"regexp"
	"strings"
)

// Regex backs a /pattern/flags literal (internal/ast's RegexLiteral,
// compiled through the MakeRegex intrinsic). No third-party regex
// engine appears anywhere in the example pack's dependency set, so this
// stays on the standard library's regexp rather than inventing a
// dependency no example ever reaches for; Source/Flags are kept
// alongside the compiled form since JS code can read a regex's own
// .source/.flags/.global/.ignoreCase without re-deriving them from the
// RE2 program.
type Regex struct {
	Re     *regexp.Regexp
	Source string
	Flags  string
}

// NewRegex translates JS regex flags into RE2 inline flags where a
// direct equivalent exists (i, m, s); g and y have no RE2 analogue and
// stay only in Flags (Global reports g) for the caller to interpret at
// the match site instead of at compile time.
func NewRegex(pattern, flags string) (*Regex, error) {
	inline := ""
	if strings.ContainsRune(flags, 'i') {
		inline += "i"
	}
	if strings.ContainsRune(flags, 'm') {
		inline += "m"
	}
	if strings.ContainsRune(flags, 's') {
		inline += "s"
	}
	expr := pattern
	if inline != "" {
		expr = "(?" + inline + ")" + pattern
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, err
	}
	return &Regex{Re: re, Source: pattern, Flags: flags}, nil
}

func (r *Regex) Global() bool { return strings.ContainsRune(r.Flags, 'g') }

func RegexVal(r *Regex) Value { return Value{Kind: Object, Data: r} }

func (v Value) AsRegex() (*Regex, bool) {
	r, ok := v.Data.(*Regex)
	return r, ok
}
