package lexer

import "testing"

func collect(t *testing.T, src string) []Token {
	t.Helper()
	l := New(src, "test.js")
	var toks []Token
	for {
		tok, err := l.Next()
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		toks = append(toks, tok)
		if tok.Type == TokenEOF {
			break
		}
	}
	return toks
}

func TestNumberLiterals(t *testing.T) {
	toks := collect(t, "1 + 2.5 0x1F 010 1e3")
	var nums []Token
	for _, tok := range toks {
		if tok.Type == TokenNumber {
			nums = append(nums, tok)
		}
	}
	if len(nums) != 5 {
		t.Fatalf("expected 5 numbers, got %d", len(nums))
	}
	if !nums[0].IsInt32 || nums[0].NumValue != 1 {
		t.Errorf("first literal: %+v", nums[0])
	}
	if nums[2].NumValue != 31 {
		t.Errorf("hex literal: %+v", nums[2])
	}
	if nums[3].NumValue != 8 {
		t.Errorf("octal literal: %+v", nums[3])
	}
}

func TestStringEscapes(t *testing.T) {
	toks := collect(t, `"a\nbA\u{1F600}"`)
	if toks[0].Type != TokenString {
		t.Fatalf("expected string token, got %v", toks[0].Type)
	}
	want := "a\nbA\U0001F600"
	if toks[0].StrValue != want {
		t.Errorf("got %q want %q", toks[0].StrValue, want)
	}
}

func TestRegexVsDivisionContext(t *testing.T) {
	toks := collect(t, "a / b; return /x/g;")
	if toks[1].Type != TokenPunct || toks[1].Lexeme != "/" {
		t.Fatalf("expected division punct, got %+v", toks[1])
	}
	var regex *Token
	for i := range toks {
		if toks[i].Type == TokenRegex {
			regex = &toks[i]
		}
	}
	if regex == nil {
		t.Fatal("expected a regex token after `return`")
	}
	if regex.RegexBody != "x" || regex.RegexFlags != "g" {
		t.Errorf("got body=%q flags=%q", regex.RegexBody, regex.RegexFlags)
	}
}

func TestResolveIdentifierEscape(t *testing.T) {
	name, ok := ResolveIdentifier(`abc`)
	if !ok || name != "abc" {
		t.Errorf("got %q ok=%v", name, ok)
	}
}

func TestUnterminatedStringIsSyntaxError(t *testing.T) {
	l := New(`"abc`, "test.js")
	_, err := l.Next()
	if err == nil {
		t.Fatal("expected a syntax error")
	}
}
