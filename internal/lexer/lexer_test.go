package lexer

import (
	"strings"
	"testing"

	"github.com/otterlang/otterc/internal/diag"
	"github.com/otterlang/otterc/internal/token"
)

func mustLex(t *testing.T, src string) []token.Token {
	t.Helper()
	bag := diag.NewBag()
	l := New(strings.NewReader(src), "test.ot", bag)
	var toks []token.Token
	for {
		tok := l.Next()
		toks = append(toks, tok)
		if tok.Kind == token.EOF {
			break
		}
	}
	if bag.HasErrors() {
		t.Fatalf("unexpected lex diagnostics: %v", bag.Diagnostics())
	}
	return toks
}

func kinds(toks []token.Token) []token.Kind {
	ks := make([]token.Kind, len(toks))
	for i, t := range toks {
		ks[i] = t.Kind
	}
	return ks
}

func TestLexSimpleAssignment(t *testing.T) {
	toks := mustLex(t, "let x = 1\n")
	got := kinds(toks)
	want := []token.Kind{token.LET, token.IDENT, token.EQUALS, token.INT, token.NEWLINE, token.EOF}
	if len(got) != len(want) {
		t.Fatalf("got %v want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("token %d: got %s want %s", i, got[i], want[i])
		}
	}
}

func TestLexIndentBlock(t *testing.T) {
	src := "def f():\n    pass\nx = 1\n"
	toks := mustLex(t, src)
	got := kinds(toks)
	foundIndent, foundDedent := false, false
	for _, k := range got {
		if k == token.INDENT {
			foundIndent = true
		}
		if k == token.DEDENT {
			foundDedent = true
		}
	}
	if !foundIndent || !foundDedent {
		t.Fatalf("expected balanced INDENT/DEDENT, got %v", got)
	}
}

func TestLexFString(t *testing.T) {
	toks := mustLex(t, `f"hi {name}!"`+"\n")
	got := kinds(toks)
	want := []token.Kind{token.F_BEGIN, token.STRING_PART, token.EMBED_BEGIN, token.IDENT, token.EMBED_END, token.STRING_PART, token.F_END, token.NEWLINE, token.EOF}
	if len(got) != len(want) {
		t.Fatalf("got %v want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("token %d: got %s want %s", i, got[i], want[i])
		}
	}
}

func TestLexKeywords(t *testing.T) {
	toks := mustLex(t, "if elif else for while match case try except raise\n")
	got := kinds(toks)
	want := []token.Kind{token.IF, token.ELIF, token.ELSE, token.FOR, token.WHILE, token.MATCH, token.CASE, token.TRY, token.EXCEPT, token.RAISE, token.NEWLINE, token.EOF}
	if len(got) != len(want) {
		t.Fatalf("got %v want %v", got, want)
	}
}

func TestLexNeverPanics(t *testing.T) {
	inputs := []string{
		"", "\n", "{{{{{", "}}}}}", "f\"", "\"unterminated", "\t\t\t\n",
		"###\n", "1.2.3", "====", "def f(:", "\x00\x01\x02",
	}
	for _, in := range inputs {
		func() {
			defer func() {
				if r := recover(); r != nil {
					t.Fatalf("lexer panicked on %q: %v", in, r)
				}
			}()
			bag := diag.NewBag()
			l := New(strings.NewReader(in), "fuzz", bag)
			for i := 0; i < 10000; i++ {
				tok := l.Next()
				if tok.Kind == token.EOF {
					break
				}
			}
		}()
	}
}
