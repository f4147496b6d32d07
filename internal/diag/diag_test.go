package diag

import (
	"strings"
	"testing"

	"github.com/otterlang/otterc/internal/testutil"
	"github.com/otterlang/otterc/internal/token"
)

func TestBagAddAndHasErrors(t *testing.T) {
	b := NewBag()
	if b.HasErrors() {
		t.Fatalf("a fresh bag should have no errors")
	}
	b.Errorf(Parse, ExpectedToken, token.Span{}, "unexpected %s", "token")
	if !b.HasErrors() {
		t.Fatalf("expected HasErrors() to be true after Add")
	}
	if b.Len() != 1 {
		t.Fatalf("expected 1 diagnostic, got %d", b.Len())
	}
}

func TestBagSoftCapPerStage(t *testing.T) {
	b := NewBag()
	for i := 0; i < SoftCap+10; i++ {
		b.Errorf(Lex, BadIndent, token.Span{}, "bad indent #%d", i)
	}
	if b.Len() != SoftCap {
		t.Fatalf("expected the bag to cap at %d diagnostics for one stage, got %d", SoftCap, b.Len())
	}
	last := b.Diagnostics()[len(b.Diagnostics())-1]
	if last.Code != TooManyErrors {
		t.Errorf("expected the capping diagnostic to carry TooManyErrors, got %s", last.Code)
	}
}

func TestBagTracksStagesIndependently(t *testing.T) {
	b := NewBag()
	for i := 0; i < SoftCap; i++ {
		b.Errorf(Lex, BadIndent, token.Span{}, "lex error")
	}
	b.Errorf(Parse, ExpectedToken, token.Span{}, "parse error")
	if b.Len() != SoftCap+1 {
		t.Fatalf("expected lex cap and the parse error to both count, got %d", b.Len())
	}
}

func TestRenderIncludesCaret(t *testing.T) {
	d := Diagnostic{
		Stage: Parse, Code: ExpectedToken, Message: "expected X",
		Span: token.Span{From: token.Position{Line: 2, Column: 3}},
	}
	out := Render(d, "line one\nline two\nline three")
	if !strings.Contains(out, "line two") || !strings.Contains(out, "^") {
		t.Errorf("expected a source excerpt with a caret, got:\n%s", out)
	}
}

func TestRenderMatchesGoldenExcerpt(t *testing.T) {
	d := Diagnostic{
		Stage: Parse, Code: ExpectedToken, Message: "expected X",
		Span: token.Span{From: token.Position{Line: 2, Column: 3}},
	}
	out := Render(d, "line one\nline two\nline three")
	testutil.Golden(t, "render_sample.golden", out)
}
