package parser

import (
	"strings"
	"testing"

	"github.com/otterlang/otterc/internal/ast"
	"github.com/otterlang/otterc/internal/diag"
	"github.com/otterlang/otterc/internal/lexer"
)

func mustParse(t *testing.T, src string) *ast.File {
	t.Helper()
	bag := diag.NewBag()
	lx := lexer.New(strings.NewReader(src), "test.ot", bag)
	p := New(lx, "test.ot", bag)
	file, err := p.Parse()
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if bag.HasErrors() {
		for _, d := range bag.Diagnostics() {
			t.Errorf("unexpected diagnostic: %s", d)
		}
	}
	return file
}

func TestParseSimpleFunc(t *testing.T) {
	src := "def add(a: Int, b: Int) -> Int:\n    return a + b\n"
	file := mustParse(t, src)
	if len(file.TopLevel) != 1 {
		t.Fatalf("expected 1 top-level decl, got %d", len(file.TopLevel))
	}
	fn, ok := file.TopLevel[0].(ast.FuncDecl)
	if !ok {
		t.Fatalf("expected FuncDecl, got %T", file.TopLevel[0])
	}
	if fn.Name.Name != "add" || len(fn.Params) != 2 {
		t.Fatalf("unexpected func decl: %+v", fn)
	}
}

func TestParseStructDecl(t *testing.T) {
	src := "struct Point:\n    x: Int\n    y: Int\n"
	file := mustParse(t, src)
	decl, ok := file.TopLevel[0].(ast.StructDecl)
	if !ok {
		t.Fatalf("expected StructDecl, got %T", file.TopLevel[0])
	}
	if len(decl.Fields) != 2 {
		t.Fatalf("expected 2 fields, got %d", len(decl.Fields))
	}
}

func TestParseEnumDuplicateVariant(t *testing.T) {
	bag := diag.NewBag()
	src := "enum Color:\n    Red\n    Red\n"
	lx := lexer.New(strings.NewReader(src), "test.ot", bag)
	p := New(lx, "test.ot", bag)
	if _, err := p.Parse(); err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	found := false
	for _, d := range bag.Diagnostics() {
		if d.Code == diag.DuplicateVariant {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a DuplicateVariant diagnostic")
	}
}

func TestParseMixedMatchArms(t *testing.T) {
	src := "def f(x: Int) -> Int:\n    match x:\n        case 0:\n            return 1\n        _ => 2\n"
	file := mustParse(t, src)
	fn := file.TopLevel[0].(ast.FuncDecl)
	stmt := fn.Body[0].(ast.ExprStmt)
	m := stmt.X.(ast.MatchExpr)
	if len(m.Arms) != 2 {
		t.Fatalf("expected 2 match arms, got %d", len(m.Arms))
	}
	if m.Arms[0].Body == nil {
		t.Errorf("first arm should be a block-form arm")
	}
	if m.Arms[1].Expr == nil {
		t.Errorf("second arm should be an expr-form arm")
	}
}

func TestParseIfElifElse(t *testing.T) {
	src := "def f(x: Int) -> Int:\n    if x == 0:\n        return 1\n    elif x == 1:\n        return 2\n    else:\n        return 3\n"
	file := mustParse(t, src)
	fn := file.TopLevel[0].(ast.FuncDecl)
	stmt := fn.Body[0].(ast.ExprStmt)
	ifx := stmt.X.(ast.IfExpr)
	if len(ifx.Elif) != 1 || ifx.Else == nil {
		t.Fatalf("unexpected if-expr shape: %+v", ifx)
	}
}

func TestParseFString(t *testing.T) {
	src := "def f(x: Int) -> String:\n    return f\"value={x}\"\n"
	file := mustParse(t, src)
	fn := file.TopLevel[0].(ast.FuncDecl)
	ret := fn.Body[0].(ast.ReturnStmt)
	lit := ret.Value.(ast.LitExpr).Literal.(ast.FStringLiteral)
	if len(lit.Parts) != 2 {
		t.Fatalf("expected 2 fstring parts, got %d", len(lit.Parts))
	}
}

func TestParseRecoversFromBadToken(t *testing.T) {
	bag := diag.NewBag()
	src := "def f() -> Int:\n    return )\n\ndef g() -> Int:\n    return 1\n"
	lx := lexer.New(strings.NewReader(src), "test.ot", bag)
	p := New(lx, "test.ot", bag)
	file, err := p.Parse()
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if !bag.HasErrors() {
		t.Fatalf("expected a diagnostic for the bad token")
	}
	if len(file.TopLevel) != 2 {
		t.Fatalf("expected the parser to recover and still see both funcs, got %d", len(file.TopLevel))
	}
}
