package sema

import (
	"strings"
	"testing"

	"github.com/otterlang/otterc/internal/diag"
	"github.com/otterlang/otterc/internal/lexer"
	"github.com/otterlang/otterc/internal/parser"
	"github.com/otterlang/otterc/internal/types"
)

func analyze(t *testing.T, src string) (*Module, *diag.Bag) {
	t.Helper()
	bag := diag.NewBag()
	lx := lexer.New(strings.NewReader(src), "test.ot", bag)
	p := parser.New(lx, "test.ot", bag)
	file, err := p.Parse()
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	mod := New(bag).Analyze(file)
	return mod, bag
}

func TestAnalyzeSimpleFunc(t *testing.T) {
	mod, bag := analyze(t, "def add(a: Int, b: Int) -> Int:\n    return a + b\n")
	if bag.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", bag.Diagnostics())
	}
	fn, ok := mod.Funcs["add"]
	if !ok {
		t.Fatalf("expected function add to be registered")
	}
	if len(fn.Type.Params) != 2 {
		t.Fatalf("expected 2 params, got %d", len(fn.Type.Params))
	}
}

func TestAnalyzeReturnTypeMismatch(t *testing.T) {
	_, bag := analyze(t, "def f() -> Int:\n    return \"oops\"\n")
	if !bag.HasErrors() {
		t.Fatalf("expected a type mismatch diagnostic")
	}
	found := false
	for _, d := range bag.Diagnostics() {
		if d.Code == diag.TypeMismatch {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected diag.TypeMismatch, got %v", bag.Diagnostics())
	}
}

func TestAnalyzeUnknownIdentifier(t *testing.T) {
	_, bag := analyze(t, "def f() -> Int:\n    return doesNotExist\n")
	found := false
	for _, d := range bag.Diagnostics() {
		if d.Code == diag.UnknownSymbol {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected diag.UnknownSymbol, got %v", bag.Diagnostics())
	}
}

func TestAnalyzeBreakOutsideLoop(t *testing.T) {
	_, bag := analyze(t, "def f() -> Unit:\n    break\n")
	if !bag.HasErrors() {
		t.Fatalf("expected a diagnostic for break outside a loop")
	}
}

func TestAnalyzeMatchExhaustiveness(t *testing.T) {
	src := "enum Color:\n    Red\n    Green\n    Blue\n\n" +
		"def f(c: Color) -> Int:\n    match c:\n        case Color.Red:\n            return 1\n        case Color.Green:\n            return 2\n    return 0\n"
	_, bag := analyze(t, src)
	found := false
	for _, d := range bag.Diagnostics() {
		if d.Code == diag.NotExhaustive {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected diag.NotExhaustive for missing Blue variant, got %v", bag.Diagnostics())
	}
}

func TestAnalyzeMatchExhaustiveWithCatchAll(t *testing.T) {
	src := "enum Color:\n    Red\n    Green\n    Blue\n\n" +
		"def f(c: Color) -> Int:\n    match c:\n        case Color.Red:\n            return 1\n        _ => 0\n"
	_, bag := analyze(t, src)
	for _, d := range bag.Diagnostics() {
		if d.Code == diag.NotExhaustive {
			t.Fatalf("did not expect NotExhaustive when a catch-all arm is present")
		}
	}
}

func TestAnalyzePrintlnBuiltinAcceptsAnyArgument(t *testing.T) {
	_, bag := analyze(t, "def main() -> Unit:\n    println(\"hello\")\n    println(1)\n")
	if bag.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", bag.Diagnostics())
	}
}

func TestAnalyzeStrBuiltinReturnsString(t *testing.T) {
	mod, bag := analyze(t, "def f() -> String:\n    return str(1)\n")
	if bag.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", bag.Diagnostics())
	}
	if _, ok := mod.Funcs["f"]; !ok {
		t.Fatalf("expected function f to be registered")
	}
}

func TestAnalyzeUserFuncShadowsBuiltin(t *testing.T) {
	src := "def print(x: Int) -> Int:\n    return x\n\n" +
		"def main() -> Unit:\n    print(1)\n"
	_, bag := analyze(t, src)
	if bag.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", bag.Diagnostics())
	}
}

func TestAnalyzeEnumVariantConstruct(t *testing.T) {
	src := "enum Option:\n    None\n    Some(value: Int)\n\n" +
		"def f() -> Option:\n    return Option.Some(42)\n"
	mod, bag := analyze(t, src)
	if bag.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", bag.Diagnostics())
	}
	if _, ok := mod.Funcs["f"]; !ok {
		t.Fatalf("expected function f to be registered")
	}
}

func TestAnalyzeEnumVariantWrongArity(t *testing.T) {
	src := "enum Option:\n    None\n    Some(value: Int)\n\n" +
		"def f() -> Option:\n    return Option.Some(1, 2)\n"
	_, bag := analyze(t, src)
	found := false
	for _, d := range bag.Diagnostics() {
		if d.Code == diag.TypeMismatch {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected diag.TypeMismatch for wrong variant arity, got %v", bag.Diagnostics())
	}
}

func TestAnalyzeUnitVariantAccess(t *testing.T) {
	src := "enum Option:\n    None\n    Some(value: Int)\n\n" +
		"def f() -> Option:\n    return Option.None\n"
	_, bag := analyze(t, src)
	if bag.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", bag.Diagnostics())
	}
}

func TestAnalyzeQualifiedModuleMemberAccess(t *testing.T) {
	mathMod := &Module{Funcs: map[string]*Func{
		"sqrt": {Type: types.Func{Params: []types.Type{types.I64}, Returns: types.I64}},
	}, Structs: map[string]types.Struct{}, Enums: map[string]types.Enum{}}

	src := "use math\n\ndef f() -> Int:\n    return math.sqrt(4)\n"
	bag := diag.NewBag()
	lx := lexer.New(strings.NewReader(src), "test.ot", bag)
	p := parser.New(lx, "test.ot", bag)
	file, err := p.Parse()
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	a := NewWithImports(bag, map[string]Import{"math": {Module: mathMod}})
	a.Analyze(file)
	if bag.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", bag.Diagnostics())
	}
}
