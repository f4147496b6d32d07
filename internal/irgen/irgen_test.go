package irgen

import (
	"strings"
	"testing"

	"github.com/otterlang/otterc/internal/config"
	"github.com/otterlang/otterc/internal/diag"
	"github.com/otterlang/otterc/internal/lexer"
	"github.com/otterlang/otterc/internal/parser"
	"github.com/otterlang/otterc/internal/sema"
)

func emitSrc(t *testing.T, src string) string {
	t.Helper()
	bag := diag.NewBag()
	lx := lexer.New(strings.NewReader(src), "test.ot", bag)
	p := parser.New(lx, "test.ot", bag)
	file, err := p.Parse()
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	mod := sema.New(bag).Analyze(file)
	if bag.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", bag.Diagnostics())
	}
	m, err := Emit(file, mod, config.CodegenOptions{Target: config.Native()})
	if err != nil {
		t.Fatalf("Emit() error: %v", err)
	}
	return m.String()
}

func TestEmitSimpleFunction(t *testing.T) {
	ir := emitSrc(t, "def add(a: Int, b: Int) -> Int:\n    return a + b\n")
	if !strings.Contains(ir, "define i64 @add") {
		t.Errorf("expected an add function definition, got:\n%s", ir)
	}
	if !strings.Contains(ir, "add") {
		t.Errorf("expected an add instruction in:\n%s", ir)
	}
}

func TestEmitStructLitAndField(t *testing.T) {
	src := "struct Point:\n    x: Int\n    y: Int\n\n" +
		"def getX(p: Point) -> Int:\n    return p.x\n"
	ir := emitSrc(t, src)
	if !strings.Contains(ir, "getelementptr") {
		t.Errorf("expected field access to lower to a getelementptr, got:\n%s", ir)
	}
}

func TestEmitMainWiresEntryTrampoline(t *testing.T) {
	ir := emitSrc(t, "def main() -> Unit:\n    pass\n")
	if !strings.Contains(ir, "_otter_main") {
		t.Errorf("expected an _otter_main entry trampoline, got:\n%s", ir)
	}
	if !strings.Contains(ir, "otter_error_push_context") {
		t.Errorf("expected the entry trampoline to push an exception context, got:\n%s", ir)
	}
}

func TestEmitWhileLoop(t *testing.T) {
	src := "def countdown(n: Int) -> Unit:\n    while n > 0:\n        n = n - 1\n"
	ir := emitSrc(t, src)
	if !strings.Contains(ir, "while.head") {
		t.Errorf("expected while-loop blocks in:\n%s", ir)
	}
}

func TestEmitMatchOnVariantBindsPayload(t *testing.T) {
	src := "enum Option:\n    None\n    Some(value: Int)\n\n" +
		"def unwrap(o: Option) -> Int:\n    match o:\n        case Option.Some(v):\n            return v\n        case Option.None:\n            return 0\n"
	ir := emitSrc(t, src)
	if !strings.Contains(ir, "otter_enum_get_tag") {
		t.Errorf("expected a tag test against the boxed enum table, got:\n%s", ir)
	}
	if !strings.Contains(ir, "otter_enum_get_i64") {
		t.Errorf("expected the Some payload to be unboxed via enum_get_i64, got:\n%s", ir)
	}
	if !strings.Contains(ir, "match.merge") {
		t.Errorf("expected match-arm blocks to join at a merge block, got:\n%s", ir)
	}
}

func TestEmitMatchOnStructPattern(t *testing.T) {
	// The subject is a struct literal (an alloca'd pointer), not a
	// loaded local, since match subjects go through fieldPtr-style
	// pointer GEPs in testStructPattern.
	src := "struct Point:\n    x: Int\n    y: Int\n\n" +
		"def isOrigin() -> Bool:\n    match Point{x: 0, y: 0}:\n        case Point{x: 0, y: 0}:\n            return true\n        _ => false\n"
	ir := emitSrc(t, src)
	if !strings.Contains(ir, "getelementptr") {
		t.Errorf("expected struct-pattern field tests to lower to getelementptr, got:\n%s", ir)
	}
}

func TestEmitPrintlnCallsRuntimeFormatting(t *testing.T) {
	src := "def main() -> Unit:\n    println(\"hi\")\n"
	ir := emitSrc(t, src)
	if !strings.Contains(ir, "otter_std_fmt_println") {
		t.Errorf("expected println to lower to otter_std_fmt_println, got:\n%s", ir)
	}
}

func TestEmitStrBuiltinFormatsInt(t *testing.T) {
	src := "def f(n: Int) -> String:\n    return str(n)\n"
	ir := emitSrc(t, src)
	if !strings.Contains(ir, "otter_std_fmt_int") {
		t.Errorf("expected str(n) on an Int to call otter_std_fmt_int, got:\n%s", ir)
	}
}

func TestEmitFStringUsesStrConcat(t *testing.T) {
	src := "def greet(name: String) -> String:\n    return f\"hello {name}\"\n"
	ir := emitSrc(t, src)
	if !strings.Contains(ir, "otter_str_concat") {
		t.Errorf("expected f-string interpolation to fold through otter_str_concat, got:\n%s", ir)
	}
}

func TestEmitEnumVariantConstructBoxesPayload(t *testing.T) {
	src := "enum Option:\n    None\n    Some(value: Int)\n\n" +
		"def some(n: Int) -> Option:\n    return Option.Some(n)\n"
	ir := emitSrc(t, src)
	if !strings.Contains(ir, "otter_enum_create") {
		t.Errorf("expected Option.Some(n) to call otter_enum_create, got:\n%s", ir)
	}
	if !strings.Contains(ir, "otter_enum_set_i64") {
		t.Errorf("expected the Int payload to be boxed via otter_enum_set_i64, got:\n%s", ir)
	}
}

func TestEmitEnumUnitVariantAccess(t *testing.T) {
	src := "enum Option:\n    None\n    Some(value: Int)\n\n" +
		"def none() -> Option:\n    return Option.None\n"
	ir := emitSrc(t, src)
	if !strings.Contains(ir, "otter_enum_create") {
		t.Errorf("expected Option.None to call otter_enum_create, got:\n%s", ir)
	}
}
