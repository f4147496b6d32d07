package pipeline

import (
	"fmt"
	"strings"
	"testing"

	"github.com/otterlang/otterc/internal/ast"
	"github.com/otterlang/otterc/internal/config"
	"github.com/otterlang/otterc/internal/diag"
	"github.com/otterlang/otterc/internal/lexer"
	"github.com/otterlang/otterc/internal/parser"
)

func TestCompileSimpleModule(t *testing.T) {
	src := "def add(a: Int, b: Int) -> Int:\n    return a + b\n"
	result, err := Compile(strings.NewReader(src), "test.ot", config.CodegenOptions{Target: config.Native()})
	if err != nil {
		t.Fatalf("Compile() error: %v (diags: %v)", err, result.Diags.Diagnostics())
	}
	if result.Module == nil {
		t.Fatalf("expected a non-nil module")
	}
	if !strings.Contains(result.Module.String(), "@add") {
		t.Errorf("expected the emitted IR to define add, got:\n%s", result.Module.String())
	}
	if result.TimingLog == "" {
		t.Errorf("expected a non-empty timing log")
	}
}

func TestCompileStopsAtTypeErrors(t *testing.T) {
	src := "def f() -> Int:\n    return \"not an int\"\n"
	result, err := Compile(strings.NewReader(src), "test.ot", config.CodegenOptions{Target: config.Native()})
	if err == nil {
		t.Fatalf("expected Compile to fail on a type mismatch")
	}
	if result.Module != nil {
		t.Errorf("expected no module to be emitted when analysis reports errors")
	}
	if !result.Diags.HasErrors() {
		t.Errorf("expected diagnostics to be populated")
	}
}

func TestCompileStopsAtParseErrors(t *testing.T) {
	src := "def f(\n"
	_, err := Compile(strings.NewReader(src), "test.ot", config.CodegenOptions{Target: config.Native()})
	if err == nil {
		t.Fatalf("expected Compile to fail on malformed source")
	}
}

func TestCompileWorkspaceResolvesQualifiedImport(t *testing.T) {
	modules := map[string]string{
		"math": "pub def square(n: Int) -> Int:\n    return n * n\n",
	}
	load := func(path string) (*ast.File, error) {
		src, ok := modules[path]
		if !ok {
			return nil, fmt.Errorf("unknown module %q", path)
		}
		bag := diag.NewBag()
		lx := lexer.New(strings.NewReader(src), path+".ot", bag)
		return parser.New(lx, path+".ot", bag).Parse()
	}

	entry := "use math\n\ndef main() -> Unit:\n    println(str(math.square(3)))\n"
	result, err := CompileWorkspace("main", strings.NewReader(entry), load, config.CodegenOptions{Target: config.Native()})
	if err != nil {
		t.Fatalf("CompileWorkspace() error: %v (diags: %v)", err, result.Diags.Diagnostics())
	}
	if result.Modules["main"] == nil || result.Modules["math"] == nil {
		t.Fatalf("expected both main and math to be emitted, got %v", result.Modules)
	}
	if !strings.Contains(result.Modules["math"].String(), "@square") {
		t.Errorf("expected math module IR to define square, got:\n%s", result.Modules["math"].String())
	}
}

func TestCompileWorkspaceReExportsTransitively(t *testing.T) {
	modules := map[string]string{
		"util": "pub def double(n: Int) -> Int:\n    return n * 2\n",
		"lib":  "pub use util.double\n",
	}
	load := func(path string) (*ast.File, error) {
		src, ok := modules[path]
		if !ok {
			return nil, fmt.Errorf("unknown module %q", path)
		}
		bag := diag.NewBag()
		lx := lexer.New(strings.NewReader(src), path+".ot", bag)
		return parser.New(lx, path+".ot", bag).Parse()
	}

	entry := "pub use lib.double\n\ndef main() -> Unit:\n    println(str(double(3)))\n"
	result, err := CompileWorkspace("main", strings.NewReader(entry), load, config.CodegenOptions{Target: config.Native()})
	if err != nil {
		t.Fatalf("CompileWorkspace() error: %v (diags: %v)", err, result.Diags.Diagnostics())
	}
	if result.Modules["main"] == nil {
		t.Fatalf("expected main to be emitted")
	}
}
