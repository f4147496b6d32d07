package resolver

import (
	"fmt"
	"testing"

	"github.com/otterlang/otterc/internal/ast"
	"github.com/otterlang/otterc/internal/diag"
)

func useDecl(path ...string) ast.UseDecl {
	return ast.UseDecl{Path: path}
}

func TestResolveLinearChain(t *testing.T) {
	files := map[string]*ast.File{
		"a": {Path: "a", TopLevel: []ast.TopLevel{useDecl("b")}},
		"b": {Path: "b", TopLevel: []ast.TopLevel{useDecl("c")}},
		"c": {Path: "c"},
	}
	bag := diag.NewBag()
	r := New(bag, func(path string) (*ast.File, error) {
		if f, ok := files[path]; ok {
			return f, nil
		}
		return nil, fmt.Errorf("no such module %q", path)
	})
	g := r.Resolve("a", files["a"])
	if bag.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", bag.Diagnostics())
	}
	if len(g.Order) != 3 || g.Order[len(g.Order)-1] != "a" {
		t.Fatalf("expected dependency-first order ending in a, got %v", g.Order)
	}
	if g.Order[0] != "c" {
		t.Fatalf("expected c to resolve first (leaf dependency), got %v", g.Order)
	}
}

func TestResolveDetectsCycle(t *testing.T) {
	files := map[string]*ast.File{
		"a": {Path: "a", TopLevel: []ast.TopLevel{useDecl("b")}},
		"b": {Path: "b", TopLevel: []ast.TopLevel{useDecl("a")}},
	}
	bag := diag.NewBag()
	r := New(bag, func(path string) (*ast.File, error) {
		return files[path], nil
	})
	r.Resolve("a", files["a"])
	found := false
	for _, d := range bag.Diagnostics() {
		if d.Code == diag.CyclicImport {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a CyclicImport diagnostic, got %v", bag.Diagnostics())
	}
}

func pubUseDecl(path ...string) ast.UseDecl {
	return ast.UseDecl{Path: path, Public: true}
}

func TestExportsIncludePublicDecls(t *testing.T) {
	files := map[string]*ast.File{
		"math": {Path: "math", TopLevel: []ast.TopLevel{
			ast.FuncDecl{Name: ast.Ident{Name: "sqrt"}, Public: true},
			ast.FuncDecl{Name: ast.Ident{Name: "helper"}, Public: false},
		}},
	}
	bag := diag.NewBag()
	r := New(bag, func(path string) (*ast.File, error) { return files[path], nil })
	g := r.Resolve("math", files["math"])
	if bag.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", bag.Diagnostics())
	}
	exports := g.Exports["math"]
	if _, ok := exports["sqrt"]; !ok {
		t.Fatalf("expected sqrt to be exported, got %v", exports)
	}
	if _, ok := exports["helper"]; ok {
		t.Fatalf("did not expect a non-pub decl to be exported, got %v", exports)
	}
}

func TestPubUseWholeModuleReExports(t *testing.T) {
	files := map[string]*ast.File{
		"math": {Path: "math", TopLevel: []ast.TopLevel{
			ast.FuncDecl{Name: ast.Ident{Name: "sqrt"}, Public: true},
		}},
		"core": {Path: "core", TopLevel: []ast.TopLevel{pubUseDecl("math")}},
	}
	bag := diag.NewBag()
	r := New(bag, func(path string) (*ast.File, error) { return files[path], nil })
	g := r.Resolve("core", files["core"])
	if bag.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", bag.Diagnostics())
	}
	exp, ok := g.Exports["core"]["sqrt"]
	if !ok {
		t.Fatalf("expected core to re-export sqrt, got %v", g.Exports["core"])
	}
	if exp.Module != "math" {
		t.Fatalf("expected the re-exported symbol's Module to point at math, got %q", exp.Module)
	}
}

func TestPubUseSingleSymbolWithAlias(t *testing.T) {
	files := map[string]*ast.File{
		"math": {Path: "math", TopLevel: []ast.TopLevel{
			ast.FuncDecl{Name: ast.Ident{Name: "sqrt"}, Public: true},
		}},
		"core": {Path: "core", TopLevel: []ast.TopLevel{
			ast.UseDecl{Path: []string{"math", "sqrt"}, Alias: ast.Ident{Name: "root"}, Public: true},
		}},
	}
	bag := diag.NewBag()
	r := New(bag, func(path string) (*ast.File, error) { return files[path], nil })
	g := r.Resolve("core", files["core"])
	if bag.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", bag.Diagnostics())
	}
	if _, ok := g.Exports["core"]["sqrt"]; ok {
		t.Fatalf("did not expect the unaliased name to be exported, got %v", g.Exports["core"])
	}
	exp, ok := g.Exports["core"]["root"]
	if !ok {
		t.Fatalf("expected core to export sqrt as root, got %v", g.Exports["core"])
	}
	if exp.Module != "math" || exp.Name != "sqrt" {
		t.Fatalf("expected the aliased export to point at math.sqrt, got %+v", exp)
	}
	bindings := g.LocalBindings("core")
	if b, ok := bindings["root"]; !ok || b.Symbol.Module != "math" {
		t.Fatalf("expected core to also bind root locally, got %v", bindings)
	}
}

func TestResolveReportsMissingImport(t *testing.T) {
	entry := &ast.File{Path: "a", TopLevel: []ast.TopLevel{useDecl("missing")}}
	bag := diag.NewBag()
	r := New(bag, func(path string) (*ast.File, error) {
		return nil, fmt.Errorf("not found")
	})
	r.Resolve("a", entry)
	found := false
	for _, d := range bag.Diagnostics() {
		if d.Code == diag.UnresolvedImport {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected an UnresolvedImport diagnostic, got %v", bag.Diagnostics())
	}
}
