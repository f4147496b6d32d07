// Package pipeline drives the lex -> parse -> resolve -> analyze ->
// emit stages in order, generalizing the teacher's inline build
// command sequence (main.go) into a reusable, independently testable
// type that owns the shared diagnostic bag and stage timer.
package pipeline

import (
	"fmt"
	"io"

	"github.com/llir/llvm/ir"

	"github.com/otterlang/otterc/internal/config"
	"github.com/otterlang/otterc/internal/diag"
	"github.com/otterlang/otterc/internal/irgen"
	"github.com/otterlang/otterc/internal/lexer"
	"github.com/otterlang/otterc/internal/metrics"
	"github.com/otterlang/otterc/internal/parser"
	"github.com/otterlang/otterc/internal/resolver"
	"github.com/otterlang/otterc/internal/sema"
)

type Result struct {
	Module    *ir.Module
	Diags     *diag.Bag
	TimingLog string
}

// Compile runs the full pipeline over one source file with no
// cross-module imports, matching spec §2's per-stage sequencing. A
// caller building a whole workspace uses CompileWorkspace instead.
func Compile(src io.Reader, filename string, opts config.CodegenOptions) (*Result, error) {
	bag := diag.NewBag()
	timer := metrics.NewStageTimer()

	timer.Start("lex")
	lx := lexer.New(src, filename, bag)
	timer.Stop("lex")

	timer.Start("parse")
	p := parser.New(lx, filename, bag)
	file, err := p.Parse()
	timer.Stop("parse")
	if err != nil {
		return &Result{Diags: bag, TimingLog: timer.Summary()}, fmt.Errorf("parse: %w", err)
	}

	timer.Start("analyze")
	analyzer := sema.New(bag)
	mod := analyzer.Analyze(file)
	timer.Stop("analyze")

	if bag.HasErrors() {
		return &Result{Diags: bag, TimingLog: timer.Summary()}, fmt.Errorf("%d diagnostics reported", bag.Len())
	}

	timer.Start("emit")
	m, err := irgen.Emit(file, mod, opts)
	timer.Stop("emit")
	if err != nil {
		return &Result{Diags: bag, TimingLog: timer.Summary()}, fmt.Errorf("emit: %w", err)
	}

	return &Result{Module: m, Diags: bag, TimingLog: timer.Summary()}, nil
}

// WorkspaceResult is Result generalized to every module the resolver
// reached starting from the entry module.
type WorkspaceResult struct {
	Modules   map[string]*ir.Module
	Diags     *diag.Bag
	TimingLog string
}

// CompileWorkspace runs lex -> parse -> resolve -> analyze -> emit over
// an entire import graph, in resolver.Graph's dependency-first order
// (spec §4.3): each module is analyzed with sema.NewWithImports, fed
// the cross-module names its own use/pub use decls bind
// (resolver.Graph.LocalBindings), resolved against whichever
// dependency modules were already analyzed earlier in that order. load
// resolves an import path to its source the way the caller's manifest
// or filesystem layout dictates; entryPath names the module entrySrc
// belongs to.
func CompileWorkspace(entryPath string, entrySrc io.Reader, load resolver.Loader, opts config.CodegenOptions) (*WorkspaceResult, error) {
	bag := diag.NewBag()
	timer := metrics.NewStageTimer()

	timer.Start("lex")
	lx := lexer.New(entrySrc, entryPath, bag)
	timer.Stop("lex")

	timer.Start("parse")
	p := parser.New(lx, entryPath, bag)
	entryFile, err := p.Parse()
	timer.Stop("parse")
	if err != nil {
		return &WorkspaceResult{Diags: bag, TimingLog: timer.Summary()}, fmt.Errorf("parse: %w", err)
	}

	timer.Start("resolve")
	graph := resolver.New(bag, load).Resolve(entryPath, entryFile)
	timer.Stop("resolve")
	if bag.HasErrors() {
		return &WorkspaceResult{Diags: bag, TimingLog: timer.Summary()}, fmt.Errorf("%d diagnostics reported", bag.Len())
	}

	timer.Start("analyze")
	analyzed := make(map[string]*sema.Module, len(graph.Order))
	for _, path := range graph.Order {
		analyzed[path] = sema.NewWithImports(bag, moduleImports(graph, analyzed, path)).Analyze(graph.Modules[path])
	}
	timer.Stop("analyze")
	if bag.HasErrors() {
		return &WorkspaceResult{Diags: bag, TimingLog: timer.Summary()}, fmt.Errorf("%d diagnostics reported", bag.Len())
	}

	timer.Start("emit")
	modules := make(map[string]*ir.Module, len(graph.Order))
	for _, path := range graph.Order {
		m, err := irgen.EmitWithImports(graph.Modules[path], analyzed[path], moduleImports(graph, analyzed, path), opts)
		if err != nil {
			return &WorkspaceResult{Diags: bag, TimingLog: timer.Summary()}, fmt.Errorf("emit %s: %w", path, err)
		}
		modules[path] = m
	}
	timer.Stop("emit")

	return &WorkspaceResult{Modules: modules, Diags: bag, TimingLog: timer.Summary()}, nil
}

// moduleImports turns path's resolver-level bindings into the
// sema.Import map NewWithImports expects, resolved against whatever
// dependency modules analyze has already processed (guaranteed to
// cover every dependency, since graph.Order is dependency-first).
// Only function symbols are resolvable as a bare imported name today:
// a single-symbol re-export of a struct or enum type would need a
// type-namespace import this analyzer doesn't have yet, so it's
// silently skipped rather than given a bogus SymbolType.
func moduleImports(graph *resolver.Graph, analyzed map[string]*sema.Module, path string) map[string]sema.Import {
	bindings := graph.LocalBindings(path)
	if len(bindings) == 0 {
		return nil
	}
	imports := make(map[string]sema.Import, len(bindings))
	for name, binding := range bindings {
		if binding.ModulePath != "" {
			if dep, ok := analyzed[binding.ModulePath]; ok {
				imports[name] = sema.Import{Module: dep}
			}
			continue
		}
		dep, ok := analyzed[binding.Symbol.Module]
		if !ok {
			continue
		}
		if fn, ok := dep.Funcs[binding.Symbol.Name]; ok {
			imports[name] = sema.Import{SymbolType: fn.Type}
		}
	}
	return imports
}
