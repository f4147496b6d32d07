// Package resolver builds the import graph across an OtterLang
// workspace's modules, detecting cycles and missing imports before
// type analysis runs. tawago has no multi-file notion to ground this
// traversal on (DESIGN.md); the graph-walk shape below is ordinary Go.
package resolver

import (
	"fmt"

	"github.com/otterlang/otterc/internal/ast"
	"github.com/otterlang/otterc/internal/diag"
)

// Loader reads the source for an import path (a relative file path or
// package-qualified path resolved by the caller), returning the
// parsed file for that module.
type Loader func(path string) (*ast.File, error)

// Export names a symbol visible outside the module that declares it,
// either directly (a `pub` top-level decl) or transitively (reached
// through a `pub use` chain). Module/Name always point at the module
// that actually defines the symbol, not at an intermediate re-exporter.
type Export struct {
	Module string
	Name   string
}

// Binding is a name a module's `use`/`pub use` decls bring into its
// own scope: either a qualified handle onto a whole module (`use M`,
// accessed as `M.member`) or a single symbol pulled in directly
// (`pub use M.n [as k]`, accessed as `n`/`k`).
type Binding struct {
	ModulePath string // non-empty: the name is a qualified handle onto this module
	Symbol     Export // used when ModulePath == ""
}

type Graph struct {
	Modules map[string]*ast.File
	Order   []string // dependency-first topological order

	// Exports holds, per module path, every name visible to a `pub
	// use` of that module: the module's own `pub` top-level decls plus
	// whatever it re-exports (spec §4.3). Populated by Resolve.
	Exports map[string]map[string]Export
}

// LocalBindings returns the names module path's own `use`/`pub use`
// decls bind into its scope. Unlike Exports (what the module publishes
// outward), this is what the module can reference internally.
func (g *Graph) LocalBindings(path string) map[string]Binding {
	out := map[string]Binding{}
	file, ok := g.Modules[path]
	if !ok {
		return out
	}
	for _, top := range file.TopLevel {
		use, ok := top.(ast.UseDecl)
		if !ok {
			continue
		}
		full := modulePath(use.Path)
		if _, isModule := g.Exports[full]; isModule {
			name := use.Path[len(use.Path)-1]
			if use.Alias.Name != "" {
				name = use.Alias.Name
			}
			out[name] = Binding{ModulePath: full}
			continue
		}
		if len(use.Path) < 2 {
			continue // unresolved module path; already diagnosed in Resolve
		}
		modPart := modulePath(use.Path[:len(use.Path)-1])
		symName := use.Path[len(use.Path)-1]
		exp, ok := g.Exports[modPart][symName]
		if !ok {
			continue // unresolved symbol; already diagnosed in Resolve
		}
		name := symName
		if use.Alias.Name != "" {
			name = use.Alias.Name
		}
		out[name] = Binding{Symbol: exp}
	}
	return out
}

type Resolver struct {
	diags  *diag.Bag
	load   Loader
	loaded map[string]*ast.File
}

func New(diags *diag.Bag, load Loader) *Resolver {
	return &Resolver{diags: diags, load: load, loaded: make(map[string]*ast.File)}
}

// Resolve walks the import graph starting at entry, returning modules
// in dependency-first order suitable for sequential type analysis and
// codegen, with every module's re-exported public namespace resolved
// (spec §4.3). A cycle among plain `use` edges is fatal; since every
// `pub use` edge is also a `use` edge, a re-export cycle is caught by
// the same check.
func (r *Resolver) Resolve(entryPath string, entry *ast.File) *Graph {
	r.loaded[entryPath] = entry
	visiting := map[string]bool{}
	visited := map[string]bool{}
	var order []string

	var visit func(path string, file *ast.File)
	visit = func(path string, file *ast.File) {
		if visited[path] {
			return
		}
		if visiting[path] {
			r.diags.Add(diag.Diagnostic{Stage: diag.Resolve, Code: diag.CyclicImport,
				Message: fmt.Sprintf("import cycle detected at module %q", path)})
			return
		}
		visiting[path] = true

		for _, top := range file.TopLevel {
			use, ok := top.(ast.UseDecl)
			if !ok {
				continue
			}
			depPath := modulePath(use.Path)
			dep, ok := r.loaded[depPath]
			if !ok {
				loaded, err := r.load(depPath)
				if err != nil || loaded == nil {
					// `pub use M.n` names a symbol within a shorter
					// module path; only report an unresolved import
					// once the shorter prefix also fails to load.
					// Plain `use` has no trailing-symbol form, so it
					// never gets this second attempt.
					if !use.Public || len(use.Path) < 2 {
						r.diags.Add(diag.Diagnostic{Stage: diag.Resolve, Code: diag.UnresolvedImport,
							Span: use.Span, Message: fmt.Sprintf("cannot resolve import %q: %v", depPath, err)})
						continue
					}
					modPart := modulePath(use.Path[:len(use.Path)-1])
					modDep, ok := r.loaded[modPart]
					if !ok {
						loaded2, err2 := r.load(modPart)
						if err2 != nil || loaded2 == nil {
							r.diags.Add(diag.Diagnostic{Stage: diag.Resolve, Code: diag.UnresolvedImport,
								Span: use.Span, Message: fmt.Sprintf("cannot resolve import %q: %v", depPath, err)})
							continue
						}
						modDep = loaded2
						r.loaded[modPart] = modDep
					}
					visit(modPart, modDep)
					continue
				}
				dep = loaded
				r.loaded[depPath] = dep
			}
			visit(depPath, dep)
		}

		visiting[path] = false
		visited[path] = true
		order = append(order, path)
	}

	visit(entryPath, entry)

	g := &Graph{Modules: r.loaded, Order: order}
	r.buildExports(g)
	return g
}

// buildExports computes each module's published namespace in
// dependency-first order, so that by the time a re-exporter is
// processed, every module it re-exports from already has its own
// Exports entry populated.
func (r *Resolver) buildExports(g *Graph) {
	g.Exports = make(map[string]map[string]Export, len(g.Order))
	for _, path := range g.Order {
		file := g.Modules[path]
		exports := make(map[string]Export)
		for _, top := range file.TopLevel {
			if name, public := publicName(top); public {
				exports[name] = Export{Module: path, Name: name}
			}
		}
		for _, top := range file.TopLevel {
			use, ok := top.(ast.UseDecl)
			if !ok || !use.Public {
				continue
			}
			r.applyReExport(g, use, exports)
		}
		g.Exports[path] = exports
	}
}

func (r *Resolver) applyReExport(g *Graph, use ast.UseDecl, exports map[string]Export) {
	full := modulePath(use.Path)
	if depExports, ok := g.Exports[full]; ok {
		// `pub use M`: every public name of M, under its own name.
		for name, exp := range depExports {
			exports[name] = exp
		}
		return
	}
	if len(use.Path) < 2 {
		r.diags.Add(diag.Diagnostic{Stage: diag.Resolve, Code: diag.UnresolvedImport,
			Span: use.Span, Message: fmt.Sprintf("cannot resolve re-export %q", full)})
		return
	}
	// `pub use M.n [as k]`.
	modPart := modulePath(use.Path[:len(use.Path)-1])
	symName := use.Path[len(use.Path)-1]
	depExports, ok := g.Exports[modPart]
	if !ok {
		r.diags.Add(diag.Diagnostic{Stage: diag.Resolve, Code: diag.UnresolvedImport,
			Span: use.Span, Message: fmt.Sprintf("cannot resolve re-export %q", full)})
		return
	}
	exp, ok := depExports[symName]
	if !ok {
		r.diags.Add(diag.Diagnostic{Stage: diag.Resolve, Code: diag.UnknownSymbol,
			Span: use.Span, Message: fmt.Sprintf("module %q has no public symbol %q", modPart, symName)})
		return
	}
	name := symName
	if use.Alias.Name != "" {
		name = use.Alias.Name
	}
	exports[name] = exp
}

func publicName(top ast.TopLevel) (string, bool) {
	switch d := top.(type) {
	case ast.FuncDecl:
		return d.Name.Name, d.Public
	case ast.StructDecl:
		return d.Name.Name, d.Public
	case ast.EnumDecl:
		return d.Name.Name, d.Public
	case ast.TraitDecl:
		return d.Name.Name, d.Public
	default:
		return "", false
	}
}

func modulePath(parts []string) string {
	out := ""
	for i, p := range parts {
		if i > 0 {
			out += "."
		}
		out += p
	}
	return out
}
