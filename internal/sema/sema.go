// Package sema implements OtterLang's type/name analyzer (module
// resolution lives in internal/resolver): it builds the symbol table, infers and checks expression
// types, and checks match exhaustiveness, writing diagnostics into a
// shared diag.Bag rather than panicking on a user-level type error.
package sema

import (
	"github.com/otterlang/otterc/internal/ast"
	"github.com/otterlang/otterc/internal/diag"
	"github.com/otterlang/otterc/internal/token"
	"github.com/otterlang/otterc/internal/types"
)

// Scope is a lexical binding environment, chained to its parent.
type Scope struct {
	parent *Scope
	vars   map[string]types.Type
}

func newScope(parent *Scope) *Scope {
	return &Scope{parent: parent, vars: make(map[string]types.Type)}
}

func (s *Scope) define(name string, t types.Type) { s.vars[name] = t }

func (s *Scope) lookup(name string) (types.Type, bool) {
	for cur := s; cur != nil; cur = cur.parent {
		if t, ok := cur.vars[name]; ok {
			return t, true
		}
	}
	return nil, false
}

// Module is the resolved, type-checked output for one source file.
type Module struct {
	Funcs   map[string]*Func
	Structs map[string]types.Struct
	Enums   map[string]types.Enum
}

type Func struct {
	Decl   ast.FuncDecl
	Type   types.Func
}

// Import is a name a module's `use`/`pub use` decls bring into scope,
// resolved against an already-analyzed dependency module (see
// internal/resolver.Graph.LocalBindings). Exactly one of Module or
// SymbolType is set: Module for a qualified handle (`use M`, accessed
// as `M.member`), SymbolType for a single re-exported name pulled in
// directly (`pub use M.n [as k]`).
type Import struct {
	Module     *Module
	SymbolType types.Type
}

type Analyzer struct {
	diags     *diag.Bag
	module    *Module
	imports   map[string]Import
	loopDepth int
}

func New(diags *diag.Bag) *Analyzer {
	return NewWithImports(diags, nil)
}

// NewWithImports is New, additionally seeding the analyzer with the
// cross-module names resolved by internal/resolver for this module
// (spec §4.3); callers analyzing a single free-standing file pass nil.
func NewWithImports(diags *diag.Bag, imports map[string]Import) *Analyzer {
	return &Analyzer{
		diags:   diags,
		imports: imports,
		module: &Module{
			Funcs:   make(map[string]*Func),
			Structs: make(map[string]types.Struct),
			Enums:   make(map[string]types.Enum),
		},
	}
}

func (a *Analyzer) errorf(code diag.Code, span token.Span, format string, args ...any) {
	a.diags.Errorf(diag.Type, code, span, format, args...)
}

// Analyze resolves top-level declarations then type-checks every
// function body, returning the resolved module even when diagnostics
// were reported, so the caller can decide whether to keep emitting.
func (a *Analyzer) Analyze(file *ast.File) *Module {
	a.collectDecls(file)
	for _, top := range file.TopLevel {
		if fn, ok := top.(ast.FuncDecl); ok {
			a.checkFunc(fn)
		}
	}
	return a.module
}

func (a *Analyzer) collectDecls(file *ast.File) {
	for _, top := range file.TopLevel {
		switch d := top.(type) {
		case ast.StructDecl:
			a.module.Structs[d.Name.Name] = structType(d)
		case ast.EnumDecl:
			a.module.Enums[d.Name.Name] = enumType(d)
		}
	}
	for _, top := range file.TopLevel {
		if d, ok := top.(ast.FuncDecl); ok {
			ft := a.resolveFuncType(d)
			a.module.Funcs[d.Name.Name] = &Func{Decl: d, Type: ft}
		}
	}
}

func structType(d ast.StructDecl) types.Struct {
	st := types.Struct{Name: d.Name.Name}
	for _, f := range d.Fields {
		st.Fields = append(st.Fields, types.Field{Name: f.Name.Name, Kind: resolveAstType(f.Kind)})
	}
	return st
}

func enumType(d ast.EnumDecl) types.Enum {
	et := types.Enum{Name: d.Name.Name}
	for i, v := range d.Variants {
		variant := types.Variant{Name: v.Name.Name, Tag: i}
		for _, f := range v.Fields {
			variant.Fields = append(variant.Fields, types.Field{Name: f.Name.Name, Kind: resolveAstType(f.Kind)})
		}
		et.Variants = append(et.Variants, variant)
	}
	return et
}

func (a *Analyzer) resolveFuncType(d ast.FuncDecl) types.Func {
	ft := types.Func{}
	for _, p := range d.Params {
		ft.Params = append(ft.Params, resolveAstType(p.Kind))
	}
	if d.Returns != nil {
		ft.Returns = resolveAstType(d.Returns)
	} else {
		ft.Returns = types.UnitTy
	}
	return ft
}

// resolveAstType converts a syntactic ast.Type into a semantic
// types.Type, defaulting unknown names to a generic type parameter
// rather than erroring here — unknown-symbol errors are reported
// during body checking where the span is more useful.
func resolveAstType(t ast.Type) types.Type {
	switch v := t.(type) {
	case ast.NamedType:
		switch v.Name.Name {
		case "Int":
			return types.I64
		case "Float":
			return types.F64
		case "Bool":
			return types.BoolTy
		case "String":
			return types.StrTy
		case "Unit", "":
			return types.UnitTy
		case "Array":
			if len(v.Args) == 1 {
				return types.Array{Elem: resolveAstType(v.Args[0])}
			}
			return types.Array{Elem: types.ErrTy}
		case "Dict":
			if len(v.Args) == 2 {
				return types.Dict{Key: resolveAstType(v.Args[0]), Value: resolveAstType(v.Args[1])}
			}
			return types.Dict{Key: types.ErrTy, Value: types.ErrTy}
		default:
			return types.Generic{Name: v.Name.Name}
		}
	case ast.FunctionType:
		ft := types.Func{}
		for _, p := range v.Params {
			ft.Params = append(ft.Params, resolveAstType(p))
		}
		if v.Returns != nil {
			ft.Returns = resolveAstType(v.Returns)
		} else {
			ft.Returns = types.UnitTy
		}
		return ft
	default:
		return types.ErrTy
	}
}

func (a *Analyzer) checkFunc(d ast.FuncDecl) {
	// resolveAstType returns this module's enum and struct names as
	// generic parameters; map them back to the declared types here.
	resolve := func(t ast.Type) types.Type {
		ty := resolveAstType(t)
		if g, ok := ty.(types.Generic); ok {
			if et, ok := a.module.Enums[g.Name]; ok {
				return et
			}
			if st, ok := a.module.Structs[g.Name]; ok {
				return st
			}
		}
		return ty
	}
	scope := newScope(nil)
	for _, p := range d.Params {
		scope.define(p.Name.Name, resolve(p.Kind))
	}
	var declared types.Type = types.UnitTy
	if d.Returns != nil {
		declared = resolve(d.Returns)
	}
	a.checkStmts(d.Body, scope, declared)
}

func (a *Analyzer) checkStmts(stmts []ast.Statement, scope *Scope, retType types.Type) {
	for _, s := range stmts {
		a.checkStmt(s, scope, retType)
	}
}

func (a *Analyzer) checkStmt(s ast.Statement, scope *Scope, retType types.Type) {
	switch v := s.(type) {
	case ast.LetStmt:
		valTy := a.inferExpr(v.Value, scope)
		declared := valTy
		if v.Kind != nil {
			declared = resolveAstType(v.Kind)
			if !types.Equal(declared, valTy) && valTy.Kind() != types.KindError {
				a.errorf(diag.TypeMismatch, v.Name.Span, "cannot assign %s to declared type %s", valTy, declared)
			}
		}
		scope.define(v.Name.Name, declared)
	case ast.ExprStmt:
		a.inferExpr(v.X, scope)
	case ast.ReturnStmt:
		if v.Value != nil {
			got := a.inferExpr(v.Value, scope)
			if !types.Equal(got, retType) && got.Kind() != types.KindError {
				a.errorf(diag.TypeMismatch, v.Span, "return type %s does not match declared return type %s", got, retType)
			}
		} else if retType.Kind() != types.KindUnit {
			a.errorf(diag.TypeMismatch, v.Span, "missing return value, function returns %s", retType)
		}
	case ast.BreakStmt:
		if a.loopDepth == 0 {
			a.errorf(diag.ExpectedToken, v.Span, "break outside of a loop")
		}
	case ast.ContinueStmt:
		if a.loopDepth == 0 {
			a.errorf(diag.ExpectedToken, v.Span, "continue outside of a loop")
		}
	case ast.PassStmt:
		// no-op
	case ast.RaiseStmt:
		a.inferExpr(v.Value, scope)
	case ast.ForStmt:
		iterTy := a.inferExpr(v.Iter, scope)
		inner := newScope(scope)
		switch it := iterTy.(type) {
		case types.Array:
			inner.define(v.Binding.Name, it.Elem)
		case types.String:
			inner.define(v.Binding.Name, types.StrTy)
		default:
			inner.define(v.Binding.Name, types.ErrTy)
		}
		a.loopDepth++
		a.checkStmts(v.Body, inner, retType)
		a.loopDepth--
	case ast.WhileStmt:
		a.inferExpr(v.Cond, scope)
		a.loopDepth++
		a.checkStmts(v.Body, newScope(scope), retType)
		a.loopDepth--
	}
}

func (a *Analyzer) inferExpr(e ast.Expression, scope *Scope) types.Type {
	switch v := e.(type) {
	case ast.LitExpr:
		return a.inferLiteral(v.Literal, scope)
	case ast.VarExpr:
		if t, ok := scope.lookup(v.Name.Name); ok {
			return t
		}
		if fn, ok := a.module.Funcs[v.Name.Name]; ok {
			return fn.Type
		}
		if imp, ok := a.imports[v.Name.Name]; ok && imp.SymbolType != nil {
			return imp.SymbolType
		}
		a.errorf(diag.UnknownSymbol, v.Name.Span, "unknown identifier %q", v.Name.Name)
		return types.ErrTy
	case ast.ArrayExpr:
		if len(v.Elements) == 0 {
			return types.Array{Elem: types.ErrTy}
		}
		elem := a.inferExpr(v.Elements[0], scope)
		for _, el := range v.Elements[1:] {
			a.inferExpr(el, scope)
		}
		return types.Array{Elem: elem}
	case ast.DictExpr:
		if len(v.Keys) == 0 {
			return types.Dict{Key: types.ErrTy, Value: types.ErrTy}
		}
		k := a.inferExpr(v.Keys[0], scope)
		val := a.inferExpr(v.Values[0], scope)
		return types.Dict{Key: k, Value: val}
	case ast.StructLitExpr:
		st, ok := a.module.Structs[v.Name.Name]
		if !ok {
			a.errorf(diag.UnknownSymbol, v.Name.Span, "unknown struct %q", v.Name.Name)
			return types.ErrTy
		}
		for fname, fexpr := range v.Fields {
			got := a.inferExpr(fexpr, scope)
			if fieldTy, ok := fieldType(st, fname); ok {
				if !types.Equal(fieldTy, got) && got.Kind() != types.KindError {
					a.errorf(diag.TypeMismatch, v.Span, "field %s: expected %s, got %s", fname, fieldTy, got)
				}
			} else {
				a.errorf(diag.UnknownField, v.Span, "struct %s has no field %q", st.Name, fname)
			}
		}
		return st
	case ast.FieldExpr:
		return a.inferFieldAccess(v, scope)
	case ast.IndexExpr:
		of := a.inferExpr(v.Of, scope)
		a.inferExpr(v.Index, scope)
		switch t := of.(type) {
		case types.Array:
			return t.Elem
		case types.Dict:
			return t.Value
		default:
			return types.ErrTy
		}
	case ast.UnaryExpr:
		return a.inferExpr(v.X, scope)
	case ast.BinaryExpr:
		left := a.inferExpr(v.Left, scope)
		right := a.inferExpr(v.Right, scope)
		return binaryResultType(v.Op, left, right)
	case ast.CallExpr:
		return a.inferCall(v, scope)
	case ast.LetExpr:
		got := a.inferExpr(v.Value, scope)
		scope.define(v.Name.Name, got)
		return got
	case ast.AssignExpr:
		a.inferExpr(v.Target, scope)
		return a.inferExpr(v.Value, scope)
	case ast.IfExpr:
		return a.inferIf(v, scope)
	case ast.MatchExpr:
		return a.inferMatch(v, scope)
	case ast.TryExpr:
		return a.inferTry(v, scope)
	case ast.SpawnExpr:
		return a.inferExpr(v.Body, scope)
	case ast.AwaitExpr:
		return a.inferExpr(v.X, scope)
	default:
		return types.ErrTy
	}
}

func fieldType(st types.Struct, name string) (types.Type, bool) {
	for _, f := range st.Fields {
		if f.Name == name {
			return f.Kind, true
		}
	}
	return nil, false
}

// inferFieldAccess handles `x.y` in the three shapes it can take: a
// qualified access into an imported module (`m.sqrt`), a unit enum
// variant referenced without a call (`Option.None`), or an ordinary
// struct field.
func (a *Analyzer) inferFieldAccess(v ast.FieldExpr, scope *Scope) types.Type {
	if base, ok := v.Of.(ast.VarExpr); ok {
		if _, shadowed := scope.lookup(base.Name.Name); !shadowed {
			if imp, ok := a.imports[base.Name.Name]; ok && imp.Module != nil {
				return a.inferModuleMember(imp.Module, v)
			}
			if et, ok := a.module.Enums[base.Name.Name]; ok {
				return a.inferUnitVariant(et, v)
			}
		}
	}
	of := a.inferExpr(v.Of, scope)
	st, ok := of.(types.Struct)
	if !ok {
		if of.Kind() != types.KindError {
			a.errorf(diag.TypeMismatch, v.Field.Span, "cannot access field %q on non-struct type %s", v.Field.Name, of)
		}
		return types.ErrTy
	}
	if t, ok := fieldType(st, v.Field.Name); ok {
		return t
	}
	a.errorf(diag.UnknownField, v.Field.Span, "struct %s has no field %q", st.Name, v.Field.Name)
	return types.ErrTy
}

func (a *Analyzer) inferModuleMember(m *Module, v ast.FieldExpr) types.Type {
	if fn, ok := m.Funcs[v.Field.Name]; ok {
		return fn.Type
	}
	if st, ok := m.Structs[v.Field.Name]; ok {
		return st
	}
	if et, ok := m.Enums[v.Field.Name]; ok {
		return et
	}
	a.errorf(diag.UnknownSymbol, v.Field.Span, "module has no public symbol %q", v.Field.Name)
	return types.ErrTy
}

func (a *Analyzer) inferUnitVariant(et types.Enum, v ast.FieldExpr) types.Type {
	for _, variant := range et.Variants {
		if variant.Name != v.Field.Name {
			continue
		}
		if len(variant.Fields) != 0 {
			a.errorf(diag.TypeMismatch, v.Field.Span, "variant %s.%s takes %d field(s), call it instead", et.Name, variant.Name, len(variant.Fields))
		}
		return et
	}
	a.errorf(diag.UnknownField, v.Field.Span, "enum %s has no variant %q", et.Name, v.Field.Name)
	return types.ErrTy
}

// builtinSignatures are the prelude functions every OtterLang module
// gets without a `use` (spec §8 scenario 1's bare `print(...)` call):
// thin, generically-typed wrappers over the runtime ABI's formatting
// helpers. They live here rather than in module.Funcs so user code can
// still shadow them with an ordinary top-level `def`.
var builtinSignatures = map[string]types.Func{
	"print":   {Params: []types.Type{types.Generic{Name: "T"}}, Returns: types.UnitTy},
	"println": {Params: []types.Type{types.Generic{Name: "T"}}, Returns: types.UnitTy},
	"str":     {Params: []types.Type{types.Generic{Name: "T"}}, Returns: types.StrTy},
}

// inferBuiltinCall type-checks a call to a prelude builtin, returning
// ok=false when name isn't one (or a local binding or top-level
// function of the same name shadows it, per the usual inner-scope-wins
// rule; an imported name does not shadow a builtin).
func (a *Analyzer) inferBuiltinCall(name string, v ast.CallExpr, scope *Scope) (types.Type, bool) {
	if _, shadowed := scope.lookup(name); shadowed {
		return nil, false
	}
	if _, shadowed := a.module.Funcs[name]; shadowed {
		return nil, false
	}
	ft, ok := builtinSignatures[name]
	if !ok {
		return nil, false
	}
	for _, arg := range v.Arguments {
		a.inferExpr(arg, scope)
	}
	if len(v.Arguments) != len(ft.Params) {
		a.errorf(diag.TypeMismatch, v.Span, "expected %d arguments, got %d", len(ft.Params), len(v.Arguments))
	}
	return ft.Returns, true
}

// inferEnumConstruct type-checks `Enum.Variant(args...)` (spec §4.5),
// returning ok=false when the callee isn't of that shape at all so the
// caller can fall back to an ordinary call.
func (a *Analyzer) inferEnumConstruct(field ast.FieldExpr, call ast.CallExpr, scope *Scope) (types.Type, bool) {
	base, ok := field.Of.(ast.VarExpr)
	if !ok {
		return nil, false
	}
	et, ok := a.module.Enums[base.Name.Name]
	if !ok {
		return nil, false
	}
	for _, variant := range et.Variants {
		if variant.Name != field.Field.Name {
			continue
		}
		for _, arg := range call.Arguments {
			a.inferExpr(arg, scope)
		}
		if len(call.Arguments) != len(variant.Fields) {
			a.errorf(diag.TypeMismatch, call.Span, "variant %s.%s expects %d field(s), got %d", et.Name, variant.Name, len(variant.Fields), len(call.Arguments))
		}
		return et, true
	}
	a.errorf(diag.UnknownField, field.Field.Span, "enum %s has no variant %q", et.Name, field.Field.Name)
	return types.ErrTy, true
}

func (a *Analyzer) inferLiteral(lit ast.Literal, scope *Scope) types.Type {
	switch v := lit.(type) {
	case ast.IntLiteral:
		return types.I64
	case ast.FloatLiteral:
		return types.F64
	case ast.StringLiteral:
		return types.StrTy
	case ast.BoolLiteral:
		return types.BoolTy
	case ast.FStringLiteral:
		for _, part := range v.Parts {
			if part.Expr != nil {
				a.inferExpr(part.Expr, scope)
			}
		}
		return types.StrTy
	default:
		return types.ErrTy
	}
}

func binaryResultType(op token.Kind, left, right types.Type) types.Type {
	switch op {
	case token.EQ, token.NE, token.LT, token.GT, token.LE, token.GE, token.AND, token.OR:
		return types.BoolTy
	default:
		if left.Kind() == types.KindFloat || right.Kind() == types.KindFloat {
			return types.F64
		}
		if left.Kind() == types.KindError {
			return right
		}
		return left
	}
}

func (a *Analyzer) inferCall(v ast.CallExpr, scope *Scope) types.Type {
	if name, ok := v.Callee.(ast.VarExpr); ok {
		if t, ok := a.inferBuiltinCall(name.Name.Name, v, scope); ok {
			return t
		}
	}
	if field, ok := v.Callee.(ast.FieldExpr); ok {
		if t, ok := a.inferEnumConstruct(field, v, scope); ok {
			return t
		}
	}
	calleeTy := a.inferExpr(v.Callee, scope)
	for _, arg := range v.Arguments {
		a.inferExpr(arg, scope)
	}
	ft, ok := calleeTy.(types.Func)
	if !ok {
		if calleeTy.Kind() != types.KindError {
			a.errorf(diag.TypeMismatch, v.Span, "cannot call a value of type %s", calleeTy)
		}
		return types.ErrTy
	}
	if len(v.Arguments) != len(ft.Params) {
		a.errorf(diag.TypeMismatch, v.Span, "expected %d arguments, got %d", len(ft.Params), len(v.Arguments))
	}
	return ft.Returns
}

func (a *Analyzer) inferIf(v ast.IfExpr, scope *Scope) types.Type {
	a.inferExpr(v.Cond, scope)
	a.checkStmts(v.Then, newScope(scope), types.UnitTy)
	for _, elif := range v.Elif {
		a.inferExpr(elif.Cond, scope)
		a.checkStmts(elif.Body, newScope(scope), types.UnitTy)
	}
	if v.Else != nil {
		a.checkStmts(v.Else, newScope(scope), types.UnitTy)
	}
	return types.UnitTy
}

// inferMatch type-checks a match's arms and reports a NotExhaustive
// diagnostic when the subject is an enum and not every variant (nor a
// wildcard/binding catch-all) is covered (spec §4.4 exhaustiveness).
func (a *Analyzer) inferMatch(v ast.MatchExpr, scope *Scope) types.Type {
	subjectTy := a.inferExpr(v.Subject, scope)

	covered := map[string]bool{}
	hasCatchAll := false
	for _, arm := range v.Arms {
		inner := newScope(scope)
		a.bindPattern(arm.Pattern, subjectTy, inner)
		if arm.Guard != nil {
			a.inferExpr(arm.Guard, inner)
		}
		switch p := arm.Pattern.(type) {
		case ast.VariantPattern:
			covered[p.Variant.Name] = true
		case ast.WildcardPattern, ast.BindingPattern:
			if arm.Guard == nil {
				hasCatchAll = true
			}
		}
		if arm.Expr != nil {
			a.inferExpr(arm.Expr, inner)
		} else {
			a.checkStmts(arm.Body, inner, types.UnitTy)
		}
	}

	if et, ok := subjectTy.(types.Enum); ok && !hasCatchAll {
		for _, variant := range et.Variants {
			if !covered[variant.Name] {
				a.errorf(diag.NotExhaustive, v.Span, "match on %s is not exhaustive: missing variant %s", et.Name, variant.Name)
			}
		}
	}
	return types.UnitTy
}

func (a *Analyzer) bindPattern(p ast.Pattern, subject types.Type, scope *Scope) {
	switch v := p.(type) {
	case ast.BindingPattern:
		scope.define(v.Name.Name, subject)
	case ast.VariantPattern:
		et, ok := subject.(types.Enum)
		if !ok {
			return
		}
		for _, variant := range et.Variants {
			if variant.Name != v.Variant.Name {
				continue
			}
			for i, f := range v.Fields {
				if i < len(variant.Fields) {
					a.bindPattern(f, variant.Fields[i].Kind, scope)
				}
			}
		}
	case ast.StructPattern:
		st, ok := subject.(types.Struct)
		if !ok {
			return
		}
		for fname, fpat := range v.Fields {
			if ft, ok := fieldType(st, fname); ok {
				a.bindPattern(fpat, ft, scope)
			}
		}
	}
}

func (a *Analyzer) inferTry(v ast.TryExpr, scope *Scope) types.Type {
	a.checkStmts(v.Body, newScope(scope), types.UnitTy)
	for _, h := range v.Handler {
		inner := newScope(scope)
		if h.Binding.Name != "" {
			inner.define(h.Binding.Name, types.StrTy)
		}
		a.checkStmts(h.Body, inner, types.UnitTy)
	}
	if v.Finally != nil {
		a.checkStmts(v.Finally, newScope(scope), types.UnitTy)
	}
	return types.UnitTy
}
