// Package irgen lowers a type-checked OtterLang module to LLVM IR
// using llir/llvm, in a two-pass shape (forward-declare every
// top-level signature, then compile bodies) confirmed independently
// in both the teacher's codegen.go (forwardDeclarationPass) and the
// original implementation's inkwell-based compile_module (DESIGN.md).
package irgen

import (
	"fmt"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	irenum "github.com/llir/llvm/ir/enum"
	irtypes "github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"
	"github.com/ztrue/tracerr"

	"github.com/otterlang/otterc/internal/ast"
	"github.com/otterlang/otterc/internal/config"
	"github.com/otterlang/otterc/internal/irgen/abiregistry"
	"github.com/otterlang/otterc/internal/sema"
	"github.com/otterlang/otterc/internal/token"
	"github.com/otterlang/otterc/internal/types"
)

// namedThing is the teacher's scope-entry idiom: a value binding, a
// mutable (stack-slot) binding, or a type binding all live in the
// same lexical scope stack.
type namedThing interface{ isNamedThing() }

type llvmValue struct{ value.Value }
type llvmMutable struct{ value.Value }
type llvmType struct {
	irtypes.Type
	fields map[string]int
}

func (llvmValue) isNamedThing()   {}
func (llvmMutable) isNamedThing() {}
func (llvmType) isNamedThing()    {}

type loopLabels struct {
	breakBlock, continueBlock *ir.Block
}

type ctx struct {
	names   []map[string]namedThing
	module  *sema.Module
	imports map[string]sema.Import // cross-module names this module's use/pub use decls bind, keyed like sema's own
	reg     *abiregistry.Registry
	runtime map[string]*ir.Func // resolved runtime ABI declarations, populated lazily
	externs map[string]*ir.Func // cross-module function declarations, populated lazily
	m       *ir.Module
	forward bool
	strs    map[string]value.Value
	loops   []loopLabels
}

func (c *ctx) push()            { c.names = append(c.names, map[string]namedThing{}) }
func (c *ctx) pop()             { c.names = c.names[:len(c.names)-1] }
func (c *ctx) top() map[string]namedThing { return c.names[len(c.names)-1] }

func (c *ctx) lookup(name string) namedThing {
	if v, ok := c.tryLookup(name); ok {
		return v
	}
	panic(fmt.Errorf("irgen: unresolved identifier %q reached codegen", name))
}

// tryLookup is lookup without the panic, so callers deciding whether a
// bare name is a builtin/enum reference or an ordinary binding can
// check without crashing on a miss.
func (c *ctx) tryLookup(name string) (namedThing, bool) {
	for i := len(c.names) - 1; i >= 0; i-- {
		if v, ok := c.names[i][name]; ok {
			return v, true
		}
	}
	return nil, false
}

// shadowsBuiltin reports whether name is already bound to a real value
// or mutable slot (a parameter, local, or top-level function) rather
// than a type binding — the same inner-scope-wins rule sema.go's
// inferFieldAccess/inferBuiltinCall apply before treating a bare name
// as a prelude builtin or an enum reference.
func (c *ctx) shadowsBuiltin(name string) bool {
	thing, ok := c.tryLookup(name)
	if !ok {
		return false
	}
	switch thing.(type) {
	case llvmValue, llvmMutable:
		return true
	default:
		return false
	}
}

func (c *ctx) define(name string, v namedThing) { c.top()[name] = v }

// runtimeFunc declares (once) and returns the LLVM function for a
// runtime ABI entry, resolved through the abiregistry (§11.3).
func (c *ctx) runtimeFunc(name string) *ir.Func {
	if fn, ok := c.runtime[name]; ok {
		return fn
	}
	sig, err := c.reg.Resolve(name)
	if err != nil {
		panic(err)
	}
	ret := ffiToLLVM(sig.Signature.Returns)
	var params []*ir.Param
	for i, p := range sig.Signature.Params {
		params = append(params, ir.NewParam(fmt.Sprintf("a%d", i), ffiToLLVM(p)))
	}
	fn := c.m.NewFunc(sig.Symbol, ret, params...)
	c.runtime[name] = fn
	return fn
}

func ffiToLLVM(t abiregistry.FfiType) irtypes.Type {
	switch t {
	case abiregistry.TVoid:
		return irtypes.Void
	case abiregistry.TI1:
		return irtypes.I1
	case abiregistry.TI8:
		return irtypes.I8
	case abiregistry.TI32:
		return irtypes.I32
	case abiregistry.TI64:
		return irtypes.I64
	case abiregistry.TF64:
		return irtypes.Double
	case abiregistry.TPtr:
		return irtypes.NewPointer(irtypes.I8)
	default:
		return irtypes.Void
	}
}

// Emit lowers file/module to an *ir.Module targeting the given
// codegen options' selected runtime variant.
func Emit(file *ast.File, mod *sema.Module, opts config.CodegenOptions) (m *ir.Module, err error) {
	return EmitWithImports(file, mod, nil, opts)
}

// EmitWithImports is Emit, additionally given the cross-module
// bindings internal/resolver.Graph.LocalBindings resolved for this
// module (spec §4.3), so calls through an imported name or a
// qualified module handle lower to extern declarations of the
// already-emitted dependency module's functions instead of panicking.
func EmitWithImports(file *ast.File, mod *sema.Module, imports map[string]sema.Import, opts config.CodegenOptions) (m *ir.Module, err error) {
	defer func() {
		if r := recover(); r != nil {
			if rerr, ok := r.(error); ok {
				err = tracerr.Wrap(rerr)
				return
			}
			panic(r)
		}
	}()

	c := &ctx{
		module:  mod,
		imports: imports,
		reg:     abiregistry.Standard(),
		runtime: map[string]*ir.Func{},
		externs: map[string]*ir.Func{},
		strs:    map[string]value.Value{},
	}
	c.m = ir.NewModule()
	c.push()

	for name, st := range mod.Structs {
		c.define(name, structLLVMType(st))
	}
	for name := range mod.Enums {
		c.define(name, llvmType{Type: irtypes.I64}) // boxed handle, §11.5
	}

	c.forward = true
	for _, top := range file.TopLevel {
		c.declareTopLevel(top)
	}
	c.forward = false
	for _, top := range file.TopLevel {
		c.emitTopLevel(top)
	}

	// Entry trampoline: if the module defines `main`, wire it up the
	// way the teacher's codegen wires `_tawa_main`, generalized to the
	// exception-context push/pop every OtterLang call frame needs
	// (spec §6.3/§7).
	if main, ok := c.lookup("main").(llvmValue); ok {
		if fn, ok := main.Value.(*ir.Func); ok {
			entry := c.m.NewFunc("_otter_main", irtypes.I32)
			b := entry.NewBlock("entry")
			b.NewCall(c.runtimeFunc("error.push_context"))
			b.NewCall(fn)
			b.NewCall(c.runtimeFunc("error.pop_context"))
			b.NewRet(constant.NewInt(irtypes.I32, 0))
		}
	}

	return c.m, nil
}

func structLLVMType(st types.Struct) llvmType {
	fields := make(map[string]int, len(st.Fields))
	var elems []irtypes.Type
	for i, f := range st.Fields {
		fields[f.Name] = i
		elems = append(elems, semaToLLVM(f.Kind))
	}
	lt := irtypes.NewStruct(elems...)
	lt.SetName(st.Name)
	return llvmType{Type: lt, fields: fields}
}

func semaToLLVM(t types.Type) irtypes.Type {
	switch v := t.(type) {
	case types.Int:
		return irtypes.NewInt(uint64(v.BitSize))
	case types.Float:
		if v.BitSize == 32 {
			return irtypes.Float
		}
		return irtypes.Double
	case types.Bool:
		return irtypes.I1
	case types.String:
		return irtypes.NewPointer(irtypes.I8)
	case types.Unit:
		return irtypes.Void
	case types.Array:
		return irtypes.NewPointer(semaToLLVM(v.Elem))
	case types.Dict:
		return irtypes.NewPointer(irtypes.I8) // opaque handle into the runtime dict ABI
	case types.Struct:
		var elems []irtypes.Type
		for _, f := range v.Fields {
			elems = append(elems, semaToLLVM(f.Kind))
		}
		return irtypes.NewStruct(elems...)
	case types.Enum:
		return irtypes.I64 // boxed handle into the enum runtime table (§11.5)
	case types.Func:
		var params []irtypes.Type
		for _, p := range v.Params {
			params = append(params, semaToLLVM(p))
		}
		return irtypes.NewPointer(irtypes.NewFunc(semaToLLVM(v.Returns), params...))
	default:
		return irtypes.Void
	}
}

func (c *ctx) declareTopLevel(top ast.TopLevel) {
	fn, ok := top.(ast.FuncDecl)
	if !ok {
		return
	}
	sf := c.module.Funcs[fn.Name.Name]
	ret := semaToLLVM(sf.Type.Returns)
	var params []*ir.Param
	for i, p := range fn.Params {
		params = append(params, ir.NewParam(p.Name.Name, semaToLLVM(sf.Type.Params[i])))
	}
	f := c.m.NewFunc(fn.Name.Name, ret, params...)
	c.define(fn.Name.Name, llvmValue{f})
}

func (c *ctx) emitTopLevel(top ast.TopLevel) {
	fnDecl, ok := top.(ast.FuncDecl)
	if !ok {
		return
	}
	sf := c.module.Funcs[fnDecl.Name.Name]
	f := c.lookup(fnDecl.Name.Name).(llvmValue).Value.(*ir.Func)
	b := f.NewBlock("entry")

	c.push()
	for i, p := range fnDecl.Params {
		// Params are stored in alloca'd slots like any other local
		// binding: OtterLang has no `mut` keyword (DESIGN.md open
		// question 3) so every binding, parameters included, is
		// rebindable by plain assignment.
		slot := b.NewAlloca(f.Params[i].Type())
		b.NewStore(f.Params[i], slot)
		c.define(p.Name.Name, llvmMutable{slot})
	}
	last := c.emitBlock(fnDecl.Body, b)
	c.pop()

	if irtypes.IsVoid(f.Sig.RetType) {
		if !blockTerminated(b) {
			b.NewRet(nil)
		}
	} else if !blockTerminated(b) {
		if last == nil {
			last = constant.NewInt(semaToLLVM(sf.Type.Returns).(*irtypes.IntType), 0)
		}
		b.NewRet(last)
	}
}

func blockTerminated(b *ir.Block) bool { return b.Term != nil }

// emitBlock lowers a statement list into b in a fresh scope and
// returns the value of the last statement it emitted (nil if none),
// which emitTopLevel uses as the function's implicit tail value.
func (c *ctx) emitBlock(stmts []ast.Statement, b *ir.Block) value.Value {
	var last value.Value
	c.push()
	defer c.pop()
	cur := b
	for _, s := range stmts {
		if blockTerminated(cur) {
			break
		}
		last = c.emitStmt(s, cur)
	}
	return last
}

func (c *ctx) emitStmt(s ast.Statement, b *ir.Block) value.Value {
	switch v := s.(type) {
	case ast.ExprStmt:
		return c.emitExpr(v.X, b)
	case ast.LetStmt:
		val := c.emitExpr(v.Value, b)
		alloca := b.NewAlloca(val.Type())
		b.NewStore(val, alloca)
		c.define(v.Name.Name, llvmMutable{alloca})
		return val
	case ast.ReturnStmt:
		if v.Value == nil {
			b.NewRet(nil)
			return nil
		}
		val := c.emitExpr(v.Value, b)
		b.NewRet(val)
		return val
	case ast.BreakStmt:
		if len(c.loops) > 0 {
			b.NewBr(c.loops[len(c.loops)-1].breakBlock)
		}
		return nil
	case ast.ContinueStmt:
		if len(c.loops) > 0 {
			b.NewBr(c.loops[len(c.loops)-1].continueBlock)
		}
		return nil
	case ast.PassStmt:
		return nil
	case ast.RaiseStmt:
		msg := c.emitExpr(v.Value, b)
		str := c.formatValue(msg, b)
		n := b.NewCall(c.runtimeFunc("str.len"), str)
		b.NewCall(c.runtimeFunc("error.raise"), str, n)
		return nil
	case ast.ForStmt:
		c.emitFor(v, b)
		return nil
	case ast.WhileStmt:
		c.emitWhile(v, b)
		return nil
	default:
		return nil
	}
}

// emitFor desugars `for x in iterable` onto the iterator protocol
// (SPEC_FULL.md §11.4): new/has_next/next/free runtime calls wrapping
// an ordinary conditional-branch loop.
func (c *ctx) emitFor(v ast.ForStmt, b *ir.Block) {
	fn := b.Parent
	kind := "array"
	if _, ok := c.inferSimpleIterKind(v.Iter); ok {
		kind = "range"
	}

	iterVal := c.emitExpr(v.Iter, b)
	handle := b.NewCall(c.runtimeFunc("iter."+kind+".new"), iterVal, iterVal)

	head := fn.NewBlock("for.head")
	body := fn.NewBlock("for.body")
	exit := fn.NewBlock("for.exit")
	b.NewBr(head)

	hasNext := head.NewCall(c.runtimeFunc("iter."+kind+".has_next"), handle)
	cmp := head.NewICmp(irenum.IPredNE, hasNext, constant.NewInt(irtypes.I1, 0))
	head.NewCondBr(cmp, body, exit)

	c.push()
	next := body.NewCall(c.runtimeFunc("iter."+kind+".next"), handle)
	c.define(v.Binding.Name, llvmValue{next})
	c.loops = append(c.loops, loopLabels{breakBlock: exit, continueBlock: head})
	cur := body
	for _, s := range v.Body {
		if blockTerminated(cur) {
			break
		}
		c.emitStmt(s, cur)
	}
	c.loops = c.loops[:len(c.loops)-1]
	c.pop()
	if !blockTerminated(body) {
		body.NewBr(head)
	}
	exit.NewCall(c.runtimeFunc("iter."+kind+".free"), handle)
}

func (c *ctx) inferSimpleIterKind(e ast.Expression) (string, bool) {
	if _, ok := e.(ast.ArrayExpr); ok {
		return "", false
	}
	return "range", true
}

func (c *ctx) emitWhile(v ast.WhileStmt, b *ir.Block) {
	fn := b.Parent
	head := fn.NewBlock("while.head")
	body := fn.NewBlock("while.body")
	exit := fn.NewBlock("while.exit")
	b.NewBr(head)

	cond := c.emitExpr(v.Cond, head)
	cmp := head.NewICmp(irenum.IPredNE, cond, constant.NewInt(irtypes.I1, 0))
	head.NewCondBr(cmp, body, exit)

	c.loops = append(c.loops, loopLabels{breakBlock: exit, continueBlock: head})
	c.emitBlock(v.Body, body)
	c.loops = c.loops[:len(c.loops)-1]
	if !blockTerminated(body) {
		body.NewBr(head)
	}
}

func (c *ctx) emitExpr(e ast.Expression, b *ir.Block) value.Value {
	switch v := e.(type) {
	case ast.LitExpr:
		return c.emitLiteral(v.Literal, b)
	case ast.VarExpr:
		switch nv := c.lookup(v.Name.Name).(type) {
		case llvmValue:
			return nv.Value
		case llvmMutable:
			return b.NewLoad(nv.Value.Type().(*irtypes.PointerType).ElemType, nv.Value)
		default:
			panic(fmt.Errorf("irgen: %s does not name a value", v.Name.Name))
		}
	case ast.AssignExpr:
		return c.emitAssign(v, b)
	case ast.BinaryExpr:
		return c.emitBinary(v, b)
	case ast.UnaryExpr:
		return c.emitUnary(v, b)
	case ast.CallExpr:
		return c.emitCall(v, b)
	case ast.FieldExpr:
		if val, ok := c.tryEmitEnumUnitVariant(v, b); ok {
			return val
		}
		return c.emitField(v, b)
	case ast.StructLitExpr:
		return c.emitStructLit(v, b)
	case ast.IfExpr:
		return c.emitIf(v, b)
	case ast.MatchExpr:
		return c.emitMatch(v, b)
	case ast.TryExpr:
		return c.emitTry(v, b)
	case ast.SpawnExpr:
		// Serial model (spec §5): spawn evaluates its body inline.
		return c.emitExpr(v.Body, b)
	case ast.AwaitExpr:
		return c.emitExpr(v.X, b)
	default:
		panic(fmt.Errorf("irgen: unhandled expression %T", e))
	}
}

func (c *ctx) emitLiteral(lit ast.Literal, b *ir.Block) value.Value {
	switch v := lit.(type) {
	case ast.IntLiteral:
		return constant.NewInt(irtypes.I64, v.Value)
	case ast.FloatLiteral:
		return constant.NewFloat(irtypes.Double, v.Value)
	case ast.BoolLiteral:
		val := int64(0)
		if v.Value {
			val = 1
		}
		return constant.NewInt(irtypes.I1, val)
	case ast.StringLiteral:
		return c.emitStringConstant(v.Value, b)
	case ast.FStringLiteral:
		return c.emitFString(v, b)
	default:
		panic(fmt.Errorf("irgen: unhandled literal %T", lit))
	}
}

func (c *ctx) emitStringConstant(s string, b *ir.Block) value.Value {
	g, ok := c.strs[s]
	if !ok {
		g = c.m.NewGlobalDef(fmt.Sprintf("_str_%d", len(c.strs)), constant.NewCharArrayFromString(s+"\x00"))
		c.strs[s] = g
	}
	return b.NewBitCast(g, irtypes.NewPointer(irtypes.I8))
}

// emitFString lowers f-string interpolation by formatting each
// embedded expression through the appropriate otter_std_fmt_* runtime
// helper and concatenating — the same desugaring spec §11.4 describes
// for the iterator protocol, applied here to string interpolation.
func (c *ctx) emitFString(v ast.FStringLiteral, b *ir.Block) value.Value {
	var pieces []value.Value
	for _, part := range v.Parts {
		if part.Expr == nil {
			pieces = append(pieces, c.emitStringConstant(part.Text, b))
			continue
		}
		val := c.emitExpr(part.Expr, b)
		pieces = append(pieces, c.formatValue(val, b))
	}
	if len(pieces) == 0 {
		return c.emitStringConstant("", b)
	}
	result := pieces[0]
	for _, p := range pieces[1:] {
		result = b.NewCall(c.runtimeFunc("str.concat"), result, p)
	}
	return result
}

// formatValue normalizes val to a string, either passing an
// already-string value through unchanged or routing it through the
// matching otter_std_fmt_* runtime helper. Both f-string interpolation
// and the print/println/str builtins share this.
func (c *ctx) formatValue(val value.Value, b *ir.Block) value.Value {
	switch t := val.Type().(type) {
	case *irtypes.PointerType:
		if t.ElemType.Equal(irtypes.I8) {
			return val
		}
		return b.NewCall(c.runtimeFunc("fmt.int"), val)
	case *irtypes.FloatType:
		return b.NewCall(c.runtimeFunc("fmt.float"), val)
	case *irtypes.IntType:
		if t.BitSize == 1 {
			return b.NewCall(c.runtimeFunc("fmt.bool"), val)
		}
		return b.NewCall(c.runtimeFunc("fmt.int"), val)
	default:
		return b.NewCall(c.runtimeFunc("fmt.int"), val)
	}
}

func (c *ctx) emitAssign(v ast.AssignExpr, b *ir.Block) value.Value {
	val := c.emitExpr(v.Value, b)
	switch t := v.Target.(type) {
	case ast.VarExpr:
		dst, ok := c.lookup(t.Name.Name).(llvmMutable)
		if !ok {
			panic(fmt.Errorf("irgen: %s is not a mutable binding", t.Name.Name))
		}
		b.NewStore(val, dst.Value)
	case ast.FieldExpr:
		ptr := c.fieldPtr(t, b)
		b.NewStore(val, ptr)
	default:
		panic(fmt.Errorf("irgen: unsupported assignment target %T", v.Target))
	}
	return val
}

func (c *ctx) emitBinary(v ast.BinaryExpr, b *ir.Block) value.Value {
	l := c.emitExpr(v.Left, b)
	r := c.emitExpr(v.Right, b)
	isFloat := l.Type().Equal(irtypes.Double) || r.Type().Equal(irtypes.Double)

	switch v.Op {
	case token.PLUS:
		if isFloat {
			return b.NewFAdd(l, r)
		}
		return b.NewAdd(l, r)
	case token.MINUS:
		if isFloat {
			return b.NewFSub(l, r)
		}
		return b.NewSub(l, r)
	case token.STAR:
		if isFloat {
			return b.NewFMul(l, r)
		}
		return b.NewMul(l, r)
	case token.SLASH:
		if isFloat {
			return b.NewFDiv(l, r)
		}
		return b.NewSDiv(l, r)
	case token.PERCENT:
		return b.NewSRem(l, r)
	case token.EQ:
		return b.NewICmp(irenum.IPredEQ, l, r)
	case token.NE:
		return b.NewICmp(irenum.IPredNE, l, r)
	case token.LT:
		return b.NewICmp(irenum.IPredSLT, l, r)
	case token.GT:
		return b.NewICmp(irenum.IPredSGT, l, r)
	case token.LE:
		return b.NewICmp(irenum.IPredSLE, l, r)
	case token.GE:
		return b.NewICmp(irenum.IPredSGE, l, r)
	case token.AND:
		return b.NewAnd(l, r)
	case token.OR:
		return b.NewOr(l, r)
	default:
		panic(fmt.Errorf("irgen: unhandled binary operator %v", v.Op))
	}
}

func (c *ctx) emitUnary(v ast.UnaryExpr, b *ir.Block) value.Value {
	x := c.emitExpr(v.X, b)
	switch v.Op {
	case token.MINUS:
		if x.Type().Equal(irtypes.Double) {
			return b.NewFSub(constant.NewFloat(irtypes.Double, 0), x)
		}
		return b.NewSub(constant.NewInt(irtypes.I64, 0), x)
	case token.NOT:
		return b.NewXor(x, constant.NewInt(irtypes.I1, 1))
	default:
		panic(fmt.Errorf("irgen: unhandled unary operator %v", v.Op))
	}
}

func (c *ctx) emitCall(v ast.CallExpr, b *ir.Block) value.Value {
	if name, ok := v.Callee.(ast.VarExpr); ok {
		if val, ok := c.tryEmitBuiltinCall(name.Name.Name, v, b); ok {
			return val
		}
		if fn, ok := c.tryExternFunc(name.Name.Name); ok {
			return b.NewCall(fn, c.emitArgs(v.Arguments, b)...)
		}
	}
	if field, ok := v.Callee.(ast.FieldExpr); ok {
		if val, ok := c.tryEmitEnumConstruct(field, v, b); ok {
			return val
		}
		if fn, ok := c.tryExternModuleFunc(field); ok {
			return b.NewCall(fn, c.emitArgs(v.Arguments, b)...)
		}
	}
	callee, ok := v.Callee.(ast.VarExpr)
	if !ok {
		panic(fmt.Errorf("irgen: only direct calls are supported"))
	}
	fn := c.lookup(callee.Name.Name).(llvmValue).Value
	return b.NewCall(fn, c.emitArgs(v.Arguments, b)...)
}

func (c *ctx) emitArgs(exprs []ast.Expression, b *ir.Block) []value.Value {
	var args []value.Value
	for _, a := range exprs {
		args = append(args, c.emitExpr(a, b))
	}
	return args
}

// declareExternFunc declares (once) an extern function matching sig's
// OtterLang signature under symbol, caching the declaration the same
// way runtimeFunc caches ABI declarations, so a dependency function
// called from multiple sites gets one declaration, not one per call.
func (c *ctx) declareExternFunc(symbol string, sig types.Func) *ir.Func {
	if fn, ok := c.externs[symbol]; ok {
		return fn
	}
	var params []*ir.Param
	for i, p := range sig.Params {
		params = append(params, ir.NewParam(fmt.Sprintf("a%d", i), semaToLLVM(p)))
	}
	fn := c.m.NewFunc(symbol, semaToLLVM(sig.Returns), params...)
	c.externs[symbol] = fn
	return fn
}

// tryExternFunc resolves a bare call to a name this module imported
// directly (`pub use M.n [as k]`), returning ok=false for any name
// that isn't such an import or that's shadowed by a real local
// binding.
func (c *ctx) tryExternFunc(name string) (*ir.Func, bool) {
	if c.shadowsBuiltin(name) {
		return nil, false
	}
	imp, ok := c.imports[name]
	if !ok || imp.SymbolType == nil {
		return nil, false
	}
	sig, ok := imp.SymbolType.(types.Func)
	if !ok {
		return nil, false
	}
	return c.declareExternFunc(name, sig), true
}

// tryExternModuleFunc resolves `m.f(...)` where m is a qualified
// module handle this module imported (`use M`), returning ok=false
// when the base name isn't such a handle or f isn't one of that
// module's functions.
func (c *ctx) tryExternModuleFunc(field ast.FieldExpr) (*ir.Func, bool) {
	base, ok := field.Of.(ast.VarExpr)
	if !ok || c.shadowsBuiltin(base.Name.Name) {
		return nil, false
	}
	imp, ok := c.imports[base.Name.Name]
	if !ok || imp.Module == nil {
		return nil, false
	}
	fn, ok := imp.Module.Funcs[field.Field.Name]
	if !ok {
		return nil, false
	}
	return c.declareExternFunc(field.Field.Name, fn.Type), true
}

// tryEmitBuiltinCall lowers a call to a prelude builtin (print,
// println, str — sema.go's builtinSignatures) straight to the runtime
// formatting ABI, returning ok=false for any other callee name or one
// shadowed by a real binding.
func (c *ctx) tryEmitBuiltinCall(name string, v ast.CallExpr, b *ir.Block) (value.Value, bool) {
	if c.shadowsBuiltin(name) {
		return nil, false
	}
	switch name {
	case "print", "println":
		if len(v.Arguments) != 1 {
			panic(fmt.Errorf("irgen: %s expects exactly one argument", name))
		}
		arg := c.emitExpr(v.Arguments[0], b)
		s := c.formatValue(arg, b)
		n := b.NewCall(c.runtimeFunc("str.len"), s)
		return b.NewCall(c.runtimeFunc("fmt.println"), s, n), true
	case "str":
		if len(v.Arguments) != 1 {
			panic(fmt.Errorf("irgen: str expects exactly one argument"))
		}
		arg := c.emitExpr(v.Arguments[0], b)
		return c.formatValue(arg, b), true
	default:
		return nil, false
	}
}

// tryEmitEnumConstruct lowers `Enum.Variant(args...)` to an
// enum.create call followed by one enum.set_* per field (§11.5),
// returning ok=false when the callee isn't of that shape (an ordinary
// call, or a field access on a real value) so the caller falls back to
// the direct-call path.
func (c *ctx) tryEmitEnumConstruct(field ast.FieldExpr, call ast.CallExpr, b *ir.Block) (value.Value, bool) {
	base, ok := field.Of.(ast.VarExpr)
	if !ok || c.shadowsBuiltin(base.Name.Name) {
		return nil, false
	}
	_, variant, ok := c.resolveVariant(base.Name.Name, field.Field.Name)
	if !ok {
		return nil, false
	}
	handle := b.NewCall(c.runtimeFunc("enum.create"), constant.NewInt(irtypes.I32, int64(variant.Tag)))
	for i, arg := range call.Arguments {
		if i >= len(variant.Fields) {
			break
		}
		val := c.emitExpr(arg, b)
		c.boxEnumField(handle, val, i, b)
	}
	return handle, true
}

// tryEmitEnumUnitVariant lowers a bare `Enum.Variant` reference (no
// call) for a variant that takes no fields, e.g. Option.None.
func (c *ctx) tryEmitEnumUnitVariant(v ast.FieldExpr, b *ir.Block) (value.Value, bool) {
	base, ok := v.Of.(ast.VarExpr)
	if !ok || c.shadowsBuiltin(base.Name.Name) {
		return nil, false
	}
	_, variant, ok := c.resolveVariant(base.Name.Name, v.Field.Name)
	if !ok {
		return nil, false
	}
	return b.NewCall(c.runtimeFunc("enum.create"), constant.NewInt(irtypes.I32, int64(variant.Tag))), true
}

// resolveVariant looks up a named enum variant among the module's
// declared enums.
func (c *ctx) resolveVariant(enumName, variantName string) (types.Enum, types.Variant, bool) {
	et, ok := c.module.Enums[enumName]
	if !ok {
		return types.Enum{}, types.Variant{}, false
	}
	for _, variant := range et.Variants {
		if variant.Name == variantName {
			return et, variant, true
		}
	}
	return types.Enum{}, types.Variant{}, false
}

// boxEnumField stores val into field index of the boxed enum handle,
// dispatching on val's concrete LLVM type: pointers go through
// enum.set_ptr directly, integers (including i1 bools) are widened to
// i64 and go through enum.set_i64, and anything else (floats, structs
// passed by value) is spilled to a stack slot first and boxed as a
// pointer to that slot.
func (c *ctx) boxEnumField(handle value.Value, val value.Value, field int, b *ir.Block) {
	idx := constant.NewInt(irtypes.I32, int64(field))
	switch t := val.Type().(type) {
	case *irtypes.PointerType:
		b.NewCall(c.runtimeFunc("enum.set_ptr"), handle, idx, val)
	case *irtypes.IntType:
		v64 := val
		if t.BitSize != 64 {
			v64 = b.NewZExt(val, irtypes.I64)
		}
		b.NewCall(c.runtimeFunc("enum.set_i64"), handle, idx, v64)
	default:
		slot := b.NewAlloca(val.Type())
		b.NewStore(val, slot)
		ptr := b.NewBitCast(slot, irtypes.NewPointer(irtypes.I8))
		b.NewCall(c.runtimeFunc("enum.set_ptr"), handle, idx, ptr)
	}
}

// unboxEnumField is boxEnumField's inverse, reading field index back
// out of handle as fieldTy.
func (c *ctx) unboxEnumField(handle value.Value, fieldTy types.Type, field int, b *ir.Block) value.Value {
	idx := constant.NewInt(irtypes.I32, int64(field))
	llTy := semaToLLVM(fieldTy)
	switch t := llTy.(type) {
	case *irtypes.PointerType:
		return b.NewCall(c.runtimeFunc("enum.get_ptr"), handle, idx)
	case *irtypes.IntType:
		raw := b.NewCall(c.runtimeFunc("enum.get_i64"), handle, idx)
		if t.BitSize == 64 {
			return raw
		}
		return b.NewTrunc(raw, t)
	default:
		ptr := b.NewCall(c.runtimeFunc("enum.get_ptr"), handle, idx)
		slot := b.NewBitCast(ptr, irtypes.NewPointer(llTy))
		return b.NewLoad(llTy, slot)
	}
}

func (c *ctx) fieldPtr(v ast.FieldExpr, b *ir.Block) value.Value {
	of := c.emitExpr(v.Of, b)
	ptr, ok := of.Type().(*irtypes.PointerType)
	if !ok {
		panic(fmt.Errorf("irgen: field access on a non-pointer value"))
	}
	st, ok := ptr.ElemType.(*irtypes.StructType)
	if !ok {
		panic(fmt.Errorf("irgen: field access on a non-struct value"))
	}
	idx := c.structFieldIndex(st, v.Field.Name)
	return b.NewGetElementPtr(st, of, constant.NewInt(irtypes.I32, 0), constant.NewInt(irtypes.I32, int64(idx)))
}

func (c *ctx) structFieldIndex(st *irtypes.StructType, name string) int {
	for i := len(c.names) - 1; i >= 0; i-- {
		for _, v := range c.names[i] {
			if lt, ok := v.(llvmType); ok {
				if lt.Type.Equal(st) {
					if idx, ok := lt.fields[name]; ok {
						return idx
					}
				}
			}
		}
	}
	panic(fmt.Errorf("irgen: no field %q on struct %s", name, st.Name()))
}

func (c *ctx) emitField(v ast.FieldExpr, b *ir.Block) value.Value {
	ptr := c.fieldPtr(v, b)
	elem := ptr.Type().(*irtypes.PointerType).ElemType
	return b.NewLoad(elem, ptr)
}

func (c *ctx) emitStructLit(v ast.StructLitExpr, b *ir.Block) value.Value {
	lt, ok := c.lookup(v.Name.Name).(llvmType)
	if !ok {
		panic(fmt.Errorf("irgen: unknown struct %s", v.Name.Name))
	}
	st := lt.Type.(*irtypes.StructType)
	alloca := b.NewAlloca(st)
	for name, expr := range v.Fields {
		idx := lt.fields[name]
		val := c.emitExpr(expr, b)
		ptr := b.NewGetElementPtr(st, alloca, constant.NewInt(irtypes.I32, 0), constant.NewInt(irtypes.I32, int64(idx)))
		b.NewStore(val, ptr)
	}
	return alloca
}

func (c *ctx) emitIf(v ast.IfExpr, b *ir.Block) value.Value {
	fn := b.Parent
	cond := c.emitExpr(v.Cond, b)
	thenB := fn.NewBlock("if.then")
	elseB := fn.NewBlock("if.else")
	mergeB := fn.NewBlock("if.merge")

	cmp := b.NewICmp(irenum.IPredNE, cond, constant.NewInt(irtypes.I1, 0))
	b.NewCondBr(cmp, thenB, elseB)

	c.emitBlock(v.Then, thenB)
	if !blockTerminated(thenB) {
		thenB.NewBr(mergeB)
	}

	cur := elseB
	for _, clause := range v.Elif {
		nextB := fn.NewBlock("if.elif")
		bodyB := fn.NewBlock("if.elif.body")
		ccond := c.emitExpr(clause.Cond, cur)
		ccmp := cur.NewICmp(irenum.IPredNE, ccond, constant.NewInt(irtypes.I1, 0))
		cur.NewCondBr(ccmp, bodyB, nextB)
		c.emitBlock(clause.Body, bodyB)
		if !blockTerminated(bodyB) {
			bodyB.NewBr(mergeB)
		}
		cur = nextB
	}
	if v.Else != nil {
		c.emitBlock(v.Else, cur)
	}
	if !blockTerminated(cur) {
		cur.NewBr(mergeB)
	}

	return nil // if-as-statement; if-as-expression value threading is a future extension
}

// emitMatch lowers a match expression to a decision tree: each arm
// gets its own block, bindAndTestPattern emits the tag test (and binds
// any pattern variables) into the predecessor block, and control falls
// through to the next arm's test on a mismatch. Exhaustiveness is
// sema's job (inferMatch's NotExhaustive check); the final fallthrough
// here just needs a terminator, not a runtime check.
func (c *ctx) emitMatch(v ast.MatchExpr, b *ir.Block) value.Value {
	fn := b.Parent
	subject := c.emitExpr(v.Subject, b)
	mergeB := fn.NewBlock("match.merge")

	cur := b
	for _, arm := range v.Arms {
		armB := fn.NewBlock("match.arm")
		nextB := fn.NewBlock("match.next")

		c.push()
		cond := c.bindAndTestPattern(arm.Pattern, subject, cur)
		if arm.Guard != nil {
			gcond := c.emitExpr(arm.Guard, cur)
			if cond != nil {
				cond = cur.NewAnd(cond, gcond)
			} else {
				cond = gcond
			}
		}
		if cond == nil {
			cur.NewBr(armB)
		} else {
			cur.NewCondBr(cond, armB, nextB)
		}

		if arm.Expr != nil {
			c.emitExpr(arm.Expr, armB)
		} else {
			c.emitBlock(arm.Body, armB)
		}
		c.pop()
		if !blockTerminated(armB) {
			armB.NewBr(mergeB)
		}
		cur = nextB
	}
	if !blockTerminated(cur) {
		cur.NewBr(mergeB)
	}

	return nil // match-as-statement; value threading is the same future extension noted on emitIf
}

// bindAndTestPattern binds any names p introduces into the current
// scope and returns the i1 condition that must hold for subject to
// match p, or nil when p always matches (wildcard/plain binding).
func (c *ctx) bindAndTestPattern(p ast.Pattern, subject value.Value, b *ir.Block) value.Value {
	switch v := p.(type) {
	case ast.WildcardPattern:
		return nil
	case ast.BindingPattern:
		c.define(v.Name.Name, llvmValue{subject})
		return nil
	case ast.LiteralPattern:
		lit := c.emitLiteral(v.Literal, b)
		return b.NewICmp(irenum.IPredEQ, subject, lit)
	case ast.VariantPattern:
		return c.testVariantPattern(v, subject, b)
	case ast.StructPattern:
		return c.testStructPattern(v, subject, b)
	default:
		return nil
	}
}

func (c *ctx) testVariantPattern(v ast.VariantPattern, subject value.Value, b *ir.Block) value.Value {
	_, variant, ok := c.resolveVariant(v.Enum.Name, v.Variant.Name)
	if !ok {
		panic(fmt.Errorf("irgen: unknown variant %s.%s", v.Enum.Name, v.Variant.Name))
	}
	tag := b.NewCall(c.runtimeFunc("enum.get_tag"), subject)
	cond := value.Value(b.NewICmp(irenum.IPredEQ, tag, constant.NewInt(irtypes.I32, int64(variant.Tag))))
	for i, fp := range v.Fields {
		if i >= len(variant.Fields) {
			break
		}
		fieldVal := c.unboxEnumField(subject, variant.Fields[i].Kind, i, b)
		if sub := c.bindAndTestPattern(fp, fieldVal, b); sub != nil {
			cond = b.NewAnd(cond, sub)
		}
	}
	return cond
}

func (c *ctx) testStructPattern(v ast.StructPattern, subject value.Value, b *ir.Block) value.Value {
	lt, ok := c.lookup(v.Name.Name).(llvmType)
	if !ok {
		panic(fmt.Errorf("irgen: unknown struct %s", v.Name.Name))
	}
	st := lt.Type.(*irtypes.StructType)
	var cond value.Value
	for name, fp := range v.Fields {
		idx, ok := lt.fields[name]
		if !ok {
			continue
		}
		ptr := b.NewGetElementPtr(st, subject, constant.NewInt(irtypes.I32, 0), constant.NewInt(irtypes.I32, int64(idx)))
		fieldVal := b.NewLoad(st.Fields[idx], ptr)
		if sub := c.bindAndTestPattern(fp, fieldVal, b); sub != nil {
			if cond == nil {
				cond = sub
			} else {
				cond = b.NewAnd(cond, sub)
			}
		}
	}
	return cond
}

// emitTry wraps the body in an exception-context push/pop pair,
// reading otter_error_has_error (and the message, when the handler
// binds one) from that context before popping it, and branches to the
// first except clause when the body raised — the thread-local
// flag-based model spec §6.3/§7 describes, with no DWARF unwinding
// involved. The except clause's pattern is not tested, and any further
// except clauses are not emitted.
func (c *ctx) emitTry(v ast.TryExpr, b *ir.Block) value.Value {
	b.NewCall(c.runtimeFunc("error.push_context"))
	c.emitBlock(v.Body, b)

	if len(v.Handler) == 0 {
		b.NewCall(c.runtimeFunc("error.pop_context"))
		return nil
	}

	fn := b.Parent
	hasErr := b.NewCall(c.runtimeFunc("error.has_error"))
	h := v.Handler[0]
	var msg value.Value
	if h.Binding.Name != "" {
		msg = b.NewCall(c.runtimeFunc("error.get_message"))
	}
	b.NewCall(c.runtimeFunc("error.pop_context"))
	handleB := fn.NewBlock("try.handle")
	doneB := fn.NewBlock("try.done")
	cmp := b.NewICmp(irenum.IPredNE, hasErr, constant.NewInt(irtypes.I1, 0))
	b.NewCondBr(cmp, handleB, doneB)

	c.push()
	if msg != nil {
		c.define(h.Binding.Name, llvmValue{msg})
	}
	c.emitBlock(h.Body, handleB)
	c.pop()
	if !blockTerminated(handleB) {
		handleB.NewBr(doneB)
	}

	if v.Finally != nil {
		c.emitBlock(v.Finally, doneB)
	}
	return nil
}
