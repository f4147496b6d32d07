// Package abiregistry is a table-driven registry of the runtime ABI's
// FFI signatures, grounded on the original implementation's
// otterc_symbol::registry::SymbolRegistry (see DESIGN.md). The IR
// emitter resolves every external call against this registry instead
// of hardcoding one-off function declarations.
package abiregistry

import (
	"fmt"
	"sync"
)

// FfiType is a small closed set mirroring the LLVM types the emitter
// can map a runtime ABI parameter/return to.
type FfiType int

const (
	TVoid FfiType = iota
	TI1
	TI8
	TI32
	TI64
	TF64
	TPtr // i8* — used for strings, arrays, opaque handles
)

func (t FfiType) String() string {
	switch t {
	case TVoid:
		return "void"
	case TI1:
		return "i1"
	case TI8:
		return "i8"
	case TI32:
		return "i32"
	case TI64:
		return "i64"
	case TF64:
		return "double"
	case TPtr:
		return "ptr"
	default:
		return "?"
	}
}

type FfiSignature struct {
	Params  []FfiType
	Returns FfiType
	VarArg  bool
}

type FfiFunction struct {
	Name      string // OtterLang-facing name, e.g. "iter.range.next"
	Symbol    string // linked C symbol, e.g. "otter_iter_range_next"
	Signature FfiSignature
}

// Registry is a process-wide table of FfiFunctions, safe for
// concurrent registration/lookup the way SymbolRegistry is guarded by
// parking_lot::RwLock in the original (DESIGN.md: sync.RWMutex is the
// idiomatic Go substitute, not a missed dependency).
type Registry struct {
	mu    sync.RWMutex
	funcs map[string]FfiFunction
}

func New() *Registry {
	return &Registry{funcs: make(map[string]FfiFunction)}
}

func (r *Registry) Register(f FfiFunction) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.funcs[f.Name] = f
}

func (r *Registry) Resolve(name string) (FfiFunction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.funcs[name]
	if !ok {
		return FfiFunction{}, fmt.Errorf("abiregistry: no such runtime function %q", name)
	}
	return f, nil
}

func (r *Registry) All() []FfiFunction {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]FfiFunction, 0, len(r.funcs))
	for _, f := range r.funcs {
		out = append(out, f)
	}
	return out
}

// Standard builds the registry of every ABI function specified by
// spec.md §6.3 plus the supplemented iterator (§11.4) and enum
// runtime (§11.5) helpers.
func Standard() *Registry {
	r := New()
	reg := func(name, symbol string, sig FfiSignature) {
		r.Register(FfiFunction{Name: name, Symbol: symbol, Signature: sig})
	}

	// exception-context ABI (spec §6.3, §7)
	reg("error.push_context", "otter_error_push_context", FfiSignature{Returns: TVoid})
	reg("error.pop_context", "otter_error_pop_context", FfiSignature{Returns: TVoid})
	reg("error.raise", "otter_error_raise", FfiSignature{Params: []FfiType{TPtr, TI64}, Returns: TVoid})
	reg("error.has_error", "otter_error_has_error", FfiSignature{Returns: TI1})
	reg("error.get_message", "otter_error_get_message", FfiSignature{Returns: TPtr})
	reg("error.clear", "otter_error_clear", FfiSignature{Returns: TVoid})
	reg("error.rethrow", "otter_error_rethrow", FfiSignature{Returns: TVoid})

	// formatting / stdio
	reg("fmt.println", "otter_std_fmt_println", FfiSignature{Params: []FfiType{TPtr, TI64}, Returns: TVoid})
	reg("fmt.eprintln", "otter_std_fmt_eprintln", FfiSignature{Params: []FfiType{TPtr, TI64}, Returns: TVoid})
	reg("fmt.int", "otter_std_fmt_int", FfiSignature{Params: []FfiType{TI64}, Returns: TPtr})
	reg("fmt.float", "otter_std_fmt_float", FfiSignature{Params: []FfiType{TF64}, Returns: TPtr})
	reg("fmt.bool", "otter_std_fmt_bool", FfiSignature{Params: []FfiType{TI1}, Returns: TPtr})
	reg("time.now_ms", "otter_std_time_now_ms", FfiSignature{Returns: TI64})
	reg("str.len", "otter_str_len", FfiSignature{Params: []FfiType{TPtr}, Returns: TI64})
	reg("str.concat", "otter_str_concat", FfiSignature{Params: []FfiType{TPtr, TPtr}, Returns: TPtr})

	// refcounted string/array helpers (§11.6)
	reg("rc.retain", "otter_rc_retain", FfiSignature{Params: []FfiType{TPtr}, Returns: TVoid})
	reg("rc.release", "otter_rc_release", FfiSignature{Params: []FfiType{TPtr}, Returns: TVoid})
	reg("arena.create", "otter_arena_create", FfiSignature{Returns: TPtr})
	reg("arena.alloc", "otter_arena_alloc", FfiSignature{Params: []FfiType{TPtr, TI64}, Returns: TPtr})
	reg("arena.reset", "otter_arena_reset", FfiSignature{Params: []FfiType{TPtr}, Returns: TVoid})
	reg("arena.destroy", "otter_arena_destroy", FfiSignature{Params: []FfiType{TPtr}, Returns: TVoid})

	// boxed enum handle table (§11.5)
	reg("enum.create", "otter_enum_create", FfiSignature{Params: []FfiType{TI32}, Returns: TI64})
	reg("enum.get_tag", "otter_enum_get_tag", FfiSignature{Params: []FfiType{TI64}, Returns: TI32})
	reg("enum.set_i64", "otter_enum_set_i64", FfiSignature{Params: []FfiType{TI64, TI32, TI64}, Returns: TVoid})
	reg("enum.get_i64", "otter_enum_get_i64", FfiSignature{Params: []FfiType{TI64, TI32}, Returns: TI64})
	reg("enum.set_ptr", "otter_enum_set_ptr", FfiSignature{Params: []FfiType{TI64, TI32, TPtr}, Returns: TVoid})
	reg("enum.get_ptr", "otter_enum_get_ptr", FfiSignature{Params: []FfiType{TI64, TI32}, Returns: TPtr})
	reg("enum.free", "otter_enum_free", FfiSignature{Params: []FfiType{TI64}, Returns: TVoid})

	// iterator protocol (§11.4)
	for _, kind := range []string{"range", "float_range", "array", "string"} {
		reg("iter."+kind+".new", "otter_iter_"+kind+"_new", FfiSignature{Params: []FfiType{TI64, TI64}, Returns: TPtr})
		reg("iter."+kind+".has_next", "otter_iter_"+kind+"_has_next", FfiSignature{Params: []FfiType{TPtr}, Returns: TI1})
		reg("iter."+kind+".next", "otter_iter_"+kind+"_next", FfiSignature{Params: []FfiType{TPtr}, Returns: TI64})
		reg("iter."+kind+".free", "otter_iter_"+kind+"_free", FfiSignature{Params: []FfiType{TPtr}, Returns: TVoid})
	}

	return r
}
