package abiregistry

import "testing"

func TestStandardRegistersExceptionContextABI(t *testing.T) {
	r := Standard()
	for _, name := range []string{
		"error.push_context", "error.pop_context", "error.raise",
		"error.has_error", "error.get_message", "error.clear", "error.rethrow",
	} {
		if _, err := r.Resolve(name); err != nil {
			t.Errorf("expected %q to be registered: %v", name, err)
		}
	}
}

func TestStandardRegistersIteratorProtocolForEveryKind(t *testing.T) {
	r := Standard()
	for _, kind := range []string{"range", "float_range", "array", "string"} {
		for _, op := range []string{"new", "has_next", "next", "free"} {
			name := "iter." + kind + "." + op
			if _, err := r.Resolve(name); err != nil {
				t.Errorf("expected %q to be registered: %v", name, err)
			}
		}
	}
}

func TestResolveUnknownNameErrors(t *testing.T) {
	r := New()
	if _, err := r.Resolve("nonexistent"); err == nil {
		t.Errorf("expected an error resolving an unregistered function")
	}
}

func TestRegisterOverwritesSameName(t *testing.T) {
	r := New()
	r.Register(FfiFunction{Name: "x", Symbol: "x_v1", Signature: FfiSignature{Returns: TVoid}})
	r.Register(FfiFunction{Name: "x", Symbol: "x_v2", Signature: FfiSignature{Returns: TVoid}})
	f, err := r.Resolve("x")
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	if f.Symbol != "x_v2" {
		t.Errorf("expected the second registration to win, got symbol %q", f.Symbol)
	}
}

func TestAllReturnsEveryRegisteredFunction(t *testing.T) {
	r := Standard()
	all := r.All()
	if len(all) == 0 {
		t.Fatalf("expected Standard() to register at least one function")
	}
}

func TestFfiTypeStringFormatsAsLLVMTypeNames(t *testing.T) {
	cases := map[FfiType]string{
		TVoid: "void", TI1: "i1", TI8: "i8", TI32: "i32", TI64: "i64", TF64: "double", TPtr: "ptr",
	}
	for ft, want := range cases {
		if got := ft.String(); got != want {
			t.Errorf("FfiType(%d).String() = %q, want %q", ft, got, want)
		}
	}
}
