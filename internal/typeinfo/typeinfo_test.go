package typeinfo

import (
	"testing"

	"github.com/llir/llvm/ir"
)

func TestEmbedIntoWritesGlobalSymbol(t *testing.T) {
	info := TypeInfo{Functions: map[string]FunctionInfo{
		"add": {Params: []string{"Int", "Int"}, Returns: "Int"},
	}}
	m := ir.NewModule()
	before := len(m.Globals)
	if err := EmbedInto(info, m); err != nil {
		t.Fatalf("EmbedInto() error: %v", err)
	}
	if len(m.Globals) != before+1 {
		t.Fatalf("expected EmbedInto to add exactly one global, got %d -> %d", before, len(m.Globals))
	}
	g := m.Globals[len(m.Globals)-1]
	if !g.Immutable {
		t.Errorf("expected the embedded typeinfo global to be immutable")
	}
}
