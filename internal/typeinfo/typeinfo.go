// Package typeinfo embeds and reads back a compiled module's exported
// function signature table, grounded directly on tawago's
// typeinfo.go/reader.go (renamed __tawa_types -> __otter_types).
package typeinfo

import (
	"encoding/json"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"

	"github.com/otterlang/otterc/internal/typeinfo/reader"
)

const GlobalSymbol = "__otter_types"

type FunctionInfo struct {
	Params  []string `json:"params"`
	Returns string   `json:"returns"`
}

type TypeInfo struct {
	Functions map[string]FunctionInfo `json:"functions"`
}

// EmbedInto writes t as a JSON-encoded, NUL-terminated global
// constant so a built artifact can be introspected without the
// source module, the same trick tawago plays with __tawa_types.
func EmbedInto(t TypeInfo, m *ir.Module) error {
	data, err := json.Marshal(t)
	if err != nil {
		return err
	}
	g := m.NewGlobalDef(GlobalSymbol, constant.NewCharArray(append(data, 0)))
	g.Immutable = true
	return nil
}

// ReadFromArtifact dlopen()s a built shared module and reads its
// embedded __otter_types global back out.
func ReadFromArtifact(path string) (TypeInfo, error) {
	raw, err := reader.ReadSymbol(path, GlobalSymbol)
	if err != nil {
		return TypeInfo{}, err
	}
	var t TypeInfo
	err = json.Unmarshal([]byte(raw), &t)
	return t, err
}
