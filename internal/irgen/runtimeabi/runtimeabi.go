// Package runtimeabi embeds the C sources implementing OtterLang's
// fixed runtime ABI (spec.md §6.3) so that otterc remains a single
// self-contained binary: no install-relative path lookups are needed
// to find the C sources at build/link time.
package runtimeabi

import (
	_ "embed"
	"fmt"
)

//go:embed csrc/standard.c
var standardSrc []byte

//go:embed csrc/embedded.c
var embeddedSrc []byte

//go:embed csrc/wasm.c
var wasmSrc []byte

// SourceFor returns the embedded C source for the named runtime
// variant, as produced by config.TargetTriple.RuntimeVariant().
func SourceFor(variant string) ([]byte, error) {
	switch variant {
	case "standard":
		return standardSrc, nil
	case "embedded":
		return embeddedSrc, nil
	case "wasm":
		return wasmSrc, nil
	default:
		return nil, fmt.Errorf("runtimeabi: unknown runtime variant %q", variant)
	}
}
