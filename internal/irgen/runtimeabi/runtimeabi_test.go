package runtimeabi

import "testing"

func TestSourceForKnownVariants(t *testing.T) {
	for _, variant := range []string{"standard", "embedded", "wasm"} {
		src, err := SourceFor(variant)
		if err != nil {
			t.Fatalf("SourceFor(%q) error: %v", variant, err)
		}
		if len(src) == 0 {
			t.Errorf("SourceFor(%q) returned empty source", variant)
		}
	}
}

func TestSourceForUnknownVariant(t *testing.T) {
	if _, err := SourceFor("msp430"); err == nil {
		t.Fatalf("expected an error for an unknown runtime variant")
	}
}
