// Package testutil provides small test helpers shared across otterc's
// package tests, in the same plain-function style as ThomasRohde-Agent0's
// go/internal/testutil package.
package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// Golden compares got against the contents of testdata/<name>, updating
// the file in place when the UPDATE_GOLDEN environment variable is set.
func Golden(t *testing.T, name string, got string) {
	t.Helper()
	path := filepath.Join("testdata", name)

	if os.Getenv("UPDATE_GOLDEN") != "" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("creating testdata directory: %v", err)
		}
		if err := os.WriteFile(path, []byte(got), 0o644); err != nil {
			t.Fatalf("writing golden file %s: %v", path, err)
		}
		return
	}

	want, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading golden file %s (run with UPDATE_GOLDEN=1 to create it): %v", path, err)
	}
	if string(want) != got {
		t.Errorf("result does not match golden file %s\n--- got ---\n%s\n--- want ---\n%s", path, got, string(want))
	}
}
