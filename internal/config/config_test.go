package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestManifestSaveAndLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "otter.yaml")

	m := DefaultManifest("demo")
	m.ForceImport = []string{"libm.a"}
	if err := m.Save(path); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	loaded, err := LoadManifest(path)
	if err != nil {
		t.Fatalf("LoadManifest() error: %v", err)
	}
	if loaded.Package != "demo" {
		t.Errorf("expected package %q, got %q", "demo", loaded.Package)
	}
	if len(loaded.ForceImport) != 1 || loaded.ForceImport[0] != "libm.a" {
		t.Errorf("unexpected ForceImport: %v", loaded.ForceImport)
	}
}

func TestLoadManifestMissingFile(t *testing.T) {
	if _, err := LoadManifest(filepath.Join(os.TempDir(), "does-not-exist-otter.yaml")); err == nil {
		t.Errorf("expected an error for a missing manifest file")
	}
}
