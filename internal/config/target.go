// Package config holds target-triple and codegen configuration,
// ported from the original implementation's otterc_config crate
// (see DESIGN.md) to the Go side of the compiler.
package config

import (
	"fmt"
	"runtime"
	"strings"
)

// TargetTriple identifies a cross-compilation target in the usual
// LLVM arch-vendor-os[-env] shape.
type TargetTriple struct {
	Arch      string
	Vendor    string
	OS        string
	OSVersion string
	Env       string
}

func ParseTriple(triple string) (TargetTriple, error) {
	parts := strings.Split(triple, "-")
	if len(parts) < 3 {
		return TargetTriple{}, fmt.Errorf("invalid target triple %q", triple)
	}
	arch := parts[0]
	if arch == "arm64" {
		arch = "aarch64"
	}
	vendor := parts[1]
	rawOS := parts[2]

	splitIdx := len(rawOS)
	for i, c := range rawOS {
		if c >= '0' && c <= '9' || c == '.' {
			splitIdx = i
			break
		}
	}
	osBase, osSuffix := rawOS[:splitIdx], rawOS[splitIdx:]
	os := rawOS
	if osBase != "" {
		os = osBase
	}

	var env string
	if len(parts) > 3 {
		env = strings.Join(parts[3:], "-")
	}

	return TargetTriple{Arch: arch, Vendor: vendor, OS: os, OSVersion: osSuffix, Env: env}, nil
}

func (t TargetTriple) String() string {
	os := t.OS + t.OSVersion
	if t.Env != "" {
		return fmt.Sprintf("%s-%s-%s-%s", t.Arch, t.Vendor, os, t.Env)
	}
	return fmt.Sprintf("%s-%s-%s", t.Arch, t.Vendor, os)
}

func (t TargetTriple) IsWasm() bool     { return t.Arch == "wasm32" || t.Arch == "wasm64" }
func (t TargetTriple) IsEmbedded() bool { return t.OS == "none" || t.OS == "elf" }
func (t TargetTriple) IsWindows() bool  { return t.OS == "windows" }
func (t TargetTriple) IsUnix() bool {
	switch t.OS {
	case "linux", "darwin", "freebsd", "openbsd", "netbsd":
		return true
	}
	return false
}

func (t TargetTriple) CCompiler() string {
	if t.IsWasm() || t.IsWindows() {
		return "clang"
	}
	return "cc"
}

func (t TargetTriple) Linker() string {
	if t.IsWasm() {
		return "wasm-ld"
	}
	if t.IsWindows() {
		return "clang"
	}
	return "cc"
}

func (t TargetTriple) LinkerFlags() []string {
	var flags []string
	switch {
	case t.IsWasm():
		flags = append(flags, "--no-entry", "--export-dynamic")
		if t.OS == "wasi" {
			flags = append(flags, "--allow-undefined")
		}
	case t.IsWindows():
		flags = append(flags, "-Wl,/SUBSYSTEM:CONSOLE")
	case t.IsEmbedded():
		flags = append(flags, "-nostdlib")
	}
	if t.OS == "darwin" {
		flags = append(flags, "-framework", "CoreFoundation", "-framework", "IOKit")
	}
	return flags
}

// RuntimeVariant names the runtimeabi/csrc translation unit to link
// against for this target (§11.2 of SPEC_FULL.md).
func (t TargetTriple) RuntimeVariant() string {
	switch {
	case t.IsWasm():
		return "wasm"
	case t.IsEmbedded():
		return "embedded"
	default:
		return "standard"
	}
}

// Native detects the host's target triple using Go's runtime package
// (the original implementation asks LLVM for this; Go's own
// GOARCH/GOOS is the idiomatic local substitute).
func Native() TargetTriple {
	arch := runtime.GOARCH
	switch arch {
	case "amd64":
		arch = "x86_64"
	case "arm64":
		arch = "aarch64"
	}
	switch runtime.GOOS {
	case "darwin":
		return TargetTriple{Arch: arch, Vendor: "apple", OS: "darwin", OSVersion: "11.0"}
	case "windows":
		return TargetTriple{Arch: arch, Vendor: "pc", OS: "windows", Env: "msvc"}
	default:
		return TargetTriple{Arch: arch, Vendor: "unknown", OS: runtime.GOOS, Env: "gnu"}
	}
}

var (
	Wasm32UnknownUnknown = TargetTriple{Arch: "wasm32", Vendor: "unknown", OS: "unknown"}
	Wasm32WASI           = TargetTriple{Arch: "wasm32", Vendor: "unknown", OS: "wasi"}
	ThumbV7EMNoneEABI     = TargetTriple{Arch: "thumbv7em", Vendor: "none", OS: "none", Env: "eabi"}
)
