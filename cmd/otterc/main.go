package main

import (
	"fmt"
	"io/ioutil"
	"log"
	"os"
	"os/exec"
	"strings"

	"github.com/alecthomas/repr"
	"github.com/urfave/cli/v2"
	"github.com/ztrue/tracerr"

	"github.com/otterlang/otterc/internal/config"
	"github.com/otterlang/otterc/internal/diag"
	"github.com/otterlang/otterc/internal/irgen/runtimeabi"
	"github.com/otterlang/otterc/internal/pipeline"
	"github.com/otterlang/otterc/internal/typeinfo"
)

func printDiagnostics(bag *diag.Bag) {
	for _, d := range bag.Diagnostics() {
		fmt.Fprintln(os.Stderr, d.String())
	}
}

func main() {
	app := &cli.App{
		Name:  "otterc",
		Usage: "the OtterLang compiler",
		ExitErrHandler: func(c *cli.Context, err error) {
			log.Fatalf("otterc: %v", err)
		},
		Commands: []*cli.Command{
			{
				Name:  "init",
				Usage: "scaffold an otter.yaml manifest in the current directory",
				Action: func(c *cli.Context) error {
					name := c.Args().First()
					if name == "" {
						return fmt.Errorf("init requires a package name")
					}
					manifest := config.DefaultManifest(name)
					if err := manifest.Save("otter.yaml"); err != nil {
						return err
					}
					fmt.Printf("wrote otter.yaml for package %q\n", name)
					return nil
				},
			},
			{
				Name:  "build",
				Usage: "compile a module to a native or wasm binary",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "output"},
					&cli.StringFlag{Name: "target", Usage: "target triple, e.g. x86_64-unknown-linux-gnu"},
					&cli.BoolFlag{Name: "dump-ir", Value: false},
					&cli.BoolFlag{Name: "dump-ast", Value: false},
					&cli.BoolFlag{Name: "emit-timing", Value: false},
					&cli.IntFlag{Name: "opt", Value: 1, Usage: "0=none, 1=default, 2=aggressive"},
				},
				Action: runBuild,
			},
			{
				Name:  "run",
				Usage: "compile and immediately execute a module",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "target"},
				},
				Action: runRun,
			},
			{
				Name:  "typeinfo",
				Usage: "dump the embedded function signature table from a built artifact",
				Action: func(c *cli.Context) error {
					file := c.Args().Get(0)
					if file == "" {
						return fmt.Errorf("typeinfo requires a built artifact path")
					}
					info, err := typeinfo.ReadFromArtifact(file)
					if err != nil {
						return err
					}
					repr.Println(info)
					return nil
				},
			},
		},
	}
	if err := app.Run(os.Args); err != nil {
		tracerr.PrintSourceColor(tracerr.Wrap(err))
		os.Exit(1)
	}
}

func loadManifest() (*config.Manifest, error) {
	m, err := config.LoadManifest("otter.yaml")
	if err != nil {
		return nil, fmt.Errorf("reading otter.yaml: %w (did you run `otterc init`?)", err)
	}
	return m, nil
}

func resolveTarget(flagValue string, manifest *config.Manifest) (config.TargetTriple, error) {
	if flagValue != "" {
		return config.ParseTriple(flagValue)
	}
	if manifest.Target != "" {
		return config.ParseTriple(manifest.Target)
	}
	return config.Native(), nil
}

func compileEntry(manifest *config.Manifest, target config.TargetTriple, opt config.OptLevel) (*pipeline.Result, error) {
	entry := manifest.Entry
	if entry == "" {
		entry = manifest.Package + ".otter"
	}
	f, err := os.Open(entry)
	if err != nil {
		return nil, fmt.Errorf("opening entry module %q: %w", entry, err)
	}
	defer f.Close()

	opts := config.CodegenOptions{
		EmitIR:   true,
		OptLevel: opt,
		Target:   target,
	}
	return pipeline.Compile(f, entry, opts)
}

func runBuild(c *cli.Context) error {
	manifest, err := loadManifest()
	if err != nil {
		return err
	}

	target, err := resolveTarget(c.String("target"), manifest)
	if err != nil {
		return err
	}

	result, err := compileEntry(manifest, target, config.OptLevel(c.Int("opt")))
	if err != nil {
		if result != nil && result.Diags != nil {
			printDiagnostics(result.Diags)
		}
		return err
	}

	if c.Bool("emit-timing") {
		fmt.Fprintln(os.Stderr, result.TimingLog)
	}

	ir := result.Module.String()
	if c.Bool("dump-ir") {
		fmt.Println(ir)
		return nil
	}

	out := c.String("output")
	if out == "" {
		out = manifest.Package
	}

	return linkArtifact(ir, out, target, manifest.ForceImport)
}

func runRun(c *cli.Context) error {
	manifest, err := loadManifest()
	if err != nil {
		return err
	}
	target, err := resolveTarget(c.String("target"), manifest)
	if err != nil {
		return err
	}
	result, err := compileEntry(manifest, target, config.OptDefault)
	if err != nil {
		if result != nil && result.Diags != nil {
			printDiagnostics(result.Diags)
		}
		return err
	}

	tmpBin, err := ioutil.TempFile("", "otter-run-*")
	if err != nil {
		return err
	}
	tmpBin.Close()
	defer os.Remove(tmpBin.Name())

	if err := linkArtifact(result.Module.String(), tmpBin.Name(), target, manifest.ForceImport); err != nil {
		return err
	}

	cmd := exec.Command(tmpBin.Name())
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

// linkArtifact writes ir and the target's embedded runtime ABI source
// to temp files and invokes the target's C compiler to link them,
// generalizing the teacher's inline clang invocation in build's Action.
func linkArtifact(ir string, out string, target config.TargetTriple, forceImport []string) error {
	irFile, err := ioutil.TempFile("", "otter-*.ll")
	if err != nil {
		return err
	}
	defer os.Remove(irFile.Name())
	if _, err := irFile.WriteString(ir); err != nil {
		return err
	}
	irFile.Close()

	runtimeSrc, err := runtimeabi.SourceFor(target.RuntimeVariant())
	if err != nil {
		return err
	}
	runtimeFile, err := ioutil.TempFile("", "otter-runtime-*.c")
	if err != nil {
		return err
	}
	defer os.Remove(runtimeFile.Name())
	if _, err := runtimeFile.Write(runtimeSrc); err != nil {
		return err
	}
	runtimeFile.Close()

	cc := target.CCompiler()
	cmd := exec.Command(cc, "-O1", "-o", out, irFile.Name(), runtimeFile.Name())
	cmd.Args = append(cmd.Args, target.LinkerFlags()...)
	cmd.Args = append(cmd.Args, forceImport...)

	if !target.IsWasm() {
		cmd.Args = append(cmd.Args, "-Wl,-e,_otter_main")
	}

	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("linking with %s: %w", strings.Join(cmd.Args, " "), err)
	}
	return nil
}
