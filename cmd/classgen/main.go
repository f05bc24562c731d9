package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/wippyai/classfile/classdef"
	"github.com/wippyai/classfile/jvm"
)

func main() {
	var (
		defFile     = flag.String("def", "", "Path to TOML class definition")
		sample      = flag.String("sample", "", "Built-in sample to build ("+strings.Join(classdef.SampleNames(), ", ")+")")
		outDir      = flag.String("o", ".", "Output directory")
		printDef    = flag.Bool("print-def", false, "Print the definition as TOML and exit")
		interactive = flag.Bool("i", false, "Interactive mode with TUI")
		verbose     = flag.Bool("v", false, "Debug logging")
	)
	flag.Parse()

	if (*defFile == "") == (*sample == "") {
		fmt.Fprintln(os.Stderr, "Usage: classgen -def <class.toml> [-o dir] [-v]")
		fmt.Fprintln(os.Stderr, "       classgen -sample <name> [-o dir] [-v]")
		fmt.Fprintln(os.Stderr, "       classgen -def <class.toml> -i  (interactive mode)")
		fmt.Fprintln(os.Stderr, "       classgen -sample <name> -print-def")
		os.Exit(1)
	}

	logger, err := newLogger(*verbose)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()
	jvm.SetLogger(logger)

	def, err := loadDefinition(*defFile, *sample)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if *printDef {
		if err := def.Encode(os.Stdout); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if *interactive {
		if err := runInteractive(def); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := run(def, *outDir, logger); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newLogger(verbose bool) (*zap.Logger, error) {
	if !verbose {
		return zap.NewNop(), nil
	}
	return zap.NewDevelopment()
}

func loadDefinition(defFile, sample string) (*classdef.Class, error) {
	if sample != "" {
		return classdef.Sample(sample)
	}
	return classdef.Load(defFile)
}

func assemble(def *classdef.Class) (*jvm.Assembly, error) {
	cb, err := def.Builder()
	if err != nil {
		return nil, err
	}
	return cb.Assemble()
}

// classPath maps an internal class name to its file under outDir, so
// com/example/Main lands in com/example/Main.class. Names that would leave
// outDir are rejected.
func classPath(outDir, name string) (string, error) {
	if name == "" || strings.HasPrefix(name, "/") || strings.Contains(name, "\\") {
		return "", fmt.Errorf("invalid class name %q", name)
	}
	for _, seg := range strings.Split(name, "/") {
		if seg == "" || seg == "." || seg == ".." {
			return "", fmt.Errorf("invalid class name %q: bad path segment %q", name, seg)
		}
	}
	return filepath.Join(outDir, filepath.FromSlash(name)+".class"), nil
}

func run(def *classdef.Class, outDir string, logger *zap.Logger) error {
	asm, err := assemble(def)
	if err != nil {
		return fmt.Errorf("assemble %s: %w", def.Name, err)
	}

	path, err := classPath(outDir, asm.Name)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	if err := os.WriteFile(path, asm.Bytes, 0o644); err != nil {
		return fmt.Errorf("write class: %w", err)
	}
	logger.Debug("class written", zap.String("path", path), zap.Int("bytes", len(asm.Bytes)))

	fmt.Printf("Class: %s extends %s\n", asm.Name, asm.Super)
	fmt.Printf("Constant pool: %d entries (count %d)\n", len(asm.Entries), asm.PoolCount)
	fmt.Printf("\nMethods:\n")
	for _, m := range asm.Methods {
		fmt.Printf("  %s%s  stack=%d locals=%d code=%d bytes\n",
			m.Name, m.Descriptor, m.MaxStack, m.MaxLocals, m.CodeLength)
	}
	fmt.Printf("\nWrote %s (%d bytes)\n", path, len(asm.Bytes))
	return nil
}
