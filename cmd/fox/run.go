package main

import (
	"fmt"
	"io"
	"os"

	"github.com/foxlang/fox/internal/codegen"
	"github.com/foxlang/fox/internal/diag"
	"github.com/foxlang/fox/internal/lexer"
	"github.com/foxlang/fox/internal/parser"
	"github.com/foxlang/fox/internal/registry"
	"github.com/foxlang/fox/internal/typecheck"
	"github.com/foxlang/fox/internal/vm"
)

var formatter = diag.NewFormatter()

// runFile drives filename through the full pipeline and executes its "main" function,
// forwarding print/puts output to out. Any compile-time diagnostics
// are printed to stderr and abort the run; a VM-level PanicError is
// formatted the same way.
func runFile(filename string, out io.Writer) error {
	src, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("reading %s: %w", filename, err)
	}

	if _, lexErrs := lexer.Tokenize(string(src), filename); len(lexErrs) > 0 {
		for _, e := range lexErrs {
			formatter.Format(e.ToDiagnostic())
		}
		return fmt.Errorf("lexing failed with %d error(s)", len(lexErrs))
	}

	p := parser.New(string(src), filename)
	file := p.ParseFile()
	if errs := p.Errors(); len(errs) > 0 {
		for _, e := range errs {
			formatter.Format(e.ToDiagnostic())
		}
		return fmt.Errorf("parsing failed with %d error(s)", len(errs))
	}

	reg := registry.New()
	checker := typecheck.NewChecker(reg, filename)
	prog := checker.CheckFile(file)
	if errs := checker.Errors(); len(errs) > 0 {
		for _, e := range errs {
			formatter.Format(e)
		}
		return fmt.Errorf("type checking failed with %d error(s)", len(errs))
	}

	gen := codegen.NewGenerator(reg)
	mod, err := gen.Compile(prog)
	if err != nil {
		return fmt.Errorf("compiling: %w", err)
	}

	if dumpBytecode {
		disassembleModule(reg, mod)
	}

	opts := []vm.Option{vm.WithOutput(out)}
	if traceVM {
		opts = append(opts, vm.WithTrace(true))
	}
	if err := vm.RunFuncName(reg, mod, "main", opts...); err != nil {
		if pe, ok := err.(*vm.PanicError); ok {
			formatter.Format(pe.Diagnostic)
		}
		return err
	}
	return nil
}
