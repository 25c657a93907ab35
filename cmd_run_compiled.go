package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"marmot/compiler"
	"marmot/vm"
)

// runCompiledCmd executes a source file on the bytecode engine.
type runCompiledCmd struct{}

func (*runCompiledCmd) Name() string     { return "crun" }
func (*runCompiledCmd) Synopsis() string { return "Execute a source file on the bytecode engine" }
func (*runCompiledCmd) Usage() string {
	return `crun <file>:
  Compile a source file to bytecode and execute it on the VM.
`
}
func (*runCompiledCmd) SetFlags(f *flag.FlagSet) {}

func (*runCompiledCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	args := f.Args()
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "no source file provided")
		return subcommands.ExitUsageError
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to read file: %v\n", err)
		return subcommands.ExitFailure
	}

	program := parseSource(os.Stderr, string(data))
	if program == nil {
		return subcommands.ExitFailure
	}

	comp := compiler.New()
	if err := comp.Compile(program); err != nil {
		fmt.Fprintf(os.Stderr, "compilation failed: %v\n", err)
		return subcommands.ExitFailure
	}

	machine := vm.New(comp.Bytecode())
	if err := machine.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "executing bytecode failed: %v\n", err)
		return subcommands.ExitFailure
	}

	return subcommands.ExitSuccess
}
