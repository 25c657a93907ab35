package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"marmot/compiler"
	"marmot/object"
)

// disasmCmd compiles a source file and prints the disassembled bytecode
// together with the constants pool, without running it.
type disasmCmd struct{}

func (*disasmCmd) Name() string     { return "disasm" }
func (*disasmCmd) Synopsis() string { return "Compile a source file and print its bytecode" }
func (*disasmCmd) Usage() string {
	return `disasm <file>:
  Compile a source file and print the disassembled instructions and the
  constants pool.
`
}
func (*disasmCmd) SetFlags(f *flag.FlagSet) {}

func (*disasmCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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

	bytecode := comp.Bytecode()
	fmt.Print(bytecode.Instructions.String())

	fmt.Println("constants:")
	for i, constant := range bytecode.Constants {
		fmt.Printf("%04d %s\n", i, constant.Inspect())
		if function, ok := constant.(*object.CompiledFunction); ok {
			fmt.Print(compiler.Instructions(function.Instructions).String())
		}
	}

	return subcommands.ExitSuccess
}
