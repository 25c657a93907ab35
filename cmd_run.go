package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"marmot/ast"
	"marmot/interpreter"
	"marmot/object"
)

// runCmd executes a source file on the tree-walking engine.
type runCmd struct {
	dumpAST string
}

func (*runCmd) Name() string     { return "run" }
func (*runCmd) Synopsis() string { return "Execute a source file on the tree-walking engine" }
func (*runCmd) Usage() string {
	return `run [-dump-ast <path>] <file>:
  Execute a source file with the tree-walking engine.
`
}

func (cmd *runCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&cmd.dumpAST, "dump-ast", "", "write the parsed AST as JSON to the given path")
}

func (cmd *runCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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

	if cmd.dumpAST != "" {
		if err := ast.WriteJSONToFile(program, cmd.dumpAST); err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			return subcommands.ExitFailure
		}
	}

	result := interpreter.Eval(program, object.MakeEnvironment())
	if object.IsError(result) {
		fmt.Fprintln(os.Stderr, result.Inspect())
		return subcommands.ExitFailure
	}

	return subcommands.ExitSuccess
}
