package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/subcommands"

	"marmot/compiler"
	"marmot/interpreter"
	"marmot/object"
	"marmot/vm"
)

// The classic benchmark program: naive recursive fibonacci.
const benchmarkProgram = `
let fibonacci = fn(x) {
	if (x == 0) {
		return 0;
	} else {
		if (x == 1) {
			return 1;
		} else {
			fibonacci(x - 1) + fibonacci(x - 2);
		}
	}
};
fibonacci(35);
`

// benchmarkCmd times fibonacci(35) on one or both engines.
type benchmarkCmd struct {
	engine string
}

func (*benchmarkCmd) Name() string     { return "benchmark" }
func (*benchmarkCmd) Synopsis() string { return "Time fibonacci(35) on the execution engines" }
func (*benchmarkCmd) Usage() string {
	return `benchmark [-engine vm|eval|both]:
  Evaluate fibonacci(35) and print the wall-clock duration per engine.
`
}

func (cmd *benchmarkCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&cmd.engine, "engine", "both", "engine to benchmark: vm, eval or both")
}

func (cmd *benchmarkCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	program := parseSource(os.Stderr, benchmarkProgram)
	if program == nil {
		return subcommands.ExitFailure
	}

	if cmd.engine != "vm" && cmd.engine != "eval" && cmd.engine != "both" {
		fmt.Fprintf(os.Stderr, "unknown engine %q\n", cmd.engine)
		return subcommands.ExitUsageError
	}

	if cmd.engine == "vm" || cmd.engine == "both" {
		comp := compiler.New()
		if err := comp.Compile(program); err != nil {
			fmt.Fprintf(os.Stderr, "compilation failed: %v\n", err)
			return subcommands.ExitFailure
		}
		machine := vm.New(comp.Bytecode())

		start := time.Now()
		if err := machine.Run(); err != nil {
			fmt.Fprintf(os.Stderr, "executing bytecode failed: %v\n", err)
			return subcommands.ExitFailure
		}
		duration := time.Since(start)

		fmt.Printf("engine=vm result=%s duration=%s\n", machine.LastPoppedStackElem().Inspect(), duration)
	}

	if cmd.engine == "eval" || cmd.engine == "both" {
		env := object.MakeEnvironment()

		start := time.Now()
		result := interpreter.Eval(program, env)
		duration := time.Since(start)

		if object.IsError(result) {
			fmt.Fprintln(os.Stderr, result.Inspect())
			return subcommands.ExitFailure
		}
		fmt.Printf("engine=eval result=%s duration=%s\n", result.Inspect(), duration)
	}

	return subcommands.ExitSuccess
}
