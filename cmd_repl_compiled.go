package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/chzyer/readline"
	"github.com/google/subcommands"

	"marmot/compiler"
	"marmot/object"
	"marmot/vm"
)

// replCompiledCmd starts an interactive session on the bytecode engine.
// Compiler state (symbol table and constants pool) and the VM's globals
// array are threaded through every line, so global bindings and their
// index spaces stay consistent across the session.
type replCompiledCmd struct {
	disassemble bool
}

func (*replCompiledCmd) Name() string     { return "crepl" }
func (*replCompiledCmd) Synopsis() string { return "Start a REPL on the bytecode engine" }
func (*replCompiledCmd) Usage() string {
	return `crepl [-disassemble]:
  Start an interactive session compiled to bytecode and run on the VM.
`
}

func (cmd *replCompiledCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&cmd.disassemble, "disassemble", false, "print each line's bytecode before running it")
	f.BoolVar(&cmd.disassemble, "d", false, "shorthand for disassemble")
}

func (cmd *replCompiledCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	printBanner(os.Stdout, "bytecode")

	rl, err := readline.New(prompt)
	if err != nil {
		redColor.Fprintf(os.Stderr, "failed to initialise line editor: %v\n", err)
		return subcommands.ExitFailure
	}
	defer rl.Close()

	// REPL state: symbol table and constants feed the next compiler,
	// globals feed the next VM
	symbolTable := compiler.MakeSymbolTable()
	for i, builtin := range object.Builtins {
		symbolTable.DefineBuiltin(i, builtin.Name)
	}
	constants := []object.Object{}
	globals := make([]object.Object, vm.GlobalsSize)

	var buffer strings.Builder

	for {
		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			buffer.Reset()
			rl.SetPrompt(prompt)
			continue
		}
		if err == io.EOF {
			return subcommands.ExitSuccess
		}
		if err != nil {
			redColor.Fprintf(os.Stderr, "%v\n", err)
			return subcommands.ExitFailure
		}

		if buffer.Len() > 0 {
			buffer.WriteString("\n")
		}
		buffer.WriteString(line)
		source := buffer.String()

		if strings.TrimSpace(source) == "" {
			buffer.Reset()
			continue
		}
		if !isInputReady(source) {
			rl.SetPrompt(continuationPrompt)
			continue
		}
		buffer.Reset()
		rl.SetPrompt(prompt)

		program := parseSource(os.Stdout, source)
		if program == nil {
			continue
		}

		comp := compiler.NewWithState(symbolTable, constants)
		if err := comp.Compile(program); err != nil {
			redColor.Fprintf(os.Stdout, "compilation failed: %v\n", err)
			continue
		}

		bytecode := comp.Bytecode()
		constants = comp.Constants()

		if cmd.disassemble {
			fmt.Print(bytecode.Instructions.String())
		}

		machine := vm.NewWithGlobalsStore(bytecode, globals)
		if err := machine.Run(); err != nil {
			redColor.Fprintf(os.Stdout, "executing bytecode failed: %v\n", err)
			continue
		}

		fmt.Println(machine.LastPoppedStackElem().Inspect())
	}
}
