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

	"marmot/interpreter"
	"marmot/object"
)

// replCmd starts an interactive session on the tree-walking engine.
type replCmd struct{}

func (*replCmd) Name() string     { return "repl" }
func (*replCmd) Synopsis() string { return "Start a REPL on the tree-walking engine" }
func (*replCmd) Usage() string {
	return `repl:
  Start an interactive session evaluated by the tree-walking engine.
`
}
func (*replCmd) SetFlags(f *flag.FlagSet) {}

func (*replCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	printBanner(os.Stdout, "tree-walking")

	rl, err := readline.New(prompt)
	if err != nil {
		redColor.Fprintf(os.Stderr, "failed to initialise line editor: %v\n", err)
		return subcommands.ExitFailure
	}
	defer rl.Close()

	// the environment survives across lines so bindings accumulate
	env := object.MakeEnvironment()
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

		result := interpreter.Eval(program, env)
		if result == nil {
			continue
		}
		if object.IsError(result) {
			redColor.Fprintln(os.Stdout, result.Inspect())
			continue
		}
		fmt.Println(result.Inspect())
	}
}
