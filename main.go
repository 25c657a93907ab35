package main

import (
	"context"
	"flag"
	"os"

	"github.com/google/subcommands"
)

func main() {
	subcommands.Register(subcommands.HelpCommand(), "")
	subcommands.Register(subcommands.CommandsCommand(), "")
	subcommands.Register(&replCmd{}, "engines")
	subcommands.Register(&replCompiledCmd{}, "engines")
	subcommands.Register(&runCmd{}, "engines")
	subcommands.Register(&runCompiledCmd{}, "engines")
	subcommands.Register(&disasmCmd{}, "tooling")
	subcommands.Register(&benchmarkCmd{}, "tooling")

	flag.Parse()
	os.Exit(int(subcommands.Execute(context.Background())))
}
