// Command monty is the reference embedder for the sandboxed Python
// execution engine: a deliberately thin driver, not a full host facade.
// It mirrors cmd/hey's
// urfave/cli/v3 command structure: a `run` subcommand that drives a
// pre-compiled program to completion against real os.* handlers, and a
// `repl` subcommand that prompts a human for each Snapshot's resume value.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"
)

func main() {
	app := &cli.Command{
		Name:  "monty",
		Usage: "Reference embedder for the monty sandboxed Python engine",
		Commands: []*cli.Command{
			runCommand,
			replCommand,
		},
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "monty: %v\n", err)
		os.Exit(1)
	}
}
