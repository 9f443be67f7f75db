package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/chzyer/readline"
	"github.com/mattn/go-isatty"
	"github.com/urfave/cli/v3"

	"github.com/Iansi36283/monty/engine"
	"github.com/Iansi36283/monty/vm"
)

var replCommand = &cli.Command{
	Name:      "repl",
	Usage:     "Step through a pre-compiled program, answering each Snapshot by hand",
	ArgsUsage: "<program.json>",
	Action:    replAction,
}

// replAction prompts a human for the resume value of every Snapshot,
// mirroring cmd/hey's -a interactive shell but one Snapshot at a time rather
// than one statement at a time, since the engine is host-driven, not
// line-driven.
func replAction(ctx context.Context, cmd *cli.Command) error {
	path := cmd.Args().First()
	if path == "" {
		return fmt.Errorf("usage: monty repl <program.json>")
	}
	prog, err := loadProgram(path)
	if err != nil {
		return err
	}
	co, err := prog.Code.toCodeObject()
	if err != nil {
		return err
	}
	interp := engine.New(co, prog.ExternalFunctions, optionsFromFlags(cmd)...)

	readLine, closeFn := newLineReader()
	defer closeFn()

	state, err := interp.Start()
	if err != nil {
		return err
	}
	for {
		switch s := state.(type) {
		case *vm.Complete:
			fmt.Printf("=> %v\n", vm.ToHost(interp.Registry(), s.Output))
			return nil
		case *vm.Snapshot:
			reg := interp.Registry()
			kind := "external"
			if s.IsOSFunction {
				kind = "os"
			}
			fmt.Printf("[%s call] %s(args=%v, kwargs=%v)\n", kind, s.FunctionName,
				vm.ToHost(reg, s.Args), vm.ToHostDict(reg, reg.Dict(s.Kwargs)))
			line, err := readLine("resume> ")
			if err != nil {
				return err
			}
			var resumeValue interface{}
			if err := json.Unmarshal([]byte(line), &resumeValue); err != nil {
				fmt.Printf("could not parse %q as JSON, resuming with null: %v\n", line, err)
			}
			state, err = s.Resume(resumeValue)
			if err != nil {
				return err
			}
		}
	}
}

// newLineReader picks readline when stdin is a real terminal (the same
// isatty check the teacher's interactive-mode flag would gate on), falling
// back to a plain bufio.Scanner otherwise so piped/scripted repl sessions
// still work.
func newLineReader() (read func(prompt string) (string, error), closeFn func()) {
	if isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd()) {
		rl, err := readline.New("resume> ")
		if err == nil {
			return func(prompt string) (string, error) {
					rl.SetPrompt(prompt)
					return rl.Readline()
				}, func() { rl.Close() }
		}
	}
	scanner := bufio.NewScanner(os.Stdin)
	return func(prompt string) (string, error) {
			fmt.Print(prompt)
			if !scanner.Scan() {
				if err := scanner.Err(); err != nil {
					return "", err
				}
				return "", readline.ErrInterrupt
			}
			return scanner.Text(), nil
		}, func() {}
}
