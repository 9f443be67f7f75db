package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/Iansi36283/monty/builtinshost"
	"github.com/Iansi36283/monty/engine"
	"github.com/Iansi36283/monty/vm"
)

var runCommand = &cli.Command{
	Name:      "run",
	Usage:     "Run a pre-compiled monty program to completion",
	ArgsUsage: "<program.json>",
	Flags: []cli.Flag{
		&cli.IntFlag{
			Name:  "max-steps",
			Usage: "Abort with RuntimeError after this many instructions (0 = the default limit of 10,000,000)",
		},
	},
	Action: runAction,
}

func runAction(ctx context.Context, cmd *cli.Command) error {
	path := cmd.Args().First()
	if path == "" {
		return fmt.Errorf("usage: monty run <program.json>")
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

	output, err := engine.Run(interp, osHandler, nil)
	if err != nil {
		return err
	}
	fmt.Println(output)
	return nil
}

// osHandler answers every Path.* and os.getenv Snapshot against the real
// filesystem and environment, the way an embedder that actually wants to
// sandbox host Python against this machine's filesystem would wire it.
func osHandler(name string, args, kwargs interface{}) (interface{}, error) {
	argv, _ := args.([]interface{})
	switch name {
	case "os.getenv":
		key, _ := argv[0].(string)
		def := argv[1]
		if v, ok := os.LookupEnv(key); ok {
			return v, nil
		}
		return def, nil
	case "Path.exists":
		p := hostPathArg(argv)
		_, err := os.Stat(p.String())
		return err == nil, nil
	case "Path.is_file":
		p := hostPathArg(argv)
		info, err := os.Stat(p.String())
		return err == nil && !info.IsDir(), nil
	case "Path.is_dir":
		p := hostPathArg(argv)
		info, err := os.Stat(p.String())
		return err == nil && info.IsDir(), nil
	case "Path.stat":
		p := hostPathArg(argv)
		info, err := os.Stat(p.String())
		if err != nil {
			return nil, builtinshost.HostException{TypeName: "ValueError", Message: err.Error()}
		}
		mtime := float64(info.ModTime().Unix())
		if info.IsDir() {
			return builtinshost.NewDirStat(int64(info.Mode()), mtime), nil
		}
		return builtinshost.NewFileStat(info.Size(), int64(info.Mode()), mtime), nil
	case "Path.read_text":
		p := hostPathArg(argv)
		data, err := os.ReadFile(p.String())
		if err != nil {
			return nil, builtinshost.HostException{TypeName: "ValueError", Message: err.Error()}
		}
		return string(data), nil
	case "Path.read_bytes":
		p := hostPathArg(argv)
		data, err := os.ReadFile(p.String())
		if err != nil {
			return nil, builtinshost.HostException{TypeName: "ValueError", Message: err.Error()}
		}
		return data, nil
	case "Path.write_text":
		p := hostPathArg(argv)
		text, _ := argv[1].(string)
		if err := os.WriteFile(p.String(), []byte(text), 0644); err != nil {
			return nil, builtinshost.HostException{TypeName: "ValueError", Message: err.Error()}
		}
		return nil, nil
	case "Path.write_bytes":
		p := hostPathArg(argv)
		data, _ := argv[1].([]byte)
		if err := os.WriteFile(p.String(), data, 0644); err != nil {
			return nil, builtinshost.HostException{TypeName: "ValueError", Message: err.Error()}
		}
		return nil, nil
	case "Path.iterdir":
		p := hostPathArg(argv)
		entries, err := os.ReadDir(p.String())
		if err != nil {
			return nil, builtinshost.HostException{TypeName: "ValueError", Message: err.Error()}
		}
		out := make([]interface{}, len(entries))
		for i, e := range entries {
			out[i] = builtinshost.HostPath{Absolute: p.Absolute, Parts: append(append([]string{}, p.Parts...), e.Name())}
		}
		return out, nil
	}
	return nil, builtinshost.HostException{TypeName: "NotImplementedError", Message: "OS function '" + name + "' not implemented"}
}

// optionsFromFlags builds the vm.Option set shared by run and repl from the
// -max-steps flag, mirroring the teacher's NewVirtualMachineWithProfiling
// construction knobs exposed as CLI flags.
func optionsFromFlags(cmd *cli.Command) []vm.Option {
	var opts []vm.Option
	if n := cmd.Int("max-steps"); n > 0 {
		opts = append(opts, vm.WithMaxSteps(int(n)))
	}
	return opts
}

func hostPathArg(argv []interface{}) builtinshost.HostPath {
	if len(argv) == 0 {
		return builtinshost.HostPath{Absolute: true}
	}
	p, _ := argv[0].(builtinshost.HostPath)
	return p
}
