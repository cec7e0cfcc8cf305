// igbinary encodes, decodes and inspects igbinary streams from the command
// line.
//
//	igbinary encode  [flags] [FILE]   YAML or JSON in, stream out
//	igbinary decode  [flags] [FILE]   stream in, dump/json/yaml/cbor/diag out
//	igbinary disasm  [flags] [FILE]   tag-by-tag listing of a stream
//	igbinary inspect [flags] [FILE]   interactive tree browser
//
// FILE defaults to standard input.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/wippyai/igbinary/codec"
)

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// app carries the streams and logger shared by every subcommand.
type app struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
	log    *zap.Logger
}

type command struct {
	run   func(a *app, fs *pflag.FlagSet, f *flagValues) error
	flags func(fs *pflag.FlagSet, f *flagValues)
	name  string
	usage string
}

var commands = []command{
	{name: "encode", usage: "encode YAML or JSON into a stream", flags: encodeFlags, run: runEncode},
	{name: "decode", usage: "decode a stream into a readable format", flags: decodeFlags, run: runDecode},
	{name: "disasm", usage: "list every tag of a stream", flags: disasmFlags, run: runDisasm},
	{name: "inspect", usage: "browse a decoded stream interactively", flags: inspectFlags, run: runInspect},
}

func lookupCommand(name string) (*command, bool) {
	for i := range commands {
		if commands[i].name == name {
			return &commands[i], true
		}
	}
	return nil, false
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	if len(args) == 0 || args[0] == "-h" || args[0] == "--help" || args[0] == "help" {
		printUsage(stderr)
		if len(args) == 0 {
			return errors.New("no command given")
		}
		return pflag.ErrHelp
	}

	cmd, ok := lookupCommand(args[0])
	if !ok {
		printUsage(stderr)
		return fmt.Errorf("unknown command %q", args[0])
	}

	fs := pflag.NewFlagSet("igbinary "+cmd.name, pflag.ContinueOnError)
	fs.SetOutput(stderr)
	g := addGlobalFlags(fs)
	cmd.flags(fs, g)
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: igbinary %s [flags] [FILE]\n\n%s.\n\nFlags:\n", cmd.name, cmd.usage)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args[1:]); err != nil {
		return err
	}
	if fs.NArg() > 1 {
		return fmt.Errorf("%s takes at most one input file", cmd.name)
	}

	cfg, err := loadConfig(g.config)
	if err != nil {
		return err
	}
	cfg.override(fs, g)

	log, err := newLogger(cfg.LogLevel, stderr)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()
	codec.SetLogger(log)

	a := &app{stdin: stdin, stdout: stdout, stderr: stderr, log: log.Named(cmd.name)}
	g.cfg = cfg
	return cmd.run(a, fs, g)
}

func printUsage(w io.Writer) {
	fmt.Fprintf(w, "Usage: igbinary <command> [flags] [FILE]\n\nCommands:\n")
	for _, c := range commands {
		fmt.Fprintf(w, "  %-8s %s\n", c.name, c.usage)
	}
	fmt.Fprintf(w, "\nRun 'igbinary <command> --help' for the flags of a command.\n")
}
