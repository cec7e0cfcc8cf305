package main

import (
	"fmt"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/wippyai/igbinary/codec"
	"github.com/wippyai/igbinary/export"
	"github.com/wippyai/igbinary/value"
	"github.com/wippyai/igbinary/wire"
)

func encodeFlags(fs *pflag.FlagSet, f *flagValues) {
	fs.StringVar(&f.from, "from", "yaml", "input format: yaml or json")
	fs.StringVar(&f.compress, "compress", "none", "body compression: none, zstd or lz4")
	fs.BoolVar(&f.hex, "hex", false, "write the stream as hex text")
}

func decodeFlags(fs *pflag.FlagSet, f *flagValues) {
	fs.StringVarP(&f.to, "to", "t", "dump", "output format: dump, json, yaml, cbor or diag")
	fs.BoolVar(&f.hex, "hex", false, "read the stream as hex text")
}

func disasmFlags(fs *pflag.FlagSet, f *flagValues) {
	fs.BoolVar(&f.hex, "hex", false, "read the stream as hex text")
}

func inspectFlags(fs *pflag.FlagSet, f *flagValues) {
	fs.BoolVar(&f.hex, "hex", false, "read the stream as hex text")
}

func runEncode(a *app, fs *pflag.FlagSet, f *flagValues) error {
	switch f.from {
	case "yaml", "json":
	default:
		return fmt.Errorf("unknown input format %q", f.from)
	}
	opts, err := f.cfg.options()
	if err != nil {
		return err
	}
	src, err := a.readInput(fs.Args(), false)
	if err != nil {
		return err
	}

	// JSON is a subset of YAML, so one reader serves both.
	v, err := export.FromYAML(src)
	if err != nil {
		return err
	}
	data, err := codec.Encode(v, opts...)
	if err != nil {
		return err
	}
	a.log.Debug("encoded stream",
		zap.String("from", f.from),
		zap.String("compression", f.cfg.Compression),
		zap.Int("bytes", len(data)))
	return a.writeBinary(data, f.hex)
}

func (a *app) decodeInput(fs *pflag.FlagSet, f *flagValues) (value.Value, error) {
	opts, err := f.cfg.options()
	if err != nil {
		return nil, err
	}
	data, err := a.readInput(fs.Args(), f.hex)
	if err != nil {
		return nil, err
	}
	v, err := codec.Decode(data, opts...)
	if err != nil {
		return nil, err
	}
	a.log.Debug("decoded stream", zap.Int("bytes", len(data)))
	return v, nil
}

func runDecode(a *app, fs *pflag.FlagSet, f *flagValues) error {
	v, err := a.decodeInput(fs, f)
	if err != nil {
		return err
	}

	switch f.to {
	case "dump":
		return a.writeText(export.Dump(v), "")
	case "json":
		out, err := export.JSON(v)
		if err != nil {
			return err
		}
		return a.writeText(string(out), "json")
	case "yaml":
		out, err := export.YAML(v)
		if err != nil {
			return err
		}
		return a.writeText(string(out), "yaml")
	case "cbor":
		out, err := export.CBOR(v)
		if err != nil {
			return err
		}
		return a.writeBinary(out, false)
	case "diag":
		out, err := export.Diag(v)
		if err != nil {
			return err
		}
		return a.writeText(out+"\n", "")
	}
	return fmt.Errorf("unknown output format %q", f.to)
}

func runDisasm(a *app, fs *pflag.FlagSet, f *flagValues) error {
	data, err := a.readInput(fs.Args(), f.hex)
	if err != nil {
		return err
	}
	l, derr := wire.Disassemble(data)
	if _, err := l.WriteTo(a.stdout); err != nil {
		return err
	}
	if derr != nil {
		a.log.Debug("disassembly stopped early", zap.Int("tokens", len(l.Tokens)))
		return derr
	}
	return nil
}
