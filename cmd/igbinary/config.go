package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	"github.com/wippyai/igbinary/codec"
	"github.com/wippyai/igbinary/wire"
)

// config is the optional configuration file. Flags given on the command line
// win over file values.
type config struct {
	CompactStrings *bool  `yaml:"compact_strings" json:"compact_strings"`
	LogLevel       string `yaml:"log_level" json:"log_level"`
	Compression    string `yaml:"compression" json:"compression"`
	MaxDepth       int    `yaml:"max_depth" json:"max_depth"`
	MaxPayload     int    `yaml:"max_payload" json:"max_payload"`
}

// flagValues holds every flag a subcommand may register. Flags common to
// all subcommands are added by addGlobalFlags.
type flagValues struct {
	cfg        *config
	config     string
	logLevel   string
	compress   string
	from       string
	to         string
	maxDepth   int
	maxPayload int
	noCompact  bool
	hex        bool
}

func addGlobalFlags(fs *pflag.FlagSet) *flagValues {
	g := &flagValues{}
	fs.StringVar(&g.config, "config", "", "configuration file (.yaml, .yml, .json or .jsonc)")
	fs.StringVar(&g.logLevel, "log-level", "warn", "log level: debug, info, warn, error")
	fs.IntVar(&g.maxDepth, "max-depth", codec.DefaultMaxDepth, "maximum nesting depth")
	fs.IntVar(&g.maxPayload, "max-payload", codec.DefaultMaxPayload, "maximum decompressed body size in bytes")
	fs.BoolVar(&g.noCompact, "no-compact-strings", false, "write every string inline")
	return g
}

// loadConfig reads path, choosing the parser by extension. JSON files may
// carry comments and trailing commas. An empty path yields defaults.
func loadConfig(path string) (*config, error) {
	cfg := &config{LogLevel: "warn"}
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".jsonc":
		dec := json.NewDecoder(bytes.NewReader(jsonc.ToJSON(data)))
		dec.DisallowUnknownFields()
		if err := dec.Decode(cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	default:
		return nil, fmt.Errorf("config %s: unsupported extension %q", path, filepath.Ext(path))
	}
	return cfg, nil
}

// override applies flags that were set explicitly.
func (c *config) override(fs *pflag.FlagSet, g *flagValues) {
	if fs.Changed("log-level") || c.LogLevel == "" {
		c.LogLevel = g.logLevel
	}
	if fs.Changed("max-depth") || c.MaxDepth == 0 {
		c.MaxDepth = g.maxDepth
	}
	if fs.Changed("max-payload") || c.MaxPayload == 0 {
		c.MaxPayload = g.maxPayload
	}
	if fs.Changed("no-compact-strings") {
		on := !g.noCompact
		c.CompactStrings = &on
	}
	if fs.Changed("compress") {
		c.Compression = g.compress
	}
}

// options turns the merged configuration into codec options.
func (c *config) options() ([]codec.Option, error) {
	comp, err := wire.ParseCompression(c.Compression)
	if err != nil {
		return nil, err
	}
	opts := []codec.Option{
		codec.WithCompression(comp),
		codec.WithMaxDepth(c.MaxDepth),
		codec.WithMaxPayload(c.MaxPayload),
	}
	if c.CompactStrings != nil {
		opts = append(opts, codec.WithCompactStrings(*c.CompactStrings))
	}
	return opts, nil
}
