package codec

import (
	"go.uber.org/zap"

	"github.com/wippyai/igbinary/class"
	"github.com/wippyai/igbinary/errors"
	"github.com/wippyai/igbinary/wire"
)

// Default limits.
const (
	DefaultMaxDepth   = 4096
	DefaultMaxPayload = wire.DefaultMaxPayload
)

// Options configures an Encoder or Decoder. Options are copied at
// construction and never mutated afterwards.
type Options struct {
	// Classes resolves class names to lifecycle hooks. Nil means no class
	// has hooks and every decoded object is a generic property bag.
	Classes *class.Registry
	// Autoloader is consulted once per unknown class name during decode.
	Autoloader class.Autoloader
	// Logger overrides the package logger for calls made with these options.
	Logger *zap.Logger
	// CompactStrings writes repeated strings as string table references.
	CompactStrings bool
	// Compression selects the body compression used by the encoder.
	Compression wire.Compression
	// MaxDepth bounds composite nesting on both encode and decode.
	MaxDepth int
	// MaxPayload bounds the decompressed body size accepted by the decoder.
	MaxPayload int
}

// DefaultOptions returns the options used when none are given.
func DefaultOptions() Options {
	return Options{
		CompactStrings: true,
		Compression:    wire.CompressionNone,
		MaxDepth:       DefaultMaxDepth,
		MaxPayload:     DefaultMaxPayload,
	}
}

// Validate reports options that cannot be used.
func (o *Options) Validate() error {
	if o.MaxDepth <= 0 {
		return errors.InvalidInput(errors.PhaseConfig, "max depth must be positive")
	}
	if o.MaxPayload <= 0 {
		return errors.InvalidInput(errors.PhaseConfig, "max payload must be positive")
	}
	switch o.Compression {
	case wire.CompressionNone, wire.CompressionZstd, wire.CompressionLZ4:
	default:
		return errors.InvalidInput(errors.PhaseConfig, "unknown compression "+o.Compression.String())
	}
	return nil
}

func (o *Options) logger() *zap.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return Logger()
}

// Option modifies Options.
type Option func(*Options)

// WithClasses sets the class registry.
func WithClasses(r *class.Registry) Option {
	return func(o *Options) { o.Classes = r }
}

// WithAutoloader sets the autoloader consulted for unknown classes.
func WithAutoloader(a class.Autoloader) Option {
	return func(o *Options) { o.Autoloader = a }
}

// WithLogger sets a per-codec logger.
func WithLogger(l *zap.Logger) Option {
	return func(o *Options) { o.Logger = l }
}

// WithCompactStrings enables or disables string table references.
func WithCompactStrings(on bool) Option {
	return func(o *Options) { o.CompactStrings = on }
}

// WithCompression sets the body compression.
func WithCompression(c wire.Compression) Option {
	return func(o *Options) { o.Compression = c }
}

// WithMaxDepth sets the nesting limit.
func WithMaxDepth(n int) Option {
	return func(o *Options) { o.MaxDepth = n }
}

// WithMaxPayload sets the decompressed body size limit.
func WithMaxPayload(n int) Option {
	return func(o *Options) { o.MaxPayload = n }
}

func buildOptions(opts []Option) Options {
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
