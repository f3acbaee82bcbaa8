package javaobj

import "go.uber.org/zap"

// DefaultMaxDepth bounds how deeply records may nest before decoding fails
// with ErrDepthExceeded.
const DefaultMaxDepth = 1000

type options struct {
	tracer   Tracer
	maxDepth int
}

// Option configures a Decoder.
type Option func(*options)

// WithTracer reports every type code the decoder reads to t.
func WithTracer(t Tracer) Option {
	return func(o *options) {
		o.tracer = t
	}
}

// WithMaxDepth overrides DefaultMaxDepth. Values below 1 are ignored.
func WithMaxDepth(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.maxDepth = n
		}
	}
}

func newOptions(opts []Option) options {
	o := options{maxDepth: DefaultMaxDepth}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Tracer observes decoding. Trace is called once per type code with the
// current nesting depth and the offset of the type code in the stream.
type Tracer interface {
	Trace(op byte, depth, offset int)
}

// TraceFunc adapts a function to a Tracer.
type TraceFunc func(op byte, depth, offset int)

func (f TraceFunc) Trace(op byte, depth, offset int) { f(op, depth, offset) }

type zapTracer struct {
	logger *zap.Logger
}

// NewZapTracer returns a Tracer that logs each type code at debug level.
func NewZapTracer(logger *zap.Logger) Tracer {
	return zapTracer{logger: logger}
}

func (t zapTracer) Trace(op byte, depth, offset int) {
	t.logger.Debug("opcode",
		zap.String("opcode", OpcodeName(op)),
		zap.Int("depth", depth),
		zap.Int("offset", offset),
	)
}
