package xapiand

import (
	"log/slog"

	"github.com/YosefMac/Xapiand/engine/local"
)

type options struct {
	opener           Opener
	localOptions     []local.Option
	metricsCollector MetricsCollector
	logger           *Logger
	openConcurrency  int
}

// Option configures a Pool.
type Option func(*options)

// WithOpener replaces the engine used to open shards. The default opens
// local shards with engine/local and connects with engine/remote.
//
// The pool does not close a custom opener.
func WithOpener(o Opener) Option {
	return func(opts *options) {
		opts.opener = o
	}
}

// WithLocalOptions configures the default opener's local engine, e.g.
//
//	xapiand.NewPool(xapiand.WithLocalOptions(
//	    local.WithLockTimeout(5*time.Second),
//	    local.WithCompression(local.CompressionZSTD),
//	))
//
// Ignored when WithOpener is used.
func WithLocalOptions(optFns ...local.Option) Option {
	return func(o *options) {
		o.localOptions = append(o.localOptions, optFns...)
	}
}

// WithOpenConcurrency bounds how many shards of one composite are opened at
// the same time. Default: 4.
func WithOpenConcurrency(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.openConcurrency = n
		}
	}
}

// WithMetricsCollector configures a metrics collector for monitoring operations.
// Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &xapiand.BasicMetricsCollector{}
//	pool := xapiand.NewPool(xapiand.WithMetricsCollector(metrics))
//	// ... use pool ...
//	stats := metrics.GetStats()
//	fmt.Printf("Index: %d, failed opens: %d\n", stats.IndexCount, stats.OpenErrors)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithLogger configures structured logging for operations.
// Pass nil to disable logging.
//
// Example with JSON logging:
//
//	logger := xapiand.NewJSONLogger(slog.LevelInfo)
//	pool := xapiand.NewPool(xapiand.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = NoopLogger()
		}
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		metricsCollector: NoopMetricsCollector{},
		logger:           NewLogger(nil),
		openConcurrency:  4,
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	return o
}
