package observable

import (
	"context"
	"errors"

	"github.com/AntonStoeckl/hyperdrive-promise-go/drive"
)

// ErrNilContext is returned by WithContext for a nil base context.
var ErrNilContext = errors.New("nil base context supplied")

// Option defines a functional option for configuring an instrumented Drive.
type Option func(*Drive) error

// WithLogger sets the logger for the Drive.
// The logger will receive messages at different levels based on the logger's configured level:
//
// Debug level: operation start with path and operation id (development use)
// Info level: operation completion with duration (production-safe)
// Error level: operations that completed with an error.
func WithLogger(logger drive.Logger) Option {
	return func(d *Drive) error {
		d.logger = logger
		return nil
	}
}

// WithContextualLogger sets the contextual logger for the Drive.
// Log records carry the span context of the operation, so they correlate with traces.
func WithContextualLogger(logger drive.ContextualLogger) Option {
	return func(d *Drive) error {
		d.contextualLogger = logger
		return nil
	}
}

// WithMetrics sets the metrics collector for the Drive.
// It receives operation durations, operation counts, and error counts labeled by operation.
func WithMetrics(collector drive.MetricsCollector) Option {
	return func(d *Drive) error {
		d.metricsCollector = collector
		return nil
	}
}

// WithTracing sets the tracing collector for the Drive.
// Every completion-callback operation gets a span named after it.
func WithTracing(collector drive.TracingCollector) Option {
	return func(d *Drive) error {
		d.tracingCollector = collector
		return nil
	}
}

// WithContext sets the base context that spans and contextual log records are derived from.
// Raw drive operations take no context, so this is the only way to attach a parent span.
func WithContext(ctx context.Context) Option {
	return func(d *Drive) error {
		if ctx == nil {
			return ErrNilContext
		}

		d.baseCtx = ctx

		return nil
	}
}
